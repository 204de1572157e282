// SPDX-License-Identifier: Apache-2.0

package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sourcegraph/conc/iter"
)

type options struct {
	logger   Logger
	validate bool
}

type Option func(*options)

// WithLogger sets the logger used while parsing.
func WithLogger(l Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithSchemaValidation enables or disables checking statistics.json against
// the statistics schema. Violations are logged, never fatal. Enabled by
// default.
func WithSchemaValidation(enabled bool) Option {
	return func(o *options) {
		o.validate = enabled
	}
}

// Parse reads the report rooted at root (a report directory, its index.html
// or its statistics.json) into a TableSet. A statistics.json that cannot be
// decoded falls back to the dashboard script. The only fatal error is the
// absence of usable statistics in both, reported as a NotFoundError.
func Parse(ctx context.Context, root string, opts ...Option) (*TableSet, error) {
	o := options{logger: NewNoopLogger(), validate: true}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	warn := func(w PartialDataWarning) { log.LogPartialData(w) }

	dir := root
	statsPath, locateErr := LocateStatistics(root)
	if locateErr == nil {
		dir = filepath.Dir(statsPath)
	} else if info, err := os.Stat(root); err != nil || !info.IsDir() {
		dir = filepath.Dir(root)
	}

	dashboardJS := ""
	dashboardPath := LocateDashboard(dir)
	if dashboardPath != "" {
		b, err := os.ReadFile(dashboardPath)
		if err != nil {
			log.Info("dashboard script could not be read", "path", dashboardPath, "error", err.Error())
		} else {
			dashboardJS = string(b)
		}
	}

	var (
		stats  *Statistics
		source string
	)
	if locateErr == nil {
		log.LogReportLocated(statsPath)
		stats = loadStatisticsFile(statsPath, o.validate, log)
		source = statsPath
	}

	if stats == nil && dashboardJS != "" {
		var err error
		stats, err = StatisticsFromDashboard(dashboardJS, warn)
		if err != nil {
			log.LogTableExtractionFailed(err)
		}
		if stats != nil {
			log.LogReportLocated(dashboardPath)
			source = dashboardPath
		}
	}

	if stats == nil {
		if locateErr != nil {
			return nil, locateErr
		}
		return nil, NotFoundError{Path: statsPath}
	}

	endpoints, aggregate := Normalize(stats, log)
	return &TableSet{
		Source:    source,
		Endpoints: endpoints,
		Aggregate: aggregate,
		Errors:    BuildErrorTable(stats, dashboardJS, log),
	}, nil
}

// loadStatisticsFile reads and decodes statistics.json. A file that cannot
// be read or decoded is logged and yields nil so the dashboard script can
// stand in for it.
func loadStatisticsFile(path string, validate bool, log Logger) *Statistics {
	b, err := os.ReadFile(path)
	if err != nil {
		log.LogStatisticsUnreadable(path, err)
		return nil
	}
	if validate {
		if err := Validate(bytes.NewReader(b)); err != nil {
			log.LogSchemaViolation(path, err)
		}
	}

	stats, err := LoadStatistics(bytes.NewReader(b), func(w PartialDataWarning) { log.LogPartialData(w) })
	if err != nil {
		log.LogStatisticsUnreadable(path, err)
		return nil
	}
	return stats
}

// ParseAll parses several reports concurrently. Results are in the order of
// roots, nil for reports that failed; the returned error joins the errors of
// every failed parse.
func ParseAll(ctx context.Context, roots []string, opts ...Option) ([]*TableSet, error) {
	sets, err := iter.MapErr(roots, func(root *string) (*TableSet, error) {
		set, err := Parse(ctx, *root, opts...)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", *root, err)
		}
		return set, nil
	})
	return sets, err
}

// IsNotFound reports whether err is caused by a missing statistics payload.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}
