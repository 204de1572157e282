// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"

	"github.com/xataio/jmeter-analyzer/cmd/flags"
	"github.com/xataio/jmeter-analyzer/pkg/archive"
	"github.com/xataio/jmeter-analyzer/pkg/report"
)

// namedReport is a parsed report and the name it is shown under.
type namedReport struct {
	Name string
	Set  *report.TableSet
}

// loadReports opens and parses the reports at paths concurrently, naming
// them after names when given. Zipped reports are extracted under the
// configured work directory and removed once parsed. Reports without
// statistics are logged and left out; the error is only returned when no
// report could be parsed.
func loadReports(ctx context.Context, log report.Logger, paths, names []string) ([]namedReport, error) {
	opened := make([]*archive.Report, 0, len(paths))
	defer func() {
		for _, r := range opened {
			if err := r.Close(); err != nil {
				log.Info("extracted report could not be removed", "path", r.Root, "error", err.Error())
			}
		}
	}()

	roots := make([]string, 0, len(paths))
	for _, p := range paths {
		r, err := archive.Open(p, flags.WorkDir())
		if err != nil {
			return nil, err
		}
		log.Debug("opened report", "path", p, "kind", r.Kind.String(), "root", r.Root)
		opened = append(opened, r)
		roots = append(roots, r.Root)
	}

	sets, err := report.ParseAll(ctx, roots,
		report.WithLogger(log),
		report.WithSchemaValidation(!flags.SkipValidation()),
	)
	if err != nil && (ctx.Err() != nil || !report.IsNotFound(err)) {
		return nil, err
	}

	out := make([]namedReport, 0, len(sets))
	for i, set := range sets {
		name := opened[i].Name
		if i < len(names) {
			name = names[i]
		}
		if set == nil {
			log.Info("report left out, no usable statistics", "report", paths[i])
			continue
		}
		if opened[i].Kind == archive.KindZip {
			// the extracted copy is gone once we return
			set.Source = paths[i]
		}
		out = append(out, namedReport{Name: name, Set: set})
	}
	if len(out) == 0 {
		return nil, err
	}
	return out, nil
}
