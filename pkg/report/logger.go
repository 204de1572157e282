// SPDX-License-Identifier: Apache-2.0

package report

import (
	"os"

	"github.com/pterm/pterm"
)

// Logger is responsible for logging the steps of a report parse.
type Logger interface {
	LogReportLocated(path string)
	LogAggregateSynthesized(label string, samples int64, endpoints int)
	LogTableExtractionFailed(err error)
	LogPartialData(w PartialDataWarning)
	LogSchemaViolation(path string, err error)
	LogStatisticsUnreadable(path string, err error)

	Info(msg string, args ...any)
	Debug(msg string, args ...any)
}

type reportLogger struct {
	logger pterm.Logger
}

type noopLogger struct{}

// NewLogger returns a pterm backed logger writing to stderr. Debug messages
// are only shown when verbose is set.
func NewLogger(verbose bool) Logger {
	level := pterm.LogLevelInfo
	if verbose {
		level = pterm.LogLevelDebug
	}
	return &reportLogger{
		logger: *pterm.DefaultLogger.WithLevel(level).WithWriter(os.Stderr),
	}
}

func NewNoopLogger() Logger {
	return &noopLogger{}
}

func (l *reportLogger) LogReportLocated(path string) {
	l.logger.Debug("located statistics", l.logger.Args("path", path))
}

func (l *reportLogger) LogAggregateSynthesized(label string, samples int64, endpoints int) {
	l.logger.Info("synthesized aggregate row", l.logger.Args(
		"label", label,
		"samples", samples,
		"endpoints", endpoints,
	))
}

func (l *reportLogger) LogTableExtractionFailed(err error) {
	l.logger.Warn("embedded table could not be extracted", l.logger.Args("error", err.Error()))
}

func (l *reportLogger) LogPartialData(w PartialDataWarning) {
	l.logger.Warn("statistics field left blank", l.logger.Args(
		"label", w.Label,
		"field", w.Field,
		"error", w.Err.Error(),
	))
}

func (l *reportLogger) LogSchemaViolation(path string, err error) {
	l.logger.Warn("statistics do not match schema", l.logger.Args("path", path, "error", err.Error()))
}

func (l *reportLogger) LogStatisticsUnreadable(path string, err error) {
	l.logger.Warn("statistics could not be read, trying the dashboard script", l.logger.Args("path", path, "error", err.Error()))
}

func (l *reportLogger) Info(msg string, args ...any) {
	l.logger.Info(msg, l.logger.Args(args...))
}

func (l *reportLogger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, l.logger.Args(args...))
}

func (l *noopLogger) LogReportLocated(path string) {}

func (l *noopLogger) LogAggregateSynthesized(label string, samples int64, endpoints int) {}

func (l *noopLogger) LogTableExtractionFailed(err error) {}

func (l *noopLogger) LogPartialData(w PartialDataWarning) {}

func (l *noopLogger) LogSchemaViolation(path string, err error) {}

func (l *noopLogger) LogStatisticsUnreadable(path string, err error) {}

func (l *noopLogger) Info(msg string, args ...any) {}

func (l *noopLogger) Debug(msg string, args ...any) {}
