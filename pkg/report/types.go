// SPDX-License-Identifier: Apache-2.0

package report

import (
	"math"

	"github.com/oapi-codegen/nullable"

	"github.com/xataio/jmeter-analyzer/pkg/table"
)

const (
	// AggregateLabel is the label JMeter gives the summary row.
	AggregateLabel = "Total"

	// UnknownError describes endpoints that failed without a matching entry in
	// the top errors table.
	UnknownError = "Unknown Error"
)

// Titles of the tables a report is projected into.
const (
	TitleEndpoints = "Endpoint-wise Stats"
	TitleAggregate = "Aggregate Metrics Summary"
	TitleErrors    = "Errors"
)

// Canonical endpoint table columns.
const (
	ColumnLabel      = "Label"
	ColumnSamples    = "#Samples"
	ColumnFailures   = "FAIL"
	ColumnErrorPct   = "Error %"
	ColumnAverage    = "Average"
	ColumnMin        = "Min"
	ColumnMax        = "Max"
	ColumnMedian     = "Median"
	ColumnP90        = "90th pct"
	ColumnP95        = "95th pct"
	ColumnP99        = "99th pct"
	ColumnThroughput = "Transactions/s"
	ColumnReceived   = "Received"
	ColumnSent       = "Sent"
)

// Canonical aggregate metric names.
const (
	MetricAverage    = "Average Response Time (ms)"
	MetricMedian     = "Median Response Time (ms)"
	MetricMin        = "Min Response Time (ms)"
	MetricMax        = "Max Response Time (ms)"
	MetricThroughput = "Throughput (req/sec)"
	MetricErrorPct   = "Error %"
	MetricP90        = "90th Percentile (ms)"
	MetricP95        = "95th Percentile (ms)"
	MetricP99        = "99th Percentile (ms)"
)

// Error table columns.
const (
	ColumnEndpoint = "Endpoint"
	ColumnRequests = "Request #"
	ColumnErrors   = "Error #"
	ColumnError    = "Error"
)

var endpointColumns = []string{
	ColumnLabel,
	ColumnSamples,
	ColumnFailures,
	ColumnErrorPct,
	ColumnAverage,
	ColumnMin,
	ColumnMax,
	ColumnMedian,
	ColumnP90,
	ColumnP95,
	ColumnP99,
	ColumnThroughput,
	ColumnReceived,
	ColumnSent,
}

var aggregateMetrics = []string{
	MetricAverage,
	MetricMedian,
	MetricMin,
	MetricMax,
	MetricThroughput,
	MetricErrorPct,
	MetricP90,
	MetricP95,
	MetricP99,
}

// EndpointColumns returns the canonical endpoint table column order.
func EndpointColumns() []string {
	return append([]string(nil), endpointColumns...)
}

// AggregateMetrics returns the canonical aggregate metric names in order.
func AggregateMetrics() []string {
	return append([]string(nil), aggregateMetrics...)
}

// RawStatEntry is one per-label record of a statistics payload. A field is
// unspecified when the source omits it and null when the source says null.
type RawStatEntry struct {
	Label                string
	SampleCount          nullable.Nullable[float64]
	ErrorCount           nullable.Nullable[float64]
	ErrorPct             nullable.Nullable[float64]
	MeanResTime          nullable.Nullable[float64]
	MinResTime           nullable.Nullable[float64]
	MaxResTime           nullable.Nullable[float64]
	MedianResTime        nullable.Nullable[float64]
	Pct1ResTime          nullable.Nullable[float64]
	Pct2ResTime          nullable.Nullable[float64]
	Pct3ResTime          nullable.Nullable[float64]
	Throughput           nullable.Nullable[float64]
	ReceivedKBytesPerSec nullable.Nullable[float64]
	SentKBytesPerSec     nullable.Nullable[float64]
	RawResponses         []float64
}

// field returns the entry field stored under the given source key, or nil
// for keys the analyzer does not read.
func (e *RawStatEntry) field(key string) *nullable.Nullable[float64] {
	switch key {
	case "sampleCount":
		return &e.SampleCount
	case "errorCount":
		return &e.ErrorCount
	case "errorPct":
		return &e.ErrorPct
	case "meanResTime":
		return &e.MeanResTime
	case "minResTime":
		return &e.MinResTime
	case "maxResTime":
		return &e.MaxResTime
	case "medianResTime":
		return &e.MedianResTime
	case "pct1ResTime":
		return &e.Pct1ResTime
	case "pct2ResTime":
		return &e.Pct2ResTime
	case "pct3ResTime":
		return &e.Pct3ResTime
	case "throughput":
		return &e.Throughput
	case "receivedKBytesPerSec":
		return &e.ReceivedKBytesPerSec
	case "sentKBytesPerSec":
		return &e.SentKBytesPerSec
	}
	return nil
}

// Statistics holds the entries of a statistics payload in source order.
type Statistics struct {
	Entries []*RawStatEntry
	index   map[string]int
}

// Add appends an entry. A later entry with the same label replaces the
// earlier one in place.
func (s *Statistics) Add(e *RawStatEntry) {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if i, ok := s.index[e.Label]; ok {
		s.Entries[i] = e
		return
	}
	s.index[e.Label] = len(s.Entries)
	s.Entries = append(s.Entries, e)
}

// Get returns the entry with the given label.
func (s *Statistics) Get(label string) (*RawStatEntry, bool) {
	if s == nil {
		return nil, false
	}
	i, ok := s.index[label]
	if !ok {
		return nil, false
	}
	return s.Entries[i], true
}

// EndpointRow is one row of the endpoint table.
type EndpointRow struct {
	Label      string                     `json:"label"`
	Samples    nullable.Nullable[int64]   `json:"samples,omitempty"`
	Failures   nullable.Nullable[int64]   `json:"failures,omitempty"`
	ErrorPct   nullable.Nullable[float64] `json:"errorPct,omitempty"`
	Average    nullable.Nullable[float64] `json:"average,omitempty"`
	Min        nullable.Nullable[float64] `json:"min,omitempty"`
	Max        nullable.Nullable[float64] `json:"max,omitempty"`
	Median     nullable.Nullable[float64] `json:"median,omitempty"`
	P90        nullable.Nullable[float64] `json:"p90,omitempty"`
	P95        nullable.Nullable[float64] `json:"p95,omitempty"`
	P99        nullable.Nullable[float64] `json:"p99,omitempty"`
	Throughput nullable.Nullable[float64] `json:"throughput,omitempty"`
	Received   nullable.Nullable[float64] `json:"received,omitempty"`
	Sent       nullable.Nullable[float64] `json:"sent,omitempty"`
}

// Cells returns the row in canonical column order.
func (r EndpointRow) Cells() []table.Cell {
	return []table.Cell{
		table.String(r.Label),
		intCell(r.Samples),
		intCell(r.Failures),
		floatCell(r.ErrorPct),
		floatCell(r.Average),
		floatCell(r.Min),
		floatCell(r.Max),
		floatCell(r.Median),
		floatCell(r.P90),
		floatCell(r.P95),
		floatCell(r.P99),
		floatCell(r.Throughput),
		floatCell(r.Received),
		floatCell(r.Sent),
	}
}

// EndpointTable is the sorted endpoint table of one report, aggregate row
// first.
type EndpointTable []EndpointRow

func (t EndpointTable) Table() *table.Table {
	tbl := table.New(TitleEndpoints, EndpointColumns()...)
	for _, r := range t {
		tbl.Append(r.Cells()...)
	}
	return tbl
}

// Aggregate holds the summary metrics of a report.
type Aggregate struct {
	Average    nullable.Nullable[float64] `json:"average,omitempty"`
	Median     nullable.Nullable[float64] `json:"median,omitempty"`
	Min        nullable.Nullable[float64] `json:"min,omitempty"`
	Max        nullable.Nullable[float64] `json:"max,omitempty"`
	Throughput nullable.Nullable[float64] `json:"throughput,omitempty"`
	ErrorPct   nullable.Nullable[float64] `json:"errorPct,omitempty"`
	P90        nullable.Nullable[float64] `json:"p90,omitempty"`
	P95        nullable.Nullable[float64] `json:"p95,omitempty"`
	P99        nullable.Nullable[float64] `json:"p99,omitempty"`
}

// Metric is a named aggregate value.
type Metric struct {
	Name  string
	Value nullable.Nullable[float64]
}

// Metrics returns the aggregate metrics in canonical order.
func (a *Aggregate) Metrics() []Metric {
	return []Metric{
		{Name: MetricAverage, Value: a.Average},
		{Name: MetricMedian, Value: a.Median},
		{Name: MetricMin, Value: a.Min},
		{Name: MetricMax, Value: a.Max},
		{Name: MetricThroughput, Value: a.Throughput},
		{Name: MetricErrorPct, Value: a.ErrorPct},
		{Name: MetricP90, Value: a.P90},
		{Name: MetricP95, Value: a.P95},
		{Name: MetricP99, Value: a.P99},
	}
}

// Metric returns the value of the named metric, if present.
func (a *Aggregate) Metric(name string) (float64, bool) {
	if a == nil {
		return 0, false
	}
	for _, m := range a.Metrics() {
		if m.Name == name {
			return Value(m.Value)
		}
	}
	return 0, false
}

func (a *Aggregate) Table() *table.Table {
	tbl := table.New(TitleAggregate, "Metric", "Value")
	for _, m := range a.Metrics() {
		tbl.Append(table.String(m.Name), floatCell(m.Value))
	}
	return tbl
}

// ErrorRow pairs an endpoint with its representative error description.
type ErrorRow struct {
	Endpoint string  `json:"endpoint"`
	Error    string  `json:"error"`
	Errors   int64   `json:"errors"`
	Requests int64   `json:"requests"`
	ErrorPct float64 `json:"errorPct"`
}

type ErrorTable []ErrorRow

func (t ErrorTable) Table() *table.Table {
	tbl := table.New(TitleErrors, ColumnEndpoint, ColumnRequests, ColumnErrors, ColumnError, ColumnErrorPct)
	for _, r := range t {
		tbl.Append(
			table.String(r.Endpoint),
			table.Int(r.Requests),
			table.Int(r.Errors),
			table.String(r.Error),
			table.Float(r.ErrorPct, 2),
		)
	}
	return tbl
}

// TableSet is the canonical output of parsing one report. Any table may be
// nil when its source data was absent.
type TableSet struct {
	Source    string        `json:"source,omitempty"`
	Endpoints EndpointTable `json:"endpoints"`
	Aggregate *Aggregate    `json:"aggregate"`
	Errors    ErrorTable    `json:"errors"`
}

// Empty reports whether none of the tables hold data.
func (s *TableSet) Empty() bool {
	return s == nil || (len(s.Endpoints) == 0 && s.Aggregate == nil && len(s.Errors) == 0)
}

// Tables projects the set into titled tables, skipping absent ones.
func (s *TableSet) Tables() []*table.Table {
	if s == nil {
		return nil
	}
	var out []*table.Table
	if len(s.Endpoints) > 0 {
		out = append(out, s.Endpoints.Table())
	}
	if s.Aggregate != nil {
		out = append(out, s.Aggregate.Table())
	}
	if len(s.Errors) > 0 {
		out = append(out, s.Errors.Table())
	}
	return out
}

// Value returns the value of n when it is specified and not null.
func Value[T any](n nullable.Nullable[T]) (T, bool) {
	v, err := n.Get()
	if err != nil {
		var zero T
		return zero, false
	}
	return v, true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func intCell(n nullable.Nullable[int64]) table.Cell {
	if v, ok := Value(n); ok {
		return table.Int(v)
	}
	return table.Blank()
}

func floatCell(n nullable.Nullable[float64]) table.Cell {
	if v, ok := Value(n); ok {
		return table.Float(v, 2)
	}
	return table.Blank()
}
