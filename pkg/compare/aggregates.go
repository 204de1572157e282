// SPDX-License-Identifier: Apache-2.0

package compare

import (
	"github.com/oapi-codegen/nullable"

	"github.com/xataio/jmeter-analyzer/pkg/report"
	"github.com/xataio/jmeter-analyzer/pkg/table"
)

// aggregateOrder is the metric order of aggregate comparisons, leading with
// the metrics most often compared between runs.
var aggregateOrder = []string{
	report.MetricAverage,
	report.MetricErrorPct,
	report.MetricThroughput,
	report.MetricMin,
	report.MetricMax,
	report.MetricMedian,
	report.MetricP90,
	report.MetricP95,
	report.MetricP99,
}

// Aggregates lines up the aggregate metrics of several reports, one column
// per report.
func Aggregates(aggs []*report.Aggregate, names []string) (*table.Table, error) {
	if len(aggs) == 0 || len(aggs) != len(names) {
		return table.New(report.TitleAggregate), InputMismatchError{Tables: len(aggs), Names: len(names)}
	}
	for i, a := range aggs {
		if a == nil {
			return table.New(report.TitleAggregate), MissingTableError{Index: i}
		}
	}

	out := table.New(report.TitleAggregate, append([]string{"Metric"}, names...)...)
	for _, metric := range aggregateOrder {
		cells := []table.Cell{table.String(metric)}
		for _, a := range aggs {
			v, ok := a.Metric(metric)
			if !ok {
				cells = append(cells, table.Blank())
				continue
			}
			cells = append(cells, table.Float(v, 2))
		}
		out.Append(cells...)
	}
	return out, nil
}

func intCell(n nullable.Nullable[int64]) table.Cell {
	if v, ok := report.Value(n); ok {
		return table.Int(v)
	}
	return table.Blank()
}

func floatCell(n nullable.Nullable[float64]) table.Cell {
	if v, ok := report.Value(n); ok {
		return table.Float(v, 2)
	}
	return table.Blank()
}
