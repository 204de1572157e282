// SPDX-License-Identifier: Apache-2.0

package compare

import (
	"fmt"

	"github.com/xataio/jmeter-analyzer/pkg/report"
	"github.com/xataio/jmeter-analyzer/pkg/table"
)

type endpointMetric struct {
	Name string
	Cell func(report.EndpointRow) table.Cell
}

// endpointMetrics are the endpoint columns compared across reports, in
// output order.
var endpointMetrics = []endpointMetric{
	{Name: report.ColumnSamples, Cell: func(r report.EndpointRow) table.Cell { return intCell(r.Samples) }},
	{Name: report.MetricAverage, Cell: func(r report.EndpointRow) table.Cell { return floatCell(r.Average) }},
	{Name: report.MetricErrorPct, Cell: func(r report.EndpointRow) table.Cell { return floatCell(r.ErrorPct) }},
	{Name: report.MetricThroughput, Cell: func(r report.EndpointRow) table.Cell { return floatCell(r.Throughput) }},
	{Name: report.MetricMedian, Cell: func(r report.EndpointRow) table.Cell { return floatCell(r.Median) }},
	{Name: report.MetricP90, Cell: func(r report.EndpointRow) table.Cell { return floatCell(r.P90) }},
	{Name: report.MetricP95, Cell: func(r report.EndpointRow) table.Cell { return floatCell(r.P95) }},
	{Name: report.MetricP99, Cell: func(r report.EndpointRow) table.Cell { return floatCell(r.P99) }},
}

// EndpointColumn names the comparison column holding metric for a report.
func EndpointColumn(metric, name string) string {
	return fmt.Sprintf("%s (%s)", metric, name)
}

// Endpoints lines up the endpoint tables of several reports. Labels keep the
// order of the first report, followed by labels first seen in later
// reports. Every metric gets one column per report; reports without a label
// leave its cells blank.
func Endpoints(tables []report.EndpointTable, names []string) (*table.Table, error) {
	if len(tables) == 0 || len(tables) != len(names) {
		return table.New(report.TitleEndpoints), InputMismatchError{Tables: len(tables), Names: len(names)}
	}
	for i, t := range tables {
		if len(t) == 0 {
			return table.New(report.TitleEndpoints), MissingTableError{Index: i}
		}
	}

	var labels []string
	seen := make(map[string]bool)
	indexed := make([]map[string]report.EndpointRow, len(tables))
	for i, t := range tables {
		indexed[i] = make(map[string]report.EndpointRow, len(t))
		for _, r := range t {
			if _, ok := indexed[i][r.Label]; !ok {
				indexed[i][r.Label] = r
			}
			if !seen[r.Label] {
				seen[r.Label] = true
				labels = append(labels, r.Label)
			}
		}
	}

	columns := []string{report.ColumnEndpoint}
	for _, m := range endpointMetrics {
		for _, name := range names {
			columns = append(columns, EndpointColumn(m.Name, name))
		}
	}

	out := table.New(report.TitleEndpoints, columns...)
	for _, label := range labels {
		cells := []table.Cell{table.String(label)}
		for _, m := range endpointMetrics {
			for _, rows := range indexed {
				row, ok := rows[label]
				if !ok {
					cells = append(cells, table.Blank())
					continue
				}
				cells = append(cells, m.Cell(row))
			}
		}
		out.Append(cells...)
	}
	return out, nil
}
