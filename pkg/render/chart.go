// SPDX-License-Identifier: Apache-2.0

package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/xataio/jmeter-analyzer/pkg/table"
)

// missingValue is drawn by echarts as a gap in the series.
const missingValue = "-"

// metricGroup is a set of columns holding the same metric for each report.
type metricGroup struct {
	metric  string
	columns []int // indexed by report, -1 when absent
}

// Charts writes an HTML page with one bar chart per metric found in the
// comparison tables. Columns are matched to reports by name: the aggregate
// layout uses the bare name, the endpoint layout "<metric> (<name>)" and the
// error layout "<name> <metric>". Columns before the first report column
// label the x axis.
func Charts(w io.Writer, title string, names []string, tables ...*table.Table) error {
	page := components.NewPage()
	page.SetPageTitle(title)
	page.SetLayout("flex")

	for _, t := range tables {
		if t.Empty() {
			continue
		}
		for _, c := range tableCharts(t, names) {
			page.AddCharts(c)
		}
	}

	if err := page.Render(w); err != nil {
		return fmt.Errorf("rendering charts: %w", err)
	}
	return nil
}

func tableCharts(t *table.Table, names []string) []*charts.Bar {
	groups, labelColumns := groupColumns(t.Columns, names)
	if len(groups) == 0 {
		return nil
	}

	xs := make([]string, len(t.Rows))
	for r, row := range t.Rows {
		parts := make([]string, 0, labelColumns)
		for i := range labelColumns {
			parts = append(parts, row[i].String())
		}
		xs[r] = strings.Join(parts, ": ")
	}

	out := make([]*charts.Bar, 0, len(groups))
	for _, g := range groups {
		chartTitle := t.Title
		if g.metric != "" {
			chartTitle = fmt.Sprintf("%s: %s", t.Title, g.metric)
		}

		bar := charts.NewBar()
		bar.SetGlobalOptions(
			charts.WithTitleOpts(opts.Title{Title: chartTitle}),
			charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
			charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
			charts.WithAnimation(false))
		bar.SetXAxis(xs)

		for report, name := range names {
			data := make([]opts.BarData, len(t.Rows))
			for r, row := range t.Rows {
				data[r] = opts.BarData{Value: chartValue(row, g.columns[report])}
			}
			bar.AddSeries(name, data)
		}
		out = append(out, bar)
	}
	return out
}

// groupColumns assigns the report columns of a table to metric groups, in
// order of first appearance, and returns the number of leading label
// columns.
func groupColumns(columns, names []string) ([]metricGroup, int) {
	var groups []metricGroup
	index := make(map[string]int)
	labelColumns := -1

	for i, c := range columns {
		metric, report, ok := matchColumn(c, names)
		if !ok {
			continue
		}
		if labelColumns == -1 {
			labelColumns = i
		}

		g, found := index[metric]
		if !found {
			g = len(groups)
			index[metric] = g
			cols := make([]int, len(names))
			for j := range cols {
				cols[j] = -1
			}
			groups = append(groups, metricGroup{metric: metric, columns: cols})
		}
		groups[g].columns[report] = i
	}

	if labelColumns < 1 {
		return nil, 0
	}
	return groups, labelColumns
}

func matchColumn(column string, names []string) (metric string, report int, ok bool) {
	for i, n := range names {
		switch {
		case column == n:
			return "", i, true
		case strings.HasSuffix(column, " ("+n+")"):
			return strings.TrimSuffix(column, " ("+n+")"), i, true
		case strings.HasPrefix(column, n+" "):
			return strings.TrimPrefix(column, n+" "), i, true
		}
	}
	return "", 0, false
}

func chartValue(row []table.Cell, column int) any {
	if column < 0 || column >= len(row) {
		return missingValue
	}
	c := row[column]
	if v, ok := c.Number(); ok {
		return v
	}
	if c.Kind() == table.KindString {
		s := strings.TrimSuffix(strings.TrimSpace(c.String()), "%")
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return v
		}
	}
	return missingValue
}
