// SPDX-License-Identifier: Apache-2.0

package render_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/xataio/jmeter-analyzer/pkg/render"
	"github.com/xataio/jmeter-analyzer/pkg/table"
)

func endpointTable() *table.Table {
	t := table.New("Endpoint-wise Stats", "Label", "#Samples", "Average")
	t.Append(table.String("Total"), table.Int(30), table.Float(12.346, 2))
	t.Append(table.String("GET /a|b"), table.Int(10))
	return t
}

func comparisonTable() *table.Table {
	t := table.New("Endpoint-wise Stats", "Endpoint", "#Samples (v1)", "#Samples (v2)", "Error % (v1)", "Error % (v2)")
	t.Append(table.String("GET /a"), table.Int(10), table.Int(20), table.Float(1, 2), table.Float(0.5, 2))
	t.Append(table.String("GET /b"), table.Int(5), table.Blank(), table.Float(0, 2))
	return t
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		Input    string
		Expected render.Format
	}{
		{Input: "", Expected: render.TerminalFormat},
		{Input: "table", Expected: render.TerminalFormat},
		{Input: "MD", Expected: render.MarkdownFormat},
		{Input: "xlsx", Expected: render.ExcelFormat},
		{Input: "json", Expected: render.JSONFormat},
		{Input: "yml", Expected: render.YAMLFormat},
		{Input: " html ", Expected: render.HTMLFormat},
	}
	for _, tt := range tests {
		f, err := render.ParseFormat(tt.Input)
		require.NoError(t, err, tt.Input)
		assert.Equal(t, tt.Expected, f, tt.Input)
	}

	f, err := render.ParseFormat("pdf")
	assert.ErrorIs(t, err, render.ErrInvalidFormat)
	assert.Equal(t, render.InvalidFormat, f)
	assert.Equal(t, "", f.Extension())
}

func TestMarkdown(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := render.Markdown(&buf, endpointTable(), table.New("Errors", "Endpoint"))
	require.NoError(t, err)

	expected := "# Endpoint-wise Stats\n\n" +
		"| Label | #Samples | Average |\n" +
		"| --- | --: | --: |\n" +
		"| Total | 30 | 12.35 |\n" +
		"| GET /a\\|b | 10 |  |\n" +
		"\n"
	assert.Equal(t, expected, buf.String())
}

func TestWriter(t *testing.T) {
	t.Parallel()

	tbl := table.New("Aggregate Metrics Summary", "Metric", "Value")
	tbl.Append(table.String("Error %"), table.Float(1.5, 2))

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, render.NewWriter(&buf, render.JSONFormat).Write(tbl))
		assert.JSONEq(t, `{"title": "Aggregate Metrics Summary", "columns": ["Metric", "Value"], "rows": [["Error %", 1.50]]}`, buf.String())
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, render.NewWriter(&buf, render.YAMLFormat).Write(tbl))
		assert.Contains(t, buf.String(), "title: Aggregate Metrics Summary")
		assert.Contains(t, buf.String(), "- Error %")
	})

	t.Run("unsupported format", func(t *testing.T) {
		var buf bytes.Buffer
		err := render.NewWriter(&buf, render.MarkdownFormat).Write(tbl)
		assert.ErrorIs(t, err, render.ErrInvalidFormat)
	})
}

func TestTerminal(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, render.Terminal(&buf, endpointTable(), table.New("Errors")))

	out := buf.String()
	assert.Contains(t, out, "Endpoint-wise Stats")
	assert.Contains(t, out, "12.35")
	assert.Contains(t, out, "No data")
}

func TestExcel(t *testing.T) {
	t.Parallel()

	t.Run("single report", func(t *testing.T) {
		var buf bytes.Buffer
		err := render.Excel(&buf, []*table.Table{endpointTable(), table.New("Errors", "Endpoint")}, render.ExcelOptions{})
		require.NoError(t, err)

		f, err := excelize.OpenReader(&buf)
		require.NoError(t, err)
		defer f.Close()

		assert.Equal(t, []string{"Endpoint-wise Stats"}, f.GetSheetList())

		rows, err := f.GetRows("Endpoint-wise Stats")
		require.NoError(t, err)
		assert.Equal(t, [][]string{
			{"Label", "#Samples", "Average"},
			{"Total", "30", "12.346"},
			{"GET /a|b", "10"},
		}, rows)
	})

	t.Run("comparison", func(t *testing.T) {
		var buf bytes.Buffer
		err := render.Excel(&buf, []*table.Table{comparisonTable()}, render.ExcelOptions{ReportNames: []string{"v1", "v2"}})
		require.NoError(t, err)

		f, err := excelize.OpenReader(&buf)
		require.NoError(t, err)
		defer f.Close()

		assert.Equal(t, []string{"Comparison Info", "Endpoint-wise Stats"}, f.GetSheetList())

		info, err := f.GetRows("Comparison Info")
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"Report 1", "Report 2"}, {"v1", "v2"}}, info)

		sheet := "Endpoint-wise Stats"
		samples, err := f.GetCellStyle(sheet, "B2")
		require.NoError(t, err)
		errors, err := f.GetCellStyle(sheet, "D2")
		require.NoError(t, err)
		label, err := f.GetCellStyle(sheet, "A2")
		require.NoError(t, err)
		header, err := f.GetCellStyle(sheet, "B1")
		require.NoError(t, err)

		assert.NotZero(t, samples)
		assert.NotZero(t, errors)
		assert.NotEqual(t, samples, errors)
		assert.Zero(t, label)
		assert.Zero(t, header)

		same, err := f.GetCellStyle(sheet, "C3")
		require.NoError(t, err)
		assert.Equal(t, samples, same)
	})

	t.Run("long and duplicate titles", func(t *testing.T) {
		long := table.New("A very long table title that does not fit", "x")
		long.Append(table.Int(1))
		dup := table.New("A very long table title that does not fit", "x")
		dup.Append(table.Int(2))

		var buf bytes.Buffer
		require.NoError(t, render.Excel(&buf, []*table.Table{long, dup}, render.ExcelOptions{}))

		f, err := excelize.OpenReader(&buf)
		require.NoError(t, err)
		defer f.Close()

		assert.Equal(t, []string{
			"A very long table title that do",
			"A very long table title tha (2)",
		}, f.GetSheetList())
	})
}

func TestCharts(t *testing.T) {
	t.Parallel()

	agg := table.New("Aggregate Metrics Summary", "Metric", "v1", "v2")
	agg.Append(table.String("Error %"), table.Float(1, 2), table.Float(2, 2))

	var buf bytes.Buffer
	err := render.Charts(&buf, "v1 vs v2", []string{"v1", "v2"}, comparisonTable(), agg, table.New("Errors"))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "<title>v1 vs v2</title>")
	assert.Contains(t, out, "Endpoint-wise Stats: #Samples")
	assert.Contains(t, out, "Endpoint-wise Stats: Error %")
	assert.Contains(t, out, "Aggregate Metrics Summary")
	assert.Contains(t, out, "GET /b")
}
