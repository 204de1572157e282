// SPDX-License-Identifier: Apache-2.0

package table_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xataio/jmeter-analyzer/pkg/table"
)

func TestCellString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		Name     string
		Cell     table.Cell
		Expected string
	}{
		{Name: "blank", Cell: table.Blank(), Expected: ""},
		{Name: "string", Cell: table.String("GET /a"), Expected: "GET /a"},
		{Name: "int", Cell: table.Int(-5), Expected: "-5"},
		{Name: "float keeps trailing zeros", Cell: table.Float(5, 2), Expected: "5.00"},
		{Name: "float rounds to precision", Cell: table.Float(1.005001, 2), Expected: "1.01"},
	}

	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			assert.Equal(t, tt.Expected, tt.Cell.String())
		})
	}
}

func TestCellNumber(t *testing.T) {
	t.Parallel()

	n, ok := table.Int(10).Number()
	assert.True(t, ok)
	assert.Equal(t, float64(10), n)

	n, ok = table.Float(7.5, 2).Number()
	assert.True(t, ok)
	assert.Equal(t, 7.5, n)

	_, ok = table.String("10").Number()
	assert.False(t, ok)

	_, ok = table.Blank().Number()
	assert.False(t, ok)
}

func TestAppendPadsShortRows(t *testing.T) {
	t.Parallel()

	tbl := table.New("Errors", "Endpoint", "Count", "%")
	assert.True(t, tbl.Empty())

	tbl.Append(table.String("GET /a"))
	require.Len(t, tbl.Rows, 1)
	assert.Len(t, tbl.Rows[0], 3)
	assert.Equal(t, table.KindBlank, tbl.Rows[0][2].Kind())
	assert.False(t, tbl.Empty())

	assert.Equal(t, 1, tbl.Column("Count"))
	assert.Equal(t, -1, tbl.Column("missing"))
}

func TestStrings(t *testing.T) {
	t.Parallel()

	tbl := table.New("", "Label", "#Samples", "Average")
	tbl.Append(table.String("Total"), table.Int(30), table.Float(6.666, 2))
	tbl.Append(table.String("GET /a"), table.Int(10))

	assert.Equal(t, [][]string{
		{"Label", "#Samples", "Average"},
		{"Total", "30", "6.67"},
		{"GET /a", "10", ""},
	}, tbl.Strings())
}

func TestMarshalJSON(t *testing.T) {
	t.Parallel()

	tbl := table.New("Aggregate Metrics Summary", "Metric", "Value")
	tbl.Append(table.String("Error %"), table.Float(5, 2))
	tbl.Append(table.String("Throughput (req/sec)"))

	b, err := json.Marshal(tbl)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"title": "Aggregate Metrics Summary",
		"columns": ["Metric", "Value"],
		"rows": [["Error %", 5.00], ["Throughput (req/sec)", null]]
	}`, string(b))
}
