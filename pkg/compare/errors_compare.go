// SPDX-License-Identifier: Apache-2.0

package compare

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/xataio/jmeter-analyzer/pkg/report"
	"github.com/xataio/jmeter-analyzer/pkg/table"
)

const (
	ColumnErrorDescription = "Error Description"
	ColumnCountDifference  = "Count Difference"
	ColumnPctDifference    = "% Difference"
)

var defaultErrorNames = []string{"Report 1", "Report 2"}

type errorKey struct {
	Endpoint string
	Error    string
}

// Errors compares the error tables of two reports. Every (endpoint, error)
// pair found in either report gets a row, sorted by endpoint and then error,
// holding each report's count and share of that endpoint's samples along
// with the differences from the first report to the second. Names default
// to "Report 1" and "Report 2".
func Errors(a, b report.ErrorTable, names ...string) (*table.Table, error) {
	if len(names) == 0 {
		names = defaultErrorNames
	}
	if len(names) != 2 {
		return table.New(report.TitleErrors), InputMismatchError{Tables: 2, Names: len(names)}
	}
	for i, t := range []report.ErrorTable{a, b} {
		if len(t) == 0 {
			return table.New(report.TitleErrors), MissingTableError{Index: i}
		}
	}

	counts := []map[errorKey]int64{errorCounts(a), errorCounts(b)}
	totals := []map[string]int64{endpointTotals(a), endpointTotals(b)}

	var keys []errorKey
	for _, t := range []report.ErrorTable{a, b} {
		for _, r := range t {
			k := errorKey{Endpoint: r.Endpoint, Error: r.Error}
			if !slices.Contains(keys, k) {
				keys = append(keys, k)
			}
		}
	}
	slices.SortFunc(keys, func(x, y errorKey) int {
		return cmp.Or(cmp.Compare(x.Endpoint, y.Endpoint), cmp.Compare(x.Error, y.Error))
	})

	out := table.New(report.TitleErrors,
		report.ColumnEndpoint,
		ColumnErrorDescription,
		names[0]+" Count",
		names[0]+" %",
		names[1]+" Count",
		names[1]+" %",
		ColumnCountDifference,
		ColumnPctDifference,
	)
	for _, k := range keys {
		count1, count2 := counts[0][k], counts[1][k]
		pct1 := share(count1, totals[0][k.Endpoint])
		pct2 := share(count2, totals[1][k.Endpoint])

		out.Append(
			table.String(k.Endpoint),
			table.String(k.Error),
			table.Int(count1),
			table.String(formatPct(pct1)),
			table.Int(count2),
			table.String(formatPct(pct2)),
			table.Int(count2-count1),
			table.String(formatPct(pct2-pct1)),
		)
	}
	return out, nil
}

func errorCounts(t report.ErrorTable) map[errorKey]int64 {
	out := make(map[errorKey]int64, len(t))
	for _, r := range t {
		out[errorKey{Endpoint: r.Endpoint, Error: r.Error}] += r.Errors
	}
	return out
}

func endpointTotals(t report.ErrorTable) map[string]int64 {
	out := make(map[string]int64, len(t))
	for _, r := range t {
		out[r.Endpoint] = max(out[r.Endpoint], r.Requests)
	}
	return out
}

func share(count, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}

func formatPct(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}
