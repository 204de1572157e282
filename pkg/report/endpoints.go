// SPDX-License-Identifier: Apache-2.0

package report

import (
	"cmp"
	"slices"
	"strings"
)

var httpVerbs = []string{"GET ", "POST ", "PUT ", "DELETE ", "PATCH "}

// IsHTTPEndpoint reports whether label starts with an HTTP verb followed by a
// single space.
func IsHTTPEndpoint(label string) bool {
	for _, v := range httpVerbs {
		if strings.HasPrefix(label, v) {
			return true
		}
	}
	return false
}

// Normalize builds the endpoint table and the aggregate of stats. When stats
// has no aggregate entry one is synthesized and included in the endpoint
// table. Both results are nil when stats has no entries.
func Normalize(stats *Statistics, log Logger) (EndpointTable, *Aggregate) {
	if stats == nil || len(stats.Entries) == 0 {
		return nil, nil
	}

	entries := stats.Entries
	total := FindAggregate(stats)
	if total == nil {
		total = Synthesize(entries)
		if total != nil {
			samples, _ := Value(countNullable(total.SampleCount))
			log.LogAggregateSynthesized(total.Label, samples, len(entries))
			entries = append(slices.Clip(entries), total)
		}
	}

	rows := make(EndpointTable, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, NewEndpointRow(e))
	}

	aggregateLabel := ""
	var aggregate *Aggregate
	if total != nil {
		aggregateLabel = total.Label
		aggregate = NewAggregate(total)
	}
	SortEndpoints(rows, aggregateLabel)

	return rows, aggregate
}

// NewEndpointRow projects an entry onto the canonical columns.
func NewEndpointRow(e *RawStatEntry) EndpointRow {
	return EndpointRow{
		Label:      e.Label,
		Samples:    countNullable(e.SampleCount),
		Failures:   countNullable(e.ErrorCount),
		ErrorPct:   roundNullable(e.ErrorPct),
		Average:    roundNullable(e.MeanResTime),
		Min:        roundNullable(e.MinResTime),
		Max:        roundNullable(e.MaxResTime),
		Median:     roundNullable(e.MedianResTime),
		P90:        roundNullable(e.Pct1ResTime),
		P95:        roundNullable(e.Pct2ResTime),
		P99:        roundNullable(e.Pct3ResTime),
		Throughput: roundNullable(e.Throughput),
		Received:   roundNullable(e.ReceivedKBytesPerSec),
		Sent:       roundNullable(e.SentKBytesPerSec),
	}
}

// SortEndpoints orders rows with the aggregate row first, then labels without
// an HTTP verb and then labels with one, each group alphabetically.
func SortEndpoints(rows EndpointTable, aggregateLabel string) {
	rank := func(label string) int {
		switch {
		case aggregateLabel != "" && label == aggregateLabel:
			return 0
		case IsHTTPEndpoint(label):
			return 2
		default:
			return 1
		}
	}

	slices.SortStableFunc(rows, func(a, b EndpointRow) int {
		return cmp.Or(
			cmp.Compare(rank(a.Label), rank(b.Label)),
			strings.Compare(a.Label, b.Label),
		)
	})
}
