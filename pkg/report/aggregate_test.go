// SPDX-License-Identifier: Apache-2.0

package report_test

import (
	"testing"

	"github.com/oapi-codegen/nullable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xataio/jmeter-analyzer/pkg/report"
)

func value(v float64) nullable.Nullable[float64] {
	return nullable.NewNullableWithValue(v)
}

func TestSynthesizeFromRawResponses(t *testing.T) {
	t.Parallel()

	total := report.Synthesize([]*report.RawStatEntry{
		{Label: "GET /a", SampleCount: value(2), MeanResTime: value(15), RawResponses: []float64{20, 10}},
		{Label: "GET /b", SampleCount: value(3), MeanResTime: value(40), RawResponses: []float64{50, 30, 40}},
	})
	require.NotNil(t, total)

	agg := report.NewAggregate(total)
	tests := []struct {
		Metric   string
		Expected float64
	}{
		{Metric: report.MetricAverage, Expected: 30},
		{Metric: report.MetricErrorPct, Expected: 0},
		{Metric: report.MetricMedian, Expected: 30},
		{Metric: report.MetricP90, Expected: 50},
		{Metric: report.MetricP95, Expected: 50},
		{Metric: report.MetricP99, Expected: 50},
	}
	for _, tt := range tests {
		got, ok := agg.Metric(tt.Metric)
		assert.True(t, ok, tt.Metric)
		assert.Equal(t, tt.Expected, got, tt.Metric)
	}

	for _, metric := range []string{report.MetricMin, report.MetricMax, report.MetricThroughput} {
		_, ok := agg.Metric(metric)
		assert.False(t, ok, metric)
	}
}

func TestSynthesizeFromReportedPercentiles(t *testing.T) {
	t.Parallel()

	total := report.Synthesize([]*report.RawStatEntry{
		{Label: "GET /a", SampleCount: value(10), ErrorCount: value(1), MinResTime: value(3), MaxResTime: value(500), Pct1ResTime: value(90), Pct3ResTime: value(400)},
		{Label: "GET /b", SampleCount: value(30), ErrorCount: value(2), MinResTime: value(7), MaxResTime: value(250), Pct1ResTime: value(120)},
	})
	require.NotNil(t, total)

	agg := report.NewAggregate(total)
	assert.Equal(t, value(3), agg.Min)
	assert.Equal(t, value(500), agg.Max)
	assert.Equal(t, value(7.5), agg.ErrorPct)
	assert.Equal(t, value(80), agg.Throughput)
	assert.Equal(t, value(120), agg.P90)
	assert.Equal(t, value(400), agg.P99)
	assert.False(t, agg.P95.IsSpecified())
	assert.False(t, agg.Average.IsSpecified())
}

func TestSynthesizeWithoutSamples(t *testing.T) {
	t.Parallel()

	assert.Nil(t, report.Synthesize(nil))
	assert.Nil(t, report.Synthesize([]*report.RawStatEntry{
		{Label: "GET /a", SampleCount: value(0), MeanResTime: value(12)},
		{Label: "GET /b"},
	}))
}

func TestFindAggregate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		Name     string
		Labels   []string
		Expected string
	}{
		{Name: "exact match", Labels: []string{"GET /a", "Total"}, Expected: "Total"},
		{Name: "case-insensitive fallback", Labels: []string{"GET /a", "TOTAL"}, Expected: "TOTAL"},
		{Name: "exact match wins", Labels: []string{"total", "Total"}, Expected: "Total"},
		{Name: "absent", Labels: []string{"GET /a", "Totals"}},
	}

	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			stats := &report.Statistics{}
			for _, l := range tt.Labels {
				stats.Add(&report.RawStatEntry{Label: l})
			}

			got := report.FindAggregate(stats)
			if tt.Expected == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.Expected, got.Label)
		})
	}
}

func TestSortEndpoints(t *testing.T) {
	t.Parallel()

	rows := report.EndpointTable{
		{Label: "PUT /b"},
		{Label: "Think Time"},
		{Label: "GET /b"},
		{Label: "Total"},
		{Label: "GETX /a"},
		{Label: "DELETE /z"},
		{Label: "Auth"},
	}
	report.SortEndpoints(rows, "Total")

	labels := make([]string, len(rows))
	for i, r := range rows {
		labels[i] = r.Label
	}
	assert.Equal(t, []string{"Total", "Auth", "GETX /a", "Think Time", "DELETE /z", "GET /b", "PUT /b"}, labels)
}
