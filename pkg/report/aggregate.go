// SPDX-License-Identifier: Apache-2.0

package report

import (
	"math"
	"slices"
	"strings"

	"github.com/oapi-codegen/nullable"
)

// IsAggregate reports whether label marks the aggregate row.
func IsAggregate(label string) bool {
	return strings.EqualFold(label, AggregateLabel)
}

// FindAggregate returns the aggregate entry of stats. An exact match on
// "Total" wins over a case-insensitive one.
func FindAggregate(stats *Statistics) *RawStatEntry {
	if e, ok := stats.Get(AggregateLabel); ok {
		return e
	}
	for _, e := range stats.Entries {
		if IsAggregate(e.Label) {
			return e
		}
	}
	return nil
}

// Synthesize computes an aggregate entry from the non-aggregate entries. It
// returns nil when the entries hold no samples.
//
// Throughput is the total sample count divided by the largest response time
// in seconds. Median and percentiles come from the pooled raw responses when
// any entry carries them, otherwise they are the largest value reported by
// any endpoint. Both are approximations.
func Synthesize(entries []*RawStatEntry) *RawStatEntry {
	var (
		samples, failures float64
		weighted, weight  float64
		minimum, maximum  nullable.Nullable[float64]
		received, sent    nullable.Nullable[float64]
		raw               []float64
		endpoints         []*RawStatEntry
	)

	for _, e := range entries {
		if IsAggregate(e.Label) {
			continue
		}
		endpoints = append(endpoints, e)

		s, _ := Value(e.SampleCount)
		samples += s
		if f, ok := Value(e.ErrorCount); ok {
			failures += f
		}
		if mean, ok := Value(e.MeanResTime); ok {
			weighted += mean * s
			weight += s
		}
		minimum = pick(minimum, e.MinResTime, math.Min)
		maximum = pick(maximum, e.MaxResTime, math.Max)
		received = pick(received, e.ReceivedKBytesPerSec, sum)
		sent = pick(sent, e.SentKBytesPerSec, sum)
		raw = append(raw, e.RawResponses...)
	}

	if samples == 0 {
		return nil
	}

	total := &RawStatEntry{
		Label:                AggregateLabel,
		SampleCount:          nullable.NewNullableWithValue(samples),
		ErrorCount:           nullable.NewNullableWithValue(failures),
		ErrorPct:             nullable.NewNullableWithValue(round2(failures / samples * 100)),
		MinResTime:           roundNullable(minimum),
		MaxResTime:           roundNullable(maximum),
		ReceivedKBytesPerSec: roundNullable(received),
		SentKBytesPerSec:     roundNullable(sent),
	}
	if weight > 0 {
		total.MeanResTime = nullable.NewNullableWithValue(round2(weighted / weight))
	}
	if m, ok := Value(maximum); ok && m > 0 {
		total.Throughput = nullable.NewNullableWithValue(round2(samples / (m / 1000)))
	}

	if len(raw) > 0 {
		slices.Sort(raw)
		total.MedianResTime = nullable.NewNullableWithValue(round2(percentile(raw, 0.5)))
		total.Pct1ResTime = nullable.NewNullableWithValue(round2(percentile(raw, 0.9)))
		total.Pct2ResTime = nullable.NewNullableWithValue(round2(percentile(raw, 0.95)))
		total.Pct3ResTime = nullable.NewNullableWithValue(round2(percentile(raw, 0.99)))
		return total
	}

	total.MedianResTime = largest(endpoints, func(e *RawStatEntry) nullable.Nullable[float64] { return e.MedianResTime })
	total.Pct1ResTime = largest(endpoints, func(e *RawStatEntry) nullable.Nullable[float64] { return e.Pct1ResTime })
	total.Pct2ResTime = largest(endpoints, func(e *RawStatEntry) nullable.Nullable[float64] { return e.Pct2ResTime })
	total.Pct3ResTime = largest(endpoints, func(e *RawStatEntry) nullable.Nullable[float64] { return e.Pct3ResTime })
	return total
}

// NewAggregate projects an aggregate entry onto the aggregate metrics.
func NewAggregate(e *RawStatEntry) *Aggregate {
	return &Aggregate{
		Average:    roundNullable(e.MeanResTime),
		Median:     roundNullable(e.MedianResTime),
		Min:        roundNullable(e.MinResTime),
		Max:        roundNullable(e.MaxResTime),
		Throughput: roundNullable(e.Throughput),
		ErrorPct:   roundNullable(e.ErrorPct),
		P90:        roundNullable(e.Pct1ResTime),
		P95:        roundNullable(e.Pct2ResTime),
		P99:        roundNullable(e.Pct3ResTime),
	}
}

// percentile returns the value at index int(n*p) of sorted values.
func percentile(sorted []float64, p float64) float64 {
	i := int(float64(len(sorted)) * p)
	if i >= len(sorted) {
		i = len(sorted) - 1
	}
	return sorted[i]
}

func largest(entries []*RawStatEntry, get func(*RawStatEntry) nullable.Nullable[float64]) nullable.Nullable[float64] {
	var out nullable.Nullable[float64]
	for _, e := range entries {
		out = pick(out, get(e), math.Max)
	}
	return roundNullable(out)
}

// pick folds v into acc with fn, ignoring v when it holds no value.
func pick(acc, v nullable.Nullable[float64], fn func(a, b float64) float64) nullable.Nullable[float64] {
	x, ok := Value(v)
	if !ok {
		return acc
	}
	if cur, ok := Value(acc); ok {
		return nullable.NewNullableWithValue(fn(cur, x))
	}
	return nullable.NewNullableWithValue(x)
}

func sum(a, b float64) float64 {
	return a + b
}

// roundNullable rounds a value to 2 decimals, keeping null and unspecified
// as they are.
func roundNullable(n nullable.Nullable[float64]) nullable.Nullable[float64] {
	if v, ok := Value(n); ok {
		return nullable.NewNullableWithValue(round2(v))
	}
	return n
}

// countNullable rounds a count to an integer, keeping null and unspecified
// as they are.
func countNullable(n nullable.Nullable[float64]) nullable.Nullable[int64] {
	if v, ok := Value(n); ok {
		return nullable.NewNullableWithValue(int64(math.Round(v)))
	}
	if n.IsNull() {
		return nullable.NewNullNullable[int64]()
	}
	return nil
}
