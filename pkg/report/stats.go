// SPDX-License-Identifier: Apache-2.0

package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/oapi-codegen/nullable"

	"github.com/xataio/jmeter-analyzer/pkg/jsextract"
)

const (
	statisticsTableID = "statisticsTable"
	rawResponsesKey   = "rawResponses"
)

var errNotANumber = errors.New("not a number")

// LoadStatistics decodes a statistics payload, a JSON object mapping labels
// to entries. Entries keep their source order. Fields that cannot be read are
// left unspecified and reported to warn, which may be nil.
func LoadStatistics(r io.Reader, warn func(PartialDataWarning)) (*Statistics, error) {
	if warn == nil {
		warn = func(PartialDataWarning) {}
	}

	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decoding statistics: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("decoding statistics: expected an object, got %v", tok)
	}

	stats := &Statistics{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decoding statistics: %w", err)
		}
		label := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decoding statistics entry %q: %w", label, err)
		}
		stats.Add(decodeEntry(label, raw, warn))
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decoding statistics: %w", err)
	}
	return stats, nil
}

func decodeEntry(label string, raw json.RawMessage, warn func(PartialDataWarning)) *RawStatEntry {
	entry := &RawStatEntry{Label: label}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		warn(PartialDataWarning{Label: label, Err: err})
		return entry
	}

	for _, key := range slices.Sorted(maps.Keys(fields)) {
		value := fields[key]
		if key == rawResponsesKey {
			if err := json.Unmarshal(value, &entry.RawResponses); err != nil {
				entry.RawResponses = nil
				warn(PartialDataWarning{Label: label, Field: key, Err: err})
			}
			continue
		}

		f := entry.field(key)
		if f == nil {
			continue
		}
		n, err := decodeNumber(value)
		if err != nil {
			warn(PartialDataWarning{Label: label, Field: key, Err: err})
			continue
		}
		*f = n
	}
	return entry
}

func decodeNumber(raw json.RawMessage) (nullable.Nullable[float64], error) {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nullable.NewNullNullable[float64](), nil
	}

	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	f, err := toFloat(v)
	if err != nil {
		return nil, err
	}
	return nullable.NewNullableWithValue(f), nil
}

// toFloat converts a decoded JSON scalar to a number. Numeric strings are
// accepted since some JMeter versions quote them.
func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case json.Number:
		return n.Float64()
	case float64:
		return n, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", errNotANumber, n)
		}
		return f, nil
	}
	return 0, fmt.Errorf("%w: %v", errNotANumber, v)
}

// dashboardTitles maps the column titles of the dashboard statistics table
// to statistics payload keys.
var dashboardTitles = map[string]string{
	ColumnLabel:      "label",
	ColumnSamples:    "sampleCount",
	ColumnFailures:   "errorCount",
	"KO":             "errorCount",
	ColumnErrorPct:   "errorPct",
	ColumnAverage:    "meanResTime",
	ColumnMin:        "minResTime",
	ColumnMax:        "maxResTime",
	ColumnMedian:     "medianResTime",
	ColumnP90:        "pct1ResTime",
	ColumnP95:        "pct2ResTime",
	ColumnP99:        "pct3ResTime",
	ColumnThroughput: "throughput",
	ColumnReceived:   "receivedKBytesPerSec",
	ColumnSent:       "sentKBytesPerSec",
}

// StatisticsFromDashboard rebuilds a statistics payload from the statistics
// table embedded in a dashboard script. It returns nil, nil when the script
// has no such table.
func StatisticsFromDashboard(src string, warn func(PartialDataWarning)) (*Statistics, error) {
	if warn == nil {
		warn = func(PartialDataWarning) {}
	}

	data, err := jsextract.ExtractTable(src, statisticsTableID)
	if err != nil || data == nil {
		return nil, err
	}

	titles := EndpointColumns()
	if raw, ok := data["titles"].([]any); ok && len(raw) > 0 {
		titles = make([]string, len(raw))
		for i, t := range raw {
			titles[i] = fmt.Sprint(t)
		}
	}

	stats := &Statistics{}
	items, _ := data["items"].([]any)
	for _, item := range items {
		if e := dashboardEntry(titles, item, warn); e != nil {
			stats.Add(e)
		}
	}
	if e := dashboardEntry(titles, data["overall"], warn); e != nil {
		stats.Add(e)
	}
	return stats, nil
}

func dashboardEntry(titles []string, item any, warn func(PartialDataWarning)) *RawStatEntry {
	obj, ok := item.(map[string]any)
	if !ok {
		return nil
	}
	values, ok := obj["data"].([]any)
	if !ok || len(values) == 0 {
		return nil
	}

	entry := &RawStatEntry{Label: fmt.Sprint(values[0])}
	for i, title := range titles {
		if i >= len(values) {
			break
		}
		key := dashboardTitles[title]
		if key == "label" {
			entry.Label = fmt.Sprint(values[i])
			continue
		}
		f := entry.field(key)
		if f == nil {
			continue
		}
		if values[i] == nil {
			*f = nullable.NewNullNullable[float64]()
			continue
		}
		v, err := toFloat(values[i])
		if err != nil {
			warn(PartialDataWarning{Label: entry.Label, Field: key, Err: err})
			continue
		}
		*f = nullable.NewNullableWithValue(v)
	}
	return entry
}
