// SPDX-License-Identifier: Apache-2.0

package jsextract

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripTrailingCommas(t *testing.T) {
	t.Parallel()

	tests := []struct {
		Name     string
		Input    string
		Expected string
	}{
		{
			Name:     "object",
			Input:    `{"a": 1,}`,
			Expected: `{"a": 1}`,
		},
		{
			Name:     "array with whitespace and newline",
			Input:    "[1, 2, \n ]",
			Expected: "[1, 2 \n ]",
		},
		{
			Name:     "nested",
			Input:    `{"a": [1,], "b": {"c": 2,},}`,
			Expected: `{"a": [1], "b": {"c": 2}}`,
		},
		{
			Name:     "comma inside a string is kept",
			Input:    `{"a": "x,}", "b": "y,]"}`,
			Expected: `{"a": "x,}", "b": "y,]"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			assert.Equal(t, tt.Expected, stripTrailingCommas(tt.Input))
		})
	}
}

func TestQuoteBareKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		Name     string
		Input    string
		Expected string
	}{
		{
			Name:     "simple keys",
			Input:    `{a: 1, b_2: 2}`,
			Expected: `{"a": 1, "b_2": 2}`,
		},
		{
			Name:     "numeric keys",
			Input:    `{1: "a", 20: "b", 3x: "c"}`,
			Expected: `{"1": "a", "20": "b", "3x": "c"}`,
		},
		{
			Name:     "already quoted keys are left alone",
			Input:    `{"a": 1, 'b': 2}`,
			Expected: `{"a": 1, 'b': 2}`,
		},
		{
			Name:     "key after a string value",
			Input:    `{"a": "x", next: true}`,
			Expected: `{"a": "x", "next": true}`,
		},
		{
			Name:     "identifier-like text inside strings is not quoted",
			Input:    `{"a": "{b: c}"}`,
			Expected: `{"a": "{b: c}"}`,
		},
		{
			Name:     "keys across lines",
			Input:    "{\n  items: [\n  ],\n  overall: {}\n}",
			Expected: "{\n  \"items\": [\n  ],\n  \"overall\": {}\n}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			assert.Equal(t, tt.Expected, quoteBareKeys(tt.Input))
		})
	}
}

func TestSingleToDoubleQuotes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		Name     string
		Input    string
		Expected string
	}{
		{
			Name:     "key and value",
			Input:    `{'a': 'b'}`,
			Expected: `{"a": "b"}`,
		},
		{
			Name:     "escaped single quote",
			Input:    `{"a": 'it\'s'}`,
			Expected: `{"a": "it's"}`,
		},
		{
			Name:     "double quote inside single-quoted string",
			Input:    `{"a": 'say "hi"'}`,
			Expected: `{"a": "say \"hi\""}`,
		},
		{
			Name:     "single quote inside double-quoted string",
			Input:    `{"a": "it's"}`,
			Expected: `{"a": "it's"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			assert.Equal(t, tt.Expected, singleToDoubleQuotes(tt.Input))
		})
	}
}

func TestUndefinedToNull(t *testing.T) {
	t.Parallel()

	tests := []struct {
		Name     string
		Input    string
		Expected string
	}{
		{
			Name:     "value",
			Input:    `{"a": undefined}`,
			Expected: `{"a": null}`,
		},
		{
			Name:     "array element",
			Input:    `[1, undefined, 3]`,
			Expected: `[1, null, 3]`,
		},
		{
			Name:     "word inside a string",
			Input:    `{"a": "undefined"}`,
			Expected: `{"a": "undefined"}`,
		},
		{
			Name:     "longer identifier",
			Input:    `{"a": undefinedValue}`,
			Expected: `{"a": undefinedValue}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			assert.Equal(t, tt.Expected, undefinedToNull(tt.Input))
		})
	}
}

func TestEscapeBackslashes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		Name     string
		Input    string
		Expected string
	}{
		{
			Name:     "valid escapes are kept",
			Input:    `{"a": "line\nnext \"q\" \\ \u00e9"}`,
			Expected: `{"a": "line\nnext \"q\" \\ \u00e9"}`,
		},
		{
			Name:     "windows path",
			Input:    `{"a": "C:\temp\data"}`,
			Expected: `{"a": "C:\temp\\data"}`,
		},
		{
			Name:     "regex fragment",
			Input:    `{"a": "\d+\.\d+"}`,
			Expected: `{"a": "\\d+\\.\\d+"}`,
		},
		{
			Name:     "short unicode escape",
			Input:    `{"a": "\u12"}`,
			Expected: `{"a": "\\u12"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			assert.Equal(t, tt.Expected, escapeBackslashes(tt.Input))
		})
	}
}

func TestEscapeControlCharacters(t *testing.T) {
	t.Parallel()

	input := "{\"a\": \"first\nsecond\tthird\x01\"}"
	expected := `{"a": "first\nsecond\tthird\u0001"}`

	assert.Equal(t, expected, escapeControlCharacters(input))

	// newlines between tokens are not touched
	assert.Equal(t, "{\n\"a\": 1\n}", escapeControlCharacters("{\n\"a\": 1\n}"))
}

func TestRepair(t *testing.T) {
	t.Parallel()

	tests := []struct {
		Name     string
		Input    string
		Expected map[string]any
	}{
		{
			Name: "dashboard style literal",
			Input: `{supportsControllersDiscrimination: true, overall: {data: ['Total', 10, undefined,], isController: false},
				titles: ['Label', "#Samples"],}`,
			Expected: map[string]any{
				"supportsControllersDiscrimination": true,
				"overall": map[string]any{
					"data":         []any{"Total", float64(10), nil},
					"isController": false,
				},
				"titles": []any{"Label", "#Samples"},
			},
		},
		{
			Name:     "numeric keys",
			Input:    `{1: 'a', 2: {3: undefined}}`,
			Expected: map[string]any{"1": "a", "2": map[string]any{"3": nil}},
		},
		{
			Name:  "nested braces inside strings and escaped quotes",
			Input: `{'msg': 'a {b} \'c\' "d"', path: "x\y"}`,
			Expected: map[string]any{
				"msg":  `a {b} 'c' "d"`,
				"path": `x\y`,
			},
		},
		{
			Name:  "multi-line string value",
			Input: "{\"msg\": 'line one\nline two'}",
			Expected: map[string]any{
				"msg": "line one\nline two",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			var got map[string]any
			err := json.Unmarshal([]byte(Repair(tt.Input)), &got)
			assert.NoError(t, err)
			assert.Equal(t, tt.Expected, got)
		})
	}
}

func TestRulesOrder(t *testing.T) {
	t.Parallel()

	names := make([]string, len(Rules))
	for i, r := range Rules {
		names[i] = r.Name
	}

	assert.Equal(t, []string{
		"trailing-commas",
		"bare-keys",
		"single-quotes",
		"undefined",
		"backslashes",
		"control-characters",
	}, names)
}
