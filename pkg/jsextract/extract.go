// SPDX-License-Identifier: Apache-2.0

package jsextract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ExtractionError is returned when an embedded table was found but could not
// be turned into JSON.
type ExtractionError struct {
	Table string
	Err   error
}

func (e ExtractionError) Error() string {
	return fmt.Sprintf("extracting table %q: %s", e.Table, e.Err)
}

func (e ExtractionError) Unwrap() error {
	return e.Err
}

// ExtractTable finds the object literal passed to
// `createTable($("#<tableID>"), {...}, function ...)` in a dashboard script
// and returns it decoded. It returns nil, nil when the table is not present.
func ExtractTable(src, tableID string) (map[string]any, error) {
	start := regexp.MustCompile(`createTable\(\$\("#` + regexp.QuoteMeta(tableID) + `"\),\s*`)

	literal, ok := literalAfter(src, start, trailingFunction)
	if !ok {
		return nil, nil
	}
	return decode(tableID, literal)
}

// ExtractVariable finds `var <name> = {...};` in a script and returns the
// object decoded. It returns nil, nil when the variable is not present.
func ExtractVariable(src, name string) (map[string]any, error) {
	start := regexp.MustCompile(`var\s+` + regexp.QuoteMeta(name) + `\s*=\s*`)

	literal, ok := literalAfter(src, start, trailingSemicolon)
	if !ok {
		return nil, nil
	}
	return decode(name, literal)
}

var (
	trailingFunction  = regexp.MustCompile(`^\s*,\s*function\b`)
	trailingSemicolon = regexp.MustCompile(`^\s*;`)
)

// literalAfter returns the object literal that begins right after the first
// match of start and is followed by the trailing token.
func literalAfter(src string, start, trailer *regexp.Regexp) (string, bool) {
	for _, loc := range start.FindAllStringIndex(src, -1) {
		from := loc[1]
		if from >= len(src) || src[from] != '{' {
			continue
		}
		end, ok := matchBrace(src, from)
		if !ok {
			return "", false
		}
		if trailer.MatchString(src[end:]) {
			return src[from:end], true
		}
	}
	return "", false
}

// matchBrace returns the index just past the brace that closes the one at
// src[open], skipping over string literals.
func matchBrace(src string, open int) (int, bool) {
	depth := 0
	for i := open; i < len(src); i++ {
		switch c := src[i]; c {
		case '"', '\'':
			i++
			for i < len(src) && src[i] != c {
				if src[i] == '\\' {
					i++
				}
				i++
			}
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return i + 1, true
			}
		}
	}
	return 0, false
}

func decode(name, literal string) (map[string]any, error) {
	repaired := Repair(literal)

	dec := json.NewDecoder(strings.NewReader(repaired))
	dec.UseNumber()

	var v map[string]any
	if err := dec.Decode(&v); err != nil {
		return nil, ExtractionError{Table: name, Err: err}
	}
	return v, nil
}
