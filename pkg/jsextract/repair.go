// SPDX-License-Identifier: Apache-2.0

package jsextract

import (
	"regexp"
	"strings"
)

// Rule is a single rewrite applied to a JavaScript object literal on its way
// to strict JSON.
type Rule struct {
	Name  string
	Apply func(string) string
}

// Rules is the ordered list of rewrites performed by Repair.
var Rules = []Rule{
	{Name: "trailing-commas", Apply: stripTrailingCommas},
	{Name: "bare-keys", Apply: quoteBareKeys},
	{Name: "single-quotes", Apply: singleToDoubleQuotes},
	{Name: "undefined", Apply: undefinedToNull},
	{Name: "backslashes", Apply: escapeBackslashes},
	{Name: "control-characters", Apply: escapeControlCharacters},
}

// Repair rewrites a JavaScript object literal into strict JSON by applying
// every rule in order.
func Repair(literal string) string {
	for _, r := range Rules {
		literal = r.Apply(literal)
	}
	return literal
}

var (
	trailingCommaRe = regexp.MustCompile(`,(\s*[}\]])`)
	bareKeyRe       = regexp.MustCompile(`([{,]\s*)([A-Za-z0-9_$]+)(\s*:)`)
	undefinedRe     = regexp.MustCompile(`\bundefined\b`)
)

func stripTrailingCommas(s string) string {
	return rewriteCode(s, func(code string) string {
		return trailingCommaRe.ReplaceAllString(code, "$1")
	})
}

func quoteBareKeys(s string) string {
	return rewriteCode(s, func(code string) string {
		return bareKeyRe.ReplaceAllString(code, `$1"$2"$3`)
	})
}

func undefinedToNull(s string) string {
	return rewriteCode(s, func(code string) string {
		return undefinedRe.ReplaceAllString(code, "null")
	})
}

// singleToDoubleQuotes turns 'text' into "text", unescaping \' and escaping
// bare double quotes found in the body.
func singleToDoubleQuotes(s string) string {
	return rewriteStrings(s, func(quote byte, body string) string {
		if quote != '\'' {
			return `"` + body + `"`
		}
		var b strings.Builder
		b.WriteByte('"')
		for i := 0; i < len(body); i++ {
			c := body[i]
			switch {
			case c == '\\' && i+1 < len(body) && body[i+1] == '\'':
				b.WriteByte('\'')
				i++
			case c == '\\' && i+1 < len(body):
				b.WriteByte(c)
				b.WriteByte(body[i+1])
				i++
			case c == '"':
				b.WriteString(`\"`)
			default:
				b.WriteByte(c)
			}
		}
		b.WriteByte('"')
		return b.String()
	})
}

// escapeBackslashes doubles every backslash that does not start a valid JSON
// escape sequence, e.g. Windows paths or regex fragments in error messages.
func escapeBackslashes(s string) string {
	return rewriteStrings(s, func(quote byte, body string) string {
		var b strings.Builder
		b.WriteByte(quote)
		for i := 0; i < len(body); i++ {
			c := body[i]
			if c != '\\' {
				b.WriteByte(c)
				continue
			}
			if i+1 < len(body) && validEscape(body[i+1:]) {
				b.WriteByte(c)
				b.WriteByte(body[i+1])
				i++
				continue
			}
			b.WriteString(`\\`)
		}
		b.WriteByte(quote)
		return b.String()
	})
}

func validEscape(rest string) bool {
	switch rest[0] {
	case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
		return true
	case '\'':
		// only meaningful inside single-quoted strings, which are rewritten
		// before this rule runs
		return false
	case 'u':
		if len(rest) < 5 {
			return false
		}
		for _, h := range rest[1:5] {
			if !strings.ContainsRune("0123456789abcdefABCDEF", h) {
				return false
			}
		}
		return true
	}
	return false
}

func escapeControlCharacters(s string) string {
	return rewriteStrings(s, func(quote byte, body string) string {
		var b strings.Builder
		b.WriteByte(quote)
		for i := 0; i < len(body); i++ {
			switch c := body[i]; c {
			case '\n':
				b.WriteString(`\n`)
			case '\r':
				b.WriteString(`\r`)
			case '\t':
				b.WriteString(`\t`)
			default:
				if c < 0x20 {
					b.WriteString(`\u00`)
					b.WriteByte("0123456789abcdef"[c>>4])
					b.WriteByte("0123456789abcdef"[c&0xf])
					continue
				}
				b.WriteByte(c)
			}
		}
		b.WriteByte(quote)
		return b.String()
	})
}

// segment is a run of source text that is either code or a complete string
// literal including its quotes.
type segment struct {
	text     string
	isString bool
}

// split cuts s into code and string-literal segments. An unterminated string
// runs to the end of the input.
func split(s string) []segment {
	var segs []segment
	start := 0
	for i := 0; i < len(s); i++ {
		q := s[i]
		if q != '"' && q != '\'' {
			continue
		}
		if i > start {
			segs = append(segs, segment{text: s[start:i]})
		}
		j := i + 1
		for j < len(s) && s[j] != q {
			if s[j] == '\\' {
				j++
			}
			j++
		}
		end := min(j+1, len(s))
		segs = append(segs, segment{text: s[i:end], isString: true})
		start = end
		i = end - 1
	}
	if start < len(s) {
		segs = append(segs, segment{text: s[start:]})
	}
	return segs
}

// rewriteCode applies fn to the text outside string literals. Code segments
// are joined with a placeholder for each string so that patterns spanning a
// literal (for example `, "k"` before a key) still see a token there.
func rewriteCode(s string, fn func(string) string) string {
	segs := split(s)
	var code strings.Builder
	var strs []string
	for _, seg := range segs {
		if seg.isString {
			code.WriteString(placeholder)
			strs = append(strs, seg.text)
			continue
		}
		code.WriteString(seg.text)
	}
	out := fn(code.String())

	var b strings.Builder
	parts := strings.Split(out, placeholder)
	for i, p := range parts {
		b.WriteString(p)
		if i < len(strs) {
			b.WriteString(strs[i])
		}
	}
	return b.String()
}

// placeholder stands in for a string literal while code rules run. It holds
// no identifier, bracket or comma characters, so no code rule can match it.
const placeholder = "\x00\x00"

// rewriteStrings applies fn to the body of every complete string literal.
func rewriteStrings(s string, fn func(quote byte, body string) string) string {
	var b strings.Builder
	for _, seg := range split(s) {
		t := seg.text
		if !seg.isString || len(t) < 2 || t[len(t)-1] != t[0] {
			b.WriteString(t)
			continue
		}
		b.WriteString(fn(t[0], t[1:len(t)-1]))
	}
	return b.String()
}
