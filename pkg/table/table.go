// SPDX-License-Identifier: Apache-2.0

package table

import (
	"encoding/json"
	"strconv"
)

// Table is an ordered set of columns and rows, the shape every renderer
// consumes.
type Table struct {
	Title   string   `json:"title"`
	Columns []string `json:"columns"`
	Rows    [][]Cell `json:"rows"`
}

// New returns an empty table with the given title and columns.
func New(title string, columns ...string) *Table {
	return &Table{
		Title:   title,
		Columns: columns,
		Rows:    [][]Cell{},
	}
}

// Append adds a row. Rows shorter than the column list are padded with
// blanks.
func (t *Table) Append(cells ...Cell) {
	for len(cells) < len(t.Columns) {
		cells = append(cells, Blank())
	}
	t.Rows = append(t.Rows, cells)
}

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool {
	return t == nil || len(t.Rows) == 0
}

// Column returns the index of the named column, or -1.
func (t *Table) Column(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Strings returns the rendered cells, header first.
func (t *Table) Strings() [][]string {
	out := make([][]string, 0, len(t.Rows)+1)
	out = append(out, append([]string(nil), t.Columns...))
	for _, row := range t.Rows {
		r := make([]string, len(row))
		for i, c := range row {
			r[i] = c.String()
		}
		out = append(out, r)
	}
	return out
}

type Kind int

const (
	KindBlank Kind = iota
	KindString
	KindInt
	KindFloat
)

// Cell is a single typed table value.
type Cell struct {
	kind      Kind
	str       string
	i         int64
	f         float64
	precision int
}

func Blank() Cell { return Cell{kind: KindBlank} }

func String(s string) Cell { return Cell{kind: KindString, str: s} }

func Int(i int64) Cell { return Cell{kind: KindInt, i: i} }

// Float returns a numeric cell rendered with a fixed number of decimals.
func Float(f float64, precision int) Cell {
	return Cell{kind: KindFloat, f: f, precision: precision}
}

func (c Cell) Kind() Kind { return c.kind }

func (c Cell) String() string {
	switch c.kind {
	case KindString:
		return c.str
	case KindInt:
		return strconv.FormatInt(c.i, 10)
	case KindFloat:
		return strconv.FormatFloat(c.f, 'f', c.precision, 64)
	default:
		return ""
	}
}

// Number returns the numeric value of int and float cells.
func (c Cell) Number() (float64, bool) {
	switch c.kind {
	case KindInt:
		return float64(c.i), true
	case KindFloat:
		return c.f, true
	default:
		return 0, false
	}
}

func (c Cell) MarshalJSON() ([]byte, error) {
	switch c.kind {
	case KindString:
		return json.Marshal(c.str)
	case KindInt:
		return json.Marshal(c.i)
	case KindFloat:
		// keep the rendered precision in the output
		return []byte(c.String()), nil
	default:
		return []byte("null"), nil
	}
}
