// SPDX-License-Identifier: Apache-2.0

package render

import (
	"bufio"
	"io"
	"strings"

	"github.com/xataio/jmeter-analyzer/pkg/table"
)

var markdownEscaper = strings.NewReplacer("|", `\|`, "\n", " ", "\r", "")

// Markdown writes each table as a level one heading followed by a GitHub
// flavoured pipe table. Empty tables are skipped.
func Markdown(w io.Writer, tables ...*table.Table) error {
	bw := bufio.NewWriter(w)
	for _, t := range tables {
		if t.Empty() {
			continue
		}
		if t.Title != "" {
			bw.WriteString("# " + t.Title + "\n\n")
		}

		rows := t.Strings()
		writeMarkdownRow(bw, rows[0])

		sep := make([]string, len(t.Columns))
		for i := range sep {
			sep[i] = "---"
			if len(t.Rows) > 0 && isNumericColumn(t, i) {
				sep[i] = "--:"
			}
		}
		writeMarkdownRow(bw, sep)

		for _, r := range rows[1:] {
			writeMarkdownRow(bw, r)
		}
		bw.WriteString("\n")
	}
	return bw.Flush()
}

func writeMarkdownRow(w *bufio.Writer, cells []string) {
	w.WriteString("|")
	for _, c := range cells {
		w.WriteString(" " + markdownEscaper.Replace(c) + " |")
	}
	w.WriteString("\n")
}

// isNumericColumn reports whether every non-blank cell of column i is a
// number.
func isNumericColumn(t *table.Table, i int) bool {
	numeric := false
	for _, r := range t.Rows {
		switch r[i].Kind() {
		case table.KindBlank:
		case table.KindInt, table.KindFloat:
			numeric = true
		default:
			return false
		}
	}
	return numeric
}
