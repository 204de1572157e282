// SPDX-License-Identifier: Apache-2.0

package render

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"

	"github.com/xataio/jmeter-analyzer/pkg/table"
)

// Terminal prints each table under a section header.
func Terminal(w io.Writer, tables ...*table.Table) error {
	for _, t := range tables {
		if t.Title != "" {
			pterm.Fprintln(w, pterm.DefaultSection.Sprint(t.Title))
		}
		if t.Empty() {
			pterm.Fprintln(w, pterm.Gray("No data"))
			continue
		}

		out, err := pterm.DefaultTable.
			WithHasHeader().
			WithBoxed().
			WithData(pterm.TableData(t.Strings())).
			Srender()
		if err != nil {
			return fmt.Errorf("rendering %q: %w", t.Title, err)
		}
		pterm.Fprintln(w, out)
	}
	return nil
}
