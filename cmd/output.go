// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/xataio/jmeter-analyzer/cmd/flags"
	"github.com/xataio/jmeter-analyzer/pkg/render"
	"github.com/xataio/jmeter-analyzer/pkg/table"
)

// output describes what a command renders.
type output struct {
	// Title names the HTML chart page.
	Title string
	// Names are the compared report names, empty for a single report.
	Names []string
	// Value is written for JSON and YAML output.
	Value  any
	Tables []*table.Table
}

func outputFormat() (render.Format, error) {
	return render.ParseFormat(flags.Format())
}

// writeOutput renders out in format to path, or to stdout when path is
// empty.
func writeOutput(path string, format render.Format, out output) (err error) {
	if format.Binary() && path == "" {
		return errBinaryToTerminal
	}
	if format == render.HTMLFormat && len(out.Names) == 0 {
		return errChartsNeedReports
	}

	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		w = f
	}

	switch format {
	case render.TerminalFormat:
		return render.Terminal(w, out.Tables...)
	case render.MarkdownFormat:
		return render.Markdown(w, out.Tables...)
	case render.ExcelFormat:
		return render.Excel(w, out.Tables, render.ExcelOptions{ReportNames: out.Names})
	case render.HTMLFormat:
		return render.Charts(w, out.Title, out.Names, out.Tables...)
	default:
		return render.NewWriter(w, format).Write(out.Value)
	}
}
