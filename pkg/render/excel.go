// SPDX-License-Identifier: Apache-2.0

package render

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/xataio/jmeter-analyzer/pkg/table"
)

const (
	maxSheetName       = 31
	comparisonInfoName = "Comparison Info"
	defaultSheet       = "Sheet1"
)

// Fills alternated across metric column groups of comparison sheets.
var groupFills = []string{"E3F0FD", "E2F7E1"}

// ExcelOptions configures Excel.
type ExcelOptions struct {
	// ReportNames marks the workbook as a comparison of the named reports. A
	// "Comparison Info" sheet lists them and the value columns of each sheet
	// are shaded in groups of len(ReportNames).
	ReportNames []string
}

// Excel writes a workbook with one sheet per non-empty table.
func Excel(w io.Writer, tables []*table.Table, opts ExcelOptions) error {
	f := excelize.NewFile()
	defer f.Close()

	used := make(map[string]bool)
	var sheets []string
	addSheet := func(name string) (string, error) {
		name = uniqueSheetName(name, used)
		if len(sheets) == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return "", err
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return "", err
		}
		sheets = append(sheets, name)
		return name, nil
	}

	if len(opts.ReportNames) > 0 {
		sheet, err := addSheet(comparisonInfoName)
		if err != nil {
			return err
		}
		if err := writeComparisonInfo(f, sheet, opts.ReportNames); err != nil {
			return err
		}
	}

	fills, err := newFillStyles(f)
	if err != nil {
		return err
	}

	for _, t := range tables {
		if t.Empty() {
			continue
		}
		sheet, err := addSheet(t.Title)
		if err != nil {
			return err
		}
		if err := writeSheet(f, sheet, t); err != nil {
			return fmt.Errorf("writing sheet %q: %w", sheet, err)
		}
		if len(opts.ReportNames) > 0 {
			if err := shadeGroups(f, sheet, t, len(opts.ReportNames), fills); err != nil {
				return fmt.Errorf("styling sheet %q: %w", sheet, err)
			}
		}
	}

	f.SetActiveSheet(0)
	return f.Write(w)
}

func uniqueSheetName(name string, used map[string]bool) string {
	if name == "" {
		name = "Table"
	}
	base := truncate(name, maxSheetName)
	candidate := base
	for i := 2; used[candidate]; i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		candidate = truncate(base, maxSheetName-len(suffix)) + suffix
	}
	used[candidate] = true
	return candidate
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func writeComparisonInfo(f *excelize.File, sheet string, names []string) error {
	header := make([]any, len(names))
	values := make([]any, len(names))
	for i, n := range names {
		header[i] = fmt.Sprintf("Report %d", i+1)
		values[i] = n
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	return f.SetSheetRow(sheet, "A2", &values)
}

func writeSheet(f *excelize.File, sheet string, t *table.Table) error {
	header := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for r, row := range t.Rows {
		for i, c := range row {
			var v any
			switch c.Kind() {
			case table.KindBlank:
				continue
			case table.KindString:
				v = c.String()
			default:
				v, _ = c.Number()
			}

			cell, err := excelize.CoordinatesToCellName(i+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	if len(t.Columns) > 0 {
		return f.SetColWidth(sheet, "A", "A", 32)
	}
	return nil
}

func newFillStyles(f *excelize.File) ([]int, error) {
	ids := make([]int, len(groupFills))
	for i, color := range groupFills {
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}

// shadeGroups fills the value columns of t, starting at the second column,
// in groups of n with alternating colors.
func shadeGroups(f *excelize.File, sheet string, t *table.Table, n int, fills []int) error {
	if len(t.Rows) == 0 {
		return nil
	}
	for group, first := 0, 1; first < len(t.Columns); group, first = group+1, first+n {
		last := min(first+n, len(t.Columns)) - 1

		from, err := excelize.CoordinatesToCellName(first+1, 2)
		if err != nil {
			return err
		}
		to, err := excelize.CoordinatesToCellName(last+1, len(t.Rows)+1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, from, to, fills[group%len(fills)]); err != nil {
			return err
		}
	}
	return nil
}
