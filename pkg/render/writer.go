// SPDX-License-Identifier: Apache-2.0

package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"sigs.k8s.io/yaml"
)

type Format int

const (
	InvalidFormat Format = iota
	TerminalFormat
	MarkdownFormat
	ExcelFormat
	JSONFormat
	YAMLFormat
	HTMLFormat
)

var ErrInvalidFormat = errors.New("invalid output format")

// ParseFormat returns the format with the given name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "terminal", "table":
		return TerminalFormat, nil
	case "markdown", "md":
		return MarkdownFormat, nil
	case "excel", "xlsx":
		return ExcelFormat, nil
	case "json":
		return JSONFormat, nil
	case "yaml", "yml":
		return YAMLFormat, nil
	case "html":
		return HTMLFormat, nil
	}
	return InvalidFormat, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
}

func (f Format) String() string {
	switch f {
	case TerminalFormat:
		return "terminal"
	case MarkdownFormat:
		return "markdown"
	case ExcelFormat:
		return "excel"
	case JSONFormat:
		return "json"
	case YAMLFormat:
		return "yaml"
	case HTMLFormat:
		return "html"
	}
	return "invalid"
}

// Extension returns the file extension for the format
func (f Format) Extension() string {
	switch f {
	case TerminalFormat:
		return "txt"
	case MarkdownFormat:
		return "md"
	case ExcelFormat:
		return "xlsx"
	case JSONFormat:
		return "json"
	case YAMLFormat:
		return "yaml"
	case HTMLFormat:
		return "html"
	}
	return ""
}

// Binary reports whether the format should not be written to a terminal.
func (f Format) Binary() bool {
	return f == ExcelFormat
}

// Writer writes values to the configured io.Writer as YAML or JSON.
type Writer struct {
	writer io.Writer
	format Format
}

// NewWriter creates a new Writer
func NewWriter(w io.Writer, f Format) *Writer {
	return &Writer{
		writer: w,
		format: f,
	}
}

func (w *Writer) Write(v any) error {
	switch w.format {
	case YAMLFormat:
		yml, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		_, err = w.writer.Write(yml)
		return err
	case JSONFormat:
		enc := json.NewEncoder(w.writer)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
	default:
		return ErrInvalidFormat
	}
	return nil
}
