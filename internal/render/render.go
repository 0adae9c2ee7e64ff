// Package render writes ordered tag maps as a terminal table, CSV or JSON.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/starford/taskparser/internal/apperr"
	"github.com/starford/taskparser/internal/tags"
)

// Format selects an output renderer.
type Format string

const (
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
)

// Formats lists the accepted format names.
var Formats = []string{string(FormatTable), string(FormatCSV), string(FormatJSON), "tabular"}

// ParseFormat resolves a format name. "tabular" is accepted for "table" and
// the empty string selects the table.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "table", "tabular":
		return FormatTable, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("render: %q: %w", name, apperr.ErrUnknownFormat)
}

// Options tune the table renderer.
type Options struct {
	// Columns is the terminal width. Zero or less means unlimited.
	Columns int
}

// Render writes rows in the given format, showing only the named tags in
// order. Tags missing from a row render as empty values.
func Render(w io.Writer, format Format, rows []tags.Map, show []string, opts Options) error {
	switch format {
	case FormatTable, "":
		return Table(w, rows, show, opts)
	case FormatCSV:
		return CSV(w, rows, show)
	case FormatJSON:
		return JSON(w, rows, show)
	}
	return fmt.Errorf("render: %q: %w", format, apperr.ErrUnknownFormat)
}

// ParseTags splits a comma-separated tag list, dropping blanks.
func ParseTags(list string) []string {
	var out []string
	for _, t := range strings.Split(list, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
