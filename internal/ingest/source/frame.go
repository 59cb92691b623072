// Package source reads external files into raw string frames with canonical
// column names.
package source

import (
	"errors"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Errors returned by readers.
var (
	// ErrNoMatchingSheets is returned when no workbook sheet carries the expected header.
	ErrNoMatchingSheets = errors.New("no sheets with the expected columns")
	// ErrSheetNotFound is returned when a requested sheet does not exist.
	ErrSheetNotFound = errors.New("sheet not found")
	// ErrNoHeader is returned for a file without a header row.
	ErrNoHeader = errors.New("file has no header row")
)

// Row is one data row of a frame.
type Row struct {
	// Sheet is the workbook sheet the row came from; empty for delimited text.
	Sheet string
	// Line is the 1-based line (or sheet row) number in the source.
	Line int

	Cells map[string]string
}

// Get returns the raw cell for column and whether it is non-blank.
func (r Row) Get(column string) (string, bool) {
	v, ok := r.Cells[column]
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// Blank reports whether every cell of columns is blank.
func (r Row) Blank(columns []string) bool {
	for _, col := range columns {
		if _, ok := r.Get(col); ok {
			return false
		}
	}
	return true
}

// Frame is the untyped result of reading a source file.
type Frame struct {
	// Columns lists the canonical column names in source order. For a multi-sheet
	// workbook it is the union of the header of every sheet read.
	Columns []string
	Rows    []Row
	// Sheets lists the sheets read, in order.
	Sheets []string
}

// HasColumn reports whether column appeared in the source header.
func (f *Frame) HasColumn(column string) bool {
	return slices.Contains(f.Columns, column)
}

func (f *Frame) addColumns(cols []string) {
	for _, c := range cols {
		if c != "" && !f.HasColumn(c) {
			f.Columns = append(f.Columns, c)
		}
	}
}

// NormalizeLabel canonicalizes a header label for comparison: surrounding
// whitespace and a byte order mark are removed, the text is NFC-normalized and
// case-folded.
func NormalizeLabel(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.TrimSpace(s)
	return cases.Fold().String(norm.NFC.String(s))
}

// Renamer maps raw header labels to canonical column names.
type Renamer struct {
	byLabel map[string]string
}

// NewRenamer builds a renamer from a raw-label to canonical-name mapping.
func NewRenamer(mapping map[string]string) *Renamer {
	r := &Renamer{byLabel: make(map[string]string, len(mapping))}
	for raw, canonical := range mapping {
		r.byLabel[NormalizeLabel(raw)] = canonical
	}
	return r
}

// Rename returns the canonical names for header. Unmapped labels are kept,
// trimmed.
func (r *Renamer) Rename(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		if c, ok := r.byLabel[NormalizeLabel(h)]; ok {
			out[i] = c
			continue
		}
		out[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	return out
}

// Covers reports whether header carries every mapped raw label.
func (r *Renamer) Covers(header []string) bool {
	present := make(map[string]struct{}, len(header))
	for _, h := range header {
		present[NormalizeLabel(h)] = struct{}{}
	}
	for label := range r.byLabel {
		if _, ok := present[label]; !ok {
			return false
		}
	}
	return true
}

func newRow(sheet string, line int, columns, cells []string) Row {
	row := Row{Sheet: sheet, Line: line, Cells: make(map[string]string, len(columns))}
	for i, col := range columns {
		if col == "" {
			continue
		}
		if i < len(cells) {
			row.Cells[col] = cells[i]
		}
	}
	return row
}
