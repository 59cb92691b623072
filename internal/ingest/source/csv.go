package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

// ReadCSV reads a delimited text file with a header row. Header labels are
// renamed through mapping.
func ReadCSV(path string, mapping map[string]string) (*Frame, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path is the file the operator asked to ingest
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	frame, err := ParseCSV(f, mapping)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return frame, nil
}

// ParseCSV parses delimited text from r. Records may have fewer or more fields
// than the header; missing trailing fields are null and extra fields are ignored.
func ParseCSV(r io.Reader, mapping map[string]string) (*Frame, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	columns := NewRenamer(mapping).Rename(header)
	frame := &Frame{}
	frame.addColumns(columns)

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		line, _ := cr.FieldPos(0)
		frame.Rows = append(frame.Rows, newRow("", line, columns, record))
	}
	return frame, nil
}
