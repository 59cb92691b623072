package source

import (
	"fmt"
	"slices"

	"github.com/xuri/excelize/v2"
)

// ReadWorkbook reads a spreadsheet workbook.
//
// When sheets is empty, every sheet whose header row carries all raw labels of
// mapping is read. Otherwise exactly the named sheets are read, in the given
// order. Header labels are renamed through mapping. Rows keep sheet order, then
// row order within each sheet. Cells are read raw, so date cells come back as
// serial numbers.
func ReadWorkbook(path string, sheets []string, mapping map[string]string) (*Frame, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer func() { _ = wb.Close() }()

	ren := NewRenamer(mapping)
	available := wb.GetSheetList()
	discover := len(sheets) == 0
	names := sheets
	if discover {
		names = available
	}

	frame := &Frame{}
	for _, name := range names {
		if !slices.Contains(available, name) {
			return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, name)
		}

		rows, err := wb.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
		}

		var header []string
		if len(rows) > 0 {
			header = rows[0]
		}
		if discover && (len(header) == 0 || !ren.Covers(header)) {
			continue
		}

		columns := ren.Rename(header)
		frame.addColumns(columns)
		frame.Sheets = append(frame.Sheets, name)
		for i := 1; i < len(rows); i++ {
			frame.Rows = append(frame.Rows, newRow(name, i+1, columns, rows[i]))
		}
	}

	if len(frame.Sheets) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoMatchingSheets, path)
	}
	return frame, nil
}
