package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// WriteFile writes content to name inside dir and returns the full path.
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// Sheet is one worksheet of a fixture workbook. The first row is the header.
type Sheet struct {
	Name string
	Rows [][]any
}

// WriteWorkbook writes an xlsx workbook with the given sheets to name inside dir
// and returns the full path.
func WriteWorkbook(t testing.TB, dir, name string, sheets ...Sheet) string {
	t.Helper()
	require.NotEmpty(t, sheets, "workbook needs at least one sheet")

	wb := excelize.NewFile()
	defer func() { _ = wb.Close() }()

	for i, sh := range sheets {
		if i == 0 {
			require.NoError(t, wb.SetSheetName("Sheet1", sh.Name))
		} else {
			_, err := wb.NewSheet(sh.Name)
			require.NoError(t, err)
		}
		for r, row := range sh.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			values := row
			require.NoError(t, wb.SetSheetRow(sh.Name, cell, &values))
		}
	}

	path := filepath.Join(dir, name)
	require.NoError(t, wb.SaveAs(path))
	return path
}
