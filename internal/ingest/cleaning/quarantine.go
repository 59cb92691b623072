package cleaning

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dailyflow/dailyflow/internal/ingest/dataset"
)

// QuarantineFileName returns the export file name for a dataset run started at ts.
func QuarantineFileName(datasetName string, ts time.Time) string {
	return fmt.Sprintf("%s_quarantine_%s.csv", datasetName, ts.UTC().Format("20060102T150405Z"))
}

// WriteQuarantine writes the quarantined rows of res to a CSV file in dir and
// returns its path. The first column is the source row index. Nothing is written
// when there are no quarantined rows.
func WriteQuarantine[R dataset.Record](dir, datasetName string, columns []string, res *Result[R], ts time.Time) (string, error) {
	if len(res.Quarantined) == 0 {
		return "", nil
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create quarantine directory: %w", err)
	}

	path := filepath.Join(dir, QuarantineFileName(datasetName, ts))
	f, err := os.Create(path) //nolint:gosec // G304: path is built from configured dir
	if err != nil {
		return "", fmt.Errorf("failed to create quarantine file: %w", err)
	}

	w := csv.NewWriter(f)
	header := append([]string{"source_row"}, columns...)
	if err := w.Write(header); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed to write quarantine header: %w", err)
	}

	record := make([]string, len(header))
	for i, row := range res.Quarantined {
		record[0] = strconv.Itoa(res.QuarantinedIndex[i])
		for j, col := range columns {
			record[j+1] = row.Value(col).String()
		}
		if err := w.Write(record); err != nil {
			_ = f.Close()
			return "", fmt.Errorf("failed to write quarantine row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed to flush quarantine file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close quarantine file: %w", err)
	}
	return path, nil
}
