// Package contract declares the static per-dataset ingest configuration.
package contract

import (
	"slices"

	"github.com/dailyflow/dailyflow/pkg/core"
)

// Contract describes one dataset type: where it comes from and which columns it
// must carry.
type Contract struct {
	Name       string
	SourceType core.SourceType

	// Required columns must all be present after renaming.
	Required []string
	// Optional columns are kept when present.
	Optional []string
	// Scores are the numeric rating columns of the dataset.
	Scores []string
	// ScoreMin and ScoreMax bound every score (inclusive).
	ScoreMin, ScoreMax int

	// Sheets restricts a workbook source to the named sheets. Empty means
	// every sheet whose header carries all of Header's labels.
	Sheets []string
	// Header maps raw source labels to canonical column names.
	Header map[string]string
}

// Columns returns the required columns followed by the optional ones.
func (c Contract) Columns() []string {
	out := make([]string, 0, len(c.Required)+len(c.Optional))
	out = append(out, c.Required...)
	for _, col := range c.Optional {
		if !slices.Contains(out, col) {
			out = append(out, col)
		}
	}
	return out
}

// RawLabels returns the source labels of Header in a stable order.
func (c Contract) RawLabels() []string {
	labels := make([]string, 0, len(c.Header))
	for raw := range c.Header {
		labels = append(labels, raw)
	}
	slices.Sort(labels)
	return labels
}
