// Package commonmood ingests the CSV export of a mood tracking app: one row per
// day with a labelled 1..7 mood and an optional note.
package commonmood

import (
	"github.com/dailyflow/dailyflow/internal/ingest/contract"
	"github.com/dailyflow/dailyflow/pkg/core"
)

// Name is the dataset name used by the CLI and the ingest audit.
const Name = "common_mood_log"

// Mood bounds.
const (
	MoodMin = 1
	MoodMax = 7
)

// Column names.
const (
	ColDay  = "day"
	ColMood = "mood"
	ColNote = "note"
)

var header = map[string]string{
	"Time": ColDay,
	"Mood": ColMood,
	"Note": ColNote,
}

// Contract returns the ingest contract of the dataset.
func Contract() contract.Contract {
	h := make(map[string]string, len(header))
	for k, v := range header {
		h[k] = v
	}
	return contract.Contract{
		Name:       Name,
		SourceType: core.SourceTypeCSV,
		Required:   []string{ColDay},
		Optional:   []string{ColMood, ColNote},
		Scores:     []string{ColMood},
		ScoreMin:   MoodMin,
		ScoreMax:   MoodMax,
		Header:     h,
	}
}

// Code identifies a common mood log validation issue.
type Code string

// Error codes.
const (
	CodeMissingDay             Code = "missing_day"
	CodeDayDuplicate           Code = "day_duplicate"
	CodeMoodOutOfRange         Code = "mood_is_out_of_range_1_7"
	CodeMissingRequiredColumns Code = "missing_required_columns"
	CodeMoodNotInteger         Code = "mood_is_only_int_value"
)

// Warning codes.
const (
	CodeNoOptionalFields Code = "no_optional_fields"
)
