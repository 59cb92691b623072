// Package moodlog ingests the daily state workbook: one sheet per month, one
// row per day, eleven 1..4 scores per row.
package moodlog

import (
	"github.com/dailyflow/dailyflow/internal/ingest/contract"
	"github.com/dailyflow/dailyflow/pkg/core"
)

// Name is the dataset name used by the CLI and the ingest audit.
const Name = "mood_log"

// Score bounds.
const (
	ScoreMin = 1
	ScoreMax = 4
)

// Column names.
const (
	ColDay        = "day"
	ColJoy        = "joy"
	ColInterest   = "interest"
	ColCalm       = "calm"
	ColEnergy     = "energy"
	ColAnxiety    = "anxiety"
	ColSadness    = "sadness"
	ColIrritation = "irritation"
	ColFatigue    = "fatigue"
	ColFear       = "fear"
	ColConfidence = "confidence"
	ColSleep      = "sleep"
)

// Scores lists the score columns in table order.
var Scores = []string{
	ColJoy, ColInterest, ColCalm, ColEnergy, ColAnxiety, ColSadness,
	ColIrritation, ColFatigue, ColFear, ColConfidence, ColSleep,
}

// header maps the workbook labels to column names.
var header = map[string]string{
	"дата":          ColDay,
	"Радість":       ColJoy,
	"Зацікавлення":  ColInterest,
	"Спокій":        ColCalm,
	"Енергійність":  ColEnergy,
	"Тривога":       ColAnxiety,
	"Засмучення":    ColSadness,
	"Роздратування": ColIrritation,
	"Втома":         ColFatigue,
	"Страх":         ColFear,
	"Впевненість":   ColConfidence,
	"Сон":           ColSleep,
}

// Contract returns the ingest contract of the dataset.
func Contract() contract.Contract {
	h := make(map[string]string, len(header))
	for k, v := range header {
		h[k] = v
	}
	return contract.Contract{
		Name:       Name,
		SourceType: core.SourceTypeExcel,
		Required:   append([]string{ColDay}, Scores...),
		Scores:     append([]string(nil), Scores...),
		ScoreMin:   ScoreMin,
		ScoreMax:   ScoreMax,
		Header:     h,
	}
}

// Code identifies a mood log validation issue.
type Code string

// Error codes.
const (
	CodeMissingDay             Code = "missing_day"
	CodeDayDuplicate           Code = "day_duplicate"
	CodeNoMoodValues           Code = "no_moods_values"
	CodeMoodOutOfRange         Code = "mood_is_out_of_range_1_4"
	CodeMissingRequiredColumns Code = "missing_required_columns"
	CodeMoodNotInteger         Code = "mood_is_only_int_value"
)

// Warning codes.
const (
	CodeSleepOnly         Code = "sleep_only_value"
	CodeManyMissingScores Code = "many_nan_mood_values"
)
