package moodlog

import (
	"github.com/dailyflow/dailyflow/internal/ingest/dataset"
	"github.com/dailyflow/dailyflow/internal/ingest/validate"
	"github.com/dailyflow/dailyflow/pkg/core"
)

// MostlyMissingThreshold is the share of empty scores (sleep excluded) above
// which a row is warned.
const MostlyMissingThreshold = 0.5

// moodsWithoutSleep returns the score columns other than sleep.
func moodsWithoutSleep() []string {
	out := make([]string, 0, len(Scores)-1)
	for _, c := range Scores {
		if c != ColSleep {
			out = append(out, c)
		}
	}
	return out
}

// Spec returns the validation plan of the dataset.
func Spec() validate.Spec[Code] {
	c := Contract()
	return validate.Spec[Code]{
		Required:           c.Required,
		MissingColumnsCode: CodeMissingRequiredColumns,
		Errors: []validate.Check[Code]{
			{Kind: validate.KindMissing, Code: CodeMissingDay, Severity: core.SeverityError, Columns: []string{ColDay}},
			{Kind: validate.KindDuplicate, Code: CodeDayDuplicate, Severity: core.SeverityError, Columns: []string{ColDay}},
			{
				Kind: validate.KindOutOfRange, Code: CodeMoodOutOfRange, Severity: core.SeverityError,
				Columns: c.Scores, Min: ScoreMin, Max: ScoreMax,
			},
			{Kind: validate.KindNotInteger, Code: CodeMoodNotInteger, Severity: core.SeverityError, Columns: c.Scores},
			{
				Kind: validate.KindAllMissing, Code: CodeNoMoodValues, Severity: core.SeverityError,
				Columns: c.Scores, Message: "None of the mood columns has a value",
			},
		},
		Warnings: []validate.Check[Code]{
			{
				Kind: validate.KindMostlyMissing, Code: CodeManyMissingScores, Severity: core.SeverityWarning,
				Columns: moodsWithoutSleep(), Threshold: MostlyMissingThreshold,
				Message: "More than 50% of mood values are empty",
			},
			{
				Kind: validate.KindOnlyColumn, Code: CodeSleepOnly, Severity: core.SeverityWarning,
				Target: ColSleep, Columns: moodsWithoutSleep(),
				Message: "Only sleep has a value, the other moods are empty",
			},
		},
	}
}

// Metrics is the validation metrics snapshot of a mood log run.
type Metrics struct {
	validate.Metrics
	validate.DayStats

	RowsWithAnyMood         int `json:"rows_with_any_mood"`
	RowsWithAllMoodsMissing int `json:"rows_with_all_moods_missing"`
	RowsOutOfRange          int `json:"rows_out_of_range"`
	RowsNonInteger          int `json:"rows_non_integer"`
	RowsMostlyEmptyMoods    int `json:"rows_mostly_empty_moods"`
	RowsSleepOnly           int `json:"rows_sleep_only"`
	RowsMissingDay          int `json:"rows_missing_day"`
	RowsDuplicateDay        int `json:"rows_duplicate_day"`
}

// Validate runs the mood log checks over b.
func Validate(b *dataset.Batch[Record]) (*validate.Result[Code], Metrics) {
	res := validate.Validate[Code](b, Spec())
	return res, ComputeMetrics(b, res)
}

// ComputeMetrics derives the dataset metrics from a validation result.
func ComputeMetrics(b *dataset.Batch[Record], res *validate.Result[Code]) Metrics {
	m := Metrics{Metrics: res.Metrics}
	if b.Len() == 0 || len(res.MissingColumns) > 0 {
		return m
	}

	m.DayStats = validate.SummarizeDays(b, ColDay)
	m.RowsWithAnyMood = b.Len() - validate.AllMissingMask(b, Scores).Count()
	m.RowsWithAllMoodsMissing = res.CodeCount(CodeNoMoodValues)
	m.RowsOutOfRange = res.CodeCount(CodeMoodOutOfRange)
	m.RowsNonInteger = res.CodeCount(CodeMoodNotInteger)
	m.RowsMostlyEmptyMoods = res.CodeCount(CodeManyMissingScores)
	m.RowsSleepOnly = res.CodeCount(CodeSleepOnly)
	m.RowsMissingDay = res.CodeCount(CodeMissingDay)
	m.RowsDuplicateDay = res.CodeCount(CodeDayDuplicate)
	return m
}
