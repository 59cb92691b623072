package commonmood

import (
	"github.com/dailyflow/dailyflow/internal/ingest/dataset"
	"github.com/dailyflow/dailyflow/internal/ingest/validate"
	"github.com/dailyflow/dailyflow/pkg/core"
)

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
				Columns: []string{ColMood}, Min: MoodMin, Max: MoodMax,
			},
			{Kind: validate.KindNotInteger, Code: CodeMoodNotInteger, Severity: core.SeverityError, Columns: []string{ColMood}},
		},
		Warnings: []validate.Check[Code]{
			{
				Kind: validate.KindAllMissing, Code: CodeNoOptionalFields, Severity: core.SeverityWarning,
				Columns: c.Optional, Message: "There are no optional fields in the row",
			},
		},
	}
}

// Metrics is the validation metrics snapshot of a common mood log run.
type Metrics struct {
	validate.Metrics
	validate.DayStats

	RowsOutOfRange           int `json:"rows_out_of_range"`
	RowsNonInteger           int `json:"rows_non_integer"`
	RowsMissingDay           int `json:"rows_missing_day"`
	RowsDuplicateDay         int `json:"rows_duplicate_day"`
	RowsWithNoOptionalFields int `json:"rows_with_no_optional_fields"`
}

// Validate runs the common mood log checks over b.
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
	m.RowsOutOfRange = res.CodeCount(CodeMoodOutOfRange)
	m.RowsNonInteger = res.CodeCount(CodeMoodNotInteger)
	m.RowsMissingDay = res.CodeCount(CodeMissingDay)
	m.RowsDuplicateDay = res.CodeCount(CodeDayDuplicate)
	m.RowsWithNoOptionalFields = res.CodeCount(CodeNoOptionalFields)
	return m
}
