package validate

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dailyflow/dailyflow/internal/ingest/dataset"
	"github.com/dailyflow/dailyflow/pkg/core"
)

// Spec is the dataset-specific check plan consumed by Validate.
type Spec[C Code] struct {
	// Required lists the columns that must exist before any check runs.
	Required []string
	// MissingColumnsCode is reported when a required column is absent.
	MissingColumnsCode C
	// Errors and Warnings run in declared order.
	Errors   []Check[C]
	Warnings []Check[C]
}

// Metrics are the summary counts shared by every dataset.
type Metrics struct {
	RowsTotal           int  `json:"rows_total"`
	FileEmpty           bool `json:"file_empty"`
	RowsBad             int  `json:"rows_bad"`
	RowsGood            int  `json:"rows_good"`
	ErrorCount          int  `json:"error_count"`
	WarningCount        int  `json:"warning_count"`
	HasRequiredColumns  bool `json:"has_required_columns"`
	ColumnsMissingCount int  `json:"columns_missing_count"`
}

// Result is the outcome of one validation run.
type Result[C Code] struct {
	OK          bool
	Issues      []Issue[C]
	BadRows     dataset.Mask
	WarningRows dataset.Mask
	Metrics     Metrics

	// MissingColumns lists the required columns that were absent.
	MissingColumns []string

	masks map[C]dataset.Mask
}

// Mask returns the rows flagged by code. Codes that did not fire yield an
// all-false mask of the dataset length.
func (r *Result[C]) Mask(code C) dataset.Mask {
	if m, ok := r.masks[code]; ok {
		return m
	}
	return dataset.NewMask(len(r.BadRows))
}

// CodeCount returns the number of rows flagged by code.
func (r *Result[C]) CodeCount(code C) int {
	if m, ok := r.masks[code]; ok {
		return m.Count()
	}
	return 0
}

// Issue returns the issue reported for code, if any.
func (r *Result[C]) Issue(code C) (Issue[C], bool) {
	for _, is := range r.Issues {
		if is.Code == code {
			return is, true
		}
	}
	return Issue[C]{}, false
}

// Errors returns the error-severity issues.
func (r *Result[C]) Errors() []Issue[C] {
	return r.bySeverity(core.SeverityError)
}

// Warnings returns the warning-severity issues.
func (r *Result[C]) Warnings() []Issue[C] {
	return r.bySeverity(core.SeverityWarning)
}

func (r *Result[C]) bySeverity(s core.Severity) []Issue[C] {
	var out []Issue[C]
	for _, is := range r.Issues {
		if is.Severity == s {
			out = append(out, is)
		}
	}
	return out
}

// Validate runs spec against t.
//
// When a required column is absent Validate returns a failing result with a
// single issue and every row marked bad; no other check runs. Otherwise error
// checks are merged into BadRows and warning checks into WarningRows, one issue
// per code.
func Validate[C Code](t dataset.Table, spec Spec[C]) *Result[C] {
	n := t.Len()
	res := &Result[C]{
		BadRows:     dataset.NewMask(n),
		WarningRows: dataset.NewMask(n),
		masks:       make(map[C]dataset.Mask),
	}

	for _, col := range spec.Required {
		if !t.HasColumn(col) {
			res.MissingColumns = append(res.MissingColumns, col)
		}
	}
	if len(res.MissingColumns) > 0 {
		res.BadRows = dataset.FullMask(n)
		res.Issues = []Issue[C]{{
			Code:     spec.MissingColumnsCode,
			Severity: core.SeverityError,
			Message:  fmt.Sprintf("Missing required columns: %s", strings.Join(res.MissingColumns, ", ")),
			Count:    n,
			Sample:   res.BadRows.Indices(SampleSize),
			Columns:  slices.Clone(res.MissingColumns),
		}}
		res.masks[spec.MissingColumnsCode] = res.BadRows
		res.Metrics = Metrics{
			RowsTotal:           n,
			FileEmpty:           n == 0,
			RowsBad:             n,
			ErrorCount:          1,
			ColumnsMissingCount: len(res.MissingColumns),
		}
		return res
	}

	res.run(t, spec.Errors, res.BadRows)
	res.run(t, spec.Warnings, res.WarningRows)

	res.OK = !res.BadRows.Any()
	res.Metrics = res.baseMetrics(n)
	return res
}

func (r *Result[C]) run(t dataset.Table, checks []Check[C], into dataset.Mask) {
	if t.Len() == 0 {
		return
	}
	for _, c := range checks {
		f, ok := Run(t, c)
		if !ok {
			continue
		}
		into.Or(f.Mask)
		r.add(f)
	}
}

// add records f, merging it into an earlier issue with the same code.
func (r *Result[C]) add(f Finding[C]) {
	if prev, ok := r.masks[f.Issue.Code]; ok {
		merged := prev.Clone()
		merged.Or(f.Mask)
		r.masks[f.Issue.Code] = merged

		for i := range r.Issues {
			if r.Issues[i].Code != f.Issue.Code {
				continue
			}
			is := &r.Issues[i]
			is.Count = merged.Count()
			is.Sample = merged.Indices(SampleSize)
			for _, col := range f.Issue.Columns {
				if !slices.Contains(is.Columns, col) {
					is.Columns = append(is.Columns, col)
				}
			}
		}
		return
	}
	r.masks[f.Issue.Code] = f.Mask
	r.Issues = append(r.Issues, f.Issue)
}

func (r *Result[C]) baseMetrics(n int) Metrics {
	if n == 0 {
		return Metrics{FileEmpty: true}
	}
	bad := r.BadRows.Count()
	return Metrics{
		RowsTotal:          n,
		RowsBad:            bad,
		RowsGood:           n - bad,
		ErrorCount:         len(r.Errors()),
		WarningCount:       len(r.Warnings()),
		HasRequiredColumns: true,
	}
}

// DayStats summarizes the non-null day values of column.
type DayStats struct {
	UniqueDays int     `json:"unique_days"`
	MinDay     *string `json:"min_day"`
	MaxDay     *string `json:"max_day"`
}

// SummarizeDays computes DayStats for column of t.
func SummarizeDays(t dataset.Table, column string) DayStats {
	seen := make(map[string]struct{})
	var lo, hi string
	for i := 0; i < t.Len(); i++ {
		v := t.Value(i, column)
		if v.IsNull() {
			continue
		}
		key := v.String()
		seen[key] = struct{}{}
		if lo == "" || key < lo {
			lo = key
		}
		if hi == "" || key > hi {
			hi = key
		}
	}

	stats := DayStats{UniqueDays: len(seen)}
	if len(seen) > 0 {
		stats.MinDay = &lo
		stats.MaxDay = &hi
	}
	return stats
}
