package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dailyflow/dailyflow/internal/ingest/dataset"
	"github.com/dailyflow/dailyflow/pkg/core"
)

type testCode string

const (
	codeMissingDay     testCode = "missing_day"
	codeDuplicateDay   testCode = "day_duplicate"
	codeOutOfRange     testCode = "out_of_range"
	codeNotInteger     testCode = "not_integer"
	codeMissingColumns testCode = "missing_required_columns"
	codeNoScores       testCode = "no_scores"
	codeSleepOnly      testCode = "sleep_only"
	codeMostlyEmpty    testCode = "mostly_empty"
)

// row is a loosely typed record for tests; absent keys are null.
type row map[string]dataset.Value

func (r row) Value(column string) dataset.Value { return r[column] }

func table(columns []string, rows ...row) *dataset.Batch[row] {
	return dataset.NewBatch(columns, rows)
}

func day(s string) dataset.Value {
	d, ok := dataset.ParseDay(s)
	if !ok {
		panic("bad test day " + s)
	}
	return dataset.Time(d)
}

func num(f float64) dataset.Value { return dataset.Number(f) }

var scores = []string{"joy", "calm", "sleep"}

func testSpec() Spec[testCode] {
	return Spec[testCode]{
		Required:           append([]string{"day"}, scores...),
		MissingColumnsCode: codeMissingColumns,
		Errors: []Check[testCode]{
			{Kind: KindMissing, Code: codeMissingDay, Severity: core.SeverityError, Columns: []string{"day"}},
			{Kind: KindDuplicate, Code: codeDuplicateDay, Severity: core.SeverityError, Columns: []string{"day"}},
			{Kind: KindAllMissing, Code: codeNoScores, Severity: core.SeverityError, Columns: scores},
			{Kind: KindOutOfRange, Code: codeOutOfRange, Severity: core.SeverityError, Columns: scores, Min: 1, Max: 4},
			{Kind: KindNotInteger, Code: codeNotInteger, Severity: core.SeverityError, Columns: scores},
		},
		Warnings: []Check[testCode]{
			{Kind: KindOnlyColumn, Code: codeSleepOnly, Severity: core.SeverityWarning, Target: "sleep", Columns: []string{"joy", "calm"}},
			{Kind: KindMostlyMissing, Code: codeMostlyEmpty, Severity: core.SeverityWarning, Columns: []string{"joy", "calm"}},
		},
	}
}

func TestMissingMask(t *testing.T) {
	tb := table([]string{"day"}, row{"day": day("2024-01-01")}, row{})
	assert.Equal(t, dataset.Mask{false, true}, MissingMask(tb, "day"))
}

func TestDuplicateMask_KeepAll(t *testing.T) {
	tb := table([]string{"day", "joy"},
		row{"day": day("2024-01-01"), "joy": num(5)},
		row{"day": day("2024-01-01"), "joy": num(2)},
	)

	f, ok := Run(tb, Check[testCode]{Kind: KindDuplicate, Code: codeDuplicateDay, Columns: []string{"day"}})
	require.True(t, ok)
	assert.Equal(t, dataset.Mask{true, true}, f.Mask)
	assert.Equal(t, 2, f.Issue.Count)
	assert.Equal(t, []int{0, 1}, f.Issue.Sample)

	res := Validate(tb, Spec[testCode]{
		Required: []string{"day"},
		Errors:   []Check[testCode]{{Kind: KindDuplicate, Code: codeDuplicateDay, Columns: []string{"day"}}},
	})
	assert.False(t, res.OK)
	assert.Equal(t, dataset.Mask{true, true}, res.BadRows)
}

func TestDuplicateMask_IgnoresNull(t *testing.T) {
	tb := table([]string{"day"}, row{}, row{}, row{"day": day("2024-01-02")})
	assert.False(t, DuplicateMask(tb, "day").Any())
}

func TestOutOfRange(t *testing.T) {
	tb := table([]string{"mood"},
		row{"mood": num(9)},
		row{},
		row{"mood": num(7)},
		row{"mood": num(0)},
	)
	check := Check[testCode]{Kind: KindOutOfRange, Code: codeOutOfRange, Columns: []string{"mood"}, Min: 1, Max: 7}

	first, ok := Run(tb, check)
	require.True(t, ok)
	assert.Equal(t, dataset.Mask{true, false, false, true}, first.Mask)

	second, ok := Run(tb, check)
	require.True(t, ok)
	assert.Equal(t, first, second)
}

func TestOutOfRange_TextIsOutOfRange(t *testing.T) {
	tb := table([]string{"mood"}, row{"mood": dataset.Text("great")})
	assert.Equal(t, dataset.Mask{true}, OutOfRangeMask(tb, []string{"mood"}, 1, 7))
}

func TestNotIntegerMask(t *testing.T) {
	tb := table(scores,
		row{"joy": num(2.5)},
		row{"joy": num(2), "calm": num(3)},
		row{},
	)
	assert.Equal(t, dataset.Mask{true, false, false}, NotIntegerMask(tb, scores))
}

func TestMostlyMissingMask(t *testing.T) {
	cols := []string{"a", "b", "c", "d"}
	tb := table(cols,
		row{"a": num(1), "b": num(1)},
		row{"a": num(1)},
		row{},
	)
	// Exactly half missing is not "more than half".
	assert.Equal(t, dataset.Mask{false, true, true}, MostlyMissingMask(tb, cols, 0.5))
}

func TestOnlyColumnMask(t *testing.T) {
	tb := table(scores,
		row{"sleep": num(3)},
		row{"sleep": num(3), "joy": num(1)},
		row{},
	)
	assert.Equal(t, dataset.Mask{true, false, false}, OnlyColumnMask(tb, "sleep", []string{"joy", "calm"}))
}

func TestRun_NoOffendersIsNoIssue(t *testing.T) {
	tb := table([]string{"joy"}, row{"joy": num(2)})
	for _, kind := range []Kind{KindMissing, KindDuplicate, KindOutOfRange, KindNotInteger, KindAllMissing, KindMostlyMissing} {
		_, ok := Run(tb, Check[testCode]{Kind: kind, Code: "x", Columns: []string{"joy"}, Min: 1, Max: 4})
		assert.False(t, ok, kind.String())
	}
}

func TestRun_SampleIsCapped(t *testing.T) {
	rows := make([]row, 8)
	for i := range rows {
		rows[i] = row{}
	}
	f, ok := Run(table([]string{"day"}, rows...), Check[testCode]{Kind: KindMissing, Code: codeMissingDay, Columns: []string{"day"}})
	require.True(t, ok)
	assert.Equal(t, 8, f.Issue.Count)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, f.Issue.Sample)
}

func TestValidate_RoundTrip(t *testing.T) {
	tb := table(append([]string{"day"}, scores...),
		row{"day": day("2024-01-01"), "joy": num(1), "calm": num(4), "sleep": num(2)},
		row{"day": day("2024-01-02"), "joy": num(3), "calm": num(3), "sleep": num(3)},
	)

	res := Validate(tb, testSpec())
	assert.True(t, res.OK)
	assert.Empty(t, res.Issues)
	assert.False(t, res.BadRows.Any())
	assert.Equal(t, Metrics{RowsTotal: 2, RowsGood: 2, HasRequiredColumns: true}, res.Metrics)
}

func TestValidate_EmptyDataset(t *testing.T) {
	res := Validate(table(append([]string{"day"}, scores...)), testSpec())

	assert.True(t, res.OK)
	assert.Empty(t, res.Issues)
	assert.Empty(t, res.BadRows)
	assert.Equal(t, Metrics{FileEmpty: true}, res.Metrics)
}

func TestValidate_MissingColumns(t *testing.T) {
	tb := table([]string{"day", "joy"},
		row{"day": day("2024-01-01"), "joy": num(9)},
		row{"day": day("2024-01-01"), "joy": num(1)},
	)

	res := Validate(tb, testSpec())
	assert.False(t, res.OK)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, codeMissingColumns, res.Issues[0].Code)
	assert.Equal(t, []string{"calm", "sleep"}, res.Issues[0].Columns)
	assert.Equal(t, dataset.Mask{true, true}, res.BadRows)
	assert.Equal(t, []string{"calm", "sleep"}, res.MissingColumns)
	assert.False(t, res.Metrics.HasRequiredColumns)
	assert.Equal(t, 2, res.Metrics.ColumnsMissingCount)
	assert.Equal(t, 1, res.Metrics.ErrorCount)
	// Short-circuit: no other check ran.
	assert.Zero(t, res.CodeCount(codeOutOfRange))
}

func TestValidate_OrClosure(t *testing.T) {
	tb := table(append([]string{"day"}, scores...),
		row{"day": day("2024-01-01"), "joy": num(1), "calm": num(1), "sleep": num(1)},
		row{"joy": num(2), "calm": num(2), "sleep": num(2)},
		row{"day": day("2024-01-03"), "joy": num(7), "calm": num(2), "sleep": num(2)},
		row{"day": day("2024-01-04"), "joy": num(1.5), "calm": num(2), "sleep": num(2)},
		row{"day": day("2024-01-05")},
		row{"day": day("2024-01-06"), "sleep": num(3)},
		row{"day": day("2024-01-07"), "joy": num(1), "calm": num(1), "sleep": num(1)},
	)
	spec := testSpec()

	res := Validate(tb, spec)
	require.False(t, res.OK)

	for i := 0; i < tb.Len(); i++ {
		want := false
		for _, c := range spec.Errors {
			if f, ok := Run(tb, c); ok && f.Mask[i] {
				want = true
			}
		}
		assert.Equal(t, want, res.BadRows[i], "row %d", i)
	}

	assert.Equal(t, dataset.Mask{false, true, true, true, true, false, false}, res.BadRows)
	assert.Equal(t, dataset.Mask{false, false, false, false, true, true, false}, res.WarningRows)
	assert.Equal(t, dataset.Mask{false, false, false, false, false, true, false}, res.Mask(codeSleepOnly))
	assert.Equal(t, 4, res.Metrics.ErrorCount)
	assert.Equal(t, 2, res.Metrics.WarningCount)
	assert.Equal(t, 4, res.Metrics.RowsBad)
	assert.Equal(t, 3, res.Metrics.RowsGood)
	assert.Equal(t, 1, res.CodeCount(codeOutOfRange))
	assert.Equal(t, 1, res.CodeCount(codeNotInteger))

	is, ok := res.Issue(codeMissingDay)
	require.True(t, ok)
	assert.Equal(t, core.SeverityError, is.Severity)
	assert.Equal(t, []int{1}, is.Sample)
}

func TestValidate_MergesRepeatedCodes(t *testing.T) {
	tb := table([]string{"a", "b"},
		row{"a": num(9), "b": num(1)},
		row{"a": num(1), "b": num(9)},
	)
	res := Validate(tb, Spec[testCode]{
		Errors: []Check[testCode]{
			{Kind: KindOutOfRange, Code: codeOutOfRange, Columns: []string{"a"}, Min: 1, Max: 4},
			{Kind: KindOutOfRange, Code: codeOutOfRange, Columns: []string{"b"}, Min: 1, Max: 4},
		},
	})

	require.Len(t, res.Issues, 1)
	assert.Equal(t, 2, res.Issues[0].Count)
	assert.Equal(t, []string{"a", "b"}, res.Issues[0].Columns)
	assert.Equal(t, dataset.Mask{true, true}, res.Mask(codeOutOfRange))
}

func TestSummarizeDays(t *testing.T) {
	tb := table([]string{"day"},
		row{"day": day("2024-01-03")},
		row{"day": day("2024-01-01")},
		row{"day": day("2024-01-03")},
		row{},
	)
	stats := SummarizeDays(tb, "day")
	assert.Equal(t, 2, stats.UniqueDays)
	require.NotNil(t, stats.MinDay)
	assert.Equal(t, "2024-01-01", *stats.MinDay)
	assert.Equal(t, "2024-01-03", *stats.MaxDay)

	empty := SummarizeDays(table([]string{"day"}), "day")
	assert.Zero(t, empty.UniqueDays)
	assert.Nil(t, empty.MinDay)
}
