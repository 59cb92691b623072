package moodlog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dailyflow/dailyflow/internal/ingest/dataset"
	"github.com/dailyflow/dailyflow/internal/testutil"
	"github.com/dailyflow/dailyflow/pkg/core"
)

var workbookHeader = []any{
	"Дата", "Радість", "Зацікавлення", "Спокій", "Енергійність", "Тривога",
	"Засмучення", "Роздратування", "Втома", "Страх", "Впевненість", "Сон",
}

func num(f float64) *float64 { return &f }

func dayPtr(s string) *time.Time {
	d, err := time.Parse(core.DayLayout, s)
	if err != nil {
		panic(err)
	}
	return &d
}

// rec builds a record with every score set to v.
func rec(day string, v *float64) Record {
	r := Record{Sheet: "Жовтень"}
	if day != "" {
		r.Day = dayPtr(day)
	}
	for _, col := range Scores {
		if v != nil {
			f := *v
			*r.score(col) = &f
		}
	}
	return r
}

func batch(rows ...Record) *dataset.Batch[Record] {
	return dataset.NewBatch(Contract().Columns(), rows)
}

func TestTransform_Workbook(t *testing.T) {
	first := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)
	path := testutil.WriteWorkbook(t, t.TempDir(), "moods.xlsx",
		testutil.Sheet{Name: "Жовтень", Rows: [][]any{
			workbookHeader,
			{first, 3, 3, 2, 2, 1, 1, 1, 2, 1, 3, 4},
			{},
			{"02.10.2024", "abc", 2, nil, nil, nil, nil, nil, nil, nil, nil, "3,0"},
		}},
		testutil.Sheet{Name: "Листопад", Rows: [][]any{
			workbookHeader,
			{"2024-11-01", 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4},
		}},
	)

	b, err := New(nil).Extract(path)
	require.NoError(t, err)
	assert.Equal(t, Contract().Columns(), b.Columns())
	require.Equal(t, 3, b.Len(), "blank row dropped")

	r0 := b.Rows[0]
	assert.Equal(t, "Жовтень", r0.Sheet)
	assert.Equal(t, 2, r0.Line)
	require.NotNil(t, r0.Day)
	assert.Equal(t, "2024-10-01", r0.Day.Format(core.DayLayout))
	assert.Equal(t, 3.0, *r0.Joy)
	assert.Equal(t, 4.0, *r0.Sleep)

	r1 := b.Rows[1]
	assert.Equal(t, 4, r1.Line)
	assert.Equal(t, "2024-10-02", r1.Day.Format(core.DayLayout))
	assert.Nil(t, r1.Joy, "unparseable score becomes nil")
	assert.Equal(t, 2.0, *r1.Interest)
	assert.Nil(t, r1.Calm)
	assert.Equal(t, 3.0, *r1.Sleep)

	assert.Equal(t, "Листопад", b.Rows[2].Sheet)
}

func TestValidate_Scenarios(t *testing.T) {
	joyHigh := rec("2024-10-02", num(2))
	joyHigh.Joy = num(5)
	fractional := rec("2024-10-05", num(2))
	fractional.Joy = num(2.5)
	sleepOnly := rec("2024-10-04", nil)
	sleepOnly.Sleep = num(3)

	b := batch(
		rec("2024-10-01", num(2)), // 0 good
		joyHigh,                   // 1 out of range
		rec("", num(2)),           // 2 missing day
		rec("2024-10-03", nil),    // 3 no values
		sleepOnly,                 // 4 warning only
		fractional,                // 5 not an integer
		rec("2024-10-06", num(1)), // 6 duplicate
		rec("2024-10-06", num(3)), // 7 duplicate
	)

	res, m := Validate(b)
	assert.False(t, res.OK)
	assert.Equal(t, dataset.Mask{false, true, true, true, false, true, true, true}, res.BadRows)
	assert.True(t, res.WarningRows[4])
	assert.False(t, res.WarningRows[0])

	assert.Equal(t, 1, res.CodeCount(CodeMoodOutOfRange))
	assert.Equal(t, 1, res.CodeCount(CodeMissingDay))
	assert.Equal(t, 1, res.CodeCount(CodeNoMoodValues))
	assert.Equal(t, 1, res.CodeCount(CodeMoodNotInteger))
	assert.Equal(t, 2, res.CodeCount(CodeDayDuplicate))
	assert.Equal(t, 1, res.CodeCount(CodeSleepOnly))

	assert.Equal(t, 8, m.RowsTotal)
	assert.Equal(t, 6, m.RowsBad)
	assert.Equal(t, 2, m.RowsGood)
	assert.Equal(t, 5, m.ErrorCount)
	assert.Equal(t, 7, m.RowsWithAnyMood)
	assert.Equal(t, 1, m.RowsWithAllMoodsMissing)
	assert.Equal(t, 1, m.RowsSleepOnly)
	assert.Equal(t, 2, m.RowsDuplicateDay)
	assert.True(t, m.HasRequiredColumns)
	require.NotNil(t, m.MinDay)
	assert.Equal(t, "2024-10-01", *m.MinDay)
	assert.Equal(t, "2024-10-06", *m.MaxDay)
}

func TestValidate_MostlyMissingWarning(t *testing.T) {
	r := rec("2024-10-01", nil)
	r.Joy, r.Interest, r.Calm, r.Energy = num(1), num(2), num(3), num(4)

	res, m := Validate(batch(r))
	assert.True(t, res.OK, "warnings never make a row bad")
	assert.Equal(t, dataset.Mask{true}, res.WarningRows)
	assert.Equal(t, 1, m.RowsMostlyEmptyMoods)
	assert.Equal(t, 0, m.RowsSleepOnly)
}

func TestValidate_MissingColumns(t *testing.T) {
	b := dataset.NewBatch([]string{ColDay, ColJoy}, []Record{rec("2024-10-01", num(2))})

	res, m := Validate(b)
	assert.False(t, res.OK)
	assert.Equal(t, dataset.Mask{true}, res.BadRows)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, CodeMissingRequiredColumns, res.Issues[0].Code)
	assert.Contains(t, res.MissingColumns, ColSleep)
	assert.False(t, m.HasRequiredColumns)
	assert.Equal(t, 10, m.ColumnsMissingCount)
}

func TestValidate_Empty(t *testing.T) {
	res, m := Validate(batch())
	assert.True(t, res.OK)
	assert.True(t, m.FileEmpty)
	assert.Zero(t, m.RowsTotal)
}

func TestPayload(t *testing.T) {
	r := rec("2024-10-01", nil)
	r.Joy = num(3)
	r.Sleep = num(2.0000001)

	payload, err := Payload([]Record{r})
	require.NoError(t, err)
	require.Len(t, payload, 1)
	assert.Equal(t, "2024-10-01", payload[0].Day.Format(core.DayLayout))
	assert.Equal(t, 3, *payload[0].Values.Joy)
	assert.Equal(t, 2, *payload[0].Values.Sleep)
	assert.Nil(t, payload[0].Values.Calm)

	_, err = Payload([]Record{rec("", num(1))})
	assert.Error(t, err)
}

type fakeStore struct {
	core.MoodLogStore
	got []core.MoodLogPayload
}

func (f *fakeStore) BatchUpsertMoodLogs(_ context.Context, payload []core.MoodLogPayload) (core.BatchUpsertResult, error) {
	f.got = append(f.got, payload...)
	return core.BatchUpsertResult{RowsIn: int64(len(payload)), RowsWritten: int64(len(payload))}, nil
}

func TestDataset_Load(t *testing.T) {
	store := &fakeStore{}
	res, err := New(store).Load(context.Background(), []Record{rec("2024-10-01", num(4)), rec("2024-10-02", num(1))})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.RowsWritten)
	require.Len(t, store.got, 2)
	assert.Equal(t, 1, *store.got[1].Values.Confidence)
}
