package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pair struct {
	day  *time.Time
	mood *float64
}

func (p pair) Value(column string) Value {
	switch column {
	case "day":
		return TimePtr(p.day)
	case "mood":
		return NumberPtr(p.mood)
	}
	return Null()
}

func TestParseDay(t *testing.T) {
	want := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		raw  string
		ok   bool
	}{
		{"iso", "2024-10-01", true},
		{"iso with time", "2024-10-01 21:13", true},
		{"dotted", "01.10.2024", true},
		{"us slashes", "10/01/2024", true},
		{"workbook serial", "45566", true},
		{"padded", "  2024-10-01 ", true},
		{"empty", "", false},
		{"garbage", "yesterday", false},
		{"serial out of range", "-3", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDay(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, want, got)
			}
		})
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"3", 3, true},
		{" 2.5 ", 2.5, true},
		{"2,5", 2.5, true},
		{"", 0, false},
		{"n/a", 0, false},
		{"NaN", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseNumber(tt.raw)
		assert.Equal(t, tt.ok, ok, tt.raw)
		assert.InDelta(t, tt.want, got, 1e-9, tt.raw)
	}
}

func TestValue(t *testing.T) {
	assert.True(t, Null().IsNull())
	assert.True(t, Number(3).IsIntegral())
	assert.False(t, Number(3.5).IsIntegral())
	assert.False(t, Text("3").IsIntegral())

	day := time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, Time(day).Key(), Time(NormalizeDay(day)).Key())
	assert.NotEqual(t, Number(1).Key(), Text("1").Key())
	assert.Equal(t, "2024-01-01", Time(day).String())
	assert.Equal(t, "", Null().String())
}

func TestMask(t *testing.T) {
	m := NewMask(5)
	assert.False(t, m.Any())

	m.Or(Mask{false, true, false, true, false})
	assert.Equal(t, 2, m.Count())
	assert.Equal(t, []int{1, 3}, m.Indices(-1))
	assert.Equal(t, []int{1}, m.Indices(1))
	assert.Equal(t, Mask{true, false, true, false, true}, m.Not())
	assert.Equal(t, 5, FullMask(5).Count())
}

func TestBatch(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mood := 4.0
	b := NewBatch([]string{"day", "mood"}, []pair{{day: &day, mood: &mood}, {}})

	require.Equal(t, 2, b.Len())
	assert.True(t, b.HasColumn("mood"))
	assert.False(t, b.HasColumn("note"))
	assert.Equal(t, "2024-01-01", b.Value(0, "day").String())
	assert.True(t, b.Value(1, "mood").IsNull())

	kept, idx := Filter(b.Rows, Mask{false, true})
	assert.Len(t, kept, 1)
	assert.Equal(t, []int{1}, idx)
}
