package commonmood

import (
	"strings"
	"time"

	"github.com/dailyflow/dailyflow/internal/ingest/dataset"
	"github.com/dailyflow/dailyflow/internal/ingest/source"
)

// moodLabels maps the app's mood vocabulary to scores, keyed case-insensitively.
var moodLabels = map[string]float64{
	"awful":     1,
	"bad":       2,
	"poor":      3,
	"neutral":   4,
	"good":      5,
	"great":     6,
	"excellent": 7,
}

// MoodScore translates a mood label to its score. Numeric input passes through.
// ok is false for unknown labels.
func MoodScore(raw string) (score float64, ok bool) {
	s := strings.TrimSpace(raw)
	if v, ok := moodLabels[strings.ToLower(s)]; ok {
		return v, true
	}
	return dataset.ParseNumber(s)
}

// Record is one normalized CSV row.
type Record struct {
	Line int

	Day  *time.Time
	Mood *float64
	Note *string

	// MoodLabel keeps a mood outside the label vocabulary so the range check
	// can report it. It is nil whenever Mood is set.
	MoodLabel *string
}

// Value implements dataset.Record.
func (r Record) Value(column string) dataset.Value {
	switch column {
	case ColDay:
		return dataset.TimePtr(r.Day)
	case ColMood:
		if r.Mood == nil && r.MoodLabel != nil {
			return dataset.Text(*r.MoodLabel)
		}
		return dataset.NumberPtr(r.Mood)
	case ColNote:
		return dataset.TextPtr(r.Note)
	default:
		return dataset.Null()
	}
}

// Transform shapes a CSV frame into typed records.
//
// Only contract columns are kept and rows where all of them are blank are
// dropped. Days are truncated to the calendar day and unparseable days become
// nil. Unknown mood labels are kept as text and fail the mood range check.
func Transform(frame *source.Frame) *dataset.Batch[Record] {
	var columns []string
	for _, col := range Contract().Columns() {
		if frame.HasColumn(col) {
			columns = append(columns, col)
		}
	}

	rows := make([]Record, 0, len(frame.Rows))
	for _, raw := range frame.Rows {
		if raw.Blank(columns) {
			continue
		}

		rec := Record{Line: raw.Line}
		if s, ok := raw.Get(ColDay); ok {
			if d, ok := dataset.ParseDay(s); ok {
				rec.Day = &d
			}
		}
		if s, ok := raw.Get(ColMood); ok {
			if f, ok := MoodScore(s); ok {
				rec.Mood = &f
			} else {
				label := strings.TrimSpace(s)
				rec.MoodLabel = &label
			}
		}
		if s, ok := raw.Get(ColNote); ok {
			rec.Note = &s
		}
		rows = append(rows, rec)
	}
	return dataset.NewBatch(columns, rows)
}
