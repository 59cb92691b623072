package moodlog

import (
	"time"

	"github.com/dailyflow/dailyflow/internal/ingest/dataset"
	"github.com/dailyflow/dailyflow/internal/ingest/source"
)

// Record is one normalized workbook row. Nil fields are empty cells or cells
// that could not be parsed.
type Record struct {
	Sheet string
	Line  int

	Day        *time.Time
	Joy        *float64
	Interest   *float64
	Calm       *float64
	Energy     *float64
	Anxiety    *float64
	Sadness    *float64
	Irritation *float64
	Fatigue    *float64
	Fear       *float64
	Confidence *float64
	Sleep      *float64
}

// Value implements dataset.Record.
func (r Record) Value(column string) dataset.Value {
	if column == ColDay {
		return dataset.TimePtr(r.Day)
	}
	if p := r.score(column); p != nil {
		return dataset.NumberPtr(*p)
	}
	return dataset.Null()
}

func (r *Record) score(column string) **float64 {
	switch column {
	case ColJoy:
		return &r.Joy
	case ColInterest:
		return &r.Interest
	case ColCalm:
		return &r.Calm
	case ColEnergy:
		return &r.Energy
	case ColAnxiety:
		return &r.Anxiety
	case ColSadness:
		return &r.Sadness
	case ColIrritation:
		return &r.Irritation
	case ColFatigue:
		return &r.Fatigue
	case ColFear:
		return &r.Fear
	case ColConfidence:
		return &r.Confidence
	case ColSleep:
		return &r.Sleep
	default:
		return nil
	}
}

// Transform shapes a workbook frame into typed records.
//
// Only contract columns are kept. Rows where every kept cell is blank are
// dropped. Unparseable days and scores become nil. Sheet order and row order
// are preserved.
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

		rec := Record{Sheet: raw.Sheet, Line: raw.Line}
		if s, ok := raw.Get(ColDay); ok {
			if d, ok := dataset.ParseDay(s); ok {
				rec.Day = &d
			}
		}
		for _, col := range Scores {
			s, ok := raw.Get(col)
			if !ok {
				continue
			}
			if f, ok := dataset.ParseNumber(s); ok {
				*rec.score(col) = &f
			}
		}
		rows = append(rows, rec)
	}
	return dataset.NewBatch(columns, rows)
}
