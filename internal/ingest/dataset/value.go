// Package dataset provides the in-memory tabular model of the ingest pipeline.
//
// Each dataset type defines its own strongly typed record struct. Records expose
// their columns by name through the Record interface so validation checks can be
// written once against Table and reused by every dataset.
package dataset

import (
	"math"
	"strconv"
	"time"

	"github.com/dailyflow/dailyflow/pkg/core"
)

// Kind is the dynamic type of a Value.
type Kind uint8

// Value kinds.
const (
	KindNull Kind = iota
	KindNumber
	KindText
	KindTime
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindTime:
		return "time"
	default:
		return "unknown"
	}
}

// Value is a nullable scalar cell. The zero Value is null.
type Value struct {
	kind Kind
	num  float64
	text string
	t    time.Time
}

// Null returns the null value.
func Null() Value { return Value{} }

// Number returns a numeric value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Text returns a text value.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Time returns a time value.
func Time(t time.Time) Value { return Value{kind: KindTime, t: t} }

// NumberPtr returns Number(*p), or null for a nil pointer.
func NumberPtr(p *float64) Value {
	if p == nil {
		return Null()
	}
	return Number(*p)
}

// TextPtr returns Text(*p), or null for a nil pointer.
func TextPtr(p *string) Value {
	if p == nil {
		return Null()
	}
	return Text(*p)
}

// TimePtr returns Time(*p), or null for a nil pointer.
func TimePtr(p *time.Time) Value {
	if p == nil {
		return Null()
	}
	return Time(*p)
}

// Kind reports the dynamic type of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Float returns the numeric payload. ok is false for non-numeric values.
func (v Value) Float() (f float64, ok bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// Str returns the text payload. ok is false for non-text values.
func (v Value) Str() (s string, ok bool) {
	if v.kind != KindText {
		return "", false
	}
	return v.text, true
}

// TimeValue returns the time payload. ok is false for non-time values.
func (v Value) TimeValue() (t time.Time, ok bool) {
	if v.kind != KindTime {
		return time.Time{}, false
	}
	return v.t, true
}

// IsIntegral reports whether v is a number without a fractional part.
func (v Value) IsIntegral() bool {
	return v.kind == KindNumber && v.num == math.Trunc(v.num) && !math.IsInf(v.num, 0)
}

// Key returns a comparable representation used for duplicate detection.
// Times compare by calendar day since every time column in the pipeline is a day.
func (v Value) Key() string {
	switch v.kind {
	case KindNumber:
		return "n:" + strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindText:
		return "s:" + v.text
	case KindTime:
		return "t:" + v.t.Format(core.DayLayout)
	default:
		return ""
	}
}

// String renders v for reports and quarantine exports. Null renders as "".
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindText:
		return v.text
	case KindTime:
		return v.t.Format(core.DayLayout)
	default:
		return ""
	}
}
