package dataset

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// dayLayouts are tried in order when parsing a day cell. Time-of-day parts are
// dropped after parsing.
var dayLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"02.01.2006",
	"02.01.2006 15:04",
	"2.1.2006",
	"01/02/2006",
	"01/02/2006 15:04",
	"1/2/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
}

// Workbook serial dates outside this range are treated as plain numbers.
const (
	minSerialDay = 1
	maxSerialDay = 2958465 // 9999-12-31
)

// ParseDay parses a day cell. It accepts the layouts in dayLayouts and workbook
// serial dates. Invalid input yields ok=false; the caller stores null.
// The result is normalized to midnight UTC.
func ParseDay(raw string) (day time.Time, ok bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if f < minSerialDay || f > maxSerialDay {
			return time.Time{}, false
		}
		t, err := excelize.ExcelDateToTime(f, false)
		if err != nil {
			return time.Time{}, false
		}
		return NormalizeDay(t), true
	}

	for _, layout := range dayLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NormalizeDay(t), true
		}
	}
	return time.Time{}, false
}

// NormalizeDay truncates t to its calendar day in UTC.
func NormalizeDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseNumber coerces a cell to a number. Unparseable input yields ok=false.
// A decimal comma is accepted.
func ParseNumber(raw string) (f float64, ok bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
