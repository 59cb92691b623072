// Package validate runs data-quality checks over an ingest dataset.
//
// Checks are plain values (Check) interpreted by Run. Each dataset declares its
// checks against its own closed Code type, so a check written for one dataset
// cannot report a code of another.
package validate

import (
	"fmt"
	"math"
	"strings"

	"github.com/dailyflow/dailyflow/internal/ingest/dataset"
	"github.com/dailyflow/dailyflow/pkg/core"
)

// SampleSize is the maximum number of offending row indices kept per issue.
const SampleSize = 5

// Code is the constraint satisfied by per-dataset issue code enumerations.
type Code interface {
	~string
}

// Kind selects the predicate a Check evaluates.
type Kind int

// Check kinds.
const (
	// KindMissing flags rows where Columns[0] is null.
	KindMissing Kind = iota
	// KindDuplicate flags every row whose non-null Columns[0] value occurs more than once.
	KindDuplicate
	// KindOutOfRange flags rows where a non-null value in Columns lies outside [Min, Max].
	KindOutOfRange
	// KindNotInteger flags rows where a value in Columns has a fractional part.
	KindNotInteger
	// KindAllMissing flags rows where every column in Columns is null.
	KindAllMissing
	// KindMostlyMissing flags rows where the null share of Columns exceeds Threshold.
	KindMostlyMissing
	// KindOnlyColumn flags rows where Target has a value and every column in Columns is null.
	KindOnlyColumn
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindDuplicate:
		return "duplicate"
	case KindOutOfRange:
		return "out_of_range"
	case KindNotInteger:
		return "not_integer"
	case KindAllMissing:
		return "all_missing"
	case KindMostlyMissing:
		return "mostly_missing"
	case KindOnlyColumn:
		return "only_column"
	default:
		return "unknown"
	}
}

// DefaultMostlyMissingThreshold is used when a KindMostlyMissing check leaves Threshold at zero.
const DefaultMostlyMissingThreshold = 0.5

// Check describes one validation check.
type Check[C Code] struct {
	Kind     Kind
	Code     C
	Severity core.Severity
	Columns  []string

	// Target is the lone column of KindOnlyColumn.
	Target string
	// Min and Max bound KindOutOfRange (inclusive).
	Min, Max float64
	// Threshold is the null share above which KindMostlyMissing fires.
	Threshold float64
	// Message overrides the default issue message.
	Message string
}

// Issue is one finding reported to the operator.
type Issue[C Code] struct {
	Code     C             `json:"code"`
	Severity core.Severity `json:"severity"`
	Message  string        `json:"message"`
	Count    int           `json:"count"`
	Sample   []int         `json:"sample"`
	Columns  []string      `json:"columns"`
}

// Finding is the outcome of a check that matched at least one row.
type Finding[C Code] struct {
	Issue Issue[C]
	Mask  dataset.Mask
}

// Run evaluates c against t. ok is false when no row offends, in which case no
// issue exists.
func Run[C Code](t dataset.Table, c Check[C]) (f Finding[C], ok bool) {
	var mask dataset.Mask
	switch c.Kind {
	case KindMissing:
		mask = MissingMask(t, c.Columns[0])
	case KindDuplicate:
		mask = DuplicateMask(t, c.Columns[0])
	case KindOutOfRange:
		mask = OutOfRangeMask(t, c.Columns, c.Min, c.Max)
	case KindNotInteger:
		mask = NotIntegerMask(t, c.Columns)
	case KindAllMissing:
		mask = AllMissingMask(t, c.Columns)
	case KindMostlyMissing:
		mask = MostlyMissingMask(t, c.Columns, c.threshold())
	case KindOnlyColumn:
		mask = OnlyColumnMask(t, c.Target, c.Columns)
	default:
		panic(fmt.Sprintf("validate: unknown check kind %d", c.Kind))
	}

	if !mask.Any() {
		return Finding[C]{}, false
	}

	columns := c.Columns
	if c.Kind == KindOnlyColumn {
		columns = append([]string{c.Target}, c.Columns...)
	}

	return Finding[C]{
		Issue: Issue[C]{
			Code:     c.Code,
			Severity: c.Severity,
			Message:  c.message(),
			Count:    mask.Count(),
			Sample:   mask.Indices(SampleSize),
			Columns:  append([]string(nil), columns...),
		},
		Mask: mask,
	}, true
}

func (c Check[C]) threshold() float64 {
	if c.Threshold <= 0 {
		return DefaultMostlyMissingThreshold
	}
	return c.Threshold
}

func (c Check[C]) message() string {
	if c.Message != "" {
		return c.Message
	}
	cols := strings.Join(c.Columns, ", ")
	switch c.Kind {
	case KindMissing:
		return fmt.Sprintf("Column '%s' has missing values", cols)
	case KindDuplicate:
		return fmt.Sprintf("Column '%s' has duplicates", cols)
	case KindOutOfRange:
		return fmt.Sprintf("Columns: %s are out of range %g - %g", cols, c.Min, c.Max)
	case KindNotInteger:
		return fmt.Sprintf("Columns: %s can be only integer", cols)
	case KindAllMissing:
		return fmt.Sprintf("All of columns %s are empty", cols)
	case KindMostlyMissing:
		return fmt.Sprintf("More than %d%% of %s values are empty", int(c.threshold()*100), cols)
	case KindOnlyColumn:
		return fmt.Sprintf("Only '%s' has a value, %s are empty", c.Target, cols)
	default:
		return c.Kind.String()
	}
}

// MissingMask flags rows where column is null.
func MissingMask(t dataset.Table, column string) dataset.Mask {
	mask := dataset.NewMask(t.Len())
	for i := range mask {
		mask[i] = t.Value(i, column).IsNull()
	}
	return mask
}

// DuplicateMask flags every row whose non-null value in column is shared with
// another row.
func DuplicateMask(t dataset.Table, column string) dataset.Mask {
	seen := make(map[string]int, t.Len())
	for i := 0; i < t.Len(); i++ {
		v := t.Value(i, column)
		if v.IsNull() {
			continue
		}
		seen[v.Key()]++
	}

	mask := dataset.NewMask(t.Len())
	for i := range mask {
		v := t.Value(i, column)
		mask[i] = !v.IsNull() && seen[v.Key()] > 1
	}
	return mask
}

// OutOfRangeMask flags rows where at least one non-null value in columns lies
// outside [lo, hi]. Non-numeric values are out of range. Rows where every column
// is null are never flagged.
func OutOfRangeMask(t dataset.Table, columns []string, lo, hi float64) dataset.Mask {
	mask := dataset.NewMask(t.Len())
	for i := range mask {
		for _, col := range columns {
			v := t.Value(i, col)
			if v.IsNull() {
				continue
			}
			f, ok := v.Float()
			if !ok || f < lo || f > hi {
				mask[i] = true
				break
			}
		}
	}
	return mask
}

// NotIntegerMask flags rows where at least one numeric value in columns has a
// fractional part. Null and non-numeric values are not judged here.
func NotIntegerMask(t dataset.Table, columns []string) dataset.Mask {
	mask := dataset.NewMask(t.Len())
	for i := range mask {
		for _, col := range columns {
			if f, ok := t.Value(i, col).Float(); ok && f != math.Trunc(f) {
				mask[i] = true
				break
			}
		}
	}
	return mask
}

// AllMissingMask flags rows where every column in columns is null.
func AllMissingMask(t dataset.Table, columns []string) dataset.Mask {
	mask := dataset.NewMask(t.Len())
	if len(columns) == 0 {
		return mask
	}
	for i := range mask {
		mask[i] = nullCount(t, i, columns) == len(columns)
	}
	return mask
}

// MostlyMissingMask flags rows where the share of null values in columns is
// strictly greater than threshold.
func MostlyMissingMask(t dataset.Table, columns []string, threshold float64) dataset.Mask {
	mask := dataset.NewMask(t.Len())
	if len(columns) == 0 {
		return mask
	}
	for i := range mask {
		share := float64(nullCount(t, i, columns)) / float64(len(columns))
		mask[i] = share > threshold
	}
	return mask
}

// OnlyColumnMask flags rows where target has a value while every sibling is null.
func OnlyColumnMask(t dataset.Table, target string, siblings []string) dataset.Mask {
	mask := dataset.NewMask(t.Len())
	for i := range mask {
		mask[i] = !t.Value(i, target).IsNull() && nullCount(t, i, siblings) == len(siblings)
	}
	return mask
}

func nullCount(t dataset.Table, row int, columns []string) int {
	n := 0
	for _, col := range columns {
		if t.Value(row, col).IsNull() {
			n++
		}
	}
	return n
}
