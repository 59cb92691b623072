package dataset

import "slices"

// Record is a strongly typed row that exposes its columns by name.
// Unknown columns return null.
type Record interface {
	Value(column string) Value
}

// Table is a column-indexable row batch, the unit validation checks work on.
type Table interface {
	Len() int
	Columns() []string
	HasColumn(column string) bool
	Value(row int, column string) Value
}

// Batch is an ordered set of typed records together with the column set that was
// present in the source.
type Batch[R Record] struct {
	columns []string
	Rows    []R
}

var _ Table = (*Batch[Record])(nil)

// NewBatch creates a batch over rows with the given column set.
func NewBatch[R Record](columns []string, rows []R) *Batch[R] {
	return &Batch[R]{columns: slices.Clone(columns), Rows: rows}
}

// Len returns the number of rows.
func (b *Batch[R]) Len() int { return len(b.Rows) }

// Columns returns the column set of the batch.
func (b *Batch[R]) Columns() []string { return b.columns }

// HasColumn reports whether column is part of the batch.
func (b *Batch[R]) HasColumn(column string) bool {
	return slices.Contains(b.columns, column)
}

// Value returns a cell by row index and column name.
func (b *Batch[R]) Value(row int, column string) Value {
	return b.Rows[row].Value(column)
}

// Filter returns the rows whose mask entry is set, in order, along with their
// original indices.
func Filter[R any](rows []R, keep Mask) ([]R, []int) {
	out := make([]R, 0, keep.Count())
	idx := make([]int, 0, cap(out))
	for i, r := range rows {
		if i < len(keep) && keep[i] {
			out = append(out, r)
			idx = append(idx, i)
		}
	}
	return out, idx
}
