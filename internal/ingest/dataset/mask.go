package dataset

// Mask flags rows of a dataset. A mask is index-aligned with the dataset it was
// computed from.
type Mask []bool

// NewMask returns an all-false mask of length n.
func NewMask(n int) Mask {
	return make(Mask, n)
}

// FullMask returns an all-true mask of length n.
func FullMask(n int) Mask {
	m := make(Mask, n)
	for i := range m {
		m[i] = true
	}
	return m
}

// Any reports whether at least one row is flagged.
func (m Mask) Any() bool {
	for _, b := range m {
		if b {
			return true
		}
	}
	return false
}

// Count returns the number of flagged rows.
func (m Mask) Count() int {
	n := 0
	for _, b := range m {
		if b {
			n++
		}
	}
	return n
}

// Or sets every row flagged in other. Both masks must have the same length.
func (m Mask) Or(other Mask) {
	for i := range m {
		if i < len(other) && other[i] {
			m[i] = true
		}
	}
}

// Not returns the complement of m.
func (m Mask) Not() Mask {
	out := make(Mask, len(m))
	for i, b := range m {
		out[i] = !b
	}
	return out
}

// Indices returns up to limit flagged row indices in ascending order.
// A negative limit returns all of them.
func (m Mask) Indices(limit int) []int {
	var out []int
	for i, b := range m {
		if !b {
			continue
		}
		if limit >= 0 && len(out) == limit {
			break
		}
		out = append(out, i)
	}
	return out
}

// Clone returns a copy of m.
func (m Mask) Clone() Mask {
	out := make(Mask, len(m))
	copy(out, m)
	return out
}
