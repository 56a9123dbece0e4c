package currents

import (
	"errors"
	"fmt"
)

// Series is an ordered sequence of samples aligned by position with the time axis.
type Series []float64

// Table holds one row of per-timestep values for each current type.
// Labels[i] names the current carried by Values[i].
type Table struct {
	Labels []string
	Values [][]float64
}

var ErrLengthMismatch = errors.New("currents: length mismatch")

// Len returns the number of timesteps (columns).
func (t Table) Len() int {
	if len(t.Values) == 0 {
		return 0
	}
	return len(t.Values[0])
}

// Validate checks that labels and rows line up and every row has the same length.
func (t Table) Validate() error {
	if len(t.Labels) != len(t.Values) {
		return fmt.Errorf("%w: %d labels for %d rows", ErrLengthMismatch, len(t.Labels), len(t.Values))
	}
	n := t.Len()
	for i, row := range t.Values {
		if len(row) != n {
			return fmt.Errorf("%w: row %q has %d values, expected %d", ErrLengthMismatch, t.Labels[i], len(row), n)
		}
	}
	return nil
}

// Select returns the samples at idx, in the order given.
func (s Series) Select(idx []int) Series {
	out := make(Series, len(idx))
	for i, j := range idx {
		out[i] = s[j]
	}
	return out
}

// Head returns a copy of the first n samples (all of them when n exceeds the length).
func (s Series) Head(n int) Series {
	if n > len(s) || n < 0 {
		n = len(s)
	}
	out := make(Series, n)
	copy(out, s[:n])
	return out
}

// SelectColumns applies the same column selection to every row. Labels are kept as is.
func (t Table) SelectColumns(idx []int) Table {
	out := Table{
		Labels: append([]string(nil), t.Labels...),
		Values: make([][]float64, len(t.Values)),
	}
	for i, row := range t.Values {
		out.Values[i] = Series(row).Select(idx)
	}
	return out
}

// Flip returns a copy with every value multiplied by -1.
func (t Table) Flip() Table {
	out := Table{
		Labels: append([]string(nil), t.Labels...),
		Values: make([][]float64, len(t.Values)),
	}
	for i, row := range t.Values {
		flipped := make([]float64, len(row))
		for j, v := range row {
			flipped[j] = -v
		}
		out.Values[i] = flipped
	}
	return out
}

// Row returns the values for label, or false when the table has no such current.
func (t Table) Row(label string) ([]float64, bool) {
	for i, l := range t.Labels {
		if l == label {
			return t.Values[i], true
		}
	}
	return nil, false
}
