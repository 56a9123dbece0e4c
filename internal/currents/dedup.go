package currents

import "math"

// FirstOccurrence returns the index of the first occurrence of every distinct
// timestamp, in order of first appearance. Applying the result with Select
// keeps all aligned series in step with the time axis. NaN timestamps count
// as one value.
func FirstOccurrence(t Series) []int {
	seen := make(map[float64]struct{}, len(t))
	idx := make([]int, 0, len(t))
	seenNaN := false
	for i, v := range t {
		if math.IsNaN(v) {
			if !seenNaN {
				seenNaN = true
				idx = append(idx, i)
			}
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		idx = append(idx, i)
	}
	return idx
}

// Unique reports whether t holds no repeated timestamp.
func Unique(t Series) bool {
	return len(FirstOccurrence(t)) == len(t)
}
