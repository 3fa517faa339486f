package stats

import (
	"math"
	"sort"
)

// QuantileSorted returns the q-th quantile (0 <= q <= 1) of an ascending slice.
// Uses linear interpolation between the two bracketing order statistics
// (type 7). Returns 0 for an empty slice.
func QuantileSorted(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q < 0 {
		q = 0
	}
	if q > 1 {
		q = 1
	}

	pos := float64(len(sorted)-1) * q
	base := int(math.Floor(pos))
	rest := pos - float64(base)

	left := sorted[base]
	right := left
	if base+1 < len(sorted) {
		right = sorted[base+1]
	}
	return left + rest*(right-left)
}

// Quantiles calculates several quantiles at once, sorting only once
func Quantiles(values []float64, qs []float64) []float64 {
	sorted := SortedCopy(values)
	results := make([]float64, len(qs))
	for i, q := range qs {
		results[i] = QuantileSorted(sorted, q)
	}
	return results
}

// SortedCopy returns an ascending copy of values, leaving the input untouched
func SortedCopy(values []float64) []float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return sorted
}

// Finite drops NaN and infinite entries
func Finite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if IsFinite(v) {
			out = append(out, v)
		}
	}
	return out
}

// IsFinite reports whether v is neither NaN nor infinite
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
