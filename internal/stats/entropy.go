package stats

import (
	"math"
)

// JSDivergence calculates the base-2 Jensen-Shannon divergence between two
// share distributions keyed by category. Missing keys count as zero, and
// terms with a zero share are skipped (0 * log 0 = 0).
func JSDivergence(p, q map[string]float64, keys []string) float64 {
	var js float64
	for _, k := range keys {
		pi := p[k]
		qi := q[k]
		m := (pi + qi) / 2
		if pi > 0 && m > 0 {
			js += 0.5 * pi * math.Log2(pi/m)
		}
		if qi > 0 && m > 0 {
			js += 0.5 * qi * math.Log2(qi/m)
		}
	}
	return js
}

// JSDistance returns sqrt(JSDivergence). ok is false when the divergence is
// negative or not finite.
func JSDistance(p, q map[string]float64, keys []string) (float64, bool) {
	js := JSDivergence(p, q, keys)
	if !IsFinite(js) || js < 0 {
		return 0, false
	}
	return math.Sqrt(js), true
}

// HHI calculates the Herfindahl-Hirschman index, the sum of squared shares
func HHI(shares []float64) float64 {
	var hhi float64
	for _, s := range shares {
		hhi += s * s
	}
	return hhi
}

// Normalize divides every weight by the total. ok is false when the total
// is not a positive finite number.
func Normalize(weights map[string]float64) (map[string]float64, bool) {
	var total float64
	for _, w := range weights {
		total += w
	}
	if !IsFinite(total) || total <= 0 {
		return nil, false
	}

	out := make(map[string]float64, len(weights))
	for k, w := range weights {
		out[k] = w / total
	}
	return out, true
}
