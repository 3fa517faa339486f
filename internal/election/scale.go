package election

import (
	"math"

	"github.com/jengzang/election-map-backend-go/internal/models"
	"github.com/jengzang/election-map-backend-go/internal/stats"
)

// SymmetricFloor keeps diff domains from collapsing to zero width
const SymmetricFloor = 0.01

// ShareFloor is the smallest max bound of a per-party share scale
const ShareFloor = 0.01

// FixedBreaks are the share breakpoints shared across parties
var FixedBreaks = []float64{0, 0.02, 0.05, 0.1, 0.15, 0.2, 0.3, 0.4}

// PartyQuantiles are the quantile levels of per-party share breakpoints
var PartyQuantiles = []float64{0, 0.1, 0.25, 0.4, 0.55, 0.7, 0.85, 0.95}

// ShareScale builds the share-mode domain. Fixed mode uses FixedBreaks up to
// 0.4; party mode places breaks at PartyQuantiles of the party's shares and
// stretches the palette up to their 95th percentile.
func ShareScale(shares []float64, mode models.ScaleMode) models.ScaleDomain {
	if mode == models.ScaleFixed {
		breaks := copyBreaks(FixedBreaks)
		max := breaks[len(breaks)-1]
		if max <= 0 {
			max = ShareFloor
		}
		return models.ScaleDomain{Breaks: breaks, Min: 0, Max: max}
	}

	sorted := stats.SortedCopy(stats.Finite(shares))
	if len(sorted) == 0 {
		return models.ScaleDomain{Breaks: copyBreaks(FixedBreaks), Min: 0, Max: ShareFloor}
	}
	return models.ScaleDomain{Breaks: PartyBreaks(sorted), Min: 0, Max: q95Or(sorted, ShareFloor)}
}

// PartyBreaks computes quantile breaks over sorted shares. The first break
// is pinned to 0 and the rest are forced non-decreasing.
func PartyBreaks(sorted []float64) []float64 {
	if len(sorted) == 0 {
		return copyBreaks(FixedBreaks)
	}
	breaks := stats.Quantiles(sorted, PartyQuantiles)
	breaks[0] = 0
	for i := 1; i < len(breaks); i++ {
		if breaks[i] < breaks[i-1] {
			breaks[i] = breaks[i-1]
		}
	}
	return breaks
}

// SymmetricScale centers a diff domain on zero: maxAbs is the larger of
// |q05|, |q95| and SymmetricFloor.
func SymmetricScale(values []float64) models.ScaleDomain {
	sorted := stats.SortedCopy(stats.Finite(values))
	maxAbs := SymmetricFloor
	if len(sorted) > 0 {
		q05 := stats.QuantileSorted(sorted, 0.05)
		q95 := stats.QuantileSorted(sorted, 0.95)
		maxAbs = math.Max(math.Max(math.Abs(q05), math.Abs(q95)), SymmetricFloor)
	}
	return models.ScaleDomain{Min: -maxAbs, Max: maxAbs, CrossesZero: true}
}

// SequentialScale spans [0, q95]; the max falls back to 1 when there is no
// data or q95 is not positive.
func SequentialScale(values []float64) models.ScaleDomain {
	sorted := stats.SortedCopy(stats.Finite(values))
	max := 1.0
	if len(sorted) > 0 {
		max = q95Or(sorted, 1)
	}
	return models.ScaleDomain{Min: 0, Max: max}
}

// RankScale spans [0, maxRank] with maxRank at least 1
func RankScale(maxRank int) models.ScaleDomain {
	if maxRank < 1 {
		maxRank = 1
	}
	return models.ScaleDomain{Min: 0, Max: float64(maxRank), RankMax: maxRank}
}

func q95Or(sorted []float64, floor float64) float64 {
	q95 := stats.QuantileSorted(sorted, 0.95)
	if q95 > 0 {
		return q95
	}
	return floor
}

func copyBreaks(b []float64) []float64 {
	out := make([]float64, len(b))
	copy(out, b)
	return out
}
