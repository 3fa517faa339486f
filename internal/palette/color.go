package palette

import (
	"math"
	"sort"

	"github.com/jengzang/election-map-backend-go/internal/models"
	"github.com/jengzang/election-map-backend-go/internal/stats"
)

// minSpan keeps signed domains from collapsing to zero width
const minSpan = 0.01

// SkewRight applies ProgressGamma to a clamped position
func SkewRight(t float64) float64 {
	return math.Pow(stats.Clamp01(t), ProgressGamma)
}

// ColorFor maps value onto p after normalizing against max and applying gamma.
// A nil or NaN value yields NoDataColor; a non-positive max pins to the first stop.
func ColorFor(value *float64, max float64, p Palette, gamma float64) string {
	if value == nil || math.IsNaN(*value) {
		return NoDataColor
	}
	t := 0.0
	if max > 0 {
		t = stats.Clamp01(*value / max)
	}
	return p.At(math.Pow(t, gamma))
}

// SignedColor colors a diff or log-ratio value against a signed domain.
// Zero-crossing domains use the diverging palette centered on parity; other
// domains pick Better or Worse by the sign of the domain minimum.
func SignedColor(value *float64, domain models.ScaleDomain) string {
	if value == nil || math.IsNaN(*value) {
		return NoDataColor
	}
	v := *value

	if domain.CrossesZero {
		maxAbs := math.Max(math.Max(math.Abs(domain.Min), math.Abs(domain.Max)), minSpan)
		return Diverging.At(stats.Clamp01((v/maxAbs + 1) / 2))
	}

	clipped := math.Max(domain.Min, math.Min(domain.Max, v))
	span := math.Max(domain.Max-domain.Min, minSpan)
	if domain.Min >= 0 {
		return Better.At(SkewRight((clipped - domain.Min) / span))
	}
	return Worse.At(SkewRight((domain.Max - clipped) / span))
}

// SignedPalette returns the palette SignedColor would draw from for domain
func SignedPalette(domain models.ScaleDomain) Palette {
	if domain.CrossesZero {
		return Diverging
	}
	if domain.Min >= 0 {
		return Better
	}
	return Worse
}

// RankColor colors a 1-based rank: first place takes the first stop,
// maxRank or worse the last, everything between is interpolated.
func RankColor(rank *int, maxRank int) string {
	if rank == nil {
		return NoDataColor
	}
	r := *rank
	if maxRank < r {
		maxRank = r
	}
	if maxRank < 1 {
		maxRank = 1
	}
	if r <= 1 {
		return PartyRank.First()
	}
	if r >= maxRank {
		return PartyRank.Last()
	}
	return PartyRank.At(float64(r-1) / float64(maxRank-1))
}

// UnknownPartyColor is used for party codes with no assigned color
const UnknownPartyColor = "#9ca3af"

var fixedPartyColors = map[string]string{
	"jimin":          "#a5002d",
	"chudou":         "#1f5fbf",
	"mirai":          "#64d8c6",
	"ishin":          "#8dc21f",
	"kokumin":        "#f8bc00",
	"kyosan":         "#d7000f",
	"sanseito":       "#f39800",
	"hoshu":          "#55c3f1",
	"shamin":         "#007bc3",
	"reiwa":          "#e4007f",
	"genzei_yuukoku": "#0f4c81",
	"anrakushi":      "#6b7280",
}

var fallbackPartyColors = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// PartyColors maps party code to its identity color
type PartyColors map[string]string

// NewPartyColors assigns identity colors to the roster. Parties without a
// fixed color take the fallback palette in sorted-code order.
func NewPartyColors(parties []models.Party) PartyColors {
	codes := make([]string, 0, len(parties))
	for _, p := range parties {
		codes = append(codes, p.Code)
	}
	sort.Strings(codes)

	colors := make(PartyColors, len(codes))
	next := 0
	for _, code := range codes {
		if c, ok := fixedPartyColors[code]; ok {
			colors[code] = c
			continue
		}
		colors[code] = fallbackPartyColors[next%len(fallbackPartyColors)]
		next++
	}
	return colors
}

// Color returns the identity color for code
func (pc PartyColors) Color(code string) string {
	if code == "" {
		return UnknownPartyColor
	}
	if c, ok := pc[code]; ok {
		return c
	}
	return UnknownPartyColor
}
