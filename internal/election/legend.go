package election

import (
	"math"
	"strconv"

	"github.com/jengzang/election-map-backend-go/internal/models"
	"github.com/jengzang/election-map-backend-go/internal/palette"
)

const (
	legendPartyLimit = 10
	legendRankLimit  = 10
)

// Axis holds the formatted low, mid and high values under a gradient
type Axis struct {
	Low  string `json:"low"`
	Mid  string `json:"mid"`
	High string `json:"high"`
}

// Swatch is one discrete legend row
type Swatch struct {
	Color     string `json:"color"`
	Label     string `json:"label"`
	Count     int    `json:"count"`
	PartyCode string `json:"party_code,omitempty"`
	Rank      int    `json:"rank,omitempty"`
	// Overflow marks the bucket of every rank past the last listed one
	Overflow bool `json:"overflow,omitempty"`
}

// Legend describes the legend of one render pass: a gradient with axis
// labels for continuous modes, swatches for rank modes.
type Legend struct {
	Mode        models.Mode    `json:"mode"`
	Gradient    []palette.Stop `json:"gradient,omitempty"`
	Axis        *Axis          `json:"axis,omitempty"`
	Parity      string         `json:"parity,omitempty"`
	Swatches    []Swatch       `json:"swatches,omitempty"`
	NoDataColor string         `json:"no_data_color"`
}

// BuildLegend derives the legend from the scale domain and the rendered rows
func BuildLegend(c *Context, domain models.ScaleDomain, rows []models.RenderStats) Legend {
	lg := Legend{Mode: c.Params.Mode, NoDataColor: palette.NoDataColor}
	mode := c.Params.Mode

	switch {
	case mode == models.ModePartyRank:
		lg.Swatches = partyRankSwatches(rows, domain)
		return lg
	case mode.IsRankMode():
		lg.Swatches = partySwatches(c, rows)
		return lg
	case mode.IsDiffMode():
		lg.Gradient = palette.SignedPalette(domain).Stops()
	default:
		lg.Gradient = palette.Share.Stops()
	}

	lg.Axis = axisFor(c, domain)
	if mode.IsDiffMode() {
		lg.Parity = "0"
		if c.ratioMetric() {
			lg.Parity = "1.00"
		}
	}
	return lg
}

func (c *Context) ratioMetric() bool {
	switch c.Params.Mode {
	case models.ModeSelectedDiff:
		return c.Params.SelectedMetric == models.MetricRatio
	case models.ModeRulingVsOpposition:
		return c.Params.RulingMetric == models.MetricRatio
	}
	return false
}

func axisFor(c *Context, d models.ScaleDomain) *Axis {
	switch c.Params.Mode {
	case models.ModeConcentration, models.ModeJSDivergence:
		return &Axis{Low: Fixed3(0), Mid: Fixed3(d.Max / 2), High: Fixed3(d.Max)}
	case models.ModeWinnerMargin:
		return &Axis{Low: PPLabel(0), Mid: PPLabel(d.Max / 2), High: PPLabel(d.Max)}
	case models.ModeSelectedDiff, models.ModeRulingVsOpposition:
		mid := 0.0
		if !d.CrossesZero {
			mid = d.Min + (d.Max-d.Min)/2
		}
		if c.ratioMetric() {
			exp := func(v float64) string {
				r := math.Exp(v)
				return RatioLabel(&r)
			}
			return &Axis{Low: exp(d.Min), Mid: exp(mid), High: exp(d.Max)}
		}
		return &Axis{Low: PPLabel(d.Min), Mid: PPLabel(mid), High: PPLabel(d.Max)}
	}
	return &Axis{Low: "0 %", Mid: PctLabel(d.Max / 2), High: PctLabel(d.Max)}
}

func partySwatches(c *Context, rows []models.RenderStats) []Swatch {
	counts := PartyCounts(c, rows)
	if len(counts) > legendPartyLimit {
		counts = counts[:legendPartyLimit]
	}
	out := make([]Swatch, 0, len(counts))
	for _, pc := range counts {
		out = append(out, Swatch{
			Color:     c.Colors.Color(pc.Code),
			Label:     pc.Name,
			Count:     pc.Count,
			PartyCode: pc.Code,
		})
	}
	return out
}

// partyRankSwatches lists ranks 1..min(maxRank, 10) and folds every worse
// rank into one overflow row.
func partyRankSwatches(rows []models.RenderStats, domain models.ScaleDomain) []Swatch {
	counts := RankCounts(rows)
	if len(counts) == 0 {
		return nil
	}
	maxInData := counts[len(counts)-1].Rank
	limit := maxInData
	if limit > legendRankLimit {
		limit = legendRankLimit
	}

	byRank := map[int]int{}
	tail := 0
	for _, rc := range counts {
		byRank[rc.Rank] = rc.Count
		if rc.Rank > limit {
			tail += rc.Count
		}
	}

	out := make([]Swatch, 0, limit+1)
	for rank := 1; rank <= limit; rank++ {
		r := rank
		out = append(out, Swatch{
			Color: palette.RankColor(&r, domain.RankMax),
			Label: rankLabel(rank),
			Count: byRank[rank],
			Rank:  rank,
		})
	}
	if maxInData > limit {
		r := limit + 1
		out = append(out, Swatch{
			Color:    palette.RankColor(&r, domain.RankMax),
			Label:    rankLabel(r) + "+",
			Count:    tail,
			Rank:     r,
			Overflow: true,
		})
	}
	return out
}

func rankLabel(rank int) string {
	return "#" + strconv.Itoa(rank)
}
