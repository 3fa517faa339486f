// Package palette maps metric values onto hex colors.
//
// All interpolation happens on 8-bit RGB channels with per-channel rounding,
// so the same input always yields the same "#rrggbb" string.
package palette

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/jengzang/election-map-backend-go/internal/stats"
)

// NoDataColor is used for features whose metric is missing
const NoDataColor = "#b6b8bc"

const (
	// ProgressGamma pushes sequential palettes toward their high end
	ProgressGamma = 1.35
	// LinearGamma leaves the normalized position untouched
	LinearGamma = 1.0
)

// Palette is an ordered list of color stops
type Palette []colorful.Color

// Stop is one gradient stop of a palette, Offset in percent
type Stop struct {
	Color  string  `json:"color"`
	Offset float64 `json:"offset"`
}

// MustParse builds a palette from hex strings and panics on a malformed entry
func MustParse(hexes ...string) Palette {
	p, err := Parse(hexes...)
	if err != nil {
		panic(err)
	}
	return p
}

// Parse builds a palette from hex strings
func Parse(hexes ...string) (Palette, error) {
	if len(hexes) == 0 {
		return nil, fmt.Errorf("palette: no colors")
	}
	p := make(Palette, len(hexes))
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			return nil, fmt.Errorf("palette: stop %d: %w", i, err)
		}
		p[i] = c
	}
	return p, nil
}

// At interpolates the palette at position t in [0, 1]
func (p Palette) At(t float64) string {
	if len(p) == 0 {
		return NoDataColor
	}
	t = stats.Clamp01(t)
	scaled := t * float64(len(p)-1)
	i := int(math.Floor(scaled))
	frac := scaled - float64(i)

	j := i + 1
	if j > len(p)-1 {
		j = len(p) - 1
	}

	r1, g1, b1 := p[i].RGB255()
	r2, g2, b2 := p[j].RGB255()
	return hex255(
		lerp8(r1, r2, frac),
		lerp8(g1, g2, frac),
		lerp8(b1, b2, frac),
	)
}

// First returns the lowest stop
func (p Palette) First() string { return p.At(0) }

// Last returns the highest stop
func (p Palette) Last() string { return p.At(1) }

// Stops returns evenly spaced gradient stops for a legend
func (p Palette) Stops() []Stop {
	stops := make([]Stop, len(p))
	for i, c := range p {
		offset := 0.0
		if len(p) > 1 {
			offset = float64(i) / float64(len(p)-1) * 100
		}
		stops[i] = Stop{Color: c.Hex(), Offset: offset}
	}
	return stops
}

func lerp8(a, b uint8, frac float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*frac))
}

func hex255(r, g, b uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// Built-in palettes.
var (
	Share = MustParse(
		"#ece5e0", "#d6dde2", "#bfd2de", "#a9c8d8", "#94bed2",
		"#76a8c1", "#598fb0", "#307da6", "#034481", "#001261",
	)

	Better = MustParse(
		"#ffffff", "#f8edf5", "#f1d8eb", "#e7bde0", "#db9bd2",
		"#cc73c2", "#bb49b1", "#a6269c", "#8b0f82", "#5f005c",
	)

	Worse = MustParse(
		"#ffffff", "#edf7ef", "#d9efdd", "#bde4c4", "#9dd7a9",
		"#78c98a", "#4ab868", "#1fa549", "#0e8235", "#005a24",
	)

	Diverging = MustParse(
		"#1f6b3a", "#58a36f", "#a8cfb5", "#f7f7f7", "#e8bfdc", "#c96aae", "#7a1f73",
	)

	PartyRank = MustParse(
		"#001261", "#034481", "#307da6", "#94bed2", "#ece5e0",
		"#dcac90", "#c37243", "#942f06", "#590008",
	)
)
