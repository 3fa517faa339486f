package spatial

import (
	"math"
	"strconv"
	"strings"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// StringProp returns a feature property rendered as a string.
// Numbers are formatted without exponent or trailing zeros.
func StringProp(f *geojson.Feature, key string) string {
	if f == nil || f.Properties == nil {
		return ""
	}
	switch v := f.Properties[key].(type) {
	case string:
		return v
	case float64:
		if v == 0 || math.IsNaN(v) {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		if v == 0 {
			return ""
		}
		return strconv.Itoa(v)
	case int64:
		if v == 0 {
			return ""
		}
		return strconv.FormatInt(v, 10)
	}
	return ""
}

// NumberProp returns a finite numeric property
func NumberProp(f *geojson.Feature, key string) (float64, bool) {
	if f == nil || f.Properties == nil {
		return 0, false
	}
	var n float64
	switch v := f.Properties[key].(type) {
	case float64:
		n = v
	case float32:
		n = float64(v)
	case int:
		n = float64(v)
	case int64:
		n = float64(v)
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// PadCode left-pads a numeric code with zeros to width
func PadCode(code string, width int) string {
	code = strings.TrimSpace(code)
	if len(code) >= width {
		return code
	}
	return strings.Repeat("0", width-len(code)) + code
}

// FeatureBounds returns the bounding box of a feature's geometry
func FeatureBounds(f *geojson.Feature) (Bounds, bool) {
	if f == nil || f.Geometry == nil {
		return Bounds{}, false
	}
	gb := f.Geometry.Bounds()
	if gb == nil || gb.IsEmpty() {
		return Bounds{}, false
	}
	b := Bounds{
		West:  gb.Min(0),
		South: gb.Min(1),
		East:  gb.Max(0),
		North: gb.Max(1),
	}
	if !b.Valid() {
		return Bounds{}, false
	}
	return b, true
}

// outerRings returns the outer ring of every polygon in g as XY coordinates
func outerRings(g geom.T) ([][]geom.Coord, error) {
	switch t := g.(type) {
	case *geom.Polygon:
		if t.NumLinearRings() == 0 {
			return nil, nil
		}
		return [][]geom.Coord{xyCoords(t.LinearRing(0))}, nil
	case *geom.MultiPolygon:
		rings := make([][]geom.Coord, 0, t.NumPolygons())
		for i := 0; i < t.NumPolygons(); i++ {
			p := t.Polygon(i)
			if p.NumLinearRings() == 0 {
				continue
			}
			rings = append(rings, xyCoords(p.LinearRing(0)))
		}
		return rings, nil
	}
	return nil, ErrUnsupportedGeometry
}

func xyCoords(ring *geom.LinearRing) []geom.Coord {
	coords := ring.Coords()
	out := make([]geom.Coord, 0, len(coords))
	for _, c := range coords {
		if len(c) < 2 {
			continue
		}
		out = append(out, geom.Coord{c[0], c[1]})
	}
	return out
}

func coordsToPoints(coords []geom.Coord) []Point {
	points := make([]Point, len(coords))
	for i, c := range coords {
		points[i] = Point{Lat: c[1], Lon: c[0]}
	}
	return points
}
