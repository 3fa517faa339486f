package spatial

import (
	"errors"
	"fmt"
	"sort"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/xy"

	"github.com/jengzang/election-map-backend-go/internal/models"
)

var (
	// ErrMalformedGeometry is returned when no polygon ring yields an anchor
	ErrMalformedGeometry = errors.New("spatial: malformed geometry")
	// ErrUnsupportedGeometry is returned for geometries other than (multi)polygons
	ErrUnsupportedGeometry = errors.New("spatial: unsupported geometry type")
)

const (
	anchorViewPad    = 0.25
	candidateViewPad = 0.15
	inViewBonus      = 1e9
	areaWeight       = 1000
)

// Viewport describes what the map currently shows
type Viewport struct {
	Bounds Bounds  `json:"bounds"`
	Center Point   `json:"center"`
	Zoom   float64 `json:"zoom"`
}

// NewViewport builds a viewport centered on bounds
func NewViewport(b Bounds, zoom float64) Viewport {
	return Viewport{Bounds: b, Center: b.Center(), Zoom: zoom}
}

// LabelAnchor picks where a feature's label goes.
//
// An explicit label_lat/label_lng pair wins. Otherwise every polygon's outer
// ring is scored by (in padded view ? 1e9 : 0) - metres to the map center
// + ring area * 1000, and the best ring centroid is returned.
func LabelAnchor(f *geojson.Feature, vp Viewport) (Point, error) {
	if f == nil {
		return Point{}, fmt.Errorf("%w: nil feature", ErrMalformedGeometry)
	}
	if lat, ok := NumberProp(f, "label_lat"); ok {
		if lng, ok := NumberProp(f, "label_lng"); ok {
			return Point{Lat: lat, Lon: lng}, nil
		}
	}
	if f.Geometry == nil {
		return Point{}, fmt.Errorf("%w: no geometry", ErrMalformedGeometry)
	}

	rings, err := outerRings(f.Geometry)
	if err != nil {
		return Point{}, err
	}

	view := vp.Bounds.Pad(anchorViewPad)
	var (
		best      Point
		bestScore float64
		found     bool
	)
	for _, ring := range rings {
		if len(ring) < 3 {
			continue
		}
		center, err := ringCentroid(ring)
		if err != nil {
			continue
		}

		score := -center.DistanceTo(vp.Center) + RingArea(coordsToPoints(ring))*areaWeight
		if view.Contains(center) {
			score += inViewBonus
		}
		if !found || score > bestScore {
			best, bestScore, found = center, score, true
		}
	}

	if !found {
		return Point{}, fmt.Errorf("%w: no usable polygon ring", ErrMalformedGeometry)
	}
	return best, nil
}

// AnchorOrFallback returns LabelAnchor, falling back to the feature's
// bounding-box center. Features with neither get no anchor.
func AnchorOrFallback(f *geojson.Feature, vp Viewport) (Point, bool) {
	if p, err := LabelAnchor(f, vp); err == nil {
		return p, true
	}
	if b, ok := FeatureBounds(f); ok {
		return b.Center(), true
	}
	return Point{}, false
}

func ringCentroid(ring []geom.Coord) (Point, error) {
	poly, err := geom.NewPolygon(geom.XY).SetCoords([][]geom.Coord{ring})
	if err != nil {
		return Point{}, fmt.Errorf("%w: %v", ErrMalformedGeometry, err)
	}
	c, err := xy.Centroid(poly)
	if err != nil {
		return Point{}, fmt.Errorf("%w: %v", ErrMalformedGeometry, err)
	}
	p := Point{Lat: c.Y(), Lon: c.X()}
	if !finitePoint(p) {
		return Point{}, fmt.Errorf("%w: degenerate ring", ErrMalformedGeometry)
	}
	return p, nil
}

func finitePoint(p Point) bool {
	b := Bounds{South: p.Lat, North: p.Lat, West: p.Lon, East: p.Lon}
	return b.Valid()
}

// Policy gates label rendering by zoom
type Policy struct {
	MinZoom   float64 `json:"min_zoom"`
	MaxLabels int     `json:"max_labels"`
}

// LabelPolicy returns the zoom threshold and label cap for a granularity.
// Municipality labels are tiered by zoom and hidden below zoom 9.
func LabelPolicy(g models.Granularity, zoom float64) Policy {
	switch g {
	case models.GranularityBlock:
		return Policy{MinZoom: 4, MaxLabels: 30}
	case models.GranularityPref:
		return Policy{MinZoom: 5, MaxLabels: 47}
	}
	switch {
	case zoom >= 11:
		return Policy{MinZoom: 11, MaxLabels: 300}
	case zoom >= 10:
		return Policy{MinZoom: 10, MaxLabels: 180}
	case zoom >= 9:
		return Policy{MinZoom: 9, MaxLabels: 90}
	}
	return Policy{MinZoom: 99, MaxLabels: 0}
}

// Label is one placed map label
type Label struct {
	Key    string  `json:"key"`
	Text   string  `json:"text"`
	Anchor Point   `json:"anchor"`
	Weight float64 `json:"weight"`
}

// LabelNamer returns a feature's key and display text
type LabelNamer func(f *geojson.Feature) (key, text string)

// SelectLabels thins features down to the labels worth drawing: anchors
// inside the slightly padded view, largest area weight first, capped by
// the zoom policy. Features with empty text are dropped after the cap.
func SelectLabels(features []*geojson.Feature, g models.Granularity, vp Viewport, visible bool, name LabelNamer) []Label {
	policy := LabelPolicy(g, vp.Zoom)
	if !visible || vp.Zoom < policy.MinZoom || policy.MaxLabels <= 0 {
		return []Label{}
	}

	view := vp.Bounds.Pad(candidateViewPad)
	type candidate struct {
		feature *geojson.Feature
		anchor  Point
		weight  float64
	}
	candidates := make([]candidate, 0, len(features))
	for _, f := range features {
		if f == nil {
			continue
		}
		anchor, ok := AnchorOrFallback(f, vp)
		if !ok || !view.Contains(anchor) {
			continue
		}
		candidates = append(candidates, candidate{feature: f, anchor: anchor, weight: AreaWeight(f)})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].weight > candidates[j].weight
	})
	if len(candidates) > policy.MaxLabels {
		candidates = candidates[:policy.MaxLabels]
	}

	labels := make([]Label, 0, len(candidates))
	for _, c := range candidates {
		key, text := name(c.feature)
		if text == "" {
			continue
		}
		labels = append(labels, Label{Key: key, Text: text, Anchor: c.anchor, Weight: c.weight})
	}
	return labels
}

// AreaWeight ranks label candidates: main_area_km2, then area_km2, then
// the bounding-box area in square degrees.
func AreaWeight(f *geojson.Feature) float64 {
	if v, ok := NumberProp(f, "main_area_km2"); ok {
		return v
	}
	if v, ok := NumberProp(f, "area_km2"); ok {
		return v
	}
	if b, ok := FeatureBounds(f); ok {
		return b.Area()
	}
	return 0
}
