package spatial

import (
	"math"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/s2"
)

var validLat = r1.Interval{Lo: -math.Pi / 2, Hi: math.Pi / 2}

// Point represents a 2D point with latitude and longitude
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (p Point) latLng() s2.LatLng {
	return s2.LatLngFromDegrees(p.Lat, p.Lon)
}

// Bounds is a lat/lon rectangle in degrees
type Bounds struct {
	South float64 `json:"south" form:"south"`
	West  float64 `json:"west" form:"west"`
	North float64 `json:"north" form:"north"`
	East  float64 `json:"east" form:"east"`
}

// Valid reports whether the rectangle is finite and non-inverted
func (b Bounds) Valid() bool {
	for _, v := range []float64{b.South, b.West, b.North, b.East} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return b.South <= b.North && b.West <= b.East
}

func (b Bounds) rect() s2.Rect {
	r := s2.RectFromLatLng(s2.LatLngFromDegrees(b.South, b.West))
	return r.AddPoint(s2.LatLngFromDegrees(b.North, b.East))
}

// Pad grows the rectangle by ratio of its height and width on every side
func (b Bounds) Pad(ratio float64) Bounds {
	r := b.rect()
	return boundsFromRect(s2.Rect{
		Lat: r.Lat.Expanded(r.Lat.Length() * ratio).Intersection(validLat),
		Lng: r.Lng.Expanded(r.Lng.Length() * ratio),
	})
}

func boundsFromRect(r s2.Rect) Bounds {
	lo, hi := r.Lo(), r.Hi()
	return Bounds{
		South: lo.Lat.Degrees(),
		West:  lo.Lng.Degrees(),
		North: hi.Lat.Degrees(),
		East:  hi.Lng.Degrees(),
	}
}

// Contains reports whether p lies inside or on the edge of b
func (b Bounds) Contains(p Point) bool {
	if !b.Valid() {
		return false
	}
	return b.rect().ContainsLatLng(p.latLng())
}

// Center returns the midpoint of the rectangle
func (b Bounds) Center() Point {
	c := b.rect().Center()
	return Point{Lat: c.Lat.Degrees(), Lon: c.Lng.Degrees()}
}

// Area returns |width * height| in square degrees
func (b Bounds) Area() float64 {
	return math.Abs((b.East - b.West) * (b.North - b.South))
}

// RingArea calculates the absolute shoelace area of a ring in coordinate
// units (square degrees). Rings with fewer than three points have no area.
func RingArea(points []Point) float64 {
	if len(points) < 3 {
		return 0
	}

	var sum float64
	for i := 0; i < len(points); i++ {
		j := (i + 1) % len(points)
		sum += points[i].Lon*points[j].Lat - points[j].Lon*points[i].Lat
	}
	return math.Abs(sum / 2)
}
