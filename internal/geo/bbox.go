package geo

import (
	"github.com/twpayne/go-geom"
)

// PaddingDegrees is the fixed margin added to a bounding box before hazard
// lookup, roughly 2 km at mid latitudes.
const PaddingDegrees = 0.02

// BoundingBox is an axis-aligned lon/lat box. Invariant: min <= max per axis.
type BoundingBox struct {
	MinLon float64 `json:"min_lon"`
	MinLat float64 `json:"min_lat"`
	MaxLon float64 `json:"max_lon"`
	MaxLat float64 `json:"max_lat"`
}

// Contains reports whether the coordinate lies inside the box (inclusive).
func (b BoundingBox) Contains(c Coordinate) bool {
	return c.Lon >= b.MinLon && c.Lon <= b.MaxLon &&
		c.Lat >= b.MinLat && c.Lat <= b.MaxLat
}

// Pad returns a copy of the box expanded by margin degrees on every side.
func (b BoundingBox) Pad(margin float64) BoundingBox {
	return BoundingBox{
		MinLon: b.MinLon - margin,
		MinLat: b.MinLat - margin,
		MaxLon: b.MaxLon + margin,
		MaxLat: b.MaxLat + margin,
	}
}

// Clamp returns c pulled inside the box on both axes.
func (b BoundingBox) Clamp(c Coordinate) Coordinate {
	return Coordinate{
		Lon: min(b.MaxLon, max(b.MinLon, c.Lon)),
		Lat: min(b.MaxLat, max(b.MinLat, c.Lat)),
	}
}

// BoundsAccumulator folds coordinates into a monotonically growing bounding
// box. It is request-scoped and not safe for concurrent use; decoded candidate
// geometries are folded by a single writer after all legs are fetched.
type BoundsAccumulator struct {
	bounds *geom.Bounds
}

// NewBoundsAccumulator returns an empty accumulator.
func NewBoundsAccumulator() *BoundsAccumulator {
	return &BoundsAccumulator{bounds: geom.NewBounds(geom.XY)}
}

// Fold extends the bounds with a single coordinate.
func (a *BoundsAccumulator) Fold(c Coordinate) {
	a.bounds.Extend(geom.NewPointFlat(geom.XY, []float64{c.Lon, c.Lat}))
}

// FoldAll extends the bounds with every coordinate in points.
func (a *BoundsAccumulator) FoldAll(points []Coordinate) {
	if len(points) == 0 {
		return
	}
	flat := make([]float64, 0, len(points)*2)
	for _, p := range points {
		flat = append(flat, p.Lon, p.Lat)
	}
	a.bounds.Extend(geom.NewLineStringFlat(geom.XY, flat))
}

// Empty reports whether nothing has been folded yet.
func (a *BoundsAccumulator) Empty() bool {
	return a.bounds.IsEmpty()
}

// Box returns the accumulated bounding box. Call only when not Empty.
func (a *BoundsAccumulator) Box() BoundingBox {
	return BoundingBox{
		MinLon: a.bounds.Min(0),
		MinLat: a.bounds.Min(1),
		MaxLon: a.bounds.Max(0),
		MaxLat: a.bounds.Max(1),
	}
}
