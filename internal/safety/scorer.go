// Package safety scores route geometries against a hazard layer: a corridor
// test over weighted hazard points plus a per-hotspot penetration penalty,
// normalized into a 0-100 score.
package safety

import (
	"math"

	"github.com/safetyshield/saferoute/internal/geo"
	"github.com/safetyshield/saferoute/internal/hazard"
)

// CorridorHalfWidthDeg is the corridor half-width around the route in planar
// degrees, roughly 100 m.
const CorridorHalfWidthDeg = 0.001

// DefaultScore is returned when the hazard layer or the route geometry is
// empty: insufficiently informed, assume safe. A deliberate conservative
// default, not a penalty.
const DefaultScore = 95.0

// Scorer computes safety scores. Stateless between calls; safe for
// concurrent use.
type Scorer struct {
	buildIndex IndexBuilder
}

// ScorerOption configures a Scorer.
type ScorerOption func(*Scorer)

// WithIndexBuilder swaps the hazard-point index implementation.
func WithIndexBuilder(b IndexBuilder) ScorerOption {
	return func(s *Scorer) {
		s.buildIndex = b
	}
}

// NewScorer creates a Scorer. The default index is a uniform grid sized to
// the corridor width.
func NewScorer(opts ...ScorerOption) *Scorer {
	s := &Scorer{
		buildIndex: func(points []hazard.Point) Index {
			return NewGridIndex(points, CorridorHalfWidthDeg)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score rates a route geometry against the hazard layer. Every route point
// accumulates the weight of hazard points inside the corridor; each hotspot
// adds at most one penalty, from the first route point inside its radius.
// The accumulator is normalized by route length and inverted into [0, 100].
func (s *Scorer) Score(route []geo.Coordinate, points []hazard.Point, hotspots []hazard.Hotspot) float64 {
	if len(route) == 0 || len(points) == 0 {
		return DefaultScore
	}

	idx := s.buildIndex(points)

	var acc float64
	for _, rp := range route {
		acc += idx.WeightWithin(rp.Lat, rp.Lon, CorridorHalfWidthDeg)
	}

	for _, h := range hotspots {
		for _, rp := range route {
			d := math.Hypot(rp.Lat-h.Lat, rp.Lon-h.Lon)
			if d < h.RadiusDeg {
				acc += (h.RadiusDeg - d) / h.RadiusDeg * 2
				break
			}
		}
	}

	normalized := acc / float64(len(route))
	return math.Max(0, 100-math.Min(100, normalized*100))
}
