package safety

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safetyshield/saferoute/internal/geo"
	"github.com/safetyshield/saferoute/internal/hazard"
)

func straightRoute(n int) []geo.Coordinate {
	route := make([]geo.Coordinate, n)
	for i := range route {
		route[i] = geo.Interpolate(
			geo.Coordinate{Lon: -74.00, Lat: 40.70},
			geo.Coordinate{Lon: -73.90, Lat: 40.80},
			float64(i)/float64(n-1),
		)
	}
	return route
}

func TestScore_EmptyInputsDefault(t *testing.T) {
	s := NewScorer()
	route := straightRoute(10)

	assert.InDelta(t, DefaultScore, s.Score(route, nil, nil), 1e-9)
	assert.InDelta(t, DefaultScore, s.Score(nil, []hazard.Point{{Lat: 1, Lon: 1, Weight: 1}}, nil), 1e-9)
	assert.InDelta(t, DefaultScore, s.Score(nil, nil, nil), 1e-9)
}

func TestScore_DistantHazardsDoNotPenalize(t *testing.T) {
	s := NewScorer()
	route := straightRoute(10)

	// Hazard mass far outside the corridor.
	points := []hazard.Point{
		{Lat: 41.5, Lon: -74.0, Weight: 1},
		{Lat: 39.5, Lon: -73.9, Weight: 1},
	}
	assert.InDelta(t, 100, s.Score(route, points, nil), 1e-9)
}

func TestScore_MonotoneInOnRouteWeight(t *testing.T) {
	s := NewScorer()
	route := straightRoute(10)

	onRoute := func(weight float64) []hazard.Point {
		points := make([]hazard.Point, 0, len(route))
		for _, rp := range route {
			points = append(points, hazard.Point{Lat: rp.Lat, Lon: rp.Lon, Weight: weight})
		}
		return points
	}

	light := s.Score(route, onRoute(0.2), nil)
	heavy := s.Score(route, onRoute(0.8), nil)
	assert.Less(t, heavy, light)
	assert.Less(t, light, 100.0)
}

func TestScore_HotspotOnMidpointBeatsBaseline(t *testing.T) {
	s := NewScorer()
	route := straightRoute(11)
	mid := route[5]

	hotspot := hazard.Hotspot{Lat: mid.Lat, Lon: mid.Lon, RadiusDeg: 0.02}
	points := []hazard.Point{{Lat: mid.Lat, Lon: mid.Lon, Weight: 0.5}}

	score := s.Score(route, points, []hazard.Hotspot{hotspot})
	assert.Less(t, score, DefaultScore)
}

func TestScore_OnePenaltyPerHotspot(t *testing.T) {
	s := NewScorer()
	// Every route point sits at the hotspot center; the penalty must apply
	// once, not once per point.
	center := geo.Coordinate{Lon: -73.95, Lat: 40.75}
	route := []geo.Coordinate{center, center, center, center}
	hotspot := hazard.Hotspot{Lat: center.Lat, Lon: center.Lon, RadiusDeg: 0.02}
	far := []hazard.Point{{Lat: 0, Lon: 0, Weight: 0.1}}

	// dist 0 at the center: penalty (r-0)/r*2 = 2, normalized by 4 points
	// -> 0.5 -> score 50.
	score := s.Score(route, far, []hazard.Hotspot{hotspot})
	assert.InDelta(t, 50, score, 1e-9)
}

func TestScore_ClampsAtZero(t *testing.T) {
	s := NewScorer()
	route := []geo.Coordinate{{Lon: -73.95, Lat: 40.75}}
	points := make([]hazard.Point, 50)
	for i := range points {
		points[i] = hazard.Point{Lat: 40.75, Lon: -73.95, Weight: 1}
	}
	assert.InDelta(t, 0, s.Score(route, points, nil), 1e-9)
}

func TestGridIndex_MatchesLinearIndex(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 11))
	points := make([]hazard.Point, 500)
	for i := range points {
		points[i] = hazard.Point{
			Lat:    40.70 + rng.Float64()*0.1,
			Lon:    -74.00 + rng.Float64()*0.1,
			Weight: 0.2 + rng.Float64()*0.8,
		}
	}

	grid := NewGridIndex(points, CorridorHalfWidthDeg)
	linear := NewLinearIndex(points)

	for i := 0; i < 200; i++ {
		lat := 40.70 + rng.Float64()*0.1
		lon := -74.00 + rng.Float64()*0.1
		// Identical membership; only the float summation order differs.
		assert.InDelta(t, linear.WeightWithin(lat, lon, CorridorHalfWidthDeg),
			grid.WeightWithin(lat, lon, CorridorHalfWidthDeg), 1e-12)
	}
}

func TestScorer_IndexBuilderOption(t *testing.T) {
	built := 0
	s := NewScorer(WithIndexBuilder(func(points []hazard.Point) Index {
		built++
		return NewLinearIndex(points)
	}))

	route := straightRoute(5)
	_ = s.Score(route, []hazard.Point{{Lat: 40.75, Lon: -73.95, Weight: 0.5}}, nil)
	assert.Equal(t, 1, built)
}

func TestScore_SyntheticLayerIsDeterministic(t *testing.T) {
	bbox := geo.BoundingBox{MinLon: -74.00, MinLat: 40.70, MaxLon: -73.90, MaxLat: 40.80}
	points, hotspots, err := hazard.NewSynthetic(42).Layer(context.Background(), bbox, hazard.BucketNight)
	require.NoError(t, err)

	s := NewScorer()
	route := straightRoute(30)
	first := s.Score(route, points, hotspots)
	second := s.Score(route, points, hotspots)
	assert.Equal(t, first, second)
	assert.GreaterOrEqual(t, first, 0.0)
	assert.LessOrEqual(t, first, 100.0)
}
