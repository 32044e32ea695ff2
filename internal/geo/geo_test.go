package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistance_Zero(t *testing.T) {
	points := []Coordinate{
		{Lon: 0, Lat: 0},
		{Lon: -120.4606, Lat: 38.1327},
		{Lon: 179.9, Lat: -89.5},
	}
	for _, p := range points {
		assert.Zero(t, Distance(p, p))
	}
}

func TestDistance_Symmetric(t *testing.T) {
	a := Coordinate{Lon: -74.0060, Lat: 40.7128}
	b := Coordinate{Lon: -73.9654, Lat: 40.7829}
	assert.Equal(t, Distance(a, b), Distance(b, a))
}

func TestDistance_KnownValues(t *testing.T) {
	// One degree of latitude at the equator is ~111.19 km on a 6371 km sphere.
	a := Coordinate{Lon: 0, Lat: 0}
	b := Coordinate{Lon: 0, Lat: 1}
	assert.InDelta(t, 111195, Distance(a, b), 10)

	// Half a degree, the short end-to-end scenario.
	c := Coordinate{Lon: 0, Lat: 0.5}
	assert.InDelta(t, 55597, Distance(a, c), 10)

	// Fifty degrees of longitude at the equator, the segmented scenario.
	d := Coordinate{Lon: 50, Lat: 0}
	assert.InDelta(t, 5559746, Distance(a, d), 100)
}

func TestDistance_TriangleInequality(t *testing.T) {
	a := Coordinate{Lon: -122.4194, Lat: 37.7749}
	b := Coordinate{Lon: -118.2437, Lat: 34.0522}
	c := Coordinate{Lon: -115.1398, Lat: 36.1699}

	assert.LessOrEqual(t, Distance(a, c), Distance(a, b)+Distance(b, c)+1e-6)
}

func TestInterpolate_Endpoints(t *testing.T) {
	a := Coordinate{Lon: 10, Lat: 20}
	b := Coordinate{Lon: 30, Lat: -40}

	assert.Equal(t, a, Interpolate(a, b, 0))
	assert.Equal(t, b, Interpolate(a, b, 1))
}

func TestInterpolate_Midpoint(t *testing.T) {
	a := Coordinate{Lon: 0, Lat: 0}
	b := Coordinate{Lon: 50, Lat: 10}

	mid := Interpolate(a, b, 0.5)
	assert.InDelta(t, 25, mid.Lon, 1e-12)
	assert.InDelta(t, 5, mid.Lat, 1e-12)
}

func TestPolyline_RoundTrip(t *testing.T) {
	points := []Coordinate{
		{Lon: -120.2, Lat: 38.5},
		{Lon: -120.3, Lat: 38.35},
		{Lon: -120.5, Lat: 38.1},
	}

	encoded := EncodePolyline(points)
	require.NotEmpty(t, encoded)

	decoded, err := DecodePolyline(encoded)
	require.NoError(t, err)
	require.Len(t, decoded, len(points))
	for i := range points {
		assert.InDelta(t, points[i].Lon, decoded[i].Lon, 1e-5)
		assert.InDelta(t, points[i].Lat, decoded[i].Lat, 1e-5)
	}
}

func TestDecodePolyline_Empty(t *testing.T) {
	_, err := DecodePolyline("")
	assert.Error(t, err)
}

func TestCoordinate_Valid(t *testing.T) {
	assert.True(t, Coordinate{Lon: 0, Lat: 0}.Valid())
	assert.True(t, Coordinate{Lon: -180, Lat: 90}.Valid())
	assert.False(t, Coordinate{Lon: 181, Lat: 0}.Valid())
	assert.False(t, Coordinate{Lon: 0, Lat: -91}.Valid())
}
