package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundsAccumulator_Fold(t *testing.T) {
	acc := NewBoundsAccumulator()
	assert.True(t, acc.Empty())

	acc.Fold(Coordinate{Lon: -120.5, Lat: 38.1})
	acc.Fold(Coordinate{Lon: -120.2, Lat: 38.5})
	require.False(t, acc.Empty())

	box := acc.Box()
	assert.Equal(t, -120.5, box.MinLon)
	assert.Equal(t, 38.1, box.MinLat)
	assert.Equal(t, -120.2, box.MaxLon)
	assert.Equal(t, 38.5, box.MaxLat)
}

func TestBoundsAccumulator_GrowsMonotonically(t *testing.T) {
	acc := NewBoundsAccumulator()
	acc.FoldAll([]Coordinate{
		{Lon: 1, Lat: 1},
		{Lon: 2, Lat: 2},
	})
	first := acc.Box()

	// Folding an interior point must not shrink the box.
	acc.Fold(Coordinate{Lon: 1.5, Lat: 1.5})
	assert.Equal(t, first, acc.Box())

	// Folding an exterior point only widens it.
	acc.Fold(Coordinate{Lon: 0, Lat: 3})
	box := acc.Box()
	assert.Equal(t, 0.0, box.MinLon)
	assert.Equal(t, 3.0, box.MaxLat)
	assert.Equal(t, 2.0, box.MaxLon)
	assert.Equal(t, 1.0, box.MinLat)
}

func TestBoundingBox_Pad(t *testing.T) {
	box := BoundingBox{MinLon: -1, MinLat: -2, MaxLon: 1, MaxLat: 2}
	padded := box.Pad(PaddingDegrees)

	assert.InDelta(t, -1.02, padded.MinLon, 1e-12)
	assert.InDelta(t, -2.02, padded.MinLat, 1e-12)
	assert.InDelta(t, 1.02, padded.MaxLon, 1e-12)
	assert.InDelta(t, 2.02, padded.MaxLat, 1e-12)
}

func TestBoundingBox_Contains(t *testing.T) {
	box := BoundingBox{MinLon: 0, MinLat: 0, MaxLon: 10, MaxLat: 10}

	assert.True(t, box.Contains(Coordinate{Lon: 5, Lat: 5}))
	assert.True(t, box.Contains(Coordinate{Lon: 0, Lat: 10}))
	assert.False(t, box.Contains(Coordinate{Lon: -0.1, Lat: 5}))
	assert.False(t, box.Contains(Coordinate{Lon: 5, Lat: 10.1}))
}

func TestBoundingBox_Clamp(t *testing.T) {
	box := BoundingBox{MinLon: 0, MinLat: 0, MaxLon: 10, MaxLat: 10}

	assert.Equal(t, Coordinate{Lon: 0, Lat: 10}, box.Clamp(Coordinate{Lon: -5, Lat: 15}))
	assert.Equal(t, Coordinate{Lon: 7, Lat: 3}, box.Clamp(Coordinate{Lon: 7, Lat: 3}))
}
