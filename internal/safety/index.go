package safety

import (
	"math"

	"github.com/safetyshield/saferoute/internal/hazard"
)

// Index answers corridor queries over a fixed hazard point set.
type Index interface {
	// WeightWithin sums the weight of every hazard point whose planar
	// degree distance to c is strictly below radius.
	WeightWithin(lat, lon, radius float64) float64
}

// IndexBuilder constructs an Index for one scoring pass.
type IndexBuilder func(points []hazard.Point) Index

// LinearIndex is the reference implementation: a full scan per query.
type LinearIndex struct {
	points []hazard.Point
}

// NewLinearIndex wraps the point set without preprocessing.
func NewLinearIndex(points []hazard.Point) Index {
	return &LinearIndex{points: points}
}

func (idx *LinearIndex) WeightWithin(lat, lon, radius float64) float64 {
	var sum float64
	for _, p := range idx.points {
		if math.Hypot(p.Lat-lat, p.Lon-lon) < radius {
			sum += p.Weight
		}
	}
	return sum
}

// GridIndex buckets points into square cells so a query touches only the
// cells overlapping the query disc. The exact distance test is kept, so the
// same points match as with LinearIndex.
type GridIndex struct {
	cellSize float64
	cells    map[[2]int][]hazard.Point
}

// NewGridIndex builds a grid with the given cell size in degrees.
func NewGridIndex(points []hazard.Point, cellSize float64) Index {
	idx := &GridIndex{
		cellSize: cellSize,
		cells:    make(map[[2]int][]hazard.Point),
	}
	for _, p := range points {
		key := idx.cell(p.Lat, p.Lon)
		idx.cells[key] = append(idx.cells[key], p)
	}
	return idx
}

func (idx *GridIndex) cell(lat, lon float64) [2]int {
	return [2]int{
		int(math.Floor(lat / idx.cellSize)),
		int(math.Floor(lon / idx.cellSize)),
	}
}

func (idx *GridIndex) WeightWithin(lat, lon, radius float64) float64 {
	minCell := idx.cell(lat-radius, lon-radius)
	maxCell := idx.cell(lat+radius, lon+radius)

	var sum float64
	for row := minCell[0]; row <= maxCell[0]; row++ {
		for col := minCell[1]; col <= maxCell[1]; col++ {
			for _, p := range idx.cells[[2]int{row, col}] {
				if math.Hypot(p.Lat-lat, p.Lon-lon) < radius {
					sum += p.Weight
				}
			}
		}
	}
	return sum
}
