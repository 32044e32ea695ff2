// Package route fetches route options from a directions provider, splitting
// trips that exceed the provider's distance limit into concurrent leg requests
// and stitching the legs back into a single route.
package route

import (
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/safetyshield/saferoute/internal/geo"
)

// Step is a single turn instruction in presentation order.
type Step struct {
	Instruction    string
	DistanceMeters float64
}

// Route is one route option: decoded geometry plus the encoded wire form,
// provider totals, and ordered navigation steps. A stitched route and a single
// leg share this shape.
type Route struct {
	Geometry        []geo.Coordinate
	Encoded         string
	DistanceMeters  float64
	DurationSeconds float64
	Steps           []Step
}

// ErrNoRoutes is returned when the provider answers successfully but offers no
// route between the endpoints.
var ErrNoRoutes = eris.New("route: provider returned no routes")

// SegmentError identifies which leg of a segmented trip failed. Leg indices
// are zero-based in provider call order.
type SegmentError struct {
	LegIndex int
	Err      error
}

func (e *SegmentError) Error() string {
	return fmt.Sprintf("route: leg %d failed: %v", e.LegIndex, e.Err)
}

func (e *SegmentError) Unwrap() error {
	return e.Err
}
