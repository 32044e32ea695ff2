package route

import "github.com/safetyshield/saferoute/internal/geo"

// Stitch merges consecutive legs into one route: distance and duration sum,
// geometry and steps concatenate in leg order. The shared boundary coordinate
// between consecutive legs is carried once; the stitched geometry is
// re-encoded so the route round-trips like a direct one.
func Stitch(legs []Route) Route {
	if len(legs) == 0 {
		return Route{}
	}
	if len(legs) == 1 {
		return legs[0]
	}

	var stitched Route
	for _, leg := range legs {
		stitched.DistanceMeters += leg.DistanceMeters
		stitched.DurationSeconds += leg.DurationSeconds
		stitched.Steps = append(stitched.Steps, leg.Steps...)

		points := leg.Geometry
		if n := len(stitched.Geometry); n > 0 && len(points) > 0 && stitched.Geometry[n-1] == points[0] {
			points = points[1:]
		}
		stitched.Geometry = append(stitched.Geometry, points...)
	}
	stitched.Encoded = geo.EncodePolyline(stitched.Geometry)
	return stitched
}
