// Package segment splits trips that exceed the routing provider's per-request
// distance limit into evenly interpolated legs.
package segment

import (
	"math"

	"github.com/safetyshield/saferoute/internal/geo"
)

// DefaultMaxLegMeters is the provider's per-request distance ceiling
// (5,000 km) used when no explicit limit is configured.
const DefaultMaxLegMeters = 5_000_000

// Needed reports whether the direct distance from a to b exceeds the
// maximum leg distance and the trip must be split.
func Needed(a, b geo.Coordinate, maxLegMeters float64) bool {
	return geo.Distance(a, b) > maxLegMeters
}

// Waypoints returns the interior waypoints that split the trip a->b into
// ceil(distance/maxLegMeters) legs of roughly equal length. The result is
// empty when no segmentation is needed. [a] + waypoints + [b] defines the
// ordered leg endpoints, one provider call per leg.
func Waypoints(a, b geo.Coordinate, maxLegMeters float64) []geo.Coordinate {
	total := geo.Distance(a, b)
	if total <= maxLegMeters {
		return nil
	}

	segments := int(math.Ceil(total / maxLegMeters))
	waypoints := make([]geo.Coordinate, 0, segments-1)
	for i := 1; i < segments; i++ {
		fraction := float64(i) / float64(segments)
		waypoints = append(waypoints, geo.Interpolate(a, b, fraction))
	}
	return waypoints
}

// LegEndpoints returns the full ordered endpoint sequence for the trip,
// including start and end.
func LegEndpoints(a, b geo.Coordinate, maxLegMeters float64) []geo.Coordinate {
	waypoints := Waypoints(a, b, maxLegMeters)
	endpoints := make([]geo.Coordinate, 0, len(waypoints)+2)
	endpoints = append(endpoints, a)
	endpoints = append(endpoints, waypoints...)
	endpoints = append(endpoints, b)
	return endpoints
}
