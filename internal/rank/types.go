// Package rank orchestrates a ranking request: fetch route options, size one
// hazard bounding box across all of them, score each candidate against a
// single hazard layer, and order the results by the safety priority policy.
package rank

import (
	"github.com/safetyshield/saferoute/internal/geo"
	"github.com/safetyshield/saferoute/internal/hazard"
	"github.com/safetyshield/saferoute/internal/route"
)

// Request is one ranking request. Endpoints are already geocoded; free-text
// place resolution happens at the CLI/server boundary.
type Request struct {
	Start            geo.Coordinate
	End              geo.Coordinate
	Profile          string
	Avoid            []string
	SafetyPriority   float64 // 0 fastest .. 10 safest
	Bucket           hazard.TimeBucket
	Alternatives     bool
	AlternativeCount int
	WeightFactor     float64
}

// Candidate is a scored route option. CombinedScore is set only under the
// blended ranking regime.
type Candidate struct {
	route.Route
	SafetyScore   float64
	CombinedScore *float64
}

// RankedStep is the presentation form of a navigation step.
type RankedStep struct {
	Instruction string  `json:"instruction"`
	DistanceM   float64 `json:"distance_m"`
}

// RankedRoute is the presentation form of a candidate; index 0 in a response
// is the recommended route.
type RankedRoute struct {
	Geometry      string           `json:"geometry"`
	Points        []geo.Coordinate `json:"points,omitempty"`
	DistanceM     float64          `json:"distance_m"`
	DurationS     float64          `json:"duration_s"`
	SafetyScore   float64          `json:"safety_score"`
	CombinedScore *float64         `json:"combined_score,omitempty"`
	Steps         []RankedStep     `json:"steps"`
}

// Present converts ordered candidates to the presentation boundary shape.
// Decoded points are included only when withPoints is set; API consumers that
// can decode the polyline themselves skip the weight.
func Present(candidates []Candidate, withPoints bool) []RankedRoute {
	out := make([]RankedRoute, 0, len(candidates))
	for _, c := range candidates {
		steps := make([]RankedStep, 0, len(c.Steps))
		for _, s := range c.Steps {
			steps = append(steps, RankedStep{Instruction: s.Instruction, DistanceM: s.DistanceMeters})
		}
		ranked := RankedRoute{
			Geometry:      c.Encoded,
			DistanceM:     c.DistanceMeters,
			DurationS:     c.DurationSeconds,
			SafetyScore:   c.SafetyScore,
			CombinedScore: c.CombinedScore,
			Steps:         steps,
		}
		if withPoints {
			ranked.Points = c.Geometry
		}
		out = append(out, ranked)
	}
	return out
}
