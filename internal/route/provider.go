package route

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/safetyshield/saferoute/internal/geo"
	"github.com/safetyshield/saferoute/pkg/ors"
)

// AvoidHighCrimeAreas is accepted in avoid sets for forward compatibility but
// is not a provider-native feature; the adapter filters it out before the
// call. Hazard avoidance happens in scoring, not in the provider request.
const AvoidHighCrimeAreas = "high_crime_areas"

// LegOptions carries the per-request knobs for a directions call.
type LegOptions struct {
	Profile          string
	AvoidFeatures    []string
	Alternatives     bool
	AlternativeCount int
	WeightFactor     float64
}

// Provider fetches route options between two coordinates. Implementations
// must not retry; the caller owns retry and fallback policy.
type Provider interface {
	Name() string
	FetchLeg(ctx context.Context, start, end geo.Coordinate, opts LegOptions) ([]Route, error)
}

// ORSProvider adapts the OpenRouteService-style client to the Provider
// interface: it decodes polyline geometry and flattens segment steps.
type ORSProvider struct {
	client *ors.Client
}

// NewORSProvider wraps an ors client.
func NewORSProvider(client *ors.Client) *ORSProvider {
	return &ORSProvider{client: client}
}

// Name identifies the provider in logs.
func (p *ORSProvider) Name() string {
	return "openrouteservice"
}

// FetchLeg performs one directions call and converts the wire routes.
func (p *ORSProvider) FetchLeg(ctx context.Context, start, end geo.Coordinate, opts LegOptions) ([]Route, error) {
	resp, err := p.client.Directions(ctx, ors.DirectionsRequest{
		Profile:          opts.Profile,
		Start:            start,
		End:              end,
		AvoidFeatures:    filterAvoid(opts.AvoidFeatures),
		Alternatives:     opts.Alternatives,
		AlternativeCount: opts.AlternativeCount,
		WeightFactor:     opts.WeightFactor,
	})
	if err != nil {
		return nil, err
	}

	routes := make([]Route, 0, len(resp.Routes))
	for i, wire := range resp.Routes {
		converted, err := convertRoute(wire)
		if err != nil {
			return nil, eris.Wrapf(err, "route: convert provider route %d", i)
		}
		routes = append(routes, converted)
	}
	return routes, nil
}

func convertRoute(wire ors.Route) (Route, error) {
	geometry, err := geo.DecodePolyline(wire.Geometry)
	if err != nil {
		return Route{}, err
	}

	var steps []Step
	for _, seg := range wire.Segments {
		for _, s := range seg.Steps {
			steps = append(steps, Step{Instruction: s.Instruction, DistanceMeters: s.Distance})
		}
	}

	return Route{
		Geometry:        geometry,
		Encoded:         wire.Geometry,
		DistanceMeters:  wire.Summary.Distance,
		DurationSeconds: wire.Summary.Duration,
		Steps:           steps,
	}, nil
}

func filterAvoid(features []string) []string {
	filtered := make([]string, 0, len(features))
	for _, f := range features {
		if f == AvoidHighCrimeAreas {
			continue
		}
		filtered = append(filtered, f)
	}
	return filtered
}
