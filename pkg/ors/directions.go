package ors

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/safetyshield/saferoute/internal/geo"
)

// DirectionsRequest describes one directions call between two coordinates.
type DirectionsRequest struct {
	Profile          string // provider profile, e.g. "driving-car"
	Start, End       geo.Coordinate
	AvoidFeatures    []string // provider-native avoid features only
	Alternatives     bool
	AlternativeCount int
	WeightFactor     float64
}

// DirectionsResponse is the parsed provider response.
type DirectionsResponse struct {
	Routes []Route `json:"routes"`
}

// Route is one route option on the wire: encoded geometry, summary, and
// navigation segments.
type Route struct {
	Geometry string         `json:"geometry"`
	Summary  RouteSummary   `json:"summary"`
	Segments []RouteSegment `json:"segments"`
}

// RouteSummary carries the provider's distance and duration totals.
type RouteSummary struct {
	Distance float64 `json:"distance"` // meters
	Duration float64 `json:"duration"` // seconds
}

// RouteSegment groups ordered navigation steps.
type RouteSegment struct {
	Steps []RouteStep `json:"steps"`
}

// RouteStep is a single turn instruction. Order matters and is never
// rearranged.
type RouteStep struct {
	Instruction string  `json:"instruction"`
	Distance    float64 `json:"distance"` // meters
}

// directionsBody is the JSON request body for /v2/directions/{profile}.
type directionsBody struct {
	Coordinates  [][]float64        `json:"coordinates"`
	Instructions bool               `json:"instructions"`
	Options      *directionsOptions `json:"options,omitempty"`
	Alternatives *alternativeRoutes `json:"alternative_routes,omitempty"`
}

type directionsOptions struct {
	AvoidFeatures []string `json:"avoid_features"`
}

type alternativeRoutes struct {
	TargetCount  int     `json:"target_count"`
	WeightFactor float64 `json:"weight_factor"`
}

// Directions performs a single directions call. It never retries; failures
// come back as *ProviderError with a Kind the caller can act on.
func (c *Client) Directions(ctx context.Context, req DirectionsRequest) (*DirectionsResponse, error) {
	if req.Profile == "" {
		return nil, eris.New("ors: directions profile required")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "ors: directions rate limit")
	}

	body := directionsBody{
		Coordinates: [][]float64{
			{req.Start.Lon, req.Start.Lat},
			{req.End.Lon, req.End.Lat},
		},
		Instructions: true,
	}
	if len(req.AvoidFeatures) > 0 {
		body.Options = &directionsOptions{AvoidFeatures: req.AvoidFeatures}
	}
	if req.Alternatives {
		count := req.AlternativeCount
		if count <= 0 {
			count = 3
		}
		weight := req.WeightFactor
		if weight <= 0 {
			weight = 1.6
		}
		body.Alternatives = &alternativeRoutes{TargetCount: count, WeightFactor: weight}
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, eris.Wrap(err, "ors: directions marshal body")
	}

	reqURL := c.baseURL + "/v2/directions/" + req.Profile
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, eris.Wrap(err, "ors: directions build request")
	}
	httpReq.Header.Set("Accept", "application/json, application/geo+json")
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &ProviderError{Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProviderError{Kind: KindTransport, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		provErr := classifyResponse(resp.StatusCode, providerMessage(respBody))
		zap.L().Debug("directions call rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("kind", provErr.Kind.String()),
			zap.String("message", provErr.Message),
		)
		return nil, provErr
	}

	var directions DirectionsResponse
	if err := json.Unmarshal(respBody, &directions); err != nil {
		return nil, eris.Wrap(err, "ors: directions parse response")
	}

	return &directions, nil
}
