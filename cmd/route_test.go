package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safetyshield/saferoute/internal/config"
	"github.com/safetyshield/saferoute/internal/geo"
	"github.com/safetyshield/saferoute/internal/hazard"
	"github.com/safetyshield/saferoute/internal/rank"
	"github.com/safetyshield/saferoute/pkg/ors"
)

// directionsStub simulates a provider that rejects legs above a distance
// ceiling with the distance-limit error body.
func directionsStub(t *testing.T, maxLegMeters float64, calls *atomic.Int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)

		var body struct {
			Coordinates [][]float64 `json:"coordinates"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Coordinates, 2)

		start := geo.Coordinate{Lon: body.Coordinates[0][0], Lat: body.Coordinates[0][1]}
		end := geo.Coordinate{Lon: body.Coordinates[1][0], Lat: body.Coordinates[1][1]}
		dist := geo.Distance(start, end)

		w.Header().Set("Content-Type", "application/json")
		if dist > maxLegMeters {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{
					"code":    2004,
					"message": "The approximated route distance must not be greater than 60000.0 meters.",
				},
			})
			return
		}

		encoded := geo.EncodePolyline([]geo.Coordinate{start, end})
		_ = json.NewEncoder(w).Encode(map[string]any{
			"routes": []map[string]any{{
				"geometry": encoded,
				"summary":  map[string]float64{"distance": dist, "duration": dist / 10},
				"segments": []map[string]any{
					{"steps": []map[string]any{{"instruction": "Continue", "distance": dist}}},
				},
			}},
		})
	}))
}

func TestRankWithFallback_SegmentsAfterDistanceLimit(t *testing.T) {
	var calls atomic.Int64
	srv := directionsStub(t, 60_000, &calls)
	defer srv.Close()

	cfg = &config.Config{
		Routing: config.RoutingConfig{LegConcurrency: 2},
	}
	client := ors.NewClient("test-key", ors.WithBaseURL(srv.URL), ors.WithRateLimit(1000))

	// (0,0) -> (1,0) is ~111 km: the direct request is rejected, the fallback
	// halves against the trip distance and refetches as two ~55.6 km legs.
	req := rank.Request{
		Start:          geo.Coordinate{Lon: 0, Lat: 0},
		End:            geo.Coordinate{Lon: 1, Lat: 0},
		Profile:        "driving-car",
		SafetyPriority: 10,
		Bucket:         hazard.BucketNight,
		Alternatives:   true,
	}

	candidates, err := rankWithFallback(context.Background(), client, hazard.NewSynthetic(7), req, 5_000_000)
	require.NoError(t, err)

	require.Len(t, candidates, 1)
	assert.Equal(t, int64(3), calls.Load()) // 1 rejected direct + 2 legs
	assert.InDelta(t, geo.Distance(req.Start, geo.Coordinate{Lon: 0.5, Lat: 0})*2,
		candidates[0].DistanceMeters, 1.0)
	assert.Len(t, candidates[0].Steps, 2)
}

func TestRankWithFallback_NonDistanceErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": {"message": "key quota exceeded"}}`))
	}))
	defer srv.Close()

	cfg = &config.Config{Routing: config.RoutingConfig{LegConcurrency: 2}}
	client := ors.NewClient("test-key", ors.WithBaseURL(srv.URL), ors.WithRateLimit(1000))

	req := rank.Request{
		Start:          geo.Coordinate{Lon: 0, Lat: 0},
		End:            geo.Coordinate{Lon: 0.1, Lat: 0},
		Profile:        "driving-car",
		SafetyPriority: 5,
		Bucket:         hazard.BucketNight,
	}

	_, err := rankWithFallback(context.Background(), client, hazard.NewSynthetic(7), req, 5_000_000)
	require.Error(t, err)

	var pe *ors.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ors.KindRejected, pe.Kind)
}
