package main

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/safetyshield/saferoute/internal/geo"
	"github.com/safetyshield/saferoute/internal/hazard"
	"github.com/safetyshield/saferoute/internal/resilience"
	"github.com/safetyshield/saferoute/pkg/ors"
)

func newProviderClient() *ors.Client {
	return ors.NewClient(cfg.Provider.Key,
		ors.WithBaseURL(cfg.Provider.BaseURL),
		ors.WithRateLimit(cfg.Provider.RateLimit),
		ors.WithGeocodeCacheSize(cfg.Provider.GeocodeCacheSize),
	)
}

// newHazardModel builds the configured hazard source. The returned closer is
// a no-op for sources without a handle to release.
func newHazardModel(ctx context.Context) (hazard.Model, func(), error) {
	switch cfg.Hazard.Source {
	case "synthetic":
		return hazard.NewSynthetic(cfg.Hazard.Seed), func() {}, nil
	case "sqlite":
		store, err := hazard.NewSQLite(cfg.Hazard.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	case "postgres":
		pool, err := newPgxPool(ctx, cfg.Hazard.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return hazard.NewPostgres(pool), func() { pool.Close() }, nil
	default:
		return nil, nil, eris.Errorf("unknown hazard source %q", cfg.Hazard.Source)
	}
}

func newPgxPool(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, eris.Wrap(err, "connect hazard database")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "ping hazard database")
	}
	return pool, nil
}

// parseCoordinate parses "lon,lat".
func parseCoordinate(s string) (geo.Coordinate, bool) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return geo.Coordinate{}, false
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return geo.Coordinate{}, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return geo.Coordinate{}, false
	}
	c := geo.Coordinate{Lon: lon, Lat: lat}
	return c, c.Valid()
}

// resolveEndpoint turns a CLI endpoint into a coordinate: either a literal
// "lon,lat" pair or a place name resolved through the geocoder, with retries
// on transient provider failures.
func resolveEndpoint(ctx context.Context, client *ors.Client, s string) (geo.Coordinate, error) {
	if c, ok := parseCoordinate(s); ok {
		return c, nil
	}

	retryCfg := resilience.DefaultRetryConfig()
	retryCfg.OnRetry = resilience.RetryLogger("ors", "geocode")
	coord, err := resilience.DoVal(ctx, retryCfg, func(ctx context.Context) (geo.Coordinate, error) {
		return client.Geocode(ctx, s)
	})
	if err != nil {
		return geo.Coordinate{}, eris.Wrapf(err, "resolve %q", s)
	}
	return coord, nil
}
