package hazard

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/safetyshield/saferoute/internal/geo"
)

// Pool is the subset of pgxpool.Pool the store needs; pgxmock satisfies it in
// tests.
type Pool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresStore serves the hazard layer from a shared Postgres database.
type PostgresStore struct {
	pool Pool
}

// NewPostgres wraps a connection pool.
func NewPostgres(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Name identifies the model in logs.
func (s *PostgresStore) Name() string {
	return "postgres"
}

// Layer returns the stored observations inside bbox for the resolved bucket.
func (s *PostgresStore) Layer(ctx context.Context, bbox geo.BoundingBox, bucket TimeBucket) ([]Point, []Hotspot, error) {
	resolved := bucket.Resolve(time.Now())

	rows, err := s.pool.Query(ctx,
		`SELECT lat, lon, weight FROM hazard_points
		 WHERE bucket = $1 AND lat BETWEEN $2 AND $3 AND lon BETWEEN $4 AND $5`,
		string(resolved), bbox.MinLat, bbox.MaxLat, bbox.MinLon, bbox.MaxLon)
	if err != nil {
		return nil, nil, eris.Wrap(err, "hazard: query points")
	}

	points, err := scanPoints(rows)
	if err != nil {
		return nil, nil, err
	}

	hotRows, err := s.pool.Query(ctx,
		`SELECT lat, lon, radius_deg FROM hazard_hotspots
		 WHERE bucket = $1 AND lat BETWEEN $2 AND $3 AND lon BETWEEN $4 AND $5`,
		string(resolved), bbox.MinLat, bbox.MaxLat, bbox.MinLon, bbox.MaxLon)
	if err != nil {
		return nil, nil, eris.Wrap(err, "hazard: query hotspots")
	}

	hotspots, err := scanHotspots(hotRows)
	if err != nil {
		return nil, nil, err
	}

	zap.L().Debug("loaded hazard layer from postgres",
		zap.String("bucket", string(resolved)),
		zap.Int("points", len(points)),
		zap.Int("hotspots", len(hotspots)),
	)
	return points, hotspots, nil
}

func scanPoints(rows pgx.Rows) ([]Point, error) {
	defer rows.Close()
	var points []Point
	for rows.Next() {
		var p Point
		if err := rows.Scan(&p.Lat, &p.Lon, &p.Weight); err != nil {
			return nil, eris.Wrap(err, "hazard: scan point")
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "hazard: iterate points")
	}
	return points, nil
}

func scanHotspots(rows pgx.Rows) ([]Hotspot, error) {
	defer rows.Close()
	var hotspots []Hotspot
	for rows.Next() {
		var h Hotspot
		if err := rows.Scan(&h.Lat, &h.Lon, &h.RadiusDeg); err != nil {
			return nil, eris.Wrap(err, "hazard: scan hotspot")
		}
		hotspots = append(hotspots, h)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "hazard: iterate hotspots")
	}
	return hotspots, nil
}
