package hazard

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/safetyshield/saferoute/internal/geo"
)

// SQLiteStore serves the hazard layer from a local SQLite database of real
// observations, loaded via `saferoute hazards import`.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens the hazard database at the given path and configures WAL
// mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "hazard: open sqlite")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "hazard: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS hazard_points (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	lat         REAL NOT NULL,
	lon         REAL NOT NULL,
	weight      REAL NOT NULL,
	bucket      TEXT NOT NULL,
	source      TEXT NOT NULL DEFAULT 'import',
	imported_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS hazard_hotspots (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	lat        REAL NOT NULL,
	lon        REAL NOT NULL,
	radius_deg REAL NOT NULL,
	bucket     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_hazard_points_bucket ON hazard_points(bucket);
CREATE INDEX IF NOT EXISTS idx_hazard_points_lat_lon ON hazard_points(lat, lon);
CREATE INDEX IF NOT EXISTS idx_hazard_hotspots_bucket ON hazard_hotspots(bucket);
`

// Migrate creates the hazard schema.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "hazard: migrate sqlite")
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Name identifies the model in logs.
func (s *SQLiteStore) Name() string {
	return "sqlite"
}

// InsertPoints stores observations for a bucket in a single transaction.
func (s *SQLiteStore) InsertPoints(ctx context.Context, bucket TimeBucket, points []Point) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "hazard: begin insert")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO hazard_points (lat, lon, weight, bucket) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "hazard: prepare insert")
	}
	defer stmt.Close() //nolint:errcheck

	for _, p := range points {
		if _, err := stmt.ExecContext(ctx, p.Lat, p.Lon, p.Weight, string(bucket)); err != nil {
			return eris.Wrap(err, "hazard: insert point")
		}
	}
	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "hazard: commit insert")
	}
	return nil
}

// InsertHotspots stores hotspots for a bucket.
func (s *SQLiteStore) InsertHotspots(ctx context.Context, bucket TimeBucket, hotspots []Hotspot) error {
	for _, h := range hotspots {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO hazard_hotspots (lat, lon, radius_deg, bucket) VALUES (?, ?, ?, ?)`,
			h.Lat, h.Lon, h.RadiusDeg, string(bucket))
		if err != nil {
			return eris.Wrap(err, "hazard: insert hotspot")
		}
	}
	return nil
}

// Layer returns the stored observations inside bbox for the resolved bucket.
func (s *SQLiteStore) Layer(ctx context.Context, bbox geo.BoundingBox, bucket TimeBucket) ([]Point, []Hotspot, error) {
	resolved := bucket.Resolve(time.Now())

	rows, err := s.db.QueryContext(ctx,
		`SELECT lat, lon, weight FROM hazard_points
		 WHERE bucket = ? AND lat BETWEEN ? AND ? AND lon BETWEEN ? AND ?`,
		string(resolved), bbox.MinLat, bbox.MaxLat, bbox.MinLon, bbox.MaxLon)
	if err != nil {
		return nil, nil, eris.Wrap(err, "hazard: query points")
	}
	defer rows.Close() //nolint:errcheck

	var points []Point
	for rows.Next() {
		var p Point
		if err := rows.Scan(&p.Lat, &p.Lon, &p.Weight); err != nil {
			return nil, nil, eris.Wrap(err, "hazard: scan point")
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, eris.Wrap(err, "hazard: iterate points")
	}

	hotRows, err := s.db.QueryContext(ctx,
		`SELECT lat, lon, radius_deg FROM hazard_hotspots
		 WHERE bucket = ? AND lat BETWEEN ? AND ? AND lon BETWEEN ? AND ?`,
		string(resolved), bbox.MinLat, bbox.MaxLat, bbox.MinLon, bbox.MaxLon)
	if err != nil {
		return nil, nil, eris.Wrap(err, "hazard: query hotspots")
	}
	defer hotRows.Close() //nolint:errcheck

	var hotspots []Hotspot
	for hotRows.Next() {
		var h Hotspot
		if err := hotRows.Scan(&h.Lat, &h.Lon, &h.RadiusDeg); err != nil {
			return nil, nil, eris.Wrap(err, "hazard: scan hotspot")
		}
		hotspots = append(hotspots, h)
	}
	if err := hotRows.Err(); err != nil {
		return nil, nil, eris.Wrap(err, "hazard: iterate hotspots")
	}

	zap.L().Debug("loaded hazard layer from sqlite",
		zap.String("bucket", string(resolved)),
		zap.Int("points", len(points)),
		zap.Int("hotspots", len(hotspots)),
	)
	return points, hotspots, nil
}
