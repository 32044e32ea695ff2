package hazard

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safetyshield/saferoute/internal/geo"
)

func TestPostgresStore_Layer(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	bbox := geo.BoundingBox{MinLon: -74.05, MinLat: 40.70, MaxLon: -73.90, MaxLat: 40.80}

	mock.ExpectQuery(`SELECT lat, lon, weight FROM hazard_points`).
		WithArgs("night", bbox.MinLat, bbox.MaxLat, bbox.MinLon, bbox.MaxLon).
		WillReturnRows(pgxmock.NewRows([]string{"lat", "lon", "weight"}).
			AddRow(40.75, -73.98, 0.8).
			AddRow(40.76, -73.97, 0.3))

	mock.ExpectQuery(`SELECT lat, lon, radius_deg FROM hazard_hotspots`).
		WithArgs("night", bbox.MinLat, bbox.MaxLat, bbox.MinLon, bbox.MaxLon).
		WillReturnRows(pgxmock.NewRows([]string{"lat", "lon", "radius_deg"}).
			AddRow(40.755, -73.975, 0.02))

	store := NewPostgres(mock)
	points, hotspots, err := store.Layer(context.Background(), bbox, BucketNight)
	require.NoError(t, err)

	require.Len(t, points, 2)
	assert.InDelta(t, 0.8, points[0].Weight, 1e-9)
	require.Len(t, hotspots, 1)
	assert.InDelta(t, 0.02, hotspots[0].RadiusDeg, 1e-9)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_QueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT lat, lon, weight FROM hazard_points`).
		WillReturnError(assert.AnError)

	store := NewPostgres(mock)
	_, _, err = store.Layer(context.Background(), geo.BoundingBox{}, BucketMorning)
	assert.Error(t, err)
}
