// Package geo provides the geodesic math and geometry codecs used by the
// routing engine: haversine distance, linear interpolation, polyline
// encoding/decoding, and bounding box accumulation.
package geo

import (
	"math"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-polyline"
)

// EarthRadiusMeters is the spherical Earth radius used for haversine distance.
const EarthRadiusMeters = 6371000.0

// Coordinate is a geographic point in WGS-84 degrees. Immutable value type;
// longitude first to match the provider wire order.
type Coordinate struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Valid reports whether the coordinate lies within WGS-84 bounds.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// Distance returns the great-circle distance between a and b in meters using
// the haversine formula. Symmetric; zero iff a == b (within float tolerance).
func Distance(a, b Coordinate) float64 {
	if a == b {
		return 0
	}

	lat1 := a.Lat * math.Pi / 180
	lon1 := a.Lon * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	lon2 := b.Lon * math.Pi / 180

	dlat := lat2 - lat1
	dlon := lon2 - lon1

	h := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMeters * c
}

// Interpolate returns the point at the given fraction along the straight line
// from a to b in lon/lat space. Not a geodesic slerp: acceptable error at the
// segment lengths the segmenter produces. fraction=0 returns a, fraction=1
// returns b.
func Interpolate(a, b Coordinate, fraction float64) Coordinate {
	return Coordinate{
		Lon: a.Lon + (b.Lon-a.Lon)*fraction,
		Lat: a.Lat + (b.Lat-a.Lat)*fraction,
	}
}

// DecodePolyline decodes a provider-encoded polyline into coordinates.
// The wire format carries lat,lon pairs; the result is lon,lat coordinates.
func DecodePolyline(encoded string) ([]Coordinate, error) {
	if encoded == "" {
		return nil, eris.New("geo: empty encoded polyline")
	}

	coords, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, eris.Wrap(err, "geo: decode polyline")
	}

	points := make([]Coordinate, len(coords))
	for i, c := range coords {
		points[i] = Coordinate{Lat: c[0], Lon: c[1]}
		if !points[i].Valid() {
			return nil, eris.Errorf("geo: decoded polyline has out-of-range point at index %d", i)
		}
	}
	return points, nil
}

// EncodePolyline encodes coordinates back into the provider wire format.
func EncodePolyline(points []Coordinate) string {
	coords := make([][]float64, len(points))
	for i, p := range points {
		coords[i] = []float64{p.Lat, p.Lon}
	}
	return string(polyline.EncodeCoords(coords))
}
