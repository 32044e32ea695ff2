package hazard

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/safetyshield/saferoute/internal/geo"
)

const (
	basePointCount    = 50
	densityPointRange = 150
	hotspotCount      = 3
	hotspotMinRadius  = 0.01
	hotspotMaxRadius  = 0.05
	clusterShare      = 0.7 // fraction of points drawn around a hotspot
)

// Synthetic generates a reproducible hazard layer when no real data source is
// configured. The same seed, bbox, and bucket always yield the same layer.
type Synthetic struct {
	seed uint64
	now  func() time.Time
}

// SyntheticOption configures the generator.
type SyntheticOption func(*Synthetic)

// WithClock overrides the clock used to resolve BucketCurrent.
func WithClock(now func() time.Time) SyntheticOption {
	return func(s *Synthetic) {
		s.now = now
	}
}

// NewSynthetic creates a generator with the given seed.
func NewSynthetic(seed uint64, opts ...SyntheticOption) *Synthetic {
	s := &Synthetic{seed: seed, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name identifies the model in logs.
func (s *Synthetic) Name() string {
	return "synthetic"
}

// Layer generates 50 + 150*density weighted points and three hotspots inside
// bbox. 70% of points cluster around a hotspot with Gaussian spread and
// distance-decayed weight; the rest scatter uniformly with weight in
// [0.2, 0.5).
func (s *Synthetic) Layer(_ context.Context, bbox geo.BoundingBox, bucket TimeBucket) ([]Point, []Hotspot, error) {
	resolved := bucket.Resolve(s.now())
	density := resolved.DensityFactor()
	count := basePointCount + int(densityPointRange*density)

	rng := rand.New(rand.NewPCG(s.seed, s.seed))

	lonSpan := bbox.MaxLon - bbox.MinLon
	latSpan := bbox.MaxLat - bbox.MinLat

	hotspots := make([]Hotspot, hotspotCount)
	for i := range hotspots {
		hotspots[i] = Hotspot{
			Lat:       bbox.MinLat + rng.Float64()*latSpan,
			Lon:       bbox.MinLon + rng.Float64()*lonSpan,
			RadiusDeg: hotspotMinRadius + rng.Float64()*(hotspotMaxRadius-hotspotMinRadius),
		}
	}

	points := make([]Point, 0, count)
	for i := 0; i < count; i++ {
		if rng.Float64() < clusterShare {
			h := hotspots[rng.IntN(hotspotCount)]
			sd := h.RadiusDeg / 3
			c := bbox.Clamp(geo.Coordinate{
				Lon: h.Lon + rng.NormFloat64()*sd,
				Lat: h.Lat + rng.NormFloat64()*sd,
			})
			d := math.Hypot(c.Lat-h.Lat, c.Lon-h.Lon)
			points = append(points, Point{
				Lat:    c.Lat,
				Lon:    c.Lon,
				Weight: math.Max(0.2, 1-math.Min(1, d/h.RadiusDeg)),
			})
			continue
		}
		points = append(points, Point{
			Lat:    bbox.MinLat + rng.Float64()*latSpan,
			Lon:    bbox.MinLon + rng.Float64()*lonSpan,
			Weight: 0.2 + rng.Float64()*0.3,
		})
	}

	zap.L().Debug("generated synthetic hazard layer",
		zap.String("bucket", string(resolved)),
		zap.Float64("density", density),
		zap.Int("points", len(points)),
		zap.Int("hotspots", len(hotspots)),
	)
	return points, hotspots, nil
}
