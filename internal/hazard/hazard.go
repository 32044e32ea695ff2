// Package hazard models the crime/hazard layer consumed by the safety scorer:
// weighted point observations plus circular hotspots, scoped to a bounding box
// and a time-of-day bucket.
package hazard

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/safetyshield/saferoute/internal/geo"
)

// Point is a weighted hazard observation. Weight is in (0, 1].
type Point struct {
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Weight float64 `json:"weight"`
}

// Hotspot is a circular high-density zone. Radius is in planar degrees, the
// same unit the scorer's corridor test uses.
type Hotspot struct {
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	RadiusDeg float64 `json:"radius_deg"`
}

// TimeBucket selects the time-of-day hazard density regime.
type TimeBucket string

const (
	BucketMorning   TimeBucket = "morning"   // 06:00-10:00
	BucketAfternoon TimeBucket = "afternoon" // 10:00-16:00
	BucketEvening   TimeBucket = "evening"   // 16:00-20:00
	BucketNight     TimeBucket = "night"     // everything else
	BucketCurrent   TimeBucket = "current"   // resolved from the clock
)

// ParseBucket validates a configuration bucket name.
func ParseBucket(s string) (TimeBucket, error) {
	switch TimeBucket(s) {
	case BucketMorning, BucketAfternoon, BucketEvening, BucketNight, BucketCurrent:
		return TimeBucket(s), nil
	}
	return "", eris.Errorf("hazard: unknown time bucket %q", s)
}

// Resolve maps the bucket to a concrete one, using now for BucketCurrent.
func (b TimeBucket) Resolve(now time.Time) TimeBucket {
	if b != BucketCurrent {
		return b
	}
	switch h := now.Hour(); {
	case h >= 6 && h < 10:
		return BucketMorning
	case h >= 10 && h < 16:
		return BucketAfternoon
	case h >= 16 && h < 20:
		return BucketEvening
	default:
		return BucketNight
	}
}

// DensityFactor is the bucket's hazard density multiplier. Night is the
// reference (1.0).
func (b TimeBucket) DensityFactor() float64 {
	switch b {
	case BucketMorning:
		return 0.3
	case BucketAfternoon:
		return 0.4
	case BucketEvening:
		return 0.6
	default:
		return 1.0
	}
}

// Model produces the hazard layer for a bounding box and time bucket. A Model
// call is made at most once per ranking request.
type Model interface {
	Name() string
	Layer(ctx context.Context, bbox geo.BoundingBox, bucket TimeBucket) ([]Point, []Hotspot, error)
}
