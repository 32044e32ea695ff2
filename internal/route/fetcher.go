package route

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/safetyshield/saferoute/internal/geo"
	"github.com/safetyshield/saferoute/internal/segment"
)

const defaultLegConcurrency = 4

// Fetcher turns a start/end pair into route options. Direct trips are fetched
// in a single call with alternatives; trips beyond the provider's distance
// limit are split into legs, fetched concurrently, and stitched into one
// route.
type Fetcher struct {
	provider       Provider
	maxLegMeters   float64
	legConcurrency int
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithMaxLegMeters overrides the per-leg distance ceiling.
func WithMaxLegMeters(m float64) FetcherOption {
	return func(f *Fetcher) {
		if m > 0 {
			f.maxLegMeters = m
		}
	}
}

// WithLegConcurrency bounds how many leg requests run in parallel.
func WithLegConcurrency(n int) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.legConcurrency = n
		}
	}
}

// NewFetcher creates a Fetcher over the given provider.
func NewFetcher(provider Provider, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		provider:       provider,
		maxLegMeters:   segment.DefaultMaxLegMeters,
		legConcurrency: defaultLegConcurrency,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchRoute returns the route options for the trip. For a segmented trip the
// result is a single stitched route; alternatives only apply to direct trips.
// Any leg failure aborts the whole fetch with a *SegmentError — never a
// partial route.
func (f *Fetcher) FetchRoute(ctx context.Context, start, end geo.Coordinate, opts LegOptions) ([]Route, error) {
	if !segment.Needed(start, end, f.maxLegMeters) {
		routes, err := f.provider.FetchLeg(ctx, start, end, opts)
		if err != nil {
			return nil, err
		}
		if len(routes) == 0 {
			return nil, ErrNoRoutes
		}
		return routes, nil
	}

	endpoints := segment.LegEndpoints(start, end, f.maxLegMeters)
	legCount := len(endpoints) - 1

	zap.L().Info("trip exceeds provider distance limit, segmenting",
		zap.String("provider", f.provider.Name()),
		zap.Float64("max_leg_m", f.maxLegMeters),
		zap.Int("legs", legCount),
	)

	// Alternatives are a direct-trip feature; each leg wants exactly one
	// route so the stitch is well-defined.
	legOpts := opts
	legOpts.Alternatives = false

	legs := make([]Route, legCount)
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(f.legConcurrency)

	for i := 0; i < legCount; i++ {
		group.Go(func() error {
			routes, err := f.provider.FetchLeg(groupCtx, endpoints[i], endpoints[i+1], legOpts)
			if err != nil {
				return &SegmentError{LegIndex: i, Err: err}
			}
			if len(routes) == 0 {
				return &SegmentError{LegIndex: i, Err: ErrNoRoutes}
			}
			legs[i] = routes[0]
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	return []Route{Stitch(legs)}, nil
}
