package rank

import (
	"context"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/safetyshield/saferoute/internal/geo"
	"github.com/safetyshield/saferoute/internal/hazard"
	"github.com/safetyshield/saferoute/internal/route"
	"github.com/safetyshield/saferoute/internal/safety"
)

const defaultScoreConcurrency = 4

// Fetcher is the route-fetching dependency of the Ranker.
type Fetcher interface {
	FetchRoute(ctx context.Context, start, end geo.Coordinate, opts route.LegOptions) ([]route.Route, error)
}

// Ranker runs the ranking pipeline. Stateless between requests; every
// request carries its own bounding box accumulator and candidate list.
type Ranker struct {
	fetcher          Fetcher
	model            hazard.Model
	scorer           *safety.Scorer
	scoreConcurrency int
}

// RankerOption configures a Ranker.
type RankerOption func(*Ranker)

// WithScoreConcurrency bounds how many candidates score in parallel.
func WithScoreConcurrency(n int) RankerOption {
	return func(r *Ranker) {
		if n > 0 {
			r.scoreConcurrency = n
		}
	}
}

// NewRanker wires the pipeline dependencies.
func NewRanker(fetcher Fetcher, model hazard.Model, scorer *safety.Scorer, opts ...RankerOption) *Ranker {
	r := &Ranker{
		fetcher:          fetcher,
		model:            model,
		scorer:           scorer,
		scoreConcurrency: defaultScoreConcurrency,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rank fetches, scores, and orders route options for the request. The hazard
// model is called exactly once per request so scores stay comparable across
// candidates; a hazard failure degrades every candidate to the default score
// instead of failing the request.
func (r *Ranker) Rank(ctx context.Context, req Request) ([]Candidate, error) {
	if err := ValidatePriority(req.SafetyPriority); err != nil {
		return nil, err
	}
	if !req.Start.Valid() || !req.End.Valid() {
		return nil, eris.New("rank: endpoint coordinates out of range")
	}

	requestID := uuid.NewString()
	logger := zap.L().With(zap.String("request_id", requestID))

	routes, err := r.fetcher.FetchRoute(ctx, req.Start, req.End, route.LegOptions{
		Profile:          req.Profile,
		AvoidFeatures:    req.Avoid,
		Alternatives:     req.Alternatives,
		AlternativeCount: req.AlternativeCount,
		WeightFactor:     req.WeightFactor,
	})
	if err != nil {
		return nil, err
	}
	if len(routes) == 0 {
		return nil, route.ErrNoRoutes
	}

	candidates := make([]Candidate, len(routes))
	acc := geo.NewBoundsAccumulator()
	for i, rt := range routes {
		candidates[i] = Candidate{Route: rt}
		acc.FoldAll(rt.Geometry)
	}

	var points []hazard.Point
	var hotspots []hazard.Hotspot
	if !acc.Empty() {
		bbox := acc.Box().Pad(geo.PaddingDegrees)
		points, hotspots, err = r.model.Layer(ctx, bbox, req.Bucket)
		if err != nil {
			// Safety scoring is an enhancement over baseline routing; fall
			// back to the default score rather than failing the request.
			logger.Warn("hazard layer unavailable, using default scores",
				zap.String("model", r.model.Name()),
				zap.Error(err),
			)
			points, hotspots = nil, nil
		}
	}

	group, _ := errgroup.WithContext(ctx)
	group.SetLimit(r.scoreConcurrency)
	for i := range candidates {
		group.Go(func() error {
			candidates[i].SafetyScore = r.scorer.Score(candidates[i].Geometry, points, hotspots)
			return nil
		})
	}
	_ = group.Wait() // scoring never errors

	Order(candidates, req.SafetyPriority)

	logger.Info("ranked route candidates",
		zap.Int("candidates", len(candidates)),
		zap.Float64("safety_priority", req.SafetyPriority),
		zap.Float64("top_safety_score", candidates[0].SafetyScore),
	)
	return candidates, nil
}
