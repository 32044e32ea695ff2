package main

import (
	"context"
	"math"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/safetyshield/saferoute/internal/geo"
	"github.com/safetyshield/saferoute/internal/hazard"
	"github.com/safetyshield/saferoute/internal/rank"
	"github.com/safetyshield/saferoute/internal/resilience"
	"github.com/safetyshield/saferoute/internal/route"
	"github.com/safetyshield/saferoute/internal/safety"
	"github.com/safetyshield/saferoute/pkg/ors"
)

// maxDistanceLimitRetries bounds how many times the max leg distance is
// halved after provider distance-limit rejections.
const maxDistanceLimitRetries = 3

var (
	routeFrom      string
	routeTo        string
	routeProfile   string
	routeAvoid     []string
	routePriority  float64
	routeBucket    string
	routeNoAlts    bool
	routeShowSteps bool
)

var routeCmd = &cobra.Command{
	Use:   "route",
	Short: "Rank route options between two endpoints by safety",
	Long:  "Endpoints are either place names (geocoded via the provider) or literal lon,lat pairs.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("route"); err != nil {
			return err
		}
		ctx := cmd.Context()

		// Config supplies defaults for flags the user didn't set.
		if !cmd.Flags().Changed("profile") {
			routeProfile = cfg.Routing.Profile
		}
		if !cmd.Flags().Changed("avoid") {
			routeAvoid = cfg.Routing.Avoid
		}
		if !cmd.Flags().Changed("safety-priority") {
			routePriority = cfg.Routing.SafetyPriority
		}
		if !cmd.Flags().Changed("time") {
			routeBucket = cfg.Routing.TimeBucket
		}
		if !cmd.Flags().Changed("no-alternatives") {
			routeNoAlts = !cfg.Routing.Alternatives
		}

		client := newProviderClient()

		start, err := resolveEndpoint(ctx, client, routeFrom)
		if err != nil {
			return err
		}
		end, err := resolveEndpoint(ctx, client, routeTo)
		if err != nil {
			return err
		}

		profile, err := ors.Profile(routeProfile)
		if err != nil {
			return err
		}
		bucket, err := hazard.ParseBucket(routeBucket)
		if err != nil {
			return err
		}

		model, closeModel, err := newHazardModel(ctx)
		if err != nil {
			return err
		}
		defer closeModel()

		req := rank.Request{
			Start:            start,
			End:              end,
			Profile:          profile,
			Avoid:            routeAvoid,
			SafetyPriority:   routePriority,
			Bucket:           bucket,
			Alternatives:     !routeNoAlts,
			AlternativeCount: cfg.Routing.AlternativeCount,
			WeightFactor:     cfg.Routing.WeightFactor,
		}

		candidates, err := rankWithFallback(ctx, client, model, req, cfg.Routing.MaxLegDistanceM)
		if err != nil {
			return err
		}

		renderCandidates(cmd.OutOrStdout(), rank.Present(candidates, false), routeShowSteps)
		return nil
	},
}

// rankWithFallback runs the ranking pipeline, retrying transient provider
// failures and reacting to distance-limit rejections by halving the max leg
// distance so the next attempt segments the trip.
func rankWithFallback(ctx context.Context, client *ors.Client, model hazard.Model, req rank.Request, maxLegMeters float64) ([]rank.Candidate, error) {
	provider := route.NewORSProvider(client)
	scorer := safety.NewScorer()

	retryCfg := resilience.DefaultRetryConfig()
	retryCfg.ShouldRetry = ors.IsTransient
	retryCfg.OnRetry = resilience.RetryLogger("ors", "directions")

	var lastErr error
	for attempt := 0; attempt <= maxDistanceLimitRetries; attempt++ {
		fetcher := route.NewFetcher(provider,
			route.WithMaxLegMeters(maxLegMeters),
			route.WithLegConcurrency(cfg.Routing.LegConcurrency),
		)
		ranker := rank.NewRanker(fetcher, model, scorer)

		candidates, err := resilience.DoVal(ctx, retryCfg, func(ctx context.Context) ([]rank.Candidate, error) {
			return ranker.Rank(ctx, req)
		})
		if err == nil {
			return candidates, nil
		}
		lastErr = err

		if !ors.IsDistanceLimit(err) {
			return nil, err
		}
		// Halve against the actual trip distance so the next attempt splits
		// into at least two legs regardless of how generous the configured
		// ceiling was.
		maxLegMeters = math.Min(maxLegMeters, geo.Distance(req.Start, req.End)) / 2
		zap.L().Warn("provider rejected trip distance, retrying with segmentation",
			zap.Float64("max_leg_m", maxLegMeters),
			zap.Int("attempt", attempt+1),
		)
	}
	return nil, eris.Wrap(lastErr, "trip exceeds provider distance limit after segmentation retries")
}

func init() {
	routeCmd.Flags().StringVar(&routeFrom, "from", "", "start endpoint: place name or lon,lat (required)")
	routeCmd.Flags().StringVar(&routeTo, "to", "", "end endpoint: place name or lon,lat (required)")
	routeCmd.Flags().StringVar(&routeProfile, "profile", "driving", "travel mode: driving, walking, cycling")
	routeCmd.Flags().StringSliceVar(&routeAvoid, "avoid", nil, "features to avoid: highways, tollways, ferries, high_crime_areas")
	routeCmd.Flags().Float64Var(&routePriority, "safety-priority", 5, "0 fastest .. 10 safest")
	routeCmd.Flags().StringVar(&routeBucket, "time", "current", "time bucket: current, morning, afternoon, evening, night")
	routeCmd.Flags().BoolVar(&routeNoAlts, "no-alternatives", false, "fetch a single route instead of alternatives")
	routeCmd.Flags().BoolVar(&routeShowSteps, "steps", false, "print turn-by-turn instructions")
	_ = routeCmd.MarkFlagRequired("from")
	_ = routeCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(routeCmd)
}
