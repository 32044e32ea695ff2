package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/safetyshield/saferoute/internal/geo"
	"github.com/safetyshield/saferoute/internal/hazard"
	"github.com/safetyshield/saferoute/internal/rank"
	"github.com/safetyshield/saferoute/internal/route"
	"github.com/safetyshield/saferoute/internal/safety"
	"github.com/safetyshield/saferoute/pkg/ors"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the route ranking HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		client := newProviderClient()
		model, closeModel, err := newHazardModel(ctx)
		if err != nil {
			return err
		}
		defer closeModel()

		fetcher := route.NewFetcher(route.NewORSProvider(client),
			route.WithMaxLegMeters(cfg.Routing.MaxLegDistanceM),
			route.WithLegConcurrency(cfg.Routing.LegConcurrency),
		)
		ranker := rank.NewRanker(fetcher, model, safety.NewScorer())

		handler := newRouter(&serverState{
			ranker:  ranker,
			model:   model,
			client:  client,
			origins: cfg.Server.CORSOrigins,
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: handler,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

// serverState holds the wired dependencies for the HTTP handlers.
type serverState struct {
	ranker  *rank.Ranker
	model   hazard.Model
	client  *ors.Client
	origins []string
}

func newRouter(s *serverState) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Post("/v1/routes", s.handleRoutes)
	r.Get("/v1/hazards", s.handleHazards)
	return r
}

type routesRequest struct {
	From           string   `json:"from"`
	To             string   `json:"to"`
	Profile        string   `json:"profile"`
	Avoid          []string `json:"avoid"`
	SafetyPriority *float64 `json:"safety_priority"`
	TimeBucket     string   `json:"time_bucket"`
	Alternatives   *bool    `json:"alternatives"`
	IncludePoints  bool     `json:"include_points"`
}

type routesResponse struct {
	Routes []rank.RankedRoute `json:"routes"`
}

func (s *serverState) handleRoutes(w http.ResponseWriter, r *http.Request) {
	var req routesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.From == "" || req.To == "" {
		writeError(w, http.StatusBadRequest, "from and to are required")
		return
	}

	ctx := r.Context()

	start, err := s.resolve(ctx, req.From)
	if err != nil {
		writeResolveError(w, req.From, err)
		return
	}
	end, err := s.resolve(ctx, req.To)
	if err != nil {
		writeResolveError(w, req.To, err)
		return
	}

	profileName := req.Profile
	if profileName == "" {
		profileName = cfg.Routing.Profile
	}
	profile, err := ors.Profile(profileName)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	bucketName := req.TimeBucket
	if bucketName == "" {
		bucketName = cfg.Routing.TimeBucket
	}
	bucket, err := hazard.ParseBucket(bucketName)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	priority := cfg.Routing.SafetyPriority
	if req.SafetyPriority != nil {
		priority = *req.SafetyPriority
	}
	alternatives := cfg.Routing.Alternatives
	if req.Alternatives != nil {
		alternatives = *req.Alternatives
	}

	candidates, err := s.ranker.Rank(ctx, rank.Request{
		Start:            start,
		End:              end,
		Profile:          profile,
		Avoid:            req.Avoid,
		SafetyPriority:   priority,
		Bucket:           bucket,
		Alternatives:     alternatives,
		AlternativeCount: cfg.Routing.AlternativeCount,
		WeightFactor:     cfg.Routing.WeightFactor,
	})
	if err != nil {
		status := http.StatusBadGateway
		var pe *ors.ProviderError
		switch {
		case eris.Is(err, route.ErrNoRoutes):
			status = http.StatusNotFound
		case eris.As(err, &pe) && pe.Kind == ors.KindRejected:
			status = http.StatusUnprocessableEntity
		case !eris.As(err, &pe):
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, routesResponse{Routes: rank.Present(candidates, req.IncludePoints)})
}

func (s *serverState) handleHazards(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	bbox, err := parseBBox(q.Get("min_lon"), q.Get("min_lat"), q.Get("max_lon"), q.Get("max_lat"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	bucketName := q.Get("bucket")
	if bucketName == "" {
		bucketName = string(hazard.BucketCurrent)
	}
	bucket, err := hazard.ParseBucket(bucketName)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	points, hotspots, err := s.model.Layer(r.Context(), bbox, bucket)
	if err != nil {
		writeError(w, http.StatusBadGateway, "hazard layer unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"points":   points,
		"hotspots": hotspots,
	})
}

// resolve mirrors the CLI endpoint resolution: literal lon,lat or geocoded
// place name.
func (s *serverState) resolve(ctx context.Context, endpoint string) (geo.Coordinate, error) {
	if c, ok := parseCoordinate(endpoint); ok {
		return c, nil
	}
	return s.client.Geocode(ctx, endpoint)
}

func parseBBox(minLon, minLat, maxLon, maxLat string) (geo.BoundingBox, error) {
	parse := func(name, s string) (float64, error) {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%s must be a number", name)
		}
		return v, nil
	}

	var bbox geo.BoundingBox
	var err error
	if bbox.MinLon, err = parse("min_lon", minLon); err != nil {
		return bbox, err
	}
	if bbox.MinLat, err = parse("min_lat", minLat); err != nil {
		return bbox, err
	}
	if bbox.MaxLon, err = parse("max_lon", maxLon); err != nil {
		return bbox, err
	}
	if bbox.MaxLat, err = parse("max_lat", maxLat); err != nil {
		return bbox, err
	}
	if bbox.MinLon > bbox.MaxLon || bbox.MinLat > bbox.MaxLat {
		return bbox, fmt.Errorf("bounding box min must not exceed max")
	}
	return bbox, nil
}

func writeResolveError(w http.ResponseWriter, endpoint string, err error) {
	if eris.Is(err, ors.ErrNotFound) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no match for %q", endpoint))
		return
	}
	writeError(w, http.StatusBadGateway, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
