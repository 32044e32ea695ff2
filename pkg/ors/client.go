// Package ors is a client for an OpenRouteService-compatible routing provider:
// place-name geocoding and the POST /v2/directions/{profile} endpoint.
package ors

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.openrouteservice.org"

// Client calls the routing provider. It performs no retries; callers decide
// retry and segmentation-fallback policy from the typed errors it returns.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter

	cacheMu      sync.Mutex
	geocodeCache map[string]geocodeEntry
	cacheSize    int
}

// Option configures the Client.
type Option func(*Client)

// WithBaseURL overrides the provider base URL (used by tests and self-hosted
// provider instances).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRateLimit sets the requests-per-second limit for provider calls.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), int(rps)+1)
	}
}

// WithGeocodeCacheSize bounds the in-memory geocode cache. Zero disables
// caching.
func WithGeocodeCacheSize(n int) Option {
	return func(c *Client) {
		c.cacheSize = n
	}
}

// NewClient creates a provider client with the given API key.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:       apiKey,
		baseURL:      defaultBaseURL,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		limiter:      rate.NewLimiter(5, 5), // free-tier friendly default
		geocodeCache: make(map[string]geocodeEntry),
		cacheSize:    256,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
