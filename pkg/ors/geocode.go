package ors

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/safetyshield/saferoute/internal/geo"
)

// geocodeResponse is the GeoJSON-shaped response from /geocode/search.
type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"` // [lon, lat]
		} `json:"geometry"`
		Properties struct {
			Label string `json:"label"`
		} `json:"properties"`
	} `json:"features"`
}

type geocodeEntry struct {
	coord geo.Coordinate
	found bool
}

// Geocode resolves a free-text place name to a coordinate. Returns
// ErrNotFound when the provider has no match. Results are cached in memory
// under the normalized query.
func (c *Client) Geocode(ctx context.Context, place string) (geo.Coordinate, error) {
	key := NormalizeQuery(place)
	if key == "" {
		return geo.Coordinate{}, eris.New("ors: empty place name")
	}

	if entry, ok := c.cacheGet(key); ok {
		if !entry.found {
			return geo.Coordinate{}, ErrNotFound
		}
		return entry.coord, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return geo.Coordinate{}, eris.Wrap(err, "ors: geocode rate limit")
	}

	params := url.Values{
		"text": {key},
		"size": {"1"},
	}
	reqURL := c.baseURL + "/geocode/search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return geo.Coordinate{}, eris.Wrap(err, "ors: geocode build request")
	}
	req.Header.Set("Accept", "application/json, application/geo+json")
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return geo.Coordinate{}, &ProviderError{Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return geo.Coordinate{}, &ProviderError{Kind: KindTransport, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return geo.Coordinate{}, classifyResponse(resp.StatusCode, providerMessage(body))
	}

	var geocodeResp geocodeResponse
	if err := json.Unmarshal(body, &geocodeResp); err != nil {
		return geo.Coordinate{}, eris.Wrap(err, "ors: geocode parse response")
	}

	if len(geocodeResp.Features) == 0 {
		c.cachePut(key, geocodeEntry{})
		return geo.Coordinate{}, ErrNotFound
	}

	coords := geocodeResp.Features[0].Geometry.Coordinates
	if len(coords) < 2 {
		return geo.Coordinate{}, eris.New("ors: geocode feature missing coordinates")
	}

	result := geo.Coordinate{Lon: coords[0], Lat: coords[1]}
	if !result.Valid() {
		return geo.Coordinate{}, eris.Errorf("ors: geocode returned out-of-range coordinate for %q", place)
	}

	zap.L().Debug("geocoded place",
		zap.String("place", place),
		zap.String("label", geocodeResp.Features[0].Properties.Label),
		zap.Float64("lon", result.Lon),
		zap.Float64("lat", result.Lat),
	)

	c.cachePut(key, geocodeEntry{coord: result, found: true})
	return result, nil
}

func (c *Client) cacheGet(key string) (geocodeEntry, bool) {
	if c.cacheSize <= 0 {
		return geocodeEntry{}, false
	}
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	entry, ok := c.geocodeCache[key]
	return entry, ok
}

func (c *Client) cachePut(key string, entry geocodeEntry) {
	if c.cacheSize <= 0 {
		return
	}
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	if len(c.geocodeCache) >= c.cacheSize {
		// Drop an arbitrary entry; the cache is a small request dampener,
		// not an LRU.
		for k := range c.geocodeCache {
			delete(c.geocodeCache, k)
			break
		}
	}
	c.geocodeCache[key] = entry
}

// queryNormalizer strips combining marks after NFKD decomposition, so
// "Zürich" and "Zurich" hit the same cache entry and provider query.
var queryNormalizer = transform.Chain(
	norm.NFKD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// NormalizeQuery canonicalizes a place-name query: trimmed, lowercased,
// diacritics removed, inner whitespace collapsed.
func NormalizeQuery(place string) string {
	normalized, _, err := transform.String(queryNormalizer, place)
	if err != nil {
		normalized = place
	}
	return strings.Join(strings.Fields(strings.ToLower(normalized)), " ")
}

// providerMessage extracts the error message from a provider error body.
func providerMessage(body []byte) string {
	var wrapped struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Error.Message != "" {
		return wrapped.Error.Message
	}
	return strings.TrimSpace(string(body))
}
