package ors

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrNotFound is returned by Geocode when the provider has no match for the
// place name.
var ErrNotFound = eris.New("ors: place not found")

// ErrorKind classifies provider failures so callers can pick a fallback.
type ErrorKind int

const (
	// KindTransport covers network failures and 5xx/timeout responses.
	KindTransport ErrorKind = iota
	// KindRejected covers well-formed provider rejections (4xx) other than
	// the distance limit.
	KindRejected
	// KindDistanceLimit marks the provider's per-request distance rejection;
	// the caller should re-invoke with segmentation.
	KindDistanceLimit
)

// String returns the kind's wire-friendly name.
func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindRejected:
		return "rejected"
	case KindDistanceLimit:
		return "distance_limit_exceeded"
	default:
		return "unknown"
	}
}

// ProviderError is a failed provider call with enough context for the caller
// to decide on retry, segmentation fallback, or user-facing messaging.
type ProviderError struct {
	Kind    ErrorKind
	Status  int // HTTP status, 0 for transport-level failures
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("ors: %s (status %d): %s", e.Kind, e.Status, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("ors: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("ors: %s (status %d)", e.Kind, e.Status)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Transient reports whether the failure is safe to retry at the caller layer.
func (e *ProviderError) Transient() bool {
	if e.Kind != KindTransport {
		return false
	}
	return e.Status == 0 || e.Status == 408 || e.Status == 429 || e.Status >= 500
}

// distanceLimitMarker is the fragment the provider puts in its error body
// when a request exceeds the per-request distance ceiling.
const distanceLimitMarker = "distance must not be greater than"

// classifyResponse builds a ProviderError from a non-success HTTP response.
func classifyResponse(status int, message string) *ProviderError {
	kind := KindRejected
	switch {
	case strings.Contains(strings.ToLower(message), distanceLimitMarker):
		kind = KindDistanceLimit
	case status == 408 || status == 429 || status >= 500:
		kind = KindTransport
	}
	return &ProviderError{Kind: kind, Status: status, Message: message}
}

// IsDistanceLimit reports whether err is a provider distance-limit rejection.
func IsDistanceLimit(err error) bool {
	var pe *ProviderError
	if eris.As(err, &pe) {
		return pe.Kind == KindDistanceLimit
	}
	return false
}

// IsTransient reports whether err is a retryable provider failure.
func IsTransient(err error) bool {
	var pe *ProviderError
	if eris.As(err, &pe) {
		return pe.Transient()
	}
	return false
}
