package resilience

import (
	"errors"
	"net"
	"strings"
	"syscall"
)

// Transienter lets error types declare themselves retryable; the routing
// provider's error type implements it.
type Transienter interface {
	Transient() bool
}

// IsTransient reports whether the error (or anything in its chain) is safe to
// retry: a self-declared transient error, a network timeout, or a common
// connection-level failure.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		if t, ok := e.(Transienter); ok {
			return t.Transient()
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	// Wrapped HTTP client errors that only surface as text.
	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{
		"connection reset by peer",
		"broken pipe",
		"temporary failure in name resolution",
		"no such host",
		"tls handshake timeout",
		"i/o timeout",
	} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}

	return false
}
