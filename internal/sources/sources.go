package sources

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cadence/internal/services"
)

// StatusError reports a non-success HTTP response from a feature source. It
// unwraps to one of the services sentinels so callers can classify retryable
// failures with errors.Is.
type StatusError struct {
	Provider   string
	StatusCode int
	RetryAfter time.Duration
	Latency    time.Duration
}

func (e *StatusError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s returned %d (retry-after=%v, latency=%v)", e.Provider, e.StatusCode, e.RetryAfter, e.Latency)
	}
	return fmt.Sprintf("%s returned %d (latency=%v)", e.Provider, e.StatusCode, e.Latency)
}

// Unwrap maps the status code onto a services sentinel. 404 and 410 mean the
// provider holds nothing for the request, throttling and server faults are
// retryable, and anything else is a hard provider failure.
func (e *StatusError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound, http.StatusGone:
		return services.ErrNotFound
	case http.StatusRequestTimeout, http.StatusTooManyRequests,
		http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return services.ErrTransient
	default:
		return services.ErrExternalService
	}
}

// NewStatusError builds a StatusError from a response, capturing any
// Retry-After hint the server supplied.
func NewStatusError(provider string, resp *http.Response, latency time.Duration) *StatusError {
	statusErr := &StatusError{Provider: provider, StatusCode: resp.StatusCode, Latency: latency}
	if after := parseRetryAfter(resp.Header.Get("Retry-After")); after > 0 {
		statusErr.RetryAfter = after
	}
	return statusErr
}

// NoMatch reports that a lookup completed but the provider holds no data for
// the requested track. Callers treat the result as a miss, not a failure.
func NoMatch(provider, detail string) error {
	return fmt.Errorf("%s: no match for %s: %w", provider, detail, services.ErrNotFound)
}

// RetryAfterHint extracts the server-requested delay from an error chain.
func RetryAfterHint(err error) (time.Duration, bool) {
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.RetryAfter > 0 {
		return statusErr.RetryAfter, true
	}
	return 0, false
}

func parseRetryAfter(value string) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if delta := time.Until(at); delta > 0 {
			return delta
		}
	}
	return 0
}
