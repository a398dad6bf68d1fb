// Package apierr provides shared error sentinels and retry infrastructure
// for HTTP-based API clients. Provider-specific error types are classified
// into these sentinels at the adapter boundary.
//
// Providers map HTTP status codes to these errors using fmt.Errorf("%s: %w", msg, sentinel).
// Callers check with errors.Is(err, apierr.ErrRateLimit) etc.
package apierr

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for API interaction failures.
var (
	// ErrNotConfigured indicates a required credential is missing.
	// Fatal: surfaced immediately, never retried, no network call attempted.
	ErrNotConfigured = errors.New("not configured")

	// ErrRateLimit indicates the API rate limit was exceeded (temporary, retryable).
	ErrRateLimit = errors.New("rate limit exceeded")

	// ErrQuotaExceeded indicates the API quota was exceeded (billing issue, not retryable).
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrTimeout indicates a request timed out.
	ErrTimeout = errors.New("request timeout")

	// ErrAuthFailed indicates API authentication failed (invalid key).
	ErrAuthFailed = errors.New("authentication failed")

	// ErrBadRequest indicates a client error (4xx) that is not otherwise classified.
	ErrBadRequest = errors.New("bad request")
)

// RateLimitError is a rate-limit failure carrying the provider's suggested
// wait duration (from a Retry-After header). RetryAfter is zero when the
// provider gave no hint.
//
// It unwraps to ErrRateLimit so errors.Is checks keep working.
type RateLimitError struct {
	Message    string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s (retry after %s)", e.Message, e.RetryAfter)
	}
	return e.Message
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimit }

// RetryDelayHint extracts a provider-suggested retry delay from err, if any.
// Returns zero when the error carries no hint.
func RetryDelayHint(err error) time.Duration {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return rl.RetryAfter
	}
	return 0
}
