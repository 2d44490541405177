package ai

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// GenerationError is implemented by every error a Provider returns.
// Transient errors are worth retrying as-is; the others usually point at
// configuration or a misbehaving backend.
type GenerationError interface {
	error
	Transient() bool
}

// NetworkError wraps transport failures: DNS, TLS, connection resets, timeouts.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (*NetworkError) Transient() bool { return true }

// APIError is a non-success answer from the backend.
type APIError struct {
	Message string
	Status  int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.Status, e.Message)
}

func (e *APIError) Transient() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= http.StatusInternalServerError
}

// ParseError means the response did not have the expected shape.
type ParseError struct {
	Err error
	Msg string
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to parse response: %s: %v", e.Msg, e.Err)
	}
	return "failed to parse response: " + e.Msg
}

func (e *ParseError) Unwrap() error { return e.Err }

func (*ParseError) Transient() bool { return false }

// RateLimitedError is returned for HTTP 429. RetryAfter is nil when the
// backend gave no usable hint.
type RateLimitedError struct {
	RetryAfter *time.Duration
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter != nil {
		return fmt.Sprintf("rate limited, retry after %s", *e.RetryAfter)
	}
	return "rate limited, please try again later"
}

func (*RateLimitedError) Transient() bool { return true }

// IsTransient reports whether err is a GenerationError worth retrying.
func IsTransient(err error) bool {
	var genErr GenerationError
	if errors.As(err, &genErr) {
		return genErr.Transient()
	}
	return false
}

// ExhaustedError ends a run once every attempt in the budget failed.
type ExhaustedError struct {
	Last     error
	Attempts uint
}

func (e *ExhaustedError) Error() string {
	msg := fmt.Sprintf("failed to generate a valid commit message after %d attempts", e.Attempts)
	if e.Last != nil {
		msg += ": " + e.Last.Error()
	}
	return msg
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// parseRetryAfter reads a Retry-After header given either as delay seconds
// or as an HTTP date.
func parseRetryAfter(value string, now time.Time) *time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return nil
		}
		d := time.Duration(secs) * time.Second
		return &d
	}
	if when, err := http.ParseTime(value); err == nil {
		d := when.Sub(now)
		if d < 0 {
			d = 0
		}
		return &d
	}
	return nil
}
