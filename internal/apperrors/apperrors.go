// Package apperrors provides the error taxonomy shared across the
// message pipeline. Every external failure is converted into one of
// these categories at the component boundary where it originates;
// nothing in the pipeline is fatal to the process.
package apperrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors forming the pipeline error taxonomy.
// Use errors.Is() to check these in your code.
var (
	// ErrUpstreamUnavailable indicates a network failure, timeout, or
	// server-side error reaching a third-party service.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrInvalidInput indicates a missing or malformed user-supplied
	// parameter (e.g. an unknown city name).
	ErrInvalidInput = errors.New("invalid input")

	// ErrRateLimited indicates a third-party quota was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrModelUnparseable indicates the LLM response was not in the
	// expected shape.
	ErrModelUnparseable = errors.New("model response unparseable")

	// ErrMissingParameter indicates a required intent parameter was not
	// extracted by the classifier.
	ErrMissingParameter = errors.New("missing required parameter")

	// ErrNotFound indicates a requested record does not exist.
	ErrNotFound = errors.New("resource not found")
)

// UpstreamError carries context about a failed third-party call.
type UpstreamError struct {
	Upstream   string // e.g. "openweathermap", "newsapi", "gemini"
	StatusCode int    // 0 when the request never completed
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("upstream error (service=%s, status=%d): %v", e.Upstream, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("upstream error (service=%s): %v", e.Upstream, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NewUpstreamError creates a new upstream error.
func NewUpstreamError(upstream string, statusCode int, err error) *UpstreamError {
	return &UpstreamError{
		Upstream:   upstream,
		StatusCode: statusCode,
		Err:        err,
	}
}

// FromStatus maps an HTTP status code from a third-party response onto
// the taxonomy. 2xx codes map to nil.
func FromStatus(statusCode int) error {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return nil
	case statusCode == http.StatusNotFound:
		return ErrInvalidInput
	case statusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		// 401/403 from an upstream means our credentials, not the
		// user's input, so the user sees an availability problem.
		return ErrUpstreamUnavailable
	}
}

// FromTransport maps a transport-level error (dial failure, timeout,
// canceled context) onto the taxonomy.
func FromTransport(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrUpstreamUnavailable
	}
	return ErrUpstreamUnavailable
}

// Category returns the taxonomy sentinel wrapped inside err, or
// ErrUpstreamUnavailable when err carries no recognizable category.
func Category(err error) error {
	for _, sentinel := range []error{
		ErrInvalidInput,
		ErrRateLimited,
		ErrModelUnparseable,
		ErrMissingParameter,
		ErrNotFound,
		ErrUpstreamUnavailable,
	} {
		if errors.Is(err, sentinel) {
			return sentinel
		}
	}
	return ErrUpstreamUnavailable
}
