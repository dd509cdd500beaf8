// Package fetcher contains the external data fetchers (weather, stock,
// news). Each fetcher performs exactly one outbound HTTP call with a
// bounded timeout and normalizes the JSON response into a small result
// record. Failures are returned as typed errors drawn from the
// apperrors taxonomy; nothing here panics or retries.
package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/siddhantkochhar/ballu-go/internal/apperrors"
	"github.com/siddhantkochhar/ballu-go/internal/intent"
)

// Fetcher is the shared capability of all data fetchers.
type Fetcher interface {
	// Name identifies the fetcher in logs, metrics, and chat history
	// (persisted as function_used), e.g. "get_weather".
	Name() string

	// RequiredParams lists parameter names that must be present.
	// The dispatcher validates these before calling Fetch.
	RequiredParams() []string

	// Fetch performs the single outbound call. Exactly one of the two
	// return values is non-nil.
	Fetch(ctx context.Context, params map[string]string) (*Result, *Error)
}

// Result is the normalized outcome of one fetch. Exactly one of the
// payload pointers is set, matching Kind.
type Result struct {
	Kind    intent.Intent  `json:"kind"`
	Weather *WeatherReport `json:"weather,omitempty"`
	Stock   *StockQuote    `json:"stock,omitempty"`
	News    *NewsDigest    `json:"news,omitempty"`
}

// Summary renders the result as plain text. Used directly for weather
// replies and as the composer's template fallback for everything else.
func (r *Result) Summary() string {
	switch {
	case r.Weather != nil:
		return r.Weather.Summary()
	case r.Stock != nil:
		return r.Stock.Summary()
	case r.News != nil:
		return r.News.Summary()
	default:
		return ""
	}
}

// Error is a typed fetch failure. Category is always one of the
// apperrors taxonomy sentinels; Message is safe to show internally but
// is never forwarded verbatim to the user.
type Error struct {
	Category error  `json:"-"`
	Upstream string `json:"upstream"`
	Message  string `json:"message"`
	Err      error  `json:"-"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetch failed (upstream=%s, category=%v): %s", e.Upstream, e.Category, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// CategoryLabel returns a short label for metrics and JSON responses.
func (e *Error) CategoryLabel() string {
	switch e.Category {
	case apperrors.ErrInvalidInput, apperrors.ErrMissingParameter:
		return "invalid_input"
	case apperrors.ErrRateLimited:
		return "rate_limited"
	default:
		return "unavailable"
	}
}

// newError builds a typed fetch error from a category sentinel.
func newError(category error, upstream, message string, cause error) *Error {
	return &Error{
		Category: category,
		Upstream: upstream,
		Message:  message,
		Err:      cause,
	}
}

// MissingParamError is the dispatcher's substitute when a required
// parameter was not extracted by the classifier.
func MissingParamError(fetcherName, param string) *Error {
	return newError(
		apperrors.ErrMissingParameter,
		fetcherName,
		fmt.Sprintf("required parameter %q is missing", param),
		apperrors.ErrMissingParameter,
	)
}

// statusError maps a non-2xx upstream response onto the taxonomy.
func statusError(upstream string, statusCode int) *Error {
	category := apperrors.FromStatus(statusCode)
	return newError(
		category,
		upstream,
		fmt.Sprintf("unexpected status %d", statusCode),
		apperrors.NewUpstreamError(upstream, statusCode, category),
	)
}

// transportError maps a failed request (timeout, refused connection)
// onto the taxonomy.
func transportError(upstream string, err error) *Error {
	return newError(
		apperrors.FromTransport(err),
		upstream,
		"request failed",
		apperrors.NewUpstreamError(upstream, 0, err),
	)
}

// malformedError covers 2xx responses whose body is not in the
// expected shape.
func malformedError(upstream string, err error) *Error {
	return newError(
		apperrors.ErrUpstreamUnavailable,
		upstream,
		"malformed payload",
		apperrors.NewUpstreamError(upstream, 0, err),
	)
}

// newHTTPClient builds the bounded-timeout client shared by fetchers.
// The timeout covers the entire exchange; callers additionally pass a
// request context so the per-message budget is honored.
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// getJSON issues the single GET call and hands the open response body
// to the caller on 2xx. Any failure comes back as a typed *Error.
func getJSON(ctx context.Context, client *http.Client, upstream, url string) (*http.Response, *Error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, transportError(upstream, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, transportError(upstream, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_ = resp.Body.Close()
		return nil, statusError(upstream, resp.StatusCode)
	}

	return resp, nil
}

// cleanParam trims whitespace and surrounding punctuation from a
// model-extracted parameter value.
func cleanParam(v string) string {
	return strings.Trim(strings.TrimSpace(v), ".,!?")
}
