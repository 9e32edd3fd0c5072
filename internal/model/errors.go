package model

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// FetchReason classifies why a target fetch failed.
type FetchReason string

const (
	ReasonTransient      FetchReason = "transient"       // network errors, 5xx, 429
	ReasonNotFound       FetchReason = "not_found"       // board gone or slug wrong
	ReasonSchemaChanged  FetchReason = "schema_changed"  // payload no longer parses
	ReasonTimeout        FetchReason = "timeout"         // target or budget deadline
	ReasonUnknownBackend FetchReason = "unknown_backend" // no adapter registered for the ats name
)

// HTTPError wraps an HTTP status code so retry logic can inspect it.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// DecodeError marks a response that arrived but no longer matches the
// shape the adapter expects.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// FetchError is the pipeline-level record of a failed target fetch.
type FetchError struct {
	Backend string
	Company string
	Reason  FetchReason
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s/%s: %s: %v", e.Backend, e.Company, e.Reason, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ClassifyFetchReason maps an adapter error onto the failure taxonomy.
// Unknown errors default to transient so the retry decorator gets a shot.
func ClassifyFetchReason(err error) FetchReason {
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch {
		case httpErr.StatusCode == http.StatusNotFound || httpErr.StatusCode == http.StatusGone:
			return ReasonNotFound
		case httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode == http.StatusRequestTimeout:
			return ReasonTransient
		case httpErr.StatusCode >= 500:
			return ReasonTransient
		case httpErr.StatusCode >= 400:
			// Auth or contract drift on our side, retrying won't help.
			return ReasonSchemaChanged
		}
	}

	var decErr *DecodeError
	if errors.As(err, &decErr) {
		return ReasonSchemaChanged
	}

	return ReasonTransient
}
