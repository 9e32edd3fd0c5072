package model

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestClassifyFetchReason(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want FetchReason
	}{
		{"plain network error", errors.New("dial tcp: connection refused"), ReasonTransient},
		{"deadline exceeded", context.DeadlineExceeded, ReasonTimeout},
		{"wrapped deadline", fmt.Errorf("fetch jobs: %w", context.DeadlineExceeded), ReasonTimeout},
		{"http 404", &HTTPError{StatusCode: 404}, ReasonNotFound},
		{"http 410", &HTTPError{StatusCode: 410}, ReasonNotFound},
		{"http 429", &HTTPError{StatusCode: 429}, ReasonTransient},
		{"http 408", &HTTPError{StatusCode: 408}, ReasonTransient},
		{"http 503", &HTTPError{StatusCode: 503}, ReasonTransient},
		{"http 401", &HTTPError{StatusCode: 401}, ReasonSchemaChanged},
		{"http 422", &HTTPError{StatusCode: 422}, ReasonSchemaChanged},
		{"wrapped http error", fmt.Errorf("lever: %w", &HTTPError{StatusCode: 500}), ReasonTransient},
		{"decode failure", &DecodeError{Err: errors.New("unexpected EOF")}, ReasonSchemaChanged},
		{"wrapped decode failure", fmt.Errorf("greenhouse: %w", &DecodeError{Err: errors.New("bad json")}), ReasonSchemaChanged},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyFetchReason(tt.err); got != tt.want {
				t.Errorf("ClassifyFetchReason(%v) = %s, want %s", tt.err, got, tt.want)
			}
		})
	}
}

func TestHTTPError_Unwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &HTTPError{StatusCode: 500, Err: inner}
	if !errors.Is(err, inner) {
		t.Error("HTTPError should unwrap to inner error")
	}
	if got := err.Error(); got != "HTTP 500: boom" {
		t.Errorf("Error() = %q", got)
	}
	bare := &HTTPError{StatusCode: 429}
	if got := bare.Error(); got != "HTTP 429" {
		t.Errorf("Error() = %q", got)
	}
}

func TestFetchError_Message(t *testing.T) {
	err := &FetchError{
		Backend: "workday",
		Company: "acme",
		Reason:  ReasonSchemaChanged,
		Err:     errors.New("missing jobPostings"),
	}
	want := "workday/acme: schema_changed: missing jobPostings"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	var httpErr *HTTPError
	wrapped := &FetchError{Backend: "lever", Company: "x", Reason: ReasonTransient, Err: &HTTPError{StatusCode: 502}}
	if !errors.As(wrapped, &httpErr) {
		t.Error("FetchError should expose wrapped HTTPError via errors.As")
	}
}
