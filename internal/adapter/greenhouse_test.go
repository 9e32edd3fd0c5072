package adapter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/thatguy-hiparh/jobscout/internal/config"
	"github.com/thatguy-hiparh/jobscout/internal/model"
)

func TestGreenhouseAdapter_Fetch_Success(t *testing.T) {
	payload := `{
		"jobs": [
			{
				"id": 4567890,
				"title": "Royalties Analyst",
				"location": {"name": "Milan, Italy"},
				"absolute_url": "https://boards.greenhouse.io/acme/jobs/4567890",
				"updated_at": "2025-06-10T09:00:00-04:00",
				"first_published": "2025-06-01T09:00:00-04:00"
			},
			{
				"id": 4567891,
				"title": "Catalog Manager",
				"location": {"name": "Remote - Europe"},
				"absolute_url": "https://boards.greenhouse.io/acme/jobs/4567891",
				"updated_at": "2025-06-11T09:00:00-04:00"
			}
		]
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/boards/acme/jobs" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	a := NewGreenhouseAdapter(newTestClient(srv))
	jobs, err := a.Fetch(context.Background(), config.Target{Name: "Acme", ATS: "greenhouse", Slug: "acme"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}

	j := jobs[0]
	if j.ExternalID != "4567890" {
		t.Errorf("expected ExternalID 4567890, got %s", j.ExternalID)
	}
	if j.Source != "greenhouse" || j.Company != "acme" || j.CompanyName != "Acme" {
		t.Errorf("identity fields = %s/%s/%s", j.Source, j.Company, j.CompanyName)
	}
	if j.Title != "Royalties Analyst" || j.Location != "Milan, Italy" {
		t.Errorf("title/location = %s / %s", j.Title, j.Location)
	}
	if j.PostedAt == nil {
		t.Fatal("expected PostedAt from first_published")
	}
	if j.PostedAt.Day() != 1 {
		t.Errorf("expected first_published to win over updated_at, got %v", j.PostedAt)
	}
	if j.Remote {
		t.Error("Milan posting should not be remote")
	}
	if !jobs[1].Remote {
		t.Error("Remote - Europe posting should be remote")
	}
}

func TestGreenhouseAdapter_Fetch_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	a := NewGreenhouseAdapter(newTestClient(srv))
	_, err := a.Fetch(context.Background(), config.Target{Name: "Gone", Slug: "gone"})
	if err == nil {
		t.Fatal("expected error for HTTP 404, got nil")
	}
	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusNotFound {
		t.Errorf("expected HTTPError 404, got %v", err)
	}
}

func TestGreenhouseAdapter_Fetch_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{broken`))
	}))
	defer srv.Close()

	a := NewGreenhouseAdapter(newTestClient(srv))
	_, err := a.Fetch(context.Background(), config.Target{Name: "Bad", Slug: "bad"})
	if err == nil {
		t.Fatal("expected error for malformed JSON, got nil")
	}
	var decErr *model.DecodeError
	if !errors.As(err, &decErr) {
		t.Errorf("expected DecodeError, got %v", err)
	}
}

// --- helpers ---

// roundTripFunc adapts a function into an http.RoundTripper.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// newTestClient routes every request to the test server regardless of the
// original host, preserving path and query.
func newTestClient(srv *httptest.Server) *http.Client {
	return &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			req.URL.Scheme = "http"
			req.URL.Host = srv.Listener.Addr().String()
			return http.DefaultTransport.RoundTrip(req)
		}),
	}
}
