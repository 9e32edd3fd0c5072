package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/thatguy-hiparh/jobscout/internal/config"
)

func TestWorkdayGQLAdapter_Fetch_Success(t *testing.T) {
	payload := `{
		"data": {
			"jobPostings": {
				"totalCount": 2,
				"edges": [
					{
						"node": {
							"id": "R-1001",
							"title": "Catalog Data Engineer",
							"externalUrl": "https://careers.acme.com/job/R-1001",
							"locations": [
								{"city": "Milan", "region": "Lombardy", "country": "Italy"},
								{"city": "Berlin", "country": "Germany"}
							],
							"postedOn": "Posted Today",
							"jobPostingDescription": "<p>Model the catalog.</p>",
							"department": "Data Platform"
						}
					},
					{
						"node": {
							"id": "R-1002",
							"title": "A&R Coordinator",
							"applyUrl": "/job/R-1002/apply",
							"locations": [{"countryCode": "IT"}],
							"jobFamily": "Music Ops"
						}
					}
				]
			}
		}
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/wday/cxs/acme/External/graphql" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body workdayGQLRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("request body did not decode: %v", err)
		}
		if body.OperationName != "SearchJobs" || body.Variables.Offset != 0 {
			t.Errorf("unexpected query envelope: %s offset=%d", body.OperationName, body.Variables.Offset)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	a := NewWorkdayGQLAdapter(srv.Client())
	jobs, err := a.Fetch(context.Background(), config.Target{
		Name:       "Acme",
		ATS:        "workday-gql",
		WorkdayURL: srv.URL + "/wday/cxs/acme/External",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}

	j := jobs[0]
	if j.Source != "workday-gql" || j.Company != "acme" || j.ExternalID != "R-1001" {
		t.Errorf("identity fields = %s/%s/%s", j.Source, j.Company, j.ExternalID)
	}
	if j.URL != "https://careers.acme.com/job/R-1001" {
		t.Errorf("expected externalUrl passthrough, got %s", j.URL)
	}
	if j.Location != "Milan, Lombardy, Italy; Berlin, Germany" {
		t.Errorf("Location = %q", j.Location)
	}
	if j.Country != "Italy" {
		t.Errorf("expected first location's country, got %s", j.Country)
	}
	if j.Department != "Data Platform" {
		t.Errorf("Department = %s", j.Department)
	}
	if j.Description != "Model the catalog." {
		t.Errorf("Description = %q", j.Description)
	}
	if j.PostedAt == nil {
		t.Error("expected PostedAt for Posted Today")
	}

	j2 := jobs[1]
	if j2.URL == "" || j2.URL[0] == '/' {
		t.Errorf("expected relative applyUrl resolved against the board host, got %q", j2.URL)
	}
	if j2.Country != "IT" {
		t.Errorf("expected countryCode fallback, got %s", j2.Country)
	}
	if j2.Department != "Music Ops" {
		t.Errorf("expected jobFamily fallback, got %s", j2.Department)
	}
}

func TestWorkdayGQLAdapter_Fetch_EmptyBoard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": {"jobPostings": {"totalCount": 0, "edges": []}}}`))
	}))
	defer srv.Close()

	a := NewWorkdayGQLAdapter(srv.Client())
	jobs, err := a.Fetch(context.Background(), config.Target{
		Name:       "Empty Co",
		WorkdayURL: srv.URL + "/wday/cxs/empty/External",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 0 {
		t.Fatalf("expected 0 jobs, got %d", len(jobs))
	}
}
