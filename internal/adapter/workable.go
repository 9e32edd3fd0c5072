package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/thatguy-hiparh/jobscout/internal/config"
	"github.com/thatguy-hiparh/jobscout/internal/model"
)

const (
	workableBaseURL  = "https://apply.workable.com/api/v3/accounts"
	workablePageSize = 200
)

// workableLocation represents the structured location of a Workable posting.
type workableLocation struct {
	City    string `json:"city"`
	Region  string `json:"region"`
	Country string `json:"country"`
}

// workableJob represents a single posting in the Workable accounts API response.
type workableJob struct {
	ID          string           `json:"id"`
	Shortcode   string           `json:"shortcode"`
	Title       string           `json:"title"`
	Department  string           `json:"department"`
	Location    workableLocation `json:"location"`
	Workplace   string           `json:"workplace"`
	URL         string           `json:"url"`
	PublishedAt string           `json:"published_at"`
	CreatedAt   string           `json:"created_at"`
	Summary     string           `json:"summary"`
}

// workableResponse is the top-level Workable accounts API response. Some
// tenants answer with "results", older ones with "jobs".
type workableResponse struct {
	Results []workableJob `json:"results"`
	Jobs    []workableJob `json:"jobs"`
}

// WorkableAdapter fetches postings from the public Workable accounts API.
type WorkableAdapter struct {
	client *http.Client
}

// NewWorkableAdapter creates the adapter for Workable accounts.
func NewWorkableAdapter(client *http.Client) *WorkableAdapter {
	return &WorkableAdapter{client: client}
}

// Fetch retrieves all postings for the target's Workable account and
// normalizes them into the unified Job model.
func (a *WorkableAdapter) Fetch(ctx context.Context, target config.Target) ([]model.Job, error) {
	url := fmt.Sprintf("%s/%s/jobs?limit=%d", workableBaseURL, target.Slug, workablePageSize)

	req, err := newRequest(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("workable fetch for %s: %w", target.Slug, err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("workable fetch for %s: %w", target.Slug, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("workable fetch for %s: unexpected status %d", target.Slug, resp.StatusCode),
		}
	}

	var wkResp workableResponse
	if err := json.NewDecoder(resp.Body).Decode(&wkResp); err != nil {
		return nil, fmt.Errorf("workable fetch for %s: %w", target.Slug, &model.DecodeError{Err: err})
	}

	items := wkResp.Results
	if len(items) == 0 {
		items = wkResp.Jobs
	}

	jobs := make([]model.Job, 0, len(items))
	for _, wj := range items {
		externalID := wj.Shortcode
		if externalID == "" {
			externalID = wj.ID
		}

		url := wj.URL
		if url == "" && externalID != "" {
			url = fmt.Sprintf("https://apply.workable.com/%s/j/%s/", target.Slug, externalID)
		}

		location := joinParts(wj.Location.City, wj.Location.Region, wj.Location.Country)

		job := model.Job{
			Source:      "workable",
			Company:     target.Slug,
			CompanyName: target.Name,
			ExternalID:  externalID,
			Title:       wj.Title,
			Location:    location,
			Country:     wj.Location.Country,
			Department:  wj.Department,
			Description: snippet(extractText(wj.Summary), snippetLen),
			URL:         url,
			Remote:      containsRemote(wj.Workplace, location),
		}

		for _, raw := range []string{wj.PublishedAt, wj.CreatedAt} {
			if raw == "" {
				continue
			}
			if t, err := time.Parse(time.RFC3339, raw); err == nil {
				job.PostedAt = &t
				break
			}
		}

		jobs = append(jobs, job)
	}

	return jobs, nil
}
