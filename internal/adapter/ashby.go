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

const ashbyBaseURL = "https://api.ashbyhq.com/posting-api/job-board"

// ashbyJob represents a single posting in the Ashby API response.
type ashbyJob struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Department  string `json:"department"`
	Team        string `json:"team"`
	Location    string `json:"location"`
	IsRemote    bool   `json:"isRemote"`
	JobURL      string `json:"jobUrl"`
	PublishedAt string `json:"publishedAt"`
	IsListed    bool   `json:"isListed"`
}

// ashbyResponse is the top-level Ashby job board API response.
type ashbyResponse struct {
	Jobs []ashbyJob `json:"jobs"`
}

// AshbyAdapter fetches postings from the Ashby public job board API.
type AshbyAdapter struct {
	client *http.Client
}

// NewAshbyAdapter creates the adapter for Ashby job boards.
func NewAshbyAdapter(client *http.Client) *AshbyAdapter {
	return &AshbyAdapter{client: client}
}

// Fetch retrieves all listed postings from the target's Ashby board and
// normalizes them into the unified Job model. Unlisted postings are skipped.
func (a *AshbyAdapter) Fetch(ctx context.Context, target config.Target) ([]model.Job, error) {
	url := fmt.Sprintf("%s/%s", ashbyBaseURL, target.Slug)

	req, err := newRequest(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("ashby fetch for %s: %w", target.Slug, err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ashby fetch for %s: %w", target.Slug, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("ashby fetch for %s: unexpected status %d", target.Slug, resp.StatusCode),
		}
	}

	var ashbyResp ashbyResponse
	if err := json.NewDecoder(resp.Body).Decode(&ashbyResp); err != nil {
		return nil, fmt.Errorf("ashby fetch for %s: %w", target.Slug, &model.DecodeError{Err: err})
	}

	jobs := make([]model.Job, 0, len(ashbyResp.Jobs))
	for _, aj := range ashbyResp.Jobs {
		if !aj.IsListed {
			continue
		}

		department := aj.Department
		if department == "" {
			department = aj.Team
		}

		externalID := aj.ID
		if externalID == "" {
			externalID = aj.JobURL
		}

		job := model.Job{
			Source:      "ashby",
			Company:     target.Slug,
			CompanyName: target.Name,
			ExternalID:  externalID,
			Title:       aj.Title,
			Location:    aj.Location,
			Department:  department,
			URL:         aj.JobURL,
			Remote:      aj.IsRemote || containsRemote(aj.Location),
		}

		if aj.PublishedAt != "" {
			if t, err := time.Parse(time.RFC3339, aj.PublishedAt); err == nil {
				job.PostedAt = &t
			}
		}

		jobs = append(jobs, job)
	}

	return jobs, nil
}
