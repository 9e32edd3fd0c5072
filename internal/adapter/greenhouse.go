package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/thatguy-hiparh/jobscout/internal/config"
	"github.com/thatguy-hiparh/jobscout/internal/model"
)

const greenhouseBaseURL = "https://boards-api.greenhouse.io/v1/boards"

// greenhouseJob represents a single posting in the Greenhouse API response.
type greenhouseJob struct {
	ID          int64              `json:"id"`
	Title       string             `json:"title"`
	Location    greenhouseLocation `json:"location"`
	AbsoluteURL string             `json:"absolute_url"`
	UpdatedAt   string             `json:"updated_at"`
	FirstPub    string             `json:"first_published"`
}

type greenhouseLocation struct {
	Name string `json:"name"`
}

// greenhouseResponse is the top-level Greenhouse jobs API response.
type greenhouseResponse struct {
	Jobs []greenhouseJob `json:"jobs"`
}

// GreenhouseAdapter fetches postings from the Greenhouse public boards API.
type GreenhouseAdapter struct {
	client *http.Client
}

// NewGreenhouseAdapter creates the adapter for Greenhouse boards.
func NewGreenhouseAdapter(client *http.Client) *GreenhouseAdapter {
	return &GreenhouseAdapter{client: client}
}

// Fetch retrieves all postings from the target's Greenhouse board and
// normalizes them into the unified Job model.
func (a *GreenhouseAdapter) Fetch(ctx context.Context, target config.Target) ([]model.Job, error) {
	url := fmt.Sprintf("%s/%s/jobs", greenhouseBaseURL, target.Slug)

	req, err := newRequest(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("greenhouse fetch for %s: %w", target.Slug, err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("greenhouse fetch for %s: %w", target.Slug, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("greenhouse fetch for %s: unexpected status %d", target.Slug, resp.StatusCode),
		}
	}

	var ghResp greenhouseResponse
	if err := json.NewDecoder(resp.Body).Decode(&ghResp); err != nil {
		return nil, fmt.Errorf("greenhouse fetch for %s: %w", target.Slug, &model.DecodeError{Err: err})
	}

	jobs := make([]model.Job, 0, len(ghResp.Jobs))
	for _, gj := range ghResp.Jobs {
		job := model.Job{
			Source:      "greenhouse",
			Company:     target.Slug,
			CompanyName: target.Name,
			ExternalID:  strconv.FormatInt(gj.ID, 10),
			Title:       gj.Title,
			Location:    gj.Location.Name,
			URL:         gj.AbsoluteURL,
			Remote:      containsRemote(gj.Location.Name),
		}

		// first_published is closer to the real posting date than updated_at.
		for _, raw := range []string{gj.FirstPub, gj.UpdatedAt} {
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
