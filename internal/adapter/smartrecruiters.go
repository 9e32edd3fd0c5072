package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/thatguy-hiparh/jobscout/internal/config"
	"github.com/thatguy-hiparh/jobscout/internal/model"
)

const (
	smartRecruitersBaseURL  = "https://api.smartrecruiters.com/v1/companies"
	smartRecruitersJobsURL  = "https://jobs.smartrecruiters.com"
	smartRecruitersPageSize = 100
)

// srLocation represents the structured location of a SmartRecruiters posting.
type srLocation struct {
	City    string `json:"city"`
	Region  string `json:"region"`
	Country string `json:"country"`
	Remote  bool   `json:"remote"`
}

// srPosting represents a single posting in the SmartRecruiters postings API.
type srPosting struct {
	ID           string       `json:"id"`
	RefNumber    string       `json:"refNumber"`
	Name         string       `json:"name"`
	ReleasedDate string       `json:"releasedDate"`
	Location     srLocation   `json:"location"`
	Department   srDepartment `json:"department"`
}

type srDepartment struct {
	Label string `json:"label"`
}

// srResponse is one page of the SmartRecruiters postings API response.
type srResponse struct {
	TotalFound int         `json:"totalFound"`
	Content    []srPosting `json:"content"`
}

// SmartRecruitersAdapter fetches postings from the SmartRecruiters public
// postings API. A target may list several company slugs (brands often post
// under more than one); each slug is paginated separately and a slug that
// errors does not sink the others.
type SmartRecruitersAdapter struct {
	client *http.Client
}

// NewSmartRecruitersAdapter creates the adapter for SmartRecruiters companies.
func NewSmartRecruitersAdapter(client *http.Client) *SmartRecruitersAdapter {
	return &SmartRecruitersAdapter{client: client}
}

// Fetch retrieves all postings for every configured company slug and
// normalizes them into the unified Job model. It fails only when every
// slug failed.
func (a *SmartRecruitersAdapter) Fetch(ctx context.Context, target config.Target) ([]model.Job, error) {
	slugs := target.SmartRecruitersSlugs
	if target.Slug != "" && !containsString(slugs, target.Slug) {
		slugs = append(append([]string{}, slugs...), target.Slug)
	}

	var jobs []model.Job
	var errs []error
	for _, slug := range slugs {
		slugJobs, err := a.fetchSlug(ctx, target, slug)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		jobs = append(jobs, slugJobs...)
	}

	if len(errs) == len(slugs) {
		return nil, fmt.Errorf("smartrecruiters fetch for %s: %w", target.Name, errors.Join(errs...))
	}
	return jobs, nil
}

func (a *SmartRecruitersAdapter) fetchSlug(ctx context.Context, target config.Target, slug string) ([]model.Job, error) {
	var jobs []model.Job
	offset := 0

	for {
		url := fmt.Sprintf("%s/%s/postings?limit=%d&offset=%d", smartRecruitersBaseURL, slug, smartRecruitersPageSize, offset)
		req, err := newRequest(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("smartrecruiters fetch for %s: %w", slug, err)
		}

		resp, err := a.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("smartrecruiters fetch for %s: %w", slug, err)
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, &model.HTTPError{
				StatusCode: resp.StatusCode,
				RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
				Err:        fmt.Errorf("smartrecruiters fetch for %s: unexpected status %d", slug, resp.StatusCode),
			}
		}

		var page srResponse
		if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
			resp.Body.Close()
			return nil, fmt.Errorf("smartrecruiters fetch for %s: %w", slug, &model.DecodeError{Err: err})
		}
		resp.Body.Close()

		for _, p := range page.Content {
			externalID := p.ID
			if externalID == "" {
				externalID = p.RefNumber
			}

			location := joinParts(p.Location.City, p.Location.Region, p.Location.Country)

			job := model.Job{
				Source:      "smartrecruiters",
				Company:     slug,
				CompanyName: target.Name,
				ExternalID:  externalID,
				Title:       p.Name,
				Location:    location,
				Country:     p.Location.Country,
				Department:  p.Department.Label,
				URL:         fmt.Sprintf("%s/%s/%s", smartRecruitersJobsURL, slug, p.ID),
				Remote:      p.Location.Remote || containsRemote(location),
			}

			if p.ReleasedDate != "" {
				if t, err := time.Parse(time.RFC3339, p.ReleasedDate); err == nil {
					job.PostedAt = &t
				}
			}

			jobs = append(jobs, job)
		}

		if len(page.Content) < smartRecruitersPageSize {
			break
		}
		offset += smartRecruitersPageSize
	}

	return jobs, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
