package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/thatguy-hiparh/jobscout/internal/config"
	"github.com/thatguy-hiparh/jobscout/internal/model"
)

const workdayPageSize = 20

// workdayListingRequest is the POST body for the Workday CXS jobs endpoint.
type workdayListingRequest struct {
	AppliedFacets map[string]any `json:"appliedFacets"`
	Limit         int            `json:"limit"`
	Offset        int            `json:"offset"`
	SearchText    string         `json:"searchText"`
}

// workdayListingResponse is the response from the Workday CXS jobs endpoint.
type workdayListingResponse struct {
	Total       int              `json:"total"`
	JobPostings []workdayListing `json:"jobPostings"`
}

type workdayListing struct {
	Title         string `json:"title"`
	ExternalPath  string `json:"externalPath"`
	LocationsText string `json:"locationsText"`
	PostedOn      string `json:"postedOn"`
	JobFamily     string `json:"jobFamily"`
	ShortText     string `json:"shortText"`
}

// WorkdayAdapter fetches postings from a Workday career site through the
// CXS endpoint named by the target's workday_url.
type WorkdayAdapter struct {
	client *http.Client
}

// NewWorkdayAdapter creates the adapter for Workday CXS career sites.
func NewWorkdayAdapter(client *http.Client) *WorkdayAdapter {
	return &WorkdayAdapter{client: client}
}

// Fetch paginates through POST {workday_url}/jobs and normalizes every
// listing into the unified Job model.
func (a *WorkdayAdapter) Fetch(ctx context.Context, target config.Target) ([]model.Job, error) {
	base := strings.TrimRight(target.WorkdayURL, "/")
	company := target.Slug
	if company == "" {
		company = workdayTenant(base)
	}
	if company == "" {
		company = "workday"
	}

	listings, err := a.fetchAllListings(ctx, base, target.Name)
	if err != nil {
		return nil, err
	}

	jobs := make([]model.Job, 0, len(listings))
	for _, l := range listings {
		jobs = append(jobs, model.Job{
			Source:      "workday",
			Company:     company,
			CompanyName: target.Name,
			ExternalID:  l.ExternalPath,
			Title:       l.Title,
			Location:    l.LocationsText,
			Department:  l.JobFamily,
			Description: snippet(extractText(l.ShortText), snippetLen),
			URL:         workdayExternalURL(base, l.ExternalPath),
			Remote:      containsRemote(l.LocationsText, l.Title),
			PostedAt:    parsePostedOn(l.PostedOn),
		})
	}

	return jobs, nil
}

func (a *WorkdayAdapter) fetchAllListings(ctx context.Context, base, name string) ([]workdayListing, error) {
	var all []workdayListing
	offset := 0

	for {
		body := workdayListingRequest{
			AppliedFacets: map[string]any{},
			Limit:         workdayPageSize,
			Offset:        offset,
			SearchText:    "",
		}

		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("workday listing marshal for %s: %w", name, err)
		}

		req, err := newRequest(ctx, http.MethodPost, base+"/jobs", bytes.NewReader(jsonBody))
		if err != nil {
			return nil, fmt.Errorf("workday listing request for %s: %w", name, err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := a.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("workday listing fetch for %s: %w", name, err)
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, &model.HTTPError{
				StatusCode: resp.StatusCode,
				RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
				Err:        fmt.Errorf("workday listing fetch for %s: unexpected status %d", name, resp.StatusCode),
			}
		}

		var listResp workdayListingResponse
		if err := json.NewDecoder(resp.Body).Decode(&listResp); err != nil {
			resp.Body.Close()
			return nil, fmt.Errorf("workday listing decode for %s: %w", name, &model.DecodeError{Err: err})
		}
		resp.Body.Close()

		all = append(all, listResp.JobPostings...)

		// An empty page means the reported total was wrong; stop rather
		// than loop forever.
		if len(listResp.JobPostings) == 0 {
			break
		}

		offset += workdayPageSize
		if offset >= listResp.Total {
			break
		}
	}

	return all, nil
}

// workdayExternalURL converts the CXS API base plus a listing's external
// path into the public career-site URL. The external path already carries
// the site segment, so everything from /wday/ on is dropped.
func workdayExternalURL(cxsBase, externalPath string) string {
	if !strings.HasPrefix(externalPath, "/") {
		externalPath = "/" + externalPath
	}
	if i := strings.Index(cxsBase, "/wday/"); i >= 0 {
		return cxsBase[:i] + externalPath
	}
	return strings.TrimRight(cxsBase, "/") + externalPath
}

// workdayTenant pulls the tenant segment out of a CXS base URL
// (".../wday/cxs/{tenant}/{site}"). Empty when the URL is not CXS-shaped.
func workdayTenant(cxsBase string) string {
	i := strings.Index(cxsBase, "/wday/cxs/")
	if i < 0 {
		return ""
	}
	rest := cxsBase[i+len("/wday/cxs/"):]
	if j := strings.Index(rest, "/"); j >= 0 {
		rest = rest[:j]
	}
	return rest
}

var daysAgoRegex = regexp.MustCompile(`^Posted (\d+)\+? Days? Ago$`)

// parsePostedOn converts a Workday relative date string to an approximate
// timestamp. "Posted 30+ Days Ago" floors at 30; unknown strings map to nil.
func parsePostedOn(postedOn string) *time.Time {
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	switch postedOn {
	case "Posted Today":
		return &today
	case "Posted Yesterday":
		t := today.AddDate(0, 0, -1)
		return &t
	}

	if n, ok := parseDaysAgo(postedOn); ok {
		t := today.AddDate(0, 0, -n)
		return &t
	}

	return nil
}

func parseDaysAgo(s string) (int, bool) {
	matches := daysAgoRegex.FindStringSubmatch(s)
	if matches == nil {
		return 0, false
	}
	n, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
