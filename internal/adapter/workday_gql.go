package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/thatguy-hiparh/jobscout/internal/config"
	"github.com/thatguy-hiparh/jobscout/internal/model"
)

const workdayGQLPageSize = 200

// workdayGQLQuery is the job board search query the myworkdayjobs UI issues.
const workdayGQLQuery = `query SearchJobs($limit: Int!, $offset: Int!, $appliedFacets: AppliedFacetsInput, $searchText: String) {
  jobPostings(limit: $limit, offset: $offset, appliedFacets: $appliedFacets, searchText: $searchText) {
    totalCount
    edges {
      node {
        id
        title
        externalUrl
        applyUrl
        locations {
          city
          region
          country
          countryCode
        }
        postedOn
        jobPostingDescription
        jobFamily
        department
        category
      }
    }
  }
}`

type workdayGQLRequest struct {
	OperationName string              `json:"operationName"`
	Variables     workdayGQLVariables `json:"variables"`
	Query         string              `json:"query"`
}

type workdayGQLVariables struct {
	Limit         int            `json:"limit"`
	Offset        int            `json:"offset"`
	SearchText    *string        `json:"searchText"`
	AppliedFacets map[string]any `json:"appliedFacets"`
}

type workdayGQLResponse struct {
	Data struct {
		JobPostings struct {
			TotalCount int `json:"totalCount"`
			Edges      []struct {
				Node workdayGQLNode `json:"node"`
			} `json:"edges"`
		} `json:"jobPostings"`
	} `json:"data"`
}

type workdayGQLNode struct {
	ID                    string               `json:"id"`
	Title                 string               `json:"title"`
	ExternalURL           string               `json:"externalUrl"`
	ApplyURL              string               `json:"applyUrl"`
	Locations             []workdayGQLLocation `json:"locations"`
	PostedOn              string               `json:"postedOn"`
	JobPostingDescription string               `json:"jobPostingDescription"`
	JobFamily             string               `json:"jobFamily"`
	Department            string               `json:"department"`
	Category              string               `json:"category"`
}

type workdayGQLLocation struct {
	City        string `json:"city"`
	Region      string `json:"region"`
	Country     string `json:"country"`
	CountryCode string `json:"countryCode"`
}

// WorkdayGQLAdapter fetches postings from Workday tenants whose job board
// exposes the GraphQL endpoint next to the CXS one.
type WorkdayGQLAdapter struct {
	client *http.Client
}

// NewWorkdayGQLAdapter creates the adapter for Workday GraphQL job boards.
func NewWorkdayGQLAdapter(client *http.Client) *WorkdayGQLAdapter {
	return &WorkdayGQLAdapter{client: client}
}

// Fetch paginates the SearchJobs query against {workday_url}/graphql and
// normalizes every node into the unified Job model.
func (a *WorkdayGQLAdapter) Fetch(ctx context.Context, target config.Target) ([]model.Job, error) {
	base := strings.TrimRight(target.WorkdayURL, "/")
	company := target.Slug
	if company == "" {
		company = workdayTenant(base)
	}
	if company == "" {
		company = "workday-gql"
	}

	var jobs []model.Job
	offset := 0

	for {
		page, err := a.fetchPage(ctx, base, target.Name, offset)
		if err != nil {
			return nil, err
		}

		for _, edge := range page.Data.JobPostings.Edges {
			jobs = append(jobs, a.jobFromNode(base, company, target.Name, edge.Node))
		}

		got := len(page.Data.JobPostings.Edges)
		offset += got
		if got < workdayGQLPageSize || offset >= page.Data.JobPostings.TotalCount {
			break
		}
	}

	return jobs, nil
}

func (a *WorkdayGQLAdapter) fetchPage(ctx context.Context, base, name string, offset int) (*workdayGQLResponse, error) {
	body := workdayGQLRequest{
		OperationName: "SearchJobs",
		Variables: workdayGQLVariables{
			Limit:         workdayGQLPageSize,
			Offset:        offset,
			SearchText:    nil,
			AppliedFacets: map[string]any{},
		},
		Query: workdayGQLQuery,
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("workday-gql marshal for %s: %w", name, err)
	}

	req, err := newRequest(ctx, http.MethodPost, base+"/graphql", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("workday-gql request for %s: %w", name, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("workday-gql fetch for %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("workday-gql fetch for %s: unexpected status %d", name, resp.StatusCode),
		}
	}

	var page workdayGQLResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("workday-gql decode for %s: %w", name, &model.DecodeError{Err: err})
	}

	return &page, nil
}

func (a *WorkdayGQLAdapter) jobFromNode(base, company, name string, node workdayGQLNode) model.Job {
	var locParts []string
	var country string
	for _, l := range node.Locations {
		c := l.Country
		if c == "" {
			c = l.CountryCode
		}
		if country == "" {
			country = c
		}
		if part := joinParts(l.City, l.Region, c); part != "" {
			locParts = append(locParts, part)
		}
	}
	location := strings.Join(locParts, "; ")

	jobURL := node.ExternalURL
	if jobURL == "" {
		jobURL = node.ApplyURL
	}
	if strings.HasPrefix(jobURL, "/") {
		if u, err := url.Parse(base); err == nil {
			jobURL = u.Scheme + "://" + u.Host + jobURL
		}
	}

	department := node.Department
	if department == "" {
		department = node.JobFamily
	}
	if department == "" {
		department = node.Category
	}

	return model.Job{
		Source:      "workday-gql",
		Company:     company,
		CompanyName: name,
		ExternalID:  node.ID,
		Title:       node.Title,
		Location:    location,
		Country:     country,
		Department:  department,
		Description: snippet(extractText(node.JobPostingDescription), snippetLen),
		URL:         jobURL,
		Remote:      containsRemote(location, node.Title),
		PostedAt:    parsePostedOn(node.PostedOn),
	}
}
