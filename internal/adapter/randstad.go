package adapter

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/thatguy-hiparh/jobscout/internal/config"
	"github.com/thatguy-hiparh/jobscout/internal/model"
)

const (
	randstadBaseURL  = "https://www.randstad.it/offerte-lavoro/"
	randstadMaxPages = 10
)

// RandstadAdapter scrapes the Randstad Italy public listing pages.
type RandstadAdapter struct {
	client *http.Client
}

// NewRandstadAdapter creates the adapter for randstad.it listings.
func NewRandstadAdapter(client *http.Client) *RandstadAdapter {
	return &RandstadAdapter{client: client}
}

// Fetch walks the paginated listing (?pagina=N) and normalizes every job
// card into the unified Job model. Pagination stops at the first page
// that yields no cards; a non-200 after the first page keeps the partial
// results.
func (a *RandstadAdapter) Fetch(ctx context.Context, target config.Target) ([]model.Job, error) {
	base, err := url.Parse(randstadBaseURL)
	if err != nil {
		return nil, fmt.Errorf("randstad fetch: %w", err)
	}

	var jobs []model.Job
	for page := 1; page <= randstadMaxPages; page++ {
		pageURL := fmt.Sprintf("%s?pagina=%d", randstadBaseURL, page)

		pageJobs, err := a.fetchPage(ctx, base, pageURL, target)
		if err != nil {
			if page == 1 {
				return nil, err
			}
			break
		}
		if len(pageJobs) == 0 {
			break
		}
		jobs = append(jobs, pageJobs...)
	}

	return jobs, nil
}

func (a *RandstadAdapter) fetchPage(ctx context.Context, base *url.URL, pageURL string, target config.Target) ([]model.Job, error) {
	req, err := newRequest(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("randstad fetch: %w", err)
	}
	req.Header.Set("Accept-Language", "it-IT,it;q=0.8,en-US;q=0.6,en;q=0.4")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("randstad fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("randstad fetch: unexpected status %d", resp.StatusCode),
		}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("randstad fetch: %w", &model.DecodeError{Err: err})
	}

	now := time.Now()
	var jobs []model.Job
	doc.Find("[data-component='job-card'], article, li.job-result, div.job-card").Each(func(_ int, card *goquery.Selection) {
		title := firstText(card, "a h3", "h3 a", "a[data-testid='job-title']", "h2 a")
		link := cardLink(card, base)
		if title == "" || link == "" {
			return
		}

		company := firstText(card, "[data-testid='company-name']", ".company", ".job-company")
		if company == "" {
			company = target.Name
		}
		location := firstText(card, "[data-testid='job-location']", ".location", ".job-location", ".job-city")
		dateText := firstText(card, "[data-testid='posted-date']", "time", ".date", ".job-date")

		jobs = append(jobs, model.Job{
			Source:      "randstad",
			Company:     "randstad.it",
			CompanyName: company,
			ExternalID:  link,
			Title:       title,
			Location:    location,
			Country:     "Italy",
			URL:         link,
			Remote:      containsRemote(location, title),
			PostedAt:    parseItalianDate(dateText, now),
		})
	})

	return jobs, nil
}
