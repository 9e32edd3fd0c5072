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
	adeccoBaseURL  = "https://www.adecco.it/offerte-lavoro"
	adeccoMaxPages = 10
)

// AdeccoAdapter scrapes the Adecco Italy public listing pages.
type AdeccoAdapter struct {
	client *http.Client
}

// NewAdeccoAdapter creates the adapter for adecco.it listings.
func NewAdeccoAdapter(client *http.Client) *AdeccoAdapter {
	return &AdeccoAdapter{client: client}
}

// Fetch walks the paginated listing (page 1 is the bare URL, then ?page=N)
// and normalizes every job card into the unified Job model.
func (a *AdeccoAdapter) Fetch(ctx context.Context, target config.Target) ([]model.Job, error) {
	base, err := url.Parse(adeccoBaseURL)
	if err != nil {
		return nil, fmt.Errorf("adecco fetch: %w", err)
	}

	var jobs []model.Job
	for page := 1; page <= adeccoMaxPages; page++ {
		pageURL := adeccoBaseURL
		if page > 1 {
			pageURL = fmt.Sprintf("%s?page=%d", adeccoBaseURL, page)
		}

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

func (a *AdeccoAdapter) fetchPage(ctx context.Context, base *url.URL, pageURL string, target config.Target) ([]model.Job, error) {
	req, err := newRequest(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("adecco fetch: %w", err)
	}
	req.Header.Set("Accept-Language", "it-IT,it;q=0.8,en-US;q=0.6,en;q=0.4")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("adecco fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("adecco fetch: unexpected status %d", resp.StatusCode),
		}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("adecco fetch: %w", &model.DecodeError{Err: err})
	}

	cards := doc.Find("article, div.job-card, li.job-result")
	if cards.Length() == 0 {
		// Some renderings use data attributes instead of card containers.
		cards = doc.Find("[data-job-id], .search-result, .job-listing")
	}

	now := time.Now()
	var jobs []model.Job
	cards.Each(func(_ int, card *goquery.Selection) {
		title := firstText(card, "a h3", "h3 a", "a[data-testid='job-title']", "h2 a", "a.job-title")
		link := cardLink(card, base)
		if title == "" || link == "" {
			return
		}

		company := firstText(card, ".company", "[data-testid='company-name']", ".job-company")
		if company == "" {
			company = target.Name
		}
		location := firstText(card, ".location", "[data-testid='job-location']", ".job-location", ".job-city")
		if location == "" {
			location = "Italia"
		}
		dateText := firstText(card, "time", ".date", "[data-testid='posted-date']", ".job-date")

		jobs = append(jobs, model.Job{
			Source:      "adecco",
			Company:     "adecco.it",
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
