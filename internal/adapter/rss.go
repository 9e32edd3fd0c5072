package adapter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/thatguy-hiparh/jobscout/internal/config"
	"github.com/thatguy-hiparh/jobscout/internal/model"
)

// Career pages syndicated over RSS/Atom mix job postings with press and
// blog noise, so entries must look like a job before they become Jobs:
// either the link path looks like a careers section or the title carries
// hiring vocabulary, and nothing in the link smells like a newsroom.
var (
	rssAllowPathRegex = regexp.MustCompile(`(?i)/careers?(/|$)|/jobs?(/|$)|/openings?(/|$)|/join[-_]us(/|$)|/work[-_]with[-_]us(/|$)|/positions?(/|$)|/vacanc(y|ies)(/|$)|/opportunit(y|ies)(/|$)`)

	rssAllowTitleRegex = regexp.MustCompile(`(?i)\b(hiring|we'?re hiring|we are hiring)\b|\b(role|position|opening|vacancy|career)\b|\b(engineer|developer|data|ml|ai|product|designer|marketer|analyst|manager|producer|a&r|audio)\b|\bintern(ship)?\b`)

	rssDenyFragments = []string{
		"newsroom", "press", "blog", "stories", "insights", "podcast", "updates",
	}
)

// RSSAdapter fetches postings from the career feeds listed on the target.
type RSSAdapter struct {
	client *http.Client
}

// NewRSSAdapter creates the adapter for RSS/Atom career feeds.
func NewRSSAdapter(client *http.Client) *RSSAdapter {
	return &RSSAdapter{client: client}
}

// Fetch parses every configured feed, keeps the entries that look like
// job postings, and normalizes them into the unified Job model. A feed
// that errors does not sink the others; Fetch fails only when every feed
// failed.
func (a *RSSAdapter) Fetch(ctx context.Context, target config.Target) ([]model.Job, error) {
	parser := gofeed.NewParser()
	parser.Client = a.client
	parser.UserAgent = userAgent

	var jobs []model.Job
	var errs []error
	for _, feedURL := range target.RSSFeeds {
		feed, err := parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("parse feed %s: %w", feedURL, err))
			continue
		}

		host := feedHost(feedURL)
		for _, item := range feed.Items {
			link := strings.TrimSpace(item.Link)
			title := collapseSpace(item.Title)
			if !looksLikeJob(link, title) {
				continue
			}

			externalID := item.GUID
			if externalID == "" {
				externalID = link
			}

			jobs = append(jobs, model.Job{
				Source:      "rss",
				Company:     host,
				CompanyName: target.Name,
				ExternalID:  externalID,
				Title:       title,
				Description: snippet(extractText(item.Description), snippetLen),
				URL:         link,
				Remote:      containsRemote(title),
				PostedAt:    item.PublishedParsed,
			})
		}
	}

	if len(errs) == len(target.RSSFeeds) && len(errs) > 0 {
		return nil, fmt.Errorf("rss fetch for %s: %w", target.Name, errors.Join(errs...))
	}
	return jobs, nil
}

// looksLikeJob applies the allow/deny heuristics to one feed entry.
func looksLikeJob(link, title string) bool {
	if link == "" {
		return false
	}
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	hostPath := strings.ToLower(u.Host + u.Path)

	for _, frag := range rssDenyFragments {
		if strings.Contains(hostPath, frag) {
			return false
		}
	}

	return rssAllowPathRegex.MatchString(u.Path) || rssAllowTitleRegex.MatchString(title)
}

func feedHost(feedURL string) string {
	u, err := url.Parse(feedURL)
	if err != nil || u.Host == "" {
		return feedURL
	}
	return u.Host
}
