package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/thatguy-hiparh/jobscout/internal/config"
)

const careerFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
	<title>Acme News &amp; Careers</title>
	<link>https://example.com</link>
	<item>
		<title>Staff Accountant</title>
		<link>https://example.com/careers/staff-accountant</link>
		<guid>acme-101</guid>
		<pubDate>Mon, 02 Jun 2025 09:00:00 GMT</pubDate>
		<description><![CDATA[<p>Keep the books in order.</p>]]></description>
	</item>
	<item>
		<title>We're hiring: DevOps Engineer</title>
		<link>https://example.com/posts/devops</link>
		<pubDate>Tue, 03 Jun 2025 09:00:00 GMT</pubDate>
	</item>
	<item>
		<title>We're hiring across the board</title>
		<link>https://example.com/newsroom/hiring-spree</link>
		<pubDate>Wed, 04 Jun 2025 09:00:00 GMT</pubDate>
	</item>
	<item>
		<title>Quarterly results</title>
		<link>https://example.com/posts/q2-results</link>
		<pubDate>Thu, 05 Jun 2025 09:00:00 GMT</pubDate>
	</item>
</channel>
</rss>`

func TestRSSAdapter_Fetch_KeepsOnlyJobEntries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(careerFeed))
	}))
	defer srv.Close()

	a := NewRSSAdapter(srv.Client())
	jobs, err := a.Fetch(context.Background(), config.Target{
		Name:     "Acme",
		ATS:      "rss",
		RSSFeeds: []string{srv.URL + "/feed.xml"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Careers path passes, hiring title passes, newsroom and plain posts do not.
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d: %+v", len(jobs), jobs)
	}

	j := jobs[0]
	if j.Title != "Staff Accountant" {
		t.Errorf("Title = %s", j.Title)
	}
	if j.ExternalID != "acme-101" {
		t.Errorf("expected GUID as ExternalID, got %s", j.ExternalID)
	}
	if j.Source != "rss" || j.CompanyName != "Acme" {
		t.Errorf("identity fields = %s/%s", j.Source, j.CompanyName)
	}
	if j.Description != "Keep the books in order." {
		t.Errorf("Description = %q", j.Description)
	}
	if j.PostedAt == nil || j.PostedAt.Day() != 2 {
		t.Errorf("PostedAt = %v", j.PostedAt)
	}

	j2 := jobs[1]
	if j2.Title != "We're hiring: DevOps Engineer" {
		t.Errorf("Title = %s", j2.Title)
	}
	if j2.ExternalID != "https://example.com/posts/devops" {
		t.Errorf("expected link fallback for missing GUID, got %s", j2.ExternalID)
	}
}

func TestRSSAdapter_Fetch_PartialFeedFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken.xml" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(careerFeed))
	}))
	defer srv.Close()

	a := NewRSSAdapter(srv.Client())
	jobs, err := a.Fetch(context.Background(), config.Target{
		Name:     "Acme",
		RSSFeeds: []string{srv.URL + "/broken.xml", srv.URL + "/feed.xml"},
	})
	if err != nil {
		t.Fatalf("one healthy feed should be enough, got error: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs from the healthy feed, got %d", len(jobs))
	}
}

func TestRSSAdapter_Fetch_AllFeedsFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := NewRSSAdapter(srv.Client())
	_, err := a.Fetch(context.Background(), config.Target{
		Name:     "Acme",
		RSSFeeds: []string{srv.URL + "/a.xml", srv.URL + "/b.xml"},
	})
	if err == nil {
		t.Fatal("expected error when every feed fails, got nil")
	}
}

func TestLooksLikeJob(t *testing.T) {
	cases := []struct {
		link  string
		title string
		want  bool
	}{
		{"https://example.com/careers/role-1", "Anything", true},
		{"https://example.com/jobs/role-2", "Anything", true},
		{"https://example.com/work-with-us/openings/123", "Anything", true},
		{"https://example.com/posts/x", "Senior Product Designer", true},
		{"https://example.com/posts/x", "We are hiring!", true},
		{"https://example.com/newsroom/x", "We are hiring!", false},
		{"https://example.com/blog/engineering-deep-dive", "How we build audio engines", false},
		{"https://example.com/posts/x", "Company picnic photos", false},
		{"", "Open role", false},
	}
	for _, tc := range cases {
		if got := looksLikeJob(tc.link, tc.title); got != tc.want {
			t.Errorf("looksLikeJob(%q, %q) = %v, want %v", tc.link, tc.title, got)
		}
	}
}
