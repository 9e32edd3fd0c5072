package adapter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/thatguy-hiparh/jobscout/internal/config"
	"github.com/thatguy-hiparh/jobscout/internal/model"
)

// Fetcher fetches all postings for one configured target.
type Fetcher interface {
	Fetch(ctx context.Context, target config.Target) ([]model.Job, error)
}

// ErrUnknownBackend is returned by Resolve for backend names without an adapter.
var ErrUnknownBackend = errors.New("unknown backend")

// Registry maps backend names to their adapters. It is built once and
// read-only afterwards, so it is safe for concurrent use.
type Registry struct {
	fetchers map[string]Fetcher
}

// NewRegistry builds the full adapter table on the shared HTTP client.
func NewRegistry(client *http.Client) *Registry {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	gql := NewWorkdayGQLAdapter(client)
	return &Registry{
		fetchers: map[string]Fetcher{
			"lever":           NewLeverAdapter(client),
			"greenhouse":      NewGreenhouseAdapter(client),
			"ashby":           NewAshbyAdapter(client),
			"workable":        NewWorkableAdapter(client),
			"smartrecruiters": NewSmartRecruitersAdapter(client),
			"workday":         NewWorkdayAdapter(client),
			"workday-gql":     gql,
			"workday_gql":     gql, // legacy config spelling
			"rss":             NewRSSAdapter(client),
			"randstad":        NewRandstadAdapter(client),
			"adecco":          NewAdeccoAdapter(client),
		},
	}
}

// Resolve returns the adapter for the given backend name. Lookup is
// case-insensitive and tolerates surrounding whitespace.
func (r *Registry) Resolve(name string) (Fetcher, error) {
	f, ok := r.fetchers[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
	return f, nil
}

// Names returns every registered backend name, aliases included, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.fetchers))
	for name := range r.fetchers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
