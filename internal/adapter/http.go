package adapter

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"
)

const userAgent = "jobscout/1.0 (+https://github.com/thatguy-hiparh/jobscout)"

// newRequest builds a request with the scout user agent set. Several
// boards (SmartRecruiters, the Italian staffing sites) reject requests
// without one.
func newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	return req, nil
}

// parseRetryAfter parses the Retry-After header value into a duration.
// Supports seconds format (e.g. "120"). Returns zero if absent or unparseable.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
