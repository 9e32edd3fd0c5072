package ratelimit

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter spreads requests per ATS backend with a token bucket, so hitting
// five Greenhouse boards does not hammer boards-api.greenhouse.io while a
// lone Lever board waits on an unrelated bucket.
type Limiter struct {
	mu        sync.Mutex
	buckets   map[string]*rate.Limiter
	rps       float64
	burst     int
	overrides map[string]float64 // per-backend requests/sec
}

// NewLimiter creates a limiter allowing rps requests per second (burst
// capacity burst) against each backend. overrides replaces the rate for
// the named backends; it may be nil.
func NewLimiter(rps float64, burst int, overrides map[string]float64) *Limiter {
	return &Limiter{
		buckets:   make(map[string]*rate.Limiter),
		rps:       rps,
		burst:     burst,
		overrides: overrides,
	}
}

func (l *Limiter) bucketFor(backend string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if b, ok := l.buckets[backend]; ok {
		return b
	}
	rps := l.rps
	if r, ok := l.overrides[backend]; ok {
		rps = r
	}
	b := rate.NewLimiter(rate.Limit(rps), l.burst)
	l.buckets[backend] = b
	return b
}

// Wait blocks until the backend's bucket allows another request, or the
// context is done.
func (l *Limiter) Wait(ctx context.Context, backend string) error {
	if err := l.bucketFor(backend).Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait for %s: %w", backend, err)
	}
	return nil
}
