package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestWait_SameBackend_EnforcesRate(t *testing.T) {
	// 10 req/s with burst 1: the second request must wait ~100ms.
	limiter := NewLimiter(10, 1, nil)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "greenhouse"); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	start := time.Now()
	if err := limiter.Wait(ctx, "greenhouse"); err != nil {
		t.Fatalf("second wait: %v", err)
	}
	elapsed := time.Since(start)

	// Allow 20ms of timer jitter.
	if elapsed < 80*time.Millisecond {
		t.Errorf("expected >= 80ms wait, got %v", elapsed)
	}
}

func TestWait_DifferentBackends_NoCrossBlocking(t *testing.T) {
	limiter := NewLimiter(5, 1, nil)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "greenhouse"); err != nil {
		t.Fatalf("greenhouse wait: %v", err)
	}

	// Immediately hit lever — its own bucket, should not block.
	start := time.Now()
	if err := limiter.Wait(ctx, "lever"); err != nil {
		t.Fatalf("lever wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("expected lever wait to be near-instant, got %v", elapsed)
	}
}

func TestWait_BurstAllowsBackToBack(t *testing.T) {
	limiter := NewLimiter(1, 3, nil)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := limiter.Wait(ctx, "workday"); err != nil {
			t.Fatalf("wait %d: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("expected burst of 3 to pass immediately, got %v", elapsed)
	}
}

func TestWait_OverrideReplacesRate(t *testing.T) {
	// Global rate is glacial, but the override makes randstad fast.
	limiter := NewLimiter(0.1, 1, map[string]float64{"randstad": 100})
	ctx := context.Background()

	if err := limiter.Wait(ctx, "randstad"); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	start := time.Now()
	if err := limiter.Wait(ctx, "randstad"); err != nil {
		t.Fatalf("second wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("expected overridden rate to allow a quick second request, got %v", elapsed)
	}
}

func TestWait_ContextCancellation(t *testing.T) {
	limiter := NewLimiter(0.1, 1, nil) // one request per 10s
	ctx := context.Background()

	// Drain the bucket.
	if err := limiter.Wait(ctx, "greenhouse"); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := limiter.Wait(ctx, "greenhouse"); err == nil {
		t.Fatal("expected error from cancelled context, got nil")
	}
}
