package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRun_ImmediateFirstPass(t *testing.T) {
	var calls atomic.Int32
	s := New(func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}, time.Hour, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()
	<-done

	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want exactly 1 before the first tick", got)
	}
}

func TestRun_CancelReturnsPromptly(t *testing.T) {
	s := New(func(ctx context.Context) error { return nil }, time.Hour, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected nil error on cancel, got: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not return within 2s after cancel")
	}
}

func TestRun_TicksOnInterval(t *testing.T) {
	var calls atomic.Int32
	s := New(func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}, 50*time.Millisecond, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	// Enough time for the immediate pass plus at least one tick.
	time.Sleep(180 * time.Millisecond)
	cancel()
	<-done

	if got := calls.Load(); got < 2 {
		t.Errorf("calls = %d, want >= 2", got)
	}
}

func TestRun_ErrorDoesNotStopLoop(t *testing.T) {
	var calls atomic.Int32
	s := New(func(ctx context.Context) error {
		calls.Add(1)
		return errors.New("pipeline blew up")
	}, 50*time.Millisecond, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	time.Sleep(180 * time.Millisecond)
	cancel()

	if err := <-done; err != nil {
		t.Fatalf("Run returned %v, want nil on cancel even after failed passes", err)
	}
	if got := calls.Load(); got < 2 {
		t.Errorf("calls = %d, want >= 2 (loop must survive a failed pass)", got)
	}
}
