package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// Scheduler re-runs a job on a fixed interval: one immediate pass, then
// ticks. A failed pass is logged and the loop keeps going, so a flaky
// night does not kill watch mode.
type Scheduler struct {
	run      func(ctx context.Context) error
	interval time.Duration
	logger   *slog.Logger
}

// New creates a scheduler that calls run every interval.
func New(run func(ctx context.Context) error, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		run:      run,
		interval: interval,
		logger:   logger,
	}
}

// Run starts the loop. It returns nil when ctx is cancelled (graceful
// shutdown).
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler", "interval", s.interval.String())

	s.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutting down scheduler")
			return nil
		case <-time.After(s.interval):
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := s.run(ctx); err != nil {
		s.logger.Error("run failed", "error", err)
	}
}
