package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/thatguy-hiparh/jobscout/internal/scheduler"
	"github.com/thatguy-hiparh/jobscout/internal/store"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run the pipeline on an interval",
	Long:  "Runs the full pipeline immediately and then on every interval tick; blocks until SIGINT/SIGTERM. A failed pass is logged and the next tick runs anyway.",
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"interval", cfg.Interval.String(),
		"targets", len(cfg.Targets),
		"include_terms", len(cfg.Rules.Include),
	)

	// The lock is held for the whole watch, so a stray cron `run` cannot
	// sneak in between ticks.
	lock := flock.New(cfg.Store.Path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		logger.Error("run lock failed", "lock", lock.Path(), "error", err)
		os.Exit(1)
	}
	if !locked {
		logger.Error("another run is already in progress", "lock", lock.Path())
		os.Exit(1)
	}
	defer lock.Unlock()

	seenStore, err := store.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		logger.Error("failed to open store", "path", cfg.Store.Path, "error", err)
		os.Exit(1)
	}
	defer seenStore.Close()

	p, err := buildPipeline(cfg, seenStore, false, logger)
	if err != nil {
		logger.Error("invalid rules", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pass := func(ctx context.Context) error {
		res, err := p.Run(ctx, cfg.Targets)
		if err != nil {
			return err
		}
		if err := writeReport(cfg.Report.Out, res.Artifacts.HTML); err != nil {
			return err
		}
		if err := deliver(cfg, res, logger); err != nil {
			return err
		}
		if err := seenStore.Prune(cfg.Store.Retention); err != nil {
			logger.Warn("prune failed", "error", err)
		}
		return nil
	}

	if err := scheduler.New(pass, cfg.Interval, logger).Run(ctx); err != nil {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}

	logger.Info("goodbye")
	return nil
}
