package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/thatguy-hiparh/jobscout/internal/config"
	"github.com/thatguy-hiparh/jobscout/internal/notifier"
	"github.com/thatguy-hiparh/jobscout/internal/pipeline"
	"github.com/thatguy-hiparh/jobscout/internal/store"
)

var (
	noFilter bool
	noEmail  bool
	outPath  string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Poll every target once and write the report",
	Long:  "Runs the full pipeline once: fetch, filter, dedup, render. Writes the HTML report, emails the digest when enabled, and prunes stale seen records.",
	RunE:  runRun,
}

func init() {
	runCmd.Flags().BoolVar(&noFilter, "no-filter", false, "skip the relevance rules, keep every posting")
	runCmd.Flags().BoolVar(&noEmail, "no-email", false, "skip email delivery even when enabled in config")
	runCmd.Flags().StringVar(&outPath, "out", "", "HTML report path (overrides report.out)")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	out := cfg.Report.Out
	if outPath != "" {
		out = outPath
	}

	// One run at a time: overlapping cron invocations would double-send
	// the report and fight over the sqlite file.
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

	p, err := buildPipeline(cfg, seenStore, noFilter, logger)
	if err != nil {
		logger.Error("invalid rules", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := p.Run(ctx, cfg.Targets)
	if err != nil {
		logger.Error("run failed", "stage", string(res.Stage), "error", err)
		os.Exit(1)
	}

	if err := writeReport(out, res.Artifacts.HTML); err != nil {
		logger.Error("failed to write report", "path", out, "error", err)
		os.Exit(1)
	}
	logger.Info("report written", "path", out, "bytes", len(res.Artifacts.HTML))

	if err := deliver(cfg, res, logger); err != nil {
		logger.Error("email delivery failed", "error", err)
		os.Exit(1)
	}

	if err := seenStore.Prune(cfg.Store.Retention); err != nil {
		logger.Warn("prune failed", "error", err)
	}

	return nil
}

// writeReport writes the rendered HTML, creating parent directories as
// needed.
func writeReport(path string, html []byte) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}
	if err := os.WriteFile(path, html, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// deliver logs each new posting and, when enabled, mails the report.
func deliver(cfg *config.Config, res *pipeline.Result, logger *slog.Logger) error {
	msg := notifier.Message{
		Subject: cfg.Email.Subject,
		Text:    res.Artifacts.Digest,
		HTML:    res.Artifacts.HTML,
		Jobs:    res.NewJobs,
	}

	// Log delivery never fails.
	_ = notifier.NewLogNotifier(logger).Notify(msg)

	if cfg.Email.Enabled && !noEmail {
		return notifier.NewEmailNotifier(cfg.Email, logger).Notify(msg)
	}
	return nil
}
