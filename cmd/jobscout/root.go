package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/thatguy-hiparh/jobscout/internal/adapter"
	"github.com/thatguy-hiparh/jobscout/internal/config"
	"github.com/thatguy-hiparh/jobscout/internal/filter"
	"github.com/thatguy-hiparh/jobscout/internal/model"
	"github.com/thatguy-hiparh/jobscout/internal/pipeline"
	"github.com/thatguy-hiparh/jobscout/internal/ratelimit"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "jobscout",
	Short: "Job board scout — one report across every board you watch",
	Long:  "JobScout polls company job boards (Lever, Greenhouse, Workday, ...) and renders a daily report of new relevant postings.",
	// Default to `run` so a bare cron line can invoke the binary directly.
	RunE: runRun,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBSCOUT_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > JOBSCOUT_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("JOBSCOUT_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

// buildPipeline wires the full pipeline from config: adapter registry on a
// shared HTTP client, validated rule set, per-backend rate buckets.
func buildPipeline(cfg *config.Config, seen model.SeenStore, skipFilter bool, logger *slog.Logger) (*pipeline.Pipeline, error) {
	rules, err := filter.NewRuleSet(cfg.Rules)
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}

	return pipeline.New(pipeline.Options{
		Resolver:   adapter.NewRegistry(httpClient),
		Rules:      rules,
		Store:      seen,
		Limiter:    ratelimit.NewLimiter(cfg.Fetch.Rate, cfg.Fetch.Burst, cfg.Fetch.RateOverrides),
		Fetch:      cfg.Fetch,
		Title:      cfg.Report.Title,
		SkipFilter: skipFilter,
		Logger:     logger,
	}), nil
}
