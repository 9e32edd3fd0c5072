package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/thatguy-hiparh/jobscout/internal/adapter"
	"github.com/thatguy-hiparh/jobscout/internal/audit"
	"github.com/thatguy-hiparh/jobscout/internal/config"
	"github.com/thatguy-hiparh/jobscout/internal/filter"
	"github.com/thatguy-hiparh/jobscout/internal/model"
	"github.com/thatguy-hiparh/jobscout/internal/retry"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Browse postings interactively (TUI)",
	Long:  "Shows the target picker TUI, then launches the split-pane audit view so you can see how the relevance rules judge each posting.",
	RunE:  runAuditCmd,
}

func init() {
	rootCmd.AddCommand(auditCmd)
}

func runAuditCmd(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	rules, err := filter.NewRuleSet(cfg.Rules)
	if err != nil {
		logger.Error("invalid rules", "error", err)
		os.Exit(1)
	}

	runAudit(cfg, rules)
	return nil
}

func runAudit(cfg *config.Config, rules filter.RuleSet) {
	var enabled []config.Target
	for _, t := range cfg.Targets {
		if t.Enabled {
			enabled = append(enabled, t)
		}
	}
	if len(enabled) == 0 {
		fmt.Println("No enabled targets in config.")
		return
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	reg := adapter.NewRegistry(httpClient)
	// Audit mode runs a TUI; any log output before the alt-screen starts
	// corrupts the display.
	silent := slog.New(slog.NewTextHandler(io.Discard, nil))

	for {
		choice, err := audit.RunTargetPicker(enabled)
		if err != nil {
			fmt.Printf("Picker error: %v\n", err)
			return
		}
		if choice < 0 {
			return
		}
		target := enabled[choice]

		fetcher, err := reg.Resolve(target.ATS)
		if err != nil {
			fmt.Printf("Unsupported ATS: %s\n", target.ATS)
			continue
		}
		wrapped := retry.Wrap(fetcher, cfg.Fetch.Retries, cfg.Fetch.RetryBaseDelay, silent)

		jobs, err := audit.RunLoader(target.Name, func(ctx context.Context) ([]model.Job, error) {
			return wrapped.Fetch(ctx, target)
		})
		if err != nil {
			fmt.Printf("Error fetching postings: %v\n", err)
			continue
		}

		var accepted []model.Job
		for _, j := range jobs {
			if rules.Match(j) {
				accepted = append(accepted, j)
			}
		}

		wantQuit, err := audit.RunRuleAudit(jobs, accepted, rules)
		if err != nil {
			fmt.Printf("TUI error: %v\n", err)
		}
		if wantQuit {
			return
		}
		// else: loop → back to picker
	}
}
