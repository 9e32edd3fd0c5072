package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/thatguy-hiparh/jobscout/internal/store"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run the pipeline once without side effects",
	Long:  "Fetches, filters, and dedup-checks every enabled target, then prints the digest to stdout. Nothing is written: no report file, no email, and no posting is marked as seen.",
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&noFilter, "no-filter", false, "skip relevance filtering (show every posting)")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("check mode: no postings will be marked as seen")

	p, err := buildPipeline(cfg, store.NewNopStore(), noFilter, logger)
	if err != nil {
		logger.Error("invalid rules", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := p.Run(ctx, cfg.Targets)
	if err != nil {
		logger.Error("check failed", "stage", string(res.Stage), "error", err)
		os.Exit(1)
	}

	fmt.Println(res.Artifacts.Digest)
	return nil
}
