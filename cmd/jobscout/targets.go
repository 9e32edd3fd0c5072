package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "List all configured targets",
	Long:  "Reads the config and prints a table of all configured targets.",
	RunE:  runTargets,
}

func init() {
	rootCmd.AddCommand(targetsCmd)
}

func runTargets(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%-25s %-15s %s\n", "Target", "ATS", "Status")
	fmt.Println(strings.Repeat("─", 47))

	enabled, disabled := 0, 0
	for _, t := range cfg.Targets {
		status := "enabled"
		if !t.Enabled {
			status = "disabled"
			disabled++
		} else {
			enabled++
		}
		fmt.Printf("%-25s %-15s %s\n", t.Name, t.ATS, status)
	}

	fmt.Printf("\nTotal: %d targets (%d enabled, %d disabled)\n", len(cfg.Targets), enabled, disabled)
	return nil
}
