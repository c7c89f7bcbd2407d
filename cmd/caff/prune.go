// ABOUTME: CLI command for pruning old drink events.
// ABOUTME: Applies the retention window once, the same way the MCP server does daily.
package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/caff/internal/service"
	"github.com/spf13/cobra"
)

var pruneDays int

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete drinks older than the retention window",
	Long: `Delete drink events older than the retention window (default 30 days).

Scores only look at the last 7 days, so older drinks only matter for
export. Export first if you want to keep them.

Examples:
  caff prune
  caff prune --days 14`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		days := pruneDays
		if days <= 0 {
			days = cfg.GetRetentionDays()
		}

		n, err := service.PruneOnce(cmd.Context(), repo, days, time.Now(), recorder)
		if err != nil {
			return fmt.Errorf("prune failed: %w", err)
		}

		color.Green("✓ Pruned %d drinks older than %d days", n, days)
		return nil
	},
}

func init() {
	pruneCmd.Flags().IntVar(&pruneDays, "days", 0, "retention window in days (default from config, 30)")
	rootCmd.AddCommand(pruneCmd)
}
