// ABOUTME: CLI command for starting MCP server.
// ABOUTME: Runs stdio-based MCP server plus the daily retention worker.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/caff/internal/mcp"
	"github.com/harperreed/caff/internal/service"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

MCP allows AI assistants like Claude to log drinks and read your crash risk
and CaffScore through a standardized protocol. The server communicates via
stdin/stdout. While it runs, drinks older than the retention window are
pruned once at startup and then daily.

CLAUDE DESKTOP CONFIGURATION:

  Add this to your Claude Desktop config (claude_desktop_config.json):

  {
    "mcpServers": {
      "caff": {
        "command": "caff",
        "args": ["mcp"]
      }
    }
  }

  On macOS, the config is at:
    ~/Library/Application Support/Claude/claude_desktop_config.json

AVAILABLE TOOLS:

  log_drink       Log a caffeinated drink
  list_drinks     List recent drinks
  delete_drink    Delete a drink by ID
  set_profile     Create or update the physiological profile
  log_sleep       Record hours slept
  log_stress      Record a 1-10 stress level
  log_meal        Record a meal
  log_exercise    Record exercise starting or completed
  crash_risk      Current crash risk with breakdown
  caff_score      Current CaffScore with breakdown
  risk_curve      Projected crash risk over the next hours
  engine_stats    Evaluation counters for this server

AVAILABLE RESOURCES:

  caff://status   Current crash risk and CaffScore
  caff://today    Everything logged today`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(repo, mcp.Options{
			UserID:       currentUser(),
			Evaluator:    evaluator,
			Recorder:     recorder,
			Logger:       appLog,
			CurveHorizon: cfg.CurveHorizon(),
			CurveStep:    cfg.CurveStep(),
		})
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Handle shutdown signals
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			cancel()
		}()

		done := service.StartRetentionWorker(ctx, repo, cfg.GetRetentionDays(), service.DefaultRetentionInterval, recorder, appLog)
		err = server.Serve(ctx)
		cancel()
		<-done
		return err
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
