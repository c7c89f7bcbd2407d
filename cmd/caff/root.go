// ABOUTME: Root Cobra command for caff CLI.
// ABOUTME: Loads config and opens storage, engine, and evaluator via PersistentPre/PostRunE.
package main

import (
	"fmt"

	"github.com/harperreed/caff/internal/config"
	"github.com/harperreed/caff/internal/engine"
	"github.com/harperreed/caff/internal/logger"
	"github.com/harperreed/caff/internal/service"
	"github.com/harperreed/caff/internal/storage"
	"github.com/harperreed/caff/internal/telemetry"
	"github.com/spf13/cobra"
)

var (
	cfg       *config.Config
	repo      storage.Repository
	appLog    *logger.Logger
	recorder  *telemetry.Recorder
	evaluator *service.Evaluator

	flagUser    string
	flagBackend string
	flagDataDir string
	flagDebug   bool
)

var rootCmd = &cobra.Command{
	Use:   "caff",
	Short: "Caffeine crash risk and focus tracker",
	Long: `Caff tracks the caffeine you drink and estimates two scores from it:

  Crash risk   0-100, how likely an energy crash is in the next 60-90 minutes
  CaffScore    0-100, how much focus potential caffeine is giving you now

Both come from a pharmacokinetic model of your personal caffeine half-life,
adjusted for sleep, stress, meals, and exercise.

QUICK START:

  $ caff profile set --weight 70 --age 30 --sex male   # One-time setup
  $ caff drink add 95 --name "Coffee"                  # Log a drink
  $ caff sleep 6.5                                     # Last night's sleep
  $ caff score                                         # See both scores
  $ caff curve                                         # Crash risk, next 3 hours

DAILY SIGNALS:

  $ caff stress 7               # Self-reported stress, 1-10
  $ caff meal                   # You just ate
  $ caff exercise completed     # Finished a workout

MCP INTEGRATION:

  Run 'caff mcp' to start the Model Context Protocol server for use with
  Claude Desktop or other MCP-compatible AI assistants. Add to your Claude
  config:

  {
    "mcpServers": {
      "caff": { "command": "caff", "args": ["mcp"] }
    }
  }

DATA STORAGE:

  Data lives in ~/.local/share/caff (caff.db for sqlite, kv/ for badger).
  Settings come from ~/.config/caff/config.json. CAFF_* environment variables
  override it, and a .env file in the working directory can supply them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip storage init for commands that don't need it
		switch cmd.Name() {
		case "version", "help", "install-skill", "completion":
			return nil
		}

		if err := config.LoadDotEnv(); err != nil {
			return err
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		applyFlags(cfg)

		appLog, err = logger.New(cfg.LogMode, cfg.Debug)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		// PostRun is skipped when RunE fails, which can leave a store open.
		if repo != nil {
			_ = repo.Close()
		}
		repo, err = cfg.OpenStorage()
		if err != nil {
			return fmt.Errorf("failed to open storage: %w", err)
		}

		recorder = telemetry.NewRecorder()
		evaluator = service.NewEvaluator(repo, engine.New(cfg.EngineConfig(), appLog), recorder, appLog)
		appLog.Debug("storage opened", "backend", cfg.GetBackend(), "data_dir", cfg.GetDataDir())
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if appLog != nil {
			appLog.Sync()
		}
		if repo != nil {
			err := repo.Close()
			repo = nil
			return err
		}
		return nil
	},
}

// applyFlags lets persistent flags override file and environment settings.
func applyFlags(c *config.Config) {
	if flagUser != "" {
		c.UserID = flagUser
	}
	if flagBackend != "" {
		c.Backend = flagBackend
	}
	if flagDataDir != "" {
		c.DataDir = flagDataDir
	}
	if flagDebug {
		c.Debug = true
	}
}

// currentUser returns the user ID commands act on.
func currentUser() string {
	return cfg.GetUserID()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagUser, "user", "u", "", "user ID (default $CAFF_USER_ID or $USER)")
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "storage backend: sqlite or badger")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default ~/.local/share/caff)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
}
