// ABOUTME: CLI command for migrating data between storage backends.
// ABOUTME: Copies everything from the configured backend into the other one.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/harperreed/caff/internal/config"
	"github.com/harperreed/caff/internal/storage"
	"github.com/spf13/cobra"
)

var (
	migrateTo      string
	migrateDestDir string
	migrateDryRun  bool
	migrateForce   bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate data between sqlite and badger",
	Long: `Copy all caff data from the configured backend into another backend.

IMPORTANT:

  - The destination must be empty unless --force is given
  - The source is left untouched
  - Run with --dry-run first to see what would be migrated

USAGE:

  caff migrate --to badger --dry-run   # Preview what would be migrated
  caff migrate --to badger             # Copy sqlite data into ~/.local/share/caff/kv
  caff migrate --to sqlite --dest-dir /tmp/caff

AFTER MIGRATION:

  Switch backends by setting "backend" in ~/.config/caff/config.json
  or CAFF_BACKEND in the environment.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		dest := &config.Config{Backend: migrateTo, DataDir: migrateDestDir}
		if dest.DataDir == "" {
			dest.DataDir = cfg.GetDataDir()
		}
		if dest.GetBackend() != config.BackendSQLite && dest.GetBackend() != config.BackendBadger {
			return fmt.Errorf("unknown backend: %s (use sqlite or badger)", migrateTo)
		}
		if dest.GetBackend() == cfg.GetBackend() && dest.GetDataDir() == cfg.GetDataDir() {
			return fmt.Errorf("source and destination are the same %s store", cfg.GetBackend())
		}

		if migrateDryRun {
			color.Yellow("Dry run mode - no changes will be made")
			fmt.Println()
			data, err := repo.GetAllData(ctx)
			if err != nil {
				return fmt.Errorf("failed to read source: %w", err)
			}
			fmt.Printf("Would migrate from %s to %s (%s):\n", cfg.GetBackend(), dest.GetBackend(), dest.GetDataDir())
			printMigrateSummary(&storage.MigrateSummary{
				Profiles: len(data.Profiles),
				Drinks:   len(data.Drinks),
				Sleep:    len(data.Sleep),
				Stress:   len(data.Stress),
				Meals:    len(data.Meals),
				Exercise: len(data.Exercise),
			})
			return nil
		}

		if !migrateForce {
			occupied, err := destinationOccupied(dest)
			if err != nil {
				return err
			}
			if occupied {
				return fmt.Errorf("destination %s already has data (use --force to merge)", dest.GetDataDir())
			}
		}

		dst, err := dest.OpenStorage()
		if err != nil {
			return fmt.Errorf("failed to open destination: %w", err)
		}
		defer func() { _ = dst.Close() }()

		summary, err := storage.MigrateData(ctx, repo, dst)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}

		color.Green("✓ Migrated %s → %s", cfg.GetBackend(), dest.GetBackend())
		printMigrateSummary(summary)
		return nil
	},
}

func destinationOccupied(dest *config.Config) (bool, error) {
	if dest.GetBackend() == config.BackendBadger {
		return storage.IsDirNonEmpty(filepath.Join(dest.GetDataDir(), "kv"))
	}
	_, err := os.Stat(filepath.Join(dest.GetDataDir(), "caff.db"))
	if os.IsNotExist(err) {
		return false, nil
	}
	return err == nil, err
}

func printMigrateSummary(s *storage.MigrateSummary) {
	fmt.Printf("  profiles  %d\n", s.Profiles)
	fmt.Printf("  drinks    %d\n", s.Drinks)
	fmt.Printf("  sleep     %d\n", s.Sleep)
	fmt.Printf("  stress    %d\n", s.Stress)
	fmt.Printf("  meals     %d\n", s.Meals)
	fmt.Printf("  exercise  %d\n", s.Exercise)
}

func init() {
	migrateCmd.Flags().StringVar(&migrateTo, "to", "", "destination backend: sqlite or badger")
	migrateCmd.Flags().StringVar(&migrateDestDir, "dest-dir", "", "destination data directory (default: current data dir)")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "preview migration without making changes")
	migrateCmd.Flags().BoolVar(&migrateForce, "force", false, "migrate into a destination that already has data")
	_ = migrateCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(migrateCmd)
}
