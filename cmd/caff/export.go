// ABOUTME: CLI commands for exporting and importing caff data.
// ABOUTME: Supports JSON, YAML, and Markdown export formats.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/caff/internal/models"
	"github.com/harperreed/caff/internal/storage"
	"github.com/spf13/cobra"
)

var (
	exportOutput string
	exportSince  string
)

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export caff data",
	Long: `Export caff data in various formats.

FORMATS:

  json       Full JSON export (suitable for backup/restore)
  yaml       YAML export (human-readable, also importable)
  markdown   Profile and drink table for the current user

OPTIONS:

  --output, -o   Write to file instead of stdout
  --since        Only include drinks since this date (markdown only, YYYY-MM-DD)

EXAMPLES:

  caff export json                        # Export all data as JSON
  caff export json -o backup.json         # Save to file
  caff export yaml                        # Export as YAML
  caff export markdown --since 2025-03-01 # Drinks from March onward`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"json", "yaml", "markdown"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		format := args[0]

		var data []byte
		var err error

		switch format {
		case "json":
			data, err = storage.ExportJSON(ctx, repo)
		case "yaml":
			data, err = storage.ExportYAML(ctx, repo)
		case "markdown":
			var since *time.Time
			if exportSince != "" {
				t, err := time.ParseInLocation(models.DateLayout, exportSince, time.Local)
				if err != nil {
					return fmt.Errorf("invalid date format: %s (use YYYY-MM-DD)", exportSince)
				}
				since = &t
			}
			md, err := storage.ExportMarkdown(ctx, repo, currentUser(), since)
			if err != nil {
				return err
			}
			data = []byte(md)
		default:
			return fmt.Errorf("unknown format: %s (use json, yaml, or markdown)", format)
		}

		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, data, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			color.Green("✓ Exported to %s", exportOutput)
		} else {
			fmt.Println(string(data))
		}

		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import caff data from JSON or YAML",
	Long: `Import caff data from a backup file written by 'caff export'.

Files ending in .yaml or .yml are read as YAML, everything else as JSON.
Profiles and daily samples are overwritten. Drinks, meals, and exercise
events with an existing ID cause an error on sqlite.

EXAMPLES:

  caff import backup.json
  caff import backup.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]

		data, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		switch strings.ToLower(filepath.Ext(filename)) {
		case ".yaml", ".yml":
			err = storage.ImportYAML(cmd.Context(), repo, data)
		default:
			err = storage.ImportJSON(cmd.Context(), repo, data)
		}
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		color.Green("✓ Imported from %s", filename)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	exportCmd.Flags().StringVar(&exportSince, "since", "", "only include drinks since date (YYYY-MM-DD)")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
