// ABOUTME: CLI commands for the caffeine drink ledger.
// ABOUTME: Adds, lists, and deletes drink events.
package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/caff/internal/models"
	"github.com/harperreed/caff/internal/storage"
	"github.com/spf13/cobra"
)

var (
	drinkName       string
	drinkAt         string
	drinkCompletion float64
	drinkDuration   int
	drinkListLimit  int
)

var drinkCmd = &cobra.Command{
	Use:     "drink",
	Aliases: []string{"d"},
	Short:   "Log and review caffeinated drinks",
}

var drinkAddCmd = &cobra.Command{
	Use:     "add <caffeine-mg>",
	Aliases: []string{"a"},
	Short:   "Log a drink",
	Long: `Log a caffeinated drink by its declared caffeine content in mg.

Examples:
  caff drink add 95 --name "Coffee"
  caff drink add 63 --name espresso --at "2025-03-03 08:15"
  caff drink add 200 --completion 50 --duration 45`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mg, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid caffeine amount: %s", args[0])
		}

		e := models.NewDrinkEvent(currentUser(), mg).
			WithCompletion(drinkCompletion).
			WithDuration(drinkDuration)
		if drinkName != "" {
			e.WithName(drinkName)
		}
		if drinkAt != "" {
			t, err := parseTime(drinkAt)
			if err != nil {
				return fmt.Errorf("invalid timestamp: %s", drinkAt)
			}
			e.WithTimestamp(t)
		}

		if err := models.ValidateDrinkEvents([]*models.DrinkEvent{e}); err != nil {
			return err
		}
		if err := repo.CreateDrinkEvent(cmd.Context(), e); err != nil {
			return fmt.Errorf("failed to log drink: %w", err)
		}

		color.Green("✓ Logged %s", drinkLabel(e))
		fmt.Printf("  %s %.0f mg at %s\n",
			color.New(color.Faint).Sprint(e.ID.String()[:8]),
			e.ActualCaffeineConsumed(),
			e.Timestamp.Local().Format("15:04"))
		return nil
	},
}

var drinkListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List recent drinks",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		drinks, err := repo.ListDrinkEvents(cmd.Context(), currentUser(), drinkListLimit)
		if err != nil {
			return fmt.Errorf("failed to list drinks: %w", err)
		}

		if len(drinks) == 0 {
			fmt.Println("No drinks logged.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, d := range drinks {
			partial := ""
			if d.CompletionPercentage < 100 {
				partial = faint.Sprintf(" (%.0f%% of %.0f mg)", d.CompletionPercentage, d.CaffeineMg)
			}
			fmt.Printf("%s %s %s %6.0f mg%s\n",
				faint.Sprint(d.ID.String()[:8]),
				d.Timestamp.Local().Format("2006-01-02 15:04"),
				padRight(truncate(drinkLabel(d), 20), 20),
				d.ActualCaffeineConsumed(),
				partial)
		}
		return nil
	},
}

var drinkDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a drink by ID or ID prefix",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := repo.DeleteDrinkEvent(cmd.Context(), currentUser(), args[0]); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("no drink matches %s", args[0])
			}
			return fmt.Errorf("failed to delete drink: %w", err)
		}
		color.Green("✓ Deleted drink %s", args[0])
		return nil
	},
}

func drinkLabel(d *models.DrinkEvent) string {
	if d.Name != "" {
		return d.Name
	}
	return "drink"
}

func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02 15:04",
		"2006-01-02T15:04",
		"2006-01-02",
	}
	for _, f := range formats {
		if t, err := time.ParseInLocation(f, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Parse(time.RFC3339, s)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

func init() {
	drinkAddCmd.Flags().StringVar(&drinkName, "name", "", "drink name, e.g. espresso")
	drinkAddCmd.Flags().StringVar(&drinkAt, "at", "", "when you started drinking (YYYY-MM-DD HH:MM)")
	drinkAddCmd.Flags().Float64Var(&drinkCompletion, "completion", 100, "percent of the drink finished")
	drinkAddCmd.Flags().IntVar(&drinkDuration, "duration", 0, "minutes taken to finish")
	drinkListCmd.Flags().IntVarP(&drinkListLimit, "limit", "n", 20, "max number of results")

	drinkCmd.AddCommand(drinkAddCmd)
	drinkCmd.AddCommand(drinkListCmd)
	drinkCmd.AddCommand(drinkDeleteCmd)
	rootCmd.AddCommand(drinkCmd)
}
