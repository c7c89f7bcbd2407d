// ABOUTME: CLI commands for the daily signals that shape the scores.
// ABOUTME: Records sleep, stress, meals, and exercise.
package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/caff/internal/models"
	"github.com/spf13/cobra"
)

var (
	signalDate     string
	signalAt       string
	sleepSource    string
	exerciseAction string
)

var sleepCmd = &cobra.Command{
	Use:   "sleep <hours>",
	Short: "Record last night's sleep",
	Long: `Record how many hours you slept on the night ending on --date (default today).

Examples:
  caff sleep 6.5
  caff sleep 8 --date 2025-03-02 --source watch`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hours, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid hours: %s", args[0])
		}
		day, err := signalDay()
		if err != nil {
			return err
		}

		sample := &models.SleepSample{UserID: currentUser(), Date: day, HoursSlept: hours, Source: sleepSource}
		if err := models.Validate(sample); err != nil {
			return err
		}
		if err := repo.SaveSleepSample(cmd.Context(), sample); err != nil {
			return fmt.Errorf("failed to save sleep: %w", err)
		}

		color.Green("✓ Recorded %.1f h sleep for %s", hours, models.DateKey(day))
		return nil
	},
}

var stressCmd = &cobra.Command{
	Use:   "stress <level>",
	Short: "Record today's stress level (1-10)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid stress level: %s", args[0])
		}
		day, err := signalDay()
		if err != nil {
			return err
		}

		sample := &models.StressSample{UserID: currentUser(), Date: day, Level: level}
		if err := models.Validate(sample); err != nil {
			return err
		}
		if err := repo.SaveStressSample(cmd.Context(), sample); err != nil {
			return fmt.Errorf("failed to save stress: %w", err)
		}

		color.Green("✓ Recorded stress %d/10 for %s", level, models.DateKey(day))
		return nil
	},
}

var mealCmd = &cobra.Command{
	Use:   "meal",
	Short: "Record that you ate a meal",
	Long: `Record a meal. Meals in the last few hours slow caffeine absorption.

Examples:
  caff meal
  caff meal --at "2025-03-03 12:30"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ts, err := signalTime()
		if err != nil {
			return err
		}

		m := models.NewMealEvent(currentUser(), ts)
		if err := repo.CreateMealEvent(cmd.Context(), m); err != nil {
			return fmt.Errorf("failed to save meal: %w", err)
		}

		color.Green("✓ Recorded meal at %s", ts.Local().Format("15:04"))
		return nil
	},
}

var exerciseCmd = &cobra.Command{
	Use:       "exercise <starting|completed>",
	Short:     "Record the start or end of an exercise session",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(models.ExerciseStarting), string(models.ExerciseCompleted)},
	RunE: func(cmd *cobra.Command, args []string) error {
		ts, err := signalTime()
		if err != nil {
			return err
		}

		e := models.NewExerciseEvent(currentUser(), models.ExercisePhase(args[0]), ts)
		e.Activity = exerciseAction
		if err := models.Validate(e); err != nil {
			return err
		}
		if err := repo.CreateExerciseEvent(cmd.Context(), e); err != nil {
			return fmt.Errorf("failed to save exercise: %w", err)
		}

		label := "exercise"
		if e.Activity != "" {
			label = e.Activity
		}
		color.Green("✓ Recorded %s %s at %s", label, e.Phase, ts.Local().Format("15:04"))
		return nil
	},
}

// signalDay resolves --date, defaulting to today.
func signalDay() (time.Time, error) {
	if signalDate == "" {
		return time.Now(), nil
	}
	t, err := time.ParseInLocation(models.DateLayout, signalDate, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format: %s (use YYYY-MM-DD)", signalDate)
	}
	return t, nil
}

// signalTime resolves --at, defaulting to now.
func signalTime() (time.Time, error) {
	if signalAt == "" {
		return time.Now(), nil
	}
	t, err := parseTime(signalAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp: %s", signalAt)
	}
	return t, nil
}

func init() {
	sleepCmd.Flags().StringVar(&signalDate, "date", "", "date the night ended (YYYY-MM-DD)")
	sleepCmd.Flags().StringVar(&sleepSource, "source", "", "where the number came from, e.g. watch")
	stressCmd.Flags().StringVar(&signalDate, "date", "", "date (YYYY-MM-DD)")
	mealCmd.Flags().StringVar(&signalAt, "at", "", "when you ate (YYYY-MM-DD HH:MM)")
	exerciseCmd.Flags().StringVar(&signalAt, "at", "", "when it happened (YYYY-MM-DD HH:MM)")
	exerciseCmd.Flags().StringVar(&exerciseAction, "activity", "", "activity name, e.g. run")

	rootCmd.AddCommand(sleepCmd)
	rootCmd.AddCommand(stressCmd)
	rootCmd.AddCommand(mealCmd)
	rootCmd.AddCommand(exerciseCmd)
}
