// ABOUTME: CLI commands for evaluating crash risk and CaffScore.
// ABOUTME: Prints both scores with factor breakdowns, or the projected risk curve.
package main

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/caff/internal/engine"
	"github.com/harperreed/caff/internal/models"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	scoreAt        string
	scoreFormat    string
	scoreMetrics   bool
	curveHorizon   time.Duration
	curveStep      time.Duration
	curveThreshold float64
)

var scoreCmd = &cobra.Command{
	Use:     "score",
	Aliases: []string{"s"},
	Short:   "Show crash risk and CaffScore",
	Long: `Evaluate crash risk and CaffScore from your profile, the last 7 days of
drinks, and today's signals.

FORMATS:

  text   Scores, levels, and factor breakdowns (default)
  json   Full evaluation as JSON
  yaml   Full evaluation as YAML

Examples:
  caff score
  caff score --at "2025-03-03 15:00"
  caff score --format json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		at, err := evalTime()
		if err != nil {
			return err
		}

		ev, err := evaluator.Evaluate(cmd.Context(), currentUser(), at)
		if err != nil {
			return fmt.Errorf("failed to evaluate: %w", err)
		}

		switch scoreFormat {
		case "json":
			data, err := json.MarshalIndent(ev, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
		case "yaml":
			data, err := yaml.Marshal(ev)
			if err != nil {
				return err
			}
			fmt.Print(string(data))
		case "text", "":
			printScore("Crash risk", ev.CrashRisk, ev.Crash, true)
			fmt.Println()
			printScore("CaffScore", ev.CaffScore, ev.Focus, false)
		default:
			return fmt.Errorf("unknown format: %s (use text, json, or yaml)", scoreFormat)
		}

		if scoreMetrics {
			text, err := recorder.Text()
			if err != nil {
				return err
			}
			fmt.Println()
			fmt.Print(text)
		}
		return nil
	},
}

var curveCmd = &cobra.Command{
	Use:   "curve",
	Short: "Project crash risk over the next few hours",
	Long: `Project crash risk forward from now, assuming no further drinks.

Examples:
  caff curve
  caff curve --horizon 5h --step 30m
  caff curve --threshold 50`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		at, err := evalTime()
		if err != nil {
			return err
		}
		horizon := curveHorizon
		if horizon <= 0 {
			horizon = cfg.CurveHorizon()
		}
		step := curveStep
		if step <= 0 {
			step = cfg.CurveStep()
		}

		points, err := evaluator.Curve(cmd.Context(), currentUser(), at, horizon, step)
		if err != nil {
			return fmt.Errorf("failed to project curve: %w", err)
		}
		if len(points) == 0 {
			fmt.Println("Not enough data to project crash risk. Set up a profile with 'caff profile set'.")
			return nil
		}

		for _, p := range points {
			fmt.Printf("%s %s %5.1f %s\n",
				p.Time.Local().Format("15:04"),
				riskBar(p.Score),
				p.Score,
				color.New(color.Faint).Sprintf("%.0f mg", p.LevelMg))
		}

		fmt.Println()
		if onset, ok := engine.CrashOnset(points, curveThreshold); ok {
			color.Yellow("Crash risk reaches %.0f around %s.", curveThreshold, onset.Time.Local().Format("15:04"))
		} else {
			color.Green("Crash risk stays below %.0f for the next %s.", curveThreshold, horizon)
		}
		return nil
	},
}

func evalTime() (time.Time, error) {
	if scoreAt == "" {
		return time.Now(), nil
	}
	t, err := parseTime(scoreAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp: %s", scoreAt)
	}
	return t, nil
}

func printScore(title string, res *models.ScoreResult, in engine.Interpretation, risk bool) {
	faint := color.New(color.Faint)
	bold := color.New(color.Bold)

	if res.FailSafe {
		fmt.Printf("%s %s\n", bold.Sprint(padRight(title, 12)), faint.Sprint("unavailable"))
		for _, w := range res.Warnings {
			fmt.Printf("  %s %s\n", faint.Sprint("!"), w)
		}
		return
	}

	fmt.Printf("%s %5.1f  %s\n", bold.Sprint(padRight(title, 12)), res.Score, levelColor(in.Level, risk).Sprint(strings.ToUpper(string(in.Level))))
	fmt.Printf("  %s\n", in.Advisory)
	fmt.Printf("  %s %.1f h   %s %.0f mg   %s %.0f mg\n",
		faint.Sprint("half-life"), res.HalfLifeHours,
		faint.Sprint("now"), res.CurrentLevelMg,
		faint.Sprint("peak"), res.PeakLevelMg)
	for _, f := range res.Factors {
		fmt.Printf("  %s %.3f\n", faint.Sprint(padRight(f.Name, 18)), f.Value)
	}
	for _, w := range res.Warnings {
		fmt.Printf("  %s %s\n", faint.Sprint("!"), w)
	}
}

// levelColor paints high crash risk red but high focus green.
func levelColor(l engine.Level, risk bool) *color.Color {
	switch l {
	case engine.LevelHigh:
		if risk {
			return color.New(color.FgRed, color.Bold)
		}
		return color.New(color.FgGreen, color.Bold)
	case engine.LevelMedium:
		return color.New(color.FgYellow)
	default:
		return color.New(color.Faint)
	}
}

func riskBar(score float64) string {
	const width = 20
	n := int(math.Round(score / 100 * width))
	if n < 0 {
		n = 0
	}
	if n > width {
		n = width
	}
	bar := strings.Repeat("█", n) + strings.Repeat("·", width-n)
	return levelColor(engine.InterpretScore(score).Level, true).Sprint(bar)
}

func init() {
	scoreCmd.Flags().StringVar(&scoreAt, "at", "", "evaluate at this time instead of now (YYYY-MM-DD HH:MM)")
	scoreCmd.Flags().StringVarP(&scoreFormat, "format", "f", "text", "output format: text, json, or yaml")
	scoreCmd.Flags().BoolVar(&scoreMetrics, "metrics", false, "also print evaluation metrics")
	curveCmd.Flags().StringVar(&scoreAt, "at", "", "project from this time instead of now (YYYY-MM-DD HH:MM)")
	curveCmd.Flags().DurationVar(&curveHorizon, "horizon", 0, "how far ahead to project (default 3h)")
	curveCmd.Flags().DurationVar(&curveStep, "step", 0, "sampling interval (default 15m)")
	curveCmd.Flags().Float64Var(&curveThreshold, "threshold", engine.HighThreshold, "crash risk treated as a crash")

	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(curveCmd)
}
