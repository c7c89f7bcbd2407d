// ABOUTME: MCP tool implementations for the caffeine ledger and scores.
// ABOUTME: Provides logging tools for drinks and daily signals plus score queries.
package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/caff/internal/engine"
	"github.com/harperreed/caff/internal/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "log_drink",
		Description: "Record a caffeinated drink with its caffeine content, completion and drinking duration",
	}, s.handleLogDrink)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_drinks",
		Description: "List recent drinks, newest first",
	}, s.handleListDrinks)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_drink",
		Description: "Delete a drink by ID or ID prefix",
	}, s.handleDeleteDrink)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "set_profile",
		Description: "Create or update the physiological profile used for scoring",
	}, s.handleSetProfile)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "log_sleep",
		Description: "Record hours slept for a date (defaults to today)",
	}, s.handleLogSleep)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "log_stress",
		Description: "Record a 1-10 stress level for a date (defaults to today)",
	}, s.handleLogStress)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "log_meal",
		Description: "Record that a meal was eaten",
	}, s.handleLogMeal)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "log_exercise",
		Description: "Record the start or completion of an exercise session",
	}, s.handleLogExercise)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "crash_risk",
		Description: "Compute the current caffeine crash risk (0-100) with its factor breakdown",
	}, s.handleCrashRisk)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "caff_score",
		Description: "Compute the current caffeine focus potential CaffScore (0-100) with its factor breakdown",
	}, s.handleCaffScore)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "risk_curve",
		Description: "Project crash risk forward and report when it first turns high",
	}, s.handleRiskCurve)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "engine_stats",
		Description: "Show evaluation counters and score statistics for this server process",
	}, s.handleEngineStats)
}

// Tool input/output types

type logDrinkInput struct {
	CaffeineMg           float64 `json:"caffeine_mg" jsonschema:"Declared caffeine content in mg"`
	Name                 string  `json:"name,omitempty" jsonschema:"Drink name such as espresso or cold brew"`
	Timestamp            string  `json:"timestamp,omitempty" jsonschema:"When drinking started (ISO 8601), defaults to now"`
	CompletionPercentage float64 `json:"completion_percentage,omitempty" jsonschema:"How much of the drink was finished, 0-100, defaults to 100"`
	DurationMinutes      int     `json:"duration_minutes,omitempty" jsonschema:"How long the drink took to finish in minutes"`
}

type drinkOutput struct {
	ID         string  `json:"id"`
	CaffeineMg float64 `json:"caffeine_mg"`
	ActualMg   float64 `json:"actual_mg"`
	Message    string  `json:"message"`
}

type listDrinksInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
}

type idInput struct {
	ID string `json:"id" jsonschema:"Drink ID or prefix"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

type setProfileInput struct {
	WeightKg             float64 `json:"weight_kg" jsonschema:"Body weight in kg"`
	Age                  int     `json:"age" jsonschema:"Age in years"`
	Sex                  string  `json:"sex" jsonschema:"Biological sex: male or female"`
	Smoker               bool    `json:"smoker,omitempty" jsonschema:"Whether the user smokes"`
	Pregnant             bool    `json:"pregnant,omitempty" jsonschema:"Whether the user is pregnant"`
	OralContraceptives   bool    `json:"oral_contraceptives,omitempty" jsonschema:"Whether the user takes oral contraceptives"`
	Fluvoxamine          bool    `json:"fluvoxamine,omitempty" jsonschema:"Taking fluvoxamine"`
	Ciprofloxacin        bool    `json:"ciprofloxacin,omitempty" jsonschema:"Taking ciprofloxacin"`
	OtherCYP1A2Inhibitor bool    `json:"other_cyp1a2_inhibitor,omitempty" jsonschema:"Taking another CYP1A2 inhibitor"`
	MetabolismRate       string  `json:"metabolism_rate,omitempty" jsonschema:"very_slow, slow, medium, fast or very_fast"`
	AverageSleep7Days    float64 `json:"average_sleep_7_days,omitempty" jsonschema:"Average nightly sleep over the last week in hours"`
	MeanDailyCaffeineMg  float64 `json:"mean_daily_caffeine_mg,omitempty" jsonschema:"Typical daily caffeine intake in mg"`
}

type logSleepInput struct {
	Hours  float64 `json:"hours" jsonschema:"Hours slept"`
	Date   string  `json:"date,omitempty" jsonschema:"Date (YYYY-MM-DD), defaults to today"`
	Source string  `json:"source,omitempty" jsonschema:"Where the number came from, e.g. watch"`
}

type logStressInput struct {
	Level int    `json:"level" jsonschema:"Stress level from 1 to 10"`
	Date  string `json:"date,omitempty" jsonschema:"Date (YYYY-MM-DD), defaults to today"`
}

type timestampInput struct {
	Timestamp string `json:"timestamp,omitempty" jsonschema:"Timestamp (ISO 8601), defaults to now"`
}

type logExerciseInput struct {
	Phase     string `json:"phase" jsonschema:"starting or completed"`
	Activity  string `json:"activity,omitempty" jsonschema:"Activity such as run or lift"`
	Timestamp string `json:"timestamp,omitempty" jsonschema:"Timestamp (ISO 8601), defaults to now"`
}

type scoreInput struct {
	At string `json:"at,omitempty" jsonschema:"Evaluation time (ISO 8601), defaults to now"`
}

type scoreOutput struct {
	*models.ScoreResult
	Level    engine.Level `json:"level"`
	Advisory string       `json:"advisory"`
}

type riskCurveInput struct {
	HorizonHours float64 `json:"horizon_hours,omitempty" jsonschema:"How far ahead to project in hours"`
	StepMinutes  int     `json:"step_minutes,omitempty" jsonschema:"Minutes between projected points"`
	Threshold    float64 `json:"threshold,omitempty" jsonschema:"Score treated as a crash, defaults to 60"`
}

type riskCurveOutput struct {
	Points  []engine.CurvePoint `json:"points"`
	OnsetAt *time.Time          `json:"onset_at,omitempty"`
	Message string              `json:"message"`
}

// parseTimestamp accepts RFC 3339 or "2006-01-02 15:04" in local time.
// An empty string yields now.
func parseTimestamp(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return now, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04", s, time.Local); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid timestamp: %s", s)
}

// parseDay accepts YYYY-MM-DD in local time. An empty string yields now.
func parseDay(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return now, nil
	}
	t, err := time.ParseInLocation(models.DateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date: %s", s)
	}
	return t, nil
}

// Tool handlers

func (s *Server) handleLogDrink(ctx context.Context, req *mcp.CallToolRequest, input logDrinkInput) (*mcp.CallToolResult, drinkOutput, error) {
	ts, err := parseTimestamp(input.Timestamp, s.now())
	if err != nil {
		return nil, drinkOutput{}, err
	}

	e := models.NewDrinkEvent(s.userID, input.CaffeineMg).WithTimestamp(ts).WithName(input.Name)
	if input.CompletionPercentage > 0 {
		e.WithCompletion(input.CompletionPercentage)
	}
	if input.DurationMinutes > 0 {
		e.WithDuration(input.DurationMinutes)
	}
	if err := models.ValidateDrinkEvents([]*models.DrinkEvent{e}); err != nil {
		return nil, drinkOutput{}, err
	}

	if err := s.repo.CreateDrinkEvent(ctx, e); err != nil {
		return nil, drinkOutput{}, fmt.Errorf("failed to create drink: %w", err)
	}

	return nil, drinkOutput{
		ID:         e.ID.String()[:8],
		CaffeineMg: e.CaffeineMg,
		ActualMg:   e.ActualCaffeineConsumed(),
		Message:    fmt.Sprintf("Logged %.0f mg (ID: %s)", e.ActualCaffeineConsumed(), e.ID.String()[:8]),
	}, nil
}

func (s *Server) handleListDrinks(ctx context.Context, req *mcp.CallToolRequest, input listDrinksInput) (*mcp.CallToolResult, any, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}

	drinks, err := s.repo.ListDrinkEvents(ctx, s.userID, input.Limit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list drinks: %w", err)
	}

	if len(drinks) == 0 {
		return nil, map[string]interface{}{"message": "No drinks found."}, nil
	}

	return nil, map[string]interface{}{"drinks": drinks}, nil
}

func (s *Server) handleDeleteDrink(ctx context.Context, req *mcp.CallToolRequest, input idInput) (*mcp.CallToolResult, simpleOutput, error) {
	if err := s.repo.DeleteDrinkEvent(ctx, s.userID, input.ID); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to delete drink: %w", err)
	}

	return nil, simpleOutput{
		Message: fmt.Sprintf("Deleted drink: %s", input.ID),
	}, nil
}

func (s *Server) handleSetProfile(ctx context.Context, req *mcp.CallToolRequest, input setProfileInput) (*mcp.CallToolResult, simpleOutput, error) {
	p := models.NewProfile(s.userID, input.WeightKg, input.Age, models.Sex(strings.ToLower(input.Sex)))
	p.Smoker = input.Smoker
	p.Pregnant = input.Pregnant
	p.OralContraceptives = input.OralContraceptives
	p.Medication = models.Medication{
		Fluvoxamine:          input.Fluvoxamine,
		Ciprofloxacin:        input.Ciprofloxacin,
		OtherCYP1A2Inhibitor: input.OtherCYP1A2Inhibitor,
	}
	if input.MetabolismRate != "" {
		p.MetabolismRate = models.MetabolismRate(input.MetabolismRate)
	}
	p.AverageSleep7Days = input.AverageSleep7Days
	p.MeanDailyCaffeineMg = input.MeanDailyCaffeineMg

	if err := models.ValidateProfile(p); err != nil {
		return nil, simpleOutput{}, err
	}
	if err := s.repo.SaveProfile(ctx, p); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to save profile: %w", err)
	}

	return nil, simpleOutput{
		Message: fmt.Sprintf("Saved profile for %s: %.1f kg, %d years, %s", s.userID, p.WeightKg, p.Age, p.Sex),
	}, nil
}

func (s *Server) handleLogSleep(ctx context.Context, req *mcp.CallToolRequest, input logSleepInput) (*mcp.CallToolResult, simpleOutput, error) {
	day, err := parseDay(input.Date, s.now())
	if err != nil {
		return nil, simpleOutput{}, err
	}

	sample := &models.SleepSample{UserID: s.userID, Date: day, HoursSlept: input.Hours, Source: input.Source}
	if err := models.Validate(sample); err != nil {
		return nil, simpleOutput{}, err
	}
	if err := s.repo.SaveSleepSample(ctx, sample); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to save sleep: %w", err)
	}

	return nil, simpleOutput{
		Message: fmt.Sprintf("Logged %.1f hours of sleep for %s", input.Hours, models.DateKey(day)),
	}, nil
}

func (s *Server) handleLogStress(ctx context.Context, req *mcp.CallToolRequest, input logStressInput) (*mcp.CallToolResult, simpleOutput, error) {
	day, err := parseDay(input.Date, s.now())
	if err != nil {
		return nil, simpleOutput{}, err
	}

	sample := &models.StressSample{UserID: s.userID, Date: day, Level: input.Level}
	if err := models.Validate(sample); err != nil {
		return nil, simpleOutput{}, err
	}
	if err := s.repo.SaveStressSample(ctx, sample); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to save stress: %w", err)
	}

	return nil, simpleOutput{
		Message: fmt.Sprintf("Logged stress %d/10 for %s", input.Level, models.DateKey(day)),
	}, nil
}

func (s *Server) handleLogMeal(ctx context.Context, req *mcp.CallToolRequest, input timestampInput) (*mcp.CallToolResult, simpleOutput, error) {
	ts, err := parseTimestamp(input.Timestamp, s.now())
	if err != nil {
		return nil, simpleOutput{}, err
	}

	if err := s.repo.CreateMealEvent(ctx, models.NewMealEvent(s.userID, ts)); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to log meal: %w", err)
	}

	return nil, simpleOutput{
		Message: fmt.Sprintf("Logged meal at %s", ts.Format("15:04")),
	}, nil
}

func (s *Server) handleLogExercise(ctx context.Context, req *mcp.CallToolRequest, input logExerciseInput) (*mcp.CallToolResult, simpleOutput, error) {
	ts, err := parseTimestamp(input.Timestamp, s.now())
	if err != nil {
		return nil, simpleOutput{}, err
	}

	e := models.NewExerciseEvent(s.userID, models.ExercisePhase(input.Phase), ts)
	e.Activity = input.Activity
	if err := models.Validate(e); err != nil {
		return nil, simpleOutput{}, err
	}
	if err := s.repo.CreateExerciseEvent(ctx, e); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to log exercise: %w", err)
	}

	return nil, simpleOutput{
		Message: fmt.Sprintf("Logged exercise %s at %s", e.Phase, ts.Format("15:04")),
	}, nil
}

func (s *Server) score(ctx context.Context, kind models.ScoreKind, at string) (scoreOutput, error) {
	now, err := parseTimestamp(at, s.now())
	if err != nil {
		return scoreOutput{}, err
	}

	res, err := s.eval.Score(ctx, s.userID, kind, now)
	if err != nil {
		return scoreOutput{}, fmt.Errorf("failed to compute %s: %w", kind, err)
	}

	interp := engine.InterpretScore(res.Score)
	if kind == models.KindCaffScore {
		interp = engine.InterpretFocus(res.Score)
	}
	return scoreOutput{ScoreResult: res, Level: interp.Level, Advisory: interp.Advisory}, nil
}

func (s *Server) handleCrashRisk(ctx context.Context, req *mcp.CallToolRequest, input scoreInput) (*mcp.CallToolResult, any, error) {
	out, err := s.score(ctx, models.KindCrashRisk, input.At)
	if err != nil {
		return nil, nil, err
	}
	return nil, out, nil
}

func (s *Server) handleCaffScore(ctx context.Context, req *mcp.CallToolRequest, input scoreInput) (*mcp.CallToolResult, any, error) {
	out, err := s.score(ctx, models.KindCaffScore, input.At)
	if err != nil {
		return nil, nil, err
	}
	return nil, out, nil
}

func (s *Server) handleRiskCurve(ctx context.Context, req *mcp.CallToolRequest, input riskCurveInput) (*mcp.CallToolResult, any, error) {
	horizon := s.horizon
	if input.HorizonHours > 0 {
		horizon = time.Duration(input.HorizonHours * float64(time.Hour))
	}
	step := s.step
	if input.StepMinutes > 0 {
		step = time.Duration(input.StepMinutes) * time.Minute
	}
	threshold := input.Threshold
	if threshold <= 0 {
		threshold = engine.HighThreshold
	}

	points, err := s.eval.Curve(ctx, s.userID, s.now(), horizon, step)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compute risk curve: %w", err)
	}
	if len(points) == 0 {
		return nil, riskCurveOutput{Message: "Not enough data to project crash risk. Set a profile first."}, nil
	}

	out := riskCurveOutput{Points: points}
	if onset, ok := engine.CrashOnset(points, threshold); ok {
		at := onset.Time
		out.OnsetAt = &at
		out.Message = fmt.Sprintf("Crash risk reaches %.0f at %s", onset.Score, at.Format("15:04"))
	} else {
		out.Message = fmt.Sprintf("Crash risk stays below %.0f for the next %s", threshold, horizon)
	}
	return nil, out, nil
}

func (s *Server) handleEngineStats(ctx context.Context, req *mcp.CallToolRequest, input struct{}) (*mcp.CallToolResult, any, error) {
	stats, err := s.rec.Snapshot()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to gather stats: %w", err)
	}
	return nil, stats, nil
}
