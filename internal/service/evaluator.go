// ABOUTME: Evaluator gathers a user's snapshot from storage and runs the engine.
// ABOUTME: Both scores of one evaluation share a single evaluation instant.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/caff/internal/engine"
	"github.com/harperreed/caff/internal/logger"
	"github.com/harperreed/caff/internal/models"
	"github.com/harperreed/caff/internal/telemetry"
)

const (
	// LedgerHistory is how much of the drink ledger a snapshot loads.
	LedgerHistory = 7 * 24 * time.Hour
	// MealLookbackHours bounds the meals that affect absorption.
	MealLookbackHours = 4.0
)

// Evaluation is the paired result of one evaluation.
type Evaluation struct {
	UserID    string                `json:"user_id" yaml:"user_id"`
	At        time.Time             `json:"at" yaml:"at"`
	CrashRisk *models.ScoreResult   `json:"crash_risk" yaml:"crash_risk"`
	CaffScore *models.ScoreResult   `json:"caff_score" yaml:"caff_score"`
	Crash     engine.Interpretation `json:"crash" yaml:"crash"`
	Focus     engine.Interpretation `json:"focus" yaml:"focus"`
}

// Evaluator wires storage to the engine.
type Evaluator struct {
	src Source
	eng *engine.Engine
	rec *telemetry.Recorder
	log *logger.Logger
}

// NewEvaluator creates an evaluator. A nil engine uses the default
// configuration; nil recorder and logger are no-ops.
func NewEvaluator(src Source, eng *engine.Engine, rec *telemetry.Recorder, log *logger.Logger) *Evaluator {
	if log == nil {
		log = logger.Nop()
	}
	if eng == nil {
		eng = engine.New(engine.DefaultConfig(), log)
	}
	return &Evaluator{src: src, eng: eng, rec: rec, log: log.With("component", "evaluator")}
}

// Engine returns the engine used for scoring.
func (e *Evaluator) Engine() *engine.Engine {
	return e.eng
}

// Snapshot loads everything the engine needs for userID at now.
func (e *Evaluator) Snapshot(ctx context.Context, userID string, now time.Time) (engine.Input, error) {
	var in engine.Input

	profile, err := e.src.GetProfile(ctx, userID)
	if err != nil {
		return in, fmt.Errorf("load profile: %w", err)
	}
	in.Profile = profile

	events, err := e.src.GetDrinkEvents(ctx, userID, models.Window{Start: now.Add(-LedgerHistory), End: now})
	if err != nil {
		return in, fmt.Errorf("load drinks: %w", err)
	}
	in.Events = events

	if in.Signals.Sleep, err = e.src.GetSleepSample(ctx, userID, now); err != nil {
		return in, fmt.Errorf("load sleep: %w", err)
	}
	if in.Signals.Stress, err = e.src.GetStressSample(ctx, userID, now); err != nil {
		return in, fmt.Errorf("load stress: %w", err)
	}
	if in.Signals.Meals, err = e.src.GetRecentMealTimes(ctx, userID, now, MealLookbackHours); err != nil {
		return in, fmt.Errorf("load meals: %w", err)
	}
	if in.Signals.Exercise, err = e.src.GetExerciseSample(ctx, userID, now); err != nil {
		return in, fmt.Errorf("load exercise: %w", err)
	}

	e.log.Debug("snapshot loaded",
		"user_id", userID,
		"drinks", len(events),
		"has_profile", profile != nil,
		"meals", len(in.Signals.Meals),
	)
	return in, nil
}

// Evaluate computes crash risk and CaffScore for userID at now.
func (e *Evaluator) Evaluate(ctx context.Context, userID string, now time.Time) (*Evaluation, error) {
	in, err := e.Snapshot(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	crash := e.eng.CrashRisk(in, now)
	focus := e.eng.CaffScore(in, now)
	e.rec.Observe(crash)
	e.rec.Observe(focus)

	return &Evaluation{
		UserID:    userID,
		At:        now,
		CrashRisk: crash,
		CaffScore: focus,
		Crash:     engine.InterpretScore(crash.Score),
		Focus:     engine.InterpretFocus(focus.Score),
	}, nil
}

// Score computes a single score of the given kind for userID at now.
func (e *Evaluator) Score(ctx context.Context, userID string, kind models.ScoreKind, now time.Time) (*models.ScoreResult, error) {
	in, err := e.Snapshot(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	var res *models.ScoreResult
	switch kind {
	case models.KindCrashRisk:
		res = e.eng.CrashRisk(in, now)
	case models.KindCaffScore:
		res = e.eng.CaffScore(in, now)
	default:
		return nil, fmt.Errorf("unknown score kind: %q", kind)
	}
	e.rec.Observe(res)
	return res, nil
}

// Curve projects crash risk for userID from now over horizon. Input that
// cannot be scored yields a nil curve.
func (e *Evaluator) Curve(ctx context.Context, userID string, now time.Time, horizon, step time.Duration) ([]engine.CurvePoint, error) {
	in, err := e.Snapshot(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	return e.eng.RiskCurve(in, now, horizon, step), nil
}
