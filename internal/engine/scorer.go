// ABOUTME: Composite scorers combining factors into crash risk and CaffScore.
// ABOUTME: Invalid input yields a flagged fail-safe result instead of an error.
package engine

import (
	"errors"
	"math"
	"time"

	"github.com/harperreed/caff/internal/factors"
	"github.com/harperreed/caff/internal/halflife"
	"github.com/harperreed/caff/internal/models"
	"github.com/harperreed/caff/internal/pharma"
)

// rateStep is the finite-difference step for the rising-rate factor.
const rateStep = 10 * time.Minute

// placeholder fills every factor of a fail-safe result.
const placeholder = 0.5

var (
	crashFactorNames = []string{
		factors.NameDelta,
		factors.NameSleepDebt,
		factors.NameTolerance,
		factors.NameMetabolic,
		factors.NameCircadian,
	}
	focusFactorNames = []string{
		factors.NameCurrentLevel,
		factors.NameSensitivity,
		factors.NameRisingRate,
		factors.NameTolerance,
		factors.NameFocusCapacity,
		factors.NameActivity,
		factors.NameStress,
		factors.NameFoodDelay,
		factors.NameExercise,
		factors.NameAnxiety,
	}
)

// derived is the shared substrate both composites draw on.
type derived struct {
	halfLife  halflife.Result
	debtHours float64
	levelMg   float64
	peakMg    float64
	activeMg  float64
	rawTol    float64
}

func (e *Engine) derive(in Input, now time.Time) derived {
	var d derived
	d.debtHours = factors.SleepDebtHours(in.Profile, in.Signals.Sleep, now)

	hctx := halflife.Context{At: now, Exercise: in.Signals.Exercise}
	if in.Signals.Sleep != nil {
		debt := d.debtHours
		hctx.SleepDebtHours = &debt
	}
	if in.Signals.Stress != nil {
		level := in.Signals.Stress.Level
		hctx.StressLevel = &level
	}
	d.halfLife = halflife.Compute(in.Profile, hctx, e.cfg.HalfLifeBounds)

	hl := d.halfLife.Hours
	d.levelMg = factors.Finite(pharma.CurrentLevel(in.Events, hl, now))
	d.peakMg = factors.Finite(pharma.PeakLevelWindow(in.Events, hl, now, e.cfg.PeakLookback, e.cfg.PeakInterval))
	d.activeMg = factors.Finite(pharma.CurrentActivity(in.Events, hl, now))
	d.rawTol = factors.RawTolerance(in.Profile, in.Events, now)
	return d
}

// CrashRisk computes 100 × δ^0.6 × S^0.4 × (1−T)^0.3 × M × C^0.2.
func (e *Engine) CrashRisk(in Input, now time.Time) *models.ScoreResult {
	if reasons := validateInput(in, now); len(reasons) > 0 {
		return e.failSafe(models.KindCrashRisk, crashFactorNames, reasons, now)
	}
	return e.crashRisk(in, now)
}

// crashRisk scores input that has already been validated.
func (e *Engine) crashRisk(in Input, now time.Time) *models.ScoreResult {
	d := e.derive(in, now)

	delta := factors.Delta(d.peakMg, d.levelMg)
	sleep := factors.SleepDebt(d.debtHours)
	tol := factors.CrashTolerance.Apply(d.rawTol)
	metabolic := factors.SexModifier(in.Profile)
	circadian := factors.Circadian(factors.CrashCircadian, now)

	score := 100 *
		math.Pow(delta, 0.6) *
		math.Pow(sleep, 0.4) *
		math.Pow(1-tol, 0.3) *
		metabolic *
		math.Pow(circadian, 0.2)

	res := &models.ScoreResult{
		Kind:  models.KindCrashRisk,
		Score: score,
		Factors: []models.Factor{
			{Name: factors.NameDelta, Value: delta},
			{Name: factors.NameSleepDebt, Value: sleep},
			{Name: factors.NameTolerance, Value: tol},
			{Name: factors.NameMetabolic, Value: metabolic},
			{Name: factors.NameCircadian, Value: circadian},
		},
	}
	return e.finish(res, d, now)
}

// CaffScore computes focus potential:
// 100 × (L×sens) × R^0.25 × T^0.25 × F^0.25 × A^0.35 × Stress^0.15 ×
// FoodDelay^0.1 × Exercise^0.1 × AnxietyPenalty.
func (e *Engine) CaffScore(in Input, now time.Time) *models.ScoreResult {
	if reasons := validateInput(in, now); len(reasons) > 0 {
		return e.failSafe(models.KindCaffScore, focusFactorNames, reasons, now)
	}
	d := e.derive(in, now)

	threshold := factors.ThresholdMg(in.Profile, d.rawTol)
	food := factors.FoodTiming(in.Signals.Meals, now)
	rate := factors.Finite(pharma.RateOfChange(in.Events, d.halfLife.Hours, now, rateStep))
	plateau := factors.SustainedPlateau(in.Events, d.levelMg, d.peakMg, now, food.DurationMultiplier)

	level := factors.CurrentLevel(d.levelMg, threshold)
	sens := factors.CaffeineSensitivity(d.debtHours)
	rising := factors.RisingRate(rate, plateau)
	tol := factors.FocusTolerance.Apply(d.rawTol)
	capacity := factors.FocusCapacity(
		factors.SleepDebt(d.debtHours),
		factors.Circadian(factors.FocusCircadian, now),
		in.Profile.Age,
	)
	activity := factors.Activity(d.activeMg, d.levelMg, threshold)
	stress := factors.Stress(in.Signals.Stress)
	exercise := factors.Exercise(in.Signals.Exercise, now)
	anxiety := factors.AnxietyRisk(in.Signals.Stress, d.levelMg)

	score := 100 *
		(level * sens) *
		math.Pow(rising, 0.25) *
		math.Pow(tol, 0.25) *
		math.Pow(capacity, 0.25) *
		math.Pow(activity, 0.35) *
		math.Pow(stress, 0.15) *
		math.Pow(food.AbsorptionRate, 0.1) *
		math.Pow(exercise, 0.1) *
		anxiety

	res := &models.ScoreResult{
		Kind:  models.KindCaffScore,
		Score: score,
		Factors: []models.Factor{
			{Name: factors.NameCurrentLevel, Value: level},
			{Name: factors.NameSensitivity, Value: sens},
			{Name: factors.NameRisingRate, Value: rising},
			{Name: factors.NameTolerance, Value: tol},
			{Name: factors.NameFocusCapacity, Value: capacity},
			{Name: factors.NameActivity, Value: activity},
			{Name: factors.NameStress, Value: stress},
			{Name: factors.NameFoodDelay, Value: food.AbsorptionRate},
			{Name: factors.NameExercise, Value: exercise},
			{Name: factors.NameAnxiety, Value: anxiety},
		},
	}
	return e.finish(res, d, now)
}

func (e *Engine) finish(res *models.ScoreResult, d derived, now time.Time) *models.ScoreResult {
	res.Score = roundScore(res.Score)
	for i := range res.Factors {
		res.Factors[i].Value = factors.Finite(res.Factors[i].Value)
	}
	res.HalfLifeHours = d.halfLife.Hours
	res.CurrentLevelMg = d.levelMg
	res.PeakLevelMg = d.peakMg
	stamp(res, now, e.cfg.ValidityWindow)

	if e.cfg.Debug {
		e.logBreakdown(res, d)
	}
	return res
}

func (e *Engine) logBreakdown(res *models.ScoreResult, d derived) {
	for _, m := range d.halfLife.Modifiers {
		e.log.Debug("half-life modifier", "kind", res.Kind, "modifier", m.Name, "multiplier", m.Multiplier)
	}
	for _, f := range res.Factors {
		e.log.Debug("factor", "kind", res.Kind, "factor", f.Name, "value", f.Value)
	}
	e.log.Debug("composite score",
		"kind", res.Kind,
		"score", res.Score,
		"half_life_hours", res.HalfLifeHours,
		"current_level_mg", res.CurrentLevelMg,
		"peak_level_mg", res.PeakLevelMg,
	)
}

// failSafe builds the neutral result for input that cannot be scored.
func (e *Engine) failSafe(kind models.ScoreKind, names []string, reasons []string, now time.Time) *models.ScoreResult {
	res := &models.ScoreResult{
		Kind:          kind,
		Score:         0,
		HalfLifeHours: halflife.Baseline,
		FailSafe:      true,
		Warnings:      reasons,
	}
	for _, n := range names {
		res.Factors = append(res.Factors, models.Factor{Name: n, Value: placeholder})
	}
	stamp(res, now, e.cfg.ValidityWindow)
	e.log.Warn("fail-safe score", "kind", kind, "reasons", reasons)
	return res
}

// validateInput collects every reason the input cannot be scored.
func validateInput(in Input, now time.Time) []string {
	var reasons []string
	if now.IsZero() {
		reasons = append(reasons, "evaluation time is required")
	}
	for _, err := range []error{
		models.ValidateProfile(in.Profile),
		models.ValidateDrinkEvents(in.Events),
		models.ValidateSignals(in.Signals),
	} {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			reasons = append(reasons, verr.Reasons...)
		} else if err != nil {
			reasons = append(reasons, err.Error())
		}
	}
	return reasons
}
