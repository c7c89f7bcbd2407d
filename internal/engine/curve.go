// ABOUTME: Forward projection of crash risk with the ledger held fixed.
// ABOUTME: Also finds the first projected instant where risk turns high.
package engine

import (
	"time"
)

const (
	// DefaultCurveHorizon is how far ahead a risk curve projects by default.
	DefaultCurveHorizon = 3 * time.Hour
	// DefaultCurveStep is the default spacing between curve points.
	DefaultCurveStep = 15 * time.Minute
	maxCurvePoints   = 1000
)

// CurvePoint is one projected crash-risk sample.
type CurvePoint struct {
	Time    time.Time `json:"time" yaml:"time"`
	Score   float64   `json:"score" yaml:"score"`
	LevelMg float64   `json:"level_mg" yaml:"level_mg"`
}

// RiskCurve evaluates crash risk at now, now+step, ... up to now+horizon.
// Input that cannot be scored yields no points.
func (e *Engine) RiskCurve(in Input, now time.Time, horizon, step time.Duration) []CurvePoint {
	if horizon <= 0 {
		horizon = DefaultCurveHorizon
	}
	if step <= 0 {
		step = DefaultCurveStep
	}
	if reasons := validateInput(in, now); len(reasons) > 0 {
		e.log.Warn("risk curve skipped", "reasons", reasons)
		return nil
	}

	steps := int(horizon / step)
	if steps+1 > maxCurvePoints {
		steps = maxCurvePoints - 1
	}
	points := make([]CurvePoint, 0, steps+1)
	for k := 0; k <= steps; k++ {
		at := now.Add(time.Duration(k) * step)
		res := e.crashRisk(in, at)
		points = append(points, CurvePoint{Time: at, Score: res.Score, LevelMg: res.CurrentLevelMg})
	}
	return points
}

// CrashOnset returns the first point at or above threshold.
func CrashOnset(curve []CurvePoint, threshold float64) (CurvePoint, bool) {
	for _, p := range curve {
		if p.Score >= threshold {
			return p, true
		}
	}
	return CurvePoint{}, false
}
