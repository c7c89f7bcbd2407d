// ABOUTME: ScoreResult model returned by the engine for both scores.
// ABOUTME: Carries the factor breakdown and the one-second validity stamp.
package models

import "time"

// ScoreKind names which composite produced a result.
type ScoreKind string

const (
	KindCrashRisk ScoreKind = "crash_risk"
	KindCaffScore ScoreKind = "caff_score"
)

// Factor is one named, dimensionless term of a composite score.
type Factor struct {
	Name  string  `json:"name" yaml:"name"`
	Value float64 `json:"value" yaml:"value"`
}

// ScoreResult is a freshly built score snapshot. It is never updated in place.
type ScoreResult struct {
	Kind           ScoreKind `json:"kind" yaml:"kind"`
	Score          float64   `json:"score" yaml:"score"`
	Factors        []Factor  `json:"factors" yaml:"factors"`
	HalfLifeHours  float64   `json:"half_life_hours" yaml:"half_life_hours"`
	CurrentLevelMg float64   `json:"current_level_mg" yaml:"current_level_mg"`
	PeakLevelMg    float64   `json:"peak_level_mg" yaml:"peak_level_mg"`
	ComputedAt     time.Time `json:"computed_at" yaml:"computed_at"`
	ValidUntil     time.Time `json:"valid_until" yaml:"valid_until"`
	FailSafe       bool      `json:"fail_safe,omitempty" yaml:"fail_safe,omitempty"`
	Warnings       []string  `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Factor returns the value of the named factor.
func (r *ScoreResult) Factor(name string) (float64, bool) {
	for _, f := range r.Factors {
		if f.Name == name {
			return f.Value, true
		}
	}
	return 0, false
}

// Fresh reports whether the snapshot may still be shown at t.
func (r *ScoreResult) Fresh(t time.Time) bool {
	return !t.Before(r.ComputedAt) && t.Before(r.ValidUntil)
}
