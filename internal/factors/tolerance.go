// ABOUTME: Habitual-intake tolerance ratio and its two score-specific weightings.
// ABOUTME: Also derives the personal level threshold used by the focus factors.
package factors

import (
	"time"

	"github.com/harperreed/caff/internal/models"
)

// ModerateIntakeMgPerKg is the daily intake treated as fully habituated.
const ModerateIntakeMgPerKg = 4.0

// ToleranceWeighting maps the raw ratio onto one score's tolerance term.
type ToleranceWeighting struct {
	Name   string
	Offset float64
	Scale  float64
	Max    float64
}

// Apply returns Offset + Scale*raw bounded to [0, Max].
func (w ToleranceWeighting) Apply(raw float64) float64 {
	return Clamp(w.Offset+w.Scale*Clamp(raw, 0, 1), 0, w.Max)
}

var (
	// CrashTolerance dampens crash risk; capped below 1 so (1-T) never vanishes.
	CrashTolerance = ToleranceWeighting{Name: "crash", Offset: 0, Scale: 0.85, Max: 0.85}
	// FocusTolerance supports focus; even a caffeine-naive user keeps a floor.
	FocusTolerance = ToleranceWeighting{Name: "focus", Offset: 0.4, Scale: 0.6, Max: 1.0}
)

// RawTolerance is mean daily intake over the weight-scaled moderate baseline,
// divided by the health sensitivity multiplier and scaled by experience.
func RawTolerance(p *models.Profile, events []*models.DrinkEvent, at time.Time) float64 {
	if p == nil || !(p.WeightKg > 0) {
		return 0
	}
	meanDaily := p.MeanDailyCaffeineMg
	if meanDaily <= 0 {
		meanDaily = LedgerDailyMean(events, at, 7)
	}
	ratio := meanDaily / (ModerateIntakeMgPerKg * p.WeightKg)
	ratio = ratio / HealthMultiplier(p) * ExperienceAdjustment(meanDaily)
	return Clamp(Finite(ratio), 0, 1)
}

// LedgerDailyMean averages actual intake over the days preceding at.
func LedgerDailyMean(events []*models.DrinkEvent, at time.Time, days int) float64 {
	if days <= 0 {
		return 0
	}
	start := at.Add(-time.Duration(days) * 24 * time.Hour)
	var total float64
	for _, e := range events {
		if e == nil || e.Timestamp.After(at) || !e.Timestamp.After(start) {
			continue
		}
		total += e.ActualCaffeineConsumed()
	}
	return total / float64(days)
}

// HealthMultiplier is above 1 for people more sensitive to a given dose.
func HealthMultiplier(p *models.Profile) float64 {
	m := 1.0
	switch {
	case p.Age < 18:
		m *= 1.2
	case p.Age >= 65:
		m *= 1.15
	}
	if p.Sex == models.SexFemale {
		m *= 1.05
	}
	if p.Smoker {
		m *= 0.8
	}
	if p.Pregnant {
		m *= 1.5
	}
	if p.OralContraceptives {
		m *= 1.1
	}
	switch {
	case p.Medication.Fluvoxamine:
		m *= 1.5
	case p.Medication.Ciprofloxacin:
		m *= 1.3
	case p.Medication.OtherCYP1A2Inhibitor:
		m *= 1.15
	}
	switch p.Metabolism() {
	case models.MetabolismVerySlow:
		m *= 1.2
	case models.MetabolismSlow:
		m *= 1.1
	case models.MetabolismFast:
		m *= 0.9
	case models.MetabolismVeryFast:
		m *= 0.8
	}
	return m
}

// ExperienceAdjustment rewards unusually heavy habits and discounts light ones.
func ExperienceAdjustment(meanDailyMg float64) float64 {
	switch {
	case meanDailyMg > 400:
		return 1.15
	case meanDailyMg < 50:
		return 0.8
	default:
		return 1.0
	}
}

// ThresholdMg is the personal level at which caffeine starts to feel strong:
// 1.5 mg/kg, raised by tolerance.
func ThresholdMg(p *models.Profile, raw float64) float64 {
	weight := 70.0
	if p != nil && p.WeightKg > 0 {
		weight = p.WeightKg
	}
	return 1.5 * weight * (1 + Clamp(raw, 0, 1))
}
