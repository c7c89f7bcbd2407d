// ABOUTME: Dimensionless physiological and behavioral factors for the composite scores.
// ABOUTME: Holds the numeric guards shared by every factor and the core crash terms.
package factors

import (
	"math"
	"time"

	"github.com/harperreed/caff/internal/models"
)

// Names used in score breakdowns.
const (
	NameDelta         = "delta"
	NameSleepDebt     = "sleep_debt"
	NameTolerance     = "tolerance"
	NameMetabolic     = "metabolic"
	NameCircadian     = "circadian"
	NameCurrentLevel  = "current_level"
	NameSensitivity   = "sensitivity"
	NameRisingRate    = "rising_rate"
	NameFocusCapacity = "focus_capacity"
	NameActivity      = "activity"
	NameStress        = "stress"
	NameFoodDelay     = "food_delay"
	NameExercise      = "exercise"
	NameAnxiety       = "anxiety_penalty"
)

const (
	// DefaultIdealSleepHours is used until a week of profile history exists.
	DefaultIdealSleepHours = 7.5
	// peakEpsilon treats smaller peaks as no peak at all.
	peakEpsilon = 1e-6
)

// Clamp bounds v to [lo, hi]. NaN maps to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(v, hi))
}

// Finite replaces NaN and infinities with 0.
func Finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Delta is the relative drop of the current level from the recent peak.
// No meaningful peak means no risk.
func Delta(peakMg, currentMg float64) float64 {
	if !(peakMg > peakEpsilon) || math.IsInf(peakMg, 0) {
		return 0
	}
	return Clamp((peakMg-currentMg)/peakMg, 0, 1)
}

// IdealSleep is the rolling 7-day average once the profile is a week old,
// otherwise the fixed baseline.
func IdealSleep(p *models.Profile, at time.Time) float64 {
	if p != nil && p.HistoryDays(at) >= 7 && p.AverageSleep7Days > 0 {
		return p.AverageSleep7Days
	}
	return DefaultIdealSleepHours
}

// SleepDebtHours is how far last night's sleep fell short of ideal. Without a
// sample the profile's 7-day average stands in for last night; with neither
// there is no measurable debt.
func SleepDebtHours(p *models.Profile, sleep *models.SleepSample, at time.Time) float64 {
	slept := 0.0
	switch {
	case sleep != nil:
		slept = sleep.HoursSlept
	case p != nil && p.AverageSleep7Days > 0:
		slept = p.AverageSleep7Days
	default:
		return 0
	}
	return Clamp(IdealSleep(p, at)-slept, 0, 24)
}

// SleepDebt normalizes debt hours so that three hours short saturates at 1.
func SleepDebt(debtHours float64) float64 {
	return Clamp(debtHours/3, 0, 1)
}

// SexModifier is the metabolic modifier M in [0.8, 1.2]: female physiology and
// hormonal clearance slowdown raise it, smoking lowers it.
func SexModifier(p *models.Profile) float64 {
	if p == nil {
		return 1.0
	}
	m := 1.0
	if p.Sex == models.SexFemale {
		m = 1.1
		if p.OralContraceptives || p.Pregnant {
			m = 1.2
		}
	}
	if p.Smoker {
		m *= 0.85
	}
	return Clamp(m, 0.8, 1.2)
}
