// ABOUTME: Factors specific to the focus-potential score.
// ABOUTME: Level zone, rise rate, plateau detection, sensitivity, activity and capacity.
package factors

import (
	"math"
	"time"

	"github.com/harperreed/caff/internal/models"
)

// CurrentLevel rates the level against the personal threshold: rising to 1 at
// the optimal zone (1.25x threshold), easing off to 0.6 at 2x, then decaying
// exponentially toward a 0.05 floor.
func CurrentLevel(levelMg, thresholdMg float64) float64 {
	if !(thresholdMg > 0) || !(levelMg > 0) {
		return 0
	}
	x := levelMg / thresholdMg
	switch {
	case math.IsInf(x, 0):
		return 0.05
	case x <= 1.25:
		return math.Pow(x/1.25, 0.8)
	case x <= 2:
		return 1 - 0.4*(x-1.25)/0.75
	default:
		return math.Max(0.05, 0.6*math.Exp(-1.5*(x-2)))
	}
}

// CaffeineSensitivity is the sleep-debt amplification of caffeine's effect.
func CaffeineSensitivity(debtHours float64) float64 {
	switch {
	case math.IsNaN(debtHours) || debtHours < 1:
		return 1.0
	case debtHours < 3:
		return 1.15
	case debtHours < 5:
		return 1.3
	default:
		return 1.5
	}
}

// RisingRate scores the level trend in mg/min. A moderate rise of 2-5 mg/min
// is optimal. While on a plateau a slow decline still reads as sustained focus.
func RisingRate(rate float64, plateau bool) float64 {
	if math.IsNaN(rate) {
		return 0.6
	}
	switch {
	case rate >= 2 && rate <= 5:
		return 1.0
	case rate >= 0 && rate < 2:
		return 0.6 + 0.2*rate
	case rate > 5:
		return math.Max(0.5, 1-0.1*(rate-5))
	}
	d := -rate
	if plateau {
		if d <= 1 {
			return 0.9
		}
		return math.Max(0.5, 0.9-0.1*(d-1))
	}
	return math.Max(0.1, 0.6-0.2*d)
}

const (
	plateauMinDoseMg  = 30.0
	plateauMinLevelMg = 30.0
	plateauPeakRatio  = 0.6
	plateauMinSince   = 30 * time.Minute
	plateauMaxSince   = 4 * time.Hour
)

// SustainedPlateau reports whether the most recent meaningful drink finished
// 30 min to 4 h ago (stretched by slow food absorption) and the level is still
// at least 60% of the peak.
func SustainedPlateau(events []*models.DrinkEvent, currentMg, peakMg float64, at time.Time, durationMultiplier float64) bool {
	if currentMg < plateauMinLevelMg || currentMg < plateauPeakRatio*peakMg {
		return false
	}
	var last *models.DrinkEvent
	for _, e := range events {
		if e == nil || e.Timestamp.After(at) || e.ActualCaffeineConsumed() < plateauMinDoseMg {
			continue
		}
		if last == nil || e.Timestamp.After(last.Timestamp) {
			last = e
		}
	}
	if last == nil {
		return false
	}
	if !(durationMultiplier >= 1) {
		durationMultiplier = 1
	}
	maxSince := time.Duration(float64(plateauMaxSince) * durationMultiplier)
	since := at.Sub(last.FinishedAt())
	return since >= plateauMinSince && since <= maxSince
}

// Activity is absorption-weighted activity over the threshold, capped at 1.
// Any caffeine on board keeps a 0.1 floor.
func Activity(activityMg, levelMg, thresholdMg float64) float64 {
	if !(levelMg > 0) || !(thresholdMg > 0) {
		return 0
	}
	return math.Max(0.1, Clamp(activityMg/thresholdMg, 0, 1))
}

// AgeFocusMultiplier is the cognitive aging curve for focus capacity.
func AgeFocusMultiplier(age int) float64 {
	switch {
	case age < 25:
		return 1.0
	case age < 45:
		return 0.97
	case age < 65:
		return 0.92
	default:
		return 0.85
	}
}

// FocusCapacity combines sleep debt, the focus circadian value and age.
func FocusCapacity(sleepDebt, circadian float64, age int) float64 {
	return Clamp((1-0.5*Clamp(sleepDebt, 0, 1))*circadian*AgeFocusMultiplier(age), 0, 1)
}
