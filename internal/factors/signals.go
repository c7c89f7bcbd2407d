// ABOUTME: Factors derived from optional daily signals: stress, meals and exercise.
// ABOUTME: Absent signals always produce the documented neutral default.
package factors

import (
	"math"
	"time"

	"github.com/harperreed/caff/internal/models"
)

// NeutralStress is used when no stress sample exists for today.
const NeutralStress = 0.7

// Stress maps level 1..10 onto focus support: 1 -> 1.0, 3 -> 0.9, 6 -> 0.6,
// 10 -> 0.3, linear in between.
func Stress(s *models.StressSample) float64 {
	if s == nil {
		return NeutralStress
	}
	l := Clamp(float64(s.Level), 1, 10)
	switch {
	case l <= 3:
		return 1.0 - 0.05*(l-1)
	case l <= 6:
		return 0.9 - 0.1*(l-3)
	default:
		return 0.6 - 0.075*(l-6)
	}
}

// AnxietyRisk penalizes high stress combined with a high level, down to 0.7.
func AnxietyRisk(s *models.StressSample, levelMg float64) float64 {
	if s == nil || s.Level <= 5 || !(levelMg > 100) {
		return 1.0
	}
	sf := (math.Min(float64(s.Level), 10) - 5) / 5
	lf := math.Min(1, (levelMg-100)/150)
	return 1 - 0.3*sf*lf
}

// FoodEffect is how recent meals slow absorption and stretch the plateau.
type FoodEffect struct {
	AbsorptionRate     float64
	DurationMultiplier float64
	Meals              int
}

const (
	minAbsorptionRate     = 0.35
	maxDurationMultiplier = 1.6
)

// FoodTiming compounds the effect of every meal in the last four hours.
func FoodTiming(meals []time.Time, at time.Time) FoodEffect {
	eff := FoodEffect{AbsorptionRate: 1, DurationMultiplier: 1}
	for _, m := range meals {
		if m.IsZero() {
			continue
		}
		mins := at.Sub(m).Minutes()
		var rate, dur float64
		switch {
		case mins < 0 || mins > 240:
			continue
		case mins < 30:
			rate, dur = 0.6, 1.3
		case mins < 90:
			f := (mins - 30) / 60
			rate, dur = 0.6+0.25*f, 1.3-0.15*f
		default:
			rate, dur = 0.95, 1.05
		}
		eff.AbsorptionRate *= rate
		eff.DurationMultiplier *= dur
		eff.Meals++
	}
	eff.AbsorptionRate = math.Max(minAbsorptionRate, eff.AbsorptionRate)
	eff.DurationMultiplier = math.Min(maxDurationMultiplier, eff.DurationMultiplier)
	return eff
}

// Exercise is the focus effect of today's exercise in [1.0, 1.2]. Starting a
// session ramps to 1.1 over 30 min; a completed session peaks at 1.2 after
// 15 min and decays. Both return to neutral four hours after the event.
func Exercise(e *models.ExerciseEvent, at time.Time) float64 {
	if e == nil {
		return 1.0
	}
	m := at.Sub(e.Timestamp).Minutes()
	if m < 0 || m >= 240 {
		return 1.0
	}
	switch e.Phase {
	case models.ExerciseStarting:
		if m < 30 {
			return 1 + 0.1*m/30
		}
		return 1.1 - 0.1*(m-30)/210
	case models.ExerciseCompleted:
		if m < 15 {
			return 1.1 + 0.1*m/15
		}
		return 1 + 0.2*math.Exp(-(m-15)/75)
	default:
		return 1.0
	}
}
