// ABOUTME: First-order caffeine elimination and absorption-weighted activity.
// ABOUTME: Computes current, active, and recent-peak blood caffeine levels.
package pharma

import (
	"math"
	"time"

	"github.com/harperreed/caff/internal/models"
)

const (
	// DefaultLookback is how far back PeakLevel searches.
	DefaultLookback = 6 * time.Hour
	// DefaultSampleInterval is the spacing of PeakLevel samples.
	DefaultSampleInterval = 5 * time.Minute
)

// remaining applies first-order elimination to mg over hours.
func remaining(mg, hours, halfLifeHours float64) float64 {
	return mg * math.Exp2(-hours/halfLifeHours)
}

// CurrentLevel sums the eliminated remainder of every drink taken at or before at.
// Drinks after at contribute nothing.
func CurrentLevel(events []*models.DrinkEvent, halfLifeHours float64, at time.Time) float64 {
	if halfLifeHours <= 0 {
		return 0
	}
	var total float64
	for _, e := range events {
		if e == nil || e.Timestamp.After(at) {
			continue
		}
		hours := at.Sub(e.Timestamp).Hours()
		total += remaining(e.ActualCaffeineConsumed(), hours, halfLifeHours)
	}
	return total
}

// CurrentActivity is CurrentLevel with each drink further weighted by how far
// along its absorption curve it is.
func CurrentActivity(events []*models.DrinkEvent, halfLifeHours float64, at time.Time) float64 {
	if halfLifeHours <= 0 {
		return 0
	}
	var total float64
	for _, e := range events {
		if e == nil || e.Timestamp.After(at) {
			continue
		}
		elapsed := at.Sub(e.Timestamp)
		w := AbsorptionWeight(elapsed.Minutes())
		total += remaining(e.ActualCaffeineConsumed(), elapsed.Hours(), halfLifeHours) * w
	}
	return total
}

// AbsorptionWeight returns how physiologically active a drink is minutes after
// it was taken: a two-slope rise to full effect at 45 min, a plateau until
// 90 min, a fall to 0.2 by 120 min, then exponential decay (tau 60 min).
func AbsorptionWeight(minutes float64) float64 {
	switch {
	case minutes < 0:
		return 0
	case minutes < 15:
		return 0.3 * minutes / 15
	case minutes < 45:
		return 0.3 + 0.7*(minutes-15)/30
	case minutes < 90:
		return 1.0
	case minutes < 120:
		return 1.0 - 0.8*(minutes-90)/30
	default:
		return 0.2 * math.Exp(-(minutes-120)/60)
	}
}

// PeakLevel returns the highest CurrentLevel over the default six-hour lookback.
func PeakLevel(events []*models.DrinkEvent, halfLifeHours float64, at time.Time) float64 {
	return PeakLevelWindow(events, halfLifeHours, at, DefaultLookback, DefaultSampleInterval)
}

// PeakLevelWindow samples CurrentLevel backwards from at every interval, up to
// lookback, and returns the maximum. The sample at at itself is included.
func PeakLevelWindow(events []*models.DrinkEvent, halfLifeHours float64, at time.Time, lookback, interval time.Duration) float64 {
	if len(events) == 0 || halfLifeHours <= 0 {
		return 0
	}
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	if interval <= 0 {
		interval = DefaultSampleInterval
	}

	steps := int(lookback / interval)
	var peak float64
	for k := 0; k <= steps; k++ {
		level := CurrentLevel(events, halfLifeHours, at.Add(-time.Duration(k)*interval))
		if level > peak {
			peak = level
		}
	}
	return peak
}

// RateOfChange averages two successive finite-difference rates (mg/min) of
// CurrentActivity, each spanning step.
func RateOfChange(events []*models.DrinkEvent, halfLifeHours float64, at time.Time, step time.Duration) float64 {
	if len(events) == 0 || halfLifeHours <= 0 || step <= 0 {
		return 0
	}
	now := CurrentActivity(events, halfLifeHours, at)
	prev := CurrentActivity(events, halfLifeHours, at.Add(-step))
	prev2 := CurrentActivity(events, halfLifeHours, at.Add(-2*step))

	minutes := step.Minutes()
	r1 := (now - prev) / minutes
	r2 := (prev - prev2) / minutes
	return (r1 + r2) / 2
}
