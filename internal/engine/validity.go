// ABOUTME: Validity stamping and final score normalization.
// ABOUTME: A result is a value object valid for one short window after computation.
package engine

import (
	"math"
	"time"

	"github.com/harperreed/caff/internal/models"
)

// stamp sets ComputedAt and ValidUntil. Nothing is memoized across calls.
func stamp(res *models.ScoreResult, now time.Time, window time.Duration) {
	res.ComputedAt = now
	res.ValidUntil = now.Add(window)
}

// roundScore rounds to one decimal and bounds the score to [0, 100].
func roundScore(v float64) float64 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 100 {
		return 100
	}
	return math.Round(v*10) / 10
}
