// ABOUTME: Maps numeric scores onto low/medium/high levels with short advice.
package engine

import "math"

// Level is a coarse reading of a score.
type Level string

const (
	// LevelLow is a score below MediumThreshold.
	LevelLow Level = "low"
	// LevelMedium is a score from MediumThreshold up to HighThreshold.
	LevelMedium Level = "medium"
	// LevelHigh is a score at or above HighThreshold.
	LevelHigh Level = "high"
)

const (
	// MediumThreshold and HighThreshold split the 0-100 range.
	MediumThreshold = 30.0
	HighThreshold   = 60.0
)

// Interpretation is a level plus a one-line advisory for display.
type Interpretation struct {
	Level    Level  `json:"level" yaml:"level"`
	Advisory string `json:"advisory" yaml:"advisory"`
}

func levelOf(score float64) Level {
	switch {
	case math.IsNaN(score) || score < MediumThreshold:
		return LevelLow
	case score < HighThreshold:
		return LevelMedium
	default:
		return LevelHigh
	}
}

// InterpretScore reads a crash-risk score.
func InterpretScore(score float64) Interpretation {
	l := levelOf(score)
	switch l {
	case LevelHigh:
		return Interpretation{Level: l, Advisory: "A crash is likely within 60-90 minutes. Plan lighter work or a short break."}
	case LevelMedium:
		return Interpretation{Level: l, Advisory: "Energy may dip within the hour. A snack or a short walk can help."}
	default:
		return Interpretation{Level: l, Advisory: "Energy should hold steady."}
	}
}

// InterpretFocus reads a CaffScore.
func InterpretFocus(score float64) Interpretation {
	l := levelOf(score)
	switch l {
	case LevelHigh:
		return Interpretation{Level: l, Advisory: "Peak focus window. Good time for demanding work."}
	case LevelMedium:
		return Interpretation{Level: l, Advisory: "Moderate focus boost from caffeine."}
	default:
		return Interpretation{Level: l, Advisory: "Caffeine is adding little focus right now."}
	}
}
