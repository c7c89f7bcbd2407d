// ABOUTME: DrinkEvent model for the caffeine consumption ledger.
// ABOUTME: Actual intake is derived from declared mg and completion percentage.
package models

import (
	"time"

	"github.com/google/uuid"
)

// MaxActualCaffeineMg bounds the derived intake of a single drink.
const MaxActualCaffeineMg = 1000.0

// DrinkEvent is one immutable ledger entry.
type DrinkEvent struct {
	ID                   uuid.UUID `json:"id" yaml:"id"`
	UserID               string    `json:"user_id" yaml:"user_id"`
	Name                 string    `json:"name,omitempty" yaml:"name,omitempty"`
	Timestamp            time.Time `json:"timestamp" yaml:"timestamp" validate:"required"`
	CaffeineMg           float64   `json:"caffeine_mg" yaml:"caffeine_mg" validate:"gte=0,lte=1000"`
	CompletionPercentage float64   `json:"completion_percentage" yaml:"completion_percentage" validate:"gte=0,lte=100"`
	DurationMinutes      int       `json:"duration_minutes" yaml:"duration_minutes" validate:"gte=0,lte=1440"`
	RecordedAt           time.Time `json:"recorded_at" yaml:"recorded_at"`
}

// NewDrinkEvent creates a fully finished drink consumed now.
func NewDrinkEvent(userID string, caffeineMg float64) *DrinkEvent {
	now := time.Now()
	return &DrinkEvent{
		ID:                   uuid.New(),
		UserID:               userID,
		Timestamp:            now,
		CaffeineMg:           caffeineMg,
		CompletionPercentage: 100,
		RecordedAt:           now,
	}
}

// WithTimestamp sets when consumption started.
func (d *DrinkEvent) WithTimestamp(t time.Time) *DrinkEvent {
	d.Timestamp = t
	return d
}

// WithCompletion sets how much of the drink was finished.
func (d *DrinkEvent) WithCompletion(percent float64) *DrinkEvent {
	d.CompletionPercentage = percent
	return d
}

// WithDuration sets how long the drink took to finish.
func (d *DrinkEvent) WithDuration(minutes int) *DrinkEvent {
	d.DurationMinutes = minutes
	return d
}

// WithName sets a display name such as "espresso".
func (d *DrinkEvent) WithName(name string) *DrinkEvent {
	d.Name = name
	return d
}

// ActualCaffeineConsumed returns declared mg scaled by completion, bounded to [0, 1000].
func (d *DrinkEvent) ActualCaffeineConsumed() float64 {
	mg := d.CaffeineMg * d.CompletionPercentage / 100
	switch {
	case mg != mg || mg < 0:
		return 0
	case mg > MaxActualCaffeineMg:
		return MaxActualCaffeineMg
	}
	return mg
}

// FinishedAt returns when the drink was finished.
func (d *DrinkEvent) FinishedAt() time.Time {
	return d.Timestamp.Add(time.Duration(d.DurationMinutes) * time.Minute)
}

// Window is an inclusive time range [Start, End].
type Window struct {
	Start time.Time
	End   time.Time
}

// LastHours returns the window of the given length ending at end.
func LastHours(end time.Time, hours float64) Window {
	return Window{
		Start: end.Add(-time.Duration(hours * float64(time.Hour))),
		End:   end,
	}
}

// Contains reports whether t falls inside the window. A zero End is open.
func (w Window) Contains(t time.Time) bool {
	if t.Before(w.Start) {
		return false
	}
	return w.End.IsZero() || !t.After(w.End)
}
