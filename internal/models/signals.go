// ABOUTME: Daily signal models: sleep, stress, meals, and exercise.
// ABOUTME: Signals are optional engine inputs that degrade to neutral defaults.
package models

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the layout used for date-scoped samples.
const DateLayout = "2006-01-02"

// DateKey formats t as a calendar date in its own location.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// SleepSample is the sleep recorded for the night ending on Date.
type SleepSample struct {
	UserID     string    `json:"user_id" yaml:"user_id"`
	Date       time.Time `json:"date" yaml:"date" validate:"required"`
	HoursSlept float64   `json:"hours_slept" yaml:"hours_slept" validate:"gte=0,lte=16"`
	Source     string    `json:"source,omitempty" yaml:"source,omitempty"`
}

// StressSample is a self-reported 1-10 stress level for Date.
type StressSample struct {
	UserID string    `json:"user_id" yaml:"user_id"`
	Date   time.Time `json:"date" yaml:"date" validate:"required"`
	Level  int       `json:"level" yaml:"level" validate:"gte=1,lte=10"`
}

// MealEvent records that a meal was eaten.
type MealEvent struct {
	ID        uuid.UUID `json:"id" yaml:"id"`
	UserID    string    `json:"user_id" yaml:"user_id"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp" validate:"required"`
}

// NewMealEvent creates a meal eaten at t.
func NewMealEvent(userID string, t time.Time) *MealEvent {
	return &MealEvent{ID: uuid.New(), UserID: userID, Timestamp: t}
}

// ExercisePhase distinguishes an ongoing session from a finished one.
type ExercisePhase string

const (
	ExerciseStarting  ExercisePhase = "starting"
	ExerciseCompleted ExercisePhase = "completed"
)

// ExerciseEvent marks the start or the end of an exercise session.
type ExerciseEvent struct {
	ID        uuid.UUID     `json:"id" yaml:"id"`
	UserID    string        `json:"user_id" yaml:"user_id"`
	Timestamp time.Time     `json:"timestamp" yaml:"timestamp" validate:"required"`
	Phase     ExercisePhase `json:"phase" yaml:"phase" validate:"required,oneof=starting completed"`
	Activity  string        `json:"activity,omitempty" yaml:"activity,omitempty"`
}

// NewExerciseEvent creates an exercise event at t.
func NewExerciseEvent(userID string, phase ExercisePhase, t time.Time) *ExerciseEvent {
	return &ExerciseEvent{ID: uuid.New(), UserID: userID, Timestamp: t, Phase: phase}
}

// Signals bundles the optional daily inputs for one evaluation.
type Signals struct {
	Sleep    *SleepSample
	Stress   *StressSample
	Meals    []time.Time
	Exercise *ExerciseEvent
}
