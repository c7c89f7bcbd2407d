// ABOUTME: Read-only storage collaborator consumed by the evaluator.
// ABOUTME: Every storage.Repository satisfies Source.
package service

import (
	"context"
	"time"

	"github.com/harperreed/caff/internal/models"
)

// Source supplies evaluation inputs. Missing optional data is a nil value
// with a nil error.
type Source interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	GetDrinkEvents(ctx context.Context, userID string, w models.Window) ([]*models.DrinkEvent, error)
	GetSleepSample(ctx context.Context, userID string, date time.Time) (*models.SleepSample, error)
	GetStressSample(ctx context.Context, userID string, date time.Time) (*models.StressSample, error)
	GetRecentMealTimes(ctx context.Context, userID string, now time.Time, hoursBack float64) ([]time.Time, error)
	GetExerciseSample(ctx context.Context, userID string, date time.Time) (*models.ExerciseEvent, error)
}

// Pruner removes ledger entries older than a cutoff.
type Pruner interface {
	PruneDrinkEvents(ctx context.Context, before time.Time) (int, error)
}
