// ABOUTME: Repository interface for caffeine ledger and daily signal storage.
// ABOUTME: Implemented by the SQLite DB and the Badger KVStore.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/harperreed/caff/internal/models"
)

// ErrNotFound is returned when an ID or prefix matches nothing.
var ErrNotFound = errors.New("not found")

// Repository defines the storage interface for caff data.
// Read operations for optional data return a nil value and a nil error when
// nothing is stored.
type Repository interface {
	// Profile operations
	SaveProfile(ctx context.Context, p *models.Profile) error
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)

	// Drink ledger operations
	CreateDrinkEvent(ctx context.Context, e *models.DrinkEvent) error
	GetDrinkEvent(ctx context.Context, userID, idOrPrefix string) (*models.DrinkEvent, error)
	GetDrinkEvents(ctx context.Context, userID string, w models.Window) ([]*models.DrinkEvent, error)
	ListDrinkEvents(ctx context.Context, userID string, limit int) ([]*models.DrinkEvent, error)
	DeleteDrinkEvent(ctx context.Context, userID, idOrPrefix string) error
	PruneDrinkEvents(ctx context.Context, before time.Time) (int, error)

	// Daily signal operations
	SaveSleepSample(ctx context.Context, s *models.SleepSample) error
	GetSleepSample(ctx context.Context, userID string, date time.Time) (*models.SleepSample, error)
	SaveStressSample(ctx context.Context, s *models.StressSample) error
	GetStressSample(ctx context.Context, userID string, date time.Time) (*models.StressSample, error)
	CreateMealEvent(ctx context.Context, m *models.MealEvent) error
	GetRecentMealTimes(ctx context.Context, userID string, now time.Time, hoursBack float64) ([]time.Time, error)
	CreateExerciseEvent(ctx context.Context, e *models.ExerciseEvent) error
	GetExerciseSample(ctx context.Context, userID string, date time.Time) (*models.ExerciseEvent, error)

	// Export/Import
	GetAllData(ctx context.Context) (*ExportData, error)
	ImportData(ctx context.Context, data *ExportData) error

	// Lifecycle
	Close() error
}

// mealWindow returns the [now-hoursBack, now] range used for meal lookups.
func mealWindow(now time.Time, hoursBack float64) models.Window {
	if hoursBack <= 0 {
		hoursBack = 4
	}
	return models.LastHours(now, hoursBack)
}
