// ABOUTME: Badger key-value implementation of the Repository interface.
// ABOUTME: Stores JSON values under time-ordered keys so prefix scans return ledger order.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/harperreed/caff/internal/models"
)

const (
	kvProfile  = "profile:"
	kvDrink    = "drink:"
	kvSleep    = "sleep:"
	kvStress   = "stress:"
	kvMeal     = "meal:"
	kvExercise = "exercise:"
)

// KVStore is a Repository backed by an embedded Badger database.
type KVStore struct {
	db   *badger.DB
	path string
}

// Compile-time check that KVStore implements Repository.
var _ Repository = (*KVStore)(nil)

// OpenKV opens or creates a Badger store in dir. An empty dir opens an
// in-memory store.
func OpenKV(dir string) (*KVStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	} else if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open kv store: %w", err)
	}
	return &KVStore{db: db, path: dir}, nil
}

// DefaultKVPath returns the default Badger directory following XDG spec.
func DefaultKVPath() string {
	return filepath.Join(DataDir(), "kv")
}

// Path returns the store directory, empty for in-memory stores.
func (s *KVStore) Path() string {
	return s.path
}

// Close closes the store.
func (s *KVStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// timeKey renders t as fixed-width UTC nanoseconds so keys sort by time.
func timeKey(t time.Time) string {
	return fmt.Sprintf("%020d", t.UTC().UnixNano())
}

func drinkKey(e *models.DrinkEvent) []byte {
	return []byte(kvDrink + e.UserID + ":" + timeKey(e.Timestamp) + ":" + e.ID.String())
}

func dateKey(prefix, userID string, date time.Time) []byte {
	return []byte(prefix + userID + ":" + models.DateKey(date))
}

func (s *KVStore) put(key []byte, v any) error {
	val, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal value: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, val)
	})
}

// get decodes the value at key into v and reports whether it existed.
func (s *KVStore) get(key []byte, v any) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// scan calls fn with each key and value under prefix in key order.
func (s *KVStore) scan(prefix string, fn func(key, val []byte) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			item := it.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if err := fn(item.KeyCopy(nil), val); err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveProfile inserts or updates a profile. CreatedAt is kept from the first save.
func (s *KVStore) SaveProfile(ctx context.Context, p *models.Profile) error {
	existing, err := s.GetProfile(ctx, p.UserID)
	if err != nil {
		return err
	}
	stored := *p
	if existing != nil && !existing.CreatedAt.IsZero() {
		stored.CreatedAt = existing.CreatedAt
	}
	if err := s.put([]byte(kvProfile+p.UserID), &stored); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// GetProfile returns the profile for userID, or nil if none exists.
func (s *KVStore) GetProfile(_ context.Context, userID string) (*models.Profile, error) {
	var p models.Profile
	ok, err := s.get([]byte(kvProfile+userID), &p)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// CreateDrinkEvent stores a new drink event.
func (s *KVStore) CreateDrinkEvent(_ context.Context, e *models.DrinkEvent) error {
	if err := s.put(drinkKey(e), e); err != nil {
		return fmt.Errorf("create drink: %w", err)
	}
	return nil
}

func (s *KVStore) userDrinks(userID string) ([]*models.DrinkEvent, error) {
	var events []*models.DrinkEvent
	err := s.scan(kvDrink+userID+":", func(_, val []byte) error {
		var e models.DrinkEvent
		if err := json.Unmarshal(val, &e); err != nil {
			return err
		}
		events = append(events, &e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list drinks: %w", err)
	}
	return events, nil
}

// GetDrinkEvent retrieves a drink by ID or ID prefix.
func (s *KVStore) GetDrinkEvent(_ context.Context, userID, idOrPrefix string) (*models.DrinkEvent, error) {
	events, err := s.userDrinks(userID)
	if err != nil {
		return nil, err
	}
	return matchDrink(events, idOrPrefix)
}

// GetDrinkEvents returns drinks inside the inclusive window, oldest first.
func (s *KVStore) GetDrinkEvents(_ context.Context, userID string, w models.Window) ([]*models.DrinkEvent, error) {
	events, err := s.userDrinks(userID)
	if err != nil {
		return nil, err
	}
	var out []*models.DrinkEvent
	for _, e := range events {
		if w.Contains(e.Timestamp) {
			out = append(out, e)
		}
	}
	return out, nil
}

// ListDrinkEvents returns the most recent drinks first.
func (s *KVStore) ListDrinkEvents(_ context.Context, userID string, limit int) ([]*models.DrinkEvent, error) {
	events, err := s.userDrinks(userID)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

// DeleteDrinkEvent removes a drink by ID or prefix.
func (s *KVStore) DeleteDrinkEvent(_ context.Context, userID, idOrPrefix string) error {
	events, err := s.userDrinks(userID)
	if err != nil {
		return fmt.Errorf("delete drink: %w", err)
	}
	e, err := matchDrink(events, idOrPrefix)
	if err != nil {
		return fmt.Errorf("delete drink: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(drinkKey(e))
	})
}

// PruneDrinkEvents removes every drink taken before the cutoff.
func (s *KVStore) PruneDrinkEvents(_ context.Context, before time.Time) (int, error) {
	var stale [][]byte
	err := s.scan(kvDrink, func(key, val []byte) error {
		var e models.DrinkEvent
		if err := json.Unmarshal(val, &e); err != nil {
			return err
		}
		if e.Timestamp.Before(before) {
			stale = append(stale, key)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("prune drinks: %w", err)
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, key := range stale {
		if err := wb.Delete(key); err != nil {
			return 0, fmt.Errorf("prune drinks: %w", err)
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, fmt.Errorf("prune drinks: %w", err)
	}
	return len(stale), nil
}

// matchDrink resolves a full ID or unique prefix against events.
func matchDrink(events []*models.DrinkEvent, idOrPrefix string) (*models.DrinkEvent, error) {
	var matches []*models.DrinkEvent
	for _, e := range events {
		if strings.HasPrefix(e.ID.String(), idOrPrefix) {
			matches = append(matches, e)
		}
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, idOrPrefix)
	}
	if len(matches) > 1 {
		return nil, fmt.Errorf("ambiguous prefix %s: matches multiple records", idOrPrefix)
	}
	return matches[0], nil
}

// SaveSleepSample records sleep for a date, replacing any earlier entry.
func (s *KVStore) SaveSleepSample(_ context.Context, sample *models.SleepSample) error {
	if err := s.put(dateKey(kvSleep, sample.UserID, sample.Date), sample); err != nil {
		return fmt.Errorf("save sleep sample: %w", err)
	}
	return nil
}

// GetSleepSample returns the sleep recorded for date, or nil.
func (s *KVStore) GetSleepSample(_ context.Context, userID string, date time.Time) (*models.SleepSample, error) {
	var sample models.SleepSample
	ok, err := s.get(dateKey(kvSleep, userID, date), &sample)
	if err != nil {
		return nil, fmt.Errorf("get sleep sample: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return &sample, nil
}

// SaveStressSample records stress for a date, replacing any earlier entry.
func (s *KVStore) SaveStressSample(_ context.Context, sample *models.StressSample) error {
	if err := s.put(dateKey(kvStress, sample.UserID, sample.Date), sample); err != nil {
		return fmt.Errorf("save stress sample: %w", err)
	}
	return nil
}

// GetStressSample returns the stress level recorded for date, or nil.
func (s *KVStore) GetStressSample(_ context.Context, userID string, date time.Time) (*models.StressSample, error) {
	var sample models.StressSample
	ok, err := s.get(dateKey(kvStress, userID, date), &sample)
	if err != nil {
		return nil, fmt.Errorf("get stress sample: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return &sample, nil
}

// CreateMealEvent stores a meal.
func (s *KVStore) CreateMealEvent(_ context.Context, m *models.MealEvent) error {
	key := kvMeal + m.UserID + ":" + timeKey(m.Timestamp) + ":" + m.ID.String()
	if err := s.put([]byte(key), m); err != nil {
		return fmt.Errorf("create meal: %w", err)
	}
	return nil
}

// GetRecentMealTimes returns meal times in [now-hoursBack, now], newest first.
func (s *KVStore) GetRecentMealTimes(_ context.Context, userID string, now time.Time, hoursBack float64) ([]time.Time, error) {
	w := mealWindow(now, hoursBack)
	var times []time.Time
	err := s.scan(kvMeal+userID+":", func(_, val []byte) error {
		var m models.MealEvent
		if err := json.Unmarshal(val, &m); err != nil {
			return err
		}
		if w.Contains(m.Timestamp) {
			times = append(times, m.Timestamp)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get meals: %w", err)
	}
	sort.Slice(times, func(i, j int) bool { return times[i].After(times[j]) })
	return times, nil
}

// CreateExerciseEvent stores an exercise start or completion.
func (s *KVStore) CreateExerciseEvent(_ context.Context, e *models.ExerciseEvent) error {
	key := string(dateKey(kvExercise, e.UserID, e.Timestamp)) + ":" + timeKey(e.Timestamp) + ":" + e.ID.String()
	if err := s.put([]byte(key), e); err != nil {
		return fmt.Errorf("create exercise: %w", err)
	}
	return nil
}

// GetExerciseSample returns the latest exercise event on date, or nil.
func (s *KVStore) GetExerciseSample(_ context.Context, userID string, date time.Time) (*models.ExerciseEvent, error) {
	var latest *models.ExerciseEvent
	err := s.scan(string(dateKey(kvExercise, userID, date))+":", func(_, val []byte) error {
		var e models.ExerciseEvent
		if err := json.Unmarshal(val, &e); err != nil {
			return err
		}
		latest = &e
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get exercise: %w", err)
	}
	return latest, nil
}

// GetAllData retrieves all data for export.
func (s *KVStore) GetAllData(_ context.Context) (*ExportData, error) {
	data := newExportData()
	steps := []struct {
		prefix string
		decode func(val []byte) error
	}{
		{kvProfile, func(val []byte) error {
			var p models.Profile
			data.Profiles = append(data.Profiles, &p)
			return json.Unmarshal(val, &p)
		}},
		{kvDrink, func(val []byte) error {
			var e models.DrinkEvent
			data.Drinks = append(data.Drinks, &e)
			return json.Unmarshal(val, &e)
		}},
		{kvSleep, func(val []byte) error {
			var v models.SleepSample
			data.Sleep = append(data.Sleep, &v)
			return json.Unmarshal(val, &v)
		}},
		{kvStress, func(val []byte) error {
			var v models.StressSample
			data.Stress = append(data.Stress, &v)
			return json.Unmarshal(val, &v)
		}},
		{kvMeal, func(val []byte) error {
			var v models.MealEvent
			data.Meals = append(data.Meals, &v)
			return json.Unmarshal(val, &v)
		}},
		{kvExercise, func(val []byte) error {
			var v models.ExerciseEvent
			data.Exercise = append(data.Exercise, &v)
			return json.Unmarshal(val, &v)
		}},
	}
	for _, step := range steps {
		decode := step.decode
		if err := s.scan(step.prefix, func(_, val []byte) error { return decode(val) }); err != nil {
			return nil, fmt.Errorf("export %s: %w", strings.TrimSuffix(step.prefix, ":"), err)
		}
	}
	return data, nil
}

// ImportData imports data from an export file.
func (s *KVStore) ImportData(ctx context.Context, data *ExportData) error {
	return importInto(ctx, s, data)
}
