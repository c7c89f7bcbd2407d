// ABOUTME: Daily signal persistence for SQLite storage.
// ABOUTME: Sleep and stress are date-scoped upserts; meals and exercise are events.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/caff/internal/models"
)

// SaveSleepSample records sleep for a date, replacing any earlier entry.
func (d *DB) SaveSleepSample(ctx context.Context, s *models.SleepSample) error {
	query := `
		INSERT INTO sleep_samples (user_id, date, hours_slept, source)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, date) DO UPDATE SET
			hours_slept = excluded.hours_slept,
			source = excluded.source
	`
	_, err := d.db.ExecContext(ctx, query, s.UserID, models.DateKey(s.Date), s.HoursSlept, s.Source)
	if err != nil {
		return fmt.Errorf("save sleep sample: %w", err)
	}
	return nil
}

// GetSleepSample returns the sleep recorded for date, or nil.
func (d *DB) GetSleepSample(ctx context.Context, userID string, date time.Time) (*models.SleepSample, error) {
	var s models.SleepSample
	var day string
	err := d.db.QueryRowContext(ctx,
		`SELECT user_id, date, hours_slept, source FROM sleep_samples WHERE user_id = ? AND date = ?`,
		userID, models.DateKey(date),
	).Scan(&s.UserID, &day, &s.HoursSlept, &s.Source)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get sleep sample: %w", err)
	}
	s.Date = parseDate(day, date.Location())
	return &s, nil
}

// SaveStressSample records stress for a date, replacing any earlier entry.
func (d *DB) SaveStressSample(ctx context.Context, s *models.StressSample) error {
	query := `
		INSERT INTO stress_samples (user_id, date, level)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id, date) DO UPDATE SET level = excluded.level
	`
	_, err := d.db.ExecContext(ctx, query, s.UserID, models.DateKey(s.Date), s.Level)
	if err != nil {
		return fmt.Errorf("save stress sample: %w", err)
	}
	return nil
}

// GetStressSample returns the stress level recorded for date, or nil.
func (d *DB) GetStressSample(ctx context.Context, userID string, date time.Time) (*models.StressSample, error) {
	var s models.StressSample
	var day string
	err := d.db.QueryRowContext(ctx,
		`SELECT user_id, date, level FROM stress_samples WHERE user_id = ? AND date = ?`,
		userID, models.DateKey(date),
	).Scan(&s.UserID, &day, &s.Level)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get stress sample: %w", err)
	}
	s.Date = parseDate(day, date.Location())
	return &s, nil
}

// CreateMealEvent stores a meal.
func (d *DB) CreateMealEvent(ctx context.Context, m *models.MealEvent) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO meals (id, user_id, timestamp) VALUES (?, ?, ?)`,
		m.ID.String(), m.UserID, formatTime(m.Timestamp),
	)
	if err != nil {
		return fmt.Errorf("create meal: %w", err)
	}
	return nil
}

// GetRecentMealTimes returns meal times in [now-hoursBack, now], newest first.
func (d *DB) GetRecentMealTimes(ctx context.Context, userID string, now time.Time, hoursBack float64) ([]time.Time, error) {
	w := mealWindow(now, hoursBack)
	rows, err := d.db.QueryContext(ctx,
		`SELECT timestamp FROM meals WHERE user_id = ? AND timestamp >= ? AND timestamp <= ? ORDER BY timestamp DESC`,
		userID, formatTime(w.Start), formatTime(w.End),
	)
	if err != nil {
		return nil, fmt.Errorf("get meals: %w", err)
	}
	defer rows.Close()

	var times []time.Time
	for rows.Next() {
		var ts string
		if err := rows.Scan(&ts); err != nil {
			return nil, fmt.Errorf("scan meal: %w", err)
		}
		t, err := parseTime(ts)
		if err != nil {
			return nil, fmt.Errorf("scan meal: %w", err)
		}
		times = append(times, t)
	}
	return times, rows.Err()
}

// CreateExerciseEvent stores an exercise start or completion.
func (d *DB) CreateExerciseEvent(ctx context.Context, e *models.ExerciseEvent) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO exercise_events (id, user_id, timestamp, date, phase, activity) VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID.String(), e.UserID, formatTime(e.Timestamp), models.DateKey(e.Timestamp), string(e.Phase), e.Activity,
	)
	if err != nil {
		return fmt.Errorf("create exercise: %w", err)
	}
	return nil
}

// GetExerciseSample returns the latest exercise event on date, or nil.
func (d *DB) GetExerciseSample(ctx context.Context, userID string, date time.Time) (*models.ExerciseEvent, error) {
	var e models.ExerciseEvent
	var idStr, ts, phase string
	err := d.db.QueryRowContext(ctx,
		`SELECT id, user_id, timestamp, phase, activity FROM exercise_events
		 WHERE user_id = ? AND date = ? ORDER BY timestamp DESC LIMIT 1`,
		userID, models.DateKey(date),
	).Scan(&idStr, &e.UserID, &ts, &phase, &e.Activity)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get exercise: %w", err)
	}
	e.ID, _ = uuid.Parse(idStr)
	if e.Timestamp, err = parseTime(ts); err != nil {
		return nil, fmt.Errorf("get exercise: %w", err)
	}
	e.Phase = models.ExercisePhase(phase)
	return &e, nil
}

func (d *DB) listSignals(ctx context.Context, out *ExportData) error {
	if err := d.listSleep(ctx, out); err != nil {
		return err
	}
	if err := d.listStress(ctx, out); err != nil {
		return err
	}
	if err := d.listMeals(ctx, out); err != nil {
		return err
	}
	return d.listExercise(ctx, out)
}

func (d *DB) listSleep(ctx context.Context, out *ExportData) error {
	rows, err := d.db.QueryContext(ctx, `SELECT user_id, date, hours_slept, source FROM sleep_samples ORDER BY user_id, date`)
	if err != nil {
		return fmt.Errorf("list sleep samples: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var s models.SleepSample
		var day string
		if err := rows.Scan(&s.UserID, &day, &s.HoursSlept, &s.Source); err != nil {
			return fmt.Errorf("scan sleep sample: %w", err)
		}
		s.Date = parseDate(day, time.UTC)
		out.Sleep = append(out.Sleep, &s)
	}
	return rows.Err()
}

func (d *DB) listStress(ctx context.Context, out *ExportData) error {
	rows, err := d.db.QueryContext(ctx, `SELECT user_id, date, level FROM stress_samples ORDER BY user_id, date`)
	if err != nil {
		return fmt.Errorf("list stress samples: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var s models.StressSample
		var day string
		if err := rows.Scan(&s.UserID, &day, &s.Level); err != nil {
			return fmt.Errorf("scan stress sample: %w", err)
		}
		s.Date = parseDate(day, time.UTC)
		out.Stress = append(out.Stress, &s)
	}
	return rows.Err()
}

func (d *DB) listMeals(ctx context.Context, out *ExportData) error {
	rows, err := d.db.QueryContext(ctx, `SELECT id, user_id, timestamp FROM meals ORDER BY user_id, timestamp`)
	if err != nil {
		return fmt.Errorf("list meals: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var m models.MealEvent
		var idStr, ts string
		if err := rows.Scan(&idStr, &m.UserID, &ts); err != nil {
			return fmt.Errorf("scan meal: %w", err)
		}
		m.ID, _ = uuid.Parse(idStr)
		t, err := parseTime(ts)
		if err != nil {
			return fmt.Errorf("scan meal: %w", err)
		}
		m.Timestamp = t
		out.Meals = append(out.Meals, &m)
	}
	return rows.Err()
}

func (d *DB) listExercise(ctx context.Context, out *ExportData) error {
	rows, err := d.db.QueryContext(ctx, `SELECT id, user_id, timestamp, phase, activity FROM exercise_events ORDER BY user_id, timestamp`)
	if err != nil {
		return fmt.Errorf("list exercise: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var e models.ExerciseEvent
		var idStr, ts, phase string
		if err := rows.Scan(&idStr, &e.UserID, &ts, &phase, &e.Activity); err != nil {
			return fmt.Errorf("scan exercise: %w", err)
		}
		e.ID, _ = uuid.Parse(idStr)
		t, err := parseTime(ts)
		if err != nil {
			return fmt.Errorf("scan exercise: %w", err)
		}
		e.Timestamp = t
		e.Phase = models.ExercisePhase(phase)
		out.Exercise = append(out.Exercise, &e)
	}
	return rows.Err()
}

// parseDate reads a date key as midnight in loc.
func parseDate(day string, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t, _ := time.ParseInLocation(models.DateLayout, day, loc)
	return t
}
