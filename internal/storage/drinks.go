// ABOUTME: Drink ledger operations for SQLite storage.
// ABOUTME: Implements windowed reads, prefix lookup, deletion and retention pruning.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/caff/internal/models"
)

const drinkColumns = `id, user_id, name, timestamp, caffeine_mg, completion_percentage, duration_minutes, recorded_at`

// CreateDrinkEvent stores a new drink event.
func (d *DB) CreateDrinkEvent(ctx context.Context, e *models.DrinkEvent) error {
	query := `INSERT INTO drinks (` + drinkColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := d.db.ExecContext(ctx, query,
		e.ID.String(),
		e.UserID,
		e.Name,
		formatTime(e.Timestamp),
		e.CaffeineMg,
		e.CompletionPercentage,
		e.DurationMinutes,
		formatTime(e.RecordedAt),
	)
	if err != nil {
		return fmt.Errorf("create drink: %w", err)
	}
	return nil
}

// GetDrinkEvent retrieves a drink by ID or ID prefix.
func (d *DB) GetDrinkEvent(ctx context.Context, userID, idOrPrefix string) (*models.DrinkEvent, error) {
	id, err := d.resolveDrinkID(ctx, userID, idOrPrefix)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + drinkColumns + ` FROM drinks WHERE id = ? AND user_id = ?`
	e, err := scanDrink(d.db.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, idOrPrefix)
	}
	return e, err
}

// GetDrinkEvents returns drinks inside the inclusive window, oldest first.
// A zero End leaves the window open.
func (d *DB) GetDrinkEvents(ctx context.Context, userID string, w models.Window) ([]*models.DrinkEvent, error) {
	query := `SELECT ` + drinkColumns + ` FROM drinks WHERE user_id = ? AND timestamp >= ?`
	args := []interface{}{userID, formatTime(w.Start)}
	if !w.End.IsZero() {
		query += ` AND timestamp <= ?`
		args = append(args, formatTime(w.End))
	}
	query += ` ORDER BY timestamp ASC`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get drinks: %w", err)
	}
	defer rows.Close()

	return scanDrinks(rows)
}

// ListDrinkEvents returns the most recent drinks first.
func (d *DB) ListDrinkEvents(ctx context.Context, userID string, limit int) ([]*models.DrinkEvent, error) {
	query := `SELECT ` + drinkColumns + ` FROM drinks WHERE user_id = ? ORDER BY timestamp DESC`
	args := []interface{}{userID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list drinks: %w", err)
	}
	defer rows.Close()

	return scanDrinks(rows)
}

func (d *DB) listAllDrinks(ctx context.Context) ([]*models.DrinkEvent, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT `+drinkColumns+` FROM drinks ORDER BY user_id, timestamp ASC`)
	if err != nil {
		return nil, fmt.Errorf("list drinks: %w", err)
	}
	defer rows.Close()

	return scanDrinks(rows)
}

// DeleteDrinkEvent removes a drink by ID or prefix.
func (d *DB) DeleteDrinkEvent(ctx context.Context, userID, idOrPrefix string) error {
	id, err := d.resolveDrinkID(ctx, userID, idOrPrefix)
	if err != nil {
		return fmt.Errorf("delete drink: %w", err)
	}

	result, err := d.db.ExecContext(ctx, "DELETE FROM drinks WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete drink: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete drink: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete drink: %w: %s", ErrNotFound, idOrPrefix)
	}

	return nil
}

// PruneDrinkEvents removes every drink taken before the cutoff.
func (d *DB) PruneDrinkEvents(ctx context.Context, before time.Time) (int, error) {
	result, err := d.db.ExecContext(ctx, "DELETE FROM drinks WHERE timestamp < ?", formatTime(before))
	if err != nil {
		return 0, fmt.Errorf("prune drinks: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune drinks: %w", err)
	}
	return int(affected), nil
}

// resolveDrinkID finds the full ID from a prefix.
func (d *DB) resolveDrinkID(ctx context.Context, userID, idOrPrefix string) (string, error) {
	if len(idOrPrefix) == 36 && strings.Count(idOrPrefix, "-") == 4 {
		return idOrPrefix, nil
	}

	query := `SELECT id FROM drinks WHERE user_id = ? AND id LIKE ? || '%'`
	rows, err := d.db.QueryContext(ctx, query, userID, idOrPrefix)
	if err != nil {
		return "", fmt.Errorf("resolve drink ID: %w", err)
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("scan drink ID: %w", err)
		}
		matches = append(matches, id)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("resolve drink ID: %w", err)
	}

	if len(matches) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNotFound, idOrPrefix)
	}
	if len(matches) > 1 {
		return "", fmt.Errorf("ambiguous prefix %s: matches multiple records", idOrPrefix)
	}

	return matches[0], nil
}

func scanDrink(row rowScanner) (*models.DrinkEvent, error) {
	var e models.DrinkEvent
	var idStr, timestamp, recordedAt string

	err := row.Scan(&idStr, &e.UserID, &e.Name, &timestamp, &e.CaffeineMg,
		&e.CompletionPercentage, &e.DurationMinutes, &recordedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan drink: %w", err)
	}

	e.ID, _ = uuid.Parse(idStr)
	if e.Timestamp, err = parseTime(timestamp); err != nil {
		return nil, fmt.Errorf("scan drink %s: %w", idStr, err)
	}
	if e.RecordedAt, err = parseTime(recordedAt); err != nil {
		return nil, fmt.Errorf("scan drink %s: %w", idStr, err)
	}
	return &e, nil
}

func scanDrinks(rows *sql.Rows) ([]*models.DrinkEvent, error) {
	var events []*models.DrinkEvent
	for rows.Next() {
		e, err := scanDrink(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
