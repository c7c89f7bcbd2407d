// ABOUTME: Profile persistence for SQLite storage.
// ABOUTME: Profiles are upserted by user ID and never deleted.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/harperreed/caff/internal/models"
)

const profileColumns = `user_id, weight_kg, age, sex, smoker, pregnant, oral_contraceptives,
	fluvoxamine, ciprofloxacin, other_cyp1a2_inhibitor, metabolism_rate,
	average_sleep_7days, mean_daily_caffeine_mg, created_at, updated_at`

// SaveProfile inserts or updates a profile. CreatedAt is kept from the first save.
func (d *DB) SaveProfile(ctx context.Context, p *models.Profile) error {
	query := `
		INSERT INTO profiles (` + profileColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			weight_kg = excluded.weight_kg,
			age = excluded.age,
			sex = excluded.sex,
			smoker = excluded.smoker,
			pregnant = excluded.pregnant,
			oral_contraceptives = excluded.oral_contraceptives,
			fluvoxamine = excluded.fluvoxamine,
			ciprofloxacin = excluded.ciprofloxacin,
			other_cyp1a2_inhibitor = excluded.other_cyp1a2_inhibitor,
			metabolism_rate = excluded.metabolism_rate,
			average_sleep_7days = excluded.average_sleep_7days,
			mean_daily_caffeine_mg = excluded.mean_daily_caffeine_mg,
			updated_at = excluded.updated_at
	`
	_, err := d.db.ExecContext(ctx, query,
		p.UserID,
		p.WeightKg,
		p.Age,
		string(p.Sex),
		p.Smoker,
		p.Pregnant,
		p.OralContraceptives,
		p.Medication.Fluvoxamine,
		p.Medication.Ciprofloxacin,
		p.Medication.OtherCYP1A2Inhibitor,
		string(p.MetabolismRate),
		p.AverageSleep7Days,
		p.MeanDailyCaffeineMg,
		formatTime(p.CreatedAt),
		formatTime(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// GetProfile returns the profile for userID, or nil if none exists.
func (d *DB) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = ?`
	p, err := scanProfile(d.db.QueryRowContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (d *DB) listProfiles(ctx context.Context) ([]*models.Profile, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT `+profileColumns+` FROM profiles ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*models.Profile, error) {
	var p models.Profile
	var sex, metabolism, createdAt, updatedAt string

	err := row.Scan(
		&p.UserID,
		&p.WeightKg,
		&p.Age,
		&sex,
		&p.Smoker,
		&p.Pregnant,
		&p.OralContraceptives,
		&p.Medication.Fluvoxamine,
		&p.Medication.Ciprofloxacin,
		&p.Medication.OtherCYP1A2Inhibitor,
		&metabolism,
		&p.AverageSleep7Days,
		&p.MeanDailyCaffeineMg,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan profile: %w", err)
	}

	p.Sex = models.Sex(sex)
	p.MetabolismRate = models.MetabolismRate(metabolism)
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("scan profile: %w", err)
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("scan profile: %w", err)
	}
	return &p, nil
}
