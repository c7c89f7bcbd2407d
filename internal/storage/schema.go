// ABOUTME: SQLite schema definition and initialization.
// ABOUTME: Defines tables for profiles, drinks, and the daily signal samples.
package storage

// initSchema creates or updates the database schema.
func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS profiles (
		user_id TEXT PRIMARY KEY,
		weight_kg REAL NOT NULL,
		age INTEGER NOT NULL,
		sex TEXT NOT NULL,
		smoker INTEGER NOT NULL DEFAULT 0,
		pregnant INTEGER NOT NULL DEFAULT 0,
		oral_contraceptives INTEGER NOT NULL DEFAULT 0,
		fluvoxamine INTEGER NOT NULL DEFAULT 0,
		ciprofloxacin INTEGER NOT NULL DEFAULT 0,
		other_cyp1a2_inhibitor INTEGER NOT NULL DEFAULT 0,
		metabolism_rate TEXT NOT NULL DEFAULT '',
		average_sleep_7days REAL NOT NULL DEFAULT 0,
		mean_daily_caffeine_mg REAL NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS drinks (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		timestamp TEXT NOT NULL,
		caffeine_mg REAL NOT NULL,
		completion_percentage REAL NOT NULL,
		duration_minutes INTEGER NOT NULL DEFAULT 0,
		recorded_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sleep_samples (
		user_id TEXT NOT NULL,
		date TEXT NOT NULL,
		hours_slept REAL NOT NULL,
		source TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (user_id, date)
	);

	CREATE TABLE IF NOT EXISTS stress_samples (
		user_id TEXT NOT NULL,
		date TEXT NOT NULL,
		level INTEGER NOT NULL,
		PRIMARY KEY (user_id, date)
	);

	CREATE TABLE IF NOT EXISTS meals (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		timestamp TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS exercise_events (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		date TEXT NOT NULL,
		phase TEXT NOT NULL,
		activity TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_drinks_user_timestamp ON drinks(user_id, timestamp);
	CREATE INDEX IF NOT EXISTS idx_drinks_timestamp ON drinks(timestamp);
	CREATE INDEX IF NOT EXISTS idx_meals_user_timestamp ON meals(user_id, timestamp);
	CREATE INDEX IF NOT EXISTS idx_exercise_user_date ON exercise_events(user_id, date, timestamp DESC);
	`

	_, err := d.db.Exec(schema)
	return err
}
