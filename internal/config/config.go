// ABOUTME: Caff configuration management with backend selection.
// ABOUTME: Handles the JSON config file, CAFF_* environment overlay, and storage factory.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/harperreed/caff/internal/engine"
	"github.com/harperreed/caff/internal/halflife"
	"github.com/harperreed/caff/internal/service"
	"github.com/harperreed/caff/internal/storage"
)

// Backend names.
const (
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
)

// Config stores caff configuration.
type Config struct {
	// Backend selects the storage backend: "sqlite" (default) or "badger".
	Backend string `json:"backend,omitempty"`

	// DataDir is the root directory for data storage.
	// SQLite puts caff.db here. Badger puts its kv/ directory here.
	// Supports ~ expansion for home directory. Defaults to ~/.local/share/caff.
	DataDir string `json:"data_dir,omitempty"`

	// UserID is the profile the CLI and MCP server act on.
	UserID string `json:"user_id,omitempty"`

	Debug   bool   `json:"debug,omitempty"`
	LogMode string `json:"log_mode,omitempty"`

	// HalfLifeMinHours and HalfLifeMaxHours override the half-life clamp.
	HalfLifeMinHours float64 `json:"half_life_min_hours,omitempty"`
	HalfLifeMaxHours float64 `json:"half_life_max_hours,omitempty"`

	RetentionDays     int     `json:"retention_days,omitempty"`
	CurveHorizonHours float64 `json:"curve_horizon_hours,omitempty"`
	CurveStepMinutes  int     `json:"curve_step_minutes,omitempty"`
}

// GetBackend returns the configured backend, defaulting to "sqlite".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return BackendSQLite
	}
	return c.Backend
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetUserID returns the configured user, falling back to $USER and then "default".
func (c *Config) GetUserID() string {
	if c.UserID != "" {
		return c.UserID
	}
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "default"
}

// GetRetentionDays returns the drink retention window in days.
func (c *Config) GetRetentionDays() int {
	if c.RetentionDays <= 0 {
		return service.DefaultRetentionDays
	}
	return c.RetentionDays
}

// CurveHorizon returns the default risk curve horizon.
func (c *Config) CurveHorizon() time.Duration {
	if c.CurveHorizonHours <= 0 {
		return engine.DefaultCurveHorizon
	}
	return time.Duration(c.CurveHorizonHours * float64(time.Hour))
}

// CurveStep returns the default risk curve sampling step.
func (c *Config) CurveStep() time.Duration {
	if c.CurveStepMinutes <= 0 {
		return engine.DefaultCurveStep
	}
	return time.Duration(c.CurveStepMinutes) * time.Minute
}

// EngineConfig builds the engine configuration. Unset or invalid half-life
// bounds keep the default clamp.
func (c *Config) EngineConfig() engine.Config {
	cfg := engine.DefaultConfig()
	cfg.Debug = c.Debug

	b := halflife.DefaultBounds
	if c.HalfLifeMinHours > 0 {
		b.Min = c.HalfLifeMinHours
	}
	if c.HalfLifeMaxHours > 0 {
		b.Max = c.HalfLifeMaxHours
	}
	if b.Valid() {
		cfg.HalfLifeBounds = b
	}
	return cfg
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenStorage creates a Repository implementation based on the configured backend.
func (c *Config) OpenStorage() (storage.Repository, error) {
	backend := c.GetBackend()
	dataDir := c.GetDataDir()

	switch backend {
	case BackendSQLite:
		return storage.Open(filepath.Join(dataDir, "caff.db"))
	case BackendBadger:
		return storage.OpenKV(filepath.Join(dataDir, "kv"))
	default:
		return nil, fmt.Errorf("unknown backend: %q", backend)
	}
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "caff", "config.json")
}

// LoadDotEnv reads KEY=value pairs from the given files, or ./.env when none
// are given, without overriding variables already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads config from disk and applies CAFF_* environment overrides.
func Load() (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(GetConfigPath())
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.ApplyEnv()
	return cfg, nil
}

// ApplyEnv overlays CAFF_* environment variables. Unparseable values are ignored.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("CAFF_BACKEND"); v != "" {
		c.Backend = v
	}
	if v := os.Getenv("CAFF_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("CAFF_USER_ID"); v != "" {
		c.UserID = v
	}
	if v := os.Getenv("CAFF_LOG_MODE"); v != "" {
		c.LogMode = v
	}
	if v := os.Getenv("CAFF_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Debug = b
		}
	}
	if v := os.Getenv("CAFF_HALF_LIFE_MIN_HOURS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			c.HalfLifeMinHours = f
		}
	}
	if v := os.Getenv("CAFF_HALF_LIFE_MAX_HOURS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			c.HalfLifeMaxHours = f
		}
	}
	if v := os.Getenv("CAFF_RETENTION_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil && days > 0 {
			c.RetentionDays = days
		}
	}
	if v := os.Getenv("CAFF_CURVE_HORIZON_HOURS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			c.CurveHorizonHours = f
		}
	}
	if v := os.Getenv("CAFF_CURVE_STEP_MINUTES"); v != "" {
		if m, err := strconv.Atoi(v); err == nil && m > 0 {
			c.CurveStepMinutes = m
		}
	}
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
