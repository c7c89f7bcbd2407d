// ABOUTME: Configuration-parameterized scoring engine for crash risk and focus potential.
// ABOUTME: Stateless between calls; every evaluation recomputes from its inputs.
package engine

import (
	"time"

	"github.com/harperreed/caff/internal/halflife"
	"github.com/harperreed/caff/internal/logger"
	"github.com/harperreed/caff/internal/models"
	"github.com/harperreed/caff/internal/pharma"
)

// Config tunes the engine. Zero values fall back to DefaultConfig.
type Config struct {
	HalfLifeBounds halflife.Bounds
	PeakLookback   time.Duration
	PeakInterval   time.Duration
	ValidityWindow time.Duration
	// Debug emits one structured event per factor and per composite score.
	Debug bool
}

// DefaultConfig returns the production tuning.
func DefaultConfig() Config {
	return Config{
		HalfLifeBounds: halflife.DefaultBounds,
		PeakLookback:   pharma.DefaultLookback,
		PeakInterval:   pharma.DefaultSampleInterval,
		ValidityWindow: time.Second,
	}
}

// Engine computes score snapshots. It is safe for concurrent use.
type Engine struct {
	cfg Config
	log *logger.Logger
}

// New creates an engine. A nil logger discards output.
func New(cfg Config, log *logger.Logger) *Engine {
	def := DefaultConfig()
	if !cfg.HalfLifeBounds.Valid() {
		cfg.HalfLifeBounds = def.HalfLifeBounds
	}
	if cfg.PeakLookback <= 0 {
		cfg.PeakLookback = def.PeakLookback
	}
	if cfg.PeakInterval <= 0 {
		cfg.PeakInterval = def.PeakInterval
	}
	if cfg.ValidityWindow <= 0 {
		cfg.ValidityWindow = def.ValidityWindow
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{cfg: cfg, log: log.With("component", "engine")}
}

// Config returns the effective configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Input is everything one evaluation needs. Signals are optional.
type Input struct {
	Profile *models.Profile
	Events  []*models.DrinkEvent
	Signals models.Signals
}

var defaultEngine = New(DefaultConfig(), nil)

// ComputeCrashRisk scores crash risk with the default configuration and no
// daily signals.
func ComputeCrashRisk(p *models.Profile, events []*models.DrinkEvent, now time.Time) *models.ScoreResult {
	return defaultEngine.CrashRisk(Input{Profile: p, Events: events}, now)
}

// ComputeCaffScore scores focus potential with the default configuration and
// no daily signals.
func ComputeCaffScore(p *models.Profile, events []*models.DrinkEvent, now time.Time) *models.ScoreResult {
	return defaultEngine.CaffScore(Input{Profile: p, Events: events}, now)
}

// ComputeRiskCurve projects crash risk with the default configuration.
func ComputeRiskCurve(p *models.Profile, events []*models.DrinkEvent, now time.Time, horizonHours float64, stepMinutes int) []CurvePoint {
	horizon := time.Duration(horizonHours * float64(time.Hour))
	step := time.Duration(stepMinutes) * time.Minute
	return defaultEngine.RiskCurve(Input{Profile: p, Events: events}, now, horizon, step)
}
