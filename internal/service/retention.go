// ABOUTME: Background retention for the drink ledger.
// ABOUTME: Prunes drinks older than the retention window at startup and then on a ticker.
package service

import (
	"context"
	"time"

	"github.com/harperreed/caff/internal/logger"
	"github.com/harperreed/caff/internal/telemetry"
)

const (
	// DefaultRetentionDays is how long drinks are kept.
	DefaultRetentionDays = 30
	// DefaultRetentionInterval is how often the worker prunes.
	DefaultRetentionInterval = 24 * time.Hour
)

// RetentionCutoff returns the instant before which drinks are pruned.
func RetentionCutoff(now time.Time, days int) time.Time {
	if days <= 0 {
		days = DefaultRetentionDays
	}
	return now.AddDate(0, 0, -days)
}

// PruneOnce performs a single retention pass.
func PruneOnce(ctx context.Context, p Pruner, days int, now time.Time, rec *telemetry.Recorder) (int, error) {
	n, err := p.PruneDrinkEvents(ctx, RetentionCutoff(now, days))
	if err != nil {
		return 0, err
	}
	rec.ObservePrune(n)
	return n, nil
}

// StartRetentionWorker runs a prune at startup and then once per interval
// until ctx is cancelled. The returned channel closes when the worker exits.
func StartRetentionWorker(ctx context.Context, p Pruner, days int, interval time.Duration, rec *telemetry.Recorder, log *logger.Logger) <-chan struct{} {
	if interval <= 0 {
		interval = DefaultRetentionInterval
	}
	if log == nil {
		log = logger.Nop()
	}
	log = log.With("component", "retention")
	done := make(chan struct{})

	run := func(phase string) {
		n, err := PruneOnce(ctx, p, days, time.Now(), rec)
		if err != nil {
			log.Error("retention cleanup failed", "phase", phase, "error", err)
			return
		}
		if n > 0 {
			log.Info("pruned drinks", "phase", phase, "count", n)
		}
	}

	go func() {
		defer close(done)
		run("startup")

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				run("tick")
			}
		}
	}()
	return done
}
