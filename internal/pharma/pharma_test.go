// ABOUTME: Tests for the pharmacokinetic model.
// ABOUTME: Covers elimination, absorption weighting, and peak detection.
package pharma

import (
	"math"
	"testing"
	"time"

	"github.com/harperreed/caff/internal/models"
)

var t0 = time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)

func drink(mg float64, at time.Time) *models.DrinkEvent {
	return models.NewDrinkEvent("u1", mg).WithTimestamp(at)
}

func approx(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestCurrentLevelSingleDrink(t *testing.T) {
	events := []*models.DrinkEvent{drink(95, t0)}

	got := CurrentLevel(events, 5.0, t0.Add(30*time.Minute))
	want := 95 * math.Pow(2, -0.5/5)
	if !approx(got, want, 1e-9) {
		t.Errorf("CurrentLevel() = %v, want %v", got, want)
	}
	if !approx(got, 88.5, 0.2) {
		t.Errorf("CurrentLevel() = %v, want about 88.5", got)
	}
}

func TestCurrentLevelIgnoresFutureDrinks(t *testing.T) {
	events := []*models.DrinkEvent{drink(100, t0.Add(time.Hour))}

	if got := CurrentLevel(events, 5.0, t0); got != 0 {
		t.Errorf("CurrentLevel() with future drink = %v, want 0", got)
	}
	if got := CurrentActivity(events, 5.0, t0); got != 0 {
		t.Errorf("CurrentActivity() with future drink = %v, want 0", got)
	}
}

func TestCurrentLevelPartialCompletion(t *testing.T) {
	events := []*models.DrinkEvent{drink(200, t0).WithCompletion(50)}

	if got := CurrentLevel(events, 5.0, t0); got != 100 {
		t.Errorf("CurrentLevel() = %v, want 100", got)
	}
}

func TestCurrentLevelNonPositiveHalfLife(t *testing.T) {
	events := []*models.DrinkEvent{drink(100, t0)}

	if got := CurrentLevel(events, 0, t0.Add(time.Hour)); got != 0 {
		t.Errorf("CurrentLevel() with zero half-life = %v, want 0", got)
	}
}

func TestAbsorptionWeight(t *testing.T) {
	tests := []struct {
		minutes float64
		want    float64
	}{
		{-5, 0},
		{0, 0},
		{7.5, 0.15},
		{15, 0.3},
		{30, 0.65},
		{45, 1.0},
		{60, 1.0},
		{90, 1.0},
		{105, 0.6},
		{120, 0.2},
		{180, 0.2 * math.Exp(-1)},
	}

	for _, tt := range tests {
		if got := AbsorptionWeight(tt.minutes); !approx(got, tt.want, 1e-9) {
			t.Errorf("AbsorptionWeight(%v) = %v, want %v", tt.minutes, got, tt.want)
		}
	}
}

func TestAbsorptionWeightBounded(t *testing.T) {
	for m := -10.0; m < 24*60; m += 1 {
		w := AbsorptionWeight(m)
		if w < 0 || w > 1 || math.IsNaN(w) {
			t.Fatalf("AbsorptionWeight(%v) = %v out of [0,1]", m, w)
		}
	}
}

func TestCurrentActivityWeighted(t *testing.T) {
	events := []*models.DrinkEvent{drink(100, t0)}
	at := t0.Add(30 * time.Minute)

	level := CurrentLevel(events, 5.0, at)
	activity := CurrentActivity(events, 5.0, at)
	if !approx(activity, level*0.65, 1e-9) {
		t.Errorf("CurrentActivity() = %v, want %v", activity, level*0.65)
	}
}

func TestPeakLevelSixHoursLater(t *testing.T) {
	events := []*models.DrinkEvent{drink(200, t0)}
	at := t0.Add(6 * time.Hour)

	peak := PeakLevel(events, 5.0, at)
	current := CurrentLevel(events, 5.0, at)

	if !approx(peak, 200, 1e-9) {
		t.Errorf("PeakLevel() = %v, want 200", peak)
	}
	// 200 * 2^(-6/5)
	if !approx(current, 87.06, 0.01) {
		t.Errorf("CurrentLevel() = %v, want about 87.06", current)
	}
	delta := (peak - current) / peak
	if !approx(delta, 0.565, 0.001) {
		t.Errorf("delta = %v, want about 0.565", delta)
	}
}

func TestPeakLevelEmptyLedger(t *testing.T) {
	if got := PeakLevel(nil, 5.0, t0); got != 0 {
		t.Errorf("PeakLevel() on empty ledger = %v, want 0", got)
	}
}

func TestPeakLevelNeverBelowCurrent(t *testing.T) {
	events := []*models.DrinkEvent{drink(80, t0), drink(120, t0.Add(3*time.Hour))}

	for h := 0.0; h < 12; h += 0.25 {
		at := t0.Add(time.Duration(h * float64(time.Hour)))
		if PeakLevel(events, 5.0, at) < CurrentLevel(events, 5.0, at) {
			t.Fatalf("peak below current at +%vh", h)
		}
	}
}

func TestPeakLevelWindowDefaults(t *testing.T) {
	events := []*models.DrinkEvent{drink(200, t0)}
	at := t0.Add(2 * time.Hour)

	a := PeakLevelWindow(events, 5.0, at, 0, 0)
	b := PeakLevel(events, 5.0, at)
	if a != b {
		t.Errorf("PeakLevelWindow with zero params = %v, want %v", a, b)
	}
}

func TestRateOfChangeRising(t *testing.T) {
	events := []*models.DrinkEvent{drink(100, t0)}

	rate := RateOfChange(events, 5.0, t0.Add(30*time.Minute), 10*time.Minute)
	if rate <= 0 {
		t.Errorf("RateOfChange() during absorption = %v, want > 0", rate)
	}

	late := RateOfChange(events, 5.0, t0.Add(110*time.Minute), 10*time.Minute)
	if late >= 0 {
		t.Errorf("RateOfChange() after plateau = %v, want < 0", late)
	}
}

func TestRateOfChangeEmpty(t *testing.T) {
	if got := RateOfChange(nil, 5.0, t0, 10*time.Minute); got != 0 {
		t.Errorf("RateOfChange() on empty ledger = %v, want 0", got)
	}
}
