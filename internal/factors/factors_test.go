// ABOUTME: Tests for the factor functions.
// ABOUTME: Checks documented breakpoints, neutral defaults and numeric guards.
package factors

import (
	"math"
	"testing"
	"time"

	"github.com/harperreed/caff/internal/models"
)

var now = time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func baseProfile() *models.Profile {
	p := models.NewProfile("u1", 70, 25, models.SexMale)
	p.CreatedAt = now
	return p
}

func TestDelta(t *testing.T) {
	tests := []struct {
		name          string
		peak, current float64
		want          float64
	}{
		{"half gone", 200, 100, 0.5},
		{"no peak", 0, 50, 0},
		{"current above peak", 100, 150, 0},
		{"NaN peak", math.NaN(), 10, 0},
		{"fully cleared", 100, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Delta(tt.peak, tt.current); !approx(got, tt.want) {
				t.Errorf("Delta() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSleepDebtHours(t *testing.T) {
	p := baseProfile()
	sleep := &models.SleepSample{UserID: "u1", Date: now, HoursSlept: 5.5}

	if got := SleepDebtHours(p, sleep, now); !approx(got, 2.0) {
		t.Errorf("new profile debt = %v, want 2.0", got)
	}

	p.AverageSleep7Days = 5.5
	if got := SleepDebtHours(p, nil, now); !approx(got, 2.0) {
		t.Errorf("new profile average-sleep debt = %v, want 2.0", got)
	}
	p.AverageSleep7Days = 0
	if got := SleepDebtHours(p, nil, now); got != 0 {
		t.Errorf("no sleep data debt = %v, want 0", got)
	}

	p.CreatedAt = now.Add(-10 * 24 * time.Hour)
	p.AverageSleep7Days = 8
	if got := SleepDebtHours(p, sleep, now); !approx(got, 2.5) {
		t.Errorf("established profile debt = %v, want 2.5", got)
	}

	if got := SleepDebtHours(p, nil, now); got != 0 {
		t.Errorf("missing sleep debt = %v, want 0", got)
	}

	sleep.HoursSlept = 10
	if got := SleepDebtHours(p, sleep, now); got != 0 {
		t.Errorf("oversleep debt = %v, want 0", got)
	}
}

func TestSleepDebtNormalized(t *testing.T) {
	if got := SleepDebt(1.5); !approx(got, 0.5) {
		t.Errorf("SleepDebt(1.5) = %v, want 0.5", got)
	}
	if got := SleepDebt(4.5); got != 1 {
		t.Errorf("SleepDebt(4.5) = %v, want 1", got)
	}
	if got := SleepDebt(math.NaN()); got != 0 {
		t.Errorf("SleepDebt(NaN) = %v, want 0", got)
	}
}

func TestSexModifier(t *testing.T) {
	tests := []struct {
		name   string
		modify func(p *models.Profile)
		want   float64
	}{
		{"male", func(p *models.Profile) {}, 1.0},
		{"female", func(p *models.Profile) { p.Sex = models.SexFemale }, 1.1},
		{"female on contraceptives", func(p *models.Profile) {
			p.Sex = models.SexFemale
			p.OralContraceptives = true
		}, 1.2},
		{"male smoker", func(p *models.Profile) { p.Smoker = true }, 0.85},
		{"pregnant smoker", func(p *models.Profile) {
			p.Sex = models.SexFemale
			p.Pregnant = true
			p.Smoker = true
		}, 1.02},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := baseProfile()
			tt.modify(p)
			got := SexModifier(p)
			if !approx(got, tt.want) {
				t.Errorf("SexModifier() = %v, want %v", got, tt.want)
			}
			if got < 0.8 || got > 1.2 {
				t.Errorf("SexModifier() = %v out of [0.8, 1.2]", got)
			}
		})
	}
}

func TestRawTolerance(t *testing.T) {
	p := baseProfile()

	p.MeanDailyCaffeineMg = 280
	if got := RawTolerance(p, nil, now); !approx(got, 1.0) {
		t.Errorf("280mg/day tolerance = %v, want 1.0", got)
	}

	p.MeanDailyCaffeineMg = 140
	if got := RawTolerance(p, nil, now); !approx(got, 0.5) {
		t.Errorf("140mg/day tolerance = %v, want 0.5", got)
	}

	p.MeanDailyCaffeineMg = 30
	if got := RawTolerance(p, nil, now); !approx(got, 30.0/280*0.8) {
		t.Errorf("light habit tolerance = %v, want %v", got, 30.0/280*0.8)
	}

	p.MeanDailyCaffeineMg = 10000
	if got := RawTolerance(p, nil, now); got != 1 {
		t.Errorf("tolerance should cap at 1, got %v", got)
	}
}

func TestRawToleranceFromLedger(t *testing.T) {
	p := baseProfile()
	var events []*models.DrinkEvent
	for d := 0; d < 7; d++ {
		events = append(events, models.NewDrinkEvent("u1", 100).WithTimestamp(now.Add(-time.Duration(d)*24*time.Hour-time.Hour)))
	}
	events = append(events, models.NewDrinkEvent("u1", 500).WithTimestamp(now.Add(-9*24*time.Hour)))

	want := 100.0 / 280
	if got := RawTolerance(p, events, now); !approx(got, want) {
		t.Errorf("ledger tolerance = %v, want %v", got, want)
	}
}

func TestHealthMultiplierLowersTolerance(t *testing.T) {
	p := baseProfile()
	p.MeanDailyCaffeineMg = 140
	base := RawTolerance(p, nil, now)

	p.Medication.Fluvoxamine = true
	if got := RawTolerance(p, nil, now); got >= base {
		t.Errorf("inhibitor tolerance %v should be below %v", got, base)
	}
}

func TestToleranceWeightings(t *testing.T) {
	if got := CrashTolerance.Apply(1); !approx(got, 0.85) {
		t.Errorf("crash tolerance at 1 = %v, want 0.85", got)
	}
	if got := FocusTolerance.Apply(0); !approx(got, 0.4) {
		t.Errorf("focus tolerance at 0 = %v, want 0.4", got)
	}
	if got := FocusTolerance.Apply(1); !approx(got, 1.0) {
		t.Errorf("focus tolerance at 1 = %v, want 1.0", got)
	}
}

func TestThresholdMg(t *testing.T) {
	p := baseProfile()
	if got := ThresholdMg(p, 0); !approx(got, 105) {
		t.Errorf("ThresholdMg(raw 0) = %v, want 105", got)
	}
	if got := ThresholdMg(p, 1); !approx(got, 210) {
		t.Errorf("ThresholdMg(raw 1) = %v, want 210", got)
	}
}

func TestCircadianTables(t *testing.T) {
	at := func(h, m int) time.Time { return time.Date(2025, 3, 3, h, m, 0, 0, time.UTC) }
	tests := []struct {
		name  string
		table CircadianTable
		at    time.Time
		want  float64
	}{
		{"crash late night", CrashCircadian, at(23, 0), 0.9},
		{"crash early night", CrashCircadian, at(3, 0), 0.9},
		{"crash morning", CrashCircadian, at(7, 0), 0.7},
		{"crash midday", CrashCircadian, at(13, 0), 1.0},
		{"crash evening", CrashCircadian, at(18, 0), 0.8},
		{"focus before dawn", FocusCircadian, at(5, 59), 0.5},
		{"focus mid morning", FocusCircadian, at(10, 0), 1.0},
		{"focus post lunch", FocusCircadian, at(12, 30), 0.8},
		{"focus afternoon", FocusCircadian, at(15, 0), 0.95},
		{"focus evening", FocusCircadian, at(20, 0), 0.65},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Circadian(tt.table, tt.at); got != tt.want {
				t.Errorf("Circadian() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCurrentLevel(t *testing.T) {
	tests := []struct {
		level float64
		want  float64
	}{
		{0, 0},
		{131.25, 1.0},
		{210, 0.6},
		{420, 0.05},
	}
	for _, tt := range tests {
		if got := CurrentLevel(tt.level, 105); !approx(got, tt.want) {
			t.Errorf("CurrentLevel(%v) = %v, want %v", tt.level, got, tt.want)
		}
	}

	prev := 0.0
	for l := 1.0; l <= 131; l++ {
		got := CurrentLevel(l, 105)
		if got < prev {
			t.Fatalf("CurrentLevel not rising below optimal zone at %v", l)
		}
		prev = got
	}
}

func TestCaffeineSensitivity(t *testing.T) {
	tests := []struct {
		debt float64
		want float64
	}{
		{0, 1.0},
		{2, 1.15},
		{4, 1.3},
		{8, 1.5},
	}
	for _, tt := range tests {
		if got := CaffeineSensitivity(tt.debt); got != tt.want {
			t.Errorf("CaffeineSensitivity(%v) = %v, want %v", tt.debt, got, tt.want)
		}
	}
}

func TestRisingRate(t *testing.T) {
	tests := []struct {
		name    string
		rate    float64
		plateau bool
		want    float64
	}{
		{"optimal rise", 3, false, 1.0},
		{"slow rise", 1, false, 0.8},
		{"fast rise", 10, false, 0.5},
		{"slow decline on plateau", -0.5, true, 0.9},
		{"slow decline off plateau", -0.5, false, 0.5},
		{"steep decline", -5, false, 0.1},
		{"NaN", math.NaN(), false, 0.6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RisingRate(tt.rate, tt.plateau); !approx(got, tt.want) {
				t.Errorf("RisingRate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSustainedPlateau(t *testing.T) {
	drink := func(ago time.Duration) []*models.DrinkEvent {
		return []*models.DrinkEvent{models.NewDrinkEvent("u1", 100).WithTimestamp(now.Add(-ago))}
	}

	if !SustainedPlateau(drink(2*time.Hour), 60, 100, now, 1) {
		t.Error("Expected plateau two hours after a drink")
	}
	if SustainedPlateau(drink(2*time.Hour), 50, 100, now, 1) {
		t.Error("Level below 60% of peak should not be a plateau")
	}
	if SustainedPlateau(drink(10*time.Minute), 60, 100, now, 1) {
		t.Error("Drink too recent for a plateau")
	}
	if SustainedPlateau(drink(5*time.Hour), 60, 100, now, 1) {
		t.Error("Drink too old for a plateau")
	}
	if !SustainedPlateau(drink(5*time.Hour), 60, 100, now, 1.5) {
		t.Error("Food should stretch the plateau window")
	}
	if SustainedPlateau(nil, 60, 100, now, 1) {
		t.Error("Empty ledger cannot plateau")
	}

	slow := []*models.DrinkEvent{models.NewDrinkEvent("u1", 100).WithTimestamp(now.Add(-270 * time.Minute)).WithDuration(60)}
	if !SustainedPlateau(slow, 60, 100, now, 1) {
		t.Error("Plateau window should run from when the drink was finished")
	}
}

func TestActivity(t *testing.T) {
	if got := Activity(0, 0, 105); got != 0 {
		t.Errorf("Activity without caffeine = %v, want 0", got)
	}
	if got := Activity(5, 20, 105); got != 0.1 {
		t.Errorf("Activity floor = %v, want 0.1", got)
	}
	if got := Activity(210, 210, 105); got != 1 {
		t.Errorf("Activity cap = %v, want 1", got)
	}
}

func TestFocusCapacity(t *testing.T) {
	if got := FocusCapacity(0, 1, 20); got != 1 {
		t.Errorf("FocusCapacity rested = %v, want 1", got)
	}
	if got := FocusCapacity(1, 1, 30); !approx(got, 0.485) {
		t.Errorf("FocusCapacity exhausted = %v, want 0.485", got)
	}
}

func TestStress(t *testing.T) {
	level := func(l int) *models.StressSample { return &models.StressSample{Level: l} }
	tests := []struct {
		sample *models.StressSample
		want   float64
	}{
		{nil, 0.7},
		{level(1), 1.0},
		{level(3), 0.9},
		{level(6), 0.6},
		{level(10), 0.3},
	}
	for _, tt := range tests {
		if got := Stress(tt.sample); !approx(got, tt.want) {
			t.Errorf("Stress(%+v) = %v, want %v", tt.sample, got, tt.want)
		}
	}
}

func TestAnxietyRisk(t *testing.T) {
	if got := AnxietyRisk(&models.StressSample{Level: 10}, 250); !approx(got, 0.7) {
		t.Errorf("max anxiety = %v, want 0.7", got)
	}
	if got := AnxietyRisk(&models.StressSample{Level: 5}, 300); got != 1 {
		t.Errorf("moderate stress anxiety = %v, want 1", got)
	}
	if got := AnxietyRisk(&models.StressSample{Level: 9}, 100); got != 1 {
		t.Errorf("low level anxiety = %v, want 1", got)
	}
	if got := AnxietyRisk(nil, 300); got != 1 {
		t.Errorf("no stress anxiety = %v, want 1", got)
	}
}

func TestFoodTiming(t *testing.T) {
	tests := []struct {
		name     string
		meals    []time.Time
		rate     float64
		duration float64
	}{
		{"no meals", nil, 1, 1},
		{"just ate", []time.Time{now.Add(-10 * time.Minute)}, 0.6, 1.3},
		{"an hour ago", []time.Time{now.Add(-60 * time.Minute)}, 0.725, 1.225},
		{"two hours ago", []time.Time{now.Add(-2 * time.Hour)}, 0.95, 1.05},
		{"two recent meals", []time.Time{now.Add(-10 * time.Minute), now.Add(-20 * time.Minute)}, 0.36, 1.6},
		{"three recent meals", []time.Time{now.Add(-5 * time.Minute), now.Add(-10 * time.Minute), now.Add(-20 * time.Minute)}, 0.35, 1.6},
		{"too old", []time.Time{now.Add(-5 * time.Hour)}, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FoodTiming(tt.meals, now)
			if !approx(got.AbsorptionRate, tt.rate) || !approx(got.DurationMultiplier, tt.duration) {
				t.Errorf("FoodTiming() = %+v, want rate %v duration %v", got, tt.rate, tt.duration)
			}
		})
	}
}

func TestExercise(t *testing.T) {
	starting := models.NewExerciseEvent("u1", models.ExerciseStarting, now)
	completed := models.NewExerciseEvent("u1", models.ExerciseCompleted, now)

	if got := Exercise(nil, now); got != 1 {
		t.Errorf("no exercise = %v, want 1", got)
	}
	if got := Exercise(starting, now.Add(30*time.Minute)); !approx(got, 1.1) {
		t.Errorf("starting +30m = %v, want 1.1", got)
	}
	if got := Exercise(completed, now.Add(15*time.Minute)); !approx(got, 1.2) {
		t.Errorf("completed +15m = %v, want 1.2", got)
	}
	for _, e := range []*models.ExerciseEvent{starting, completed} {
		if got := Exercise(e, now.Add(4*time.Hour)); got != 1 {
			t.Errorf("%s +4h = %v, want 1", e.Phase, got)
		}
	}
}
