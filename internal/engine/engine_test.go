// ABOUTME: Tests for the composite scorers, validity stamp, curve and interpretation.
// ABOUTME: Covers bounds, determinism, fail-safe results and the worked examples.
package engine

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/harperreed/caff/internal/factors"
	"github.com/harperreed/caff/internal/logger"
	"github.com/harperreed/caff/internal/models"
	"github.com/harperreed/caff/internal/pharma"
)

var now = time.Date(2025, 3, 3, 14, 0, 0, 0, time.UTC)

func testProfile() *models.Profile {
	p := models.NewProfile("u1", 70, 25, models.SexMale)
	p.CreatedAt = now.Add(-24 * time.Hour)
	return p
}

func drinkAt(mg float64, ago time.Duration) *models.DrinkEvent {
	return models.NewDrinkEvent("u1", mg).WithTimestamp(now.Add(-ago))
}

func factorValue(t *testing.T, r *models.ScoreResult, name string) float64 {
	t.Helper()
	v, ok := r.Factor(name)
	if !ok {
		t.Fatalf("factor %q missing from %+v", name, r.Factors)
	}
	return v
}

func TestSingleDrinkThirtyMinutes(t *testing.T) {
	res := ComputeCrashRisk(testProfile(), []*models.DrinkEvent{drinkAt(95, 30*time.Minute)}, now)

	if res.FailSafe {
		t.Fatalf("unexpected fail-safe: %v", res.Warnings)
	}
	if res.HalfLifeHours != 5.0 {
		t.Errorf("HalfLifeHours = %v, want 5.0", res.HalfLifeHours)
	}
	if math.Abs(res.CurrentLevelMg-88.5) > 0.2 {
		t.Errorf("CurrentLevelMg = %v, want ~88.5", res.CurrentLevelMg)
	}
}

func TestSingleDrinkSixHoursLater(t *testing.T) {
	res := ComputeCrashRisk(testProfile(), []*models.DrinkEvent{drinkAt(200, 6*time.Hour)}, now)

	if math.Abs(res.PeakLevelMg-200) > 1e-6 {
		t.Errorf("PeakLevelMg = %v, want 200", res.PeakLevelMg)
	}
	want := 200 * math.Exp2(-6.0/5.0)
	if math.Abs(res.CurrentLevelMg-want) > 1e-6 {
		t.Errorf("CurrentLevelMg = %v, want %v", res.CurrentLevelMg, want)
	}
	if d := factorValue(t, res, factors.NameDelta); math.Abs(d-(200-want)/200) > 1e-6 {
		t.Errorf("delta = %v, want %v", d, (200-want)/200)
	}
}

func TestMissingAgeFailSafe(t *testing.T) {
	p := testProfile()
	p.Age = 0

	for _, res := range []*models.ScoreResult{
		ComputeCrashRisk(p, []*models.DrinkEvent{drinkAt(95, time.Hour)}, now),
		ComputeCaffScore(p, []*models.DrinkEvent{drinkAt(95, time.Hour)}, now),
	} {
		if !res.FailSafe {
			t.Fatalf("%s: expected fail-safe result", res.Kind)
		}
		if res.Score != 0 {
			t.Errorf("%s: Score = %v, want 0", res.Kind, res.Score)
		}
		if res.HalfLifeHours != 5.0 {
			t.Errorf("%s: HalfLifeHours = %v, want 5.0", res.Kind, res.HalfLifeHours)
		}
		if !res.ValidUntil.Equal(now.Add(time.Second)) {
			t.Errorf("%s: ValidUntil = %v, want now+1s", res.Kind, res.ValidUntil)
		}
		for _, f := range res.Factors {
			if f.Value != 0.5 {
				t.Errorf("%s: factor %s = %v, want 0.5", res.Kind, f.Name, f.Value)
			}
		}
		if len(res.Warnings) == 0 {
			t.Errorf("%s: expected warnings", res.Kind)
		}
	}
}

func TestFailSafeDistinctFromGenuineZero(t *testing.T) {
	genuine := ComputeCrashRisk(testProfile(), nil, now)
	if genuine.Score != 0 || genuine.FailSafe {
		t.Fatalf("empty ledger should be a genuine zero, got %+v", genuine)
	}

	core, logs := observer.New(zapcore.DebugLevel)
	e := New(DefaultConfig(), logger.NewWithCore(core))

	e.CrashRisk(Input{Profile: testProfile()}, now)
	if logs.FilterMessage("fail-safe score").Len() != 0 {
		t.Error("genuine zero must not log a fail-safe event")
	}

	e.CrashRisk(Input{Profile: nil}, now)
	if logs.FilterMessage("fail-safe score").Len() != 1 {
		t.Error("fail-safe path should log a warning")
	}
}

func TestEmptyLedger(t *testing.T) {
	crash := ComputeCrashRisk(testProfile(), nil, now)
	if crash.Score != 0 {
		t.Errorf("CrashRisk with empty ledger = %v, want 0", crash.Score)
	}

	focus := ComputeCaffScore(testProfile(), nil, now)
	if focus.FailSafe {
		t.Fatalf("unexpected fail-safe: %v", focus.Warnings)
	}
	if v := factorValue(t, focus, factors.NameCurrentLevel); v != 0 {
		t.Errorf("current_level factor = %v, want floor 0", v)
	}
	if focus.Score != 0 {
		t.Errorf("CaffScore with empty ledger = %v, want 0", focus.Score)
	}
}

func TestCrashRiskWithSleepDebt(t *testing.T) {
	e := New(DefaultConfig(), nil)
	in := Input{
		Profile: testProfile(),
		Events:  []*models.DrinkEvent{drinkAt(200, 6*time.Hour)},
		Signals: models.Signals{Sleep: &models.SleepSample{UserID: "u1", Date: now, HoursSlept: 4.5}},
	}

	res := e.CrashRisk(in, now)
	if math.Abs(res.HalfLifeHours-6.0) > 1e-9 {
		t.Errorf("HalfLifeHours = %v, want 6.0", res.HalfLifeHours)
	}
	if res.Score < 60 || res.Score > 70 {
		t.Errorf("Score = %v, want between 60 and 70", res.Score)
	}
	if got := InterpretScore(res.Score).Level; got != LevelHigh {
		t.Errorf("InterpretScore level = %v, want high", got)
	}
}

func TestCrashRiskUsesAverageSleepWithoutSample(t *testing.T) {
	p := testProfile()
	p.CreatedAt = now
	p.AverageSleep7Days = 4.5

	res := ComputeCrashRisk(p, []*models.DrinkEvent{drinkAt(400, 5*time.Hour)}, now)
	if res.FailSafe {
		t.Fatalf("unexpected fail-safe: %v", res.Warnings)
	}
	if got := factorValue(t, res, factors.NameSleepDebt); got <= 0 {
		t.Errorf("sleep_debt = %v, want > 0", got)
	}
	if res.Score <= 0 {
		t.Errorf("Score = %v, want > 0", res.Score)
	}

	p.AverageSleep7Days = 0
	if res := ComputeCrashRisk(p, []*models.DrinkEvent{drinkAt(400, 5*time.Hour)}, now); res.Score != 0 {
		t.Errorf("Score without any sleep data = %v, want 0", res.Score)
	}
}

func TestSleepComponentMonotonic(t *testing.T) {
	e := New(DefaultConfig(), nil)
	prev := -1.0
	for _, slept := range []float64{9, 7.5, 7, 6, 5, 4.5, 3, 1, 0} {
		in := Input{
			Profile: testProfile(),
			Events:  []*models.DrinkEvent{drinkAt(150, 4*time.Hour)},
			Signals: models.Signals{Sleep: &models.SleepSample{UserID: "u1", Date: now, HoursSlept: slept}},
		}
		s := factorValue(t, e.CrashRisk(in, now), factors.NameSleepDebt)
		if s < prev {
			t.Fatalf("sleep component decreased to %v at %vh slept", s, slept)
		}
		prev = s
	}
}

func TestScoresBounded(t *testing.T) {
	e := New(DefaultConfig(), nil)
	profiles := []*models.Profile{testProfile()}

	heavy := testProfile()
	heavy.Sex = models.SexFemale
	heavy.Pregnant = true
	heavy.Medication.Fluvoxamine = true
	heavy.MetabolismRate = models.MetabolismVerySlow
	heavy.Age = 90
	heavy.WeightKg = 30
	profiles = append(profiles, heavy)

	light := testProfile()
	light.Smoker = true
	light.WeightKg = 300
	light.MeanDailyCaffeineMg = 5000
	profiles = append(profiles, light)

	ledgers := [][]*models.DrinkEvent{
		nil,
		{drinkAt(1000, 10*time.Minute)},
		{drinkAt(1000, time.Hour), drinkAt(1000, 2*time.Hour), drinkAt(1000, 3*time.Hour)},
		{drinkAt(50, 5*time.Hour).WithCompletion(10)},
	}
	signals := []models.Signals{
		{},
		{
			Sleep:    &models.SleepSample{UserID: "u1", Date: now, HoursSlept: 0},
			Stress:   &models.StressSample{UserID: "u1", Date: now, Level: 10},
			Meals:    []time.Time{now.Add(-5 * time.Minute)},
			Exercise: models.NewExerciseEvent("u1", models.ExerciseCompleted, now.Add(-15*time.Minute)),
		},
	}

	for _, p := range profiles {
		for _, events := range ledgers {
			for _, sig := range signals {
				for h := 0; h < 24; h += 3 {
					at := now.Add(time.Duration(h) * time.Hour)
					in := Input{Profile: p, Events: events, Signals: sig}
					for _, res := range []*models.ScoreResult{e.CrashRisk(in, at), e.CaffScore(in, at)} {
						if res.FailSafe {
							t.Fatalf("unexpected fail-safe: %v", res.Warnings)
						}
						if math.IsNaN(res.Score) || res.Score < 0 || res.Score > 100 {
							t.Fatalf("%s score %v out of bounds", res.Kind, res.Score)
						}
						for _, f := range res.Factors {
							if math.IsNaN(f.Value) || math.IsInf(f.Value, 0) {
								t.Fatalf("%s factor %s is not finite", res.Kind, f.Name)
							}
						}
					}
				}
			}
		}
	}
}

func TestDeterministic(t *testing.T) {
	e := New(DefaultConfig(), nil)
	in := Input{
		Profile: testProfile(),
		Events:  []*models.DrinkEvent{drinkAt(120, 90*time.Minute), drinkAt(80, 20*time.Minute)},
		Signals: models.Signals{Stress: &models.StressSample{UserID: "u1", Date: now, Level: 7}},
	}

	for _, score := range []func(Input, time.Time) *models.ScoreResult{e.CrashRisk, e.CaffScore} {
		a, b := score(in, now), score(in, now)
		if !reflect.DeepEqual(a, b) {
			t.Fatalf("results differ:\n%+v\n%+v", a, b)
		}
		ja, _ := json.Marshal(a)
		jb, _ := json.Marshal(b)
		if string(ja) != string(jb) {
			t.Fatalf("serialized results differ")
		}
	}
}

func TestValidityStamp(t *testing.T) {
	res := ComputeCaffScore(testProfile(), []*models.DrinkEvent{drinkAt(100, time.Hour)}, now)
	if !res.ComputedAt.Equal(now) || !res.ValidUntil.Equal(now.Add(time.Second)) {
		t.Errorf("stamp = %v..%v, want %v..+1s", res.ComputedAt, res.ValidUntil, now)
	}
	if !res.Fresh(now.Add(500 * time.Millisecond)) {
		t.Error("result should be fresh within the window")
	}
	if res.Fresh(now.Add(time.Second)) {
		t.Error("result should expire after the window")
	}
}

func TestCaffScoreWithCaffeine(t *testing.T) {
	e := New(DefaultConfig(), nil)
	res := e.CaffScore(Input{Profile: testProfile(), Events: []*models.DrinkEvent{drinkAt(150, time.Hour)}}, now)

	if res.FailSafe {
		t.Fatalf("unexpected fail-safe: %v", res.Warnings)
	}
	if res.Score <= 0 {
		t.Errorf("Score = %v, want positive", res.Score)
	}
	if len(res.Factors) != len(focusFactorNames) {
		t.Errorf("Expected %d factors, got %d", len(focusFactorNames), len(res.Factors))
	}
	if res.Score != math.Round(res.Score*10)/10 {
		t.Errorf("Score %v not rounded to one decimal", res.Score)
	}
}

func TestCaffScoreRisingRateUsesTenMinuteStep(t *testing.T) {
	e := New(DefaultConfig(), nil)
	in := Input{Profile: testProfile(), Events: []*models.DrinkEvent{drinkAt(95, 20*time.Minute)}}

	res := e.CaffScore(in, now)
	plateau := factors.SustainedPlateau(in.Events, res.CurrentLevelMg, res.PeakLevelMg, now,
		factors.FoodTiming(nil, now).DurationMultiplier)
	rate := factors.Finite(pharma.RateOfChange(in.Events, res.HalfLifeHours, now, 10*time.Minute))
	want := factors.RisingRate(rate, plateau)

	if got := factorValue(t, res, factors.NameRisingRate); math.Abs(got-want) > 1e-9 {
		t.Errorf("rising_rate = %v, want %v (rate %v mg/min)", got, want, rate)
	}
}

func TestDebugEventsGated(t *testing.T) {
	in := Input{Profile: testProfile(), Events: []*models.DrinkEvent{drinkAt(100, time.Hour)}}

	core, logs := observer.New(zapcore.DebugLevel)
	quiet := New(DefaultConfig(), logger.NewWithCore(core))
	quiet.CrashRisk(in, now)
	if logs.Len() != 0 {
		t.Errorf("Expected no events without debug, got %d", logs.Len())
	}

	cfg := DefaultConfig()
	cfg.Debug = true
	loud := New(cfg, logger.NewWithCore(core))
	loud.CrashRisk(in, now)
	if got := logs.FilterMessage("factor").Len(); got != len(crashFactorNames) {
		t.Errorf("Expected %d factor events, got %d", len(crashFactorNames), got)
	}
	if got := logs.FilterMessage("composite score").Len(); got != 1 {
		t.Errorf("Expected 1 composite event, got %d", got)
	}
}

func TestNewFillsDefaults(t *testing.T) {
	e := New(Config{}, nil)
	cfg := e.Config()
	if cfg.ValidityWindow != time.Second {
		t.Errorf("ValidityWindow = %v, want 1s", cfg.ValidityWindow)
	}
	if cfg.HalfLifeBounds.Min != 2 || cfg.HalfLifeBounds.Max != 15 {
		t.Errorf("HalfLifeBounds = %+v, want [2,15]", cfg.HalfLifeBounds)
	}
}

func TestRiskCurve(t *testing.T) {
	events := []*models.DrinkEvent{drinkAt(200, time.Hour)}
	curve := ComputeRiskCurve(testProfile(), events, now, 3, 15)

	if len(curve) != 13 {
		t.Fatalf("Expected 13 points, got %d", len(curve))
	}
	for i := 1; i < len(curve); i++ {
		if !curve[i].Time.After(curve[i-1].Time) {
			t.Fatalf("curve times not increasing at %d", i)
		}
		if curve[i].LevelMg > curve[i-1].LevelMg {
			t.Fatalf("level rose at %d with a fixed past ledger", i)
		}
		if curve[i].Score < 0 || curve[i].Score > 100 {
			t.Fatalf("score %v out of bounds", curve[i].Score)
		}
	}
	if len(events) != 1 {
		t.Error("ledger must not be modified")
	}
}

func TestRiskCurveDefaultsAndCap(t *testing.T) {
	e := New(DefaultConfig(), nil)
	in := Input{Profile: testProfile()}

	if got := len(e.RiskCurve(in, now, 0, 0)); got != 13 {
		t.Errorf("default curve has %d points, want 13", got)
	}
	if got := len(e.RiskCurve(in, now, 1000*time.Hour, time.Minute)); got != maxCurvePoints {
		t.Errorf("capped curve has %d points, want %d", got, maxCurvePoints)
	}
	if got := e.RiskCurve(Input{}, now, time.Hour, time.Minute); got != nil {
		t.Errorf("invalid input curve = %v, want nil", got)
	}
}

func TestCrashOnset(t *testing.T) {
	curve := []CurvePoint{
		{Time: now, Score: 10},
		{Time: now.Add(15 * time.Minute), Score: 45},
		{Time: now.Add(30 * time.Minute), Score: 61},
		{Time: now.Add(45 * time.Minute), Score: 70},
	}
	p, ok := CrashOnset(curve, HighThreshold)
	if !ok || !p.Time.Equal(now.Add(30*time.Minute)) {
		t.Errorf("CrashOnset = %+v, %v", p, ok)
	}
	if _, ok := CrashOnset(curve[:2], HighThreshold); ok {
		t.Error("Expected no onset")
	}
}

func TestInterpret(t *testing.T) {
	tests := []struct {
		score float64
		want  Level
	}{
		{0, LevelLow},
		{29.9, LevelLow},
		{30, LevelMedium},
		{59.9, LevelMedium},
		{60, LevelHigh},
		{100, LevelHigh},
		{math.NaN(), LevelLow},
	}
	for _, tt := range tests {
		if got := InterpretScore(tt.score); got.Level != tt.want || got.Advisory == "" {
			t.Errorf("InterpretScore(%v) = %+v, want %v", tt.score, got, tt.want)
		}
		if got := InterpretFocus(tt.score); got.Level != tt.want || got.Advisory == "" {
			t.Errorf("InterpretFocus(%v) = %+v, want %v", tt.score, got, tt.want)
		}
	}
}

func TestRoundScore(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-5, 0},
		{math.NaN(), 0},
		{math.Inf(1), 100},
		{120, 100},
		{42.36, 42.4},
		{42.34, 42.3},
	}
	for _, tt := range tests {
		if got := roundScore(tt.in); got != tt.want {
			t.Errorf("roundScore(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
