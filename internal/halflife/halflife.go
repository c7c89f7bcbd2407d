// ABOUTME: Personalized caffeine elimination half-life calculator.
// ABOUTME: Applies ordered physiological and contextual multipliers to a 5h baseline.
package halflife

import (
	"math"
	"time"

	"github.com/harperreed/caff/internal/models"
)

// Baseline is the population half-life in hours before any modifier.
const Baseline = 5.0

// Bounds is the inclusive clamp applied to the final half-life.
type Bounds struct {
	Min float64
	Max float64
}

var (
	// DefaultBounds is the clamp used unless configuration says otherwise.
	DefaultBounds  = Bounds{Min: 2, Max: 15}
	// ExtendedBounds allows the long half-lives of strong CYP1A2 inhibition.
	ExtendedBounds = Bounds{Min: 2, Max: 24}
)

// Valid reports whether the bounds describe a usable positive range.
func (b Bounds) Valid() bool {
	return b.Min > 0 && b.Max >= b.Min && !math.IsInf(b.Max, 0) && !math.IsNaN(b.Min) && !math.IsNaN(b.Max)
}

func (b Bounds) clamp(v float64) float64 {
	if math.IsNaN(v) {
		return math.Max(b.Min, math.Min(Baseline, b.Max))
	}
	return math.Max(b.Min, math.Min(v, b.Max))
}

// Context carries the transient inputs. Nil fields are simply not applied.
type Context struct {
	At             time.Time
	SleepDebtHours *float64
	StressLevel    *int
	Exercise       *models.ExerciseEvent
}

// Modifier is one applied multiplier, kept for debug breakdowns.
type Modifier struct {
	Name       string
	Multiplier float64
}

// Result is the clamped half-life together with every multiplier applied.
type Result struct {
	Hours     float64
	Raw       float64
	Modifiers []Modifier
}

// Calculate returns only the clamped half-life in hours.
func Calculate(p *models.Profile, ctx Context, b Bounds) float64 {
	return Compute(p, ctx, b).Hours
}

// Compute applies the modifiers in order: age, smoking, pregnancy, oral
// contraceptives, medication, metabolism, sleep debt, stress, exercise.
// Invalid bounds fall back to DefaultBounds. A nil profile yields the baseline.
func Compute(p *models.Profile, ctx Context, b Bounds) Result {
	if !b.Valid() {
		b = DefaultBounds
	}
	res := Result{Raw: Baseline}
	if p == nil {
		res.Hours = b.clamp(Baseline)
		return res
	}

	apply := func(name string, m float64) {
		if m == 1 {
			return
		}
		res.Raw *= m
		res.Modifiers = append(res.Modifiers, Modifier{Name: name, Multiplier: m})
	}

	apply("age", AgeMultiplier(p.Age))
	if p.Smoker {
		apply("smoker", SmokerMultiplier)
	}
	if p.Pregnant {
		apply("pregnant", PregnancyMultiplier)
	}
	if p.OralContraceptives {
		apply("oral_contraceptives", ContraceptiveMultiplier)
	}
	apply("medication", MedicationMultiplier(p.Medication))
	apply("metabolism", MetabolismMultiplier(p.Metabolism()))

	if ctx.SleepDebtHours != nil {
		apply("sleep_debt", SleepDebtMultiplier(*ctx.SleepDebtHours))
	}
	if ctx.StressLevel != nil {
		apply("stress", StressMultiplier(*ctx.StressLevel))
	}
	if ctx.Exercise != nil {
		apply("exercise", ExerciseMultiplier(ctx.Exercise, ctx.At))
	}

	res.Hours = b.clamp(res.Raw)
	return res
}

const (
	SmokerMultiplier        = 0.65
	PregnancyMultiplier     = 2.25
	ContraceptiveMultiplier = 1.4

	FluvoxamineMultiplier    = 8.0
	CiprofloxacinMultiplier  = 2.5
	OtherInhibitorMultiplier = 1.5

	maxAgeMultiplier = 1.8
)

// AgeMultiplier slows clearance progressively above 30: 1%/yr to 50,
// 1.5%/yr to 70, 2%/yr beyond, capped at 1.8.
func AgeMultiplier(age int) float64 {
	a := float64(age)
	var m float64
	switch {
	case a <= 30:
		return 1.0
	case a <= 50:
		m = 1.0 + 0.01*(a-30)
	case a <= 70:
		m = 1.2 + 0.015*(a-50)
	default:
		m = 1.5 + 0.02*(a-70)
	}
	return math.Min(m, maxAgeMultiplier)
}

// MedicationMultiplier returns the strongest applicable CYP1A2 inhibitor
// multiplier. Inhibitors are never stacked.
func MedicationMultiplier(med models.Medication) float64 {
	switch {
	case med.Fluvoxamine:
		return FluvoxamineMultiplier
	case med.Ciprofloxacin:
		return CiprofloxacinMultiplier
	case med.OtherCYP1A2Inhibitor:
		return OtherInhibitorMultiplier
	default:
		return 1.0
	}
}

// MetabolismMultiplier maps the self-reported rate onto [0.6, 1.6].
func MetabolismMultiplier(rate models.MetabolismRate) float64 {
	switch rate {
	case models.MetabolismVerySlow:
		return 1.6
	case models.MetabolismSlow:
		return 1.3
	case models.MetabolismFast:
		return 0.8
	case models.MetabolismVeryFast:
		return 0.6
	default:
		return 1.0
	}
}

// SleepDebtMultiplier slows clearance by up to 30%: minimal debt (<1h) adds
// 5%/h, moderate (1-3h) 7.5%/h, severe (>3h) 5%/h until the cap.
func SleepDebtMultiplier(debtHours float64) float64 {
	d := debtHours
	switch {
	case math.IsNaN(d) || d <= 0:
		return 1.0
	case d < 1:
		return 1.0 + 0.05*d
	case d < 3:
		return 1.05 + 0.075*(d-1)
	default:
		return math.Min(1.30, 1.20+0.05*(d-3))
	}
}

// StressMultiplier slows clearance for stress above 3: 4%/level through 6,
// then 4.75%/level to +31% at 10.
func StressMultiplier(level int) float64 {
	s := float64(level)
	switch {
	case s <= 3:
		return 1.0
	case s <= 6:
		return 1.0 + 0.04*(s-3)
	default:
		return 1.12 + 0.0475*(math.Min(s, 10)-6)
	}
}

// exerciseWindow is how long an exercise event keeps affecting clearance.
const exerciseWindow = 240.0

// ExerciseMultiplier speeds clearance by up to 20%. While exercising the full
// effect holds for an hour then fades linearly; after a completed session it
// fades quadratically. Both reach baseline four hours after the event.
func ExerciseMultiplier(e *models.ExerciseEvent, at time.Time) float64 {
	if e == nil {
		return 1.0
	}
	m := at.Sub(e.Timestamp).Minutes()
	if m < 0 || m >= exerciseWindow {
		return 1.0
	}
	switch e.Phase {
	case models.ExerciseStarting:
		if m <= 60 {
			return 0.80
		}
		return 0.80 + 0.20*(m-60)/(exerciseWindow-60)
	case models.ExerciseCompleted:
		f := 1 - m/exerciseWindow
		return 1.0 - 0.20*f*f
	default:
		return 1.0
	}
}
