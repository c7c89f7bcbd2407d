// ABOUTME: Profile model describing the physiology behind caffeine clearance.
// ABOUTME: Defines sex, metabolism rate, and CYP1A2 medication flags.
package models

import "time"

// Sex is the biological sex used by the metabolic modifiers.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// MetabolismRate is the self-reported caffeine metabolism speed.
type MetabolismRate string

const (
	MetabolismVerySlow MetabolismRate = "very_slow"
	MetabolismSlow     MetabolismRate = "slow"
	MetabolismMedium   MetabolismRate = "medium"
	MetabolismFast     MetabolismRate = "fast"
	MetabolismVeryFast MetabolismRate = "very_fast"
)

// AllMetabolismRates lists the valid metabolism rates, slowest first.
var AllMetabolismRates = []MetabolismRate{
	MetabolismVerySlow, MetabolismSlow, MetabolismMedium, MetabolismFast, MetabolismVeryFast,
}

// IsValidMetabolismRate checks if a string is a valid metabolism rate.
func IsValidMetabolismRate(s string) bool {
	for _, r := range AllMetabolismRates {
		if string(r) == s {
			return true
		}
	}
	return false
}

// Medication holds the CYP1A2 inhibitor flags. Only the strongest one applies.
type Medication struct {
	Fluvoxamine          bool `json:"fluvoxamine" yaml:"fluvoxamine"`
	Ciprofloxacin        bool `json:"ciprofloxacin" yaml:"ciprofloxacin"`
	OtherCYP1A2Inhibitor bool `json:"other_cyp1a2_inhibitor" yaml:"other_cyp1a2_inhibitor"`
}

// Profile is the per-user physiological profile collected at onboarding.
type Profile struct {
	UserID              string         `json:"user_id" yaml:"user_id" validate:"required"`
	WeightKg            float64        `json:"weight_kg" yaml:"weight_kg" validate:"required,gte=30,lte=300"`
	Age                 int            `json:"age" yaml:"age" validate:"required,gte=13,lte=120"`
	Sex                 Sex            `json:"sex" yaml:"sex" validate:"required,oneof=male female"`
	Smoker              bool           `json:"smoker" yaml:"smoker"`
	Pregnant            bool           `json:"pregnant" yaml:"pregnant"`
	OralContraceptives  bool           `json:"oral_contraceptives" yaml:"oral_contraceptives"`
	Medication          Medication     `json:"medication" yaml:"medication"`
	MetabolismRate      MetabolismRate `json:"metabolism_rate,omitempty" yaml:"metabolism_rate,omitempty" validate:"omitempty,oneof=very_slow slow medium fast very_fast"`
	AverageSleep7Days   float64        `json:"average_sleep_7_days" yaml:"average_sleep_7_days" validate:"gte=0,lte=16"`
	MeanDailyCaffeineMg float64        `json:"mean_daily_caffeine_mg" yaml:"mean_daily_caffeine_mg" validate:"gte=0,lte=5000"`
	CreatedAt           time.Time      `json:"created_at" yaml:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at" yaml:"updated_at"`
}

// NewProfile creates a Profile with creation timestamps set to now.
func NewProfile(userID string, weightKg float64, age int, sex Sex) *Profile {
	now := time.Now()
	return &Profile{
		UserID:         userID,
		WeightKg:       weightKg,
		Age:            age,
		Sex:            sex,
		MetabolismRate: MetabolismMedium,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Metabolism returns the metabolism rate, treating an empty value as medium.
func (p *Profile) Metabolism() MetabolismRate {
	if p.MetabolismRate == "" {
		return MetabolismMedium
	}
	return p.MetabolismRate
}

// HistoryDays returns how many whole days the profile has existed at t.
func (p *Profile) HistoryDays(t time.Time) int {
	if p.CreatedAt.IsZero() || t.Before(p.CreatedAt) {
		return 0
	}
	return int(t.Sub(p.CreatedAt).Hours() / 24)
}

// Touch bumps UpdatedAt after a settings edit.
func (p *Profile) Touch() *Profile {
	p.UpdatedAt = time.Now()
	return p
}
