// Package decay computes how fast the buddy loses health per elapsed hour.
package decay

import (
	"math"
	"time"

	"github.com/AccelByte/extend-buddy-progression/pkg/state"
)

const (
	BaseRate                 = 1.0
	IncompleteCompulsoryRate = 2.0
	LowSubStatPenalty        = 0.5
	LowSubStatThreshold      = 50.0
	SleepDebtPenalty         = 0.25
	MissedDosePenalty        = 1.0

	HighSedentaryHours  = 10.0
	LowSedentaryHours   = 4.0
	HighSedentaryFactor = 1.5
	LowSedentaryFactor  = 0.75
)

// Breakdown is the itemized hourly decay rate
type Breakdown struct {
	Base            float64 `json:"base"`
	GutPenalty      float64 `json:"gutPenalty"`
	ActivityPenalty float64 `json:"activityPenalty"`
	SleepPenalty    float64 `json:"sleepPenalty"`
	MedsPenalty     float64 `json:"medsPenalty"`
	SedentaryFactor float64 `json:"sedentaryFactor"`
	Multiplier      float64 `json:"multiplier"`
	Rate            float64 `json:"rate"`
}

// Compute itemizes the hourly decay rate of s at now. The additive risk
// terms are summed, then scaled by the sedentary factor and the booster
// multiplier.
func Compute(s *state.BuddyState, now time.Time) Breakdown {
	b := Breakdown{
		Base:            BaseRate,
		SedentaryFactor: SedentaryFactor(s.Survey),
		Multiplier:      s.DecayMultiplier,
	}

	if s.HasIncompleteCompulsory() {
		b.Base = IncompleteCompulsoryRate
	}
	if s.SubStats.Gut < LowSubStatThreshold {
		b.GutPenalty = LowSubStatPenalty
	}
	if s.SubStats.Activity < LowSubStatThreshold {
		b.ActivityPenalty = LowSubStatPenalty
	}
	b.SleepPenalty = float64(s.SleepDebt) * SleepDebtPenalty
	if MissedDose(s.Medication, now) {
		b.MedsPenalty = MissedDosePenalty
	}

	sum := b.Base + b.GutPenalty + b.ActivityPenalty + b.SleepPenalty + b.MedsPenalty
	b.Rate = math.Max(0, sum*b.SedentaryFactor*b.Multiplier)
	return b
}

// Rate returns the health lost per elapsed hour
func Rate(s *state.BuddyState, now time.Time) float64 {
	return Compute(s, now).Rate
}

// ExpectedDoses is the number of doses due by the hour of day of now,
// with doses spaced evenly across 24 hours.
func ExpectedDoses(dosesPerDay int, now time.Time) int {
	if dosesPerDay <= 0 {
		return 0
	}
	interval := 24.0 / float64(dosesPerDay)
	return int(math.Floor(float64(now.Hour()) / interval))
}

// MissedDose reports whether fewer doses were taken than are due by now
func MissedDose(med state.MedicationState, now time.Time) bool {
	if !med.Enabled || med.DosesPerDay <= 0 {
		return false
	}
	return ExpectedDoses(med.DosesPerDay, now) > med.DosesTakenToday
}

// SedentaryFactor scales decay by the sedentary hours reported at onboarding
func SedentaryFactor(survey *state.Survey) float64 {
	if survey == nil {
		return 1
	}
	switch {
	case survey.SedentaryHours > HighSedentaryHours:
		return HighSedentaryFactor
	case survey.SedentaryHours < LowSedentaryHours:
		return LowSedentaryFactor
	default:
		return 1
	}
}
