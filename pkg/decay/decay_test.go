package decay

import (
	"testing"
	"time"

	"github.com/AccelByte/extend-buddy-progression/pkg/state"
)

// healthyState has no active risk terms: rate is exactly BaseRate
func healthyState() *state.BuddyState {
	s := state.NewBuddyState()
	s.SubStats = state.SubStats{Hydration: 80, Activity: 80, Mental: 80, Gut: 80, Overall: 80}
	return s
}

var noon = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestRate_Baseline(t *testing.T) {
	if got := Rate(healthyState(), noon); got != 1 {
		t.Errorf("Rate() = %v, expected 1", got)
	}
}

func TestCompute_Terms(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(s *state.BuddyState)
		expected float64
	}{
		{"incomplete compulsory habit", func(s *state.BuddyState) {
			s.CompulsoryHabits = []state.CompulsoryHabit{{ID: "c"}}
		}, 2},
		{"completed compulsory habit", func(s *state.BuddyState) {
			s.CompulsoryHabits = []state.CompulsoryHabit{{ID: "c", Completed: true}}
		}, 1},
		{"low gut", func(s *state.BuddyState) { s.SubStats.Gut = 49 }, 1.5},
		{"low activity", func(s *state.BuddyState) { s.SubStats.Activity = 10 }, 1.5},
		{"gut at threshold", func(s *state.BuddyState) { s.SubStats.Gut = 50 }, 1},
		{"sleep debt", func(s *state.BuddyState) { s.SleepDebt = 3 }, 1.75},
		{"missed dose", func(s *state.BuddyState) {
			s.Medication = state.MedicationState{Enabled: true, DosesPerDay: 2}
		}, 2},
		{"doses on schedule", func(s *state.BuddyState) {
			s.Medication = state.MedicationState{Enabled: true, DosesPerDay: 2, DosesTakenToday: 1}
		}, 1},
		{"medication disabled", func(s *state.BuddyState) {
			s.Medication = state.MedicationState{DosesPerDay: 2}
		}, 1},
		{"high sedentary", func(s *state.BuddyState) {
			s.Survey = &state.Survey{SedentaryHours: 12}
		}, 1.5},
		{"low sedentary", func(s *state.BuddyState) {
			s.Survey = &state.Survey{SedentaryHours: 2}
		}, 0.75},
		{"booster multiplier", func(s *state.BuddyState) { s.DecayMultiplier = 0.5625 }, 0.5625},
		{"everything", func(s *state.BuddyState) {
			s.CompulsoryHabits = []state.CompulsoryHabit{{ID: "c"}}
			s.SubStats.Gut = 0
			s.SubStats.Activity = 0
			s.SleepDebt = 2
			s.Medication = state.MedicationState{Enabled: true, DosesPerDay: 4}
			s.Survey = &state.Survey{SedentaryHours: 11}
			s.DecayMultiplier = 0.5
		}, (2 + 0.5 + 0.5 + 0.5 + 1) * 1.5 * 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := healthyState()
			tt.mutate(s)
			if got := Rate(s, noon); got != tt.expected {
				t.Errorf("Rate() = %v, expected %v (breakdown %+v)", got, tt.expected, Compute(s, noon))
			}
		})
	}
}

func TestRate_Monotonic(t *testing.T) {
	risks := []func(s *state.BuddyState){
		func(s *state.BuddyState) { s.CompulsoryHabits = append(s.CompulsoryHabits, state.CompulsoryHabit{ID: "c"}) },
		func(s *state.BuddyState) { s.SubStats.Gut = 20 },
		func(s *state.BuddyState) { s.SleepDebt++ },
		func(s *state.BuddyState) { s.Medication = state.MedicationState{Enabled: true, DosesPerDay: 3} },
	}

	for i, risk := range risks {
		s := healthyState()
		before := Rate(s, noon)
		risk(s)
		if after := Rate(s, noon); after <= before {
			t.Errorf("risk %d: Rate() = %v, expected more than %v", i, after, before)
		}
	}
}

func TestExpectedDoses(t *testing.T) {
	tests := []struct {
		dosesPerDay int
		hour        int
		expected    int
	}{
		{0, 23, 0},
		{1, 23, 0},
		{2, 11, 0},
		{2, 12, 1},
		{3, 7, 0},
		{3, 8, 1},
		{3, 16, 2},
		{4, 23, 3},
	}

	for _, tt := range tests {
		now := time.Date(2025, 6, 1, tt.hour, 30, 0, 0, time.UTC)
		if got := ExpectedDoses(tt.dosesPerDay, now); got != tt.expected {
			t.Errorf("ExpectedDoses(%d, %02d:30) = %d, expected %d", tt.dosesPerDay, tt.hour, got, tt.expected)
		}
	}
}

func TestSedentaryFactor(t *testing.T) {
	tests := []struct {
		survey   *state.Survey
		expected float64
	}{
		{nil, 1},
		{&state.Survey{SedentaryHours: 10}, 1},
		{&state.Survey{SedentaryHours: 10.5}, 1.5},
		{&state.Survey{SedentaryHours: 4}, 1},
		{&state.Survey{SedentaryHours: 3.9}, 0.75},
	}

	for _, tt := range tests {
		if got := SedentaryFactor(tt.survey); got != tt.expected {
			t.Errorf("SedentaryFactor(%+v) = %v, expected %v", tt.survey, got, tt.expected)
		}
	}
}
