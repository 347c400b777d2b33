package streak

import (
	"testing"
	"time"

	"github.com/AccelByte/extend-buddy-progression/pkg/state"
)

func TestCompulsoryHabitsFor(t *testing.T) {
	tests := []struct {
		condition string
		ids       []string
	}{
		{"cold", []string{"compulsory-cold"}},
		{" Cold ", []string{"compulsory-cold"}},
		{"rainy", []string{"compulsory-rainy"}},
		{"hot", []string{"compulsory-hot"}},
		{"mild", nil},
		{"volcanic", nil},
	}

	for _, tt := range tests {
		got := CompulsoryHabitsFor(tt.condition)
		if len(got) != len(tt.ids) {
			t.Errorf("CompulsoryHabitsFor(%q) = %+v, expected ids %v", tt.condition, got, tt.ids)
			continue
		}
		for i := range got {
			if got[i].ID != tt.ids[i] || got[i].Completed {
				t.Errorf("CompulsoryHabitsFor(%q)[%d] = %+v", tt.condition, i, got[i])
			}
		}
	}
}

func TestCompulsoryHabitsFor_ReturnsCopy(t *testing.T) {
	first := CompulsoryHabitsFor("cold")
	first[0].Completed = true

	if second := CompulsoryHabitsFor("cold"); second[0].Completed {
		t.Error("table entries must not be shared between calls")
	}
}

func TestResetDoses(t *testing.T) {
	cal := NewCalendar(time.UTC)

	tests := []struct {
		name     string
		taken    int
		lastDose time.Time
		now      time.Time
		changed  bool
		expected int
	}{
		{"same day", 2, day0, day0.Add(3 * time.Hour), false, 2},
		{"next day", 2, day0, day0.AddDate(0, 0, 1), true, 0},
		{"nothing taken", 0, day0, day0.AddDate(0, 0, 1), false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := state.NewBuddyState()
			s.Medication = state.MedicationState{Enabled: true, DosesPerDay: 3, DosesTakenToday: tt.taken}
			s.LastMedDoseTimestamp = tt.lastDose

			if changed := cal.ResetDoses(s, tt.now); changed != tt.changed {
				t.Errorf("ResetDoses() = %v, expected %v", changed, tt.changed)
			}
			if s.Medication.DosesTakenToday != tt.expected {
				t.Errorf("DosesTakenToday = %d, expected %d", s.Medication.DosesTakenToday, tt.expected)
			}
		})
	}
}

func TestRefreshCompulsory(t *testing.T) {
	cal := NewCalendar(time.UTC)
	s := state.NewBuddyState()
	s.CompulsoryHabits = []state.CompulsoryHabit{{ID: "compulsory-rainy", Completed: true}}

	if !cal.NeedsCompulsoryRefresh(s, day0) {
		t.Fatal("never-checked state should need a refresh")
	}

	cal.RefreshCompulsory(s, WeatherCold, day0)

	if len(s.CompulsoryHabits) != 1 || s.CompulsoryHabits[0].ID != "compulsory-cold" {
		t.Errorf("CompulsoryHabits = %+v, expected the cold habit only", s.CompulsoryHabits)
	}
	if !s.LastWeatherCheck.Equal(day0) {
		t.Errorf("LastWeatherCheck = %v, expected %v", s.LastWeatherCheck, day0)
	}
	if cal.NeedsCompulsoryRefresh(s, day0.Add(5*time.Hour)) {
		t.Error("refresh should be needed at most once per day")
	}
	if !cal.NeedsCompulsoryRefresh(s, day0.AddDate(0, 0, 1)) {
		t.Error("refresh should be needed on the next day")
	}
}
