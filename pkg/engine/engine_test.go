package engine

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/AccelByte/extend-buddy-progression/pkg/state"
)

// day0 is a Monday morning; tests step forward from here
var day0 = time.Date(2025, 5, 5, 9, 0, 0, 0, time.UTC)

func newTestEngine(weather string) *Engine {
	n := 0
	return New(
		WithLocation(time.UTC),
		WithWeather(StaticWeather(weather)),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("habit-%d", n)
		}),
	)
}

// onboarded returns a healthy onboarded buddy with one positive habit
// "h-walk", one water habit "h-water" and one negative habit "h-smoke"
func onboarded() *state.BuddyState {
	s := state.NewBuddyState()
	s.Health = 80
	s.XP = 50
	s.SubStats = state.SubStats{Hydration: 60, Activity: 60, Mental: 60, Gut: 60, Overall: 60}
	s.OnboardedAt = day0.AddDate(0, 0, -30)
	s.LastActive = day0
	s.LastWeatherCheck = day0
	s.Habits = []state.Habit{
		{ID: "h-walk", Name: "Morning walk", CreatedAt: day0.AddDate(0, 0, -30)},
		{ID: "h-water", Name: "Drink Water", CreatedAt: day0.AddDate(0, 0, -30)},
		{ID: "h-smoke", Name: "Smoking", IsNegative: true, CreatedAt: day0.AddDate(0, 0, -3)},
	}
	return s
}

func TestNew_Defaults(t *testing.T) {
	e := New()

	if e.Calendar().Location() != time.UTC {
		t.Errorf("default location = %v, expected UTC", e.Calendar().Location())
	}
	if got := e.weather.Condition(day0); got != "mild" {
		t.Errorf("default weather = %q, expected mild", got)
	}
	if a, b := e.newID(), e.newID(); a == "" || a == b {
		t.Errorf("default ids %q, %q should be unique", a, b)
	}
}

func TestOperations_DoNotMutateInput(t *testing.T) {
	e := newTestEngine("cold")
	ops := map[string]func(s *state.BuddyState) Result{
		"CompleteHabit":       func(s *state.BuddyState) Result { return e.CompleteHabit(s, "h-walk", day0.Add(time.Hour)) },
		"Relapse":             func(s *state.BuddyState) Result { return e.CompleteHabit(s, "h-smoke", day0.Add(time.Hour)) },
		"AddHabit":            func(s *state.BuddyState) Result { return e.AddHabit(s, "Read", false, day0) },
		"LogVitamins":         func(s *state.BuddyState) Result { return e.LogVitamins(s, day0) },
		"LogPhysicalActivity": func(s *state.BuddyState) Result { return e.LogPhysicalActivity(s, day0) },
		"LogSleep":            func(s *state.BuddyState) Result { return e.LogSleep(s, 4, 8, day0) },
		"ToggleMedication":    func(s *state.BuddyState) Result { return e.ToggleMedication(s, true, 2, day0) },
		"Tick":                func(s *state.BuddyState) Result { return e.Tick(s, day0.Add(30*time.Hour)) },
		"Open":                func(s *state.BuddyState) Result { return e.Open(s, day0) },
	}

	for name, run := range ops {
		t.Run(name, func(t *testing.T) {
			s := onboarded()
			before := s.Clone()

			res := run(s)

			if !reflect.DeepEqual(s, before) {
				t.Errorf("%s mutated its input", name)
			}
			if res.State == s {
				t.Errorf("%s returned the input pointer", name)
			}
		})
	}
}

func TestOperations_NilState(t *testing.T) {
	e := newTestEngine("mild")

	res := e.LogVitamins(nil, day0)
	if res.State == nil {
		t.Fatal("LogVitamins(nil) returned nil state")
	}
	if !res.Applied {
		t.Error("LogVitamins on a fresh state should apply")
	}
}

func TestInvariants_HoldAcrossOperations(t *testing.T) {
	e := newTestEngine("cold")
	s := onboarded()
	s.Medication = state.MedicationState{Enabled: true, DosesPerDay: 2}

	now := day0
	steps := []func(*state.BuddyState) Result{
		func(s *state.BuddyState) Result { return e.CompleteHabit(s, "h-walk", now) },
		func(s *state.BuddyState) Result { return e.CompleteHabit(s, "h-smoke", now) },
		func(s *state.BuddyState) Result { return e.LogSleep(s, 1, 3, now) },
		func(s *state.BuddyState) Result { return e.LogMedicationDose(s, now) },
		func(s *state.BuddyState) Result { return e.LogMedicationDose(s, now) },
		func(s *state.BuddyState) Result { return e.LogMedicationDose(s, now) },
		func(s *state.BuddyState) Result { return e.LogVitamins(s, now) },
		func(s *state.BuddyState) Result { return e.Tick(s, now) },
	}

	for day := 0; day < 40; day++ {
		for i, step := range steps {
			now = day0.AddDate(0, 0, day).Add(time.Duration(i) * time.Hour)
			s = step(s).State
			assertInvariants(t, s, fmt.Sprintf("day %d step %d", day, i))
		}
	}
}

func assertInvariants(t *testing.T, s *state.BuddyState, where string) {
	t.Helper()

	if s.Health < 0 || s.Health > 100 {
		t.Fatalf("%s: health %v out of range", where, s.Health)
	}
	for name, v := range map[string]float64{
		"hydration": s.SubStats.Hydration, "activity": s.SubStats.Activity,
		"mental": s.SubStats.Mental, "gut": s.SubStats.Gut,
	} {
		if v < 0 || v > 100 {
			t.Fatalf("%s: %s %v out of range", where, name, v)
		}
	}
	ss := s.SubStats
	ss.Recompute()
	if ss.Overall != s.SubStats.Overall {
		t.Fatalf("%s: overall %d, expected %d", where, s.SubStats.Overall, ss.Overall)
	}
	if s.XP < 0 {
		t.Fatalf("%s: xp %d negative", where, s.XP)
	}
	if s.DecayMultiplier < state.MinDecayMultiplier {
		t.Fatalf("%s: decay multiplier %v below floor", where, s.DecayMultiplier)
	}
	if s.Medication.Enabled && s.Medication.DosesTakenToday > s.Medication.DosesPerDay {
		t.Fatalf("%s: %d doses taken of %d", where, s.Medication.DosesTakenToday, s.Medication.DosesPerDay)
	}
	if len(s.SleepLogs) > state.MaxSleepLogs {
		t.Fatalf("%s: %d sleep logs", where, len(s.SleepLogs))
	}
}

func TestSnapshot(t *testing.T) {
	e := newTestEngine("mild")
	s := onboarded()

	snap := e.Snapshot(s)
	snap.Habits[0].Name = "changed"

	if s.Habits[0].Name == "changed" {
		t.Error("Snapshot() must be a deep copy")
	}
	if e.Snapshot(nil) == nil {
		t.Error("Snapshot(nil) should return a fresh state")
	}
}

func TestRotatingWeather(t *testing.T) {
	w := RotatingWeather{"cold", "mild"}

	a := w.Condition(day0)
	b := w.Condition(day0.AddDate(0, 0, 1))
	if a == b {
		t.Errorf("consecutive days reported the same weather %q", a)
	}
	if got := (RotatingWeather{}).Condition(day0); got != "" {
		t.Errorf("empty rotation = %q, expected empty", got)
	}
}
