package engine

import (
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-buddy-progression/pkg/boost"
	"github.com/AccelByte/extend-buddy-progression/pkg/decay"
	"github.com/AccelByte/extend-buddy-progression/pkg/leveling"
	"github.com/AccelByte/extend-buddy-progression/pkg/signal"
	"github.com/AccelByte/extend-buddy-progression/pkg/state"
	"github.com/AccelByte/extend-buddy-progression/pkg/survey"
)

const (
	OnboardingXP = 50

	// SleepDebtDrain is the per-hour sub-stat loss per point of sleep debt
	SleepDebtDrain = 0.1
	// MentalDrainFactor scales sleep-debt drain on the mental sub-stat
	MentalDrainFactor = 1.5

	LowHealthThreshold = 20.0
	LongAbsenceHours   = 12
)

// Onboarding is the payload submitted once when a user creates their buddy
type Onboarding struct {
	Profile    state.Profile   `json:"profile"`
	Survey     state.Survey    `json:"survey"`
	Medication MedicationSetup `json:"medication"`
}

// MedicationSetup is the medication tracking choice made at onboarding
type MedicationSetup struct {
	Enabled     bool `json:"enabled"`
	DosesPerDay int  `json:"dosesPerDay"`
}

// Onboard builds the initial state from the survey: sub-stats from the
// scores, health from the overall baseline, a starter habit and a little XP.
func (e *Engine) Onboard(in Onboarding, now time.Time) Result {
	now = now.In(e.calendar.Location())
	scores := survey.Score(in.Survey)
	answers := in.Survey

	s := state.NewBuddyState()
	s.Profile = in.Profile
	s.Survey = &answers
	s.SubStats = scores.SubStats()
	s.Health = float64(scores.Overall)
	s.XP = OnboardingXP
	s.Level = leveling.LevelForXP(s.XP)
	s.Medication = medicationSetup(in.Medication.Enabled, in.Medication.DosesPerDay)
	s.Habits = []state.Habit{{ID: e.newID(), Name: DefaultHabitName, CreatedAt: now}}
	s.LastActive = now
	s.OnboardedAt = now

	o := e.begin(s, now)
	o.signals = append([]signal.Signal{signal.New(signal.ReasonOnboardingComplete, o.now, nil)}, o.signals...)

	logrus.Infof("buddy %q onboarded with baseline %d", in.Profile.BuddyName, scores.Overall)
	return o.done(true)
}

// Open records an app open. The first open greets the user.
func (e *Engine) Open(s *state.BuddyState, now time.Time) Result {
	o := e.begin(s, now)

	if o.next.OpenCount == 0 {
		o.emit(signal.ReasonWelcome, nil)
	}
	o.next.OpenCount++
	o.next.LastOpened = o.now

	return o.done(true)
}

// Tick applies decay for every whole hour elapsed since the last tick.
// Calling it again with the same now is a no-op, so a scheduled tick and an
// offline catch-up can share it without double counting.
func (e *Engine) Tick(s *state.BuddyState, now time.Time) Result {
	before := s
	if before == nil {
		before = state.NewBuddyState()
	}
	o := e.begin(before, now)
	rolled := len(o.signals) > 0 || rollChanged(before, o.next)

	if o.next.LastActive.IsZero() {
		o.next.LastActive = o.now
		return o.done(true)
	}

	hours := int(math.Floor(o.now.Sub(o.next.LastActive).Hours()))
	if hours <= 0 {
		return o.done(rolled)
	}

	startHealth := o.next.Health
	breakdown := decay.Compute(o.next, o.now)
	loss := float64(hours) * breakdown.Rate
	drain := float64(hours) * float64(o.next.SleepDebt) * SleepDebtDrain

	// XP is untouched, so the level cannot change here.
	next, _ := boost.Apply(o.next, -loss, 0, boost.Drain(drain, MentalDrainFactor))
	o.next = next
	// Advance by whole hours so the fractional remainder carries to the next tick.
	o.next.LastActive = o.next.LastActive.Add(time.Duration(hours) * time.Hour)

	health := o.next.Health
	if startHealth >= LowHealthThreshold && health < LowHealthThreshold {
		o.emit(signal.ReasonLowHealth, map[string]interface{}{signal.MetaHealth: health})
	} else if startHealth >= state.GrumpyHealth && health < state.GrumpyHealth {
		o.emit(signal.ReasonReminder, map[string]interface{}{signal.MetaHealth: health})
	}
	if hours >= LongAbsenceHours {
		o.emit(signal.ReasonLongAbsence, map[string]interface{}{signal.MetaHours: hours})
	}

	logrus.Debugf("tick: %d hour(s) at rate %.3f, health %.2f -> %.2f", hours, breakdown.Rate, startHealth, health)
	return o.done(true)
}

func rollChanged(before, after *state.BuddyState) bool {
	if before.Medication.DosesTakenToday != after.Medication.DosesTakenToday {
		return true
	}
	if before.DecayMultiplier != after.DecayMultiplier {
		return true
	}
	if !before.LastWeatherCheck.Equal(after.LastWeatherCheck) {
		return true
	}
	for i := range before.Habits {
		if before.Habits[i].NegativeStreak != after.Habits[i].NegativeStreak {
			return true
		}
	}
	return false
}

// SelectCustomization equips an unlocked customization. An empty id takes
// the current one off. Locked or unknown ids are ignored.
func (e *Engine) SelectCustomization(s *state.BuddyState, id string, now time.Time) Result {
	o := e.begin(s, now)

	if id == "" {
		o.next.ActiveCustomizationID = nil
		return o.done(true)
	}
	if _, ok := leveling.Lookup(id); !ok || !o.next.HasUnlocked(id) {
		logrus.Debugf("customization %s is not unlocked", id)
		return o.done(false)
	}

	o.next.ActiveCustomizationID = &id
	return o.done(true)
}
