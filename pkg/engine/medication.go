package engine

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-buddy-progression/pkg/state"
)

const (
	DoseHealthReward = 10.0
	DoseXPReward     = 50

	MaxDosesPerDay = 24
)

// LogMedicationDose records one dose. Ignored when tracking is disabled or
// today's quota is already met. The final dose of the day advances the
// medication streak.
func (e *Engine) LogMedicationDose(s *state.BuddyState, now time.Time) Result {
	o := e.begin(s, now)
	med := &o.next.Medication

	if !med.Enabled || med.DosesPerDay <= 0 {
		logrus.Debugf("medication dose ignored: tracking disabled")
		return o.done(false)
	}
	if med.DosesTakenToday >= med.DosesPerDay {
		logrus.Debugf("medication dose ignored: %d/%d already taken", med.DosesTakenToday, med.DosesPerDay)
		return o.done(false)
	}

	med.DosesTakenToday++
	o.next.LastMedDoseTimestamp = o.now

	if med.DosesTakenToday == med.DosesPerDay {
		med.Streak = e.calendar.CompleteMedicationDay(med.Streak, o.next.LastCompletedMedDay, o.now)
		o.next.LastCompletedMedDay = o.now
		logrus.Debugf("medication day complete, streak %d", med.Streak)
	}

	o.apply(DoseHealthReward, DoseXPReward, nil)
	return o.done(true)
}

// ToggleMedication enables or disables dose tracking. Either way the day's
// dose count and the streak restart. Doses per day is clamped to 1..24 when
// enabling and zeroed when disabling.
func (e *Engine) ToggleMedication(s *state.BuddyState, enabled bool, dosesPerDay int, now time.Time) Result {
	o := e.begin(s, now)
	o.next.Medication = medicationSetup(enabled, dosesPerDay)
	return o.done(true)
}

func medicationSetup(enabled bool, dosesPerDay int) state.MedicationState {
	if !enabled {
		return state.MedicationState{}
	}
	if dosesPerDay < 1 {
		dosesPerDay = 1
	}
	if dosesPerDay > MaxDosesPerDay {
		dosesPerDay = MaxDosesPerDay
	}
	return state.MedicationState{Enabled: true, DosesPerDay: dosesPerDay}
}
