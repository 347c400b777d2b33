package signal

import "fmt"

// Reason is a symbolic code for something noteworthy that happened to a buddy.
// The engine emits reasons. Turning them into text belongs to the notifier.
type Reason string

const (
	ReasonWelcome              Reason = "welcome"
	ReasonReminder             Reason = "reminder"
	ReasonStreak               Reason = "streak"
	ReasonHabitComplete        Reason = "habit_complete"
	ReasonLongAbsence          Reason = "long_absence"
	ReasonLowHealth            Reason = "low_health"
	ReasonCompulsoryReminder   Reason = "compulsory_reminder"
	ReasonOnboardingComplete   Reason = "onboarding_complete"
	ReasonNegativeHabitRelapse Reason = "negative_habit_relapse"
)

var allReasons = []Reason{
	ReasonWelcome,
	ReasonReminder,
	ReasonStreak,
	ReasonHabitComplete,
	ReasonLongAbsence,
	ReasonLowHealth,
	ReasonCompulsoryReminder,
	ReasonOnboardingComplete,
	ReasonNegativeHabitRelapse,
}

// AllReasons returns every known reason code
func AllReasons() []Reason {
	return append([]Reason(nil), allReasons...)
}

// Valid reports whether r is a known reason code
func (r Reason) Valid() bool {
	for _, known := range allReasons {
		if r == known {
			return true
		}
	}
	return false
}

// ParseReason converts a string into a known reason code
func ParseReason(s string) (Reason, error) {
	r := Reason(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown reason code: %s", s)
	}
	return r, nil
}
