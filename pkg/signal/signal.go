package signal

import (
	"time"
)

// Metadata keys attached by the engine
const (
	MetaHabitID    = "habit_id"
	MetaHabitName  = "habit_name"
	MetaStreak     = "streak"
	MetaHours      = "hours"
	MetaWeather    = "weather"
	MetaHealth     = "health"
	MetaLevel      = "level"
	MetaUnlocked   = "unlocked"
	MetaCelebrated = "celebrated"
)

// Signal is a reason code raised by a state transition, with the details the
// notifier needs to render it. UserID is filled in by the host.
type Signal struct {
	Reason    Reason                 `json:"reason"`
	UserID    string                 `json:"userId,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// New creates a signal. A nil metadata map is replaced with an empty one.
func New(reason Reason, timestamp time.Time, metadata map[string]interface{}) Signal {
	if metadata == nil {
		metadata = make(map[string]interface{})
	}
	return Signal{
		Reason:    reason,
		Timestamp: timestamp,
		Metadata:  metadata,
	}
}

// WithUser returns a copy of the signal addressed to userID
func (s Signal) WithUser(userID string) Signal {
	s.UserID = userID
	return s
}

// Reasons extracts the reason codes from a list of signals
func Reasons(signals []Signal) []Reason {
	out := make([]Reason, 0, len(signals))
	for _, s := range signals {
		out = append(out, s.Reason)
	}
	return out
}

// Has reports whether any signal carries reason
func Has(signals []Signal, reason Reason) bool {
	for _, s := range signals {
		if s.Reason == reason {
			return true
		}
	}
	return false
}
