package signal

import (
	"github.com/AccelByte/extend-buddy-progression/pkg/state"
)

// BuddyContext is the state snapshot handed to the notifier alongside a signal
type BuddyContext struct {
	UserID     string
	BuddyName  string
	BuddyType  string
	Health     float64
	XP         int
	Level      int
	Streak     int
	Mood       state.Mood
	Attributes map[string]interface{}
}

// BuildBuddyContext creates a BuddyContext from buddy state and the signal metadata
func BuildBuddyContext(userID string, s *state.BuddyState, sig Signal) *BuddyContext {
	ctx := &BuddyContext{
		UserID:     userID,
		BuddyName:  s.Profile.BuddyName,
		BuddyType:  s.Profile.BuddyType,
		Health:     s.Health,
		XP:         s.XP,
		Level:      s.Level,
		Streak:     s.Streak,
		Mood:       s.Mood(),
		Attributes: make(map[string]interface{}, len(sig.Metadata)),
	}
	if ctx.BuddyName == "" {
		ctx.BuddyName = "Buddy"
	}

	for k, v := range sig.Metadata {
		ctx.Attributes[k] = v
	}

	return ctx
}
