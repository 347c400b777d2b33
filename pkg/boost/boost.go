// Package boost applies health, XP and sub-stat rewards to a buddy and keeps
// the level and unlock set consistent with the resulting XP.
package boost

import (
	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-buddy-progression/pkg/leveling"
	"github.com/AccelByte/extend-buddy-progression/pkg/state"
)

// Mutator adjusts sub-stats in place. Results are clamped afterwards.
type Mutator func(ss *state.SubStats)

// LevelUp describes a level increase caused by a boost
type LevelUp struct {
	From     int                      `json:"from"`
	Level    int                      `json:"level"`
	Unlocked []leveling.Customization `json:"unlocked"`
}

// Names returns the display names of the newly unlocked items
func (l *LevelUp) Names() []string {
	names := make([]string, 0, len(l.Unlocked))
	for _, c := range l.Unlocked {
		names = append(names, c.Name)
	}
	return names
}

// Apply returns a copy of s with the deltas applied. Health is clamped to
// [0, 100], XP floored at 0 and the level recomputed from the threshold table.
// Every customization bound to a newly attained level is unlocked. A non-nil
// LevelUp is returned only when the level increased.
func Apply(s *state.BuddyState, healthDelta float64, xpDelta int, mutate Mutator) (*state.BuddyState, *LevelUp) {
	next := s.Clone()

	next.Health += healthDelta
	next.ClampHealth()

	next.XP += xpDelta
	if next.XP < 0 {
		next.XP = 0
	}

	if mutate != nil {
		mutate(&next.SubStats)
	}
	next.SubStats.Clamp()

	return next, Relevel(next)
}

// Relevel sets s.Level from s.XP and unlocks the items of every level
// passed on the way up. Unlocks are never revoked when the level drops.
func Relevel(s *state.BuddyState) *LevelUp {
	from := s.Level
	if from < 1 {
		from = 1
	}
	level := leveling.LevelForXP(s.XP)
	s.Level = level

	if level <= from {
		if level < from {
			logrus.Debugf("level dropped from %d to %d after xp fell to %d", from, level, s.XP)
		}
		return nil
	}

	up := &LevelUp{From: from, Level: level}
	for l := from + 1; l <= level; l++ {
		for _, c := range leveling.UnlocksAt(l) {
			if s.Unlock(c.ID) {
				up.Unlocked = append(up.Unlocked, c)
			}
		}
	}

	logrus.Debugf("level up %d -> %d, unlocked %d item(s)", from, level, len(up.Unlocked))
	return up
}

// Add returns a mutator that adds the given amounts to each sub-stat
func Add(hydration, activity, mental, gut float64) Mutator {
	return func(ss *state.SubStats) {
		ss.Hydration += hydration
		ss.Activity += activity
		ss.Mental += mental
		ss.Gut += gut
	}
}

// Drain returns a mutator that removes amount from every sub-stat, with the
// mental stat scaled by mentalFactor
func Drain(amount, mentalFactor float64) Mutator {
	return Add(-amount, -amount, -amount*mentalFactor, -amount)
}
