package streak

import (
	"time"

	"github.com/AccelByte/extend-buddy-progression/pkg/state"
)

// Advance computes the positive streak after a completion at now, given the
// most recent completion before it. A completion on the same day leaves the
// streak unchanged, one on the following day extends it, and anything older
// starts a new streak of 1. advanced is false only for the same-day case.
func (c Calendar) Advance(current int, lastCompletion, now time.Time) (next int, advanced bool) {
	switch {
	case c.SameDay(lastCompletion, now):
		if current < 1 {
			return 1, true
		}
		return current, false
	case c.IsYesterday(lastCompletion, now):
		return current + 1, true
	default:
		return 1, true
	}
}

// Milestone reports whether streak is a celebrated multiple of MilestoneInterval
func Milestone(streak int) bool {
	return streak >= MilestoneInterval && streak%MilestoneInterval == 0
}

// LatestPositiveCompletion returns the most recent completion across all
// positive habits. Any habit counts toward the single daily streak.
func LatestPositiveCompletion(habits []state.Habit) time.Time {
	var latest time.Time
	for _, h := range habits {
		if h.IsNegative {
			continue
		}
		if h.LastCompleted.After(latest) {
			latest = h.LastCompleted
		}
	}
	return latest
}

// CompleteMedicationDay returns the medication streak after the final dose of
// the day at now. It extends the streak when the previous completed day was
// yesterday and restarts at 1 otherwise.
func (c Calendar) CompleteMedicationDay(current int, lastCompletedDay, now time.Time) int {
	if c.IsYesterday(lastCompletedDay, now) {
		return current + 1
	}
	return 1
}
