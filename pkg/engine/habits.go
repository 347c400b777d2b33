package engine

import (
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-buddy-progression/pkg/boost"
	"github.com/AccelByte/extend-buddy-progression/pkg/signal"
	"github.com/AccelByte/extend-buddy-progression/pkg/state"
	"github.com/AccelByte/extend-buddy-progression/pkg/streak"
)

const (
	HabitHealthReward = 10.0
	HabitXPReward     = 20

	RelapseHealthPenalty = -25.0
	RelapseXPPenalty     = -50

	CompulsoryHealthReward = 10.0
	NewHabitXPReward       = 10

	// DefaultHabitName is the habit every buddy starts with
	DefaultHabitName = "Drink Water"
)

// habitMutator picks the sub-stat boost for a completed habit by its name
func habitMutator(name string) boost.Mutator {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "water"):
		return boost.Add(15, 0, 0, 0)
	case strings.Contains(lower, "fiber"):
		return boost.Add(0, 0, 0, 5)
	default:
		return boost.Add(0, 10, 5, 0)
	}
}

// CompleteHabit logs a completion of the habit with id. Positive habits
// advance the daily streak and reward the buddy. Negative habits are
// relapses and cost health and XP without touching the streak.
func (e *Engine) CompleteHabit(s *state.BuddyState, habitID string, now time.Time) Result {
	o := e.begin(s, now)

	idx := o.next.FindHabit(habitID)
	if idx < 0 {
		logrus.Debugf("complete habit ignored: unknown habit %s", habitID)
		return o.done(false)
	}

	if o.next.Habits[idx].IsNegative {
		o.relapse(idx)
		return o.done(true)
	}

	prev := streak.LatestPositiveCompletion(o.next.Habits)
	next, advanced := e.calendar.Advance(o.next.Streak, prev, o.now)
	o.next.Streak = next
	o.next.Habits[idx].LastCompleted = o.now

	habit := o.next.Habits[idx]
	o.apply(HabitHealthReward, HabitXPReward, habitMutator(habit.Name))

	meta := map[string]interface{}{
		signal.MetaHabitID:   habit.ID,
		signal.MetaHabitName: habit.Name,
		signal.MetaStreak:    next,
	}
	if advanced && streak.Milestone(next) {
		o.celebrate = true
		o.emit(signal.ReasonStreak, meta)
	} else {
		o.emit(signal.ReasonHabitComplete, meta)
	}

	logrus.Debugf("habit %s completed, streak %d", habit.ID, next)
	return o.done(true)
}

func (o *op) relapse(idx int) {
	h := &o.next.Habits[idx]
	h.LastCompleted = o.now
	h.NegativeStreak = 0
	id, name := h.ID, h.Name

	o.apply(RelapseHealthPenalty, RelapseXPPenalty, nil)
	o.emit(signal.ReasonNegativeHabitRelapse, map[string]interface{}{
		signal.MetaHabitID:   id,
		signal.MetaHabitName: name,
	})

	logrus.Debugf("negative habit %s relapsed", id)
}

// CompleteCompulsoryHabit marks a compulsory habit complete and grants its
// XP reward. Unknown or already completed habits are ignored.
func (e *Engine) CompleteCompulsoryHabit(s *state.BuddyState, id string, now time.Time) Result {
	o := e.begin(s, now)

	idx := -1
	for i := range o.next.CompulsoryHabits {
		if o.next.CompulsoryHabits[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 || o.next.CompulsoryHabits[idx].Completed {
		logrus.Debugf("complete compulsory habit ignored: %s missing or already completed", id)
		return o.done(false)
	}

	o.next.CompulsoryHabits[idx].Completed = true
	o.apply(CompulsoryHealthReward, o.next.CompulsoryHabits[idx].XP, nil)

	return o.done(true)
}

// AddHabit appends a new, never completed habit and grants the setup XP.
// Blank names are ignored.
func (e *Engine) AddHabit(s *state.BuddyState, name string, isNegative bool, now time.Time) Result {
	o := e.begin(s, now)

	name = strings.TrimSpace(name)
	if name == "" {
		return o.done(false)
	}

	o.next.Habits = append(o.next.Habits, state.Habit{
		ID:         e.newID(),
		Name:       name,
		IsNegative: isNegative,
		CreatedAt:  o.now,
	})
	o.apply(0, NewHabitXPReward, nil)

	return o.done(true)
}

// RemoveHabit deletes the habit with id. Unknown ids are ignored.
func (e *Engine) RemoveHabit(s *state.BuddyState, habitID string, now time.Time) Result {
	o := e.begin(s, now)

	idx := o.next.FindHabit(habitID)
	if idx < 0 {
		return o.done(false)
	}

	o.next.Habits = append(o.next.Habits[:idx], o.next.Habits[idx+1:]...)
	return o.done(true)
}
