// Package streak implements calendar-day streak bookkeeping for habits and
// medication, and the daily rollovers that reset per-day counters.
package streak

import "time"

// MilestoneInterval is the streak length between celebrations
const MilestoneInterval = 5

// Calendar answers day-boundary questions in a fixed time zone
type Calendar struct {
	loc *time.Location
}

// NewCalendar creates a calendar for loc. A nil loc means UTC.
func NewCalendar(loc *time.Location) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return Calendar{loc: loc}
}

// Location returns the calendar's time zone
func (c Calendar) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

// StartOfDay returns midnight of t's calendar day
func (c Calendar) StartOfDay(t time.Time) time.Time {
	y, m, d := t.In(c.Location()).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.Location())
}

// SameDay reports whether a and b fall on the same calendar day.
// A zero time is never on the same day as anything.
func (c Calendar) SameDay(a, b time.Time) bool {
	if a.IsZero() || b.IsZero() {
		return false
	}
	return c.StartOfDay(a).Equal(c.StartOfDay(b))
}

// IsYesterday reports whether t falls on the calendar day before now
func (c Calendar) IsYesterday(t, now time.Time) bool {
	if t.IsZero() {
		return false
	}
	return c.StartOfDay(t).Equal(c.StartOfDay(now).AddDate(0, 0, -1))
}

// NewDay reports whether now is on a later day than last. A zero last
// always starts a new day.
func (c Calendar) NewDay(last, now time.Time) bool {
	return !c.SameDay(last, now)
}

// DayKey formats t's calendar day as YYYY-MM-DD
func (c Calendar) DayKey(t time.Time) string {
	return t.In(c.Location()).Format("2006-01-02")
}
