package engine

import (
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-buddy-progression/pkg/boost"
	"github.com/AccelByte/extend-buddy-progression/pkg/state"
)

const (
	// BoosterDecayFactor shrinks the decay multiplier per same-day booster
	BoosterDecayFactor = 0.75
	BoosterSubStatGain = 10.0

	GoodSleepQuality     = 3
	GoodSleepHours       = 7.0
	SleepXPReward        = 15
	GoodSleepHealthDelta = 5.0
	PoorSleepHealthDelta = -5.0
	GoodSleepMentalGain  = 10.0
)

// LogVitamins records today's vitamins: a gut boost and extra decay protection.
// A second log on the same day is ignored.
func (e *Engine) LogVitamins(s *state.BuddyState, now time.Time) Result {
	o := e.begin(s, now)

	if e.calendar.SameDay(o.next.LastVitaminLog, o.now) {
		logrus.Debugf("vitamins already logged today")
		return o.done(false)
	}

	o.apply(0, 0, boost.Add(0, 0, 0, BoosterSubStatGain))
	o.shrinkMultiplier()
	o.next.LastVitaminLog = o.now

	return o.done(true)
}

// LogPhysicalActivity records today's exercise: an activity boost and extra
// decay protection. A second log on the same day is ignored.
func (e *Engine) LogPhysicalActivity(s *state.BuddyState, now time.Time) Result {
	o := e.begin(s, now)

	if e.calendar.SameDay(o.next.LastPhysicalActivityLog, o.now) {
		logrus.Debugf("physical activity already logged today")
		return o.done(false)
	}

	o.apply(0, 0, boost.Add(0, BoosterSubStatGain, 0, 0))
	o.shrinkMultiplier()
	o.next.LastPhysicalActivityLog = o.now

	return o.done(true)
}

func (o *op) shrinkMultiplier() {
	o.next.DecayMultiplier = math.Max(state.MinDecayMultiplier, o.next.DecayMultiplier*BoosterDecayFactor)
}

// IsGoodSleep reports whether a night counts as restful
func IsGoodSleep(quality int, hours float64) bool {
	return quality >= GoodSleepQuality && hours >= GoodSleepHours
}

// LogSleep records last night's sleep. Good sleep pays down sleep debt and
// restores health and mental, poor sleep adds debt and costs health. Both
// grant XP. Quality is clamped to 1..5 and hours to 0..24. A second log on
// the same day is ignored.
func (e *Engine) LogSleep(s *state.BuddyState, quality int, hours float64, now time.Time) Result {
	o := e.begin(s, now)

	if e.calendar.SameDay(o.next.LastSleepLog, o.now) {
		logrus.Debugf("sleep already logged today")
		return o.done(false)
	}

	quality = int(state.Clamp(float64(quality), 1, 5))
	if math.IsNaN(hours) {
		hours = 0
	}
	hours = state.Clamp(hours, 0, 24)

	if IsGoodSleep(quality, hours) {
		if o.next.SleepDebt > 0 {
			o.next.SleepDebt--
		}
		o.apply(GoodSleepHealthDelta, SleepXPReward, boost.Add(0, 0, GoodSleepMentalGain, 0))
	} else {
		o.next.SleepDebt++
		o.apply(PoorSleepHealthDelta, SleepXPReward, nil)
	}

	o.next.AppendSleepLog(state.SleepLog{Date: o.now, Quality: quality, Hours: hours})
	o.next.LastSleepLog = o.now

	return o.done(true)
}
