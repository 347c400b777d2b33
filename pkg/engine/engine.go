// Package engine is the buddy progression state machine. Every operation is a
// reducer from (state, payload, now) to a Result holding the next state and
// the signals raised on the way. Operations never mutate their input and
// never fail: intents that do not apply are guarded no-ops.
package engine

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-buddy-progression/pkg/boost"
	"github.com/AccelByte/extend-buddy-progression/pkg/signal"
	"github.com/AccelByte/extend-buddy-progression/pkg/state"
	"github.com/AccelByte/extend-buddy-progression/pkg/streak"
)

// IDGenerator produces unique ids for new habits
type IDGenerator func() string

// Engine applies intents and clock ticks to buddy state
type Engine struct {
	calendar streak.Calendar
	weather  WeatherSource
	newID    IDGenerator
}

// Option configures an Engine
type Option func(*Engine)

// WithLocation sets the time zone used for calendar-day boundaries
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		e.calendar = streak.NewCalendar(loc)
	}
}

// WithWeather sets the source of the daily weather condition
func WithWeather(w WeatherSource) Option {
	return func(e *Engine) {
		if w != nil {
			e.weather = w
		}
	}
}

// WithIDGenerator overrides habit id generation
func WithIDGenerator(fn IDGenerator) Option {
	return func(e *Engine) {
		if fn != nil {
			e.newID = fn
		}
	}
}

// New creates an engine. Defaults are UTC days, mild weather and UUID ids.
func New(opts ...Option) *Engine {
	e := &Engine{
		calendar: streak.NewCalendar(time.UTC),
		weather:  StaticWeather(streak.WeatherMild),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Calendar returns the engine's day-boundary calendar
func (e *Engine) Calendar() streak.Calendar {
	return e.calendar
}

// Result is the outcome of one engine operation
type Result struct {
	State     *state.BuddyState `json:"state"`
	Signals   []signal.Signal   `json:"signals"`
	LevelUp   *boost.LevelUp    `json:"levelUp,omitempty"`
	Celebrate bool              `json:"celebrate"`
	Applied   bool              `json:"applied"`
}

// Reasons returns the reason codes raised by the operation
func (r Result) Reasons() []signal.Reason {
	return signal.Reasons(r.Signals)
}

// op is the working copy threaded through a single operation
type op struct {
	e         *Engine
	now       time.Time
	next      *state.BuddyState
	signals   []signal.Signal
	levelUp   *boost.LevelUp
	celebrate bool
}

// begin clones s and applies the daily rollovers due at now
func (e *Engine) begin(s *state.BuddyState, now time.Time) *op {
	if s == nil {
		s = state.NewBuddyState()
	}
	o := &op{
		e:    e,
		now:  now.In(e.calendar.Location()),
		next: s.Clone(),
	}
	o.rollover()
	return o
}

// rollover resets per-day counters the first time state is touched on a new day
func (o *op) rollover() {
	cal := o.e.calendar
	s := o.next

	if cal.ResetDoses(s, o.now) {
		logrus.Debugf("medication doses reset for new day")
	}

	// The multiplier only ever shrinks; zero means it was never set.
	if s.DecayMultiplier <= 0 {
		s.DecayMultiplier = 1
	}

	for i := range s.Habits {
		h := &s.Habits[i]
		if !h.IsNegative {
			continue
		}
		since := h.CreatedAt
		if h.LastCompleted.After(since) {
			since = h.LastCompleted
		}
		if since.IsZero() {
			continue
		}
		days := int(cal.StartOfDay(o.now).Sub(cal.StartOfDay(since)).Hours() / 24)
		if days > h.NegativeStreak {
			h.NegativeStreak = days
		}
	}

	if !s.IsOnboarded() || !cal.NeedsCompulsoryRefresh(s, o.now) {
		return
	}

	condition := o.e.weather.Condition(o.now)
	habits := cal.RefreshCompulsory(s, condition, o.now)
	logrus.Debugf("compulsory habits refreshed for %q weather: %d habit(s)", condition, len(habits))
	if len(habits) > 0 {
		o.emit(signal.ReasonCompulsoryReminder, map[string]interface{}{signal.MetaWeather: condition})
	}
}

func (o *op) emit(reason signal.Reason, metadata map[string]interface{}) {
	o.signals = append(o.signals, signal.New(reason, o.now, metadata))
}

// apply runs the deltas through the boost applicator and merges any level-up
func (o *op) apply(healthDelta float64, xpDelta int, mutate boost.Mutator) {
	next, up := boost.Apply(o.next, healthDelta, xpDelta, mutate)
	o.next = next
	if up == nil {
		return
	}
	if o.levelUp == nil {
		o.levelUp = up
		return
	}
	o.levelUp.Level = up.Level
	o.levelUp.Unlocked = append(o.levelUp.Unlocked, up.Unlocked...)
}

// done builds the result. applied marks whether the intent itself took effect.
func (o *op) done(applied bool) Result {
	return Result{
		State:     o.next,
		Signals:   o.signals,
		LevelUp:   o.levelUp,
		Celebrate: o.celebrate || o.levelUp != nil,
		Applied:   applied,
	}
}

// Snapshot returns a deep copy of s for read-only export
func (e *Engine) Snapshot(s *state.BuddyState) *state.BuddyState {
	if s == nil {
		return state.NewBuddyState()
	}
	return s.Clone()
}
