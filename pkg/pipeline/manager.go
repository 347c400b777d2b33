// Package pipeline hosts the progression engine: it serializes every intent
// and tick for a buddy through load, catch-up tick, apply, persist and notify.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-buddy-progression/pkg/analytics"
	"github.com/AccelByte/extend-buddy-progression/pkg/boost"
	"github.com/AccelByte/extend-buddy-progression/pkg/common"
	"github.com/AccelByte/extend-buddy-progression/pkg/engine"
	"github.com/AccelByte/extend-buddy-progression/pkg/notify"
	"github.com/AccelByte/extend-buddy-progression/pkg/service"
	"github.com/AccelByte/extend-buddy-progression/pkg/signal"
	"github.com/AccelByte/extend-buddy-progression/pkg/state"
)

var (
	// ErrNotOnboarded is returned for operations on a buddy that has not been created yet
	ErrNotOnboarded = errors.New("buddy not onboarded")
	// ErrAlreadyOnboarded is returned when onboarding is submitted twice
	ErrAlreadyOnboarded = errors.New("buddy already onboarded")
)

// Tick sources reported to metrics
const (
	TickScheduled = "scheduled"
	TickCatchUp   = "catchup"
	TickIntent    = "intent"
)

// Outcome is the host-facing result of one pipeline operation
type Outcome struct {
	State         *state.BuddyState      `json:"state"`
	Reasons       []signal.Reason        `json:"reasons"`
	LevelUp       *boost.LevelUp         `json:"levelUp,omitempty"`
	Celebrate     bool                   `json:"celebrate"`
	Applied       bool                   `json:"applied"`
	Degraded      bool                   `json:"degraded"`
	Notifications []service.Notification `json:"notifications"`
}

// Manager orchestrates the buddy pipeline:
// Load → Catch-up Tick → Intent → Persist → Notify
//
// All writes go through one mutex, so the engine always sees the latest state.
type Manager struct {
	deps       *service.Dependencies
	engine     *engine.Engine
	dispatcher *notify.Dispatcher
	cfg        Config

	mu sync.Mutex
}

// NewManager creates a new pipeline manager with all required components.
// A nil dispatcher drops signals without notifying.
func NewManager(deps *service.Dependencies, eng *engine.Engine, dispatcher *notify.Dispatcher, cfg Config) *Manager {
	if deps == nil {
		deps = service.NewDependencies()
	}
	if eng == nil {
		eng = engine.New()
	}

	return &Manager{
		deps:       deps,
		engine:     eng,
		dispatcher: dispatcher,
		cfg:        cfg.withDefaults(),
	}
}

// Engine returns the engine the manager drives
func (m *Manager) Engine() *engine.Engine {
	return m.engine
}

func (m *Manager) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, m.cfg.StoreTimeout)
}

func (m *Manager) load(scope *common.Scope, userID string) (*state.BuddyState, error) {
	ctx, cancel := m.storeCtx(scope.Ctx)
	defer cancel()

	s, err := m.deps.States.GetBuddyState(ctx, userID)
	if err != nil {
		m.cfg.Metrics.ObservePersistenceError("get")
		scope.TraceError(err)
		return nil, fmt.Errorf("failed to load buddy state: %w", err)
	}
	return s, nil
}

func (m *Manager) save(scope *common.Scope, userID string, s *state.BuddyState) error {
	ctx, cancel := m.storeCtx(scope.Ctx)
	defer cancel()

	if err := m.deps.States.UpdateBuddyState(ctx, userID, s); err != nil {
		m.cfg.Metrics.ObservePersistenceError("update")
		scope.TraceError(err)
		return fmt.Errorf("failed to persist buddy state: %w", err)
	}
	m.cfg.Metrics.ObserveHealth(s.Health)
	return nil
}

// loadOnboarded loads state and rejects buddies that were never onboarded
func (m *Manager) loadOnboarded(scope *common.Scope, userID string) (*state.BuddyState, error) {
	s, err := m.load(scope, userID)
	if err != nil {
		return nil, err
	}
	if !s.IsOnboarded() {
		return nil, ErrNotOnboarded
	}
	return s, nil
}

// Onboard creates the buddy from the survey. Fails with ErrAlreadyOnboarded
// if the user already has one.
func (m *Manager) Onboard(ctx context.Context, userID string, in engine.Onboarding) (*Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	scope := common.GetScopeFromContext(ctx, "pipeline.onboard").WithUser(userID)
	defer scope.Finish()

	existing, err := m.load(scope, userID)
	if err != nil {
		return nil, err
	}
	if existing.IsOnboarded() {
		return nil, ErrAlreadyOnboarded
	}

	res := m.engine.Onboard(in, m.cfg.Clock())
	if err := m.save(scope, userID, res.State); err != nil {
		return nil, err
	}

	scope.Log.Infof("buddy onboarded with health %.0f", res.State.Health)
	return m.finish(scope, userID, res, res.Signals), nil
}

// Open records an app open after catching up elapsed decay
func (m *Manager) Open(ctx context.Context, userID string) (*Outcome, error) {
	return m.run(ctx, userID, "open", func(s *state.BuddyState, now time.Time) engine.Result {
		return m.engine.Open(s, now)
	})
}

// Apply runs one intent for a user. Elapsed decay is applied first so the
// intent never acts on stale health.
func (m *Manager) Apply(ctx context.Context, userID string, intent engine.Intent) (*Outcome, error) {
	start := time.Now()
	out, err := m.run(ctx, userID, intent.Type(), func(s *state.BuddyState, now time.Time) engine.Result {
		return intent.Apply(m.engine, s, now)
	})
	if err != nil {
		return nil, err
	}
	if intent.Type() == engine.TypeTick && out.Applied {
		m.cfg.Metrics.ObserveTick(TickIntent)
	}
	m.cfg.Metrics.ObserveIntent(intent.Type(), out.Applied, time.Since(start))
	return out, nil
}

// run is the shared read-modify-write cycle. The catch-up tick is skipped for
// the tick intent itself.
func (m *Manager) run(ctx context.Context, userID, name string, apply func(*state.BuddyState, time.Time) engine.Result) (*Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	scope := common.GetScopeFromContext(ctx, "pipeline."+name).WithUser(userID)
	defer scope.Finish()

	s, err := m.loadOnboarded(scope, userID)
	if err != nil {
		return nil, err
	}

	now := m.cfg.Clock()
	var signals []signal.Signal
	caughtUp := false
	if name != engine.TypeTick {
		catchUp := m.engine.Tick(s, now)
		s = catchUp.State
		signals = append(signals, catchUp.Signals...)
		caughtUp = catchUp.Applied
		if caughtUp {
			m.cfg.Metrics.ObserveTick(TickCatchUp)
		}
	}

	res := apply(s, now)
	signals = append(signals, res.Signals...)

	if res.Applied || caughtUp {
		if err := m.save(scope, userID, res.State); err != nil {
			return nil, err
		}
	}

	out := m.finish(scope, userID, res, signals)
	if res.Applied && m.recordCompletion(scope, userID, name, res) {
		out.Degraded = true
	}

	scope.SetAttributes("applied", res.Applied)
	scope.Log.Debugf("%s applied=%v signals=%v", name, res.Applied, out.Reasons)
	return out, nil
}

// recordCompletion counts positive habit completions for analytics.
// Returns true if the tracker failed.
func (m *Manager) recordCompletion(scope *common.Scope, userID, name string, res engine.Result) bool {
	if m.deps.Completions == nil || (name != engine.TypeCompleteHabit && name != engine.TypeCompleteCompulsoryHabit) {
		return false
	}
	// A completed negative habit is a relapse, not a completion.
	if signal.Has(res.Signals, signal.ReasonNegativeHabitRelapse) {
		return false
	}

	ctx, cancel := m.storeCtx(scope.Ctx)
	defer cancel()

	if err := m.deps.Completions.RecordCompletion(ctx, userID, m.cfg.Clock()); err != nil {
		scope.Log.Warnf("failed to record habit completion: %v", err)
		return true
	}
	return false
}

// finish dispatches the signals and builds the outcome
func (m *Manager) finish(scope *common.Scope, userID string, res engine.Result, signals []signal.Signal) *Outcome {
	out := &Outcome{
		State:         res.State,
		Reasons:       signal.Reasons(signals),
		LevelUp:       res.LevelUp,
		Celebrate:     res.Celebrate,
		Applied:       res.Applied,
		Notifications: []service.Notification{},
	}

	if res.LevelUp != nil {
		m.cfg.Metrics.ObserveLevelUp()
		scope.Log.Infof("buddy reached level %d, unlocked %v", res.LevelUp.Level, res.LevelUp.Names())
	}
	for _, sig := range signals {
		m.cfg.Metrics.ObserveSignal(string(sig.Reason))
	}

	if m.dispatcher == nil || len(signals) == 0 {
		return out
	}

	result := m.dispatcher.Dispatch(scope.Ctx, userID, res.State, signals)
	out.Notifications = result.Notifications
	if result.Degraded {
		out.Degraded = true
		m.cfg.Metrics.ObserveNotificationFailures(len(result.Errors))
		scope.TraceEvent("notifications degraded")
	}
	return out
}

// Tick applies elapsed decay for one user
func (m *Manager) Tick(ctx context.Context, userID string) (*Outcome, error) {
	out, err := m.run(ctx, userID, engine.TypeTick, func(s *state.BuddyState, now time.Time) engine.Result {
		return m.engine.Tick(s, now)
	})
	if err != nil {
		return nil, err
	}
	if out.Applied {
		m.cfg.Metrics.ObserveTick(TickScheduled)
	}
	return out, nil
}

// TickAll ticks every stored buddy. Failures for one user are logged and do
// not stop the sweep. Returns the number of buddies ticked.
func (m *Manager) TickAll(ctx context.Context) (int, error) {
	listCtx, cancel := m.storeCtx(ctx)
	userIDs, err := m.deps.States.ListUserIDs(listCtx)
	cancel()
	if err != nil {
		m.cfg.Metrics.ObservePersistenceError("list")
		return 0, fmt.Errorf("failed to list buddies: %w", err)
	}

	ticked, failed := 0, 0
	for _, userID := range userIDs {
		if ctx.Err() != nil {
			return ticked, ctx.Err()
		}
		_, err := m.Tick(ctx, userID)
		switch {
		case errors.Is(err, ErrNotOnboarded):
			continue
		case err != nil:
			failed++
			logrus.Errorf("failed to tick buddy for user %s: %v", userID, err)
			continue
		}
		ticked++
	}

	logrus.Infof("tick sweep complete: %d ticked, %d failed, %d total", ticked, failed, len(userIDs))
	return ticked, nil
}

// State returns a read-only snapshot of the stored state
func (m *Manager) State(ctx context.Context, userID string) (*state.BuddyState, error) {
	scope := common.GetScopeFromContext(ctx, "pipeline.state").WithUser(userID)
	defer scope.Finish()

	s, err := m.loadOnboarded(scope, userID)
	if err != nil {
		return nil, err
	}
	return m.engine.Snapshot(s), nil
}

// Notifications returns the user's inbox, newest first
func (m *Manager) Notifications(ctx context.Context, userID string) ([]service.Notification, error) {
	if m.deps.Notifications == nil {
		return []service.Notification{}, nil
	}

	storeCtx, cancel := m.storeCtx(ctx)
	defer cancel()

	list, err := m.deps.Notifications.List(storeCtx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return list, nil
}

// DismissNotification removes one notification. Returns false if it was not found.
func (m *Manager) DismissNotification(ctx context.Context, userID, notificationID string) (bool, error) {
	if m.deps.Notifications == nil {
		return false, nil
	}

	storeCtx, cancel := m.storeCtx(ctx)
	defer cancel()

	found, err := m.deps.Notifications.Dismiss(storeCtx, userID, notificationID)
	if err != nil {
		return false, fmt.Errorf("failed to dismiss notification: %w", err)
	}
	return found, nil
}

// Reset deletes the buddy along with its inbox and completion history.
// Fails with ErrNotOnboarded if there is nothing to reset.
func (m *Manager) Reset(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	scope := common.GetScopeFromContext(ctx, "pipeline.reset").WithUser(userID)
	defer scope.Finish()

	if _, err := m.loadOnboarded(scope, userID); err != nil {
		return err
	}

	storeCtx, cancel := m.storeCtx(scope.Ctx)
	defer cancel()

	if err := m.deps.States.DeleteBuddyState(storeCtx, userID); err != nil {
		m.cfg.Metrics.ObservePersistenceError("delete")
		scope.TraceError(err)
		return fmt.Errorf("failed to delete buddy state: %w", err)
	}

	// Leftovers expire with their TTL
	if m.deps.Notifications != nil {
		if err := m.deps.Notifications.Clear(storeCtx, userID); err != nil {
			logrus.Warnf("failed to clear notifications for user %s: %v", userID, err)
		}
	}
	if m.deps.Completions != nil {
		if err := m.deps.Completions.ClearCompletions(storeCtx, userID); err != nil {
			logrus.Warnf("failed to clear completions for user %s: %v", userID, err)
		}
	}

	logrus.Infof("reset buddy for user %s", userID)
	return nil
}

// Analytics summarizes the stored state and completion history
func (m *Manager) Analytics(ctx context.Context, userID string) (*analytics.Summary, error) {
	scope := common.GetScopeFromContext(ctx, "pipeline.analytics").WithUser(userID)
	defer scope.Finish()

	s, err := m.loadOnboarded(scope, userID)
	if err != nil {
		return nil, err
	}

	var byDay map[string]int
	if m.deps.Completions != nil {
		storeCtx, cancel := m.storeCtx(scope.Ctx)
		history, err := m.deps.Completions.GetCompletions(storeCtx, userID)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("failed to get completions: %w", err)
		}
		byDay = history.ByDay
	}

	summary := analytics.Summarize(s, byDay, m.engine.Calendar(), m.cfg.Clock())
	return &summary, nil
}
