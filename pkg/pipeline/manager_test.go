package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/AccelByte/extend-buddy-progression/pkg/engine"
	"github.com/AccelByte/extend-buddy-progression/pkg/metrics"
	"github.com/AccelByte/extend-buddy-progression/pkg/notify"
	"github.com/AccelByte/extend-buddy-progression/pkg/pipeline"
	"github.com/AccelByte/extend-buddy-progression/pkg/service"
	"github.com/AccelByte/extend-buddy-progression/pkg/service/mock"
	"github.com/AccelByte/extend-buddy-progression/pkg/signal"
	"github.com/AccelByte/extend-buddy-progression/pkg/state"
)

var day0 = time.Date(2025, 5, 5, 9, 0, 0, 0, time.UTC)

var testOnboarding = engine.Onboarding{
	Profile: state.Profile{BuddyName: "Mochi", BuddyType: "cat"},
	Survey: state.Survey{
		MoveHours: 0.75, SleepHours: 4, SedentaryHours: 8, SleepQuality: 3, ExerciseFrequency: 3.5,
		FiberGrams: 15, WaterIntake: 6, ProcessedFoodConsumption: 3,
		ReadHours: 0.5, StressLevel: 5.5, SocialConnection: 3, ScreenTimeHours: 3,
	},
}

// fakeClock is a settable clock shared by a test and its manager
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// completionRecorder is an in-memory CompletionTracker
type completionRecorder struct {
	mu    sync.Mutex
	days  map[string]int
	err   error
	calls int
}

func (c *completionRecorder) RecordCompletion(ctx context.Context, userID string, at time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return c.err
	}
	if c.days == nil {
		c.days = make(map[string]int)
	}
	c.days[at.Format("2006-01-02")]++
	return nil
}

func (c *completionRecorder) ClearCompletions(ctx context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.days = nil
	return nil
}

func (c *completionRecorder) GetCompletions(ctx context.Context, userID string) (*service.CompletionHistory, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	byDay := make(map[string]int, len(c.days))
	for k, v := range c.days {
		byDay[k] = v
	}
	return &service.CompletionHistory{ByDay: byDay}, nil
}

type fixture struct {
	manager       *pipeline.Manager
	clock         *fakeClock
	states        *mock.StateStore
	notifications *mock.NotificationStore
	completions   *completionRecorder
	metrics       *metrics.Collectors
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg, err := notify.DefaultConfig()
	if err != nil {
		t.Fatalf("DefaultConfig() error = %v", err)
	}
	generator, err := notify.NewTemplateGenerator(cfg)
	if err != nil {
		t.Fatalf("NewTemplateGenerator() error = %v", err)
	}

	f := &fixture{
		clock:         &fakeClock{now: day0},
		states:        mock.NewStateStore(),
		notifications: mock.NewNotificationStore(),
		completions:   &completionRecorder{},
		metrics:       metrics.NewCollectors(),
	}

	n := 0
	var idMu sync.Mutex
	eng := engine.New(
		engine.WithLocation(time.UTC),
		engine.WithIDGenerator(func() string {
			idMu.Lock()
			defer idMu.Unlock()
			n++
			return fmt.Sprintf("habit-%d", n)
		}),
	)

	deps := service.NewDependencies().
		WithStateStore(f.states).
		WithNotificationStore(f.notifications).
		WithCompletionTracker(f.completions)

	f.manager = pipeline.NewManager(deps, eng, notify.NewDispatcher(generator, f.notifications), pipeline.Config{
		Clock:   f.clock.Now,
		Metrics: f.metrics,
	})
	return f
}

func (f *fixture) onboard(t *testing.T, userID string) *pipeline.Outcome {
	t.Helper()
	out, err := f.manager.Onboard(context.Background(), userID, testOnboarding)
	if err != nil {
		t.Fatalf("Onboard(%s) error = %v", userID, err)
	}
	return out
}

func hasReason(out *pipeline.Outcome, reason signal.Reason) bool {
	for _, r := range out.Reasons {
		if r == reason {
			return true
		}
	}
	return false
}

func TestManager_Onboard(t *testing.T) {
	f := newFixture(t)

	out := f.onboard(t, "user-1")

	if !out.Applied || !hasReason(out, signal.ReasonOnboardingComplete) {
		t.Errorf("outcome = %+v, expected onboarding_complete", out)
	}
	if len(out.Notifications) != 1 {
		t.Errorf("notifications = %d, expected 1", len(out.Notifications))
	}
	stored, _ := f.states.GetBuddyState(context.Background(), "user-1")
	if !stored.IsOnboarded() || stored.Profile.BuddyName != "Mochi" {
		t.Errorf("stored state = %+v, expected onboarded Mochi", stored)
	}

	if _, err := f.manager.Onboard(context.Background(), "user-1", testOnboarding); !errors.Is(err, pipeline.ErrAlreadyOnboarded) {
		t.Errorf("second Onboard() error = %v, expected ErrAlreadyOnboarded", err)
	}
}

func TestManager_RequiresOnboarding(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.manager.Apply(ctx, "ghost", engine.LogVitamins{}); !errors.Is(err, pipeline.ErrNotOnboarded) {
		t.Errorf("Apply() error = %v, expected ErrNotOnboarded", err)
	}
	if _, err := f.manager.Open(ctx, "ghost"); !errors.Is(err, pipeline.ErrNotOnboarded) {
		t.Errorf("Open() error = %v, expected ErrNotOnboarded", err)
	}
	if _, err := f.manager.State(ctx, "ghost"); !errors.Is(err, pipeline.ErrNotOnboarded) {
		t.Errorf("State() error = %v, expected ErrNotOnboarded", err)
	}
	if _, err := f.manager.Analytics(ctx, "ghost"); !errors.Is(err, pipeline.ErrNotOnboarded) {
		t.Errorf("Analytics() error = %v, expected ErrNotOnboarded", err)
	}
	if f.states.UpdateCalls != 0 {
		t.Errorf("update calls = %d, expected nothing persisted", f.states.UpdateCalls)
	}
}

func TestManager_ApplyCompletesHabit(t *testing.T) {
	f := newFixture(t)
	f.onboard(t, "user-1")
	f.clock.Advance(30 * time.Minute)

	out, err := f.manager.Apply(context.Background(), "user-1", engine.CompleteHabit{HabitID: "habit-1"})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if !out.Applied || out.Degraded {
		t.Errorf("applied = %v degraded = %v, expected a clean apply", out.Applied, out.Degraded)
	}
	if out.State.Streak != 1 || !hasReason(out, signal.ReasonHabitComplete) {
		t.Errorf("streak = %d reasons = %v, expected 1 and habit_complete", out.State.Streak, out.Reasons)
	}
	if f.completions.calls != 1 || f.completions.days["2025-05-05"] != 1 {
		t.Errorf("completions = %v, expected one on 2025-05-05", f.completions.days)
	}

	stored, _ := f.states.GetBuddyState(context.Background(), "user-1")
	if stored.XP != out.State.XP || stored.Streak != 1 {
		t.Errorf("stored xp %d streak %d, expected the outcome to be persisted", stored.XP, stored.Streak)
	}

	if got := testutil.ToFloat64(f.metrics.IntentsTotal.WithLabelValues(engine.TypeCompleteHabit, "true")); got != 1 {
		t.Errorf("complete_habit intents = %v, expected 1", got)
	}
}

func TestManager_RelapseIsNotACompletion(t *testing.T) {
	f := newFixture(t)
	f.onboard(t, "user-1")

	ctx := context.Background()
	if _, err := f.manager.Apply(ctx, "user-1", engine.AddHabit{Name: "Smoking", IsNegative: true}); err != nil {
		t.Fatalf("AddHabit error = %v", err)
	}
	out, err := f.manager.Apply(ctx, "user-1", engine.CompleteHabit{HabitID: "habit-2"})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if !hasReason(out, signal.ReasonNegativeHabitRelapse) {
		t.Errorf("reasons = %v, expected a relapse", out.Reasons)
	}
	if f.completions.calls != 0 {
		t.Errorf("completion calls = %d, expected none for a relapse", f.completions.calls)
	}
}

func TestManager_CatchUpTickBeforeIntent(t *testing.T) {
	f := newFixture(t)
	onboarded := f.onboard(t, "user-1")
	f.clock.Advance(13*time.Hour + 20*time.Minute)

	out, err := f.manager.Apply(context.Background(), "user-1", engine.LogVitamins{})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if want := day0.Add(13 * time.Hour); !out.State.LastActive.Equal(want) {
		t.Errorf("LastActive = %v, expected %v", out.State.LastActive, want)
	}
	if !hasReason(out, signal.ReasonLongAbsence) {
		t.Errorf("reasons = %v, expected the catch-up long_absence", out.Reasons)
	}
	if out.State.DecayMultiplier != 0.75 {
		t.Errorf("DecayMultiplier = %v, expected the vitamins to apply after catch-up", out.State.DecayMultiplier)
	}
	if out.State.Health >= onboarded.State.Health {
		t.Errorf("health = %v, expected 13 hours of decay from %v", out.State.Health, onboarded.State.Health)
	}
	if got := testutil.ToFloat64(f.metrics.TicksTotal.WithLabelValues(pipeline.TickCatchUp)); got != 1 {
		t.Errorf("catch-up ticks = %v, expected 1", got)
	}
}

func TestManager_GuardedNoopIsNotPersisted(t *testing.T) {
	f := newFixture(t)
	f.onboard(t, "user-1")
	before := f.states.UpdateCalls

	out, err := f.manager.Apply(context.Background(), "user-1", engine.CompleteHabit{HabitID: "missing"})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if out.Applied || len(out.Reasons) != 0 {
		t.Errorf("outcome = %+v, expected a silent no-op", out)
	}
	if f.states.UpdateCalls != before {
		t.Errorf("update calls = %d, expected %d", f.states.UpdateCalls, before)
	}
}

func TestManager_PersistenceFailureIsReturned(t *testing.T) {
	f := newFixture(t)
	f.onboard(t, "user-1")
	pushes := len(f.notifications.PushCalls)

	redisDown := errors.New("redis down")
	f.states.UpdateError = redisDown

	_, err := f.manager.Apply(context.Background(), "user-1", engine.CompleteHabit{HabitID: "habit-1"})
	if !errors.Is(err, redisDown) {
		t.Fatalf("Apply() error = %v, expected it to wrap %v", err, redisDown)
	}
	if len(f.notifications.PushCalls) != pushes {
		t.Error("notifications were dispatched for a transition that was not persisted")
	}
	if got := testutil.ToFloat64(f.metrics.PersistenceErrors.WithLabelValues("update")); got != 1 {
		t.Errorf("update errors = %v, expected 1", got)
	}

	f.states.UpdateError = nil
	f.states.GetError = redisDown
	if _, err := f.manager.Open(context.Background(), "user-1"); !errors.Is(err, redisDown) {
		t.Errorf("Open() error = %v, expected it to wrap %v", err, redisDown)
	}
}

func TestManager_NotificationFailureIsDegraded(t *testing.T) {
	f := newFixture(t)
	f.onboard(t, "user-1")
	f.notifications.DefaultError = errors.New("inbox full")

	out, err := f.manager.Apply(context.Background(), "user-1", engine.CompleteHabit{HabitID: "habit-1"})
	if err != nil {
		t.Fatalf("Apply() error = %v, expected notification failures not to fail the intent", err)
	}

	if !out.Applied || !out.Degraded {
		t.Errorf("applied = %v degraded = %v, expected an applied but degraded outcome", out.Applied, out.Degraded)
	}
	stored, _ := f.states.GetBuddyState(context.Background(), "user-1")
	if stored.Streak != 1 {
		t.Errorf("stored streak = %d, expected the transition to stand", stored.Streak)
	}
	if got := testutil.ToFloat64(f.metrics.NotificationFailures); got != 1 {
		t.Errorf("notification failures = %v, expected 1", got)
	}
}

func TestManager_CompletionFailureIsDegraded(t *testing.T) {
	f := newFixture(t)
	f.onboard(t, "user-1")
	f.completions.err = errors.New("redis down")

	out, err := f.manager.Apply(context.Background(), "user-1", engine.CompleteHabit{HabitID: "habit-1"})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if !out.Applied || !out.Degraded {
		t.Errorf("applied = %v degraded = %v, expected an applied but degraded outcome", out.Applied, out.Degraded)
	}
}

func TestManager_Open(t *testing.T) {
	f := newFixture(t)
	f.onboard(t, "user-1")

	first, err := f.manager.Open(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	second, err := f.manager.Open(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if !hasReason(first, signal.ReasonWelcome) || hasReason(second, signal.ReasonWelcome) {
		t.Errorf("reasons = %v then %v, expected welcome on the first open only", first.Reasons, second.Reasons)
	}
	if second.State.OpenCount != 2 {
		t.Errorf("OpenCount = %d, expected 2", second.State.OpenCount)
	}
}

func TestManager_Tick(t *testing.T) {
	f := newFixture(t)
	f.onboard(t, "user-1")
	f.clock.Advance(3 * time.Hour)

	out, err := f.manager.Tick(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	again, err := f.manager.Tick(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("second Tick() error = %v", err)
	}

	if !out.Applied || again.Applied {
		t.Errorf("applied = %v then %v, expected the repeat tick to be a no-op", out.Applied, again.Applied)
	}
	if again.State.Health != out.State.Health {
		t.Errorf("health %v then %v, expected no double decay", out.State.Health, again.State.Health)
	}
	if got := testutil.ToFloat64(f.metrics.TicksTotal.WithLabelValues(pipeline.TickScheduled)); got != 1 {
		t.Errorf("scheduled ticks = %v, expected 1", got)
	}

	if _, err := f.manager.Apply(context.Background(), "user-1", engine.Tick{}); err != nil {
		t.Fatalf("tick intent error = %v", err)
	}
	if got := testutil.ToFloat64(f.metrics.TicksTotal.WithLabelValues(pipeline.TickCatchUp)); got != 0 {
		t.Errorf("catch-up ticks = %v, expected none for the tick intent", got)
	}
}

func TestManager_TickAll(t *testing.T) {
	f := newFixture(t)
	f.onboard(t, "user-1")
	f.onboard(t, "user-2")
	f.states.Put("not-onboarded", state.NewBuddyState())
	f.clock.Advance(2 * time.Hour)

	ticked, err := f.manager.TickAll(context.Background())
	if err != nil {
		t.Fatalf("TickAll() error = %v", err)
	}
	if ticked != 2 {
		t.Errorf("ticked = %d, expected 2", ticked)
	}

	for _, id := range []string{"user-1", "user-2"} {
		s, _ := f.states.GetBuddyState(context.Background(), id)
		if want := day0.Add(2 * time.Hour); !s.LastActive.Equal(want) {
			t.Errorf("%s LastActive = %v, expected %v", id, s.LastActive, want)
		}
	}
}

func TestManager_TickAllListFailure(t *testing.T) {
	f := newFixture(t)
	f.states.GetError = errors.New("redis down")

	if _, err := f.manager.TickAll(context.Background()); err == nil {
		t.Error("TickAll() error = nil, expected the list failure")
	}
}

func TestManager_NotificationsAndDismiss(t *testing.T) {
	f := newFixture(t)
	f.onboard(t, "user-1")
	if _, err := f.manager.Open(context.Background(), "user-1"); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	list, err := f.manager.Notifications(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Notifications() error = %v", err)
	}
	if len(list) != 2 || list[0].Reason != string(signal.ReasonWelcome) {
		t.Fatalf("notifications = %+v, expected welcome then onboarding_complete", list)
	}

	found, err := f.manager.DismissNotification(context.Background(), "user-1", list[0].ID)
	if err != nil || !found {
		t.Errorf("DismissNotification() = %v, %v, expected true", found, err)
	}
	found, _ = f.manager.DismissNotification(context.Background(), "user-1", "missing")
	if found {
		t.Error("DismissNotification(missing) = true, expected false")
	}

	list, _ = f.manager.Notifications(context.Background(), "user-1")
	if len(list) != 1 {
		t.Errorf("notifications after dismiss = %d, expected 1", len(list))
	}
}

func TestManager_Reset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.onboard(t, "user-1")
	f.onboard(t, "user-2")
	if _, err := f.manager.Apply(ctx, "user-1", engine.CompleteHabit{HabitID: "habit-1"}); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if err := f.manager.Reset(ctx, "user-1"); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	if _, err := f.manager.State(ctx, "user-1"); !errors.Is(err, pipeline.ErrNotOnboarded) {
		t.Errorf("State() after reset error = %v, expected ErrNotOnboarded", err)
	}
	if list, _ := f.manager.Notifications(ctx, "user-1"); len(list) != 0 {
		t.Errorf("notifications after reset = %d, expected 0", len(list))
	}
	if len(f.completions.days) != 0 {
		t.Errorf("completions after reset = %v, expected none", f.completions.days)
	}
	if _, err := f.manager.State(ctx, "user-2"); err != nil {
		t.Errorf("State(user-2) error = %v, expected the other buddy untouched", err)
	}

	if err := f.manager.Reset(ctx, "user-1"); !errors.Is(err, pipeline.ErrNotOnboarded) {
		t.Errorf("second Reset() error = %v, expected ErrNotOnboarded", err)
	}
	f.onboard(t, "user-1")
}

func TestManager_ResetDeleteFailure(t *testing.T) {
	f := newFixture(t)
	f.onboard(t, "user-1")

	redisDown := errors.New("redis down")
	f.states.UpdateError = redisDown

	if err := f.manager.Reset(context.Background(), "user-1"); !errors.Is(err, redisDown) {
		t.Fatalf("Reset() error = %v, expected it to wrap %v", err, redisDown)
	}
	if got := testutil.ToFloat64(f.metrics.PersistenceErrors.WithLabelValues("delete")); got != 1 {
		t.Errorf("delete errors = %v, expected 1", got)
	}
	if list, _ := f.manager.Notifications(context.Background(), "user-1"); len(list) == 0 {
		t.Error("notifications were cleared although the buddy was not deleted")
	}
}

func TestManager_Analytics(t *testing.T) {
	f := newFixture(t)
	f.onboard(t, "user-1")
	if _, err := f.manager.Apply(context.Background(), "user-1", engine.CompleteHabit{HabitID: "habit-1"}); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	summary, err := f.manager.Analytics(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Analytics() error = %v", err)
	}
	if summary.CompletionsLast7Days != 1 || summary.WeeklyCompletion != 100 {
		t.Errorf("completions = %d weekly = %d%%, expected 1 and 100%%", summary.CompletionsLast7Days, summary.WeeklyCompletion)
	}
	if summary.Streak != 1 || summary.HabitCount != 1 {
		t.Errorf("streak = %d habits = %d, expected 1 and 1", summary.Streak, summary.HabitCount)
	}
}

func TestManager_SerializesWrites(t *testing.T) {
	f := newFixture(t)
	f.onboard(t, "user-1")

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := f.manager.Apply(context.Background(), "user-1", engine.AddHabit{Name: fmt.Sprintf("Habit %d", i)}); err != nil {
				t.Errorf("Apply() error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	s, err := f.manager.State(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("State() error = %v", err)
	}
	if len(s.Habits) != writers+1 {
		t.Errorf("habits = %d, expected %d with no lost update", len(s.Habits), writers+1)
	}
}
