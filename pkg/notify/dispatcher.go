package notify

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-buddy-progression/pkg/service"
	"github.com/AccelByte/extend-buddy-progression/pkg/signal"
	"github.com/AccelByte/extend-buddy-progression/pkg/state"
)

// Built-in fallback messages used when no fallback is configured
const (
	DefaultFallbackMessage       = "You're doing great! Keep it up!"
	DefaultGrumpyFallbackMessage = "Ugh, fine. Let's just do something."
)

// Result is the outcome of dispatching a batch of signals.
// Degraded is set when any message fell back or could not be stored.
type Result struct {
	Notifications []service.Notification
	Degraded      bool
	Errors        []error
}

func (r *Result) fail(err error) {
	r.Degraded = true
	r.Errors = append(r.Errors, err)
}

// Dispatcher renders signals into notifications and pushes them to the store.
// Failures never abort the batch; they mark the result degraded.
type Dispatcher struct {
	generator Generator
	store     service.NotificationStore
	fallback  MessageConfig
	newID     func() string
}

// DispatcherOption configures a Dispatcher
type DispatcherOption func(*Dispatcher)

// WithFallback sets the static messages used when rendering fails and the
// generator has no fallback of its own
func WithFallback(cfg MessageConfig) DispatcherOption {
	return func(d *Dispatcher) {
		if cfg.Normal != "" {
			d.fallback = cfg
		}
	}
}

// WithNotificationIDs overrides notification id generation
func WithNotificationIDs(fn func() string) DispatcherOption {
	return func(d *Dispatcher) {
		if fn != nil {
			d.newID = fn
		}
	}
}

// NewDispatcher creates a dispatcher. A nil store renders without storing.
func NewDispatcher(generator Generator, store service.NotificationStore, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		generator: generator,
		store:     store,
		fallback: MessageConfig{
			Normal: DefaultFallbackMessage,
			Grumpy: DefaultGrumpyFallbackMessage,
		},
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch renders and stores one notification per signal, in order
func (d *Dispatcher) Dispatch(ctx context.Context, userID string, s *state.BuddyState, signals []signal.Signal) *Result {
	result := &Result{}

	for _, sig := range signals {
		buddy := signal.BuildBuddyContext(userID, s, sig)

		message, err := d.render(ctx, sig.Reason, buddy)
		if err != nil {
			logrus.Warnf("falling back for %s message to user %s: %v", sig.Reason, userID, err)
			result.fail(err)
			message = d.fallbackFor(buddy.Health)
		}

		n := service.Notification{
			ID:        d.newID(),
			Reason:    string(sig.Reason),
			Message:   message,
			Timestamp: sig.Timestamp,
		}
		result.Notifications = append(result.Notifications, n)

		if d.store == nil {
			continue
		}
		if err := d.store.Push(ctx, userID, n); err != nil {
			logrus.Errorf("failed to store %s notification for user %s: %v", sig.Reason, userID, err)
			result.fail(fmt.Errorf("failed to store notification: %w", err))
			continue
		}

		logrus.Debugf("stored %s notification %s for user %s", sig.Reason, n.ID, userID)
	}

	return result
}

func (d *Dispatcher) fallbackFor(health float64) string {
	if g, ok := d.generator.(FallbackGenerator); ok {
		if msg := g.Fallback(health); msg != "" {
			return msg
		}
	}
	return fallbackMessage(d.fallback, health)
}

func (d *Dispatcher) render(ctx context.Context, reason signal.Reason, buddy *signal.BuddyContext) (string, error) {
	if d.generator == nil {
		return "", fmt.Errorf("%w: %s", ErrNoMessage, reason)
	}
	return d.generator.Generate(ctx, reason, buddy)
}
