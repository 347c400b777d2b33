package mock

import (
	"context"
	"sync"

	"github.com/AccelByte/extend-buddy-progression/pkg/service"
)

// NotificationStore is an in-memory mock of service.NotificationStore for testing
type NotificationStore struct {
	// PushFunc is called when Push is invoked
	PushFunc func(ctx context.Context, userID string, n service.Notification) error

	// DefaultError is returned by every method when set
	DefaultError error

	mu    sync.Mutex
	inbox map[string][]service.Notification

	// Call tracking
	PushCalls []PushCall
}

// PushCall tracks parameters for Push calls
type PushCall struct {
	UserID       string
	Notification service.Notification
}

// NewNotificationStore creates a new empty mock NotificationStore
func NewNotificationStore() *NotificationStore {
	return &NotificationStore{
		inbox: make(map[string][]service.Notification),
	}
}

// Push records the call and stores n unless an error is configured
func (m *NotificationStore) Push(ctx context.Context, userID string, n service.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PushCalls = append(m.PushCalls, PushCall{UserID: userID, Notification: n})

	if m.PushFunc != nil {
		if err := m.PushFunc(ctx, userID, n); err != nil {
			return err
		}
	}
	if m.DefaultError != nil {
		return m.DefaultError
	}

	m.inbox[userID] = append([]service.Notification{n}, m.inbox[userID]...)
	return nil
}

// List returns the stored notifications, newest first
func (m *NotificationStore) List(ctx context.Context, userID string) ([]service.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.DefaultError != nil {
		return nil, m.DefaultError
	}
	return append([]service.Notification{}, m.inbox[userID]...), nil
}

// Dismiss removes a stored notification
func (m *NotificationStore) Dismiss(ctx context.Context, userID, notificationID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.DefaultError != nil {
		return false, m.DefaultError
	}
	for i, n := range m.inbox[userID] {
		if n.ID == notificationID {
			m.inbox[userID] = append(m.inbox[userID][:i], m.inbox[userID][i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// Clear drops the user's stored notifications
func (m *NotificationStore) Clear(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.DefaultError != nil {
		return m.DefaultError
	}
	delete(m.inbox, userID)
	return nil
}
