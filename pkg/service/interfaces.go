package service

import (
	"context"
	"time"

	"github.com/AccelByte/extend-buddy-progression/pkg/state"
)

// Storage interfaces the pipeline depends on.
//
// You may not need to have interface and go with direct struct usage,
// but having interfaces allows easier mocking for unit tests.

// StateStore defines the interface for accessing buddy state.
// This allows for easier testing and different storage implementations.
type StateStore interface {
	GetBuddyState(ctx context.Context, userID string) (*state.BuddyState, error)
	UpdateBuddyState(ctx context.Context, userID string, s *state.BuddyState) error
	DeleteBuddyState(ctx context.Context, userID string) error
	ListUserIDs(ctx context.Context) ([]string, error)
}

type NotificationStore interface {
	// Push stores a notification as the newest entry for the user
	Push(ctx context.Context, userID string, n Notification) error
	// List returns the user's notifications, newest first
	List(ctx context.Context, userID string) ([]Notification, error)
	// Dismiss removes one notification. Returns false if it was not found.
	Dismiss(ctx context.Context, userID, notificationID string) (bool, error)
	// Clear removes the user's whole inbox
	Clear(ctx context.Context, userID string) error
}

type CompletionTracker interface {
	// RecordCompletion counts one habit completion on the day of at
	RecordCompletion(ctx context.Context, userID string, at time.Time) error
	// GetCompletions returns completion counts keyed by day
	GetCompletions(ctx context.Context, userID string) (*CompletionHistory, error)
	// ClearCompletions removes the user's completion history
	ClearCompletions(ctx context.Context, userID string) error
}
