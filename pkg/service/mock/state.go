package mock

import (
	"context"
	"sort"
	"sync"

	"github.com/AccelByte/extend-buddy-progression/pkg/service"
	"github.com/AccelByte/extend-buddy-progression/pkg/state"
)

var _ service.StateStore = (*StateStore)(nil)

// StateStore is an in-memory mock of service.StateStore for testing
type StateStore struct {
	// GetError and UpdateError are returned by the matching method when set.
	// DeleteBuddyState fails with UpdateError.
	GetError    error
	UpdateError error

	mu     sync.Mutex
	states map[string]*state.BuddyState

	// Call tracking
	UpdateCalls int
}

// NewStateStore creates a new empty mock StateStore
func NewStateStore() *StateStore {
	return &StateStore{
		states: make(map[string]*state.BuddyState),
	}
}

// Put seeds the store with s for userID
func (m *StateStore) Put(userID string, s *state.BuddyState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[userID] = s.Clone()
}

// GetBuddyState returns a copy of the stored state or a new one
func (m *StateStore) GetBuddyState(ctx context.Context, userID string) (*state.BuddyState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetError != nil {
		return nil, m.GetError
	}
	if s, ok := m.states[userID]; ok {
		return s.Clone(), nil
	}
	return state.NewBuddyState(), nil
}

// UpdateBuddyState stores a copy of s
func (m *StateStore) UpdateBuddyState(ctx context.Context, userID string, s *state.BuddyState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpdateCalls++
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.states[userID] = s.Clone()
	return nil
}

// DeleteBuddyState removes the stored state
func (m *StateStore) DeleteBuddyState(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.UpdateError != nil {
		return m.UpdateError
	}
	delete(m.states, userID)
	return nil
}

// ListUserIDs returns the stored user ids in sorted order
func (m *StateStore) ListUserIDs(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetError != nil {
		return nil, m.GetError
	}
	ids := make([]string, 0, len(m.states))
	for id := range m.states {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
