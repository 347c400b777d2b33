package service

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/AccelByte/extend-buddy-progression/pkg/state"
)

// RedisBuddyStateStore implements StateStore using Redis.
type RedisBuddyStateStore struct {
	client redis.Cmdable
	cfg    RedisBuddyStateStoreConfig
}

type RedisBuddyStateStoreConfig struct {
	// TTL of each state key, refreshed on every write. Zero means state.DefaultTTL.
	TTL time.Duration
}

// NewRedisBuddyStateStore creates a new Redis-backed state store.
func NewRedisBuddyStateStore(
	client redis.Cmdable,
	cfg RedisBuddyStateStoreConfig,
) *RedisBuddyStateStore {
	return &RedisBuddyStateStore{
		client: client,
		cfg:    cfg,
	}
}

// GetBuddyState retrieves the buddy state for a user from Redis
func (r *RedisBuddyStateStore) GetBuddyState(ctx context.Context, userID string) (*state.BuddyState, error) {
	return state.GetBuddyState(ctx, r.client, userID)
}

// UpdateBuddyState writes the buddy state for a user to Redis
func (r *RedisBuddyStateStore) UpdateBuddyState(ctx context.Context, userID string, s *state.BuddyState) error {
	return state.UpdateBuddyState(ctx, r.client, userID, s, r.cfg.TTL)
}

// DeleteBuddyState deletes the buddy state for a user from Redis
func (r *RedisBuddyStateStore) DeleteBuddyState(ctx context.Context, userID string) error {
	return state.DeleteBuddyState(ctx, r.client, userID)
}

// ListUserIDs returns every user with stored state
func (r *RedisBuddyStateStore) ListUserIDs(ctx context.Context) ([]string, error) {
	return state.ListUserIDs(ctx, r.client)
}
