// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package state

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultTTL is the default TTL for buddy state in Redis (90 days), refreshed on every write
	DefaultTTL = 90 * 24 * time.Hour
	// KeyPrefix is the prefix for all buddy state keys
	KeyPrefix = "buddy_progression:user_state:"
)

// makeKey creates a Redis key for a user
func makeKey(userID string) string {
	return fmt.Sprintf("%s%s", KeyPrefix, userID)
}

// GetBuddyState retrieves the buddy state for a user from Redis.
// A user without stored state gets a fresh, not yet onboarded state.
func GetBuddyState(ctx context.Context, client redis.Cmdable, userID string) (*BuddyState, error) {
	key := makeKey(userID)

	data, err := client.Get(ctx, key).Result()
	if err == redis.Nil {
		logrus.Infof("no existing state for user %s, returning new state", userID)
		return NewBuddyState(), nil
	}
	if err != nil {
		logrus.Errorf("failed to get state for user %s: %v", userID, err)
		return nil, fmt.Errorf("failed to get state: %w", err)
	}

	state := NewBuddyState()
	if err := json.Unmarshal([]byte(data), state); err != nil {
		logrus.Errorf("failed to unmarshal state for user %s: %v", userID, err)
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}

	logrus.Debugf("retrieved state for user %s", userID)
	return state, nil
}

// UpdateBuddyState writes the buddy state for a user to Redis
func UpdateBuddyState(ctx context.Context, client redis.Cmdable, userID string, state *BuddyState, ttl time.Duration) error {
	key := makeKey(userID)
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	data, err := json.Marshal(state)
	if err != nil {
		logrus.Errorf("failed to marshal state for user %s: %v", userID, err)
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := client.Set(ctx, key, data, ttl).Err(); err != nil {
		logrus.Errorf("failed to set state for user %s: %v", userID, err)
		return fmt.Errorf("failed to set state: %w", err)
	}

	logrus.Debugf("updated state for user %s with TTL %v", userID, ttl)
	return nil
}

// DeleteBuddyState deletes the buddy state for a user from Redis
func DeleteBuddyState(ctx context.Context, client redis.Cmdable, userID string) error {
	key := makeKey(userID)

	if err := client.Del(ctx, key).Err(); err != nil {
		logrus.Errorf("failed to delete state for user %s: %v", userID, err)
		return fmt.Errorf("failed to delete state: %w", err)
	}

	logrus.Infof("deleted state for user %s", userID)
	return nil
}

// ListUserIDs scans the keyspace for every user with stored state.
// Used by the scheduler to tick all known buddies.
func ListUserIDs(ctx context.Context, client redis.Cmdable) ([]string, error) {
	var (
		cursor uint64
		ids    []string
	)

	for {
		keys, next, err := client.Scan(ctx, cursor, KeyPrefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan state keys: %w", err)
		}
		for _, key := range keys {
			ids = append(ids, key[len(KeyPrefix):])
		}
		if next == 0 {
			break
		}
		cursor = next
	}

	return ids, nil
}
