package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const (
	notificationStoreDefaultTTL = 30 * 24 * time.Hour
	notificationStoreDefaultCap = 50
	notificationStoreKeyPrefix  = "buddy_progression:notifications:"
)

// RedisNotificationStore keeps each user's notifications in a capped Redis
// list, newest at the head.
type RedisNotificationStore struct {
	client redis.Cmdable
	cfg    RedisNotificationStoreConfig
}

type RedisNotificationStoreConfig struct {
	// Cap is the number of notifications kept per user. Zero means 50.
	Cap int
	// TTL of the list, refreshed on every push. Zero means 30 days.
	TTL time.Duration
}

func NewRedisNotificationStore(client redis.Cmdable, cfg RedisNotificationStoreConfig) *RedisNotificationStore {
	if cfg.Cap <= 0 {
		cfg.Cap = notificationStoreDefaultCap
	}
	if cfg.TTL <= 0 {
		cfg.TTL = notificationStoreDefaultTTL
	}
	return &RedisNotificationStore{
		client: client,
		cfg:    cfg,
	}
}

func makeNotificationStoreKey(userID string) string {
	return fmt.Sprintf("%s%s", notificationStoreKeyPrefix, userID)
}

// Push prepends n and trims the list to the configured cap
func (r *RedisNotificationStore) Push(ctx context.Context, userID string, n Notification) error {
	key := makeNotificationStoreKey(userID)

	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, data)
		pipe.LTrim(ctx, key, 0, int64(r.cfg.Cap-1))
		pipe.Expire(ctx, key, r.cfg.TTL)
		return nil
	})
	if err != nil {
		logrus.Errorf("failed to push notification for user %s: %v", userID, err)
		return fmt.Errorf("failed to push notification: %w", err)
	}

	return nil
}

// List returns the user's notifications, newest first.
// Returns an empty slice if the user has none.
func (r *RedisNotificationStore) List(ctx context.Context, userID string) ([]Notification, error) {
	raw, err := r.client.LRange(ctx, makeNotificationStoreKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	notifications := make([]Notification, 0, len(raw))
	for _, item := range raw {
		var n Notification
		if err := json.Unmarshal([]byte(item), &n); err != nil {
			// Skip invalid entries
			logrus.Warnf("skipping unreadable notification for user %s: %v", userID, err)
			continue
		}
		notifications = append(notifications, n)
	}

	return notifications, nil
}

// Dismiss removes the notification with the given id
func (r *RedisNotificationStore) Dismiss(ctx context.Context, userID, notificationID string) (bool, error) {
	key := makeNotificationStoreKey(userID)

	raw, err := r.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return false, fmt.Errorf("failed to list notifications: %w", err)
	}

	for _, item := range raw {
		var n Notification
		if err := json.Unmarshal([]byte(item), &n); err != nil || n.ID != notificationID {
			continue
		}
		removed, err := r.client.LRem(ctx, key, 1, item).Result()
		if err != nil {
			return false, fmt.Errorf("failed to dismiss notification: %w", err)
		}
		return removed > 0, nil
	}

	return false, nil
}

// Clear deletes the user's inbox
func (r *RedisNotificationStore) Clear(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, makeNotificationStoreKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear notifications: %w", err)
	}
	return nil
}
