package service

import (
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisServiceConfig configures every Redis-backed store
type RedisServiceConfig struct {
	StateTTL          time.Duration
	NotificationCap   int
	NotificationTTL   time.Duration
	CompletionDayZone *time.Location
}

// NewRedisDependencies wires all stores onto a single Redis client
func NewRedisDependencies(
	client redis.UniversalClient,
	cfg RedisServiceConfig,
) *Dependencies {
	return NewDependencies().
		WithStateStore(NewRedisBuddyStateStore(client, RedisBuddyStateStoreConfig{
			TTL: cfg.StateTTL,
		})).
		WithNotificationStore(NewRedisNotificationStore(client, RedisNotificationStoreConfig{
			Cap: cfg.NotificationCap,
			TTL: cfg.NotificationTTL,
		})).
		WithCompletionTracker(NewRedisCompletionTracker(client, RedisCompletionTrackerConfig{
			Location: cfg.CompletionDayZone,
		}))
}
