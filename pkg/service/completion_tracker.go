package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	completionTrackerDefaultTTL = 30 * 24 * time.Hour // 30 days retention
	completionTrackerRetainDays = 30
	completionTrackerKeyPrefix  = "buddy_progression:completions:"
	completionTrackerDayKeyFmt  = "2006-01-02"
)

// RedisCompletionTracker counts habit completions per calendar day in a Redis
// hash. Retains 30 days so analytics can look back a week and a month.
type RedisCompletionTracker struct {
	client redis.Cmdable
	cfg    RedisCompletionTrackerConfig
}

type RedisCompletionTrackerConfig struct {
	// Location decides the calendar day of a completion. Nil means UTC.
	Location *time.Location
}

func NewRedisCompletionTracker(client redis.Cmdable, cfg RedisCompletionTrackerConfig) *RedisCompletionTracker {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &RedisCompletionTracker{
		client: client,
		cfg:    cfg,
	}
}

func makeCompletionTrackerKey(userID string) string {
	return fmt.Sprintf("%s%s", completionTrackerKeyPrefix, userID)
}

func (r *RedisCompletionTracker) dayKey(t time.Time) string {
	return t.In(r.cfg.Location).Format(completionTrackerDayKeyFmt)
}

// RecordCompletion increments the counter for the day of at and drops days
// older than the retention window.
func (r *RedisCompletionTracker) RecordCompletion(ctx context.Context, userID string, at time.Time) error {
	key := makeCompletionTrackerKey(userID)

	// Atomic increment using HINCRBY
	if err := r.client.HIncrBy(ctx, key, r.dayKey(at), 1).Err(); err != nil {
		return fmt.Errorf("failed to increment completion count: %w", err)
	}

	// Day keys sort lexically, so anything below the cutoff is expired
	days, err := r.client.HKeys(ctx, key).Result()
	if err == nil && len(days) > 0 {
		cutoff := r.dayKey(at.AddDate(0, 0, -completionTrackerRetainDays))

		var toDelete []string
		for _, day := range days {
			if day < cutoff {
				toDelete = append(toDelete, day)
			}
		}

		if len(toDelete) > 0 {
			r.client.HDel(ctx, key, toDelete...)
		}
	}

	r.client.Expire(ctx, key, completionTrackerDefaultTTL)

	return nil
}

// GetCompletions retrieves the completion history for a user.
// Returns an empty history if none exists.
func (r *RedisCompletionTracker) GetCompletions(ctx context.Context, userID string) (*CompletionHistory, error) {
	data, err := r.client.HGetAll(ctx, makeCompletionTrackerKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get completions: %w", err)
	}

	byDay := make(map[string]int, len(data))
	for day, countStr := range data {
		count, err := strconv.Atoi(countStr)
		if err != nil {
			// Skip invalid entries
			continue
		}
		byDay[day] = count
	}

	return &CompletionHistory{ByDay: byDay}, nil
}

// ClearCompletions deletes the user's completion counters
func (r *RedisCompletionTracker) ClearCompletions(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, makeCompletionTrackerKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear completions: %w", err)
	}
	return nil
}
