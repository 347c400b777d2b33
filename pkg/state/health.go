// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package state

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// HealthStatus is the result of a store health check
type HealthStatus struct {
	Healthy bool          `json:"healthy"`
	Latency time.Duration `json:"latency"`
	Error   string        `json:"error,omitempty"`
}

// HealthChecker pings the Redis backing store
type HealthChecker struct {
	client  redis.Cmdable
	timeout time.Duration
}

// NewHealthChecker creates a new health checker
func NewHealthChecker(client redis.Cmdable) *HealthChecker {
	return &HealthChecker{client: client, timeout: 2 * time.Second}
}

// Check pings Redis within the checker's timeout
func (h *HealthChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	if _, err := h.client.Ping(ctx).Result(); err != nil {
		logrus.Errorf("Redis health check failed: %v", err)
		return err
	}

	logrus.Debugf("Redis health check passed")
	return nil
}

// Status runs Check and reports the outcome with its latency
func (h *HealthChecker) Status(ctx context.Context) HealthStatus {
	start := time.Now()
	err := h.Check(ctx)

	status := HealthStatus{Healthy: err == nil, Latency: time.Since(start)}
	if err != nil {
		status.Error = err.Error()
	}
	return status
}
