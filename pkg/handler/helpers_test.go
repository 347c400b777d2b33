package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"

	"github.com/AccelByte/extend-buddy-progression/pkg/engine"
	"github.com/AccelByte/extend-buddy-progression/pkg/notify"
	"github.com/AccelByte/extend-buddy-progression/pkg/pipeline"
	"github.com/AccelByte/extend-buddy-progression/pkg/service"
	"github.com/AccelByte/extend-buddy-progression/pkg/state"
)

// testNow is the fixed clock of the test pipeline
var testNow = time.Date(2025, 5, 5, 9, 0, 0, 0, time.UTC)

// setupTestPipeline creates a complete test pipeline with Redis backend.
// Habit ids are habit-1, habit-2, ... in creation order.
func setupTestPipeline(t *testing.T, mr *miniredis.Miniredis) *pipeline.Manager {
	t.Helper()

	client := getRedisClient(mr)
	t.Cleanup(func() { client.Close() })

	deps := service.NewRedisDependencies(client, service.RedisServiceConfig{})

	messages, err := notify.DefaultConfig()
	if err != nil {
		t.Fatalf("DefaultConfig() error = %v", err)
	}
	generator, err := notify.NewTemplateGenerator(messages)
	if err != nil {
		t.Fatalf("NewTemplateGenerator() error = %v", err)
	}

	var mu sync.Mutex
	n := 0
	eng := engine.New(engine.WithIDGenerator(func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("habit-%d", n)
	}))

	return pipeline.NewManager(deps, eng, notify.NewDispatcher(generator, deps.Notifications), pipeline.Config{
		Clock: func() time.Time { return testNow },
	})
}

// getRedisClient returns a Redis client connected to the miniredis instance
func getRedisClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}

// newTestMux wires the buddy and health handlers the way the server does
func newTestMux(t *testing.T, mr *miniredis.Miniredis) *http.ServeMux {
	t.Helper()

	mux := http.NewServeMux()
	NewBuddy(setupTestPipeline(t, mr), nil).Register(mux)

	client := getRedisClient(mr)
	t.Cleanup(func() { client.Close() })
	mux.Handle("GET /healthz", NewHealth(state.NewHealthChecker(client)))
	return mux
}

// do sends a request through mux and returns the recorded response
func do(mux http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}
