// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/AccelByte/extend-buddy-progression/pkg/handler"
	"github.com/AccelByte/extend-buddy-progression/pkg/pipeline"
	"github.com/AccelByte/extend-buddy-progression/pkg/state"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	readHeaderTimeout = 5 * time.Second
	idleTimeout       = 60 * time.Second
)

// HTTPServer manages the buddy API server lifecycle.
type HTTPServer struct {
	server  *http.Server
	port    int
	manager *pipeline.Manager
	checker *state.HealthChecker
}

// NewHTTPServer creates a new HTTP server instance.
func NewHTTPServer(port int, manager *pipeline.Manager, checker *state.HealthChecker) *HTTPServer {
	return &HTTPServer{
		port:    port,
		manager: manager,
		checker: checker,
	}
}

// Setup configures middleware and registers handlers.
//
// ============================================================
// DEVELOPER: HTTP server configuration
// ============================================================
// This method sets up:
// 1. Buddy routes (onboarding, intents, state, notifications)
// 2. Health check for Kubernetes liveness/readiness checks
// 3. Middleware (request logging, OpenTelemetry)
// ============================================================
func (s *HTTPServer) Setup() error {
	mux := http.NewServeMux()

	// ============================================================
	// DEVELOPER: Register handlers here
	// ============================================================
	// To add a new endpoint:
	// 1. Add the pipeline operation in pkg/pipeline/manager.go
	// 2. Add the handler method in pkg/handler/buddy.go
	// 3. Add the route in Buddy.Register
	// ============================================================
	handler.NewBuddy(s.manager, nil).Register(mux)
	mux.Handle("GET /healthz", handler.NewHealth(s.checker))

	logrus.Infof("registered buddy routes and health check")

	// ============================================================
	// DEVELOPER: Add custom middleware here
	// ============================================================
	// Middleware wraps every request. The outermost runs first.
	// Add middleware for:
	// - Authentication/authorization
	// - Rate limiting
	// ============================================================
	var h http.Handler = mux
	h = logRequests(h)
	h = otelhttp.NewHandler(h, "buddy-progression")

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           h,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}

	return nil
}

// Handler returns the configured handler. Setup must be called first.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

// Start begins listening and serving HTTP requests.
func (s *HTTPServer) Start(ctx context.Context) error {
	go func() {
		logrus.Infof("HTTP server listening on port %d", s.port)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	}()
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	logrus.Info("shutting down HTTP server...")
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	logrus.Info("HTTP server stopped")
	return nil
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// logRequests logs one line per request at debug level, or warn for 5xx
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		entry := logrus.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start),
		})
		if rec.status >= http.StatusInternalServerError {
			entry.Warn("request failed")
			return
		}
		entry.Debug("request served")
	})
}
