// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package app

import (
	"context"
	"fmt"
	"time"

	"github.com/AccelByte/extend-buddy-progression/internal/bootstrap"
	"github.com/AccelByte/extend-buddy-progression/internal/config"
	"github.com/AccelByte/extend-buddy-progression/internal/server"
	"github.com/AccelByte/extend-buddy-progression/pkg/metrics"
	"github.com/AccelByte/extend-buddy-progression/pkg/pipeline"
	"github.com/AccelByte/extend-buddy-progression/pkg/service"
	"github.com/AccelByte/extend-buddy-progression/pkg/state"
	"github.com/cenkalti/backoff/v4"

	"github.com/go-redis/redis/v8"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// App holds all application dependencies and manages the application lifecycle.
type App struct {
	cfg               *config.Config
	httpServer        *server.HTTPServer
	grpcServer        *server.GRPCServer
	metricsServer     *server.MetricsServer
	redisClient       *redis.Client
	scheduler         *cron.Cron
	pipelineManager   *pipeline.Manager
	shutdownTelemetry func(context.Context) error
}

// New creates and initializes a new application instance.
//
// ============================================================
// DEVELOPER: Application initialization order
// ============================================================
// Components are initialized in dependency order:
// 1. Redis (required for state storage)
// 2. Stores (buddy state, notifications, completions)
// 3. Metrics collectors
// 4. Engine, notifier and pipeline manager
// 5. Servers (HTTP, gRPC health, metrics)
// 6. Telemetry (OpenTelemetry tracing)
// 7. Decay scheduler
//
// If you add new external dependencies, initialize them in
// step 2 before bootstrapping the pipeline.
// ============================================================
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logrus.Info("initializing application...")

	app := &App{cfg: cfg}

	// ============================================================
	// Step 1: Initialize Redis
	// ============================================================
	if err := app.initRedis(ctx); err != nil {
		return nil, fmt.Errorf("failed to init Redis: %w", err)
	}

	// ============================================================
	// Step 2: Initialize stores
	// ============================================================
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	deps := service.NewRedisDependencies(app.redisClient, service.RedisServiceConfig{
		StateTTL:          cfg.StateTTL,
		NotificationCap:   cfg.NotificationCap,
		CompletionDayZone: loc,
	})

	// ============================================================
	// Step 3: Metrics collectors
	// ============================================================
	collectors := metrics.NewCollectors()

	// ============================================================
	// Step 4: Bootstrap engine, notifier and pipeline
	// ============================================================
	eng, err := bootstrap.InitEngine(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to init engine: %w", err)
	}

	dispatcher, messages, err := bootstrap.InitNotifier(cfg.MessagesPath, deps.Notifications)
	if err != nil {
		return nil, fmt.Errorf("failed to init notifier: %w", err)
	}

	app.pipelineManager, err = bootstrap.InitPipeline(deps, eng, dispatcher, messages, pipeline.Config{
		StoreTimeout: cfg.StoreTimeout,
		Metrics:      collectors,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init pipeline: %w", err)
	}

	// ============================================================
	// Step 5: Setup servers
	// ============================================================
	checker := state.NewHealthChecker(app.redisClient)
	app.httpServer = server.NewHTTPServer(cfg.HTTPPort, app.pipelineManager, checker)
	if err := app.httpServer.Setup(); err != nil {
		return nil, fmt.Errorf("failed to setup HTTP server: %w", err)
	}

	app.grpcServer = server.NewGRPCServer(cfg.GRPCPort, checker)
	if err := app.grpcServer.Setup(); err != nil {
		return nil, fmt.Errorf("failed to setup gRPC server: %w", err)
	}

	app.metricsServer = server.NewMetricsServer(cfg.MetricsPort, "/metrics", collectors)
	if err := app.metricsServer.Setup(); err != nil {
		return nil, fmt.Errorf("failed to setup metrics server: %w", err)
	}

	// ============================================================
	// Step 6: Setup telemetry
	// ============================================================
	if cfg.OtelEnabled {
		shutdownTelemetry, err := server.SetupTelemetry(ctx, cfg.ServiceName, cfg.Environment, cfg.ZipkinEndpoint, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to setup telemetry: %w", err)
		}
		app.shutdownTelemetry = shutdownTelemetry
	}

	// ============================================================
	// Step 7: Setup decay scheduler
	// ============================================================
	if err := app.initScheduler(loc); err != nil {
		return nil, fmt.Errorf("failed to init scheduler: %w", err)
	}

	logrus.Info("application initialized successfully")

	return app, nil
}

// initRedis initializes the Redis client.
func (a *App) initRedis(ctx context.Context) error {
	client := redis.NewClient(&redis.Options{
		Addr:         a.cfg.RedisAddr(),
		Password:     a.cfg.RedisPassword,
		DB:           0, // use default DB
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Duration(a.cfg.RedisRetryDelayMs) * time.Millisecond
	maxRetries := backoff.WithMaxRetries(b, uint64(a.cfg.RedisMaxRetries))

	err := backoff.Retry(
		func() error {
			_, err := client.Ping(ctx).Result()
			if err != nil {
				logrus.Warnf("Redis connection failed: %v, retrying...", err)
				return err
			}
			return nil
		},
		backoff.WithContext(maxRetries, ctx),
	)

	if err != nil {
		client.Close()
		return err
	}

	a.redisClient = client
	logrus.Infof("Redis client initialized (%s)", a.cfg.RedisAddr())
	return nil
}

// initScheduler registers the periodic decay sweep.
//
// ============================================================
// DEVELOPER: Decay schedule
// ============================================================
// TICK_SCHEDULE is a standard cron expression or descriptor
// ("@hourly", "*/15 * * * *"). Decay is computed from elapsed
// time, so the schedule only controls how fresh stored health
// is for users who have not opened the app. Every request also
// catches up decay before it runs.
// ============================================================
func (a *App) initScheduler(loc *time.Location) error {
	a.scheduler = cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	_, err := a.scheduler.AddFunc(a.cfg.TickSchedule, a.tickAll)
	if err != nil {
		return fmt.Errorf("invalid TICK_SCHEDULE %q: %w", a.cfg.TickSchedule, err)
	}

	logrus.Infof("scheduled decay sweep (%s)", a.cfg.TickSchedule)
	return nil
}

// tickAll runs one decay sweep over every stored buddy
func (a *App) tickAll() {
	ticked, err := a.pipelineManager.TickAll(context.Background())
	if err != nil {
		logrus.Errorf("decay sweep failed: %v", err)
		return
	}
	logrus.Debugf("decay sweep ticked %d buddies", ticked)
}
