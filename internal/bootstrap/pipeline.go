// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package bootstrap

import (
	"fmt"

	"github.com/AccelByte/extend-buddy-progression/pkg/engine"
	"github.com/AccelByte/extend-buddy-progression/pkg/notify"
	"github.com/AccelByte/extend-buddy-progression/pkg/pipeline"
	"github.com/AccelByte/extend-buddy-progression/pkg/service"
	"github.com/sirupsen/logrus"
)

// InitPipeline validates the store wiring and creates the pipeline manager.
//
// ============================================================
// DEVELOPER: Pipeline flow
// ============================================================
// Every request runs the same cycle:
// Load state → catch-up decay → Intent → Save → Notifications
//
// Stores are wired in pkg/service/redis.go. The state and
// notification stores are required; the completion tracker is
// optional and only feeds analytics.
// ============================================================
func InitPipeline(
	deps *service.Dependencies,
	eng *engine.Engine,
	dispatcher *notify.Dispatcher,
	messages *notify.Config,
	cfg pipeline.Config,
) (*pipeline.Manager, error) {
	if err := pipeline.ValidateWiring(deps, messages); err != nil {
		return nil, err
	}
	logrus.Info("pipeline wiring validation passed")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline config: %w", err)
	}

	manager := pipeline.NewManager(deps, eng, dispatcher, cfg)
	logrus.Infof("initialized pipeline manager")

	return manager, nil
}
