// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package main

import (
	"context"

	"github.com/AccelByte/extend-buddy-progression/internal/app"
	"github.com/AccelByte/extend-buddy-progression/internal/config"
	"github.com/sirupsen/logrus"
)

func main() {
	logrus.Infof("starting buddy progression server..")

	// Load configuration (.env is optional, environment wins)
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("invalid config: %v", err)
	}
	if err := cfg.Logger(); err != nil {
		logrus.Fatalf("failed to configure logger: %v", err)
	}

	ctx := context.Background()

	application, err := app.New(ctx, cfg)
	if err != nil {
		logrus.Fatalf("failed to initialize application: %v", err)
	}

	if err := application.Run(ctx); err != nil {
		logrus.Fatalf("application error: %v", err)
	}
}
