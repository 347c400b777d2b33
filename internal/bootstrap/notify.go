// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package bootstrap

import (
	"fmt"

	"github.com/AccelByte/extend-buddy-progression/pkg/notify"
	"github.com/AccelByte/extend-buddy-progression/pkg/service"
	"github.com/sirupsen/logrus"
)

// InitNotifier loads the message templates and creates the dispatcher that
// turns signals into inbox notifications.
//
// ============================================================
// DEVELOPER: Customize notification copy
// ============================================================
// Messages are defined per reason code in YAML. The built-in
// set is pkg/notify/messages.yaml. To override it, point
// MESSAGES_PATH at your own file:
//
// messages:
//   reminder:
//     normal: "{{.BuddyName}} misses you!"
//     grumpy: "{{.BuddyName}} is starving..."
//
// Reasons without a message use the fallback entry.
// ============================================================
func InitNotifier(messagesPath string, store service.NotificationStore) (*notify.Dispatcher, *notify.Config, error) {
	messages, err := notify.LoadConfig(messagesPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load messages: %w", err)
	}

	generator, err := notify.NewTemplateGenerator(messages)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compile messages: %w", err)
	}

	source := messagesPath
	if source == "" {
		source = "built-in"
	}
	logrus.Infof("loaded %d notification messages (%s)", len(messages.Messages), source)

	return notify.NewDispatcher(generator, store), messages, nil
}
