package pipeline

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-buddy-progression/pkg/notify"
	"github.com/AccelByte/extend-buddy-progression/pkg/service"
	"github.com/AccelByte/extend-buddy-progression/pkg/signal"
)

// ValidateWiring validates that the pipeline is correctly wired.
// It checks that:
// - The state store and notification store are present
// - Every reason code the engine can raise has a message, or warns that the
//   fallback will be used
//
// A missing completion tracker only disables the completion counts in analytics.
func ValidateWiring(deps *service.Dependencies, messages *notify.Config) error {
	if deps == nil {
		return fmt.Errorf("pipeline wiring validation failed: no dependencies")
	}

	var errors []string

	if deps.States == nil {
		errors = append(errors, "state store is not configured")
	}
	if deps.Notifications == nil {
		errors = append(errors, "notification store is not configured")
	}
	if deps.Completions == nil {
		logrus.Warnf("completion tracker is not configured, analytics will report no completions")
	}

	if messages != nil {
		for _, reason := range signal.AllReasons() {
			if _, ok := messages.Messages[string(reason)]; !ok {
				logrus.Warnf("no message configured for %s, the fallback message will be used", reason)
			}
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("pipeline wiring validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}
