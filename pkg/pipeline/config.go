package pipeline

import (
	"fmt"
	"time"

	"github.com/AccelByte/extend-buddy-progression/pkg/metrics"
)

// DefaultStoreTimeout bounds every store call made by the manager
const DefaultStoreTimeout = 5 * time.Second

// Config represents the manager configuration.
type Config struct {
	// StoreTimeout bounds each store call. Zero means DefaultStoreTimeout.
	StoreTimeout time.Duration
	// Clock returns the current time. Nil means time.Now.
	Clock func() time.Time
	// Metrics receives pipeline observations. Nil disables metrics.
	Metrics *metrics.Collectors
}

// Validate validates the configuration for common errors.
func (c *Config) Validate() error {
	if c.StoreTimeout < 0 {
		return fmt.Errorf("store timeout must not be negative, got %v", c.StoreTimeout)
	}
	return nil
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.StoreTimeout == 0 {
		out.StoreTimeout = DefaultStoreTimeout
	}
	if out.Clock == nil {
		out.Clock = time.Now
	}
	return out
}
