package notify

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/AccelByte/extend-buddy-progression/pkg/signal"
)

//go:embed messages.yaml
var defaultMessages []byte

// Config represents the notification message configuration.
type Config struct {
	Fallback MessageConfig            `yaml:"fallback"`
	Messages map[string]MessageConfig `yaml:"messages"`
}

// MessageConfig holds the message variants for one reason code.
type MessageConfig struct {
	Normal string `yaml:"normal"`
	Grumpy string `yaml:"grumpy,omitempty"` // Used when the buddy is tired; falls back to Normal
}

// DefaultConfig returns the built-in message set
func DefaultConfig() (*Config, error) {
	return ParseConfig(defaultMessages)
}

// LoadConfig loads message configuration from a YAML file.
// Supports environment variable expansion in the form ${VAR_NAME} or ${VAR_NAME:default}.
// An empty path loads the built-in messages.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read messages file %s: %w", path, err)
	}

	return ParseConfig(data)
}

// ParseConfig expands environment variables in data, parses it and validates it
func ParseConfig(data []byte) (*Config, error) {
	expanded := expandEnvVars(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expanded), &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration for common errors.
func (c *Config) Validate() error {
	if c.Fallback.Normal == "" {
		return fmt.Errorf("fallback has empty normal message")
	}

	for reason, msg := range c.Messages {
		if !signal.Reason(reason).Valid() {
			return fmt.Errorf("unknown reason code: %s", reason)
		}
		if msg.Normal == "" {
			return fmt.Errorf("reason %s has empty normal message", reason)
		}
	}

	return nil
}

// expandEnvVars expands environment variables in the format ${VAR} or ${VAR:default}.
func expandEnvVars(s string) string {
	return os.Expand(s, func(key string) string {
		// Support ${VAR:default} syntax
		parts := strings.SplitN(key, ":", 2)
		varName := parts[0]
		defaultValue := ""
		if len(parts) == 2 {
			defaultValue = parts[1]
		}

		value := os.Getenv(varName)
		if value == "" {
			return defaultValue
		}
		return value
	})
}
