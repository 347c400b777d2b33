// Package notify turns engine signals into buddy messages and stores them in
// the user's notification inbox.
package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"text/template"

	"github.com/AccelByte/extend-buddy-progression/pkg/signal"
	"github.com/AccelByte/extend-buddy-progression/pkg/state"
)

// ErrNoMessage indicates that no message is configured for a reason code.
var ErrNoMessage = errors.New("no message configured for reason")

// Generator renders the message for a signal given the buddy's current state
type Generator interface {
	Generate(ctx context.Context, reason signal.Reason, buddy *signal.BuddyContext) (string, error)
}

// FallbackGenerator is a Generator that also owns the static message used
// when Generate fails. An empty fallback defers to the dispatcher's default.
type FallbackGenerator interface {
	Generator
	Fallback(health float64) string
}

type compiled struct {
	normal *template.Template
	grumpy *template.Template
}

// TemplateGenerator renders messages from configured text templates. Tired
// buddies use the grumpy variant when one is configured.
type TemplateGenerator struct {
	templates map[signal.Reason]compiled
	fallback  MessageConfig
}

var _ FallbackGenerator = (*TemplateGenerator)(nil)

// NewTemplateGenerator compiles every configured template
func NewTemplateGenerator(cfg *Config) (*TemplateGenerator, error) {
	g := &TemplateGenerator{
		templates: make(map[signal.Reason]compiled, len(cfg.Messages)),
		fallback:  cfg.Fallback,
	}

	for reason, msg := range cfg.Messages {
		normal, err := template.New(reason).Option("missingkey=zero").Parse(msg.Normal)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s message: %w", reason, err)
		}
		c := compiled{normal: normal}

		if msg.Grumpy != "" {
			c.grumpy, err = template.New(reason + "_grumpy").Option("missingkey=zero").Parse(msg.Grumpy)
			if err != nil {
				return nil, fmt.Errorf("failed to parse %s grumpy message: %w", reason, err)
			}
		}
		g.templates[signal.Reason(reason)] = c
	}

	return g, nil
}

// Generate renders the message for reason
func (g *TemplateGenerator) Generate(ctx context.Context, reason signal.Reason, buddy *signal.BuddyContext) (string, error) {
	c, ok := g.templates[reason]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoMessage, reason)
	}

	tmpl := c.normal
	if buddy.Mood == state.MoodTired && c.grumpy != nil {
		tmpl = c.grumpy
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, buddy); err != nil {
		return "", fmt.Errorf("failed to render %s message: %w", reason, err)
	}
	return buf.String(), nil
}

// Fallback returns the static message used when rendering fails
func (g *TemplateGenerator) Fallback(health float64) string {
	return fallbackMessage(g.fallback, health)
}

func fallbackMessage(cfg MessageConfig, health float64) string {
	if health < state.GrumpyHealth && cfg.Grumpy != "" {
		return cfg.Grumpy
	}
	return cfg.Normal
}
