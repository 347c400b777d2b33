package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/AccelByte/extend-buddy-progression/pkg/state"
)

// ErrUnknownIntent is returned when an envelope names an unregistered intent type
var ErrUnknownIntent = errors.New("unknown intent")

// Intent is a user action that can be applied to buddy state
type Intent interface {
	// Type returns the intent type identifier used in envelopes
	Type() string
	// Apply runs the intent through the engine
	Apply(e *Engine, s *state.BuddyState, now time.Time) Result
}

// Intent type identifiers
const (
	TypeCompleteHabit           = "complete_habit"
	TypeCompleteCompulsoryHabit = "complete_compulsory_habit"
	TypeAddHabit                = "add_habit"
	TypeRemoveHabit             = "remove_habit"
	TypeLogVitamins             = "log_vitamins"
	TypeLogPhysicalActivity     = "log_physical_activity"
	TypeLogSleep                = "log_sleep"
	TypeLogMedicationDose       = "log_medication_dose"
	TypeToggleMedication        = "toggle_medication"
	TypeSelectCustomization     = "select_customization"
	TypeTick                    = "tick"
)

type CompleteHabit struct {
	HabitID string `json:"habitId"`
}

func (CompleteHabit) Type() string { return TypeCompleteHabit }
func (i CompleteHabit) Apply(e *Engine, s *state.BuddyState, now time.Time) Result {
	return e.CompleteHabit(s, i.HabitID, now)
}

type CompleteCompulsoryHabit struct {
	ID string `json:"id"`
}

func (CompleteCompulsoryHabit) Type() string { return TypeCompleteCompulsoryHabit }
func (i CompleteCompulsoryHabit) Apply(e *Engine, s *state.BuddyState, now time.Time) Result {
	return e.CompleteCompulsoryHabit(s, i.ID, now)
}

type AddHabit struct {
	Name       string `json:"name"`
	IsNegative bool   `json:"isNegative"`
}

func (AddHabit) Type() string { return TypeAddHabit }
func (i AddHabit) Apply(e *Engine, s *state.BuddyState, now time.Time) Result {
	return e.AddHabit(s, i.Name, i.IsNegative, now)
}

type RemoveHabit struct {
	HabitID string `json:"habitId"`
}

func (RemoveHabit) Type() string { return TypeRemoveHabit }
func (i RemoveHabit) Apply(e *Engine, s *state.BuddyState, now time.Time) Result {
	return e.RemoveHabit(s, i.HabitID, now)
}

type LogVitamins struct{}

func (LogVitamins) Type() string { return TypeLogVitamins }
func (LogVitamins) Apply(e *Engine, s *state.BuddyState, now time.Time) Result {
	return e.LogVitamins(s, now)
}

type LogPhysicalActivity struct{}

func (LogPhysicalActivity) Type() string { return TypeLogPhysicalActivity }
func (LogPhysicalActivity) Apply(e *Engine, s *state.BuddyState, now time.Time) Result {
	return e.LogPhysicalActivity(s, now)
}

type LogSleep struct {
	Quality int     `json:"quality"`
	Hours   float64 `json:"hours"`
}

func (LogSleep) Type() string { return TypeLogSleep }
func (i LogSleep) Apply(e *Engine, s *state.BuddyState, now time.Time) Result {
	return e.LogSleep(s, i.Quality, i.Hours, now)
}

type LogMedicationDose struct{}

func (LogMedicationDose) Type() string { return TypeLogMedicationDose }
func (LogMedicationDose) Apply(e *Engine, s *state.BuddyState, now time.Time) Result {
	return e.LogMedicationDose(s, now)
}

type ToggleMedication struct {
	Enabled     bool `json:"enabled"`
	DosesPerDay int  `json:"dosesPerDay"`
}

func (ToggleMedication) Type() string { return TypeToggleMedication }
func (i ToggleMedication) Apply(e *Engine, s *state.BuddyState, now time.Time) Result {
	return e.ToggleMedication(s, i.Enabled, i.DosesPerDay, now)
}

type SelectCustomization struct {
	ID string `json:"id"`
}

func (SelectCustomization) Type() string { return TypeSelectCustomization }
func (i SelectCustomization) Apply(e *Engine, s *state.BuddyState, now time.Time) Result {
	return e.SelectCustomization(s, i.ID, now)
}

type Tick struct{}

func (Tick) Type() string { return TypeTick }
func (Tick) Apply(e *Engine, s *state.BuddyState, now time.Time) Result {
	return e.Tick(s, now)
}

// Envelope is the wire form of an intent
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// IntentDecoder decodes an envelope payload into an intent
type IntentDecoder func(payload json.RawMessage) (Intent, error)

// Registry maps intent type identifiers to decoders.
// It provides thread-safe registration and lookup.
type Registry struct {
	decoders map[string]IntentDecoder
	mu       sync.RWMutex
}

// NewRegistry creates a new empty intent registry
func NewRegistry() *Registry {
	return &Registry{
		decoders: make(map[string]IntentDecoder),
	}
}

// Register adds a decoder for intentType.
// Returns an error if the type is already registered.
func (r *Registry) Register(intentType string, decoder IntentDecoder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.decoders[intentType]; exists {
		return fmt.Errorf("intent %s already registered", intentType)
	}

	r.decoders[intentType] = decoder
	return nil
}

// Types returns the registered intent types in sorted order
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.decoders))
	for t := range r.decoders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Decode turns an envelope into an intent
func (r *Registry) Decode(env Envelope) (Intent, error) {
	r.mu.RLock()
	decoder, ok := r.decoders[env.Type]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownIntent, env.Type)
	}

	intent, err := decoder(env.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s payload: %w", env.Type, err)
	}
	return intent, nil
}

// jsonDecoder decodes the payload into a T. An empty payload yields the zero T.
func jsonDecoder[T Intent]() IntentDecoder {
	return func(payload json.RawMessage) (Intent, error) {
		var v T
		if len(payload) == 0 || string(payload) == "null" {
			return v, nil
		}
		if err := json.Unmarshal(payload, &v); err != nil {
			return nil, err
		}
		return v, nil
	}
}

// DefaultRegistry returns a registry with every built-in intent registered
func DefaultRegistry() *Registry {
	r := NewRegistry()
	builtins := map[string]IntentDecoder{
		TypeCompleteHabit:           jsonDecoder[CompleteHabit](),
		TypeCompleteCompulsoryHabit: jsonDecoder[CompleteCompulsoryHabit](),
		TypeAddHabit:                jsonDecoder[AddHabit](),
		TypeRemoveHabit:             jsonDecoder[RemoveHabit](),
		TypeLogVitamins:             jsonDecoder[LogVitamins](),
		TypeLogPhysicalActivity:     jsonDecoder[LogPhysicalActivity](),
		TypeLogSleep:                jsonDecoder[LogSleep](),
		TypeLogMedicationDose:       jsonDecoder[LogMedicationDose](),
		TypeToggleMedication:        jsonDecoder[ToggleMedication](),
		TypeSelectCustomization:     jsonDecoder[SelectCustomization](),
		TypeTick:                    jsonDecoder[Tick](),
	}
	for t, d := range builtins {
		_ = r.Register(t, d)
	}
	return r
}
