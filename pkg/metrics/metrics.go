// Package metrics defines the Prometheus collectors for buddy progression.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "buddy_progression"

// Collectors groups every application metric. A nil *Collectors is valid and
// records nothing.
type Collectors struct {
	IntentsTotal         *prometheus.CounterVec
	IntentDuration       *prometheus.HistogramVec
	TicksTotal           *prometheus.CounterVec
	SignalsTotal         *prometheus.CounterVec
	LevelUpsTotal        prometheus.Counter
	NotificationFailures prometheus.Counter
	PersistenceErrors    *prometheus.CounterVec
	BuddyHealth          prometheus.Histogram
}

// NewCollectors creates unregistered collectors
func NewCollectors() *Collectors {
	return &Collectors{
		IntentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "intents_total",
				Help:      "Total number of intents processed",
			},
			[]string{"type", "applied"},
		),
		IntentDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "intent_duration_seconds",
				Help:      "Time to load, apply, persist and notify one intent",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"type"},
		),
		TicksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ticks_total",
				Help:      "Total number of decay ticks applied",
			},
			[]string{"source"},
		),
		SignalsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "signals_total",
				Help:      "Total number of signals raised by reason",
			},
			[]string{"reason"},
		),
		LevelUpsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "level_ups_total",
			Help:      "Total number of buddy level ups",
		}),
		NotificationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_failures_total",
			Help:      "Total number of notifications that fell back or failed to store",
		}),
		PersistenceErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "persistence_errors_total",
				Help:      "Total number of state store failures",
			},
			[]string{"operation"},
		),
		BuddyHealth: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "buddy_health",
			Help:      "Buddy health after each persisted transition",
			Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}),
	}
}

// Register adds every collector to registry
func (c *Collectors) Register(registry prometheus.Registerer) error {
	for _, collector := range []prometheus.Collector{
		c.IntentsTotal,
		c.IntentDuration,
		c.TicksTotal,
		c.SignalsTotal,
		c.LevelUpsTotal,
		c.NotificationFailures,
		c.PersistenceErrors,
		c.BuddyHealth,
	} {
		if err := registry.Register(collector); err != nil {
			return err
		}
	}
	return nil
}

func (c *Collectors) ObserveIntent(intentType string, applied bool, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.IntentsTotal.WithLabelValues(intentType, strconv.FormatBool(applied)).Inc()
	c.IntentDuration.WithLabelValues(intentType).Observe(elapsed.Seconds())
}

func (c *Collectors) ObserveTick(source string) {
	if c == nil {
		return
	}
	c.TicksTotal.WithLabelValues(source).Inc()
}

func (c *Collectors) ObserveSignal(reason string) {
	if c == nil {
		return
	}
	c.SignalsTotal.WithLabelValues(reason).Inc()
}

func (c *Collectors) ObserveLevelUp() {
	if c == nil {
		return
	}
	c.LevelUpsTotal.Inc()
}

func (c *Collectors) ObserveNotificationFailures(n int) {
	if c == nil || n <= 0 {
		return
	}
	c.NotificationFailures.Add(float64(n))
}

func (c *Collectors) ObservePersistenceError(operation string) {
	if c == nil {
		return
	}
	c.PersistenceErrors.WithLabelValues(operation).Inc()
}

func (c *Collectors) ObserveHealth(health float64) {
	if c == nil {
		return
	}
	c.BuddyHealth.Observe(health)
}
