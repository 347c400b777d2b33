package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectors_Register(t *testing.T) {
	c := NewCollectors()
	registry := prometheus.NewRegistry()

	if err := c.Register(registry); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := c.Register(registry); err == nil {
		t.Error("registering twice should fail")
	}
}

func TestCollectors_Observe(t *testing.T) {
	c := NewCollectors()

	c.ObserveIntent("complete_habit", true, 20*time.Millisecond)
	c.ObserveIntent("complete_habit", true, 10*time.Millisecond)
	c.ObserveIntent("complete_habit", false, time.Millisecond)
	c.ObserveTick("scheduled")
	c.ObserveSignal("streak")
	c.ObserveLevelUp()
	c.ObserveNotificationFailures(2)
	c.ObserveNotificationFailures(0)
	c.ObservePersistenceError("update")
	c.ObserveHealth(42)

	tests := []struct {
		name      string
		collector prometheus.Collector
		expected  float64
	}{
		{"applied intents", c.IntentsTotal.WithLabelValues("complete_habit", "true"), 2},
		{"ignored intents", c.IntentsTotal.WithLabelValues("complete_habit", "false"), 1},
		{"scheduled ticks", c.TicksTotal.WithLabelValues("scheduled"), 1},
		{"streak signals", c.SignalsTotal.WithLabelValues("streak"), 1},
		{"level ups", c.LevelUpsTotal, 1},
		{"notification failures", c.NotificationFailures, 2},
		{"update errors", c.PersistenceErrors.WithLabelValues("update"), 1},
	}

	for _, tt := range tests {
		if got := testutil.ToFloat64(tt.collector); got != tt.expected {
			t.Errorf("%s = %v, expected %v", tt.name, got, tt.expected)
		}
	}

	if n := testutil.CollectAndCount(c.BuddyHealth); n != 1 {
		t.Errorf("health histogram series = %d, expected 1", n)
	}
}

func TestCollectors_NilIsNoop(t *testing.T) {
	var c *Collectors

	c.ObserveIntent("tick", true, time.Second)
	c.ObserveTick("catchup")
	c.ObserveSignal("welcome")
	c.ObserveLevelUp()
	c.ObserveNotificationFailures(1)
	c.ObservePersistenceError("get")
	c.ObserveHealth(10)
}
