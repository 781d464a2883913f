package groundbase

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestInMemoryMetrics(t *testing.T) {
	m := NewInMemoryMetrics()

	m.Increment(MetricGetSuccess, "backend", "sqlite")
	m.Increment(MetricGetSuccess, "backend", "sqlite")
	m.Gauge(MetricListResults, 12, "table", "projects")
	m.Timing(MetricGetDuration, 3*time.Millisecond)

	if m.Counters[MetricGetSuccess] != 2 {
		t.Errorf("counter = %d, want 2", m.Counters[MetricGetSuccess])
	}
	if m.Gauges[MetricListResults] != 12 {
		t.Errorf("gauge = %v, want 12", m.Gauges[MetricListResults])
	}
	if len(m.Timings[MetricGetDuration]) != 1 {
		t.Errorf("timings = %v", m.Timings[MetricGetDuration])
	}
}

func TestPrometheusMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewPrometheusMetrics(registry)

	m.Increment(MetricGetSuccess, "backend", "sqlite")
	m.Increment(MetricGetSuccess, "backend", "postgres")
	m.Gauge(MetricListResults, 7, "table", "projects")
	m.Timing(MetricGetDuration, 2*time.Millisecond, "backend", "sqlite")

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	if len(families) != 3 {
		t.Fatalf("expected 3 metric families, got %d", len(families))
	}

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"groundbase_get_success_total",
		"groundbase_list_results",
		"groundbase_get_duration_seconds",
	} {
		if !names[want] {
			t.Errorf("metric %q not registered (have %v)", want, names)
		}
	}
}

func TestPrometheusMetricsNilRegistry(t *testing.T) {
	// Falls back to the default registerer without panicking. Use metric
	// names unique to this test so repeated runs cannot double-register.
	m := NewPrometheusMetrics(nil)
	m.Increment("groundbase.test.default_registry")
}
