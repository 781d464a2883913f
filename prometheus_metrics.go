package groundbase

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics implements the Metrics interface using Prometheus.
// Collectors are registered lazily on first use, with label names taken from
// the tag keys of that first call; call sites keep tag sets consistent per
// metric name, which is all Prometheus requires.
type PrometheusMetrics struct {
	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec
	registry   prometheus.Registerer
}

// NewPrometheusMetrics creates a new Prometheus metrics adapter.
// If registry is nil, the default Prometheus registerer is used.
func NewPrometheusMetrics(registry prometheus.Registerer) *PrometheusMetrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	return &PrometheusMetrics{
		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
		histograms: make(map[string]*prometheus.HistogramVec),
		registry:   registry,
	}
}

func (p *PrometheusMetrics) Increment(name string, tags ...string) {
	labels, values := splitTags(tags)
	p.mu.Lock()
	vec, ok := p.counters[name]
	if !ok {
		vec = promauto.With(p.registry).NewCounterVec(
			prometheus.CounterOpts{Name: promName(name) + "_total"},
			labels,
		)
		p.counters[name] = vec
	}
	p.mu.Unlock()
	vec.WithLabelValues(values...).Inc()
}

func (p *PrometheusMetrics) Gauge(name string, value float64, tags ...string) {
	labels, values := splitTags(tags)
	p.mu.Lock()
	vec, ok := p.gauges[name]
	if !ok {
		vec = promauto.With(p.registry).NewGaugeVec(
			prometheus.GaugeOpts{Name: promName(name)},
			labels,
		)
		p.gauges[name] = vec
	}
	p.mu.Unlock()
	vec.WithLabelValues(values...).Set(value)
}

func (p *PrometheusMetrics) Timing(name string, duration time.Duration, tags ...string) {
	labels, values := splitTags(tags)
	p.mu.Lock()
	vec, ok := p.histograms[name]
	if !ok {
		vec = promauto.With(p.registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    promName(name) + "_seconds",
				Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			labels,
		)
		p.histograms[name] = vec
	}
	p.mu.Unlock()
	vec.WithLabelValues(values...).Observe(duration.Seconds())
}

// promName converts a dotted metric name to Prometheus convention.
func promName(name string) string {
	return strings.ReplaceAll(name, ".", "_")
}

// splitTags separates variadic key/value tags into label names and values.
func splitTags(tags []string) ([]string, []string) {
	n := len(tags) / 2
	labels := make([]string, 0, n)
	values := make([]string, 0, n)
	for i := 0; i+1 < len(tags); i += 2 {
		labels = append(labels, tags[i])
		values = append(values, tags[i+1])
	}
	return labels, values
}
