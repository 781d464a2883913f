package groundbase

import "time"

// Metrics provides observability for groundbase operations
type Metrics interface {
	// Increment increases a counter by 1
	Increment(name string, tags ...string)

	// Gauge sets an absolute value
	Gauge(name string, value float64, tags ...string)

	// Timing records a duration
	Timing(name string, duration time.Duration, tags ...string)
}

// NoOpMetrics is a metrics collector that does nothing
type NoOpMetrics struct{}

func (m *NoOpMetrics) Increment(name string, tags ...string)                      {}
func (m *NoOpMetrics) Gauge(name string, value float64, tags ...string)           {}
func (m *NoOpMetrics) Timing(name string, duration time.Duration, tags ...string) {}

// InMemoryMetrics stores metrics in memory for testing
type InMemoryMetrics struct {
	Counters map[string]int
	Gauges   map[string]float64
	Timings  map[string][]time.Duration
}

func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{
		Counters: make(map[string]int),
		Gauges:   make(map[string]float64),
		Timings:  make(map[string][]time.Duration),
	}
}

func (m *InMemoryMetrics) Increment(name string, tags ...string) {
	m.Counters[name]++
}

func (m *InMemoryMetrics) Gauge(name string, value float64, tags ...string) {
	m.Gauges[name] = value
}

func (m *InMemoryMetrics) Timing(name string, duration time.Duration, tags ...string) {
	m.Timings[name] = append(m.Timings[name], duration)
}

// Common metric names
const (
	MetricGetSuccess     = "groundbase.get.success"
	MetricGetError       = "groundbase.get.error"
	MetricGetDuration    = "groundbase.get.duration"
	MetricListSuccess    = "groundbase.list.success"
	MetricListError      = "groundbase.list.error"
	MetricListDuration   = "groundbase.list.duration"
	MetricListResults    = "groundbase.list.results"
	MetricCreateSuccess  = "groundbase.create.success"
	MetricCreateError    = "groundbase.create.error"
	MetricCreateDuration = "groundbase.create.duration"
	MetricModifySuccess  = "groundbase.modify.success"
	MetricModifyError    = "groundbase.modify.error"
	MetricModifyDuration = "groundbase.modify.duration"
	MetricRemoveSuccess  = "groundbase.remove.success"
	MetricRemoveError    = "groundbase.remove.error"
	MetricRemoveDuration = "groundbase.remove.duration"

	MetricSequenceAllocated  = "groundbase.sequence.allocated"
	MetricSequenceInsertRace = "groundbase.sequence.insert_race"
	MetricSequenceRetry      = "groundbase.sequence.retry"
	MetricSequenceContention = "groundbase.sequence.contention"
)
