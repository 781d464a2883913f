package groundbase

import (
	"context"
	"time"
)

// Store is the data access facade and the only component the rest of a
// system should call. It speaks the application naming convention, translates
// keys and coerces values on the way down, delegates to whichever Backend was
// selected at startup, and translates responses back on the way up.
//
// Store never logs on an error path and never swallows an error: backend
// failures come back to the caller mapped into the sentinel taxonomy.
type Store struct {
	backend Backend
	logger  Logger
	metrics Metrics
	seq     *Sequences
}

// Open selects a backend per the startup policy and returns a Store over it.
// This is the normal entry point for applications.
func Open(cfg BackendConfig) (*Store, error) {
	backend, err := SelectBackend(cfg)
	if err != nil {
		return nil, err
	}
	return NewStore(backend), nil
}

// NewStore creates a store over an already-constructed backend with no-op
// logger and metrics.
func NewStore(backend Backend) *Store {
	return NewStoreWithObservability(backend, &NoOpLogger{}, &NoOpMetrics{})
}

// NewStoreWithLogger creates a store with a custom logger
func NewStoreWithLogger(backend Backend, logger Logger) *Store {
	return NewStoreWithObservability(backend, logger, &NoOpMetrics{})
}

// NewStoreWithObservability creates a store with logging and metrics
func NewStoreWithObservability(backend Backend, logger Logger, metrics Metrics) *Store {
	if logger == nil {
		logger = &NoOpLogger{}
	}
	if metrics == nil {
		metrics = &NoOpMetrics{}
	}
	s := &Store{
		backend: backend,
		logger:  logger,
		metrics: metrics,
	}
	s.seq = NewSequences(s, DefaultRetryConfig())
	return s
}

// SetLogger updates the logger for this store
func (s *Store) SetLogger(logger Logger) {
	s.logger = logger
}

// SetMetrics updates the metrics collector for this store
func (s *Store) SetMetrics(metrics Metrics) {
	s.metrics = metrics
}

// WithRetryConfig replaces the sequence allocator's retry budget.
func (s *Store) WithRetryConfig(cfg RetryConfig) *Store {
	s.seq = NewSequences(s, cfg)
	return s
}

// Get returns the first record matching filter, or (nil, nil) when nothing
// matches. Absence is not an error; ErrNotFound exists for callers that
// require presence.
func (s *Store) Get(ctx context.Context, table string, filter Filter) (Record, error) {
	start := time.Now()
	rec, err := s.backend.GetOne(ctx, ToStorageKey(table), FilterToStorage(filter))
	s.metrics.Timing(MetricGetDuration, time.Since(start), "backend", s.backend.Name())
	if err != nil {
		s.metrics.Increment(MetricGetError, "backend", s.backend.Name())
		return nil, err
	}
	s.metrics.Increment(MetricGetSuccess, "backend", s.backend.Name())
	if rec == nil {
		return nil, nil
	}
	return RecordToLogical(rec), nil
}

// List returns every record matching filter, ordered by the optional hint.
// No matches is an empty slice, never an error. Each call re-executes the
// scan; results are not cached.
func (s *Store) List(ctx context.Context, table string, filter Filter, orderBy *OrderBy) ([]Record, error) {
	start := time.Now()
	recs, err := s.backend.GetMany(ctx, ToStorageKey(table), FilterToStorage(filter), orderBy)
	s.metrics.Timing(MetricListDuration, time.Since(start), "backend", s.backend.Name())
	if err != nil {
		s.metrics.Increment(MetricListError, "backend", s.backend.Name())
		return nil, err
	}
	s.metrics.Increment(MetricListSuccess, "backend", s.backend.Name())
	s.metrics.Gauge(MetricListResults, float64(len(recs)), "table", table)
	out := make([]Record, len(recs))
	for i, rec := range recs {
		out[i] = RecordToLogical(rec)
	}
	return out, nil
}

// Create stores the record and returns it as stored, including any
// backend-assigned identity field.
func (s *Store) Create(ctx context.Context, table string, rec Record) (Record, error) {
	start := time.Now()
	stored, err := s.backend.Insert(ctx, ToStorageKey(table), RecordToStorage(rec))
	s.metrics.Timing(MetricCreateDuration, time.Since(start), "backend", s.backend.Name())
	if err != nil {
		s.metrics.Increment(MetricCreateError, "backend", s.backend.Name())
		return nil, err
	}
	s.metrics.Increment(MetricCreateSuccess, "backend", s.backend.Name())
	return RecordToLogical(stored), nil
}

// Modify applies patch to every record matching filter and returns the
// updated records. Updating zero records is not an error and yields an empty
// slice.
func (s *Store) Modify(ctx context.Context, table string, patch Record, filter Filter) ([]Record, error) {
	start := time.Now()
	recs, err := s.backend.Update(ctx, ToStorageKey(table), RecordToStorage(patch), FilterToStorage(filter))
	s.metrics.Timing(MetricModifyDuration, time.Since(start), "backend", s.backend.Name())
	if err != nil {
		s.metrics.Increment(MetricModifyError, "backend", s.backend.Name())
		return nil, err
	}
	s.metrics.Increment(MetricModifySuccess, "backend", s.backend.Name())
	out := make([]Record, len(recs))
	for i, rec := range recs {
		out[i] = RecordToLogical(rec)
	}
	return out, nil
}

// Remove deletes every record matching filter and returns the count.
func (s *Store) Remove(ctx context.Context, table string, filter Filter) (int64, error) {
	start := time.Now()
	n, err := s.backend.Delete(ctx, ToStorageKey(table), FilterToStorage(filter))
	s.metrics.Timing(MetricRemoveDuration, time.Since(start), "backend", s.backend.Name())
	if err != nil {
		s.metrics.Increment(MetricRemoveError, "backend", s.backend.Name())
		return 0, err
	}
	s.metrics.Increment(MetricRemoveSuccess, "backend", s.backend.Name())
	return n, nil
}

// NextSequenceValue reserves and returns the next integer in the named
// monotonic sequence for the given partition (typically a calendar year). No
// two calls ever receive the same value for the same (sequence, partition),
// regardless of concurrency.
func (s *Store) NextSequenceValue(ctx context.Context, sequenceName string, partitionKey int64) (int64, error) {
	return s.seq.NextValue(ctx, sequenceName, partitionKey)
}

// EnsureCounterTable provisions the counter table for a sequence on the
// active backend. Idempotent. Counter rows themselves are created lazily by
// the first allocation for each partition.
func (s *Store) EnsureCounterTable(ctx context.Context, sequenceName string) error {
	return s.backend.EnsureCounterTable(ctx, ToStorageKey(CounterTable(sequenceName)))
}

// BackendName reports which variant this store runs on.
func (s *Store) BackendName() string {
	return s.backend.Name()
}

// Backend returns the underlying adapter (for advanced use cases)
func (s *Store) Backend() Backend {
	return s.backend
}

// Ping checks backend health
func (s *Store) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

// Close releases resources held by the store and backend
func (s *Store) Close() error {
	return s.backend.Close()
}
