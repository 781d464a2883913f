package groundbase

import "time"

// Configuration constants for groundbase operations
const (
	// Sequence allocation retry configuration. The CAS loop loses at most one
	// contender per round, so the budget scales with expected peak
	// concurrency, not with a typical retry count.
	DefaultSequenceRetries = 64
	DefaultInitialBackoff  = 2 * time.Millisecond
	DefaultBackoffMultiple = 2
	DefaultMaxBackoff      = 50 * time.Millisecond
	DefaultJitterPercent   = 0.5 // 50% jitter to avoid thundering herd

	// Embedded backend configuration
	DefaultBusyTimeout = 5 * time.Second
)

// RetryConfig holds configuration for the sequence allocator's optimistic
// retry loop: bounded attempts with capped, jittered exponential backoff.
type RetryConfig struct {
	MaxRetries      int
	InitialBackoff  time.Duration
	BackoffMultiple int
	MaxBackoff      time.Duration
	JitterPercent   float64
}

// DefaultRetryConfig returns the default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      DefaultSequenceRetries,
		InitialBackoff:  DefaultInitialBackoff,
		BackoffMultiple: DefaultBackoffMultiple,
		MaxBackoff:      DefaultMaxBackoff,
		JitterPercent:   DefaultJitterPercent,
	}
}

// Validate checks if the RetryConfig is valid
func (c RetryConfig) Validate() error {
	if c.MaxRetries < 1 {
		return WithContext(ErrInvalidConfig, map[string]interface{}{
			"field":  "MaxRetries",
			"value":  c.MaxRetries,
			"reason": "must be at least 1",
		})
	}
	if c.InitialBackoff <= 0 {
		return WithContext(ErrInvalidConfig, map[string]interface{}{
			"field":  "InitialBackoff",
			"value":  c.InitialBackoff,
			"reason": "must be positive",
		})
	}
	if c.BackoffMultiple < 1 {
		return WithContext(ErrInvalidConfig, map[string]interface{}{
			"field":  "BackoffMultiple",
			"value":  c.BackoffMultiple,
			"reason": "must be >= 1",
		})
	}
	if c.MaxBackoff < c.InitialBackoff {
		return WithContext(ErrInvalidConfig, map[string]interface{}{
			"field":  "MaxBackoff",
			"value":  c.MaxBackoff,
			"reason": "must be >= InitialBackoff",
		})
	}
	if c.JitterPercent < 0 || c.JitterPercent > 1 {
		return WithContext(ErrInvalidConfig, map[string]interface{}{
			"field":  "JitterPercent",
			"value":  c.JitterPercent,
			"reason": "must be between 0 and 1",
		})
	}
	return nil
}
