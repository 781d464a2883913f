package groundbase

import (
	"context"
	"math/rand"
	"time"
)

// Sequences allocates strictly increasing integers from named, partitioned
// counters ("project numbers for 2026"). It is a client of the Store facade,
// not a separate storage path: every read and write below goes through the
// same translation and backend dispatch as any other caller.
//
// Correctness under concurrency rests on two backend primitives only. Lazy
// counter creation is a unique-constraint insert (exactly one winner; losers
// observe ConstraintViolation and fall through to the update path). The
// increment is a conditional update whose filter carries the value just read
// (a compare-and-swap: exactly one winner per round; losers match zero rows
// and retry). No in-process lock is taken — a mutex would not help once two
// server processes share one backend.
type Sequences struct {
	store *Store
	retry RetryConfig
}

// NewSequences creates an allocator over the given store.
func NewSequences(store *Store, retry RetryConfig) *Sequences {
	return &Sequences{store: store, retry: retry}
}

// CounterTable names the logical counter table for a sequence:
// "project" -> "projectCounters" (storage: project_counters).
func CounterTable(sequenceName string) string {
	return sequenceName + "Counters"
}

// NextValue reserves and returns the next integer for (sequenceName,
// partitionKey). The first allocation on a never-seen partition creates the
// counter row and returns 1. Exhausting the retry budget returns
// ErrSequenceContention; the whole call is safe to retry.
func (sq *Sequences) NextValue(ctx context.Context, sequenceName string, partitionKey int64) (int64, error) {
	table := CounterTable(sequenceName)

	for attempt := 0; attempt < sq.retry.MaxRetries; attempt++ {
		// Re-read current state every round. Caching a counter across calls
		// is exactly the stale-read race this protocol exists to avoid.
		rec, err := sq.store.Get(ctx, table, Filter{"partitionKey": partitionKey})
		if err != nil {
			return 0, err
		}

		if rec == nil {
			// Value 1 is reserved by the insert itself; nextValue starts at 2.
			_, err := sq.store.Create(ctx, table, Record{
				"partitionKey": partitionKey,
				"nextValue":    int64(2),
				"updatedAt":    time.Now().UTC(),
			})
			if err == nil {
				sq.store.metrics.Increment(MetricSequenceAllocated, "sequence", sequenceName)
				return 1, nil
			}
			if IsConstraintViolation(err) {
				// Another caller won the insert race; the row exists now.
				sq.store.metrics.Increment(MetricSequenceInsertRace, "sequence", sequenceName)
				continue
			}
			return 0, err
		}

		current, ok := asInt64(rec["nextValue"])
		if !ok {
			return 0, WithContext(ErrCorruptValue, map[string]interface{}{
				"table":        table,
				"partitionKey": partitionKey,
				"field":        "nextValue",
				"value":        rec["nextValue"],
			})
		}

		// Compare-and-swap: the filter pins the value we read, so the update
		// matches zero rows if anyone got in between.
		updated, err := sq.store.Modify(ctx, table,
			Record{"nextValue": current + 1, "updatedAt": time.Now().UTC()},
			Filter{"partitionKey": partitionKey, "nextValue": current},
		)
		if err != nil {
			return 0, err
		}
		if len(updated) > 0 {
			sq.store.metrics.Increment(MetricSequenceAllocated, "sequence", sequenceName)
			return current, nil
		}

		sq.store.metrics.Increment(MetricSequenceRetry, "sequence", sequenceName)
		if attempt < sq.retry.MaxRetries-1 {
			time.Sleep(sq.backoff(attempt))
		}
	}

	sq.store.metrics.Increment(MetricSequenceContention, "sequence", sequenceName)
	return 0, WithContext(ErrSequenceContention, map[string]interface{}{
		"sequence":     sequenceName,
		"partitionKey": partitionKey,
		"retries":      sq.retry.MaxRetries,
	})
}

// backoff computes the capped, jittered delay after a lost round.
func (sq *Sequences) backoff(attempt int) time.Duration {
	d := sq.retry.InitialBackoff
	for i := 0; i < attempt; i++ {
		d *= time.Duration(sq.retry.BackoffMultiple)
		if d >= sq.retry.MaxBackoff {
			d = sq.retry.MaxBackoff
			break
		}
	}
	if sq.retry.JitterPercent > 0 {
		jitter := time.Duration(float64(d) * sq.retry.JitterPercent * rand.Float64())
		d += jitter
	}
	return d
}

// asInt64 widens whatever integer shape the active backend handed back.
func asInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int16:
		return int64(n), true
	case float64:
		if n == float64(int64(n)) {
			return int64(n), true
		}
		return 0, false
	default:
		return 0, false
	}
}
