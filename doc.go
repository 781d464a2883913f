// Package groundbase is a backend-agnostic data access layer for applications
// that need the same CRUD contract over an embedded (SQLite) or hosted
// (PostgreSQL) store, plus race-safe monotonic sequence allocation for minting
// human-readable identifiers such as year-scoped project numbers.
//
// Callers work exclusively through Store, which speaks the application naming
// convention (camelCase keys, nested structured values) and hides the storage
// convention (snake_case columns, JSON text vs. native jsonb) behind one API:
//
//	cfg := groundbase.BackendConfig{EmbeddedPath: "./data/app.db"}
//	store, err := groundbase.Open(cfg)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	project, err := store.Get(ctx, "projects", groundbase.Filter{"projectNumber": "02-2026-0117"})
//	number, err := store.NextSequenceValue(ctx, "project", 2026)
//
// Which backend is active is decided exactly once, in Open: a force-embedded
// override wins, otherwise a syntactically valid hosted URL selects PostgreSQL,
// otherwise SQLite. The layer never switches backends mid-process.
//
// Store and Sequences are safe for concurrent use from any number of
// goroutines (and, for the hosted backend, from any number of processes);
// correctness under contention relies only on the backend's own atomicity:
// unique-constraint inserts and single-statement conditional updates.
package groundbase
