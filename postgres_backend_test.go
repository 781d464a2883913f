package groundbase

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapPostgresError(t *testing.T) {
	cases := []struct {
		name string
		in   error
		want error
	}{
		{"unique violation", &pgconn.PgError{Code: "23505", ConstraintName: "projects_project_number_key"}, ErrConstraintViolation},
		{"foreign key violation", &pgconn.PgError{Code: "23503"}, ErrConstraintViolation},
		{"undefined table", &pgconn.PgError{Code: "42P01", Message: `relation "projects" does not exist`}, ErrMissingTable},
		{"bad password", &pgconn.PgError{Code: "28P01"}, ErrBackendUnavailable},
		{"connection failure", &pgconn.PgError{Code: "08006"}, ErrBackendUnavailable},
		{"dial error", errors.New("dial tcp 10.0.0.1:5432: connect: connection refused"), ErrBackendUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := mapPostgresError(tc.in)
			if !errors.Is(got, tc.want) {
				t.Errorf("mapPostgresError(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}

	if mapPostgresError(nil) != nil {
		t.Error("nil error should stay nil")
	}
}

func TestMissingTableDistinctFromUnavailable(t *testing.T) {
	err := mapPostgresError(&pgconn.PgError{Code: "42P01"})
	if errors.Is(err, ErrBackendUnavailable) {
		t.Error("missing table must map to its own sentinel, not unavailability")
	}
}

func TestJsonbForPostgres(t *testing.T) {
	wire, err := jsonbForPostgres(Record{
		"project_number": "02-2026-0117",
		"soil_specs":     Record{"max_density": 118.2},
		"year":           int64(2026),
	})
	if err != nil {
		t.Fatalf("jsonbForPostgres failed: %v", err)
	}

	if wire["project_number"] != "02-2026-0117" || wire["year"] != int64(2026) {
		t.Errorf("scalars must pass through: %v", wire)
	}
	raw, ok := wire["soil_specs"].(json.RawMessage)
	if !ok {
		t.Fatalf("structured value not wrapped for jsonb: %T", wire["soil_specs"])
	}
	var back map[string]interface{}
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("wrapped value is not valid JSON: %v", err)
	}
	if back["max_density"] != 118.2 {
		t.Errorf("structured value changed: %v", back)
	}
}

func TestNewPostgresBackendRejectsBadURL(t *testing.T) {
	_, err := NewPostgresBackend("postgres://bad url with spaces:port/", "")
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("want ErrInvalidConfig, got %v", err)
	}
}

// Live tests run only against a real server, e.g.
//
//	GROUNDBASE_TEST_POSTGRES_URL=postgres://localhost:5432/groundbase_test go test -run Postgres_Live
func newLivePostgres(t *testing.T) *PostgresBackend {
	t.Helper()
	url := os.Getenv("GROUNDBASE_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("GROUNDBASE_TEST_POSTGRES_URL not set, skipping live Postgres tests")
	}
	b, err := NewPostgresBackend(url, os.Getenv("GROUNDBASE_TEST_POSTGRES_KEY"))
	if err != nil {
		t.Fatalf("NewPostgresBackend failed: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b
}

func TestPostgres_LiveRoundTrip(t *testing.T) {
	ctx := context.Background()
	b := newLivePostgres(t)

	if _, err := b.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS groundbase_live_projects (
		id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		project_number TEXT UNIQUE,
		soil_specs JSONB
	)`); err != nil {
		t.Fatalf("schema setup failed: %v", err)
	}
	defer b.pool.Exec(ctx, `DROP TABLE groundbase_live_projects`)

	stored, err := b.Insert(ctx, "groundbase_live_projects", Record{
		"project_number": "02-2026-0117",
		"soil_specs":     Record{"max_density": 118.2},
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if stored["id"] == nil {
		t.Error("identity column missing from returned record")
	}

	got, err := b.GetOne(ctx, "groundbase_live_projects", Filter{"project_number": "02-2026-0117"})
	if err != nil {
		t.Fatalf("GetOne failed: %v", err)
	}
	specs, ok := got["soil_specs"].(Record)
	if !ok {
		t.Fatalf("jsonb did not come back structured: %T", got["soil_specs"])
	}
	if specs["max_density"] != 118.2 {
		t.Errorf("structured value changed: %v", specs)
	}

	if _, err := b.Insert(ctx, "groundbase_live_projects", Record{
		"project_number": "02-2026-0117",
	}); !IsConstraintViolation(err) {
		t.Errorf("duplicate insert: want ConstraintViolation, got %v", err)
	}
}

func TestPostgres_LiveSequenceAllocation(t *testing.T) {
	ctx := context.Background()
	b := newLivePostgres(t)
	store := NewStore(b)

	if err := store.EnsureCounterTable(ctx, "liveSeq"); err != nil {
		t.Fatalf("EnsureCounterTable failed: %v", err)
	}
	defer b.pool.Exec(ctx, `DROP TABLE live_seq_counters`)

	first, err := store.NextSequenceValue(ctx, "liveSeq", 2026)
	if err != nil {
		t.Fatalf("NextSequenceValue failed: %v", err)
	}
	if first != 1 {
		t.Errorf("first allocation = %d, want 1", first)
	}
	second, err := store.NextSequenceValue(ctx, "liveSeq", 2026)
	if err != nil {
		t.Fatalf("NextSequenceValue failed: %v", err)
	}
	if second != 2 {
		t.Errorf("second allocation = %d, want 2", second)
	}
}
