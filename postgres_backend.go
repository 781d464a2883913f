package groundbase

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresBackend implements Backend against a hosted PostgreSQL service.
// Postgres has a native document type, so structured values travel as jsonb
// with no text-encoding round trip of their own.
//
// The pool connects lazily: constructing the backend with bad credentials
// succeeds, and the failure surfaces on first use as ErrBackendUnavailable.
// That is the documented trade-off of startup-time backend selection.
type PostgresBackend struct {
	pool *pgxpool.Pool
}

// NewPostgresBackend builds a backend from a connection URL and an optional
// access credential. The credential is applied as the password when the URL
// does not already carry one.
func NewPostgresBackend(hostedURL, hostedKey string) (*PostgresBackend, error) {
	cfg, err := pgxpool.ParseConfig(hostedURL)
	if err != nil {
		return nil, WithContext(ErrInvalidConfig, map[string]interface{}{
			"field":  "HostedURL",
			"reason": "not a valid connection URL",
			"error":  err.Error(),
		})
	}
	if hostedKey != "" && cfg.ConnConfig.Password == "" {
		cfg.ConnConfig.Password = hostedKey
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return nil, WithContext(ErrInvalidConfig, map[string]interface{}{
			"field": "HostedURL",
			"error": err.Error(),
		})
	}
	return &PostgresBackend{pool: pool}, nil
}

func (b *PostgresBackend) Name() string { return "postgres" }

func (b *PostgresBackend) GetOne(ctx context.Context, table string, filter Filter) (Record, error) {
	query, args, err := buildSelect(table, filter, nil, 1, postgresPlaceholder)
	if err != nil {
		return nil, err
	}
	recs, err := b.query(ctx, query, args)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return recs[0], nil
}

func (b *PostgresBackend) GetMany(ctx context.Context, table string, filter Filter, orderBy *OrderBy) ([]Record, error) {
	query, args, err := buildSelect(table, filter, orderBy, 0, postgresPlaceholder)
	if err != nil {
		return nil, err
	}
	return b.query(ctx, query, args)
}

func (b *PostgresBackend) Insert(ctx context.Context, table string, rec Record) (Record, error) {
	wire, err := jsonbForPostgres(rec)
	if err != nil {
		return nil, err
	}
	query, args, err := buildInsert(table, wire, postgresPlaceholder)
	if err != nil {
		return nil, err
	}
	recs, err := b.query(ctx, query, args)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, WithContext(ErrBackendUnavailable, map[string]interface{}{
			"reason": "insert returned no row",
			"table":  table,
		})
	}
	return recs[0], nil
}

func (b *PostgresBackend) Update(ctx context.Context, table string, patch Record, filter Filter) ([]Record, error) {
	wire, err := jsonbForPostgres(patch)
	if err != nil {
		return nil, err
	}
	query, args, err := buildUpdate(table, wire, filter, postgresPlaceholder)
	if err != nil {
		return nil, err
	}
	return b.query(ctx, query, args)
}

func (b *PostgresBackend) Delete(ctx context.Context, table string, filter Filter) (int64, error) {
	query, args, err := buildDelete(table, filter, postgresPlaceholder)
	if err != nil {
		return 0, err
	}
	tag, err := b.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, mapPostgresError(err)
	}
	return tag.RowsAffected(), nil
}

func (b *PostgresBackend) EnsureCounterTable(ctx context.Context, table string) error {
	if err := checkIdent("table", table); err != nil {
		return err
	}
	ddl := "CREATE TABLE IF NOT EXISTS " + table + ` (
		partition_key BIGINT NOT NULL UNIQUE,
		next_value BIGINT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`
	if _, err := b.pool.Exec(ctx, ddl); err != nil {
		return mapPostgresError(err)
	}
	return nil
}

func (b *PostgresBackend) Ping(ctx context.Context) error {
	if err := b.pool.Ping(ctx); err != nil {
		return mapPostgresError(err)
	}
	return nil
}

func (b *PostgresBackend) Close() error {
	b.pool.Close()
	return nil
}

func (b *PostgresBackend) query(ctx context.Context, query string, args []interface{}) ([]Record, error) {
	rows, err := b.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPostgresError(err)
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, mapPostgresError(err)
	}
	recs := make([]Record, len(maps))
	for i, m := range maps {
		rec := make(Record, len(m))
		for k, v := range m {
			// jsonb scans into map[string]interface{} / []interface{};
			// fold those into Record form like every other read path.
			rec[k] = normalizeDecoded(v)
		}
		recs[i] = rec
	}
	return recs, nil
}

// jsonbForPostgres wraps structured values as json.RawMessage so pgx encodes
// them as jsonb parameters instead of guessing at array types.
func jsonbForPostgres(rec Record) (Record, error) {
	out := make(Record, len(rec))
	for k, v := range rec {
		if IsStructured(v) {
			data, err := json.Marshal(v)
			if err != nil {
				return nil, WithContext(ErrInvalidData, map[string]interface{}{
					"reason": "structured value is not JSON-serializable",
					"field":  k,
					"error":  err.Error(),
				})
			}
			out[k] = json.RawMessage(data)
			continue
		}
		out[k] = v
	}
	return out, nil
}

// mapPostgresError translates pgx/pgconn errors into the shared taxonomy.
func mapPostgresError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "42P01": // undefined_table
			return WithContext(ErrMissingTable, map[string]interface{}{
				"backend": "postgres",
				"error":   pgErr.Message,
			})
		case len(pgErr.Code) >= 2 && pgErr.Code[:2] == "23": // integrity_constraint_violation
			return WithContext(ErrConstraintViolation, map[string]interface{}{
				"backend":    "postgres",
				"constraint": pgErr.ConstraintName,
				"error":      pgErr.Message,
			})
		case len(pgErr.Code) >= 2 && (pgErr.Code[:2] == "28" || pgErr.Code[:2] == "08"):
			// invalid_authorization_specification / connection_exception
			return WithContext(ErrBackendUnavailable, map[string]interface{}{
				"backend": "postgres",
				"error":   pgErr.Message,
			})
		}
	}
	// Dial errors, pool timeouts and anything else non-SQL: the hosted
	// service is not answering usefully.
	return WithContext(ErrBackendUnavailable, map[string]interface{}{
		"backend": "postgres",
		"error":   err.Error(),
	})
}
