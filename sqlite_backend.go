package groundbase

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteBackend implements Backend against an embedded SQLite database file.
// SQLite has no native document type, so structured values are serialized to
// JSON text on write and parsed back on read; columns declared as JSON mark
// where that applies.
//
// The connection pool is pinned to a single connection: the embedded variant
// is single-process by definition, and one serialized connection makes every
// statement — including the sequence allocator's conditional update — atomic
// without SQLITE_BUSY churn.
type SQLiteBackend struct {
	db   *sql.DB
	path string
}

// NewSQLiteBackend opens (creating if needed) the database file at path.
func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	if path == "" {
		return nil, WithContext(ErrInvalidConfig, map[string]interface{}{
			"field":  "EmbeddedPath",
			"reason": "embedded database path is required",
		})
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, WithContext(ErrBackendUnavailable, map[string]interface{}{
				"path":  path,
				"error": err.Error(),
			})
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)",
		path, DefaultBusyTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, WithContext(ErrBackendUnavailable, map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
	}
	db.SetMaxOpenConns(1)

	return &SQLiteBackend{db: db, path: path}, nil
}

func (b *SQLiteBackend) Name() string { return "sqlite" }

func (b *SQLiteBackend) GetOne(ctx context.Context, table string, filter Filter) (Record, error) {
	query, args, err := buildSelect(table, filter, nil, 1, sqlitePlaceholder)
	if err != nil {
		return nil, err
	}
	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	recs, err := scanSQLiteRows(rows)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return recs[0], nil
}

func (b *SQLiteBackend) GetMany(ctx context.Context, table string, filter Filter, orderBy *OrderBy) ([]Record, error) {
	query, args, err := buildSelect(table, filter, orderBy, 0, sqlitePlaceholder)
	if err != nil {
		return nil, err
	}
	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()
	return scanSQLiteRows(rows)
}

func (b *SQLiteBackend) Insert(ctx context.Context, table string, rec Record) (Record, error) {
	flat, err := flattenForSQLite(rec)
	if err != nil {
		return nil, err
	}
	query, args, err := buildInsert(table, flat, sqlitePlaceholder)
	if err != nil {
		return nil, err
	}
	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	recs, err := scanSQLiteRows(rows)
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

func (b *SQLiteBackend) Update(ctx context.Context, table string, patch Record, filter Filter) ([]Record, error) {
	flat, err := flattenForSQLite(patch)
	if err != nil {
		return nil, err
	}
	query, args, err := buildUpdate(table, flat, filter, sqlitePlaceholder)
	if err != nil {
		return nil, err
	}
	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()
	return scanSQLiteRows(rows)
}

func (b *SQLiteBackend) Delete(ctx context.Context, table string, filter Filter) (int64, error) {
	query, args, err := buildDelete(table, filter, sqlitePlaceholder)
	if err != nil {
		return 0, err
	}
	res, err := b.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, mapSQLiteError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, mapSQLiteError(err)
	}
	return n, nil
}

func (b *SQLiteBackend) EnsureCounterTable(ctx context.Context, table string) error {
	if err := checkIdent("table", table); err != nil {
		return err
	}
	ddl := "CREATE TABLE IF NOT EXISTS " + table + ` (
		partition_key INTEGER NOT NULL UNIQUE,
		next_value INTEGER NOT NULL,
		updated_at TEXT NOT NULL
	)`
	if _, err := b.db.ExecContext(ctx, ddl); err != nil {
		return mapSQLiteError(err)
	}
	return nil
}

func (b *SQLiteBackend) Ping(ctx context.Context) error {
	if err := b.db.PingContext(ctx); err != nil {
		return mapSQLiteError(err)
	}
	return nil
}

func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

// flattenForSQLite serializes structured values to JSON text so they fit in
// flat typed columns. Scalars pass through untouched.
func flattenForSQLite(rec Record) (Record, error) {
	out := make(Record, len(rec))
	for k, v := range rec {
		if IsStructured(v) {
			text, err := EncodeStructured(v)
			if err != nil {
				return nil, err
			}
			out[k] = text
			continue
		}
		out[k] = v
	}
	return out, nil
}

// scanSQLiteRows materializes rows into Records, parsing columns declared as
// JSON back into structured form.
func scanSQLiteRows(rows *sql.Rows) ([]Record, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	jsonCol := make([]bool, len(cols))
	for i, ct := range types {
		jsonCol[i] = strings.Contains(strings.ToUpper(ct.DatabaseTypeName()), "JSON")
	}

	recs := []Record{}
	for rows.Next() {
		values := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, mapSQLiteError(err)
		}

		rec := make(Record, len(cols))
		for i, col := range cols {
			v := values[i]
			if bs, ok := v.([]byte); ok {
				v = string(bs)
			}
			if jsonCol[i] && v != nil {
				text, ok := v.(string)
				if !ok {
					return nil, WithContext(ErrCorruptValue, map[string]interface{}{
						"column": col,
						"reason": "JSON column does not hold text",
					})
				}
				parsed, err := DecodeStructured(text)
				if err != nil {
					return nil, WithContext(ErrCorruptValue, map[string]interface{}{
						"column": col,
					})
				}
				v = parsed
			}
			rec[col] = v
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLiteError(err)
	}
	return recs, nil
}

// mapSQLiteError translates driver errors into the shared taxonomy so no
// engine-specific type crosses the Backend boundary.
func mapSQLiteError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "constraint failed"),
		strings.Contains(msg, "UNIQUE constraint"),
		strings.Contains(msg, "FOREIGN KEY constraint"):
		return WithContext(ErrConstraintViolation, map[string]interface{}{
			"backend": "sqlite",
			"error":   msg,
		})
	case strings.Contains(msg, "no such table"):
		return WithContext(ErrMissingTable, map[string]interface{}{
			"backend": "sqlite",
			"error":   msg,
		})
	default:
		return WithContext(ErrBackendUnavailable, map[string]interface{}{
			"backend": "sqlite",
			"error":   msg,
		})
	}
}
