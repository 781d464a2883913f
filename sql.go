package groundbase

import (
	"fmt"
	"sort"
	"strings"
)

// Shared SQL statement builders for the two adapter variants. Everything here
// works on storage-convention names; identifiers are validated before being
// spliced into statements and values always travel as bind parameters.

// placeholderFunc renders the i-th (1-based) bind parameter for an engine:
// "?" for SQLite, "$1".."$n" for PostgreSQL.
type placeholderFunc func(i int) string

func sqlitePlaceholder(i int) string { return "?" }

func postgresPlaceholder(i int) string { return fmt.Sprintf("$%d", i) }

// validIdent accepts storage-convention identifiers only. Anything that needs
// quoting to be a column name is not a translatable key and gets rejected
// rather than quoted.
func validIdent(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c == '_':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func checkIdent(kind, name string) error {
	if !validIdent(name) {
		return WithContext(ErrInvalidData, map[string]interface{}{
			"reason": "not a valid storage identifier",
			"kind":   kind,
			"name":   name,
		})
	}
	return nil
}

// sortedKeys gives statements a deterministic column order.
func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// buildWhere renders an equality-only WHERE clause. argOffset is how many
// bind parameters the caller already used. A nil/empty filter matches all
// rows; a nil value becomes IS NULL.
func buildWhere(filter Filter, ph placeholderFunc, argOffset int) (string, []interface{}, error) {
	if len(filter) == 0 {
		return "", nil, nil
	}
	conds := make([]string, 0, len(filter))
	args := make([]interface{}, 0, len(filter))
	n := argOffset
	for _, col := range sortedKeys(filter) {
		if err := checkIdent("filter key", col); err != nil {
			return "", nil, err
		}
		v := filter[col]
		if v == nil {
			conds = append(conds, col+" IS NULL")
			continue
		}
		n++
		conds = append(conds, col+" = "+ph(n))
		args = append(args, v)
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func buildSelect(table string, filter Filter, orderBy *OrderBy, limit int, ph placeholderFunc) (string, []interface{}, error) {
	if err := checkIdent("table", table); err != nil {
		return "", nil, err
	}
	query := "SELECT * FROM " + table
	where, args, err := buildWhere(filter, ph, 0)
	if err != nil {
		return "", nil, err
	}
	query += where
	if orderBy != nil {
		col := ToStorageKey(orderBy.Field)
		if err := checkIdent("order by", col); err != nil {
			return "", nil, err
		}
		query += " ORDER BY " + col
		if orderBy.Descending {
			query += " DESC"
		}
	}
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	return query, args, nil
}

func buildInsert(table string, rec Record, ph placeholderFunc) (string, []interface{}, error) {
	if err := checkIdent("table", table); err != nil {
		return "", nil, err
	}
	if len(rec) == 0 {
		return "", nil, WithContext(ErrInvalidData, map[string]interface{}{
			"reason": "insert requires at least one field",
			"table":  table,
		})
	}
	cols := sortedKeys(rec)
	vals := make([]string, 0, len(cols))
	args := make([]interface{}, 0, len(cols))
	for i, col := range cols {
		if err := checkIdent("record key", col); err != nil {
			return "", nil, err
		}
		vals = append(vals, ph(i+1))
		args = append(args, rec[col])
	}
	query := "INSERT INTO " + table + " (" + strings.Join(cols, ", ") + ") VALUES (" +
		strings.Join(vals, ", ") + ") RETURNING *"
	return query, args, nil
}

func buildUpdate(table string, patch Record, filter Filter, ph placeholderFunc) (string, []interface{}, error) {
	if err := checkIdent("table", table); err != nil {
		return "", nil, err
	}
	if len(patch) == 0 {
		return "", nil, WithContext(ErrInvalidData, map[string]interface{}{
			"reason": "update requires a non-empty patch",
			"table":  table,
		})
	}
	sets := make([]string, 0, len(patch))
	args := make([]interface{}, 0, len(patch)+len(filter))
	n := 0
	for _, col := range sortedKeys(patch) {
		if err := checkIdent("patch key", col); err != nil {
			return "", nil, err
		}
		n++
		sets = append(sets, col+" = "+ph(n))
		args = append(args, patch[col])
	}
	where, whereArgs, err := buildWhere(filter, ph, n)
	if err != nil {
		return "", nil, err
	}
	query := "UPDATE " + table + " SET " + strings.Join(sets, ", ") + where + " RETURNING *"
	return query, append(args, whereArgs...), nil
}

func buildDelete(table string, filter Filter, ph placeholderFunc) (string, []interface{}, error) {
	if err := checkIdent("table", table); err != nil {
		return "", nil, err
	}
	where, args, err := buildWhere(filter, ph, 0)
	if err != nil {
		return "", nil, err
	}
	return "DELETE FROM " + table + where, args, nil
}
