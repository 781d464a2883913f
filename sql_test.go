package groundbase

import (
	"reflect"
	"testing"
)

func TestBuildSelect(t *testing.T) {
	t.Run("filter and order", func(t *testing.T) {
		query, args, err := buildSelect("projects",
			Filter{"year": 2026, "client_id": int64(7)},
			&OrderBy{Field: "projectNumber", Descending: true},
			0, sqlitePlaceholder)
		if err != nil {
			t.Fatalf("buildSelect failed: %v", err)
		}
		want := "SELECT * FROM projects WHERE client_id = ? AND year = ? ORDER BY project_number DESC"
		if query != want {
			t.Errorf("query = %q, want %q", query, want)
		}
		if !reflect.DeepEqual(args, []interface{}{int64(7), 2026}) {
			t.Errorf("args = %v", args)
		}
	})

	t.Run("postgres placeholders", func(t *testing.T) {
		query, _, err := buildSelect("projects", Filter{"a": 1, "b": 2}, nil, 1, postgresPlaceholder)
		if err != nil {
			t.Fatalf("buildSelect failed: %v", err)
		}
		want := "SELECT * FROM projects WHERE a = $1 AND b = $2 LIMIT 1"
		if query != want {
			t.Errorf("query = %q, want %q", query, want)
		}
	})

	t.Run("nil value means IS NULL", func(t *testing.T) {
		query, args, err := buildSelect("projects", Filter{"closed_at": nil}, nil, 0, sqlitePlaceholder)
		if err != nil {
			t.Fatalf("buildSelect failed: %v", err)
		}
		if query != "SELECT * FROM projects WHERE closed_at IS NULL" {
			t.Errorf("query = %q", query)
		}
		if len(args) != 0 {
			t.Errorf("IS NULL should not bind a value: %v", args)
		}
	})

	t.Run("empty filter scans all", func(t *testing.T) {
		query, _, err := buildSelect("projects", nil, nil, 0, sqlitePlaceholder)
		if err != nil {
			t.Fatalf("buildSelect failed: %v", err)
		}
		if query != "SELECT * FROM projects" {
			t.Errorf("query = %q", query)
		}
	})

	t.Run("rejects hostile identifiers", func(t *testing.T) {
		if _, _, err := buildSelect("projects; DROP TABLE x", nil, nil, 0, sqlitePlaceholder); err == nil {
			t.Error("table name with SQL accepted")
		}
		if _, _, err := buildSelect("projects", Filter{"a b": 1}, nil, 0, sqlitePlaceholder); err == nil {
			t.Error("filter key with space accepted")
		}
		if _, _, err := buildSelect("projects", nil, &OrderBy{Field: "x; --"}, 0, sqlitePlaceholder); err == nil {
			t.Error("order-by with SQL accepted")
		}
	})
}

func TestBuildInsert(t *testing.T) {
	query, args, err := buildInsert("projects", Record{"name": "Pit 4", "year": 2026}, postgresPlaceholder)
	if err != nil {
		t.Fatalf("buildInsert failed: %v", err)
	}
	want := "INSERT INTO projects (name, year) VALUES ($1, $2) RETURNING *"
	if query != want {
		t.Errorf("query = %q, want %q", query, want)
	}
	if !reflect.DeepEqual(args, []interface{}{"Pit 4", 2026}) {
		t.Errorf("args = %v", args)
	}

	if _, _, err := buildInsert("projects", Record{}, postgresPlaceholder); err == nil {
		t.Error("empty insert accepted")
	}
}

func TestBuildUpdate(t *testing.T) {
	// The shape the sequence allocator relies on: the read value rides in the
	// WHERE clause, making the update a compare-and-swap.
	query, args, err := buildUpdate("project_counters",
		Record{"next_value": int64(6)},
		Filter{"partition_key": int64(2026), "next_value": int64(5)},
		sqlitePlaceholder)
	if err != nil {
		t.Fatalf("buildUpdate failed: %v", err)
	}
	want := "UPDATE project_counters SET next_value = ? WHERE next_value = ? AND partition_key = ? RETURNING *"
	if query != want {
		t.Errorf("query = %q, want %q", query, want)
	}
	if !reflect.DeepEqual(args, []interface{}{int64(6), int64(5), int64(2026)}) {
		t.Errorf("args = %v", args)
	}

	if _, _, err := buildUpdate("projects", Record{}, nil, sqlitePlaceholder); err == nil {
		t.Error("empty patch accepted")
	}
}

func TestBuildDelete(t *testing.T) {
	query, args, err := buildDelete("samples", Filter{"project_id": "p1"}, postgresPlaceholder)
	if err != nil {
		t.Fatalf("buildDelete failed: %v", err)
	}
	if query != "DELETE FROM samples WHERE project_id = $1" {
		t.Errorf("query = %q", query)
	}
	if !reflect.DeepEqual(args, []interface{}{"p1"}) {
		t.Errorf("args = %v", args)
	}
}

func TestValidIdent(t *testing.T) {
	good := []string{"projects", "project_counters", "a", "_private", "x9"}
	bad := []string{"", "9x", "Projects", "a-b", "a b", "a;b", `a"b`}
	for _, name := range good {
		if !validIdent(name) {
			t.Errorf("validIdent(%q) = false, want true", name)
		}
	}
	for _, name := range bad {
		if validIdent(name) {
			t.Errorf("validIdent(%q) = true, want false", name)
		}
	}
}
