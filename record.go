package groundbase

// Record is a single logical record: field names in whichever naming
// convention the surrounding code speaks (application camelCase above the
// Store boundary, storage snake_case below it). Values are scalars, nested
// Records, or slices of either. No schema is enforced at this layer; the
// backend and the caller own the schema between them.
type Record map[string]interface{}

// Filter selects records by field equality. All keys must translate to valid
// storage column names; no range or composite operators are supported.
type Filter map[string]interface{}

// OrderBy is an optional ordering hint for List/GetMany. Absent a hint,
// result order is whatever the engine returns and must not be relied upon.
type OrderBy struct {
	Field      string
	Descending bool
}

// Clone returns a shallow copy of the record. Nested values are shared.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Has reports whether the record carries the given field, even if nil.
func (r Record) Has(key string) bool {
	_, ok := r[key]
	return ok
}
