package groundbase

import "strings"

// Key translation between the application convention (camelCase) and the
// storage convention (snake_case). The transform is deliberately
// per-character — every uppercase letter becomes an underscore plus its
// lowercase form — so ToLogicalKey(ToStorageKey(k)) == k holds exactly for
// any key made of ASCII letters and digits, acronyms included
// ("userID" -> "user_i_d" -> "userID").
//
// There are two distinct entry points on purpose. Bare string keys (filter
// keys, order-by fields) go through ToStorageKey/ToLogicalKey; whole records
// go through the Record-typed recursive functions below. Keeping the string
// path and the record path as separate, differently-typed functions makes it
// impossible to hand a bare key to the record translator and get a silent
// no-op back.

// ToStorageKey converts a single application-convention key to its storage
// column name.
func ToStorageKey(key string) string {
	var b strings.Builder
	b.Grow(len(key) + 4)
	for _, r := range key {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
			b.WriteByte(byte(r) + ('a' - 'A'))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ToLogicalKey converts a single storage column name back to the application
// convention. Inverse of ToStorageKey for letter/digit keys.
func ToLogicalKey(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for i := 0; i < len(key); i++ {
		c := key[i]
		if c == '_' && i+1 < len(key) && key[i+1] >= 'a' && key[i+1] <= 'z' {
			b.WriteByte(key[i+1] - ('a' - 'A'))
			i++
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// RecordToStorage converts every key of the record, at every depth, to the
// storage convention. Values are untouched apart from key renames inside
// nested records.
func RecordToStorage(rec Record) Record {
	return translateRecord(rec, ToStorageKey)
}

// RecordToLogical converts every key of the record, at every depth, back to
// the application convention.
func RecordToLogical(rec Record) Record {
	return translateRecord(rec, ToLogicalKey)
}

// FilterToStorage converts filter keys via the single-key path. Filter values
// are equality operands and are never structurally translated.
func FilterToStorage(filter Filter) Filter {
	if filter == nil {
		return nil
	}
	out := make(Filter, len(filter))
	for k, v := range filter {
		out[ToStorageKey(k)] = v
	}
	return out
}

func translateRecord(rec Record, keyFn func(string) string) Record {
	if rec == nil {
		return nil
	}
	out := make(Record, len(rec))
	for k, v := range rec {
		out[keyFn(k)] = translateValue(v, keyFn)
	}
	return out
}

func translateValue(v interface{}, keyFn func(string) string) interface{} {
	switch val := v.(type) {
	case Record:
		return translateRecord(val, keyFn)
	case map[string]interface{}:
		return translateRecord(Record(val), keyFn)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = translateValue(item, keyFn)
		}
		return out
	case []Record:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = translateRecord(item, keyFn)
		}
		return out
	case []map[string]interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = translateRecord(Record(item), keyFn)
		}
		return out
	default:
		return v
	}
}
