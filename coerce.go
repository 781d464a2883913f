package groundbase

import (
	"bytes"
	"encoding/json"
)

// Structured-value coercion between Record form and what a backend can
// actually store. The hosted backend has a native document type (jsonb), so
// its coercion is identity beyond key translation; the embedded backend only
// has flat typed columns, so nested maps and slices are serialized to
// canonical JSON text on write and parsed back on read.

// IsStructured reports whether a value needs document encoding before it can
// live in a flat typed column. []byte stays a blob, everything else
// map-or-slice shaped is a document.
func IsStructured(v interface{}) bool {
	switch v.(type) {
	case Record, map[string]interface{}, []interface{}, []Record, []map[string]interface{}:
		return true
	default:
		return false
	}
}

// EncodeStructured serializes a structured value to canonical JSON text.
func EncodeStructured(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", WithContext(ErrInvalidData, map[string]interface{}{
			"reason": "structured value is not JSON-serializable",
			"error":  err.Error(),
		})
	}
	return string(data), nil
}

// DecodeStructured parses stored document text back into Record /
// []interface{} form. Malformed text is a CorruptValue error, never a silent
// default: a document column that fails to parse means the stored data is
// damaged and the caller has to know.
func DecodeStructured(text string) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, WithContext(ErrCorruptValue, map[string]interface{}{
			"error": err.Error(),
		})
	}
	return normalizeDecoded(v), nil
}

// normalizeDecoded rewrites decoded JSON into the shapes the rest of the
// layer traffics in: objects become Record, json.Number becomes int64 when
// integral and float64 otherwise.
func normalizeDecoded(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(Record, len(val))
		for k, item := range val {
			out[k] = normalizeDecoded(item)
		}
		return out
	case []interface{}:
		for i, item := range val {
			val[i] = normalizeDecoded(item)
		}
		return val
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	default:
		return v
	}
}
