package groundbase

import (
	"context"
	"encoding/json"
)

// Package-level typed helpers over the Record-based facade, for callers that
// want their own structs instead of maps.

// DecodeRecord converts a Record into a caller struct using its json tags.
// Field names match the application convention, so a struct tagged
// `json:"projectNumber"` lines up with what Store returns.
func DecodeRecord[T any](rec Record) (*T, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, WithContext(ErrInvalidData, map[string]interface{}{
			"reason": "record not JSON-serializable",
			"error":  err.Error(),
		})
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, WithContext(ErrInvalidData, map[string]interface{}{
			"reason": "record does not fit target type",
			"error":  err.Error(),
		})
	}
	return &out, nil
}

// EncodeRecord converts a caller struct into a Record via its json tags.
func EncodeRecord(v interface{}) (Record, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, WithContext(ErrInvalidData, map[string]interface{}{
			"reason": "value not JSON-serializable",
			"error":  err.Error(),
		})
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, WithContext(ErrInvalidData, map[string]interface{}{
			"reason": "value is not an object",
			"error":  err.Error(),
		})
	}
	return rec, nil
}

// GetAs fetches the first record matching filter, decoded into T. Returns
// ErrNotFound when nothing matches — this is the presence-requiring
// counterpart to Store.Get's (nil, nil) absence.
func GetAs[T any](ctx context.Context, store *Store, table string, filter Filter) (*T, error) {
	rec, err := store.Get(ctx, table, filter)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, WithContext(ErrNotFound, map[string]interface{}{
			"table": table,
		})
	}
	return DecodeRecord[T](rec)
}

// ListAs fetches every record matching filter, decoded into a slice of T.
func ListAs[T any](ctx context.Context, store *Store, table string, filter Filter, orderBy *OrderBy) ([]*T, error) {
	recs, err := store.List(ctx, table, filter, orderBy)
	if err != nil {
		return nil, err
	}
	out := make([]*T, 0, len(recs))
	for _, rec := range recs {
		item, err := DecodeRecord[T](rec)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// CreateAs stores a struct and returns it as stored.
func CreateAs[T any](ctx context.Context, store *Store, table string, v *T) (*T, error) {
	rec, err := EncodeRecord(v)
	if err != nil {
		return nil, err
	}
	stored, err := store.Create(ctx, table, rec)
	if err != nil {
		return nil, err
	}
	return DecodeRecord[T](stored)
}
