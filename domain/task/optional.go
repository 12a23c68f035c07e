package task

import (
	"bytes"
	"encoding/json"
)

// Optional holds a field of a partial update. The zero value means the field
// was omitted; Null means it was sent as an explicit JSON null.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Some returns an Optional carrying v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// Null returns an Optional that was explicitly cleared.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

// Present reports whether a usable value was supplied.
func (o Optional[T]) Present() bool {
	return o.Set && !o.Null
}

// UnmarshalJSON is only called for keys present in the document, which is what
// separates "omitted" from "null".
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		var zero T
		o.Value = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

// MarshalJSON writes null for cleared fields. Omitted fields are dropped by
// the omitzero tag through IsZero.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// IsZero lets encoding/json's omitzero skip omitted fields.
func (o Optional[T]) IsZero() bool {
	return !o.Set
}
