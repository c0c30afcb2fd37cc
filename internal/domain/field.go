package domain

import "encoding/json"

// Field is an optional per-row override of a canonical album value.
// The zero value is "inherited": the row takes whatever the referenced
// album carries. On the wire an inherited field is null (or absent) and
// an override is the value itself, so storage pays only for divergence.
type Field[T any] struct {
	value T
	set   bool
}

// Override builds a Field carrying an explicit row-level value.
func Override[T any](v T) Field[T] {
	return Field[T]{value: v, set: true}
}

// Inherited builds an empty Field. Identical to the zero value; exists so
// call sites can say what they mean.
func Inherited[T any]() Field[T] {
	return Field[T]{}
}

// Overridden returns true if the row carries its own value.
func (f Field[T]) Overridden() bool {
	return f.set
}

// Value returns the override and whether one is present.
func (f Field[T]) Value() (T, bool) {
	return f.value, f.set
}

// Or returns the override if present, otherwise the given fallback.
func (f Field[T]) Or(fallback T) T {
	if f.set {
		return f.value
	}
	return fallback
}

// MarshalJSON encodes an inherited field as null and an override as its value.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.set {
		return []byte("null"), nil
	}
	return json.Marshal(f.value)
}

// UnmarshalJSON decodes null as inherited and anything else as an override.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = Field[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Field[T]{value: v, set: true}
	return nil
}
