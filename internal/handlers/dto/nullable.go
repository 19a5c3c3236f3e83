package dto

import (
	"bytes"
	"encoding/json"
)

// Nullable distinguishes a field that was left out of a payload from one that
// was sent as null. Use it with the omitzero tag option so an unset value is
// not written at all.
type Nullable[T any] struct {
	Value T
	Set   bool
	Null  bool
}

func Some[T any](v T) Nullable[T] {
	return Nullable[T]{Value: v, Set: true}
}

func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true, Null: true}
}

func (n Nullable[T]) IsZero() bool {
	return !n.Set
}

// Ptr returns nil for null and a pointer to the value otherwise.
func (n Nullable[T]) Ptr() *T {
	if n.Null || !n.Set {
		return nil
	}
	v := n.Value
	return &v
}

func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if n.Null || !n.Set {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Null = true
		var zero T
		n.Value = zero
		return nil
	}
	n.Null = false
	return json.Unmarshal(data, &n.Value)
}
