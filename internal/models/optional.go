package models

import (
	"encoding/json"

	"go.mongodb.org/mongo-driver/bson"
)

// Optional is a patch field that remembers whether it was absent from the
// request, sent as null, or sent with a value.
type Optional[T any] struct {
	Value T
	Set   bool
	Null  bool
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// Null returns an Optional that was explicitly cleared.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

// Present reports whether the field carries a usable value.
func (o Optional[T]) Present() bool {
	return o.Set && !o.Null
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Null = true
		var zero T
		o.Value = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Present() {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// ValidationValue exposes the value to the validator as a pointer. Absent
// and null fields yield a nil *T, which `omitnil` rules skip; a set zero
// value still reaches the rules after it.
func (o Optional[T]) ValidationValue() any {
	if !o.Present() {
		return (*T)(nil)
	}
	v := o.Value
	return &v
}

// putInto copies the value into doc under key when present.
func (o Optional[T]) putInto(doc bson.M, key string) {
	if o.Present() {
		doc[key] = o.Value
	}
}
