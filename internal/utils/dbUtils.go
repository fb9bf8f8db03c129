package utils

import (
	"context"
	"fmt"
	"reflect"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const DefaultPerPage = 50

// FormatToDatabaseFilter flattens nested maps into dot-separated paths,
// e.g. {"friends": {"name": "Bob"}} becomes {"friends.name": "Bob"}.
// Empty leaves (nil, "", 0, false, zero time, empty slice or map) are
// dropped, and so is any nested map left without leaves.
func FormatToDatabaseFilter(data map[string]any) bson.M {
	result := bson.M{}
	flattenInto(result, "", reflect.ValueOf(data))
	return result
}

func flattenInto(out bson.M, prefix string, m reflect.Value) {
	iter := m.MapRange()
	for iter.Next() {
		path := iter.Key().String()
		if prefix != "" {
			path = prefix + "." + path
		}

		value := indirect(iter.Value())
		if isStringKeyedMap(value) {
			flattenInto(out, path, value)
			continue
		}
		if isEmptyValue(value) {
			continue
		}
		out[path] = value.Interface()
	}
}

func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func isStringKeyedMap(v reflect.Value) bool {
	return v.IsValid() && v.Kind() == reflect.Map && v.Type().Key().Kind() == reflect.String
}

func isEmptyValue(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array, reflect.String:
		return v.Len() == 0
	}
	return v.IsZero()
}

// Page is a normalized 1-indexed page request.
type Page struct {
	Number  int
	PerPage int
}

// NewPage clamps page to 1 and perPage to DefaultPerPage when they are not positive.
func NewPage(perPage, page int) Page {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	return Page{Number: page, PerPage: perPage}
}

func (p Page) Skip() int64 {
	return int64(p.PerPage) * int64(p.Number-1)
}

func (p Page) Limit() int64 {
	return int64(p.PerPage)
}

// FormatPagesToFilter appends $skip and $limit stages for the requested page.
func FormatPagesToFilter(perPage, page int, stages []bson.M) []bson.M {
	p := NewPage(perPage, page)
	return append(stages,
		bson.M{"$skip": p.Skip()},
		bson.M{"$limit": p.Limit()},
	)
}

// CreateUniqueIndex creates a unique index on the specified collection and keys.
// It returns an error if the index creation fails, including a specific error for duplicate keys.
func CreateUniqueIndex(ctx context.Context, collection *mongo.Collection, keys interface{}, fieldName string) error {
	indexModel := mongo.IndexModel{
		Keys:    keys,
		Options: options.Index().SetUnique(true),
	}

	_, err := collection.Indexes().CreateOne(ctx, indexModel)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%s already exists", fieldName)
		}
		return fmt.Errorf("failed to create index for %s: %w", fieldName, err)
	}
	return nil
}
