// Package repotest provides an in-memory repositories.Repository for tests
// that should not need a running MongoDB.
package repotest

import (
	"bytes"
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jsonzilla/template-go-mongodb/internal/apperrors"
	"github.com/jsonzilla/template-go-mongodb/internal/repositories"
	"github.com/jsonzilla/template-go-mongodb/internal/utils"
)

// Memory keeps documents in insertion order. Filters support equality on
// top-level and dotted paths (arrays match any element), $in and $or.
type Memory[T repositories.Document] struct {
	mu      sync.Mutex
	order   []string
	docs    map[string]bson.Raw
	unique  []string
	failErr error
}

func NewMemory[T repositories.Document]() *Memory[T] {
	return &Memory[T]{docs: map[string]bson.Raw{}}
}

var _ repositories.Repository[repositories.Document] = (*Memory[repositories.Document])(nil)

// FailWith makes every following call return err. Pass nil to recover.
func (m *Memory[T]) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failErr = err
}

// Len reports how many documents are stored.
func (m *Memory[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.order)
}

func (m *Memory[T]) Insert(ctx context.Context, doc T) (string, error) {
	ids, err := m.InsertMany(ctx, []T{doc})
	if err != nil {
		return "", err
	}
	return ids[0], nil
}

func (m *Memory[T]) InsertMany(_ context.Context, docs []T) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}

	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		id := doc.GetID()
		if id == "" {
			return ids, apperrors.Validation("document id is required")
		}
		raw, err := bson.Marshal(doc)
		if err != nil {
			return ids, err
		}
		if _, ok := m.docs[id]; ok || m.violatesUnique(raw) {
			return ids, apperrors.Conflict("Already exists")
		}
		m.docs[id] = raw
		m.order = append(m.order, id)
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *Memory[T]) violatesUnique(raw bson.Raw) bool {
	for _, field := range m.unique {
		value, err := raw.LookupErr(field)
		if err != nil {
			continue
		}
		for _, stored := range m.docs {
			if other, err := stored.LookupErr(field); err == nil && other.Equal(value) {
				return true
			}
		}
	}
	return false
}

func (m *Memory[T]) Create(ctx context.Context, doc T) (*T, error) {
	id, err := m.Insert(ctx, doc)
	if err != nil {
		return nil, err
	}
	return m.GetByID(ctx, id)
}

func (m *Memory[T]) CreateMany(ctx context.Context, docs []T) ([]T, error) {
	ids, err := m.InsertMany(ctx, docs)
	if err != nil {
		return nil, err
	}
	return m.GetBy(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (m *Memory[T]) GetByID(ctx context.Context, id string) (*T, error) {
	return m.GetOne(ctx, bson.M{"_id": id})
}

func (m *Memory[T]) GetOne(ctx context.Context, filter bson.M) (*T, error) {
	docs, err := m.GetBy(ctx, filter)
	if err != nil || len(docs) == 0 {
		return nil, err
	}
	return &docs[0], nil
}

func (m *Memory[T]) GetBy(_ context.Context, filter bson.M) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	return m.matching(filter, "")
}

func (m *Memory[T]) GetAllBy(ctx context.Context, filter bson.M) ([]T, error) {
	return m.GetBy(ctx, filter)
}

func (m *Memory[T]) GetAll(ctx context.Context) ([]T, error) {
	return m.GetBy(ctx, nil)
}

func (m *Memory[T]) GetByAndSort(_ context.Context, filter bson.M, sortField string) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	return m.matching(filter, sortField)
}

func (m *Memory[T]) GetByAndSortWithPagination(_ context.Context, filter bson.M, sortField string, page, perPage int) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	if sortField == "" {
		sortField = "_id"
	}
	docs, err := m.matching(filter, sortField)
	if err != nil {
		return nil, err
	}

	p := utils.NewPage(perPage, page)
	start := int(p.Skip())
	if start >= len(docs) {
		return []T{}, nil
	}
	end := min(start+p.PerPage, len(docs))
	return docs[start:end], nil
}

// matching must be called with m.mu held.
func (m *Memory[T]) matching(filter bson.M, sortField string) ([]T, error) {
	type entry struct {
		doc bson.M
		raw bson.Raw
	}

	var entries []entry
	for _, id := range m.order {
		raw := m.docs[id]
		var doc bson.M
		if err := bson.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		if matches(doc, filter) {
			entries = append(entries, entry{doc: doc, raw: raw})
		}
	}

	if sortField != "" {
		sort.SliceStable(entries, func(i, j int) bool {
			a, b := lookup(entries[i].doc, sortField), lookup(entries[j].doc, sortField)
			if less(a, b) {
				return true
			}
			if less(b, a) {
				return false
			}
			return less(entries[i].doc["_id"], entries[j].doc["_id"])
		})
	}

	out := make([]T, 0, len(entries))
	for _, e := range entries {
		var v T
		if err := bson.Unmarshal(e.raw, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (m *Memory[T]) Update(_ context.Context, id string, fields bson.M) (*mongo.UpdateResult, error) {
	set := make(bson.D, 0, len(fields))
	for key, value := range fields {
		set = append(set, bson.E{Key: key, Value: value})
	}
	return m.update(id, set)
}

func (m *Memory[T]) update(id string, set bson.D) (*mongo.UpdateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}

	raw, ok := m.docs[id]
	if !ok {
		return &mongo.UpdateResult{}, nil
	}
	var doc bson.D
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	for _, field := range set {
		if field.Key == "_id" {
			continue
		}
		doc = setField(doc, field.Key, field.Value)
	}
	updated, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}

	result := &mongo.UpdateResult{MatchedCount: 1}
	if !bytes.Equal(updated, raw) {
		m.docs[id] = updated
		result.ModifiedCount = 1
	}
	return result, nil
}

func setField(doc bson.D, key string, value interface{}) bson.D {
	for i := range doc {
		if doc[i].Key == key {
			doc[i].Value = value
			return doc
		}
	}
	return append(doc, bson.E{Key: key, Value: value})
}

func (m *Memory[T]) UpdateList(_ context.Context, docs []T) ([]*mongo.UpdateResult, error) {
	results := make([]*mongo.UpdateResult, 0, len(docs))
	for _, doc := range docs {
		raw, err := bson.Marshal(doc)
		if err != nil {
			return results, err
		}
		var fields bson.D
		if err := bson.Unmarshal(raw, &fields); err != nil {
			return results, err
		}
		result, err := m.update(doc.GetID(), fields)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

func (m *Memory[T]) Delete(ctx context.Context, id string) (*mongo.DeleteResult, error) {
	return m.DeleteMany(ctx, bson.M{"_id": id})
}

func (m *Memory[T]) DeleteMany(_ context.Context, filter bson.M) (*mongo.DeleteResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}

	kept := m.order[:0]
	var deleted int64
	for _, id := range m.order {
		var doc bson.M
		if err := bson.Unmarshal(m.docs[id], &doc); err != nil {
			return nil, err
		}
		if matches(doc, filter) {
			delete(m.docs, id)
			deleted++
			continue
		}
		kept = append(kept, id)
	}
	m.order = kept
	return &mongo.DeleteResult{DeletedCount: deleted}, nil
}

func (m *Memory[T]) Exists(ctx context.Context, filter bson.M) (bool, error) {
	count, err := m.Count(ctx, filter)
	return count > 0, err
}

func (m *Memory[T]) Count(ctx context.Context, filter bson.M) (int64, error) {
	docs, err := m.GetBy(ctx, filter)
	return int64(len(docs)), err
}

func (m *Memory[T]) EnsureUniqueIndex(_ context.Context, field string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.unique = append(m.unique, field)
	return nil
}

func matches(doc bson.M, filter bson.M) bool {
	for key, want := range filter {
		if key == "$or" {
			if !matchesAny(doc, want) {
				return false
			}
			continue
		}
		if !matchesValue(candidates(doc, strings.Split(key, ".")), want) {
			return false
		}
	}
	return true
}

func matchesAny(doc bson.M, clauses interface{}) bool {
	v := reflect.ValueOf(clauses)
	if v.Kind() != reflect.Slice {
		return false
	}
	for i := 0; i < v.Len(); i++ {
		if clause, ok := v.Index(i).Interface().(bson.M); ok && matches(doc, clause) {
			return true
		}
	}
	return false
}

func matchesValue(values []interface{}, want interface{}) bool {
	if op, ok := want.(bson.M); ok {
		if in, ok := op["$in"]; ok {
			list := reflect.ValueOf(in)
			for i := 0; i < list.Len(); i++ {
				if matchesValue(values, list.Index(i).Interface()) {
					return true
				}
			}
			return false
		}
	}
	for _, v := range values {
		if equal(v, want) {
			return true
		}
	}
	return false
}

// candidates walks path through doc, fanning out over arrays.
func candidates(value interface{}, path []string) []interface{} {
	if arr, ok := value.(primitive.A); ok {
		var out []interface{}
		if len(path) == 0 {
			out = append(out, value)
		}
		for _, item := range arr {
			out = append(out, candidates(item, path)...)
		}
		return out
	}
	if len(path) == 0 {
		return []interface{}{value}
	}
	if d, ok := value.(primitive.D); ok {
		value = d.Map()
	}
	doc, ok := value.(bson.M)
	if !ok {
		return nil
	}
	next, ok := doc[path[0]]
	if !ok {
		return nil
	}
	return candidates(next, path[1:])
}

func lookup(doc bson.M, path string) interface{} {
	values := candidates(doc, strings.Split(path, "."))
	if len(values) == 0 {
		return nil
	}
	return values[0]
}

func normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case int:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case float32:
		return float64(t)
	case time.Time:
		return primitive.NewDateTimeFromTime(t)
	case []string:
		arr := make(primitive.A, len(t))
		for i, s := range t {
			arr[i] = s
		}
		return arr
	}
	return v
}

func equal(a, b interface{}) bool {
	return reflect.DeepEqual(normalize(a), normalize(b))
}

func less(a, b interface{}) bool {
	a, b = normalize(a), normalize(b)
	switch x := a.(type) {
	case float64:
		if y, ok := b.(float64); ok {
			return x < y
		}
	case string:
		if y, ok := b.(string); ok {
			return x < y
		}
	case primitive.DateTime:
		if y, ok := b.(primitive.DateTime); ok {
			return x < y
		}
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}
