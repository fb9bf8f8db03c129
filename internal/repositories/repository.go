package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jsonzilla/template-go-mongodb/internal/apperrors"
	"github.com/jsonzilla/template-go-mongodb/internal/database"
	"github.com/jsonzilla/template-go-mongodb/internal/utils"
)

// Document is anything stored under a string _id.
type Document interface {
	GetID() string
}

// Repository is the set of collection operations shared by every entity.
// Calls made with a context returned by database.Service.WithTransaction
// take part in that transaction.
type Repository[T Document] interface {
	Insert(ctx context.Context, doc T) (string, error)
	InsertMany(ctx context.Context, docs []T) ([]string, error)
	Create(ctx context.Context, doc T) (*T, error)
	CreateMany(ctx context.Context, docs []T) ([]T, error)
	GetByID(ctx context.Context, id string) (*T, error)
	GetOne(ctx context.Context, filter bson.M) (*T, error)
	GetBy(ctx context.Context, filter bson.M) ([]T, error)
	GetAllBy(ctx context.Context, filter bson.M) ([]T, error)
	GetAll(ctx context.Context) ([]T, error)
	GetByAndSort(ctx context.Context, filter bson.M, sortField string) ([]T, error)
	GetByAndSortWithPagination(ctx context.Context, filter bson.M, sortField string, page, perPage int) ([]T, error)
	Update(ctx context.Context, id string, fields bson.M) (*mongo.UpdateResult, error)
	UpdateList(ctx context.Context, docs []T) ([]*mongo.UpdateResult, error)
	Delete(ctx context.Context, id string) (*mongo.DeleteResult, error)
	DeleteMany(ctx context.Context, filter bson.M) (*mongo.DeleteResult, error)
	Exists(ctx context.Context, filter bson.M) (bool, error)
	Count(ctx context.Context, filter bson.M) (int64, error)
	EnsureUniqueIndex(ctx context.Context, field string) error
}

type mongoRepository[T Document] struct {
	db         database.Service
	collection string
}

func NewRepository[T Document](db database.Service, collection string) Repository[T] {
	return &mongoRepository[T]{db: db, collection: collection}
}

func (r *mongoRepository[T]) coll() *mongo.Collection {
	return r.db.Collection(r.collection)
}

// track starts a query timer. The returned func records the outcome held in *errp.
func (r *mongoRepository[T]) track(queryType string) func(errp *error) {
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, r.collection, status).Observe(v)
	}))
	return func(errp *error) {
		if *errp != nil && !errors.Is(*errp, apperrors.ErrValidation) {
			status = "error"
			utils.DBQueryErrorsTotal.WithLabelValues(queryType, r.collection).Inc()
			log.Error().Err(*errp).Str("repository", r.collection).Str("query_type", queryType).Msg("Database query failed")
		}
		timer.ObserveDuration()
	}
}

func orEmpty(filter bson.M) bson.M {
	if filter == nil {
		return bson.M{}
	}
	return filter
}

func (r *mongoRepository[T]) Insert(ctx context.Context, doc T) (_ string, err error) {
	defer r.track("insert")(&err)

	if doc.GetID() == "" {
		return "", apperrors.Validation("%s document id is required", r.collection)
	}
	if _, err = r.coll().InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("Already exists")
		}
		return "", fmt.Errorf("failed to insert %s: %w", r.collection, err)
	}
	return doc.GetID(), nil
}

func (r *mongoRepository[T]) InsertMany(ctx context.Context, docs []T) (_ []string, err error) {
	defer r.track("insertMany")(&err)

	if len(docs) == 0 {
		return []string{}, nil
	}
	ids := make([]string, 0, len(docs))
	items := make([]interface{}, 0, len(docs))
	for _, doc := range docs {
		if doc.GetID() == "" {
			return nil, apperrors.Validation("%s document id is required", r.collection)
		}
		ids = append(ids, doc.GetID())
		items = append(items, doc)
	}

	if _, err = r.coll().InsertMany(ctx, items); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.Conflict("Already exists")
		}
		return nil, fmt.Errorf("failed to insert %s list: %w", r.collection, err)
	}
	return ids, nil
}

func (r *mongoRepository[T]) Create(ctx context.Context, doc T) (*T, error) {
	id, err := r.Insert(ctx, doc)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *mongoRepository[T]) CreateMany(ctx context.Context, docs []T) ([]T, error) {
	ids, err := r.InsertMany(ctx, docs)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []T{}, nil
	}
	return r.GetBy(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *mongoRepository[T]) GetByID(ctx context.Context, id string) (*T, error) {
	return r.getOne(ctx, "getByID", bson.M{"_id": id})
}

// GetOne returns nil without error when nothing matches.
func (r *mongoRepository[T]) GetOne(ctx context.Context, filter bson.M) (*T, error) {
	return r.getOne(ctx, "getOne", orEmpty(filter))
}

func (r *mongoRepository[T]) getOne(ctx context.Context, queryType string, filter bson.M) (_ *T, err error) {
	defer r.track(queryType)(&err)

	var doc T
	err = r.coll().FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find %s: %w", r.collection, err)
	}
	return &doc, nil
}

func (r *mongoRepository[T]) GetBy(ctx context.Context, filter bson.M) ([]T, error) {
	return r.find(ctx, "getBy", orEmpty(filter))
}

func (r *mongoRepository[T]) GetAllBy(ctx context.Context, filter bson.M) ([]T, error) {
	return r.find(ctx, "getAllBy", orEmpty(filter))
}

func (r *mongoRepository[T]) GetAll(ctx context.Context) ([]T, error) {
	return r.find(ctx, "getAll", bson.M{})
}

func (r *mongoRepository[T]) GetByAndSort(ctx context.Context, filter bson.M, sortField string) ([]T, error) {
	opts := options.Find()
	if sortField != "" {
		opts.SetSort(sortSpec(sortField))
	}
	return r.find(ctx, "getByAndSort", orEmpty(filter), opts)
}

// sortSpec orders ascending by field and breaks ties by _id, so skip/limit
// pages never overlap.
func sortSpec(field string) bson.D {
	if field == "" || field == "_id" {
		return bson.D{{Key: "_id", Value: 1}}
	}
	return bson.D{{Key: field, Value: 1}, {Key: "_id", Value: 1}}
}

func (r *mongoRepository[T]) find(ctx context.Context, queryType string, filter bson.M, opts ...*options.FindOptions) (_ []T, err error) {
	defer r.track(queryType)(&err)

	cursor, err := r.coll().Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("error fetching %s: %w", r.collection, err)
	}
	defer cursor.Close(ctx)

	docs := []T{}
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("error decoding %s: %w", r.collection, err)
	}
	return docs, nil
}

// GetByAndSortWithPagination pages are 1-indexed. Without a sort field
// documents are ordered by _id.
func (r *mongoRepository[T]) GetByAndSortWithPagination(ctx context.Context, filter bson.M, sortField string, page, perPage int) (_ []T, err error) {
	defer r.track("getByAndSortWithPagination")(&err)

	pipeline := utils.FormatPagesToFilter(perPage, page, []bson.M{
		{"$match": orEmpty(filter)},
		{"$sort": sortSpec(sortField)},
	})

	cursor, err := r.coll().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("error paginating %s: %w", r.collection, err)
	}
	defer cursor.Close(ctx)

	docs := []T{}
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("error decoding %s: %w", r.collection, err)
	}
	return docs, nil
}

func (r *mongoRepository[T]) Update(ctx context.Context, id string, fields bson.M) (_ *mongo.UpdateResult, err error) {
	defer r.track("update")(&err)

	set := bson.M{}
	for k, v := range fields {
		if k != "_id" {
			set[k] = v
		}
	}

	result, err := r.coll().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", r.collection, err)
	}
	return result, nil
}

// UpdateList writes each document's fields over the stored one in turn. It
// stops at the first failure; earlier updates stay applied.
func (r *mongoRepository[T]) UpdateList(ctx context.Context, docs []T) ([]*mongo.UpdateResult, error) {
	results := make([]*mongo.UpdateResult, 0, len(docs))
	for _, doc := range docs {
		fields, err := toDocument(doc)
		if err != nil {
			return results, err
		}
		result, err := r.Update(ctx, doc.GetID(), fields)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

func toDocument(v interface{}) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return doc, nil
}

func (r *mongoRepository[T]) Delete(ctx context.Context, id string) (_ *mongo.DeleteResult, err error) {
	defer r.track("delete")(&err)

	result, err := r.coll().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to delete %s: %w", r.collection, err)
	}
	return result, nil
}

func (r *mongoRepository[T]) DeleteMany(ctx context.Context, filter bson.M) (_ *mongo.DeleteResult, err error) {
	defer r.track("deleteMany")(&err)

	result, err := r.coll().DeleteMany(ctx, orEmpty(filter))
	if err != nil {
		return nil, fmt.Errorf("failed to delete %s list: %w", r.collection, err)
	}
	return result, nil
}

func (r *mongoRepository[T]) Exists(ctx context.Context, filter bson.M) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *mongoRepository[T]) Count(ctx context.Context, filter bson.M) (_ int64, err error) {
	defer r.track("count")(&err)

	count, err := r.coll().CountDocuments(ctx, orEmpty(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", r.collection, err)
	}
	return count, nil
}

func (r *mongoRepository[T]) EnsureUniqueIndex(ctx context.Context, field string) (err error) {
	defer r.track("createIndex")(&err)

	return utils.CreateUniqueIndex(ctx, r.coll(), bson.D{{Key: field, Value: 1}}, field)
}
