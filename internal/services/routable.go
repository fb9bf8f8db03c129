package services

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/jsonzilla/template-go-mongodb/internal/apperrors"
	"github.com/jsonzilla/template-go-mongodb/internal/metrics"
	"github.com/jsonzilla/template-go-mongodb/internal/repositories"
)

// Patch is a partial document. MergeDocument holds only the fields the
// client set to a non-null value.
type Patch interface {
	GetID() string
	MergeDocument() bson.M
}

// Routable implements the CRUD operations shared by every entity on top of
// a repository. name is used in error messages, e.g. "person 42 not found".
type Routable[T repositories.Document, P Patch] struct {
	repo repositories.Repository[T]
	name string
}

func NewRoutable[T repositories.Document, P Patch](repo repositories.Repository[T], name string) *Routable[T, P] {
	return &Routable[T, P]{repo: repo, name: name}
}

func (r *Routable[T, P]) Name() string {
	return r.name
}

func (r *Routable[T, P]) Create(ctx context.Context, input T) (*T, error) {
	created, err := r.repo.Create(ctx, input)
	if err != nil {
		return nil, err
	}
	metrics.DocumentsCreatedTotal.WithLabelValues(r.name).Inc()
	log.Info().Str(r.name+"_id", input.GetID()).Msgf("%s created", r.name)
	return created, nil
}

func (r *Routable[T, P]) CreateList(ctx context.Context, inputs []T) ([]T, error) {
	created, err := r.repo.CreateMany(ctx, inputs)
	if err != nil {
		return nil, err
	}
	metrics.DocumentsCreatedTotal.WithLabelValues(r.name).Add(float64(len(created)))
	log.Info().Int("count", len(created)).Msgf("%s list created", r.name)
	return created, nil
}

func (r *Routable[T, P]) GetAll(ctx context.Context) ([]T, error) {
	return r.repo.GetAll(ctx)
}

func (r *Routable[T, P]) GetAllBy(ctx context.Context, filter bson.M) ([]T, error) {
	return r.repo.GetAllBy(ctx, filter)
}

// Paginate returns one 1-indexed page of the documents matching filter.
func (r *Routable[T, P]) Paginate(ctx context.Context, filter bson.M, sortField string, page, perPage int) ([]T, error) {
	return r.repo.GetByAndSortWithPagination(ctx, filter, sortField, page, perPage)
}

func (r *Routable[T, P]) GetByID(ctx context.Context, id string) (*T, error) {
	found, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, apperrors.NotFound(r.name, id)
	}
	return found, nil
}

func (r *Routable[T, P]) Delete(ctx context.Context, id string) error {
	result, err := r.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if result.DeletedCount != 1 {
		return apperrors.NotFound(r.name, id)
	}
	metrics.DocumentsDeletedTotal.WithLabelValues(r.name).Inc()
	log.Info().Str(r.name+"_id", id).Msgf("%s deleted", r.name)
	return nil
}

func (r *Routable[T, P]) Exists(ctx context.Context, filter bson.M) (bool, error) {
	return r.repo.Exists(ctx, filter)
}

// updateElement reports whether exactly one document was modified. An empty
// document never reaches the store.
func (r *Routable[T, P]) updateElement(ctx context.Context, id string, doc bson.M) (bool, error) {
	if len(doc) == 0 {
		return false, nil
	}
	result, err := r.repo.Update(ctx, id, doc)
	if err != nil {
		return false, err
	}
	if result.ModifiedCount != 1 {
		return false, nil
	}
	metrics.DocumentsUpdatedTotal.WithLabelValues(r.name).Inc()
	return true, nil
}

// UpdateOne applies patch to the document id and returns the stored result.
// A patch without fields fails with an error matching both
// apperrors.ErrNotFound and apperrors.ErrNothingToUpdate.
func (r *Routable[T, P]) UpdateOne(ctx context.Context, id string, patch P) (*T, error) {
	doc := patch.MergeDocument()
	if len(doc) == 0 {
		return nil, apperrors.NothingToUpdate(r.name, id)
	}

	updated, err := r.updateElement(ctx, id, doc)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, apperrors.NotFound(r.name, id)
	}
	return r.GetByID(ctx, id)
}

// UpdateList applies each patch in order and returns the documents as stored
// afterwards. Unchanged documents are returned as they are; one missing
// document fails the whole call, but earlier updates are kept.
func (r *Routable[T, P]) UpdateList(ctx context.Context, patches []P) ([]T, error) {
	if len(patches) == 0 {
		return nil, apperrors.EntityNotFound(r.name)
	}

	updated := make([]T, 0, len(patches))
	for _, patch := range patches {
		id := patch.GetID()
		if _, err := r.updateElement(ctx, id, patch.MergeDocument()); err != nil {
			return nil, err
		}
		current, err := r.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if current != nil {
			updated = append(updated, *current)
		}
	}

	if len(updated) != len(patches) {
		log.Warn().Int("requested", len(patches)).Int("found", len(updated)).Msgf("%s list partially updated", r.name)
		return nil, apperrors.PartialFailure(r.name)
	}
	return updated, nil
}
