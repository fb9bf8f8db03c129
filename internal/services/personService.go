package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jsonzilla/template-go-mongodb/internal/apperrors"
	"github.com/jsonzilla/template-go-mongodb/internal/models"
	"github.com/jsonzilla/template-go-mongodb/internal/repositories"
	"github.com/jsonzilla/template-go-mongodb/internal/utils"
)

// ListOptions selects a sorted page of a listing. The zero value lists everything.
type ListOptions struct {
	Sort    string
	Page    int
	PerPage int
}

func (o ListOptions) Paginated() bool {
	return o.Sort != "" || o.Page > 0 || o.PerPage > 0
}

var personSortFields = map[string]bool{
	"_id":         true,
	"name":        true,
	"age":         true,
	"occupation":  true,
	"created_at":  true,
	"last_update": true,
}

// PersonService defines the interface for person-related business logic.
type PersonService interface {
	ListPersons(ctx context.Context, filter models.PersonFilter, opts ListOptions) ([]models.Person, error)
	GetPerson(ctx context.Context, id string) (*models.Person, error)
	CreatePerson(ctx context.Context, person models.Person) (*models.Person, error)
	CreatePersons(ctx context.Context, persons []models.Person) ([]models.Person, error)
	UpdatePerson(ctx context.Context, id string, patch models.PersonUpdate) (*models.Person, error)
	UpdatePersons(ctx context.Context, patches []models.PersonUpdate) ([]models.Person, error)
	DeletePerson(ctx context.Context, id string) error
}

type personServiceImpl struct {
	routable *Routable[models.Person, models.PersonUpdate]
	now      func() time.Time
}

func NewPersonService(repo repositories.Repository[models.Person]) PersonService {
	return &personServiceImpl{
		routable: NewRoutable[models.Person, models.PersonUpdate](repo, "person"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *personServiceImpl) ListPersons(ctx context.Context, filter models.PersonFilter, opts ListOptions) ([]models.Person, error) {
	dbFilter := utils.FormatToDatabaseFilter(filter.Nested())
	log.Debug().Interface("filter", dbFilter).Msg("Listing persons")

	if !opts.Paginated() {
		return s.routable.GetAllBy(ctx, dbFilter)
	}
	if opts.Sort != "" && !personSortFields[opts.Sort] {
		return nil, apperrors.Validation("invalid sort field: %s", opts.Sort)
	}
	return s.routable.Paginate(ctx, dbFilter, opts.Sort, opts.Page, opts.PerPage)
}

func (s *personServiceImpl) GetPerson(ctx context.Context, id string) (*models.Person, error) {
	return s.routable.GetByID(ctx, id)
}

func (s *personServiceImpl) CreatePerson(ctx context.Context, person models.Person) (*models.Person, error) {
	if err := utils.ValidateStruct(person); err != nil {
		return nil, err
	}
	person.Prepare(s.now())
	return s.routable.Create(ctx, person)
}

func (s *personServiceImpl) CreatePersons(ctx context.Context, persons []models.Person) ([]models.Person, error) {
	if len(persons) == 0 {
		return nil, apperrors.Validation("at least one person is required")
	}
	now := s.now()
	for i := range persons {
		if err := utils.ValidateStruct(persons[i]); err != nil {
			return nil, err
		}
		persons[i].Prepare(now)
	}
	return s.routable.CreateList(ctx, persons)
}

func (s *personServiceImpl) UpdatePerson(ctx context.Context, id string, patch models.PersonUpdate) (*models.Person, error) {
	if err := utils.ValidateStruct(patch); err != nil {
		return nil, err
	}
	patch.LastUpdate = s.now()
	return s.routable.UpdateOne(ctx, id, patch)
}

func (s *personServiceImpl) UpdatePersons(ctx context.Context, patches []models.PersonUpdate) ([]models.Person, error) {
	now := s.now()
	for i := range patches {
		if err := utils.ValidateStruct(patches[i]); err != nil {
			return nil, err
		}
		patches[i].LastUpdate = now
	}
	return s.routable.UpdateList(ctx, patches)
}

func (s *personServiceImpl) DeletePerson(ctx context.Context, id string) error {
	return s.routable.Delete(ctx, id)
}
