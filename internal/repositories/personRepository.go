package repositories

import (
	"github.com/jsonzilla/template-go-mongodb/internal/database"
	"github.com/jsonzilla/template-go-mongodb/internal/models"
)

const PersonCollection = "person"

func NewPersonRepository(db database.Service) Repository[models.Person] {
	return NewRepository[models.Person](db, PersonCollection)
}
