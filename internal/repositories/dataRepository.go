package repositories

import (
	"github.com/jsonzilla/template-go-mongodb/internal/database"
	"github.com/jsonzilla/template-go-mongodb/internal/models"
)

const (
	UserDataCollection    = "user_data"
	DefaultDataCollection = "default_data"
)

// NewUserDataRepository stores per-client application data.
func NewUserDataRepository(db database.Service) Repository[models.ApplicationData] {
	return NewRepository[models.ApplicationData](db, UserDataCollection)
}

// NewDefaultDataRepository stores the application data every client starts from.
func NewDefaultDataRepository(db database.Service) Repository[models.ApplicationData] {
	return NewRepository[models.ApplicationData](db, DefaultDataCollection)
}
