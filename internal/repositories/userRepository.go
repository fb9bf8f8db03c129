package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/jsonzilla/template-go-mongodb/internal/database"
	"github.com/jsonzilla/template-go-mongodb/internal/models"
)

const UserCollection = "user"

type UserRepository interface {
	Repository[models.User]
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	EnsureIndexes(ctx context.Context) error
}

type userRepository struct {
	Repository[models.User]
}

func NewUserRepository(db database.Service) UserRepository {
	return NewUserRepositoryFrom(NewRepository[models.User](db, UserCollection))
}

// NewUserRepositoryFrom adds the user queries on top of any user store.
func NewUserRepositoryFrom(base Repository[models.User]) UserRepository {
	return &userRepository{Repository: base}
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.GetOne(ctx, bson.M{"username": username})
}

func (r *userRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	return r.Exists(ctx, bson.M{"$or": []bson.M{
		{"username": username},
		{"email": email},
	}})
}

func (r *userRepository) EnsureIndexes(ctx context.Context) error {
	for _, field := range []string{"username", "email"} {
		if err := r.EnsureUniqueIndex(ctx, field); err != nil {
			return err
		}
	}
	return nil
}
