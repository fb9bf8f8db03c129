package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jsonzilla/template-go-mongodb/internal/apperrors"
	"github.com/jsonzilla/template-go-mongodb/internal/config"
	"github.com/jsonzilla/template-go-mongodb/internal/metrics"
	"github.com/jsonzilla/template-go-mongodb/internal/models"
	"github.com/jsonzilla/template-go-mongodb/internal/repositories"
	"github.com/jsonzilla/template-go-mongodb/internal/utils"
)

// Transactor runs fn inside a transaction when the store supports one.
// database.Service implements it.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserService defines the interface for user-related business logic.
// Returned users still carry the password hash; callers strip it with Show.
type UserService interface {
	CreateUser(ctx context.Context, input models.CreateUser) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	UpdateUser(ctx context.Context, id string, patch models.UserUpdate) (*models.User, error)
	DeleteUser(ctx context.Context, id string) error
	EnsureAdmin(ctx context.Context, cfg *config.Config) error
	GetTotalUsers(ctx context.Context) (int64, error)
}

// userService implements UserService using a UserRepository.
type userService struct {
	userRepo repositories.UserRepository
	routable *Routable[models.User, models.UserUpdate]
	tx       Transactor
	now      func() time.Time
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repositories.UserRepository, tx Transactor) UserService {
	return &userService{
		userRepo: userRepo,
		routable: NewRoutable[models.User, models.UserUpdate](userRepo, "user"),
		tx:       tx,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *userService) GetTotalUsers(ctx context.Context) (int64, error) {
	return s.userRepo.Count(ctx, nil)
}

func (s *userService) refreshTotalUsers(ctx context.Context) {
	count, err := s.GetTotalUsers(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Error updating total users gauge")
		return
	}
	metrics.TotalUsers.Set(float64(count))
}

func (s *userService) CreateUser(ctx context.Context, input models.CreateUser) (*models.User, error) {
	log.Debug().Str("username", input.Username).Msg("Attempting to create user")
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		log.Error().Err(err).Msg("Failed to hash password during user creation")
		return nil, err
	}

	user := models.User{
		ID:                 input.ID,
		Username:           input.Username,
		Password:           hashedPassword,
		Email:              input.Email,
		LastUpdateDatetime: s.now(),
	}
	if user.ID == "" {
		user.ID = primitive.NewObjectID().Hex()
	}

	var created *models.User
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		exists, err := s.userRepo.ExistsByUsernameOrEmail(ctx, user.Username, user.Email)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.Conflict("Already exists")
		}
		created, err = s.routable.Create(ctx, user)
		return err
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			log.Warn().Str("username", user.Username).Str("email", user.Email).Msg("User already exists")
		}
		return nil, err
	}

	metrics.NewUsersTotal.Inc()
	s.refreshTotalUsers(ctx)
	return created, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.routable.GetAll(ctx)
}

func (s *userService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.routable.GetByID(ctx, id)
}

// UpdateUser replaces the password. A patch without one is a conflict; the
// update time is always set by the server.
func (s *userService) UpdateUser(ctx context.Context, id string, patch models.UserUpdate) (*models.User, error) {
	if err := utils.ValidateStruct(patch); err != nil {
		return nil, err
	}
	if !patch.Password.Present() {
		return nil, apperrors.Conflict("Invalid user")
	}

	hashedPassword, err := utils.HashPassword(patch.Password.Value)
	if err != nil {
		log.Error().Err(err).Str("user_id", id).Msg("Failed to hash password during user update")
		return nil, err
	}
	patch.Password = models.Some(hashedPassword)
	patch.LastUpdateDatetime = models.Some(s.now())

	return s.routable.UpdateOne(ctx, id, patch)
}

func (s *userService) DeleteUser(ctx context.Context, id string) error {
	if err := s.routable.Delete(ctx, id); err != nil {
		return err
	}
	s.refreshTotalUsers(ctx)
	return nil
}

// EnsureAdmin creates the configured bootstrap admin unless a user with that
// name already exists.
func (s *userService) EnsureAdmin(ctx context.Context, cfg *config.Config) error {
	defer s.refreshTotalUsers(ctx)
	if !cfg.HasBootstrapAdmin() {
		return nil
	}

	existing, err := s.userRepo.FindByUsername(ctx, cfg.AdminUsername)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	_, err = s.CreateUser(ctx, models.CreateUser{
		Username: cfg.AdminUsername,
		Password: cfg.AdminPassword,
		Email:    cfg.AdminEmail,
	})
	if errors.Is(err, apperrors.ErrConflict) {
		log.Warn().Str("username", cfg.AdminUsername).Msg("Bootstrap admin email already taken, skipping")
		return nil
	}
	if err == nil {
		log.Info().Str("username", cfg.AdminUsername).Msg("Bootstrap admin created")
	}
	return err
}
