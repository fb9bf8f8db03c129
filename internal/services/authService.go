package services

import (
	"context"
	"crypto/subtle"

	"github.com/rs/zerolog/log"

	"github.com/jsonzilla/template-go-mongodb/internal/apperrors"
	"github.com/jsonzilla/template-go-mongodb/internal/metrics"
	"github.com/jsonzilla/template-go-mongodb/internal/models"
	"github.com/jsonzilla/template-go-mongodb/internal/repositories"
	"github.com/jsonzilla/template-go-mongodb/internal/utils"
)

// AuthService checks HTTP Basic credentials against stored users.
type AuthService interface {
	ValidateAuth(ctx context.Context, username, password string) (*models.User, error)
}

type authService struct {
	userRepo repositories.UserRepository
}

func NewAuthService(userRepo repositories.UserRepository) AuthService {
	return &authService{userRepo: userRepo}
}

// ValidateAuth returns the same Unauthorized error for an unknown user and a
// wrong password.
func (s *authService) ValidateAuth(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if user == nil {
		utils.BurnPasswordCheck(password)
	} else {
		correctUsername := subtle.ConstantTimeCompare([]byte(username), []byte(user.Username)) == 1
		correctPassword := utils.VerifyPassword(password, user.Password)
		if correctUsername && correctPassword {
			metrics.AuthAttemptsTotal.WithLabelValues("success").Inc()
			return user, nil
		}
	}

	metrics.AuthAttemptsTotal.WithLabelValues("failed").Inc()
	log.Warn().Str("username", username).Msg("Basic auth failed")
	return nil, apperrors.Unauthorized("Incorrect username or password")
}
