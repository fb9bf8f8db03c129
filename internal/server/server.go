package server

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jsonzilla/template-go-mongodb/internal/config"
	"github.com/jsonzilla/template-go-mongodb/internal/database"
	"github.com/jsonzilla/template-go-mongodb/internal/repositories"
	"github.com/jsonzilla/template-go-mongodb/internal/services"
)

type Server struct {
	cfg             *config.Config
	httpServer      *http.Server
	db              database.Service
	userRepo        repositories.UserRepository
	personService   services.PersonService
	userService     services.UserService
	authService     services.AuthService
	identityService services.IdentityService
}

func NewServer(cfg *config.Config, db database.Service) (*Server, error) {
	userRepo := repositories.NewUserRepository(db)

	s := &Server{
		cfg:             cfg,
		db:              db,
		userRepo:        userRepo,
		personService:   services.NewPersonService(repositories.NewPersonRepository(db)),
		userService:     services.NewUserService(userRepo, db),
		authService:     services.NewAuthService(userRepo),
		identityService: services.NewIdentityService(repositories.NewUserDataRepository(db), repositories.NewDefaultDataRepository(db)),
	}

	handler, err := s.RegisterRoutes()
	if err != nil {
		return nil, err
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s, nil
}

// Bootstrap prepares the store before the first request: unique user
// indexes and the configured admin account.
func (s *Server) Bootstrap(ctx context.Context) error {
	if err := s.userRepo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}
	if err := s.userService.EnsureAdmin(ctx, s.cfg); err != nil {
		return fmt.Errorf("failed to create bootstrap admin: %w", err)
	}
	return nil
}

func (s *Server) Start() error {
	log.Info().Int("port", s.cfg.Port).Str("project", s.cfg.ProjectName).Str("version", s.cfg.ProjectVersion).Msg("Starting server")
	return s.httpServer.ListenAndServe()
}

func (s *Server) GracefulShutdown(done chan bool) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Info().Msg("Shutting down gracefully, press Ctrl+C again to force")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown with error")
	}
	if err := s.db.Close(ctx); err != nil {
		log.Error().Err(err).Msg("Database forced to close with error")
	}

	log.Info().Msg("Server exiting")
	done <- true
}
