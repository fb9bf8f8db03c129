package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jsonzilla/template-go-mongodb/internal/config"
)

// Service owns the MongoDB connection for the whole process. It is built
// once at startup and handed to every repository.
type Service interface {
	Health() map[string]string
	Client() *mongo.Client
	Database() *mongo.Database
	Collection(name string) *mongo.Collection
	// WithTransaction runs fn with a context bound to a session transaction.
	// Repository calls made with that context join the transaction. When
	// transactions are disabled fn runs with the given context unchanged.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	Close(ctx context.Context) error
}

type service struct {
	db           *mongo.Client
	databaseName string
	transactions bool
}

func New(ctx context.Context, cfg *config.Config) (Service, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURL))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log.Info().Str("database", cfg.DefaultDatabase).Bool("transactions", cfg.MongoTransactions).Msg("Connected to MongoDB")
	return &service{
		db:           client,
		databaseName: cfg.DefaultDatabase,
		transactions: cfg.MongoTransactions,
	}, nil
}

func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	err := s.db.Ping(ctx, nil)
	if err != nil {
		log.Error().Err(err).Msg("Database health check failed")
		return map[string]string{
			"message": "db down",
			"error":   err.Error(),
		}
	}

	return map[string]string{
		"message": "It's healthy",
	}
}

func (s *service) Client() *mongo.Client {
	return s.db
}

func (s *service) Database() *mongo.Database {
	return s.db.Database(s.databaseName)
}

func (s *service) Collection(name string) *mongo.Collection {
	return s.Database().Collection(name)
}

func (s *service) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !s.transactions {
		return fn(ctx)
	}

	session, err := s.db.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func (s *service) Close(ctx context.Context) error {
	if err := s.db.Disconnect(ctx); err != nil {
		log.Error().Err(err).Msg("MongoDB disconnection error")
		return err
	}
	log.Info().Msg("MongoDB disconnected")
	return nil
}
