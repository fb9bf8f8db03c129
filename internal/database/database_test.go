package database

import (
	"context"
	"errors"
	"flag"
	"os"
	"testing"

	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/jsonzilla/template-go-mongodb/internal/config"
)

var mongoURL string

func mustStartMongoContainer() (func(context.Context) error, error) {
	dbContainer, err := mongodb.Run(context.Background(), "mongo:7")
	if err != nil {
		return nil, err
	}

	uri, err := dbContainer.ConnectionString(context.Background())
	if err != nil {
		return dbContainer.Terminate, err
	}

	mongoURL = uri
	return dbContainer.Terminate, nil
}

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	teardown, err := mustStartMongoContainer()
	if err != nil {
		log.Fatal().Err(err).Msg("Could not start mongodb container")
	}

	code := m.Run()

	if teardown != nil {
		if err := teardown(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("Could not teardown mongodb container")
		}
	}
	os.Exit(code)
}

func newTestService(t *testing.T) Service {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping test in short mode.")
	}

	srv, err := New(context.Background(), &config.Config{MongoURL: mongoURL, DefaultDatabase: "database_test"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close(context.Background()) })
	return srv
}

func TestNew(t *testing.T) {
	srv := newTestService(t)
	assert.NotNil(t, srv.Client())
	assert.Equal(t, "database_test", srv.Database().Name())
	assert.Equal(t, "person", srv.Collection("person").Name())
}

func TestHealth(t *testing.T) {
	srv := newTestService(t)

	stats := srv.Health()

	if stats["message"] != "It's healthy" {
		t.Fatalf("expected message to be 'It's healthy', got %s", stats["message"])
	}
}

func TestWithTransactionDisabledRunsInline(t *testing.T) {
	srv := newTestService(t)
	ctx := context.Background()

	called := false
	err := srv.WithTransaction(ctx, func(txCtx context.Context) error {
		called = true
		_, err := srv.Collection("tx").InsertOne(txCtx, bson.M{"_id": "a"})
		return err
	})
	require.NoError(t, err)
	assert.True(t, called)

	count, err := srv.Collection("tx").CountDocuments(ctx, bson.M{"_id": "a"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestWithTransactionPropagatesError(t *testing.T) {
	srv := newTestService(t)
	boom := errors.New("boom")

	err := srv.WithTransaction(context.Background(), func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestNewFailsOnUnreachableServer(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test in short mode.")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(ctx, &config.Config{MongoURL: "mongodb://127.0.0.1:1/", DefaultDatabase: "x"})
	assert.Error(t, err)
}
