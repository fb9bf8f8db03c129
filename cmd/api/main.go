package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jsonzilla/template-go-mongodb/internal/config"
	"github.com/jsonzilla/template-go-mongodb/internal/database"
	"github.com/jsonzilla/template-go-mongodb/internal/server"
)

func main() {
	// Configure zerolog for better output
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	zerolog.SetGlobalLevel(cfg.ZerologLevel())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not connect to MongoDB")
	}

	s, err := server.NewServer(cfg, db)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not build server")
	}
	if err := s.Bootstrap(ctx); err != nil {
		log.Fatal().Err(err).Msg("Could not prepare database")
	}

	done := make(chan bool, 1)

	go s.GracefulShutdown(done)

	err = s.Start()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("HTTP server error")
	}

	<-done
	log.Info().Msg("Graceful shutdown complete.")
}
