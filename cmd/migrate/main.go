package main

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/segyhp/school-portal/internal/config"
	"github.com/segyhp/school-portal/internal/repository"
	"github.com/segyhp/school-portal/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Init("school-portal-migrate", cfg.Logging.Level, cfg.Logging.Format)

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := repository.Migrate(ctx, db); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Migration failed")
	}
	logger.Logger.Info().Msg("Schema is up to date")
}
