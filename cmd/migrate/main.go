package main

import (
	"flag"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/Josh363/small-business-app/internal/infrastructure/clients/postgres"
	"github.com/Josh363/small-business-app/internal/infrastructure/observability"
	"github.com/Josh363/small-business-app/pkg/config"
)

func main() {
	down := flag.Int("down", 0, "roll back this many migrations instead of migrating up")
	flag.Parse()

	_ = godotenv.Load()
	observability.InitLogger("small-business-migrate", os.Getenv("APP_ENV"))

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pgClient.Close()

	if *down > 0 {
		if err := pgClient.MigrateDown(*down); err != nil {
			log.Fatal().Err(err).Msg("Rollback failed")
		}
		log.Info().Int("steps", *down).Msg("Rolled back migrations")
		return
	}

	if err := pgClient.MigrateUp(); err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}
}
