// Command reconcile recomputes averageRating and averageCost for every
// business once. The API runs the same job on RECONCILE_SCHEDULE.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/Josh363/small-business-app/internal/adapters/database"
	"github.com/Josh363/small-business-app/internal/application/services"
	"github.com/Josh363/small-business-app/internal/infrastructure/clients/postgres"
	"github.com/Josh363/small-business-app/internal/infrastructure/observability"
	"github.com/Josh363/small-business-app/pkg/config"
)

func main() {
	_ = godotenv.Load()
	observability.InitLogger("small-business-reconcile", os.Getenv("APP_ENV"))

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Error().Err(err).Msg("Reconcile finished with errors")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		return err
	}
	defer pgClient.Close()

	aggregates := services.NewAggregateService(
		database.NewBusinessAdapter(pgClient),
		database.NewServiceAdapter(pgClient),
		database.NewReviewAdapter(pgClient),
		nil,
		nil,
	)

	n, err := aggregates.ReconcileAll(ctx)
	log.Info().Int("reconciled", n).Msg("Reconcile finished")
	return err
}
