package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/Josh363/small-business-app/internal/adapters/database"
	"github.com/Josh363/small-business-app/internal/application/services"
	"github.com/Josh363/small-business-app/internal/infrastructure/clients/postgres"
	"github.com/Josh363/small-business-app/internal/infrastructure/observability"
	"github.com/Josh363/small-business-app/pkg/config"
)

func main() {
	importData := flag.Bool("i", false, "import the embedded seed data")
	destroyData := flag.Bool("d", false, "delete all businesses, services, reviews and users")
	flag.Parse()

	_ = godotenv.Load()
	observability.InitLogger("small-business-seeder", os.Getenv("APP_ENV"))

	if *importData == *destroyData {
		fmt.Fprintln(os.Stderr, "usage: seeder -i | -d")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *importData); err != nil {
		log.Error().Err(err).Msg("Seeder failed")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, importData bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		return err
	}
	defer pgClient.Close()

	if err := pgClient.MigrateUp(); err != nil {
		return err
	}

	if !importData {
		return destroy(ctx, pgClient)
	}
	return seed(ctx, pgClient)
}

func seed(ctx context.Context, pgClient *postgres.Client) error {
	data, err := loadSeedData()
	if err != nil {
		return err
	}

	userRepo := database.NewUserAdapter(pgClient)
	businessRepo := database.NewBusinessAdapter(pgClient)
	serviceRepo := database.NewServiceAdapter(pgClient)
	reviewRepo := database.NewReviewAdapter(pgClient)

	now := time.Now().UTC()

	for _, u := range data.Users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", u.Email, err)
		}
		user := u.toEntity(string(hash), now)
		if err := userRepo.Create(ctx, user); err != nil {
			return fmt.Errorf("user %s: %w", u.Email, err)
		}
	}

	for _, b := range data.Businesses {
		if b.Photo == "" {
			b.Photo = "no-photo.jpg"
		}
		b.CreatedAt, b.UpdatedAt = now, now
		if err := businessRepo.Create(ctx, b); err != nil {
			return fmt.Errorf("business %s: %w", b.Name, err)
		}
	}

	for _, s := range data.Services {
		s.CreatedAt = now
		if err := serviceRepo.Create(ctx, s); err != nil {
			return fmt.Errorf("service %s: %w", s.Name, err)
		}
	}

	for _, r := range data.Reviews {
		r.CreatedAt = now
		if err := reviewRepo.Create(ctx, r); err != nil {
			return fmt.Errorf("review %s: %w", r.Title, err)
		}
	}

	// seed rows bypass the services, so the statistics are computed once at the end
	aggregates := services.NewAggregateService(businessRepo, serviceRepo, reviewRepo, nil, nil)
	if _, err := aggregates.ReconcileAll(ctx); err != nil {
		return err
	}

	log.Info().
		Int("users", len(data.Users)).
		Int("businesses", len(data.Businesses)).
		Int("services", len(data.Services)).
		Int("reviews", len(data.Reviews)).
		Msg("Data imported")
	return nil
}

func destroy(ctx context.Context, pgClient *postgres.Client) error {
	q, _, err := goqu.Dialect("postgres").
		Truncate("reviews", "services", "businesses", "users").
		Cascade().
		ToSQL()
	if err != nil {
		return fmt.Errorf("build truncate: %w", err)
	}
	if _, err := pgClient.DBX().ExecContext(ctx, q); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}
	log.Info().Msg("Data destroyed")
	return nil
}
