package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/Josh363/small-business-app/internal/adapters/cache"
	"github.com/Josh363/small-business-app/internal/adapters/database"
	"github.com/Josh363/small-business-app/internal/adapters/events"
	"github.com/Josh363/small-business-app/internal/adapters/mail"
	"github.com/Josh363/small-business-app/internal/adapters/providers/geolocation"
	"github.com/Josh363/small-business-app/internal/adapters/search"
	"github.com/Josh363/small-business-app/internal/adapters/storage"
	"github.com/Josh363/small-business-app/internal/api/handlers"
	"github.com/Josh363/small-business-app/internal/api/middleware"
	"github.com/Josh363/small-business-app/internal/api/routes"
	"github.com/Josh363/small-business-app/internal/application/jobs"
	"github.com/Josh363/small-business-app/internal/application/loaders"
	"github.com/Josh363/small-business-app/internal/application/services"
	"github.com/Josh363/small-business-app/internal/domain/providers"
	"github.com/Josh363/small-business-app/internal/domain/repositories"
	"github.com/Josh363/small-business-app/internal/infrastructure/clients/postgres"
	"github.com/Josh363/small-business-app/internal/infrastructure/clients/redis"
	"github.com/Josh363/small-business-app/internal/infrastructure/clients/typesense"
	"github.com/Josh363/small-business-app/internal/infrastructure/observability"
	"github.com/Josh363/small-business-app/pkg/config"
)

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			observability.AttachOTelLogs()
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	if err := pgClient.MigrateUp(); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}

	healthChecks := map[string]handlers.Pinger{"postgres": pgClient}

	// Redis backs the response cache and the event bus; the API runs without both
	var cacheProvider providers.CacheProvider
	var eventBus providers.EventBus
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable; response cache and events disabled")
	} else {
		defer redisClient.Close()
		cacheProvider = cache.NewRedisAdapter(redisClient)
		eventBus = events.NewRedisEventBus(redisClient)
		healthChecks["redis"] = redisClient
	}

	var searchAdapter *search.TypesenseAdapter
	typesenseClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		log.Warn().Err(err).Msg("Typesense unavailable; full-text search disabled")
	} else {
		if err := typesenseClient.InitSchema(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to init Typesense schema")
		}
		searchAdapter = search.NewTypesenseAdapter(typesenseClient)
	}

	var geocoder providers.GeolocationProvider
	switch {
	case cfg.Geolocation.Provider == "google" && cfg.Geolocation.APIKey != "":
		geocoder = geolocation.NewGoogleGeolocationProvider(cfg.Geolocation.APIKey, cacheProvider)
	case cfg.Geolocation.Provider == "google":
		log.Warn().Msg("GEOCODER_API_KEY is not set; using mock geocoder")
		geocoder = geolocation.NewMockGeolocationProvider()
	default:
		geocoder = geolocation.NewMockGeolocationProvider()
	}

	fileStorage, err := storage.New(&cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize file storage")
	}

	// Repositories
	userRepo := database.NewUserAdapter(pgClient)
	var businessRepo repositories.BusinessRepository = database.NewBusinessAdapter(pgClient)
	if cacheProvider != nil {
		businessRepo = database.NewCachedBusinessAdapter(businessRepo, cacheProvider)
	}
	serviceRepo := database.NewServiceAdapter(pgClient)
	reviewRepo := database.NewReviewAdapter(pgClient)

	var searchRepo repositories.BusinessSearchRepository
	if searchAdapter != nil {
		searchRepo = searchAdapter
	}

	// Services
	aggregates := services.NewAggregateService(businessRepo, serviceRepo, reviewRepo, eventBus, metrics)
	businessService := services.NewBusinessService(businessRepo, serviceRepo, searchRepo, geocoder, fileStorage, eventBus, cfg.Storage.MaxFileUpload)
	serviceCatalog := services.NewServiceCatalogService(serviceRepo, businessRepo, aggregates)
	reviewService := services.NewReviewService(reviewRepo, businessRepo, serviceRepo, aggregates)
	authService := services.NewAuthService(userRepo, mail.NewSMTPMailer(&cfg.Mail), cfg.Auth)
	userService := services.NewUserService(userRepo)

	var cacheInvalidation *services.CacheInvalidationService
	if cacheProvider != nil && eventBus != nil {
		cacheInvalidation = services.NewCacheInvalidationService(cacheProvider, eventBus)
		if err := cacheInvalidation.Start(); err != nil {
			log.Warn().Err(err).Msg("Failed to start cache invalidation")
			cacheInvalidation = nil
		}
	}

	var searchSync *services.SearchSyncService
	if searchRepo != nil && eventBus != nil {
		searchSync = services.NewSearchSyncService(businessRepo, searchRepo, eventBus)
		if err := searchSync.Start(); err != nil {
			log.Warn().Err(err).Msg("Failed to start search index sync")
			searchSync = nil
		}
	}

	scheduler := jobs.NewScheduler(10 * time.Minute)
	err = scheduler.Add("reconcile-aggregates", cfg.Jobs.ReconcileSchedule, func(ctx context.Context) error {
		n, err := aggregates.ReconcileAll(ctx)
		log.Info().Int("businesses", n).Msg("Aggregates reconciled")
		return err
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid reconcile schedule")
	}
	scheduler.Start()

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.Max, cfg.RateLimit.Window)
	stopCleanup := make(chan struct{})
	rateLimiter.StartCleanup(time.Minute, stopCleanup)

	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider, metrics)
	}

	var uploadDir string
	if cfg.Storage.Driver == "local" {
		uploadDir = cfg.Storage.UploadDir
	}

	router := routes.NewRouter(routes.Options{
		BusinessHandler:    handlers.NewBusinessHandler(businessService, cfg.Storage.MaxFileUpload),
		ServiceHandler:     handlers.NewServiceHandler(serviceCatalog),
		ReviewHandler:      handlers.NewReviewHandler(reviewService),
		AuthHandler:        handlers.NewAuthHandler(authService, handlers.CookieOptions{ExpireDays: cfg.Auth.CookieExpireDays, Secure: cfg.Server.IsProduction()}),
		UserHandler:        handlers.NewUserHandler(userService),
		GeolocationHandler: handlers.NewGeolocationHandler(geocoder),
		HealthHandler:      handlers.NewHealthHandler(healthChecks),

		Authenticator:   authService,
		RateLimiter:     rateLimiter,
		CacheMiddleware: cacheMiddleware,
		Loaders:         loaders.Middleware(businessRepo, serviceRepo),
		Metrics:         metrics,

		AllowedOrigins: cfg.Server.AllowedOrigins,
		MaxBodyBytes:   cfg.Storage.MaxFileUpload + 1<<20,
		UploadDir:      uploadDir,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.SetupRoutes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Str("env", cfg.Server.Env).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}

	scheduler.Stop(shutdownCtx)
	close(stopCleanup)

	if cacheInvalidation != nil {
		cacheInvalidation.Stop()
	}
	if searchSync != nil {
		searchSync.Stop()
	}
	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing event bus")
		}
	}

	log.Info().Msg("Server stopped")
}
