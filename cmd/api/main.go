package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/r1chc/Cookie-Spots-sub000/internal/adapters/cache"
	"github.com/r1chc/Cookie-Spots-sub000/internal/adapters/database"
	"github.com/r1chc/Cookie-Spots-sub000/internal/adapters/providers/places"
	"github.com/r1chc/Cookie-Spots-sub000/internal/adapters/search"
	"github.com/r1chc/Cookie-Spots-sub000/internal/api/handlers"
	"github.com/r1chc/Cookie-Spots-sub000/internal/api/routes"
	"github.com/r1chc/Cookie-Spots-sub000/internal/application/services"
	"github.com/r1chc/Cookie-Spots-sub000/internal/domain/providers"
	"github.com/r1chc/Cookie-Spots-sub000/internal/domain/repositories"
	"github.com/r1chc/Cookie-Spots-sub000/internal/infrastructure/clients/postgres"
	"github.com/r1chc/Cookie-Spots-sub000/internal/infrastructure/clients/redis"
	"github.com/r1chc/Cookie-Spots-sub000/internal/infrastructure/clients/typesense"
	"github.com/r1chc/Cookie-Spots-sub000/internal/infrastructure/observability"
	"github.com/r1chc/Cookie-Spots-sub000/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, os.Getenv("APP_ENV"))
	logger := observability.GetLogger()

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					logger.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			logger.Info().Msg("OpenTelemetry initialized")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	logger.Info().Msg("PostgreSQL client initialized")

	// Freshness cache: Redis when available, in-process map otherwise
	var cacheProvider providers.CacheProvider
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		logger.Warn().Err(err).Msg("Redis unavailable, using in-memory cache")
		cacheProvider = cache.NewMemoryAdapter()
	} else {
		defer redisClient.Close()
		cacheProvider = cache.NewRedisAdapter(redisClient)
		logger.Info().Msg("Redis client initialized")
	}

	// Typesense is optional; stored-venue search falls back to the database
	var searchRepo repositories.VenueSearchRepository
	typesenseClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		logger.Warn().Err(err).Msg("Typesense unavailable, venue search falls back to database")
	} else {
		adapter := search.NewTypesenseAdapter(typesenseClient)
		if err := adapter.InitSchema(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("failed to init Typesense schema")
		}
		searchRepo = adapter
		logger.Info().Msg("Typesense client initialized")
	}

	// Upstream place-search provider
	var placeProvider providers.PlaceSearchProvider
	switch cfg.Places.Provider {
	case "google":
		if cfg.Places.APIKey == "" {
			logger.Warn().Msg("PLACES_API_KEY is not set, using mock place provider")
			placeProvider = places.NewMockPlacesProvider()
		} else {
			placeProvider = places.NewGooglePlacesProvider(cfg.Places.APIKey)
		}
	default:
		placeProvider = places.NewMockPlacesProvider()
	}

	// Initialize adapters
	venueAdapter := database.NewVenueAdapter(pgClient)
	analyticsAdapter := database.NewSearchAnalyticsAdapter(pgClient)

	// Initialize services
	analyticsService := services.NewSearchAnalyticsService(analyticsAdapter)
	venueService := services.NewVenueService(venueAdapter, searchRepo)
	searchService := services.NewSearchService(
		cacheProvider,
		placeProvider,
		venueAdapter,
		analyticsService,
		cfg.Search,
		metrics,
	)

	// Initialize handlers
	searchHandler := handlers.NewSearchHandler(searchService)
	venueHandler := handlers.NewVenueHandler(venueService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)

	// Set up router
	router := routes.NewRouter(searchHandler, venueHandler, analyticsHandler, metrics)
	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("server shutting down")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("error during server shutdown")
	}

	logger.Info().Msg("server stopped")
}
