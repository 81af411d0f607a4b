package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/krili-app/krili/internal/adapters/http"
	natsadapter "github.com/krili-app/krili/internal/adapters/nats"
	"github.com/krili-app/krili/internal/adapters/ors"
	"github.com/krili-app/krili/internal/adapters/postgres"
	"github.com/krili-app/krili/internal/adapters/valkey"
	"github.com/krili-app/krili/internal/core/ports"
	"github.com/krili-app/krili/internal/core/usecases"
	"github.com/krili-app/krili/internal/pkg/config"
	"github.com/krili-app/krili/internal/pkg/logging"
	"github.com/krili-app/krili/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("krili-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logging.FromEnv("krili-api")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	go db.ReportPoolMetrics(ctx, 15*time.Second)

	// Cache
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer cache.Close()
	}
	// Avoid a typed-nil CacheService when the cache is down.
	var cacheSvc ports.CacheService
	if cache != nil {
		cacheSvc = cache
	}

	// NATS
	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer publisher.Close()
	}
	// Avoid a typed-nil EventPublisher when the broker is down.
	var events ports.EventPublisher
	if publisher != nil {
		events = publisher
	}

	// Raw NATS connection for the WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	}

	// Routing provider; nil when no API key is configured, which makes
	// every enriched route fall back to a straight line.
	var provider ports.RoutingProvider
	if client := ors.New(cfg.Routing.APIKey, cfg.Routing.BaseURL, time.Duration(cfg.Routing.TimeoutSeconds)*time.Second); client != nil {
		provider = client
	} else {
		slog.Info("no routing API key configured, road routing disabled")
	}

	// Repos
	userRepo := postgres.NewUserRepo(db)
	universityRepo := postgres.NewUniversityRepo(db)
	listingRepo := postgres.NewListingRepo(db)
	reservationRepo := postgres.NewReservationRepo(db)
	reportRepo := postgres.NewReportRepo(db)
	notificationRepo := postgres.NewNotificationRepo(db)
	statsRepo := postgres.NewStatsRepo(db)

	// Use cases
	proximitySvc := usecases.NewProximityService(universityRepo, cfg.Geo.DefaultRadiusKm)
	routeSvc := usecases.NewRouteService(provider, cfg.Geo.RegionBounds(), cfg.Geo.BatchSize,
		time.Duration(cfg.Geo.BatchDelayMs)*time.Millisecond)
	authSvc := usecases.NewAuthService(userRepo, cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)
	listingSvc := usecases.NewListingService(listingRepo, cacheSvc, events, proximitySvc)
	reservationSvc := usecases.NewReservationService(reservationRepo, listingRepo, events)
	universitySvc := usecases.NewUniversityService(universityRepo, cacheSvc)
	notificationSvc := usecases.NewNotificationService(notificationRepo)
	moderationSvc := usecases.NewModerationService(listingRepo, reportRepo, userRepo, statsRepo, events)

	deps := &http.Dependencies{
		Auth:          authSvc,
		Listings:      listingSvc,
		Reservations:  reservationSvc,
		Universities:  universitySvc,
		Proximity:     proximitySvc,
		Routes:        routeSvc,
		Notifications: notificationSvc,
		Moderation:    moderationSvc,
		NATS:          natsConn,
		DB:            db,
		Cache:         cache,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Krili API",
	})
	app.Use(recover.New())

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
