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
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/nats-io/nats.go"
	"go.temporal.io/sdk/client"

	"github.com/donamatch/donamatch/internal/adapters/http"
	natsadapter "github.com/donamatch/donamatch/internal/adapters/nats"
	"github.com/donamatch/donamatch/internal/adapters/nominatim"
	"github.com/donamatch/donamatch/internal/adapters/postgres"
	"github.com/donamatch/donamatch/internal/adapters/valkey"
	"github.com/donamatch/donamatch/internal/core/ports"
	"github.com/donamatch/donamatch/internal/core/usecases"
	"github.com/donamatch/donamatch/internal/pkg/config"
	"github.com/donamatch/donamatch/internal/pkg/logging"
	"github.com/donamatch/donamatch/internal/pkg/metrics"
	"github.com/donamatch/donamatch/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("donamatch-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logging.Setup(cfg.Telemetry.ServiceName, cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
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
	go reportPoolStats(ctx, db)

	// Cache. The ports stay nil interfaces when a backend is down.
	var cachePort ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr, cfg.Valkey.Namespace)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer cache.Close()
		cachePort = cache
	}

	// NATS
	var eventsPort ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL, cfg.NATS.Stream)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer pub.Close()
		eventsPort = pub
	}

	// The WebSocket relay shares the publisher connection. Core NATS is
	// enough for it, so fall back to a plain connection when JetStream is not.
	var natsConn *nats.Conn
	if pub != nil {
		natsConn = pub.Conn()
	} else if nc, err := natsadapter.RawConn(cfg.NATS.URL); err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	} else {
		defer nc.Close()
		natsConn = nc
	}

	// Temporal is only probed by /v1/ready here; cmd/notifier runs the worker.
	var temporalClient client.Client
	tc, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		slog.Warn("temporal unavailable", "error", err)
	} else {
		defer tc.Close()
		temporalClient = tc
	}

	// Repos
	ngoRepo := postgres.NewNGORepo(db)
	donationRepo := postgres.NewDonationRepo(db)

	// Use cases
	geocoder := nominatim.New(cfg.Geocoding.BaseURL, cfg.Geocoding.UserAgent,
		time.Duration(cfg.Geocoding.Timeout)*time.Second)

	deps := &http.Dependencies{
		NGOs:      usecases.NewNGOService(ngoRepo, cachePort, eventsPort).WithNearbyTTL(cfg.Search.CacheTTL),
		Donations: usecases.NewDonationService(donationRepo, ngoRepo, cachePort, eventsPort).WithNearbyTTL(cfg.Search.CacheTTL),
		Geocoding: usecases.NewGeocodingService(geocoder, cachePort),
		Search:    cfg.Search,
		NATS:      natsConn,
		DB:        db,
		Cache:     cache,
		Temporal:  temporalClient,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "DonaMatch API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, If-None-Match",
		ExposeHeaders:    "ETag, Link, Location, X-Request-ID, Deprecation, Sunset",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		logger.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("forced shutdown", "error", err)
	}

	logger.Info("server stopped")
}

func reportPoolStats(ctx context.Context, db *postgres.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.UpdateDBPoolMetrics(db.Pool.Stat())
		}
	}
}
