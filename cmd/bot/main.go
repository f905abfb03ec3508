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

	"github.com/tiuub/RailwayHistoryTelegramBot/internal/adapters/hafas"
	"github.com/tiuub/RailwayHistoryTelegramBot/internal/adapters/http"
	natsadapter "github.com/tiuub/RailwayHistoryTelegramBot/internal/adapters/nats"
	"github.com/tiuub/RailwayHistoryTelegramBot/internal/adapters/postgres"
	"github.com/tiuub/RailwayHistoryTelegramBot/internal/adapters/telegram"
	"github.com/tiuub/RailwayHistoryTelegramBot/internal/adapters/valkey"
	"github.com/tiuub/RailwayHistoryTelegramBot/internal/core/ports"
	"github.com/tiuub/RailwayHistoryTelegramBot/internal/core/usecases"
	"github.com/tiuub/RailwayHistoryTelegramBot/internal/pkg/config"
	"github.com/tiuub/RailwayHistoryTelegramBot/internal/pkg/logging"
	"github.com/tiuub/RailwayHistoryTelegramBot/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("railbot")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.Telegram.Token == "" {
		log.Fatal("telegram.token is required (RAILBOT_TELEGRAM_TOKEN)")
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	tz, err := time.LoadLocation(cfg.Telegram.Timezone)
	if err != nil {
		log.Fatalf("timezone %s: %v", cfg.Telegram.Timezone, err)
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Cache (optional, the bot degrades to uncached listings)
	var cacheSvc ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer cache.Close()
		cacheSvc = cache
	}

	// NATS (optional, events are best-effort)
	var events ports.EventPublisher
	nc, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer nc.Close()
		events = nc
	}

	// Journey provider
	provider := hafas.New(cfg.Hafas.BaseURL, time.Duration(cfg.Hafas.Timeout)*time.Second, cfg.Hafas.Results)

	// Repos
	stationRepo := postgres.NewStationRepo(db)
	segmentRepo := postgres.NewSegmentRepo(db)
	journeyRepo := postgres.NewJourneyRepo(db)
	userRepo := postgres.NewUserRepo(db)
	tagRepo := postgres.NewTagRepo(db)
	userJourneyRepo := postgres.NewUserJourneyRepo(db)

	// Use cases
	stationSvc := usecases.NewStationService(stationRepo, provider)
	segmentSvc := usecases.NewSegmentService(segmentRepo, stationSvc, provider)
	submissionSvc := usecases.NewSubmissionService(
		stationSvc, segmentSvc, userRepo, journeyRepo, userJourneyRepo, events, cacheSvc, tz)
	annotationSvc := usecases.NewAnnotationService(
		userRepo, userJourneyRepo, journeyRepo, tagRepo, events, cacheSvc)
	userSvc := usecases.NewUserService(userRepo)
	listingSvc := usecases.NewListingService(userRepo, userJourneyRepo, cacheSvc)

	// Telegram bot
	bot, err := telegram.New(
		cfg.Telegram.Token, cfg.Telegram.PollTimeout,
		submissionSvc, annotationSvc, userSvc, listingSvc)
	if err != nil {
		log.Fatalf("telegram: %v", err)
	}

	go func() {
		if err := bot.Run(ctx); err != nil && ctx.Err() == nil {
			log.Fatalf("bot: %v", err)
		}
	}()

	// Admin/export HTTP server
	deps := &http.Dependencies{
		Listings: listingSvc,
		DB:       db,
		NATS:     nc,
		Cache:    cache,
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024,
		AppName:      "Railway History Bot",
	})
	app.Use(recover.New())

	http.SetupRoutes(app, deps)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("admin server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining...", "signal", sig.String())
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("stopped")
}
