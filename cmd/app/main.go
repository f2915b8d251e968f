package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"visit/di"
	"visit/helper"
	bookingService "visit/internal/domains/booking/service"
	"visit/internal/events"
	"visit/shared/logger"

	"github.com/rs/zerolog/log"
)

// @title Visit Scheduling API
// @version 1.0
// @description Availability windows, free slot previews and visit bookings for properties.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.InitLogger()

	app := di.InitializeService()
	cfg := app.Config

	logger.Configure(cfg, os.Stdout)

	if cfg.DB.Postgres.AutoMigrate {
		if err := helper.Up(cfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to run database migrations")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go bookingService.RunCompletionSweep(ctx, app.Ledger, bookingService.SweepInterval(cfg))

	if cfg.Kafka.ConsumerGroup != "" {
		go events.Subscribe(ctx, app.Kafka, cfg, events.LogEvent)
	}

	app.HTTP.Serve(ctx)

	if err := app.Kafka.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close kafka client")
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.Otel.Shutdown(flushCtx); err != nil {
		log.Error().Err(err).Msg("Failed to flush traces")
	}
}
