package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"studio-booking/internal/bus"
	"studio-booking/internal/logging"
	"studio-booking/internal/notification/config"
	"studio-booking/internal/notification/service"
)

func main() {
	logger := logging.Setup("notification")
	log.Info().Msg("starting notification sink")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	busAdapter, err := bus.NewAdapter(cfg.RabbitMQURL, logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to event bus")
	}

	notificationService := service.NewNotificationService()

	consumerCtx, consumerCancel := context.WithCancel(context.Background())
	defer consumerCancel()

	go func() {
		log.Info().Msg("starting event bus subscriber")
		if err := busAdapter.Run(consumerCtx, notificationService.Handle); err != nil {
			log.Error().Err(err).Msg("event bus subscriber stopped with error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info().Str("signal", sig.String()).Msg("shutdown signal received")

	consumerCancel()
	if err := busAdapter.Close(); err != nil {
		log.Error().Err(err).Msg("error closing event bus adapter")
	}

	log.Info().Msg("notification sink stopped")
}
