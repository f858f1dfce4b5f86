package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"studio-booking/internal/bus"
	"studio-booking/internal/logging"
	"studio-booking/internal/orchestrator/clients"
	"studio-booking/internal/orchestrator/config"
	"studio-booking/internal/orchestrator/controller"
	"studio-booking/internal/orchestrator/database"
	"studio-booking/internal/orchestrator/repository"
	"studio-booking/internal/orchestrator/routes"
	"studio-booking/internal/orchestrator/service"
)

func main() {
	logger := logging.Setup("orchestrator")
	log.Info().Msg("starting booking orchestrator")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	loc, err := time.LoadLocation(cfg.LocalTZ)
	if err != nil {
		log.Fatal().Err(err).Str("local_tz", cfg.LocalTZ).Msg("failed to load local time zone")
	}

	db, err := database.Init(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database connection")
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run database migrations")
	}
	log.Info().Msg("database ready")

	busAdapter, err := bus.NewAdapter(cfg.RabbitMQURL, logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to event bus")
	}

	bookingRepo := repository.NewBookingRepository(db)
	dedupRepo := repository.NewProcessedMessageRepository(db)

	accessClient := clients.NewAccessClient(cfg.AccessURL)
	quotaClient := clients.NewQuotaClient(cfg.QuotaURL)

	bookingService := service.NewBookingService(db, bookingRepo, busAdapter, accessClient, quotaClient, loc)
	consumer := service.NewEventConsumer(db, bookingRepo, dedupRepo, busAdapter)

	consumerCtx, consumerCancel := context.WithCancel(context.Background())
	defer consumerCancel()

	go func() {
		log.Info().Msg("starting event bus subscriber")
		if err := busAdapter.Run(consumerCtx, consumer.Handle); err != nil {
			log.Error().Err(err).Msg("event bus subscriber stopped with error")
		}
	}()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	healthController := controller.NewHealthController()
	bookingController := controller.NewBookingController(bookingService)
	routes.SetupRoutes(router, healthController, bookingController)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.ServerPort).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start http server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info().Str("signal", sig.String()).Msg("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	consumerCancel()

	if err := busAdapter.Close(); err != nil {
		log.Error().Err(err).Msg("error closing event bus adapter")
	}
	if err := database.Close(db); err != nil {
		log.Error().Err(err).Msg("error closing database connection")
	}

	log.Info().Msg("orchestrator stopped")
}
