package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"studio-booking/internal/bus"
	"studio-booking/internal/logging"
	"studio-booking/internal/quota/config"
	"studio-booking/internal/quota/controller"
	"studio-booking/internal/quota/database"
	"studio-booking/internal/quota/repository"
	"studio-booking/internal/quota/routes"
	"studio-booking/internal/quota/service"
)

func main() {
	logger := logging.Setup("quota")
	log.Info().Msg("starting quota accountant")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := database.Init(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database connection")
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run database migrations")
	}

	busAdapter, err := bus.NewAdapter(cfg.RabbitMQURL, logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to event bus")
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Str("redis_url", cfg.RedisURL).Msg("invalid REDIS_URL")
	}
	redisClient := redis.NewClient(redisOpts)

	quotaRepo := repository.NewQuotaRepository(db)
	advisoryLock := repository.NewAdvisoryLock(redisClient)
	quotaService := service.NewQuotaService(quotaRepo, advisoryLock, busAdapter, cfg.MaxMinPerWeek)

	consumerCtx, consumerCancel := context.WithCancel(context.Background())
	defer consumerCancel()

	go func() {
		log.Info().Msg("starting event bus subscriber")
		if err := busAdapter.Run(consumerCtx, quotaService.HandleBookingCreated); err != nil {
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

	quotaController := controller.NewQuotaController(quotaService)
	routes.SetupRoutes(router, quotaController)

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
	if err := redisClient.Close(); err != nil {
		log.Error().Err(err).Msg("error closing redis connection")
	}
	if err := database.Close(db); err != nil {
		log.Error().Err(err).Msg("error closing database connection")
	}

	log.Info().Msg("quota accountant stopped")
}
