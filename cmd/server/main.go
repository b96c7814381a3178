package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/replenish/backend-go/internal/api"
	"github.com/andresuchdata/replenish/backend-go/internal/cache"
	"github.com/andresuchdata/replenish/backend-go/internal/config"
	"github.com/andresuchdata/replenish/backend-go/internal/replenishment"
	"github.com/andresuchdata/replenish/backend-go/internal/repository"
	"github.com/andresuchdata/replenish/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/replenish/backend-go/internal/service"
	"github.com/andresuchdata/replenish/backend-go/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	logger.SetLevel(cfg.Server.LogLevel)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	replenishmentCache := cache.NewNoopReplenishmentCache()
	if cfg.Cache.Enabled {
		c, err := cache.NewReplenishmentCache(cfg.Cache)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("Redis unavailable, continuing without cache")
		} else {
			replenishmentCache = c
		}
	}

	engine := replenishment.NewEngine(cfg.Replenishment.Policy())
	if engine.Policy() != cfg.Replenishment.Policy() {
		logger.Log.Warn().
			Int("urgent_within_days", cfg.Replenishment.UrgentWithinDays).
			Int("soon_within_days", cfg.Replenishment.SoonWithinDays).
			Msg("Invalid urgency policy, using defaults")
	}

	replenishmentService := service.NewReplenishmentService(
		repository.NewInventoryRepository(db.DB),
		postgres.NewPORepository(db),
		engine,
		service.WithCache(replenishmentCache),
		service.WithWorkerCount(cfg.Replenishment.WorkerCount),
	)

	router := api.NewRouter(&api.Services{ReplenishmentService: replenishmentService}, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	// Give in-flight requests 5 seconds to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
