// Package main runs the event status and live check-in HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/eventplanner/backend/config"
	"github.com/eventplanner/backend/internal/checkin"
	"github.com/eventplanner/backend/internal/clock"
	"github.com/eventplanner/backend/internal/events"
	"github.com/eventplanner/backend/internal/middleware"
	"github.com/eventplanner/backend/pkg/database"
	"github.com/eventplanner/backend/pkg/queue"
	"github.com/eventplanner/backend/pkg/redis"
	"github.com/eventplanner/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	// Redis backs the snapshot cache and the optional archive queue. The
	// service runs fine without it: cold-cache, live-only check-ins.
	var rdb *redis.Client
	if cfg.Cache.Enabled || cfg.CheckIn.ArchiveEnabled {
		rdb, err = redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			logger.Warn("redis unavailable, continuing without cache", zap.Error(err))
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	var cache events.Cache = events.NopCache{}
	if cfg.Cache.Enabled && rdb != nil {
		cache = events.NewRedisCache(rdb.Client, cfg.Cache.TTL, logger)
	}

	clk := clock.NewSystem()

	// Events
	eventRepo := events.NewRepository(pool)
	eventService := events.NewService(eventRepo, cache, clk, logger)
	eventHandler := events.NewHandler(eventService)

	// Check-ins
	var archiver checkin.Archiver
	var store checkin.Store = checkin.EmptyStore{}
	if cfg.CheckIn.ArchiveEnabled && rdb != nil {
		jobQueue := queue.NewQueue(rdb.Client, logger)
		archiver = checkin.NewQueueArchiver(jobQueue, logger)
		store = checkin.NewRepository(pool)
	}
	bus := checkin.NewBus(cfg.CheckIn.SubscriberBuffer, clk, archiver, logger)
	checkinHandler := checkin.NewHandler(bus, store, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Tenant())

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	api := router.Group("")
	eventHandler.Register(api)
	checkinHandler.Register(api)

	srv := &http.Server{
		Addr:        ":" + cfg.Server.Port,
		Handler:     router,
		ReadTimeout: time.Duration(cfg.Server.ReadTimeout) * time.Second,
		// WriteTimeout stays 0 by default so live feeds are not cut off.
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
