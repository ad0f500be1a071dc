package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/openhaus/tour-scheduler/internal/api/router"
	appconfig "github.com/openhaus/tour-scheduler/internal/config"
	"github.com/openhaus/tour-scheduler/internal/listings"
	"github.com/openhaus/tour-scheduler/internal/observability/metrics"
	"github.com/openhaus/tour-scheduler/internal/profiles"
	"github.com/openhaus/tour-scheduler/internal/tours"
	"github.com/openhaus/tour-scheduler/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting tour-scheduler API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	// Initialize storage
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create pgx pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("failed to reach database", "error", err)
		os.Exit(1)
	}

	redisOpts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOpts)
	defer func() { _ = redisClient.Close() }()

	// Initialize repositories and services
	tourRepo := tours.NewPostgresRepository(pool)
	profileRepo := profiles.NewPostgresRepository(pool)
	listingRepo := listings.NewPostgresRepository(pool)

	tourMetrics := metrics.NewTourMetrics(prometheus.DefaultRegisterer)
	viewCache := tours.NewViewCache(redisClient, cfg.TourCacheTTL)

	tourService := tours.NewService(tourRepo, profileRepo, listingRepo, logger,
		tours.WithCache(viewCache),
		tours.WithMetrics(tourMetrics),
		tours.WithBookingWindow(cfg.BookingWindowDays),
	)

	// Initialize handlers
	toursHandler := tours.NewHandler(tourService, logger)

	// Setup router
	routerCfg := &router.Config{
		Logger:             logger,
		ToursHandler:       toursHandler,
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		SubmitRatePerSec:   cfg.SubmitRatePerSec,
		SubmitRateBurst:    cfg.SubmitRateBurst,
	}
	r := router.New(routerCfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
