// Package main is the entry point for the storefront API server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/alexanderop/storefront/internal/cart"
	"github.com/alexanderop/storefront/internal/catalog"
	"github.com/alexanderop/storefront/internal/config"
	"github.com/alexanderop/storefront/internal/server"
	"github.com/alexanderop/storefront/internal/source"
	"github.com/alexanderop/storefront/internal/storage"
)

// startupTimeout bounds cart hydration and the redis liveness check.
const startupTimeout = 10 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Use a basic logger for startup errors
		basicLogger, _ := zap.NewProduction()
		basicLogger.Fatal("failed to load configuration", zap.Error(err))
	}

	// Initialize logger
	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		basicLogger, _ := zap.NewProduction()
		basicLogger.Fatal("failed to initialize logger", zap.Error(err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("configuration loaded",
		zap.Int("server_port", cfg.ServerPort),
		zap.String("log_level", cfg.LogLevel),
		zap.Duration("shutdown_timeout", cfg.ShutdownTimeout),
		zap.Bool("metrics_enabled", cfg.MetricsEnabled),
		zap.String("storage_backend", cfg.StorageBackend),
		zap.String("products_url", cfg.ProductsURL),
	)

	// Create cart persistence based on config
	kv, err := createStorage(cfg, logger)
	if err != nil {
		logger.Fatal("failed to create cart storage", zap.Error(err))
	}

	// Create the stores
	cartStore := cart.NewStore(kv, logger)
	catalogStore := catalog.NewStore(createSource(cfg, logger), logger)

	// Restore the persisted cart before serving requests
	hydrateCtx, cancelHydrate := context.WithTimeout(context.Background(), startupTimeout)
	err = cartStore.Hydrate(hydrateCtx)
	cancelHydrate()
	if err != nil {
		logger.Warn("cart hydration failed, starting with an empty cart", zap.Error(err))
	}

	// Load the product catalog; a failed fetch leaves the catalog empty and
	// the server not ready until a refresh succeeds
	fetchCtx, cancelFetch := context.WithTimeout(context.Background(), cfg.FetchTimeout)
	catalogStore.Fetch(fetchCtx)
	cancelFetch()
	if msg := catalogStore.FetchError(); msg != "" {
		logger.Warn("initial catalog fetch failed", zap.String("error", msg))
	} else {
		logger.Info("catalog loaded", zap.Int("product_count", len(catalogStore.Products())))
	}

	// Create and start server
	srv := server.New(cfg, logger, cartStore, catalogStore)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Start()
	}()

	// Wait for shutdown signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error("server error", zap.Error(err))
		return 1
	case sig := <-shutdown:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))

		// Create shutdown context with timeout
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		// Graceful shutdown
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
			return 1
		}
	}

	logger.Info("server stopped")
	return 0
}

// initLogger initializes a zap logger with the specified log level.
func initLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	zapConfig := zap.Config{
		Level:       zap.NewAtomicLevelAt(zapLevel),
		Development: false,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		Encoding: "json",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "timestamp",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "message",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return zapConfig.Build()
}

// createStorage creates the cart persistence backend selected by the config.
func createStorage(cfg *config.Config, logger *zap.Logger) (storage.KV, error) {
	switch cfg.StorageBackend {
	case config.StorageBackendNone:
		logger.Info("cart persistence disabled")
		return storage.NewNoop(), nil
	case config.StorageBackendMemory:
		logger.Info("cart persistence: in-memory")
		return storage.NewMemory(), nil
	case config.StorageBackendFile:
		logger.Info("cart persistence: file", zap.String("dir", cfg.StorageDir))
		kv, err := storage.NewFile(cfg.StorageDir)
		if err != nil {
			return nil, fmt.Errorf("creating file storage: %w", err)
		}
		return kv, nil
	case config.StorageBackendRedis:
		logger.Info("cart persistence: redis",
			zap.String("addr", cfg.RedisAddr),
			zap.Int("db", cfg.RedisDB),
		)
		client := redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
		})

		// Fail fast on an unreachable server; later persist errors are
		// only logged
		ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		return storage.NewRedis(client), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.StorageBackend)
	}
}

// createSource selects the product origin. An empty URL serves the built-in
// demo catalog.
func createSource(cfg *config.Config, logger *zap.Logger) catalog.Source {
	if cfg.ProductsURL == "" {
		logger.Info("product source: built-in demo catalog")
		return source.NewSeeded()
	}

	logger.Info("product source: http",
		zap.String("url", cfg.ProductsURL),
		zap.Duration("timeout", cfg.FetchTimeout),
	)
	return source.NewHTTP(cfg.ProductsURL, cfg.FetchTimeout, logger)
}
