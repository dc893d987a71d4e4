// Package config provides configuration management for the storefront
// server.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultServerPort      = 8080
	DefaultLogLevel        = "info"
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMetricsEnabled  = true
	DefaultStorageBackend  = StorageBackendMemory
	DefaultStorageDir      = "./data"
	DefaultRedisAddr       = "localhost:6379"
	DefaultFetchTimeout    = 10 * time.Second
)

// Environment variable names.
const (
	EnvServerPort      = "APP_SERVER_PORT"
	EnvLogLevel        = "APP_LOG_LEVEL"
	EnvShutdownTimeout = "APP_SHUTDOWN_TIMEOUT"
	EnvMetricsEnabled  = "APP_METRICS_ENABLED"
	EnvStorageBackend  = "APP_STORAGE_BACKEND"
	EnvStorageDir      = "APP_STORAGE_DIR"
	EnvRedisAddr       = "APP_REDIS_ADDR"
	EnvRedisDB         = "APP_REDIS_DB"
	EnvProductsURL     = "APP_PRODUCTS_URL"
	EnvFetchTimeout    = "APP_FETCH_TIMEOUT"
)

// Cart storage backends.
const (
	StorageBackendNone   = "none"
	StorageBackendMemory = "memory"
	StorageBackendFile   = "file"
	StorageBackendRedis  = "redis"
)

// Config holds the application configuration.
type Config struct {
	// Server settings.
	ServerPort      int
	LogLevel        string
	ShutdownTimeout time.Duration
	MetricsEnabled  bool

	// Cart storage backend: none, memory, file, redis.
	StorageBackend string

	// Directory for the file backend.
	StorageDir string

	// Redis settings for the redis backend.
	RedisAddr string
	RedisDB   int

	// Product origin URL. Empty means the built-in demo catalog.
	ProductsURL string

	// Timeout for a single product fetch.
	FetchTimeout time.Duration
}

// Validation errors.
var (
	ErrInvalidServerPort      = errors.New("server port must be between 1 and 65535")
	ErrInvalidLogLevel        = errors.New("log level must be one of: debug, info, warn, error")
	ErrInvalidShutdownTimeout = errors.New("shutdown timeout must be positive")
	ErrInvalidStorageBackend  = errors.New(
		"storage backend must be one of: none, memory, file, redis",
	)
	ErrStorageDirRequired = errors.New(
		"storage dir must be set when the storage backend is file",
	)
	ErrRedisAddrRequired = errors.New(
		"redis address must be set when the storage backend is redis",
	)
	ErrInvalidRedisDB      = errors.New("redis db must be between 0 and 15")
	ErrInvalidProductsURL  = errors.New("products URL must start with http:// or https://")
	ErrInvalidFetchTimeout = errors.New("fetch timeout must be positive")
)

// Load reads configuration from environment variables with defaults.
// Environment variables have priority over default values.
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort:      DefaultServerPort,
		LogLevel:        DefaultLogLevel,
		ShutdownTimeout: DefaultShutdownTimeout,
		MetricsEnabled:  DefaultMetricsEnabled,
		StorageBackend:  DefaultStorageBackend,
		StorageDir:      DefaultStorageDir,
		RedisAddr:       DefaultRedisAddr,
		FetchTimeout:    DefaultFetchTimeout,
	}

	if err := cfg.loadFromEnv(); err != nil {
		return nil, fmt.Errorf("loading config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// loadFromEnv loads configuration values from environment variables.
func (c *Config) loadFromEnv() error {
	if err := c.loadServerEnv(); err != nil {
		return err
	}

	if err := c.loadStorageEnv(); err != nil {
		return err
	}

	if err := c.loadCatalogEnv(); err != nil {
		return err
	}

	return nil
}

// loadServerEnv loads server-related environment variables.
func (c *Config) loadServerEnv() error {
	if val := os.Getenv(EnvServerPort); val != "" {
		port, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvServerPort, err)
		}
		c.ServerPort = port
	}

	if val := os.Getenv(EnvLogLevel); val != "" {
		c.LogLevel = val
	}

	if val := os.Getenv(EnvShutdownTimeout); val != "" {
		timeout, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvShutdownTimeout, err)
		}
		c.ShutdownTimeout = timeout
	}

	if val := os.Getenv(EnvMetricsEnabled); val != "" {
		enabled, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvMetricsEnabled, err)
		}
		c.MetricsEnabled = enabled
	}

	return nil
}

// loadStorageEnv loads cart storage environment variables.
func (c *Config) loadStorageEnv() error {
	if val := os.Getenv(EnvStorageBackend); val != "" {
		c.StorageBackend = val
	}

	if val := os.Getenv(EnvStorageDir); val != "" {
		c.StorageDir = val
	}

	if val := os.Getenv(EnvRedisAddr); val != "" {
		c.RedisAddr = val
	}

	if val := os.Getenv(EnvRedisDB); val != "" {
		db, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvRedisDB, err)
		}
		c.RedisDB = db
	}

	return nil
}

// loadCatalogEnv loads product catalog environment variables.
func (c *Config) loadCatalogEnv() error {
	if val := os.Getenv(EnvProductsURL); val != "" {
		c.ProductsURL = val
	}

	if val := os.Getenv(EnvFetchTimeout); val != "" {
		timeout, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvFetchTimeout, err)
		}
		c.FetchTimeout = timeout
	}

	return nil
}

// Validate checks if the configuration values are valid.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateStorage(); err != nil {
		return err
	}

	if err := c.validateCatalog(); err != nil {
		return err
	}

	return nil
}

// validateServer validates server-related configuration.
func (c *Config) validateServer() error {
	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return ErrInvalidServerPort
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return ErrInvalidLogLevel
	}

	if c.ShutdownTimeout <= 0 {
		return ErrInvalidShutdownTimeout
	}

	return nil
}

// validateStorage validates cart storage configuration.
func (c *Config) validateStorage() error {
	validBackends := map[string]bool{
		StorageBackendNone:   true,
		StorageBackendMemory: true,
		StorageBackendFile:   true,
		StorageBackendRedis:  true,
	}
	if !validBackends[c.StorageBackend] {
		return ErrInvalidStorageBackend
	}

	if c.StorageBackend == StorageBackendFile && c.StorageDir == "" {
		return ErrStorageDirRequired
	}

	if c.StorageBackend == StorageBackendRedis && c.RedisAddr == "" {
		return ErrRedisAddrRequired
	}

	if c.RedisDB < 0 || c.RedisDB > 15 {
		return ErrInvalidRedisDB
	}

	return nil
}

// validateCatalog validates product catalog configuration.
func (c *Config) validateCatalog() error {
	if c.ProductsURL != "" &&
		!strings.HasPrefix(c.ProductsURL, "http://") &&
		!strings.HasPrefix(c.ProductsURL, "https://") {
		return ErrInvalidProductsURL
	}

	if c.FetchTimeout <= 0 {
		return ErrInvalidFetchTimeout
	}

	return nil
}

// Address returns the server address in host:port format.
func (c *Config) Address() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}
