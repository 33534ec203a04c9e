package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/enhancv/go-subscriptions/pkg/observability"
	"github.com/enhancv/go-subscriptions/pkg/storage"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Storage configuration
	Storage storage.Config

	// Observability configuration
	Observability ObservabilityConfig

	// Billing configuration
	Billing BillingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for k8s probes)
	HealthPort string
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	// Logging
	LogLevel observability.LogLevel

	// Metrics
	MetricsEnabled bool
}

// BillingConfig holds plan catalog and coupon settings
type BillingConfig struct {
	// Path to the YAML plan catalog
	CatalogPath string

	// Coupon lookup cache
	CouponCacheSize int
	CouponCacheTTL  time.Duration

	// Cron spec for the expired-coupon sweep; empty disables it
	CouponSweepSpec string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server:        loadServerConfig(),
		Storage:       loadStorageConfig(),
		Observability: loadObservabilityConfig(),
		Billing:       loadBillingConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadServerConfig loads server configuration from environment
func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("SUBS_HOST", "0.0.0.0"),
		Port:            getEnv("SUBS_PORT", "8080"),
		ReadTimeout:     getEnvDuration("SUBS_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("SUBS_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("SUBS_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("SUBS_SHUTDOWN_TIMEOUT", 30*time.Second),
		HealthPort:      getEnv("SUBS_HEALTH_PORT", "9090"),
	}
}

// loadStorageConfig loads storage configuration from environment
func loadStorageConfig() storage.Config {
	cfg := storage.DefaultConfig()

	// PostgreSQL config
	if pgURL := getEnv("SUBS_POSTGRES_URL", ""); pgURL != "" {
		cfg.PostgresURL = pgURL
	}
	if maxConns := getEnvInt("SUBS_POSTGRES_MAX_CONNS", 0); maxConns > 0 {
		cfg.PostgresMaxConns = maxConns
	}
	if minConns := getEnvInt("SUBS_POSTGRES_MIN_CONNS", 0); minConns > 0 {
		cfg.PostgresMinConns = minConns
	}
	if timeout := getEnvDuration("SUBS_POSTGRES_TIMEOUT", 0); timeout > 0 {
		cfg.PostgresTimeout = timeout
	}

	// Redis config
	if redisURL := getEnv("SUBS_REDIS_URL", ""); redisURL != "" {
		cfg.RedisURL = redisURL
	}
	if redisPassword := getEnv("SUBS_REDIS_PASSWORD", ""); redisPassword != "" {
		cfg.RedisPassword = redisPassword
	}
	if redisDB := getEnvInt("SUBS_REDIS_DB", -1); redisDB >= 0 {
		cfg.RedisDB = redisDB
	}
	if redisMaxRetries := getEnvInt("SUBS_REDIS_MAX_RETRIES", 0); redisMaxRetries > 0 {
		cfg.RedisMaxRetries = redisMaxRetries
	}
	if redisPoolSize := getEnvInt("SUBS_REDIS_POOL_SIZE", 0); redisPoolSize > 0 {
		cfg.RedisPoolSize = redisPoolSize
	}

	// Cache config
	if cacheEnabled := getEnv("SUBS_CACHE_ENABLED", ""); cacheEnabled != "" {
		cfg.CacheEnabled = strings.ToLower(cacheEnabled) == "true"
	}
	if cacheTTL := getEnvDuration("SUBS_CACHE_TTL", 0); cacheTTL > 0 {
		cfg.CacheTTL = cacheTTL
	}

	return cfg
}

// loadObservabilityConfig loads observability configuration from environment
func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:       observability.ParseLogLevel(getEnv("SUBS_LOG_LEVEL", "info")),
		MetricsEnabled: getEnvBool("SUBS_METRICS_ENABLED", true),
	}
}

// loadBillingConfig loads billing configuration from environment
func loadBillingConfig() BillingConfig {
	return BillingConfig{
		CatalogPath:     getEnv("SUBS_CATALOG_PATH", ""),
		CouponCacheSize: getEnvInt("SUBS_COUPON_CACHE_SIZE", 256),
		CouponCacheTTL:  getEnvDuration("SUBS_COUPON_CACHE_TTL", 5*time.Minute),
		CouponSweepSpec: getEnv("SUBS_COUPON_SWEEP_SPEC", "@hourly"),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	// Validate storage config
	if c.Storage.PostgresURL == "" {
		return fmt.Errorf("postgres URL is required")
	}
	if c.Storage.CacheEnabled && c.Storage.RedisURL == "" {
		return fmt.Errorf("redis URL is required when the cache is enabled")
	}

	// Validate billing config
	if c.Billing.CatalogPath == "" {
		return fmt.Errorf("plan catalog path is required")
	}
	if c.Billing.CouponCacheSize <= 0 {
		return fmt.Errorf("coupon cache size must be positive")
	}

	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
