// Package config provides application configuration management from environment variables.
//
// # Overview
//
// This package loads and validates configuration from environment variables with
// sensible defaults for all settings.
//
// # Configuration Structure
//
// Server settings:
//
//	SUBS_HOST="0.0.0.0"
//	SUBS_PORT="8080"
//	SUBS_HEALTH_PORT="9090"
//	SUBS_READ_TIMEOUT="15s"
//	SUBS_WRITE_TIMEOUT="15s"
//
// Storage settings:
//
//	SUBS_POSTGRES_URL="postgres://localhost/subscriptions"
//	SUBS_POSTGRES_MAX_CONNS="20"
//
// Cache settings:
//
//	SUBS_CACHE_ENABLED="true"
//	SUBS_REDIS_URL="redis://localhost:6379"
//	SUBS_CACHE_TTL="5m"
//
// Observability settings:
//
//	SUBS_LOG_LEVEL="info"  # debug, info, warn, error
//	SUBS_METRICS_ENABLED="true"
//
// Billing settings:
//
//	SUBS_CATALOG_PATH="/etc/subscriptions/plans.yaml"
//	SUBS_COUPON_CACHE_SIZE="256"
//	SUBS_COUPON_CACHE_TTL="5m"
//	SUBS_COUPON_SWEEP_SPEC="@hourly"
//
// # Usage Example
//
// Load configuration:
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fmt.Printf("Server: %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//	fmt.Printf("Log level: %s\n", cfg.Observability.LogLevel)
//
// # Related Packages
//
//   - pkg/storage: Uses storage configuration
//   - pkg/observability: Uses observability configuration
//   - pkg/billing: Uses the plan catalog and coupon settings
package config
