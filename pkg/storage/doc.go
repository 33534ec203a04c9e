// Package storage defines the persistence contracts for customer
// aggregates and coupon campaigns.
//
// # Overview
//
// Customers are stored as whole documents: the aggregate is encoded once
// and written in a single upsert, so a reader always sees a consistent
// snapshot and never a half-applied edit. Coupons are small row-shaped
// records with an atomically incremented usage counter.
//
// # Backends
//
// PostgresStore (pkg/storage/postgres) keeps both in PostgreSQL, with the
// customer document in a JSONB column. An optional Redis read-through
// cache (CustomerCache) sits in front of customer reads.
//
// # Configuration
//
// Backends are configured through the Config struct:
//
//	config := storage.DefaultConfig()
//	config.PostgresURL = "postgres://localhost/subscriptions"
//	config.RedisURL = "redis://localhost:6379"
//
// # Related Packages
//
//   - pkg/customer: the aggregate documents persisted here
//   - pkg/billing: the coupon repository contract CouponStore extends
//   - pkg/processor: writes aggregates back after every sync operation
package storage
