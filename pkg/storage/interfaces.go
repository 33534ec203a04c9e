package storage

import (
	"context"
	"errors"
	"time"

	"github.com/enhancv/go-subscriptions/pkg/billing"
	"github.com/enhancv/go-subscriptions/pkg/customer"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// CustomerStore persists whole customer aggregates as documents.
type CustomerStore interface {
	// Get loads a customer aggregate by entity id, returning ErrNotFound
	// when it does not exist.
	Get(ctx context.Context, entityID string) (*customer.Customer, error)
	// Put upserts the whole aggregate in one write.
	Put(ctx context.Context, c *customer.Customer) error
	// Delete removes a customer, returning ErrNotFound when it does not
	// exist.
	Delete(ctx context.Context, entityID string) error
	// List returns customer entity ids, newest first.
	List(ctx context.Context, limit, offset int) ([]string, int64, error)
}

// CouponStore persists coupon campaigns. It extends the repository the
// billing engine resolves coupons through with management operations.
type CouponStore interface {
	billing.CouponRepository

	// Put upserts a coupon campaign.
	Put(ctx context.Context, coupon *billing.Coupon) error
	// Delete removes a coupon, returning ErrNotFound when it does not
	// exist.
	Delete(ctx context.Context, id string) error
	// List returns all coupon campaigns.
	List(ctx context.Context) ([]*billing.Coupon, error)
	// SweepExpired deletes coupons whose expiry passed before the given
	// time, returning how many were removed.
	SweepExpired(ctx context.Context, before time.Time) (int64, error)
}

// Config for the storage backend.
type Config struct {
	// PostgreSQL config
	PostgresURL      string
	PostgresMaxConns int
	PostgresMinConns int
	PostgresTimeout  time.Duration

	// Redis config
	RedisURL        string
	RedisPassword   string
	RedisDB         int
	RedisMaxRetries int
	RedisPoolSize   int

	// Cache config
	CacheEnabled bool
	CacheTTL     time.Duration
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		PostgresMaxConns: 20,
		PostgresMinConns: 2,
		PostgresTimeout:  10 * time.Second,
		RedisDB:          0,
		RedisMaxRetries:  3,
		RedisPoolSize:    10,
		CacheEnabled:     true,
		CacheTTL:         5 * time.Minute,
	}
}
