package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/enhancv/go-subscriptions/pkg/customer"
	"github.com/enhancv/go-subscriptions/pkg/observability"
	"github.com/enhancv/go-subscriptions/pkg/storage"
)

// CustomerCache is a read-through Redis cache in front of a
// storage.CustomerStore. Writes go to the inner store first and then
// refresh or invalidate the cached document.
type CustomerCache struct {
	inner   storage.CustomerStore
	client  *redis.Client
	reg     *customer.Registry
	ttl     time.Duration
	metrics *observability.Metrics
}

// NewRedisClient connects to Redis using the storage config.
func NewRedisClient(config storage.Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	// Override with config values if provided
	if config.RedisPassword != "" {
		opts.Password = config.RedisPassword
	}
	if config.RedisDB >= 0 {
		opts.DB = config.RedisDB
	}
	if config.RedisMaxRetries > 0 {
		opts.MaxRetries = config.RedisMaxRetries
	}
	if config.RedisPoolSize > 0 {
		opts.PoolSize = config.RedisPoolSize
	}

	// Set connection timeouts
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.PoolTimeout = 4 * time.Second

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

// NewCustomerCache wraps a customer store with a Redis read-through cache.
// Metrics may be nil.
func NewCustomerCache(inner storage.CustomerStore, client *redis.Client, reg *customer.Registry, ttl time.Duration, metrics *observability.Metrics) *CustomerCache {
	return &CustomerCache{inner: inner, client: client, reg: reg, ttl: ttl, metrics: metrics}
}

func customerKey(entityID string) string {
	return fmt.Sprintf("customer:%s", entityID)
}

// Get returns the cached document when present, otherwise loads from the
// inner store and fills the cache. Cache failures degrade to the inner
// store, never to an error.
func (c *CustomerCache) Get(ctx context.Context, entityID string) (*customer.Customer, error) {
	key := customerKey(entityID)

	data, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		cached, derr := c.reg.DecodeCustomer(data)
		if derr == nil {
			c.hit()
			return cached, nil
		}
		// Corrupt entry; drop it and fall through to the store.
		c.client.Del(ctx, key)
	} else if err != redis.Nil {
		c.miss()
		return c.inner.Get(ctx, entityID)
	}
	c.miss()

	loaded, err := c.inner.Get(ctx, entityID)
	if err != nil {
		return nil, err
	}

	if encoded, eerr := c.reg.EncodeCustomer(loaded); eerr == nil {
		c.client.Set(ctx, key, encoded, c.ttl)
	}
	return loaded, nil
}

// Put writes through to the inner store and refreshes the cached document.
func (c *CustomerCache) Put(ctx context.Context, cust *customer.Customer) error {
	if err := c.inner.Put(ctx, cust); err != nil {
		return err
	}
	if encoded, err := c.reg.EncodeCustomer(cust); err == nil {
		c.client.Set(ctx, customerKey(cust.EntityID), encoded, c.ttl)
	} else {
		c.client.Del(ctx, customerKey(cust.EntityID))
	}
	return nil
}

// Delete removes the record from the inner store and the cache.
func (c *CustomerCache) Delete(ctx context.Context, entityID string) error {
	if err := c.inner.Delete(ctx, entityID); err != nil {
		return err
	}
	c.client.Del(ctx, customerKey(entityID))
	return nil
}

// List delegates to the inner store; id listings are not cached.
func (c *CustomerCache) List(ctx context.Context, limit, offset int) ([]string, int64, error) {
	return c.inner.List(ctx, limit, offset)
}

// Invalidate drops a cached document without touching the inner store.
func (c *CustomerCache) Invalidate(ctx context.Context, entityID string) error {
	return c.client.Del(ctx, customerKey(entityID)).Err()
}

func (c *CustomerCache) hit() {
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.WithLabelValues("customer").Inc()
	}
}

func (c *CustomerCache) miss() {
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.WithLabelValues("customer").Inc()
	}
}
