package billing

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// CachedCouponRepository decorates a CouponRepository with an in-process
// LRU cache. Coupons are hot during campaigns and nearly immutable outside
// of redemption counting, so a short TTL keeps the store quiet without
// serving stale budgets for long.
type CachedCouponRepository struct {
	inner CouponRepository
	cache *lru.LRU[string, *Coupon]
}

// NewCachedCouponRepository wraps a repository with a cache of maxEntries
// coupons expiring after ttl.
func NewCachedCouponRepository(inner CouponRepository, maxEntries int, ttl time.Duration) *CachedCouponRepository {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &CachedCouponRepository{
		inner: inner,
		cache: lru.NewLRU[string, *Coupon](maxEntries, nil, ttl),
	}
}

// Get returns the cached coupon when present, otherwise fetches and
// caches it.
func (r *CachedCouponRepository) Get(ctx context.Context, id string) (*Coupon, error) {
	if coupon, ok := r.cache.Get(id); ok {
		return coupon, nil
	}
	coupon, err := r.inner.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	r.cache.Add(id, coupon)
	return coupon, nil
}

// IncrementUsage counts a redemption and drops the cached copy so the next
// read sees the new budget.
func (r *CachedCouponRepository) IncrementUsage(ctx context.Context, id string) error {
	if err := r.inner.IncrementUsage(ctx, id); err != nil {
		return err
	}
	r.cache.Remove(id)
	return nil
}
