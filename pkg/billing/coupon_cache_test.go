package billing

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedCouponRepositoryGet(t *testing.T) {
	calls := 0
	inner := &repoMock{
		getFunc: func(ctx context.Context, id string) (*Coupon, error) {
			calls++
			return &Coupon{ID: id, AmountOff: decimal.NewFromInt(5), UsedCountMax: 10}, nil
		},
	}
	repo := NewCachedCouponRepository(inner, 8, time.Minute)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		coupon, err := repo.Get(ctx, "spring")
		require.NoError(t, err)
		assert.Equal(t, "spring", coupon.ID)
	}
	assert.Equal(t, 1, calls, "repeat reads served from the cache")
}

func TestCachedCouponRepositoryMissNotCached(t *testing.T) {
	calls := 0
	inner := &repoMock{
		getFunc: func(ctx context.Context, id string) (*Coupon, error) {
			calls++
			return nil, ErrCouponNotFound
		},
	}
	repo := NewCachedCouponRepository(inner, 8, time.Minute)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := repo.Get(ctx, "missing")
		require.ErrorIs(t, err, ErrCouponNotFound)
	}
	assert.Equal(t, 2, calls, "misses reach the store every time")
}

func TestCachedCouponRepositoryIncrementInvalidates(t *testing.T) {
	usage := 0
	inner := &repoMock{
		getFunc: func(ctx context.Context, id string) (*Coupon, error) {
			return &Coupon{ID: id, AmountOff: decimal.NewFromInt(5), UsedCount: usage, UsedCountMax: 10}, nil
		},
		incrementFunc: func(ctx context.Context, id string) error {
			usage++
			return nil
		},
	}
	repo := NewCachedCouponRepository(inner, 8, time.Minute)

	ctx := context.Background()
	_, err := repo.Get(ctx, "spring")
	require.NoError(t, err)
	require.NoError(t, repo.IncrementUsage(ctx, "spring"))

	coupon, err := repo.Get(ctx, "spring")
	require.NoError(t, err)
	assert.Equal(t, 1, coupon.UsedCount, "fresh budget after invalidation")
}

func TestCachedCouponRepositoryIncrementError(t *testing.T) {
	inner := &repoMock{
		incrementFunc: func(ctx context.Context, id string) error {
			return ErrCouponNotFound
		},
	}
	repo := NewCachedCouponRepository(inner, 8, time.Minute)

	assert.ErrorIs(t, repo.IncrementUsage(context.Background(), "missing"), ErrCouponNotFound)
}
