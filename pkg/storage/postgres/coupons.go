package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/enhancv/go-subscriptions/pkg/billing"
	"github.com/enhancv/go-subscriptions/pkg/observability"
	"github.com/enhancv/go-subscriptions/pkg/storage"
)

// CouponStore implements storage.CouponStore over the shared connection.
// Usage counters are incremented in-database so concurrent redemptions
// never lose a count.
type CouponStore struct {
	db      *sql.DB
	metrics *observability.Metrics
}

// NewCouponStoreWithDB wraps an existing connection, used by tests.
func NewCouponStoreWithDB(db *sql.DB) *CouponStore {
	return &CouponStore{db: db}
}

// Get fetches a coupon by id.
func (s *CouponStore) Get(ctx context.Context, id string) (_ *billing.Coupon, err error) {
	defer func() { recordStoreOp(s.metrics, "coupon_get", err) }()

	query := `
		SELECT id, name, amount_off, percent_off, used_count, used_count_max, start_at, expire_at
		FROM coupons
		WHERE id = $1
	`
	var c billing.Coupon
	err = s.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID,
		&c.Name,
		&c.AmountOff,
		&c.PercentOff,
		&c.UsedCount,
		&c.UsedCountMax,
		&c.StartAt,
		&c.ExpireAt,
	)
	if err == sql.ErrNoRows {
		return nil, billing.ErrCouponNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}
	return &c, nil
}

// Put upserts a coupon campaign.
func (s *CouponStore) Put(ctx context.Context, coupon *billing.Coupon) (err error) {
	defer func() { recordStoreOp(s.metrics, "coupon_put", err) }()

	query := `
		INSERT INTO coupons (id, name, amount_off, percent_off, used_count, used_count_max, start_at, expire_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE
		SET name           = EXCLUDED.name,
		    amount_off     = EXCLUDED.amount_off,
		    percent_off    = EXCLUDED.percent_off,
		    used_count     = EXCLUDED.used_count,
		    used_count_max = EXCLUDED.used_count_max,
		    start_at       = EXCLUDED.start_at,
		    expire_at      = EXCLUDED.expire_at
	`
	_, err = s.db.ExecContext(ctx, query,
		coupon.ID,
		coupon.Name,
		coupon.AmountOff,
		coupon.PercentOff,
		coupon.UsedCount,
		coupon.UsedCountMax,
		coupon.StartAt,
		coupon.ExpireAt,
	)
	if err != nil {
		return fmt.Errorf("failed to put coupon: %w", err)
	}
	return nil
}

// IncrementUsage counts one redemption with an atomic in-database update.
func (s *CouponStore) IncrementUsage(ctx context.Context, id string) (err error) {
	defer func() { recordStoreOp(s.metrics, "coupon_increment", err) }()

	result, err := s.db.ExecContext(ctx, `UPDATE coupons SET used_count = used_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to increment coupon usage: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to increment coupon usage: %w", err)
	}
	if affected == 0 {
		return billing.ErrCouponNotFound
	}
	return nil
}

// Delete removes a coupon.
func (s *CouponStore) Delete(ctx context.Context, id string) (err error) {
	defer func() { recordStoreOp(s.metrics, "coupon_delete", err) }()

	result, err := s.db.ExecContext(ctx, `DELETE FROM coupons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete coupon: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete coupon: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// List returns all coupon campaigns.
func (s *CouponStore) List(ctx context.Context) (_ []*billing.Coupon, err error) {
	defer func() { recordStoreOp(s.metrics, "coupon_list", err) }()

	query := `
		SELECT id, name, amount_off, percent_off, used_count, used_count_max, start_at, expire_at
		FROM coupons
		ORDER BY id
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list coupons: %w", err)
	}
	defer rows.Close()

	var coupons []*billing.Coupon
	for rows.Next() {
		var c billing.Coupon
		err := rows.Scan(
			&c.ID,
			&c.Name,
			&c.AmountOff,
			&c.PercentOff,
			&c.UsedCount,
			&c.UsedCountMax,
			&c.StartAt,
			&c.ExpireAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan coupon: %w", err)
		}
		coupons = append(coupons, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list coupons: %w", err)
	}
	return coupons, nil
}

// SweepExpired deletes coupons whose expiry passed before the given time.
func (s *CouponStore) SweepExpired(ctx context.Context, before time.Time) (_ int64, err error) {
	defer func() { recordStoreOp(s.metrics, "coupon_sweep", err) }()

	result, err := s.db.ExecContext(ctx, `DELETE FROM coupons WHERE expire_at IS NOT NULL AND expire_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep expired coupons: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to sweep expired coupons: %w", err)
	}
	return affected, nil
}
