package billing

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/enhancv/go-subscriptions/pkg/customer"
)

// ErrCouponNotFound is returned by repositories when a coupon id does not
// exist.
var ErrCouponNotFound = errors.New("coupon not found")

// AmountFunc computes the discount amount a coupon grants for a given
// subscription. It lets campaign-specific pricing plug in without touching
// the engine.
type AmountFunc func(sub *customer.Subscription) decimal.Decimal

// Coupon is an externally-managed discount campaign. It is not part of the
// customer aggregate; discounts reference it by id.
type Coupon struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	AmountOff    decimal.Decimal `json:"amountOff"`
	PercentOff   decimal.Decimal `json:"percentOff"`
	UsedCount    int             `json:"usedCount"`
	UsedCountMax int             `json:"usedCountMax"`
	StartAt      *time.Time      `json:"startAt,omitempty"`
	ExpireAt     *time.Time      `json:"expireAt,omitempty"`

	// Amount overrides the built-in amount computation when set. Not
	// persisted; wired in by whoever owns the campaign logic.
	Amount AmountFunc `json:"-"`
}

// CurrentAmount computes the value this coupon grants for the given
// subscription: the pluggable override when present, else a percentage of
// the subscription price, else the fixed amount.
func (c *Coupon) CurrentAmount(sub *customer.Subscription) decimal.Decimal {
	if c.Amount != nil {
		return c.Amount(sub)
	}
	if c.PercentOff.IsPositive() {
		return sub.Price.Mul(c.PercentOff).Div(decimal.NewFromInt(100))
	}
	return c.AmountOff
}

// Exhausted reports whether the redemption budget is spent.
func (c *Coupon) Exhausted() bool {
	return c.UsedCount >= c.UsedCountMax
}

// CouponRepository is the external store coupons resolve through.
type CouponRepository interface {
	// Get fetches a coupon by id, returning ErrCouponNotFound when it
	// does not exist.
	Get(ctx context.Context, id string) (*Coupon, error)
	// IncrementUsage counts one redemption. Called exactly once per
	// discount, when the gateway first confirms it.
	IncrementUsage(ctx context.Context, id string) error
}
