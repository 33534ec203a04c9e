package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/enhancv/go-subscriptions/pkg/customer"
)

// prorationPeriodDays is the standard month used to value the remaining
// paid window of a superseded subscription.
var prorationPeriodDays = decimal.NewFromInt(30)

// BuildPreviousSubscriptionDiscount computes a proration credit from the
// unused value of a superseded subscription: price scaled by the days left
// between asOf and the paid-through date over a 30-day month, capped at
// the full price. Returns nil when there is no candidate or no remaining
// value — a normal outcome, not an error.
func BuildPreviousSubscriptionDiscount(previous *customer.Subscription, asOf time.Time) *customer.PreviousSubscriptionDiscount {
	if previous == nil {
		return nil
	}
	remaining := previous.PaidThroughDate.Sub(asOf)
	if remaining <= 0 {
		return nil
	}
	days := decimal.NewFromFloat(remaining.Hours() / 24)
	credit := previous.Price.Mul(days).Div(prorationPeriodDays)
	if credit.GreaterThan(previous.Price) {
		credit = previous.Price
	}
	credit = credit.Round(2)
	if !credit.IsPositive() {
		return nil
	}
	return &customer.PreviousSubscriptionDiscount{
		DiscountBase: customer.DiscountBase{
			EntityID:  uuid.NewString(),
			Processor: customer.ProcessorItem{State: customer.StateInitial},
			Amount:    credit,
			Name:      "Refund for " + previous.Plan.Name,
		},
		SubscriptionID: previous.EntityID,
	}
}

// BuildCouponDiscount applies a coupon to a subscription after the
// eligibility checks. Any miss returns nil: an ineligible coupon is not an
// error.
//
// The startAt guard rejects a coupon whose start date is strictly before
// asOf. The direction is intentional and pinned by tests; do not flip it
// without revisiting the campaign rules that depend on it.
func BuildCouponDiscount(sub *customer.Subscription, coupon *Coupon, asOf time.Time) *customer.CouponDiscount {
	if sub == nil || coupon == nil {
		return nil
	}
	if coupon.Exhausted() {
		return nil
	}
	if coupon.StartAt != nil && coupon.StartAt.Before(asOf) {
		return nil
	}
	if coupon.ExpireAt != nil && coupon.ExpireAt.Before(asOf) {
		return nil
	}
	amount := coupon.CurrentAmount(sub).Round(2)
	if !amount.IsPositive() {
		return nil
	}
	return &customer.CouponDiscount{
		DiscountBase: customer.DiscountBase{
			EntityID:  uuid.NewString(),
			Processor: customer.ProcessorItem{State: customer.StateInitial},
			Amount:    amount,
			Name:      coupon.Name,
		},
		CouponID: coupon.ID,
	}
}
