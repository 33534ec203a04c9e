package billing

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/enhancv/go-subscriptions/pkg/customer"
)

// Factory creates subscriptions on a customer aggregate, consulting the
// subscription selector for tier conflicts and the discount engine for
// credits.
type Factory struct {
	coupons CouponRepository
	now     func() time.Time
}

// NewFactory builds a factory. The coupon repository may be nil when
// coupon redemption is not wired.
func NewFactory(coupons CouponRepository) *Factory {
	return &Factory{coupons: coupons, now: time.Now}
}

// AddSubscription creates a subscription for the plan and appends it to
// the aggregate. activeDate defaults to now.
//
// Valid non-trial subscriptions at or above the new tier push the first
// billing date to the earliest moment they are all paid through, so the
// customer is never billed twice for an entitlement they already hold.
// The best lower-tier subscription, when one exists, yields a single
// proration credit — multiple refundable candidates are never combined.
func (f *Factory) AddSubscription(c *customer.Customer, plan customer.Plan, paymentMethod customer.PaymentMethod, activeDate time.Time) *customer.Subscription {
	if activeDate.IsZero() {
		activeDate = f.now().UTC()
	}

	var nonTrial []*customer.Subscription
	for _, s := range c.ValidSubscriptions(activeDate) {
		if !s.IsTrial {
			nonTrial = append(nonTrial, s)
		}
	}

	var waitFor, refundable []*customer.Subscription
	for _, s := range nonTrial {
		switch {
		case s.Plan.Level >= plan.Level:
			waitFor = append(waitFor, s)
		case s.Processor.State != customer.StateLocal:
			refundable = append(refundable, s)
		}
	}
	sortRefundable(refundable)

	firstBillingDate := activeDate
	haveWaitFor := false
	for _, s := range waitFor {
		if !haveWaitFor || s.PaidThroughDate.Before(firstBillingDate) {
			firstBillingDate = s.PaidThroughDate
			haveWaitFor = true
		}
	}

	sub := &customer.Subscription{
		SubscriptionData: customer.SubscriptionData{
			EntityID:         uuid.NewString(),
			Processor:        customer.ProcessorItem{State: customer.StateInitial},
			Plan:             plan,
			FirstBillingDate: firstBillingDate,
			Status:           customer.SubscriptionStatusPending,
			Price:            plan.Price,
		},
	}

	if len(refundable) > 0 {
		if d := BuildPreviousSubscriptionDiscount(refundable[0], activeDate); d != nil {
			sub.Discounts = append(sub.Discounts, d)
		}
	}
	if paymentMethod != nil {
		sub.PaymentMethodID = paymentMethod.Base().EntityID
	}

	c.Subscriptions = append(c.Subscriptions, sub)
	return sub
}

// RedeemCoupon resolves a coupon and attaches its discount to the
// subscription. An ineligible coupon returns (nil, nil); the redemption is
// not counted here but at sync confirmation.
func (f *Factory) RedeemCoupon(ctx context.Context, sub *customer.Subscription, couponID string, asOf time.Time) (*customer.CouponDiscount, error) {
	if f.coupons == nil {
		return nil, fmt.Errorf("no coupon repository configured")
	}
	if asOf.IsZero() {
		asOf = f.now().UTC()
	}
	coupon, err := f.coupons.Get(ctx, couponID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve coupon %q: %w", couponID, err)
	}
	d := BuildCouponDiscount(sub, coupon, asOf)
	if d == nil {
		return nil, nil
	}
	sub.Discounts = append(sub.Discounts, d)
	return d, nil
}

// sortRefundable imposes a total order on refund candidates: paid-through
// date descending, then plan level descending, then entity id ascending.
// Only the first entry receives a credit, so the order must be stable and
// total.
func sortRefundable(subs []*customer.Subscription) {
	sort.SliceStable(subs, func(i, j int) bool {
		if !subs[i].PaidThroughDate.Equal(subs[j].PaidThroughDate) {
			return subs[i].PaidThroughDate.After(subs[j].PaidThroughDate)
		}
		if subs[i].Plan.Level != subs[j].Plan.Level {
			return subs[i].Plan.Level > subs[j].Plan.Level
		}
		return subs[i].EntityID < subs[j].EntityID
	})
}
