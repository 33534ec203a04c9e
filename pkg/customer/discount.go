package customer

import "github.com/shopspring/decimal"

// DiscountKind discriminates the discount variants on the wire.
type DiscountKind string

const (
	DiscountPreviousSubscription DiscountKind = "DiscountPreviousSubscription"
	DiscountCoupon               DiscountKind = "DiscountCoupon"
)

// Discount is the tagged union over the two discount variants: a proration
// credit for a superseded subscription, and a coupon redemption.
type Discount interface {
	Kind() DiscountKind
	Base() *DiscountBase
}

// DiscountBase carries the fields every discount variant shares.
type DiscountBase struct {
	EntityID  string          `json:"entityId"`
	Processor ProcessorItem   `json:"processor"`
	Amount    decimal.Decimal `json:"amount"`
	Name      string          `json:"name,omitempty"`
}

// Base returns the shared discount fields.
func (b *DiscountBase) Base() *DiscountBase { return b }

// PreviousSubscriptionDiscount credits the unused value of a superseded
// lower-tier subscription onto its replacement.
type PreviousSubscriptionDiscount struct {
	DiscountBase
	SubscriptionID string `json:"subscriptionId"`
}

func (*PreviousSubscriptionDiscount) Kind() DiscountKind { return DiscountPreviousSubscription }

// CouponDiscount applies a coupon to a subscription. The coupon itself is
// an external entity referenced by id; its redemption count is maintained
// by the sync orchestrator, not by the discount.
type CouponDiscount struct {
	DiscountBase
	CouponID string `json:"couponId"`
}

func (*CouponDiscount) Kind() DiscountKind { return DiscountCoupon }
