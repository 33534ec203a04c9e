package billing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enhancv/go-subscriptions/pkg/customer"
)

var asOf = time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

func prevSub(price decimal.Decimal, paidThrough time.Time) *customer.Subscription {
	return &customer.Subscription{
		SubscriptionData: customer.SubscriptionData{
			EntityID:        "sub-prev",
			Plan:            customer.Plan{ID: "basic", Name: "Basic", Level: 1, Price: price},
			PaidThroughDate: paidThrough,
			Price:           price,
		},
	}
}

func TestBuildPreviousSubscriptionDiscount(t *testing.T) {
	t.Run("nil candidate", func(t *testing.T) {
		assert.Nil(t, BuildPreviousSubscriptionDiscount(nil, asOf))
	})

	t.Run("no remaining value", func(t *testing.T) {
		sub := prevSub(decimal.NewFromInt(30), asOf.AddDate(0, 0, -1))
		assert.Nil(t, BuildPreviousSubscriptionDiscount(sub, asOf), "no credit for an already expired window")
	})

	t.Run("half window prorates half the price", func(t *testing.T) {
		sub := prevSub(decimal.NewFromInt(30), asOf.AddDate(0, 0, 15))
		d := BuildPreviousSubscriptionDiscount(sub, asOf)
		require.NotNil(t, d)
		assert.True(t, d.Amount.Equal(decimal.NewFromInt(15)), "credit 15, got %s", d.Amount)
		assert.Equal(t, "sub-prev", d.SubscriptionID, "credit references the superseded subscription")
		assert.Equal(t, customer.StateInitial, d.Processor.State)
	})

	t.Run("credit capped at full price", func(t *testing.T) {
		sub := prevSub(decimal.NewFromInt(30), asOf.AddDate(0, 0, 45))
		d := BuildPreviousSubscriptionDiscount(sub, asOf)
		require.NotNil(t, d)
		assert.True(t, d.Amount.Equal(decimal.NewFromInt(30)), "credit capped at 30, got %s", d.Amount)
	})

	t.Run("credit rounded to cents", func(t *testing.T) {
		sub := prevSub(decimal.NewFromFloat(19.99), asOf.AddDate(0, 0, 7))
		d := BuildPreviousSubscriptionDiscount(sub, asOf)
		require.NotNil(t, d)
		assert.GreaterOrEqual(t, d.Amount.Exponent(), int32(-2), "cent-rounded credit, got %s", d.Amount)
	})
}

func couponSub() *customer.Subscription {
	return &customer.Subscription{
		SubscriptionData: customer.SubscriptionData{
			EntityID: "sub-1",
			Price:    decimal.NewFromInt(20),
		},
	}
}

func TestBuildCouponDiscount(t *testing.T) {
	t.Run("nil inputs", func(t *testing.T) {
		assert.Nil(t, BuildCouponDiscount(nil, &Coupon{}, asOf))
		assert.Nil(t, BuildCouponDiscount(couponSub(), nil, asOf))
	})

	t.Run("exhausted", func(t *testing.T) {
		coupon := &Coupon{ID: "c", AmountOff: decimal.NewFromInt(5), UsedCount: 3, UsedCountMax: 3}
		assert.Nil(t, BuildCouponDiscount(couponSub(), coupon, asOf))
	})

	t.Run("expired", func(t *testing.T) {
		expire := asOf.AddDate(0, 0, -1)
		coupon := &Coupon{ID: "c", AmountOff: decimal.NewFromInt(5), UsedCountMax: 10, ExpireAt: &expire}
		assert.Nil(t, BuildCouponDiscount(couponSub(), coupon, asOf))
	})

	t.Run("zero amount", func(t *testing.T) {
		coupon := &Coupon{ID: "c", UsedCountMax: 10}
		assert.Nil(t, BuildCouponDiscount(couponSub(), coupon, asOf), "a worthless coupon yields no discount")
	})

	t.Run("sub-cent amount rounds to zero", func(t *testing.T) {
		coupon := &Coupon{ID: "c", AmountOff: decimal.NewFromFloat(0.004), UsedCountMax: 10}
		assert.Nil(t, BuildCouponDiscount(couponSub(), coupon, asOf), "an amount that rounds to 0.00 yields no discount")
	})

	t.Run("fixed amount", func(t *testing.T) {
		coupon := &Coupon{ID: "c", Name: "FIVER", AmountOff: decimal.NewFromInt(5), UsedCountMax: 10}
		d := BuildCouponDiscount(couponSub(), coupon, asOf)
		require.NotNil(t, d)
		assert.True(t, d.Amount.Equal(decimal.NewFromInt(5)), "amount 5, got %s", d.Amount)
		assert.Equal(t, "c", d.CouponID)
		assert.Equal(t, "FIVER", d.Name)
	})

	t.Run("percent of price", func(t *testing.T) {
		coupon := &Coupon{ID: "c", PercentOff: decimal.NewFromInt(25), UsedCountMax: 10}
		d := BuildCouponDiscount(couponSub(), coupon, asOf)
		require.NotNil(t, d)
		assert.True(t, d.Amount.Equal(decimal.NewFromInt(5)), "25%% of 20 is 5, got %s", d.Amount)
	})

	t.Run("pluggable amount override", func(t *testing.T) {
		coupon := &Coupon{
			ID:           "c",
			UsedCountMax: 10,
			Amount: func(sub *customer.Subscription) decimal.Decimal {
				return sub.Price.Div(decimal.NewFromInt(2))
			},
		}
		d := BuildCouponDiscount(couponSub(), coupon, asOf)
		require.NotNil(t, d)
		assert.True(t, d.Amount.Equal(decimal.NewFromInt(10)), "half price 10, got %s", d.Amount)
	})
}

// TestCouponBuildStartWindow pins the direction of the start-date guard: a
// campaign whose start date has already passed is rejected, one starting in
// the future is accepted. Campaign rules depend on this orientation.
func TestCouponBuildStartWindow(t *testing.T) {
	started := asOf.AddDate(0, 0, -1)
	coupon := &Coupon{ID: "c", AmountOff: decimal.NewFromInt(5), UsedCountMax: 10, StartAt: &started}
	assert.Nil(t, BuildCouponDiscount(couponSub(), coupon, asOf), "a coupon whose start date has passed is rejected")

	upcoming := asOf.AddDate(0, 0, 1)
	coupon.StartAt = &upcoming
	assert.NotNil(t, BuildCouponDiscount(couponSub(), coupon, asOf), "a coupon starting in the future is accepted")
}
