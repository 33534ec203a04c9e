package customer

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// daysFrom builds a date relative to a fixed anchor so test subscriptions
// read as offsets.
var anchor = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func daysFrom(days int) time.Time {
	return anchor.AddDate(0, 0, days)
}

func testSub(id string, level int, firstBilling, paidThrough time.Time, status SubscriptionStatus) *Subscription {
	return &Subscription{
		SubscriptionData: SubscriptionData{
			EntityID:         id,
			Plan:             Plan{ID: id + "-plan", Level: level, Price: decimal.NewFromInt(10)},
			FirstBillingDate: firstBilling,
			PaidThroughDate:  paidThrough,
			Status:           status,
			Price:            decimal.NewFromInt(10),
		},
	}
}

func TestSubscriptionValidAt(t *testing.T) {
	tests := []struct {
		name  string
		sub   *Subscription
		valid bool
	}{
		{"active inside window", testSub("a", 1, daysFrom(-10), daysFrom(10), SubscriptionStatusActive), true},
		{"pending inside window", testSub("b", 1, daysFrom(-10), daysFrom(10), SubscriptionStatusPending), true},
		{"past due inside window", testSub("c", 1, daysFrom(-10), daysFrom(10), SubscriptionStatusPastDue), true},
		{"canceled", testSub("d", 1, daysFrom(-10), daysFrom(10), SubscriptionStatusCanceled), false},
		{"expired status", testSub("e", 1, daysFrom(-10), daysFrom(10), SubscriptionStatusExpired), false},
		{"not yet billed", testSub("f", 1, daysFrom(1), daysFrom(30), SubscriptionStatusActive), false},
		{"billing starts exactly now", testSub("g", 1, anchor, daysFrom(30), SubscriptionStatusActive), false},
		{"paid window over", testSub("h", 1, daysFrom(-30), daysFrom(-1), SubscriptionStatusActive), false},
		{"paid through exactly now", testSub("i", 1, daysFrom(-30), anchor, SubscriptionStatusActive), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sub.ValidAt(anchor); got != tt.valid {
				t.Errorf("Expected ValidAt=%v, got %v", tt.valid, got)
			}
		})
	}

	t.Run("deleted", func(t *testing.T) {
		sub := testSub("j", 1, daysFrom(-10), daysFrom(10), SubscriptionStatusActive)
		sub.Deleted = true
		if sub.ValidAt(anchor) {
			t.Error("Expected deleted subscription to be invalid")
		}
	})
}

func TestValidSubscriptionsOrdering(t *testing.T) {
	c := New("Jane Doe", "jane@example.com")
	c.Subscriptions = []*Subscription{
		testSub("low", 1, daysFrom(-10), daysFrom(10), SubscriptionStatusActive),
		testSub("high-short", 2, daysFrom(-10), daysFrom(5), SubscriptionStatusActive),
		testSub("high-long", 2, daysFrom(-10), daysFrom(20), SubscriptionStatusActive),
		testSub("invalid", 3, daysFrom(-10), daysFrom(-1), SubscriptionStatusActive),
	}

	valid := c.ValidSubscriptions(anchor)
	if len(valid) != 3 {
		t.Fatalf("Expected 3 valid subscriptions, got %d", len(valid))
	}

	// Highest tier first, ties broken by later paid-through date.
	want := []string{"high-long", "high-short", "low"}
	for i, id := range want {
		if valid[i].EntityID != id {
			t.Errorf("Expected %s at position %d, got %s", id, i, valid[i].EntityID)
		}
	}
}

func TestCurrentSubscription(t *testing.T) {
	c := New("Jane Doe", "jane@example.com")
	if c.CurrentSubscription(anchor) != nil {
		t.Error("Expected nil current subscription for empty customer")
	}

	c.Subscriptions = []*Subscription{
		testSub("low", 1, daysFrom(-10), daysFrom(10), SubscriptionStatusActive),
		testSub("high", 2, daysFrom(-10), daysFrom(10), SubscriptionStatusPastDue),
	}

	current := c.CurrentSubscription(anchor)
	if current == nil || current.EntityID != "high" {
		t.Error("Expected the highest-tier valid subscription to win")
	}
}

func TestActiveSubscriptions(t *testing.T) {
	c := New("Jane Doe", "jane@example.com")
	c.Subscriptions = []*Subscription{
		testSub("active", 1, daysFrom(-10), daysFrom(10), SubscriptionStatusActive),
		testSub("pending", 2, daysFrom(-10), daysFrom(10), SubscriptionStatusPending),
		testSub("past-due", 3, daysFrom(-10), daysFrom(10), SubscriptionStatusPastDue),
	}

	active := c.ActiveSubscriptions(anchor)
	if len(active) != 1 || active[0].EntityID != "active" {
		t.Errorf("Expected only the gateway-active subscription, got %d", len(active))
	}
}
