package customer

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// SubscriptionStatus is the gateway-reported lifecycle state of a
// subscription.
type SubscriptionStatus string

const (
	SubscriptionStatusPending  SubscriptionStatus = "Pending"
	SubscriptionStatusActive   SubscriptionStatus = "Active"
	SubscriptionStatusPastDue  SubscriptionStatus = "PastDue"
	SubscriptionStatusCanceled SubscriptionStatus = "Canceled"
	SubscriptionStatusExpired  SubscriptionStatus = "Expired"
)

// aliveStatuses are the statuses that still count toward the customer's
// current entitlement: pending and past-due subscriptions block an
// equal-tier repurchase just like active ones.
var aliveStatuses = map[SubscriptionStatus]bool{
	SubscriptionStatusPending: true,
	SubscriptionStatusActive:  true,
	SubscriptionStatusPastDue: true,
}

// Plan describes a purchasable subscription tier. Level is a total order
// used to detect upgrades and downgrades.
type Plan struct {
	ID    string          `json:"id"`
	Name  string          `json:"name,omitempty"`
	Level int             `json:"level"`
	Price decimal.Decimal `json:"price"`
}

// SubscriptionData holds the scalar fields of a subscription, shared
// between the entity and its wire envelope.
type SubscriptionData struct {
	EntityID         string             `json:"entityId"`
	Processor        ProcessorItem      `json:"processor"`
	Plan             Plan               `json:"plan"`
	PaymentMethodID  string             `json:"paymentMethodId,omitempty"`
	FirstBillingDate time.Time          `json:"firstBillingDate"`
	PaidThroughDate  time.Time          `json:"paidThroughDate"`
	Status           SubscriptionStatus `json:"status"`
	Price            decimal.Decimal    `json:"price"`
	IsTrial          bool               `json:"isTrial"`
	Deleted          bool               `json:"deleted"`
}

// Subscription is a plan purchase owned by the customer. Discounts are
// owned by exactly one subscription.
type Subscription struct {
	SubscriptionData
	Discounts []Discount
}

// ValidAt reports whether the subscription counts as of the given date:
// not deleted, already billed, still inside its paid window and in a
// still-alive status.
func (s *Subscription) ValidAt(asOf time.Time) bool {
	if s.Deleted {
		return false
	}
	if !s.FirstBillingDate.Before(asOf) {
		return false
	}
	if s.PaidThroughDate.Before(asOf) {
		return false
	}
	return aliveStatuses[s.Status]
}

// ValidSubscriptions returns the subscriptions that count as of the given
// date, ordered by plan level descending with ties broken by paid-through
// date descending: the highest tier still in its paid window wins, and
// among equal tiers the one paid furthest into the future.
func (c *Customer) ValidSubscriptions(asOf time.Time) []*Subscription {
	var valid []*Subscription
	for _, s := range c.Subscriptions {
		if s.ValidAt(asOf) {
			valid = append(valid, s)
		}
	}
	sort.SliceStable(valid, func(i, j int) bool {
		if valid[i].Plan.Level != valid[j].Plan.Level {
			return valid[i].Plan.Level > valid[j].Plan.Level
		}
		return valid[i].PaidThroughDate.After(valid[j].PaidThroughDate)
	})
	return valid
}

// ActiveSubscriptions restricts ValidSubscriptions to gateway-active
// subscriptions, preserving the ordering.
func (c *Customer) ActiveSubscriptions(asOf time.Time) []*Subscription {
	var active []*Subscription
	for _, s := range c.ValidSubscriptions(asOf) {
		if s.Status == SubscriptionStatusActive {
			active = append(active, s)
		}
	}
	return active
}

// CurrentSubscription returns the highest-priority valid subscription as of
// the given date, or nil when the customer has none.
func (c *Customer) CurrentSubscription(asOf time.Time) *Subscription {
	valid := c.ValidSubscriptions(asOf)
	if len(valid) == 0 {
		return nil
	}
	return valid[0]
}
