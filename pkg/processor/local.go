package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/enhancv/go-subscriptions/pkg/customer"
)

// LocalGateway simulates the remote payment processor in-process. Save
// assigns processor ids and activates pending subscriptions the way a real
// gateway would, without vaulting or charging anything. It backs
// development and test deployments; production swaps in a Gateway that
// talks to the actual processor.
type LocalGateway struct {
	registry *customer.Registry
}

// NewLocalGateway creates a simulation gateway that clones aggregates
// through the given registry.
func NewLocalGateway(registry *customer.Registry) *LocalGateway {
	return &LocalGateway{registry: registry}
}

// Load returns the aggregate as-is; the simulation has no remote state of
// its own.
func (g *LocalGateway) Load(ctx context.Context, c *customer.Customer) (*customer.Customer, error) {
	return g.registry.CloneCustomer(c)
}

// Save confirms every entity in the aggregate: missing processor ids are
// assigned and pending subscriptions become active.
func (g *LocalGateway) Save(ctx context.Context, c *customer.Customer) (*customer.Customer, error) {
	confirmed, err := g.registry.CloneCustomer(c)
	if err != nil {
		return nil, err
	}

	assignID(&confirmed.Processor)
	for _, a := range confirmed.Addresses {
		assignID(&a.Processor)
	}
	for _, pm := range confirmed.PaymentMethods {
		assignID(&pm.Base().Processor)
	}
	for _, s := range confirmed.Subscriptions {
		assignID(&s.Processor)
		for _, d := range s.Discounts {
			assignID(&d.Base().Processor)
		}
		if s.Status == "" || s.Status == customer.SubscriptionStatusPending {
			s.Status = customer.SubscriptionStatusActive
		}
	}
	for _, tx := range confirmed.Transactions {
		assignID(&tx.Base().Processor)
	}
	return confirmed, nil
}

// CancelSubscription marks the subscription canceled.
func (g *LocalGateway) CancelSubscription(ctx context.Context, c *customer.Customer, subscriptionID string) (*customer.Customer, error) {
	confirmed, err := g.registry.CloneCustomer(c)
	if err != nil {
		return nil, err
	}
	sub := confirmed.SubscriptionByID(subscriptionID)
	if sub == nil {
		return nil, fmt.Errorf("unknown subscription: %s", subscriptionID)
	}
	sub.Status = customer.SubscriptionStatusCanceled
	return confirmed, nil
}

// RefundTransaction adds the amount to the transaction's refunded total. A
// zero amount refunds the outstanding balance in full.
func (g *LocalGateway) RefundTransaction(ctx context.Context, c *customer.Customer, transactionID string, amount decimal.Decimal) (*customer.Customer, error) {
	confirmed, err := g.registry.CloneCustomer(c)
	if err != nil {
		return nil, err
	}
	tx := confirmed.TransactionByID(transactionID)
	if tx == nil {
		return nil, fmt.Errorf("unknown transaction: %s", transactionID)
	}

	base := tx.Base()
	remaining := base.Amount.Sub(base.RefundedAmount)
	if amount.IsZero() {
		amount = remaining
	}
	if amount.GreaterThan(remaining) {
		return nil, fmt.Errorf("refund %s exceeds refundable balance %s", amount, remaining)
	}

	base.RefundedAmount = base.RefundedAmount.Add(amount)
	if base.RefundedAmount.Equal(base.Amount) {
		base.Status = customer.TransactionStatusRefunded
	}

	refund := &customer.CreditCardTransaction{
		TransactionBase: customer.TransactionBase{
			EntityID:       uuid.NewString(),
			Processor:      customer.ProcessorItem{ID: uuid.NewString(), State: customer.StateSaved},
			Amount:         amount.Neg(),
			Status:         customer.TransactionStatusSettled,
			SubscriptionID: base.SubscriptionID,
			CreatedAt:      time.Now().UTC(),
		},
	}
	confirmed.Transactions = append(confirmed.Transactions, refund)
	return confirmed, nil
}

func assignID(item *customer.ProcessorItem) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	item.State = customer.StateSaved
}
