package processor

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/enhancv/go-subscriptions/pkg/customer"
)

func TestLocalGatewaySave(t *testing.T) {
	g := NewLocalGateway(customer.NewRegistry())

	c := customer.New("Jane Doe", "jane@example.com")
	c.PaymentMethods = []customer.PaymentMethod{
		&customer.CreditCard{PaymentMethodBase: customer.PaymentMethodBase{EntityID: "pm-1"}},
	}
	c.Subscriptions = []*customer.Subscription{
		{SubscriptionData: customer.SubscriptionData{
			EntityID: "sub-1",
			Status:   customer.SubscriptionStatusPending,
		}},
	}

	confirmed, err := g.Save(context.Background(), c)
	if err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	if confirmed == c {
		t.Fatal("Expected a confirmed copy, not the input aggregate")
	}
	if confirmed.Processor.ID == "" || confirmed.Processor.State != customer.StateSaved {
		t.Error("Expected the customer assigned an id and saved")
	}
	if confirmed.PaymentMethods[0].Base().Processor.ID == "" {
		t.Error("Expected the payment method assigned an id")
	}
	sub := confirmed.SubscriptionByID("sub-1")
	if sub.Status != customer.SubscriptionStatusActive {
		t.Errorf("Expected the pending subscription activated, got %q", sub.Status)
	}
}

func TestLocalGatewayCancel(t *testing.T) {
	g := NewLocalGateway(customer.NewRegistry())

	c := customer.New("Jane Doe", "jane@example.com")
	c.Subscriptions = []*customer.Subscription{
		{SubscriptionData: customer.SubscriptionData{
			EntityID: "sub-1",
			Status:   customer.SubscriptionStatusActive,
		}},
	}

	confirmed, err := g.CancelSubscription(context.Background(), c, "sub-1")
	if err != nil {
		t.Fatalf("Failed to cancel: %v", err)
	}
	if confirmed.SubscriptionByID("sub-1").Status != customer.SubscriptionStatusCanceled {
		t.Error("Expected the subscription canceled")
	}

	if _, err := g.CancelSubscription(context.Background(), c, "missing"); err == nil {
		t.Error("Expected an error for an unknown subscription")
	}
}

func TestLocalGatewayRefund(t *testing.T) {
	g := NewLocalGateway(customer.NewRegistry())

	newCustomer := func() *customer.Customer {
		c := customer.New("Jane Doe", "jane@example.com")
		c.Transactions = []customer.Transaction{
			&customer.CreditCardTransaction{TransactionBase: customer.TransactionBase{
				EntityID: "tx-1",
				Amount:   decimal.NewFromInt(20),
				Status:   customer.TransactionStatusSettled,
			}},
		}
		return c
	}

	t.Run("partial refund", func(t *testing.T) {
		confirmed, err := g.RefundTransaction(context.Background(), newCustomer(), "tx-1", decimal.NewFromInt(5))
		if err != nil {
			t.Fatalf("Failed to refund: %v", err)
		}
		tx := confirmed.TransactionByID("tx-1")
		if !tx.Base().RefundedAmount.Equal(decimal.NewFromInt(5)) {
			t.Errorf("Expected refunded amount 5, got %s", tx.Base().RefundedAmount)
		}
		if tx.Base().Status != customer.TransactionStatusSettled {
			t.Error("Expected a partially refunded transaction to stay settled")
		}
		if len(confirmed.Transactions) != 2 {
			t.Fatalf("Expected a refund record appended, got %d transactions", len(confirmed.Transactions))
		}
		refund := confirmed.Transactions[1].Base()
		if !refund.Amount.Equal(decimal.NewFromInt(-5)) {
			t.Errorf("Expected a negative refund amount, got %s", refund.Amount)
		}
	})

	t.Run("zero refunds in full", func(t *testing.T) {
		confirmed, err := g.RefundTransaction(context.Background(), newCustomer(), "tx-1", decimal.Zero)
		if err != nil {
			t.Fatalf("Failed to refund: %v", err)
		}
		tx := confirmed.TransactionByID("tx-1")
		if !tx.Base().RefundedAmount.Equal(decimal.NewFromInt(20)) {
			t.Errorf("Expected the full amount refunded, got %s", tx.Base().RefundedAmount)
		}
		if tx.Base().Status != customer.TransactionStatusRefunded {
			t.Errorf("Expected refunded status, got %q", tx.Base().Status)
		}
	})

	t.Run("over-refund rejected", func(t *testing.T) {
		if _, err := g.RefundTransaction(context.Background(), newCustomer(), "tx-1", decimal.NewFromInt(25)); err == nil {
			t.Error("Expected an error for a refund above the balance")
		}
	})

	t.Run("unknown transaction", func(t *testing.T) {
		if _, err := g.RefundTransaction(context.Background(), newCustomer(), "missing", decimal.NewFromInt(1)); err == nil {
			t.Error("Expected an error for an unknown transaction")
		}
	})
}
