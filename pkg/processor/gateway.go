package processor

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/enhancv/go-subscriptions/pkg/customer"
)

// Gateway is the remote payment processor collaborator. Implementations
// own transport, authentication and timeouts; the orchestrator only
// assumes that each call either returns the authoritative updated
// aggregate or fails without partial effect.
type Gateway interface {
	// Load fetches the authoritative remote state of the customer.
	Load(ctx context.Context, c *customer.Customer) (*customer.Customer, error)
	// Save pushes local changes and returns the confirmed state, with
	// remote ids assigned to newly created entities.
	Save(ctx context.Context, c *customer.Customer) (*customer.Customer, error)
	// CancelSubscription cancels one subscription remotely.
	CancelSubscription(ctx context.Context, c *customer.Customer, subscriptionID string) (*customer.Customer, error)
	// RefundTransaction refunds part or all of one transaction remotely.
	RefundTransaction(ctx context.Context, c *customer.Customer, transactionID string, amount decimal.Decimal) (*customer.Customer, error)
}

// GatewayError wraps a failure from the gateway collaborator. The
// underlying error is propagated unchanged through Unwrap; the operation
// name contextualizes logs and metrics.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway %s failed: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
