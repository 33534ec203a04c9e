package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/enhancv/go-subscriptions/pkg/customer"
	"github.com/enhancv/go-subscriptions/pkg/observability"
)

// CustomerStore is the slice of local persistence the orchestrator needs.
type CustomerStore interface {
	Put(ctx context.Context, c *customer.Customer) error
}

// CouponCounter counts confirmed coupon redemptions. Satisfied by
// billing.CouponRepository.
type CouponCounter interface {
	IncrementUsage(ctx context.Context, id string) error
}

// SyncConfig wires a Sync orchestrator.
type SyncConfig struct {
	Gateway  Gateway
	Store    CustomerStore
	Registry *customer.Registry

	// Coupons is optional; without it confirmed coupon discounts are not
	// counted.
	Coupons CouponCounter
	// Logger defaults to an info-level JSON logger on stdout.
	Logger *observability.Logger
	// Metrics is optional.
	Metrics *observability.Metrics
}

// Sync orchestrates the four gateway operations for customer aggregates.
type Sync struct {
	gateway  Gateway
	store    CustomerStore
	registry *customer.Registry
	coupons  CouponCounter
	logger   *observability.Logger
	metrics  *observability.Metrics
}

// NewSync validates the configuration and builds an orchestrator.
func NewSync(cfg SyncConfig) (*Sync, error) {
	if cfg.Gateway == nil {
		return nil, fmt.Errorf("gateway is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = observability.NewLogger(observability.InfoLevel, nil)
	}
	return &Sync{
		gateway:  cfg.Gateway,
		store:    cfg.Store,
		registry: cfg.Registry,
		coupons:  cfg.Coupons,
		logger:   logger,
		metrics:  cfg.Metrics,
	}, nil
}

// LoadProcessor refreshes the aggregate from the gateway. A customer
// without a remote id is local-only: it is persisted unchanged and the
// gateway is never contacted. Otherwise the remote state is authoritative;
// locally-created entities the remote does not know about are pruned
// unless they are intentionally local.
func (s *Sync) LoadProcessor(ctx context.Context, c *customer.Customer) (*customer.Customer, error) {
	start := time.Now()

	if !c.Processor.Remote() {
		if err := c.TakeSnapshot(s.registry); err != nil {
			return nil, err
		}
		if err := s.store.Put(ctx, c); err != nil {
			return nil, fmt.Errorf("failed to persist local-only customer: %w", err)
		}
		s.observe("load", "local", start)
		return c, nil
	}

	remote, err := s.gateway.Load(ctx, c)
	if err != nil {
		s.observe("load", "error", start)
		return nil, &GatewayError{Op: "load", Err: err}
	}

	merged := mergeRemote(c, remote)
	if err := merged.TakeSnapshot(s.registry); err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, merged); err != nil {
		return nil, fmt.Errorf("failed to persist loaded customer: %w", err)
	}

	s.logger.WithField("customer_id", merged.EntityID).Debug("aggregate loaded from gateway")
	s.observe("load", "success", start)
	return merged, nil
}

// SaveProcessor pushes local changes to the gateway. The aggregate is
// validated first, remotely-known entities with pending edits are marked
// changed against the snapshot, and the gateway confirmation is
// reconciled forward-only into local state. On failure nothing local
// moves and the snapshot is kept for retry.
func (s *Sync) SaveProcessor(ctx context.Context, c *customer.Customer) (*customer.Customer, error) {
	start := time.Now()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := c.MarkChanged(s.registry); err != nil {
		return nil, err
	}

	confirmed, err := s.gateway.Save(ctx, c)
	if err != nil {
		s.observe("save", "error", start)
		return nil, &GatewayError{Op: "save", Err: err}
	}

	return s.finish(ctx, "save", start, c, confirmed)
}

// CancelProcessor cancels one subscription at the gateway and reconciles
// the confirmation.
func (s *Sync) CancelProcessor(ctx context.Context, c *customer.Customer, subscriptionID string) (*customer.Customer, error) {
	start := time.Now()

	if sub := c.SubscriptionByID(subscriptionID); sub == nil {
		return nil, &customer.ConsistencyError{Reference: "subscriptionId", TargetID: subscriptionID}
	}

	confirmed, err := s.gateway.CancelSubscription(ctx, c, subscriptionID)
	if err != nil {
		s.observe("cancel", "error", start)
		return nil, &GatewayError{Op: "cancelSubscription", Err: err}
	}

	return s.finish(ctx, "cancel", start, c, confirmed)
}

// RefundProcessor refunds part or all of one transaction at the gateway
// and reconciles the confirmation.
func (s *Sync) RefundProcessor(ctx context.Context, c *customer.Customer, transactionID string, amount decimal.Decimal) (*customer.Customer, error) {
	start := time.Now()

	if tx := c.TransactionByID(transactionID); tx == nil {
		return nil, &customer.ConsistencyError{Reference: "transactionId", TargetID: transactionID}
	}

	confirmed, err := s.gateway.RefundTransaction(ctx, c, transactionID, amount)
	if err != nil {
		s.observe("refund", "error", start)
		return nil, &GatewayError{Op: "refundTransaction", Err: err}
	}

	return s.finish(ctx, "refund", start, c, confirmed)
}

// finish reconciles a gateway confirmation, counts newly confirmed coupon
// redemptions, refreshes the snapshot and persists.
func (s *Sync) finish(ctx context.Context, op string, start time.Time, local, confirmed *customer.Customer) (*customer.Customer, error) {
	reconciled := reconcileConfirmed(local, confirmed)
	s.countRedemptions(ctx, local, reconciled)

	if err := reconciled.TakeSnapshot(s.registry); err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, reconciled); err != nil {
		return nil, fmt.Errorf("failed to persist synced customer: %w", err)
	}

	s.logger.WithField("customer_id", reconciled.EntityID).WithField("operation", op).Debug("aggregate synced")
	s.observe(op, "success", start)
	return reconciled, nil
}

// countRedemptions increments coupon usage for every coupon discount that
// the gateway confirmed for the first time in this sync. Counting happens
// here, at confirmation, so abandoned drafts never consume a redemption.
func (s *Sync) countRedemptions(ctx context.Context, local, reconciled *customer.Customer) {
	if s.coupons == nil {
		return
	}
	for _, sub := range reconciled.Subscriptions {
		localSub := local.SubscriptionByID(sub.EntityID)
		for _, d := range sub.Discounts {
			cd, ok := d.(*customer.CouponDiscount)
			if !ok || cd.Processor.State != customer.StateSaved {
				continue
			}
			if localSub == nil || wasSaved(localSub, cd.EntityID) {
				continue
			}
			if err := s.coupons.IncrementUsage(ctx, cd.CouponID); err != nil {
				s.logger.WithError(err).WithField("coupon_id", cd.CouponID).Warn("failed to count coupon redemption")
				continue
			}
			if s.metrics != nil {
				s.metrics.CouponRedemptionsTotal.Inc()
			}
		}
	}
}

// wasSaved reports whether the discount was already confirmed before this
// sync.
func wasSaved(sub *customer.Subscription, discountID string) bool {
	for _, d := range sub.Discounts {
		if d.Base().EntityID == discountID {
			return d.Base().Processor.State == customer.StateSaved
		}
	}
	return false
}

func (s *Sync) observe(op, status string, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveSync(op, status, time.Since(start))
}
