package customer

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// snapshot is the shadow copy of the aggregate taken at load time. It
// stores the canonical serialization of the whole aggregate (retry
// context) plus per-entity bytes keyed by entity id (structural diff).
type snapshot struct {
	aggregate []byte
	identity  []byte
	entities  map[string][]byte
}

// identityFields are the customer-level fields whose mutation marks the
// customer itself as changed.
type identityFields struct {
	Name                   string `json:"name"`
	Email                  string `json:"email"`
	Phone                  string `json:"phone"`
	IPAddress              string `json:"ipAddress"`
	DefaultPaymentMethodID string `json:"defaultPaymentMethodId"`
}

func (c *Customer) identity() identityFields {
	return identityFields{
		Name:                   c.Name,
		Email:                  c.Email,
		Phone:                  c.Phone,
		IPAddress:              c.IPAddress,
		DefaultPaymentMethodID: c.DefaultPaymentMethodID,
	}
}

// TakeSnapshot captures the current state of the aggregate as the new
// last-persisted reference. Call it after a load or a confirmed sync,
// never between a mutation and the push that persists it.
func (c *Customer) TakeSnapshot(reg *Registry) error {
	aggregate, err := reg.EncodeCustomer(c)
	if err != nil {
		return fmt.Errorf("failed to snapshot aggregate: %w", err)
	}
	identity, err := json.Marshal(c.identity())
	if err != nil {
		return fmt.Errorf("failed to snapshot identity: %w", err)
	}

	entities := make(map[string][]byte)
	for _, a := range c.Addresses {
		raw, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("failed to snapshot address %s: %w", a.EntityID, err)
		}
		entities["address/"+a.EntityID] = raw
	}
	for _, pm := range c.PaymentMethods {
		raw, err := reg.EncodePaymentMethod(pm)
		if err != nil {
			return err
		}
		entities["paymentMethod/"+pm.Base().EntityID] = raw
	}
	for _, s := range c.Subscriptions {
		raw, err := reg.EncodeSubscription(s)
		if err != nil {
			return err
		}
		entities["subscription/"+s.EntityID] = raw
	}

	c.snapshot = &snapshot{aggregate: aggregate, identity: identity, entities: entities}
	return nil
}

// HasSnapshot reports whether a shadow copy is held.
func (c *Customer) HasSnapshot() bool {
	return c.snapshot != nil
}

// ClearSnapshot drops the shadow copy.
func (c *Customer) ClearSnapshot() {
	c.snapshot = nil
}

// SnapshotState decodes the shadow copy back into an aggregate, giving
// callers the pre-mutation state for inspection after a failed push.
// Returns nil when no snapshot is held.
func (c *Customer) SnapshotState(reg *Registry) (*Customer, error) {
	if c.snapshot == nil {
		return nil, nil
	}
	return reg.DecodeCustomer(c.snapshot.aggregate)
}

// MarkChanged diffs the aggregate against the shadow copy and promotes
// every remotely-known entity whose content differs to the changed state.
// Entities without a processor id stay initial: they will be pushed as
// creations, not updates. Without a snapshot every remotely-known entity
// is considered changed.
func (c *Customer) MarkChanged(reg *Registry) error {
	if c.Processor.Remote() {
		current, err := json.Marshal(c.identity())
		if err != nil {
			return fmt.Errorf("failed to diff identity: %w", err)
		}
		if c.snapshot == nil || !bytes.Equal(current, c.snapshot.identity) {
			c.Processor.MarkChanged()
		}
	}

	for _, a := range c.Addresses {
		if !a.Processor.Remote() {
			continue
		}
		current, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("failed to diff address %s: %w", a.EntityID, err)
		}
		if c.entityChanged("address/"+a.EntityID, current) {
			a.Processor.MarkChanged()
		}
	}
	for _, pm := range c.PaymentMethods {
		base := pm.Base()
		if !base.Processor.Remote() {
			continue
		}
		current, err := reg.EncodePaymentMethod(pm)
		if err != nil {
			return err
		}
		if c.entityChanged("paymentMethod/"+base.EntityID, current) {
			base.Processor.MarkChanged()
		}
	}
	for _, s := range c.Subscriptions {
		if !s.Processor.Remote() {
			continue
		}
		current, err := reg.EncodeSubscription(s)
		if err != nil {
			return err
		}
		if c.entityChanged("subscription/"+s.EntityID, current) {
			s.Processor.MarkChanged()
		}
	}
	return nil
}

func (c *Customer) entityChanged(key string, current []byte) bool {
	if c.snapshot == nil {
		return true
	}
	previous, ok := c.snapshot.entities[key]
	if !ok {
		return true
	}
	return !bytes.Equal(previous, current)
}
