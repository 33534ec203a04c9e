package customer

import "testing"

// savedCustomer builds an aggregate whose entities are all confirmed by
// the gateway, as after a load.
func savedCustomer(t *testing.T, reg *Registry) *Customer {
	t.Helper()
	c := New("Jane Doe", "jane@example.com")
	c.Processor = ProcessorItem{ID: "gw-cust", State: StateSaved}
	c.Addresses = []*Address{
		{EntityID: "addr-1", Processor: ProcessorItem{ID: "gw-addr", State: StateSaved}, Street: "1 Main St"},
	}
	c.PaymentMethods = []PaymentMethod{
		&CreditCard{PaymentMethodBase: PaymentMethodBase{
			EntityID:  "pm-1",
			Processor: ProcessorItem{ID: "gw-pm", State: StateSaved},
		}},
	}
	c.Subscriptions = []*Subscription{
		{SubscriptionData: SubscriptionData{
			EntityID:  "sub-1",
			Processor: ProcessorItem{ID: "gw-sub", State: StateSaved},
			Status:    SubscriptionStatusActive,
		}},
	}
	if err := c.TakeSnapshot(reg); err != nil {
		t.Fatalf("Failed to take snapshot: %v", err)
	}
	return c
}

func TestMarkChangedUnmodified(t *testing.T) {
	reg := NewRegistry()
	c := savedCustomer(t, reg)

	if err := c.MarkChanged(reg); err != nil {
		t.Fatalf("Failed to diff: %v", err)
	}

	if c.Processor.State != StateSaved {
		t.Errorf("Expected unmodified customer to stay saved, got %q", c.Processor.State)
	}
	if c.Addresses[0].Processor.State != StateSaved {
		t.Errorf("Expected unmodified address to stay saved, got %q", c.Addresses[0].Processor.State)
	}
}

func TestMarkChangedIdentity(t *testing.T) {
	reg := NewRegistry()
	c := savedCustomer(t, reg)

	c.Email = "new@example.com"
	if err := c.MarkChanged(reg); err != nil {
		t.Fatalf("Failed to diff: %v", err)
	}

	if c.Processor.State != StateChanged {
		t.Errorf("Expected customer to be marked changed, got %q", c.Processor.State)
	}
	if c.Addresses[0].Processor.State != StateSaved {
		t.Error("Expected untouched address to stay saved")
	}
}

func TestMarkChangedSingleEntity(t *testing.T) {
	reg := NewRegistry()
	c := savedCustomer(t, reg)

	c.Addresses[0].Street = "2 Side St"
	if err := c.MarkChanged(reg); err != nil {
		t.Fatalf("Failed to diff: %v", err)
	}

	if c.Addresses[0].Processor.State != StateChanged {
		t.Errorf("Expected modified address to be changed, got %q", c.Addresses[0].Processor.State)
	}
	if c.Processor.State != StateSaved {
		t.Error("Expected customer identity to stay saved")
	}
	if c.Subscriptions[0].Processor.State != StateSaved {
		t.Error("Expected untouched subscription to stay saved")
	}
}

func TestMarkChangedWithoutSnapshot(t *testing.T) {
	reg := NewRegistry()
	c := savedCustomer(t, reg)
	c.ClearSnapshot()

	if err := c.MarkChanged(reg); err != nil {
		t.Fatalf("Failed to diff: %v", err)
	}

	// No reference to diff against: every remotely-known entity is
	// conservatively considered changed.
	if c.Processor.State != StateChanged {
		t.Error("Expected customer to be marked changed without a snapshot")
	}
	if c.Addresses[0].Processor.State != StateChanged {
		t.Error("Expected address to be marked changed without a snapshot")
	}
}

func TestMarkChangedSkipsInitialEntities(t *testing.T) {
	reg := NewRegistry()
	c := savedCustomer(t, reg)
	c.Addresses = append(c.Addresses, &Address{
		EntityID:  "addr-2",
		Processor: ProcessorItem{State: StateInitial},
	})

	if err := c.MarkChanged(reg); err != nil {
		t.Fatalf("Failed to diff: %v", err)
	}

	// Entities unknown to the gateway push as creations, not updates.
	if c.Addresses[1].Processor.State != StateInitial {
		t.Errorf("Expected new address to stay initial, got %q", c.Addresses[1].Processor.State)
	}
}

func TestSnapshotState(t *testing.T) {
	reg := NewRegistry()
	c := savedCustomer(t, reg)

	c.Name = "Mutated"
	previous, err := c.SnapshotState(reg)
	if err != nil {
		t.Fatalf("Failed to decode snapshot: %v", err)
	}
	if previous == nil || previous.Name != "Jane Doe" {
		t.Error("Expected the pre-mutation state from the snapshot")
	}

	c.ClearSnapshot()
	if c.HasSnapshot() {
		t.Error("Expected no snapshot after clear")
	}
	previous, err = c.SnapshotState(reg)
	if err != nil || previous != nil {
		t.Errorf("Expected (nil, nil) without a snapshot, got (%v, %v)", previous, err)
	}
}
