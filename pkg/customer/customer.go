package customer

import (
	"regexp"

	"github.com/google/uuid"
)

// emailPattern is deliberately loose; full contact validation is out of
// scope for the aggregate.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// CustomerData holds the scalar fields of the aggregate root. It is split
// out so the wire envelope and the aggregate can share one declaration.
type CustomerData struct {
	EntityID               string        `json:"entityId"`
	Name                   string        `json:"name"`
	Email                  string        `json:"email"`
	Phone                  string        `json:"phone,omitempty"`
	IPAddress              string        `json:"ipAddress,omitempty"`
	DefaultPaymentMethodID string        `json:"defaultPaymentMethodId,omitempty"`
	Processor              ProcessorItem `json:"processor"`
}

// Customer is the aggregate root. It exclusively owns every nested
// collection; references between nested entities are non-owning ids
// resolved by lookup within the same aggregate.
type Customer struct {
	CustomerData
	Addresses      []*Address
	PaymentMethods []PaymentMethod
	Subscriptions  []*Subscription
	Transactions   []Transaction

	// Shadow copy taken at load time, used for change detection and as
	// retry context after a failed push. Never serialized.
	snapshot *snapshot
}

// New creates a locally-identified customer that the gateway does not know
// about yet.
func New(name, email string) *Customer {
	return &Customer{
		CustomerData: CustomerData{
			EntityID:  uuid.NewString(),
			Name:      name,
			Email:     email,
			Processor: ProcessorItem{State: StateInitial},
		},
	}
}

// Address is a billing address owned by the customer.
type Address struct {
	EntityID   string        `json:"entityId"`
	Processor  ProcessorItem `json:"processor"`
	Company    string        `json:"company,omitempty"`
	Street     string        `json:"street,omitempty"`
	Locality   string        `json:"locality,omitempty"`
	Region     string        `json:"region,omitempty"`
	PostalCode string        `json:"postalCode,omitempty"`
	Country    string        `json:"country,omitempty"`
}

// AddressByID resolves an address by local entity id or remote processor
// id. Returns nil when nothing matches.
func (c *Customer) AddressByID(id string) *Address {
	if id == "" {
		return nil
	}
	for _, a := range c.Addresses {
		if a.EntityID == id || a.Processor.ID == id {
			return a
		}
	}
	return nil
}

// PaymentMethodByID resolves a payment method by local entity id, remote
// processor id or token. Returns nil when nothing matches.
func (c *Customer) PaymentMethodByID(id string) PaymentMethod {
	if id == "" {
		return nil
	}
	for _, pm := range c.PaymentMethods {
		base := pm.Base()
		if base.EntityID == id || base.Processor.ID == id || base.Token == id {
			return pm
		}
	}
	return nil
}

// SubscriptionByID resolves a subscription by local entity id or remote
// processor id. Returns nil when nothing matches.
func (c *Customer) SubscriptionByID(id string) *Subscription {
	if id == "" {
		return nil
	}
	for _, s := range c.Subscriptions {
		if s.EntityID == id || s.Processor.ID == id {
			return s
		}
	}
	return nil
}

// TransactionByID resolves a transaction by local entity id or remote
// processor id. Returns nil when nothing matches.
func (c *Customer) TransactionByID(id string) Transaction {
	if id == "" {
		return nil
	}
	for _, tx := range c.Transactions {
		base := tx.Base()
		if base.EntityID == id || base.Processor.ID == id {
			return tx
		}
	}
	return nil
}

// DefaultPaymentMethod resolves the default payment method reference, or
// nil when unset.
func (c *Customer) DefaultPaymentMethod() PaymentMethod {
	return c.PaymentMethodByID(c.DefaultPaymentMethodID)
}

// Validate checks the identity fields and the internal reference
// invariants of the aggregate. Identity problems return *ValidationError;
// dangling references return *ConsistencyError.
func (c *Customer) Validate() error {
	if c.Name == "" {
		return &ValidationError{Field: "name", Reason: "required"}
	}
	if c.Email == "" {
		return &ValidationError{Field: "email", Reason: "required"}
	}
	if !emailPattern.MatchString(c.Email) {
		return &ValidationError{Field: "email", Reason: "malformed"}
	}
	if c.DefaultPaymentMethodID != "" && c.PaymentMethodByID(c.DefaultPaymentMethodID) == nil {
		return &ConsistencyError{Reference: "defaultPaymentMethodId", TargetID: c.DefaultPaymentMethodID}
	}
	for _, pm := range c.PaymentMethods {
		base := pm.Base()
		if base.BillingAddressID != "" && c.AddressByID(base.BillingAddressID) == nil {
			return &ConsistencyError{Reference: "billingAddressId", TargetID: base.BillingAddressID}
		}
	}
	for _, s := range c.Subscriptions {
		if s.PaymentMethodID != "" && c.PaymentMethodByID(s.PaymentMethodID) == nil {
			return &ConsistencyError{Reference: "paymentMethodId", TargetID: s.PaymentMethodID}
		}
	}
	return nil
}
