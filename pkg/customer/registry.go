package customer

import (
	"encoding/json"
	"fmt"
)

// tagField is the wire discriminator for union variants.
const tagField = "__t"

// Registry maps variant tags to factories for the three tagged unions in
// the aggregate. Construct one with NewRegistry at process start and pass
// it by reference; the package keeps no global state.
type Registry struct {
	paymentMethods map[PaymentMethodKind]func() PaymentMethod
	transactions   map[TransactionKind]func() Transaction
	discounts      map[DiscountKind]func() Discount
}

// NewRegistry returns a registry with every built-in variant registered.
func NewRegistry() *Registry {
	r := &Registry{
		paymentMethods: make(map[PaymentMethodKind]func() PaymentMethod),
		transactions:   make(map[TransactionKind]func() Transaction),
		discounts:      make(map[DiscountKind]func() Discount),
	}

	r.RegisterPaymentMethod(PaymentMethodCreditCard, func() PaymentMethod { return &CreditCard{} })
	r.RegisterPaymentMethod(PaymentMethodPayPalAccount, func() PaymentMethod { return &PayPalAccount{} })
	r.RegisterPaymentMethod(PaymentMethodApplePayCard, func() PaymentMethod { return &ApplePayCard{} })
	r.RegisterPaymentMethod(PaymentMethodAndroidPayCard, func() PaymentMethod { return &AndroidPayCard{} })

	r.RegisterTransaction(TransactionCreditCard, func() Transaction { return &CreditCardTransaction{} })
	r.RegisterTransaction(TransactionPayPalAccount, func() Transaction { return &PayPalAccountTransaction{} })
	r.RegisterTransaction(TransactionApplePayCard, func() Transaction { return &ApplePayCardTransaction{} })
	r.RegisterTransaction(TransactionAndroidPayCard, func() Transaction { return &AndroidPayCardTransaction{} })

	r.RegisterDiscount(DiscountPreviousSubscription, func() Discount { return &PreviousSubscriptionDiscount{} })
	r.RegisterDiscount(DiscountCoupon, func() Discount { return &CouponDiscount{} })

	return r
}

// RegisterPaymentMethod adds or replaces a payment method variant.
func (r *Registry) RegisterPaymentMethod(kind PaymentMethodKind, factory func() PaymentMethod) {
	r.paymentMethods[kind] = factory
}

// RegisterTransaction adds or replaces a transaction variant.
func (r *Registry) RegisterTransaction(kind TransactionKind, factory func() Transaction) {
	r.transactions[kind] = factory
}

// RegisterDiscount adds or replaces a discount variant.
func (r *Registry) RegisterDiscount(kind DiscountKind, factory func() Discount) {
	r.discounts[kind] = factory
}

// encodeTagged serializes a variant and injects the discriminator. The
// intermediate map keeps the output canonical: encoding/json sorts map
// keys, so identical values always produce identical bytes.
func encodeTagged(tag string, v interface{}) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", tag, err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("failed to reshape %s: %w", tag, err)
	}
	tagJSON, err := json.Marshal(tag)
	if err != nil {
		return nil, err
	}
	fields[tagField] = tagJSON
	return json.Marshal(fields)
}

// decodeTag extracts the discriminator from an encoded variant.
func decodeTag(data []byte) (string, error) {
	var envelope struct {
		Tag string `json:"__t"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return "", fmt.Errorf("failed to read variant tag: %w", err)
	}
	if envelope.Tag == "" {
		return "", fmt.Errorf("missing variant tag %q", tagField)
	}
	return envelope.Tag, nil
}

// EncodePaymentMethod serializes a payment method with its discriminator.
func (r *Registry) EncodePaymentMethod(pm PaymentMethod) ([]byte, error) {
	return encodeTagged(string(pm.Kind()), pm)
}

// DecodePaymentMethod deserializes a payment method, dispatching on the
// discriminator.
func (r *Registry) DecodePaymentMethod(data []byte) (PaymentMethod, error) {
	tag, err := decodeTag(data)
	if err != nil {
		return nil, err
	}
	factory, ok := r.paymentMethods[PaymentMethodKind(tag)]
	if !ok {
		return nil, fmt.Errorf("unknown payment method variant %q", tag)
	}
	pm := factory()
	if err := json.Unmarshal(data, pm); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payment method %q: %w", tag, err)
	}
	return pm, nil
}

// EncodeTransaction serializes a transaction with its discriminator.
func (r *Registry) EncodeTransaction(tx Transaction) ([]byte, error) {
	return encodeTagged(string(tx.Kind()), tx)
}

// DecodeTransaction deserializes a transaction, dispatching on the
// discriminator.
func (r *Registry) DecodeTransaction(data []byte) (Transaction, error) {
	tag, err := decodeTag(data)
	if err != nil {
		return nil, err
	}
	factory, ok := r.transactions[TransactionKind(tag)]
	if !ok {
		return nil, fmt.Errorf("unknown transaction variant %q", tag)
	}
	tx := factory()
	if err := json.Unmarshal(data, tx); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transaction %q: %w", tag, err)
	}
	return tx, nil
}

// EncodeDiscount serializes a discount with its discriminator.
func (r *Registry) EncodeDiscount(d Discount) ([]byte, error) {
	return encodeTagged(string(d.Kind()), d)
}

// DecodeDiscount deserializes a discount, dispatching on the discriminator.
func (r *Registry) DecodeDiscount(data []byte) (Discount, error) {
	tag, err := decodeTag(data)
	if err != nil {
		return nil, err
	}
	factory, ok := r.discounts[DiscountKind(tag)]
	if !ok {
		return nil, fmt.Errorf("unknown discount variant %q", tag)
	}
	d := factory()
	if err := json.Unmarshal(data, d); err != nil {
		return nil, fmt.Errorf("failed to unmarshal discount %q: %w", tag, err)
	}
	return d, nil
}

// subscriptionEnvelope is the wire form of a subscription: scalar fields
// plus encoded discount variants.
type subscriptionEnvelope struct {
	SubscriptionData
	Discounts []json.RawMessage `json:"discounts,omitempty"`
}

// EncodeSubscription serializes a subscription including its discounts.
func (r *Registry) EncodeSubscription(s *Subscription) ([]byte, error) {
	envelope := subscriptionEnvelope{SubscriptionData: s.SubscriptionData}
	for _, d := range s.Discounts {
		raw, err := r.EncodeDiscount(d)
		if err != nil {
			return nil, err
		}
		envelope.Discounts = append(envelope.Discounts, raw)
	}
	return json.Marshal(envelope)
}

// DecodeSubscription deserializes a subscription including its discounts.
func (r *Registry) DecodeSubscription(data []byte) (*Subscription, error) {
	var envelope subscriptionEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to unmarshal subscription: %w", err)
	}
	s := &Subscription{SubscriptionData: envelope.SubscriptionData}
	for _, raw := range envelope.Discounts {
		d, err := r.DecodeDiscount(raw)
		if err != nil {
			return nil, err
		}
		s.Discounts = append(s.Discounts, d)
	}
	return s, nil
}

// customerEnvelope is the wire form of the whole aggregate.
type customerEnvelope struct {
	CustomerData
	Addresses      []*Address        `json:"addresses,omitempty"`
	PaymentMethods []json.RawMessage `json:"paymentMethods,omitempty"`
	Subscriptions  []json.RawMessage `json:"subscriptions,omitempty"`
	Transactions   []json.RawMessage `json:"transactions,omitempty"`
}

// EncodeCustomer serializes the whole aggregate. The snapshot is never
// part of the document.
func (r *Registry) EncodeCustomer(c *Customer) ([]byte, error) {
	envelope := customerEnvelope{
		CustomerData: c.CustomerData,
		Addresses:    c.Addresses,
	}
	for _, pm := range c.PaymentMethods {
		raw, err := r.EncodePaymentMethod(pm)
		if err != nil {
			return nil, err
		}
		envelope.PaymentMethods = append(envelope.PaymentMethods, raw)
	}
	for _, s := range c.Subscriptions {
		raw, err := r.EncodeSubscription(s)
		if err != nil {
			return nil, err
		}
		envelope.Subscriptions = append(envelope.Subscriptions, raw)
	}
	for _, tx := range c.Transactions {
		raw, err := r.EncodeTransaction(tx)
		if err != nil {
			return nil, err
		}
		envelope.Transactions = append(envelope.Transactions, raw)
	}
	return json.Marshal(envelope)
}

// DecodeCustomer deserializes a whole aggregate.
func (r *Registry) DecodeCustomer(data []byte) (*Customer, error) {
	var envelope customerEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to unmarshal customer: %w", err)
	}
	c := &Customer{
		CustomerData: envelope.CustomerData,
		Addresses:    envelope.Addresses,
	}
	for _, raw := range envelope.PaymentMethods {
		pm, err := r.DecodePaymentMethod(raw)
		if err != nil {
			return nil, err
		}
		c.PaymentMethods = append(c.PaymentMethods, pm)
	}
	for _, raw := range envelope.Subscriptions {
		s, err := r.DecodeSubscription(raw)
		if err != nil {
			return nil, err
		}
		c.Subscriptions = append(c.Subscriptions, s)
	}
	for _, raw := range envelope.Transactions {
		tx, err := r.DecodeTransaction(raw)
		if err != nil {
			return nil, err
		}
		c.Transactions = append(c.Transactions, tx)
	}
	return c, nil
}

// CloneCustomer deep-copies an aggregate by round-tripping it through the
// wire form. The clone carries no snapshot.
func (r *Registry) CloneCustomer(c *Customer) (*Customer, error) {
	data, err := r.EncodeCustomer(c)
	if err != nil {
		return nil, err
	}
	return r.DecodeCustomer(data)
}
