package customer

// PaymentMethodKind discriminates the payment method variants on the wire.
type PaymentMethodKind string

const (
	PaymentMethodCreditCard     PaymentMethodKind = "CreditCard"
	PaymentMethodPayPalAccount  PaymentMethodKind = "PayPalAccount"
	PaymentMethodApplePayCard   PaymentMethodKind = "ApplePayCard"
	PaymentMethodAndroidPayCard PaymentMethodKind = "AndroidPayCard"
)

// PaymentMethod is the tagged union over the four gateway payment method
// variants. Variant-specific fields live on the concrete types; shared
// fields live on PaymentMethodBase.
type PaymentMethod interface {
	Kind() PaymentMethodKind
	Base() *PaymentMethodBase
}

// PaymentMethodBase carries the fields every payment method variant shares.
type PaymentMethodBase struct {
	EntityID         string        `json:"entityId"`
	Processor        ProcessorItem `json:"processor"`
	Token            string        `json:"token,omitempty"`
	BillingAddressID string        `json:"billingAddressId,omitempty"`
}

// Base returns the shared payment method fields.
func (b *PaymentMethodBase) Base() *PaymentMethodBase { return b }

// Item returns the processor sync marker.
func (b *PaymentMethodBase) Item() *ProcessorItem { return &b.Processor }

// CreditCard is a card vaulted at the gateway.
type CreditCard struct {
	PaymentMethodBase
	CardholderName  string `json:"cardholderName,omitempty"`
	CardType        string `json:"cardType,omitempty"`
	Last4           string `json:"last4,omitempty"`
	ExpirationMonth string `json:"expirationMonth,omitempty"`
	ExpirationYear  string `json:"expirationYear,omitempty"`
}

func (*CreditCard) Kind() PaymentMethodKind { return PaymentMethodCreditCard }

// PayPalAccount is a linked PayPal billing agreement.
type PayPalAccount struct {
	PaymentMethodBase
	Email string `json:"email,omitempty"`
}

func (*PayPalAccount) Kind() PaymentMethodKind { return PaymentMethodPayPalAccount }

// ApplePayCard is a card provisioned through Apple Pay.
type ApplePayCard struct {
	PaymentMethodBase
	CardType        string `json:"cardType,omitempty"`
	Last4           string `json:"last4,omitempty"`
	ExpirationMonth string `json:"expirationMonth,omitempty"`
	ExpirationYear  string `json:"expirationYear,omitempty"`
}

func (*ApplePayCard) Kind() PaymentMethodKind { return PaymentMethodApplePayCard }

// AndroidPayCard is a card provisioned through Google Pay. The gateway
// exposes both the network token and the underlying source card.
type AndroidPayCard struct {
	PaymentMethodBase
	SourceCardType  string `json:"sourceCardType,omitempty"`
	SourceCardLast4 string `json:"sourceCardLast4,omitempty"`
	VirtualCardType string `json:"virtualCardType,omitempty"`
	Last4           string `json:"last4,omitempty"`
}

func (*AndroidPayCard) Kind() PaymentMethodKind { return PaymentMethodAndroidPayCard }
