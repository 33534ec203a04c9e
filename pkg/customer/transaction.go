package customer

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind discriminates the transaction variants on the wire. Each
// variant mirrors the payment method type it was charged against.
type TransactionKind string

const (
	TransactionCreditCard     TransactionKind = "TransactionCreditCard"
	TransactionPayPalAccount  TransactionKind = "TransactionPayPalAccount"
	TransactionApplePayCard   TransactionKind = "TransactionApplePayCard"
	TransactionAndroidPayCard TransactionKind = "TransactionAndroidPayCard"
)

// Transaction statuses as reported by the gateway.
const (
	TransactionStatusSubmitted = "submitted_for_settlement"
	TransactionStatusSettled   = "settled"
	TransactionStatusVoided    = "voided"
	TransactionStatusRefunded  = "refunded"
)

// Transaction is an immutable record of a charge or refund against the
// gateway. Local code never mutates a transaction; refunds produce new
// records on the gateway side.
type Transaction interface {
	Kind() TransactionKind
	Base() *TransactionBase
}

// TransactionBase carries the fields every transaction variant shares.
type TransactionBase struct {
	EntityID       string          `json:"entityId"`
	Processor      ProcessorItem   `json:"processor"`
	Amount         decimal.Decimal `json:"amount"`
	RefundedAmount decimal.Decimal `json:"refundedAmount"`
	Status         string          `json:"status,omitempty"`
	SubscriptionID string          `json:"subscriptionId,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// Base returns the shared transaction fields.
func (b *TransactionBase) Base() *TransactionBase { return b }

// CreditCardTransaction is a charge against a vaulted card.
type CreditCardTransaction struct {
	TransactionBase
	CardType string `json:"cardType,omitempty"`
	Last4    string `json:"last4,omitempty"`
}

func (*CreditCardTransaction) Kind() TransactionKind { return TransactionCreditCard }

// PayPalAccountTransaction is a charge against a PayPal agreement.
type PayPalAccountTransaction struct {
	TransactionBase
	Email string `json:"email,omitempty"`
}

func (*PayPalAccountTransaction) Kind() TransactionKind { return TransactionPayPalAccount }

// ApplePayCardTransaction is a charge against an Apple Pay card.
type ApplePayCardTransaction struct {
	TransactionBase
	CardType string `json:"cardType,omitempty"`
	Last4    string `json:"last4,omitempty"`
}

func (*ApplePayCardTransaction) Kind() TransactionKind { return TransactionApplePayCard }

// AndroidPayCardTransaction is a charge against a Google Pay card.
type AndroidPayCardTransaction struct {
	TransactionBase
	SourceCardType string `json:"sourceCardType,omitempty"`
	Last4          string `json:"last4,omitempty"`
}

func (*AndroidPayCardTransaction) Kind() TransactionKind { return TransactionAndroidPayCard }
