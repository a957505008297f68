// Package payment holds the payment provider registry and the closed set of
// providers it dispatches to.
package payment

import (
	"context"
	"time"

	"bookstore/internal/model"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Provider settles payments for one method. The set of implementations is
// closed: CashOnDelivery, BankTransfer and Ethereum.
//
// Providers decide state; they never persist. Process builds a new payment,
// Verify and Refund mutate the given payment in place and the caller stores it.
type Provider interface {
	Method() model.PaymentMethod
	Info() model.MethodInfo

	// Process builds a new payment for the order.
	Process(ctx context.Context, req ProcessRequest) (*ProcessResult, error)

	// Verify attempts to settle a payment. It reports whether p was changed.
	Verify(ctx context.Context, p *model.Payment, req VerifyRequest) (bool, error)

	// Refund moves a completed payment to refunded.
	Refund(ctx context.Context, p *model.Payment) error

	sealed()
}

// ProcessRequest carries what a provider needs to open a payment.
type ProcessRequest struct {
	Order       *model.Order
	Currency    string
	BankDetails *model.BankDetails
}

// ProcessResult is a new, unsaved payment plus any client checkout data.
type ProcessResult struct {
	Payment  *model.Payment
	Checkout *Checkout
}

// Checkout is what a wallet needs to submit an on-chain payment.
type Checkout struct {
	OrderAmount     string
	ContractAddress string
	TransactionData string
}

// VerifyRequest carries the method-specific evidence of settlement.
type VerifyRequest struct {
	ReferenceCode   string
	TransactionHash string
}

// Transaction identifier prefixes.
const (
	PrefixCashOnDelivery = "COD"
	PrefixBankTransfer   = "BT"
	PrefixEthereum       = "ETH"
)

// NewTransactionID returns a unique, time-ordered transaction identifier.
func NewTransactionID(prefix string) string {
	return prefix + "-" + ulid.Make().String()
}

func utcNow() time.Time {
	return time.Now().UTC()
}

func newPayment(req ProcessRequest, method model.PaymentMethod, prefix string, now time.Time) *model.Payment {
	currency := req.Currency
	if currency == "" {
		currency = model.DefaultCurrency
	}
	return &model.Payment{
		ID:            uuid.New(),
		OrderID:       req.Order.ID,
		UserID:        req.Order.UserID,
		Amount:        req.Order.TotalAmount,
		Currency:      currency,
		Method:        method,
		Status:        model.PaymentStatusPending,
		TransactionID: NewTransactionID(prefix),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
