package model

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the currency every amount is denominated in unless configured otherwise.
const DefaultCurrency = "VND"

// PaymentMethod is the code a provider is registered under.
type PaymentMethod string

const (
	MethodCashOnDelivery PaymentMethod = "cash_on_delivery"
	MethodBankTransfer   PaymentMethod = "bank_transfer"
	MethodEthereum       PaymentMethod = "ethereum"
)

// PaymentStatus is the state of a single payment attempt.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending:   {PaymentStatusCompleted, PaymentStatusFailed},
	PaymentStatusCompleted: {PaymentStatusRefunded},
}

// IsValid reports whether s is one of the four payment states.
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// CanTransitionTo reports whether a payment may move from s to target.
func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	return slices.Contains(paymentTransitions[s], target)
}

// Payment models one attempt to settle an order.
type Payment struct {
	ID              uuid.UUID        `json:"id" db:"id"`
	OrderID         uuid.UUID        `json:"orderId" db:"order_id"`
	UserID          uuid.UUID        `json:"userId" db:"user_id"`
	Amount          decimal.Decimal  `json:"amount" db:"amount"`
	Currency        string           `json:"currency" db:"currency"`
	Method          PaymentMethod    `json:"method" db:"method"`
	Status          PaymentStatus    `json:"status" db:"status"`
	TransactionID   string           `json:"transactionId" db:"transaction_id"`
	BankDetails     *BankDetails     `json:"bankDetails,omitempty" db:"bank_details"`
	EthereumDetails *EthereumDetails `json:"ethereumDetails,omitempty" db:"ethereum_details"`
	PaymentDate     *time.Time       `json:"paymentDate,omitempty" db:"payment_date"`
	CreatedAt       time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time        `json:"updatedAt" db:"updated_at"`
}

// TransitionTo moves the payment to target, stamping the payment date on completion.
func (p *Payment) TransitionTo(target PaymentStatus, now time.Time) error {
	if !p.Status.CanTransitionTo(target) {
		return ErrInvalidTransition
	}
	p.Status = target
	p.UpdatedAt = now
	if target == PaymentStatusCompleted {
		p.PaymentDate = &now
	}
	return nil
}

// BankDetails is the bank-transfer specific block of a payment.
type BankDetails struct {
	BankName      string     `json:"bankName"`
	AccountNumber string     `json:"accountNumber"`
	TransferDate  *time.Time `json:"transferDate,omitempty"`
	ReferenceCode string     `json:"referenceCode,omitempty"`
}

// EthereumDetails is the Ethereum specific block of a payment.
type EthereumDetails struct {
	Address         string `json:"address"`
	TransactionHash string `json:"transactionHash,omitempty"`
	OrderAmount     string `json:"orderAmount,omitempty"`
}

// PaymentRequest is the payload for POST /api/payments.
type PaymentRequest struct {
	OrderID     uuid.UUID     `json:"orderId" validate:"required"`
	Method      PaymentMethod `json:"method" validate:"required"`
	BankDetails *BankDetails  `json:"bankDetails,omitempty"`
}

// EthereumPaymentRequest is the payload for POST /api/payments/ethereum.
type EthereumPaymentRequest struct {
	OrderID uuid.UUID `json:"orderId" validate:"required"`
}

// BankConfirmRequest is the optional payload for POST /api/payments/bank-transfer/{id}.
type BankConfirmRequest struct {
	ReferenceCode string `json:"referenceCode"`
}

// EthereumConfirmRequest is the payload for POST /api/payments/ethereum/{id}.
type EthereumConfirmRequest struct {
	TransactionHash string `json:"transactionHash" validate:"required"`
}

// PaymentStatusRequest is the payload for the admin status override.
type PaymentStatusRequest struct {
	Status PaymentStatus `json:"status" validate:"required"`
}

// EthereumCheckout is what a wallet needs to submit the on-chain payment.
type EthereumCheckout struct {
	Payment         *Payment `json:"payment"`
	OrderAmount     string   `json:"orderAmount"`
	ContractAddress string   `json:"contractAddress"`
	TransactionData string   `json:"transactionData"`
}

// MethodInfo is the display metadata of a registered payment method.
type MethodInfo struct {
	Code             PaymentMethod `json:"code"`
	Name             string        `json:"name"`
	Description      string        `json:"description"`
	IsActive         bool          `json:"isActive"`
	RequiresRedirect bool          `json:"requiresRedirect"`
}

// PaymentBucket aggregates payments sharing a method or status.
type PaymentBucket struct {
	Key         string          `json:"key"`
	Count       int             `json:"count"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// PaymentStats summarises payments by method and by status.
type PaymentStats struct {
	ByMethod []PaymentBucket `json:"byMethod"`
	ByStatus []PaymentBucket `json:"byStatus"`
}
