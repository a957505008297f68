package payment

import (
	"context"
	"time"

	"bookstore/internal/model"

	"github.com/rs/zerolog"
)

// CashOnDelivery settles when the courier confirms delivery and collection.
type CashOnDelivery struct {
	now    func() time.Time
	logger zerolog.Logger
}

// NewCashOnDelivery creates the cash-on-delivery provider.
func NewCashOnDelivery(logger zerolog.Logger) *CashOnDelivery {
	return &CashOnDelivery{
		now:    utcNow,
		logger: logger.With().Str("provider", string(model.MethodCashOnDelivery)).Logger(),
	}
}

func (c *CashOnDelivery) sealed() {}

func (c *CashOnDelivery) Method() model.PaymentMethod { return model.MethodCashOnDelivery }

func (c *CashOnDelivery) Info() model.MethodInfo {
	return model.MethodInfo{
		Code:        model.MethodCashOnDelivery,
		Name:        "Cash on Delivery",
		Description: "Pay in cash when your order is delivered",
		IsActive:    true,
	}
}

// Process opens a pending payment; nothing is collected until delivery.
func (c *CashOnDelivery) Process(ctx context.Context, req ProcessRequest) (*ProcessResult, error) {
	p := newPayment(req, model.MethodCashOnDelivery, PrefixCashOnDelivery, c.now())

	c.logger.Debug().
		Str("order_id", req.Order.ID.String()).
		Str("transaction_id", p.TransactionID).
		Msg("cash on delivery payment opened")

	return &ProcessResult{Payment: p}, nil
}

// Verify records delivery confirmation and completes the payment.
func (c *CashOnDelivery) Verify(ctx context.Context, p *model.Payment, req VerifyRequest) (bool, error) {
	if err := p.TransitionTo(model.PaymentStatusCompleted, c.now()); err != nil {
		return false, err
	}
	return true, nil
}

func (c *CashOnDelivery) Refund(ctx context.Context, p *model.Payment) error {
	return p.TransitionTo(model.PaymentStatusRefunded, c.now())
}
