package payment

import (
	"context"
	"fmt"
	"time"

	"bookstore/internal/model"

	"github.com/rs/zerolog"
)

// BankTransfer settles once the transfer has been matched against the bank statement.
type BankTransfer struct {
	autoConfirm bool
	now         func() time.Time
	logger      zerolog.Logger
}

// NewBankTransfer creates the bank-transfer provider. With autoConfirm set the
// mock bank check runs while processing and payments are created completed.
func NewBankTransfer(autoConfirm bool, logger zerolog.Logger) *BankTransfer {
	return &BankTransfer{
		autoConfirm: autoConfirm,
		now:         utcNow,
		logger:      logger.With().Str("provider", string(model.MethodBankTransfer)).Logger(),
	}
}

func (b *BankTransfer) sealed() {}

func (b *BankTransfer) Method() model.PaymentMethod { return model.MethodBankTransfer }

func (b *BankTransfer) Info() model.MethodInfo {
	return model.MethodInfo{
		Code:        model.MethodBankTransfer,
		Name:        "Bank Transfer",
		Description: "Transfer the order total from your bank account",
		IsActive:    true,
	}
}

// Process validates the payer's bank details and opens the payment.
func (b *BankTransfer) Process(ctx context.Context, req ProcessRequest) (*ProcessResult, error) {
	details := req.BankDetails
	if details == nil || details.BankName == "" || details.AccountNumber == "" {
		return nil, model.ErrIncompleteBankDetails
	}

	now := b.now()
	p := newPayment(req, model.MethodBankTransfer, PrefixBankTransfer, now)
	p.BankDetails = &model.BankDetails{
		BankName:      details.BankName,
		AccountNumber: details.AccountNumber,
		TransferDate:  details.TransferDate,
		ReferenceCode: details.ReferenceCode,
	}

	if b.autoConfirm && b.confirmWithBank(p) {
		if err := b.settle(p, p.BankDetails.ReferenceCode, now); err != nil {
			return nil, err
		}
	}

	b.logger.Debug().
		Str("order_id", req.Order.ID.String()).
		Str("transaction_id", p.TransactionID).
		Str("status", string(p.Status)).
		Msg("bank transfer payment opened")

	return &ProcessResult{Payment: p}, nil
}

// Verify completes a pending transfer. Verifying a settled payment is a no-op.
func (b *BankTransfer) Verify(ctx context.Context, p *model.Payment, req VerifyRequest) (bool, error) {
	if p.Status != model.PaymentStatusPending {
		return false, nil
	}
	if err := b.settle(p, req.ReferenceCode, b.now()); err != nil {
		return false, err
	}
	return true, nil
}

func (b *BankTransfer) Refund(ctx context.Context, p *model.Payment) error {
	return p.TransitionTo(model.PaymentStatusRefunded, b.now())
}

// confirmWithBank stands in for a statement lookup and always succeeds.
func (b *BankTransfer) confirmWithBank(p *model.Payment) bool {
	b.logger.Info().Str("transaction_id", p.TransactionID).Msg("bank transfer confirmed by mock bank")
	return true
}

func (b *BankTransfer) settle(p *model.Payment, reference string, now time.Time) error {
	if err := p.TransitionTo(model.PaymentStatusCompleted, now); err != nil {
		return err
	}

	details := model.BankDetails{}
	if p.BankDetails != nil {
		details = *p.BankDetails
	}
	if reference == "" {
		reference = fmt.Sprintf("VERIFY-%d", now.UnixMilli())
	}
	details.ReferenceCode = reference
	if details.TransferDate == nil {
		details.TransferDate = &now
	}
	p.BankDetails = &details
	return nil
}
