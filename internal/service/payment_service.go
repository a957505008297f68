package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookstore/internal/events"
	"bookstore/internal/model"
	"bookstore/internal/payment"
	"bookstore/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PaymentOutcomeApplier records payment results on orders.
type PaymentOutcomeApplier interface {
	ApplyPaymentOutcome(ctx context.Context, id uuid.UUID, status model.PaymentStatus) (*model.Order, error)
}

// paymentService implements PaymentService.
type paymentService struct {
	paymentRepo repository.PaymentRepository
	orderRepo   repository.OrderRepository
	orders      PaymentOutcomeApplier
	registry    *payment.Registry
	publisher   events.Publisher
	currency    string
	logger      zerolog.Logger
	now         func() time.Time
}

// NewPaymentService creates a new payment service.
func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	orderRepo repository.OrderRepository,
	orders PaymentOutcomeApplier,
	registry *payment.Registry,
	publisher events.Publisher,
	currency string,
	logger zerolog.Logger,
) PaymentService {
	return &paymentService{
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
		orders:      orders,
		registry:    registry,
		publisher:   publisher,
		currency:    currency,
		logger:      logger.With().Str("service", "payment").Logger(),
		now:         time.Now,
	}
}

// Create opens a payment for an order.
func (s *paymentService) Create(ctx context.Context, caller model.Principal, req *model.PaymentRequest) (*model.Payment, error) {
	result, err := s.open(ctx, caller, req.OrderID, req.Method, req.BankDetails)
	if err != nil {
		return nil, err
	}
	return result.Payment, nil
}

// CreateEthereum opens an Ethereum payment and returns what the wallet must submit.
func (s *paymentService) CreateEthereum(ctx context.Context, caller model.Principal, req *model.EthereumPaymentRequest) (*model.EthereumCheckout, error) {
	result, err := s.open(ctx, caller, req.OrderID, model.MethodEthereum, nil)
	if err != nil {
		return nil, err
	}
	if result.Checkout == nil {
		return nil, fmt.Errorf("ethereum provider returned no checkout data")
	}

	return &model.EthereumCheckout{
		Payment:         result.Payment,
		OrderAmount:     result.Checkout.OrderAmount,
		ContractAddress: result.Checkout.ContractAddress,
		TransactionData: result.Checkout.TransactionData,
	}, nil
}

// open resolves the provider, checks the order can take a payment and stores
// the provider's new payment before recording it on the order.
func (s *paymentService) open(
	ctx context.Context,
	caller model.Principal,
	orderID uuid.UUID,
	method model.PaymentMethod,
	bankDetails *model.BankDetails,
) (*payment.ProcessResult, error) {
	provider, err := s.registry.Resolve(method)
	if err != nil {
		s.logger.Warn().Str("method", string(method)).Msg("unsupported payment method requested")
		return nil, err
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	if !caller.CanAccess(order.UserID) {
		return nil, model.ErrForbidden
	}

	switch {
	case order.Status == model.OrderStatusCancelled:
		return nil, model.InvalidInput("order is cancelled")
	case order.PaymentStatus == model.PaymentStatusCompleted:
		return nil, model.ErrOrderAlreadyPaid
	}

	pending, err := s.paymentRepo.HasPending(ctx, orderID)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to check pending payments")
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}
	if pending {
		return nil, model.ErrPaymentInProgress
	}

	result, err := provider.Process(ctx, payment.ProcessRequest{
		Order:       order,
		Currency:    s.currency,
		BankDetails: bankDetails,
	})
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("order_id", orderID.String()).
			Str("method", string(method)).
			Msg("payment provider rejected the order")
		return nil, err
	}

	p := result.Payment
	if err := s.paymentRepo.Create(ctx, p); err != nil {
		if errors.Is(err, model.ErrPaymentInProgress) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to store payment")
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	if _, err := s.orders.ApplyPaymentOutcome(ctx, order.ID, p.Status); err != nil {
		return nil, err
	}

	s.publish(ctx, p)

	s.logger.Info().
		Str("payment_id", p.ID.String()).
		Str("order_id", orderID.String()).
		Str("method", string(method)).
		Str("transaction_id", p.TransactionID).
		Str("status", string(p.Status)).
		Msg("payment created")

	return result, nil
}

// ConfirmCashOnDelivery records collection of a cash payment.
func (s *paymentService) ConfirmCashOnDelivery(ctx context.Context, caller model.Principal, id uuid.UUID) (*model.Payment, error) {
	return s.verify(ctx, caller, id, model.MethodCashOnDelivery, payment.VerifyRequest{})
}

// ConfirmBankTransfer completes a pending bank transfer.
func (s *paymentService) ConfirmBankTransfer(ctx context.Context, caller model.Principal, id uuid.UUID, req *model.BankConfirmRequest) (*model.Payment, error) {
	var verifyReq payment.VerifyRequest
	if req != nil {
		verifyReq.ReferenceCode = req.ReferenceCode
	}
	return s.verify(ctx, caller, id, model.MethodBankTransfer, verifyReq)
}

// ConfirmEthereum settles an Ethereum payment from its on-chain transaction.
func (s *paymentService) ConfirmEthereum(ctx context.Context, caller model.Principal, id uuid.UUID, req *model.EthereumConfirmRequest) (*model.Payment, error) {
	return s.verify(ctx, caller, id, model.MethodEthereum, payment.VerifyRequest{TransactionHash: req.TransactionHash})
}

func (s *paymentService) verify(
	ctx context.Context,
	caller model.Principal,
	id uuid.UUID,
	method model.PaymentMethod,
	req payment.VerifyRequest,
) (*model.Payment, error) {
	p, err := s.GetByID(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if p.Method != method {
		return nil, model.ErrMethodMismatch
	}

	provider, err := s.registry.Resolve(method)
	if err != nil {
		return nil, err
	}

	from := p.Status
	changed, err := provider.Verify(ctx, p, req)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("payment_id", id.String()).
			Str("method", string(method)).
			Msg("payment verification failed")
		return nil, err
	}
	if !changed {
		return p, nil
	}

	if err := s.persist(ctx, p, from); err != nil {
		return nil, err
	}
	return p, nil
}

// Cancel fails a pending payment or refunds a completed one.
func (s *paymentService) Cancel(ctx context.Context, caller model.Principal, id uuid.UUID) (*model.Payment, error) {
	p, err := s.GetByID(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	switch p.Status {
	case model.PaymentStatusPending:
		if err := p.TransitionTo(model.PaymentStatusFailed, s.now().UTC()); err != nil {
			return nil, err
		}
		if err := s.persist(ctx, p, model.PaymentStatusPending); err != nil {
			return nil, err
		}
		return p, nil
	case model.PaymentStatusCompleted:
		return s.refund(ctx, p)
	default:
		return nil, model.InvalidInput(fmt.Sprintf("cannot cancel a %s payment", p.Status))
	}
}

// Refund refunds a completed payment.
func (s *paymentService) Refund(ctx context.Context, caller model.Principal, id uuid.UUID) (*model.Payment, error) {
	p, err := s.GetByID(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	return s.refund(ctx, p)
}

func (s *paymentService) refund(ctx context.Context, p *model.Payment) (*model.Payment, error) {
	provider, err := s.registry.Resolve(p.Method)
	if err != nil {
		return nil, err
	}

	from := p.Status
	if err := provider.Refund(ctx, p); err != nil {
		return nil, err
	}
	if err := s.persist(ctx, p, from); err != nil {
		return nil, err
	}
	return p, nil
}

// GetByID returns a payment the caller owns, or any payment for an admin.
func (s *paymentService) GetByID(ctx context.Context, caller model.Principal, id uuid.UUID) (*model.Payment, error) {
	p, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("payment_id", id.String()).Msg("failed to get payment")
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	if p == nil {
		return nil, model.ErrPaymentNotFound
	}
	if !caller.CanAccess(p.UserID) {
		s.logger.Warn().
			Str("payment_id", id.String()).
			Str("user_id", caller.UserID.String()).
			Msg("payment access denied")
		return nil, model.ErrForbidden
	}
	return p, nil
}

func (s *paymentService) ListByUser(ctx context.Context, caller model.Principal, userID uuid.UUID) ([]model.Payment, error) {
	if !caller.CanAccess(userID) {
		return nil, model.ErrForbidden
	}

	payments, err := s.paymentRepo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to list payments")
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	if payments == nil {
		payments = []model.Payment{}
	}
	return payments, nil
}

func (s *paymentService) ListByOrder(ctx context.Context, caller model.Principal, orderID uuid.UUID) ([]model.Payment, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	if !caller.CanAccess(order.UserID) {
		return nil, model.ErrForbidden
	}

	payments, err := s.paymentRepo.ListByOrder(ctx, orderID)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to list payments")
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	if payments == nil {
		payments = []model.Payment{}
	}
	return payments, nil
}

// UpdateStatus moves a payment along the state machine on an operator's behalf.
func (s *paymentService) UpdateStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus) (*model.Payment, error) {
	if !status.IsValid() {
		return nil, model.ErrInvalidPaymentStatus
	}

	p, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("payment_id", id.String()).Msg("failed to get payment")
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	if p == nil {
		return nil, model.ErrPaymentNotFound
	}

	from := p.Status
	if err := p.TransitionTo(status, s.now().UTC()); err != nil {
		return nil, err
	}
	if err := s.persist(ctx, p, from); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *paymentService) Stats(ctx context.Context) (*model.PaymentStats, error) {
	stats, err := s.paymentRepo.Stats(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to aggregate payments")
		return nil, fmt.Errorf("failed to load payment stats: %w", err)
	}
	return stats, nil
}

func (s *paymentService) Methods() []model.MethodInfo {
	return s.registry.Methods()
}

// ExpireStale fails pending payments of a method created before cutoff.
// Payments settled concurrently are skipped.
func (s *paymentService) ExpireStale(ctx context.Context, method model.PaymentMethod, cutoff time.Time, limit int) (int, error) {
	stale, err := s.paymentRepo.ListStalePending(ctx, method, cutoff, limit)
	if err != nil {
		s.logger.Error().Err(err).Str("method", string(method)).Msg("failed to list stale payments")
		return 0, fmt.Errorf("failed to list stale payments: %w", err)
	}

	expired := 0
	for i := range stale {
		p := &stale[i]
		if err := p.TransitionTo(model.PaymentStatusFailed, s.now().UTC()); err != nil {
			continue
		}
		err := s.persist(ctx, p, model.PaymentStatusPending)
		if errors.Is(err, model.ErrInvalidTransition) {
			s.logger.Debug().Str("payment_id", p.ID.String()).Msg("stale payment settled concurrently")
			continue
		}
		if err != nil {
			return expired, err
		}
		expired++
	}

	if expired > 0 {
		s.logger.Info().
			Str("method", string(method)).
			Int("expired", expired).
			Time("cutoff", cutoff).
			Msg("stale pending payments expired")
	}
	return expired, nil
}

// persist stores a transition made from status from, applies it to the order
// and announces it. Losing a race to another writer is an invalid transition.
func (s *paymentService) persist(ctx context.Context, p *model.Payment, from model.PaymentStatus) error {
	ok, err := s.paymentRepo.Update(ctx, p, from)
	if err != nil {
		s.logger.Error().Err(err).Str("payment_id", p.ID.String()).Msg("failed to update payment")
		return fmt.Errorf("failed to update payment: %w", err)
	}
	if !ok {
		s.logger.Warn().
			Str("payment_id", p.ID.String()).
			Str("from", string(from)).
			Str("to", string(p.Status)).
			Msg("payment changed concurrently")
		return model.ErrInvalidTransition
	}

	if _, err := s.orders.ApplyPaymentOutcome(ctx, p.OrderID, orderOutcome(p.Status)); err != nil {
		return err
	}

	s.publish(ctx, p)

	s.logger.Info().
		Str("payment_id", p.ID.String()).
		Str("order_id", p.OrderID.String()).
		Str("from", string(from)).
		Str("to", string(p.Status)).
		Msg("payment status changed")
	return nil
}

// orderOutcome maps a payment status onto the payment status its order takes.
// A refunded payment leaves the order cancelled and unpaid.
func orderOutcome(status model.PaymentStatus) model.PaymentStatus {
	if status == model.PaymentStatusRefunded {
		return model.PaymentStatusFailed
	}
	return status
}

// publish announces a payment change. Delivery failures never fail the request.
func (s *paymentService) publish(ctx context.Context, p *model.Payment) {
	event := events.NewPaymentEvent(p, s.now().UTC())
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error().
			Err(err).
			Str("payment_id", p.ID.String()).
			Str("type", event.Type).
			Msg("failed to publish payment event")
	}
}
