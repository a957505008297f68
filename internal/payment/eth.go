package payment

import (
	"context"
	"math/big"
	"time"

	"bookstore/internal/ethereum"
	"bookstore/internal/model"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/rs/zerolog"
)

// Bridge is the blockchain side of the Ethereum provider.
type Bridge interface {
	ContractAddress() string
	RegisterOrderAmount(ctx context.Context, orderID string, amount *big.Int) error
	BuildPaymentCallData(orderID string) ([]byte, error)
	VerifyTransaction(ctx context.Context, txHash, orderID string) (bool, error)
}

// Ethereum settles payments through the on-chain payment contract.
type Ethereum struct {
	bridge Bridge
	now    func() time.Time
	logger zerolog.Logger
}

// NewEthereum creates the Ethereum provider.
func NewEthereum(bridge Bridge, logger zerolog.Logger) *Ethereum {
	return &Ethereum{
		bridge: bridge,
		now:    utcNow,
		logger: logger.With().Str("provider", string(model.MethodEthereum)).Logger(),
	}
}

func (e *Ethereum) sealed() {}

func (e *Ethereum) Method() model.PaymentMethod { return model.MethodEthereum }

func (e *Ethereum) Info() model.MethodInfo {
	return model.MethodInfo{
		Code:             model.MethodEthereum,
		Name:             "Ethereum",
		Description:      "Pay with ETH from your wallet",
		IsActive:         true,
		RequiresRedirect: true,
	}
}

// Process registers the expected amount on chain and returns the call the
// wallet must submit. Nothing is created if the chain rejects the amount.
func (e *Ethereum) Process(ctx context.Context, req ProcessRequest) (*ProcessResult, error) {
	orderID := req.Order.ID.String()
	tokens := ethereum.FiatToToken(req.Order.TotalAmount)

	if err := e.bridge.RegisterOrderAmount(ctx, orderID, ethereum.ToBaseUnits(tokens)); err != nil {
		return nil, err
	}

	callData, err := e.bridge.BuildPaymentCallData(orderID)
	if err != nil {
		return nil, err
	}

	amount := tokens.StringFixed(8)
	p := newPayment(req, model.MethodEthereum, PrefixEthereum, e.now())
	p.EthereumDetails = &model.EthereumDetails{
		Address:     e.bridge.ContractAddress(),
		OrderAmount: amount,
	}

	e.logger.Info().
		Str("order_id", orderID).
		Str("transaction_id", p.TransactionID).
		Str("token_amount", amount).
		Msg("ethereum payment opened")

	return &ProcessResult{
		Payment: p,
		Checkout: &Checkout{
			OrderAmount:     amount,
			ContractAddress: e.bridge.ContractAddress(),
			TransactionData: hexutil.Encode(callData),
		},
	}, nil
}

// Verify checks the submitted transaction on chain. A reverted, missing or
// unconfirmed payment fails; an unreachable node leaves the payment untouched.
func (e *Ethereum) Verify(ctx context.Context, p *model.Payment, req VerifyRequest) (bool, error) {
	if p.Status != model.PaymentStatusPending {
		return false, model.ErrInvalidTransition
	}
	if req.TransactionHash == "" {
		return false, model.InvalidInput("transaction hash is required")
	}

	verified, err := e.bridge.VerifyTransaction(ctx, req.TransactionHash, p.OrderID.String())
	if err != nil {
		return false, err
	}

	details := model.EthereumDetails{}
	if p.EthereumDetails != nil {
		details = *p.EthereumDetails
	}
	details.TransactionHash = req.TransactionHash
	p.EthereumDetails = &details

	target := model.PaymentStatusFailed
	if verified {
		target = model.PaymentStatusCompleted
	}

	e.logger.Info().
		Str("payment_id", p.ID.String()).
		Str("tx_hash", req.TransactionHash).
		Bool("verified", verified).
		Msg("ethereum transaction checked")

	return true, p.TransitionTo(target, e.now())
}

// Refund marks the payment refunded. Returning the funds on chain is an operator task.
func (e *Ethereum) Refund(ctx context.Context, p *model.Payment) error {
	return p.TransitionTo(model.PaymentStatusRefunded, e.now())
}
