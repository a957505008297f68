// Package ethereum isolates all blockchain interaction behind the Bridge.
package ethereum

import (
	"context"
	"errors"
	"math/big"
	"regexp"

	"bookstore/internal/model"

	geth "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"
)

var txHashPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

// ReceiptFetcher looks up mined transaction receipts.
type ReceiptFetcher interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// Contract is the subset of the payment contract the bridge calls.
type Contract interface {
	SetOrderAmount(ctx context.Context, orderID string, amount *big.Int) error
	IsPaymentCompleted(ctx context.Context, orderID string) (bool, error)
}

// Bridge registers expected order amounts on chain and verifies payments.
type Bridge struct {
	contract Contract
	receipts ReceiptFetcher
	abi      abi.ABI
	address  common.Address
	logger   zerolog.Logger
}

// NewBridge creates a bridge over a deployed payment contract.
func NewBridge(contract Contract, receipts ReceiptFetcher, parsed abi.ABI, address common.Address, logger zerolog.Logger) *Bridge {
	return &Bridge{
		contract: contract,
		receipts: receipts,
		abi:      parsed,
		address:  address,
		logger:   logger.With().Str("component", "ethereum-bridge").Logger(),
	}
}

// ContractAddress returns the hex address of the payment contract.
func (b *Bridge) ContractAddress() string {
	return b.address.Hex()
}

// RegisterOrderAmount records the amount, in base units, the contract should accept for an order.
func (b *Bridge) RegisterOrderAmount(ctx context.Context, orderID string, amount *big.Int) error {
	if err := b.contract.SetOrderAmount(ctx, orderID, amount); err != nil {
		b.logger.Error().
			Err(err).
			Str("order_id", orderID).
			Str("amount", amount.String()).
			Msg("failed to register order amount")
		return model.ExternalFailure("failed to register order amount on chain")
	}

	b.logger.Info().
		Str("order_id", orderID).
		Str("amount", amount.String()).
		Msg("order amount registered on chain")
	return nil
}

// BuildPaymentCallData returns the encoded makePayment call a wallet submits for the order.
func (b *Bridge) BuildPaymentCallData(orderID string) ([]byte, error) {
	data, err := b.abi.Pack(methodMakePayment, orderID)
	if err != nil {
		b.logger.Error().Err(err).Str("order_id", orderID).Msg("failed to encode payment call")
		return nil, err
	}
	return data, nil
}

// IsPaymentCompleted asks the contract whether the order has been paid.
func (b *Bridge) IsPaymentCompleted(ctx context.Context, orderID string) (bool, error) {
	completed, err := b.contract.IsPaymentCompleted(ctx, orderID)
	if err != nil {
		b.logger.Error().Err(err).Str("order_id", orderID).Msg("failed to query payment status")
		return false, model.ExternalFailure("failed to query payment status on chain")
	}
	return completed, nil
}

// VerifyTransaction reports whether txHash settled the order. A missing or
// failed receipt is unverified and the contract is not consulted; a successful
// receipt additionally requires the contract to mark the order paid.
func (b *Bridge) VerifyTransaction(ctx context.Context, txHash, orderID string) (bool, error) {
	if !txHashPattern.MatchString(txHash) {
		return false, model.InvalidInput("invalid transaction hash")
	}

	receipt, err := b.receipts.TransactionReceipt(ctx, common.HexToHash(txHash))
	if err != nil {
		if errors.Is(err, geth.NotFound) {
			b.logger.Info().Str("tx_hash", txHash).Msg("transaction receipt not found")
			return false, nil
		}
		b.logger.Error().Err(err).Str("tx_hash", txHash).Msg("failed to fetch transaction receipt")
		return false, model.ExternalFailure("failed to fetch transaction receipt")
	}

	if receipt == nil || receipt.Status != types.ReceiptStatusSuccessful {
		b.logger.Info().Str("tx_hash", txHash).Msg("transaction reverted")
		return false, nil
	}

	return b.IsPaymentCompleted(ctx, orderID)
}
