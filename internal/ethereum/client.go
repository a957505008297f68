package ethereum

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"bookstore/internal/config"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"
)

// boundContract implements Contract over JSON-RPC, signing writes with a local key.
type boundContract struct {
	bound   *bind.BoundContract
	backend bind.DeployBackend
	auth    *bind.TransactOpts
}

func (c *boundContract) SetOrderAmount(ctx context.Context, orderID string, amount *big.Int) error {
	opts := *c.auth
	opts.Context = ctx

	tx, err := c.bound.Transact(&opts, methodSetOrderAmount, orderID, amount)
	if err != nil {
		return fmt.Errorf("failed to send setOrderAmount: %w", err)
	}

	receipt, err := bind.WaitMined(ctx, c.backend, tx)
	if err != nil {
		return fmt.Errorf("failed waiting for setOrderAmount: %w", err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return fmt.Errorf("setOrderAmount reverted in tx %s", tx.Hash().Hex())
	}
	return nil
}

func (c *boundContract) IsPaymentCompleted(ctx context.Context, orderID string) (bool, error) {
	var out []interface{}
	if err := c.bound.Call(&bind.CallOpts{Context: ctx}, &out, methodIsPaymentCompleted, orderID); err != nil {
		return false, fmt.Errorf("failed to call isPaymentCompleted: %w", err)
	}
	if len(out) != 1 {
		return false, fmt.Errorf("isPaymentCompleted returned %d values", len(out))
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

// Dial connects to the configured node and returns a bridge bound to the
// payment contract. artifact may be nil, in which case the embedded ABI and
// the configured contract address are used. The returned func closes the connection.
func Dial(ctx context.Context, cfg config.EthereumConfig, artifact *Artifact, logger zerolog.Logger) (*Bridge, func(), error) {
	parsed, address, err := resolveContract(cfg, artifact)
	if err != nil {
		return nil, nil, err
	}

	key, err := parsePrivateKey(cfg.PrivateKey)
	if err != nil {
		return nil, nil, err
	}

	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		logger.Error().Err(err).Str("rpc_url", cfg.RPCURL).Msg("failed to connect to ethereum node")
		return nil, nil, fmt.Errorf("failed to connect to ethereum node: %w", err)
	}

	auth, err := bind.NewKeyedTransactorWithChainID(key, big.NewInt(cfg.ChainID))
	if err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to create transactor: %w", err)
	}

	contract := &boundContract{
		bound:   bind.NewBoundContract(address, parsed, client, client, client),
		backend: client,
		auth:    auth,
	}

	logger.Info().
		Str("rpc_url", cfg.RPCURL).
		Str("contract", address.Hex()).
		Int64("chain_id", cfg.ChainID).
		Msg("ethereum bridge connected")

	return NewBridge(contract, client, parsed, address, logger), client.Close, nil
}

func resolveContract(cfg config.EthereumConfig, artifact *Artifact) (abi.ABI, common.Address, error) {
	var (
		parsed abi.ABI
		err    error
	)

	address := cfg.ContractAddress
	if artifact != nil {
		parsed, err = ParseABI(artifact.ABI)
		if artifact.Address != "" {
			address = artifact.Address
		}
	} else {
		parsed, err = DefaultABI()
	}
	if err != nil {
		return abi.ABI{}, common.Address{}, err
	}

	if !common.IsHexAddress(address) {
		return abi.ABI{}, common.Address{}, fmt.Errorf("invalid contract address %q", address)
	}

	return parsed, common.HexToAddress(address), nil
}

func parsePrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return key, nil
}
