package ethereum

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// FixedRate is the number of fiat units one token is worth. It is a fixed
// placeholder, not a live exchange rate.
var FixedRate = decimal.NewFromInt(100_000_000)

// tokenDecimals is the number of decimal places kept when converting fiat to tokens.
const tokenDecimals = 8

var weiPerToken = decimal.New(1, 18)

// FiatToToken converts a fiat amount to tokens at FixedRate, rounded to 8 decimal places.
func FiatToToken(amount decimal.Decimal) decimal.Decimal {
	return amount.DivRound(FixedRate, tokenDecimals)
}

// ToBaseUnits converts a token amount to its smallest on-chain unit (10^18 per token).
func ToBaseUnits(tokens decimal.Decimal) *big.Int {
	return tokens.Mul(weiPerToken).Truncate(0).BigInt()
}
