package ethereum

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Contract method names.
const (
	methodSetOrderAmount     = "setOrderAmount"
	methodMakePayment        = "makePayment"
	methodIsPaymentCompleted = "isPaymentCompleted"
)

//go:embed bookpayment.abi.json
var defaultABI string

// DefaultABI returns the parsed ABI of the payment contract shipped with the service.
func DefaultABI() (abi.ABI, error) {
	return ParseABI([]byte(defaultABI))
}

// ParseABI parses a contract ABI and checks it exposes every method the bridge uses.
func ParseABI(data []byte) (abi.ABI, error) {
	parsed, err := abi.JSON(strings.NewReader(string(data)))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("failed to parse contract ABI: %w", err)
	}

	for _, name := range []string{methodSetOrderAmount, methodMakePayment, methodIsPaymentCompleted} {
		if _, ok := parsed.Methods[name]; !ok {
			return abi.ABI{}, fmt.Errorf("contract ABI is missing method %s", name)
		}
	}

	return parsed, nil
}
