package exchange

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/solswap-labs/exchange-core/internal/fees"
	"github.com/solswap-labs/exchange-core/internal/tokens"
)

// Validation failure classes. These gate the action before any transaction
// is built; they are not lifecycle failures.
var (
	ErrInsufficientAmount  = errors.New("insufficient amount")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// InsufficientBalanceError carries the total the wallet would need so the
// caller can render it
type InsufficientBalanceError struct {
	Needed  decimal.Decimal
	Balance decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: need %s, have %s", e.Needed, e.Balance)
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }

// Validate runs the pre-flight checks for an operation spending amountIn of
// the source token from a wallet holding balance of it. For a native-SOL
// source the network fee comes out of the same balance; for SPL sources only
// the token amount is checked here.
func Validate(source tokens.TokenInfo, balance, amountIn decimal.Decimal, feesInfo fees.FeesInfo) error {
	if amountIn.LessThanOrEqual(decimal.Zero) {
		return ErrInsufficientAmount
	}

	needed := amountIn.Add(feesInfo.Aggregator)
	if tokens.IsSOL(source.Mint()) {
		needed = needed.Add(feesInfo.Network)
	}

	if needed.GreaterThan(balance) {
		return &InsufficientBalanceError{Needed: needed, Balance: balance}
	}
	return nil
}
