package tokens

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Amounts cross the API boundary in human-readable units. Raw integer
// amounts (lamports / token base units) appear only inside adapters.

// SOLDecimals is the precision of native SOL (1 SOL = 1e9 lamports)
const SOLDecimals uint8 = 9

// RoundToDecimals rounds (not truncates) an amount to the token's precision
func RoundToDecimals(amount decimal.Decimal, decimals uint8) decimal.Decimal {
	return amount.Round(int32(decimals))
}

// ToRaw converts a human-readable amount into base units, rounding to the
// token's precision first
func ToRaw(amount decimal.Decimal, decimals uint8) (uint64, error) {
	if amount.IsNegative() {
		return 0, fmt.Errorf("amount must not be negative: %s", amount)
	}
	raw := RoundToDecimals(amount, decimals).Shift(int32(decimals))
	if !raw.BigInt().IsUint64() {
		return 0, fmt.Errorf("amount overflows u64: %s", amount)
	}
	return raw.BigInt().Uint64(), nil
}

// FromRaw converts base units back into a human-readable amount
func FromRaw(raw uint64, decimals uint8) decimal.Decimal {
	return decimal.NewFromUint64(raw).Shift(-int32(decimals))
}
