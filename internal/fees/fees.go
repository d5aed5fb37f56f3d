// Package fees composes the aggregator, protocol, and network fee breakdown
// for a quoted operation. Everything here is pure; callers recompute on every
// input change.
package fees

import (
	"github.com/shopspring/decimal"

	"github.com/solswap-labs/exchange-core/internal/protocols"
	"github.com/solswap-labs/exchange-core/internal/tokens"
)

// AggregatorFeeBps is the aggregator's fee schedule, in basis points of the
// input amount
const AggregatorFeeBps = 25

// FeesInfo is the full fee decomposition shown for one quote
type FeesInfo struct {
	Protocol   decimal.Decimal
	Network    decimal.Decimal
	Aggregator decimal.Decimal
	Total      decimal.Decimal
}

// AggregatorFee returns the aggregator's cut of fromAmount, rounded to the
// source token's precision
func AggregatorFee(fromAmount decimal.Decimal, fromDecimals uint8) decimal.Decimal {
	fee := fromAmount.Mul(decimal.NewFromInt(AggregatorFeeBps)).Div(decimal.NewFromInt(10_000))
	return tokens.RoundToDecimals(fee, fromDecimals)
}

// Compute derives FeesInfo from a quote and the chain's baseline transaction
// fee. The network fee is the greater of the protocol-reported value and the
// baseline, guarding against a zero report. Wrap/unwrap operations carry no
// protocol fee and their total is the aggregator fee alone.
func Compute(info *protocols.ExchangeInfo, txFeeBaseline decimal.Decimal, fromAmount decimal.Decimal, fromDecimals uint8, isWrapOrUnwrap bool) FeesInfo {
	aggregator := AggregatorFee(fromAmount, fromDecimals)

	network := txFeeBaseline
	if info != nil && info.NetworkFees.GreaterThan(network) {
		network = info.NetworkFees
	}

	if isWrapOrUnwrap {
		return FeesInfo{
			Protocol:   decimal.Zero,
			Network:    network,
			Aggregator: aggregator,
			Total:      aggregator,
		}
	}

	protocol := decimal.Zero
	if info != nil {
		protocol = info.ProtocolFees
	}
	return FeesInfo{
		Protocol:   protocol,
		Network:    network,
		Aggregator: aggregator,
		Total:      aggregator.Add(protocol),
	}
}
