package protocols

import (
	"fmt"
	"math"
	"math/big"
)

// CalculateSwapOutput computes the output of a constant-product swap
// (x * y = k) with the fee applied to the input. Shared by the Orca and
// Raydium adapters; big.Int keeps the intermediate products from
// overflowing. Returns (amountOut, priceImpact, error).
func CalculateSwapOutput(amountIn, reserveIn, reserveOut, feeNumerator, feeDenominator uint64) (uint64, float64, error) {
	if amountIn == 0 || reserveIn == 0 || reserveOut == 0 {
		return 0, 0, fmt.Errorf("invalid inputs: amounts must be > 0")
	}
	if feeDenominator == 0 {
		return 0, 0, fmt.Errorf("feeDenominator cannot be 0")
	}

	// amountInAfterFee = amountIn * (feeDenominator - feeNumerator) / feeDenominator
	amountInBig := new(big.Int).SetUint64(amountIn)
	feeMultiplier := new(big.Int).SetUint64(feeDenominator - feeNumerator)
	feeDenom := new(big.Int).SetUint64(feeDenominator)

	amountInAfterFee := new(big.Int).Mul(amountInBig, feeMultiplier)
	amountInAfterFee.Div(amountInAfterFee, feeDenom)

	// out = (amountInAfterFee * reserveOut) / (reserveIn + amountInAfterFee)
	reserveOutBig := new(big.Int).SetUint64(reserveOut)
	reserveInBig := new(big.Int).SetUint64(reserveIn)

	numerator := new(big.Int).Mul(amountInAfterFee, reserveOutBig)
	denominator := new(big.Int).Add(reserveInBig, amountInAfterFee)

	amountOutBig := new(big.Int).Div(numerator, denominator)

	if !amountOutBig.IsUint64() {
		return 0, 0, fmt.Errorf("output amount overflow")
	}
	amountOut := amountOutBig.Uint64()

	// priceImpact = 1 - (executionRate / idealRate)
	idealRate := float64(reserveOut) / float64(reserveIn)
	executionRate := float64(amountOut) / float64(amountIn)
	priceImpact := 0.0
	if idealRate > 0 {
		priceImpact = math.Max(0, 1-(executionRate/idealRate))
	}

	return amountOut, priceImpact, nil
}
