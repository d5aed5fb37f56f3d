package protocols

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestClampSlippage(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"below minimum", 0.0, MinSlippagePercent},
		{"negative", -3, MinSlippagePercent},
		{"at minimum", 0.1, 0.1},
		{"in range", 0.5, 0.5},
		{"at maximum", 20.0, 20.0},
		{"above maximum", 50.0, MaxSlippagePercent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClampSlippage(tt.in))
		})
	}
}

func TestMinAmountOut(t *testing.T) {
	out := decimal.RequireFromString("100")

	assert.Equal(t, "99.5", MinAmountOut(out, 0.5).String())
	assert.Equal(t, "80", MinAmountOut(out, 20).String())

	// Out-of-range slippage is clamped, never rejected.
	assert.Equal(t, "80", MinAmountOut(out, 99).String())
	assert.Equal(t, "99.9", MinAmountOut(out, 0).String())
}

func TestMinAmountOutNeverExceedsAmountOut(t *testing.T) {
	amounts := []string{"0.000001", "1", "12.34", "1000000"}
	slippages := []float64{-1, 0, 0.1, 0.5, 5, 20, 100}
	for _, a := range amounts {
		out := decimal.RequireFromString(a)
		for _, s := range slippages {
			min := MinAmountOut(out, s)
			assert.True(t, min.LessThan(out), "min %s must be < out %s at slippage %v", min, out, s)
			assert.True(t, min.IsPositive())
		}
	}
}
