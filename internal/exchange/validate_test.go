package exchange

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solswap-labs/exchange-core/internal/fees"
)

func feesOf(aggregator, network string) fees.FeesInfo {
	return fees.FeesInfo{
		Aggregator: decimal.RequireFromString(aggregator),
		Network:    decimal.RequireFromString(network),
	}
}

func TestValidateZeroAmount(t *testing.T) {
	err := Validate(usdcTok, decimal.NewFromInt(100), decimal.Zero, feesOf("0.25", "0.000005"))
	assert.ErrorIs(t, err, ErrInsufficientAmount)

	err = Validate(usdcTok, decimal.NewFromInt(100), decimal.NewFromInt(-1), feesOf("0.25", "0.000005"))
	assert.ErrorIs(t, err, ErrInsufficientAmount)
}

func TestValidateSPLSource(t *testing.T) {
	fi := feesOf("0.25", "0.000005")

	// The SPL balance covers amount plus the aggregator fee; the network fee
	// is paid in SOL, not from this balance.
	err := Validate(usdcTok, decimal.RequireFromString("100.25"), decimal.NewFromInt(100), fi)
	assert.NoError(t, err)

	err = Validate(usdcTok, decimal.NewFromInt(100), decimal.NewFromInt(100), fi)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	var ib *InsufficientBalanceError
	require.True(t, errors.As(err, &ib))
	assert.Equal(t, "100.25", ib.Needed.String())
	assert.Equal(t, "100", ib.Balance.String())
}

func TestValidateSOLSourceIncludesNetworkFee(t *testing.T) {
	fi := feesOf("0.0025", "0.000005")

	// need = 1 + 0.0025 + 0.000005
	err := Validate(nativeSOLToken, decimal.RequireFromString("1.002505"), decimal.NewFromInt(1), fi)
	assert.NoError(t, err)

	err = Validate(nativeSOLToken, decimal.RequireFromString("1.002504"), decimal.NewFromInt(1), fi)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestValidateWrappedSOLSourceIncludesNetworkFee(t *testing.T) {
	fi := feesOf("0.0025", "0.000005")

	err := Validate(wsolToken, decimal.RequireFromString("1.0025"), decimal.NewFromInt(1), fi)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}
