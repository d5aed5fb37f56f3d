package tokens

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeMint(t *testing.T) {
	assert.Equal(t, WrappedSOLMint, NormalizeMint(NativeSOLMint))
	assert.Equal(t, WrappedSOLMint, NormalizeMint(WrappedSOLMint))

	usdc := solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	assert.Equal(t, usdc, NormalizeMint(usdc))
}

func TestSameMint(t *testing.T) {
	assert.True(t, SameMint(NativeSOLMint, WrappedSOLMint))
	assert.True(t, SameMint(WrappedSOLMint, NativeSOLMint))
	assert.True(t, SameMint(NativeSOLMint, NativeSOLMint))

	usdc := solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	assert.False(t, SameMint(NativeSOLMint, usdc))
}

func TestIsSOL(t *testing.T) {
	assert.True(t, IsSOL(NativeSOLMint))
	assert.True(t, IsSOL(WrappedSOLMint))
	assert.True(t, IsNativeSOL(NativeSOLMint))
	assert.False(t, IsNativeSOL(WrappedSOLMint))
}

func TestToRaw(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		decimals uint8
		want     uint64
	}{
		{"one sol", "1", 9, 1_000_000_000},
		{"fractional", "0.5", 9, 500_000_000},
		{"usdc", "12.34", 6, 12_340_000},
		{"rounds not truncates", "0.0000001", 6, 0},
		{"rounds half up", "0.0000005", 6, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, err := decimal.NewFromString(tt.amount)
			require.NoError(t, err)

			raw, err := ToRaw(amount, tt.decimals)
			require.NoError(t, err)
			assert.Equal(t, tt.want, raw)
		})
	}
}

func TestToRawNegative(t *testing.T) {
	_, err := ToRaw(decimal.NewFromInt(-1), 9)
	assert.Error(t, err)
}

func TestFromRawRoundTrip(t *testing.T) {
	raw := uint64(123_456_789)
	amount := FromRaw(raw, 6)
	assert.Equal(t, "123.456789", amount.String())

	back, err := ToRaw(amount, 6)
	require.NoError(t, err)
	assert.Equal(t, raw, back)
}

func TestRoundToDecimals(t *testing.T) {
	v := decimal.RequireFromString("1.23456789")
	assert.Equal(t, "1.234568", RoundToDecimals(v, 6).String())
	assert.Equal(t, "1.23", RoundToDecimals(v, 2).String())
}

func TestRegistryLookups(t *testing.T) {
	reg := NewRegistry(DefaultList())

	sol, err := reg.BySymbol("SOL")
	require.NoError(t, err)
	assert.Equal(t, uint8(9), sol.Decimals)

	// Native SOL pseudo-mint aliases onto the wrapped entry.
	byNative, err := reg.ByMint(NativeSOLMint)
	require.NoError(t, err)
	assert.Equal(t, sol, byNative)

	_, err = reg.BySymbol("NOPE")
	assert.Error(t, err)

	assert.Equal(t, len(DefaultList()), reg.Count())
	assert.Len(t, reg.All(), reg.Count())
}
