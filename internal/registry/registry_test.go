package registry

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solswap-labs/exchange-core/internal/tokens"
)

var solMint = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")

func TestGetTokensPoolsOrderInsensitive(t *testing.T) {
	reg := NewDefault()

	forward := reg.GetTokensPools(solMint, usdcMint)
	backward := reg.GetTokensPools(usdcMint, solMint)
	assert.Equal(t, forward, backward)
	assert.NotEmpty(t, forward)
}

func TestGetTokensPoolsNativeAliasing(t *testing.T) {
	reg := NewDefault()

	viaNative := reg.GetTokensPools(tokens.NativeSOLMint, usdcMint)
	viaWrapped := reg.GetTokensPools(tokens.WrappedSOLMint, usdcMint)
	assert.Equal(t, viaWrapped, viaNative)
	assert.NotEmpty(t, viaNative)
}

func TestGetTokensPoolsProtocolFilter(t *testing.T) {
	reg := NewDefault()

	orcaOnly := reg.GetTokensPools(solMint, usdcMint, OrcaProgramID)
	require.NotEmpty(t, orcaOnly)
	for _, pool := range orcaOnly {
		assert.Equal(t, OrcaProgramID, pool.ProtocolAddress)
	}
}

func TestGetTokensPoolsExcludesSerum(t *testing.T) {
	reg := NewDefault()

	for _, pool := range reg.GetTokensPools(solMint, usdcMint) {
		assert.NotEqual(t, SerumProgramID, pool.ProtocolAddress)
	}
}

func TestGetTokensPoolsUnknownPair(t *testing.T) {
	reg := NewDefault()

	random := solana.MustPublicKeyFromBase58("4k3Dyjzvzp8eMZWUXbBCjEvwSkkk59S5iCNLY3QrkX6R")
	pools := reg.GetTokensPools(random, usdtMint)
	// Unknown pair is empty, not an error.
	assert.Empty(t, pools)
}

func TestGetMarket(t *testing.T) {
	reg := NewDefault()

	market, ok := reg.GetMarket(solMint, usdcMint)
	require.True(t, ok)
	assert.Equal(t, SerumProgramID, market.ProtocolAddress)

	_, ok = reg.GetMarket(usdcMint, usdtMint)
	assert.False(t, ok)
}

func TestPoolByAddress(t *testing.T) {
	reg := NewDefault()

	pools := reg.GetTokensPools(solMint, usdcMint)
	require.NotEmpty(t, pools)

	found, ok := reg.PoolByAddress(pools[0].Address)
	require.True(t, ok)
	assert.Equal(t, pools[0], found)

	_, ok = reg.PoolByAddress(solana.PublicKey{})
	assert.False(t, ok)
}

func TestProtocolIndexOrder(t *testing.T) {
	reg := NewDefault()

	assert.Less(t, reg.ProtocolIndex(OrcaProgramID), reg.ProtocolIndex(RaydiumProgramID))
	assert.Less(t, reg.ProtocolIndex(RaydiumProgramID), reg.ProtocolIndex(SerumProgramID))
	// Unknown protocols sort last.
	assert.Equal(t, len(reg.Protocols()), reg.ProtocolIndex(solana.PublicKey{}))
}

func TestNewValidation(t *testing.T) {
	protos := DefaultProtocols()

	t.Run("duplicate protocol", func(t *testing.T) {
		_, err := New(append(protos, protos[0]), nil)
		assert.Error(t, err)
	})

	t.Run("unknown protocol on pool", func(t *testing.T) {
		_, err := New(protos, []AmmPoolInfo{{
			Name:            "bad",
			ProtocolAddress: solana.MustPublicKeyFromBase58("4k3Dyjzvzp8eMZWUXbBCjEvwSkkk59S5iCNLY3QrkX6R"),
			FeeDenominator:  10000,
		}})
		assert.Error(t, err)
	})

	t.Run("zero fee denominator", func(t *testing.T) {
		_, err := New(protos, []AmmPoolInfo{{
			Name:            "bad",
			ProtocolAddress: OrcaProgramID,
		}})
		assert.Error(t, err)
	})
}
