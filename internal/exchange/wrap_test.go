package exchange

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solswap-labs/exchange-core/internal/protocols"
	"github.com/solswap-labs/exchange-core/internal/rpc"
	"github.com/solswap-labs/exchange-core/internal/tokens"
)

var (
	nativeSOLToken = tokens.TokenInfo{Address: tokens.NativeSOLMint.String(), Symbol: "SOL", Decimals: 9}
	wsolToken      = tokens.TokenInfo{Address: tokens.WrappedSOLMint.String(), Symbol: "wSOL", Decimals: 9}
	usdcTok        = tokens.TokenInfo{Address: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", Symbol: "USDC", Decimals: 6}
)

type fakeChain struct {
	existing map[solana.PublicKey]bool
	balances map[solana.PublicKey]uint64
}

func (f *fakeChain) GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*rpc.AccountInfo, error) {
	if f.existing[pubkey] {
		return &rpc.AccountInfo{}, nil
	}
	return nil, nil
}

func (f *fakeChain) AccountExists(ctx context.Context, pubkey solana.PublicKey) (bool, error) {
	return f.existing[pubkey], nil
}

func (f *fakeChain) GetTokenAccountBalance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	return f.balances[account], nil
}

func (f *fakeChain) GetLatestBlockhash(ctx context.Context) (solana.Hash, error) {
	return solana.Hash{1}, nil
}

func (f *fakeChain) GetMinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error) {
	return 2_039_280, nil
}

func TestIsWrapPair(t *testing.T) {
	assert.True(t, IsWrapPair(nativeSOLToken, wsolToken))
	assert.True(t, IsWrapPair(wsolToken, nativeSOLToken))
	assert.False(t, IsWrapPair(nativeSOLToken, usdcTok))
}

func TestIsUnwrap(t *testing.T) {
	assert.True(t, IsUnwrap(wsolToken, nativeSOLToken))
	assert.False(t, IsUnwrap(nativeSOLToken, wsolToken))
	assert.False(t, IsUnwrap(wsolToken, usdcTok))
}

func TestWrapExchangeInfo(t *testing.T) {
	baseline := decimal.RequireFromString("0.000005")
	info := WrapExchangeInfo(nativeSOLToken, decimal.RequireFromString("2.5"), baseline)

	assert.Equal(t, "wrap", info.FromAmm)
	assert.True(t, info.OutPrice.Equal(decimal.NewFromInt(1)))
	assert.Zero(t, info.PriceImpact)
	assert.True(t, info.AmountOut.Equal(info.AmountIn))
	assert.True(t, info.MinAmountOut.Equal(info.AmountIn))
	assert.True(t, info.ProtocolFees.IsZero())
	assert.Equal(t, baseline.String(), info.NetworkFees.String())
}

func TestBuildWrapTransaction(t *testing.T) {
	owner := solana.MustPublicKeyFromBase58("4k3Dyjzvzp8eMZWUXbBCjEvwSkkk59S5iCNLY3QrkX6R")
	chain := &fakeChain{existing: map[solana.PublicKey]bool{}}

	tx, err := BuildWrapTransaction(context.Background(), chain, owner, decimal.NewFromInt(1))
	require.NoError(t, err)

	// Missing wSOL account: create, fund, sync.
	require.Len(t, tx.Message.Instructions, 3)

	fund := tx.Message.Instructions[1]
	program, err := tx.Message.Program(fund.ProgramIDIndex)
	require.NoError(t, err)
	assert.Equal(t, solana.SystemProgramID, program)

	sync := tx.Message.Instructions[2]
	program, err = tx.Message.Program(sync.ProgramIDIndex)
	require.NoError(t, err)
	assert.Equal(t, solana.TokenProgramID, program)
	assert.Equal(t, []byte{17}, []byte(sync.Data))
}

func TestBuildWrapTransactionExistingAccount(t *testing.T) {
	owner := solana.MustPublicKeyFromBase58("4k3Dyjzvzp8eMZWUXbBCjEvwSkkk59S5iCNLY3QrkX6R")
	ata, _, err := protocols.FindAssociatedTokenAddress(owner, tokens.WrappedSOLMint)
	require.NoError(t, err)

	chain := &fakeChain{existing: map[solana.PublicKey]bool{ata: true}}
	tx, err := BuildWrapTransaction(context.Background(), chain, owner, decimal.NewFromInt(1))
	require.NoError(t, err)

	// Existing account: just fund and sync.
	assert.Len(t, tx.Message.Instructions, 2)
}

func TestBuildWrapTransactionZeroAmount(t *testing.T) {
	owner := solana.MustPublicKeyFromBase58("4k3Dyjzvzp8eMZWUXbBCjEvwSkkk59S5iCNLY3QrkX6R")
	chain := &fakeChain{}

	_, err := BuildWrapTransaction(context.Background(), chain, owner, decimal.Zero)
	assert.Error(t, err)
}

func TestBuildUnwrapTransaction(t *testing.T) {
	owner := solana.MustPublicKeyFromBase58("4k3Dyjzvzp8eMZWUXbBCjEvwSkkk59S5iCNLY3QrkX6R")
	ata, _, err := protocols.FindAssociatedTokenAddress(owner, tokens.WrappedSOLMint)
	require.NoError(t, err)

	chain := &fakeChain{existing: map[solana.PublicKey]bool{ata: true}}
	tx, err := BuildUnwrapTransaction(context.Background(), chain, owner)
	require.NoError(t, err)

	require.Len(t, tx.Message.Instructions, 1)
	assert.Equal(t, []byte{9}, []byte(tx.Message.Instructions[0].Data))
}

func TestBuildUnwrapTransactionNoAccount(t *testing.T) {
	owner := solana.MustPublicKeyFromBase58("4k3Dyjzvzp8eMZWUXbBCjEvwSkkk59S5iCNLY3QrkX6R")
	chain := &fakeChain{existing: map[solana.PublicKey]bool{}}

	_, err := BuildUnwrapTransaction(context.Background(), chain, owner)
	assert.Error(t, err)
}
