package serum

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solswap-labs/exchange-core/internal/protocols"
	"github.com/solswap-labs/exchange-core/internal/registry"
	"github.com/solswap-labs/exchange-core/internal/rpc"
	"github.com/solswap-labs/exchange-core/internal/tokens"
)

var (
	solToken  = tokens.TokenInfo{Address: tokens.WrappedSOLMint.String(), Symbol: "SOL", Decimals: 9}
	usdcToken = tokens.TokenInfo{Address: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", Symbol: "USDC", Decimals: 6}
	orcaToken = tokens.TokenInfo{Address: "orcaEKTdK7LKz57vaAYr9QeNsVEPfiu6QeMU1kektZE", Symbol: "ORCA", Decimals: 6}
)

type fakeChain struct {
	accounts map[solana.PublicKey][]byte
}

func (f *fakeChain) GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*rpc.AccountInfo, error) {
	data, ok := f.accounts[pubkey]
	if !ok {
		return nil, nil
	}
	return &rpc.AccountInfo{Data: data}, nil
}

func (f *fakeChain) AccountExists(ctx context.Context, pubkey solana.PublicKey) (bool, error) {
	_, ok := f.accounts[pubkey]
	return ok, nil
}

func (f *fakeChain) GetTokenAccountBalance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	return 0, nil
}

func (f *fakeChain) GetLatestBlockhash(ctx context.Context) (solana.Hash, error) {
	return solana.Hash{1}, nil
}

func (f *fakeChain) GetMinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error) {
	return 23_357_760, nil
}

// newMarketChain seeds the chain with the registered SOL/USDC market and a
// one-level book on each side.
func newMarketChain(t *testing.T, bidLots, askLots uint64) *fakeChain {
	t.Helper()
	data := buildMarketAccount(t, 100_000_000, 100, 4)
	m, err := decodeMarket(data)
	require.NoError(t, err)

	chain := &fakeChain{accounts: map[solana.PublicKey][]byte{
		m.OwnAddress: data,
	}}
	if bidLots > 0 {
		chain.accounts[m.Bids] = buildSlab([]bookLevel{{PriceLots: bidLots, QuantityLots: 100}})
	} else {
		chain.accounts[m.Bids] = buildSlab(nil)
	}
	if askLots > 0 {
		chain.accounts[m.Asks] = buildSlab([]bookLevel{{PriceLots: askLots, QuantityLots: 100}})
	} else {
		chain.accounts[m.Asks] = buildSlab(nil)
	}
	return chain
}

func TestGetExchangeInfoSellBase(t *testing.T) {
	chain := newMarketChain(t, 100_000, 100_100)
	client := NewClient(registry.NewDefault(), chain, nil)

	// Selling 2 SOL crosses the best bid at 100 USDC per SOL.
	info, err := client.GetExchangeInfo(context.Background(), solToken, usdcToken, decimal.NewFromInt(2), 0.5)
	require.NoError(t, err)

	assert.Equal(t, "Serum", info.FromAmm)
	assert.Equal(t, "200", info.AmountOut.String())
	assert.Equal(t, "100", info.OutPrice.String())
	assert.Zero(t, info.PriceImpact)
	assert.True(t, info.MinAmountOut.LessThan(info.AmountOut))
	// 4 bps taker fee on the input.
	assert.Equal(t, "0.0008", info.ProtocolFees.String())
}

func TestGetExchangeInfoBuyBase(t *testing.T) {
	chain := newMarketChain(t, 100_000, 100_100)
	client := NewClient(registry.NewDefault(), chain, nil)

	// Buying SOL with 100 USDC crosses the best ask at 100.1 USDC per SOL.
	info, err := client.GetExchangeInfo(context.Background(), usdcToken, solToken, decimal.NewFromInt(100), 0.5)
	require.NoError(t, err)

	assert.Equal(t, "0.999000999", info.AmountOut.String())
}

func TestGetExchangeInfoEmptyBook(t *testing.T) {
	chain := newMarketChain(t, 0, 100_100)
	client := NewClient(registry.NewDefault(), chain, nil)

	_, err := client.GetExchangeInfo(context.Background(), solToken, usdcToken, decimal.NewFromInt(1), 0.5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no resting bids")
}

func TestGetExchangeInfoMarketNotFound(t *testing.T) {
	chain := newMarketChain(t, 100_000, 100_100)
	client := NewClient(registry.NewDefault(), chain, nil)

	_, err := client.GetExchangeInfo(context.Background(), usdcToken, orcaToken, decimal.NewFromInt(1), 0.5)
	assert.ErrorIs(t, err, protocols.ErrMarketNotFound)
}

func TestOrderParamsSellBelowLotSize(t *testing.T) {
	chain := newMarketChain(t, 100_000, 100_100)
	client := NewClient(registry.NewDefault(), chain, nil)

	data := buildMarketAccount(t, 100_000_000, 100, 4)
	m, err := decodeMarket(data)
	require.NoError(t, err)

	// Selling half a base lot rounds the quantity down to zero lots.
	_, _, _, err = client.orderParams(context.Background(), m, protocols.SwapRequest{}, true, 0.5, 50_000_000)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "below minimum lot size")

	// A whole number of lots still goes through.
	side, limit, maxBase, err := client.orderParams(context.Background(), m, protocols.SwapRequest{}, true, 0.5, 200_000_000)
	require.NoError(t, err)
	assert.Equal(t, uint32(sideAsk), side)
	assert.NotZero(t, limit)
	assert.Equal(t, uint64(2), maxBase)
}

func TestGetMarketInfo(t *testing.T) {
	chain := newMarketChain(t, 100_000, 100_100)
	client := NewClient(registry.NewDefault(), chain, nil)

	info, err := client.GetMarketInfo(context.Background(), solToken, usdcToken)
	require.NoError(t, err)

	assert.Equal(t, "100", info.BestBid.String())
	assert.Equal(t, "100.1", info.BestAsk.String())
	assert.Equal(t, uint64(100_000_000), info.BaseLotSize)
	assert.Equal(t, uint64(100), info.QuoteLotSize)
	assert.Equal(t, tokens.WrappedSOLMint, info.BaseMint)
}

func TestGetMarketInfoEmptySideLeavesZero(t *testing.T) {
	chain := newMarketChain(t, 0, 100_100)
	client := NewClient(registry.NewDefault(), chain, nil)

	info, err := client.GetMarketInfo(context.Background(), solToken, usdcToken)
	require.NoError(t, err)
	assert.True(t, info.BestBid.IsZero())
	assert.False(t, info.BestAsk.IsZero())
}
