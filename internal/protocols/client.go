package protocols

import (
	"context"
	"errors"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	"github.com/solswap-labs/exchange-core/internal/rpc"
	"github.com/solswap-labs/exchange-core/internal/tokens"
)

// Failure taxonomy shared by all adapters
var (
	ErrPoolNotFound        = errors.New("pool not found")
	ErrPoolInfoNotFound    = errors.New("pool info not found")
	ErrMarketNotFound      = errors.New("market not found")
	ErrExchangeUnavailable = errors.New("exchange unavailable")
	ErrWalletNotFound      = errors.New("wallet not found")
)

// ChainReader is the read-only chain surface adapters depend on. *rpc.Client
// satisfies it; tests substitute fakes.
type ChainReader interface {
	GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*rpc.AccountInfo, error)
	AccountExists(ctx context.Context, pubkey solana.PublicKey) (bool, error)
	GetTokenAccountBalance(ctx context.Context, account solana.PublicKey) (uint64, error)
	GetLatestBlockhash(ctx context.Context) (solana.Hash, error)
	GetMinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error)
}

// ExchangeInfo is the protocol-agnostic result of quoting a swap on one
// client at one moment. Amounts are human-readable decimal units, rounded to
// each token's precision. Ephemeral: recomputed on every input or interval
// change, never reused across pair changes.
type ExchangeInfo struct {
	FromAmm      string
	AmountIn     decimal.Decimal
	AmountOut    decimal.Decimal
	MinAmountOut decimal.Decimal
	OutPrice     decimal.Decimal
	PriceImpact  float64
	ProtocolFees decimal.Decimal
	NetworkFees  decimal.Decimal
}

// SwapRequest carries everything GetSwap needs to build an unsigned
// transaction. FeeAccount is the aggregator's fee-collection owner; the
// adapter routes FeeAmount of the source token to its token account,
// creating that account first when missing.
type SwapRequest struct {
	Owner      solana.PublicKey
	From       tokens.TokenInfo
	To         tokens.TokenInfo
	AmountIn   decimal.Decimal
	AmountOut  decimal.Decimal
	Slippage   float64
	FeeAccount solana.PublicKey
	FeeAmount  decimal.Decimal
}

// PoolInfo is a point-in-time snapshot of an AMM pool's state
type PoolInfo struct {
	Address        solana.PublicKey
	ReserveA       uint64
	ReserveB       uint64
	FeeNumerator   uint64
	FeeDenominator uint64
	FetchedAt      time.Time
}

// MarketInfo is a point-in-time snapshot of an order-book market
type MarketInfo struct {
	Address      solana.PublicKey
	BaseMint     solana.PublicKey
	QuoteMint    solana.PublicKey
	BaseLotSize  uint64
	QuoteLotSize uint64
	BestBid      decimal.Decimal
	BestAsk      decimal.Decimal
	FetchedAt    time.Time
}

// Client is the capability set every protocol adapter implements. The set of
// implementations is closed: Orca, Raydium, Serum.
type Client interface {
	ProtocolAddress() solana.PublicKey
	ProtocolName() string

	// GetExchangeInfo quotes a swap. Fails with ErrPoolNotFound (or
	// ErrMarketNotFound) when the pair is not served.
	GetExchangeInfo(ctx context.Context, from, to tokens.TokenInfo, amount decimal.Decimal, slippage float64) (*ExchangeInfo, error)

	// GetSwap builds an unsigned transaction: the protocol swap instruction
	// guarded by amountOut*(100-slippage)/100, followed by the aggregator
	// fee transfer. Building never mutates on-chain state.
	GetSwap(ctx context.Context, req SwapRequest) (*solana.Transaction, error)
}

// LPClient is implemented by pool-based venues (Orca, Raydium)
type LPClient interface {
	Client
	GetPoolInfo(ctx context.Context, address solana.PublicKey) (*PoolInfo, error)
}

// MarketClient is implemented by the order-book venue (Serum)
type MarketClient interface {
	Client
	GetMarketInfo(ctx context.Context, from, to tokens.TokenInfo) (*MarketInfo, error)
}

// ClampSlippage bounds a slippage percentage to the accepted range.
// Out-of-range input is clamped, never rejected.
const (
	MinSlippagePercent = 0.1
	MaxSlippagePercent = 20.0
)

func ClampSlippage(slippage float64) float64 {
	if slippage < MinSlippagePercent {
		return MinSlippagePercent
	}
	if slippage > MaxSlippagePercent {
		return MaxSlippagePercent
	}
	return slippage
}

// MinAmountOut computes the guaranteed output under a slippage tolerance:
// amountOut * (100 - slippage) / 100, on the clamped slippage.
func MinAmountOut(amountOut decimal.Decimal, slippage float64) decimal.Decimal {
	s := decimal.NewFromFloat(ClampSlippage(slippage))
	hundred := decimal.NewFromInt(100)
	return amountOut.Mul(hundred.Sub(s)).Div(hundred)
}
