// Package raydium implements the swap client for Raydium AMM v4 pools.
// Quoting uses the same constant-product math as Orca; the swap instruction
// additionally routes through the pool's bound Serum market accounts.
package raydium

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/solswap-labs/exchange-core/internal/protocols"
	"github.com/solswap-labs/exchange-core/internal/registry"
	"github.com/solswap-labs/exchange-core/internal/rpc"
	"github.com/solswap-labs/exchange-core/internal/tokens"
)

// Client quotes and builds swaps against Raydium AMM v4 pools
type Client struct {
	registry *registry.Registry
	chain    protocols.ChainReader
	logger   *logrus.Logger
}

// NewClient creates a Raydium client backed by the given pool registry and
// chain reader
func NewClient(reg *registry.Registry, chain protocols.ChainReader, logger *logrus.Logger) *Client {
	if logger == nil {
		logger = logrus.New()
	}
	return &Client{registry: reg, chain: chain, logger: logger}
}

func (c *Client) ProtocolAddress() solana.PublicKey {
	return registry.RaydiumProgramID
}

func (c *Client) ProtocolName() string {
	return "Raydium"
}

func (c *Client) findPool(from, to tokens.TokenInfo) (registry.AmmPoolInfo, error) {
	pools := c.registry.GetTokensPools(from.Mint(), to.Mint(), registry.RaydiumProgramID)
	if len(pools) == 0 {
		return registry.AmmPoolInfo{}, protocols.ErrPoolNotFound
	}
	return pools[0], nil
}

// GetPoolInfo fetches the live vault balances for a pool address. Vault
// balances approximate pool liquidity; funds parked in the pool's serum
// open-orders account are not counted.
func (c *Client) GetPoolInfo(ctx context.Context, address solana.PublicKey) (*protocols.PoolInfo, error) {
	pool, ok := c.registry.PoolByAddress(address)
	if !ok || !pool.ProtocolAddress.Equals(registry.RaydiumProgramID) {
		return nil, protocols.ErrPoolInfoNotFound
	}

	reserveA, err := c.chain.GetTokenAccountBalance(ctx, pool.Accounts.VaultA)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch coin vault balance: %w", err)
	}
	reserveB, err := c.chain.GetTokenAccountBalance(ctx, pool.Accounts.VaultB)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pc vault balance: %w", err)
	}

	return &protocols.PoolInfo{
		Address:        pool.Address,
		ReserveA:       reserveA,
		ReserveB:       reserveB,
		FeeNumerator:   pool.FeeNumerator,
		FeeDenominator: pool.FeeDenominator,
		FetchedAt:      time.Now(),
	}, nil
}

// GetExchangeInfo quotes a swap of `amount` from -> to over the pool's
// current reserves
func (c *Client) GetExchangeInfo(ctx context.Context, from, to tokens.TokenInfo, amount decimal.Decimal, slippage float64) (*protocols.ExchangeInfo, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("amount must be > 0")
	}

	pool, err := c.findPool(from, to)
	if err != nil {
		return nil, err
	}

	info, err := c.GetPoolInfo(ctx, pool.Address)
	if err != nil {
		return nil, err
	}

	reserveIn, reserveOut := info.ReserveA, info.ReserveB
	if !tokens.SameMint(from.Mint(), pool.TokenAddresses[0]) {
		reserveIn, reserveOut = info.ReserveB, info.ReserveA
	}

	rawIn, err := tokens.ToRaw(amount, from.Decimals)
	if err != nil {
		return nil, fmt.Errorf("invalid input amount: %w", err)
	}

	rawOut, priceImpact, err := protocols.CalculateSwapOutput(rawIn, reserveIn, reserveOut, info.FeeNumerator, info.FeeDenominator)
	if err != nil {
		return nil, err
	}

	amountIn := tokens.RoundToDecimals(amount, from.Decimals)
	amountOut := tokens.FromRaw(rawOut, to.Decimals)
	minOut := tokens.RoundToDecimals(protocols.MinAmountOut(amountOut, slippage), to.Decimals)

	feeRate := decimal.NewFromInt(int64(info.FeeNumerator)).Div(decimal.NewFromInt(int64(info.FeeDenominator)))
	protocolFees := tokens.RoundToDecimals(amountIn.Mul(feeRate), from.Decimals)

	c.logger.WithFields(logrus.Fields{
		"pool":       pool.Name,
		"amount_in":  amountIn.String(),
		"amount_out": amountOut.String(),
		"impact":     priceImpact,
	}).Debug("Raydium quote computed")

	return &protocols.ExchangeInfo{
		FromAmm:      c.ProtocolName(),
		AmountIn:     amountIn,
		AmountOut:    amountOut,
		MinAmountOut: minOut,
		OutPrice:     amountOut.Div(amountIn),
		PriceImpact:  priceImpact,
		ProtocolFees: protocolFees,
		NetworkFees:  tokens.FromRaw(rpc.LamportsPerSignature, tokens.SOLDecimals),
	}, nil
}

// GetSwap builds an unsigned swapBaseIn transaction for the request, with
// the aggregator fee transfer appended after the swap instruction
func (c *Client) GetSwap(ctx context.Context, req protocols.SwapRequest) (*solana.Transaction, error) {
	pool, err := c.findPool(req.From, req.To)
	if err != nil {
		return nil, err
	}

	rawIn, err := tokens.ToRaw(req.AmountIn, req.From.Decimals)
	if err != nil {
		return nil, fmt.Errorf("invalid input amount: %w", err)
	}
	rawFee, err := tokens.ToRaw(req.FeeAmount, req.From.Decimals)
	if err != nil {
		return nil, fmt.Errorf("invalid fee amount: %w", err)
	}
	minOut := protocols.MinAmountOut(req.AmountOut, req.Slippage)
	rawMinOut, err := tokens.ToRaw(minOut, req.To.Decimals)
	if err != nil {
		return nil, fmt.Errorf("invalid min output amount: %w", err)
	}

	sourceRes, err := protocols.ResolveTokenAccount(ctx, c.chain, req.Owner, req.From.Mint(), rawIn+rawFee)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve source account: %w", err)
	}
	destRes, err := protocols.ResolveTokenAccount(ctx, c.chain, req.Owner, req.To.Mint(), 0)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve destination account: %w", err)
	}

	swapIx := newSwapBaseInInstruction(pool, req.Owner, sourceRes.Account, destRes.Account, rawIn, rawMinOut)

	feeIxs, err := protocols.FeeTransferIxs(ctx, c.chain, req.Owner, sourceRes.Account, req.FeeAccount, req.From.Mint(), rawFee)
	if err != nil {
		return nil, fmt.Errorf("failed to build fee transfer: %w", err)
	}

	var ixs []solana.Instruction
	ixs = append(ixs, sourceRes.PreIxs...)
	ixs = append(ixs, destRes.PreIxs...)
	ixs = append(ixs, swapIx)
	ixs = append(ixs, feeIxs...)
	ixs = append(ixs, destRes.PostIxs...)
	ixs = append(ixs, sourceRes.PostIxs...)

	c.logger.WithFields(logrus.Fields{
		"pool":         pool.Name,
		"owner":        req.Owner.String(),
		"amount_in":    rawIn,
		"min_out":      rawMinOut,
		"instructions": len(ixs),
	}).Debug("Raydium swap transaction assembled")

	return protocols.BuildUnsignedTransaction(ctx, c.chain, req.Owner, ixs)
}
