// Package orca implements the swap client for Orca's legacy token-swap
// pools. Quotes come from the constant-product invariant over the pool's
// vault balances; swap transactions use the SPL token-swap Swap instruction.
package orca

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

// Client quotes and builds swaps against Orca token-swap pools
type Client struct {
	registry *registry.Registry
	chain    protocols.ChainReader
	logger   *logrus.Logger
}

// NewClient creates an Orca client backed by the given pool registry and
// chain reader
func NewClient(reg *registry.Registry, chain protocols.ChainReader, logger *logrus.Logger) *Client {
	if logger == nil {
		logger = logrus.New()
	}
	return &Client{registry: reg, chain: chain, logger: logger}
}

func (c *Client) ProtocolAddress() solana.PublicKey {
	return registry.OrcaProgramID
}

func (c *Client) ProtocolName() string {
	return "Orca"
}

// findPool returns the first registered Orca pool serving the pair
func (c *Client) findPool(from, to tokens.TokenInfo) (registry.AmmPoolInfo, error) {
	pools := c.registry.GetTokensPools(from.Mint(), to.Mint(), registry.OrcaProgramID)
	if len(pools) == 0 {
		return registry.AmmPoolInfo{}, protocols.ErrPoolNotFound
	}
	return pools[0], nil
}

// GetPoolInfo fetches the live vault balances for a pool address
func (c *Client) GetPoolInfo(ctx context.Context, address solana.PublicKey) (*protocols.PoolInfo, error) {
	pool, ok := c.registry.PoolByAddress(address)
	if !ok || !pool.ProtocolAddress.Equals(registry.OrcaProgramID) {
		return nil, protocols.ErrPoolInfoNotFound
	}

	reserveA, err := c.chain.GetTokenAccountBalance(ctx, pool.Accounts.VaultA)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch vault A balance: %w", err)
	}
	reserveB, err := c.chain.GetTokenAccountBalance(ctx, pool.Accounts.VaultB)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch vault B balance: %w", err)
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
	}).Debug("Orca quote computed")

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

// GetSwap builds an unsigned token-swap transaction for the request. The
// aggregator fee transfer follows the swap instruction so the fee is taken
// only when the swap itself succeeds.
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

	// A native-SOL source account must cover the swap input plus the fee
	// transfer taken from the same account.
	sourceRes, err := protocols.ResolveTokenAccount(ctx, c.chain, req.Owner, req.From.Mint(), rawIn+rawFee)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve source account: %w", err)
	}
	destRes, err := protocols.ResolveTokenAccount(ctx, c.chain, req.Owner, req.To.Mint(), 0)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve destination account: %w", err)
	}

	swapSource, swapDest := pool.Accounts.VaultA, pool.Accounts.VaultB
	if !tokens.SameMint(req.From.Mint(), pool.TokenAddresses[0]) {
		swapSource, swapDest = pool.Accounts.VaultB, pool.Accounts.VaultA
	}

	swapIx := newSwapInstruction(
		pool,
		req.Owner,
		sourceRes.Account,
		destRes.Account,
		swapSource,
		swapDest,
		rawIn,
		rawMinOut,
	)

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
	}).Debug("Orca swap transaction assembled")

	return protocols.BuildUnsignedTransaction(ctx, c.chain, req.Owner, ixs)
}
