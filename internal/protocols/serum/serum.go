// Package serum implements the order-book swap client for serum DEX v3
// markets. Quotes read the top of the live book; swaps place an
// immediate-or-cancel taker order and settle in the same transaction.
package serum

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

// Client quotes and builds swaps against serum order-book markets
type Client struct {
	registry *registry.Registry
	chain    protocols.ChainReader
	logger   *logrus.Logger
}

// NewClient creates a serum client backed by the given market registry and
// chain reader
func NewClient(reg *registry.Registry, chain protocols.ChainReader, logger *logrus.Logger) *Client {
	if logger == nil {
		logger = logrus.New()
	}
	return &Client{registry: reg, chain: chain, logger: logger}
}

func (c *Client) ProtocolAddress() solana.PublicKey {
	return registry.SerumProgramID
}

func (c *Client) ProtocolName() string {
	return "Serum"
}

// fetchMarket resolves the registered market for the pair and decodes its
// on-chain state
func (c *Client) fetchMarket(ctx context.Context, from, to tokens.TokenInfo) (*marketState, error) {
	entry, ok := c.registry.GetMarket(from.Mint(), to.Mint())
	if !ok {
		return nil, protocols.ErrMarketNotFound
	}

	info, err := c.chain.GetAccountInfo(ctx, entry.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch market account: %w", err)
	}
	if info == nil {
		return nil, protocols.ErrMarketNotFound
	}
	return decodeMarket(info.Data)
}

// fetchBook reads one side of the market's order book and returns its best
// level
func (c *Client) fetchBook(ctx context.Context, account solana.PublicKey, isBids bool) (bookLevel, bool, error) {
	info, err := c.chain.GetAccountInfo(ctx, account)
	if err != nil {
		return bookLevel{}, false, fmt.Errorf("failed to fetch order book: %w", err)
	}
	if info == nil {
		return bookLevel{}, false, fmt.Errorf("order book account missing: %s", account)
	}
	return bestLevel(info.Data, isBids)
}

// GetMarketInfo returns a snapshot of the market serving the pair, with the
// best bid and ask in human-readable quote-per-base prices. An empty book
// side leaves the corresponding price at zero.
func (c *Client) GetMarketInfo(ctx context.Context, from, to tokens.TokenInfo) (*protocols.MarketInfo, error) {
	market, err := c.fetchMarket(ctx, from, to)
	if err != nil {
		return nil, err
	}

	baseDecimals, quoteDecimals := orientDecimals(market, from, to)

	info := &protocols.MarketInfo{
		Address:      market.OwnAddress,
		BaseMint:     market.BaseMint,
		QuoteMint:    market.QuoteMint,
		BaseLotSize:  market.BaseLotSize,
		QuoteLotSize: market.QuoteLotSize,
		FetchedAt:    time.Now(),
	}

	if bid, ok, err := c.fetchBook(ctx, market.Bids, true); err != nil {
		return nil, err
	} else if ok {
		info.BestBid = market.priceLotsToUi(bid.PriceLots, baseDecimals, quoteDecimals)
	}
	if ask, ok, err := c.fetchBook(ctx, market.Asks, false); err != nil {
		return nil, err
	} else if ok {
		info.BestAsk = market.priceLotsToUi(ask.PriceLots, baseDecimals, quoteDecimals)
	}

	return info, nil
}

// orientDecimals maps the pair's token precisions onto the market's
// base/quote orientation
func orientDecimals(market *marketState, from, to tokens.TokenInfo) (base, quote uint8) {
	if tokens.SameMint(from.Mint(), market.BaseMint) {
		return from.Decimals, to.Decimals
	}
	return to.Decimals, from.Decimals
}

// GetExchangeInfo quotes a taker swap against the top of the book. Selling
// the base token crosses the best bid; buying it crosses the best ask.
func (c *Client) GetExchangeInfo(ctx context.Context, from, to tokens.TokenInfo, amount decimal.Decimal, slippage float64) (*protocols.ExchangeInfo, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("amount must be > 0")
	}

	market, err := c.fetchMarket(ctx, from, to)
	if err != nil {
		return nil, err
	}

	selling := tokens.SameMint(from.Mint(), market.BaseMint)
	baseDecimals, quoteDecimals := orientDecimals(market, from, to)

	var price decimal.Decimal
	if selling {
		bid, ok, err := c.fetchBook(ctx, market.Bids, true)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("market %s has no resting bids", market.OwnAddress)
		}
		price = market.priceLotsToUi(bid.PriceLots, baseDecimals, quoteDecimals)
	} else {
		ask, ok, err := c.fetchBook(ctx, market.Asks, false)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("market %s has no resting asks", market.OwnAddress)
		}
		price = market.priceLotsToUi(ask.PriceLots, baseDecimals, quoteDecimals)
	}
	if price.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("market %s has a degenerate top of book", market.OwnAddress)
	}

	amountIn := tokens.RoundToDecimals(amount, from.Decimals)

	var amountOut decimal.Decimal
	if selling {
		amountOut = amountIn.Mul(price)
	} else {
		amountOut = amountIn.Div(price)
	}
	amountOut = tokens.RoundToDecimals(amountOut, to.Decimals)
	minOut := tokens.RoundToDecimals(protocols.MinAmountOut(amountOut, slippage), to.Decimals)

	feeRate := decimal.NewFromUint64(market.FeeRateBps).Div(decimal.NewFromInt(10_000))
	protocolFees := tokens.RoundToDecimals(amountIn.Mul(feeRate), from.Decimals)

	c.logger.WithFields(logrus.Fields{
		"market":     market.OwnAddress.String(),
		"selling":    selling,
		"price":      price.String(),
		"amount_in":  amountIn.String(),
		"amount_out": amountOut.String(),
	}).Debug("Serum quote computed")

	return &protocols.ExchangeInfo{
		FromAmm:      c.ProtocolName(),
		AmountIn:     amountIn,
		AmountOut:    amountOut,
		MinAmountOut: minOut,
		OutPrice:     amountOut.Div(amountIn),
		PriceImpact:  0,
		ProtocolFees: protocolFees,
		NetworkFees:  tokens.FromRaw(rpc.LamportsPerSignature, tokens.SOLDecimals),
	}, nil
}

// GetSwap builds an unsigned transaction that places an immediate-or-cancel
// order crossing the book, settles the proceeds, and pays the aggregator fee.
// A temporary open-orders account is created and closed in the same
// transaction when the owner has none for this market.
func (c *Client) GetSwap(ctx context.Context, req protocols.SwapRequest) (*solana.Transaction, error) {
	market, err := c.fetchMarket(ctx, req.From, req.To)
	if err != nil {
		return nil, err
	}

	selling := tokens.SameMint(req.From.Mint(), market.BaseMint)
	slippage := protocols.ClampSlippage(req.Slippage)

	rawIn, err := tokens.ToRaw(req.AmountIn, req.From.Decimals)
	if err != nil {
		return nil, fmt.Errorf("invalid input amount: %w", err)
	}
	rawFee, err := tokens.ToRaw(req.FeeAmount, req.From.Decimals)
	if err != nil {
		return nil, fmt.Errorf("invalid fee amount: %w", err)
	}

	side, limitPrice, maxBaseQty, err := c.orderParams(ctx, market, req, selling, slippage, rawIn)
	if err != nil {
		return nil, err
	}
	maxQuoteQty := market.QuoteLotSize * maxBaseQty * limitPrice

	sourceRes, err := protocols.ResolveTokenAccount(ctx, c.chain, req.Owner, req.From.Mint(), rawIn+rawFee)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve source account: %w", err)
	}
	destRes, err := protocols.ResolveTokenAccount(ctx, c.chain, req.Owner, req.To.Mint(), 0)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve destination account: %w", err)
	}

	userBase, userQuote := sourceRes.Account, destRes.Account
	if !selling {
		userBase, userQuote = destRes.Account, sourceRes.Account
	}

	openOrders, createOO, err := c.resolveOpenOrders(ctx, market, req.Owner)
	if err != nil {
		return nil, err
	}

	vaultSigner, err := market.vaultSigner()
	if err != nil {
		return nil, fmt.Errorf("failed to derive vault signer: %w", err)
	}

	feeIxs, err := protocols.FeeTransferIxs(ctx, c.chain, req.Owner, sourceRes.Account, req.FeeAccount, req.From.Mint(), rawFee)
	if err != nil {
		return nil, fmt.Errorf("failed to build fee transfer: %w", err)
	}

	var ixs []solana.Instruction
	ixs = append(ixs, sourceRes.PreIxs...)
	ixs = append(ixs, destRes.PreIxs...)
	ixs = append(ixs, createOO...)
	ixs = append(ixs, newOrderV3Instruction(market, openOrders, sourceRes.Account, req.Owner, side, limitPrice, maxBaseQty, maxQuoteQty))
	ixs = append(ixs, newSettleFundsInstruction(market, openOrders, req.Owner, userBase, userQuote, vaultSigner))
	if len(createOO) > 0 {
		ixs = append(ixs, newCloseOpenOrdersInstruction(market, openOrders, req.Owner))
	}
	ixs = append(ixs, feeIxs...)
	ixs = append(ixs, destRes.PostIxs...)
	ixs = append(ixs, sourceRes.PostIxs...)

	c.logger.WithFields(logrus.Fields{
		"market":       market.OwnAddress.String(),
		"side":         side,
		"limit_price":  limitPrice,
		"max_base":     maxBaseQty,
		"instructions": len(ixs),
	}).Debug("Serum swap transaction assembled")

	return protocols.BuildUnsignedTransaction(ctx, c.chain, req.Owner, ixs)
}

// orderParams derives the side, limit price, and base quantity (all in lots)
// for the taker order. The limit price shifts by the slippage tolerance so
// the order still crosses if the book moves slightly.
func (c *Client) orderParams(ctx context.Context, market *marketState, req protocols.SwapRequest, selling bool, slippage float64, rawIn uint64) (uint32, uint64, uint64, error) {
	hundred := decimal.NewFromInt(100)
	tolerance := decimal.NewFromFloat(slippage)

	if selling {
		bid, ok, err := c.fetchBook(ctx, market.Bids, true)
		if err != nil {
			return 0, 0, 0, err
		}
		if !ok {
			return 0, 0, 0, fmt.Errorf("market %s has no resting bids", market.OwnAddress)
		}
		limit := decimal.NewFromUint64(bid.PriceLots).Mul(hundred.Sub(tolerance)).Div(hundred).Floor()
		if !limit.BigInt().IsUint64() || limit.BigInt().Uint64() == 0 {
			return 0, 0, 0, fmt.Errorf("limit price out of range")
		}
		maxBase := rawIn / market.BaseLotSize
		if maxBase == 0 {
			return 0, 0, 0, fmt.Errorf("order below minimum lot size")
		}
		return sideAsk, limit.BigInt().Uint64(), maxBase, nil
	}

	ask, ok, err := c.fetchBook(ctx, market.Asks, false)
	if err != nil {
		return 0, 0, 0, err
	}
	if !ok {
		return 0, 0, 0, fmt.Errorf("market %s has no resting asks", market.OwnAddress)
	}
	limit := decimal.NewFromUint64(ask.PriceLots).Mul(hundred.Add(tolerance)).Div(hundred).Ceil()
	if !limit.BigInt().IsUint64() {
		return 0, 0, 0, fmt.Errorf("limit price out of range")
	}

	// Buying: the base quantity comes from the expected output.
	rawOut, err := tokens.ToRaw(req.AmountOut, req.To.Decimals)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid output amount: %w", err)
	}
	maxBase := rawOut / market.BaseLotSize
	if maxBase == 0 {
		return 0, 0, 0, fmt.Errorf("order below minimum lot size")
	}
	return sideBid, limit.BigInt().Uint64(), maxBase, nil
}

// resolveOpenOrders returns the owner's deterministic open-orders account for
// the market, plus the creation instructions when it does not exist yet
func (c *Client) resolveOpenOrders(ctx context.Context, market *marketState, owner solana.PublicKey) (solana.PublicKey, []solana.Instruction, error) {
	seed := market.OwnAddress.String()[:16]
	openOrders, err := solana.CreateWithSeed(owner, seed, registry.SerumProgramID)
	if err != nil {
		return solana.PublicKey{}, nil, fmt.Errorf("failed to derive open orders address: %w", err)
	}

	exists, err := c.chain.AccountExists(ctx, openOrders)
	if err != nil {
		return solana.PublicKey{}, nil, err
	}
	if exists {
		return openOrders, nil, nil
	}

	rent, err := c.chain.GetMinimumBalanceForRentExemption(ctx, openOrdersSize)
	if err != nil {
		return solana.PublicKey{}, nil, fmt.Errorf("failed to fetch rent exemption: %w", err)
	}

	ix := newCreateAccountWithSeedIx(owner, openOrders, owner, seed, rent, openOrdersSize)
	return openOrders, []solana.Instruction{ix}, nil
}
