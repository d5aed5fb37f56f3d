package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/solswap-labs/exchange-core/internal/aggregator"
	"github.com/solswap-labs/exchange-core/internal/exchange"
	"github.com/solswap-labs/exchange-core/internal/fees"
	"github.com/solswap-labs/exchange-core/internal/protocols"
	"github.com/solswap-labs/exchange-core/internal/registry"
	"github.com/solswap-labs/exchange-core/internal/store"
	"github.com/solswap-labs/exchange-core/internal/tokens"
)

// Handlers contains all dependencies for API endpoint handlers
type Handlers struct {
	Aggregator    *aggregator.Aggregator
	Tokens        *tokens.Registry
	Pools         *registry.Registry
	Cache         store.ExchangeCache // optional
	TxFeeBaseline decimal.Decimal
	DevMode       bool
	Logger        *logrus.Logger
}

// err returns a standardized JSON error response. In dev mode, includes
// additional error details for debugging.
func (h *Handlers) err(c echo.Context, code int, msg string, details any) error {
	resp := ErrorResponse{Error: msg, Code: code}
	if h.DevMode && details != nil {
		resp.Details = details
	}
	return c.JSON(code, resp)
}

func (h *Handlers) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 10 * time.Second
	}
	return context.WithTimeout(ctx, d)
}

// Health returns a simple health check endpoint
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{OK: true})
}

// Quote resolves a pair by symbol, quotes it across all venues, and returns
// the winning quote with its fee breakdown. Wrap pairs return the synthetic
// 1:1 quote.
func (h *Handlers) Quote(c echo.Context) error {
	from, err := h.Tokens.BySymbol(c.QueryParam("from"))
	if err != nil {
		return h.err(c, http.StatusBadRequest, "unknown from token", nil)
	}
	to, err := h.Tokens.BySymbol(c.QueryParam("to"))
	if err != nil {
		return h.err(c, http.StatusBadRequest, "unknown to token", nil)
	}

	amount, err := decimal.NewFromString(c.QueryParam("amount"))
	if err != nil || amount.LessThanOrEqual(decimal.Zero) {
		return h.err(c, http.StatusBadRequest, "invalid amount", nil)
	}

	slippage := protocols.MinSlippagePercent
	if s := c.QueryParam("slippage"); s != "" {
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return h.err(c, http.StatusBadRequest, "invalid slippage", nil)
		}
		slippage = protocols.ClampSlippage(parsed)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	var info *protocols.ExchangeInfo
	isWrap := exchange.IsWrapPair(from, to)
	if isWrap {
		info = exchange.WrapExchangeInfo(from, amount, h.TxFeeBaseline)
	} else {
		quote, err := h.Aggregator.GetBestQuote(ctx, from, to, amount, slippage)
		if errors.Is(err, protocols.ErrExchangeUnavailable) {
			return h.err(c, http.StatusNotFound, "exchange unavailable", nil)
		}
		if err != nil {
			h.Logger.WithFields(logrus.Fields{"error": err}).Error("quote failed")
			return h.err(c, http.StatusBadGateway, "quote failed", err.Error())
		}
		info = quote.Info
	}

	feesInfo := fees.Compute(info, h.TxFeeBaseline, info.AmountIn, from.Decimals, isWrap)

	return c.JSON(http.StatusOK, QuoteResponse{
		Venue:        info.FromAmm,
		From:         from.Symbol,
		To:           to.Symbol,
		AmountIn:     info.AmountIn.String(),
		AmountOut:    info.AmountOut.String(),
		MinAmountOut: info.MinAmountOut.String(),
		OutPrice:     info.OutPrice.String(),
		PriceImpact:  info.PriceImpact,
		Slippage:     slippage,
		Fees: FeesResponse{
			Protocol:   feesInfo.Protocol.String(),
			Network:    feesInfo.Network.String(),
			Aggregator: feesInfo.Aggregator.String(),
			Total:      feesInfo.Total.String(),
		},
		RefreshSeconds: exchange.QuoteRefreshSeconds,
	})
}

// Pools lists the pools and markets serving a pair, or the whole catalog
// when no pair is given
func (h *Handlers) ListPools(c echo.Context) error {
	fromSym, toSym := c.QueryParam("from"), c.QueryParam("to")
	if fromSym == "" || toSym == "" {
		return h.err(c, http.StatusBadRequest, "from and to are required", nil)
	}

	from, err := h.Tokens.BySymbol(fromSym)
	if err != nil {
		return h.err(c, http.StatusBadRequest, "unknown from token", nil)
	}
	to, err := h.Tokens.BySymbol(toSym)
	if err != nil {
		return h.err(c, http.StatusBadRequest, "unknown to token", nil)
	}

	var out []PoolResponse
	appendPool := func(pool registry.AmmPoolInfo) {
		proto := pool.ProtocolAddress.String()
		if desc, err := h.Pools.ProtocolByAddress(pool.ProtocolAddress); err == nil {
			proto = desc.Name
		}
		out = append(out, PoolResponse{
			Name:     pool.Name,
			Address:  pool.Address.String(),
			Protocol: proto,
			TokenA:   pool.TokenAddresses[0].String(),
			TokenB:   pool.TokenAddresses[1].String(),
		})
	}

	for _, pool := range h.Pools.GetTokensPools(from.Mint(), to.Mint()) {
		appendPool(pool)
	}
	if market, ok := h.Pools.GetMarket(from.Mint(), to.Mint()); ok {
		appendPool(market)
	}

	return c.JSON(http.StatusOK, map[string]any{"items": out})
}

// TokenList lists the token catalog
func (h *Handlers) TokenList(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"items": h.Tokens.All()})
}

// RecentExchanges returns the most recent executed operations.
// Accepts limit query parameter (default: 100, range: 1-200).
func (h *Handlers) RecentExchanges(c echo.Context) error {
	if h.Cache == nil {
		return h.err(c, http.StatusServiceUnavailable, "cache disabled", nil)
	}

	limit := 100
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil {
			return h.err(c, http.StatusBadRequest, "invalid limit", map[string]any{"limit": "must be an integer"})
		}
		limit = n
	}
	if limit < 1 || limit > 200 {
		return h.err(c, http.StatusBadRequest, "invalid limit", map[string]any{"limit": "min 1 max 200"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Cache.GetRecentExchanges(ctx, int64(limit))
	if err != nil {
		h.Logger.WithFields(logrus.Fields{"error": err}).Error("failed to read recent exchanges")
		return h.err(c, http.StatusInternalServerError, "failed to read recent exchanges", err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// Price returns the cached out-price for a pair like SOL-USDC
func (h *Handlers) Price(c echo.Context) error {
	if h.Cache == nil {
		return h.err(c, http.StatusServiceUnavailable, "cache disabled", nil)
	}

	pair := c.Param("pair")
	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	price, err := h.Cache.GetPrice(ctx, pair)
	if err != nil {
		return h.err(c, http.StatusNotFound, "price not found", nil)
	}
	return c.JSON(http.StatusOK, PriceResponse{Pair: pair, Price: price})
}
