package exchange

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/solswap-labs/exchange-core/internal/fees"
	"github.com/solswap-labs/exchange-core/internal/lifecycle"
	"github.com/solswap-labs/exchange-core/internal/models"
	"github.com/solswap-labs/exchange-core/internal/protocols"
	"github.com/solswap-labs/exchange-core/internal/store"
	"github.com/solswap-labs/exchange-core/internal/tokens"
	"github.com/solswap-labs/exchange-core/internal/wallet"
)

// Executor runs a session's selected quote through the transaction
// lifecycle and records the outcome. Cache and store are optional; a nil
// value skips that sink.
type Executor struct {
	session      *Session
	chain        protocols.ChainReader
	wallet       *wallet.Wallet
	orchestrator *lifecycle.Orchestrator
	cache        store.ExchangeCache
	history      store.ExchangeStore
	feeOwner     solana.PublicKey
	logger       *logrus.Logger
}

// NewExecutor wires an executor over a session
func NewExecutor(session *Session, chain protocols.ChainReader, w *wallet.Wallet, orch *lifecycle.Orchestrator, cache store.ExchangeCache, history store.ExchangeStore, feeOwner solana.PublicKey, logger *logrus.Logger) *Executor {
	if logger == nil {
		logger = logrus.New()
	}
	return &Executor{
		session:      session,
		chain:        chain,
		wallet:       w,
		orchestrator: orch,
		cache:        cache,
		history:      history,
		feeOwner:     feeOwner,
		logger:       logger,
	}
}

// Orchestrator exposes the lifecycle driver for status rendering and
// cancellation
func (e *Executor) Orchestrator() *lifecycle.Orchestrator {
	return e.orchestrator
}

// Swap executes the session's current quote. Wrap/unwrap pairs route to the
// dedicated builders. Pre-flight validation runs before any transaction is
// built; a validation failure never reaches the lifecycle.
func (e *Executor) Swap(ctx context.Context) (*models.ExchangeRecord, error) {
	if e.wallet == nil {
		return nil, protocols.ErrWalletNotFound
	}

	from, to, ok := e.session.Pair()
	if !ok {
		return nil, protocols.ErrExchangeUnavailable
	}

	if IsWrapPair(from, to) {
		if IsUnwrap(from, to) {
			return e.Unwrap(ctx)
		}
		return e.Wrap(ctx, e.session.Amount())
	}

	quote := e.session.Selected()
	if quote == nil {
		if _, err := e.session.RecomputeQuote(ctx); err != nil {
			return nil, err
		}
		quote = e.session.Selected()
		if quote == nil {
			return nil, protocols.ErrExchangeUnavailable
		}
	}
	feesInfo := e.session.Fees()

	balance, err := e.wallet.GetTokenBalance(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("failed to read balance: %w", err)
	}
	if err := Validate(from, decimal.NewFromFloat(balance), quote.Info.AmountIn, feesInfo); err != nil {
		return nil, err
	}

	req := protocols.SwapRequest{
		Owner:      e.wallet.PublicKey(),
		From:       from,
		To:         to,
		AmountIn:   quote.Info.AmountIn,
		AmountOut:  quote.Info.AmountOut,
		Slippage:   e.session.Slippage(),
		FeeAccount: e.feeOwner,
		FeeAmount:  feesInfo.Aggregator,
	}

	signature, execErr := e.orchestrator.Execute(ctx, func(ctx context.Context) (*solana.Transaction, error) {
		return quote.Client.GetSwap(ctx, req)
	})

	rec := e.buildRecord(models.KindSwap, from, to, quote.Info, feesInfo.Aggregator, signature)
	rec.Venue = quote.Client.ProtocolName()
	e.persist(ctx, rec)

	if execErr != nil {
		return rec, execErr
	}
	return rec, nil
}

// Wrap converts native SOL into wrapped SOL
func (e *Executor) Wrap(ctx context.Context, amount decimal.Decimal) (*models.ExchangeRecord, error) {
	if e.wallet == nil {
		return nil, protocols.ErrWalletNotFound
	}

	from := tokens.TokenInfo{Symbol: "SOL", Address: tokens.NativeSOLMint.String(), Decimals: tokens.SOLDecimals}
	to := tokens.TokenInfo{Symbol: "wSOL", Address: tokens.WrappedSOLMint.String(), Decimals: tokens.SOLDecimals}

	// Fees are computed here rather than read from the session: the wrap
	// path never requires a prior quote.
	info := WrapExchangeInfo(from, amount, e.session.txFeeBaseline)
	feesInfo := fees.Compute(info, e.session.txFeeBaseline, amount, from.Decimals, true)

	balance, err := e.wallet.GetBalanceSOL(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read balance: %w", err)
	}
	if err := Validate(from, decimal.NewFromFloat(balance), amount, feesInfo); err != nil {
		return nil, err
	}

	owner := e.wallet.PublicKey()
	signature, execErr := e.orchestrator.Execute(ctx, func(ctx context.Context) (*solana.Transaction, error) {
		return BuildWrapTransaction(ctx, e.chain, owner, amount)
	})

	rec := e.buildRecord(models.KindWrap, from, to, info, feesInfo.Aggregator, signature)
	e.persist(ctx, rec)

	if execErr != nil {
		return rec, execErr
	}
	return rec, nil
}

// Unwrap converts the wallet's wrapped SOL back to native
func (e *Executor) Unwrap(ctx context.Context) (*models.ExchangeRecord, error) {
	if e.wallet == nil {
		return nil, protocols.ErrWalletNotFound
	}

	from := tokens.TokenInfo{Symbol: "wSOL", Address: tokens.WrappedSOLMint.String(), Decimals: tokens.SOLDecimals}
	to := tokens.TokenInfo{Symbol: "SOL", Address: tokens.NativeSOLMint.String(), Decimals: tokens.SOLDecimals}

	balance, err := e.wallet.GetTokenBalance(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("failed to read balance: %w", err)
	}
	amount := decimal.NewFromFloat(balance)
	info := WrapExchangeInfo(from, amount, e.session.txFeeBaseline)

	owner := e.wallet.PublicKey()
	signature, execErr := e.orchestrator.Execute(ctx, func(ctx context.Context) (*solana.Transaction, error) {
		return BuildUnwrapTransaction(ctx, e.chain, owner)
	})

	rec := e.buildRecord(models.KindUnwrap, from, to, info, decimal.Zero, signature)
	e.persist(ctx, rec)

	if execErr != nil {
		return rec, execErr
	}
	return rec, nil
}

func (e *Executor) buildRecord(kind models.ExchangeKind, from, to tokens.TokenInfo, info *protocols.ExchangeInfo, aggregatorFee decimal.Decimal, signature string) *models.ExchangeRecord {
	amountIn, _ := info.AmountIn.Float64()
	amountOut, _ := info.AmountOut.Float64()
	price, _ := info.OutPrice.Float64()
	protoFee, _ := info.ProtocolFees.Float64()
	netFee, _ := info.NetworkFees.Float64()
	aggFee, _ := aggregatorFee.Float64()

	return &models.ExchangeRecord{
		Signature:     signature,
		Timestamp:     time.Now().UTC(),
		Kind:          kind,
		Pair:          fmt.Sprintf("%s/%s", from.Symbol, to.Symbol),
		TokenIn:       from.Symbol,
		TokenOut:      to.Symbol,
		AmountIn:      amountIn,
		AmountOut:     amountOut,
		Price:         price,
		PriceImpact:   info.PriceImpact,
		AggregatorFee: aggFee,
		ProtocolFee:   protoFee,
		NetworkFee:    netFee,
		Venue:         info.FromAmm,
		Owner:         e.wallet.Address(),
		Status:        e.orchestrator.Status().String(),
	}
}

// persist writes the record to the cache and store, best effort. A sink
// failure never fails the operation itself.
func (e *Executor) persist(ctx context.Context, rec *models.ExchangeRecord) {
	if e.cache != nil {
		if err := e.cache.AddRecentExchange(ctx, rec); err != nil {
			e.logger.WithFields(logrus.Fields{"error": err}).Warn("failed to cache exchange record")
		}
		if err := e.cache.PublishExchange(ctx, rec); err != nil {
			e.logger.WithFields(logrus.Fields{"error": err}).Warn("failed to publish exchange record")
		}
		if rec.Price > 0 {
			if err := e.cache.UpdatePrice(ctx, rec.PairKey(), rec.Price); err != nil {
				e.logger.WithFields(logrus.Fields{"error": err}).Warn("failed to update cached price")
			}
		}
	}
	if e.history != nil {
		if err := e.history.InsertExchange(ctx, rec); err != nil {
			e.logger.WithFields(logrus.Fields{"error": err}).Warn("failed to persist exchange record")
		}
	}
}
