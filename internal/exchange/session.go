// Package exchange owns one swap session: the selected pair, its live quote
// and fee breakdown, pre-flight validation, wrap/unwrap handling, and the
// executor that ties a session to the transaction lifecycle.
package exchange

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/solswap-labs/exchange-core/internal/aggregator"
	"github.com/solswap-labs/exchange-core/internal/fees"
	"github.com/solswap-labs/exchange-core/internal/protocols"
	"github.com/solswap-labs/exchange-core/internal/tokens"
)

const (
	// QuoteRefreshSeconds is the re-quote countdown window
	QuoteRefreshSeconds = 30
	// DebounceDelay batches rapid amount edits into one re-quote
	DebounceDelay = 500 * time.Millisecond
)

// Session is the single-pair quote state machine. Exactly one client is
// selected at a time; selection clears whenever the pair changes, and a
// quote resolved for an old pair is discarded instead of applied.
type Session struct {
	agg    *aggregator.Aggregator
	logger *logrus.Logger

	txFeeBaseline decimal.Decimal

	mu        sync.Mutex
	from, to  tokens.TokenInfo
	hasPair   bool
	amountIn  decimal.Decimal
	slippage  float64
	selected  *aggregator.Quote
	feesInfo  fees.FeesInfo
	requoter  *aggregator.Requoter
	debounce  *time.Timer
	onRequote func()
}

// NewSession creates a session over the aggregator. txFeeBaseline is the
// chain's baseline transaction fee in SOL, used as the network-fee floor.
func NewSession(agg *aggregator.Aggregator, txFeeBaseline decimal.Decimal, logger *logrus.Logger) *Session {
	if logger == nil {
		logger = logrus.New()
	}
	return &Session{
		agg:           agg,
		logger:        logger,
		txFeeBaseline: txFeeBaseline,
		slippage:      protocols.MinSlippagePercent,
	}
}

// SetOnRequote registers the callback fired by the periodic countdown.
// Callers typically invoke RecomputeQuote from it.
func (s *Session) SetOnRequote(fn func()) {
	s.mu.Lock()
	s.onRequote = fn
	s.mu.Unlock()
}

// SetPair changes the token pair. The selected client and quote are cleared
// and the re-quote countdown restarts, so nothing from the old pair leaks
// into the new one.
func (s *Session) SetPair(from, to tokens.TokenInfo) {
	s.mu.Lock()
	s.from, s.to = from, to
	s.hasPair = true
	s.selected = nil
	s.feesInfo = fees.FeesInfo{}
	if s.debounce != nil {
		s.debounce.Stop()
		s.debounce = nil
	}
	old := s.requoter
	s.requoter = aggregator.NewRequoter(QuoteRefreshSeconds, s.fireRequote)
	s.requoter.Start()
	s.mu.Unlock()

	if old != nil {
		old.Stop()
	}
}

func (s *Session) fireRequote() {
	s.mu.Lock()
	fn := s.onRequote
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// SetSlippage updates the tolerance, clamping out-of-range input
func (s *Session) SetSlippage(slippage float64) {
	s.mu.Lock()
	s.slippage = protocols.ClampSlippage(slippage)
	s.mu.Unlock()
}

// SetAmount updates the input amount and schedules a debounced re-quote via
// the given recompute callback. Rapid successive edits collapse into one
// recompute.
func (s *Session) SetAmount(amount decimal.Decimal, recompute func()) {
	s.mu.Lock()
	s.amountIn = amount
	if s.debounce != nil {
		s.debounce.Stop()
	}
	s.debounce = time.AfterFunc(DebounceDelay, recompute)
	s.mu.Unlock()
}

// SetAmountNow updates the input amount without debouncing. Used by the
// recurring scheduler, where there is no keystroke stream to batch.
func (s *Session) SetAmountNow(amount decimal.Decimal) {
	s.mu.Lock()
	s.amountIn = amount
	s.mu.Unlock()
}

// Pair returns the current token pair
func (s *Session) Pair() (from, to tokens.TokenInfo, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.from, s.to, s.hasPair
}

// Amount returns the current input amount
func (s *Session) Amount() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.amountIn
}

// Slippage returns the effective (clamped) slippage tolerance
func (s *Session) Slippage() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slippage
}

// Selected returns the currently selected quote, nil when none
func (s *Session) Selected() *aggregator.Quote {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Fees returns the fee breakdown for the current quote
func (s *Session) Fees() fees.FeesInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.feesInfo
}

// Remaining returns the seconds left on the re-quote countdown
func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.requoter == nil {
		return 0
	}
	return s.requoter.Remaining()
}

// Close tears down the countdown and any pending debounce
func (s *Session) Close() {
	s.mu.Lock()
	r := s.requoter
	s.requoter = nil
	if s.debounce != nil {
		s.debounce.Stop()
		s.debounce = nil
	}
	s.mu.Unlock()
	if r != nil {
		r.Stop()
	}
}

// RecomputeQuote re-quotes the current pair and amount. Wrap/unwrap pairs
// short-circuit to a synthetic 1:1 quote. A result that resolves after the
// pair has changed is discarded.
func (s *Session) RecomputeQuote(ctx context.Context) (*protocols.ExchangeInfo, error) {
	s.mu.Lock()
	if !s.hasPair {
		s.mu.Unlock()
		return nil, protocols.ErrExchangeUnavailable
	}
	from, to := s.from, s.to
	amount := s.amountIn
	slippage := s.slippage
	s.mu.Unlock()

	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, protocols.ErrExchangeUnavailable
	}

	if IsWrapPair(from, to) {
		info := WrapExchangeInfo(from, amount, s.txFeeBaseline)
		s.apply(from, to, nil, info, true)
		return info, nil
	}

	quote, err := s.agg.GetBestQuote(ctx, from, to, amount, slippage)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"from":  from.Symbol,
			"to":    to.Symbol,
			"error": err,
		}).Warn("quote recompute failed")
		return nil, err
	}

	if !s.apply(from, to, quote, quote.Info, false) {
		// The pair changed while the quote was in flight.
		return nil, protocols.ErrExchangeUnavailable
	}
	return quote.Info, nil
}

// apply installs a resolved quote, but only while the session still points
// at the pair it was requested for. Returns false when stale.
func (s *Session) apply(from, to tokens.TokenInfo, quote *aggregator.Quote, info *protocols.ExchangeInfo, isWrap bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasPair || !tokens.SameMint(s.from.Mint(), from.Mint()) || !tokens.SameMint(s.to.Mint(), to.Mint()) {
		return false
	}
	s.selected = quote
	s.feesInfo = fees.Compute(info, s.txFeeBaseline, info.AmountIn, from.Decimals, isWrap)
	if s.requoter != nil {
		s.requoter.Reset()
	}
	return true
}
