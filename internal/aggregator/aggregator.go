// Package aggregator selects the best venue for a token pair. Candidate
// clients are quoted concurrently; AMM pools win over the order book, and
// among AMMs the highest normalized out-price wins, with ties broken by
// protocol registration order.
package aggregator

import (
	"context"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/solswap-labs/exchange-core/internal/protocols"
	"github.com/solswap-labs/exchange-core/internal/registry"
	"github.com/solswap-labs/exchange-core/internal/tokens"
)

// Quote pairs a winning client with its exchange info
type Quote struct {
	Client protocols.Client
	Info   *protocols.ExchangeInfo
}

// Aggregator fans quote requests out across protocol clients and picks one
type Aggregator struct {
	registry *registry.Registry
	clients  []protocols.Client
	logger   *logrus.Logger
}

// New creates an aggregator over the given clients. Clients are kept in the
// order passed, which should match protocol registration order.
func New(reg *registry.Registry, clients []protocols.Client, logger *logrus.Logger) *Aggregator {
	if logger == nil {
		logger = logrus.New()
	}
	return &Aggregator{registry: reg, clients: clients, logger: logger}
}

// FindClients returns the clients able to serve the pair: LP clients with at
// least one registered pool, and the market client when a market is
// registered. Order follows client registration.
func (a *Aggregator) FindClients(from, to tokens.TokenInfo) []protocols.Client {
	var out []protocols.Client
	for _, client := range a.clients {
		switch client.(type) {
		case protocols.LPClient:
			if len(a.registry.GetTokensPools(from.Mint(), to.Mint(), client.ProtocolAddress())) > 0 {
				out = append(out, client)
			}
		case protocols.MarketClient:
			if _, ok := a.registry.GetMarket(from.Mint(), to.Mint()); ok {
				out = append(out, client)
			}
		}
	}
	return out
}

type quoteResult struct {
	client protocols.Client
	info   *protocols.ExchangeInfo
	err    error
}

// GetBestQuote quotes every candidate concurrently and returns the winner.
// The order book serves the pair only when no AMM pool is registered for it;
// a pool whose quote fails makes the pair unavailable rather than failing
// over to the book. The caller re-triggers lookup on the next input change
// rather than retrying here.
func (a *Aggregator) GetBestQuote(ctx context.Context, from, to tokens.TokenInfo, amount decimal.Decimal, slippage float64) (*Quote, error) {
	candidates := a.FindClients(from, to)
	if len(candidates) == 0 {
		return nil, protocols.ErrExchangeUnavailable
	}

	ammCandidates := 0
	for _, client := range candidates {
		if _, ok := client.(protocols.LPClient); ok {
			ammCandidates++
		}
	}

	results := make(chan quoteResult, len(candidates))
	var wg sync.WaitGroup
	for _, client := range candidates {
		wg.Add(1)
		go func(c protocols.Client) {
			defer wg.Done()
			info, err := c.GetExchangeInfo(ctx, from, to, amount, slippage)
			results <- quoteResult{client: c, info: info, err: err}
		}(client)
	}
	wg.Wait()
	close(results)

	var bestAmm, bestBook *quoteResult
	for res := range results {
		res := res
		if res.err != nil {
			a.logger.WithFields(logrus.Fields{
				"protocol": res.client.ProtocolName(),
				"error":    res.err,
			}).Warn("quote failed")
			continue
		}

		if _, isLP := res.client.(protocols.LPClient); isLP {
			if a.better(&res, bestAmm) {
				bestAmm = &res
			}
		} else {
			if a.better(&res, bestBook) {
				bestBook = &res
			}
		}
	}

	winner := bestAmm
	if winner == nil {
		if ammCandidates > 0 {
			// AMM pools serve this pair but none produced a quote. The
			// order book never substitutes for a failed pool quote.
			return nil, protocols.ErrExchangeUnavailable
		}
		winner = bestBook
	}
	if winner == nil {
		return nil, protocols.ErrExchangeUnavailable
	}

	a.logger.WithFields(logrus.Fields{
		"protocol":  winner.client.ProtocolName(),
		"out_price": winner.info.OutPrice.String(),
	}).Debug("selected best quote")

	return &Quote{Client: winner.client, Info: winner.info}, nil
}

// better reports whether candidate beats current: higher out-price wins,
// equal out-prices fall back to registration order
func (a *Aggregator) better(candidate, current *quoteResult) bool {
	if current == nil {
		return true
	}
	cmp := candidate.info.OutPrice.Cmp(current.info.OutPrice)
	if cmp != 0 {
		return cmp > 0
	}
	return a.registry.ProtocolIndex(candidate.client.ProtocolAddress()) <
		a.registry.ProtocolIndex(current.client.ProtocolAddress())
}

// ClientByAddress finds a registered client by its protocol program id
func (a *Aggregator) ClientByAddress(addr solana.PublicKey) protocols.Client {
	for _, client := range a.clients {
		if client.ProtocolAddress().Equals(addr) {
			return client
		}
	}
	return nil
}
