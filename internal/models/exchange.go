package models

import (
	"strings"
	"time"
)

// ExchangeKind distinguishes the operation types the executor records
type ExchangeKind string

const (
	KindSwap   ExchangeKind = "swap"
	KindWrap   ExchangeKind = "wrap"
	KindUnwrap ExchangeKind = "unwrap"
)

// ExchangeRecord is one executed operation, persisted for history queries
// and published for live subscribers
type ExchangeRecord struct {
	Signature     string       `json:"signature"`
	Timestamp     time.Time    `json:"timestamp"`
	Kind          ExchangeKind `json:"kind"`
	Pair          string       `json:"pair"`
	TokenIn       string       `json:"token_in"`
	TokenOut      string       `json:"token_out"`
	AmountIn      float64      `json:"amount_in"`
	AmountOut     float64      `json:"amount_out"`
	Price         float64      `json:"price"`
	PriceImpact   float64      `json:"price_impact"`
	AggregatorFee float64      `json:"aggregator_fee"`
	ProtocolFee   float64      `json:"protocol_fee"`
	NetworkFee    float64      `json:"network_fee"`
	Venue         string       `json:"venue"` // e.g., "Raydium", "Orca", "Serum"
	Owner         string       `json:"owner"`
	Status        string       `json:"status"`
}

// PairKey returns the pair in cache-key form, "SOL-USDC" for "SOL/USDC".
// Price lookups travel as a URL path segment, which cannot hold a slash.
func (r *ExchangeRecord) PairKey() string {
	return strings.ReplaceAll(r.Pair, "/", "-")
}
