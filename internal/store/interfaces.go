package store

import (
	"context"
	"io"

	"github.com/solswap-labs/exchange-core/internal/models"
)

// ExchangeCache is the hot-path surface: recent-exchange lists, price
// lookups, and live event fan-out
type ExchangeCache interface {
	// AddRecentExchange adds a record to the recent-exchanges list
	AddRecentExchange(ctx context.Context, rec *models.ExchangeRecord) error

	// GetRecentExchanges retrieves the most recent records
	GetRecentExchanges(ctx context.Context, limit int64) ([]*models.ExchangeRecord, error)

	// UpdatePrice updates the cached out-price for a pair
	UpdatePrice(ctx context.Context, pair string, price float64) error

	// GetPrice retrieves the cached out-price for a pair
	GetPrice(ctx context.Context, pair string) (float64, error)

	// PublishExchange publishes a record to live subscribers
	PublishExchange(ctx context.Context, rec *models.ExchangeRecord) error

	// Ping checks if the cache is reachable
	Ping(ctx context.Context) error

	io.Closer
}

// ExchangeStore is the durable history store
type ExchangeStore interface {
	// InsertExchange persists one executed operation
	InsertExchange(ctx context.Context, rec *models.ExchangeRecord) error

	// Ping checks if the store is reachable
	Ping(ctx context.Context) error

	io.Closer
}
