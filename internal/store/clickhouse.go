package store

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/sirupsen/logrus"

	"github.com/solswap-labs/exchange-core/internal/models"
)

// ClickHouseStore persists executed exchanges for history queries
type ClickHouseStore struct {
	conn   driver.Conn
	logger *logrus.Logger
}

// NewClickHouseStore connects to ClickHouse and verifies the connection
func NewClickHouseStore(addr, database, username, password string, logger *logrus.Logger) (*ClickHouseStore, error) {
	if logger == nil {
		logger = logrus.New()
	}

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: database,
			Username: username,
			Password: password,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	logger.WithFields(logrus.Fields{"addr": addr, "database": database}).Info("connected to ClickHouse")

	return &ClickHouseStore{conn: conn, logger: logger}, nil
}

// InsertExchange persists one executed operation
func (c *ClickHouseStore) InsertExchange(ctx context.Context, rec *models.ExchangeRecord) error {
	query := `
		INSERT INTO exchanges (
			signature, timestamp, kind, pair, token_in, token_out,
			amount_in, amount_out, price, price_impact,
			aggregator_fee, protocol_fee, network_fee, venue, owner, status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	err := c.conn.Exec(ctx, query,
		rec.Signature,
		rec.Timestamp,
		string(rec.Kind),
		rec.Pair,
		rec.TokenIn,
		rec.TokenOut,
		rec.AmountIn,
		rec.AmountOut,
		rec.Price,
		rec.PriceImpact,
		rec.AggregatorFee,
		rec.ProtocolFee,
		rec.NetworkFee,
		rec.Venue,
		rec.Owner,
		rec.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to insert exchange: %w", err)
	}
	return nil
}

// RecentExchanges returns the latest records for a pair, newest first
func (c *ClickHouseStore) RecentExchanges(ctx context.Context, pair string, limit int64) ([]*models.ExchangeRecord, error) {
	query := `
		SELECT signature, timestamp, kind, pair, token_in, token_out,
		       amount_in, amount_out, price, price_impact,
		       aggregator_fee, protocol_fee, network_fee, venue, owner, status
		FROM exchanges
		WHERE pair = ?
		ORDER BY timestamp DESC
		LIMIT ?
	`

	rows, err := c.conn.Query(ctx, query, pair, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query exchanges: %w", err)
	}
	defer rows.Close()

	var out []*models.ExchangeRecord
	for rows.Next() {
		rec := &models.ExchangeRecord{}
		var kind string
		if err := rows.Scan(
			&rec.Signature, &rec.Timestamp, &kind, &rec.Pair, &rec.TokenIn, &rec.TokenOut,
			&rec.AmountIn, &rec.AmountOut, &rec.Price, &rec.PriceImpact,
			&rec.AggregatorFee, &rec.ProtocolFee, &rec.NetworkFee, &rec.Venue, &rec.Owner, &rec.Status,
		); err != nil {
			return nil, fmt.Errorf("failed to scan exchange row: %w", err)
		}
		rec.Kind = models.ExchangeKind(kind)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (c *ClickHouseStore) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

func (c *ClickHouseStore) Close() error {
	return c.conn.Close()
}
