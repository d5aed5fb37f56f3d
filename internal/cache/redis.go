// Package cache holds the redis-backed hot path: recent-exchange lists,
// cached pair prices, and live pub/sub fan-out of executed operations.
package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/solswap-labs/exchange-core/internal/models"
)

const (
	recentKey    = "exchanges:recent"
	recentMaxLen = 500
	priceKeyFmt  = "price:%s"
)

// RedisCache implements the ExchangeCache surface on go-redis
type RedisCache struct {
	client *redis.Client
	logger *logrus.Logger
}

// NewRedisCache connects to redis and verifies the connection
func NewRedisCache(addr string, logger *logrus.Logger) (*RedisCache, error) {
	if logger == nil {
		logger = logrus.New()
	}

	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   0,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger.WithFields(logrus.Fields{"addr": addr}).Info("connected to redis")

	return &RedisCache{client: client, logger: logger}, nil
}

// AddRecentExchange pushes a record onto the recent list, trimming it to a
// bounded length
func (r *RedisCache) AddRecentExchange(ctx context.Context, rec *models.ExchangeRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal exchange record: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.LPush(ctx, recentKey, data)
	pipe.LTrim(ctx, recentKey, 0, recentMaxLen-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cache exchange record: %w", err)
	}
	return nil
}

// GetRecentExchanges returns up to limit records, newest first
func (r *RedisCache) GetRecentExchanges(ctx context.Context, limit int64) ([]*models.ExchangeRecord, error) {
	if limit <= 0 || limit > recentMaxLen {
		limit = recentMaxLen
	}

	raw, err := r.client.LRange(ctx, recentKey, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read recent exchanges: %w", err)
	}

	out := make([]*models.ExchangeRecord, 0, len(raw))
	for _, item := range raw {
		rec := &models.ExchangeRecord{}
		if err := json.Unmarshal([]byte(item), rec); err != nil {
			r.logger.WithFields(logrus.Fields{"error": err}).Warn("skipping malformed cached record")
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// UpdatePrice stores the latest out-price for a pair
func (r *RedisCache) UpdatePrice(ctx context.Context, pair string, price float64) error {
	return r.client.Set(ctx, fmt.Sprintf(priceKeyFmt, pair), price, 0).Err()
}

// GetPrice reads the latest out-price for a pair
func (r *RedisCache) GetPrice(ctx context.Context, pair string) (float64, error) {
	return r.client.Get(ctx, fmt.Sprintf(priceKeyFmt, pair)).Float64()
}

func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
