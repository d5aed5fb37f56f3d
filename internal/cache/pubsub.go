package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/solswap-labs/exchange-core/internal/models"
)

// PublishExchange fans an executed operation out to live subscribers. Each
// record goes to the firehose channel plus the channels scoped to its pair
// and venue.
func (r *RedisCache) PublishExchange(ctx context.Context, rec *models.ExchangeRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal exchange record: %w", err)
	}

	channels := []string{
		"exchanges:all",
		fmt.Sprintf("exchanges:pair:%s", rec.Pair),
		fmt.Sprintf("exchanges:venue:%s", rec.Venue),
	}

	pipe := r.client.Pipeline()
	for _, channel := range channels {
		pipe.Publish(ctx, channel, data)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// SubscribeExchanges subscribes to a channel and invokes handler for each
// record until the context is cancelled
func (r *RedisCache) SubscribeExchanges(ctx context.Context, channel string, handler func(*models.ExchangeRecord)) error {
	pubsub := r.client.Subscribe(ctx, channel)
	defer pubsub.Close()

	r.logger.WithFields(logrus.Fields{"channel": channel}).Info("subscribed to exchange events")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			rec := &models.ExchangeRecord{}
			if err := json.Unmarshal([]byte(msg.Payload), rec); err != nil {
				r.logger.WithFields(logrus.Fields{"error": err}).Warn("skipping malformed exchange event")
				continue
			}
			handler(rec)
		}
	}
}
