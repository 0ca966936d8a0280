package repository

import (
	"context"
	"encoding/json"

	"github.com/GoPolymarket/gaslessgate/internal/model"
	"github.com/GoPolymarket/gaslessgate/internal/pkg/logger"
)

// RedisEventBus publishes swap records on a pub/sub channel so every
// gateway instance can stream progress.
type RedisEventBus struct {
	client  *RedisClient
	channel string
}

func NewRedisEventBus(client *RedisClient, channel string) *RedisEventBus {
	if channel == "" {
		channel = "swaps:events"
	}
	return &RedisEventBus{client: client, channel: channel}
}

func (b *RedisEventBus) Report(ctx context.Context, rec model.SwapRecord) {
	payload, err := json.Marshal(rec)
	if err != nil {
		logger.LogError(ctx, err, "failed to encode swap event", "swap_id", rec.ID)
		return
	}
	if err := b.client.Client.Publish(ctx, b.channel, payload).Err(); err != nil {
		logger.LogError(ctx, err, "failed to publish swap event", "swap_id", rec.ID)
	}
}

// Subscribe delivers records until ctx is done.
func (b *RedisEventBus) Subscribe(ctx context.Context, fn func(model.SwapRecord)) error {
	sub := b.client.Client.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return err
	}
	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var rec model.SwapRecord
				if err := json.Unmarshal([]byte(msg.Payload), &rec); err != nil {
					logger.Warn("dropping malformed swap event", "error", err)
					continue
				}
				fn(rec)
			}
		}
	}()
	return nil
}
