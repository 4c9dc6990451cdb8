package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the pub/sub channel used when none is configured.
const DefaultChannel = "trip-events"

// RedisPublisher publishes events as JSON on a Redis pub/sub channel.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

// NewRedisPublisher returns a publisher writing to channel.
func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, e TripEvent) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("notify.RedisPublisher.Publish: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, raw).Err(); err != nil {
		return fmt.Errorf("notify.RedisPublisher.Publish: %w", err)
	}
	return nil
}

// Subscribe calls onEvent for every event published on channel until ctx is
// cancelled. It returns once the subscription is confirmed, or with an error
// if it could not be established. Malformed payloads are logged and skipped.
func Subscribe(ctx context.Context, client *redis.Client, channel string, log *slog.Logger, onEvent func(TripEvent)) error {
	if channel == "" {
		channel = DefaultChannel
	}
	sub := client.Subscribe(ctx, channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("notify.Subscribe: %w", err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok {
					return
				}
				var e TripEvent
				if err := json.Unmarshal([]byte(m.Payload), &e); err != nil {
					log.Warn("notify: bad event payload", "error", err)
					continue
				}
				onEvent(e)
			}
		}
	}()
	return nil
}
