package broadcast

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisTransport publishes over Redis pub/sub channels.
type RedisTransport struct {
	rdb *redis.Client
}

var _ Transport = (*RedisTransport)(nil)

// NewRedisTransport connects to the Redis server at url (redis://host:port/db).
func NewRedisTransport(ctx context.Context, url string) (*RedisTransport, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	log.Info().Str("addr", opts.Addr).Msg("broadcast connected to Redis")
	return &RedisTransport{rdb: rdb}, nil
}

func (t *RedisTransport) Publish(ctx context.Context, topic string, data []byte) error {
	if err := t.rdb.Publish(ctx, topic, data).Err(); err != nil {
		return fmt.Errorf("publish to redis: %w", err)
	}
	return nil
}

func (t *RedisTransport) Subscribe(topic string, handler Handler) (func(), error) {
	ctx := context.Background()
	ps := t.rdb.Subscribe(ctx, topic)
	// Wait for the subscription confirmation so no publish is missed after return.
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, fmt.Errorf("subscribe to redis: %w", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range ps.Channel() {
			handler([]byte(msg.Payload))
		}
	}()

	return func() {
		if err := ps.Close(); err != nil {
			log.Warn().Err(err).Str("topic", topic).Msg("redis unsubscribe failed")
		}
		<-done
	}, nil
}

func (t *RedisTransport) Close() error {
	return t.rdb.Close()
}
