package broadcast

import (
	"context"
	"fmt"
	"strings"
)

// Transport kinds accepted by Open.
const (
	KindNATS  = "nats"
	KindRedis = "redis"
)

// OpenConfig selects and configures a network transport.
type OpenConfig struct {
	Kind     string
	NATS     NATSConfig
	RedisURL string
}

// Open connects the transport named by cfg.Kind. An empty kind means NATS.
func Open(ctx context.Context, cfg OpenConfig) (Transport, error) {
	switch strings.ToLower(cfg.Kind) {
	case "", KindNATS:
		return NewNATSTransport(cfg.NATS)
	case KindRedis:
		return NewRedisTransport(ctx, cfg.RedisURL)
	}
	return nil, fmt.Errorf("unknown broadcast transport %q", cfg.Kind)
}
