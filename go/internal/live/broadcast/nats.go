package broadcast

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// NATSConfig holds the connection settings for the NATS transport.
type NATSConfig struct {
	URL           string
	SubjectPrefix string
	MaxReconnects int
	ReconnectWait time.Duration
}

// DefaultNATSConfig returns the default NATS transport configuration.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           nats.DefaultURL,
		SubjectPrefix: "live",
		MaxReconnects: -1, // Infinite
		ReconnectWait: 2 * time.Second,
	}
}

// NATSTransport publishes over core NATS subjects (no JetStream, so at most once).
type NATSTransport struct {
	nc     *nats.Conn
	prefix string
}

var _ Transport = (*NATSTransport)(nil)

// NewNATSTransport connects to NATS.
func NewNATSTransport(cfg NATSConfig) (*NATSTransport, error) {
	opts := []nats.Option{
		nats.Name("liveworkshop-broadcast"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				log.Error().Err(err).Msg("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	log.Info().Str("url", nc.ConnectedUrl()).Msg("broadcast connected to NATS")
	return &NATSTransport{nc: nc, prefix: cfg.SubjectPrefix}, nil
}

// subject maps "workshop:<id>" onto "<prefix>.workshop.<id>".
func (t *NATSTransport) subject(topic string) string {
	s := strings.ReplaceAll(topic, ":", ".")
	if t.prefix == "" {
		return s
	}
	return t.prefix + "." + s
}

func (t *NATSTransport) Publish(ctx context.Context, topic string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := t.nc.Publish(t.subject(topic), data); err != nil {
		return fmt.Errorf("publish to NATS: %w", err)
	}
	return nil
}

func (t *NATSTransport) Subscribe(topic string, handler Handler) (func(), error) {
	sub, err := t.nc.Subscribe(t.subject(topic), func(msg *nats.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe to NATS: %w", err)
	}
	// Make sure the server knows about the interest before returning.
	if err := t.nc.Flush(); err != nil {
		_ = sub.Unsubscribe()
		return nil, fmt.Errorf("flush NATS subscription: %w", err)
	}

	return func() {
		if err := sub.Unsubscribe(); err != nil && err != nats.ErrConnectionClosed {
			log.Warn().Err(err).Str("topic", topic).Msg("NATS unsubscribe failed")
		}
	}, nil
}

// Flush waits until the server has processed everything published so far.
func (t *NATSTransport) Flush() error {
	return t.nc.Flush()
}

func (t *NATSTransport) Close() error {
	if err := t.nc.Drain(); err != nil {
		t.nc.Close()
	}
	return nil
}
