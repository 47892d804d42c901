package broadcast

import "context"

// Handler receives raw message bytes for a topic.
type Handler func(data []byte)

// Transport is an opaque best-effort pub/sub primitive.
type Transport interface {
	Publish(ctx context.Context, topic string, data []byte) error
	// Subscribe registers handler for topic until the returned func is called.
	Subscribe(topic string, handler Handler) (func(), error)
	Close() error
}
