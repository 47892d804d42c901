package broadcast

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by a transport after Close.
var ErrClosed = errors.New("broadcast: transport closed")

// MemoryTransport delivers messages to in-process subscribers synchronously.
type MemoryTransport struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]Handler
	closed bool
}

var _ Transport = (*MemoryTransport)(nil)

// NewMemoryTransport creates an empty in-process transport.
func NewMemoryTransport() *MemoryTransport {
	return &MemoryTransport{subs: make(map[string]map[int]Handler)}
}

func (m *MemoryTransport) Publish(ctx context.Context, topic string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return ErrClosed
	}
	handlers := make([]Handler, 0, len(m.subs[topic]))
	for _, h := range m.subs[topic] {
		handlers = append(handlers, h)
	}
	m.mu.RUnlock()

	for _, h := range handlers {
		buf := make([]byte, len(data))
		copy(buf, data)
		h(buf)
	}
	return nil
}

func (m *MemoryTransport) Subscribe(topic string, handler Handler) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}

	id := m.nextID
	m.nextID++
	if m.subs[topic] == nil {
		m.subs[topic] = make(map[int]Handler)
	}
	m.subs[topic][id] = handler

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(m.subs[topic], id)
			if len(m.subs[topic]) == 0 {
				delete(m.subs, topic)
			}
		})
	}, nil
}

func (m *MemoryTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.subs = make(map[string]map[int]Handler)
	return nil
}
