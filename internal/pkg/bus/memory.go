package bus

import (
	"context"
	"errors"
	"sync"

	"github.com/autopeer-io/vfleet/pkg/mqtt/topic"
)

// ErrClosed is returned by a closed memory session.
var ErrClosed = errors.New("bus session closed")

// MemoryBroker is an in-process broker. Sessions created from the same
// broker see each other's messages. Delivery is synchronous: Publish returns
// after every matching handler ran.
type MemoryBroker struct {
	mu   sync.RWMutex
	subs map[*MemorySession][]subscription
}

type subscription struct {
	filter  string
	handler Handler
}

// NewMemoryBroker creates an empty broker.
func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[*MemorySession][]subscription)}
}

// Session opens a new session on the broker.
func (m *MemoryBroker) Session() *MemorySession {
	return &MemorySession{broker: m}
}

func (m *MemoryBroker) publish(ctx context.Context, t string, payload []byte) {
	m.mu.RLock()
	var handlers []Handler
	for _, subs := range m.subs {
		for _, s := range subs {
			if topic.Match(s.filter, t) {
				handlers = append(handlers, s.handler)
			}
		}
	}
	m.mu.RUnlock()

	for _, h := range handlers {
		// every subscriber gets its own copy
		h(ctx, t, append([]byte(nil), payload...))
	}
}

func (m *MemoryBroker) subscribe(s *MemorySession, filter string, h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs[s] = append(m.subs[s], subscription{filter: filter, handler: h})
}

func (m *MemoryBroker) drop(s *MemorySession) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subs, s)
}

// MemorySession is a Bus backed by a MemoryBroker.
type MemorySession struct {
	broker *MemoryBroker

	mu     sync.Mutex
	closed bool
}

var _ Bus = (*MemorySession)(nil)

func (s *MemorySession) Start(_ context.Context) error {
	return s.check()
}

func (s *MemorySession) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := s.check(); err != nil {
		return err
	}
	s.broker.publish(ctx, topic, payload)
	return nil
}

func (s *MemorySession) Subscribe(_ context.Context, topic string, handler Handler) error {
	if err := s.check(); err != nil {
		return err
	}
	s.broker.subscribe(s, topic, handler)
	return nil
}

func (s *MemorySession) Close(_ context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.broker.drop(s)
	return nil
}

func (s *MemorySession) check() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}
