package bus

import (
	"errors"
	"sync"

	"auctiondesk/internal/live/events"
)

// ErrClosed is returned by Publish after the bus has been shut down.
var ErrClosed = errors.New("bus is closed")

// Handler consumes one live message. Handlers for a single subscription are
// invoked sequentially in publish order.
type Handler func(msg events.Message)

// Bus is the broadcast channel abstraction: one named channel, best-effort
// fan-out to every subscriber, no per-message acknowledgement. Per-publisher
// ordering is preserved; nothing is guaranteed across distinct channels.
type Bus interface {
	Publish(msg events.Message) error
	// Subscribe registers a handler and returns a function that removes it.
	Subscribe(handler Handler) (func(), error)
	Close() error
}

// InMemory is a process-local Bus for tests and the single-binary mode where
// control and spectator views run in one process. A single dispatch
// goroutine preserves message order.
type InMemory struct {
	mu       sync.Mutex
	handlers map[int]Handler
	nextID   int

	queue chan events.Message
	done  chan struct{}
	once  sync.Once
}

// NewInMemory starts an in-process bus.
func NewInMemory() *InMemory {
	b := &InMemory{
		handlers: make(map[int]Handler),
		queue:    make(chan events.Message, 256),
		done:     make(chan struct{}),
	}
	go b.dispatch()
	return b
}

func (b *InMemory) dispatch() {
	for {
		select {
		case <-b.done:
			return
		case msg := <-b.queue:
			b.mu.Lock()
			handlers := make([]Handler, 0, len(b.handlers))
			for _, h := range b.handlers {
				handlers = append(handlers, h)
			}
			b.mu.Unlock()
			for _, h := range handlers {
				h(msg)
			}
		}
	}
}

// Publish enqueues a message for asynchronous delivery to all subscribers.
func (b *InMemory) Publish(msg events.Message) error {
	select {
	case <-b.done:
		return ErrClosed
	default:
	}
	select {
	case <-b.done:
		return ErrClosed
	case b.queue <- msg:
		return nil
	}
}

// Subscribe registers a handler until the returned function is called.
func (b *InMemory) Subscribe(handler Handler) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[id] = handler

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers, id)
	}, nil
}

// Close stops dispatch. Queued but undelivered messages are dropped; the
// channel is best-effort by contract.
func (b *InMemory) Close() error {
	b.once.Do(func() { close(b.done) })
	return nil
}
