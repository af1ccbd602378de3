package feed

import (
	"context"
	"errors"
	"sync"

	"github.com/dchamindu826/Rider-App/internal/model"
	"go.uber.org/zap"
)

// Source is an upstream order feed, such as NATSFeed or the database's
// LISTEN/NOTIFY channel.
type Source interface {
	Listen(ctx context.Context, handler func(model.OrderEvent)) (stop func(), err error)
}

// Hub holds a single upstream subscription for the whole process and fans
// each event out to the registered handlers. A database feed pins one pool
// connection per subscription, so engines subscribe to the hub instead.
type Hub struct {
	source Source
	logger *zap.SugaredLogger

	mu       sync.RWMutex
	nextID   int
	handlers map[int]func(model.OrderEvent)
	stop     func()
}

func NewHub(source Source, logger *zap.SugaredLogger) *Hub {
	return &Hub{
		source:   source,
		logger:   logger,
		handlers: make(map[int]func(model.OrderEvent)),
	}
}

// Start opens the upstream subscription. It runs until ctx is done or Close
// is called.
func (h *Hub) Start(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stop != nil {
		return errors.New("order feed hub already started")
	}

	stop, err := h.source.Listen(ctx, h.dispatch)
	if err != nil {
		return err
	}
	h.stop = stop
	return nil
}

// Listen registers handler until stop is called or ctx is done. It does not
// touch the upstream subscription.
func (h *Hub) Listen(ctx context.Context, handler func(model.OrderEvent)) (func(), error) {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.handlers[id] = handler
	h.mu.Unlock()

	done := make(chan struct{})
	var once sync.Once
	stop := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.handlers, id)
			h.mu.Unlock()
			close(done)
		})
	}

	go func() {
		select {
		case <-ctx.Done():
			stop()
		case <-done:
		}
	}()

	return stop, nil
}

// Subscribers is the number of registered handlers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.handlers)
}

// dispatch runs handlers outside the lock; they must not block.
func (h *Hub) dispatch(ev model.OrderEvent) {
	h.mu.RLock()
	handlers := make([]func(model.OrderEvent), 0, len(h.handlers))
	for _, fn := range h.handlers {
		handlers = append(handlers, fn)
	}
	h.mu.RUnlock()

	h.logger.Debugf("order %s %s, notifying %d riders", ev.OrderID, ev.Transition, len(handlers))
	for _, fn := range handlers {
		fn(ev)
	}
}

func (h *Hub) Close() {
	h.mu.Lock()
	stop := h.stop
	h.stop = nil
	h.mu.Unlock()

	if stop != nil {
		stop()
	}
}
