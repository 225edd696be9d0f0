package messaging

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"netgraph-backend/application/ports"
	"netgraph-backend/domain/events"
)

// Handler consumes one domain event.
type Handler func(ctx context.Context, evt events.DomainEvent)

// LocalDispatcher delivers events synchronously to in-process handlers.
// Handlers run in subscription order; a panic in one handler is contained
// and logged.
type LocalDispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *zap.Logger
}

var _ ports.EventPublisher = (*LocalDispatcher)(nil)

// NewLocalDispatcher creates an empty dispatcher.
func NewLocalDispatcher(logger *zap.Logger) *LocalDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalDispatcher{handlers: make(map[string][]Handler), logger: logger}
}

// Subscribe registers a handler for one event type. An empty eventType
// subscribes to every event.
func (d *LocalDispatcher) Subscribe(eventType string, handler Handler) {
	d.mu.Lock()
	d.handlers[eventType] = append(d.handlers[eventType], handler)
	d.mu.Unlock()
}

func (d *LocalDispatcher) Publish(ctx context.Context, evts ...events.DomainEvent) error {
	for _, evt := range evts {
		d.mu.RLock()
		handlers := append([]Handler{}, d.handlers[evt.EventType()]...)
		handlers = append(handlers, d.handlers[""]...)
		d.mu.RUnlock()

		for _, handler := range handlers {
			d.dispatch(ctx, handler, evt)
		}
	}
	return nil
}

func (d *LocalDispatcher) dispatch(ctx context.Context, handler Handler, evt events.DomainEvent) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("event handler panicked",
				zap.String("event_type", evt.EventType()),
				zap.Any("panic", r),
			)
		}
	}()
	handler(ctx, evt)
}
