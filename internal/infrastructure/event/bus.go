package event

import (
	"context"
	"fmt"
	"sync"

	"github.com/erp/invoicelock/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultQueueSize is the number of events buffered while the bus is running
const DefaultQueueSize = 256

type envelope struct {
	ctx   context.Context
	event shared.DomainEvent
}

// InMemoryEventBus delivers domain events to registered handlers.
//
// Before Start and after Stop events are dispatched synchronously inside
// Publish. While running they are queued and dispatched in order by a single
// worker; a full queue falls back to synchronous dispatch so no event is
// dropped. Handler errors and panics are logged and never reach the publisher.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger

	mu      sync.RWMutex
	running bool
	queue   chan envelope
	done    chan struct{}
	size    int
}

// NewInMemoryEventBus creates an event bus with the given queue size
func NewInMemoryEventBus(logger *zap.Logger, queueSize int) *InMemoryEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   logger.Named("event_bus"),
		size:     queueSize,
	}
}

// Publish delivers events to their handlers
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, event := range events {
		if b.running {
			select {
			case b.queue <- envelope{ctx: context.WithoutCancel(ctx), event: event}:
				continue
			default:
				b.logger.Warn("Event queue full, dispatching inline",
					zap.String("event_type", event.EventType()))
			}
		}
		b.dispatch(ctx, event)
	}
	return nil
}

// Subscribe registers handler for eventTypes, defaulting to handler.EventTypes()
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("Handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes handler
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
}

// Start launches the dispatch worker
func (b *InMemoryEventBus) Start(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		return fmt.Errorf("event bus already running")
	}
	b.queue = make(chan envelope, b.size)
	b.done = make(chan struct{})
	b.running = true
	go b.work(b.queue, b.done)

	b.logger.Info("Event bus started", zap.Int("queue_size", b.size))
	return nil
}

// Stop drains the queue and stops the worker. It returns ctx.Err() if the
// drain does not finish before ctx is done.
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return nil
	}
	b.running = false
	close(b.queue)
	done := b.done
	b.mu.Unlock()

	select {
	case <-done:
		b.logger.Info("Event bus stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *InMemoryEventBus) work(queue <-chan envelope, done chan<- struct{}) {
	defer close(done)
	for env := range queue {
		b.dispatch(env.ctx, env.event)
	}
}

func (b *InMemoryEventBus) dispatch(ctx context.Context, event shared.DomainEvent) {
	for _, handler := range b.registry.Handlers(event.EventType()) {
		if err := b.handle(ctx, handler, event); err != nil {
			b.logger.Error("Event handler failed",
				zap.String("event_type", event.EventType()),
				zap.String("event_id", event.EventID().String()),
				zap.Error(err),
			)
		}
	}
}

func (b *InMemoryEventBus) handle(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return handler.Handle(ctx, event)
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
