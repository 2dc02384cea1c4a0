package event

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/curator/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// InMemoryEventBus is a synchronous in-process pub/sub bus. Webhook intake
// publishes onto it and the curation pipeline subscribes by event type.
// Dispatch is deliberately synchronous: by the time the webhook handler
// answers 200, every subscriber has run — for an upsert that means the
// delivery is recorded in the idempotency store and its sync job is
// enqueued. The curation work itself happens later on the scheduler
// worker, so a 200 acknowledges acceptance, not completion.
type InMemoryEventBus struct {
	mu       sync.RWMutex
	byType   map[string][]shared.EventHandler
	catchAll []shared.EventHandler

	logger  *zap.Logger
	started atomic.Bool
}

// NewInMemoryEventBus creates an empty bus.
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{
		byType: make(map[string][]shared.EventHandler),
		logger: logger,
	}
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)

// Publish dispatches each event to its subscribers in registration order,
// catch-all subscribers last. Handler errors are logged and swallowed:
// the webhook response must not depend on processing outcome, and one
// failing handler must not starve its siblings.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, evt := range events {
		if err := ctx.Err(); err != nil {
			return err
		}

		for _, h := range b.handlersFor(evt.EventType()) {
			if err := b.dispatch(ctx, h, evt); err != nil {
				b.logger.Error("handler failed to process event",
					zap.String("event_type", evt.EventType()),
					zap.String("event_id", evt.EventID()),
					zap.String("subject_id", evt.SubjectID()),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

// Subscribe registers handler for the given event types. With no explicit
// types the handler's own EventTypes decide; an empty result there
// subscribes it to every event.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}

	b.mu.Lock()
	if len(eventTypes) == 0 {
		b.catchAll = append(b.catchAll, handler)
	} else {
		for _, et := range eventTypes {
			b.byType[et] = append(b.byType[et], handler)
		}
	}
	b.mu.Unlock()

	b.logger.Debug("handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes handler from every subscription.
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.mu.Lock()
	b.catchAll = without(b.catchAll, handler)
	for et, handlers := range b.byType {
		b.byType[et] = without(handlers, handler)
		if len(b.byType[et]) == 0 {
			delete(b.byType, et)
		}
	}
	b.mu.Unlock()

	b.logger.Debug("handler unsubscribed")
}

// Start marks the bus as running. Dispatch itself needs no warm-up; the
// lifecycle hooks exist so the bus composes with the other managed
// components at startup and shutdown.
func (b *InMemoryEventBus) Start(context.Context) error {
	if b.started.CompareAndSwap(false, true) {
		b.logger.Info("event bus started")
	}
	return nil
}

// Stop marks the bus as stopped. In-flight synchronous dispatches complete
// with their callers.
func (b *InMemoryEventBus) Stop(context.Context) error {
	if b.started.CompareAndSwap(true, false) {
		b.logger.Info("event bus stopped")
	}
	return nil
}

func (b *InMemoryEventBus) handlersFor(eventType string) []shared.EventHandler {
	b.mu.RLock()
	defer b.mu.RUnlock()

	typed := b.byType[eventType]
	out := make([]shared.EventHandler, 0, len(typed)+len(b.catchAll))
	out = append(out, typed...)
	out = append(out, b.catchAll...)
	return out
}

// dispatch runs one handler, converting a panic into a logged recovery so
// sibling handlers still run.
func (b *InMemoryEventBus) dispatch(ctx context.Context, handler shared.EventHandler, evt shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("handler panicked",
				zap.String("event_type", evt.EventType()),
				zap.String("event_id", evt.EventID()),
				zap.Any("panic", r),
			)
		}
	}()

	return handler.Handle(ctx, evt)
}

func without(handlers []shared.EventHandler, target shared.EventHandler) []shared.EventHandler {
	out := handlers[:0:0]
	for _, h := range handlers {
		if h != target {
			out = append(out, h)
		}
	}
	return out
}
