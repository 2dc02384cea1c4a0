package shared

import "context"

// EventBus is the spine of the curation pipeline: webhook intake publishes
// product events, processing handlers subscribe to them. Lifecycle methods
// let the bus participate in ordered startup and shutdown.
type EventBus interface {
	EventPublisher
	EventSubscriber

	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// EventPublisher is the write side of the bus. Intake code depends on this
// narrow interface rather than the full bus.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventSubscriber is the read side of the bus.
type EventSubscriber interface {
	// Subscribe registers handler for the named event types. Without
	// explicit types the handler's EventTypes decide; an empty list there
	// subscribes it to everything.
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
}

// EventHandler consumes domain events.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes lists the event types the handler wants. Empty means all.
	EventTypes() []string
}
