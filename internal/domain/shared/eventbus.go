package shared

import "context"

// EventHandler reacts to domain events. The stock context subscribes to
// lot acceptance this way to derive custody positions without coupling
// the lot lifecycle to stock persistence.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes lists the event types the handler wants.
	// Empty means every event.
	EventTypes() []string
}

// EventPublisher is the write side of the bus. Application services hold
// this narrow interface; they never need to subscribe.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventSubscriber registers and removes handlers.
type EventSubscriber interface {
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
}

// EventBus combines both sides plus lifecycle control. Start begins
// background dispatch; Stop drains in-flight deliveries.
type EventBus interface {
	EventPublisher
	EventSubscriber
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
