// Package eventbus provides publish/subscribe plumbing for automator
// lifecycle events.
package eventbus

import (
	"context"

	"github.com/guidely/automator/pkg/events"
)

// Event is anything publishable on the bus.
type Event interface {
	GetType() events.EventType
}

// EventHandler consumes a decoded event.
type EventHandler func(ctx context.Context, event any) error

// EventPublisher publishes lifecycle events keyed by automator id.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event Event) error
}

// EventSubscriber registers handlers and starts consuming.
type EventSubscriber interface {
	Handle(eventType events.EventType, handler EventHandler) error
	Subscribe(ctx context.Context) error
}

// EventBus combines publishing and subscribing over one transport.
type EventBus interface {
	EventPublisher
	EventSubscriber
	Close() error
	GenerateID() string
}
