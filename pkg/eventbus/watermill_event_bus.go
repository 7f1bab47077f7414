package eventbus

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/guidely/automator/pkg/events"
)

// WatermillEventBus adapts any watermill publisher/subscriber pair (kafka,
// in-memory gochannel) to the EventBus interface.
type WatermillEventBus struct {
	publisher     message.Publisher
	subscriber    message.Subscriber
	subscriptions map[events.EventType]EventHandler
}

// NewWatermillEventBus creates an event bus over the given transport.
func NewWatermillEventBus(pub message.Publisher, sub message.Subscriber) *WatermillEventBus {
	return &WatermillEventBus{
		publisher:     pub,
		subscriber:    sub,
		subscriptions: make(map[events.EventType]EventHandler),
	}
}

// GenerateID returns a new event id.
func (eb *WatermillEventBus) GenerateID() string {
	return watermill.NewULID()
}

// Publish serializes the event onto the lifecycle topic with the routing key
// and event type in the message metadata.
func (eb *WatermillEventBus) Publish(_ context.Context, key string, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := message.NewMessage("msg-"+eb.GenerateID(), payload)
	msg.Metadata.Set(events.EventMetadataKey, key)
	msg.Metadata.Set(events.EventTypeMetadataKey, string(event.GetType()))

	return eb.publisher.Publish(events.Topic, msg)
}

// Handle registers a handler for one event type. Must be called before
// Subscribe.
func (eb *WatermillEventBus) Handle(eventType events.EventType, handler EventHandler) error {
	eb.subscriptions[eventType] = handler

	return nil
}

// Subscribe starts consuming the lifecycle topic, dispatching decoded events
// to registered handlers. Unknown event types are nacked; events with no
// handler are acked and dropped.
func (eb *WatermillEventBus) Subscribe(ctx context.Context) error {
	messages, err := eb.subscriber.Subscribe(ctx, events.Topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			eventType := events.EventType(msg.Metadata.Get(events.EventTypeMetadataKey))

			handler, exists := eb.subscriptions[eventType]
			if !exists {
				msg.Ack()

				continue
			}

			var event any

			switch eventType {
			case events.AutomatorSavedEvent:
				event = &events.AutomatorSaved{}
			case events.AutomatorPublishedEvent:
				event = &events.AutomatorPublished{}
			case events.AutomatorUnpublishedEvent:
				event = &events.AutomatorUnpublished{}
			default:
				msg.Nack()

				continue
			}

			if err := json.Unmarshal(msg.Payload, event); err != nil {
				msg.Nack()

				continue
			}

			if err := handler(ctx, event); err != nil {
				msg.Nack()

				continue
			}

			msg.Ack()
		}
	}()

	return nil
}

// Close shuts down both sides of the transport.
func (eb *WatermillEventBus) Close() error {
	if err := eb.publisher.Close(); err != nil {
		return err
	}

	return eb.subscriber.Close()
}
