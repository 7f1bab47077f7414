// Package events defines the automator lifecycle notifications published for
// downstream guidance tooling.
package events

import (
	"time"
)

// EventType identifies a lifecycle event.
type EventType string

// Topic is the bus topic all automator lifecycle events are published on.
const Topic = "automator.lifecycle"

const (
	EventMetadataKey     = "key"
	EventTypeMetadataKey = "event_type"
)

const (
	// AutomatorSavedEvent fires after a definition save lands.
	AutomatorSavedEvent EventType = "automator.saved"
	// AutomatorPublishedEvent fires when an automator goes live.
	AutomatorPublishedEvent EventType = "automator.published"
	// AutomatorUnpublishedEvent fires when an automator returns to draft.
	AutomatorUnpublishedEvent EventType = "automator.unpublished"
)

// BaseEvent carries the fields common to every lifecycle event.
type BaseEvent struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	AutomatorID string    `json:"automator_id"`
	TeamID      string    `json:"team_id"`
	ActorID     string    `json:"actor_id,omitempty"`
}

// AutomatorSaved notifies that an automator's definition was overwritten.
type AutomatorSaved struct {
	BaseEvent

	NodeCount int `json:"node_count"`
	EdgeCount int `json:"edge_count"`
}

func (e AutomatorSaved) GetType() EventType { return AutomatorSavedEvent }

// AutomatorPublished notifies that an automator's definition went live.
type AutomatorPublished struct {
	BaseEvent
}

func (e AutomatorPublished) GetType() EventType { return AutomatorPublishedEvent }

// AutomatorUnpublished notifies that an automator was taken offline.
type AutomatorUnpublished struct {
	BaseEvent
}

func (e AutomatorUnpublished) GetType() EventType { return AutomatorUnpublishedEvent }
