package models

import (
	"encoding/json"
	"time"
)

// Collections that produce change events.
const (
	CollectionNotifications = "notifications"
	CollectionChats         = "chats"
	CollectionReports       = "reports"
)

// Change kinds.
const (
	ChangeCreated = "created"
	ChangeUpdated = "updated"
)

// ChangeEnvelope is one document change as published by the app backend.
// Before is null for creations. Delivery is at-least-once; consumers must
// tolerate replays.
type ChangeEnvelope struct {
	EventID    string          `json:"event_id"`
	Collection string          `json:"collection"`
	DocumentID string          `json:"document_id"`
	Kind       string          `json:"kind"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after"`
	ActorID    string          `json:"actor_id,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// EventKind discriminates the two trigger shapes the dispatcher handles.
type EventKind int

const (
	// KindCreation is a freshly created notification record.
	KindCreation EventKind = iota
	// KindStatusTransition is an order-status change on a chat record.
	KindStatusTransition
)

// TriggerEvent is the tagged variant handed to the dispatcher. Exactly one
// of Notification (creation) or Before/After (transition) is populated.
type TriggerEvent struct {
	Kind    EventKind
	ChatID  string
	ActorID string

	Notification *Notification

	Before *Chat
	After  *Chat
}

// NewCreationEvent wraps a notification creation.
func NewCreationEvent(n *Notification) TriggerEvent {
	return TriggerEvent{Kind: KindCreation, Notification: n}
}

// NewStatusTransitionEvent wraps a chat update with its before/after images.
func NewStatusTransitionEvent(chatID, actorID string, before, after *Chat) TriggerEvent {
	return TriggerEvent{
		Kind:    KindStatusTransition,
		ChatID:  chatID,
		ActorID: actorID,
		Before:  before,
		After:   after,
	}
}
