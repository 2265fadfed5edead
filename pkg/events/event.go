package events

import "time"

// Event type codes published on the bus.
const (
	TypeChatTurnCompleted = "CHAT_TURN_COMPLETED"
	TypeChatTurnFailed    = "CHAT_TURN_FAILED"
	TypeSessionDeleted    = "CHAT_SESSION_DELETED"
	TypeModelCreated      = "CUSTOM_MODEL_CREATED"
	TypeModelDeleted      = "CUSTOM_MODEL_DELETED"
	TypeUserLogin         = "USER_LOGIN"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "CHAT_TURN_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the common Event implementation used by all publishers.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

func New(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}
}
