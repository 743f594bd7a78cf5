package models

import (
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	EventTypeSessionStarted    = "SESSION_STARTED"
	EventTypeCheckoutStarted   = "CHECKOUT_STARTED"
	EventTypeCheckoutCompleted = "CHECKOUT_COMPLETED"
	EventTypeAdviceRequested   = "ADVICE_REQUESTED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// NewBaseEvent stamps a fresh event of eventType
func NewBaseEvent(eventType string) BaseEvent {
	return BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}

// SessionStartedEvent published when a visitor session is created
type SessionStartedEvent struct {
	BaseEvent
	SessionID string `json:"session_id"`
}

// CheckoutStartedEvent published when the details panel opens
type CheckoutStartedEvent struct {
	BaseEvent
	SessionID string      `json:"session_id"`
	Cart      CartSummary `json:"cart"`
}

// CheckoutCompletedEvent published when a (simulated) order is placed.
// Customer details are never included.
type CheckoutCompletedEvent struct {
	BaseEvent
	SessionID string      `json:"session_id"`
	Cart      CartSummary `json:"cart"`
}

// AdviceRequestedEvent published after each chat request settles
type AdviceRequestedEvent struct {
	BaseEvent
	SessionID string `json:"session_id"`
	Outcome   string `json:"outcome"`
}
