package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents what happened to the entity
type EventType string

const (
	EventTypeCreated         EventType = "created"
	EventTypeUpdated         EventType = "updated"
	EventTypeDeleted         EventType = "deleted"
	EventTypePaymentRecorded EventType = "payment_recorded"
	EventTypeClosed          EventType = "closed"
	EventTypeInterestAccrued EventType = "interest_accrued"
	EventTypeChanged         EventType = "changed"
	EventTypeRejected        EventType = "rejected"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeLoan         EntityType = "loan"
	EntityTypeAttachment   EntityType = "attachment"
	EntityTypeSubscription EntityType = "subscription"
)

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "loan.created"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "loan"
	Payload   interface{} `json:"payload"`   // Full entity data
	Timestamp time.Time   `json:"timestamp"` // Event timestamp
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LoanCreated creates a loan.created event
func LoanCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeLoan, payload)
}

// LoanUpdated creates a loan.updated event
func LoanUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeLoan, payload)
}

// LoanDeleted creates a loan.deleted event
func LoanDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeLoan, payload)
}

// LoanPaymentRecorded creates a loan.payment_recorded event
func LoanPaymentRecorded(payload interface{}) Event {
	return NewEvent(EventTypePaymentRecorded, EntityTypeLoan, payload)
}

// LoanClosed creates a loan.closed event
func LoanClosed(payload interface{}) Event {
	return NewEvent(EventTypeClosed, EntityTypeLoan, payload)
}

// LoanInterestAccrued creates a loan.interest_accrued event
func LoanInterestAccrued(payload interface{}) Event {
	return NewEvent(EventTypeInterestAccrued, EntityTypeLoan, payload)
}

// AttachmentCreated creates an attachment.created event
func AttachmentCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeAttachment, payload)
}

// AttachmentDeleted creates an attachment.deleted event
func AttachmentDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeAttachment, payload)
}

// SubscriptionChanged confirms a client's follow request
func SubscriptionChanged(payload interface{}) Event {
	return NewEvent(EventTypeChanged, EntityTypeSubscription, payload)
}

// SubscriptionRejected answers a control message the client got wrong
func SubscriptionRejected(payload interface{}) Event {
	return NewEvent(EventTypeRejected, EntityTypeSubscription, payload)
}
