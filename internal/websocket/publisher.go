package websocket

import "github.com/google/uuid"

// EventPublisher defines the interface for publishing events to WebSocket clients
type EventPublisher interface {
	// Publish sends an event to clients following all loans and to clients following this loan
	Publish(loanID uuid.UUID, event Event)
}

// Ensure Hub implements EventPublisher
var _ EventPublisher = (*Hub)(nil)

// Publish implements EventPublisher by broadcasting the event on the loan's channels
func (h *Hub) Publish(loanID uuid.UUID, event Event) {
	h.Broadcast(AllLoansChannel, event)
	h.Broadcast(LoanChannel(loanID), event)
}

// NoOpPublisher is a publisher that does nothing (for testing or when WebSocket is disabled)
type NoOpPublisher struct{}

// Publish does nothing
func (n *NoOpPublisher) Publish(loanID uuid.UUID, event Event) {}
