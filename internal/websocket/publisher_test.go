package websocket

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestHub_Implements_EventPublisher(t *testing.T) {
	var _ EventPublisher = (*Hub)(nil)
}

func TestHub_Publish_FansOutToLoanAndAllLoans(t *testing.T) {
	hub := NewHub()
	loanID := uuid.New()

	allClient := newMockClient("all", AllLoansChannel)
	loanClient := newMockClient("loan", LoanChannel(loanID))
	otherClient := newMockClient("other", LoanChannel(uuid.New()))
	hub.Register(allClient)
	hub.Register(loanClient)
	hub.Register(otherClient)

	var publisher EventPublisher = hub
	publisher.Publish(loanID, LoanPaymentRecorded(map[string]interface{}{"amount": "100.00"}))

	// Allow async broadcast to complete
	time.Sleep(10 * time.Millisecond)

	assert.Len(t, allClient.GetMessages(), 1)
	assert.Len(t, loanClient.GetMessages(), 1)
	assert.Len(t, otherClient.GetMessages(), 0)
}

func TestNoOpPublisher_Publish(t *testing.T) {
	publisher := &NoOpPublisher{}

	assert.NotPanics(t, func() {
		publisher.Publish(uuid.New(), LoanCreated(map[string]interface{}{}))
	})
}
