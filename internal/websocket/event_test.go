package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	payload := map[string]interface{}{
		"counterpartyName": "John Doe",
		"principal":        "10000.00",
	}

	before := time.Now()
	evt := NewEvent(EventTypeCreated, EntityTypeLoan, payload)
	after := time.Now()

	assert.Equal(t, "loan.created", evt.Type)
	assert.Equal(t, EntityTypeLoan, evt.Entity)
	assert.Equal(t, payload, evt.Payload)
	assert.True(t, !evt.Timestamp.Before(before) && !evt.Timestamp.After(after))
}

func TestEvent_ToJSON(t *testing.T) {
	evt := NewEvent(EventTypeClosed, EntityTypeLoan, map[string]interface{}{"status": "closed"})

	data, err := evt.ToJSON()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "loan.closed", decoded["type"])
	assert.Equal(t, "loan", decoded["entity"])
	assert.NotNil(t, decoded["payload"])
	assert.NotNil(t, decoded["timestamp"])
}

func TestEvent_Helpers(t *testing.T) {
	payload := map[string]interface{}{"id": "abc"}

	tests := []struct {
		name   string
		build  func(interface{}) Event
		typ    string
		entity EntityType
	}{
		{"LoanCreated", LoanCreated, "loan.created", EntityTypeLoan},
		{"LoanUpdated", LoanUpdated, "loan.updated", EntityTypeLoan},
		{"LoanDeleted", LoanDeleted, "loan.deleted", EntityTypeLoan},
		{"LoanPaymentRecorded", LoanPaymentRecorded, "loan.payment_recorded", EntityTypeLoan},
		{"LoanClosed", LoanClosed, "loan.closed", EntityTypeLoan},
		{"LoanInterestAccrued", LoanInterestAccrued, "loan.interest_accrued", EntityTypeLoan},
		{"AttachmentCreated", AttachmentCreated, "attachment.created", EntityTypeAttachment},
		{"AttachmentDeleted", AttachmentDeleted, "attachment.deleted", EntityTypeAttachment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evt := tt.build(payload)
			assert.Equal(t, tt.typ, evt.Type)
			assert.Equal(t, tt.entity, evt.Entity)
			assert.Equal(t, payload, evt.Payload)
		})
	}
}
