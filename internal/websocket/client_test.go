package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nextEvent(t *testing.T, c *Client) map[string]interface{} {
	t.Helper()
	select {
	case data := <-c.send:
		var event map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &event))
		return event
	default:
		t.Fatal("expected a queued reply")
		return nil
	}
}

func TestClient_FollowSingleLoan(t *testing.T) {
	hub := NewHub()
	client := NewClient(nil, hub, "user-1", AllLoansChannel)
	hub.Register(client)
	loanID := uuid.New()

	client.handleControl([]byte(`{"action":"follow","loanId":"` + loanID.String() + `"}`))

	assert.Equal(t, LoanChannel(loanID), client.Channel())
	assert.Equal(t, 0, hub.ClientCount(AllLoansChannel))
	assert.Equal(t, 1, hub.ClientCount(LoanChannel(loanID)))

	event := nextEvent(t, client)
	assert.Equal(t, "subscription.changed", event["type"])
	assert.Equal(t, LoanChannel(loanID), event["payload"].(map[string]interface{})["channel"])

	// following again with no loan returns to every loan
	client.handleControl([]byte(`{"action":"follow"}`))
	assert.Equal(t, AllLoansChannel, client.Channel())
	assert.Equal(t, 1, hub.ClientCount(AllLoansChannel))
	assert.Equal(t, 0, hub.ClientCount(LoanChannel(loanID)))
	assert.Equal(t, 1, hub.TotalClientCount())
}

func TestClient_FollowedLoanReceivesOnlyItsEvents(t *testing.T) {
	hub := NewHub()
	client := NewClient(nil, hub, "user-1", AllLoansChannel)
	hub.Register(client)
	followed, other := uuid.New(), uuid.New()

	client.handleControl([]byte(`{"action":"follow","loanId":"` + followed.String() + `"}`))
	nextEvent(t, client)

	hub.Publish(other, LoanUpdated(map[string]string{"id": other.String()}))
	hub.Publish(followed, LoanUpdated(map[string]string{"id": followed.String()}))

	require.Eventually(t, func() bool { return len(client.send) == 1 }, time.Second, 10*time.Millisecond)
	event := nextEvent(t, client)
	assert.Equal(t, "loan.updated", event["type"])
	assert.Equal(t, followed.String(), event["payload"].(map[string]interface{})["id"])
}

func TestClient_RejectsBadControlMessages(t *testing.T) {
	tests := []struct {
		name  string
		input string
		error string
	}{
		{"malformed", `{"action":`, "malformed message"},
		{"unknown action", `{"action":"mute"}`, "unknown action"},
		{"bad loan id", `{"action":"follow","loanId":"nope"}`, "invalid loanId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub := NewHub()
			client := NewClient(nil, hub, "user-1", AllLoansChannel)
			hub.Register(client)

			client.handleControl([]byte(tt.input))

			event := nextEvent(t, client)
			assert.Equal(t, "subscription.rejected", event["type"])
			assert.Equal(t, tt.error, event["payload"].(map[string]interface{})["error"])
			assert.Equal(t, AllLoansChannel, client.Channel())
			assert.Equal(t, 1, hub.ClientCount(AllLoansChannel))
		})
	}
}

func TestClient_SendAfterCloseAndWhenBackedUp(t *testing.T) {
	client := NewClient(nil, NewHub(), "user-1", AllLoansChannel)

	for i := 0; i < sendBuffer; i++ {
		require.NoError(t, client.Send([]byte("{}")))
	}
	assert.ErrorIs(t, client.Send([]byte("{}")), ErrClientBackedUp)

	require.NoError(t, client.Close())
	require.NoError(t, client.Close())
	assert.ErrorIs(t, client.Send([]byte("{}")), ErrClientClosed)
}
