package websocket

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockClient is a test double for Client that captures sent messages
type mockClient struct {
	id       string
	channel  string
	messages [][]byte
	mu       sync.Mutex
	closed   bool
}

func newMockClient(id string, channel string) *mockClient {
	return &mockClient{
		id:       id,
		channel:  channel,
		messages: make([][]byte, 0),
	}
}

func (m *mockClient) ID() string {
	return m.id
}

func (m *mockClient) Channel() string {
	return m.channel
}

func (m *mockClient) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClientClosed
	}
	m.messages = append(m.messages, data)
	return nil
}

func (m *mockClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockClient) GetMessages() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make([][]byte, len(m.messages))
	copy(copied, m.messages)
	return copied
}

func TestLoanChannel(t *testing.T) {
	id := uuid.MustParse("6f1b6f5e-8a43-4f1c-9d44-2f8f3b1c0a11")
	assert.Equal(t, "loan:6f1b6f5e-8a43-4f1c-9d44-2f8f3b1c0a11", LoanChannel(id))
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub()
	loanChannel := LoanChannel(uuid.New())

	client1 := newMockClient("client-1", AllLoansChannel)
	client2 := newMockClient("client-2", AllLoansChannel)
	client3 := newMockClient("client-3", loanChannel)

	hub.Register(client1)
	hub.Register(client2)
	hub.Register(client3)

	assert.Equal(t, 2, hub.ClientCount(AllLoansChannel))
	assert.Equal(t, 1, hub.ClientCount(loanChannel))
	assert.Equal(t, 0, hub.ClientCount("loan:unknown"))
	assert.Equal(t, 3, hub.TotalClientCount())

	hub.Unregister(client1)
	assert.Equal(t, 1, hub.ClientCount(AllLoansChannel))

	hub.Unregister(client2)
	hub.Unregister(client3)
	assert.Equal(t, 0, hub.ClientCount(AllLoansChannel))
	assert.Equal(t, 0, hub.ClientCount(loanChannel))
	assert.Equal(t, 0, hub.TotalClientCount())
}

func TestHub_Broadcast_ChannelIsolation(t *testing.T) {
	hub := NewHub()
	loanA := LoanChannel(uuid.New())
	loanB := LoanChannel(uuid.New())

	clientA1 := newMockClient("client-a1", loanA)
	clientA2 := newMockClient("client-a2", loanA)
	clientB := newMockClient("client-b", loanB)

	hub.Register(clientA1)
	hub.Register(clientA2)
	hub.Register(clientB)

	hub.Broadcast(loanA, LoanUpdated(map[string]interface{}{"counterpartyName": "Jane"}))

	// Give goroutines time to process
	time.Sleep(10 * time.Millisecond)

	assert.Len(t, clientA1.GetMessages(), 1, "clientA1 should receive 1 message")
	assert.Len(t, clientA2.GetMessages(), 1, "clientA2 should receive 1 message")
	assert.Len(t, clientB.GetMessages(), 0, "clientB should not receive another loan's events")
}

func TestHub_ConcurrentAccess(t *testing.T) {
	hub := NewHub()

	var wg sync.WaitGroup
	clientCount := 50
	channels := make([]string, 5)
	for i := range channels {
		channels[i] = LoanChannel(uuid.New())
	}

	clients := make([]*mockClient, clientCount)
	for i := 0; i < clientCount; i++ {
		clients[i] = newMockClient(fmt.Sprintf("client-%d", i), channels[i%5])
	}

	for i := 0; i < clientCount; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			hub.Register(clients[idx])
		}(i)
	}

	wg.Wait()
	assert.Equal(t, clientCount, hub.TotalClientCount())

	for i := 0; i < clientCount; i++ {
		wg.Add(2)
		go func(idx int) {
			defer wg.Done()
			hub.Broadcast(channels[idx%5], LoanUpdated(map[string]interface{}{"idx": idx}))
		}(i)
		go func(idx int) {
			defer wg.Done()
			hub.Unregister(clients[idx])
		}(i)
	}

	wg.Wait()

	for _, ch := range channels {
		assert.Equal(t, 0, hub.ClientCount(ch))
	}
}

func TestHub_UnregisterNonexistent(t *testing.T) {
	hub := NewHub()

	require.NotPanics(t, func() {
		hub.Unregister(newMockClient("client-1", AllLoansChannel))
	})
}

func TestHub_BroadcastToEmptyChannel(t *testing.T) {
	hub := NewHub()

	require.NotPanics(t, func() {
		hub.Broadcast("loan:nobody", LoanCreated(map[string]interface{}{}))
	})
}
