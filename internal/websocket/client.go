package websocket

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10 // must stay below pongWait
	maxControlSize = 1024
	sendBuffer     = 64
)

// ErrClientBackedUp is returned when a client's send buffer is full
var ErrClientBackedUp = errors.New("client send buffer full")

// ActionFollow switches the loans a client receives events for
const ActionFollow = "follow"

// ControlMessage is the only message a client may send. Following with an
// empty loanId means every loan.
type ControlMessage struct {
	Action string `json:"action"`
	LoanID string `json:"loanId,omitempty"`
}

// Client is one connection following either every loan or a single loan
type Client struct {
	id      string
	subject string
	conn    *websocket.Conn
	hub     *Hub
	send    chan []byte
	logger  zerolog.Logger

	mu        sync.RWMutex
	channel   string
	closed    bool
	closeOnce sync.Once
}

// NewClient creates a client for an authenticated subject, initially following channel
func NewClient(conn *websocket.Conn, hub *Hub, subject, channel string) *Client {
	id := uuid.New().String()
	return &Client{
		id:      id,
		subject: subject,
		conn:    conn,
		hub:     hub,
		send:    make(chan []byte, sendBuffer),
		channel: channel,
		logger:  log.With().Str("client_id", id).Str("subject", subject).Logger(),
	}
}

// ID returns the client's unique identifier
func (c *Client) ID() string {
	return c.id
}

// Channel returns the channel the client currently follows
func (c *Client) Channel() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.channel
}

// Send queues a message. A client that cannot keep up loses the message.
func (c *Client) Send(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClientClosed
	}
	select {
	case c.send <- data:
		return nil
	default:
		return ErrClientBackedUp
	}
}

// Close closes the connection once; later calls return nil
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()
		if c.conn != nil {
			err = c.conn.Close()
		}
	})
	return err
}

// follow moves the client to another channel without dropping the connection
func (c *Client) follow(channel string) {
	c.mu.Lock()
	from := c.channel
	c.channel = channel
	c.mu.Unlock()
	c.hub.Move(c, from)
}

// handleControl applies one inbound message and queues the reply
func (c *Client) handleControl(data []byte) {
	var msg ControlMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.reply(SubscriptionRejected(map[string]string{"error": "malformed message"}))
		return
	}
	if msg.Action != ActionFollow {
		c.reply(SubscriptionRejected(map[string]string{"error": "unknown action", "action": msg.Action}))
		return
	}

	channel := AllLoansChannel
	if msg.LoanID != "" {
		loanID, err := uuid.Parse(msg.LoanID)
		if err != nil {
			c.reply(SubscriptionRejected(map[string]string{"error": "invalid loanId"}))
			return
		}
		channel = LoanChannel(loanID)
	}

	c.follow(channel)
	c.logger.Debug().Str("channel", channel).Msg("WebSocket client changed subscription")
	c.reply(SubscriptionChanged(map[string]string{"channel": channel}))
}

func (c *Client) reply(event Event) {
	data, err := event.ToJSON()
	if err != nil {
		return
	}
	if err := c.Send(data); err != nil {
		c.logger.Debug().Err(err).Str("event_type", event.Type).Msg("Dropped WebSocket reply")
	}
}

// ReadPump reads control messages until the connection ends, then unregisters the client.
// Run it in its own goroutine.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.Close()
	}()

	c.conn.SetReadLimit(maxControlSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn().Err(err).Str("channel", c.Channel()).Msg("WebSocket unexpected close")
			}
			return
		}
		if kind == websocket.TextMessage {
			c.handleControl(data)
		}
	}
}

// WritePump delivers queued events and keeps the connection alive with pings.
// Run it in its own goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Warn().Err(err).Str("channel", c.Channel()).Msg("WebSocket write error")
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
