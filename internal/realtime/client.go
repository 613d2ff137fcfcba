// Package realtime implements the client side of the marketplace real-time
// channel: a WebSocket subscription delivering swap status and escrow pushes
// that the syncer maps onto engine events.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Config configures connection behavior.
type Config struct {
	// ReconnectDelay is the initial delay before a reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay caps the backoff between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is the keepalive ping cadence.
	PingInterval time.Duration
	// ReadTimeout bounds a single read.
	ReadTimeout time.Duration
	// WriteTimeout bounds a single write.
	WriteTimeout time.Duration
}

// DefaultConfig returns the default connection configuration.
func DefaultConfig() Config {
	return Config{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// Message types pushed by the server.
const (
	messageStatusChanged = "status_changed"
	messageEscrowUpdated = "escrow_updated"
)

// StatusEvent is a status_changed push.
type StatusEvent struct {
	SwapID          string `json:"swapId"`
	Status          string `json:"status"`
	ServerTimestamp int64  `json:"serverTimestamp"`
}

// EscrowEvent is an escrow_updated push.
type EscrowEvent struct {
	SwapID     string  `json:"swapId"`
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency"`
	Status     string  `json:"status"`
	Reference  string  `json:"reference"`
	FundedAt   int64   `json:"fundedAt"`
	ReleasedAt int64   `json:"releasedAt"`
}

// Event is one push from the channel; exactly one field is set.
type Event struct {
	Status *StatusEvent
	Escrow *EscrowEvent
}

type pushFrame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type subscribeFrame struct {
	Action string `json:"action"`
	UserID string `json:"userId"`
}

// Client maintains the WebSocket connection to the real-time channel.
type Client struct {
	endpoint string
	userID   string
	config   Config
	log      *logrus.Entry

	conn   *websocket.Conn
	connMu sync.Mutex
	closed atomic.Bool

	events chan Event

	done         chan struct{}
	wg           sync.WaitGroup
	reconnecting atomic.Bool
}

// Dial connects to the real-time endpoint and subscribes to the user's swap
// pushes. A nil config uses DefaultConfig.
func Dial(ctx context.Context, endpoint, userID string, config *Config, log *logrus.Logger) (*Client, error) {
	cfg := DefaultConfig()
	if config != nil {
		cfg = *config
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	c := &Client{
		endpoint: endpoint,
		userID:   userID,
		config:   cfg,
		log:      log.WithField("component", "realtime"),
		events:   make(chan Event, 256),
		done:     make(chan struct{}),
	}

	if err := c.connect(ctx); err != nil {
		return nil, err
	}

	c.wg.Add(1)
	go c.readLoop()

	c.wg.Add(1)
	go c.pingLoop()

	return c, nil
}

// Events returns the push channel. It is closed when the client closes.
func (c *Client) Events() <-chan Event { return c.events }

// connect establishes the connection and sends the subscribe frame.
func (c *Client) connect(ctx context.Context) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	if err := conn.WriteJSON(subscribeFrame{Action: "subscribe", UserID: c.userID}); err != nil {
		conn.Close()
		return fmt.Errorf("write subscribe: %w", err)
	}

	c.conn = conn
	return nil
}

// Close closes the connection and the event channel.
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil
	}

	close(c.done)

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.conn.Close()
	}
	c.connMu.Unlock()

	c.wg.Wait()
	close(c.events)
	return nil
}

// readLoop reads pushes and delivers them, reconnecting on errors with
// exponential backoff.
func (c *Client) readLoop() {
	defer c.wg.Done()

	reconnectDelay := c.config.ReconnectDelay

	for !c.closed.Load() {
		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()

		if conn == nil {
			// A previous reconnect attempt failed; schedule another.
			if !c.reconnecting.Swap(true) {
				go c.reconnect(reconnectDelay)
			}
			reconnectDelay *= 2
			if reconnectDelay > c.config.MaxReconnectDelay {
				reconnectDelay = c.config.MaxReconnectDelay
			}
			select {
			case <-c.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
		_, message, err := conn.ReadMessage()
		if err != nil {
			if c.closed.Load() {
				return
			}

			if !c.reconnecting.Swap(true) {
				go c.reconnect(reconnectDelay)
			}
			reconnectDelay *= 2
			if reconnectDelay > c.config.MaxReconnectDelay {
				reconnectDelay = c.config.MaxReconnectDelay
			}

			select {
			case <-c.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		reconnectDelay = c.config.ReconnectDelay
		c.handleMessage(message)
	}
}

func (c *Client) handleMessage(message []byte) {
	var frame pushFrame
	if err := json.Unmarshal(message, &frame); err != nil {
		c.log.WithError(err).Warn("dropping malformed push")
		return
	}

	var ev Event
	switch frame.Type {
	case messageStatusChanged:
		var st StatusEvent
		if err := json.Unmarshal(frame.Payload, &st); err != nil {
			c.log.WithError(err).Warn("dropping malformed status push")
			return
		}
		ev.Status = &st
	case messageEscrowUpdated:
		var esc EscrowEvent
		if err := json.Unmarshal(frame.Payload, &esc); err != nil {
			c.log.WithError(err).Warn("dropping malformed escrow push")
			return
		}
		ev.Escrow = &esc
	default:
		return
	}

	select {
	case c.events <- ev:
	case <-c.done:
	}
}

// reconnect redials and resubscribes after a connection error.
func (c *Client) reconnect(delay time.Duration) {
	defer c.reconnecting.Store(false)

	if c.closed.Load() {
		return
	}

	select {
	case <-c.done:
		return
	case <-time.After(delay):
	}

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.connect(ctx); err != nil {
		c.log.WithError(err).Warn("reconnect failed, will retry")
		return
	}
	c.log.Info("reconnected to real-time channel")
}

// pingLoop sends keepalive pings.
func (c *Client) pingLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.connMu.Lock()
			if c.conn != nil {
				c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
				if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					c.log.WithError(err).Debug("ping failed")
				}
			}
			c.connMu.Unlock()
		}
	}
}
