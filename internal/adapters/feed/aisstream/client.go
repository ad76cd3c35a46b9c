// Package aisstream connects to the aisstream.io websocket feed, performs
// the subscription handshake, and delivers decoded vessel events on a
// channel.
package aisstream

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"vesselwatch/internal/core/domain"
	"vesselwatch/internal/core/port"
)

const (
	dialTimeout      = 10 * time.Second
	initialBackoff   = 2 * time.Second
	maxBackoff       = 60 * time.Second
	eventChannelSize = 500
)

// Client streams AIS events from aisstream.io. It reconnects with capped
// exponential backoff; events that arrive while the consumer is behind are
// dropped rather than blocking the read loop.
type Client struct {
	url          string
	apiKey       string
	boxes        [][][]float64
	messageTypes []string

	conn      *websocket.Conn
	dataChan  chan domain.VesselEvent
	stopChan  chan struct{}
	isRunning bool
	isHealthy bool
	mu        sync.RWMutex

	// Connection tracking
	connectionAttempts int64
	lastConnectTime    time.Time
	messagesReceived   int64
	messagesDropped    int64
}

func NewClient(url, apiKey string, boxes [][][]float64, messageTypes []string) port.Feed {
	return &Client{
		url:          url,
		apiKey:       apiKey,
		boxes:        boxes,
		messageTypes: messageTypes,
	}
}

func (c *Client) Start(ctx context.Context) (<-chan domain.VesselEvent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isRunning {
		slog.Warn("Feed already running", "feed", c.Name())
		return c.dataChan, nil
	}

	slog.Info("Starting AIS stream client",
		"url", c.url,
		"bounding_boxes", len(c.boxes),
		"message_types", c.messageTypes)

	c.connectionAttempts = 0
	c.messagesReceived = 0
	c.messagesDropped = 0

	c.dataChan = make(chan domain.VesselEvent, eventChannelSize)
	c.stopChan = make(chan struct{})

	if err := c.connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", c.url, err)
	}

	c.isRunning = true
	c.isHealthy = true

	go c.readLoop(ctx)

	return c.dataChan, nil
}

func (c *Client) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isRunning {
		return nil
	}

	slog.Info("Stopping AIS stream client",
		"messages_received", c.messagesReceived,
		"messages_dropped", c.messagesDropped)

	c.isRunning = false
	c.isHealthy = false

	select {
	case <-c.stopChan:
	default:
		close(c.stopChan)
	}

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}

	return nil
}

func (c *Client) Name() string {
	return "aisstream"
}

func (c *Client) IsHealthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isHealthy
}

func (c *Client) Stats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := map[string]interface{}{
		"feed":                c.Name(),
		"healthy":             c.isHealthy,
		"connection_attempts": c.connectionAttempts,
		"messages_received":   c.messagesReceived,
		"messages_dropped":    c.messagesDropped,
	}
	if !c.lastConnectTime.IsZero() {
		stats["last_connect_time"] = c.lastConnectTime.UTC().Format(time.RFC3339)
	}
	return stats
}

// connect dials the websocket and sends the subscription frame. Callers
// must hold c.mu.
func (c *Client) connect(ctx context.Context) error {
	c.connectionAttempts++

	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, c.url, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	sub := subscription{
		APIKey:             c.apiKey,
		BoundingBoxes:      c.boxes,
		FilterMessageTypes: c.messageTypes,
	}
	if err := conn.WriteJSON(sub); err != nil {
		conn.Close()
		return fmt.Errorf("subscription handshake: %w", err)
	}

	c.conn = conn
	c.lastConnectTime = time.Now()

	slog.Info("Subscribed to AIS stream", "url", c.url)
	return nil
}

// readLoop reads frames until stopped, reconnecting on read errors. It is
// the only sender on dataChan and closes it on exit so consumers can drain.
func (c *Client) readLoop(ctx context.Context) {
	dataChan := c.dataChan
	defer close(dataChan)

	for {
		select {
		case <-c.stopChan:
			return
		case <-ctx.Done():
			c.Stop()
			return
		default:
		}

		c.mu.RLock()
		conn := c.conn
		c.mu.RUnlock()
		if conn == nil {
			return
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			if c.stopped() {
				return
			}
			slog.Error("AIS stream read failed", "error", err)
			c.setHealthy(false)
			if !c.reconnect(ctx) {
				return
			}
			continue
		}

		event, err := decodeEvent(data)
		if err != nil {
			slog.Warn("Skipping undecodable frame", "error", err)
			continue
		}

		c.mu.Lock()
		c.messagesReceived++
		c.mu.Unlock()

		select {
		case dataChan <- event:
		default:
			c.mu.Lock()
			c.messagesDropped++
			c.mu.Unlock()
		}
	}
}

// reconnect retries the dial with capped exponential backoff until it
// succeeds or the client is stopped. Returns false when stopped.
func (c *Client) reconnect(ctx context.Context) bool {
	backoff := initialBackoff
	for {
		select {
		case <-c.stopChan:
			return false
		case <-ctx.Done():
			return false
		case <-time.After(backoff):
		}

		c.mu.Lock()
		if c.conn != nil {
			c.conn.Close()
			c.conn = nil
		}
		err := c.connect(ctx)
		if err == nil {
			c.isHealthy = true
		}
		c.mu.Unlock()

		if err == nil {
			slog.Info("Reconnected to AIS stream", "url", c.url)
			return true
		}

		slog.Warn("Reconnect failed, retrying", "error", err, "backoff", backoff)
		if backoff < maxBackoff {
			backoff *= 2
		}
	}
}

func (c *Client) stopped() bool {
	select {
	case <-c.stopChan:
		return true
	default:
		return false
	}
}

func (c *Client) setHealthy(healthy bool) {
	c.mu.Lock()
	c.isHealthy = healthy
	c.mu.Unlock()
}
