// Package callhub manages the live websocket connection of each call.
package callhub

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Errors returned by Conn send operations.
var (
	ErrChannelClosed = errors.New("call channel closed")
	ErrBufferFull    = errors.New("send buffer full")
)

// Conn is the outbound half of one call's channel. Messages queued through
// SendJSON are written by a single write pump in FIFO order.
type Conn struct {
	CallID string

	ws   *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
}

// Hub tracks the active connection per call id.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]*Conn
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		conns: make(map[string]*Conn),
	}
}

// NewConnection wraps a websocket connection for a call and registers it.
// A previous connection for the same call id is superseded and closed.
func (h *Hub) NewConnection(callID string, ws *websocket.Conn) *Conn {
	conn := &Conn{
		CallID: callID,
		ws:     ws,
		send:   make(chan []byte, 256),
	}

	h.mu.Lock()
	old := h.conns[callID]
	h.conns[callID] = conn
	h.mu.Unlock()

	if old != nil {
		log.Printf("WARN: superseding existing channel for call %s", callID)
		old.Hangup()
	}
	return conn
}

// Unregister removes the connection from the hub if it is still current.
func (h *Hub) Unregister(conn *Conn) {
	h.mu.Lock()
	if h.conns[conn.CallID] == conn {
		delete(h.conns, conn.CallID)
	}
	h.mu.Unlock()
}

// Get returns the active connection for a call, or nil.
func (h *Hub) Get(callID string) *Conn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.conns[callID]
}

// Count returns the number of active call channels.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Terminate hangs up the channel of a call if it is connected.
func (h *Hub) Terminate(callID string) bool {
	conn := h.Get(callID)
	if conn == nil {
		return false
	}
	conn.Hangup()
	return true
}

// SendJSON queues a JSON message for delivery.
func (c *Conn) SendJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrChannelClosed
	}
	select {
	case c.send <- data:
		return nil
	default:
		return ErrBufferFull
	}
}

// Hangup closes the outbound side after all queued messages are written.
func (c *Conn) Hangup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// Close tears the connection down immediately (read side failed).
func (c *Conn) Close() {
	c.Hangup()
	c.ws.Close()
}

// ReadMessage reads the next message from the websocket.
func (c *Conn) ReadMessage() (int, []byte, error) {
	return c.ws.ReadMessage()
}

// SetReadLimit sets the maximum inbound message size.
func (c *Conn) SetReadLimit(limit int64) {
	c.ws.SetReadLimit(limit)
}

// SetReadDeadline sets the read deadline for the connection.
func (c *Conn) SetReadDeadline(t time.Time) error {
	return c.ws.SetReadDeadline(t)
}

// SetPongHandler installs the pong handler for read keepalive.
func (c *Conn) SetPongHandler(h func(string) error) {
	c.ws.SetPongHandler(h)
}

// WritePump writes queued messages to the websocket and pings on an
// interval. It owns all writes to the underlying connection and returns
// once the channel is hung up or a write fails.
func (c *Conn) WritePump(pingInterval, writeTimeout time.Duration) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				// Hangup: flush is complete, close cleanly.
				c.ws.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("Failed to write message for call %s: %v", c.CallID, err)
				return
			}

		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
