package websocket

import (
	"encoding/json"
	"log"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// dashboards only send pings and subscriptions
	maxMessageSize = 512
	sendBuffer     = 64
)

// Client is one open dashboard
type Client struct {
	ID       string
	Username string
	UserRole string

	trashcan atomic.Int64
	conn     *websocket.Conn
	hub      *Hub

	// send is never closed: the hub and ReadPump both write to it.
	// done is closed once when the hub drops the client.
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// NewClient creates a dashboard connection watching trashcan (0 = all)
func NewClient(username, role string, trashcan int, conn *websocket.Conn, hub *Hub) *Client {
	c := &Client{
		ID:       uuid.New().String(),
		Username: username,
		UserRole: role,
		conn:     conn,
		hub:      hub,
		send:     make(chan []byte, sendBuffer),
		done:     make(chan struct{}),
	}
	c.trashcan.Store(int64(trashcan))
	return c
}

// Trashcan is the trashcan this dashboard currently watches
func (c *Client) Trashcan() int {
	return int(c.trashcan.Load())
}

// stop marks the client as dropped; safe to call more than once
func (c *Client) stop() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *Client) stopped() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *Client) watches(trashcan int) bool {
	watched := c.Trashcan()
	return watched == 0 || trashcan == 0 || watched == trashcan
}

// ReadPump handles pings and subscription changes until the connection closes
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("⚠️  [WEBSOCKET] Read from %s failed: %v", c.ID, err)
			}
			return
		}

		var msg inbound
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Printf("⚠️  [WEBSOCKET] Ignoring malformed message from %s: %v", c.ID, err)
			continue
		}
		c.handle(msg, time.Now())
	}
}

func (c *Client) handle(msg inbound, now time.Time) {
	switch msg.Type {
	case TypePing:
		c.reply(control{Type: TypePong, Trashcan: c.Trashcan(), Timestamp: now.Format(time.RFC3339)})

	case TypeSubscribe:
		if msg.Trashcan == nil || *msg.Trashcan < 0 {
			log.Printf("⚠️  [WEBSOCKET] Ignoring subscribe without a valid trashcan from %s", c.ID)
			return
		}
		c.trashcan.Store(int64(*msg.Trashcan))
		log.Printf("🔁 [WEBSOCKET] %s now watching trashcan: %s", c.ID, describeTrashcan(*msg.Trashcan))
		c.reply(control{Type: TypeSubscribed, Trashcan: *msg.Trashcan})
	}
}

// reply queues a direct answer; it is dropped when the buffer is full or
// the client has been disconnected
func (c *Client) reply(msg control) {
	if c.stopped() {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// WritePump writes queued messages, one JSON document per frame, and keeps
// the connection alive with pings
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
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

func describeTrashcan(trashcan int) string {
	if trashcan == 0 {
		return "all"
	}
	return strconv.Itoa(trashcan)
}
