package websocket

import (
	"encoding/json"
	"log"
	"sync"
)

// outbound is one encoded message and the trashcan it belongs to (0 = all)
type outbound struct {
	trashcan int
	data     []byte
}

// Hub tracks dashboard connections and routes each message to the
// dashboards watching its trashcan
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client

	queue      chan outbound
	register   chan *Client
	unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		queue:      make(chan outbound, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run owns client membership; start it once in its own goroutine
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c.ID] = c
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
			log.Printf("✅ [WEBSOCKET] Dashboard CONNECTED")
			log.Printf("   Client: %s (%s, %s)", c.ID, c.Username, c.UserRole)
			log.Printf("   Watching trashcan: %s", describeTrashcan(c.Trashcan()))
			log.Printf("   Open dashboards: %d", total)
			log.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

		case c := <-h.unregister:
			h.mu.Lock()
			h.drop(c.ID)
			h.mu.Unlock()

		case msg := <-h.queue:
			h.deliver(msg)
		}
	}
}

func (h *Hub) deliver(msg outbound) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, c := range h.clients {
		if !c.watches(msg.trashcan) {
			continue
		}
		select {
		case c.send <- msg.data:
		default:
			log.Printf("⚠️  [WEBSOCKET] Dashboard %s is not keeping up, disconnecting", id)
			h.drop(id)
		}
	}
}

// drop must be called with mu held
func (h *Hub) drop(id string) {
	c, ok := h.clients[id]
	if !ok {
		return
	}
	delete(h.clients, id)
	c.stop()
	log.Printf("🔴 [WEBSOCKET] Dashboard DISCONNECTED: %s (remaining: %d)", id, len(h.clients))
}

// Broadcast encodes message and queues it without blocking the caller.
// Messages scoped to a trashcan only reach dashboards watching it.
func (h *Hub) Broadcast(message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("❌ Failed to encode dashboard update: %v", err)
		return
	}

	msg := outbound{data: data}
	if scoped, ok := message.(trashcanScoped); ok {
		msg.trashcan = scoped.TrashcanID()
	}

	select {
	case h.queue <- msg:
	default:
		log.Println("⚠️  Dashboard update queue full, dropping message")
	}
}

// GetClientCount returns the number of open dashboards
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
