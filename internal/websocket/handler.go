package websocket

import (
	"log"
	"net/http"
	"strconv"

	"waste-wizard-backend/internal/middleware"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// the session cookie is SameSite=Strict, so cross-site pages never reach this handler authenticated
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleWebSocket upgrades a dashboard connection. It expects session claims in
// the request context (mount it behind middleware.RequireSession). The optional
// ?trashcan= query selects the trashcan to watch; without it every update is sent.
func HandleWebSocket(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetUserFromContext(r)
		if !ok {
			log.Println("❌ WebSocket request without a session")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		trashcan := 0
		if raw := r.URL.Query().Get("trashcan"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				http.Error(w, "trashcan must be a non-negative integer", http.StatusBadRequest)
				return
			}
			trashcan = n
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("❌ WebSocket upgrade failed: %v", err)
			return
		}

		client := NewClient(claims.Username, claims.Role, trashcan, conn, hub)
		hub.register <- client

		go client.WritePump()
		go client.ReadPump()
	}
}
