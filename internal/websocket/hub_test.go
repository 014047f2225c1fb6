package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"waste-wizard-backend/internal/middleware"
	"waste-wizard-backend/internal/models"
	"waste-wizard-backend/internal/session"

	"github.com/gorilla/websocket"
)

func dialDashboard(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	return dialDashboardQuery(t, hub, "")
}

func dialDashboardQuery(t *testing.T, hub *Hub, query string) *websocket.Conn {
	t.Helper()

	handler := HandleWebSocket(hub)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r = r.WithContext(middleware.WithClaims(r.Context(), &session.Claims{Username: "operator", Role: "operator"}))
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+query, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.GetClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("clients = %d, want %d", hub.GetClientCount(), n)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func readJSON(t *testing.T, conn *websocket.Conn, v interface{}) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(v); err != nil {
		t.Fatalf("read: %v", err)
	}
}

func TestHubBroadcastsToAllClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	a := dialDashboard(t, hub)
	b := dialDashboard(t, hub)
	waitForClients(t, hub, 2)

	hub.Broadcast(NewBinFillUpdated(1, 2, 87.5))

	for _, conn := range []*websocket.Conn{a, b} {
		var msg BinFillUpdated
		readJSON(t, conn, &msg)
		if msg.Type != TypeBinFillUpdated || msg.BinNumber != 2 || msg.Capacity != 87.5 {
			t.Errorf("message = %+v", msg)
		}
	}
}

func TestClientPingPong(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	conn := dialDashboard(t, hub)
	waitForClients(t, hub, 1)

	if err := conn.WriteJSON(map[string]string{"type": "ping"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var msg control
	readJSON(t, conn, &msg)
	if msg.Type != TypePong || msg.Timestamp == "" {
		t.Errorf("reply = %v, want pong", msg)
	}
}

func TestHubRoutesByTrashcan(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	one := dialDashboardQuery(t, hub, "?trashcan=1")
	two := dialDashboardQuery(t, hub, "?trashcan=2")
	all := dialDashboard(t, hub)
	waitForClients(t, hub, 3)

	hub.Broadcast(NewBinFillUpdated(2, 3, 40))
	hub.Broadcast(NewWasteItemRecorded(models.WasteItem{ID: 5, Trashcan: 1, WasteType: "glass"}))

	var fill BinFillUpdated
	readJSON(t, two, &fill)
	if fill.Trashcan != 2 {
		t.Errorf("trashcan 2 dashboard got %+v", fill)
	}

	// the trashcan 1 dashboard skips the fill update and sees only its own item
	var item WasteItemRecorded
	readJSON(t, one, &item)
	if item.Type != TypeWasteItemRecorded || item.Data.ID != 5 {
		t.Errorf("trashcan 1 dashboard got %+v", item)
	}

	var first, second map[string]interface{}
	readJSON(t, all, &first)
	readJSON(t, all, &second)
	if first["type"] != TypeBinFillUpdated || second["type"] != TypeWasteItemRecorded {
		t.Errorf("unfiltered dashboard got %v then %v", first["type"], second["type"])
	}
}

func TestClientSubscribe(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	conn := dialDashboardQuery(t, hub, "?trashcan=1")
	waitForClients(t, hub, 1)

	if err := conn.WriteJSON(map[string]interface{}{"type": "subscribe", "trashcan": 4}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var ack control
	readJSON(t, conn, &ack)
	if ack.Type != TypeSubscribed || ack.Trashcan != 4 {
		t.Fatalf("ack = %+v", ack)
	}

	hub.Broadcast(NewBinFillUpdated(1, 1, 10))
	hub.Broadcast(NewBinFillUpdated(4, 2, 20))

	var fill BinFillUpdated
	readJSON(t, conn, &fill)
	if fill.Trashcan != 4 || fill.BinNumber != 2 {
		t.Errorf("got %+v, want the trashcan 4 update", fill)
	}
}

func TestHandleWebSocketRejectsBadTrashcan(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ws?trashcan=abc", nil)
	req = req.WithContext(middleware.WithClaims(req.Context(), &session.Claims{Username: "operator"}))

	rec := httptest.NewRecorder()
	HandleWebSocket(NewHub())(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHubUnregistersClosedClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	conn := dialDashboard(t, hub)
	waitForClients(t, hub, 1)

	conn.Close()
	waitForClients(t, hub, 0)
}

func TestHandleWebSocketRequiresClaims(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleWebSocket(NewHub())(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestMessageShapes(t *testing.T) {
	data, _ := json.Marshal(NewBinConfigurationsUpdated(2, []models.BinConfig{{Trashcan: 2, BinNumber: 1, WasteType: "trash"}}))
	if !strings.Contains(string(data), `"type":"bin_configurations_updated"`) || !strings.Contains(string(data), `"trashcan":2`) {
		t.Errorf("bin_configurations_updated = %s", data)
	}

	data, _ = json.Marshal(NewWasteItemRecorded(models.WasteItem{ID: 9, WasteType: "glass"}))
	if !strings.Contains(string(data), `"type":"waste_item_recorded"`) || !strings.Contains(string(data), `"id":9`) {
		t.Errorf("waste_item_recorded = %s", data)
	}
}

func TestDroppedClientCanStillReply(t *testing.T) {
	hub := NewHub()
	c := NewClient("operator", "operator", 0, nil, hub)
	hub.clients[c.ID] = c

	for i := 0; i < sendBuffer; i++ {
		c.send <- []byte(`{}`)
	}
	hub.deliver(outbound{data: []byte(`{"type":"bin_fill_updated"}`)})

	if hub.GetClientCount() != 0 {
		t.Fatalf("clients = %d, want the slow dashboard dropped", hub.GetClientCount())
	}
	if !c.stopped() {
		t.Fatal("dropped client should be stopped")
	}

	// the read loop may still answer after the hub let go of the client
	c.handle(inbound{Type: TypePing}, time.Now())
	four := 4
	c.handle(inbound{Type: TypeSubscribe, Trashcan: &four}, time.Now())

	// dropping twice is harmless
	hub.mu.Lock()
	hub.clients[c.ID] = c
	hub.drop(c.ID)
	hub.mu.Unlock()
}
