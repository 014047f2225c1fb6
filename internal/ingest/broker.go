package ingest

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"waste-wizard-backend/internal/models"
	"waste-wizard-backend/internal/websocket"

	mqtt "github.com/mochi-mqtt/server/v2"
	"github.com/mochi-mqtt/server/v2/hooks/auth"
	"github.com/mochi-mqtt/server/v2/listeners"
	"github.com/mochi-mqtt/server/v2/packets"
)

// WasteRecorder appends device events to the waste log
type WasteRecorder interface {
	InsertWasteItem(ctx context.Context, item *models.WasteItem) error
}

// FillUpdater stores a device-reported fill level of an existing bin
type FillUpdater interface {
	UpdateFillLevel(ctx context.Context, trashcan, binNumber int, capacity float64) (bool, error)
}

// Broadcaster pushes live updates to connected dashboards
type Broadcaster interface {
	Broadcast(message interface{})
}

// Handler applies decoded device messages
type Handler struct {
	items   WasteRecorder
	fills   FillUpdater
	hub     Broadcaster
	timeout time.Duration
}

func NewHandler(items WasteRecorder, fills FillUpdater, hub Broadcaster) *Handler {
	return &Handler{items: items, fills: fills, hub: hub, timeout: 5 * time.Second}
}

// Handle decodes and applies one publish
func (h *Handler) Handle(ctx context.Context, topic string, payload []byte) error {
	msg, err := ParseMessage(topic, payload)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	switch msg.Kind {
	case KindItem:
		item := msg.WasteItem()
		if err := h.items.InsertWasteItem(ctx, item); err != nil {
			return err
		}
		log.Printf("📥 [MQTT] Recorded %s item in bin %d of trashcan %d", item.WasteType, item.BinNumber, item.Trashcan)
		h.broadcast(websocket.NewWasteItemRecorded(*item))

	case KindFill:
		updated, err := h.fills.UpdateFillLevel(ctx, msg.Trashcan, msg.BinNumber, msg.Capacity)
		if err != nil {
			return err
		}
		if !updated {
			return fmt.Errorf("bin %d of trashcan %d is not configured", msg.BinNumber, msg.Trashcan)
		}
		log.Printf("📥 [MQTT] Bin %d of trashcan %d at %.2f", msg.BinNumber, msg.Trashcan, msg.Capacity)
		h.broadcast(websocket.NewBinFillUpdated(msg.Trashcan, msg.BinNumber, msg.Capacity))
	}
	return nil
}

func (h *Handler) broadcast(message interface{}) {
	if h.hub != nil {
		h.hub.Broadcast(message)
	}
}

// MessageHook feeds every publish through the Handler
type MessageHook struct {
	mqtt.HookBase
	handler *Handler
}

func (h *MessageHook) ID() string {
	return "wastewizard-ingest"
}

func (h *MessageHook) Provides(b byte) bool {
	return bytes.Contains([]byte{
		mqtt.OnConnect,
		mqtt.OnPublish,
	}, []byte{b})
}

func (h *MessageHook) OnConnect(cl *mqtt.Client, pk packets.Packet) error {
	log.Printf("🔌 [MQTT] Device connected: %s", cl.ID)
	return nil
}

// OnPublish never rejects the packet; bad messages are only logged
func (h *MessageHook) OnPublish(cl *mqtt.Client, pk packets.Packet) (packets.Packet, error) {
	if err := h.handler.Handle(context.Background(), pk.TopicName, pk.Payload); err != nil {
		log.Printf("⚠️  [MQTT] Dropped message from %s on %s: %v", cl.ID, pk.TopicName, err)
	}
	return pk, nil
}

// Broker is the embedded MQTT server trashcans publish to
type Broker struct {
	server *mqtt.Server
}

// NewBroker prepares a TCP broker on address
func NewBroker(address string, handler *Handler) (*Broker, error) {
	server := mqtt.New(nil)

	if err := server.AddHook(new(auth.AllowHook), nil); err != nil {
		return nil, fmt.Errorf("failed to add auth hook: %w", err)
	}
	if err := server.AddHook(&MessageHook{handler: handler}, nil); err != nil {
		return nil, fmt.Errorf("failed to add message hook: %w", err)
	}

	tcp := listeners.NewTCP(listeners.Config{
		ID:      "devices",
		Address: address,
	})
	if err := server.AddListener(tcp); err != nil {
		return nil, fmt.Errorf("failed to add TCP listener: %w", err)
	}

	return &Broker{server: server}, nil
}

// Serve starts accepting device connections
func (b *Broker) Serve() error {
	return b.server.Serve()
}

func (b *Broker) Close() error {
	return b.server.Close()
}
