package ingest

import (
	"context"
	"errors"
	"testing"

	"waste-wizard-backend/internal/models"
	"waste-wizard-backend/internal/websocket"
)

func TestParseMessage(t *testing.T) {
	tests := []struct {
		name    string
		topic   string
		payload string
		want    *Message
		wantErr error
	}{
		{
			name:    "item",
			topic:   "wastewizard/trashcans/3/items",
			payload: `{"waste_type":"plastic","bin_number":2,"username":"sorter"}`,
			want:    &Message{Kind: KindItem, Trashcan: 3, BinNumber: 2, WasteType: "plastic", Username: "sorter"},
		},
		{
			name:    "fill",
			topic:   "wastewizard/trashcans/1/bins/2/fill",
			payload: `{"capacity":42.5}`,
			want:    &Message{Kind: KindFill, Trashcan: 1, BinNumber: 2, Capacity: 42.5},
		},
		{
			name:    "fill level alias",
			topic:   "wastewizard/trashcans/1/bins/3/fill",
			payload: `{"fill_level":0}`,
			want:    &Message{Kind: KindFill, Trashcan: 1, BinNumber: 3, Capacity: 0},
		},
		{"foreign topic", "sensors/temp", `{}`, nil, ErrUnknownTopic},
		{"bad trashcan", "wastewizard/trashcans/abc/items", `{}`, nil, ErrUnknownTopic},
		{"zero trashcan", "wastewizard/trashcans/0/items", `{}`, nil, ErrUnknownTopic},
		{"unknown leaf", "wastewizard/trashcans/1/status", `{}`, nil, ErrUnknownTopic},
		{"bad bin", "wastewizard/trashcans/1/bins/x/fill", `{"capacity":1}`, nil, ErrUnknownTopic},
		{"item without bin", "wastewizard/trashcans/1/items", `{"waste_type":"trash"}`, nil, ErrBadPayload},
		{"item not json", "wastewizard/trashcans/1/items", `trash`, nil, ErrBadPayload},
		{"fill without capacity", "wastewizard/trashcans/1/bins/2/fill", `{}`, nil, ErrBadPayload},
		{"negative fill", "wastewizard/trashcans/1/bins/2/fill", `{"capacity":-3}`, nil, ErrBadPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMessage(tt.topic, []byte(tt.payload))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMessage() error = %v", err)
			}
			if *got != *tt.want {
				t.Errorf("ParseMessage() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestTopicsRoundTrip(t *testing.T) {
	if msg, err := ParseMessage(ItemTopic(5), []byte(`{"waste_type":"glass","bin_number":1}`)); err != nil || msg.Trashcan != 5 {
		t.Errorf("ItemTopic: %+v, %v", msg, err)
	}
	if msg, err := ParseMessage(FillTopic(5, 3), []byte(`{"capacity":1}`)); err != nil || msg.BinNumber != 3 {
		t.Errorf("FillTopic: %+v, %v", msg, err)
	}
}

type fakeRecorder struct {
	items []models.WasteItem
}

func (f *fakeRecorder) InsertWasteItem(ctx context.Context, item *models.WasteItem) error {
	item.ID = int64(len(f.items) + 1)
	f.items = append(f.items, *item)
	return nil
}

type fakeFills struct {
	known map[int]float64
}

func (f *fakeFills) UpdateFillLevel(ctx context.Context, trashcan, bin int, capacity float64) (bool, error) {
	if _, ok := f.known[bin]; !ok {
		return false, nil
	}
	f.known[bin] = capacity
	return true, nil
}

type fakeHub struct {
	messages []interface{}
}

func (h *fakeHub) Broadcast(message interface{}) {
	h.messages = append(h.messages, message)
}

func TestHandlerHandle(t *testing.T) {
	items := &fakeRecorder{}
	fills := &fakeFills{known: map[int]float64{1: 0, 2: 0}}
	hub := &fakeHub{}
	h := NewHandler(items, fills, hub)
	ctx := context.Background()

	if err := h.Handle(ctx, ItemTopic(1), []byte(`{"waste_type":"compost","bin_number":3}`)); err != nil {
		t.Fatalf("item: %v", err)
	}
	if len(items.items) != 1 || items.items[0].WasteType != "compost" || items.items[0].Trashcan != 1 {
		t.Errorf("items = %+v", items.items)
	}

	if err := h.Handle(ctx, FillTopic(1, 2), []byte(`{"capacity":91}`)); err != nil {
		t.Fatalf("fill: %v", err)
	}
	if fills.known[2] != 91 {
		t.Errorf("bin 2 fill = %v, want 91", fills.known[2])
	}

	if err := h.Handle(ctx, FillTopic(1, 7), []byte(`{"capacity":10}`)); err == nil {
		t.Error("fill of an unconfigured bin should fail")
	}
	if err := h.Handle(ctx, "wastewizard/trashcans/1/nope", nil); !errors.Is(err, ErrUnknownTopic) {
		t.Errorf("unknown topic error = %v", err)
	}

	if len(hub.messages) != 2 {
		t.Fatalf("broadcasts = %d, want 2", len(hub.messages))
	}
	if _, ok := hub.messages[0].(websocket.WasteItemRecorded); !ok {
		t.Errorf("first broadcast = %T", hub.messages[0])
	}
	if fill, ok := hub.messages[1].(websocket.BinFillUpdated); !ok || fill.Capacity != 91 || fill.BinNumber != 2 {
		t.Errorf("second broadcast = %+v", hub.messages[1])
	}
}
