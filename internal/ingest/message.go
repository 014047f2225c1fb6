package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"waste-wizard-backend/internal/models"
)

// TopicPrefix roots every topic a trashcan publishes to
const TopicPrefix = "wastewizard/trashcans/"

// Kind distinguishes the two device messages
type Kind int

const (
	KindItem Kind = iota + 1
	KindFill
)

var (
	ErrUnknownTopic = errors.New("unknown topic")
	ErrBadPayload   = errors.New("invalid payload")
)

// Message is a decoded device publish
type Message struct {
	Kind      Kind
	Trashcan  int
	BinNumber int
	WasteType string
	Username  string
	Capacity  float64
}

type itemPayload struct {
	WasteType string `json:"waste_type"`
	BinNumber int    `json:"bin_number"`
	Username  string `json:"username"`
}

type fillPayload struct {
	Capacity  *float64 `json:"capacity"`
	FillLevel *float64 `json:"fill_level"`
}

// ItemTopic is where trashcan publishes sorted items
func ItemTopic(trashcan int) string {
	return fmt.Sprintf("%s%d/items", TopicPrefix, trashcan)
}

// FillTopic is where trashcan publishes the fill level of one bin
func FillTopic(trashcan, binNumber int) string {
	return fmt.Sprintf("%s%d/bins/%d/fill", TopicPrefix, trashcan, binNumber)
}

// ParseMessage decodes a publish on one of the device topics:
//
//	wastewizard/trashcans/<id>/items           {waste_type, bin_number, username}
//	wastewizard/trashcans/<id>/bins/<n>/fill   {capacity}
func ParseMessage(topic string, payload []byte) (*Message, error) {
	rest, ok := strings.CutPrefix(topic, TopicPrefix)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTopic, topic)
	}
	parts := strings.Split(rest, "/")

	trashcan, err := positiveInt(parts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: bad trashcan in %s", ErrUnknownTopic, topic)
	}

	switch {
	case len(parts) == 2 && parts[1] == "items":
		var p itemPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
		}
		if p.WasteType == "" || p.BinNumber <= 0 {
			return nil, fmt.Errorf("%w: waste_type and bin_number are required", ErrBadPayload)
		}
		return &Message{
			Kind:      KindItem,
			Trashcan:  trashcan,
			BinNumber: p.BinNumber,
			WasteType: p.WasteType,
			Username:  p.Username,
		}, nil

	case len(parts) == 4 && parts[1] == "bins" && parts[3] == "fill":
		bin, err := positiveInt(parts[2])
		if err != nil {
			return nil, fmt.Errorf("%w: bad bin number in %s", ErrUnknownTopic, topic)
		}
		var p fillPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
		}
		capacity := p.Capacity
		if capacity == nil {
			capacity = p.FillLevel
		}
		if capacity == nil || *capacity < 0 {
			return nil, fmt.Errorf("%w: capacity must be a non-negative number", ErrBadPayload)
		}
		return &Message{
			Kind:      KindFill,
			Trashcan:  trashcan,
			BinNumber: bin,
			Capacity:  *capacity,
		}, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownTopic, topic)
}

// WasteItem converts an item message into a log row
func (m *Message) WasteItem() *models.WasteItem {
	return &models.WasteItem{
		WasteType: m.WasteType,
		BinNumber: m.BinNumber,
		Username:  m.Username,
		Trashcan:  m.Trashcan,
	}
}

func positiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("%d is not positive", n)
	}
	return n, nil
}
