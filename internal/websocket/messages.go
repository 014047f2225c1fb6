package websocket

import "waste-wizard-backend/internal/models"

// Outbound message types
const (
	TypeBinConfigurationsUpdated = "bin_configurations_updated"
	TypeWasteItemRecorded        = "waste_item_recorded"
	TypeBinFillUpdated           = "bin_fill_updated"
	TypePong                     = "pong"
	TypeSubscribed               = "subscribed"
)

// Inbound message types
const (
	TypePing      = "ping"
	TypeSubscribe = "subscribe"
)

// trashcanScoped is implemented by messages that concern a single trashcan.
// Anything else reaches every dashboard.
type trashcanScoped interface {
	TrashcanID() int
}

type BinConfigurationsUpdated struct {
	Type     string             `json:"type"`
	Trashcan int                `json:"trashcan"`
	Data     []models.BinConfig `json:"data"`
}

func (m BinConfigurationsUpdated) TrashcanID() int { return m.Trashcan }

type WasteItemRecorded struct {
	Type string           `json:"type"`
	Data models.WasteItem `json:"data"`
}

func (m WasteItemRecorded) TrashcanID() int { return m.Data.Trashcan }

type BinFillUpdated struct {
	Type      string  `json:"type"`
	Trashcan  int     `json:"trashcan"`
	BinNumber int     `json:"bin_number"`
	Capacity  float64 `json:"capacity"`
}

func (m BinFillUpdated) TrashcanID() int { return m.Trashcan }

func NewBinConfigurationsUpdated(trashcan int, bins []models.BinConfig) BinConfigurationsUpdated {
	return BinConfigurationsUpdated{Type: TypeBinConfigurationsUpdated, Trashcan: trashcan, Data: bins}
}

func NewWasteItemRecorded(item models.WasteItem) WasteItemRecorded {
	return WasteItemRecorded{Type: TypeWasteItemRecorded, Data: item}
}

func NewBinFillUpdated(trashcan, binNumber int, capacity float64) BinFillUpdated {
	return BinFillUpdated{Type: TypeBinFillUpdated, Trashcan: trashcan, BinNumber: binNumber, Capacity: capacity}
}

// inbound is what a dashboard may send: a keepalive ping or a change of
// the trashcan it watches (0 watches all of them)
type inbound struct {
	Type     string `json:"type"`
	Trashcan *int   `json:"trashcan,omitempty"`
}

type control struct {
	Type      string `json:"type"`
	Trashcan  int    `json:"trashcan"`
	Timestamp string `json:"timestamp,omitempty"`
}
