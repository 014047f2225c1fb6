package models

import "time"

// Waste types a bin can be assigned to
const (
	WasteTrash       = "trash"
	WasteRecyclables = "recyclables"
	WasteCompost     = "compost"
	WastePlastic     = "plastic"
	WastePaper       = "paper"
	WasteGlass       = "glass"
	WasteMetal       = "metal"
	WasteElectronics = "electronics"
)

var knownWasteTypes = map[string]bool{
	WasteTrash:       true,
	WasteRecyclables: true,
	WasteCompost:     true,
	WastePlastic:     true,
	WastePaper:       true,
	WasteGlass:       true,
	WasteMetal:       true,
	WasteElectronics: true,
}

// IsKnownWasteType reports whether t is one of the supported waste categories
func IsKnownWasteType(t string) bool {
	return knownWasteTypes[t]
}

// BinConfig is one row of bin_config: the waste type and fill level of a bin
// inside a trashcan. (trashcan, bin_number) is unique.
type BinConfig struct {
	Trashcan  int       `json:"trashcan" db:"trashcan"`
	BinNumber int       `json:"bin_number" db:"bin_number"`
	WasteType string    `json:"waste_type" db:"waste_type"`
	Capacity  float64   `json:"capacity" db:"capacity"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// BinConfigRequest is one element of the POST /api/bin-configurations body.
// fill_level is accepted as an alias of capacity.
type BinConfigRequest struct {
	BinNumber int      `json:"bin_number"`
	WasteType string   `json:"waste_type"`
	Capacity  *float64 `json:"capacity,omitempty"`
	FillLevel *float64 `json:"fill_level,omitempty"`
}

// RequestedCapacity returns the submitted fill value, 0 when omitted
func (r BinConfigRequest) RequestedCapacity() float64 {
	if r.Capacity != nil {
		return *r.Capacity
	}
	if r.FillLevel != nil {
		return *r.FillLevel
	}
	return 0
}

// Per-bin outcome of a configuration batch
const (
	BinStatusApplied         = "applied"
	BinStatusRejectedLocked  = "rejected-locked"
	BinStatusRejectedInvalid = "rejected-invalid"
	BinStatusFailed          = "failed"
)

// BinConfigResult reports what happened to one element of a batch
type BinConfigResult struct {
	BinNumber int     `json:"bin_number"`
	Status    string  `json:"status"`
	WasteType string  `json:"waste_type,omitempty"`
	Capacity  float64 `json:"capacity"`
	Error     string  `json:"error,omitempty"`
}

// BinConfigBatchResponse is returned by POST /api/bin-configurations
type BinConfigBatchResponse struct {
	Success bool              `json:"success"`
	Results []BinConfigResult `json:"results"`
}
