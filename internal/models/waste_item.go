package models

import "time"

// WasteItem is one sorted-item event. Rows are never updated.
type WasteItem struct {
	ID        int64     `json:"id" db:"id"`
	WasteType string    `json:"waste_type" db:"waste_type"`
	BinNumber int       `json:"bin_number" db:"bin_number"`
	Time      time.Time `json:"time" db:"time"`
	Username  string    `json:"username" db:"username"`
	Trashcan  int       `json:"trashcan" db:"trashcan"`
}

// CreateWasteItemRequest is the request body for POST /api/waste-statistics
type CreateWasteItemRequest struct {
	WasteType string `json:"waste_type"`
	BinNumber int    `json:"bin_number"`
	Username  string `json:"username"`
	Trashcan  *int   `json:"trashcan,omitempty"`
}

// CreateWasteItemResponse echoes the server-assigned id and time
type CreateWasteItemResponse struct {
	Success bool      `json:"success"`
	ID      int64     `json:"id"`
	Time    time.Time `json:"time"`
}

// DailyCount is the number of items recorded on one UTC day
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// DailyTypeCounts breaks one day down by waste type
type DailyTypeCounts struct {
	Date   string         `json:"date"`
	Counts map[string]int `json:"counts"`
}

// WasteSummary aggregates a window of waste items for the statistics page
type WasteSummary struct {
	TimeRange    string            `json:"time_range"`
	Trashcan     int               `json:"trashcan"`
	Total        int               `json:"total"`
	ByWasteType  map[string]int    `json:"by_waste_type"`
	ByBin        map[int]int       `json:"by_bin"`
	Daily        []DailyCount      `json:"daily"`
	ByDayAndType []DailyTypeCounts `json:"by_day_and_type"`
}
