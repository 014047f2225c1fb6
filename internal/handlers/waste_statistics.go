package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"waste-wizard-backend/internal/middleware"
	"waste-wizard-backend/internal/models"
	"waste-wizard-backend/internal/services"
	"waste-wizard-backend/internal/websocket"
	"waste-wizard-backend/pkg/utils"
)

// WasteLog is the append-only event log
type WasteLog interface {
	InsertWasteItem(ctx context.Context, item *models.WasteItem) error
	ListWasteItems(ctx context.Context, trashcan int, since *time.Time) ([]models.WasteItem, error)
}

// GetWasteStatistics handles GET /api/waste-statistics
func GetWasteStatistics(wasteLog WasteLog, defaultTrashcan int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, _, trashcan, ok := listWasteItems(w, r, wasteLog, defaultTrashcan)
		if !ok {
			return
		}
		log.Printf("📊 Returning %d waste items for trashcan %d", len(items), trashcan)
		utils.JSON(w, http.StatusOK, items)
	}
}

// GetWasteSummary handles GET /api/waste-statistics/summary
func GetWasteSummary(wasteLog WasteLog, defaultTrashcan int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, rng, trashcan, ok := listWasteItems(w, r, wasteLog, defaultTrashcan)
		if !ok {
			return
		}
		utils.JSON(w, http.StatusOK, services.SummarizeWasteItems(items, rng, trashcan))
	}
}

// listWasteItems parses the shared selectors and writes the error response itself
func listWasteItems(w http.ResponseWriter, r *http.Request, wasteLog WasteLog, defaultTrashcan int) ([]models.WasteItem, services.TimeRange, int, bool) {
	rng, err := services.ParseTimeRange(r.URL.Query().Get("timeRange"))
	if err != nil {
		utils.ErrorWithDetails(w, http.StatusBadRequest, "Invalid timeRange", err)
		return nil, "", 0, false
	}

	trashcan, err := trashcanParam(r, defaultTrashcan)
	if err != nil {
		utils.ErrorWithDetails(w, http.StatusBadRequest, "Invalid trashcan", err)
		return nil, "", 0, false
	}

	items, err := wasteLog.ListWasteItems(r.Context(), trashcan, rng.Since(time.Now()))
	if err != nil {
		log.Printf("❌ Failed to fetch waste statistics: %v", err)
		utils.ErrorWithDetails(w, http.StatusInternalServerError, "Failed to fetch waste statistics", err)
		return nil, "", 0, false
	}
	if items == nil {
		items = []models.WasteItem{}
	}
	return items, rng, trashcan, true
}

// CreateWasteItem handles POST /api/waste-statistics
func CreateWasteItem(wasteLog WasteLog, hub Broadcaster, defaultTrashcan int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.CreateWasteItemRequest
		if err := utils.DecodeJSON(r, &req); err != nil {
			utils.ErrorWithDetails(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}

		if req.WasteType == "" || req.BinNumber == 0 {
			utils.Error(w, http.StatusBadRequest, "waste_type and bin_number are required")
			return
		}

		item := &models.WasteItem{
			WasteType: req.WasteType,
			BinNumber: req.BinNumber,
			Username:  req.Username,
			Trashcan:  defaultTrashcan,
		}
		if req.Trashcan != nil {
			if *req.Trashcan <= 0 {
				utils.Error(w, http.StatusBadRequest, "trashcan must be positive")
				return
			}
			item.Trashcan = *req.Trashcan
		}
		if item.Username == "" {
			if claims, ok := middleware.GetUserFromContext(r); ok {
				item.Username = claims.Username
			}
		}

		if err := wasteLog.InsertWasteItem(r.Context(), item); err != nil {
			log.Printf("❌ Failed to record waste item: %v", err)
			utils.ErrorWithDetails(w, http.StatusInternalServerError, "Failed to record waste item", err)
			return
		}

		log.Printf("✅ Recorded %s item in bin %d of trashcan %d (id %d)", item.WasteType, item.BinNumber, item.Trashcan, item.ID)
		if hub != nil {
			hub.Broadcast(websocket.NewWasteItemRecorded(*item))
		}

		utils.JSON(w, http.StatusOK, models.CreateWasteItemResponse{
			Success: true,
			ID:      item.ID,
			Time:    item.Time,
		})
	}
}
