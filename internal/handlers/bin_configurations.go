package handlers

import (
	"context"
	"log"
	"net/http"

	"waste-wizard-backend/internal/models"
	"waste-wizard-backend/internal/websocket"
	"waste-wizard-backend/pkg/utils"
)

// BinConfigurator reads bin configurations and applies configuration batches
type BinConfigurator interface {
	ListBinConfigs(ctx context.Context, trashcan int) ([]models.BinConfig, error)
	ApplyBinConfigs(ctx context.Context, trashcan int, reqs []models.BinConfigRequest, atomic bool) ([]models.BinConfigResult, error)
}

// GetBinConfigurations handles GET /api/bin-configurations
func GetBinConfigurations(svc BinConfigurator, defaultTrashcan int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		trashcan, err := trashcanParam(r, defaultTrashcan)
		if err != nil {
			utils.ErrorWithDetails(w, http.StatusBadRequest, "Invalid trashcan", err)
			return
		}

		bins, err := svc.ListBinConfigs(r.Context(), trashcan)
		if err != nil {
			log.Printf("❌ Failed to fetch bin configurations for trashcan %d: %v", trashcan, err)
			utils.ErrorWithDetails(w, http.StatusInternalServerError, "Failed to fetch bin configurations", err)
			return
		}
		if bins == nil {
			bins = []models.BinConfig{}
		}

		utils.JSON(w, http.StatusOK, bins)
	}
}

// PostBinConfigurations handles POST /api/bin-configurations.
// The body is an array; each element gets its own result.
func PostBinConfigurations(svc BinConfigurator, hub Broadcaster, defaultTrashcan int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		trashcan, err := trashcanParam(r, defaultTrashcan)
		if err != nil {
			utils.ErrorWithDetails(w, http.StatusBadRequest, "Invalid trashcan", err)
			return
		}

		atomic, err := boolParam(r, "atomic")
		if err != nil {
			utils.ErrorWithDetails(w, http.StatusBadRequest, "Invalid atomic flag", err)
			return
		}

		var reqs []models.BinConfigRequest
		if err := utils.DecodeJSON(r, &reqs); err != nil {
			utils.ErrorWithDetails(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}

		log.Printf("🗑️  Applying %d bin configuration(s) to trashcan %d (atomic: %v)", len(reqs), trashcan, atomic)

		results, err := svc.ApplyBinConfigs(r.Context(), trashcan, reqs, atomic)
		if results == nil {
			results = []models.BinConfigResult{}
		}
		if anyApplied(results) {
			broadcastBinConfigs(r.Context(), svc, hub, trashcan)
		}

		if err != nil {
			log.Printf("❌ Failed to update bin configurations of trashcan %d: %v", trashcan, err)
			utils.JSON(w, http.StatusInternalServerError, map[string]interface{}{
				"error":   "Failed to update bin configurations",
				"details": err.Error(),
				"results": results,
			})
			return
		}

		utils.JSON(w, http.StatusOK, models.BinConfigBatchResponse{
			Success: true,
			Results: results,
		})
	}
}

func anyApplied(results []models.BinConfigResult) bool {
	for _, r := range results {
		if r.Status == models.BinStatusApplied {
			return true
		}
	}
	return false
}

func broadcastBinConfigs(ctx context.Context, svc BinConfigurator, hub Broadcaster, trashcan int) {
	if hub == nil {
		return
	}
	bins, err := svc.ListBinConfigs(ctx, trashcan)
	if err != nil {
		log.Printf("⚠️  Skipping bin configuration broadcast: %v", err)
		return
	}
	hub.Broadcast(websocket.NewBinConfigurationsUpdated(trashcan, bins))
}
