package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"waste-wizard-backend/internal/database"
	"waste-wizard-backend/internal/models"

	"github.com/jmoiron/sqlx"
)

// BinConfigStore is the slice of the configuration store the executor needs
type BinConfigStore interface {
	GetBinConfig(ctx context.Context, trashcan, binNumber int) (*models.BinConfig, error)
	ListBinConfigs(ctx context.Context, trashcan int) ([]models.BinConfig, error)
	InsertBinConfig(ctx context.Context, cfg *models.BinConfig) error
	UpsertBinCapacity(ctx context.Context, cfg *models.BinConfig) error
	UpsertBinConfig(ctx context.Context, cfg *models.BinConfig, lockAt float64) (bool, error)
}

// FillAlerter is notified when a bin reaches the alert threshold
type FillAlerter interface {
	SendBinFullAlert(ctx context.Context, trashcan, binNumber int, wasteType string, capacity float64) error
}

// ApplyBatch runs the admission rule and the matching write for every element,
// in order. Rejected and invalid elements never touch the store. The first store
// failure stops the batch; results then hold everything processed so far.
func ApplyBatch(ctx context.Context, store BinConfigStore, trashcan int, reqs []models.BinConfigRequest) ([]models.BinConfigResult, error) {
	results := make([]models.BinConfigResult, 0, len(reqs))
	for _, req := range reqs {
		result, err := applyOne(ctx, store, trashcan, req)
		results = append(results, result)
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

func applyOne(ctx context.Context, store BinConfigStore, trashcan int, req models.BinConfigRequest) (models.BinConfigResult, error) {
	result := models.BinConfigResult{
		BinNumber: req.BinNumber,
		WasteType: req.WasteType,
		Capacity:  req.RequestedCapacity(),
	}

	// bin 1 only needs a waste type when it is created; the full check waits for the row lookup
	validate := ValidateBinConfigRequest
	if req.BinNumber == LockedBinNumber {
		validate = ValidateCapacityUpdate
	}
	if err := validate(req); err != nil {
		return invalidResult(result, err), nil
	}

	current, err := store.GetBinConfig(ctx, trashcan, req.BinNumber)
	if err != nil {
		result.Status = models.BinStatusFailed
		result.Error = err.Error()
		return result, err
	}
	if req.BinNumber == LockedBinNumber && current == nil {
		if err := ValidateBinConfigRequest(req); err != nil {
			return invalidResult(result, err), nil
		}
	}

	cfg := &models.BinConfig{
		Trashcan:  trashcan,
		BinNumber: req.BinNumber,
		WasteType: req.WasteType,
		Capacity:  req.RequestedCapacity(),
	}

	switch Decide(req.BinNumber, current) {
	case DecisionUpdateCapacityOnly:
		cfg.WasteType = current.WasteType
		err = store.UpsertBinCapacity(ctx, cfg)

	case DecisionInsertNew:
		err = store.InsertBinConfig(ctx, cfg)
		if errors.Is(err, database.ErrBinExists) {
			// another writer created the row first; it now exists, so only capacity moves
			err = store.UpsertBinCapacity(ctx, cfg)
		}

	case DecisionInsertOrUpdateFull:
		var applied bool
		applied, err = store.UpsertBinConfig(ctx, cfg, ReconfigureThreshold)
		if err == nil && !applied {
			// lost a race with a writer that filled the bin
			return lockedResult(result, current), nil
		}

	default:
		return lockedResult(result, current), nil
	}

	if err != nil {
		result.Status = models.BinStatusFailed
		result.Error = err.Error()
		return result, err
	}

	result.Status = models.BinStatusApplied
	result.WasteType = cfg.WasteType
	result.Capacity = cfg.Capacity
	return result, nil
}

func invalidResult(result models.BinConfigResult, err error) models.BinConfigResult {
	result.Status = models.BinStatusRejectedInvalid
	result.Error = err.Error()
	return result
}

func lockedResult(result models.BinConfigResult, current *models.BinConfig) models.BinConfigResult {
	result.Status = models.BinStatusRejectedLocked
	result.Error = fmt.Sprintf("bin must be emptied below %.2f before reconfiguring", ReconfigureThreshold)
	if current != nil {
		result.WasteType = current.WasteType
		result.Capacity = current.Capacity
	}
	return result
}

// NotifyFullBins sends a fill alert for every applied bin at or above threshold.
// Alert failures are logged, never returned.
func NotifyFullBins(ctx context.Context, alerter FillAlerter, threshold float64, trashcan int, results []models.BinConfigResult) int {
	if alerter == nil {
		return 0
	}
	sent := 0
	for _, r := range results {
		if r.Status != models.BinStatusApplied || r.Capacity < threshold {
			continue
		}
		if err := alerter.SendBinFullAlert(ctx, trashcan, r.BinNumber, r.WasteType, r.Capacity); err != nil {
			log.Printf("⚠️  Fill alert for trashcan %d bin %d failed: %v", trashcan, r.BinNumber, err)
			continue
		}
		sent++
	}
	return sent
}

// BinConfigService exposes the configuration store and batch executor to handlers
type BinConfigService struct {
	db        *sqlx.DB
	alerter   FillAlerter
	threshold float64
}

func NewBinConfigService(db *sqlx.DB, alerter FillAlerter, threshold float64) *BinConfigService {
	return &BinConfigService{db: db, alerter: alerter, threshold: threshold}
}

func (s *BinConfigService) ListBinConfigs(ctx context.Context, trashcan int) ([]models.BinConfig, error) {
	return database.NewBinConfigRepo(s.db).ListBinConfigs(ctx, trashcan)
}

// ApplyBinConfigs runs a batch. With atomic set the batch is one transaction and
// a failure rolls back every write; otherwise earlier writes stay committed.
func (s *BinConfigService) ApplyBinConfigs(ctx context.Context, trashcan int, reqs []models.BinConfigRequest, atomic bool) ([]models.BinConfigResult, error) {
	var results []models.BinConfigResult
	var err error

	if atomic {
		err = database.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
			var batchErr error
			results, batchErr = ApplyBatch(ctx, database.NewBinConfigRepo(tx), trashcan, reqs)
			return batchErr
		})
		if err != nil {
			markRolledBack(results)
		}
	} else {
		results, err = ApplyBatch(ctx, database.NewBinConfigRepo(s.db), trashcan, reqs)
	}

	NotifyFullBins(ctx, s.alerter, s.threshold, trashcan, results)
	return results, err
}

// UpdateFillLevel records a device-reported fill level for an existing bin
func (s *BinConfigService) UpdateFillLevel(ctx context.Context, trashcan, binNumber int, capacity float64) (bool, error) {
	if capacity < 0 {
		return false, errNegativeCapacity
	}
	repo := database.NewBinConfigRepo(s.db)
	updated, err := repo.UpdateCapacity(ctx, trashcan, binNumber, capacity)
	if err != nil || !updated {
		return updated, err
	}

	if s.alerter != nil && capacity >= s.threshold {
		cfg, err := repo.GetBinConfig(ctx, trashcan, binNumber)
		if err == nil && cfg != nil {
			NotifyFullBins(ctx, s.alerter, s.threshold, trashcan, []models.BinConfigResult{{
				BinNumber: binNumber,
				Status:    models.BinStatusApplied,
				WasteType: cfg.WasteType,
				Capacity:  capacity,
			}})
		}
	}
	return true, nil
}

func markRolledBack(results []models.BinConfigResult) {
	for i := range results {
		if results[i].Status == models.BinStatusApplied {
			results[i].Status = models.BinStatusFailed
			results[i].Error = "rolled back"
		}
	}
}
