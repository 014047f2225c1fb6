package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"waste-wizard-backend/internal/models"

	"github.com/jmoiron/sqlx"
)

// ErrBinExists is returned when a first-time insert races another writer for the same bin
var ErrBinExists = errors.New("bin configuration already exists")

// BinConfigRepo reads and writes bin_config. It works on a pool or a transaction.
type BinConfigRepo struct {
	db sqlx.ExtContext
}

func NewBinConfigRepo(db sqlx.ExtContext) *BinConfigRepo {
	return &BinConfigRepo{db: db}
}

// GetBinConfig returns the stored row, or nil when the bin has never been configured
func (r *BinConfigRepo) GetBinConfig(ctx context.Context, trashcan, binNumber int) (*models.BinConfig, error) {
	var cfg models.BinConfig
	err := sqlx.GetContext(ctx, r.db, &cfg, `
		SELECT trashcan, bin_number, waste_type, capacity, updated_at
		FROM bin_config
		WHERE trashcan = $1 AND bin_number = $2
	`, trashcan, binNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bin %d of trashcan %d: %w", binNumber, trashcan, err)
	}
	return &cfg, nil
}

func (r *BinConfigRepo) ListBinConfigs(ctx context.Context, trashcan int) ([]models.BinConfig, error) {
	configs := []models.BinConfig{}
	err := sqlx.SelectContext(ctx, r.db, &configs, `
		SELECT trashcan, bin_number, waste_type, capacity, updated_at
		FROM bin_config
		WHERE trashcan = $1
		ORDER BY bin_number ASC
	`, trashcan)
	if err != nil {
		return nil, fmt.Errorf("failed to list bin configurations: %w", err)
	}
	return configs, nil
}

// InsertBinConfig creates a first-time row. When another writer created it
// first nothing is written and ErrBinExists is returned; the statement never
// raises a duplicate-key error, so an enclosing transaction stays usable.
func (r *BinConfigRepo) InsertBinConfig(ctx context.Context, cfg *models.BinConfig) error {
	err := sqlx.GetContext(ctx, r.db, &cfg.UpdatedAt, `
		INSERT INTO bin_config (trashcan, bin_number, waste_type, capacity, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (trashcan, bin_number) DO NOTHING
		RETURNING updated_at
	`, cfg.Trashcan, cfg.BinNumber, cfg.WasteType, cfg.Capacity)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrBinExists
	}
	if err != nil {
		return fmt.Errorf("failed to insert bin %d: %w", cfg.BinNumber, err)
	}
	return nil
}

// UpsertBinCapacity writes only the fill level on conflict; the stored waste type wins.
func (r *BinConfigRepo) UpsertBinCapacity(ctx context.Context, cfg *models.BinConfig) error {
	err := sqlx.GetContext(ctx, r.db, cfg, `
		INSERT INTO bin_config (trashcan, bin_number, waste_type, capacity, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (trashcan, bin_number)
		DO UPDATE SET
			capacity = EXCLUDED.capacity,
			updated_at = NOW()
		RETURNING trashcan, bin_number, waste_type, capacity, updated_at
	`, cfg.Trashcan, cfg.BinNumber, cfg.WasteType, cfg.Capacity)
	if err != nil {
		return fmt.Errorf("failed to upsert capacity of bin %d: %w", cfg.BinNumber, err)
	}
	return nil
}

// UpsertBinConfig writes waste type and fill level. On conflict the update only
// happens while the stored capacity is below lockAt; applied is false otherwise.
func (r *BinConfigRepo) UpsertBinConfig(ctx context.Context, cfg *models.BinConfig, lockAt float64) (bool, error) {
	err := sqlx.GetContext(ctx, r.db, cfg, `
		INSERT INTO bin_config (trashcan, bin_number, waste_type, capacity, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (trashcan, bin_number)
		DO UPDATE SET
			waste_type = EXCLUDED.waste_type,
			capacity = EXCLUDED.capacity,
			updated_at = NOW()
		WHERE bin_config.capacity < $5
		RETURNING trashcan, bin_number, waste_type, capacity, updated_at
	`, cfg.Trashcan, cfg.BinNumber, cfg.WasteType, cfg.Capacity, lockAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to upsert bin %d: %w", cfg.BinNumber, err)
	}
	return true, nil
}

// UpdateCapacity changes the fill level of an existing bin. It never creates rows.
func (r *BinConfigRepo) UpdateCapacity(ctx context.Context, trashcan, binNumber int, capacity float64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE bin_config
		SET capacity = $3, updated_at = NOW()
		WHERE trashcan = $1 AND bin_number = $2
	`, trashcan, binNumber, capacity)
	if err != nil {
		return false, fmt.Errorf("failed to update capacity of bin %d: %w", binNumber, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return rows > 0, nil
}
