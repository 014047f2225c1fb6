package database

import (
	"context"
	"fmt"
	"time"

	"waste-wizard-backend/internal/models"

	"github.com/jmoiron/sqlx"
)

type WasteItemRepo struct {
	db sqlx.ExtContext
}

func NewWasteItemRepo(db sqlx.ExtContext) *WasteItemRepo {
	return &WasteItemRepo{db: db}
}

// InsertWasteItem appends an event; id and time are assigned by the database
func (r *WasteItemRepo) InsertWasteItem(ctx context.Context, item *models.WasteItem) error {
	row := r.db.QueryRowxContext(ctx, `
		INSERT INTO waste_items (waste_type, bin_number, username, trashcan)
		VALUES ($1, $2, $3, $4)
		RETURNING id, time
	`, item.WasteType, item.BinNumber, item.Username, item.Trashcan)
	if err := row.Scan(&item.ID, &item.Time); err != nil {
		return fmt.Errorf("failed to record waste item: %w", err)
	}
	return nil
}

// ListWasteItems returns a trashcan's events newest first. A nil since means no time filter.
func (r *WasteItemRepo) ListWasteItems(ctx context.Context, trashcan int, since *time.Time) ([]models.WasteItem, error) {
	items := []models.WasteItem{}

	query := `
		SELECT id, waste_type, bin_number, time, username, trashcan
		FROM waste_items
		WHERE trashcan = $1`
	args := []interface{}{trashcan}

	if since != nil {
		query += ` AND time >= $2`
		args = append(args, *since)
	}
	query += ` ORDER BY time DESC, id DESC`

	if err := sqlx.SelectContext(ctx, r.db, &items, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch waste items: %w", err)
	}
	return items, nil
}
