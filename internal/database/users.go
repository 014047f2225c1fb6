package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"waste-wizard-backend/internal/models"

	"github.com/jmoiron/sqlx"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepo struct {
	db sqlx.ExtContext
}

func NewUserRepo(db sqlx.ExtContext) *UserRepo {
	return &UserRepo{db: db}
}

// GetUserByUsername does an exact, case-sensitive lookup
func (r *UserRepo) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := sqlx.GetContext(ctx, r.db, &user, `
		SELECT id, username, password, role, created_at
		FROM users
		WHERE username = $1
		LIMIT 1
	`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// UpsertUser creates the user or replaces the password and role of an existing one
func (r *UserRepo) UpsertUser(ctx context.Context, user *models.User) error {
	row := r.db.QueryRowxContext(ctx, `
		INSERT INTO users (id, username, password, role)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (username) DO UPDATE SET
			password = EXCLUDED.password,
			role = EXCLUDED.role
		RETURNING id, created_at
	`, user.ID, user.Username, user.Password, user.Role)
	if err := row.Scan(&user.ID, &user.CreatedAt); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}
