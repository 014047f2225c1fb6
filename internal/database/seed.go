package database

import (
	"log"

	"waste-wizard-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// DefaultBins is the layout a trashcan ships with
var DefaultBins = []models.BinConfig{
	{BinNumber: 1, WasteType: models.WasteTrash},
	{BinNumber: 2, WasteType: models.WastePlastic},
	{BinNumber: 3, WasteType: models.WasteCompost},
}

func SeedBinConfigs(db *sqlx.DB, trashcan int) error {
	// Check if the trashcan already has bins
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM bin_config WHERE trashcan = $1", trashcan); err != nil {
		return err
	}

	if count > 0 {
		log.Printf("✓ Bins of trashcan %d already seeded, skipping...", trashcan)
		return nil
	}

	log.Printf("🌱 Seeding %d bins for trashcan %d...", len(DefaultBins), trashcan)

	for _, bin := range DefaultBins {
		_, err := db.Exec(`
			INSERT INTO bin_config (trashcan, bin_number, waste_type, capacity)
			VALUES ($1, $2, $3, 0)
			ON CONFLICT (trashcan, bin_number) DO NOTHING
		`, trashcan, bin.BinNumber, bin.WasteType)
		if err != nil {
			return err
		}
	}

	log.Printf("✓ Successfully seeded bins for trashcan %d", trashcan)
	return nil
}

// SeedUsers creates the demo accounts. Passwords are stored verbatim only when
// plaintext is set (legacy login mode).
func SeedUsers(db *sqlx.DB, plaintext bool) error {
	// Check if users already exist
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM users"); err != nil {
		return err
	}

	if count > 0 {
		log.Println("✓ Users already seeded, skipping...")
		return nil
	}

	log.Println("🌱 Seeding test users...")

	users := []struct {
		username string
		password string
		role     string
	}{
		{"admin", "admin123", "admin"},
		{"operator", "operator123", "operator"},
	}

	for _, u := range users {
		stored := u.password
		if !plaintext {
			hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			stored = string(hash)
		}

		query := `
			INSERT INTO users (id, username, password, role)
			VALUES (:id, :username, :password, :role)
		`
		params := map[string]interface{}{
			"id":       uuid.New().String(),
			"username": u.username,
			"password": stored,
			"role":     u.role,
		}
		if _, err := db.NamedExec(query, params); err != nil {
			return err
		}
		log.Printf("  ✓ Created user: %s (%s)", u.username, u.role)
	}

	log.Println("✓ Successfully seeded test users")
	log.Println("  👤 Admin:    admin / admin123")
	log.Println("  👤 Operator: operator / operator123")
	return nil
}
