package main

import (
	"fmt"
	"log"

	"waste-wizard-backend/internal/config"
	"waste-wizard-backend/internal/database"

	"github.com/jmoiron/sqlx"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Println("Connected to database successfully")

	err = db.Bootstrap(
		database.Migrate,
		func(conn *sqlx.DB) error { return database.SeedBinConfigs(conn, cfg.DefaultTrashcan) },
		func(conn *sqlx.DB) error { return database.SeedUsers(conn, cfg.Session.LegacyPlaintextPasswords) },
	)
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	var result struct {
		Users      int `db:"users"`
		Trashcans  int `db:"trashcans"`
		Bins       int `db:"bins"`
		WasteItems int `db:"waste_items"`
	}

	query := `
		SELECT
			(SELECT COUNT(*) FROM users) AS users,
			(SELECT COUNT(DISTINCT trashcan) FROM bin_config) AS trashcans,
			(SELECT COUNT(*) FROM bin_config) AS bins,
			(SELECT COUNT(*) FROM waste_items) AS waste_items
	`
	if err := db.Get(&result, query); err != nil {
		db.Close()
		log.Fatalf("Failed to query summary: %v", err)
	}

	fmt.Println("\n============================================================")
	fmt.Println("MIGRATION SUMMARY")
	fmt.Println("============================================================")
	fmt.Printf("Users:                   %d\n", result.Users)
	fmt.Printf("Trashcans:               %d\n", result.Trashcans)
	fmt.Printf("Configured bins:         %d\n", result.Bins)
	fmt.Printf("Recorded waste items:    %d\n", result.WasteItems)
	fmt.Println("============================================================")
}
