package commands

import (
	"context"
	"flag"
	"fmt"
	"os"

	"waste-wizard-backend/internal/config"
	"waste-wizard-backend/internal/database"
	"waste-wizard-backend/internal/models"
	"waste-wizard-backend/internal/session"

	"github.com/google/uuid"
)

// AddUser handles the add-user subcommand: it creates a dashboard account, or
// resets the password and role of an existing one.
func AddUser(args []string) {
	fs := flag.NewFlagSet("add-user", flag.ExitOnError)
	username := fs.String("username", "", "Login name (required)")
	role := fs.String("role", "operator", "Role: admin or operator")
	insecureUnmask := fs.Bool("insecure-unmask-password", false, "Show password as plain text (INSECURE!)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: server add-user -username NAME [-role admin|operator]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nUses DATABASE_URL, or the embedded database when it is empty.\n")
	}
	fs.Parse(args)

	if err := validateUser(*username, *role); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fs.Usage()
		os.Exit(2)
	}

	password, err := newPasswordReader(*insecureUnmask).readConfirmed()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := saveUser(*username, *role, password); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✓ Saved user: %s (%s)\n", *username, *role)
}

func validateUser(username, role string) error {
	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}
	if role != "admin" && role != "operator" {
		return fmt.Errorf("role must be admin or operator, got %q", role)
	}
	return nil
}

func saveUser(username, role, password string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Bootstrap(database.Migrate); err != nil {
		return err
	}

	stored := password
	if !cfg.Session.LegacyPlaintextPasswords {
		if stored, err = session.HashPassword(password); err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
	}

	return database.NewUserRepo(db.DB).UpsertUser(context.Background(), &models.User{
		ID:       uuid.New().String(),
		Username: username,
		Password: stored,
		Role:     role,
	})
}
