package database

import (
	"context"
	"fmt"
	"log"
	"sync"

	"waste-wizard-backend/internal/config"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// DB wraps sqlx.DB and owns the embedded Postgres process when one was started
type DB struct {
	*sqlx.DB

	// stop shuts down the embedded process; nil for an external database
	stop      func() error
	closeOnce sync.Once
	closeErr  error
}

// Open connects to DATABASE_URL, or starts an embedded Postgres when it is empty
func Open(cfg *config.Config) (*DB, error) {
	if cfg.DatabaseURL != "" {
		db, err := Connect(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return &DB{DB: db}, nil
	}

	log.Println("📦 Mode: [Embedded PostgreSQL] - DATABASE_URL not set, starting internal database...")
	emb := cfg.Embedded
	embedded := embeddedpostgres.NewDatabase(embeddedpostgres.DefaultConfig().
		DataPath(emb.DataDir).
		Port(emb.Port).
		Database(emb.Database).
		Username(emb.Username).
		Password(emb.Password))

	if err := embedded.Start(); err != nil {
		return nil, fmt.Errorf("failed to start embedded database: %w", err)
	}
	log.Printf("✅ Embedded PostgreSQL process started on port %d", emb.Port)

	dsn := fmt.Sprintf("host=localhost port=%d user=%s password=%s dbname=%s sslmode=disable",
		emb.Port, emb.Username, emb.Password, emb.Database)
	db, err := Connect(dsn)
	if err != nil {
		_ = embedded.Stop()
		return nil, err
	}
	return &DB{DB: db, stop: embedded.Stop}, nil
}

func Connect(dbURL string) (*sqlx.DB, error) {
	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Println("🔌 DATABASE CONNECTION ATTEMPT")
	log.Printf("   📍 Database URL length: %d characters", len(dbURL))
	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		log.Println("❌ DATABASE CONNECTION FAILED AT sqlx.Connect()")
		log.Printf("   Error type: %T", err)
		log.Printf("   Error message: %v", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		log.Println("❌ DATABASE CONNECTION FAILED AT Ping()")
		log.Printf("   Error message: %v", err)
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("✅ DATABASE CONNECTION SUCCESSFUL")
	return db, nil
}

// Close shuts down the connection pool and the embedded process, if any.
// Only the first call does anything.
func (db *DB) Close() error {
	db.closeOnce.Do(func() {
		db.closeErr = db.DB.Close()
		if db.stop != nil {
			log.Println("🛑 Stopping Embedded PostgreSQL process...")
			if err := db.stop(); err != nil && db.closeErr == nil {
				db.closeErr = err
			}
		}
	})
	return db.closeErr
}

// Bootstrap runs setup steps such as Migrate and the seeds in order. On the
// first failure it closes db, so callers may exit without leaking an
// embedded Postgres process.
func (db *DB) Bootstrap(steps ...func(*sqlx.DB) error) error {
	for _, step := range steps {
		if err := step(db.DB); err != nil {
			if closeErr := db.Close(); closeErr != nil {
				log.Printf("⚠️  Failed to close database after setup error: %v", closeErr)
			}
			return err
		}
	}
	return nil
}

func Migrate(db *sqlx.DB) error {
	migrations := []string{
		// Operators allowed to log in to the dashboard
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			role TEXT NOT NULL CHECK(role IN ('admin', 'operator')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		// One row per bin per trashcan, written via UPSERT
		`CREATE TABLE IF NOT EXISTS bin_config (
			trashcan INT NOT NULL DEFAULT 1,
			bin_number INT NOT NULL CHECK(bin_number > 0),
			waste_type TEXT NOT NULL,
			capacity NUMERIC(6,2) NOT NULL DEFAULT 0 CHECK(capacity >= 0),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (trashcan, bin_number)
		)`,

		// Append-only log of sorted items
		`CREATE TABLE IF NOT EXISTS waste_items (
			id BIGSERIAL PRIMARY KEY,
			waste_type TEXT NOT NULL,
			bin_number INT NOT NULL,
			username TEXT NOT NULL DEFAULT '',
			trashcan INT NOT NULL DEFAULT 1,
			time TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_users_username ON users(username)`,
		`CREATE INDEX IF NOT EXISTS idx_waste_items_trashcan_time ON waste_items(trashcan, time DESC)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	log.Println("✓ Database migrations completed")
	return nil
}

// InTx runs fn inside a transaction, committing only when fn succeeds
func InTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
