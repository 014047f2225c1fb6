package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"waste-wizard-backend/internal/commands"
	"waste-wizard-backend/internal/config"
	"waste-wizard-backend/internal/database"
	"waste-wizard-backend/internal/handlers"
	"waste-wizard-backend/internal/ingest"
	"waste-wizard-backend/internal/services"
	"waste-wizard-backend/internal/session"
	"waste-wizard-backend/internal/websocket"

	"github.com/jmoiron/sqlx"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "hash-password":
			commands.HashPassword(os.Args[2:])
			return
		case "add-user":
			commands.AddUser(os.Args[2:])
			return
		}
	}

	log.Println("═══════════════════════════════════════════════════════════════════")
	log.Println("🚀 WASTE WIZARD BACKEND SERVER STARTING")
	log.Println("═══════════════════════════════════════════════════════════════════")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ FATAL ERROR: Invalid configuration: %v", err)
	}
	if cfg.Session.LegacyCookie {
		log.Println("⚠️  LEGACY_SESSION_COOKIE is on: any session cookie is accepted")
	}
	if cfg.Session.LegacyPlaintextPasswords {
		log.Println("⚠️  LEGACY_PLAINTEXT_PASSWORDS is on: passwords are compared verbatim")
	}

	// Connect to database
	log.Println("🔌 Connecting to database...")
	db, err := database.Open(cfg)
	if err != nil {
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Println("❌ FATAL ERROR: Database connection failed")
		log.Printf("   Error: %v", err)
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Fatal(err)
	}
	defer db.Close()
	log.Println("✅ Database connection established")

	log.Println("🔄 Running database migrations and seeding initial data...")
	err = db.Bootstrap(
		database.Migrate,
		func(conn *sqlx.DB) error { return database.SeedUsers(conn, cfg.Session.LegacyPlaintextPasswords) },
		func(conn *sqlx.DB) error { return database.SeedBinConfigs(conn, cfg.DefaultTrashcan) },
	)
	if err != nil {
		// Bootstrap already closed the database
		log.Fatalf("❌ FATAL ERROR: Database setup failed: %v", err)
	}

	// Fill alerts: base64 credentials first, then a credentials file
	var alerter services.FillAlerter
	switch {
	case cfg.Alerts.FirebaseCredentialsB64 != "":
		if fcm, err := services.NewFCMServiceFromBase64(cfg.Alerts.FirebaseCredentialsB64); err != nil {
			log.Printf("⚠️  Failed to initialize FCM from base64: %v (fill alerts disabled)", err)
		} else {
			alerter = fcm
			log.Println("✅ Firebase Cloud Messaging initialized from base64 credentials")
		}
	case cfg.Alerts.FirebaseCredentials != "":
		if fcm, err := services.NewFCMService(cfg.Alerts.FirebaseCredentials); err != nil {
			log.Printf("⚠️  Failed to initialize FCM from file: %v (fill alerts disabled)", err)
		} else {
			alerter = fcm
			log.Println("✅ Firebase Cloud Messaging initialized from file")
		}
	default:
		log.Println("ℹ️  No Firebase credentials, fill alerts disabled")
	}

	// Reverse geocoding with optional badger cache
	var cache services.GeocodeCache
	if cfg.Geocode.CacheDir != "" {
		badgerCache, err := services.OpenGeocodeCache(cfg.Geocode.CacheDir, services.DefaultGeocodeCacheTTL)
		if err != nil {
			log.Printf("⚠️  Failed to open geocode cache: %v (caching disabled)", err)
		} else {
			defer badgerCache.Close()
			cache = badgerCache
			log.Printf("✅ Geocode cache opened at %s", cfg.Geocode.CacheDir)
		}
	}

	var geocoder handlers.ReverseGeocoder
	if geo, err := services.NewGeocodingService(cfg.Geocode, cache); err != nil {
		log.Printf("⚠️  Reverse geocoding unavailable: %v", err)
	} else {
		geocoder = geo
	}

	wsHub := websocket.NewHub()
	go wsHub.Run()
	log.Println("✅ WebSocket hub started")

	binService := services.NewBinConfigService(db.DB, alerter, cfg.Alerts.Threshold)
	wasteLog := database.NewWasteItemRepo(db.DB)

	// Device ingestion
	if cfg.MQTTAddress != "" {
		broker, err := ingest.NewBroker(cfg.MQTTAddress, ingest.NewHandler(wasteLog, binService, wsHub))
		if err != nil {
			db.Close()
			log.Fatalf("❌ FATAL ERROR: MQTT broker setup failed: %v", err)
		}
		go func() {
			if err := broker.Serve(); err != nil {
				log.Printf("❌ MQTT broker stopped: %v", err)
			}
		}()
		defer broker.Close()
		log.Printf("✅ MQTT broker listening on %s", cfg.MQTTAddress)
	}

	router := newRouter(routerDeps{
		cfg:      cfg,
		sessions: session.NewManager(cfg.Session, cfg.IsProduction()),
		bins:     binService,
		wasteLog: wasteLog,
		users:    database.NewUserRepo(db.DB),
		geocoder: geocoder,
		hub:      wsHub,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Println("═══════════════════════════════════════════════════════════════════")
	log.Println("✅ ALL INITIALIZATION COMPLETE")
	log.Printf("🚀 Server starting on http://localhost:%s", cfg.Port)
	log.Println("═══════════════════════════════════════════════════════════════════")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
			log.Println("❌ FATAL ERROR: Server failed to start")
			log.Printf("   Error: %v", err)
			log.Printf("   Port: %s", cfg.Port)
			log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("🛑 Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️  Graceful shutdown failed: %v", err)
	}
}
