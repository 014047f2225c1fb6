package main

import (
	"net/http"

	"waste-wizard-backend/internal/config"
	"waste-wizard-backend/internal/handlers"
	"waste-wizard-backend/internal/middleware"
	"waste-wizard-backend/internal/session"
	"waste-wizard-backend/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type routerDeps struct {
	cfg      *config.Config
	sessions *session.Manager
	bins     handlers.BinConfigurator
	wasteLog handlers.WasteLog
	users    handlers.UserLookup
	geocoder handlers.ReverseGeocoder // nil without an API key
	hub      *websocket.Hub
}

func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(middleware.SessionGate(d.sessions))

	var hub handlers.Broadcaster
	if d.hub != nil {
		hub = d.hub
	}
	trashcan := d.cfg.DefaultTrashcan

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Pages (the gate decides who sees them)
	r.Get("/", handlers.Page(d.cfg.FrontendDir, "index"))
	r.Get("/login", handlers.Page(d.cfg.FrontendDir, "login"))
	r.Get("/capacity", handlers.Page(d.cfg.FrontendDir, "capacity"))
	r.Get("/statistics", handlers.Page(d.cfg.FrontendDir, "statistics"))
	r.Get("/configure", handlers.Page(d.cfg.FrontendDir, "configure"))

	if d.hub != nil {
		r.With(middleware.RequireSession(d.sessions)).Get("/ws", websocket.HandleWebSocket(d.hub))
	}

	r.Route("/api", func(r chi.Router) {
		// Authentication routes
		r.Post("/login", handlers.Login(d.users, d.sessions, d.cfg.Session.LegacyPlaintextPasswords))
		r.Post("/logout", handlers.Logout(d.sessions))
		r.Get("/auth/status", handlers.AuthStatus(d.sessions))

		r.Get("/bin-configurations", handlers.GetBinConfigurations(d.bins, trashcan))
		r.Group(func(r chi.Router) {
			if d.cfg.ProtectAPI {
				r.Use(middleware.RequireSession(d.sessions))
			}
			r.Post("/bin-configurations", handlers.PostBinConfigurations(d.bins, hub, trashcan))
		})

		r.Get("/waste-statistics", handlers.GetWasteStatistics(d.wasteLog, trashcan))
		r.Get("/waste-statistics/summary", handlers.GetWasteSummary(d.wasteLog, trashcan))
		r.Post("/waste-statistics", handlers.CreateWasteItem(d.wasteLog, hub, trashcan))

		r.Get("/reverse-geocode", handlers.ReverseGeocode(d.geocoder))
	})

	return r
}
