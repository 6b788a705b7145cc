package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/lingnanlabs/guangfu-agents/internal/api/handlers"
	"github.com/lingnanlabs/guangfu-agents/internal/api/middleware"
	"github.com/lingnanlabs/guangfu-agents/internal/config"
)

// NewRouter creates the HTTP router with all API routes.
func NewRouter(cfg *config.Config, h *handlers.Handlers) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.Telemetry)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.NewAPIKeyAuth(cfg.Auth.APIKeys).Middleware)

	// Health & info
	r.Get("/health", healthHandler)
	r.Get("/version", versionHandler(cfg))

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/agents", h.ListAgents)

		r.Route("/chat", func(r chi.Router) {
			r.Post("/", h.Chat)
			r.Post("/stream", h.ChatStream)
		})

		r.Route("/collaboration", func(r chi.Router) {
			r.Post("/", h.Collaboration)
			r.Post("/stream", h.CollaborationStream)
		})

		r.Get("/conversations", h.ListConversations)
		r.Get("/knowledge/{category}", h.GetKnowledge)
	})

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "guangfu-agents",
	})
}

func versionHandler(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"version": cfg.Version,
			"service": "guangfu-agents",
		})
	}
}
