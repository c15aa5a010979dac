package api

import (
	"net/http"

	"github.com/dom/orianna-bot/internal/api/handlers"
	"github.com/dom/orianna-bot/internal/api/middleware"
	"github.com/dom/orianna-bot/internal/config"
	"github.com/dom/orianna-bot/internal/repository"
	"github.com/dom/orianna-bot/internal/service"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the ops HTTP surface: a health probe plus a small
// secret-gated admin API for manual refreshes and role configuration.
func NewRouter(services *service.Services, repos *repository.Repositories, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Initialize handlers
	userHandler := handlers.NewUserHandler(repos.User, services.Scheduler)
	serverHandler := handlers.NewServerHandler(repos.Server)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Secret(cfg.APISecret))

		r.Post("/users/{snowflake}/refresh", userHandler.Refresh)

		r.Get("/servers", serverHandler.GetAll)
		r.Post("/servers/{snowflake}/roles", serverHandler.CreateRole)
		r.Delete("/roles/{id}", serverHandler.DeleteRole)
	})

	return r
}
