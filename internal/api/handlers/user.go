package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/dom/orianna-bot/internal/repository"
	"github.com/dom/orianna-bot/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type UserHandler struct {
	users     repository.UserRepository
	scheduler *service.Scheduler
}

func NewUserHandler(users repository.UserRepository, scheduler *service.Scheduler) *UserHandler {
	return &UserHandler{users: users, scheduler: scheduler}
}

type RefreshResponse struct {
	Queued bool `json:"queued"`
}

// Refresh queues a full refresh for one user. Responds 409 when a refresh
// for that user is already running.
func (h *UserHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	snowflake := chi.URLParam(r, "snowflake")

	user, err := h.users.GetBySnowflake(r.Context(), snowflake)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("snowflake", snowflake).Msg("user lookup failed")
		http.Error(w, "failed to load user", http.StatusInternalServerError)
		return
	}

	if !h.scheduler.TriggerRefresh(r.Context(), user) {
		http.Error(w, "refresh already in progress", http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(RefreshResponse{Queued: true})
}
