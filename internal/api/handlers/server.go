package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/dom/orianna-bot/internal/domain"
	"github.com/dom/orianna-bot/internal/repository"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type ServerHandler struct {
	servers repository.ServerRepository
}

func NewServerHandler(servers repository.ServerRepository) *ServerHandler {
	return &ServerHandler{servers: servers}
}

type ServersResponse struct {
	Servers []*domain.Server `json:"servers"`
}

func (h *ServerHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	servers, err := h.servers.GetAll(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("server listing failed")
		http.Error(w, "failed to list servers", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ServersResponse{Servers: servers})
}

type CreateRoleRequest struct {
	Snowflake  string             `json:"snowflake"`
	Name       string             `json:"name"`
	Announce   bool               `json:"announce"`
	Conditions []ConditionRequest `json:"conditions"`
}

type ConditionRequest struct {
	Kind    domain.ConditionKind    `json:"kind"`
	Options domain.ConditionOptions `json:"options"`
}

// CreateRole attaches a managed role definition to a configured server
func (h *ServerHandler) CreateRole(w http.ResponseWriter, r *http.Request) {
	snowflake := chi.URLParam(r, "snowflake")

	var req CreateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Snowflake == "" || req.Name == "" {
		http.Error(w, "snowflake and name are required", http.StatusBadRequest)
		return
	}

	server, err := h.servers.GetBySnowflake(r.Context(), snowflake)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "server not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("snowflake", snowflake).Msg("server lookup failed")
		http.Error(w, "failed to load server", http.StatusInternalServerError)
		return
	}

	role := &domain.Role{
		ServerID:  server.ID,
		Snowflake: req.Snowflake,
		Name:      req.Name,
		Announce:  req.Announce,
	}
	for _, c := range req.Conditions {
		if !c.Kind.IsValid() {
			http.Error(w, domain.ErrInvalidConditionKind.Error(), http.StatusBadRequest)
			return
		}
		opts, err := domain.EncodeConditionOptions(c.Options)
		if err != nil {
			http.Error(w, "invalid condition options", http.StatusBadRequest)
			return
		}
		role.Conditions = append(role.Conditions, &domain.Condition{
			Kind:    c.Kind,
			Options: opts,
		})
	}

	if err := h.servers.CreateRole(r.Context(), role); err != nil {
		log.Error().Err(err).Str("server", server.Name).Msg("role creation failed")
		http.Error(w, "failed to create role", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(role)
}

// DeleteRole removes a managed role definition and its conditions
func (h *ServerHandler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid role id", http.StatusBadRequest)
		return
	}

	if _, err := h.servers.GetRoleByID(r.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "role not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("role", id.String()).Msg("role lookup failed")
		http.Error(w, "failed to load role", http.StatusInternalServerError)
		return
	}

	if err := h.servers.DeleteRole(r.Context(), id); err != nil {
		log.Error().Err(err).Str("role", id.String()).Msg("role deletion failed")
		http.Error(w, "failed to delete role", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
