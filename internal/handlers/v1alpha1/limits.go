package v1alpha1

import (
	"net/http"

	"github.com/dwh-project/clone-governor/internal/store/model"
	"github.com/go-chi/chi/v5"
)

type setLimitsRequest struct {
	MaxClonesPerUser    int  `json:"max_clones_per_user"`
	DefaultExpiryHours  *int `json:"default_expiry_hours,omitempty"`
	AllowSchemaClones   bool `json:"allow_schema_clones"`
	AllowDatabaseClones bool `json:"allow_database_clones"`
}

func (h *Handler) getLimits(w http.ResponseWriter, r *http.Request) {
	limits, err := h.limits.Get(r.Context(), chi.URLParam(r, "environment"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "Limit configuration found", map[string]any{"limits": limits})
}

func (h *Handler) setLimits(w http.ResponseWriter, r *http.Request) {
	var req setLimitsRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	limits, err := h.limits.Set(r.Context(), actorFrom(r), model.LimitConfig{
		Environment:         chi.URLParam(r, "environment"),
		MaxClonesPerUser:    req.MaxClonesPerUser,
		DefaultExpiryHours:  req.DefaultExpiryHours,
		AllowSchemaClones:   req.AllowSchemaClones,
		AllowDatabaseClones: req.AllowDatabaseClones,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "Limit configuration updated", map[string]any{"limits": limits})
}
