package v1alpha1

import (
	"net/http"
	"strconv"

	"github.com/dwh-project/clone-governor/internal/service"
	"github.com/dwh-project/clone-governor/internal/store"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) listAudit(w http.ResponseWriter, r *http.Request) {
	filter := store.AuditFilter{}
	query := r.URL.Query()
	if op := query.Get("operation"); op != "" {
		filter.Operation = &op
	}
	if actor := query.Get("actor"); actor != "" {
		filter.Actor = &actor
	}
	if cloneName := query.Get("clone"); cloneName != "" {
		filter.CloneName = &cloneName
	}
	if status := query.Get("status"); status != "" {
		filter.Status = &status
	}
	if limitRaw := query.Get("limit"); limitRaw != "" {
		limit, err := strconv.Atoi(limitRaw)
		if err != nil || limit < 1 {
			h.writeError(w, r, service.NewInvalidArgumentError("Invalid limit", "limit must be a positive integer"))
			return
		}
		filter.Limit = limit
	}

	records, err := h.audit.List(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "Audit records listed", map[string]any{"records": records})
}

func (h *Handler) listViolations(w http.ResponseWriter, r *http.Request) {
	filter := store.ViolationFilter{}
	query := r.URL.Query()
	if state := query.Get("state"); state != "" {
		filter.State = &state
	}
	if actor := query.Get("actor"); actor != "" {
		filter.Actor = &actor
	}
	if severity := query.Get("severity"); severity != "" {
		filter.Severity = &severity
	}
	if cloneID := query.Get("clone_id"); cloneID != "" {
		filter.CloneID = &cloneID
	}

	violations, err := h.violations.ListViolations(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "Violations listed", map[string]any{"violations": violations})
}

type resolveViolationRequest struct {
	Notes string `json:"notes,omitempty"`
}

func (h *Handler) resolveViolation(w http.ResponseWriter, r *http.Request) {
	var req resolveViolationRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	violation, err := h.violations.ResolveViolation(r.Context(), chi.URLParam(r, "id"), actorFrom(r), req.Notes)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "Violation resolved", map[string]any{"violation": violation})
}
