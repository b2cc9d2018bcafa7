package v1alpha1

import (
	"net/http"
	"strconv"

	"github.com/dwh-project/clone-governor/internal/service"
	"github.com/go-chi/chi/v5"
)

type createCloneRequest struct {
	Environment    string            `json:"environment"`
	SourceDatabase string            `json:"source_database"`
	SourceSchema   string            `json:"source_schema,omitempty"`
	Kind           string            `json:"kind"`
	WithData       bool              `json:"with_data"`
	Classification string            `json:"classification,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

type replaceCloneRequest struct {
	createCloneRequest
	CloneIDOrName string `json:"clone_id_or_name,omitempty"`
}

type cleanupRequest struct {
	Environment *string `json:"environment,omitempty"`
	DryRun      bool    `json:"dry_run"`
}

type scanRequest struct {
	Environment *string `json:"environment,omitempty"`
}

func toServiceCloneRequest(actor string, req createCloneRequest) service.CloneRequest {
	return service.CloneRequest{
		Actor:          actor,
		Environment:    req.Environment,
		SourceDatabase: req.SourceDatabase,
		SourceSchema:   req.SourceSchema,
		Kind:           req.Kind,
		WithData:       req.WithData,
		Classification: req.Classification,
		Metadata:       req.Metadata,
	}
}

func (h *Handler) createClone(w http.ResponseWriter, r *http.Request) {
	var req createCloneRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	clone, findings, err := h.admission.RequestClone(r.Context(), toServiceCloneRequest(actorFrom(r), req))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, http.StatusCreated, "Clone created", map[string]any{
		"clone":    clone,
		"warnings": findings,
	})
}

func (h *Handler) listClones(w http.ResponseWriter, r *http.Request) {
	var environment *string
	if env := r.URL.Query().Get("environment"); env != "" {
		environment = &env
	}
	all, _ := strconv.ParseBool(r.URL.Query().Get("all"))

	clones, err := h.admission.ListClones(r.Context(), actorFrom(r), environment, all)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "Clones listed", map[string]any{"clones": clones})
}

func (h *Handler) deleteClone(w http.ResponseWriter, r *http.Request) {
	idOrName := chi.URLParam(r, "idOrName")
	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))

	if err := h.admission.DeleteClone(r.Context(), actorFrom(r), idOrName, force); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "Clone deleted", nil)
}

func (h *Handler) replaceClone(w http.ResponseWriter, r *http.Request) {
	var req replaceCloneRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	clone, findings, err := h.admission.ReplaceClone(r.Context(), service.ReplaceRequest{
		CloneRequest:  toServiceCloneRequest(actorFrom(r), req.createCloneRequest),
		CloneIDOrName: req.CloneIDOrName,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, http.StatusCreated, "Clone replaced", map[string]any{
		"clone":    clone,
		"warnings": findings,
	})
}

func (h *Handler) cleanupExpired(w http.ResponseWriter, r *http.Request) {
	var req cleanupRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	report, err := h.reaper.Sweep(r.Context(), req.Environment, req.DryRun)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "Sweep complete", map[string]any{"report": report})
}

func (h *Handler) scanCompliance(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	report, err := h.admission.ScanCompliance(r.Context(), req.Environment)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "Compliance scan complete", map[string]any{"report": report})
}
