// Package v1alpha1 implements the administrative HTTP surface. Actor
// identity arrives pre-authenticated in the X-Actor header; this layer
// only routes, decodes and encodes.
package v1alpha1

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dwh-project/clone-governor/internal/service"
	"github.com/go-chi/chi/v5"
)

const actorHeader = "X-Actor"

// Handler implements the v1alpha1 administrative API.
type Handler struct {
	admission  service.AdmissionService
	policies   service.PolicyService
	limits     service.LimitService
	violations service.ViolationService
	audit      service.AuditRecorder
	reaper     service.Reaper
	logger     *slog.Logger
}

// NewHandler creates the API handler.
func NewHandler(
	admission service.AdmissionService,
	policies service.PolicyService,
	limits service.LimitService,
	violations service.ViolationService,
	audit service.AuditRecorder,
	reaper service.Reaper,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		admission:  admission,
		policies:   policies,
		limits:     limits,
		violations: violations,
		audit:      audit,
		reaper:     reaper,
		logger:     logger,
	}
}

// Routes registers every v1alpha1 route on the router.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/api/v1alpha1", func(r chi.Router) {
		r.Post("/clones", h.createClone)
		r.Get("/clones", h.listClones)
		r.Delete("/clones/{idOrName}", h.deleteClone)
		r.Post("/clones:replace", h.replaceClone)
		r.Post("/clones:cleanupExpired", h.cleanupExpired)
		r.Post("/clones:scanCompliance", h.scanCompliance)

		r.Get("/environments/{environment}/limits", h.getLimits)
		r.Put("/environments/{environment}/limits", h.setLimits)

		r.Post("/policies", h.createPolicy)
		r.Get("/policies", h.listPolicies)
		r.Get("/policies/{name}", h.getPolicy)
		r.Post("/policies/{name}:setStatus", h.setPolicyStatus)
		r.Delete("/policies/{name}", h.deletePolicy)

		r.Get("/audit", h.listAudit)
		r.Get("/violations", h.listViolations)
		r.Post("/violations/{id}:resolve", h.resolveViolation)
	})
}

func actorFrom(r *http.Request) string {
	return r.Header.Get(actorHeader)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeError(w, r, service.NewInvalidArgumentError("Malformed request body", err.Error()))
		return false
	}
	return true
}

// envelope is the common success body: status, message, plus an
// operation-specific payload.
type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Payload any    `json:"payload,omitempty"`
}

func (h *Handler) ok(w http.ResponseWriter, status int, message string, payload any) {
	h.writeJSON(w, status, envelope{
		Status:  "OK",
		Message: message,
		Payload: payload,
	})
}
