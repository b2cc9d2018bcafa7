package v1alpha1

import (
	"net/http"
	"strconv"

	"github.com/dwh-project/clone-governor/internal/service"
	"github.com/dwh-project/clone-governor/internal/store"
	"github.com/go-chi/chi/v5"
)

type createPolicyRequest struct {
	Name        string         `json:"name"`
	PolicyType  string         `json:"policy_type"`
	Description string         `json:"description,omitempty"`
	Environment string         `json:"environment,omitempty"`
	Params      map[string]any `json:"params,omitempty"`
	Severity    string         `json:"severity"`
	Action      string         `json:"action"`
}

type setPolicyStatusRequest struct {
	Active bool `json:"active"`
}

func (h *Handler) createPolicy(w http.ResponseWriter, r *http.Request) {
	var req createPolicyRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	policy, err := h.policies.CreatePolicy(r.Context(), actorFrom(r), service.PolicyInput{
		Name:        req.Name,
		PolicyType:  req.PolicyType,
		Description: req.Description,
		Environment: req.Environment,
		Params:      req.Params,
		Severity:    req.Severity,
		Action:      req.Action,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, http.StatusCreated, "Policy created", map[string]any{"policy": policy})
}

func (h *Handler) listPolicies(w http.ResponseWriter, r *http.Request) {
	filter := store.PolicyFilter{}
	if policyType := r.URL.Query().Get("policy_type"); policyType != "" {
		filter.PolicyType = &policyType
	}
	if activeRaw := r.URL.Query().Get("active"); activeRaw != "" {
		active, err := strconv.ParseBool(activeRaw)
		if err != nil {
			h.writeError(w, r, service.NewInvalidArgumentError("Invalid active filter", "active must be true or false"))
			return
		}
		filter.Active = &active
	}
	if env := r.URL.Query().Get("environment"); env != "" {
		filter.Environment = &env
	}

	policies, err := h.policies.ListPolicies(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "Policies listed", map[string]any{"policies": policies})
}

func (h *Handler) getPolicy(w http.ResponseWriter, r *http.Request) {
	policy, err := h.policies.GetPolicy(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "Policy found", map[string]any{"policy": policy})
}

func (h *Handler) setPolicyStatus(w http.ResponseWriter, r *http.Request) {
	var req setPolicyStatusRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	policy, err := h.policies.SetPolicyStatus(r.Context(), actorFrom(r), chi.URLParam(r, "name"), req.Active)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "Policy status updated", map[string]any{"policy": policy})
}

func (h *Handler) deletePolicy(w http.ResponseWriter, r *http.Request) {
	if err := h.policies.DeletePolicy(r.Context(), actorFrom(r), chi.URLParam(r, "name")); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "Policy deleted", nil)
}
