package v1alpha1

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dwh-project/clone-governor/internal/service"
)

// problem is an RFC 7807 style error body carrying the machine-readable
// error kind alongside the human message.
type problem struct {
	Type     string `json:"type"`
	Status   int    `json:"status"`
	Title    string `json:"title"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	// Payload carries error-specific context, e.g. the held clone list
	// on QUOTA_EXCEEDED or the violation list on POLICY_VIOLATION.
	Payload any `json:"payload,omitempty"`
}

func httpStatusFor(t service.ErrorType) int {
	switch t {
	case service.ErrorTypeInvalidArgument:
		return http.StatusBadRequest
	case service.ErrorTypeNotFound:
		return http.StatusNotFound
	case service.ErrorTypePermissionDenied, service.ErrorTypePolicyDenied:
		return http.StatusForbidden
	case service.ErrorTypeQuotaExceeded, service.ErrorTypeAlreadyExists:
		return http.StatusConflict
	case service.ErrorTypePolicyViolation:
		return http.StatusNotAcceptable
	case service.ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	case service.ErrorTypeExternalError, service.ErrorTypePartialFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps service errors to HTTP responses.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var svcErr *service.ServiceError
	if !errors.As(err, &svcErr) {
		h.logger.Error("unclassified handler error",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		svcErr = service.NewInternalError("Internal server error", "An unexpected error occurred", err)
	}

	status := httpStatusFor(svcErr.Type)
	body := problem{
		Type:     string(svcErr.Type),
		Status:   status,
		Title:    svcErr.Message,
		Detail:   svcErr.Detail,
		Instance: r.URL.Path,
	}
	switch svcErr.Type {
	case service.ErrorTypeQuotaExceeded:
		body.Payload = map[string]any{"clones": svcErr.Clones}
	case service.ErrorTypePolicyViolation:
		body.Payload = map[string]any{"violations": svcErr.Violations}
	case service.ErrorTypePartialFailure:
		body.Payload = map[string]any{"clone_name": svcErr.CloneName}
	}
	h.writeJSON(w, status, body)
}
