package service

import (
	"errors"
	"fmt"

	"github.com/dwh-project/clone-governor/internal/store"
	"github.com/dwh-project/clone-governor/internal/store/model"
)

// ErrorType represents the type of service error
type ErrorType string

const (
	ErrorTypeInvalidArgument  ErrorType = "INVALID_ARGUMENT"
	ErrorTypeQuotaExceeded    ErrorType = "QUOTA_EXCEEDED"
	ErrorTypePolicyDenied     ErrorType = "POLICY_DENIED"    // Clone kind disabled by limit configuration
	ErrorTypePolicyViolation  ErrorType = "POLICY_VIOLATION" // Blocked by compliance policy
	ErrorTypeNotFound         ErrorType = "NOT_FOUND"
	ErrorTypePermissionDenied ErrorType = "PERMISSION_DENIED"
	ErrorTypeAlreadyExists    ErrorType = "ALREADY_EXISTS"
	ErrorTypePartialFailure   ErrorType = "PARTIAL_FAILURE" // Resource created, indirection incomplete
	ErrorTypeTimeout          ErrorType = "TIMEOUT"
	ErrorTypeExternalError    ErrorType = "EXTERNAL_ERROR"
	ErrorTypeInternal         ErrorType = "INTERNAL"
)

// ServiceError represents a structured error from the service layer
type ServiceError struct {
	Type    ErrorType
	Message string
	Detail  string
	Err     error

	// Clones carries the actor's current clone list on QUOTA_EXCEEDED so
	// callers can offer delete-and-retry.
	Clones model.CloneList
	// Violations carries the evaluated findings on POLICY_VIOLATION.
	Violations []Finding
	// CloneName identifies the partially-provisioned clone on
	// PARTIAL_FAILURE for manual or automated cleanup.
	CloneName string
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewInvalidArgumentError creates a new invalid argument error
func NewInvalidArgumentError(message, detail string) *ServiceError {
	return &ServiceError{
		Type:    ErrorTypeInvalidArgument,
		Message: message,
		Detail:  detail,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message, detail string) *ServiceError {
	return &ServiceError{
		Type:    ErrorTypeNotFound,
		Message: message,
		Detail:  detail,
	}
}

func NewCloneNotFoundError(idOrName string) *ServiceError {
	return NewNotFoundError("Clone not found", fmt.Sprintf("No active clone with ID or name '%s'", idOrName))
}

func NewPolicyNotFoundError(name string) *ServiceError {
	return NewNotFoundError("Policy not found", fmt.Sprintf("No policy named '%s'", name))
}

func NewQuotaExceededError(owner, environment string, limit int, clones model.CloneList) *ServiceError {
	return &ServiceError{
		Type:    ErrorTypeQuotaExceeded,
		Message: "Clone quota exceeded",
		Detail:  fmt.Sprintf("Actor '%s' already holds %d of %d allowed clones in environment '%s'", owner, len(clones), limit, environment),
		Clones:  clones,
	}
}

func NewPolicyDeniedError(kind, environment string) *ServiceError {
	return &ServiceError{
		Type:    ErrorTypePolicyDenied,
		Message: fmt.Sprintf("%s clones are disabled in environment '%s'", kind, environment),
		Detail:  "The environment's limit configuration does not permit this clone kind",
	}
}

func NewPolicyViolationError(findings []Finding) *ServiceError {
	return &ServiceError{
		Type:       ErrorTypePolicyViolation,
		Message:    "Clone request blocked by policy",
		Detail:     summarizeFindings(findings),
		Violations: findings,
	}
}

func NewPermissionDeniedError(actor, cloneName string) *ServiceError {
	return &ServiceError{
		Type:    ErrorTypePermissionDenied,
		Message: "Permission denied",
		Detail:  fmt.Sprintf("Actor '%s' does not own clone '%s' and force was not set", actor, cloneName),
	}
}

func NewPartialFailureError(cloneName string, err error) *ServiceError {
	return &ServiceError{
		Type:      ErrorTypePartialFailure,
		Message:   fmt.Sprintf("Clone '%s' was created but access indirection is incomplete", cloneName),
		Detail:    "The cloned resource exists; roles or grants failed and need cleanup",
		Err:       err,
		CloneName: cloneName,
	}
}

func NewTimeoutError(operation string, err error) *ServiceError {
	return &ServiceError{
		Type:    ErrorTypeTimeout,
		Message: fmt.Sprintf("Operation '%s' timed out", operation),
		Detail:  "The data platform did not complete the operation within the configured deadline",
		Err:     err,
	}
}

func NewExternalError(operation string, err error) *ServiceError {
	return &ServiceError{
		Type:    ErrorTypeExternalError,
		Message: fmt.Sprintf("Data platform operation '%s' failed", operation),
		Detail:  err.Error(),
		Err:     err,
	}
}

// NewAlreadyExistsError creates a new already exists error
func NewAlreadyExistsError(message, detail string) *ServiceError {
	return &ServiceError{
		Type:    ErrorTypeAlreadyExists,
		Message: message,
		Detail:  detail,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message, detail string, err error) *ServiceError {
	return &ServiceError{
		Type:    ErrorTypeInternal,
		Message: message,
		Detail:  detail,
		Err:     err,
	}
}

// processCloneStoreError maps clone store sentinel errors to service errors.
func processCloneStoreError(err error, idOrName, operation string) *ServiceError {
	if errors.Is(err, store.ErrCloneNotFound) {
		return NewCloneNotFoundError(idOrName)
	}
	if errors.Is(err, store.ErrCloneNameTaken) || errors.Is(err, store.ErrSequenceTaken) {
		return NewAlreadyExistsError(
			"Concurrent clone creation collision",
			fmt.Sprintf("Another request claimed the name or sequence for '%s'; retry", idOrName),
		)
	}
	return NewInternalError(fmt.Sprintf("Failed to %s clone", operation), err.Error(), err)
}

func summarizeFindings(findings []Finding) string {
	for _, f := range findings {
		if f.Blocking {
			return fmt.Sprintf("Policy '%s' (%s): %s", f.PolicyName, f.PolicyType, f.Message)
		}
	}
	if len(findings) > 0 {
		return findings[0].Message
	}
	return "Blocked by policy"
}
