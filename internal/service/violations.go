package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dwh-project/clone-governor/internal/store"
	"github.com/dwh-project/clone-governor/internal/store/model"
)

// ViolationService exposes the compliance-violation workflow: listing
// findings and resolving them administratively.
type ViolationService interface {
	ListViolations(ctx context.Context, filter store.ViolationFilter) (model.ViolationList, error)
	GetViolation(ctx context.Context, id string) (*model.Violation, error)
	// ResolveViolation transitions an OPEN violation to RESOLVED.
	// RESOLVED is terminal.
	ResolveViolation(ctx context.Context, id, resolvedBy, notes string) (*model.Violation, error)
}

type violationService struct {
	store store.Store
	audit AuditRecorder
	now   func() time.Time
}

var _ ViolationService = (*violationService)(nil)

// NewViolationService creates the violation workflow service.
func NewViolationService(dataStore store.Store, audit AuditRecorder) ViolationService {
	return &violationService{
		store: dataStore,
		audit: audit,
		now:   time.Now,
	}
}

func (s *violationService) ListViolations(ctx context.Context, filter store.ViolationFilter) (model.ViolationList, error) {
	violations, err := s.store.Violation().List(ctx, filter)
	if err != nil {
		return nil, NewInternalError("Failed to list violations", err.Error(), err)
	}
	return violations, nil
}

func (s *violationService) GetViolation(ctx context.Context, id string) (*model.Violation, error) {
	violation, err := s.store.Violation().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrViolationNotFound) {
			return nil, NewNotFoundError("Violation not found", fmt.Sprintf("No violation with ID '%s'", id))
		}
		return nil, NewInternalError("Failed to get violation", err.Error(), err)
	}
	return violation, nil
}

func (s *violationService) ResolveViolation(ctx context.Context, id, resolvedBy, notes string) (*model.Violation, error) {
	if resolvedBy == "" {
		return nil, NewInvalidArgumentError("resolver identity is required", "The resolving actor must be present")
	}

	transitioned, err := s.store.Violation().Resolve(ctx, id, resolvedBy, notes, s.now())
	if err != nil {
		if errors.Is(err, store.ErrViolationNotFound) {
			return nil, NewNotFoundError("Violation not found", fmt.Sprintf("No violation with ID '%s'", id))
		}
		return nil, NewInternalError("Failed to resolve violation", err.Error(), err)
	}
	if !transitioned {
		return nil, NewInvalidArgumentError(
			"Violation already resolved",
			fmt.Sprintf("Violation '%s' is RESOLVED; resolution is terminal", id),
		)
	}

	violation, err := s.store.Violation().Get(ctx, id)
	if err != nil {
		return nil, NewInternalError("Failed to reload violation", err.Error(), err)
	}

	s.audit.Record(ctx, AuditEntry{
		Operation:  model.AuditOpViolationResolve,
		PolicyName: violation.PolicyName,
		CloneID:    violation.CloneID,
		CloneName:  violation.CloneName,
		Actor:      resolvedBy,
		Status:     model.AuditStatusSuccess,
		Metadata:   map[string]string{"violation_id": id},
	})
	return violation, nil
}
