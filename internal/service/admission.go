package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dwh-project/clone-governor/internal/metrics"
	"github.com/dwh-project/clone-governor/internal/platform"
	"github.com/dwh-project/clone-governor/internal/store"
	"github.com/dwh-project/clone-governor/internal/store/model"
	"github.com/google/uuid"
)

// CloneRequest is one admission request as received from the caller.
// Actor identity is externally authenticated; this service only decides
// whether the request is admissible.
type CloneRequest struct {
	Actor          string
	Environment    string
	SourceDatabase string
	SourceSchema   string
	Kind           string
	WithData       bool
	Classification string
	Metadata       map[string]string
}

// ReplaceRequest composes "delete one clone" with "request a new one".
// When CloneIDOrName is empty the actor's oldest active clone in the
// target environment is deleted, and only if the actor is at quota.
type ReplaceRequest struct {
	CloneRequest
	CloneIDOrName string
}

// ScanReport summarizes one compliance scan over existing clones.
type ScanReport struct {
	Scanned    int       `json:"scanned"`
	Findings   []Finding `json:"findings"`
	Violations int       `json:"violations"`
}

// AdmissionService is the clone admission controller: it owns the quota
// check, naming, policy evaluation, the delegated platform calls, the
// ownership indirection, and the registry commit.
type AdmissionService interface {
	RequestClone(ctx context.Context, req CloneRequest) (*model.Clone, []Finding, error)
	DeleteClone(ctx context.Context, actor, idOrName string, force bool) error
	ReplaceClone(ctx context.Context, req ReplaceRequest) (*model.Clone, []Finding, error)
	ListClones(ctx context.Context, actor string, environment *string, all bool) (model.CloneList, error)
	// ScanCompliance evaluates MAX_AGE policies against existing ACTIVE
	// clones, recording violations for every match.
	ScanCompliance(ctx context.Context, environment *string) (*ScanReport, error)
}

// AdmissionConfig carries the tunables the controller needs.
type AdmissionConfig struct {
	// CopyTimeout bounds the delegated copy operation.
	CopyTimeout time.Duration
	// RolePrefix prefixes derived indirection role names.
	RolePrefix string
	// AdminRoleTemplate derives the platform administrative role that
	// receives the write role (ownership indirection); %s is the
	// environment tag.
	AdminRoleTemplate string
}

type admissionService struct {
	store    store.Store
	platform platform.DataPlatform
	limits   LimitService
	audit    AuditRecorder
	metrics  metrics.Metrics
	logger   *slog.Logger
	cfg      AdmissionConfig
	now      func() time.Time
}

var _ AdmissionService = (*admissionService)(nil)

// NewAdmissionService creates the admission controller.
func NewAdmissionService(
	dataStore store.Store,
	dataPlatform platform.DataPlatform,
	limits LimitService,
	audit AuditRecorder,
	m metrics.Metrics,
	logger *slog.Logger,
	cfg AdmissionConfig,
) AdmissionService {
	return &admissionService{
		store:    dataStore,
		platform: dataPlatform,
		limits:   limits,
		audit:    audit,
		metrics:  m,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

func validateCloneRequest(req CloneRequest) error {
	if req.Actor == "" {
		return NewInvalidArgumentError("actor is required", "The requesting actor identity must be present")
	}
	if !ValidEnvironment(req.Environment) {
		return NewInvalidArgumentError(
			"Unknown environment",
			fmt.Sprintf("Environment '%s' is not one of DEV, TST, ACC, PRD", req.Environment),
		)
	}
	if req.Kind != model.CloneKindSchema && req.Kind != model.CloneKindDatabase {
		return NewInvalidArgumentError(
			"Unknown clone kind",
			fmt.Sprintf("Kind '%s' is not one of SCHEMA, DATABASE", req.Kind),
		)
	}
	if err := platform.ValidateIdentifier(req.SourceDatabase); err != nil {
		return NewInvalidArgumentError("Invalid source database", err.Error())
	}
	if req.Kind == model.CloneKindSchema {
		if req.SourceSchema == "" {
			return NewInvalidArgumentError(
				"source schema is required",
				"SCHEMA clones must name the schema to copy",
			)
		}
		if err := platform.ValidateIdentifier(req.SourceSchema); err != nil {
			return NewInvalidArgumentError("Invalid source schema", err.Error())
		}
	}
	if platform.SanitizeIdentifier(req.Actor) == "" {
		return NewInvalidArgumentError(
			"actor name not representable",
			"The actor name contains no alphanumeric characters to embed in derived names",
		)
	}
	return nil
}

func kindAllowed(limits *model.LimitConfig, kind string) bool {
	if kind == model.CloneKindSchema {
		return limits.AllowSchemaClones
	}
	return limits.AllowDatabaseClones
}

// RequestClone admits or rejects one clone request. The quota count,
// sequence assignment and registry insert are serialized per
// (actor, environment) through the store's admission lock; the registry
// row is committed ACTIVE before the delegated copy so concurrent
// requests see in-flight provisioning in their quota count.
func (s *admissionService) RequestClone(ctx context.Context, req CloneRequest) (*model.Clone, []Finding, error) {
	if err := validateCloneRequest(req); err != nil {
		return nil, nil, s.rejectAdmission(ctx, req, err)
	}

	limits, err := s.limits.Get(ctx, req.Environment)
	if err != nil {
		return nil, nil, s.rejectAdmission(ctx, req, err)
	}
	if !kindAllowed(limits, req.Kind) {
		denyErr := NewPolicyDeniedError(req.Kind, req.Environment)
		s.auditAdmission(ctx, req, nil, "", model.AuditStatusDenied, denyErr.Message, nil)
		s.metrics.IncAdmissions(req.Environment, "denied")
		return nil, nil, denyErr
	}

	policies, err := s.store.Policy().List(ctx, store.PolicyFilter{
		Active:      boolPtr(true),
		Environment: &req.Environment,
	})
	if err != nil {
		return nil, nil, s.rejectAdmission(ctx, req,
			NewInternalError("Failed to load policies", err.Error(), err))
	}

	var (
		clone         *model.Clone
		candidateName string
		findings      []Finding
	)
	admissionErr := s.store.Clone().WithAdmissionLock(ctx, req.Actor, req.Environment, func(tx store.Clone) error {
		envCount, err := tx.CountActive(ctx, req.Actor, &req.Environment)
		if err != nil {
			return NewInternalError("Failed to count active clones", err.Error(), err)
		}
		// The cross-environment total must also be read under the lock,
		// not before it.
		totalActive, err := tx.CountActive(ctx, req.Actor, nil)
		if err != nil {
			return NewInternalError("Failed to count active clones", err.Error(), err)
		}
		if envCount >= int64(limits.MaxClonesPerUser) {
			held, err := tx.List(ctx, store.CloneFilter{
				Owner:       &req.Actor,
				Environment: &req.Environment,
				State:       strPtr(model.CloneStateActive),
			})
			if err != nil {
				return NewInternalError("Failed to list active clones", err.Error(), err)
			}
			return NewQuotaExceededError(req.Actor, req.Environment, limits.MaxClonesPerUser, held)
		}

		sourceKey := SourceKey(req.Kind, req.SourceDatabase, req.SourceSchema)
		seq, err := tx.NextSequence(ctx, req.Actor, req.Environment, sourceKey)
		if err != nil {
			return NewInternalError("Failed to compute clone sequence", err.Error(), err)
		}

		sourceName := req.SourceDatabase
		if req.Kind == model.CloneKindSchema {
			sourceName = req.SourceSchema
		}
		name := CloneName(sourceName, req.Actor, seq)
		candidateName = name

		var expiresAt *time.Time
		if limits.DefaultExpiryHours != nil {
			t := s.now().Add(time.Duration(*limits.DefaultExpiryHours) * time.Hour)
			expiresAt = &t
		}

		candidate := Candidate{
			Name:           name,
			Kind:           req.Kind,
			Environment:    req.Environment,
			SourceDatabase: req.SourceDatabase,
			SourceSchema:   req.SourceSchema,
			Owner:          req.Actor,
			WithData:       req.WithData,
			Classification: req.Classification,
			ExpiresAt:      expiresAt,
		}
		quota := QuotaState{
			ActiveInEnvironment: int(envCount),
			ActiveTotal:         int(totalActive),
		}

		var blocked bool
		findings, blocked = Evaluate(candidate, quota, policies, s.now())
		if blocked {
			return NewPolicyViolationError(findings)
		}

		created, err := tx.Create(ctx, model.Clone{
			ID:             uuid.New().String(),
			Name:           name,
			Kind:           req.Kind,
			Environment:    req.Environment,
			SourceDatabase: req.SourceDatabase,
			SourceSchema:   req.SourceSchema,
			SourceKey:      sourceKey,
			Owner:          req.Actor,
			Sequence:       seq,
			ReadRole:       ReadRoleName(s.cfg.RolePrefix, name),
			WriteRole:      WriteRoleName(s.cfg.RolePrefix, name),
			WithData:       req.WithData,
			State:          model.CloneStateActive,
			ExpiresAt:      expiresAt,
			Metadata:       req.Metadata,
		})
		if err != nil {
			return processCloneStoreError(err, name, "register")
		}
		clone = created
		return nil
	})

	cloneID := ""
	if clone != nil {
		cloneID = clone.ID
	}
	s.recordFindings(ctx, req.Actor, cloneID, candidateName, findings)

	if admissionErr != nil {
		var svcErr *ServiceError
		if !errors.As(admissionErr, &svcErr) {
			svcErr = NewInternalError("Admission failed", admissionErr.Error(), admissionErr)
		}
		status := model.AuditStatusFailed
		outcome := "failed"
		if svcErr.Type == ErrorTypePolicyViolation {
			status = model.AuditStatusBlocked
			outcome = "blocked"
		} else if svcErr.Type == ErrorTypeQuotaExceeded {
			status = model.AuditStatusDenied
			outcome = "quota_exceeded"
		}
		s.auditAdmission(ctx, req, nil, candidateName, status, svcErr.Message, findings)
		s.metrics.IncAdmissions(req.Environment, outcome)
		return nil, findings, svcErr
	}

	// Registry row exists; everything from here on must account for it.
	if err := s.provision(ctx, req, clone); err != nil {
		var svcErr *ServiceError
		errors.As(err, &svcErr)
		switch svcErr.Type {
		case ErrorTypePartialFailure:
			s.auditAdmission(ctx, req, clone, candidateName, model.AuditStatusPartialFailure, svcErr.Error(), findings)
			s.metrics.IncAdmissions(req.Environment, "partial_failure")
		default:
			// Copy never happened: release the registry slot.
			if _, derr := s.store.Clone().MarkDeleted(ctx, clone.ID, req.Actor, "provisioning failed: "+svcErr.Message, s.now()); derr != nil {
				s.logger.Error("failed to release registry slot after copy failure",
					slog.String("clone", clone.Name), slog.String("error", derr.Error()))
			}
			s.auditAdmission(ctx, req, clone, candidateName, model.AuditStatusFailed, svcErr.Error(), findings)
			s.metrics.IncAdmissions(req.Environment, "failed")
		}
		return nil, findings, svcErr
	}

	s.auditAdmission(ctx, req, clone, candidateName, model.AuditStatusSuccess, "", findings)
	s.metrics.IncAdmissions(req.Environment, "success")
	s.logger.Info("clone admitted",
		slog.String("clone", clone.Name),
		slog.String("owner", clone.Owner),
		slog.String("environment", clone.Environment),
		slog.Int64("sequence", clone.Sequence),
	)
	return clone, findings, nil
}

// provision runs the delegated copy and the role indirection chain.
// A copy failure is retryable (the registry slot is released by the
// caller); a post-copy failure is a PARTIAL_FAILURE because the cloned
// resource already exists and is never rolled back automatically.
func (s *admissionService) provision(ctx context.Context, req CloneRequest, clone *model.Clone) error {
	qualified := QualifiedCloneName(clone.Kind, clone.SourceDatabase, clone.Name)

	copyCtx, cancel := context.WithTimeout(ctx, s.cfg.CopyTimeout)
	defer cancel()

	started := s.now()
	var copyErr error
	if clone.Kind == model.CloneKindSchema {
		src := clone.SourceDatabase + "." + clone.SourceSchema
		copyErr = s.platform.CopySchema(copyCtx, src, qualified, clone.WithData)
	} else {
		copyErr = s.platform.CopyDatabase(copyCtx, clone.SourceDatabase, qualified, clone.WithData)
	}
	s.metrics.ObserveCopyDuration(clone.Kind, s.now().Sub(started).Seconds())
	if copyErr != nil {
		if errors.Is(copyErr, context.DeadlineExceeded) {
			return NewTimeoutError("copy "+clone.Name, copyErr)
		}
		return NewExternalError("copy "+clone.Name, copyErr)
	}

	objectKind := platform.ObjectSchema
	if clone.Kind == model.CloneKindDatabase {
		objectKind = platform.ObjectDatabase
	}
	adminRole := fmt.Sprintf(s.cfg.AdminRoleTemplate, clone.Environment)

	steps := []func(context.Context) error{
		func(ctx context.Context) error { return s.platform.CreateAccessRole(ctx, clone.ReadRole) },
		func(ctx context.Context) error { return s.platform.CreateAccessRole(ctx, clone.WriteRole) },
		func(ctx context.Context) error {
			return s.platform.Grant(ctx, platform.Grant{
				Grantee:   clone.ReadRole,
				Privilege: platform.PrivilegeRead,
				On:        platform.GrantTarget{Kind: objectKind, Name: qualified},
			})
		},
		func(ctx context.Context) error {
			return s.platform.Grant(ctx, platform.Grant{
				Grantee:   clone.WriteRole,
				Privilege: platform.PrivilegeUsage,
				On:        platform.GrantTarget{Kind: platform.ObjectRole, Name: clone.ReadRole},
			})
		},
		func(ctx context.Context) error {
			return s.platform.Grant(ctx, platform.Grant{
				Grantee:   clone.WriteRole,
				Privilege: platform.PrivilegeWrite,
				On:        platform.GrantTarget{Kind: objectKind, Name: qualified},
			})
		},
		// The actor receives the write role; the underlying resource is
		// owned through the environment's administrative role, never
		// granted to the actor directly.
		func(ctx context.Context) error {
			return s.platform.Grant(ctx, platform.Grant{
				Grantee:   clone.Owner,
				Privilege: platform.PrivilegeUsage,
				On:        platform.GrantTarget{Kind: platform.ObjectRole, Name: clone.WriteRole},
			})
		},
		func(ctx context.Context) error {
			return s.platform.Grant(ctx, platform.Grant{
				Grantee:   adminRole,
				Privilege: platform.PrivilegeUsage,
				On:        platform.GrantTarget{Kind: platform.ObjectRole, Name: clone.WriteRole},
			})
		},
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			return NewPartialFailureError(clone.Name, err)
		}
	}
	return nil
}

// DeleteClone removes a clone interactively. Indirection roles are
// dropped best-effort before the resource so no dangling grants survive
// the drop; deleting an already-deleted clone is a no-op.
func (s *admissionService) DeleteClone(ctx context.Context, actor, idOrName string, force bool) error {
	clone, err := s.store.Clone().Get(ctx, idOrName)
	if err != nil {
		if errors.Is(err, store.ErrCloneNotFound) {
			notFound := NewCloneNotFoundError(idOrName)
			s.auditDeletion(ctx, actor, nil, idOrName, model.AuditStatusFailed, notFound.Message)
			return notFound
		}
		intErr := NewInternalError("Failed to look up clone", err.Error(), err)
		s.auditDeletion(ctx, actor, nil, idOrName, model.AuditStatusFailed, intErr.Message)
		return intErr
	}

	if clone.State == model.CloneStateDeleted {
		s.auditDeletion(ctx, actor, clone, idOrName, model.AuditStatusSuccess, "already deleted")
		return nil
	}

	if clone.Owner != actor && !force {
		denied := NewPermissionDeniedError(actor, clone.Name)
		s.auditDeletion(ctx, actor, clone, idOrName, model.AuditStatusDenied, denied.Detail)
		s.metrics.IncDeletions(clone.Environment, "denied")
		return denied
	}

	// Roles first, best-effort: a failed role drop must not strand the
	// underlying resource.
	for _, role := range []string{clone.WriteRole, clone.ReadRole} {
		if err := s.platform.Drop(ctx, platform.ObjectRole, role); err != nil {
			s.logger.Warn("role drop failed, continuing",
				slog.String("role", role),
				slog.String("clone", clone.Name),
				slog.String("error", err.Error()),
			)
		}
	}

	objectKind := platform.ObjectSchema
	if clone.Kind == model.CloneKindDatabase {
		objectKind = platform.ObjectDatabase
	}
	qualified := QualifiedCloneName(clone.Kind, clone.SourceDatabase, clone.Name)
	if err := s.platform.Drop(ctx, objectKind, qualified); err != nil && !errors.Is(err, platform.ErrObjectNotFound) {
		extErr := NewExternalError("drop "+clone.Name, err)
		s.auditDeletion(ctx, actor, clone, idOrName, model.AuditStatusFailed, extErr.Error())
		s.metrics.IncDeletions(clone.Environment, "failed")
		return extErr
	}

	transitioned, err := s.store.Clone().MarkDeleted(ctx, clone.ID, actor, "interactive delete", s.now())
	if err != nil {
		intErr := NewInternalError("Failed to mark clone deleted", err.Error(), err)
		s.auditDeletion(ctx, actor, clone, idOrName, model.AuditStatusFailed, intErr.Message)
		return intErr
	}
	note := ""
	if !transitioned {
		// A concurrent delete won the transition; nothing left to do.
		note = "already deleted"
	}
	s.auditDeletion(ctx, actor, clone, idOrName, model.AuditStatusSuccess, note)
	s.metrics.IncDeletions(clone.Environment, "success")
	s.logger.Info("clone deleted",
		slog.String("clone", clone.Name),
		slog.String("actor", actor),
		slog.Bool("force", force),
	)
	return nil
}

// ReplaceClone deletes one clone and requests a replacement. The request
// step never runs when the delete fails.
func (s *admissionService) ReplaceClone(ctx context.Context, req ReplaceRequest) (*model.Clone, []Finding, error) {
	if err := validateCloneRequest(req.CloneRequest); err != nil {
		return nil, nil, s.rejectAdmission(ctx, req.CloneRequest, err)
	}

	var replaced *model.Clone
	if req.CloneIDOrName != "" {
		// The named target must still be active: replacing an already
		// deleted clone frees no slot, which is never what the caller
		// meant.
		existing, err := s.store.Clone().GetActive(ctx, req.CloneIDOrName)
		if err != nil {
			if errors.Is(err, store.ErrCloneNotFound) {
				return nil, nil, NewCloneNotFoundError(req.CloneIDOrName)
			}
			return nil, nil, NewInternalError("Failed to look up clone", err.Error(), err)
		}
		replaced = existing
	} else {
		limits, err := s.limits.Get(ctx, req.Environment)
		if err != nil {
			return nil, nil, err
		}
		held, err := s.store.Clone().List(ctx, store.CloneFilter{
			Owner:       &req.Actor,
			Environment: &req.Environment,
			State:       strPtr(model.CloneStateActive),
		})
		if err != nil {
			return nil, nil, NewInternalError("Failed to list active clones", err.Error(), err)
		}
		if len(held) >= limits.MaxClonesPerUser {
			// List is ordered oldest first.
			replaced = &held[0]
		}
	}

	if replaced != nil {
		if err := s.DeleteClone(ctx, req.Actor, replaced.ID, false); err != nil {
			return nil, nil, err
		}
	}

	clone, findings, err := s.RequestClone(ctx, req.CloneRequest)
	if err != nil || replaced == nil {
		return clone, findings, err
	}
	s.audit.Record(ctx, AuditEntry{
		Operation:   model.AuditOpCloneReplace,
		Actor:       req.Actor,
		Environment: req.Environment,
		CloneID:     clone.ID,
		CloneName:   clone.Name,
		Status:      model.AuditStatusSuccess,
		Metadata:    map[string]string{"replaced": replaced.Name},
	})
	return clone, findings, nil
}

func (s *admissionService) ListClones(ctx context.Context, actor string, environment *string, all bool) (model.CloneList, error) {
	if environment != nil && !ValidEnvironment(*environment) {
		return nil, NewInvalidArgumentError(
			"Unknown environment",
			fmt.Sprintf("Environment '%s' is not one of DEV, TST, ACC, PRD", *environment),
		)
	}
	filter := store.CloneFilter{
		Environment: environment,
		State:       strPtr(model.CloneStateActive),
	}
	if !all {
		filter.Owner = &actor
	}
	clones, err := s.store.Clone().List(ctx, filter)
	if err != nil {
		return nil, NewInternalError("Failed to list clones", err.Error(), err)
	}
	return clones, nil
}

func (s *admissionService) ScanCompliance(ctx context.Context, environment *string) (*ScanReport, error) {
	maxAge := model.PolicyTypeMaxAge
	policies, err := s.store.Policy().List(ctx, store.PolicyFilter{
		Active:     boolPtr(true),
		PolicyType: &maxAge,
	})
	if err != nil {
		return nil, NewInternalError("Failed to load policies", err.Error(), err)
	}

	clones, err := s.store.Clone().List(ctx, store.CloneFilter{
		Environment: environment,
		State:       strPtr(model.CloneStateActive),
	})
	if err != nil {
		return nil, NewInternalError("Failed to list clones", err.Error(), err)
	}

	report := &ScanReport{Scanned: len(clones), Findings: []Finding{}}
	now := s.now()
	for _, clone := range clones {
		for _, policy := range policies {
			finding := EvaluateCloneAge(clone, policy, now)
			if finding == nil {
				continue
			}
			report.Findings = append(report.Findings, *finding)
			s.recordFindings(ctx, clone.Owner, clone.ID, clone.Name, []Finding{*finding})
		}
	}
	report.Violations = len(report.Findings)

	env := ""
	if environment != nil {
		env = *environment
	}
	s.audit.Record(ctx, AuditEntry{
		Operation:   model.AuditOpComplianceScan,
		Actor:       "system",
		Environment: env,
		Status:      model.AuditStatusSuccess,
		Findings:    report.Findings,
		Metadata:    map[string]string{"scanned": fmt.Sprintf("%d", report.Scanned)},
	})
	return report, nil
}

// recordFindings persists a Violation row for every finding, blocking or
// not, preserving the full compliance trail. cloneName is the derived
// candidate name even when no registry row was committed, so blocked
// requests still identify what they tried to create.
func (s *admissionService) recordFindings(ctx context.Context, actor, cloneID, cloneName string, findings []Finding) {
	for _, f := range findings {
		violation := model.Violation{
			ID:         uuid.New().String(),
			PolicyID:   f.PolicyID,
			PolicyName: f.PolicyName,
			PolicyType: f.PolicyType,
			CloneID:    cloneID,
			CloneName:  cloneName,
			Actor:      actor,
			Severity:   f.Severity,
			Detail:     map[string]any{"message": f.Message, "params": f.Detail},
			State:      model.ViolationStateOpen,
		}
		if _, err := s.store.Violation().Create(ctx, violation); err != nil {
			s.logger.Error("failed to record policy violation",
				slog.String("policy", f.PolicyName),
				slog.String("error", err.Error()),
			)
		}
		s.metrics.IncPolicyFindings(f.PolicyType, f.Severity)
	}
}

// rejectAdmission audits a request rejected before the admission lock
// was ever taken, preserving one audit record per request.
func (s *admissionService) rejectAdmission(ctx context.Context, req CloneRequest, err error) error {
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		svcErr = NewInternalError("Admission failed", err.Error(), err)
	}
	s.auditAdmission(ctx, req, nil, "", model.AuditStatusFailed, svcErr.Message, nil)
	s.metrics.IncAdmissions(req.Environment, "failed")
	return svcErr
}

func (s *admissionService) auditAdmission(ctx context.Context, req CloneRequest, clone *model.Clone, candidateName, status, errDetail string, findings []Finding) {
	entry := AuditEntry{
		Operation:   model.AuditOpCloneCreate,
		Actor:       req.Actor,
		Environment: req.Environment,
		CloneName:   candidateName,
		Status:      status,
		ErrorDetail: errDetail,
		Findings:    findings,
	}
	if clone != nil {
		entry.CloneID = clone.ID
		entry.CloneName = clone.Name
	}
	s.audit.Record(ctx, entry)
}

func (s *admissionService) auditDeletion(ctx context.Context, actor string, clone *model.Clone, idOrName, status, detail string) {
	entry := AuditEntry{
		Operation:   model.AuditOpCloneDelete,
		Actor:       actor,
		Status:      status,
		ErrorDetail: detail,
		CloneName:   idOrName,
	}
	if clone != nil {
		entry.CloneID = clone.ID
		entry.CloneName = clone.Name
		entry.Environment = clone.Environment
	}
	s.audit.Record(ctx, entry)
}

func boolPtr(b bool) *bool { return &b }

func strPtr(s string) *string { return &s }
