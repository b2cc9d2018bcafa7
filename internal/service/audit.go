package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/dwh-project/clone-governor/internal/store"
	"github.com/dwh-project/clone-governor/internal/store/model"
	"github.com/google/uuid"
)

// AuditEntry is everything the recorder needs to append one audit record.
type AuditEntry struct {
	Operation   string
	CloneID     string
	CloneName   string
	PolicyName  string
	Actor       string
	Environment string
	Status      string
	ErrorDetail string
	Findings    []Finding
	Metadata    map[string]string
}

// AuditRecorder appends structured records of every admission decision,
// deletion and policy-management action.
type AuditRecorder interface {
	// Record never fails the caller: an audit-write failure is logged and
	// swallowed so administrative operations are not blocked by it. The
	// returned ID is empty when the write failed.
	Record(ctx context.Context, entry AuditEntry) string
	List(ctx context.Context, filter store.AuditFilter) (model.AuditRecordList, error)
	// Purge removes audit records and resolved violations older than the
	// retention cutoff.
	Purge(ctx context.Context, olderThan time.Duration) (*PurgeReport, error)
}

// PurgeReport summarizes one retention purge run.
type PurgeReport struct {
	Cutoff             time.Time `json:"cutoff"`
	AuditRecords       int64     `json:"audit_records"`
	ResolvedViolations int64     `json:"resolved_violations"`
}

type auditRecorder struct {
	store  store.Store
	logger *slog.Logger
	now    func() time.Time
}

var _ AuditRecorder = (*auditRecorder)(nil)

// NewAuditRecorder creates the audit recorder.
func NewAuditRecorder(dataStore store.Store, logger *slog.Logger) AuditRecorder {
	return &auditRecorder{
		store:  dataStore,
		logger: logger,
		now:    time.Now,
	}
}

func (r *auditRecorder) Record(ctx context.Context, entry AuditEntry) string {
	record := model.AuditRecord{
		ID:          uuid.New().String(),
		Operation:   entry.Operation,
		CloneID:     entry.CloneID,
		CloneName:   entry.CloneName,
		PolicyName:  entry.PolicyName,
		Actor:       entry.Actor,
		Environment: entry.Environment,
		Status:      entry.Status,
		ErrorDetail: entry.ErrorDetail,
		Violations:  toAuditViolations(entry.Findings),
		Metadata:    entry.Metadata,
	}

	if _, err := r.store.Audit().Create(ctx, record); err != nil {
		// Audit-write failure must not abort the primary operation.
		r.logger.Error("audit write failed",
			slog.String("operation", entry.Operation),
			slog.String("actor", entry.Actor),
			slog.String("status", entry.Status),
			slog.String("error", err.Error()),
		)
		return ""
	}
	return record.ID
}

func (r *auditRecorder) List(ctx context.Context, filter store.AuditFilter) (model.AuditRecordList, error) {
	records, err := r.store.Audit().List(ctx, filter)
	if err != nil {
		return nil, NewInternalError("Failed to list audit records", err.Error(), err)
	}
	return records, nil
}

func (r *auditRecorder) Purge(ctx context.Context, olderThan time.Duration) (*PurgeReport, error) {
	cutoff := r.now().Add(-olderThan)

	audits, err := r.store.Audit().PurgeBefore(ctx, cutoff)
	if err != nil {
		return nil, NewInternalError("Failed to purge audit records", err.Error(), err)
	}
	violations, err := r.store.Violation().PurgeResolvedBefore(ctx, cutoff)
	if err != nil {
		return nil, NewInternalError("Failed to purge resolved violations", err.Error(), err)
	}

	r.logger.Info("retention purge complete",
		slog.Time("cutoff", cutoff),
		slog.Int64("audit_records", audits),
		slog.Int64("resolved_violations", violations),
	)
	return &PurgeReport{
		Cutoff:             cutoff,
		AuditRecords:       audits,
		ResolvedViolations: violations,
	}, nil
}

// retentionPurgeInterval is how often the background retention loop runs.
// Expired rows only accumulate at human pace, so a daily pass is plenty.
const retentionPurgeInterval = 24 * time.Hour

// RunRetention drives periodic retention purges until ctx is cancelled.
func RunRetention(ctx context.Context, recorder AuditRecorder, retention time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(retentionPurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := recorder.Purge(ctx, retention); err != nil {
				logger.Error("retention purge failed", slog.String("error", err.Error()))
			}
		}
	}
}

func toAuditViolations(findings []Finding) []model.AuditViolation {
	if len(findings) == 0 {
		return nil
	}
	out := make([]model.AuditViolation, len(findings))
	for i, f := range findings {
		out[i] = model.AuditViolation{
			PolicyName: f.PolicyName,
			PolicyType: f.PolicyType,
			Severity:   f.Severity,
			Action:     f.Action,
			Message:    f.Message,
		}
	}
	return out
}
