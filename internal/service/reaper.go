package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/dwh-project/clone-governor/internal/metrics"
	"github.com/dwh-project/clone-governor/internal/store"
	"github.com/dwh-project/clone-governor/internal/store/model"
)

// SweepCandidate is one expired clone found by a sweep.
type SweepCandidate struct {
	CloneID   string     `json:"clone_id"`
	CloneName string     `json:"clone_name"`
	Owner     string     `json:"owner"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// SweepFailure is one clone the sweep failed to delete.
type SweepFailure struct {
	CloneName string `json:"clone_name"`
	Error     string `json:"error"`
}

// SweepReport summarizes one reaper pass.
type SweepReport struct {
	DryRun     bool             `json:"dry_run"`
	Candidates []SweepCandidate `json:"candidates"`
	Deleted    int              `json:"deleted"`
	Failures   []SweepFailure   `json:"failures"`
}

// Reaper finds clones past their expiry and removes them through the
// same deletion path as interactive deletes.
type Reaper interface {
	Sweep(ctx context.Context, environment *string, dryRun bool) (*SweepReport, error)
}

type reaper struct {
	store     store.Store
	admission AdmissionService
	audit     AuditRecorder
	metrics   metrics.Metrics
	logger    *slog.Logger
	actor     string
	now       func() time.Time
}

var _ Reaper = (*reaper)(nil)

// NewReaper creates the expiration reaper. actor is the administrative
// identity sweeps delete as.
func NewReaper(dataStore store.Store, admission AdmissionService, audit AuditRecorder, m metrics.Metrics, logger *slog.Logger, actor string) Reaper {
	return &reaper{
		store:     dataStore,
		admission: admission,
		audit:     audit,
		metrics:   m,
		logger:    logger,
		actor:     actor,
		now:       time.Now,
	}
}

func (r *reaper) Sweep(ctx context.Context, environment *string, dryRun bool) (*SweepReport, error) {
	expired, err := r.store.Clone().ListExpired(ctx, r.now(), environment)
	if err != nil {
		r.metrics.IncReaperSweeps("failed")
		return nil, NewInternalError("Failed to list expired clones", err.Error(), err)
	}

	report := &SweepReport{
		DryRun:     dryRun,
		Candidates: make([]SweepCandidate, 0, len(expired)),
		Failures:   []SweepFailure{},
	}
	for _, clone := range expired {
		report.Candidates = append(report.Candidates, SweepCandidate{
			CloneID:   clone.ID,
			CloneName: clone.Name,
			Owner:     clone.Owner,
			ExpiresAt: clone.ExpiresAt,
		})
	}

	if dryRun {
		r.metrics.IncReaperSweeps("dry_run")
		return report, nil
	}

	for _, clone := range expired {
		// The reaper acts as an administrative identity, so force=true.
		// DeleteClone is idempotent: a concurrent interactive delete of
		// the same clone is harmless.
		if err := r.admission.DeleteClone(ctx, r.actor, clone.ID, true); err != nil {
			report.Failures = append(report.Failures, SweepFailure{
				CloneName: clone.Name,
				Error:     err.Error(),
			})
			r.logger.Warn("reaper failed to delete expired clone",
				slog.String("clone", clone.Name),
				slog.String("error", err.Error()),
			)
			continue
		}
		report.Deleted++
		r.audit.Record(ctx, AuditEntry{
			Operation:   model.AuditOpCloneExpire,
			Actor:       r.actor,
			Environment: clone.Environment,
			CloneID:     clone.ID,
			CloneName:   clone.Name,
			Status:      model.AuditStatusSuccess,
			Metadata:    map[string]string{"owner": clone.Owner},
		})
		r.logger.Info("expired clone reaped",
			slog.String("clone", clone.Name),
			slog.String("owner", clone.Owner),
		)
	}

	r.metrics.IncReaperSweeps("executed")
	return report, nil
}

// RunReaper drives periodic sweeps until ctx is cancelled.
func RunReaper(ctx context.Context, r Reaper, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.Sweep(ctx, nil, false); err != nil {
				logger.Error("reaper sweep failed", slog.String("error", err.Error()))
			}
		}
	}
}
