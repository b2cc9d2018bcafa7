package store

import (
	"context"
	"time"

	"github.com/dwh-project/clone-governor/internal/store/model"
	"gorm.io/gorm"
)

// AuditFilter contains optional fields for filtering audit queries.
// nil fields are ignored (not filtered).
type AuditFilter struct {
	Operation *string
	Actor     *string
	CloneName *string
	Status    *string
	Limit     int
}

type Audit interface {
	Create(ctx context.Context, record model.AuditRecord) (*model.AuditRecord, error)
	List(ctx context.Context, filter AuditFilter) (model.AuditRecordList, error)
	// PurgeBefore removes audit records created strictly before the cutoff.
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type AuditStore struct {
	db *gorm.DB
}

var _ Audit = (*AuditStore)(nil)

func NewAudit(db *gorm.DB) Audit {
	return &AuditStore{db: db}
}

func (s *AuditStore) Create(ctx context.Context, record model.AuditRecord) (*model.AuditRecord, error) {
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *AuditStore) List(ctx context.Context, filter AuditFilter) (model.AuditRecordList, error) {
	var records model.AuditRecordList
	query := s.db.WithContext(ctx)
	if filter.Operation != nil {
		query = query.Where("operation = ?", *filter.Operation)
	}
	if filter.Actor != nil {
		query = query.Where("actor = ?", *filter.Actor)
	}
	if filter.CloneName != nil {
		query = query.Where("clone_name = ?", *filter.CloneName)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	limit := 100
	if filter.Limit > 0 {
		limit = filter.Limit
	}
	if err := query.Order("create_time DESC, id ASC").Limit(limit).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (s *AuditStore) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("create_time < ?", cutoff).
		Delete(&model.AuditRecord{})
	return result.RowsAffected, result.Error
}
