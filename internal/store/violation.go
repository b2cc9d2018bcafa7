package store

import (
	"context"
	"errors"
	"time"

	"github.com/dwh-project/clone-governor/internal/store/model"
	"gorm.io/gorm"
)

var ErrViolationNotFound = errors.New("violation not found")

// ViolationFilter contains optional fields for filtering violation queries.
// nil fields are ignored (not filtered).
type ViolationFilter struct {
	State    *string
	Actor    *string
	Severity *string
	CloneID  *string
}

type Violation interface {
	Create(ctx context.Context, violation model.Violation) (*model.Violation, error)
	Get(ctx context.Context, id string) (*model.Violation, error)
	List(ctx context.Context, filter ViolationFilter) (model.ViolationList, error)
	// Resolve transitions an OPEN violation to RESOLVED. Resolving an
	// already-RESOLVED violation returns false without error.
	Resolve(ctx context.Context, id, resolvedBy, notes string, at time.Time) (bool, error)
	// PurgeResolvedBefore removes RESOLVED violations created strictly
	// before the cutoff. Open violations are never purged.
	PurgeResolvedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type ViolationStore struct {
	db *gorm.DB
}

var _ Violation = (*ViolationStore)(nil)

func NewViolation(db *gorm.DB) Violation {
	return &ViolationStore{db: db}
}

func (s *ViolationStore) Create(ctx context.Context, violation model.Violation) (*model.Violation, error) {
	if err := s.db.WithContext(ctx).Create(&violation).Error; err != nil {
		return nil, err
	}
	return &violation, nil
}

func (s *ViolationStore) Get(ctx context.Context, id string) (*model.Violation, error) {
	var violation model.Violation
	if err := s.db.WithContext(ctx).First(&violation, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrViolationNotFound
		}
		return nil, err
	}
	return &violation, nil
}

func (s *ViolationStore) List(ctx context.Context, filter ViolationFilter) (model.ViolationList, error) {
	var violations model.ViolationList
	query := s.db.WithContext(ctx)
	if filter.State != nil {
		query = query.Where("state = ?", *filter.State)
	}
	if filter.Actor != nil {
		query = query.Where("actor = ?", *filter.Actor)
	}
	if filter.Severity != nil {
		query = query.Where("severity = ?", *filter.Severity)
	}
	if filter.CloneID != nil {
		query = query.Where("clone_id = ?", *filter.CloneID)
	}
	if err := query.Order("create_time DESC, id ASC").Find(&violations).Error; err != nil {
		return nil, err
	}
	return violations, nil
}

func (s *ViolationStore) Resolve(ctx context.Context, id, resolvedBy, notes string, at time.Time) (bool, error) {
	result := s.db.WithContext(ctx).Model(&model.Violation{}).
		Where("id = ? AND state = ?", id, model.ViolationStateOpen).
		Updates(map[string]any{
			"state":            model.ViolationStateResolved,
			"resolved_by":      resolvedBy,
			"resolved_at":      at,
			"resolution_notes": notes,
		})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		var violation model.Violation
		err := s.db.WithContext(ctx).First(&violation, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrViolationNotFound
		}
		if err != nil {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

func (s *ViolationStore) PurgeResolvedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("state = ? AND create_time < ?", model.ViolationStateResolved, cutoff).
		Delete(&model.Violation{})
	return result.RowsAffected, result.Error
}
