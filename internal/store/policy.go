package store

import (
	"context"
	"errors"

	"github.com/dwh-project/clone-governor/internal/store/model"
	"gorm.io/gorm"
)

var ErrPolicyNotFound = errors.New("policy not found")

// PolicyFilter contains optional fields for filtering policy queries.
// nil fields are ignored (not filtered).
type PolicyFilter struct {
	PolicyType *string
	Active     *bool
	// Environment matches policies scoped to the environment plus
	// unscoped (global) policies.
	Environment *string
}

type Policy interface {
	// Create inserts the policy, deactivating any active policy with the
	// same name in the same transaction (re-creating replaces).
	Create(ctx context.Context, policy model.Policy) (*model.Policy, error)
	Get(ctx context.Context, id string) (*model.Policy, error)
	// GetByName resolves the single active policy carrying the name.
	GetByName(ctx context.Context, name string) (*model.Policy, error)
	List(ctx context.Context, filter PolicyFilter) (model.PolicyList, error)
	SetActive(ctx context.Context, name string, active bool) (*model.Policy, error)
	Delete(ctx context.Context, name string) error
}

type PolicyStore struct {
	db *gorm.DB
}

var _ Policy = (*PolicyStore)(nil)

func NewPolicy(db *gorm.DB) Policy {
	return &PolicyStore{db: db}
}

func (s *PolicyStore) Create(ctx context.Context, policy model.Policy) (*model.Policy, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Exactly one active policy per name: demote any current holder.
		if err := tx.Model(&model.Policy{}).
			Where("name = ? AND active = ?", policy.Name, true).
			Update("active", false).Error; err != nil {
			return err
		}
		return tx.Create(&policy).Error
	})
	if err != nil {
		return nil, err
	}
	return &policy, nil
}

func (s *PolicyStore) Get(ctx context.Context, id string) (*model.Policy, error) {
	var policy model.Policy
	if err := s.db.WithContext(ctx).First(&policy, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPolicyNotFound
		}
		return nil, err
	}
	return &policy, nil
}

func (s *PolicyStore) GetByName(ctx context.Context, name string) (*model.Policy, error) {
	var policy model.Policy
	err := s.db.WithContext(ctx).
		Where("name = ? AND active = ?", name, true).
		Order("create_time DESC").
		First(&policy).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPolicyNotFound
		}
		return nil, err
	}
	return &policy, nil
}

func (s *PolicyStore) List(ctx context.Context, filter PolicyFilter) (model.PolicyList, error) {
	var policies model.PolicyList
	query := s.db.WithContext(ctx)
	if filter.PolicyType != nil {
		query = query.Where("policy_type = ?", *filter.PolicyType)
	}
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}
	if filter.Environment != nil {
		query = query.Where("environment = ? OR environment = ''", *filter.Environment)
	}
	if err := query.Order("policy_type ASC, name ASC, create_time DESC").Find(&policies).Error; err != nil {
		return nil, err
	}
	return policies, nil
}

func (s *PolicyStore) SetActive(ctx context.Context, name string, active bool) (*model.Policy, error) {
	var policy model.Policy
	err := s.db.WithContext(ctx).
		Where("name = ?", name).
		Order("create_time DESC").
		First(&policy).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPolicyNotFound
		}
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&policy).Update("active", active).Error; err != nil {
		return nil, err
	}
	return &policy, nil
}

func (s *PolicyStore) Delete(ctx context.Context, name string) error {
	result := s.db.WithContext(ctx).Where("name = ?", name).Delete(&model.Policy{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPolicyNotFound
	}
	return nil
}
