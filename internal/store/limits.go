package store

import (
	"context"
	"errors"

	"github.com/dwh-project/clone-governor/internal/store/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrLimitNotFound = errors.New("limit configuration not found")

type Limit interface {
	Get(ctx context.Context, environment string) (*model.LimitConfig, error)
	// Upsert replaces the environment's configuration row, creating it if absent.
	Upsert(ctx context.Context, cfg model.LimitConfig) (*model.LimitConfig, error)
	List(ctx context.Context) (model.LimitConfigList, error)
}

type LimitStore struct {
	db *gorm.DB
}

var _ Limit = (*LimitStore)(nil)

func NewLimit(db *gorm.DB) Limit {
	return &LimitStore{db: db}
}

func (s *LimitStore) Get(ctx context.Context, environment string) (*model.LimitConfig, error) {
	var cfg model.LimitConfig
	if err := s.db.WithContext(ctx).First(&cfg, "environment = ?", environment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLimitNotFound
		}
		return nil, err
	}
	return &cfg, nil
}

func (s *LimitStore) Upsert(ctx context.Context, cfg model.LimitConfig) (*model.LimitConfig, error) {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "environment"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"max_clones_per_user",
			"default_expiry_hours",
			"allow_schema_clones",
			"allow_database_clones",
			"updated_by",
			"update_time",
		}),
	}).Create(&cfg).Error
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *LimitStore) List(ctx context.Context) (model.LimitConfigList, error) {
	var configs model.LimitConfigList
	if err := s.db.WithContext(ctx).Order("environment ASC").Find(&configs).Error; err != nil {
		return nil, err
	}
	return configs, nil
}
