package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dwh-project/clone-governor/internal/store"
	"github.com/dwh-project/clone-governor/internal/store/model"
)

// LimitService serves per-environment quota configuration with a
// read-through cache invalidated on write. The store row stays the
// single source of truth.
type LimitService interface {
	Get(ctx context.Context, environment string) (*model.LimitConfig, error)
	Set(ctx context.Context, actor string, cfg model.LimitConfig) (*model.LimitConfig, error)
	List(ctx context.Context) (model.LimitConfigList, error)
}

type limitService struct {
	store store.Store
	audit AuditRecorder

	mu    sync.RWMutex
	cache map[string]model.LimitConfig
}

var _ LimitService = (*limitService)(nil)

// NewLimitService creates the limit configuration service.
func NewLimitService(dataStore store.Store, audit AuditRecorder) LimitService {
	return &limitService{
		store: dataStore,
		audit: audit,
		cache: make(map[string]model.LimitConfig),
	}
}

func (s *limitService) Get(ctx context.Context, environment string) (*model.LimitConfig, error) {
	if !ValidEnvironment(environment) {
		return nil, NewInvalidArgumentError(
			"Unknown environment",
			fmt.Sprintf("Environment '%s' is not one of DEV, TST, ACC, PRD", environment),
		)
	}

	s.mu.RLock()
	cached, ok := s.cache[environment]
	s.mu.RUnlock()
	if ok {
		return &cached, nil
	}

	cfg, err := s.store.Limit().Get(ctx, environment)
	if err != nil {
		if errors.Is(err, store.ErrLimitNotFound) {
			return nil, NewNotFoundError(
				"Limit configuration not found",
				fmt.Sprintf("Environment '%s' has no limit configuration; set one before requesting clones", environment),
			)
		}
		return nil, NewInternalError("Failed to load limit configuration", err.Error(), err)
	}

	s.mu.Lock()
	s.cache[environment] = *cfg
	s.mu.Unlock()
	return cfg, nil
}

func (s *limitService) Set(ctx context.Context, actor string, cfg model.LimitConfig) (*model.LimitConfig, error) {
	if !ValidEnvironment(cfg.Environment) {
		return nil, NewInvalidArgumentError(
			"Unknown environment",
			fmt.Sprintf("Environment '%s' is not one of DEV, TST, ACC, PRD", cfg.Environment),
		)
	}
	if cfg.MaxClonesPerUser < 1 {
		return nil, NewInvalidArgumentError(
			"max_clones_per_user must be at least 1",
			"A quota of zero would make every request fail; disable clone kinds instead",
		)
	}
	if cfg.DefaultExpiryHours != nil && *cfg.DefaultExpiryHours < 1 {
		return nil, NewInvalidArgumentError(
			"default_expiry_hours must be at least 1 when set",
			"Omit the field for clones that never expire",
		)
	}

	cfg.UpdatedBy = actor
	updated, err := s.store.Limit().Upsert(ctx, cfg)
	if err != nil {
		return nil, NewInternalError("Failed to store limit configuration", err.Error(), err)
	}

	// Invalidate before anyone reads the stale row.
	s.mu.Lock()
	delete(s.cache, cfg.Environment)
	s.mu.Unlock()

	s.audit.Record(ctx, AuditEntry{
		Operation:   model.AuditOpLimitsUpdate,
		Actor:       actor,
		Environment: cfg.Environment,
		Status:      model.AuditStatusSuccess,
		Metadata: map[string]string{
			"max_clones_per_user": fmt.Sprintf("%d", cfg.MaxClonesPerUser),
		},
	})
	return updated, nil
}

func (s *limitService) List(ctx context.Context) (model.LimitConfigList, error) {
	configs, err := s.store.Limit().List(ctx)
	if err != nil {
		return nil, NewInternalError("Failed to list limit configurations", err.Error(), err)
	}
	return configs, nil
}
