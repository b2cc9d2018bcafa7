package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dwh-project/clone-governor/internal/store/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrCloneNotFound  = errors.New("clone not found")
	ErrCloneNameTaken = errors.New("clone name already taken")
	ErrSequenceTaken  = errors.New("clone sequence already taken")
)

// CloneFilter contains optional fields for filtering clone queries.
// nil fields are ignored (not filtered).
type CloneFilter struct {
	Owner       *string
	Environment *string
	State       *string
}

type Clone interface {
	// WithAdmissionLock runs fn inside a transaction holding a row-level
	// lock on the (owner, environment) admission lock row. Quota counts,
	// sequence assignment and the registry insert performed through the
	// Clone handle passed to fn are serialized per key.
	WithAdmissionLock(ctx context.Context, owner, environment string, fn func(tx Clone) error) error
	Create(ctx context.Context, clone model.Clone) (*model.Clone, error)
	// Get resolves a clone by ID or by fully-qualified name.
	Get(ctx context.Context, idOrName string) (*model.Clone, error)
	// GetActive is Get restricted to ACTIVE rows.
	GetActive(ctx context.Context, idOrName string) (*model.Clone, error)
	List(ctx context.Context, filter CloneFilter) (model.CloneList, error)
	ListExpired(ctx context.Context, asOf time.Time, environment *string) (model.CloneList, error)
	CountActive(ctx context.Context, owner string, environment *string) (int64, error)
	// NextSequence returns max(sequence)+1 over all rows (any state) for
	// the key, so deleted sequence numbers are never reused.
	NextSequence(ctx context.Context, owner, environment, sourceKey string) (int64, error)
	// MarkDeleted flips an ACTIVE row to DELETED. Returns false without
	// error when the row is already DELETED (idempotent delete).
	MarkDeleted(ctx context.Context, id, deletedBy, note string, at time.Time) (bool, error)
}

type CloneStore struct {
	db *gorm.DB
}

var _ Clone = (*CloneStore)(nil)

func NewClone(db *gorm.DB) Clone {
	return &CloneStore{db: db}
}

func (s *CloneStore) WithAdmissionLock(ctx context.Context, owner, environment string, fn func(tx Clone) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lock := model.AdmissionLock{Owner: owner, Environment: environment}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&lock).Error; err != nil {
			return err
		}
		// SQLite has no FOR UPDATE; its single-writer transactions give
		// the same per-key serialization.
		query := tx
		if tx.Dialector.Name() == "postgres" {
			query = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := query.First(&lock, "owner = ? AND environment = ?", owner, environment).Error; err != nil {
			return err
		}
		return fn(&CloneStore{db: tx})
	})
}

func (s *CloneStore) Create(ctx context.Context, clone model.Clone) (*model.Clone, error) {
	if err := s.db.WithContext(ctx).Create(&clone).Error; err != nil {
		return nil, s.mapUniqueConstraintError(ctx, err, clone)
	}
	return &clone, nil
}

// mapUniqueConstraintError maps a DB unique constraint violation to a store
// sentinel error by checking which constraint the attempted row collides with.
func (s *CloneStore) mapUniqueConstraintError(ctx context.Context, err error, attempted model.Clone) error {
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		// Raw driver error (e.g. tests without TranslateError)
		msg := strings.ToLower(err.Error())
		if !strings.Contains(msg, "unique") && !strings.Contains(msg, "duplicate key") {
			return err
		}
	}

	var row model.Clone
	dberr := s.db.WithContext(ctx).Where("name = ?", attempted.Name).First(&row).Error
	if dberr == nil {
		return ErrCloneNameTaken
	}
	if !errors.Is(dberr, gorm.ErrRecordNotFound) {
		return err
	}

	dberr = s.db.WithContext(ctx).
		Where("owner = ? AND environment = ? AND source_key = ? AND sequence = ?",
			attempted.Owner, attempted.Environment, attempted.SourceKey, attempted.Sequence).
		First(&row).Error
	if dberr == nil {
		return ErrSequenceTaken
	}
	if !errors.Is(dberr, gorm.ErrRecordNotFound) {
		return err
	}

	return err
}

func (s *CloneStore) Get(ctx context.Context, idOrName string) (*model.Clone, error) {
	return s.get(ctx, idOrName, nil)
}

func (s *CloneStore) GetActive(ctx context.Context, idOrName string) (*model.Clone, error) {
	state := model.CloneStateActive
	return s.get(ctx, idOrName, &state)
}

func (s *CloneStore) get(ctx context.Context, idOrName string, state *string) (*model.Clone, error) {
	var clone model.Clone
	query := s.db.WithContext(ctx).Where("id = ? OR name = ?", idOrName, idOrName)
	if state != nil {
		query = query.Where("state = ?", *state)
	}
	if err := query.First(&clone).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCloneNotFound
		}
		return nil, err
	}
	return &clone, nil
}

func (s *CloneStore) List(ctx context.Context, filter CloneFilter) (model.CloneList, error) {
	var clones model.CloneList
	query := s.db.WithContext(ctx)
	if filter.Owner != nil {
		query = query.Where("owner = ?", *filter.Owner)
	}
	if filter.Environment != nil {
		query = query.Where("environment = ?", *filter.Environment)
	}
	if filter.State != nil {
		query = query.Where("state = ?", *filter.State)
	}
	if err := query.Order("create_time ASC, id ASC").Find(&clones).Error; err != nil {
		return nil, err
	}
	return clones, nil
}

func (s *CloneStore) ListExpired(ctx context.Context, asOf time.Time, environment *string) (model.CloneList, error) {
	var clones model.CloneList
	query := s.db.WithContext(ctx).
		Where("state = ?", model.CloneStateActive).
		Where("expires_at IS NOT NULL AND expires_at < ?", asOf)
	if environment != nil {
		query = query.Where("environment = ?", *environment)
	}
	if err := query.Order("expires_at ASC, id ASC").Find(&clones).Error; err != nil {
		return nil, err
	}
	return clones, nil
}

func (s *CloneStore) CountActive(ctx context.Context, owner string, environment *string) (int64, error) {
	var count int64
	query := s.db.WithContext(ctx).Model(&model.Clone{}).
		Where("owner = ? AND state = ?", owner, model.CloneStateActive)
	if environment != nil {
		query = query.Where("environment = ?", *environment)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (s *CloneStore) NextSequence(ctx context.Context, owner, environment, sourceKey string) (int64, error) {
	var max int64
	err := s.db.WithContext(ctx).Model(&model.Clone{}).
		Where("owner = ? AND environment = ? AND source_key = ?", owner, environment, sourceKey).
		Select("COALESCE(MAX(sequence), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

func (s *CloneStore) MarkDeleted(ctx context.Context, id, deletedBy, note string, at time.Time) (bool, error) {
	result := s.db.WithContext(ctx).Model(&model.Clone{}).
		Where("id = ? AND state = ?", id, model.CloneStateActive).
		Updates(map[string]any{
			"state":       model.CloneStateDeleted,
			"deleted_at":  at,
			"deleted_by":  deletedBy,
			"delete_note": note,
		})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		// Row missing entirely is still an error; already-DELETED is not.
		var clone model.Clone
		err := s.db.WithContext(ctx).First(&clone, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrCloneNotFound
		}
		if err != nil {
			return false, err
		}
		return false, nil
	}
	return true, nil
}
