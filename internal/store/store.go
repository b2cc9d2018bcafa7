package store

import "gorm.io/gorm"

type Store interface {
	Close() error
	Clone() Clone
	Limit() Limit
	Policy() Policy
	Violation() Violation
	Audit() Audit
}

type DataStore struct {
	db        *gorm.DB
	clone     Clone
	limit     Limit
	policy    Policy
	violation Violation
	audit     Audit
}

func NewStore(db *gorm.DB) Store {
	return &DataStore{
		db:        db,
		clone:     NewClone(db),
		limit:     NewLimit(db),
		policy:    NewPolicy(db),
		violation: NewViolation(db),
		audit:     NewAudit(db),
	}
}

func (s *DataStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *DataStore) Clone() Clone {
	return s.clone
}

func (s *DataStore) Limit() Limit {
	return s.limit
}

func (s *DataStore) Policy() Policy {
	return s.policy
}

func (s *DataStore) Violation() Violation {
	return s.violation
}

func (s *DataStore) Audit() Audit {
	return s.audit
}
