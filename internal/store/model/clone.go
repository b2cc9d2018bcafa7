package model

import (
	"time"
)

// Clone lifecycle states. Rows are never physically removed; a delete
// flips the state to DELETED and records deletion metadata.
const (
	CloneStateActive  = "ACTIVE"
	CloneStateDeleted = "DELETED"
)

// Clone kinds.
const (
	CloneKindSchema   = "SCHEMA"
	CloneKindDatabase = "DATABASE"
)

type Clone struct {
	ID             string `gorm:"primaryKey;type:varchar(63)" json:"id"`
	Name           string `gorm:"column:name;uniqueIndex;not null" json:"name"`
	Kind           string `gorm:"column:kind;not null" json:"kind"`
	Environment    string `gorm:"column:environment;not null;index;uniqueIndex:idx_clone_sequence,priority:2" json:"environment"`
	SourceDatabase string `gorm:"column:source_database;not null" json:"source_database"`
	SourceSchema   string `gorm:"column:source_schema" json:"source_schema,omitempty"`
	// SourceKey is the normalized "<db>" or "<db>.<schema>" key the
	// per-source sequence counter is scoped to.
	SourceKey  string            `gorm:"column:source_key;not null;uniqueIndex:idx_clone_sequence,priority:3" json:"source_key"`
	Owner      string            `gorm:"column:owner;not null;index;uniqueIndex:idx_clone_sequence,priority:1" json:"owner"`
	Sequence   int64             `gorm:"column:sequence;not null;uniqueIndex:idx_clone_sequence,priority:4" json:"sequence"`
	ReadRole   string            `gorm:"column:read_role;not null" json:"read_role"`
	WriteRole  string            `gorm:"column:write_role;not null" json:"write_role"`
	WithData   bool              `gorm:"column:with_data;not null" json:"with_data"`
	State      string            `gorm:"column:state;not null;index" json:"state"`
	ExpiresAt  *time.Time        `gorm:"column:expires_at" json:"expires_at,omitempty"`
	DeletedAt  *time.Time        `gorm:"column:deleted_at" json:"deleted_at,omitempty"`
	DeletedBy  string            `gorm:"column:deleted_by" json:"deleted_by,omitempty"`
	DeleteNote string            `gorm:"column:delete_note" json:"delete_note,omitempty"`
	Metadata   map[string]string `gorm:"column:metadata;serializer:json" json:"metadata,omitempty"`
	CreateTime time.Time         `gorm:"column:create_time;autoCreateTime" json:"create_time"`
	UpdateTime time.Time         `gorm:"column:update_time;autoUpdateTime" json:"update_time"`
}

type CloneList []Clone

// AdmissionLock is the per-(owner, environment) serialization point for
// the quota-check-then-insert sequence. One row per key, locked FOR UPDATE
// for the duration of an admission transaction.
type AdmissionLock struct {
	Owner       string    `gorm:"primaryKey;type:varchar(255)"`
	Environment string    `gorm:"primaryKey;type:varchar(63)"`
	UpdateTime  time.Time `gorm:"column:update_time;autoUpdateTime"`
}
