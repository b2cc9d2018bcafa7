package model

import (
	"time"
)

// LimitConfig holds per-environment clone quotas and defaults. One row
// per environment, mutated only through the administrative surface.
type LimitConfig struct {
	Environment      string `gorm:"primaryKey;type:varchar(63)" json:"environment"`
	MaxClonesPerUser int    `gorm:"column:max_clones_per_user;not null" json:"max_clones_per_user"`
	// DefaultExpiryHours nil means clones in this environment never expire.
	DefaultExpiryHours  *int      `gorm:"column:default_expiry_hours" json:"default_expiry_hours,omitempty"`
	AllowSchemaClones   bool      `gorm:"column:allow_schema_clones;not null" json:"allow_schema_clones"`
	AllowDatabaseClones bool      `gorm:"column:allow_database_clones;not null" json:"allow_database_clones"`
	UpdatedBy           string    `gorm:"column:updated_by" json:"updated_by,omitempty"`
	CreateTime          time.Time `gorm:"column:create_time;autoCreateTime" json:"create_time"`
	UpdateTime          time.Time `gorm:"column:update_time;autoUpdateTime" json:"update_time"`
}

type LimitConfigList []LimitConfig
