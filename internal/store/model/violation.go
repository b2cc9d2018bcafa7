package model

import (
	"time"
)

// Violation resolution states.
const (
	ViolationStateOpen     = "OPEN"
	ViolationStateResolved = "RESOLVED"
)

// Violation is a recorded match of a policy against a clone or clone
// request. Violations are a compliance record and are never deleted
// outside the retention purge (which removes only resolved rows).
type Violation struct {
	ID              string         `gorm:"primaryKey;type:varchar(63)" json:"id"`
	PolicyID        string         `gorm:"column:policy_id;not null;index" json:"policy_id"`
	PolicyName      string         `gorm:"column:policy_name;not null" json:"policy_name"`
	PolicyType      string         `gorm:"column:policy_type;not null" json:"policy_type"`
	CloneID         string         `gorm:"column:clone_id;index" json:"clone_id,omitempty"`
	CloneName       string         `gorm:"column:clone_name" json:"clone_name,omitempty"`
	Actor           string         `gorm:"column:actor;not null;index" json:"actor"`
	Severity        string         `gorm:"column:severity;not null;index" json:"severity"`
	Detail          map[string]any `gorm:"column:detail;serializer:json" json:"detail,omitempty"`
	State           string         `gorm:"column:state;not null;index" json:"state"`
	ResolvedBy      string         `gorm:"column:resolved_by" json:"resolved_by,omitempty"`
	ResolvedAt      *time.Time     `gorm:"column:resolved_at" json:"resolved_at,omitempty"`
	ResolutionNotes string         `gorm:"column:resolution_notes" json:"resolution_notes,omitempty"`
	CreateTime      time.Time      `gorm:"column:create_time;autoCreateTime" json:"create_time"`
}

type ViolationList []Violation
