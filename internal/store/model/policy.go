package model

import (
	"time"
)

// Policy types form a closed enumeration; the parameter bundle is typed
// per policy type and validated against a JSON schema on create.
const (
	PolicyTypeMaxAge                 = "MAX_AGE"
	PolicyTypeRestrictedSource       = "RESTRICTED_SOURCE"
	PolicyTypeDataClassification     = "DATA_CLASSIFICATION"
	PolicyTypeUserQuota              = "USER_QUOTA"
	PolicyTypeEnvironmentRestriction = "ENVIRONMENT_RESTRICTION"
	PolicyTypeTimeRestriction        = "TIME_RESTRICTION"
	PolicyTypeSensitiveData          = "SENSITIVE_DATA"
	PolicyTypeApprovalRequired       = "APPROVAL_REQUIRED"
)

// Policy severities, weakest to strongest.
const (
	SeverityInfo     = "INFO"
	SeverityWarning  = "WARNING"
	SeverityError    = "ERROR"
	SeverityCritical = "CRITICAL"
)

// Policy actions.
const (
	ActionWarnAndLog      = "WARN_AND_LOG"
	ActionBlock           = "BLOCK"
	ActionRequireApproval = "REQUIRE_APPROVAL"
)

type Policy struct {
	ID          string `gorm:"primaryKey;type:varchar(63)" json:"id"`
	Name        string `gorm:"column:name;not null;index" json:"name"`
	PolicyType  string `gorm:"column:policy_type;not null;index" json:"policy_type"`
	Description string `gorm:"column:description" json:"description,omitempty"`
	// Environment scopes the policy; empty means global.
	Environment string         `gorm:"column:environment;index" json:"environment,omitempty"`
	Params      map[string]any `gorm:"column:params;serializer:json" json:"params,omitempty"`
	Severity    string         `gorm:"column:severity;not null" json:"severity"`
	Action      string         `gorm:"column:action;not null" json:"action"`
	Active      bool           `gorm:"column:active;not null;index" json:"active"`
	CreatedBy   string         `gorm:"column:created_by" json:"created_by,omitempty"`
	CreateTime  time.Time      `gorm:"column:create_time;autoCreateTime" json:"create_time"`
	UpdateTime  time.Time      `gorm:"column:update_time;autoUpdateTime" json:"update_time"`
}

type PolicyList []Policy
