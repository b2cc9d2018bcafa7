package model

import (
	"time"
)

// Audit operations.
const (
	AuditOpCloneCreate      = "CLONE_CREATE"
	AuditOpCloneDelete      = "CLONE_DELETE"
	AuditOpCloneReplace     = "CLONE_REPLACE"
	AuditOpCloneExpire      = "CLONE_EXPIRE"
	AuditOpPolicyCreate     = "POLICY_CREATE"
	AuditOpPolicyStatus     = "POLICY_STATUS"
	AuditOpPolicyDelete     = "POLICY_DELETE"
	AuditOpLimitsUpdate     = "LIMITS_UPDATE"
	AuditOpViolationResolve = "VIOLATION_RESOLVE"
	AuditOpComplianceScan   = "COMPLIANCE_SCAN"
)

// Audit outcome statuses.
const (
	AuditStatusSuccess        = "SUCCESS"
	AuditStatusFailed         = "FAILED"
	AuditStatusBlocked        = "BLOCKED"
	AuditStatusDenied         = "DENIED"
	AuditStatusPartialFailure = "PARTIAL_FAILURE"
)

// AuditViolation is the violation summary embedded in an audit record,
// frozen at the moment the decision was taken.
type AuditViolation struct {
	PolicyName string `json:"policy_name"`
	PolicyType string `json:"policy_type"`
	Severity   string `json:"severity"`
	Action     string `json:"action"`
	Message    string `json:"message"`
}

// AuditRecord is an append-only log entry for every admission, deletion,
// access and policy-management action. Never mutated; removed only by the
// retention-bounded purge.
type AuditRecord struct {
	ID          string            `gorm:"primaryKey;type:varchar(63)" json:"id"`
	Operation   string            `gorm:"column:operation;not null;index" json:"operation"`
	CloneID     string            `gorm:"column:clone_id;index" json:"clone_id,omitempty"`
	CloneName   string            `gorm:"column:clone_name;index" json:"clone_name,omitempty"`
	PolicyName  string            `gorm:"column:policy_name" json:"policy_name,omitempty"`
	Actor       string            `gorm:"column:actor;not null;index" json:"actor"`
	Environment string            `gorm:"column:environment;index" json:"environment,omitempty"`
	Status      string            `gorm:"column:status;not null;index" json:"status"`
	ErrorDetail string            `gorm:"column:error_detail" json:"error_detail,omitempty"`
	Violations  []AuditViolation  `gorm:"column:violations;serializer:json" json:"violations,omitempty"`
	Metadata    map[string]string `gorm:"column:metadata;serializer:json" json:"metadata,omitempty"`
	CreateTime  time.Time         `gorm:"column:create_time;autoCreateTime;index" json:"create_time"`
}

type AuditRecordList []AuditRecord
