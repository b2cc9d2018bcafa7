package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dwh-project/clone-governor/internal/store"
	"github.com/dwh-project/clone-governor/internal/store/model"
	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Parameter bundle schemas, one per policy type. Validated on create so
// the evaluation engine can trust the stored shape.
var policyParamSchemas = map[string]string{
	model.PolicyTypeMaxAge: `{
		"type": "object",
		"required": ["max_age_hours"],
		"properties": {
			"max_age_hours": {"type": "integer", "minimum": 1}
		}
	}`,
	model.PolicyTypeRestrictedSource: `{
		"type": "object",
		"required": ["sources"],
		"properties": {
			"sources": {"type": "array", "items": {"type": "string"}, "minItems": 1}
		}
	}`,
	model.PolicyTypeDataClassification: `{
		"type": "object",
		"required": ["blocked_classifications"],
		"properties": {
			"blocked_classifications": {"type": "array", "items": {"type": "string"}, "minItems": 1}
		}
	}`,
	model.PolicyTypeUserQuota: `{
		"type": "object",
		"required": ["max_clones"],
		"properties": {
			"max_clones": {"type": "integer", "minimum": 1}
		}
	}`,
	model.PolicyTypeEnvironmentRestriction: `{
		"type": "object",
		"required": ["restricted_kinds"],
		"properties": {
			"restricted_kinds": {
				"type": "array",
				"items": {"enum": ["SCHEMA", "DATABASE"]},
				"minItems": 1
			}
		}
	}`,
	model.PolicyTypeTimeRestriction: `{
		"type": "object",
		"required": ["start_hour", "end_hour"],
		"properties": {
			"start_hour": {"type": "integer", "minimum": 0, "maximum": 23},
			"end_hour": {"type": "integer", "minimum": 0, "maximum": 23},
			"days": {"type": "array", "items": {"type": "string"}},
			"timezone": {"type": "string"}
		}
	}`,
	model.PolicyTypeSensitiveData: `{
		"type": "object",
		"required": ["restricted_patterns"],
		"properties": {
			"restricted_patterns": {"type": "array", "items": {"type": "string"}, "minItems": 1}
		}
	}`,
	model.PolicyTypeApprovalRequired: `{
		"type": "object",
		"properties": {
			"kinds": {"type": "array", "items": {"enum": ["SCHEMA", "DATABASE"]}},
			"with_data_only": {"type": "boolean"}
		}
	}`,
}

var validSeverities = map[string]bool{
	model.SeverityInfo:     true,
	model.SeverityWarning:  true,
	model.SeverityError:    true,
	model.SeverityCritical: true,
}

var validActions = map[string]bool{
	model.ActionWarnAndLog:      true,
	model.ActionBlock:           true,
	model.ActionRequireApproval: true,
}

// PolicyInput is the administrative request to create a policy.
type PolicyInput struct {
	Name        string
	PolicyType  string
	Description string
	Environment string
	Params      map[string]any
	Severity    string
	Action      string
}

// PolicyService manages the versioned compliance rule set.
type PolicyService interface {
	CreatePolicy(ctx context.Context, actor string, input PolicyInput) (*model.Policy, error)
	GetPolicy(ctx context.Context, name string) (*model.Policy, error)
	ListPolicies(ctx context.Context, filter store.PolicyFilter) (model.PolicyList, error)
	SetPolicyStatus(ctx context.Context, actor, name string, active bool) (*model.Policy, error)
	DeletePolicy(ctx context.Context, actor, name string) error
}

type policyService struct {
	store   store.Store
	audit   AuditRecorder
	schemas map[string]*jsonschema.Schema
}

var _ PolicyService = (*policyService)(nil)

// NewPolicyService creates the policy administration service. Parameter
// schemas are compiled once at construction.
func NewPolicyService(dataStore store.Store, audit AuditRecorder) (PolicyService, error) {
	compiler := jsonschema.NewCompiler()
	schemas := make(map[string]*jsonschema.Schema, len(policyParamSchemas))
	for policyType, raw := range policyParamSchemas {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("parse parameter schema for %s: %w", policyType, err)
		}
		url := "governor://policy-params/" + policyType + ".json"
		if err := compiler.AddResource(url, doc); err != nil {
			return nil, fmt.Errorf("add parameter schema for %s: %w", policyType, err)
		}
		schema, err := compiler.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("compile parameter schema for %s: %w", policyType, err)
		}
		schemas[policyType] = schema
	}
	return &policyService{
		store:   dataStore,
		audit:   audit,
		schemas: schemas,
	}, nil
}

func (s *policyService) validateInput(input PolicyInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return NewInvalidArgumentError("name is required", "The policy name must be present and non-empty")
	}
	schema, ok := s.schemas[input.PolicyType]
	if !ok {
		return NewInvalidArgumentError(
			"Unknown policy type",
			fmt.Sprintf("Policy type '%s' is not in the supported enumeration", input.PolicyType),
		)
	}
	if input.Environment != "" && !ValidEnvironment(input.Environment) {
		return NewInvalidArgumentError(
			"Unknown environment scope",
			fmt.Sprintf("Environment '%s' is not one of DEV, TST, ACC, PRD; omit for a global policy", input.Environment),
		)
	}
	if !validSeverities[input.Severity] {
		return NewInvalidArgumentError(
			"Unknown severity",
			fmt.Sprintf("Severity '%s' is not one of INFO, WARNING, ERROR, CRITICAL", input.Severity),
		)
	}
	if !validActions[input.Action] {
		return NewInvalidArgumentError(
			"Unknown action",
			fmt.Sprintf("Action '%s' is not one of WARN_AND_LOG, BLOCK, REQUIRE_APPROVAL", input.Action),
		)
	}

	params := input.Params
	if params == nil {
		params = map[string]any{}
	}
	if err := schema.Validate(toJSONValue(params)); err != nil {
		return NewInvalidArgumentError(
			fmt.Sprintf("Invalid parameters for policy type %s", input.PolicyType),
			err.Error(),
		)
	}
	// TIME_RESTRICTION carries a timezone the schema cannot verify.
	if input.PolicyType == model.PolicyTypeTimeRestriction {
		if _, err := timeWindowFromParams(params); err != nil {
			return NewInvalidArgumentError("Invalid time window", err.Error())
		}
	}
	return nil
}

// CreatePolicy stores a new policy version. Creating a policy under an
// existing name replaces the active version.
func (s *policyService) CreatePolicy(ctx context.Context, actor string, input PolicyInput) (*model.Policy, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	policy := model.Policy{
		ID:          uuid.New().String(),
		Name:        input.Name,
		PolicyType:  input.PolicyType,
		Description: input.Description,
		Environment: input.Environment,
		Params:      input.Params,
		Severity:    input.Severity,
		Action:      input.Action,
		Active:      true,
		CreatedBy:   actor,
	}
	created, err := s.store.Policy().Create(ctx, policy)
	if err != nil {
		return nil, NewInternalError("Failed to create policy", err.Error(), err)
	}

	s.audit.Record(ctx, AuditEntry{
		Operation:  model.AuditOpPolicyCreate,
		PolicyName: created.Name,
		Actor:      actor,
		Status:     model.AuditStatusSuccess,
		Metadata:   map[string]string{"policy_type": created.PolicyType},
	})
	return created, nil
}

func (s *policyService) GetPolicy(ctx context.Context, name string) (*model.Policy, error) {
	policy, err := s.store.Policy().GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrPolicyNotFound) {
			return nil, NewPolicyNotFoundError(name)
		}
		return nil, NewInternalError("Failed to get policy", err.Error(), err)
	}
	return policy, nil
}

func (s *policyService) ListPolicies(ctx context.Context, filter store.PolicyFilter) (model.PolicyList, error) {
	policies, err := s.store.Policy().List(ctx, filter)
	if err != nil {
		return nil, NewInternalError("Failed to list policies", err.Error(), err)
	}
	return policies, nil
}

func (s *policyService) SetPolicyStatus(ctx context.Context, actor, name string, active bool) (*model.Policy, error) {
	policy, err := s.store.Policy().SetActive(ctx, name, active)
	if err != nil {
		if errors.Is(err, store.ErrPolicyNotFound) {
			return nil, NewPolicyNotFoundError(name)
		}
		return nil, NewInternalError("Failed to update policy status", err.Error(), err)
	}
	policy.Active = active

	s.audit.Record(ctx, AuditEntry{
		Operation:  model.AuditOpPolicyStatus,
		PolicyName: name,
		Actor:      actor,
		Status:     model.AuditStatusSuccess,
		Metadata:   map[string]string{"active": fmt.Sprintf("%t", active)},
	})
	return policy, nil
}

func (s *policyService) DeletePolicy(ctx context.Context, actor, name string) error {
	if err := s.store.Policy().Delete(ctx, name); err != nil {
		if errors.Is(err, store.ErrPolicyNotFound) {
			return NewPolicyNotFoundError(name)
		}
		return NewInternalError("Failed to delete policy", err.Error(), err)
	}

	s.audit.Record(ctx, AuditEntry{
		Operation:  model.AuditOpPolicyDelete,
		PolicyName: name,
		Actor:      actor,
		Status:     model.AuditStatusSuccess,
	})
	return nil
}

// toJSONValue normalizes a params map to the value shapes the schema
// validator expects (JSON-decoded form: float64 numbers, []any lists).
func toJSONValue(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, item := range typed {
			out[k] = toJSONValue(item)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = toJSONValue(item)
		}
		return out
	case []string:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = item
		}
		return out
	case int:
		return float64(typed)
	case int32:
		return float64(typed)
	case int64:
		return float64(typed)
	default:
		return v
	}
}
