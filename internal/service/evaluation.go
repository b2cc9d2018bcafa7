package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/brunoga/deep/v4"
	"github.com/dwh-project/clone-governor/internal/store/model"
)

// Candidate is the clone descriptor the evaluation engine judges, built
// by the admission controller before any resource exists.
type Candidate struct {
	Name           string
	Kind           string
	Environment    string
	SourceDatabase string
	SourceSchema   string
	Owner          string
	WithData       bool
	// Classification is the data classification label attached to the
	// source, when known.
	Classification string
	ExpiresAt      *time.Time
}

// QuotaState is the actor's clone usage at evaluation time.
type QuotaState struct {
	// ActiveInEnvironment counts ACTIVE clones in the candidate's environment.
	ActiveInEnvironment int
	// ActiveTotal counts ACTIVE clones across all environments.
	ActiveTotal int
}

// Finding is one policy match, blocking or not. Non-blocking findings are
// still recorded to preserve the compliance trail.
type Finding struct {
	PolicyID   string         `json:"policy_id"`
	PolicyName string         `json:"policy_name"`
	PolicyType string         `json:"policy_type"`
	Severity   string         `json:"severity"`
	Action     string         `json:"action"`
	Message    string         `json:"message"`
	Blocking   bool           `json:"blocking"`
	Detail     map[string]any `json:"detail,omitempty"`
}

var severityRank = map[string]int{
	model.SeverityCritical: 4,
	model.SeverityError:    3,
	model.SeverityWarning:  2,
	model.SeverityInfo:     1,
}

// Evaluate runs every supplied policy against the candidate and returns
// the findings sorted by severity (strongest first) plus the block
// decision. Pure: it reads only its arguments and never touches the
// clock or any store.
func Evaluate(candidate Candidate, quota QuotaState, policies model.PolicyList, now time.Time) ([]Finding, bool) {
	findings := []Finding{}
	shouldBlock := false

	for _, policy := range policies {
		if !policy.Active {
			continue
		}
		if policy.Environment != "" && policy.Environment != candidate.Environment {
			continue
		}

		finding := evaluatePolicy(candidate, quota, policy, now)
		if finding == nil {
			continue
		}

		if finding.Blocking {
			shouldBlock = true
		}
		findings = append(findings, *finding)
	}

	sort.SliceStable(findings, func(i, j int) bool {
		return severityRank[findings[i].Severity] > severityRank[findings[j].Severity]
	})

	return findings, shouldBlock
}

func evaluatePolicy(candidate Candidate, quota QuotaState, policy model.Policy, now time.Time) *Finding {
	var message string
	matched := false

	switch policy.PolicyType {
	case model.PolicyTypeEnvironmentRestriction:
		kinds := stringSlice(policy.Params, "restricted_kinds")
		if containsFold(kinds, candidate.Kind) {
			matched = true
			message = fmt.Sprintf("%s clones are restricted in environment '%s'", candidate.Kind, candidate.Environment)
		}

	case model.PolicyTypeUserQuota:
		max, ok := intParam(policy.Params, "max_clones")
		if ok && quota.ActiveTotal >= max {
			matched = true
			message = fmt.Sprintf("Actor '%s' holds %d active clones; the policy allows at most %d across all environments", candidate.Owner, quota.ActiveTotal, max)
		}

	case model.PolicyTypeTimeRestriction:
		window, err := timeWindowFromParams(policy.Params)
		if err != nil {
			return nil
		}
		if !window.Contains(now) {
			matched = true
			message = fmt.Sprintf("Clone creation is outside the allowed time window (%02d:00-%02d:00 %s)", window.StartHour, window.EndHour, window.Location)
		}

	case model.PolicyTypeSensitiveData:
		patterns := stringSlice(policy.Params, "restricted_patterns")
		if hit := matchSubstring(patterns, candidate.SourceSchema, candidate.SourceDatabase); hit != "" {
			matched = true
			message = fmt.Sprintf("Source matches sensitive-data pattern '%s'", hit)
		}

	case model.PolicyTypeRestrictedSource:
		sources := stringSlice(policy.Params, "sources")
		key := SourceKey(candidate.Kind, candidate.SourceDatabase, candidate.SourceSchema)
		if containsFold(sources, key) || containsFold(sources, candidate.SourceDatabase) {
			matched = true
			message = fmt.Sprintf("Source '%s' is on the restricted-source list", key)
		}

	case model.PolicyTypeDataClassification:
		blocked := stringSlice(policy.Params, "blocked_classifications")
		if candidate.Classification != "" && containsFold(blocked, candidate.Classification) {
			matched = true
			message = fmt.Sprintf("Source classification '%s' does not permit cloning", candidate.Classification)
		}

	case model.PolicyTypeApprovalRequired:
		kinds := stringSlice(policy.Params, "kinds")
		withDataOnly, _ := boolParam(policy.Params, "with_data_only")
		kindMatch := len(kinds) == 0 || containsFold(kinds, candidate.Kind)
		if kindMatch && (!withDataOnly || candidate.WithData) {
			matched = true
			message = "Clone requires approval before provisioning"
		}

	case model.PolicyTypeMaxAge:
		maxHours, ok := intParam(policy.Params, "max_age_hours")
		if !ok {
			return nil
		}
		limit := now.Add(time.Duration(maxHours) * time.Hour)
		if candidate.ExpiresAt == nil || candidate.ExpiresAt.After(limit) {
			matched = true
			message = fmt.Sprintf("Clone lifetime exceeds the maximum age of %d hours", maxHours)
		}
	}

	if !matched {
		return nil
	}
	return newFinding(policy, message)
}

// EvaluateCloneAge applies a MAX_AGE policy to an existing clone. Used by
// the compliance scan and the reaper, not only at admission time.
func EvaluateCloneAge(clone model.Clone, policy model.Policy, now time.Time) *Finding {
	if policy.PolicyType != model.PolicyTypeMaxAge || !policy.Active {
		return nil
	}
	if policy.Environment != "" && policy.Environment != clone.Environment {
		return nil
	}
	maxHours, ok := intParam(policy.Params, "max_age_hours")
	if !ok {
		return nil
	}
	age := now.Sub(clone.CreateTime)
	if age <= time.Duration(maxHours)*time.Hour {
		return nil
	}
	return newFinding(policy, fmt.Sprintf("Clone '%s' is %d hours old, exceeding the maximum age of %d hours",
		clone.Name, int(age.Hours()), maxHours))
}

func newFinding(policy model.Policy, message string) *Finding {
	// Detach the detail payload from the store-owned params map.
	detail, err := deep.Copy(policy.Params)
	if err != nil {
		detail = map[string]any{}
	}
	return &Finding{
		PolicyID:   policy.ID,
		PolicyName: policy.Name,
		PolicyType: policy.PolicyType,
		Severity:   policy.Severity,
		Action:     policy.Action,
		Message:    message,
		Blocking:   policy.Action == model.ActionBlock || policy.Action == model.ActionRequireApproval,
		Detail:     detail,
	}
}

func timeWindowFromParams(params map[string]any) (*TimeWindow, error) {
	start, _ := intParam(params, "start_hour")
	end, _ := intParam(params, "end_hour")
	days := stringSlice(params, "days")
	tz, _ := stringParam(params, "timezone")
	return ParseTimeWindow(start, end, days, tz)
}

// Param bundles come back from the store JSON-decoded, so numbers are
// float64 and lists are []any.

func intParam(params map[string]any, key string) (int, bool) {
	switch v := params[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}

func boolParam(params map[string]any, key string) (bool, bool) {
	v, ok := params[key].(bool)
	return v, ok
}

func stringParam(params map[string]any, key string) (string, bool) {
	v, ok := params[key].(string)
	return v, ok
}

func stringSlice(params map[string]any, key string) []string {
	raw, ok := params[key].([]any)
	if !ok {
		if typed, ok := params[key].([]string); ok {
			return typed
		}
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func containsFold(list []string, value string) bool {
	for _, item := range list {
		if strings.EqualFold(item, value) {
			return true
		}
	}
	return false
}

func matchSubstring(patterns []string, names ...string) string {
	for _, pattern := range patterns {
		for _, name := range names {
			if pattern != "" && strings.Contains(strings.ToUpper(name), strings.ToUpper(pattern)) {
				return pattern
			}
		}
	}
	return ""
}
