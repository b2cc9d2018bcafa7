package service_test

import (
	"time"

	"github.com/dwh-project/clone-governor/internal/service"
	"github.com/dwh-project/clone-governor/internal/store/model"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func policyOf(policyType, severity, action string, params map[string]any) model.Policy {
	return model.Policy{
		ID:         uuid.New().String(),
		Name:       "test-" + policyType,
		PolicyType: policyType,
		Severity:   severity,
		Action:     action,
		Params:     params,
		Active:     true,
	}
}

var _ = Describe("Evaluate", func() {
	var (
		candidate service.Candidate
		quota     service.QuotaState
		// A Tuesday, 14:00 UTC.
		now = time.Date(2026, 3, 3, 14, 0, 0, 0, time.UTC)
	)

	BeforeEach(func() {
		expiry := now.Add(24 * time.Hour)
		candidate = service.Candidate{
			Name:           "PAYROLL_CLONE_ALICE_1",
			Kind:           model.CloneKindSchema,
			Environment:    "DEV",
			SourceDatabase: "HR",
			SourceSchema:   "PAYROLL",
			Owner:          "ALICE",
			ExpiresAt:      &expiry,
		}
		quota = service.QuotaState{ActiveInEnvironment: 1, ActiveTotal: 2}
	})

	It("returns no findings when no policy matches", func() {
		policies := model.PolicyList{
			policyOf(model.PolicyTypeUserQuota, model.SeverityError, model.ActionBlock,
				map[string]any{"max_clones": float64(10)}),
		}
		findings, blocked := service.Evaluate(candidate, quota, policies, now)
		Expect(findings).To(BeEmpty())
		Expect(blocked).To(BeFalse())
	})

	It("skips inactive policies", func() {
		p := policyOf(model.PolicyTypeSensitiveData, model.SeverityCritical, model.ActionBlock,
			map[string]any{"restricted_patterns": []any{"PAYROLL"}})
		p.Active = false
		findings, blocked := service.Evaluate(candidate, quota, model.PolicyList{p}, now)
		Expect(findings).To(BeEmpty())
		Expect(blocked).To(BeFalse())
	})

	It("skips policies scoped to a different environment", func() {
		p := policyOf(model.PolicyTypeSensitiveData, model.SeverityCritical, model.ActionBlock,
			map[string]any{"restricted_patterns": []any{"PAYROLL"}})
		p.Environment = "PRD"
		findings, blocked := service.Evaluate(candidate, quota, model.PolicyList{p}, now)
		Expect(findings).To(BeEmpty())
		Expect(blocked).To(BeFalse())
	})

	Describe("ENVIRONMENT_RESTRICTION", func() {
		It("matches a restricted clone kind", func() {
			p := policyOf(model.PolicyTypeEnvironmentRestriction, model.SeverityError, model.ActionBlock,
				map[string]any{"restricted_kinds": []any{"SCHEMA"}})
			findings, blocked := service.Evaluate(candidate, quota, model.PolicyList{p}, now)
			Expect(findings).To(HaveLen(1))
			Expect(blocked).To(BeTrue())
		})

		It("passes an unrestricted kind", func() {
			p := policyOf(model.PolicyTypeEnvironmentRestriction, model.SeverityError, model.ActionBlock,
				map[string]any{"restricted_kinds": []any{"DATABASE"}})
			_, blocked := service.Evaluate(candidate, quota, model.PolicyList{p}, now)
			Expect(blocked).To(BeFalse())
		})
	})

	Describe("USER_QUOTA", func() {
		It("matches when the actor holds the maximum across environments", func() {
			p := policyOf(model.PolicyTypeUserQuota, model.SeverityWarning, model.ActionWarnAndLog,
				map[string]any{"max_clones": float64(2)})
			findings, blocked := service.Evaluate(candidate, quota, model.PolicyList{p}, now)
			Expect(findings).To(HaveLen(1))
			Expect(blocked).To(BeFalse(), "WARN_AND_LOG never blocks")
		})
	})

	Describe("TIME_RESTRICTION", func() {
		It("passes inside the allowed window", func() {
			p := policyOf(model.PolicyTypeTimeRestriction, model.SeverityError, model.ActionBlock,
				map[string]any{"start_hour": float64(9), "end_hour": float64(17)})
			_, blocked := service.Evaluate(candidate, quota, model.PolicyList{p}, now)
			Expect(blocked).To(BeFalse())
		})

		It("matches outside the allowed window", func() {
			p := policyOf(model.PolicyTypeTimeRestriction, model.SeverityError, model.ActionBlock,
				map[string]any{"start_hour": float64(18), "end_hour": float64(22)})
			findings, blocked := service.Evaluate(candidate, quota, model.PolicyList{p}, now)
			Expect(findings).To(HaveLen(1))
			Expect(blocked).To(BeTrue())
		})

		It("matches on a disallowed weekday", func() {
			p := policyOf(model.PolicyTypeTimeRestriction, model.SeverityError, model.ActionBlock,
				map[string]any{
					"start_hour": float64(0),
					"end_hour":   float64(0),
					"days":       []any{"Saturday", "Sunday"},
				})
			findings, _ := service.Evaluate(candidate, quota, model.PolicyList{p}, now)
			Expect(findings).To(HaveLen(1))
		})
	})

	Describe("SENSITIVE_DATA", func() {
		It("matches a pattern in the source schema, case-insensitively", func() {
			p := policyOf(model.PolicyTypeSensitiveData, model.SeverityCritical, model.ActionBlock,
				map[string]any{"restricted_patterns": []any{"pii", "payroll"}})
			findings, blocked := service.Evaluate(candidate, quota, model.PolicyList{p}, now)
			Expect(findings).To(HaveLen(1))
			Expect(findings[0].Severity).To(Equal(model.SeverityCritical))
			Expect(findings[0].Message).To(ContainSubstring("payroll"))
			Expect(blocked).To(BeTrue())
		})
	})

	Describe("RESTRICTED_SOURCE", func() {
		It("matches the source key", func() {
			p := policyOf(model.PolicyTypeRestrictedSource, model.SeverityError, model.ActionBlock,
				map[string]any{"sources": []any{"HR.PAYROLL"}})
			findings, blocked := service.Evaluate(candidate, quota, model.PolicyList{p}, now)
			Expect(findings).To(HaveLen(1))
			Expect(blocked).To(BeTrue())
		})

		It("matches the bare source database", func() {
			p := policyOf(model.PolicyTypeRestrictedSource, model.SeverityError, model.ActionBlock,
				map[string]any{"sources": []any{"HR"}})
			findings, _ := service.Evaluate(candidate, quota, model.PolicyList{p}, now)
			Expect(findings).To(HaveLen(1))
		})
	})

	Describe("DATA_CLASSIFICATION", func() {
		It("matches a blocked classification label", func() {
			candidate.Classification = "CONFIDENTIAL"
			p := policyOf(model.PolicyTypeDataClassification, model.SeverityError, model.ActionBlock,
				map[string]any{"blocked_classifications": []any{"CONFIDENTIAL", "SECRET"}})
			findings, blocked := service.Evaluate(candidate, quota, model.PolicyList{p}, now)
			Expect(findings).To(HaveLen(1))
			Expect(blocked).To(BeTrue())
		})

		It("never matches when the source carries no label", func() {
			p := policyOf(model.PolicyTypeDataClassification, model.SeverityError, model.ActionBlock,
				map[string]any{"blocked_classifications": []any{"CONFIDENTIAL"}})
			findings, _ := service.Evaluate(candidate, quota, model.PolicyList{p}, now)
			Expect(findings).To(BeEmpty())
		})
	})

	Describe("APPROVAL_REQUIRED", func() {
		It("blocks matching requests pending external approval", func() {
			p := policyOf(model.PolicyTypeApprovalRequired, model.SeverityWarning, model.ActionRequireApproval,
				map[string]any{"kinds": []any{"SCHEMA"}})
			findings, blocked := service.Evaluate(candidate, quota, model.PolicyList{p}, now)
			Expect(findings).To(HaveLen(1))
			Expect(findings[0].Blocking).To(BeTrue())
			Expect(blocked).To(BeTrue())
		})

		It("restricts to with-data requests when configured", func() {
			p := policyOf(model.PolicyTypeApprovalRequired, model.SeverityWarning, model.ActionRequireApproval,
				map[string]any{"with_data_only": true})
			_, blocked := service.Evaluate(candidate, quota, model.PolicyList{p}, now)
			Expect(blocked).To(BeFalse())

			candidate.WithData = true
			_, blocked = service.Evaluate(candidate, quota, model.PolicyList{p}, now)
			Expect(blocked).To(BeTrue())
		})
	})

	Describe("MAX_AGE", func() {
		It("matches a clone that never expires", func() {
			candidate.ExpiresAt = nil
			p := policyOf(model.PolicyTypeMaxAge, model.SeverityWarning, model.ActionWarnAndLog,
				map[string]any{"max_age_hours": float64(72)})
			findings, _ := service.Evaluate(candidate, quota, model.PolicyList{p}, now)
			Expect(findings).To(HaveLen(1))
		})

		It("matches an expiry beyond the maximum age", func() {
			far := now.Add(100 * time.Hour)
			candidate.ExpiresAt = &far
			p := policyOf(model.PolicyTypeMaxAge, model.SeverityWarning, model.ActionWarnAndLog,
				map[string]any{"max_age_hours": float64(72)})
			findings, _ := service.Evaluate(candidate, quota, model.PolicyList{p}, now)
			Expect(findings).To(HaveLen(1))
		})

		It("passes an expiry within the maximum age", func() {
			p := policyOf(model.PolicyTypeMaxAge, model.SeverityWarning, model.ActionWarnAndLog,
				map[string]any{"max_age_hours": float64(72)})
			findings, _ := service.Evaluate(candidate, quota, model.PolicyList{p}, now)
			Expect(findings).To(BeEmpty())
		})
	})

	It("orders findings by severity, strongest first", func() {
		policies := model.PolicyList{
			policyOf(model.PolicyTypeUserQuota, model.SeverityInfo, model.ActionWarnAndLog,
				map[string]any{"max_clones": float64(1)}),
			policyOf(model.PolicyTypeSensitiveData, model.SeverityCritical, model.ActionBlock,
				map[string]any{"restricted_patterns": []any{"PAYROLL"}}),
			policyOf(model.PolicyTypeEnvironmentRestriction, model.SeverityWarning, model.ActionWarnAndLog,
				map[string]any{"restricted_kinds": []any{"SCHEMA"}}),
		}
		findings, blocked := service.Evaluate(candidate, quota, policies, now)
		Expect(findings).To(HaveLen(3))
		Expect(findings[0].Severity).To(Equal(model.SeverityCritical))
		Expect(findings[1].Severity).To(Equal(model.SeverityWarning))
		Expect(findings[2].Severity).To(Equal(model.SeverityInfo))
		Expect(blocked).To(BeTrue())
	})

	It("detaches finding detail from the policy params", func() {
		p := policyOf(model.PolicyTypeSensitiveData, model.SeverityCritical, model.ActionBlock,
			map[string]any{"restricted_patterns": []any{"PAYROLL"}})
		findings, _ := service.Evaluate(candidate, quota, model.PolicyList{p}, now)
		Expect(findings).To(HaveLen(1))

		findings[0].Detail["restricted_patterns"] = []any{"mutated"}
		Expect(p.Params["restricted_patterns"]).To(Equal([]any{"PAYROLL"}))
	})
})

var _ = Describe("EvaluateCloneAge", func() {
	now := time.Date(2026, 3, 3, 14, 0, 0, 0, time.UTC)

	newClone := func(age time.Duration) model.Clone {
		return model.Clone{
			ID:          uuid.New().String(),
			Name:        "PAYROLL_CLONE_ALICE_1",
			Environment: "DEV",
			CreateTime:  now.Add(-age),
		}
	}

	It("matches a clone older than the maximum age", func() {
		p := policyOf(model.PolicyTypeMaxAge, model.SeverityWarning, model.ActionWarnAndLog,
			map[string]any{"max_age_hours": float64(72)})
		finding := service.EvaluateCloneAge(newClone(100*time.Hour), p, now)
		Expect(finding).NotTo(BeNil())
		Expect(finding.Message).To(ContainSubstring("100 hours"))
	})

	It("passes a clone within the maximum age", func() {
		p := policyOf(model.PolicyTypeMaxAge, model.SeverityWarning, model.ActionWarnAndLog,
			map[string]any{"max_age_hours": float64(72)})
		Expect(service.EvaluateCloneAge(newClone(10*time.Hour), p, now)).To(BeNil())
	})

	It("ignores non-MAX_AGE and out-of-scope policies", func() {
		quotaPolicy := policyOf(model.PolicyTypeUserQuota, model.SeverityWarning, model.ActionWarnAndLog,
			map[string]any{"max_clones": float64(1)})
		Expect(service.EvaluateCloneAge(newClone(100*time.Hour), quotaPolicy, now)).To(BeNil())

		scoped := policyOf(model.PolicyTypeMaxAge, model.SeverityWarning, model.ActionWarnAndLog,
			map[string]any{"max_age_hours": float64(72)})
		scoped.Environment = "PRD"
		Expect(service.EvaluateCloneAge(newClone(100*time.Hour), scoped, now)).To(BeNil())
	})
})
