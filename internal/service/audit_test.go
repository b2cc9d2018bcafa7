package service_test

import (
	"context"
	"time"

	"github.com/dwh-project/clone-governor/internal/service"
	"github.com/dwh-project/clone-governor/internal/store"
	"github.com/dwh-project/clone-governor/internal/store/model"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func serviceAuditEntry() service.AuditEntry {
	return service.AuditEntry{
		Operation:   model.AuditOpCloneCreate,
		CloneName:   "PAYROLL_CLONE_ALICE_1",
		Actor:       "ALICE",
		Environment: "DEV",
		Status:      model.AuditStatusBlocked,
		Findings: []service.Finding{{
			PolicyName: "no-pii",
			PolicyType: model.PolicyTypeSensitiveData,
			Severity:   model.SeverityCritical,
			Action:     model.ActionBlock,
			Message:    "source matches a sensitive pattern",
		}},
	}
}

var _ = Describe("Audit Recorder", func() {
	var (
		env *admissionTestEnv
		ctx context.Context
	)

	BeforeEach(func() {
		env = newAdmissionTestEnv()
		ctx = context.Background()
	})

	AfterEach(func() {
		env.close()
	})

	It("records entries with embedded finding summaries", func() {
		id := env.audit.Record(ctx, serviceAuditEntry())
		Expect(id).NotTo(BeEmpty())

		records, err := env.audit.List(ctx, store.AuditFilter{})
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(1))
		Expect(records[0].Violations).To(HaveLen(1))
		Expect(records[0].Violations[0].PolicyName).To(Equal("no-pii"))
	})

	Describe("Purge", func() {
		It("removes stale audit records and resolved violations only", func() {
			stale := model.AuditRecord{
				ID:         uuid.New().String(),
				Operation:  model.AuditOpCloneCreate,
				Actor:      "ALICE",
				Status:     model.AuditStatusSuccess,
				CreateTime: time.Now().Add(-100 * 24 * time.Hour),
			}
			_, err := env.store.Audit().Create(ctx, stale)
			Expect(err).NotTo(HaveOccurred())
			env.audit.Record(ctx, serviceAuditEntry())

			oldResolved := model.Violation{
				ID:         uuid.New().String(),
				PolicyID:   uuid.New().String(),
				PolicyName: "no-pii",
				PolicyType: model.PolicyTypeSensitiveData,
				Actor:      "ALICE",
				Severity:   model.SeverityCritical,
				State:      model.ViolationStateOpen,
				CreateTime: time.Now().Add(-100 * 24 * time.Hour),
			}
			_, err = env.store.Violation().Create(ctx, oldResolved)
			Expect(err).NotTo(HaveOccurred())
			_, err = env.store.Violation().Resolve(ctx, oldResolved.ID, "ADMIN", "ok", time.Now())
			Expect(err).NotTo(HaveOccurred())

			oldOpen := oldResolved
			oldOpen.ID = uuid.New().String()
			oldOpen.State = model.ViolationStateOpen
			_, err = env.store.Violation().Create(ctx, oldOpen)
			Expect(err).NotTo(HaveOccurred())

			report, err := env.audit.Purge(ctx, 90*24*time.Hour)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.AuditRecords).To(Equal(int64(1)))
			Expect(report.ResolvedViolations).To(Equal(int64(1)))

			records, err := env.audit.List(ctx, store.AuditFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(1))

			_, err = env.store.Violation().Get(ctx, oldOpen.ID)
			Expect(err).NotTo(HaveOccurred(), "open violations survive the purge")
		})
	})
})
