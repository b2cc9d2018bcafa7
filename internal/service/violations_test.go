package service_test

import (
	"context"

	"github.com/dwh-project/clone-governor/internal/service"
	"github.com/dwh-project/clone-governor/internal/store"
	"github.com/dwh-project/clone-governor/internal/store/model"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Violation Service", func() {
	var (
		env        *admissionTestEnv
		violations service.ViolationService
		ctx        context.Context
	)

	BeforeEach(func() {
		env = newAdmissionTestEnv()
		ctx = context.Background()
		violations = service.NewViolationService(env.store, env.audit)
	})

	AfterEach(func() {
		env.close()
	})

	createViolation := func() *model.Violation {
		created, err := env.store.Violation().Create(ctx, model.Violation{
			ID:         uuid.New().String(),
			PolicyID:   uuid.New().String(),
			PolicyName: "no-pii",
			PolicyType: model.PolicyTypeSensitiveData,
			CloneName:  "PAYROLL_CLONE_ALICE_1",
			Actor:      "ALICE",
			Severity:   model.SeverityCritical,
			State:      model.ViolationStateOpen,
		})
		Expect(err).NotTo(HaveOccurred())
		return created
	}

	Describe("ResolveViolation", func() {
		It("resolves an open violation and audits", func() {
			v := createViolation()

			resolved, err := violations.ResolveViolation(ctx, v.ID, "ADMIN", "approved exception")
			Expect(err).NotTo(HaveOccurred())
			Expect(resolved.State).To(Equal(model.ViolationStateResolved))
			Expect(resolved.ResolvedBy).To(Equal("ADMIN"))

			records := env.auditRecords(ctx, model.AuditOpViolationResolve)
			Expect(records).To(HaveLen(1))
			Expect(records[0].Actor).To(Equal("ADMIN"))
		})

		It("treats resolution as terminal", func() {
			v := createViolation()
			_, err := violations.ResolveViolation(ctx, v.ID, "ADMIN", "first")
			Expect(err).NotTo(HaveOccurred())

			_, err = violations.ResolveViolation(ctx, v.ID, "ADMIN", "second")
			Expect(serviceErrorType(err)).To(Equal(service.ErrorTypeInvalidArgument))
		})

		It("requires a resolver identity", func() {
			v := createViolation()
			_, err := violations.ResolveViolation(ctx, v.ID, "", "notes")
			Expect(serviceErrorType(err)).To(Equal(service.ErrorTypeInvalidArgument))
		})

		It("returns NOT_FOUND for an unknown violation", func() {
			_, err := violations.ResolveViolation(ctx, "no-such-id", "ADMIN", "notes")
			Expect(serviceErrorType(err)).To(Equal(service.ErrorTypeNotFound))
		})
	})

	Describe("ListViolations", func() {
		It("filters by state", func() {
			open := createViolation()
			resolvedSource := createViolation()
			_, err := violations.ResolveViolation(ctx, resolvedSource.ID, "ADMIN", "ok")
			Expect(err).NotTo(HaveOccurred())

			state := model.ViolationStateOpen
			found, err := violations.ListViolations(ctx, store.ViolationFilter{State: &state})
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(HaveLen(1))
			Expect(found[0].ID).To(Equal(open.ID))
		})
	})
})
