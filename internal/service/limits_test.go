package service_test

import (
	"context"

	"github.com/dwh-project/clone-governor/internal/service"
	"github.com/dwh-project/clone-governor/internal/store/model"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Limit Service", func() {
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

	It("rejects an unknown environment", func() {
		_, err := env.limits.Get(ctx, "QA")
		Expect(serviceErrorType(err)).To(Equal(service.ErrorTypeInvalidArgument))
	})

	It("returns NOT_FOUND for an unconfigured environment", func() {
		_, err := env.limits.Get(ctx, "ACC")
		Expect(serviceErrorType(err)).To(Equal(service.ErrorTypeNotFound))
	})

	It("validates the configuration on write", func() {
		_, err := env.limits.Set(ctx, "ADMIN", model.LimitConfig{
			Environment:      "DEV",
			MaxClonesPerUser: 0,
		})
		Expect(serviceErrorType(err)).To(Equal(service.ErrorTypeInvalidArgument))

		zero := 0
		_, err = env.limits.Set(ctx, "ADMIN", model.LimitConfig{
			Environment:        "DEV",
			MaxClonesPerUser:   3,
			DefaultExpiryHours: &zero,
		})
		Expect(serviceErrorType(err)).To(Equal(service.ErrorTypeInvalidArgument))
	})

	It("serves updated configuration immediately after a write", func() {
		_, err := env.limits.Set(ctx, "ADMIN", model.LimitConfig{
			Environment:       "DEV",
			MaxClonesPerUser:  5,
			AllowSchemaClones: true,
		})
		Expect(err).NotTo(HaveOccurred())

		cfg, err := env.limits.Get(ctx, "DEV")
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.MaxClonesPerUser).To(Equal(5))

		// Second write must invalidate the read-through cache.
		_, err = env.limits.Set(ctx, "ADMIN2", model.LimitConfig{
			Environment:       "DEV",
			MaxClonesPerUser:  2,
			AllowSchemaClones: true,
		})
		Expect(err).NotTo(HaveOccurred())

		cfg, err = env.limits.Get(ctx, "DEV")
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.MaxClonesPerUser).To(Equal(2))
		Expect(cfg.UpdatedBy).To(Equal("ADMIN2"))

		records := env.auditRecords(ctx, model.AuditOpLimitsUpdate)
		Expect(records).To(HaveLen(2))
	})
})
