package service_test

import (
	"context"
	"errors"
	"time"

	"github.com/dwh-project/clone-governor/internal/metrics"
	"github.com/dwh-project/clone-governor/internal/platform"
	"github.com/dwh-project/clone-governor/internal/service"
	"github.com/dwh-project/clone-governor/internal/store/model"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Reaper", func() {
	var (
		env    *admissionTestEnv
		reaper service.Reaper
		ctx    context.Context
	)

	shortExpiry := 1

	BeforeEach(func() {
		env = newAdmissionTestEnv()
		ctx = context.Background()
		env.setLimits(ctx, model.LimitConfig{
			Environment:        "DEV",
			MaxClonesPerUser:   5,
			DefaultExpiryHours: &shortExpiry,
			AllowSchemaClones:  true,
		})
		reaper = service.NewReaper(env.store, env.admission, env.audit, metrics.Noop{}, discardLogger(), "CLONE_REAPER")
	})

	AfterEach(func() {
		env.close()
	})

	expireNow := func(cloneID string) {
		past := time.Now().Add(-time.Minute)
		Expect(env.db.Model(&model.Clone{}).Where("id = ?", cloneID).
			Update("expires_at", past).Error).NotTo(HaveOccurred())
	}

	It("reports candidates without deleting on a dry run", func() {
		clone, _, err := env.admission.RequestClone(ctx, schemaRequest("ALICE"))
		Expect(err).NotTo(HaveOccurred())
		expireNow(clone.ID)

		report, err := reaper.Sweep(ctx, nil, true)
		Expect(err).NotTo(HaveOccurred())
		Expect(report.DryRun).To(BeTrue())
		Expect(report.Candidates).To(HaveLen(1))
		Expect(report.Candidates[0].CloneName).To(Equal(clone.Name))
		Expect(report.Deleted).To(BeZero())

		got, err := env.store.Clone().Get(ctx, clone.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.State).To(Equal(model.CloneStateActive))
	})

	It("deletes expired clones as the reaper identity", func() {
		expired, _, err := env.admission.RequestClone(ctx, schemaRequest("ALICE"))
		Expect(err).NotTo(HaveOccurred())
		expireNow(expired.ID)

		fresh, _, err := env.admission.RequestClone(ctx, schemaRequest("BOB"))
		Expect(err).NotTo(HaveOccurred())

		report, err := reaper.Sweep(ctx, nil, false)
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Deleted).To(Equal(1))
		Expect(report.Failures).To(BeEmpty())

		got, err := env.store.Clone().Get(ctx, expired.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.State).To(Equal(model.CloneStateDeleted))
		Expect(got.DeletedBy).To(Equal("CLONE_REAPER"))

		untouched, err := env.store.Clone().Get(ctx, fresh.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(untouched.State).To(Equal(model.CloneStateActive))

		records := env.auditRecords(ctx, model.AuditOpCloneDelete)
		Expect(records).To(HaveLen(1))
		Expect(records[0].Actor).To(Equal("CLONE_REAPER"))

		expireRecords := env.auditRecords(ctx, model.AuditOpCloneExpire)
		Expect(expireRecords).To(HaveLen(1))
		Expect(expireRecords[0].CloneName).To(Equal(expired.Name))
		Expect(expireRecords[0].Metadata).To(HaveKeyWithValue("owner", "ALICE"))
	})

	It("collects failures without aborting the sweep", func() {
		first, _, err := env.admission.RequestClone(ctx, schemaRequest("ALICE"))
		Expect(err).NotTo(HaveOccurred())
		second, _, err := env.admission.RequestClone(ctx, schemaRequest("BOB"))
		Expect(err).NotTo(HaveOccurred())
		expireNow(first.ID)
		expireNow(second.ID)

		stuck := "HR." + first.Name
		env.platform.dropErr = func(kind platform.ObjectKind, name string) error {
			if kind == platform.ObjectSchema && name == stuck {
				return errors.New("schema locked")
			}
			return nil
		}

		report, err := reaper.Sweep(ctx, nil, false)
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Deleted).To(Equal(1))
		Expect(report.Failures).To(HaveLen(1))
		Expect(report.Failures[0].CloneName).To(Equal(first.Name))

		got, err := env.store.Clone().Get(ctx, second.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.State).To(Equal(model.CloneStateDeleted))
	})
})
