package store_test

import (
	"context"

	"github.com/dwh-project/clone-governor/internal/store"
	"github.com/dwh-project/clone-governor/internal/store/model"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestPolicy(name, policyType, environment string) model.Policy {
	return model.Policy{
		ID:          uuid.New().String(),
		Name:        name,
		PolicyType:  policyType,
		Description: "test policy",
		Severity:    model.SeverityWarning,
		Action:      model.ActionWarnAndLog,
		Environment: environment,
		Params:      map[string]any{},
		Active:      true,
		CreatedBy:   "ADMIN",
	}
}

var _ = Describe("Policy Store", func() {
	var (
		db          *gorm.DB
		policyStore store.Policy
		ctx         context.Context
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(store.AutoMigrate(db)).To(Succeed())

		policyStore = store.NewPolicy(db)
		ctx = context.Background()
	})

	AfterEach(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	Describe("Create", func() {
		It("persists the policy", func() {
			p := newTestPolicy("no-prd-clones", model.PolicyTypeEnvironmentRestriction, "PRD")
			created, err := policyStore.Create(ctx, p)

			Expect(err).NotTo(HaveOccurred())
			Expect(created.Active).To(BeTrue())
		})

		It("deactivates an existing active policy with the same name", func() {
			first := newTestPolicy("quota-dev", model.PolicyTypeUserQuota, "DEV")
			_, err := policyStore.Create(ctx, first)
			Expect(err).NotTo(HaveOccurred())

			second := newTestPolicy("quota-dev", model.PolicyTypeUserQuota, "DEV")
			second.Params = map[string]any{"max_clones": float64(3)}
			_, err = policyStore.Create(ctx, second)
			Expect(err).NotTo(HaveOccurred())

			old, err := policyStore.Get(ctx, first.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(old.Active).To(BeFalse())

			active, err := policyStore.GetByName(ctx, "quota-dev")
			Expect(err).NotTo(HaveOccurred())
			Expect(active.ID).To(Equal(second.ID))
		})
	})

	Describe("GetByName", func() {
		It("returns ErrPolicyNotFound when only inactive versions exist", func() {
			p := newTestPolicy("retired", model.PolicyTypeMaxAge, "")
			_, err := policyStore.Create(ctx, p)
			Expect(err).NotTo(HaveOccurred())
			_, err = policyStore.SetActive(ctx, "retired", false)
			Expect(err).NotTo(HaveOccurred())

			_, err = policyStore.GetByName(ctx, "retired")
			Expect(err).To(MatchError(store.ErrPolicyNotFound))
		})
	})

	Describe("List", func() {
		BeforeEach(func() {
			_, err := policyStore.Create(ctx, newTestPolicy("global-age", model.PolicyTypeMaxAge, ""))
			Expect(err).NotTo(HaveOccurred())
			_, err = policyStore.Create(ctx, newTestPolicy("dev-quota", model.PolicyTypeUserQuota, "DEV"))
			Expect(err).NotTo(HaveOccurred())
			_, err = policyStore.Create(ctx, newTestPolicy("prd-lock", model.PolicyTypeEnvironmentRestriction, "PRD"))
			Expect(err).NotTo(HaveOccurred())
		})

		It("matches environment-scoped and global policies", func() {
			env := "DEV"
			found, err := policyStore.List(ctx, store.PolicyFilter{Environment: &env})
			Expect(err).NotTo(HaveOccurred())

			names := make([]string, 0, len(found))
			for _, p := range found {
				names = append(names, p.Name)
			}
			Expect(names).To(ConsistOf("global-age", "dev-quota"))
		})

		It("filters by policy type", func() {
			policyType := model.PolicyTypeUserQuota
			found, err := policyStore.List(ctx, store.PolicyFilter{PolicyType: &policyType})
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(HaveLen(1))
			Expect(found[0].Name).To(Equal("dev-quota"))
		})

		It("filters by active flag", func() {
			_, err := policyStore.SetActive(ctx, "global-age", false)
			Expect(err).NotTo(HaveOccurred())

			active := true
			found, err := policyStore.List(ctx, store.PolicyFilter{Active: &active})
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(HaveLen(2))
		})
	})

	Describe("Delete", func() {
		It("removes the policy", func() {
			p := newTestPolicy("transient", model.PolicyTypeTimeRestriction, "")
			_, err := policyStore.Create(ctx, p)
			Expect(err).NotTo(HaveOccurred())

			Expect(policyStore.Delete(ctx, "transient")).To(Succeed())

			_, err = policyStore.Get(ctx, p.ID)
			Expect(err).To(MatchError(store.ErrPolicyNotFound))
		})

		It("returns ErrPolicyNotFound for a missing policy", func() {
			Expect(policyStore.Delete(ctx, "no-such-policy")).To(MatchError(store.ErrPolicyNotFound))
		})
	})
})
