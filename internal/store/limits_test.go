package store_test

import (
	"context"

	"github.com/dwh-project/clone-governor/internal/store"
	"github.com/dwh-project/clone-governor/internal/store/model"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ = Describe("Limit Store", func() {
	var (
		db         *gorm.DB
		limitStore store.Limit
		ctx        context.Context
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(store.AutoMigrate(db)).To(Succeed())

		limitStore = store.NewLimit(db)
		ctx = context.Background()
	})

	AfterEach(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	It("returns ErrLimitNotFound for an unconfigured environment", func() {
		_, err := limitStore.Get(ctx, "DEV")
		Expect(err).To(MatchError(store.ErrLimitNotFound))
	})

	It("creates then replaces the environment's configuration", func() {
		expiry := 72
		_, err := limitStore.Upsert(ctx, model.LimitConfig{
			Environment:        "DEV",
			MaxClonesPerUser:   5,
			DefaultExpiryHours: &expiry,
			AllowSchemaClones:  true,
			UpdatedBy:          "ADMIN",
		})
		Expect(err).NotTo(HaveOccurred())

		_, err = limitStore.Upsert(ctx, model.LimitConfig{
			Environment:         "DEV",
			MaxClonesPerUser:    2,
			AllowSchemaClones:   true,
			AllowDatabaseClones: true,
			UpdatedBy:           "ADMIN2",
		})
		Expect(err).NotTo(HaveOccurred())

		cfg, err := limitStore.Get(ctx, "DEV")
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.MaxClonesPerUser).To(Equal(2))
		Expect(cfg.DefaultExpiryHours).To(BeNil())
		Expect(cfg.AllowDatabaseClones).To(BeTrue())
		Expect(cfg.UpdatedBy).To(Equal("ADMIN2"))
	})

	It("lists configurations ordered by environment", func() {
		for _, env := range []string{"TST", "DEV", "PRD"} {
			_, err := limitStore.Upsert(ctx, model.LimitConfig{
				Environment:       env,
				MaxClonesPerUser:  3,
				AllowSchemaClones: true,
			})
			Expect(err).NotTo(HaveOccurred())
		}

		configs, err := limitStore.List(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(configs).To(HaveLen(3))
		Expect(configs[0].Environment).To(Equal("DEV"))
		Expect(configs[2].Environment).To(Equal("TST"))
	})
})
