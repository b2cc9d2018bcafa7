package main

import (
	"context"
	"log"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dwh-project/clone-governor/internal/apiserver"
	"github.com/dwh-project/clone-governor/internal/config"
	"github.com/dwh-project/clone-governor/internal/handlers/v1alpha1"
	"github.com/dwh-project/clone-governor/internal/metrics"
	"github.com/dwh-project/clone-governor/internal/platform"
	"github.com/dwh-project/clone-governor/internal/service"
	"github.com/dwh-project/clone-governor/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		return 1
	}

	logger := newLogger(cfg.Service.LogLevel)

	// Initialize database
	db, err := store.InitDB(cfg)
	if err != nil {
		logger.Error("failed to initialize database", slog.String("error", err.Error()))
		return 1
	}

	// Create store
	dataStore := store.NewStore(db)
	defer func() {
		if err := dataStore.Close(); err != nil {
			logger.Error("error closing database", slog.String("error", err.Error()))
		}
	}()

	copyTimeout, err := time.ParseDuration(cfg.Platform.CopyTimeout)
	if err != nil {
		logger.Error("failed to parse copy timeout", slog.String("error", err.Error()))
		return 1
	}
	reaperInterval, err := time.ParseDuration(cfg.Reaper.Interval)
	if err != nil {
		logger.Error("failed to parse reaper interval", slog.String("error", err.Error()))
		return 1
	}
	auditRetention, err := time.ParseDuration(cfg.Audit.Retention)
	if err != nil {
		logger.Error("failed to parse audit retention", slog.String("error", err.Error()))
		return 1
	}

	// Metrics registry
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	prom := metrics.NewProm("clone_governor")
	if err := prom.Register(registry); err != nil {
		logger.Error("failed to register metrics", slog.String("error", err.Error()))
		return 1
	}

	// Data-platform collaborator client
	commandTimeout, err := time.ParseDuration(cfg.Platform.CommandTimeout)
	if err != nil {
		logger.Error("failed to parse platform command timeout", slog.String("error", err.Error()))
		return 1
	}
	dataPlatform := platform.NewClient(cfg.Platform.URL, commandTimeout)

	// Services
	auditRecorder := service.NewAuditRecorder(dataStore, logger)
	limitService := service.NewLimitService(dataStore, auditRecorder)
	policyService, err := service.NewPolicyService(dataStore, auditRecorder)
	if err != nil {
		logger.Error("failed to initialize policy service", slog.String("error", err.Error()))
		return 1
	}
	admissionService := service.NewAdmissionService(
		dataStore, dataPlatform, limitService, auditRecorder, prom, logger,
		service.AdmissionConfig{
			CopyTimeout:       copyTimeout,
			RolePrefix:        cfg.Platform.RolePrefix,
			AdminRoleTemplate: cfg.Platform.AdminRoleTemplate,
		},
	)
	violationService := service.NewViolationService(dataStore, auditRecorder)
	reaper := service.NewReaper(dataStore, admissionService, auditRecorder, prom, logger, cfg.Reaper.Actor)

	// API handler and listener
	handler := v1alpha1.NewHandler(
		admissionService, policyService, limitService, violationService, auditRecorder, reaper, logger,
	)
	listener, err := net.Listen("tcp", cfg.Service.BindAddress)
	if err != nil {
		logger.Error("failed to create api listener", slog.String("error", err.Error()))
		return 1
	}
	defer listener.Close()

	srv := apiserver.New(cfg, listener, handler, registry, logger)

	// Setup signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var wg sync.WaitGroup
	if cfg.Reaper.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			service.RunReaper(ctx, reaper, reaperInterval, logger)
		}()
	}
	if auditRetention > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			service.RunRetention(ctx, auditRecorder, auditRetention, logger)
		}()
	}

	err = srv.Run(ctx)
	cancel()
	wg.Wait()

	if err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		return 1
	}
	return 0
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
