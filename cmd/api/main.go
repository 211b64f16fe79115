package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/qsecurex/portal/internal/api/handlers"
	"github.com/qsecurex/portal/internal/api/router"
	"github.com/qsecurex/portal/internal/config"
	"github.com/qsecurex/portal/internal/integrations"
	"github.com/qsecurex/portal/internal/pkg/logger"
	"github.com/qsecurex/portal/internal/pkg/validator"
	"github.com/qsecurex/portal/internal/providers"
	"github.com/qsecurex/portal/internal/repository/postgres"
	"github.com/qsecurex/portal/internal/services"
	"github.com/qsecurex/portal/internal/worker"
	"github.com/qsecurex/portal/migrations"
	"golang.org/x/sync/errgroup"
)

// @title QSecureX Portal API
// @version 1.0
// @description License purchase, issuance and gated installer downloads.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.Init(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		OutputPath: cfg.Logging.OutputPath,
		Service:    "qsecurex-api",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.New(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	applied, err := postgres.RunMigrations(ctx, db, migrations.GetFS())
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.WithFields(map[string]interface{}{
		"driver":  cfg.Database.Driver,
		"applied": applied,
	}).Info("Database ready")

	store, err := providers.NewArtifactStore(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialise artifact storage: %w", err)
	}
	if store == nil {
		log.Warn("STORAGE_PROVIDER is none; downloads will fail with NOT_CONFIGURED")
	}

	gateway := integrations.NewRazorpayClient(cfg.Payment)
	if !gateway.Configured() {
		log.Warn("Razorpay credentials missing; checkout is disabled")
	}

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	licenseRepo := postgres.NewLicenseRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)
	purchaseRepo := postgres.NewPurchaseRepository(db)
	downloadRepo := postgres.NewDownloadRepository(db)
	settingRepo := postgres.NewSettingRepository(db)
	requestRepo := postgres.NewFreeRequestRepository(db)
	deviceRepo := postgres.NewDeviceRepository(db)

	// Services
	userService := services.NewUserService(userRepo, cfg.Auth, log)
	entitlementService := services.NewEntitlementService(licenseRepo, downloadRepo)
	licenseService := services.NewLicenseService(licenseRepo, userRepo, nil, log)
	paymentService := services.NewPaymentService(gateway, paymentRepo, licenseRepo, nil, services.PaymentConfig{
		Currency: cfg.Payment.Currency,
		OrderTTL: cfg.Worker.OrderTTL,
	}, log)
	downloadService := services.NewDownloadService(entitlementService, downloadRepo, settingRepo, store,
		providers.Artifacts(cfg.Storage), cfg.Storage.LinkTTL, log)
	requestService := services.NewFreeRequestService(requestRepo, nil, log)
	deviceService := services.NewDeviceService(deviceRepo, licenseRepo, log)
	adminService := services.NewAdminService(userRepo, licenseRepo, purchaseRepo, requestRepo, log)

	val := validator.New()
	handler := router.New(ctx, cfg, log, &router.Handlers{
		Health:      handlers.NewHealthHandler(db, handlers.Backends{Storage: store != nil, Payments: gateway.Configured()}, log),
		Auth:        handlers.NewAuthHandler(userService, cfg, log, val),
		Payment:     handlers.NewPaymentHandler(paymentService, log, val),
		License:     handlers.NewLicenseHandler(licenseService, log),
		FreeRequest: handlers.NewFreeRequestHandler(requestService, log, val),
		Download:    handlers.NewDownloadHandler(downloadService, log),
		Device:      handlers.NewDeviceHandler(deviceService, log, val),
		Admin:       handlers.NewAdminHandler(adminService, licenseService, downloadService, log, val),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.WithFields(map[string]interface{}{
			"addr":        srv.Addr,
			"environment": cfg.Server.Environment,
		}).Info("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info("Shutting down HTTP server")
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.Worker.Enabled {
		maintenance, err := worker.NewMaintenance(paymentService, entitlementService, cfg.Worker.Schedule, log)
		if err != nil {
			return err
		}
		g.Go(func() error {
			return maintenance.Start(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("Server stopped")
	return nil
}
