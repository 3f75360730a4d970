package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/facturaec/proforma-api/docs"
	"github.com/facturaec/proforma-api/internal/auth"
	"github.com/facturaec/proforma-api/internal/config"
	"github.com/facturaec/proforma-api/internal/database"
	"github.com/facturaec/proforma-api/internal/http/handler"
	"github.com/facturaec/proforma-api/internal/http/middleware"
	"github.com/facturaec/proforma-api/internal/http/router"
	"github.com/facturaec/proforma-api/internal/jobs"
	"github.com/facturaec/proforma-api/internal/logger"
	"github.com/facturaec/proforma-api/internal/pdf"
	"github.com/facturaec/proforma-api/internal/repository"
	"github.com/facturaec/proforma-api/internal/service"
	"github.com/facturaec/proforma-api/internal/storage"
	"go.uber.org/zap"
)

// @title Proforma API
// @version 1.0
// @description Proforma and client management API with per-user numbering, tax aggregation, and PDF export
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email soporte@facturaec.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description API Key for system operations
// @Security BearerAuth
// @Security ApiKeyAuth

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	// Configure Swagger host based on environment
	switch basicCfg.App.Environment {
	case "staging":
		docs.SwaggerInfo.Host = "proforma-api-staging.azurewebsites.net"
	case "production":
		docs.SwaggerInfo.Host = "api.facturaec.io"
	default:
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// Load full configuration with secrets
	// In development: uses environment variables
	// In staging/production: fetches from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	// Connect to database
	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Initialize storage for archived PDFs
	pdfStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// Initialize repositories
	clientRepo := repository.NewClientRepository(db)
	proformaRepo := repository.NewProformaRepository(db)
	itemRepo := repository.NewItemRepository(db)
	sequenceRepo := repository.NewSequenceRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Initialize services
	sequenceService := service.NewSequenceService(sequenceRepo, log)
	clientService := service.NewClientService(clientRepo, log)
	proformaService := service.NewProformaService(proformaRepo, itemRepo, clientRepo, sequenceService, log)

	pdfGenerator := pdf.NewGenerator(cfg.App.BusinessName)
	pdfService := service.NewProformaPDFService(proformaRepo, clientRepo, pdfGenerator, pdfStorage, log)

	// Initialize middleware
	authMiddleware := auth.NewMiddleware(cfg, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize handlers
	dashboardService := service.NewDashboardService(clientRepo, proformaRepo, log)

	clientHandler := handler.NewClientHandler(clientService, log)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, log)
	proformaHandler := handler.NewProformaHandler(proformaService, pdfService, log)
	authHandler := handler.NewAuthHandler(userRepo, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		authMiddleware,
		rateLimiter,
		clientHandler,
		proformaHandler,
		authHandler,
		dashboardHandler,
	)

	// Initialize and start scheduler for background jobs
	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler = jobs.NewScheduler(log)

		auditJob := jobs.NewConsistencyAuditJob(proformaRepo, sequenceRepo, log)
		if err := scheduler.AddJob("consistency-audit", cfg.Jobs.ConsistencyAuditSchedule, auditJob.Run); err != nil {
			log.Error("Failed to register consistency audit job", zap.Error(err))
		} else {
			scheduler.Start()
			log.Info("Scheduler started with consistency audit job",
				zap.String("cron_expr", cfg.Jobs.ConsistencyAuditSchedule),
			)
		}
	} else {
		log.Info("Background jobs disabled")
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		// Stop scheduler if running
		if scheduler != nil {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
