package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/blueline-estimating/takeoff-api/docs"
	"github.com/blueline-estimating/takeoff-api/internal/auth"
	"github.com/blueline-estimating/takeoff-api/internal/config"
	"github.com/blueline-estimating/takeoff-api/internal/database"
	"github.com/blueline-estimating/takeoff-api/internal/http/handler"
	"github.com/blueline-estimating/takeoff-api/internal/http/middleware"
	"github.com/blueline-estimating/takeoff-api/internal/http/router"
	"github.com/blueline-estimating/takeoff-api/internal/jobs"
	"github.com/blueline-estimating/takeoff-api/internal/logger"
	"github.com/blueline-estimating/takeoff-api/internal/pricefeed"
	"github.com/blueline-estimating/takeoff-api/internal/repository"
	"github.com/blueline-estimating/takeoff-api/internal/service"
)

// @title Blueline Takeoff API
// @version 1.0
// @description Takeoff computation engine for construction estimating: drawing scales, WBS categorization, the takeoff ledger, quantity rollups, and RFQ assembly

// @contact.name API Support
// @contact.email support@blueline-estimating.com

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
// @name X-API-Key
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
		docs.SwaggerInfo.Host = "takeoff-staging.blueline-estimating.com"
	case "production":
		docs.SwaggerInfo.Host = "api.blueline-estimating.com"
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

	// Connect to database with retry logic
	db, err := database.NewDatabase(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Connect to the ERP price feed (optional, read-only)
	// The app continues without it if not configured
	var priceFeed *pricefeed.Client
	if cfg.PriceFeed.Enabled {
		priceFeed, err = pricefeed.NewClient(&cfg.PriceFeed, log)
		if err != nil {
			log.Warn("Price feed connection failed, continuing without it", zap.Error(err))
		} else if priceFeed != nil {
			log.Info("Price feed connected",
				zap.Int("max_open_conns", cfg.PriceFeed.MaxOpenConns),
				zap.Int("query_timeout_seconds", cfg.PriceFeed.QueryTimeout),
			)
		}
	} else {
		log.Info("Price feed not configured, skipping")
	}

	// Initialize repositories
	companyRepo := repository.NewCompanyRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	drawingRepo := repository.NewDrawingRepository(db)
	detectionRepo := repository.NewDetectionRepository(db)
	customScaleRepo := repository.NewCustomScaleRepository(db)
	pageScaleRepo := repository.NewPageScaleRepository(db)
	scaleZoneRepo := repository.NewScaleZoneRepository(db)
	wbsRepo := repository.NewWbsRepository(db)
	materialRepo := repository.NewMaterialRepository(db)
	takeoffRepo := repository.NewTakeoffRepository(db)
	rfqRepo := repository.NewRfqRepository(db)
	auditLogRepo := repository.NewAuditLogRepository(db)

	// Initialize services
	companyService := service.NewCompanyService(companyRepo, materialRepo, log)
	projectService := service.NewProjectService(projectRepo, wbsRepo, log)
	drawingService := service.NewDrawingService(drawingRepo, projectRepo, log)
	scaleService := service.NewScaleService(customScaleRepo, pageScaleRepo, scaleZoneRepo, drawingService, log)
	wbsService := service.NewWbsService(wbsRepo, projectRepo, log)
	materialService := service.NewMaterialService(materialRepo, log)
	takeoffService := service.NewTakeoffService(takeoffRepo, materialRepo, wbsRepo, drawingService, log)
	rfqService := service.NewRfqService(rfqRepo, materialRepo, wbsRepo, takeoffService, drawingService, log)
	detectionService := service.NewDetectionService(detectionRepo, wbsRepo, drawingService, log)
	auditLogService := service.NewAuditLogService(auditLogRepo, log)

	// Initialize middleware
	authMiddleware := auth.NewMiddleware(cfg, log)
	companyFilterMiddleware := middleware.NewCompanyFilterMiddleware(log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)
	auditMiddleware := middleware.NewAuditMiddleware(auditLogService, nil, log)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(log)
	companyHandler := handler.NewCompanyHandler(companyService, log)
	projectHandler := handler.NewProjectHandler(projectService, log)
	drawingHandler := handler.NewDrawingHandler(drawingService, log)
	scaleHandler := handler.NewScaleHandler(scaleService, log)
	wbsHandler := handler.NewWbsHandler(wbsService, log)
	materialHandler := handler.NewMaterialHandler(materialService, log)
	takeoffHandler := handler.NewTakeoffHandler(takeoffService, log)
	rfqHandler := handler.NewRfqHandler(rfqService, log)
	detectionHandler := handler.NewDetectionHandler(detectionService, log)
	auditHandler := handler.NewAuditHandler(auditLogService, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		authMiddleware,
		companyFilterMiddleware,
		rateLimiter,
		auditMiddleware,
		authHandler,
		companyHandler,
		projectHandler,
		drawingHandler,
		scaleHandler,
		wbsHandler,
		materialHandler,
		takeoffHandler,
		rfqHandler,
		detectionHandler,
		auditHandler,
	)

	// Initialize and start scheduler for background jobs
	scheduler := jobs.NewScheduler(log)

	if priceFeed != nil {
		priceSyncJob := jobs.NewPriceSyncJob(priceFeed, materialService, companyRepo, log, cfg.PriceFeed.QueryTimeoutDuration())
		if err := scheduler.AddJob(jobs.PriceSyncJobName, cfg.PriceFeed.Schedule, priceSyncJob.Run); err != nil {
			log.Error("Failed to register price sync job", zap.Error(err))
		} else {
			log.Info("Price sync job registered", zap.String("cron_expr", cfg.PriceFeed.Schedule))
		}
	}

	auditCleanupJob := jobs.NewAuditCleanupJob(auditLogService, log, jobs.DefaultAuditRetentionDays, time.Minute)
	if err := scheduler.AddJob(jobs.AuditCleanupJobName, "0 30 4 * * *", auditCleanupJob.Run); err != nil {
		log.Error("Failed to register audit cleanup job", zap.Error(err))
	}

	if len(scheduler.GetJobNames()) > 0 {
		scheduler.Start()
		log.Info("Scheduler started", zap.Strings("jobs", scheduler.GetJobNames()))
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

		stopCtx := scheduler.Stop()
		<-stopCtx.Done()
		log.Info("Scheduler stopped")

		// Graceful shutdown with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		if priceFeed != nil {
			if err := priceFeed.Close(); err != nil {
				log.Warn("Error closing price feed connection", zap.Error(err))
			}
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
