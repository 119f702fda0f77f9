package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/blueline-estimating/takeoff-api/internal/auth"
	"github.com/blueline-estimating/takeoff-api/internal/config"
	"github.com/blueline-estimating/takeoff-api/internal/database"
	"github.com/blueline-estimating/takeoff-api/internal/http/handler"
	"github.com/blueline-estimating/takeoff-api/internal/http/middleware"

	_ "github.com/blueline-estimating/takeoff-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg                     *config.Config
	logger                  *zap.Logger
	db                      *gorm.DB
	authMiddleware          *auth.Middleware
	companyFilterMiddleware *middleware.CompanyFilterMiddleware
	rateLimiter             *middleware.RateLimiter
	auditMiddleware         *middleware.AuditMiddleware
	authHandler             *handler.AuthHandler
	companyHandler          *handler.CompanyHandler
	projectHandler          *handler.ProjectHandler
	drawingHandler          *handler.DrawingHandler
	scaleHandler            *handler.ScaleHandler
	wbsHandler              *handler.WbsHandler
	materialHandler         *handler.MaterialHandler
	takeoffHandler          *handler.TakeoffHandler
	rfqHandler              *handler.RfqHandler
	detectionHandler        *handler.DetectionHandler
	auditHandler            *handler.AuditHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	companyFilterMiddleware *middleware.CompanyFilterMiddleware,
	rateLimiter *middleware.RateLimiter,
	auditMiddleware *middleware.AuditMiddleware,
	authHandler *handler.AuthHandler,
	companyHandler *handler.CompanyHandler,
	projectHandler *handler.ProjectHandler,
	drawingHandler *handler.DrawingHandler,
	scaleHandler *handler.ScaleHandler,
	wbsHandler *handler.WbsHandler,
	materialHandler *handler.MaterialHandler,
	takeoffHandler *handler.TakeoffHandler,
	rfqHandler *handler.RfqHandler,
	detectionHandler *handler.DetectionHandler,
	auditHandler *handler.AuditHandler,
) *Router {
	return &Router{
		cfg:                     cfg,
		logger:                  logger,
		db:                      db,
		authMiddleware:          authMiddleware,
		companyFilterMiddleware: companyFilterMiddleware,
		rateLimiter:             rateLimiter,
		auditMiddleware:         auditMiddleware,
		authHandler:             authHandler,
		companyHandler:          companyHandler,
		projectHandler:          projectHandler,
		drawingHandler:          drawingHandler,
		scaleHandler:            scaleHandler,
		wbsHandler:              wbsHandler,
		materialHandler:         materialHandler,
		takeoffHandler:          takeoffHandler,
		rfqHandler:              rfqHandler,
		detectionHandler:        detectionHandler,
		auditHandler:            auditHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP) // Apply IP-based rate limiting globally

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with detailed stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
				"max_idle_closed":      stats.MaxIdleClosed,
				"max_lifetime_closed":  stats.MaxLifetimeClosed,
			},
		})
	})

	// Combined readiness check (checks all dependencies)
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		if err := database.HealthCheck(rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if allHealthy {
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "healthy",
				"checks": checks,
			})
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "unhealthy",
				"checks": checks,
			})
		}
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes (no auth required)
		r.Get("/companies", rt.companyHandler.List)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)
			r.Use(rt.companyFilterMiddleware.Filter)
			r.Use(rt.auditMiddleware.Audit) // Audit all modifications

			// Auth
			r.Get("/auth/me", rt.authHandler.Me)

			// Companies
			r.Post("/companies", rt.companyHandler.Create)
			r.Get("/companies/{id}", rt.companyHandler.Get)

			// Scale catalog
			r.Get("/scales/standard", rt.scaleHandler.Catalog)
			r.Delete("/scales/{id}", rt.scaleHandler.DeleteCustomScale)

			// Projects
			r.Route("/projects", func(r chi.Router) {
				r.Get("/", rt.projectHandler.List)
				r.Post("/", rt.projectHandler.Create)
				r.Get("/{id}", rt.projectHandler.Get)
				r.Put("/{id}", rt.projectHandler.Update)
				r.Delete("/{id}", rt.projectHandler.Delete)

				// Drawings
				r.Get("/{id}/drawings", rt.drawingHandler.ListByProject)
				r.Post("/{id}/drawings", rt.drawingHandler.Create)

				// Custom scales
				r.Get("/{id}/scales", rt.scaleHandler.ListCustomScales)
				r.Post("/{id}/scales", rt.scaleHandler.CreateCustomScale)

				// WBS tree
				r.Post("/{id}/wbs", rt.wbsHandler.Create)
				r.Get("/{id}/wbs/tree", rt.wbsHandler.GetTree)
				r.Post("/{id}/wbs/seed", rt.wbsHandler.SeedDefaults)

				// Rollup and RFQs
				r.Get("/{id}/rollup", rt.takeoffHandler.RollupByProject)
				r.Get("/{id}/rfqs", rt.rfqHandler.ListByProject)
				r.Post("/{id}/rfqs", rt.rfqHandler.Create)
				r.Post("/{id}/rfqs/assemble", rt.rfqHandler.AssembleFromRollup)
			})

			// WBS categories
			r.Route("/wbs", func(r chi.Router) {
				r.Get("/{id}", rt.wbsHandler.Get)
				r.Get("/{id}/path", rt.wbsHandler.GetPath)
				r.Put("/{id}", rt.wbsHandler.Update)
				r.Delete("/{id}", rt.wbsHandler.Delete)
			})

			// Drawings
			r.Route("/drawings", func(r chi.Router) {
				r.Get("/{id}", rt.drawingHandler.Get)
				r.Put("/{id}", rt.drawingHandler.Update)
				r.Delete("/{id}", rt.drawingHandler.Delete)

				// Scales
				r.Get("/{id}/scales", rt.scaleHandler.ListPageScales)
				r.Post("/{id}/calibrate", rt.scaleHandler.Calibrate)
				r.Route("/{id}/pages/{page}", func(r chi.Router) {
					r.Get("/scale", rt.scaleHandler.GetPageScale)
					r.Put("/scale", rt.scaleHandler.SetPageScale)
					r.Delete("/scale", rt.scaleHandler.ClearPageScale)
					r.Get("/scale/resolve", rt.scaleHandler.Resolve)
					r.Get("/convert", rt.scaleHandler.Convert)
					r.Get("/zones", rt.scaleHandler.ListZones)
					r.Post("/zones", rt.scaleHandler.CreateZone)
				})

				// Takeoff ledger
				r.Get("/{id}/takeoff-items", rt.takeoffHandler.ListByDrawing)
				r.Post("/{id}/takeoff-items", rt.takeoffHandler.Create)
				r.Post("/{id}/takeoff-items/bulk-reassign", rt.takeoffHandler.BulkReassignWbs)
				r.Get("/{id}/rollup", rt.takeoffHandler.RollupByDrawing)

				// Detections
				r.Get("/{id}/detected-items", rt.detectionHandler.ListByDrawing)
				r.Post("/{id}/detected-items", rt.detectionHandler.Create)
				r.Get("/{id}/detected-items/counts", rt.detectionHandler.CountsByType)
			})

			// Scale zones
			r.Route("/zones", func(r chi.Router) {
				r.Put("/{id}", rt.scaleHandler.UpdateZone)
				r.Delete("/{id}", rt.scaleHandler.DeleteZone)
			})

			// Takeoff items
			r.Route("/takeoff-items", func(r chi.Router) {
				r.Get("/{id}", rt.takeoffHandler.Get)
				r.Put("/{id}", rt.takeoffHandler.Update)
				r.Delete("/{id}", rt.takeoffHandler.Delete)
			})

			// Detection records
			r.Route("/detected-items", func(r chi.Router) {
				r.Put("/{id}", rt.detectionHandler.Update)
				r.Delete("/{id}", rt.detectionHandler.Delete)
			})

			// RFQs
			r.Route("/rfqs", func(r chi.Router) {
				r.Get("/{id}", rt.rfqHandler.Get)
				r.Delete("/{id}", rt.rfqHandler.Delete)
				r.Post("/{id}/items", rt.rfqHandler.AddItem)
				r.Put("/{id}/status", rt.rfqHandler.SetStatus)
			})

			// Materials
			r.Route("/materials", func(r chi.Router) {
				r.Get("/", rt.materialHandler.List)
				r.Post("/", rt.materialHandler.Create)
				r.Get("/categories", rt.materialHandler.Categories)
				r.Post("/seed-defaults", rt.materialHandler.SeedDefaults)
				r.Get("/{id}", rt.materialHandler.Get)
				r.Put("/{id}", rt.materialHandler.Update)
				r.Delete("/{id}", rt.materialHandler.Deactivate)
			})

			// Audit logs
			r.Route("/audit-logs", func(r chi.Router) {
				r.Get("/", rt.auditHandler.List)
				r.Get("/entity/{entityType}/{entityId}", rt.auditHandler.GetByEntity)
			})
		})
	})

	return r
}
