package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/blueline-estimating/takeoff-api/internal/service"
)

// AuditConfig holds configuration for audit middleware
type AuditConfig struct {
	// SkipPaths contains path prefixes that should not be audited
	SkipPaths []string
	// SkipMethods contains HTTP methods that should not be audited
	SkipMethods []string
}

// DefaultAuditConfig returns default audit configuration
func DefaultAuditConfig() *AuditConfig {
	return &AuditConfig{
		SkipPaths: []string{
			"/health",
			"/health/db",
			"/health/ready",
			"/swagger",
		},
		SkipMethods: []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodOptions,
		},
	}
}

// AuditMiddleware records successful mutating requests to the audit log
type AuditMiddleware struct {
	auditService *service.AuditLogService
	config       *AuditConfig
	logger       *zap.Logger
}

// NewAuditMiddleware creates a new audit middleware
func NewAuditMiddleware(auditService *service.AuditLogService, config *AuditConfig, logger *zap.Logger) *AuditMiddleware {
	if config == nil {
		config = DefaultAuditConfig()
	}
	return &AuditMiddleware{
		auditService: auditService,
		config:       config,
		logger:       logger,
	}
}

// Audit wraps the handler and records an audit entry once it completes
func (m *AuditMiddleware) Audit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.shouldAudit(r) {
			next.ServeHTTP(w, r)
			return
		}

		rw := &responseCapture{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		// Only successful modifications end up in the audit log
		if rw.statusCode < 200 || rw.statusCode >= 300 {
			return
		}

		action := methodToAction(r.Method)
		if action == "" {
			return
		}

		entityType, entityID := extractEntityInfo(r)
		if m.auditService != nil {
			m.auditService.Record(r.Context(), action, entityType, entityID, r.URL.Path, rw.statusCode)
		}
	})
}

func (m *AuditMiddleware) shouldAudit(r *http.Request) bool {
	for _, method := range m.config.SkipMethods {
		if r.Method == method {
			return false
		}
	}
	for _, skipPath := range m.config.SkipPaths {
		if strings.HasPrefix(r.URL.Path, skipPath) {
			return false
		}
	}
	return true
}

func methodToAction(method string) string {
	switch method {
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return ""
	}
}

// extractEntityInfo derives the entity type and ID from the chi route
func extractEntityInfo(r *http.Request) (string, string) {
	entityMap := map[string]string{
		"companies":      "Company",
		"projects":       "Project",
		"drawings":       "Drawing",
		"detected-items": "DetectedItem",
		"scales":         "CustomScale",
		"zones":          "ScaleZone",
		"wbs":            "WbsCategory",
		"materials":      "Material",
		"takeoff-items":  "TakeoffItem",
		"rfqs":           "Rfq",
	}

	routeCtx := chi.RouteContext(r.Context())
	path := r.URL.Path
	entityID := ""
	if routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			path = pattern
		}
		entityID = routeCtx.URLParam("id")
	}

	// The entity is the last recognized segment in the route
	entityType := "Unknown"
	for _, part := range strings.Split(strings.Trim(path, "/"), "/") {
		if name, ok := entityMap[part]; ok {
			entityType = name
		}
	}
	return entityType, entityID
}

// responseCapture wraps ResponseWriter to capture the status code
type responseCapture struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseCapture) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
