package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/blueline-estimating/takeoff-api/internal/domain"
	"github.com/blueline-estimating/takeoff-api/internal/service"
)

// AuditHandler handles audit log related HTTP requests
type AuditHandler struct {
	auditService *service.AuditLogService
	logger       *zap.Logger
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(auditService *service.AuditLogService, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
		logger:       logger,
	}
}

// AuditLogListResponse represents a paginated list of audit logs
type AuditLogListResponse struct {
	Data       []domain.AuditLogDTO `json:"data"`
	Total      int64                `json:"total"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"pageSize"`
	TotalPages int                  `json:"totalPages"`
}

// List godoc
// @Summary List audit logs
// @Description Get audit log entries with optional filters. Non-admin callers see only their own company.
// @Tags Audit
// @Produce json
// @Param userId query string false "Filter by user ID"
// @Param action query string false "Filter by action" Enums(create, update, delete)
// @Param entityType query string false "Filter by entity type"
// @Param startTime query string false "Filter from time (RFC3339)"
// @Param endTime query string false "Filter to time (RFC3339)"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(50)
// @Success 200 {object} handler.AuditLogListResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /audit-logs [get]
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	params := service.AuditLogQueryParams{
		UserID:     r.URL.Query().Get("userId"),
		Action:     r.URL.Query().Get("action"),
		EntityType: r.URL.Query().Get("entityType"),
	}

	if raw := r.URL.Query().Get("startTime"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid startTime parameter")
			return
		}
		params.StartTime = &t
	}
	if raw := r.URL.Query().Get("endTime"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid endTime parameter")
			return
		}
		params.EndTime = &t
	}

	params.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if params.Page < 1 {
		params.Page = 1
	}
	params.PageSize, _ = strconv.Atoi(r.URL.Query().Get("pageSize"))
	if params.PageSize < 1 {
		params.PageSize = 50
	}
	if params.PageSize > 500 {
		params.PageSize = 500
	}

	logs, total, err := h.auditService.List(r.Context(), params)
	if err != nil {
		h.logger.Error("failed to list audit logs", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	totalPages := int((total + int64(params.PageSize) - 1) / int64(params.PageSize))
	respondJSON(w, http.StatusOK, AuditLogListResponse{
		Data:       logs,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages,
	})
}

// GetByEntity godoc
// @Summary Audit history for an entity
// @Description Get recent audit entries for a specific entity
// @Tags Audit
// @Produce json
// @Param entityType path string true "Entity type"
// @Param entityId path string true "Entity ID"
// @Param limit query int false "Maximum entries" default(50)
// @Success 200 {array} domain.AuditLogDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /audit-logs/entity/{entityType}/{entityId} [get]
func (h *AuditHandler) GetByEntity(w http.ResponseWriter, r *http.Request) {
	entityType := chi.URLParam(r, "entityType")
	entityID := chi.URLParam(r, "entityId")

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}

	logs, err := h.auditService.GetByEntity(r.Context(), entityType, entityID, limit)
	if err != nil {
		h.logger.Error("failed to get entity audit history",
			zap.Error(err),
			zap.String("entity_type", entityType),
			zap.String("entity_id", entityID),
		)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, logs)
}
