package service

import (
	"context"
	"time"

	"github.com/blueline-estimating/takeoff-api/internal/auth"
	"github.com/blueline-estimating/takeoff-api/internal/domain"
	"github.com/blueline-estimating/takeoff-api/internal/mapper"
	"github.com/blueline-estimating/takeoff-api/internal/repository"
	"go.uber.org/zap"
)

// AuditLogService handles the append-only audit trail of mutating API calls
type AuditLogService struct {
	auditRepo *repository.AuditLogRepository
	logger    *zap.Logger
}

// NewAuditLogService creates a new audit log service
func NewAuditLogService(auditRepo *repository.AuditLogRepository, logger *zap.Logger) *AuditLogService {
	return &AuditLogService{
		auditRepo: auditRepo,
		logger:    logger,
	}
}

// Record writes one audit entry for a completed request. Failures are logged
// and swallowed so auditing never breaks the request path.
func (s *AuditLogService) Record(ctx context.Context, action, entityType, entityID, path string, statusCode int) {
	entry := &domain.AuditLog{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Path:       path,
		StatusCode: statusCode,
	}

	if userCtx, ok := auth.FromContext(ctx); ok {
		entry.UserID = userCtx.UserID.String()
		entry.UserEmail = userCtx.Email
		companyID := userCtx.CompanyID
		entry.CompanyID = &companyID
	}

	if err := s.auditRepo.Create(ctx, entry); err != nil {
		s.logger.Error("failed to write audit log",
			zap.String("action", action),
			zap.String("path", path),
			zap.Error(err))
	}
}

// AuditLogQueryParams represents query parameters for listing audit logs
type AuditLogQueryParams struct {
	UserID     string
	Action     string
	EntityType string
	StartTime  *time.Time
	EndTime    *time.Time
	Page       int
	PageSize   int
}

// List retrieves audit logs with filters, scoped to the caller's company
func (s *AuditLogService) List(ctx context.Context, params AuditLogQueryParams) ([]domain.AuditLogDTO, int64, error) {
	filter := &repository.AuditLogFilter{
		UserID:     params.UserID,
		Action:     params.Action,
		EntityType: params.EntityType,
		StartTime:  params.StartTime,
		EndTime:    params.EndTime,
	}
	if userCtx, ok := auth.FromContext(ctx); ok && !userCtx.IsAdmin() {
		companyID := userCtx.CompanyID
		filter.CompanyID = &companyID
	}

	logs, total, err := s.auditRepo.List(ctx, filter, params.Page, params.PageSize)
	if err != nil {
		return nil, 0, err
	}

	dtos := make([]domain.AuditLogDTO, 0, len(logs))
	for i := range logs {
		dtos = append(dtos, *mapper.ToAuditLogDTO(&logs[i]))
	}
	return dtos, total, nil
}

// GetByEntity retrieves the audit trail of one entity
func (s *AuditLogService) GetByEntity(ctx context.Context, entityType, entityID string, limit int) ([]domain.AuditLogDTO, error) {
	logs, err := s.auditRepo.ListByEntity(ctx, entityType, entityID, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]domain.AuditLogDTO, 0, len(logs))
	for i := range logs {
		dtos = append(dtos, *mapper.ToAuditLogDTO(&logs[i]))
	}
	return dtos, nil
}

// CleanupOldLogs removes logs older than the retention period
func (s *AuditLogService) CleanupOldLogs(ctx context.Context, retentionDays int) (int64, error) {
	before := time.Now().AddDate(0, 0, -retentionDays)
	count, err := s.auditRepo.DeleteOlderThan(ctx, before)
	if err != nil {
		s.logger.Error("failed to cleanup old audit logs",
			zap.Int("retention_days", retentionDays),
			zap.Error(err))
		return 0, err
	}

	if count > 0 {
		s.logger.Info("cleaned up old audit logs",
			zap.Int64("deleted_count", count),
			zap.Int("retention_days", retentionDays))
	}
	return count, nil
}
