package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// AuditCleanupJobName is the name of the audit log retention job
const AuditCleanupJobName = "audit_cleanup"

// DefaultAuditRetentionDays is how long audit entries are kept
const DefaultAuditRetentionDays = 365

// AuditCleaner removes audit entries older than the retention period.
type AuditCleaner interface {
	CleanupOldLogs(ctx context.Context, retentionDays int) (int64, error)
}

// AuditCleanupJob trims the audit trail to the retention window.
type AuditCleanupJob struct {
	cleaner       AuditCleaner
	logger        *zap.Logger
	retentionDays int
	timeout       time.Duration
}

// NewAuditCleanupJob creates a new audit cleanup job.
func NewAuditCleanupJob(cleaner AuditCleaner, logger *zap.Logger, retentionDays int, timeout time.Duration) *AuditCleanupJob {
	if retentionDays <= 0 {
		retentionDays = DefaultAuditRetentionDays
	}
	return &AuditCleanupJob{
		cleaner:       cleaner,
		logger:        logger,
		retentionDays: retentionDays,
		timeout:       timeout,
	}
}

// Run executes the audit cleanup job.
func (j *AuditCleanupJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	if _, err := j.cleaner.CleanupOldLogs(ctx, j.retentionDays); err != nil {
		j.logger.Error("audit cleanup job failed", zap.Error(err))
	}
}
