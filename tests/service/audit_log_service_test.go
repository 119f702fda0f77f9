package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blueline-estimating/takeoff-api/internal/domain"
	"github.com/blueline-estimating/takeoff-api/internal/repository"
	"github.com/blueline-estimating/takeoff-api/internal/service"
	"github.com/blueline-estimating/takeoff-api/tests/testutil"
)

func newAuditService(t *testing.T, e *env) *service.AuditLogService {
	t.Helper()
	return service.NewAuditLogService(repository.NewAuditLogRepository(e.db), testutil.TestLogger())
}

func TestAuditRecordAndList(t *testing.T) {
	e := newEnv(t)
	audits := newAuditService(t, e)

	audits.Record(e.ctx, "create", "TakeoffItem", "abc", "/api/v1/drawings/x/takeoff-items", 201)
	audits.Record(e.ctx, "delete", "TakeoffItem", "abc", "/api/v1/takeoff-items/abc", 204)
	audits.Record(e.ctx, "update", "Project", "def", "/api/v1/projects/def", 200)

	t.Run("list with action filter", func(t *testing.T) {
		logs, total, err := audits.List(e.ctx, service.AuditLogQueryParams{
			Action:   "create",
			Page:     1,
			PageSize: 50,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, logs, 1)
		assert.Equal(t, "TakeoffItem", logs[0].EntityType)
		assert.Equal(t, 201, logs[0].StatusCode)
	})

	t.Run("entity trail", func(t *testing.T) {
		trail, err := audits.GetByEntity(e.ctx, "TakeoffItem", "abc", 50)
		require.NoError(t, err)
		assert.Len(t, trail, 2)
	})

	t.Run("company scoping hides other tenants", func(t *testing.T) {
		other := testutil.CreateTestCompany(t, e.db, "Rival Plumbing")
		otherCtx := testutil.ContextForUser(other.ID)

		logs, total, err := audits.List(otherCtx, service.AuditLogQueryParams{Page: 1, PageSize: 50})
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, logs)
	})

	t.Run("admins see every tenant", func(t *testing.T) {
		logs, total, err := audits.List(testutil.ContextForAdmin(), service.AuditLogQueryParams{Page: 1, PageSize: 50})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, logs, 3)
	})
}

func TestAuditCleanup(t *testing.T) {
	e := newEnv(t)
	audits := newAuditService(t, e)

	audits.Record(e.ctx, "create", "Project", "old", "/api/v1/projects", 201)
	audits.Record(e.ctx, "create", "Project", "new", "/api/v1/projects", 201)

	// Age one entry past the retention window
	err := e.db.Model(&domain.AuditLog{}).
		Where("entity_id = ?", "old").
		Update("created_at", time.Now().AddDate(0, 0, -120)).Error
	require.NoError(t, err)

	deleted, err := audits.CleanupOldLogs(e.ctx, 90)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, total, err := audits.List(testutil.ContextForAdmin(), service.AuditLogQueryParams{Page: 1, PageSize: 50})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}
