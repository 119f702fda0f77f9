package jobs_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blueline-estimating/takeoff-api/internal/domain"
	"github.com/blueline-estimating/takeoff-api/internal/jobs"
	"github.com/blueline-estimating/takeoff-api/internal/repository"
	"github.com/blueline-estimating/takeoff-api/internal/service"
	"github.com/blueline-estimating/takeoff-api/tests/testutil"
)

type stubPriceSource struct {
	prices map[string]float64
	err    error
}

func (s *stubPriceSource) FetchPrices(context.Context) (map[string]float64, error) {
	return s.prices, s.err
}

func TestPriceSyncJob(t *testing.T) {
	db := testutil.SetupTestDB(t)
	log := testutil.TestLogger()

	companyRepo := repository.NewCompanyRepository(db)
	materialRepo := repository.NewMaterialRepository(db)
	materials := service.NewMaterialService(materialRepo, log)

	active := testutil.CreateTestCompany(t, db, "Acme Mechanical")
	dormant := testutil.CreateTestCompany(t, db, "Mothballed Inc")
	require.NoError(t, db.Model(&domain.Company{}).
		Where("id = ?", dormant.ID).
		Update("is_active", false).Error)

	activeMat := testutil.CreateTestMaterial(t, db, active.ID, "CU-075", 3.25, 0.10)
	dormantMat := testutil.CreateTestMaterial(t, db, dormant.ID, "CU-075", 3.25, 0.10)

	source := &stubPriceSource{prices: map[string]float64{"CU-075": 3.99}}
	job := jobs.NewPriceSyncJob(source, materials, companyRepo, log, time.Minute)
	job.Run()

	var price float64
	require.NoError(t, db.Model(&domain.Material{}).
		Where("id = ?", activeMat.ID).
		Select("list_price").Scan(&price).Error)
	assert.InDelta(t, 3.99, price, 1e-9)

	t.Run("inactive companies are skipped", func(t *testing.T) {
		var dormantPrice float64
		require.NoError(t, db.Model(&domain.Material{}).
			Where("id = ?", dormantMat.ID).
			Select("list_price").Scan(&dormantPrice).Error)
		assert.InDelta(t, 3.25, dormantPrice, 1e-9)
	})

	t.Run("feed failure leaves the pricebook alone", func(t *testing.T) {
		broken := jobs.NewPriceSyncJob(
			&stubPriceSource{err: errors.New("feed down")},
			materials, companyRepo, log, time.Minute)
		broken.Run()

		var after float64
		require.NoError(t, db.Model(&domain.Material{}).
			Where("id = ?", activeMat.ID).
			Select("list_price").Scan(&after).Error)
		assert.InDelta(t, 3.99, after, 1e-9)
	})
}

func TestAuditCleanupJob(t *testing.T) {
	db := testutil.SetupTestDB(t)
	log := testutil.TestLogger()

	auditService := service.NewAuditLogService(repository.NewAuditLogRepository(db), log)
	company := testutil.CreateTestCompany(t, db, "Acme Mechanical")
	ctx := testutil.ContextForUser(company.ID)

	auditService.Record(ctx, "create", "Project", "stale", "/api/v1/projects", 201)
	require.NoError(t, db.Model(&domain.AuditLog{}).
		Where("entity_id = ?", "stale").
		Update("created_at", time.Now().AddDate(0, 0, -400)).Error)
	auditService.Record(ctx, "create", "Project", "fresh", "/api/v1/projects", 201)

	job := jobs.NewAuditCleanupJob(auditService, log, jobs.DefaultAuditRetentionDays, time.Minute)
	job.Run()

	var count int64
	require.NoError(t, db.Model(&domain.AuditLog{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
