package jobs

import (
	"context"
	"time"

	"github.com/blueline-estimating/takeoff-api/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PriceSyncJobName is the name of the ERP price sync job
const PriceSyncJobName = "price_sync"

// PriceSource fetches current list prices keyed by part number.
type PriceSource interface {
	FetchPrices(ctx context.Context) (map[string]float64, error)
}

// PricebookUpdater applies fetched prices to a company's material catalog.
// This interface allows the job to call the service without importing the
// service package directly.
type PricebookUpdater interface {
	ApplyPrices(ctx context.Context, companyID uuid.UUID, prices map[string]float64) (int, error)
}

// CompanyLister enumerates the companies whose pricebooks are synced.
type CompanyLister interface {
	GetAll(ctx context.Context) ([]domain.Company, error)
}

// PriceSyncJob refreshes every company's material list prices from the ERP
// price feed.
type PriceSyncJob struct {
	source    PriceSource
	updater   PricebookUpdater
	companies CompanyLister
	logger    *zap.Logger
	timeout   time.Duration
}

// NewPriceSyncJob creates a new price sync job.
// The timeout controls how long one full sync is allowed to run.
func NewPriceSyncJob(source PriceSource, updater PricebookUpdater, companies CompanyLister, logger *zap.Logger, timeout time.Duration) *PriceSyncJob {
	return &PriceSyncJob{
		source:    source,
		updater:   updater,
		companies: companies,
		logger:    logger,
		timeout:   timeout,
	}
}

// Run executes the price sync job.
// This is called by the scheduler according to the cron expression.
func (j *PriceSyncJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	j.logger.Info("starting price sync job")

	prices, err := j.source.FetchPrices(ctx)
	if err != nil {
		j.logger.Error("price feed fetch failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}
	if len(prices) == 0 {
		j.logger.Warn("price feed returned no rows, skipping sync")
		return
	}

	companies, err := j.companies.GetAll(ctx)
	if err != nil {
		j.logger.Error("failed to list companies for price sync",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	totalUpdated := 0
	failed := 0
	for i := range companies {
		if !companies[i].IsActive {
			continue
		}
		updated, err := j.updater.ApplyPrices(ctx, companies[i].ID, prices)
		if err != nil {
			j.logger.Error("price sync failed for company",
				zap.String("company_id", companies[i].ID.String()),
				zap.Error(err))
			failed++
			continue
		}
		totalUpdated += updated
	}

	j.logger.Info("completed price sync job",
		zap.Int("feed_rows", len(prices)),
		zap.Int("materials_updated", totalUpdated),
		zap.Int("companies_failed", failed),
		zap.Duration("duration", time.Since(start)))
}
