package repository

import (
	"context"

	"github.com/blueline-estimating/takeoff-api/internal/auth"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxPageSize is the maximum allowed page size for paginated queries
const MaxPageSize = 200

// ApplyCompanyFilter applies the multi-tenant company filter to a GORM query
// This should be called on queries that need to be filtered by company_id
// If no filter is set (admin with access to all companies), the query is
// returned unchanged
func ApplyCompanyFilter(ctx context.Context, query *gorm.DB) *gorm.DB {
	companyID := auth.GetEffectiveCompanyFilter(ctx)
	if companyID != nil {
		return query.Where("company_id = ?", *companyID)
	}
	return query
}

// ApplyCompanyFilterWithColumn applies the company filter using a specific
// column name. Use this when the company_id column needs table qualification.
func ApplyCompanyFilterWithColumn(ctx context.Context, query *gorm.DB, columnName string) *gorm.DB {
	companyID := auth.GetEffectiveCompanyFilter(ctx)
	if companyID != nil {
		return query.Where(columnName+" = ?", *companyID)
	}
	return query
}

// MustHaveCompanyAccess checks if the caller may touch a record owned by the
// given company. Returns true when no filter is set (access to all).
func MustHaveCompanyAccess(ctx context.Context, recordCompanyID uuid.UUID) bool {
	companyID := auth.GetEffectiveCompanyFilter(ctx)
	if companyID == nil {
		return true
	}
	return *companyID == recordCompanyID
}
