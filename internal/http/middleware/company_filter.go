package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/blueline-estimating/takeoff-api/internal/auth"
)

// CompanyFilterMiddleware handles multi-tenant data isolation.
// It derives the effective company filter from the authenticated user,
// optionally narrowed by platform admins via the X-Company-ID header or
// the company_id query parameter.
type CompanyFilterMiddleware struct {
	logger *zap.Logger
}

// NewCompanyFilterMiddleware creates a new company filter middleware
func NewCompanyFilterMiddleware(logger *zap.Logger) *CompanyFilterMiddleware {
	return &CompanyFilterMiddleware{
		logger: logger,
	}
}

// Filter sets the effective company filter in the request context.
// - Platform admins can narrow to a specific company, or see all data by default
// - Regular users are always scoped to their own company
func (m *CompanyFilterMiddleware) Filter(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userCtx, ok := auth.FromContext(r.Context())
		if !ok {
			// Authentication middleware rejects unauthenticated requests
			// before this point, so just pass through.
			next.ServeHTTP(w, r)
			return
		}

		var filter *auth.CompanyFilter

		requested := r.Header.Get("X-Company-ID")
		if requested == "" {
			requested = r.URL.Query().Get("company_id")
		}

		if requested != "" {
			companyID, err := uuid.Parse(requested)
			if err != nil {
				http.Error(w, "Invalid company_id parameter", http.StatusBadRequest)
				return
			}

			if !userCtx.CanAccessCompany(companyID) {
				m.logger.Warn("user attempted to access unauthorized company",
					zap.String("user_id", userCtx.UserID.String()),
					zap.String("user_company", userCtx.CompanyID.String()),
					zap.String("requested_company", requested),
				)
				http.Error(w, "Access denied: you cannot access data for this company", http.StatusForbidden)
				return
			}

			filter = &auth.CompanyFilter{
				CompanyID:        &companyID,
				RequestedByAdmin: userCtx.IsAdmin(),
			}
		} else if userCtx.IsAdmin() {
			// Admins with no explicit company see all data
			filter = &auth.CompanyFilter{}
		} else {
			companyID := userCtx.CompanyID
			filter = &auth.CompanyFilter{
				CompanyID: &companyID,
			}
		}

		ctx := auth.WithCompanyFilter(r.Context(), filter)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
