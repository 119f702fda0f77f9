package auth

import (
	"context"

	"github.com/google/uuid"
)

// Role classifies what an authenticated caller may do
type Role string

const (
	// RoleAdmin is a platform operator with access to every company
	RoleAdmin Role = "admin"
	// RoleEstimator may create and edit takeoff data for their company
	RoleEstimator Role = "estimator"
	// RoleViewer has read-only access to their company's data
	RoleViewer Role = "viewer"
	// RoleAPIService is used by machine callers authenticated via API key
	RoleAPIService Role = "api_service"
)

// UserContext holds authenticated user information
type UserContext struct {
	UserID      uuid.UUID
	DisplayName string
	Email       string
	Roles       []Role
	CompanyID   uuid.UUID
}

type contextKey string

const userContextKey contextKey = "userContext"
const companyFilterKey contextKey = "companyFilter"

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok
}

// MustFromContext extracts user context or panics
func MustFromContext(ctx context.Context) *UserContext {
	user, ok := FromContext(ctx)
	if !ok {
		panic("user context not found in context")
	}
	return user
}

// HasRole checks if user has a specific role
func (u *UserContext) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole checks if user has any of the specified roles
func (u *UserContext) HasAnyRole(roles ...Role) bool {
	for _, role := range roles {
		if u.HasRole(role) {
			return true
		}
	}
	return false
}

// IsAdmin checks if user is a platform admin (access to all companies)
func (u *UserContext) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

// CanWrite reports whether the caller may mutate takeoff data
func (u *UserContext) CanWrite() bool {
	return u.HasAnyRole(RoleAdmin, RoleEstimator, RoleAPIService)
}

// CanAccessCompany checks if user can access data for a specific company
func (u *UserContext) CanAccessCompany(companyID uuid.UUID) bool {
	if u.IsAdmin() {
		return true
	}
	return u.CompanyID == companyID
}

// GetCompanyFilter returns the company ID to filter queries by
// Returns nil for platform admins (no filtering needed)
func (u *UserContext) GetCompanyFilter() *uuid.UUID {
	if u.IsAdmin() {
		return nil
	}
	return &u.CompanyID
}

// RolesAsStrings returns roles as a slice of strings
func (u *UserContext) RolesAsStrings() []string {
	result := make([]string, len(u.Roles))
	for i, role := range u.Roles {
		result[i] = string(role)
	}
	return result
}

// CompanyFilter represents the effective company filter for queries
// This is set by middleware based on user context and query parameters
type CompanyFilter struct {
	// CompanyID is the company to filter by (nil means no filter / all companies)
	CompanyID *uuid.UUID
	// RequestedByAdmin indicates an admin explicitly narrowed to one company
	RequestedByAdmin bool
}

// WithCompanyFilter adds company filter to the context
func WithCompanyFilter(ctx context.Context, filter *CompanyFilter) context.Context {
	return context.WithValue(ctx, companyFilterKey, filter)
}

// CompanyFilterFromContext extracts company filter from the context
func CompanyFilterFromContext(ctx context.Context) (*CompanyFilter, bool) {
	filter, ok := ctx.Value(companyFilterKey).(*CompanyFilter)
	return filter, ok
}

// GetEffectiveCompanyFilter returns the company ID to filter queries by
// This should be used by repositories to apply multi-tenant filtering
// Returns nil if no filtering should be applied (caller sees all companies)
func GetEffectiveCompanyFilter(ctx context.Context) *uuid.UUID {
	if filter, ok := CompanyFilterFromContext(ctx); ok && filter != nil {
		return filter.CompanyID
	}

	if userCtx, ok := FromContext(ctx); ok {
		return userCtx.GetCompanyFilter()
	}

	return nil
}
