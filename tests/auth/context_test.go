package auth_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blueline-estimating/takeoff-api/internal/auth"
)

func TestUserContextRoles(t *testing.T) {
	estimator := &auth.UserContext{Roles: []auth.Role{auth.RoleEstimator}}
	viewer := &auth.UserContext{Roles: []auth.Role{auth.RoleViewer}}
	admin := &auth.UserContext{Roles: []auth.Role{auth.RoleAdmin}}
	machine := &auth.UserContext{Roles: []auth.Role{auth.RoleAPIService}}

	assert.True(t, estimator.HasRole(auth.RoleEstimator))
	assert.False(t, estimator.HasRole(auth.RoleAdmin))
	assert.True(t, estimator.HasAnyRole(auth.RoleAdmin, auth.RoleEstimator))

	assert.True(t, admin.IsAdmin())
	assert.False(t, viewer.IsAdmin())

	assert.True(t, estimator.CanWrite())
	assert.True(t, admin.CanWrite())
	assert.True(t, machine.CanWrite())
	assert.False(t, viewer.CanWrite())
}

func TestCanAccessCompany(t *testing.T) {
	companyID := uuid.New()
	otherID := uuid.New()

	user := &auth.UserContext{Roles: []auth.Role{auth.RoleEstimator}, CompanyID: companyID}
	assert.True(t, user.CanAccessCompany(companyID))
	assert.False(t, user.CanAccessCompany(otherID))

	admin := &auth.UserContext{Roles: []auth.Role{auth.RoleAdmin}}
	assert.True(t, admin.CanAccessCompany(companyID))
	assert.True(t, admin.CanAccessCompany(otherID))
}

func TestGetEffectiveCompanyFilter(t *testing.T) {
	companyID := uuid.New()
	narrowed := uuid.New()

	t.Run("no context means no filter", func(t *testing.T) {
		assert.Nil(t, auth.GetEffectiveCompanyFilter(context.Background()))
	})

	t.Run("regular user is scoped to their company", func(t *testing.T) {
		ctx := auth.WithUserContext(context.Background(), &auth.UserContext{
			Roles:     []auth.Role{auth.RoleEstimator},
			CompanyID: companyID,
		})
		filter := auth.GetEffectiveCompanyFilter(ctx)
		require.NotNil(t, filter)
		assert.Equal(t, companyID, *filter)
	})

	t.Run("admin defaults to no filter", func(t *testing.T) {
		ctx := auth.WithUserContext(context.Background(), &auth.UserContext{
			Roles: []auth.Role{auth.RoleAdmin},
		})
		assert.Nil(t, auth.GetEffectiveCompanyFilter(ctx))
	})

	t.Run("explicit filter from middleware wins", func(t *testing.T) {
		ctx := auth.WithUserContext(context.Background(), &auth.UserContext{
			Roles: []auth.Role{auth.RoleAdmin},
		})
		ctx = auth.WithCompanyFilter(ctx, &auth.CompanyFilter{
			CompanyID:        &narrowed,
			RequestedByAdmin: true,
		})
		filter := auth.GetEffectiveCompanyFilter(ctx)
		require.NotNil(t, filter)
		assert.Equal(t, narrowed, *filter)
	})
}

func TestMustFromContext(t *testing.T) {
	assert.Panics(t, func() {
		auth.MustFromContext(context.Background())
	})

	user := &auth.UserContext{DisplayName: "Jo"}
	ctx := auth.WithUserContext(context.Background(), user)
	assert.Equal(t, user, auth.MustFromContext(ctx))
}
