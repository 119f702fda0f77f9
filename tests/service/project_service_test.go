package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blueline-estimating/takeoff-api/internal/domain"
	"github.com/blueline-estimating/takeoff-api/internal/service"
	"github.com/blueline-estimating/takeoff-api/tests/testutil"
)

func TestProjectCreate(t *testing.T) {
	e := newEnv(t)

	project, err := e.projects.Create(e.ctx, &domain.CreateProjectRequest{
		Name:        "Harbor Terminal",
		Description: "Phase 2 plumbing package",
	})
	require.NoError(t, err)
	assert.Equal(t, e.company.ID, project.CompanyID)

	t.Run("new projects get the default wbs tree", func(t *testing.T) {
		tree, err := e.wbs.GetTree(e.ctx, project.ID)
		require.NoError(t, err)
		require.Len(t, tree, 1)
		assert.Equal(t, "Base Bid", tree[0].Name)
		assert.Len(t, tree[0].Children, 5)
	})

	t.Run("unauthenticated context", func(t *testing.T) {
		_, err := e.projects.Create(context.Background(), &domain.CreateProjectRequest{Name: "Nope"})
		require.ErrorIs(t, err, service.ErrUnauthorized)
	})
}

func TestProjectListIsCompanyScoped(t *testing.T) {
	e := newEnv(t)

	other := testutil.CreateTestCompany(t, e.db, "Rival Plumbing")
	testutil.CreateTestProject(t, e.db, other.ID, "Their Job")

	mine, err := e.projects.List(e.ctx)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, e.project.ID, mine[0].ID)

	theirs, err := e.projects.List(testutil.ContextForUser(other.ID))
	require.NoError(t, err)
	require.Len(t, theirs, 1)
	assert.Equal(t, "Their Job", theirs[0].Name)
}

func TestProjectUpdateAndDelete(t *testing.T) {
	e := newEnv(t)

	updated, err := e.projects.Update(e.ctx, e.project.ID, &domain.UpdateProjectRequest{
		Name: strPtr("Riverside Plant rev B"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Riverside Plant rev B", updated.Name)

	require.NoError(t, e.projects.Delete(e.ctx, e.project.ID))
	_, err = e.projects.GetByID(e.ctx, e.project.ID)
	require.ErrorIs(t, err, service.ErrProjectNotFound)
}

func TestProjectCompanyScoping(t *testing.T) {
	e := newEnv(t)

	other := testutil.CreateTestCompany(t, e.db, "Rival Plumbing")
	otherCtx := testutil.ContextForUser(other.ID)

	_, err := e.projects.GetByID(otherCtx, e.project.ID)
	require.ErrorIs(t, err, service.ErrProjectNotFound)

	err = e.projects.Delete(otherCtx, e.project.ID)
	require.ErrorIs(t, err, service.ErrProjectNotFound)

	t.Run("admins see across companies", func(t *testing.T) {
		got, err := e.projects.GetByID(testutil.ContextForAdmin(), e.project.ID)
		require.NoError(t, err)
		assert.Equal(t, e.project.ID, got.ID)
	})
}

func TestDrawingLifecycle(t *testing.T) {
	e := newEnv(t)

	created, err := e.drawings.Create(e.ctx, e.project.ID, &domain.CreateDrawingRequest{
		Name:      "P-201",
		PageCount: 12,
	})
	require.NoError(t, err)
	assert.Equal(t, 12, created.PageCount)

	list, err := e.drawings.ListByProject(e.ctx, e.project.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2) // env seeds one drawing

	renamed, err := e.drawings.Update(e.ctx, created.ID, &domain.UpdateDrawingRequest{
		Name: strPtr("P-201 rev 1"),
	})
	require.NoError(t, err)
	assert.Equal(t, "P-201 rev 1", renamed.Name)
	assert.Equal(t, 12, renamed.PageCount)

	require.NoError(t, e.drawings.Delete(e.ctx, created.ID))
	_, err = e.drawings.GetByID(e.ctx, created.ID)
	require.ErrorIs(t, err, service.ErrDrawingNotFound)
}

func TestDrawingCompanyScoping(t *testing.T) {
	e := newEnv(t)

	other := testutil.CreateTestCompany(t, e.db, "Rival Plumbing")
	otherCtx := testutil.ContextForUser(other.ID)

	_, err := e.drawings.GetByID(otherCtx, e.drawing.ID)
	require.ErrorIs(t, err, service.ErrDrawingNotFound)

	_, err = e.drawings.Create(otherCtx, e.project.ID, &domain.CreateDrawingRequest{
		Name:      "Sneaky",
		PageCount: 1,
	})
	require.ErrorIs(t, err, service.ErrProjectNotFound)
}
