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

func TestMaterialCreate(t *testing.T) {
	e := newEnv(t)

	created, err := e.materials.Create(e.ctx, &domain.CreateMaterialRequest{
		PartNumber:  "CU-075",
		Category:    "Copper Pipe",
		Description: `3/4" Type L copper`,
		Unit:        "LF",
		ListPrice:   3.25,
		LaborUnits:  0.10,
	})
	require.NoError(t, err)
	assert.Equal(t, e.company.ID, created.CompanyID)
	assert.True(t, created.IsActive)

	t.Run("duplicate part number within company", func(t *testing.T) {
		_, err := e.materials.Create(e.ctx, &domain.CreateMaterialRequest{
			PartNumber:  "CU-075",
			Category:    "Copper Pipe",
			Description: "Duplicate",
			Unit:        "LF",
		})
		require.ErrorIs(t, err, service.ErrDuplicatePartNumber)
	})

	t.Run("same part number in another company", func(t *testing.T) {
		other := testutil.CreateTestCompany(t, e.db, "Rival Plumbing")
		otherCtx := testutil.ContextForUser(other.ID)

		dup, err := e.materials.Create(otherCtx, &domain.CreateMaterialRequest{
			PartNumber:  "CU-075",
			Category:    "Copper Pipe",
			Description: "Their copper",
			Unit:        "LF",
		})
		require.NoError(t, err)
		assert.Equal(t, other.ID, dup.CompanyID)
	})

	t.Run("unauthenticated context", func(t *testing.T) {
		_, err := e.materials.Create(context.Background(), &domain.CreateMaterialRequest{
			PartNumber:  "X-1",
			Category:    "Misc",
			Description: "No user",
			Unit:        "EA",
		})
		require.ErrorIs(t, err, service.ErrUnauthorized)
	})
}

func TestMaterialListAndCategories(t *testing.T) {
	e := newEnv(t)

	testutil.CreateTestMaterial(t, e.db, e.company.ID, "CU-075", 3.25, 0.10)
	pvc := testutil.CreateTestMaterial(t, e.db, e.company.ID, "PVC-4", 12.50, 0.08)
	require.NoError(t, e.db.Model(pvc).Update("category", "PVC Pipe").Error)

	// Another company's catalog stays invisible
	other := testutil.CreateTestCompany(t, e.db, "Rival Plumbing")
	testutil.CreateTestMaterial(t, e.db, other.ID, "CU-075", 2.99, 0.09)

	all, err := e.materials.List(e.ctx, "", false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pvcOnly, err := e.materials.List(e.ctx, "PVC Pipe", false)
	require.NoError(t, err)
	require.Len(t, pvcOnly, 1)
	assert.Equal(t, "PVC-4", pvcOnly[0].PartNumber)

	categories, err := e.materials.Categories(e.ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Pipe", "PVC Pipe"}, categories)
}

func TestMaterialDeactivate(t *testing.T) {
	e := newEnv(t)
	material := testutil.CreateTestMaterial(t, e.db, e.company.ID, "CU-075", 3.25, 0.10)

	require.NoError(t, e.materials.Deactivate(e.ctx, material.ID))

	active, err := e.materials.List(e.ctx, "", false)
	require.NoError(t, err)
	assert.Empty(t, active)

	withInactive, err := e.materials.List(e.ctx, "", true)
	require.NoError(t, err)
	require.Len(t, withInactive, 1)
	assert.False(t, withInactive[0].IsActive)

	// Reactivation goes through update
	back, err := e.materials.Update(e.ctx, material.ID, &domain.UpdateMaterialRequest{
		IsActive: boolPtr(true),
	})
	require.NoError(t, err)
	assert.True(t, back.IsActive)
}

func TestMaterialUpdate(t *testing.T) {
	e := newEnv(t)
	material := testutil.CreateTestMaterial(t, e.db, e.company.ID, "CU-075", 3.25, 0.10)

	updated, err := e.materials.Update(e.ctx, material.ID, &domain.UpdateMaterialRequest{
		ListPrice:  floatPtr(3.49),
		LaborUnits: floatPtr(0.12),
	})
	require.NoError(t, err)
	assert.InDelta(t, 3.49, updated.ListPrice, 1e-9)
	assert.InDelta(t, 0.12, updated.LaborUnits, 1e-9)
	assert.Equal(t, "CU-075", updated.PartNumber)
	assert.Equal(t, material.Description, updated.Description)
}

func TestMaterialSeedDefaults(t *testing.T) {
	e := newEnv(t)

	count, err := e.materials.SeedDefaults(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, len(domain.DefaultMaterials(e.company.ID)), count)

	catalog, err := e.materials.List(e.ctx, "", false)
	require.NoError(t, err)
	assert.Len(t, catalog, count)

	t.Run("seeding a non-empty catalog is a no-op", func(t *testing.T) {
		again, err := e.materials.SeedDefaults(e.ctx)
		require.NoError(t, err)
		assert.Zero(t, again)
	})
}

func TestCompanyCreateSeedsPricebook(t *testing.T) {
	e := newEnv(t)

	company, err := e.companies.Create(testutil.ContextForAdmin(), "Northside Mechanical", "12 Dock St", "555-0100")
	require.NoError(t, err)

	var count int64
	require.NoError(t, e.db.Model(&domain.Material{}).
		Where("company_id = ?", company.ID).
		Count(&count).Error)
	assert.Equal(t, int64(len(domain.DefaultMaterials(company.ID))), count)
}

func TestApplyPrices(t *testing.T) {
	e := newEnv(t)

	copper := testutil.CreateTestMaterial(t, e.db, e.company.ID, "CU-075", 3.25, 0.10)
	testutil.CreateTestMaterial(t, e.db, e.company.ID, "PVC-4", 12.50, 0.08)

	updated, err := e.materials.ApplyPrices(e.ctx, e.company.ID, map[string]float64{
		"CU-075":  3.41,
		"UNKNOWN": 9.99,
		"PVC-4":   -1, // negative prices from the feed are skipped
	})
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	after, err := e.materials.GetByID(e.ctx, copper.ID)
	require.NoError(t, err)
	assert.InDelta(t, 3.41, after.ListPrice, 1e-9)

	t.Run("only the target company is touched", func(t *testing.T) {
		other := testutil.CreateTestCompany(t, e.db, "Rival Plumbing")
		foreign := testutil.CreateTestMaterial(t, e.db, other.ID, "CU-075", 2.99, 0.09)

		_, err := e.materials.ApplyPrices(e.ctx, e.company.ID, map[string]float64{"CU-075": 4.00})
		require.NoError(t, err)

		var price float64
		require.NoError(t, e.db.Model(&domain.Material{}).
			Where("id = ?", foreign.ID).
			Select("list_price").
			Scan(&price).Error)
		assert.InDelta(t, 2.99, price, 1e-9)
	})
}

func TestMaterialCompanyScoping(t *testing.T) {
	e := newEnv(t)
	material := testutil.CreateTestMaterial(t, e.db, e.company.ID, "CU-075", 3.25, 0.10)

	other := testutil.CreateTestCompany(t, e.db, "Rival Plumbing")
	otherCtx := testutil.ContextForUser(other.ID)

	_, err := e.materials.GetByID(otherCtx, material.ID)
	require.ErrorIs(t, err, service.ErrMaterialNotFound)

	err = e.materials.Deactivate(otherCtx, material.ID)
	require.ErrorIs(t, err, service.ErrMaterialNotFound)
}
