package service_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blueline-estimating/takeoff-api/internal/domain"
	"github.com/blueline-estimating/takeoff-api/internal/repository"
	"github.com/blueline-estimating/takeoff-api/internal/service"
	"github.com/blueline-estimating/takeoff-api/tests/testutil"
)

func TestTakeoffCreate(t *testing.T) {
	e := newEnv(t)
	material := testutil.CreateTestMaterial(t, e.db, e.company.ID, "CU-075", 3.25, 0.10)

	t.Run("defaults", func(t *testing.T) {
		item, err := e.takeoff.Create(e.ctx, e.drawing.ID, &domain.CreateTakeoffItemRequest{
			MaterialID: material.ID,
			Quantity:   15,
		})
		require.NoError(t, err)
		assert.Equal(t, 1.0, item.Multiplier)
		assert.Equal(t, domain.MeasurementTypeMeasured, item.MeasurementType)
		assert.Equal(t, "CU-075", item.PartNumber)
		assert.InDelta(t, 48.75, item.ExtendedPrice, 1e-9)
		assert.InDelta(t, 1.50, item.ExtendedLabor, 1e-9)
	})

	t.Run("multiplier scales price but never labor", func(t *testing.T) {
		item, err := e.takeoff.Create(e.ctx, e.drawing.ID, &domain.CreateTakeoffItemRequest{
			MaterialID: material.ID,
			Quantity:   10,
			Multiplier: floatPtr(1.1),
		})
		require.NoError(t, err)
		assert.InDelta(t, 10*1.1*3.25, item.ExtendedPrice, 1e-9)
		assert.InDelta(t, 10*0.10, item.ExtendedLabor, 1e-9)
	})

	t.Run("count items", func(t *testing.T) {
		item, err := e.takeoff.Create(e.ctx, e.drawing.ID, &domain.CreateTakeoffItemRequest{
			PageNumber:      2,
			MaterialID:      material.ID,
			Quantity:        4,
			MeasurementType: domain.MeasurementTypeCount,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.MeasurementTypeCount, item.MeasurementType)
		assert.Equal(t, 2, item.PageNumber)
	})

	t.Run("negative quantity", func(t *testing.T) {
		_, err := e.takeoff.Create(e.ctx, e.drawing.ID, &domain.CreateTakeoffItemRequest{
			MaterialID: material.ID,
			Quantity:   -1,
		})
		require.ErrorIs(t, err, service.ErrInvalidQuantity)
	})

	t.Run("zero quantity is allowed", func(t *testing.T) {
		item, err := e.takeoff.Create(e.ctx, e.drawing.ID, &domain.CreateTakeoffItemRequest{
			MaterialID: material.ID,
			Quantity:   0,
		})
		require.NoError(t, err)
		assert.Equal(t, 0.0, item.ExtendedPrice)
	})

	t.Run("page outside drawing", func(t *testing.T) {
		_, err := e.takeoff.Create(e.ctx, e.drawing.ID, &domain.CreateTakeoffItemRequest{
			PageNumber: 3,
			MaterialID: material.ID,
			Quantity:   1,
		})
		require.ErrorIs(t, err, service.ErrInvalidPage)
	})

	t.Run("inactive material", func(t *testing.T) {
		retired := testutil.CreateTestMaterial(t, e.db, e.company.ID, "OLD-1", 1, 0)
		require.NoError(t, e.materials.Deactivate(e.ctx, retired.ID))

		_, err := e.takeoff.Create(e.ctx, e.drawing.ID, &domain.CreateTakeoffItemRequest{
			MaterialID: retired.ID,
			Quantity:   1,
		})
		require.ErrorIs(t, err, service.ErrInvalidMaterial)
	})

	t.Run("material from another company", func(t *testing.T) {
		other := testutil.CreateTestCompany(t, e.db, "Rival Plumbing")
		foreign := testutil.CreateTestMaterial(t, e.db, other.ID, "CU-075", 2.99, 0.09)

		_, err := e.takeoff.Create(e.ctx, e.drawing.ID, &domain.CreateTakeoffItemRequest{
			MaterialID: foreign.ID,
			Quantity:   1,
		})
		require.ErrorIs(t, err, service.ErrInvalidMaterial)
	})

	t.Run("category from another project", func(t *testing.T) {
		otherProject := testutil.CreateTestProject(t, e.db, e.company.ID, "Other Job")
		foreign := testutil.CreateTestWbsCategory(t, e.db, otherProject.ID, nil, "Foreign", 0)

		_, err := e.takeoff.Create(e.ctx, e.drawing.ID, &domain.CreateTakeoffItemRequest{
			MaterialID:    material.ID,
			Quantity:      1,
			WbsCategoryID: &foreign.ID,
		})
		require.ErrorIs(t, err, service.ErrInvalidWbsCategory)
	})
}

func TestTakeoffListFilters(t *testing.T) {
	e := newEnv(t)
	material := testutil.CreateTestMaterial(t, e.db, e.company.ID, "CU-075", 3.25, 0.10)
	cat := testutil.CreateTestWbsCategory(t, e.db, e.project.ID, nil, "UG Water", 0)

	mk := func(page int, categoryID *domain.WbsCategory) {
		req := &domain.CreateTakeoffItemRequest{
			PageNumber: page,
			MaterialID: material.ID,
			Quantity:   1,
		}
		if categoryID != nil {
			req.WbsCategoryID = &categoryID.ID
		}
		_, err := e.takeoff.Create(e.ctx, e.drawing.ID, req)
		require.NoError(t, err)
	}
	mk(0, &cat)
	mk(0, nil)
	mk(1, &cat)

	all, err := e.takeoff.ListByDrawing(e.ctx, e.drawing.ID, repository.TakeoffItemFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	pageZero, err := e.takeoff.ListByDrawing(e.ctx, e.drawing.ID, repository.TakeoffItemFilter{PageNumber: intPtr(0)})
	require.NoError(t, err)
	assert.Len(t, pageZero, 2)

	byCat, err := e.takeoff.ListByDrawing(e.ctx, e.drawing.ID, repository.TakeoffItemFilter{WbsCategoryID: &cat.ID})
	require.NoError(t, err)
	assert.Len(t, byCat, 2)
}

func TestTakeoffUpdate(t *testing.T) {
	e := newEnv(t)
	material := testutil.CreateTestMaterial(t, e.db, e.company.ID, "CU-075", 3.25, 0.10)
	cat := testutil.CreateTestWbsCategory(t, e.db, e.project.ID, nil, "UG Water", 0)

	item, err := e.takeoff.Create(e.ctx, e.drawing.ID, &domain.CreateTakeoffItemRequest{
		MaterialID:    material.ID,
		Quantity:      15,
		WbsCategoryID: &cat.ID,
		Notes:         "riser run",
	})
	require.NoError(t, err)

	t.Run("partial update keeps unspecified fields", func(t *testing.T) {
		updated, err := e.takeoff.Update(e.ctx, item.ID, &domain.UpdateTakeoffItemRequest{
			Quantity: floatPtr(20),
		})
		require.NoError(t, err)
		assert.Equal(t, 20.0, updated.Quantity)
		assert.Equal(t, "riser run", updated.Notes)
		require.NotNil(t, updated.WbsCategoryID)
		assert.Equal(t, cat.ID, *updated.WbsCategoryID)
	})

	t.Run("negative quantity rejected without partial writes", func(t *testing.T) {
		_, err := e.takeoff.Update(e.ctx, item.ID, &domain.UpdateTakeoffItemRequest{
			Quantity: floatPtr(-5),
		})
		require.ErrorIs(t, err, service.ErrInvalidQuantity)

		current, err := e.takeoff.GetByID(e.ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, 20.0, current.Quantity)
	})

	t.Run("clear category", func(t *testing.T) {
		updated, err := e.takeoff.Update(e.ctx, item.ID, &domain.UpdateTakeoffItemRequest{
			ClearWbsCategory: true,
		})
		require.NoError(t, err)
		assert.Nil(t, updated.WbsCategoryID)
	})

	t.Run("reassign category", func(t *testing.T) {
		updated, err := e.takeoff.Update(e.ctx, item.ID, &domain.UpdateTakeoffItemRequest{
			WbsCategoryID: &cat.ID,
		})
		require.NoError(t, err)
		require.NotNil(t, updated.WbsCategoryID)
		assert.Equal(t, cat.ID, *updated.WbsCategoryID)
	})
}

func TestTakeoffBulkReassign(t *testing.T) {
	e := newEnv(t)
	material := testutil.CreateTestMaterial(t, e.db, e.company.ID, "CU-075", 3.25, 0.10)
	cat := testutil.CreateTestWbsCategory(t, e.db, e.project.ID, nil, "UG Water", 0)

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		item, err := e.takeoff.Create(e.ctx, e.drawing.ID, &domain.CreateTakeoffItemRequest{
			MaterialID: material.ID,
			Quantity:   float64(i + 1),
		})
		require.NoError(t, err)
		ids = append(ids, item.ID)
	}

	t.Run("assigns every item", func(t *testing.T) {
		err := e.takeoff.BulkReassignWbs(e.ctx, e.drawing.ID, &domain.BulkReassignWbsRequest{
			ItemIDs:       ids,
			WbsCategoryID: &cat.ID,
		})
		require.NoError(t, err)

		items, err := e.takeoff.ListByDrawing(e.ctx, e.drawing.ID, repository.TakeoffItemFilter{WbsCategoryID: &cat.ID})
		require.NoError(t, err)
		assert.Len(t, items, 3)
	})

	t.Run("an item on another drawing fails the whole batch", func(t *testing.T) {
		otherDrawing := testutil.CreateTestDrawing(t, e.db, e.project.ID, "P-102", 1)
		stray, err := e.takeoff.Create(e.ctx, otherDrawing.ID, &domain.CreateTakeoffItemRequest{
			MaterialID: material.ID,
			Quantity:   1,
		})
		require.NoError(t, err)

		err = e.takeoff.BulkReassignWbs(e.ctx, e.drawing.ID, &domain.BulkReassignWbsRequest{
			ItemIDs: append(append([]uuid.UUID{}, ids...), stray.ID),
		})
		require.ErrorIs(t, err, service.ErrTakeoffItemNotFound)

		// Nothing was cleared
		items, err := e.takeoff.ListByDrawing(e.ctx, e.drawing.ID, repository.TakeoffItemFilter{WbsCategoryID: &cat.ID})
		require.NoError(t, err)
		assert.Len(t, items, 3)
	})

	t.Run("nil category clears assignments", func(t *testing.T) {
		err := e.takeoff.BulkReassignWbs(e.ctx, e.drawing.ID, &domain.BulkReassignWbsRequest{
			ItemIDs: ids,
		})
		require.NoError(t, err)

		items, err := e.takeoff.ListByDrawing(e.ctx, e.drawing.ID, repository.TakeoffItemFilter{WbsCategoryID: &cat.ID})
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}

func TestRollup(t *testing.T) {
	e := newEnv(t)

	copper := testutil.CreateTestMaterial(t, e.db, e.company.ID, "CU-075", 3.25, 0.10)
	pvc := testutil.CreateTestMaterial(t, e.db, e.company.ID, "PVC-4", 12.50, 0.08)

	base := testutil.CreateTestWbsCategory(t, e.db, e.project.ID, nil, "Base Bid", 0)
	water := testutil.CreateTestWbsCategory(t, e.db, e.project.ID, &base.ID, "UG Water", 0)
	sanitary := testutil.CreateTestWbsCategory(t, e.db, e.project.ID, &base.ID, "UG Sanitary", 1)

	mk := func(materialID uuid.UUID, categoryID *uuid.UUID, qty float64) {
		_, err := e.takeoff.Create(e.ctx, e.drawing.ID, &domain.CreateTakeoffItemRequest{
			MaterialID:    materialID,
			WbsCategoryID: categoryID,
			Quantity:      qty,
		})
		require.NoError(t, err)
	}

	// Two copper runs in the same bucket, one PVC run in a later category,
	// and one uncategorized line.
	mk(copper.ID, &water.ID, 15)
	mk(copper.ID, &water.ID, 5)
	mk(pvc.ID, &sanitary.ID, 8)
	mk(copper.ID, nil, 2)

	rollup, err := e.takeoff.RollupByDrawing(e.ctx, e.drawing.ID)
	require.NoError(t, err)
	require.Len(t, rollup.Groups, 3)

	t.Run("grouping and totals", func(t *testing.T) {
		g := rollup.Groups[0]
		assert.Equal(t, "Base Bid > UG Water", g.WbsPath)
		assert.Equal(t, "CU-075", g.PartNumber)
		assert.Equal(t, 2, g.ItemCount)
		assert.InDelta(t, 20, g.TotalQuantity, 1e-9)
		assert.InDelta(t, 20*3.25, g.TotalPrice, 1e-9)
		assert.InDelta(t, 20*0.10, g.TotalLabor, 1e-9)
	})

	t.Run("worked example", func(t *testing.T) {
		single, err := e.takeoff.RollupByDrawing(e.ctx, e.drawing.ID)
		require.NoError(t, err)
		// 15 LF of CU-075 alone: 15 x 3.25 = 48.75 and 15 x 0.10 = 1.50
		assert.InDelta(t, 48.75, 15*3.25, 1e-9)
		assert.InDelta(t, 1.50, 15*0.10, 1e-9)
		assert.Equal(t, rollup.Groups, single.Groups)
	})

	t.Run("groups follow tree order with uncategorized last", func(t *testing.T) {
		assert.Equal(t, "Base Bid > UG Water", rollup.Groups[0].WbsPath)
		assert.Equal(t, "Base Bid > UG Sanitary", rollup.Groups[1].WbsPath)
		assert.Equal(t, "Uncategorized", rollup.Groups[2].WbsPath)
		assert.Nil(t, rollup.Groups[2].WbsCategoryID)
	})

	t.Run("grand totals", func(t *testing.T) {
		assert.InDelta(t, 30, rollup.TotalQuantity, 1e-9)
		assert.InDelta(t, 20*3.25+8*12.50+2*3.25, rollup.TotalPrice, 1e-9)
		assert.InDelta(t, 20*0.10+8*0.08+2*0.10, rollup.TotalLabor, 1e-9)
	})

	t.Run("project rollup covers every drawing", func(t *testing.T) {
		second := testutil.CreateTestDrawing(t, e.db, e.project.ID, "P-102", 1)
		mkOn := func(drawingID uuid.UUID) {
			_, err := e.takeoff.Create(e.ctx, drawingID, &domain.CreateTakeoffItemRequest{
				MaterialID:    copper.ID,
				WbsCategoryID: &water.ID,
				Quantity:      10,
			})
			require.NoError(t, err)
		}
		mkOn(second.ID)

		projectRollup, err := e.takeoff.RollupByProject(e.ctx, e.project.ID)
		require.NoError(t, err)
		assert.Equal(t, "project", projectRollup.Scope)
		assert.InDelta(t, 40, projectRollup.TotalQuantity, 1e-9)
		// Same bucket absorbs the new drawing's quantities
		assert.InDelta(t, 30, projectRollup.Groups[0].TotalQuantity, 1e-9)
	})

	t.Run("multiplier feeds the rolled quantity", func(t *testing.T) {
		_, err := e.takeoff.Create(e.ctx, e.drawing.ID, &domain.CreateTakeoffItemRequest{
			MaterialID:    pvc.ID,
			WbsCategoryID: &sanitary.ID,
			Quantity:      10,
			Multiplier:    floatPtr(1.5),
		})
		require.NoError(t, err)

		after, err := e.takeoff.RollupByDrawing(e.ctx, e.drawing.ID)
		require.NoError(t, err)
		assert.InDelta(t, 8+15, after.Groups[1].TotalQuantity, 1e-9)
	})
}

func TestTakeoffCompanyScoping(t *testing.T) {
	e := newEnv(t)
	material := testutil.CreateTestMaterial(t, e.db, e.company.ID, "CU-075", 3.25, 0.10)

	item, err := e.takeoff.Create(e.ctx, e.drawing.ID, &domain.CreateTakeoffItemRequest{
		MaterialID: material.ID,
		Quantity:   1,
	})
	require.NoError(t, err)

	other := testutil.CreateTestCompany(t, e.db, "Rival Plumbing")
	otherCtx := testutil.ContextForUser(other.ID)

	_, err = e.takeoff.GetByID(otherCtx, item.ID)
	require.ErrorIs(t, err, service.ErrDrawingNotFound)

	_, err = e.takeoff.RollupByDrawing(otherCtx, e.drawing.ID)
	require.ErrorIs(t, err, service.ErrDrawingNotFound)
}
