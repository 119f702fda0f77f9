package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blueline-estimating/takeoff-api/internal/domain"
	"github.com/blueline-estimating/takeoff-api/internal/service"
	"github.com/blueline-estimating/takeoff-api/tests/testutil"
)

func TestWbsCreate(t *testing.T) {
	e := newEnv(t)

	t.Run("root category", func(t *testing.T) {
		cat, err := e.wbs.Create(e.ctx, e.project.ID, &domain.CreateWbsCategoryRequest{
			Name: "Base Bid",
		})
		require.NoError(t, err)
		assert.Nil(t, cat.ParentID)
		assert.Equal(t, 0, cat.SortOrder)
	})

	t.Run("omitted sort order places after siblings", func(t *testing.T) {
		second, err := e.wbs.Create(e.ctx, e.project.ID, &domain.CreateWbsCategoryRequest{
			Name: "Alternate 1",
		})
		require.NoError(t, err)
		assert.Equal(t, 1, second.SortOrder)

		explicit, err := e.wbs.Create(e.ctx, e.project.ID, &domain.CreateWbsCategoryRequest{
			Name:      "Alternate 9",
			SortOrder: intPtr(9),
		})
		require.NoError(t, err)
		assert.Equal(t, 9, explicit.SortOrder)

		next, err := e.wbs.Create(e.ctx, e.project.ID, &domain.CreateWbsCategoryRequest{
			Name: "Alternate 10",
		})
		require.NoError(t, err)
		assert.Equal(t, 10, next.SortOrder)
	})

	t.Run("child under a parent", func(t *testing.T) {
		root, err := e.wbs.Create(e.ctx, e.project.ID, &domain.CreateWbsCategoryRequest{Name: "Sitework"})
		require.NoError(t, err)

		child, err := e.wbs.Create(e.ctx, e.project.ID, &domain.CreateWbsCategoryRequest{
			Name:     "UG Water",
			ParentID: &root.ID,
		})
		require.NoError(t, err)
		require.NotNil(t, child.ParentID)
		assert.Equal(t, root.ID, *child.ParentID)
		// Sibling numbering restarts under each parent
		assert.Equal(t, 0, child.SortOrder)
	})

	t.Run("parent from another project is rejected", func(t *testing.T) {
		otherProject := testutil.CreateTestProject(t, e.db, e.company.ID, "Other Job")
		foreign := testutil.CreateTestWbsCategory(t, e.db, otherProject.ID, nil, "Foreign", 0)

		_, err := e.wbs.Create(e.ctx, e.project.ID, &domain.CreateWbsCategoryRequest{
			Name:     "Orphan",
			ParentID: &foreign.ID,
		})
		require.ErrorIs(t, err, service.ErrInvalidParent)
	})

	t.Run("unknown parent is rejected", func(t *testing.T) {
		bogus := testutil.CreateTestWbsCategory(t, e.db, e.project.ID, nil, "Temp", 0)
		require.NoError(t, e.db.Delete(&domain.WbsCategory{}, "id = ?", bogus.ID).Error)

		_, err := e.wbs.Create(e.ctx, e.project.ID, &domain.CreateWbsCategoryRequest{
			Name:     "Orphan",
			ParentID: &bogus.ID,
		})
		require.ErrorIs(t, err, service.ErrInvalidParent)
	})
}

func TestWbsPath(t *testing.T) {
	e := newEnv(t)

	base := testutil.CreateTestWbsCategory(t, e.db, e.project.ID, nil, "Base Bid", 0)
	water := testutil.CreateTestWbsCategory(t, e.db, e.project.ID, &base.ID, "UG Water", 0)
	domestic := testutil.CreateTestWbsCategory(t, e.db, e.project.ID, &water.ID, "Domestic", 0)

	path, err := e.wbs.GetPath(e.ctx, domestic.ID)
	require.NoError(t, err)
	assert.Equal(t, "Base Bid > UG Water > Domestic", path.Path)

	rootPath, err := e.wbs.GetPath(e.ctx, base.ID)
	require.NoError(t, err)
	assert.Equal(t, "Base Bid", rootPath.Path)
}

func TestWbsTree(t *testing.T) {
	e := newEnv(t)

	base := testutil.CreateTestWbsCategory(t, e.db, e.project.ID, nil, "Base Bid", 0)
	testutil.CreateTestWbsCategory(t, e.db, e.project.ID, nil, "Alternate 1", 1)
	// Children inserted out of order to exercise sorting
	testutil.CreateTestWbsCategory(t, e.db, e.project.ID, &base.ID, "UG Storm", 2)
	testutil.CreateTestWbsCategory(t, e.db, e.project.ID, &base.ID, "UG Water", 0)
	testutil.CreateTestWbsCategory(t, e.db, e.project.ID, &base.ID, "UG Sanitary", 1)
	// Equal sort order falls back to name
	testutil.CreateTestWbsCategory(t, e.db, e.project.ID, &base.ID, "AG Water", 2)

	tree, err := e.wbs.GetTree(e.ctx, e.project.ID)
	require.NoError(t, err)
	require.Len(t, tree, 2)
	assert.Equal(t, "Base Bid", tree[0].Name)
	assert.Equal(t, "Alternate 1", tree[1].Name)

	children := tree[0].Children
	require.Len(t, children, 4)
	assert.Equal(t, "UG Water", children[0].Name)
	assert.Equal(t, "UG Sanitary", children[1].Name)
	assert.Equal(t, "AG Water", children[2].Name)
	assert.Equal(t, "UG Storm", children[3].Name)
}

func TestWbsUpdate(t *testing.T) {
	e := newEnv(t)

	cat := testutil.CreateTestWbsCategory(t, e.db, e.project.ID, nil, "Base Bid", 0)

	updated, err := e.wbs.Update(e.ctx, cat.ID, &domain.UpdateWbsCategoryRequest{
		Name:      strPtr("Base Bid rev A"),
		SortOrder: intPtr(5),
	})
	require.NoError(t, err)
	assert.Equal(t, "Base Bid rev A", updated.Name)
	assert.Equal(t, 5, updated.SortOrder)

	// Partial update leaves the other field alone
	renamed, err := e.wbs.Update(e.ctx, cat.ID, &domain.UpdateWbsCategoryRequest{
		Name: strPtr("Base Bid"),
	})
	require.NoError(t, err)
	assert.Equal(t, 5, renamed.SortOrder)
}

func TestWbsDeleteGuards(t *testing.T) {
	e := newEnv(t)

	t.Run("blocked while children exist", func(t *testing.T) {
		parent := testutil.CreateTestWbsCategory(t, e.db, e.project.ID, nil, "Parent", 0)
		child := testutil.CreateTestWbsCategory(t, e.db, e.project.ID, &parent.ID, "Child", 0)

		err := e.wbs.Delete(e.ctx, parent.ID)
		require.ErrorIs(t, err, service.ErrCategoryHasChildren)

		require.NoError(t, e.wbs.Delete(e.ctx, child.ID))
		require.NoError(t, e.wbs.Delete(e.ctx, parent.ID))
	})

	t.Run("blocked while referenced by takeoff items", func(t *testing.T) {
		cat := testutil.CreateTestWbsCategory(t, e.db, e.project.ID, nil, "Piping", 0)
		material := testutil.CreateTestMaterial(t, e.db, e.company.ID, "PVC-4", 12.5, 0.08)

		item, err := e.takeoff.Create(e.ctx, e.drawing.ID, &domain.CreateTakeoffItemRequest{
			MaterialID:    material.ID,
			WbsCategoryID: &cat.ID,
			Quantity:      10,
		})
		require.NoError(t, err)

		err = e.wbs.Delete(e.ctx, cat.ID)
		require.ErrorIs(t, err, service.ErrCategoryInUse)

		require.NoError(t, e.takeoff.Delete(e.ctx, item.ID))
		require.NoError(t, e.wbs.Delete(e.ctx, cat.ID))
	})

	t.Run("blocked while referenced by detections", func(t *testing.T) {
		cat := testutil.CreateTestWbsCategory(t, e.db, e.project.ID, nil, "Fixtures", 0)
		detection := &domain.DetectedItem{
			DrawingID:     e.drawing.ID,
			PageNumber:    0,
			ItemType:      "floor_drain",
			Width:         20,
			Height:        20,
			Confidence:    0.9,
			WbsCategoryID: &cat.ID,
		}
		require.NoError(t, e.db.Create(detection).Error)

		err := e.wbs.Delete(e.ctx, cat.ID)
		require.ErrorIs(t, err, service.ErrCategoryInUse)
	})

	t.Run("unknown category", func(t *testing.T) {
		ghost := testutil.CreateTestWbsCategory(t, e.db, e.project.ID, nil, "Ghost", 0)
		require.NoError(t, e.wbs.Delete(e.ctx, ghost.ID))
		err := e.wbs.Delete(e.ctx, ghost.ID)
		require.ErrorIs(t, err, service.ErrWbsCategoryNotFound)
	})
}

func TestWbsSeedDefaults(t *testing.T) {
	e := newEnv(t)

	tree, err := e.wbs.SeedDefaults(e.ctx, e.project.ID)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, "Base Bid", tree[0].Name)
	assert.Len(t, tree[0].Children, 5)
	assert.Equal(t, "UG Water", tree[0].Children[0].Name)

	// Seeding again leaves an existing tree untouched
	again, err := e.wbs.SeedDefaults(e.ctx, e.project.ID)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Len(t, again[0].Children, 5)
}

func TestWbsCompanyScoping(t *testing.T) {
	e := newEnv(t)

	cat := testutil.CreateTestWbsCategory(t, e.db, e.project.ID, nil, "Base Bid", 0)

	other := testutil.CreateTestCompany(t, e.db, "Rival Plumbing")
	otherCtx := testutil.ContextForUser(other.ID)

	_, err := e.wbs.GetTree(otherCtx, e.project.ID)
	require.ErrorIs(t, err, service.ErrProjectNotFound)

	_, err = e.wbs.GetByID(otherCtx, cat.ID)
	require.ErrorIs(t, err, service.ErrProjectNotFound)
}
