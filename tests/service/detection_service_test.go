package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blueline-estimating/takeoff-api/internal/domain"
	"github.com/blueline-estimating/takeoff-api/internal/service"
	"github.com/blueline-estimating/takeoff-api/tests/testutil"
)

func TestDetectionCreateAndList(t *testing.T) {
	e := newEnv(t)

	mk := func(page int, itemType string) *domain.DetectedItemDTO {
		item, err := e.detections.Create(e.ctx, e.drawing.ID, &domain.CreateDetectedItemRequest{
			PageNumber: page,
			ItemType:   itemType,
			X:          10,
			Y:          20,
			Width:      30,
			Height:     30,
			Confidence: 0.92,
		})
		require.NoError(t, err)
		return item
	}

	mk(0, "floor_drain")
	mk(0, "cleanout")
	mk(1, "floor_drain")

	all, err := e.detections.ListByDrawing(e.ctx, e.drawing.ID, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	pageZero, err := e.detections.ListByDrawing(e.ctx, e.drawing.ID, intPtr(0))
	require.NoError(t, err)
	assert.Len(t, pageZero, 2)

	counts, err := e.detections.CountsByType(e.ctx, e.drawing.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts["floor_drain"])
	assert.Equal(t, int64(1), counts["cleanout"])

	t.Run("page outside drawing", func(t *testing.T) {
		_, err := e.detections.Create(e.ctx, e.drawing.ID, &domain.CreateDetectedItemRequest{
			PageNumber: 5,
			ItemType:   "floor_drain",
			Width:      10,
			Height:     10,
		})
		require.ErrorIs(t, err, service.ErrInvalidPage)
	})
}

func TestDetectionUpdate(t *testing.T) {
	e := newEnv(t)
	cat := testutil.CreateTestWbsCategory(t, e.db, e.project.ID, nil, "Fixtures", 0)

	item, err := e.detections.Create(e.ctx, e.drawing.ID, &domain.CreateDetectedItemRequest{
		ItemType:   "floor_drain",
		Width:      20,
		Height:     20,
		Confidence: 0.8,
	})
	require.NoError(t, err)
	assert.False(t, item.Verified)

	t.Run("verify and categorize", func(t *testing.T) {
		updated, err := e.detections.Update(e.ctx, item.ID, &domain.UpdateDetectedItemRequest{
			Verified:      boolPtr(true),
			WbsCategoryID: &cat.ID,
			Notes:         strPtr("confirmed on site walk"),
		})
		require.NoError(t, err)
		assert.True(t, updated.Verified)
		require.NotNil(t, updated.WbsCategoryID)
		assert.Equal(t, cat.ID, *updated.WbsCategoryID)
	})

	t.Run("category from another project", func(t *testing.T) {
		otherProject := testutil.CreateTestProject(t, e.db, e.company.ID, "Other Job")
		foreign := testutil.CreateTestWbsCategory(t, e.db, otherProject.ID, nil, "Foreign", 0)

		_, err := e.detections.Update(e.ctx, item.ID, &domain.UpdateDetectedItemRequest{
			WbsCategoryID: &foreign.ID,
		})
		require.ErrorIs(t, err, service.ErrInvalidWbsCategory)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, e.detections.Delete(e.ctx, item.ID))
		err := e.detections.Delete(e.ctx, item.ID)
		require.ErrorIs(t, err, service.ErrDetectedItemNotFound)
	})
}

func TestDetectionCompanyScoping(t *testing.T) {
	e := newEnv(t)

	item, err := e.detections.Create(e.ctx, e.drawing.ID, &domain.CreateDetectedItemRequest{
		ItemType: "floor_drain",
		Width:    20,
		Height:   20,
	})
	require.NoError(t, err)

	other := testutil.CreateTestCompany(t, e.db, "Rival Plumbing")
	otherCtx := testutil.ContextForUser(other.ID)

	_, err = e.detections.Update(otherCtx, item.ID, &domain.UpdateDetectedItemRequest{
		Verified: boolPtr(true),
	})
	require.ErrorIs(t, err, service.ErrDetectedItemNotFound)
}
