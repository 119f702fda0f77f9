package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blueline-estimating/takeoff-api/internal/domain"
	"github.com/blueline-estimating/takeoff-api/internal/service"
	"github.com/blueline-estimating/takeoff-api/tests/testutil"
)

func TestScaleCatalog(t *testing.T) {
	e := newEnv(t)

	all := e.scales.Catalog("")
	assert.Len(t, all, len(domain.StandardScales))

	arch := e.scales.Catalog(string(domain.ScaleFamilyArchitectural))
	require.NotEmpty(t, arch)
	for _, sc := range arch {
		assert.Equal(t, domain.ScaleFamilyArchitectural, sc.Family)
	}
	assert.Less(t, len(arch), len(all))
}

func TestCalibrate(t *testing.T) {
	e := newEnv(t)

	t.Run("derives pixels per unit from a known distance", func(t *testing.T) {
		result, err := e.scales.Calibrate(e.ctx, e.drawing.ID, &domain.CalibrateRequest{
			PageNumber:    0,
			PixelDistance: 100,
			RealDistance:  25,
			Unit:          "feet",
		})
		require.NoError(t, err)
		assert.InDelta(t, 4.0, result.PixelsPerUnit, 1e-9)
		assert.InDelta(t, 0.25, result.ScaleRatio, 1e-9)
		assert.Equal(t, "feet", result.Unit)
		assert.Nil(t, result.ScaleID)
	})

	t.Run("round trip through convert returns the measured distance", func(t *testing.T) {
		result, err := e.scales.Calibrate(e.ctx, e.drawing.ID, &domain.CalibrateRequest{
			PageNumber:    0,
			PixelDistance: 347.5,
			RealDistance:  42,
		})
		require.NoError(t, err)

		real, err := e.scales.ConvertLength(347.5, result.PixelsPerUnit)
		require.NoError(t, err)
		assert.InDelta(t, 42, real, 1e-9)
	})

	t.Run("named calibration persists a custom scale", func(t *testing.T) {
		result, err := e.scales.Calibrate(e.ctx, e.drawing.ID, &domain.CalibrateRequest{
			PageNumber:    1,
			PixelDistance: 200,
			RealDistance:  50,
			Name:          "Field calibration sheet 2",
		})
		require.NoError(t, err)
		require.NotNil(t, result.ScaleID)

		scales, err := e.scales.ListCustomScales(e.ctx, e.project.ID)
		require.NoError(t, err)
		require.Len(t, scales, 1)
		assert.Equal(t, *result.ScaleID, scales[0].ID)
		assert.Equal(t, "Field calibration sheet 2", scales[0].Name)
		assert.InDelta(t, 4.0, scales[0].PixelsPerUnit, 1e-9)
	})

	t.Run("rejects non-positive distances", func(t *testing.T) {
		_, err := e.scales.Calibrate(e.ctx, e.drawing.ID, &domain.CalibrateRequest{
			PageNumber:    0,
			PixelDistance: 0,
			RealDistance:  25,
		})
		require.ErrorIs(t, err, service.ErrInvalidCalibration)

		_, err = e.scales.Calibrate(e.ctx, e.drawing.ID, &domain.CalibrateRequest{
			PageNumber:    0,
			PixelDistance: 100,
			RealDistance:  -3,
		})
		require.ErrorIs(t, err, service.ErrInvalidCalibration)
	})

	t.Run("rejects pages outside the drawing", func(t *testing.T) {
		_, err := e.scales.Calibrate(e.ctx, e.drawing.ID, &domain.CalibrateRequest{
			PageNumber:    3,
			PixelDistance: 100,
			RealDistance:  25,
		})
		require.ErrorIs(t, err, service.ErrInvalidPage)
	})
}

func TestPageScaleLifecycle(t *testing.T) {
	e := newEnv(t)

	_, err := e.scales.GetPageScale(e.ctx, e.drawing.ID, 0)
	require.ErrorIs(t, err, service.ErrPageScaleNotFound)

	set, err := e.scales.SetPageScale(e.ctx, e.drawing.ID, 0, &domain.SetPageScaleRequest{
		ScaleRef:      "arch-quarter",
		PixelsPerUnit: 48,
	})
	require.NoError(t, err)
	assert.Equal(t, 48.0, set.PixelsPerUnit)

	// Setting again replaces rather than duplicates
	replaced, err := e.scales.SetPageScale(e.ctx, e.drawing.ID, 0, &domain.SetPageScaleRequest{
		ScaleName:     "Custom",
		PixelsPerUnit: 96,
	})
	require.NoError(t, err)
	assert.Equal(t, 96.0, replaced.PixelsPerUnit)

	all, err := e.scales.ListPageScales(e.ctx, e.drawing.ID)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 96.0, all[0].PixelsPerUnit)

	require.NoError(t, e.scales.ClearPageScale(e.ctx, e.drawing.ID, 0))
	_, err = e.scales.GetPageScale(e.ctx, e.drawing.ID, 0)
	require.ErrorIs(t, err, service.ErrPageScaleNotFound)
}

func TestPageScaleResolvesCatalogName(t *testing.T) {
	e := newEnv(t)

	sc := domain.StandardScales[0]
	set, err := e.scales.SetPageScale(e.ctx, e.drawing.ID, 1, &domain.SetPageScaleRequest{
		ScaleRef:      sc.ID,
		PixelsPerUnit: 48,
	})
	require.NoError(t, err)
	assert.Equal(t, sc.Name, set.ScaleName)
}

func TestResolveScale(t *testing.T) {
	e := newEnv(t)

	_, err := e.scales.SetPageScale(e.ctx, e.drawing.ID, 0, &domain.SetPageScaleRequest{
		ScaleName:     "Page default",
		PixelsPerUnit: 10,
	})
	require.NoError(t, err)

	zone, err := e.scales.CreateZone(e.ctx, e.drawing.ID, 0, &domain.CreateScaleZoneRequest{
		Name:          "Detail inset",
		X:             0,
		Y:             0,
		Width:         100,
		Height:        100,
		ScaleName:     "Inset scale",
		PixelsPerUnit: 20,
	})
	require.NoError(t, err)

	t.Run("zone wins inside its bounds", func(t *testing.T) {
		resolved, err := e.scales.Resolve(e.ctx, e.drawing.ID, 0, 50, 50)
		require.NoError(t, err)
		assert.Equal(t, "zone", resolved.Source)
		assert.Equal(t, 20.0, resolved.PixelsPerUnit)
		require.NotNil(t, resolved.ZoneID)
		assert.Equal(t, zone.ID, *resolved.ZoneID)
	})

	t.Run("page default applies outside zones", func(t *testing.T) {
		resolved, err := e.scales.Resolve(e.ctx, e.drawing.ID, 0, 500, 500)
		require.NoError(t, err)
		assert.Equal(t, "page", resolved.Source)
		assert.Equal(t, 10.0, resolved.PixelsPerUnit)
		assert.Nil(t, resolved.ZoneID)
	})

	t.Run("undefined without page scale or zone", func(t *testing.T) {
		_, err := e.scales.Resolve(e.ctx, e.drawing.ID, 1, 50, 50)
		require.ErrorIs(t, err, service.ErrScaleUndefined)
	})

	t.Run("resolving twice gives the same answer", func(t *testing.T) {
		first, err := e.scales.Resolve(e.ctx, e.drawing.ID, 0, 50, 50)
		require.NoError(t, err)
		second, err := e.scales.Resolve(e.ctx, e.drawing.ID, 0, 50, 50)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

func TestResolveOverlappingZones(t *testing.T) {
	e := newEnv(t)

	_, err := e.scales.CreateZone(e.ctx, e.drawing.ID, 0, &domain.CreateScaleZoneRequest{
		Name:          "Whole sheet",
		Width:         1000,
		Height:        1000,
		PixelsPerUnit: 5,
	})
	require.NoError(t, err)

	small, err := e.scales.CreateZone(e.ctx, e.drawing.ID, 0, &domain.CreateScaleZoneRequest{
		Name:          "Blowup",
		X:             100,
		Y:             100,
		Width:         200,
		Height:        200,
		PixelsPerUnit: 7,
	})
	require.NoError(t, err)

	t.Run("smallest area wins", func(t *testing.T) {
		resolved, err := e.scales.Resolve(e.ctx, e.drawing.ID, 0, 150, 150)
		require.NoError(t, err)
		require.NotNil(t, resolved.ZoneID)
		assert.Equal(t, small.ID, *resolved.ZoneID)
		assert.Equal(t, 7.0, resolved.PixelsPerUnit)
	})

	t.Run("equal areas fall to the newest zone", func(t *testing.T) {
		twin, err := e.scales.CreateZone(e.ctx, e.drawing.ID, 0, &domain.CreateScaleZoneRequest{
			Name:          "Blowup revised",
			X:             100,
			Y:             100,
			Width:         200,
			Height:        200,
			PixelsPerUnit: 9,
		})
		require.NoError(t, err)

		// Force a later creation timestamp; sub-second inserts can land on
		// the same clock tick.
		err = e.db.Model(&domain.ScaleZone{}).
			Where("id = ?", twin.ID).
			Update("created_at", time.Now().UTC().Add(time.Minute)).Error
		require.NoError(t, err)

		resolved, err := e.scales.Resolve(e.ctx, e.drawing.ID, 0, 150, 150)
		require.NoError(t, err)
		require.NotNil(t, resolved.ZoneID)
		assert.Equal(t, twin.ID, *resolved.ZoneID)
		assert.Equal(t, 9.0, resolved.PixelsPerUnit)
	})
}

func TestZoneUpdateAndDelete(t *testing.T) {
	e := newEnv(t)

	zone, err := e.scales.CreateZone(e.ctx, e.drawing.ID, 0, &domain.CreateScaleZoneRequest{
		Name:          "Detail A",
		Width:         100,
		Height:        100,
		PixelsPerUnit: 12,
	})
	require.NoError(t, err)

	updated, err := e.scales.UpdateZone(e.ctx, zone.ID, &domain.UpdateScaleZoneRequest{
		Name:          strPtr("Detail A rev 2"),
		PixelsPerUnit: floatPtr(24),
	})
	require.NoError(t, err)
	assert.Equal(t, "Detail A rev 2", updated.Name)
	assert.Equal(t, 24.0, updated.PixelsPerUnit)
	assert.Equal(t, 100.0, updated.Width)

	require.NoError(t, e.scales.DeleteZone(e.ctx, zone.ID))
	err = e.scales.DeleteZone(e.ctx, zone.ID)
	require.ErrorIs(t, err, service.ErrScaleZoneNotFound)
}

func TestConvertLength(t *testing.T) {
	e := newEnv(t)

	real, err := e.scales.ConvertLength(100, 4)
	require.NoError(t, err)
	assert.InDelta(t, 25, real, 1e-9)

	_, err = e.scales.ConvertLength(100, 0)
	require.ErrorIs(t, err, service.ErrInvalidCalibration)
}

func TestScaleCompanyScoping(t *testing.T) {
	e := newEnv(t)

	other := testutil.CreateTestCompany(t, e.db, "Rival Plumbing")
	otherCtx := testutil.ContextForUser(other.ID)

	_, err := e.scales.Resolve(otherCtx, e.drawing.ID, 0, 50, 50)
	require.ErrorIs(t, err, service.ErrDrawingNotFound)

	_, err = e.scales.SetPageScale(otherCtx, e.drawing.ID, 0, &domain.SetPageScaleRequest{
		PixelsPerUnit: 10,
	})
	require.ErrorIs(t, err, service.ErrDrawingNotFound)
}
