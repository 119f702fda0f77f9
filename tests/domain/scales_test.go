package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blueline-estimating/takeoff-api/internal/domain"
)

func TestStandardScaleCatalog(t *testing.T) {
	assert.NotEmpty(t, domain.StandardScales)

	seen := map[string]bool{}
	for _, sc := range domain.StandardScales {
		assert.NotEmpty(t, sc.ID)
		assert.NotEmpty(t, sc.Name)
		assert.Greater(t, sc.Ratio, 0.0)
		assert.False(t, seen[sc.ID], "duplicate catalog id %s", sc.ID)
		seen[sc.ID] = true
	}
}

func TestStandardScaleByID(t *testing.T) {
	sc, ok := domain.StandardScaleByID("arch_1_4")
	require.True(t, ok)
	assert.Equal(t, `1/4" = 1'-0"`, sc.Name)
	assert.Equal(t, 48.0, sc.Ratio)

	_, ok = domain.StandardScaleByID("no_such_scale")
	assert.False(t, ok)
}

func TestScaleZoneGeometry(t *testing.T) {
	zone := domain.ScaleZone{X: 10, Y: 20, Width: 100, Height: 50}

	assert.True(t, zone.Contains(10, 20))   // top-left corner
	assert.True(t, zone.Contains(110, 70))  // bottom-right corner
	assert.True(t, zone.Contains(60, 45))   // interior
	assert.False(t, zone.Contains(9, 45))   // left of zone
	assert.False(t, zone.Contains(60, 71))  // below zone
	assert.False(t, zone.Contains(111, 45)) // right of zone

	assert.Equal(t, 5000.0, zone.Area())
}

func TestTakeoffItemExtensions(t *testing.T) {
	material := &domain.Material{ListPrice: 3.25, LaborUnits: 0.10}
	item := domain.TakeoffItem{Quantity: 15, Multiplier: 1, Material: material}

	assert.InDelta(t, 48.75, item.ExtendedPrice(), 1e-9)
	assert.InDelta(t, 1.50, item.ExtendedLabor(), 1e-9)

	t.Run("multiplier applies to price only", func(t *testing.T) {
		item.Multiplier = 1.1
		assert.InDelta(t, 15*1.1*3.25, item.ExtendedPrice(), 1e-9)
		assert.InDelta(t, 1.50, item.ExtendedLabor(), 1e-9)
	})

	t.Run("missing material extends to zero", func(t *testing.T) {
		bare := domain.TakeoffItem{Quantity: 10, Multiplier: 1}
		assert.Zero(t, bare.ExtendedPrice())
		assert.Zero(t, bare.ExtendedLabor())
	})
}

func TestDefaultMaterials(t *testing.T) {
	companyID := uuid.New()
	materials := domain.DefaultMaterials(companyID)
	require.NotEmpty(t, materials)

	parts := map[string]bool{}
	for _, m := range materials {
		assert.Equal(t, companyID, m.CompanyID)
		assert.True(t, m.IsActive)
		assert.NotEmpty(t, m.PartNumber)
		assert.NotEmpty(t, m.Unit)
		assert.GreaterOrEqual(t, m.ListPrice, 0.0)
		assert.False(t, parts[m.PartNumber], "duplicate part number %s", m.PartNumber)
		parts[m.PartNumber] = true
	}
}
