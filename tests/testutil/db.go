package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/blueline-estimating/takeoff-api/internal/auth"
	"github.com/blueline-estimating/takeoff-api/internal/domain"
)

// SetupTestDB opens an isolated in-memory sqlite database and migrates the
// full schema. Each call gives the test its own database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared&_fk=1"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open test database")

	require.NoError(t, db.AutoMigrate(domain.AllModels()...), "failed to migrate test schema")

	return db
}

// TestLogger returns a no-op logger for constructing services in tests
func TestLogger() *zap.Logger {
	return zap.NewNop()
}

// ContextForUser returns a context carrying an authenticated estimator
// scoped to the given company
func ContextForUser(companyID uuid.UUID) context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:      uuid.New(),
		DisplayName: "Test Estimator",
		Email:       "estimator@example.com",
		Roles:       []auth.Role{auth.RoleEstimator},
		CompanyID:   companyID,
	})
}

// ContextForAdmin returns a context carrying a platform admin
func ContextForAdmin() context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:      uuid.New(),
		DisplayName: "Test Admin",
		Email:       "admin@example.com",
		Roles:       []auth.Role{auth.RoleAdmin},
	})
}

// CreateTestCompany inserts a company row
func CreateTestCompany(t *testing.T, db *gorm.DB, name string) *domain.Company {
	t.Helper()
	company := &domain.Company{
		Name:     name,
		IsActive: true,
	}
	require.NoError(t, db.Create(company).Error)
	return company
}

// CreateTestProject inserts a project row owned by the company
func CreateTestProject(t *testing.T, db *gorm.DB, companyID uuid.UUID, name string) *domain.Project {
	t.Helper()
	project := &domain.Project{
		CompanyID: companyID,
		Name:      name,
	}
	require.NoError(t, db.Create(project).Error)
	return project
}

// CreateTestDrawing inserts a drawing row with the given page count
func CreateTestDrawing(t *testing.T, db *gorm.DB, projectID uuid.UUID, name string, pageCount int) *domain.Drawing {
	t.Helper()
	drawing := &domain.Drawing{
		ProjectID: projectID,
		Name:      name,
		PageCount: pageCount,
	}
	require.NoError(t, db.Create(drawing).Error)
	return drawing
}

// CreateTestMaterial inserts a pricebook row for the company
func CreateTestMaterial(t *testing.T, db *gorm.DB, companyID uuid.UUID, partNumber string, listPrice, laborUnits float64) *domain.Material {
	t.Helper()
	material := &domain.Material{
		CompanyID:   companyID,
		PartNumber:  partNumber,
		Category:    "Pipe",
		Description: "Test material " + partNumber,
		Unit:        "LF",
		ListPrice:   listPrice,
		LaborUnits:  laborUnits,
		IsActive:    true,
	}
	require.NoError(t, db.Create(material).Error)
	return material
}

// CreateTestWbsCategory inserts a WBS category row
func CreateTestWbsCategory(t *testing.T, db *gorm.DB, projectID uuid.UUID, parentID *uuid.UUID, name string, sortOrder int) *domain.WbsCategory {
	t.Helper()
	category := &domain.WbsCategory{
		ProjectID: projectID,
		ParentID:  parentID,
		Name:      name,
		SortOrder: sortOrder,
	}
	require.NoError(t, db.Create(category).Error)
	return category
}
