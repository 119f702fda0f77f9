package service_test

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/blueline-estimating/takeoff-api/internal/domain"
	"github.com/blueline-estimating/takeoff-api/internal/repository"
	"github.com/blueline-estimating/takeoff-api/internal/service"
	"github.com/blueline-estimating/takeoff-api/tests/testutil"
)

// env wires the full service layer against a fresh in-memory database with
// one company, one project and one three-page drawing already created.
type env struct {
	db *gorm.DB

	company *domain.Company
	project *domain.Project
	drawing *domain.Drawing

	// ctx carries an estimator scoped to company
	ctx context.Context

	companies  *service.CompanyService
	projects   *service.ProjectService
	drawings   *service.DrawingService
	scales     *service.ScaleService
	wbs        *service.WbsService
	materials  *service.MaterialService
	takeoff    *service.TakeoffService
	rfqs       *service.RfqService
	detections *service.DetectionService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db := testutil.SetupTestDB(t)
	log := testutil.TestLogger()

	companyRepo := repository.NewCompanyRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	drawingRepo := repository.NewDrawingRepository(db)
	customScaleRepo := repository.NewCustomScaleRepository(db)
	pageScaleRepo := repository.NewPageScaleRepository(db)
	zoneRepo := repository.NewScaleZoneRepository(db)
	wbsRepo := repository.NewWbsRepository(db)
	materialRepo := repository.NewMaterialRepository(db)
	takeoffRepo := repository.NewTakeoffRepository(db)
	rfqRepo := repository.NewRfqRepository(db)
	detectionRepo := repository.NewDetectionRepository(db)

	drawingService := service.NewDrawingService(drawingRepo, projectRepo, log)
	takeoffService := service.NewTakeoffService(takeoffRepo, materialRepo, wbsRepo, drawingService, log)

	company := testutil.CreateTestCompany(t, db, "Acme Mechanical")
	project := testutil.CreateTestProject(t, db, company.ID, "Riverside Plant")
	drawing := testutil.CreateTestDrawing(t, db, project.ID, "P-101", 3)

	return &env{
		db:         db,
		company:    company,
		project:    project,
		drawing:    drawing,
		ctx:        testutil.ContextForUser(company.ID),
		companies:  service.NewCompanyService(companyRepo, materialRepo, log),
		projects:   service.NewProjectService(projectRepo, wbsRepo, log),
		drawings:   drawingService,
		scales:     service.NewScaleService(customScaleRepo, pageScaleRepo, zoneRepo, drawingService, log),
		wbs:        service.NewWbsService(wbsRepo, projectRepo, log),
		materials:  service.NewMaterialService(materialRepo, log),
		takeoff:    takeoffService,
		rfqs:       service.NewRfqService(rfqRepo, materialRepo, wbsRepo, takeoffService, drawingService, log),
		detections: service.NewDetectionService(detectionRepo, wbsRepo, drawingService, log),
	}
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
func strPtr(v string) *string     { return &v }
func boolPtr(v bool) *bool        { return &v }
