package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/blueline-estimating/takeoff-api/internal/domain"
	"github.com/blueline-estimating/takeoff-api/internal/mapper"
	"github.com/blueline-estimating/takeoff-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service-level errors for drawings
var (
	ErrDrawingNotFound = errors.New("drawing not found")
	ErrInvalidPage     = errors.New("page number outside drawing page range")
)

// DrawingService handles business logic for drawings
type DrawingService struct {
	drawingRepo *repository.DrawingRepository
	projectRepo *repository.ProjectRepository
	logger      *zap.Logger
}

// NewDrawingService creates a new DrawingService instance
func NewDrawingService(drawingRepo *repository.DrawingRepository, projectRepo *repository.ProjectRepository, logger *zap.Logger) *DrawingService {
	return &DrawingService{
		drawingRepo: drawingRepo,
		projectRepo: projectRepo,
		logger:      logger,
	}
}

// Create registers a drawing under a project
func (s *DrawingService) Create(ctx context.Context, projectID uuid.UUID, req *domain.CreateDrawingRequest) (*domain.DrawingDTO, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	if !repository.MustHaveCompanyAccess(ctx, project.CompanyID) {
		return nil, ErrProjectNotFound
	}

	drawing := &domain.Drawing{
		ProjectID: projectID,
		Name:      req.Name,
		PageCount: req.PageCount,
	}

	if err := s.drawingRepo.Create(ctx, drawing); err != nil {
		return nil, fmt.Errorf("failed to create drawing: %w", err)
	}

	s.logger.Info("drawing created",
		zap.String("drawing_id", drawing.ID.String()),
		zap.String("project_id", projectID.String()),
		zap.Int("page_count", drawing.PageCount))

	return mapper.ToDrawingDTO(drawing), nil
}

// GetByID retrieves a drawing by ID
func (s *DrawingService) GetByID(ctx context.Context, id uuid.UUID) (*domain.DrawingDTO, error) {
	drawing, err := s.GetOwned(ctx, id)
	if err != nil {
		return nil, err
	}
	return mapper.ToDrawingDTO(drawing), nil
}

// ListByProject retrieves all drawings for a project
func (s *DrawingService) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.DrawingDTO, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	if !repository.MustHaveCompanyAccess(ctx, project.CompanyID) {
		return nil, ErrProjectNotFound
	}

	drawings, err := s.drawingRepo.GetByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list drawings: %w", err)
	}

	dtos := make([]domain.DrawingDTO, 0, len(drawings))
	for i := range drawings {
		dtos = append(dtos, *mapper.ToDrawingDTO(&drawings[i]))
	}
	return dtos, nil
}

// Update applies a partial update to a drawing
func (s *DrawingService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateDrawingRequest) (*domain.DrawingDTO, error) {
	drawing, err := s.GetOwned(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		drawing.Name = *req.Name
	}

	if err := s.drawingRepo.Update(ctx, drawing); err != nil {
		return nil, fmt.Errorf("failed to update drawing: %w", err)
	}

	return mapper.ToDrawingDTO(drawing), nil
}

// Delete removes a drawing and its scales, zones, ledger items and detections
func (s *DrawingService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetOwned(ctx, id); err != nil {
		return err
	}

	if err := s.drawingRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete drawing: %w", err)
	}

	s.logger.Info("drawing deleted", zap.String("drawing_id", id.String()))
	return nil
}

// GetOwned loads a drawing with its project and enforces company scoping.
// Other services that anchor on a drawing reuse this check.
func (s *DrawingService) GetOwned(ctx context.Context, id uuid.UUID) (*domain.Drawing, error) {
	drawing, err := s.drawingRepo.GetByIDWithProject(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDrawingNotFound
		}
		return nil, fmt.Errorf("failed to get drawing: %w", err)
	}

	if drawing.Project == nil || !repository.MustHaveCompanyAccess(ctx, drawing.Project.CompanyID) {
		return nil, ErrDrawingNotFound
	}
	return drawing, nil
}

// CheckProjectAccess verifies the project exists and belongs to the caller's
// company. Services that anchor on a project rather than a drawing use this.
func (s *DrawingService) CheckProjectAccess(ctx context.Context, projectID uuid.UUID) error {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to get project: %w", err)
	}
	if !repository.MustHaveCompanyAccess(ctx, project.CompanyID) {
		return ErrProjectNotFound
	}
	return nil
}

// CheckPage validates that a page number falls inside the drawing's range.
func (s *DrawingService) CheckPage(drawing *domain.Drawing, pageNumber int) error {
	if pageNumber < 0 || pageNumber >= drawing.PageCount {
		return ErrInvalidPage
	}
	return nil
}
