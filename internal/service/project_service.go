package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/blueline-estimating/takeoff-api/internal/auth"
	"github.com/blueline-estimating/takeoff-api/internal/domain"
	"github.com/blueline-estimating/takeoff-api/internal/mapper"
	"github.com/blueline-estimating/takeoff-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service-level errors for projects
var (
	ErrProjectNotFound = errors.New("project not found")
)

// ProjectService handles business logic for estimating projects
type ProjectService struct {
	projectRepo *repository.ProjectRepository
	wbsRepo     *repository.WbsRepository
	logger      *zap.Logger
}

// NewProjectService creates a new ProjectService instance
func NewProjectService(projectRepo *repository.ProjectRepository, wbsRepo *repository.WbsRepository, logger *zap.Logger) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		wbsRepo:     wbsRepo,
		logger:      logger,
	}
}

// Create creates a new project scoped to the caller's company and seeds the
// default WBS tree so categorization works out of the box.
func (s *ProjectService) Create(ctx context.Context, req *domain.CreateProjectRequest) (*domain.ProjectDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	project := &domain.Project{
		CompanyID:   userCtx.CompanyID,
		Name:        req.Name,
		Description: req.Description,
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	if err := s.wbsRepo.SeedDefaults(ctx, project.ID); err != nil {
		s.logger.Warn("failed to seed default WBS categories",
			zap.String("project_id", project.ID.String()),
			zap.Error(err))
	}

	s.logger.Info("project created",
		zap.String("project_id", project.ID.String()),
		zap.String("company_id", project.CompanyID.String()),
		zap.String("name", project.Name))

	return mapper.ToProjectDTO(project), nil
}

// GetByID retrieves a project by ID
func (s *ProjectService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProjectDTO, error) {
	project, err := s.getOwned(ctx, id)
	if err != nil {
		return nil, err
	}
	return mapper.ToProjectDTO(project), nil
}

// List retrieves all projects visible to the caller
func (s *ProjectService) List(ctx context.Context) ([]domain.ProjectDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	projects, err := s.projectRepo.GetByCompany(ctx, userCtx.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	dtos := make([]domain.ProjectDTO, 0, len(projects))
	for i := range projects {
		dtos = append(dtos, *mapper.ToProjectDTO(&projects[i]))
	}
	return dtos, nil
}

// Update applies a partial update to a project
func (s *ProjectService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateProjectRequest) (*domain.ProjectDTO, error) {
	project, err := s.getOwned(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return mapper.ToProjectDTO(project), nil
}

// Delete removes a project and everything under it
func (s *ProjectService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.getOwned(ctx, id); err != nil {
		return err
	}

	if err := s.projectRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	s.logger.Info("project deleted", zap.String("project_id", id.String()))
	return nil
}

// getOwned loads a project and enforces company scoping.
func (s *ProjectService) getOwned(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	if !repository.MustHaveCompanyAccess(ctx, project.CompanyID) {
		return nil, ErrProjectNotFound
	}
	return project, nil
}
