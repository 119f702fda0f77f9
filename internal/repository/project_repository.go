package repository

import (
	"context"

	"github.com/blueline-estimating/takeoff-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjectRepository handles database operations for projects
type ProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new repository instance
func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create creates a new project
func (r *ProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

// GetByID retrieves a project by its ID
func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	var project domain.Project
	err := r.db.WithContext(ctx).First(&project, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// GetByCompany retrieves all projects for a company, newest activity first
func (r *ProjectRepository) GetByCompany(ctx context.Context, companyID uuid.UUID) ([]domain.Project, error) {
	var projects []domain.Project
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("updated_at DESC").
		Find(&projects).Error
	return projects, err
}

// Update updates an existing project
func (r *ProjectRepository) Update(ctx context.Context, project *domain.Project) error {
	return r.db.WithContext(ctx).Save(project).Error
}

// Delete removes a project. Associated drawings, scales, categories and RFQs
// cascade at the database level.
func (r *ProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Project{}, "id = ?", id).Error
}

// CountDrawings returns the number of drawings in a project
func (r *ProjectRepository) CountDrawings(ctx context.Context, projectID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Drawing{}).
		Where("project_id = ?", projectID).
		Count(&count).Error
	return count, err
}
