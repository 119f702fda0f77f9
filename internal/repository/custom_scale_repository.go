package repository

import (
	"context"

	"github.com/blueline-estimating/takeoff-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CustomScaleRepository handles database operations for project custom scales
type CustomScaleRepository struct {
	db *gorm.DB
}

// NewCustomScaleRepository creates a new repository instance
func NewCustomScaleRepository(db *gorm.DB) *CustomScaleRepository {
	return &CustomScaleRepository{db: db}
}

// Create creates a new custom scale
func (r *CustomScaleRepository) Create(ctx context.Context, scale *domain.CustomScale) error {
	return r.db.WithContext(ctx).Create(scale).Error
}

// GetByID retrieves a custom scale by its ID
func (r *CustomScaleRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.CustomScale, error) {
	var scale domain.CustomScale
	err := r.db.WithContext(ctx).First(&scale, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &scale, nil
}

// GetByProject retrieves all custom scales for a project in creation order
func (r *CustomScaleRepository) GetByProject(ctx context.Context, projectID uuid.UUID) ([]domain.CustomScale, error) {
	var scales []domain.CustomScale
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&scales).Error
	return scales, err
}

// Delete removes a custom scale by ID
func (r *CustomScaleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.CustomScale{}, "id = ?", id).Error
}
