package repository

import (
	"context"

	"github.com/blueline-estimating/takeoff-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DrawingRepository handles database operations for drawing identity records
type DrawingRepository struct {
	db *gorm.DB
}

// NewDrawingRepository creates a new repository instance
func NewDrawingRepository(db *gorm.DB) *DrawingRepository {
	return &DrawingRepository{db: db}
}

// Create creates a new drawing record
func (r *DrawingRepository) Create(ctx context.Context, drawing *domain.Drawing) error {
	return r.db.WithContext(ctx).Create(drawing).Error
}

// GetByID retrieves a drawing by its ID
func (r *DrawingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Drawing, error) {
	var drawing domain.Drawing
	err := r.db.WithContext(ctx).First(&drawing, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &drawing, nil
}

// GetByIDWithProject retrieves a drawing with its owning project preloaded,
// used by tenant checks that need the project's company.
func (r *DrawingRepository) GetByIDWithProject(ctx context.Context, id uuid.UUID) (*domain.Drawing, error) {
	var drawing domain.Drawing
	err := r.db.WithContext(ctx).
		Preload("Project").
		First(&drawing, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &drawing, nil
}

// GetByProject retrieves all drawings for a project in creation order
func (r *DrawingRepository) GetByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Drawing, error) {
	var drawings []domain.Drawing
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&drawings).Error
	return drawings, err
}

// Update updates an existing drawing
func (r *DrawingRepository) Update(ctx context.Context, drawing *domain.Drawing) error {
	return r.db.WithContext(ctx).Save(drawing).Error
}

// Delete removes a drawing and everything hanging off it in one transaction.
// Page scales, zones, ledger items and detections must not outlive the page
// they were measured on.
func (r *DrawingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("drawing_id = ?", id).Delete(&domain.PageScale{}).Error; err != nil {
			return err
		}
		if err := tx.Where("drawing_id = ?", id).Delete(&domain.ScaleZone{}).Error; err != nil {
			return err
		}
		if err := tx.Where("drawing_id = ?", id).Delete(&domain.TakeoffItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("drawing_id = ?", id).Delete(&domain.DetectedItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Drawing{}, "id = ?", id).Error
	})
}
