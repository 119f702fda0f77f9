package repository

import (
	"context"

	"github.com/blueline-estimating/takeoff-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ScaleZoneRepository handles database operations for scale zones
type ScaleZoneRepository struct {
	db *gorm.DB
}

// NewScaleZoneRepository creates a new repository instance
func NewScaleZoneRepository(db *gorm.DB) *ScaleZoneRepository {
	return &ScaleZoneRepository{db: db}
}

// Create creates a new scale zone
func (r *ScaleZoneRepository) Create(ctx context.Context, zone *domain.ScaleZone) error {
	return r.db.WithContext(ctx).Create(zone).Error
}

// GetByID retrieves a scale zone by its ID
func (r *ScaleZoneRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ScaleZone, error) {
	var zone domain.ScaleZone
	err := r.db.WithContext(ctx).First(&zone, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &zone, nil
}

// GetByPage retrieves all zones on a drawing page in creation order
func (r *ScaleZoneRepository) GetByPage(ctx context.Context, drawingID uuid.UUID, pageNumber int) ([]domain.ScaleZone, error) {
	var zones []domain.ScaleZone
	err := r.db.WithContext(ctx).
		Where("drawing_id = ? AND page_number = ?", drawingID, pageNumber).
		Order("created_at ASC").
		Find(&zones).Error
	return zones, err
}

// Update updates an existing scale zone
func (r *ScaleZoneRepository) Update(ctx context.Context, zone *domain.ScaleZone) error {
	return r.db.WithContext(ctx).Save(zone).Error
}

// Delete removes a scale zone by ID
func (r *ScaleZoneRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.ScaleZone{}, "id = ?", id).Error
}
