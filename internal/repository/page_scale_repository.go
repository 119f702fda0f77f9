package repository

import (
	"context"

	"github.com/blueline-estimating/takeoff-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PageScaleRepository handles database operations for per-page default scales
type PageScaleRepository struct {
	db *gorm.DB
}

// NewPageScaleRepository creates a new repository instance
func NewPageScaleRepository(db *gorm.DB) *PageScaleRepository {
	return &PageScaleRepository{db: db}
}

// Upsert sets the default scale for a page, replacing any prior value. The
// (drawing_id, page_number) pair carries a unique index so this can ride the
// database's conflict handling.
func (r *PageScaleRepository) Upsert(ctx context.Context, scale *domain.PageScale) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "drawing_id"}, {Name: "page_number"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"scale_ref", "scale_name", "pixels_per_unit", "updated_at",
			}),
		}).
		Create(scale).Error
}

// GetByPage retrieves the default scale for a page, if set
func (r *PageScaleRepository) GetByPage(ctx context.Context, drawingID uuid.UUID, pageNumber int) (*domain.PageScale, error) {
	var scale domain.PageScale
	err := r.db.WithContext(ctx).
		First(&scale, "drawing_id = ? AND page_number = ?", drawingID, pageNumber).Error
	if err != nil {
		return nil, err
	}
	return &scale, nil
}

// GetByDrawing retrieves the default scales of every page of a drawing
func (r *PageScaleRepository) GetByDrawing(ctx context.Context, drawingID uuid.UUID) ([]domain.PageScale, error) {
	var scales []domain.PageScale
	err := r.db.WithContext(ctx).
		Where("drawing_id = ?", drawingID).
		Order("page_number ASC").
		Find(&scales).Error
	return scales, err
}

// DeleteByPage removes the default scale for a page
func (r *PageScaleRepository) DeleteByPage(ctx context.Context, drawingID uuid.UUID, pageNumber int) error {
	return r.db.WithContext(ctx).
		Where("drawing_id = ? AND page_number = ?", drawingID, pageNumber).
		Delete(&domain.PageScale{}).Error
}
