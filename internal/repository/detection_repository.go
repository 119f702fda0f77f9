package repository

import (
	"context"

	"github.com/blueline-estimating/takeoff-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DetectionRepository handles database operations for detected fixture records
type DetectionRepository struct {
	db *gorm.DB
}

// NewDetectionRepository creates a new repository instance
func NewDetectionRepository(db *gorm.DB) *DetectionRepository {
	return &DetectionRepository{db: db}
}

// Create stores a detection record from the external pipeline
func (r *DetectionRepository) Create(ctx context.Context, item *domain.DetectedItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// GetByID retrieves a detection record by its ID
func (r *DetectionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.DetectedItem, error) {
	var item domain.DetectedItem
	err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetByDrawing retrieves detection records for a drawing, optionally narrowed
// to a single page.
func (r *DetectionRepository) GetByDrawing(ctx context.Context, drawingID uuid.UUID, pageNumber *int) ([]domain.DetectedItem, error) {
	query := r.db.WithContext(ctx).
		Where("drawing_id = ?", drawingID)
	if pageNumber != nil {
		query = query.Where("page_number = ?", *pageNumber)
	}

	var items []domain.DetectedItem
	err := query.Order("created_at ASC").Find(&items).Error
	return items, err
}

// Update updates an existing detection record
func (r *DetectionRepository) Update(ctx context.Context, item *domain.DetectedItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// Delete removes a detection record by ID
func (r *DetectionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.DetectedItem{}, "id = ?", id).Error
}

// CountsByType returns how many detections of each type a drawing carries
func (r *DetectionRepository) CountsByType(ctx context.Context, drawingID uuid.UUID) (map[string]int64, error) {
	var rows []struct {
		ItemType string
		Count    int64
	}
	err := r.db.WithContext(ctx).
		Model(&domain.DetectedItem{}).
		Where("drawing_id = ?", drawingID).
		Select("item_type, COUNT(*) as count").
		Group("item_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.ItemType] = row.Count
	}
	return counts, nil
}
