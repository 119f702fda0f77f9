package repository

import (
	"context"
	"fmt"

	"github.com/blueline-estimating/takeoff-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TakeoffItemFilter narrows ledger list queries
type TakeoffItemFilter struct {
	PageNumber    *int
	WbsCategoryID *uuid.UUID
}

// TakeoffRepository handles database operations for the takeoff ledger
type TakeoffRepository struct {
	db *gorm.DB
}

// NewTakeoffRepository creates a new repository instance
func NewTakeoffRepository(db *gorm.DB) *TakeoffRepository {
	return &TakeoffRepository{db: db}
}

// Create creates a new ledger item
func (r *TakeoffRepository) Create(ctx context.Context, item *domain.TakeoffItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// GetByID retrieves a ledger item with its material and category preloaded
func (r *TakeoffRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.TakeoffItem, error) {
	var item domain.TakeoffItem
	err := r.db.WithContext(ctx).
		Preload("Material").
		Preload("WbsCategory").
		First(&item, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetByDrawing retrieves ledger items on a drawing, optionally narrowed to a
// page or a category, in creation order.
func (r *TakeoffRepository) GetByDrawing(ctx context.Context, drawingID uuid.UUID, filter TakeoffItemFilter) ([]domain.TakeoffItem, error) {
	query := r.db.WithContext(ctx).
		Preload("Material").
		Preload("WbsCategory").
		Where("drawing_id = ?", drawingID)
	if filter.PageNumber != nil {
		query = query.Where("page_number = ?", *filter.PageNumber)
	}
	if filter.WbsCategoryID != nil {
		query = query.Where("wbs_category_id = ?", *filter.WbsCategoryID)
	}

	var items []domain.TakeoffItem
	err := query.Order("created_at ASC").Find(&items).Error
	return items, err
}

// GetByProject retrieves every ledger item across all drawings of a project,
// materials preloaded, for project-wide rollups.
func (r *TakeoffRepository) GetByProject(ctx context.Context, projectID uuid.UUID) ([]domain.TakeoffItem, error) {
	var items []domain.TakeoffItem
	err := r.db.WithContext(ctx).
		Preload("Material").
		Preload("WbsCategory").
		Joins("JOIN drawings ON drawings.id = takeoff_items.drawing_id").
		Where("drawings.project_id = ?", projectID).
		Order("takeoff_items.created_at ASC").
		Find(&items).Error
	return items, err
}

// Update updates an existing ledger item
func (r *TakeoffRepository) Update(ctx context.Context, item *domain.TakeoffItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// Delete removes a ledger item by ID
func (r *TakeoffRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.TakeoffItem{}, "id = ?", id).Error
}

// BulkUpdateWbs points every listed item at a category (nil clears it) inside
// one transaction. A missing id fails the whole batch so callers never see a
// half-applied reassignment.
func (r *TakeoffRepository) BulkUpdateWbs(ctx context.Context, itemIDs []uuid.UUID, categoryID *uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, id := range itemIDs {
			result := tx.Model(&domain.TakeoffItem{}).
				Where("id = ?", id).
				Update("wbs_category_id", categoryID)
			if result.Error != nil {
				return fmt.Errorf("failed to reassign item %s: %w", id, result.Error)
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("takeoff item %s: %w", id, gorm.ErrRecordNotFound)
			}
		}
		return nil
	})
}

// CountByWbsCategory returns the number of ledger items assigned to a category
func (r *TakeoffRepository) CountByWbsCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.TakeoffItem{}).
		Where("wbs_category_id = ?", categoryID).
		Count(&count).Error
	return count, err
}
