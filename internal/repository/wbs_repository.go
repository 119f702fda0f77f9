package repository

import (
	"context"

	"github.com/blueline-estimating/takeoff-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WbsRepository handles database operations for WBS categories
type WbsRepository struct {
	db *gorm.DB
}

// NewWbsRepository creates a new repository instance
func NewWbsRepository(db *gorm.DB) *WbsRepository {
	return &WbsRepository{db: db}
}

// Create creates a new WBS category
func (r *WbsRepository) Create(ctx context.Context, category *domain.WbsCategory) error {
	return r.db.WithContext(ctx).Create(category).Error
}

// GetByID retrieves a WBS category by its ID
func (r *WbsRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.WbsCategory, error) {
	var category domain.WbsCategory
	err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// GetByProject retrieves the full flat category set for a project, ordered by
// sibling sort order with names breaking ties.
func (r *WbsRepository) GetByProject(ctx context.Context, projectID uuid.UUID) ([]domain.WbsCategory, error) {
	var categories []domain.WbsCategory
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("sort_order ASC, name ASC").
		Find(&categories).Error
	return categories, err
}

// Update updates an existing WBS category
func (r *WbsRepository) Update(ctx context.Context, category *domain.WbsCategory) error {
	return r.db.WithContext(ctx).Save(category).Error
}

// Delete removes a WBS category by ID. Callers must run the in-use and
// has-children guards first; this does not cascade.
func (r *WbsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.WbsCategory{}, "id = ?", id).Error
}

// MaxSortOrder returns the highest sort order among the children of a parent
// (or the roots when parentID is nil). Returns -1 when no siblings exist.
func (r *WbsRepository) MaxSortOrder(ctx context.Context, projectID uuid.UUID, parentID *uuid.UUID) (int, error) {
	var maxOrder *int
	query := r.db.WithContext(ctx).
		Model(&domain.WbsCategory{}).
		Where("project_id = ?", projectID).
		Select("MAX(sort_order)")
	if parentID != nil {
		query = query.Where("parent_id = ?", *parentID)
	} else {
		query = query.Where("parent_id IS NULL")
	}
	if err := query.Scan(&maxOrder).Error; err != nil {
		return 0, err
	}
	if maxOrder == nil {
		return -1, nil
	}
	return *maxOrder, nil
}

// CountChildren returns the number of direct children of a category
func (r *WbsRepository) CountChildren(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.WbsCategory{}).
		Where("parent_id = ?", id).
		Count(&count).Error
	return count, err
}

// CountReferences returns how many ledger items and detection records point
// at a category. Non-zero blocks deletion.
func (r *WbsRepository) CountReferences(ctx context.Context, id uuid.UUID) (int64, error) {
	var items int64
	if err := r.db.WithContext(ctx).
		Model(&domain.TakeoffItem{}).
		Where("wbs_category_id = ?", id).
		Count(&items).Error; err != nil {
		return 0, err
	}

	var detections int64
	if err := r.db.WithContext(ctx).
		Model(&domain.DetectedItem{}).
		Where("wbs_category_id = ?", id).
		Count(&detections).Error; err != nil {
		return 0, err
	}

	return items + detections, nil
}

// SeedDefaults inserts the initial category set for a new project in a single
// transaction: a "Base Bid" root with the standard plumbing phases under it.
func (r *WbsRepository) SeedDefaults(ctx context.Context, projectID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		root := domain.WbsCategory{
			ProjectID: projectID,
			Name:      "Base Bid",
			SortOrder: 0,
		}
		if err := tx.Create(&root).Error; err != nil {
			return err
		}

		children := []string{"UG Water", "UG Sanitary", "UG Storm", "AG Water", "AG Sanitary"}
		for i, name := range children {
			child := domain.WbsCategory{
				ProjectID: projectID,
				ParentID:  &root.ID,
				Name:      name,
				SortOrder: i,
			}
			if err := tx.Create(&child).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
