package repository

import (
	"context"

	"github.com/blueline-estimating/takeoff-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaterialFilter narrows material list queries
type MaterialFilter struct {
	Category   string
	ActiveOnly bool
}

// MaterialRepository handles database operations for the material catalog
type MaterialRepository struct {
	db *gorm.DB
}

// NewMaterialRepository creates a new repository instance
func NewMaterialRepository(db *gorm.DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

// Create creates a new material
func (r *MaterialRepository) Create(ctx context.Context, material *domain.Material) error {
	return r.db.WithContext(ctx).Create(material).Error
}

// GetByID retrieves a material by its ID
func (r *MaterialRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Material, error) {
	var material domain.Material
	err := r.db.WithContext(ctx).First(&material, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &material, nil
}

// GetByPartNumber retrieves a material by company and part number
func (r *MaterialRepository) GetByPartNumber(ctx context.Context, companyID uuid.UUID, partNumber string) (*domain.Material, error) {
	var material domain.Material
	err := r.db.WithContext(ctx).
		First(&material, "company_id = ? AND part_number = ?", companyID, partNumber).Error
	if err != nil {
		return nil, err
	}
	return &material, nil
}

// GetByCompany retrieves materials for a company, filtered and ordered by
// category then description.
func (r *MaterialRepository) GetByCompany(ctx context.Context, companyID uuid.UUID, filter MaterialFilter) ([]domain.Material, error) {
	query := r.db.WithContext(ctx).
		Where("company_id = ?", companyID)
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	var materials []domain.Material
	err := query.Order("category ASC, description ASC").Find(&materials).Error
	return materials, err
}

// GetCategories returns the distinct material categories for a company
func (r *MaterialRepository) GetCategories(ctx context.Context, companyID uuid.UUID) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).
		Model(&domain.Material{}).
		Where("company_id = ? AND is_active = ?", companyID, true).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).Error
	return categories, err
}

// Update updates an existing material
func (r *MaterialRepository) Update(ctx context.Context, material *domain.Material) error {
	return r.db.WithContext(ctx).Save(material).Error
}

// Deactivate soft-deletes a material by clearing the active flag. Ledger and
// RFQ lines keep their references.
func (r *MaterialRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&domain.Material{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}

// CountByCompany returns the number of materials a company owns, active or not
func (r *MaterialRepository) CountByCompany(ctx context.Context, companyID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Material{}).
		Where("company_id = ?", companyID).
		Count(&count).Error
	return count, err
}

// CreateBatch inserts a set of materials in one transaction, used by the
// default pricebook seeding.
func (r *MaterialRepository) CreateBatch(ctx context.Context, materials []domain.Material) error {
	if len(materials) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&materials).Error
}

// UpdatePriceByPartNumber applies a new list price to one part number. Returns
// the number of rows touched so sync jobs can report unmatched parts.
func (r *MaterialRepository) UpdatePriceByPartNumber(ctx context.Context, companyID uuid.UUID, partNumber string, listPrice float64) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Material{}).
		Where("company_id = ? AND part_number = ?", companyID, partNumber).
		Update("list_price", listPrice)
	return result.RowsAffected, result.Error
}
