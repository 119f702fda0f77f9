package repository

import (
	"context"

	"github.com/blueline-estimating/takeoff-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RfqRepository handles database operations for supplier quote requests
type RfqRepository struct {
	db *gorm.DB
}

// NewRfqRepository creates a new repository instance
func NewRfqRepository(db *gorm.DB) *RfqRepository {
	return &RfqRepository{db: db}
}

// Create creates an RFQ together with its initial lines in one transaction
func (r *RfqRepository) Create(ctx context.Context, rfq *domain.Rfq) error {
	return r.db.WithContext(ctx).Create(rfq).Error
}

// GetByID retrieves an RFQ without its lines
func (r *RfqRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Rfq, error) {
	var rfq domain.Rfq
	err := r.db.WithContext(ctx).First(&rfq, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &rfq, nil
}

// GetByIDWithItems retrieves an RFQ with its lines and their materials
func (r *RfqRepository) GetByIDWithItems(ctx context.Context, id uuid.UUID) (*domain.Rfq, error) {
	var rfq domain.Rfq
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("rfq_items.created_at ASC")
		}).
		Preload("Items.Material").
		First(&rfq, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &rfq, nil
}

// GetByProject retrieves all RFQs for a project, newest first
func (r *RfqRepository) GetByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Rfq, error) {
	var rfqs []domain.Rfq
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&rfqs).Error
	return rfqs, err
}

// ExistsByNumber reports whether a project already has an RFQ with a number
func (r *RfqRepository) ExistsByNumber(ctx context.Context, projectID uuid.UUID, rfqNumber string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Rfq{}).
		Where("project_id = ? AND rfq_number = ?", projectID, rfqNumber).
		Count(&count).Error
	return count > 0, err
}

// Update updates an existing RFQ
func (r *RfqRepository) Update(ctx context.Context, rfq *domain.Rfq) error {
	return r.db.WithContext(ctx).Save(rfq).Error
}

// Delete removes an RFQ and its lines
func (r *RfqRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("rfq_id = ?", id).Delete(&domain.RfqItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Rfq{}, "id = ?", id).Error
	})
}

// AddItem appends a snapshot line to an RFQ
func (r *RfqRepository) AddItem(ctx context.Context, item *domain.RfqItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}
