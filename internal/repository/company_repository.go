package repository

import (
	"context"

	"github.com/blueline-estimating/takeoff-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CompanyRepository handles database operations for companies
type CompanyRepository struct {
	db *gorm.DB
}

// NewCompanyRepository creates a new repository instance
func NewCompanyRepository(db *gorm.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

// Create creates a new company
func (r *CompanyRepository) Create(ctx context.Context, company *domain.Company) error {
	return r.db.WithContext(ctx).Create(company).Error
}

// GetByID retrieves a company by its ID
func (r *CompanyRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Company, error) {
	var company domain.Company
	err := r.db.WithContext(ctx).First(&company, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// GetAll retrieves every company ordered by name
func (r *CompanyRepository) GetAll(ctx context.Context) ([]domain.Company, error) {
	var companies []domain.Company
	err := r.db.WithContext(ctx).Order("name ASC").Find(&companies).Error
	return companies, err
}

// Update updates an existing company
func (r *CompanyRepository) Update(ctx context.Context, company *domain.Company) error {
	return r.db.WithContext(ctx).Save(company).Error
}
