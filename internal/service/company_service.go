package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/blueline-estimating/takeoff-api/internal/domain"
	"github.com/blueline-estimating/takeoff-api/internal/mapper"
	"github.com/blueline-estimating/takeoff-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CompanyService handles business logic for companies
type CompanyService struct {
	companyRepo  *repository.CompanyRepository
	materialRepo *repository.MaterialRepository
	logger       *zap.Logger
}

// NewCompanyService creates a new CompanyService
func NewCompanyService(companyRepo *repository.CompanyRepository, materialRepo *repository.MaterialRepository, logger *zap.Logger) *CompanyService {
	return &CompanyService{
		companyRepo:  companyRepo,
		materialRepo: materialRepo,
		logger:       logger,
	}
}

// Create creates a new company and seeds its default material pricebook.
func (s *CompanyService) Create(ctx context.Context, name, address, phone string) (*domain.CompanyDTO, error) {
	company := &domain.Company{
		Name:     name,
		Address:  address,
		Phone:    phone,
		IsActive: true,
	}

	if err := s.companyRepo.Create(ctx, company); err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}

	// New companies start with the standard pricebook so estimators can
	// draw takeoff lines immediately.
	if err := s.seedMaterials(ctx, company.ID); err != nil {
		s.logger.Warn("failed to seed default materials for new company",
			zap.String("company_id", company.ID.String()),
			zap.Error(err))
	}

	s.logger.Info("company created",
		zap.String("company_id", company.ID.String()),
		zap.String("name", company.Name))

	return mapper.ToCompanyDTO(company), nil
}

// GetByID retrieves a company by ID
func (s *CompanyService) GetByID(ctx context.Context, id uuid.UUID) (*domain.CompanyDTO, error) {
	company, err := s.companyRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return mapper.ToCompanyDTO(company), nil
}

// GetAll retrieves all companies
func (s *CompanyService) GetAll(ctx context.Context) ([]domain.CompanyDTO, error) {
	companies, err := s.companyRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}

	dtos := make([]domain.CompanyDTO, 0, len(companies))
	for i := range companies {
		dtos = append(dtos, *mapper.ToCompanyDTO(&companies[i]))
	}
	return dtos, nil
}

func (s *CompanyService) seedMaterials(ctx context.Context, companyID uuid.UUID) error {
	count, err := s.materialRepo.CountByCompany(ctx, companyID)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	materials := domain.DefaultMaterials(companyID)
	return s.materialRepo.CreateBatch(ctx, materials)
}
