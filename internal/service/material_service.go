package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/blueline-estimating/takeoff-api/internal/auth"
	"github.com/blueline-estimating/takeoff-api/internal/domain"
	"github.com/blueline-estimating/takeoff-api/internal/mapper"
	"github.com/blueline-estimating/takeoff-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service-level errors for the material catalog
var (
	ErrMaterialNotFound    = errors.New("material not found")
	ErrDuplicatePartNumber = errors.New("part number already exists for company")
)

// MaterialService handles the per-company material catalog and pricebook
type MaterialService struct {
	materialRepo *repository.MaterialRepository
	logger       *zap.Logger
}

// NewMaterialService creates a new MaterialService instance
func NewMaterialService(materialRepo *repository.MaterialRepository, logger *zap.Logger) *MaterialService {
	return &MaterialService{
		materialRepo: materialRepo,
		logger:       logger,
	}
}

// Create adds a material to the caller's company catalog
func (s *MaterialService) Create(ctx context.Context, req *domain.CreateMaterialRequest) (*domain.MaterialDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	if existing, err := s.materialRepo.GetByPartNumber(ctx, userCtx.CompanyID, req.PartNumber); err == nil && existing != nil {
		return nil, ErrDuplicatePartNumber
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check part number: %w", err)
	}

	material := &domain.Material{
		CompanyID:   userCtx.CompanyID,
		PartNumber:  req.PartNumber,
		Category:    req.Category,
		Description: req.Description,
		Size:        req.Size,
		Unit:        req.Unit,
		ListPrice:   req.ListPrice,
		LaborUnits:  req.LaborUnits,
		IsActive:    true,
	}

	if err := s.materialRepo.Create(ctx, material); err != nil {
		return nil, fmt.Errorf("failed to create material: %w", err)
	}

	s.logger.Info("material created",
		zap.String("material_id", material.ID.String()),
		zap.String("part_number", material.PartNumber))

	return mapper.ToMaterialDTO(material), nil
}

// GetByID retrieves a material by ID
func (s *MaterialService) GetByID(ctx context.Context, id uuid.UUID) (*domain.MaterialDTO, error) {
	material, err := s.getOwned(ctx, id)
	if err != nil {
		return nil, err
	}
	return mapper.ToMaterialDTO(material), nil
}

// List retrieves the caller's catalog, optionally filtered by category.
// Inactive materials are excluded unless includeInactive is set.
func (s *MaterialService) List(ctx context.Context, category string, includeInactive bool) ([]domain.MaterialDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	materials, err := s.materialRepo.GetByCompany(ctx, userCtx.CompanyID, repository.MaterialFilter{
		Category:   category,
		ActiveOnly: !includeInactive,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list materials: %w", err)
	}

	dtos := make([]domain.MaterialDTO, 0, len(materials))
	for i := range materials {
		dtos = append(dtos, *mapper.ToMaterialDTO(&materials[i]))
	}
	return dtos, nil
}

// Categories returns the distinct category names in the caller's catalog
func (s *MaterialService) Categories(ctx context.Context) ([]string, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	categories, err := s.materialRepo.GetCategories(ctx, userCtx.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// Update applies a partial update to a material. The part number is immutable
// because RFQ lines and ledger rollups key on it.
func (s *MaterialService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateMaterialRequest) (*domain.MaterialDTO, error) {
	material, err := s.getOwned(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Category != nil {
		material.Category = *req.Category
	}
	if req.Description != nil {
		material.Description = *req.Description
	}
	if req.Size != nil {
		material.Size = *req.Size
	}
	if req.Unit != nil {
		material.Unit = *req.Unit
	}
	if req.ListPrice != nil {
		material.ListPrice = *req.ListPrice
	}
	if req.LaborUnits != nil {
		material.LaborUnits = *req.LaborUnits
	}
	if req.IsActive != nil {
		material.IsActive = *req.IsActive
	}

	if err := s.materialRepo.Update(ctx, material); err != nil {
		return nil, fmt.Errorf("failed to update material: %w", err)
	}
	return mapper.ToMaterialDTO(material), nil
}

// Deactivate retires a material from the catalog. Existing takeoff items keep
// referencing it; new items are rejected.
func (s *MaterialService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.getOwned(ctx, id); err != nil {
		return err
	}

	if err := s.materialRepo.Deactivate(ctx, id); err != nil {
		return fmt.Errorf("failed to deactivate material: %w", err)
	}

	s.logger.Info("material deactivated", zap.String("material_id", id.String()))
	return nil
}

// SeedDefaults loads the standard pricebook into the caller's company if the
// catalog is empty. Returns the number of materials loaded.
func (s *MaterialService) SeedDefaults(ctx context.Context) (int, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return 0, ErrUnauthorized
	}

	count, err := s.materialRepo.CountByCompany(ctx, userCtx.CompanyID)
	if err != nil {
		return 0, fmt.Errorf("failed to count materials: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	materials := domain.DefaultMaterials(userCtx.CompanyID)
	if err := s.materialRepo.CreateBatch(ctx, materials); err != nil {
		return 0, fmt.Errorf("failed to seed materials: %w", err)
	}

	s.logger.Info("default pricebook seeded",
		zap.String("company_id", userCtx.CompanyID.String()),
		zap.Int("count", len(materials)))

	return len(materials), nil
}

// ApplyPrices updates list prices by part number. Unknown part numbers are
// skipped. Returns the number of materials updated. Used by the ERP price
// feed sync.
func (s *MaterialService) ApplyPrices(ctx context.Context, companyID uuid.UUID, prices map[string]float64) (int, error) {
	updated := 0
	for partNumber, price := range prices {
		if price < 0 {
			s.logger.Warn("skipping negative price from feed",
				zap.String("part_number", partNumber),
				zap.Float64("price", price))
			continue
		}
		rows, err := s.materialRepo.UpdatePriceByPartNumber(ctx, companyID, partNumber, price)
		if err != nil {
			return updated, fmt.Errorf("failed to update price for %s: %w", partNumber, err)
		}
		updated += int(rows)
	}

	if updated > 0 {
		s.logger.Info("material prices applied",
			zap.String("company_id", companyID.String()),
			zap.Int("updated", updated))
	}
	return updated, nil
}

func (s *MaterialService) getOwned(ctx context.Context, id uuid.UUID) (*domain.Material, error) {
	material, err := s.materialRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMaterialNotFound
		}
		return nil, fmt.Errorf("failed to get material: %w", err)
	}
	if !repository.MustHaveCompanyAccess(ctx, material.CompanyID) {
		return nil, ErrMaterialNotFound
	}
	return material, nil
}
