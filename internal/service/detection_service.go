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

// Service-level errors for detections
var (
	ErrDetectedItemNotFound = errors.New("detected item not found")
)

// DetectionService handles symbol detections recorded against drawing pages.
// Detections arrive from an external recognition pipeline and are verified by
// estimators before they feed rollups.
type DetectionService struct {
	detectionRepo  *repository.DetectionRepository
	wbsRepo        *repository.WbsRepository
	drawingService *DrawingService
	logger         *zap.Logger
}

// NewDetectionService creates a new DetectionService instance
func NewDetectionService(
	detectionRepo *repository.DetectionRepository,
	wbsRepo *repository.WbsRepository,
	drawingService *DrawingService,
	logger *zap.Logger,
) *DetectionService {
	return &DetectionService{
		detectionRepo:  detectionRepo,
		wbsRepo:        wbsRepo,
		drawingService: drawingService,
		logger:         logger,
	}
}

// Create records a detected symbol on a drawing page
func (s *DetectionService) Create(ctx context.Context, drawingID uuid.UUID, req *domain.CreateDetectedItemRequest) (*domain.DetectedItemDTO, error) {
	drawing, err := s.drawingService.GetOwned(ctx, drawingID)
	if err != nil {
		return nil, err
	}
	if err := s.drawingService.CheckPage(drawing, req.PageNumber); err != nil {
		return nil, err
	}

	item := &domain.DetectedItem{
		DrawingID:  drawingID,
		PageNumber: req.PageNumber,
		ItemType:   req.ItemType,
		X:          req.X,
		Y:          req.Y,
		Width:      req.Width,
		Height:     req.Height,
		Confidence: req.Confidence,
	}

	if err := s.detectionRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create detected item: %w", err)
	}

	return mapper.ToDetectedItemDTO(item), nil
}

// ListByDrawing retrieves detections on a drawing, optionally for one page
func (s *DetectionService) ListByDrawing(ctx context.Context, drawingID uuid.UUID, pageNumber *int) ([]domain.DetectedItemDTO, error) {
	if _, err := s.drawingService.GetOwned(ctx, drawingID); err != nil {
		return nil, err
	}

	items, err := s.detectionRepo.GetByDrawing(ctx, drawingID, pageNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to list detected items: %w", err)
	}

	dtos := make([]domain.DetectedItemDTO, 0, len(items))
	for i := range items {
		dtos = append(dtos, *mapper.ToDetectedItemDTO(&items[i]))
	}
	return dtos, nil
}

// CountsByType returns detection counts per symbol type on a drawing
func (s *DetectionService) CountsByType(ctx context.Context, drawingID uuid.UUID) (map[string]int64, error) {
	if _, err := s.drawingService.GetOwned(ctx, drawingID); err != nil {
		return nil, err
	}
	return s.detectionRepo.CountsByType(ctx, drawingID)
}

// Update applies a partial update, typically to verify a detection or assign
// it a category.
func (s *DetectionService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateDetectedItemRequest) (*domain.DetectedItemDTO, error) {
	item, drawing, err := s.getOwned(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ItemType != nil {
		item.ItemType = *req.ItemType
	}
	if req.Verified != nil {
		item.Verified = *req.Verified
	}
	if req.Notes != nil {
		item.Notes = *req.Notes
	}
	if req.WbsCategoryID != nil {
		category, err := s.wbsRepo.GetByID(ctx, *req.WbsCategoryID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInvalidWbsCategory
			}
			return nil, fmt.Errorf("failed to get wbs category: %w", err)
		}
		if category.ProjectID != drawing.ProjectID {
			return nil, ErrInvalidWbsCategory
		}
		item.WbsCategoryID = req.WbsCategoryID
	}

	if err := s.detectionRepo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update detected item: %w", err)
	}
	return mapper.ToDetectedItemDTO(item), nil
}

// Delete removes a detection
func (s *DetectionService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, _, err := s.getOwned(ctx, id); err != nil {
		return err
	}
	if err := s.detectionRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete detected item: %w", err)
	}
	return nil
}

func (s *DetectionService) getOwned(ctx context.Context, id uuid.UUID) (*domain.DetectedItem, *domain.Drawing, error) {
	item, err := s.detectionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrDetectedItemNotFound
		}
		return nil, nil, fmt.Errorf("failed to get detected item: %w", err)
	}

	drawing, err := s.drawingService.GetOwned(ctx, item.DrawingID)
	if err != nil {
		return nil, nil, ErrDetectedItemNotFound
	}
	return item, drawing, nil
}
