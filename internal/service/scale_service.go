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

// Service-level errors for scale management
var (
	ErrCustomScaleNotFound = errors.New("custom scale not found")
	ErrScaleZoneNotFound   = errors.New("scale zone not found")
	ErrPageScaleNotFound   = errors.New("no scale set for page")
	ErrScaleUndefined      = errors.New("no scale defined at this location")
	ErrInvalidCalibration  = errors.New("calibration distances must be greater than zero")
)

// ScaleService handles drawing scale management: the standard scale catalog,
// project custom scales, per-page defaults, zone overrides, calibration and
// point resolution.
type ScaleService struct {
	customScaleRepo *repository.CustomScaleRepository
	pageScaleRepo   *repository.PageScaleRepository
	zoneRepo        *repository.ScaleZoneRepository
	drawingService  *DrawingService
	logger          *zap.Logger
}

// NewScaleService creates a new ScaleService instance
func NewScaleService(
	customScaleRepo *repository.CustomScaleRepository,
	pageScaleRepo *repository.PageScaleRepository,
	zoneRepo *repository.ScaleZoneRepository,
	drawingService *DrawingService,
	logger *zap.Logger,
) *ScaleService {
	return &ScaleService{
		customScaleRepo: customScaleRepo,
		pageScaleRepo:   pageScaleRepo,
		zoneRepo:        zoneRepo,
		drawingService:  drawingService,
		logger:          logger,
	}
}

// Catalog returns the standard scale catalog, optionally filtered by family.
func (s *ScaleService) Catalog(family string) []domain.StandardScale {
	if family == "" {
		return domain.StandardScales
	}

	filtered := make([]domain.StandardScale, 0, len(domain.StandardScales))
	for _, sc := range domain.StandardScales {
		if string(sc.Family) == family {
			filtered = append(filtered, sc)
		}
	}
	return filtered
}

// CreateCustomScale adds a named pixels-per-unit factor to a project
func (s *ScaleService) CreateCustomScale(ctx context.Context, projectID uuid.UUID, req *domain.CreateCustomScaleRequest) (*domain.CustomScaleDTO, error) {
	unit := req.Unit
	if unit == "" {
		unit = "feet"
	}

	scale := &domain.CustomScale{
		ProjectID:     projectID,
		Name:          req.Name,
		PixelsPerUnit: req.PixelsPerUnit,
		Unit:          unit,
	}

	if err := s.customScaleRepo.Create(ctx, scale); err != nil {
		return nil, fmt.Errorf("failed to create custom scale: %w", err)
	}

	s.logger.Info("custom scale created",
		zap.String("scale_id", scale.ID.String()),
		zap.String("project_id", projectID.String()),
		zap.Float64("pixels_per_unit", scale.PixelsPerUnit))

	return mapper.ToCustomScaleDTO(scale), nil
}

// ListCustomScales returns a project's custom scales in creation order
func (s *ScaleService) ListCustomScales(ctx context.Context, projectID uuid.UUID) ([]domain.CustomScaleDTO, error) {
	scales, err := s.customScaleRepo.GetByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list custom scales: %w", err)
	}

	dtos := make([]domain.CustomScaleDTO, 0, len(scales))
	for i := range scales {
		dtos = append(dtos, *mapper.ToCustomScaleDTO(&scales[i]))
	}
	return dtos, nil
}

// DeleteCustomScale removes a custom scale. Pages and zones that referenced
// it keep their resolved pixels-per-unit value.
func (s *ScaleService) DeleteCustomScale(ctx context.Context, id uuid.UUID) error {
	if _, err := s.customScaleRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCustomScaleNotFound
		}
		return fmt.Errorf("failed to get custom scale: %w", err)
	}

	if err := s.customScaleRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete custom scale: %w", err)
	}
	return nil
}

// SetPageScale sets or replaces the default scale for one page of a drawing
func (s *ScaleService) SetPageScale(ctx context.Context, drawingID uuid.UUID, pageNumber int, req *domain.SetPageScaleRequest) (*domain.PageScaleDTO, error) {
	drawing, err := s.drawingService.GetOwned(ctx, drawingID)
	if err != nil {
		return nil, err
	}
	if err := s.drawingService.CheckPage(drawing, pageNumber); err != nil {
		return nil, err
	}

	scale := &domain.PageScale{
		DrawingID:     drawingID,
		PageNumber:    pageNumber,
		ScaleRef:      req.ScaleRef,
		ScaleName:     s.resolveScaleName(req.ScaleRef, req.ScaleName),
		PixelsPerUnit: req.PixelsPerUnit,
	}

	if err := s.pageScaleRepo.Upsert(ctx, scale); err != nil {
		return nil, fmt.Errorf("failed to set page scale: %w", err)
	}

	// Upsert may have updated an existing row; reload for the stable ID.
	stored, err := s.pageScaleRepo.GetByPage(ctx, drawingID, pageNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to reload page scale: %w", err)
	}

	s.logger.Info("page scale set",
		zap.String("drawing_id", drawingID.String()),
		zap.Int("page_number", pageNumber),
		zap.Float64("pixels_per_unit", stored.PixelsPerUnit))

	return mapper.ToPageScaleDTO(stored), nil
}

// GetPageScale returns the default scale for one page
func (s *ScaleService) GetPageScale(ctx context.Context, drawingID uuid.UUID, pageNumber int) (*domain.PageScaleDTO, error) {
	if _, err := s.drawingService.GetOwned(ctx, drawingID); err != nil {
		return nil, err
	}

	scale, err := s.pageScaleRepo.GetByPage(ctx, drawingID, pageNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPageScaleNotFound
		}
		return nil, fmt.Errorf("failed to get page scale: %w", err)
	}
	return mapper.ToPageScaleDTO(scale), nil
}

// ListPageScales returns every page scale set on a drawing
func (s *ScaleService) ListPageScales(ctx context.Context, drawingID uuid.UUID) ([]domain.PageScaleDTO, error) {
	if _, err := s.drawingService.GetOwned(ctx, drawingID); err != nil {
		return nil, err
	}

	scales, err := s.pageScaleRepo.GetByDrawing(ctx, drawingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list page scales: %w", err)
	}

	dtos := make([]domain.PageScaleDTO, 0, len(scales))
	for i := range scales {
		dtos = append(dtos, *mapper.ToPageScaleDTO(&scales[i]))
	}
	return dtos, nil
}

// ClearPageScale removes the default scale from a page
func (s *ScaleService) ClearPageScale(ctx context.Context, drawingID uuid.UUID, pageNumber int) error {
	if _, err := s.drawingService.GetOwned(ctx, drawingID); err != nil {
		return err
	}
	if err := s.pageScaleRepo.DeleteByPage(ctx, drawingID, pageNumber); err != nil {
		return fmt.Errorf("failed to clear page scale: %w", err)
	}
	return nil
}

// CreateZone adds a scale override region to a page
func (s *ScaleService) CreateZone(ctx context.Context, drawingID uuid.UUID, pageNumber int, req *domain.CreateScaleZoneRequest) (*domain.ScaleZoneDTO, error) {
	drawing, err := s.drawingService.GetOwned(ctx, drawingID)
	if err != nil {
		return nil, err
	}
	if err := s.drawingService.CheckPage(drawing, pageNumber); err != nil {
		return nil, err
	}

	zone := &domain.ScaleZone{
		DrawingID:     drawingID,
		PageNumber:    pageNumber,
		Name:          req.Name,
		X:             req.X,
		Y:             req.Y,
		Width:         req.Width,
		Height:        req.Height,
		ScaleRef:      req.ScaleRef,
		ScaleName:     s.resolveScaleName(req.ScaleRef, req.ScaleName),
		PixelsPerUnit: req.PixelsPerUnit,
	}

	if err := s.zoneRepo.Create(ctx, zone); err != nil {
		return nil, fmt.Errorf("failed to create scale zone: %w", err)
	}

	s.logger.Info("scale zone created",
		zap.String("zone_id", zone.ID.String()),
		zap.String("drawing_id", drawingID.String()),
		zap.Int("page_number", pageNumber))

	return mapper.ToScaleZoneDTO(zone), nil
}

// ListZones returns the zones of one page in creation order
func (s *ScaleService) ListZones(ctx context.Context, drawingID uuid.UUID, pageNumber int) ([]domain.ScaleZoneDTO, error) {
	if _, err := s.drawingService.GetOwned(ctx, drawingID); err != nil {
		return nil, err
	}

	zones, err := s.zoneRepo.GetByPage(ctx, drawingID, pageNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to list scale zones: %w", err)
	}

	dtos := make([]domain.ScaleZoneDTO, 0, len(zones))
	for i := range zones {
		dtos = append(dtos, *mapper.ToScaleZoneDTO(&zones[i]))
	}
	return dtos, nil
}

// UpdateZone applies a partial update to a zone
func (s *ScaleService) UpdateZone(ctx context.Context, id uuid.UUID, req *domain.UpdateScaleZoneRequest) (*domain.ScaleZoneDTO, error) {
	zone, err := s.zoneRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScaleZoneNotFound
		}
		return nil, fmt.Errorf("failed to get scale zone: %w", err)
	}
	if _, err := s.drawingService.GetOwned(ctx, zone.DrawingID); err != nil {
		return nil, err
	}

	if req.Name != nil {
		zone.Name = *req.Name
	}
	if req.X != nil {
		zone.X = *req.X
	}
	if req.Y != nil {
		zone.Y = *req.Y
	}
	if req.Width != nil {
		zone.Width = *req.Width
	}
	if req.Height != nil {
		zone.Height = *req.Height
	}
	if req.ScaleRef != nil {
		zone.ScaleRef = *req.ScaleRef
		zone.ScaleName = s.resolveScaleName(*req.ScaleRef, zone.ScaleName)
	}
	if req.ScaleName != nil {
		zone.ScaleName = *req.ScaleName
	}
	if req.PixelsPerUnit != nil {
		zone.PixelsPerUnit = *req.PixelsPerUnit
	}

	if err := s.zoneRepo.Update(ctx, zone); err != nil {
		return nil, fmt.Errorf("failed to update scale zone: %w", err)
	}
	return mapper.ToScaleZoneDTO(zone), nil
}

// DeleteZone removes a zone
func (s *ScaleService) DeleteZone(ctx context.Context, id uuid.UUID) error {
	zone, err := s.zoneRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrScaleZoneNotFound
		}
		return fmt.Errorf("failed to get scale zone: %w", err)
	}
	if _, err := s.drawingService.GetOwned(ctx, zone.DrawingID); err != nil {
		return err
	}

	if err := s.zoneRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete scale zone: %w", err)
	}
	return nil
}

// Calibrate derives a pixels-per-unit factor from a measured pixel span and
// its known real-world length. When req.Name is set the result is saved as a
// custom scale on the drawing's project.
func (s *ScaleService) Calibrate(ctx context.Context, drawingID uuid.UUID, req *domain.CalibrateRequest) (*domain.CalibrationResultDTO, error) {
	drawing, err := s.drawingService.GetOwned(ctx, drawingID)
	if err != nil {
		return nil, err
	}
	if err := s.drawingService.CheckPage(drawing, req.PageNumber); err != nil {
		return nil, err
	}

	if req.PixelDistance <= 0 || req.RealDistance <= 0 {
		return nil, ErrInvalidCalibration
	}

	unit := req.Unit
	if unit == "" {
		unit = "feet"
	}

	result := &domain.CalibrationResultDTO{
		PixelsPerUnit: req.PixelDistance / req.RealDistance,
		ScaleRatio:    req.RealDistance / req.PixelDistance,
		Unit:          unit,
	}

	if req.Name != "" {
		scale := &domain.CustomScale{
			ProjectID:     drawing.ProjectID,
			Name:          req.Name,
			PixelsPerUnit: result.PixelsPerUnit,
			Unit:          unit,
		}
		if err := s.customScaleRepo.Create(ctx, scale); err != nil {
			return nil, fmt.Errorf("failed to save calibrated scale: %w", err)
		}
		result.ScaleID = &scale.ID
	}

	s.logger.Info("drawing calibrated",
		zap.String("drawing_id", drawingID.String()),
		zap.Int("page_number", req.PageNumber),
		zap.Float64("pixels_per_unit", result.PixelsPerUnit))

	return result, nil
}

// Resolve determines the effective scale at a point on a page. Zone overrides
// win over the page default; among overlapping zones the smallest area wins,
// and equal areas fall to the most recently created zone.
func (s *ScaleService) Resolve(ctx context.Context, drawingID uuid.UUID, pageNumber int, x, y float64) (*domain.ResolvedScaleDTO, error) {
	if _, err := s.drawingService.GetOwned(ctx, drawingID); err != nil {
		return nil, err
	}

	zones, err := s.zoneRepo.GetByPage(ctx, drawingID, pageNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to load scale zones: %w", err)
	}

	var best *domain.ScaleZone
	for i := range zones {
		z := &zones[i]
		if !z.Contains(x, y) {
			continue
		}
		if best == nil || z.Area() < best.Area() ||
			(z.Area() == best.Area() && z.CreatedAt.After(best.CreatedAt)) {
			best = z
		}
	}

	if best != nil {
		return &domain.ResolvedScaleDTO{
			PixelsPerUnit: best.PixelsPerUnit,
			ScaleName:     best.ScaleName,
			Source:        "zone",
			ZoneID:        &best.ID,
		}, nil
	}

	pageScale, err := s.pageScaleRepo.GetByPage(ctx, drawingID, pageNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScaleUndefined
		}
		return nil, fmt.Errorf("failed to load page scale: %w", err)
	}

	return &domain.ResolvedScaleDTO{
		PixelsPerUnit: pageScale.PixelsPerUnit,
		ScaleName:     pageScale.ScaleName,
		Source:        "page",
	}, nil
}

// ConvertLength converts a pixel length to real-world units using a
// pixels-per-unit factor.
func (s *ScaleService) ConvertLength(pixelLength, pixelsPerUnit float64) (float64, error) {
	if pixelsPerUnit <= 0 {
		return 0, ErrInvalidCalibration
	}
	return pixelLength / pixelsPerUnit, nil
}

// resolveScaleName fills in the display name from the standard catalog when
// the client referenced a catalog entry without naming it.
func (s *ScaleService) resolveScaleName(scaleRef, scaleName string) string {
	if scaleName != "" {
		return scaleName
	}
	if sc, ok := domain.StandardScaleByID(scaleRef); ok {
		return sc.Name
	}
	return scaleName
}
