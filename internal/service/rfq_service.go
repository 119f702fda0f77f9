package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blueline-estimating/takeoff-api/internal/domain"
	"github.com/blueline-estimating/takeoff-api/internal/mapper"
	"github.com/blueline-estimating/takeoff-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service-level errors for quote requests
var (
	ErrRfqNotFound             = errors.New("rfq not found")
	ErrDuplicateRfqNumber      = errors.New("rfq number already exists for project")
	ErrInvalidStatusTransition = errors.New("invalid rfq status transition")
	ErrEmptyRollup             = errors.New("no takeoff quantities to assemble")
)

// RfqService handles supplier quote requests assembled from the takeoff ledger
type RfqService struct {
	rfqRepo        *repository.RfqRepository
	materialRepo   *repository.MaterialRepository
	wbsRepo        *repository.WbsRepository
	takeoffService *TakeoffService
	drawingService *DrawingService
	logger         *zap.Logger
}

// NewRfqService creates a new RfqService instance
func NewRfqService(
	rfqRepo *repository.RfqRepository,
	materialRepo *repository.MaterialRepository,
	wbsRepo *repository.WbsRepository,
	takeoffService *TakeoffService,
	drawingService *DrawingService,
	logger *zap.Logger,
) *RfqService {
	return &RfqService{
		rfqRepo:        rfqRepo,
		materialRepo:   materialRepo,
		wbsRepo:        wbsRepo,
		takeoffService: takeoffService,
		drawingService: drawingService,
		logger:         logger,
	}
}

// Create creates a quote request with manually supplied lines
func (s *RfqService) Create(ctx context.Context, projectID uuid.UUID, req *domain.CreateRfqRequest) (*domain.RfqDTO, error) {
	if err := s.drawingService.CheckProjectAccess(ctx, projectID); err != nil {
		return nil, err
	}

	exists, err := s.rfqRepo.ExistsByNumber(ctx, projectID, req.RfqNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to check rfq number: %w", err)
	}
	if exists {
		return nil, ErrDuplicateRfqNumber
	}

	items := make([]domain.RfqItem, 0, len(req.Items))
	for _, line := range req.Items {
		material, err := s.materialRepo.GetByID(ctx, line.MaterialID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInvalidMaterial
			}
			return nil, fmt.Errorf("failed to get material: %w", err)
		}
		if !repository.MustHaveCompanyAccess(ctx, material.CompanyID) {
			return nil, ErrInvalidMaterial
		}

		unit := line.Unit
		if unit == "" {
			unit = material.Unit
		}
		items = append(items, domain.RfqItem{
			MaterialID: line.MaterialID,
			Quantity:   line.Quantity,
			Unit:       unit,
			Notes:      line.Notes,
		})
	}

	rfq := &domain.Rfq{
		ProjectID:     projectID,
		RfqNumber:     req.RfqNumber,
		SupplierName:  req.SupplierName,
		SupplierEmail: req.SupplierEmail,
		SupplierPhone: req.SupplierPhone,
		Status:        domain.RfqStatusDraft,
		Notes:         req.Notes,
		Items:         items,
	}

	if err := s.rfqRepo.Create(ctx, rfq); err != nil {
		return nil, fmt.Errorf("failed to create rfq: %w", err)
	}

	s.logger.Info("rfq created",
		zap.String("rfq_id", rfq.ID.String()),
		zap.String("rfq_number", rfq.RfqNumber),
		zap.Int("line_count", len(items)))

	return s.reload(ctx, rfq.ID)
}

// AssembleFromRollup builds a draft quote request from the project's current
// quantity rollup. Quantities are snapshotted; later ledger edits do not
// change the RFQ. When WbsCategoryIDs is set only quantities under those
// categories (including descendants) are included.
func (s *RfqService) AssembleFromRollup(ctx context.Context, projectID uuid.UUID, req *domain.AssembleRfqRequest) (*domain.RfqDTO, error) {
	if err := s.drawingService.CheckProjectAccess(ctx, projectID); err != nil {
		return nil, err
	}

	exists, err := s.rfqRepo.ExistsByNumber(ctx, projectID, req.RfqNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to check rfq number: %w", err)
	}
	if exists {
		return nil, ErrDuplicateRfqNumber
	}

	rollup, err := s.takeoffService.RollupByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	included := func(categoryID *uuid.UUID) bool { return true }
	if len(req.WbsCategoryIDs) > 0 {
		selected, err := s.expandCategories(ctx, projectID, req.WbsCategoryIDs)
		if err != nil {
			return nil, err
		}
		included = func(categoryID *uuid.UUID) bool {
			return categoryID != nil && selected[*categoryID]
		}
	}

	// Merge groups by material: the same part may appear under several
	// categories but a supplier quotes it once.
	type line struct {
		quantity float64
		unit     string
	}
	lines := make(map[uuid.UUID]*line)
	var materialOrder []uuid.UUID

	for _, group := range rollup.Groups {
		if !included(group.WbsCategoryID) {
			continue
		}
		l, ok := lines[group.MaterialID]
		if !ok {
			l = &line{unit: group.Unit}
			lines[group.MaterialID] = l
			materialOrder = append(materialOrder, group.MaterialID)
		}
		l.quantity += group.TotalQuantity
	}

	if len(materialOrder) == 0 {
		return nil, ErrEmptyRollup
	}

	items := make([]domain.RfqItem, 0, len(materialOrder))
	for _, materialID := range materialOrder {
		l := lines[materialID]
		items = append(items, domain.RfqItem{
			MaterialID: materialID,
			Quantity:   l.quantity,
			Unit:       l.unit,
		})
	}

	rfq := &domain.Rfq{
		ProjectID:     projectID,
		RfqNumber:     req.RfqNumber,
		SupplierName:  req.SupplierName,
		SupplierEmail: req.SupplierEmail,
		SupplierPhone: req.SupplierPhone,
		Status:        domain.RfqStatusDraft,
		Notes:         req.Notes,
		Items:         items,
	}

	if err := s.rfqRepo.Create(ctx, rfq); err != nil {
		return nil, fmt.Errorf("failed to create rfq: %w", err)
	}

	s.logger.Info("rfq assembled from rollup",
		zap.String("rfq_id", rfq.ID.String()),
		zap.String("rfq_number", rfq.RfqNumber),
		zap.Int("line_count", len(items)))

	return s.reload(ctx, rfq.ID)
}

// GetByID retrieves a quote request with its lines
func (s *RfqService) GetByID(ctx context.Context, id uuid.UUID) (*domain.RfqDTO, error) {
	if _, err := s.getOwned(ctx, id); err != nil {
		return nil, err
	}
	return s.reload(ctx, id)
}

// ListByProject retrieves a project's quote requests, newest first
func (s *RfqService) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.RfqDTO, error) {
	if err := s.drawingService.CheckProjectAccess(ctx, projectID); err != nil {
		return nil, err
	}

	rfqs, err := s.rfqRepo.GetByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rfqs: %w", err)
	}

	dtos := make([]domain.RfqDTO, 0, len(rfqs))
	for i := range rfqs {
		dtos = append(dtos, *mapper.ToRfqDTO(&rfqs[i], false))
	}
	return dtos, nil
}

// AddItem appends a line to a quote request
func (s *RfqService) AddItem(ctx context.Context, rfqID uuid.UUID, req *domain.CreateRfqItemRequest) (*domain.RfqDTO, error) {
	if _, err := s.getOwned(ctx, rfqID); err != nil {
		return nil, err
	}

	material, err := s.materialRepo.GetByID(ctx, req.MaterialID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidMaterial
		}
		return nil, fmt.Errorf("failed to get material: %w", err)
	}
	if !repository.MustHaveCompanyAccess(ctx, material.CompanyID) {
		return nil, ErrInvalidMaterial
	}

	unit := req.Unit
	if unit == "" {
		unit = material.Unit
	}

	item := &domain.RfqItem{
		RfqID:      rfqID,
		MaterialID: req.MaterialID,
		Quantity:   req.Quantity,
		Unit:       unit,
		Notes:      req.Notes,
	}
	if err := s.rfqRepo.AddItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to add rfq item: %w", err)
	}

	return s.reload(ctx, rfqID)
}

// SetStatus moves a quote request through its lifecycle. Draft RFQs can be
// sent, sent RFQs can be closed, and sent or closed RFQs can be reopened to
// draft. SentAt is stamped on the first send and kept thereafter. Setting the
// current status again is a no-op.
func (s *RfqService) SetStatus(ctx context.Context, id uuid.UUID, status domain.RfqStatus) (*domain.RfqDTO, error) {
	rfq, err := s.getOwned(ctx, id)
	if err != nil {
		return nil, err
	}

	if rfq.Status != status {
		if !validTransition(rfq.Status, status) {
			return nil, ErrInvalidStatusTransition
		}
		rfq.Status = status
		if status == domain.RfqStatusSent && rfq.SentAt == nil {
			now := time.Now().UTC()
			rfq.SentAt = &now
		}
		if err := s.rfqRepo.Update(ctx, rfq); err != nil {
			return nil, fmt.Errorf("failed to update rfq status: %w", err)
		}

		s.logger.Info("rfq status changed",
			zap.String("rfq_id", id.String()),
			zap.String("status", string(status)))
	}

	return s.reload(ctx, id)
}

// Delete removes a quote request and its lines
func (s *RfqService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.getOwned(ctx, id); err != nil {
		return err
	}

	if err := s.rfqRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete rfq: %w", err)
	}

	s.logger.Info("rfq deleted", zap.String("rfq_id", id.String()))
	return nil
}

func validTransition(from, to domain.RfqStatus) bool {
	switch from {
	case domain.RfqStatusDraft:
		return to == domain.RfqStatusSent
	case domain.RfqStatusSent:
		return to == domain.RfqStatusClosed || to == domain.RfqStatusDraft
	case domain.RfqStatusClosed:
		return to == domain.RfqStatusDraft
	}
	return false
}

// expandCategories resolves selected category IDs plus all their descendants
// within the project.
func (s *RfqService) expandCategories(ctx context.Context, projectID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	categories, err := s.wbsRepo.GetByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load wbs categories: %w", err)
	}

	children := make(map[uuid.UUID][]uuid.UUID)
	known := make(map[uuid.UUID]bool, len(categories))
	for i := range categories {
		known[categories[i].ID] = true
	}
	for i := range categories {
		c := &categories[i]
		if c.ParentID != nil {
			children[*c.ParentID] = append(children[*c.ParentID], c.ID)
		}
	}

	selected := make(map[uuid.UUID]bool)
	var walk func(id uuid.UUID)
	walk = func(id uuid.UUID) {
		if selected[id] {
			return
		}
		selected[id] = true
		for _, child := range children[id] {
			walk(child)
		}
	}
	for _, id := range ids {
		if !known[id] {
			return nil, ErrInvalidWbsCategory
		}
		walk(id)
	}
	return selected, nil
}

func (s *RfqService) getOwned(ctx context.Context, id uuid.UUID) (*domain.Rfq, error) {
	rfq, err := s.rfqRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRfqNotFound
		}
		return nil, fmt.Errorf("failed to get rfq: %w", err)
	}
	if err := s.drawingService.CheckProjectAccess(ctx, rfq.ProjectID); err != nil {
		return nil, ErrRfqNotFound
	}
	return rfq, nil
}

func (s *RfqService) reload(ctx context.Context, id uuid.UUID) (*domain.RfqDTO, error) {
	rfq, err := s.rfqRepo.GetByIDWithItems(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload rfq: %w", err)
	}
	return mapper.ToRfqDTO(rfq, true), nil
}
