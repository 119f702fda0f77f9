package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/blueline-estimating/takeoff-api/internal/domain"
	"github.com/blueline-estimating/takeoff-api/internal/mapper"
	"github.com/blueline-estimating/takeoff-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service-level errors for the takeoff ledger
var (
	ErrTakeoffItemNotFound = errors.New("takeoff item not found")
	ErrInvalidQuantity     = errors.New("quantity must not be negative")
	ErrInvalidMaterial     = errors.New("material not found or inactive")
	ErrInvalidWbsCategory  = errors.New("wbs category not found in project")
)

// Rollup scopes
const (
	RollupScopeDrawing = "drawing"
	RollupScopeProject = "project"
)

// uncategorizedLabel names the sentinel rollup group for items without a
// category assignment. It always sorts last.
const uncategorizedLabel = "Uncategorized"

// TakeoffService handles the measurement ledger and its quantity rollups
type TakeoffService struct {
	takeoffRepo    *repository.TakeoffRepository
	materialRepo   *repository.MaterialRepository
	wbsRepo        *repository.WbsRepository
	drawingService *DrawingService
	logger         *zap.Logger
}

// NewTakeoffService creates a new TakeoffService instance
func NewTakeoffService(
	takeoffRepo *repository.TakeoffRepository,
	materialRepo *repository.MaterialRepository,
	wbsRepo *repository.WbsRepository,
	drawingService *DrawingService,
	logger *zap.Logger,
) *TakeoffService {
	return &TakeoffService{
		takeoffRepo:    takeoffRepo,
		materialRepo:   materialRepo,
		wbsRepo:        wbsRepo,
		drawingService: drawingService,
		logger:         logger,
	}
}

// Create records a measured or counted line on a drawing page
func (s *TakeoffService) Create(ctx context.Context, drawingID uuid.UUID, req *domain.CreateTakeoffItemRequest) (*domain.TakeoffItemDTO, error) {
	drawing, err := s.drawingService.GetOwned(ctx, drawingID)
	if err != nil {
		return nil, err
	}
	if err := s.drawingService.CheckPage(drawing, req.PageNumber); err != nil {
		return nil, err
	}
	if req.Quantity < 0 {
		return nil, ErrInvalidQuantity
	}

	if err := s.checkMaterial(ctx, drawing, req.MaterialID); err != nil {
		return nil, err
	}
	if req.WbsCategoryID != nil {
		if err := s.checkCategory(ctx, drawing.ProjectID, *req.WbsCategoryID); err != nil {
			return nil, err
		}
	}

	multiplier := 1.0
	if req.Multiplier != nil {
		multiplier = *req.Multiplier
	}
	measurementType := req.MeasurementType
	if measurementType == "" {
		measurementType = domain.MeasurementTypeMeasured
	}

	item := &domain.TakeoffItem{
		DrawingID:       drawingID,
		PageNumber:      req.PageNumber,
		MaterialID:      req.MaterialID,
		WbsCategoryID:   req.WbsCategoryID,
		Quantity:        req.Quantity,
		Multiplier:      multiplier,
		MeasurementType: measurementType,
		Notes:           req.Notes,
	}

	if err := s.takeoffRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create takeoff item: %w", err)
	}

	// Reload for preloaded material and category
	stored, err := s.takeoffRepo.GetByID(ctx, item.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload takeoff item: %w", err)
	}

	s.logger.Info("takeoff item created",
		zap.String("item_id", stored.ID.String()),
		zap.String("drawing_id", drawingID.String()),
		zap.Float64("quantity", stored.Quantity))

	return mapper.ToTakeoffItemDTO(stored), nil
}

// GetByID retrieves a ledger item by ID
func (s *TakeoffService) GetByID(ctx context.Context, id uuid.UUID) (*domain.TakeoffItemDTO, error) {
	item, _, err := s.getOwned(ctx, id)
	if err != nil {
		return nil, err
	}
	return mapper.ToTakeoffItemDTO(item), nil
}

// ListByDrawing retrieves ledger items on a drawing, optionally narrowed to
// one page or one category.
func (s *TakeoffService) ListByDrawing(ctx context.Context, drawingID uuid.UUID, filter repository.TakeoffItemFilter) ([]domain.TakeoffItemDTO, error) {
	if _, err := s.drawingService.GetOwned(ctx, drawingID); err != nil {
		return nil, err
	}

	items, err := s.takeoffRepo.GetByDrawing(ctx, drawingID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list takeoff items: %w", err)
	}

	dtos := make([]domain.TakeoffItemDTO, 0, len(items))
	for i := range items {
		dtos = append(dtos, *mapper.ToTakeoffItemDTO(&items[i]))
	}
	return dtos, nil
}

// Update applies a partial update. The resulting item is validated as a whole
// so a partial change can never produce an invalid row.
func (s *TakeoffService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateTakeoffItemRequest) (*domain.TakeoffItemDTO, error) {
	item, drawing, err := s.getOwned(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Quantity != nil {
		if *req.Quantity < 0 {
			return nil, ErrInvalidQuantity
		}
		item.Quantity = *req.Quantity
	}
	if req.Multiplier != nil {
		item.Multiplier = *req.Multiplier
	}
	if req.ClearWbsCategory {
		item.WbsCategoryID = nil
		item.WbsCategory = nil
	} else if req.WbsCategoryID != nil {
		if err := s.checkCategory(ctx, drawing.ProjectID, *req.WbsCategoryID); err != nil {
			return nil, err
		}
		item.WbsCategoryID = req.WbsCategoryID
	}
	if req.Notes != nil {
		item.Notes = *req.Notes
	}

	if err := s.takeoffRepo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update takeoff item: %w", err)
	}

	stored, err := s.takeoffRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload takeoff item: %w", err)
	}
	return mapper.ToTakeoffItemDTO(stored), nil
}

// Delete removes a ledger item
func (s *TakeoffService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, _, err := s.getOwned(ctx, id); err != nil {
		return err
	}

	if err := s.takeoffRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete takeoff item: %w", err)
	}

	s.logger.Info("takeoff item deleted", zap.String("item_id", id.String()))
	return nil
}

// BulkReassignWbs moves many items to one category (or clears the assignment)
// atomically. Any unknown item fails the whole batch.
func (s *TakeoffService) BulkReassignWbs(ctx context.Context, drawingID uuid.UUID, req *domain.BulkReassignWbsRequest) error {
	drawing, err := s.drawingService.GetOwned(ctx, drawingID)
	if err != nil {
		return err
	}

	if req.WbsCategoryID != nil {
		if err := s.checkCategory(ctx, drawing.ProjectID, *req.WbsCategoryID); err != nil {
			return err
		}
	}

	// Every item must live on this drawing before anything is written.
	for _, itemID := range req.ItemIDs {
		item, err := s.takeoffRepo.GetByID(ctx, itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTakeoffItemNotFound
			}
			return fmt.Errorf("failed to get takeoff item: %w", err)
		}
		if item.DrawingID != drawingID {
			return ErrTakeoffItemNotFound
		}
	}

	if err := s.takeoffRepo.BulkUpdateWbs(ctx, req.ItemIDs, req.WbsCategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTakeoffItemNotFound
		}
		return fmt.Errorf("failed to reassign takeoff items: %w", err)
	}

	s.logger.Info("takeoff items reassigned",
		zap.String("drawing_id", drawingID.String()),
		zap.Int("count", len(req.ItemIDs)))
	return nil
}

// RollupByDrawing aggregates one drawing's ledger by category and material
func (s *TakeoffService) RollupByDrawing(ctx context.Context, drawingID uuid.UUID) (*domain.RollupDTO, error) {
	drawing, err := s.drawingService.GetOwned(ctx, drawingID)
	if err != nil {
		return nil, err
	}

	items, err := s.takeoffRepo.GetByDrawing(ctx, drawingID, repository.TakeoffItemFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load takeoff items: %w", err)
	}

	return s.rollup(ctx, RollupScopeDrawing, drawingID, drawing.ProjectID, items)
}

// RollupByProject aggregates every drawing of a project into one rollup
func (s *TakeoffService) RollupByProject(ctx context.Context, projectID uuid.UUID) (*domain.RollupDTO, error) {
	if err := s.checkProject(ctx, projectID); err != nil {
		return nil, err
	}

	items, err := s.takeoffRepo.GetByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load takeoff items: %w", err)
	}

	return s.rollup(ctx, RollupScopeProject, projectID, projectID, items)
}

// rollup groups ledger items by (category, material) and totals quantities,
// extended prices and labor. Groups follow the WBS tree order with the
// uncategorized group last; within a category groups sort by material
// category then description.
func (s *TakeoffService) rollup(ctx context.Context, scope string, scopeID, projectID uuid.UUID, items []domain.TakeoffItem) (*domain.RollupDTO, error) {
	categories, err := s.wbsRepo.GetByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load wbs categories: %w", err)
	}

	byID := make(map[uuid.UUID]*domain.WbsCategory, len(categories))
	for i := range categories {
		byID[categories[i].ID] = &categories[i]
	}
	treeOrder := treePositions(categories)

	type groupKey struct {
		categoryID uuid.UUID // uuid.Nil for uncategorized
		materialID uuid.UUID
	}

	groups := make(map[groupKey]*domain.RollupGroupDTO)
	var order []groupKey

	for i := range items {
		item := &items[i]
		key := groupKey{materialID: item.MaterialID}
		if item.WbsCategoryID != nil {
			key.categoryID = *item.WbsCategoryID
		}

		group, ok := groups[key]
		if !ok {
			group = &domain.RollupGroupDTO{
				WbsCategoryID: item.WbsCategoryID,
				WbsPath:       uncategorizedLabel,
				MaterialID:    item.MaterialID,
			}
			if item.WbsCategoryID != nil {
				if path, err := buildPath(byID, *item.WbsCategoryID); err == nil {
					group.WbsPath = path
				}
			}
			if item.Material != nil {
				group.PartNumber = item.Material.PartNumber
				group.MaterialCategory = item.Material.Category
				group.MaterialDescription = item.Material.Description
				group.Size = item.Material.Size
				group.Unit = item.Material.Unit
			}
			groups[key] = group
			order = append(order, key)
		}

		group.TotalQuantity += item.Quantity * item.Multiplier
		group.TotalPrice += item.ExtendedPrice()
		group.TotalLabor += item.ExtendedLabor()
		group.ItemCount++
	}

	sort.SliceStable(order, func(i, j int) bool {
		gi, gj := groups[order[i]], groups[order[j]]
		pi, pj := rollupPosition(treeOrder, gi.WbsCategoryID), rollupPosition(treeOrder, gj.WbsCategoryID)
		if pi != pj {
			return pi < pj
		}
		if gi.MaterialCategory != gj.MaterialCategory {
			return gi.MaterialCategory < gj.MaterialCategory
		}
		return gi.MaterialDescription < gj.MaterialDescription
	})

	result := &domain.RollupDTO{
		Scope:   scope,
		ScopeID: scopeID,
		Groups:  make([]domain.RollupGroupDTO, 0, len(order)),
	}
	for _, key := range order {
		group := groups[key]
		result.Groups = append(result.Groups, *group)
		result.TotalQuantity += group.TotalQuantity
		result.TotalPrice += group.TotalPrice
		result.TotalLabor += group.TotalLabor
	}
	return result, nil
}

func (s *TakeoffService) checkProject(ctx context.Context, projectID uuid.UUID) error {
	return s.drawingService.CheckProjectAccess(ctx, projectID)
}

// checkMaterial verifies the material exists, is active and belongs to the
// same company as the drawing's project.
func (s *TakeoffService) checkMaterial(ctx context.Context, drawing *domain.Drawing, materialID uuid.UUID) error {
	material, err := s.materialRepo.GetByID(ctx, materialID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidMaterial
		}
		return fmt.Errorf("failed to get material: %w", err)
	}
	if !material.IsActive {
		return ErrInvalidMaterial
	}
	if drawing.Project != nil && material.CompanyID != drawing.Project.CompanyID {
		return ErrInvalidMaterial
	}
	return nil
}

func (s *TakeoffService) checkCategory(ctx context.Context, projectID, categoryID uuid.UUID) error {
	category, err := s.wbsRepo.GetByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidWbsCategory
		}
		return fmt.Errorf("failed to get wbs category: %w", err)
	}
	if category.ProjectID != projectID {
		return ErrInvalidWbsCategory
	}
	return nil
}

func (s *TakeoffService) getOwned(ctx context.Context, id uuid.UUID) (*domain.TakeoffItem, *domain.Drawing, error) {
	item, err := s.takeoffRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrTakeoffItemNotFound
		}
		return nil, nil, fmt.Errorf("failed to get takeoff item: %w", err)
	}

	drawing, err := s.drawingService.GetOwned(ctx, item.DrawingID)
	if err != nil {
		return nil, nil, ErrTakeoffItemNotFound
	}
	return item, drawing, nil
}

// treePositions assigns each category its position in a depth-first walk of
// the tree, siblings ordered by sort order then name.
func treePositions(categories []domain.WbsCategory) map[uuid.UUID]int {
	childLists := make(map[uuid.UUID][]*domain.WbsCategory)
	var roots []*domain.WbsCategory
	known := make(map[uuid.UUID]bool, len(categories))
	for i := range categories {
		known[categories[i].ID] = true
	}
	for i := range categories {
		c := &categories[i]
		if c.ParentID == nil || !known[*c.ParentID] {
			roots = append(roots, c)
			continue
		}
		childLists[*c.ParentID] = append(childLists[*c.ParentID], c)
	}

	sortCategories := func(list []*domain.WbsCategory) {
		sort.SliceStable(list, func(i, j int) bool {
			if list[i].SortOrder != list[j].SortOrder {
				return list[i].SortOrder < list[j].SortOrder
			}
			return list[i].Name < list[j].Name
		})
	}

	positions := make(map[uuid.UUID]int, len(categories))
	pos := 0
	var walk func(node *domain.WbsCategory)
	walk = func(node *domain.WbsCategory) {
		positions[node.ID] = pos
		pos++
		children := childLists[node.ID]
		sortCategories(children)
		for _, child := range children {
			walk(child)
		}
	}

	sortCategories(roots)
	for _, root := range roots {
		walk(root)
	}
	return positions
}

// rollupPosition orders a group by its category's tree position. Groups
// without a category sort after every real category.
func rollupPosition(positions map[uuid.UUID]int, categoryID *uuid.UUID) int {
	if categoryID == nil {
		return len(positions) + 1
	}
	if pos, ok := positions[*categoryID]; ok {
		return pos
	}
	return len(positions)
}
