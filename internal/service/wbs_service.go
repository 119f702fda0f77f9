package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/blueline-estimating/takeoff-api/internal/domain"
	"github.com/blueline-estimating/takeoff-api/internal/mapper"
	"github.com/blueline-estimating/takeoff-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service-level errors for WBS categories
var (
	ErrWbsCategoryNotFound = errors.New("wbs category not found")
	ErrInvalidParent       = errors.New("parent category not found in project")
	ErrCategoryInUse       = errors.New("category is referenced by takeoff items")
	ErrCategoryHasChildren = errors.New("category has child categories")
	ErrCategoryCycle       = errors.New("category hierarchy contains a cycle")
)

// WbsService handles the work breakdown structure tree of a project
type WbsService struct {
	wbsRepo     *repository.WbsRepository
	projectRepo *repository.ProjectRepository
	logger      *zap.Logger
}

// NewWbsService creates a new WbsService instance
func NewWbsService(wbsRepo *repository.WbsRepository, projectRepo *repository.ProjectRepository, logger *zap.Logger) *WbsService {
	return &WbsService{
		wbsRepo:     wbsRepo,
		projectRepo: projectRepo,
		logger:      logger,
	}
}

// Create adds a category to the project tree. When SortOrder is omitted the
// category is placed after its siblings.
func (s *WbsService) Create(ctx context.Context, projectID uuid.UUID, req *domain.CreateWbsCategoryRequest) (*domain.WbsCategoryDTO, error) {
	if err := s.checkProject(ctx, projectID); err != nil {
		return nil, err
	}

	if req.ParentID != nil {
		parent, err := s.wbsRepo.GetByID(ctx, *req.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInvalidParent
			}
			return nil, fmt.Errorf("failed to get parent category: %w", err)
		}
		if parent.ProjectID != projectID {
			return nil, ErrInvalidParent
		}
	}

	sortOrder := 0
	if req.SortOrder != nil {
		sortOrder = *req.SortOrder
	} else {
		max, err := s.wbsRepo.MaxSortOrder(ctx, projectID, req.ParentID)
		if err != nil {
			return nil, fmt.Errorf("failed to get max sort order: %w", err)
		}
		sortOrder = max + 1
	}

	category := &domain.WbsCategory{
		ProjectID: projectID,
		ParentID:  req.ParentID,
		Name:      req.Name,
		SortOrder: sortOrder,
	}

	if err := s.wbsRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create wbs category: %w", err)
	}

	s.logger.Info("wbs category created",
		zap.String("category_id", category.ID.String()),
		zap.String("project_id", projectID.String()),
		zap.String("name", category.Name))

	return mapper.ToWbsCategoryDTO(category), nil
}

// GetByID retrieves a single category
func (s *WbsService) GetByID(ctx context.Context, id uuid.UUID) (*domain.WbsCategoryDTO, error) {
	category, err := s.getOwned(ctx, id)
	if err != nil {
		return nil, err
	}
	return mapper.ToWbsCategoryDTO(category), nil
}

// GetPath returns the breadcrumb path of a category from the root, joined
// with " > ".
func (s *WbsService) GetPath(ctx context.Context, id uuid.UUID) (*domain.WbsPathDTO, error) {
	category, err := s.getOwned(ctx, id)
	if err != nil {
		return nil, err
	}

	categories, err := s.wbsRepo.GetByProject(ctx, category.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project categories: %w", err)
	}

	byID := make(map[uuid.UUID]*domain.WbsCategory, len(categories))
	for i := range categories {
		byID[categories[i].ID] = &categories[i]
	}

	path, err := buildPath(byID, category.ID)
	if err != nil {
		return nil, err
	}

	return &domain.WbsPathDTO{ID: category.ID, Path: path}, nil
}

// GetTree assembles the full category tree of a project. Siblings are ordered
// by sort order, then name.
func (s *WbsService) GetTree(ctx context.Context, projectID uuid.UUID) ([]domain.WbsTreeNodeDTO, error) {
	if err := s.checkProject(ctx, projectID); err != nil {
		return nil, err
	}

	categories, err := s.wbsRepo.GetByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project categories: %w", err)
	}

	return buildTree(categories), nil
}

// Update applies a partial update. Reparenting is not supported; move
// subtrees by recreating them.
func (s *WbsService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateWbsCategoryRequest) (*domain.WbsCategoryDTO, error) {
	category, err := s.getOwned(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.SortOrder != nil {
		category.SortOrder = *req.SortOrder
	}

	if err := s.wbsRepo.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to update wbs category: %w", err)
	}
	return mapper.ToWbsCategoryDTO(category), nil
}

// Delete removes a category. Deletion is blocked while the category has
// children or is referenced by ledger items or detections.
func (s *WbsService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.getOwned(ctx, id); err != nil {
		return err
	}

	children, err := s.wbsRepo.CountChildren(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count children: %w", err)
	}
	if children > 0 {
		return ErrCategoryHasChildren
	}

	refs, err := s.wbsRepo.CountReferences(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count references: %w", err)
	}
	if refs > 0 {
		return ErrCategoryInUse
	}

	if err := s.wbsRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete wbs category: %w", err)
	}

	s.logger.Info("wbs category deleted", zap.String("category_id", id.String()))
	return nil
}

// SeedDefaults loads the standard category tree into a project that has none.
func (s *WbsService) SeedDefaults(ctx context.Context, projectID uuid.UUID) ([]domain.WbsTreeNodeDTO, error) {
	if err := s.checkProject(ctx, projectID); err != nil {
		return nil, err
	}

	existing, err := s.wbsRepo.GetByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project categories: %w", err)
	}
	if len(existing) == 0 {
		if err := s.wbsRepo.SeedDefaults(ctx, projectID); err != nil {
			return nil, fmt.Errorf("failed to seed wbs categories: %w", err)
		}
	}

	return s.GetTree(ctx, projectID)
}

func (s *WbsService) checkProject(ctx context.Context, projectID uuid.UUID) error {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to get project: %w", err)
	}
	if !repository.MustHaveCompanyAccess(ctx, project.CompanyID) {
		return ErrProjectNotFound
	}
	return nil
}

func (s *WbsService) getOwned(ctx context.Context, id uuid.UUID) (*domain.WbsCategory, error) {
	category, err := s.wbsRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWbsCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get wbs category: %w", err)
	}
	if err := s.checkProject(ctx, category.ProjectID); err != nil {
		return nil, err
	}
	return category, nil
}

// buildPath walks parent links from a category to the root. The walk is
// bounded by the category count so a corrupted parent chain cannot loop.
func buildPath(byID map[uuid.UUID]*domain.WbsCategory, id uuid.UUID) (string, error) {
	var parts []string
	current, ok := byID[id]
	if !ok {
		return "", ErrWbsCategoryNotFound
	}

	for steps := 0; current != nil; steps++ {
		if steps > len(byID) {
			return "", ErrCategoryCycle
		}
		parts = append(parts, current.Name)
		if current.ParentID == nil {
			break
		}
		next, ok := byID[*current.ParentID]
		if !ok {
			break
		}
		current = next
	}

	// Reverse into root-first order
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, " > "), nil
}

// buildTree assembles nested nodes from a flat category list in one pass.
func buildTree(categories []domain.WbsCategory) []domain.WbsTreeNodeDTO {
	nodes := make(map[uuid.UUID]*domain.WbsTreeNodeDTO, len(categories))
	for i := range categories {
		nodes[categories[i].ID] = &domain.WbsTreeNodeDTO{
			WbsCategoryDTO: *mapper.ToWbsCategoryDTO(&categories[i]),
		}
	}

	var roots []*domain.WbsTreeNodeDTO
	childLists := make(map[uuid.UUID][]*domain.WbsTreeNodeDTO)
	for i := range categories {
		node := nodes[categories[i].ID]
		parentID := categories[i].ParentID
		if parentID == nil || nodes[*parentID] == nil {
			roots = append(roots, node)
			continue
		}
		childLists[*parentID] = append(childLists[*parentID], node)
	}

	var attach func(node *domain.WbsTreeNodeDTO)
	attach = func(node *domain.WbsTreeNodeDTO) {
		children := childLists[node.ID]
		sortNodes(children)
		for _, child := range children {
			attach(child)
			node.Children = append(node.Children, *child)
		}
	}

	sortNodes(roots)
	result := make([]domain.WbsTreeNodeDTO, 0, len(roots))
	for _, root := range roots {
		attach(root)
		result = append(result, *root)
	}
	return result
}

func sortNodes(nodes []*domain.WbsTreeNodeDTO) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].SortOrder != nodes[j].SortOrder {
			return nodes[i].SortOrder < nodes[j].SortOrder
		}
		return nodes[i].Name < nodes[j].Name
	})
}
