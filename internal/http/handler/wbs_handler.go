package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/blueline-estimating/takeoff-api/internal/domain"
	"github.com/blueline-estimating/takeoff-api/internal/service"
)

// WbsHandler handles HTTP requests for WBS category operations
type WbsHandler struct {
	wbsService *service.WbsService
	logger     *zap.Logger
}

// NewWbsHandler creates a new WbsHandler instance
func NewWbsHandler(wbsService *service.WbsService, logger *zap.Logger) *WbsHandler {
	return &WbsHandler{
		wbsService: wbsService,
		logger:     logger,
	}
}

// Create godoc
// @Summary Create a WBS category
// @Description Create a category under a project, optionally nested under a parent in the same project
// @Tags WBS
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param request body domain.CreateWbsCategoryRequest true "Category data"
// @Success 201 {object} domain.WbsCategoryDTO "Created category"
// @Failure 400 {object} domain.ErrorResponse "Invalid request or parent"
// @Failure 404 {object} domain.ErrorResponse "Project not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/wbs [post]
func (h *WbsHandler) Create(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	var req domain.CreateWbsCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	category, err := h.wbsService.Create(r.Context(), projectID, &req)
	if err != nil {
		h.logger.Error("failed to create WBS category",
			zap.Error(err),
			zap.String("project_id", projectID.String()),
		)
		h.handleWbsError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, category)
}

// GetTree godoc
// @Summary Get the WBS tree for a project
// @Description Get all categories of a project as a nested tree ordered by sort order
// @Tags WBS
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {array} domain.WbsTreeNodeDTO
// @Failure 404 {object} domain.ErrorResponse "Project not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/wbs/tree [get]
func (h *WbsHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	tree, err := h.wbsService.GetTree(r.Context(), projectID)
	if err != nil {
		h.handleWbsError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, tree)
}

// SeedDefaults godoc
// @Summary Seed the default WBS tree
// @Description Create the standard category tree for a project. Does nothing when categories already exist.
// @Tags WBS
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {array} domain.WbsTreeNodeDTO "Resulting tree"
// @Failure 404 {object} domain.ErrorResponse "Project not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/wbs/seed [post]
func (h *WbsHandler) SeedDefaults(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	tree, err := h.wbsService.SeedDefaults(r.Context(), projectID)
	if err != nil {
		h.logger.Error("failed to seed WBS defaults",
			zap.Error(err),
			zap.String("project_id", projectID.String()),
		)
		h.handleWbsError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, tree)
}

// Get godoc
// @Summary Get a WBS category by ID
// @Tags WBS
// @Produce json
// @Param id path string true "Category ID"
// @Success 200 {object} domain.WbsCategoryDTO
// @Failure 404 {object} domain.ErrorResponse "Category not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /wbs/{id} [get]
func (h *WbsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	category, err := h.wbsService.GetByID(r.Context(), id)
	if err != nil {
		h.handleWbsError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, category)
}

// GetPath godoc
// @Summary Get the full path of a WBS category
// @Description Get the root-to-category chain, e.g. "Plumbing > Underground > Sanitary"
// @Tags WBS
// @Produce json
// @Param id path string true "Category ID"
// @Success 200 {object} domain.WbsPathDTO
// @Failure 404 {object} domain.ErrorResponse "Category not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /wbs/{id}/path [get]
func (h *WbsHandler) GetPath(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	path, err := h.wbsService.GetPath(r.Context(), id)
	if err != nil {
		h.handleWbsError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, path)
}

// Update godoc
// @Summary Update a WBS category
// @Description Update name or sort order. Moving a category to a different parent is not supported.
// @Tags WBS
// @Accept json
// @Produce json
// @Param id path string true "Category ID"
// @Param request body domain.UpdateWbsCategoryRequest true "Fields to update"
// @Success 200 {object} domain.WbsCategoryDTO "Updated category"
// @Failure 400 {object} domain.ErrorResponse "Invalid request"
// @Failure 404 {object} domain.ErrorResponse "Category not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /wbs/{id} [put]
func (h *WbsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	var req domain.UpdateWbsCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	category, err := h.wbsService.Update(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to update WBS category", zap.Error(err), zap.String("category_id", id.String()))
		h.handleWbsError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, category)
}

// Delete godoc
// @Summary Delete a WBS category
// @Description Delete a leaf category. Blocked when the category has children or is referenced by takeoff items, detection records, or RFQ lines.
// @Tags WBS
// @Param id path string true "Category ID"
// @Success 204 "Category deleted"
// @Failure 404 {object} domain.ErrorResponse "Category not found"
// @Failure 409 {object} domain.ErrorResponse "Category has children or is in use"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /wbs/{id} [delete]
func (h *WbsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	if err := h.wbsService.Delete(r.Context(), id); err != nil {
		h.handleWbsError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleWbsError maps service errors to HTTP status codes
func (h *WbsHandler) handleWbsError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrWbsCategoryNotFound):
		respondWithError(w, http.StatusNotFound, "WBS category not found")
	case errors.Is(err, service.ErrProjectNotFound):
		respondWithError(w, http.StatusNotFound, "Project not found")
	case errors.Is(err, service.ErrInvalidParent):
		respondWithError(w, http.StatusBadRequest, "Parent category not found in this project")
	case errors.Is(err, service.ErrCategoryHasChildren):
		respondWithError(w, http.StatusConflict, "Category has child categories")
	case errors.Is(err, service.ErrCategoryInUse):
		respondWithError(w, http.StatusConflict, "Category is referenced by takeoff items, detections, or RFQ lines")
	default:
		h.logger.Error("WBS error", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
