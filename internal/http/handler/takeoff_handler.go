package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/blueline-estimating/takeoff-api/internal/domain"
	"github.com/blueline-estimating/takeoff-api/internal/repository"
	"github.com/blueline-estimating/takeoff-api/internal/service"
)

// TakeoffHandler handles HTTP requests for takeoff ledger operations
type TakeoffHandler struct {
	takeoffService *service.TakeoffService
	logger         *zap.Logger
}

// NewTakeoffHandler creates a new TakeoffHandler instance
func NewTakeoffHandler(takeoffService *service.TakeoffService, logger *zap.Logger) *TakeoffHandler {
	return &TakeoffHandler{
		takeoffService: takeoffService,
		logger:         logger,
	}
}

// Create godoc
// @Summary Create a takeoff item
// @Description Record a measured or counted quantity against a material on a drawing page
// @Tags Takeoff
// @Accept json
// @Produce json
// @Param id path string true "Drawing ID"
// @Param request body domain.CreateTakeoffItemRequest true "Item data"
// @Success 201 {object} domain.TakeoffItemDTO "Created item"
// @Failure 400 {object} domain.ErrorResponse "Invalid request, material, or category"
// @Failure 404 {object} domain.ErrorResponse "Drawing not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /drawings/{id}/takeoff-items [post]
func (h *TakeoffHandler) Create(w http.ResponseWriter, r *http.Request) {
	drawingID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid drawing ID")
		return
	}

	var req domain.CreateTakeoffItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	item, err := h.takeoffService.Create(r.Context(), drawingID, &req)
	if err != nil {
		h.logger.Error("failed to create takeoff item",
			zap.Error(err),
			zap.String("drawing_id", drawingID.String()),
		)
		h.handleTakeoffError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, item)
}

// ListByDrawing godoc
// @Summary List takeoff items on a drawing
// @Tags Takeoff
// @Produce json
// @Param id path string true "Drawing ID"
// @Param page query int false "Filter by page number"
// @Param wbsCategoryId query string false "Filter by WBS category"
// @Success 200 {array} domain.TakeoffItemDTO
// @Failure 404 {object} domain.ErrorResponse "Drawing not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /drawings/{id}/takeoff-items [get]
func (h *TakeoffHandler) ListByDrawing(w http.ResponseWriter, r *http.Request) {
	drawingID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid drawing ID")
		return
	}

	var filter repository.TakeoffItemFilter
	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 0 {
			respondWithError(w, http.StatusBadRequest, "Invalid page parameter")
			return
		}
		filter.PageNumber = &page
	}
	if raw := r.URL.Query().Get("wbsCategoryId"); raw != "" {
		categoryID, err := uuid.Parse(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid wbsCategoryId parameter")
			return
		}
		filter.WbsCategoryID = &categoryID
	}

	items, err := h.takeoffService.ListByDrawing(r.Context(), drawingID, filter)
	if err != nil {
		h.handleTakeoffError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, items)
}

// Get godoc
// @Summary Get a takeoff item by ID
// @Tags Takeoff
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} domain.TakeoffItemDTO
// @Failure 404 {object} domain.ErrorResponse "Item not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /takeoff-items/{id} [get]
func (h *TakeoffHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid item ID")
		return
	}

	item, err := h.takeoffService.GetByID(r.Context(), id)
	if err != nil {
		h.handleTakeoffError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, item)
}

// Update godoc
// @Summary Update a takeoff item
// @Description Update quantity, multiplier, category, or notes. Material and page are immutable.
// @Tags Takeoff
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Param request body domain.UpdateTakeoffItemRequest true "Fields to update"
// @Success 200 {object} domain.TakeoffItemDTO "Updated item"
// @Failure 400 {object} domain.ErrorResponse "Invalid request"
// @Failure 404 {object} domain.ErrorResponse "Item not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /takeoff-items/{id} [put]
func (h *TakeoffHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid item ID")
		return
	}

	var req domain.UpdateTakeoffItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	item, err := h.takeoffService.Update(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to update takeoff item", zap.Error(err), zap.String("item_id", id.String()))
		h.handleTakeoffError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, item)
}

// Delete godoc
// @Summary Delete a takeoff item
// @Tags Takeoff
// @Param id path string true "Item ID"
// @Success 204 "Item deleted"
// @Failure 404 {object} domain.ErrorResponse "Item not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /takeoff-items/{id} [delete]
func (h *TakeoffHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid item ID")
		return
	}

	if err := h.takeoffService.Delete(r.Context(), id); err != nil {
		h.handleTakeoffError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// BulkReassignWbs godoc
// @Summary Bulk reassign takeoff items to a WBS category
// @Description Move many items on a drawing to a category in one atomic operation. A null category clears the assignment. Fails without changes when any item is invalid.
// @Tags Takeoff
// @Accept json
// @Param id path string true "Drawing ID"
// @Param request body domain.BulkReassignWbsRequest true "Item IDs and target category"
// @Success 204 "Items reassigned"
// @Failure 400 {object} domain.ErrorResponse "Invalid request or item list"
// @Failure 404 {object} domain.ErrorResponse "Drawing not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /drawings/{id}/takeoff-items/bulk-reassign [post]
func (h *TakeoffHandler) BulkReassignWbs(w http.ResponseWriter, r *http.Request) {
	drawingID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid drawing ID")
		return
	}

	var req domain.BulkReassignWbsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	if err := h.takeoffService.BulkReassignWbs(r.Context(), drawingID, &req); err != nil {
		h.logger.Error("failed to bulk reassign takeoff items",
			zap.Error(err),
			zap.String("drawing_id", drawingID.String()),
			zap.Int("item_count", len(req.ItemIDs)),
		)
		h.handleTakeoffError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RollupByDrawing godoc
// @Summary Quantity rollup for a drawing
// @Description Aggregate takeoff items by WBS category and material with extended price and labor totals
// @Tags Takeoff
// @Produce json
// @Param id path string true "Drawing ID"
// @Success 200 {object} domain.RollupDTO
// @Failure 404 {object} domain.ErrorResponse "Drawing not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /drawings/{id}/rollup [get]
func (h *TakeoffHandler) RollupByDrawing(w http.ResponseWriter, r *http.Request) {
	drawingID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid drawing ID")
		return
	}

	rollup, err := h.takeoffService.RollupByDrawing(r.Context(), drawingID)
	if err != nil {
		h.handleTakeoffError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, rollup)
}

// RollupByProject godoc
// @Summary Quantity rollup for a project
// @Description Aggregate takeoff items across all drawings of a project
// @Tags Takeoff
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} domain.RollupDTO
// @Failure 404 {object} domain.ErrorResponse "Project not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/rollup [get]
func (h *TakeoffHandler) RollupByProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	rollup, err := h.takeoffService.RollupByProject(r.Context(), projectID)
	if err != nil {
		h.handleTakeoffError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, rollup)
}

// handleTakeoffError maps service errors to HTTP status codes
func (h *TakeoffHandler) handleTakeoffError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrTakeoffItemNotFound):
		respondWithError(w, http.StatusNotFound, "Takeoff item not found")
	case errors.Is(err, service.ErrDrawingNotFound):
		respondWithError(w, http.StatusNotFound, "Drawing not found")
	case errors.Is(err, service.ErrProjectNotFound):
		respondWithError(w, http.StatusNotFound, "Project not found")
	case errors.Is(err, service.ErrInvalidPage):
		respondWithError(w, http.StatusBadRequest, "Page number outside drawing page range")
	case errors.Is(err, service.ErrInvalidQuantity):
		respondWithError(w, http.StatusBadRequest, "Quantity must not be negative")
	case errors.Is(err, service.ErrInvalidMaterial):
		respondWithError(w, http.StatusBadRequest, "Material not found or inactive")
	case errors.Is(err, service.ErrInvalidWbsCategory):
		respondWithError(w, http.StatusBadRequest, "WBS category not found in this project")
	default:
		h.logger.Error("takeoff error", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
