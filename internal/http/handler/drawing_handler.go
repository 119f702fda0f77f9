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

// DrawingHandler handles HTTP requests for drawing identity operations
type DrawingHandler struct {
	drawingService *service.DrawingService
	logger         *zap.Logger
}

// NewDrawingHandler creates a new DrawingHandler instance
func NewDrawingHandler(drawingService *service.DrawingService, logger *zap.Logger) *DrawingHandler {
	return &DrawingHandler{
		drawingService: drawingService,
		logger:         logger,
	}
}

// Create godoc
// @Summary Register a drawing
// @Description Create a drawing identity record under a project. File storage and rendering live outside this service.
// @Tags Drawings
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param request body domain.CreateDrawingRequest true "Drawing data"
// @Success 201 {object} domain.DrawingDTO "Created drawing"
// @Failure 400 {object} domain.ErrorResponse "Invalid request"
// @Failure 404 {object} domain.ErrorResponse "Project not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/drawings [post]
func (h *DrawingHandler) Create(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	var req domain.CreateDrawingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	drawing, err := h.drawingService.Create(r.Context(), projectID, &req)
	if err != nil {
		h.logger.Error("failed to create drawing",
			zap.Error(err),
			zap.String("project_id", projectID.String()),
		)
		h.handleDrawingError(w, err)
		return
	}

	w.Header().Set("Location", "/drawings/"+drawing.ID.String())
	respondJSON(w, http.StatusCreated, drawing)
}

// ListByProject godoc
// @Summary List drawings in a project
// @Tags Drawings
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {array} domain.DrawingDTO
// @Failure 404 {object} domain.ErrorResponse "Project not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/drawings [get]
func (h *DrawingHandler) ListByProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	drawings, err := h.drawingService.ListByProject(r.Context(), projectID)
	if err != nil {
		h.handleDrawingError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, drawings)
}

// Get godoc
// @Summary Get a drawing by ID
// @Tags Drawings
// @Produce json
// @Param id path string true "Drawing ID"
// @Success 200 {object} domain.DrawingDTO
// @Failure 404 {object} domain.ErrorResponse "Drawing not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /drawings/{id} [get]
func (h *DrawingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid drawing ID")
		return
	}

	drawing, err := h.drawingService.GetByID(r.Context(), id)
	if err != nil {
		h.handleDrawingError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, drawing)
}

// Update godoc
// @Summary Rename a drawing
// @Tags Drawings
// @Accept json
// @Produce json
// @Param id path string true "Drawing ID"
// @Param request body domain.UpdateDrawingRequest true "Fields to update"
// @Success 200 {object} domain.DrawingDTO "Updated drawing"
// @Failure 400 {object} domain.ErrorResponse "Invalid request"
// @Failure 404 {object} domain.ErrorResponse "Drawing not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /drawings/{id} [put]
func (h *DrawingHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid drawing ID")
		return
	}

	var req domain.UpdateDrawingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	drawing, err := h.drawingService.Update(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to update drawing", zap.Error(err), zap.String("drawing_id", id.String()))
		h.handleDrawingError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, drawing)
}

// Delete godoc
// @Summary Delete a drawing
// @Description Delete a drawing and its page scales, zones, takeoff items, and detection records
// @Tags Drawings
// @Param id path string true "Drawing ID"
// @Success 204 "Drawing deleted"
// @Failure 404 {object} domain.ErrorResponse "Drawing not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /drawings/{id} [delete]
func (h *DrawingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid drawing ID")
		return
	}

	if err := h.drawingService.Delete(r.Context(), id); err != nil {
		h.logger.Error("failed to delete drawing", zap.Error(err), zap.String("drawing_id", id.String()))
		h.handleDrawingError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleDrawingError maps service errors to HTTP status codes
func (h *DrawingHandler) handleDrawingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrDrawingNotFound):
		respondWithError(w, http.StatusNotFound, "Drawing not found")
	case errors.Is(err, service.ErrProjectNotFound):
		respondWithError(w, http.StatusNotFound, "Project not found")
	case errors.Is(err, service.ErrInvalidPage):
		respondWithError(w, http.StatusBadRequest, "Page number outside drawing page range")
	default:
		h.logger.Error("drawing error", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
