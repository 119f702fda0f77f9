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
	"github.com/blueline-estimating/takeoff-api/internal/service"
)

// DetectionHandler handles HTTP requests for detection record operations
type DetectionHandler struct {
	detectionService *service.DetectionService
	logger           *zap.Logger
}

// NewDetectionHandler creates a new DetectionHandler instance
func NewDetectionHandler(detectionService *service.DetectionService, logger *zap.Logger) *DetectionHandler {
	return &DetectionHandler{
		detectionService: detectionService,
		logger:           logger,
	}
}

// Create godoc
// @Summary Record a detected item
// @Description Register a detection produced by an external analysis pipeline
// @Tags Detections
// @Accept json
// @Produce json
// @Param id path string true "Drawing ID"
// @Param request body domain.CreateDetectedItemRequest true "Detection data"
// @Success 201 {object} domain.DetectedItemDTO "Created detection"
// @Failure 400 {object} domain.ErrorResponse "Invalid request or page number"
// @Failure 404 {object} domain.ErrorResponse "Drawing not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /drawings/{id}/detected-items [post]
func (h *DetectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	drawingID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid drawing ID")
		return
	}

	var req domain.CreateDetectedItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	item, err := h.detectionService.Create(r.Context(), drawingID, &req)
	if err != nil {
		h.logger.Error("failed to create detection record",
			zap.Error(err),
			zap.String("drawing_id", drawingID.String()),
		)
		h.handleDetectionError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, item)
}

// ListByDrawing godoc
// @Summary List detection records on a drawing
// @Tags Detections
// @Produce json
// @Param id path string true "Drawing ID"
// @Param page query int false "Filter by page number"
// @Success 200 {array} domain.DetectedItemDTO
// @Failure 404 {object} domain.ErrorResponse "Drawing not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /drawings/{id}/detected-items [get]
func (h *DetectionHandler) ListByDrawing(w http.ResponseWriter, r *http.Request) {
	drawingID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid drawing ID")
		return
	}

	var pageNumber *int
	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 0 {
			respondWithError(w, http.StatusBadRequest, "Invalid page parameter")
			return
		}
		pageNumber = &page
	}

	items, err := h.detectionService.ListByDrawing(r.Context(), drawingID, pageNumber)
	if err != nil {
		h.handleDetectionError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, items)
}

// CountsByType godoc
// @Summary Detection counts by item type
// @Tags Detections
// @Produce json
// @Param id path string true "Drawing ID"
// @Success 200 {object} map[string]int64
// @Failure 404 {object} domain.ErrorResponse "Drawing not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /drawings/{id}/detected-items/counts [get]
func (h *DetectionHandler) CountsByType(w http.ResponseWriter, r *http.Request) {
	drawingID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid drawing ID")
		return
	}

	counts, err := h.detectionService.CountsByType(r.Context(), drawingID)
	if err != nil {
		h.handleDetectionError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, counts)
}

// Update godoc
// @Summary Update a detection record
// @Description Verify a detection, correct its type, attach notes, or assign a WBS category
// @Tags Detections
// @Accept json
// @Produce json
// @Param id path string true "Detection ID"
// @Param request body domain.UpdateDetectedItemRequest true "Fields to update"
// @Success 200 {object} domain.DetectedItemDTO "Updated detection"
// @Failure 400 {object} domain.ErrorResponse "Invalid request"
// @Failure 404 {object} domain.ErrorResponse "Detection not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /detected-items/{id} [put]
func (h *DetectionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid detection ID")
		return
	}

	var req domain.UpdateDetectedItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	item, err := h.detectionService.Update(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to update detection record", zap.Error(err), zap.String("detection_id", id.String()))
		h.handleDetectionError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, item)
}

// Delete godoc
// @Summary Delete a detection record
// @Tags Detections
// @Param id path string true "Detection ID"
// @Success 204 "Detection deleted"
// @Failure 404 {object} domain.ErrorResponse "Detection not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /detected-items/{id} [delete]
func (h *DetectionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid detection ID")
		return
	}

	if err := h.detectionService.Delete(r.Context(), id); err != nil {
		h.handleDetectionError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleDetectionError maps service errors to HTTP status codes
func (h *DetectionHandler) handleDetectionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrDetectedItemNotFound):
		respondWithError(w, http.StatusNotFound, "Detection record not found")
	case errors.Is(err, service.ErrDrawingNotFound):
		respondWithError(w, http.StatusNotFound, "Drawing not found")
	case errors.Is(err, service.ErrInvalidPage):
		respondWithError(w, http.StatusBadRequest, "Page number outside drawing page range")
	case errors.Is(err, service.ErrInvalidWbsCategory):
		respondWithError(w, http.StatusBadRequest, "WBS category not found in this project")
	default:
		h.logger.Error("detection error", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
