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

// ScaleHandler handles HTTP requests for scale catalog, page scales,
// zones, calibration, and resolution
type ScaleHandler struct {
	scaleService *service.ScaleService
	logger       *zap.Logger
}

// NewScaleHandler creates a new ScaleHandler instance
func NewScaleHandler(scaleService *service.ScaleService, logger *zap.Logger) *ScaleHandler {
	return &ScaleHandler{
		scaleService: scaleService,
		logger:       logger,
	}
}

// ConvertedLengthDTO is the response for a pixel-to-real length conversion
type ConvertedLengthDTO struct {
	PixelLength float64                  `json:"pixelLength"`
	RealLength  float64                  `json:"realLength"`
	Unit        string                   `json:"unit"`
	Scale       *domain.ResolvedScaleDTO `json:"scale"`
}

// Catalog godoc
// @Summary List standard scales
// @Description Get the catalog of standard architectural and engineering scales
// @Tags Scales
// @Produce json
// @Param family query string false "Filter by family" Enums(architectural, engineering)
// @Success 200 {array} domain.StandardScale
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /scales/standard [get]
func (h *ScaleHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	family := r.URL.Query().Get("family")
	respondJSON(w, http.StatusOK, h.scaleService.Catalog(family))
}

// CreateCustomScale godoc
// @Summary Create a custom scale
// @Description Define a reusable named scale for a project
// @Tags Scales
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param request body domain.CreateCustomScaleRequest true "Scale data"
// @Success 201 {object} domain.CustomScaleDTO "Created scale"
// @Failure 400 {object} domain.ErrorResponse "Invalid request"
// @Failure 404 {object} domain.ErrorResponse "Project not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/scales [post]
func (h *ScaleHandler) CreateCustomScale(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	var req domain.CreateCustomScaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	scale, err := h.scaleService.CreateCustomScale(r.Context(), projectID, &req)
	if err != nil {
		h.logger.Error("failed to create custom scale",
			zap.Error(err),
			zap.String("project_id", projectID.String()),
		)
		h.handleScaleError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, scale)
}

// ListCustomScales godoc
// @Summary List custom scales in a project
// @Tags Scales
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {array} domain.CustomScaleDTO
// @Failure 404 {object} domain.ErrorResponse "Project not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/scales [get]
func (h *ScaleHandler) ListCustomScales(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	scales, err := h.scaleService.ListCustomScales(r.Context(), projectID)
	if err != nil {
		h.handleScaleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, scales)
}

// DeleteCustomScale godoc
// @Summary Delete a custom scale
// @Tags Scales
// @Param id path string true "Custom scale ID"
// @Success 204 "Scale deleted"
// @Failure 404 {object} domain.ErrorResponse "Scale not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /scales/{id} [delete]
func (h *ScaleHandler) DeleteCustomScale(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid scale ID")
		return
	}

	if err := h.scaleService.DeleteCustomScale(r.Context(), id); err != nil {
		h.handleScaleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetPageScale godoc
// @Summary Set the default scale for a page
// @Description Upsert the page-level scale. Replaces any previously set scale for the page.
// @Tags Scales
// @Accept json
// @Produce json
// @Param id path string true "Drawing ID"
// @Param page path int true "Page number (zero-based)"
// @Param request body domain.SetPageScaleRequest true "Scale data"
// @Success 200 {object} domain.PageScaleDTO "Page scale"
// @Failure 400 {object} domain.ErrorResponse "Invalid request or page number"
// @Failure 404 {object} domain.ErrorResponse "Drawing not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /drawings/{id}/pages/{page}/scale [put]
func (h *ScaleHandler) SetPageScale(w http.ResponseWriter, r *http.Request) {
	drawingID, pageNumber, ok := h.drawingPage(w, r)
	if !ok {
		return
	}

	var req domain.SetPageScaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	scale, err := h.scaleService.SetPageScale(r.Context(), drawingID, pageNumber, &req)
	if err != nil {
		h.logger.Error("failed to set page scale",
			zap.Error(err),
			zap.String("drawing_id", drawingID.String()),
			zap.Int("page_number", pageNumber),
		)
		h.handleScaleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, scale)
}

// GetPageScale godoc
// @Summary Get the default scale for a page
// @Tags Scales
// @Produce json
// @Param id path string true "Drawing ID"
// @Param page path int true "Page number (zero-based)"
// @Success 200 {object} domain.PageScaleDTO
// @Failure 404 {object} domain.ErrorResponse "Drawing or page scale not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /drawings/{id}/pages/{page}/scale [get]
func (h *ScaleHandler) GetPageScale(w http.ResponseWriter, r *http.Request) {
	drawingID, pageNumber, ok := h.drawingPage(w, r)
	if !ok {
		return
	}

	scale, err := h.scaleService.GetPageScale(r.Context(), drawingID, pageNumber)
	if err != nil {
		h.handleScaleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, scale)
}

// ListPageScales godoc
// @Summary List all page scales for a drawing
// @Tags Scales
// @Produce json
// @Param id path string true "Drawing ID"
// @Success 200 {array} domain.PageScaleDTO
// @Failure 404 {object} domain.ErrorResponse "Drawing not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /drawings/{id}/scales [get]
func (h *ScaleHandler) ListPageScales(w http.ResponseWriter, r *http.Request) {
	drawingID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid drawing ID")
		return
	}

	scales, err := h.scaleService.ListPageScales(r.Context(), drawingID)
	if err != nil {
		h.handleScaleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, scales)
}

// ClearPageScale godoc
// @Summary Clear the default scale for a page
// @Tags Scales
// @Param id path string true "Drawing ID"
// @Param page path int true "Page number (zero-based)"
// @Success 204 "Page scale cleared"
// @Failure 404 {object} domain.ErrorResponse "Drawing or page scale not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /drawings/{id}/pages/{page}/scale [delete]
func (h *ScaleHandler) ClearPageScale(w http.ResponseWriter, r *http.Request) {
	drawingID, pageNumber, ok := h.drawingPage(w, r)
	if !ok {
		return
	}

	if err := h.scaleService.ClearPageScale(r.Context(), drawingID, pageNumber); err != nil {
		h.handleScaleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateZone godoc
// @Summary Create a scale zone
// @Description Define a rectangular region of a page with its own scale, overriding the page default inside its bounds
// @Tags Scales
// @Accept json
// @Produce json
// @Param id path string true "Drawing ID"
// @Param page path int true "Page number (zero-based)"
// @Param request body domain.CreateScaleZoneRequest true "Zone data"
// @Success 201 {object} domain.ScaleZoneDTO "Created zone"
// @Failure 400 {object} domain.ErrorResponse "Invalid request or page number"
// @Failure 404 {object} domain.ErrorResponse "Drawing not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /drawings/{id}/pages/{page}/zones [post]
func (h *ScaleHandler) CreateZone(w http.ResponseWriter, r *http.Request) {
	drawingID, pageNumber, ok := h.drawingPage(w, r)
	if !ok {
		return
	}

	var req domain.CreateScaleZoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	zone, err := h.scaleService.CreateZone(r.Context(), drawingID, pageNumber, &req)
	if err != nil {
		h.logger.Error("failed to create scale zone",
			zap.Error(err),
			zap.String("drawing_id", drawingID.String()),
			zap.Int("page_number", pageNumber),
		)
		h.handleScaleError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, zone)
}

// ListZones godoc
// @Summary List scale zones on a page
// @Tags Scales
// @Produce json
// @Param id path string true "Drawing ID"
// @Param page path int true "Page number (zero-based)"
// @Success 200 {array} domain.ScaleZoneDTO
// @Failure 404 {object} domain.ErrorResponse "Drawing not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /drawings/{id}/pages/{page}/zones [get]
func (h *ScaleHandler) ListZones(w http.ResponseWriter, r *http.Request) {
	drawingID, pageNumber, ok := h.drawingPage(w, r)
	if !ok {
		return
	}

	zones, err := h.scaleService.ListZones(r.Context(), drawingID, pageNumber)
	if err != nil {
		h.handleScaleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, zones)
}

// UpdateZone godoc
// @Summary Update a scale zone
// @Description Update zone geometry or scale. Only supplied fields change.
// @Tags Scales
// @Accept json
// @Produce json
// @Param id path string true "Zone ID"
// @Param request body domain.UpdateScaleZoneRequest true "Fields to update"
// @Success 200 {object} domain.ScaleZoneDTO "Updated zone"
// @Failure 400 {object} domain.ErrorResponse "Invalid request"
// @Failure 404 {object} domain.ErrorResponse "Zone not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /zones/{id} [put]
func (h *ScaleHandler) UpdateZone(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid zone ID")
		return
	}

	var req domain.UpdateScaleZoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	zone, err := h.scaleService.UpdateZone(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to update scale zone", zap.Error(err), zap.String("zone_id", id.String()))
		h.handleScaleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, zone)
}

// DeleteZone godoc
// @Summary Delete a scale zone
// @Tags Scales
// @Param id path string true "Zone ID"
// @Success 204 "Zone deleted"
// @Failure 404 {object} domain.ErrorResponse "Zone not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /zones/{id} [delete]
func (h *ScaleHandler) DeleteZone(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid zone ID")
		return
	}

	if err := h.scaleService.DeleteZone(r.Context(), id); err != nil {
		h.handleScaleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Calibrate godoc
// @Summary Calibrate a scale from a measured distance
// @Description Derive pixels-per-unit from a known pixel distance and real-world distance. When a name is supplied the result is saved as a custom scale on the drawing's project.
// @Tags Scales
// @Accept json
// @Produce json
// @Param id path string true "Drawing ID"
// @Param request body domain.CalibrateRequest true "Calibration data"
// @Success 200 {object} domain.CalibrationResultDTO "Calibration result"
// @Failure 400 {object} domain.ErrorResponse "Invalid calibration distances"
// @Failure 404 {object} domain.ErrorResponse "Drawing not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /drawings/{id}/calibrate [post]
func (h *ScaleHandler) Calibrate(w http.ResponseWriter, r *http.Request) {
	drawingID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid drawing ID")
		return
	}

	var req domain.CalibrateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	result, err := h.scaleService.Calibrate(r.Context(), drawingID, &req)
	if err != nil {
		h.logger.Error("failed to calibrate",
			zap.Error(err),
			zap.String("drawing_id", drawingID.String()),
		)
		h.handleScaleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Resolve godoc
// @Summary Resolve the effective scale at a point
// @Description Determine which scale applies at a point on a page. Zones override the page default; the smallest containing zone wins.
// @Tags Scales
// @Produce json
// @Param id path string true "Drawing ID"
// @Param page path int true "Page number (zero-based)"
// @Param x query number true "X coordinate in pixels"
// @Param y query number true "Y coordinate in pixels"
// @Success 200 {object} domain.ResolvedScaleDTO "Resolved scale"
// @Failure 400 {object} domain.ErrorResponse "Invalid coordinates"
// @Failure 404 {object} domain.ErrorResponse "Drawing not found"
// @Failure 422 {object} domain.ErrorResponse "No scale defined at this point"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /drawings/{id}/pages/{page}/scale/resolve [get]
func (h *ScaleHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	drawingID, pageNumber, ok := h.drawingPage(w, r)
	if !ok {
		return
	}

	x, y, ok := h.point(w, r)
	if !ok {
		return
	}

	resolved, err := h.scaleService.Resolve(r.Context(), drawingID, pageNumber, x, y)
	if err != nil {
		h.handleScaleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resolved)
}

// Convert godoc
// @Summary Convert a pixel length to real-world units
// @Description Resolve the scale at a point and convert a measured pixel length to real-world units
// @Tags Scales
// @Produce json
// @Param id path string true "Drawing ID"
// @Param page path int true "Page number (zero-based)"
// @Param x query number true "X coordinate in pixels"
// @Param y query number true "Y coordinate in pixels"
// @Param pixelLength query number true "Measured length in pixels"
// @Success 200 {object} handler.ConvertedLengthDTO "Converted length"
// @Failure 400 {object} domain.ErrorResponse "Invalid parameters"
// @Failure 422 {object} domain.ErrorResponse "No scale defined at this point"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /drawings/{id}/pages/{page}/convert [get]
func (h *ScaleHandler) Convert(w http.ResponseWriter, r *http.Request) {
	drawingID, pageNumber, ok := h.drawingPage(w, r)
	if !ok {
		return
	}

	x, y, ok := h.point(w, r)
	if !ok {
		return
	}

	pixelLength, err := strconv.ParseFloat(r.URL.Query().Get("pixelLength"), 64)
	if err != nil || pixelLength < 0 {
		respondWithError(w, http.StatusBadRequest, "Invalid pixelLength parameter")
		return
	}

	resolved, err := h.scaleService.Resolve(r.Context(), drawingID, pageNumber, x, y)
	if err != nil {
		h.handleScaleError(w, err)
		return
	}

	realLength, err := h.scaleService.ConvertLength(pixelLength, resolved.PixelsPerUnit)
	if err != nil {
		h.handleScaleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, ConvertedLengthDTO{
		PixelLength: pixelLength,
		RealLength:  realLength,
		Unit:        resolved.Unit,
		Scale:       resolved,
	})
}

func (h *ScaleHandler) drawingPage(w http.ResponseWriter, r *http.Request) (uuid.UUID, int, bool) {
	drawingID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid drawing ID")
		return uuid.Nil, 0, false
	}

	pageNumber, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil || pageNumber < 0 {
		respondWithError(w, http.StatusBadRequest, "Invalid page number")
		return uuid.Nil, 0, false
	}

	return drawingID, pageNumber, true
}

func (h *ScaleHandler) point(w http.ResponseWriter, r *http.Request) (float64, float64, bool) {
	x, err := strconv.ParseFloat(r.URL.Query().Get("x"), 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid x parameter")
		return 0, 0, false
	}
	y, err := strconv.ParseFloat(r.URL.Query().Get("y"), 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid y parameter")
		return 0, 0, false
	}
	return x, y, true
}

// handleScaleError maps service errors to HTTP status codes
func (h *ScaleHandler) handleScaleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrDrawingNotFound):
		respondWithError(w, http.StatusNotFound, "Drawing not found")
	case errors.Is(err, service.ErrProjectNotFound):
		respondWithError(w, http.StatusNotFound, "Project not found")
	case errors.Is(err, service.ErrCustomScaleNotFound):
		respondWithError(w, http.StatusNotFound, "Custom scale not found")
	case errors.Is(err, service.ErrPageScaleNotFound):
		respondWithError(w, http.StatusNotFound, "No scale set for this page")
	case errors.Is(err, service.ErrScaleZoneNotFound):
		respondWithError(w, http.StatusNotFound, "Scale zone not found")
	case errors.Is(err, service.ErrInvalidPage):
		respondWithError(w, http.StatusBadRequest, "Page number outside drawing page range")
	case errors.Is(err, service.ErrInvalidCalibration):
		respondWithError(w, http.StatusBadRequest, "Calibration distances must be positive")
	case errors.Is(err, service.ErrScaleUndefined):
		respondWithError(w, http.StatusUnprocessableEntity, "No scale defined at this point")
	default:
		h.logger.Error("scale error", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
