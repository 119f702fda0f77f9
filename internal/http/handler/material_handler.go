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

// MaterialHandler handles HTTP requests for pricebook operations
type MaterialHandler struct {
	materialService *service.MaterialService
	logger          *zap.Logger
}

// NewMaterialHandler creates a new MaterialHandler instance
func NewMaterialHandler(materialService *service.MaterialService, logger *zap.Logger) *MaterialHandler {
	return &MaterialHandler{
		materialService: materialService,
		logger:          logger,
	}
}

// SeedResultDTO reports how many pricebook rows a seed operation created
type SeedResultDTO struct {
	Created int `json:"created"`
}

// Create godoc
// @Summary Create a material
// @Description Add a material to the company pricebook. Part numbers are unique per company and immutable.
// @Tags Materials
// @Accept json
// @Produce json
// @Param request body domain.CreateMaterialRequest true "Material data"
// @Success 201 {object} domain.MaterialDTO "Created material"
// @Failure 400 {object} domain.ErrorResponse "Invalid request"
// @Failure 409 {object} domain.ErrorResponse "Part number already exists"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /materials [post]
func (h *MaterialHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateMaterialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	material, err := h.materialService.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create material", zap.Error(err), zap.String("part_number", req.PartNumber))
		h.handleMaterialError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, material)
}

// List godoc
// @Summary List materials
// @Description Get the company pricebook, optionally filtered by category. Inactive materials are hidden unless requested.
// @Tags Materials
// @Produce json
// @Param category query string false "Filter by category"
// @Param includeInactive query bool false "Include deactivated materials"
// @Success 200 {array} domain.MaterialDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /materials [get]
func (h *MaterialHandler) List(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	includeInactive := r.URL.Query().Get("includeInactive") == "true"

	materials, err := h.materialService.List(r.Context(), category, includeInactive)
	if err != nil {
		h.logger.Error("failed to list materials", zap.Error(err))
		h.handleMaterialError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, materials)
}

// Categories godoc
// @Summary List material categories
// @Description Get the distinct categories present in the company pricebook
// @Tags Materials
// @Produce json
// @Success 200 {array} string
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /materials/categories [get]
func (h *MaterialHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.materialService.Categories(r.Context())
	if err != nil {
		h.logger.Error("failed to list material categories", zap.Error(err))
		h.handleMaterialError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, categories)
}

// SeedDefaults godoc
// @Summary Seed the default pricebook
// @Description Load the standard PVC pricebook into the company. Does nothing when materials already exist.
// @Tags Materials
// @Produce json
// @Success 200 {object} handler.SeedResultDTO "Number of materials created"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /materials/seed-defaults [post]
func (h *MaterialHandler) SeedDefaults(w http.ResponseWriter, r *http.Request) {
	created, err := h.materialService.SeedDefaults(r.Context())
	if err != nil {
		h.logger.Error("failed to seed default pricebook", zap.Error(err))
		h.handleMaterialError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, SeedResultDTO{Created: created})
}

// Get godoc
// @Summary Get a material by ID
// @Tags Materials
// @Produce json
// @Param id path string true "Material ID"
// @Success 200 {object} domain.MaterialDTO
// @Failure 404 {object} domain.ErrorResponse "Material not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /materials/{id} [get]
func (h *MaterialHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid material ID")
		return
	}

	material, err := h.materialService.GetByID(r.Context(), id)
	if err != nil {
		h.handleMaterialError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, material)
}

// Update godoc
// @Summary Update a material
// @Description Update pricebook fields. The part number is immutable.
// @Tags Materials
// @Accept json
// @Produce json
// @Param id path string true "Material ID"
// @Param request body domain.UpdateMaterialRequest true "Fields to update"
// @Success 200 {object} domain.MaterialDTO "Updated material"
// @Failure 400 {object} domain.ErrorResponse "Invalid request"
// @Failure 404 {object} domain.ErrorResponse "Material not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /materials/{id} [put]
func (h *MaterialHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid material ID")
		return
	}

	var req domain.UpdateMaterialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	material, err := h.materialService.Update(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to update material", zap.Error(err), zap.String("material_id", id.String()))
		h.handleMaterialError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, material)
}

// Deactivate godoc
// @Summary Deactivate a material
// @Description Soft-delete a material. Existing takeoff items keep referencing it; it is hidden from new takeoffs.
// @Tags Materials
// @Param id path string true "Material ID"
// @Success 204 "Material deactivated"
// @Failure 404 {object} domain.ErrorResponse "Material not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /materials/{id} [delete]
func (h *MaterialHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid material ID")
		return
	}

	if err := h.materialService.Deactivate(r.Context(), id); err != nil {
		h.handleMaterialError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleMaterialError maps service errors to HTTP status codes
func (h *MaterialHandler) handleMaterialError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrMaterialNotFound):
		respondWithError(w, http.StatusNotFound, "Material not found")
	case errors.Is(err, service.ErrDuplicatePartNumber):
		respondWithError(w, http.StatusConflict, "A material with this part number already exists")
	case errors.Is(err, service.ErrUnauthorized):
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
	default:
		h.logger.Error("material error", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
