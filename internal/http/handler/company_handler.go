package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/blueline-estimating/takeoff-api/internal/service"
)

// CompanyHandler handles HTTP requests for company operations
type CompanyHandler struct {
	companyService *service.CompanyService
	logger         *zap.Logger
}

// NewCompanyHandler creates a new CompanyHandler instance
func NewCompanyHandler(companyService *service.CompanyService, logger *zap.Logger) *CompanyHandler {
	return &CompanyHandler{
		companyService: companyService,
		logger:         logger,
	}
}

// CreateCompanyRequest carries the fields for registering a new company
type CreateCompanyRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Address string `json:"address,omitempty" validate:"max=500"`
	Phone   string `json:"phone,omitempty" validate:"max=50"`
}

// Create godoc
// @Summary Register a new company
// @Description Create a company and seed its default pricebook
// @Tags Companies
// @Accept json
// @Produce json
// @Param request body handler.CreateCompanyRequest true "Company data"
// @Success 201 {object} domain.CompanyDTO "Created company"
// @Failure 400 {object} domain.ErrorResponse "Invalid request"
// @Failure 409 {object} domain.ErrorResponse "Company name already taken"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /companies [post]
func (h *CompanyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	company, err := h.companyService.Create(r.Context(), req.Name, req.Address, req.Phone)
	if err != nil {
		if errors.Is(err, service.ErrConflict) {
			respondWithError(w, http.StatusConflict, "A company with this name already exists")
			return
		}
		h.logger.Error("failed to create company", zap.Error(err), zap.String("name", req.Name))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusCreated, company)
}

// List godoc
// @Summary List companies
// @Tags Companies
// @Produce json
// @Success 200 {array} domain.CompanyDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /companies [get]
func (h *CompanyHandler) List(w http.ResponseWriter, r *http.Request) {
	companies, err := h.companyService.GetAll(r.Context())
	if err != nil {
		h.logger.Error("failed to list companies", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondJSON(w, http.StatusOK, companies)
}

// Get godoc
// @Summary Get a company by ID
// @Tags Companies
// @Produce json
// @Param id path string true "Company ID"
// @Success 200 {object} domain.CompanyDTO
// @Failure 404 {object} domain.ErrorResponse "Company not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /companies/{id} [get]
func (h *CompanyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid company ID")
		return
	}

	company, err := h.companyService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrCompanyNotFound) {
			respondWithError(w, http.StatusNotFound, "Company not found")
			return
		}
		h.logger.Error("failed to get company", zap.Error(err), zap.String("company_id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, company)
}
