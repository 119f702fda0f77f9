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

// RfqHandler handles HTTP requests for RFQ operations
type RfqHandler struct {
	rfqService *service.RfqService
	logger     *zap.Logger
}

// NewRfqHandler creates a new RfqHandler instance
func NewRfqHandler(rfqService *service.RfqService, logger *zap.Logger) *RfqHandler {
	return &RfqHandler{
		rfqService: rfqService,
		logger:     logger,
	}
}

// Create godoc
// @Summary Create an RFQ
// @Description Create a request-for-quote under a project, optionally with initial lines
// @Tags RFQs
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param request body domain.CreateRfqRequest true "RFQ data"
// @Success 201 {object} domain.RfqDTO "Created RFQ"
// @Failure 400 {object} domain.ErrorResponse "Invalid request"
// @Failure 404 {object} domain.ErrorResponse "Project not found"
// @Failure 409 {object} domain.ErrorResponse "RFQ number already exists"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/rfqs [post]
func (h *RfqHandler) Create(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	var req domain.CreateRfqRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	rfq, err := h.rfqService.Create(r.Context(), projectID, &req)
	if err != nil {
		h.logger.Error("failed to create RFQ",
			zap.Error(err),
			zap.String("project_id", projectID.String()),
			zap.String("rfq_number", req.RfqNumber),
		)
		h.handleRfqError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, rfq)
}

// AssembleFromRollup godoc
// @Summary Assemble an RFQ from the project rollup
// @Description Build RFQ lines as a snapshot of the current project rollup, optionally limited to selected WBS categories (descendants included). Later ledger edits do not change the RFQ.
// @Tags RFQs
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param request body domain.AssembleRfqRequest true "RFQ data and category filter"
// @Success 201 {object} domain.RfqDTO "Assembled RFQ"
// @Failure 400 {object} domain.ErrorResponse "Invalid request or empty rollup"
// @Failure 404 {object} domain.ErrorResponse "Project not found"
// @Failure 409 {object} domain.ErrorResponse "RFQ number already exists"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/rfqs/assemble [post]
func (h *RfqHandler) AssembleFromRollup(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	var req domain.AssembleRfqRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	rfq, err := h.rfqService.AssembleFromRollup(r.Context(), projectID, &req)
	if err != nil {
		h.logger.Error("failed to assemble RFQ from rollup",
			zap.Error(err),
			zap.String("project_id", projectID.String()),
			zap.String("rfq_number", req.RfqNumber),
		)
		h.handleRfqError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, rfq)
}

// ListByProject godoc
// @Summary List RFQs in a project
// @Tags RFQs
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {array} domain.RfqDTO
// @Failure 404 {object} domain.ErrorResponse "Project not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/rfqs [get]
func (h *RfqHandler) ListByProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	rfqs, err := h.rfqService.ListByProject(r.Context(), projectID)
	if err != nil {
		h.handleRfqError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, rfqs)
}

// Get godoc
// @Summary Get an RFQ with its lines
// @Tags RFQs
// @Produce json
// @Param id path string true "RFQ ID"
// @Success 200 {object} domain.RfqDTO
// @Failure 404 {object} domain.ErrorResponse "RFQ not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /rfqs/{id} [get]
func (h *RfqHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid RFQ ID")
		return
	}

	rfq, err := h.rfqService.GetByID(r.Context(), id)
	if err != nil {
		h.handleRfqError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, rfq)
}

// AddItem godoc
// @Summary Add a line to an RFQ
// @Tags RFQs
// @Accept json
// @Produce json
// @Param id path string true "RFQ ID"
// @Param request body domain.CreateRfqItemRequest true "Line data"
// @Success 200 {object} domain.RfqDTO "RFQ with the new line"
// @Failure 400 {object} domain.ErrorResponse "Invalid request or material"
// @Failure 404 {object} domain.ErrorResponse "RFQ not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /rfqs/{id}/items [post]
func (h *RfqHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid RFQ ID")
		return
	}

	var req domain.CreateRfqItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	rfq, err := h.rfqService.AddItem(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to add RFQ item", zap.Error(err), zap.String("rfq_id", id.String()))
		h.handleRfqError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, rfq)
}

// SetStatus godoc
// @Summary Update RFQ status
// @Description Move an RFQ through its lifecycle: draft to sent, sent to closed, and back to draft to reopen. Sending stamps the sent time once.
// @Tags RFQs
// @Accept json
// @Produce json
// @Param id path string true "RFQ ID"
// @Param request body domain.UpdateRfqStatusRequest true "Target status"
// @Success 200 {object} domain.RfqDTO "Updated RFQ"
// @Failure 400 {object} domain.ErrorResponse "Invalid status"
// @Failure 404 {object} domain.ErrorResponse "RFQ not found"
// @Failure 409 {object} domain.ErrorResponse "Transition not allowed"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /rfqs/{id}/status [put]
func (h *RfqHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid RFQ ID")
		return
	}

	var req domain.UpdateRfqStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	rfq, err := h.rfqService.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		h.logger.Error("failed to update RFQ status",
			zap.Error(err),
			zap.String("rfq_id", id.String()),
			zap.String("status", string(req.Status)),
		)
		h.handleRfqError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, rfq)
}

// Delete godoc
// @Summary Delete an RFQ
// @Tags RFQs
// @Param id path string true "RFQ ID"
// @Success 204 "RFQ deleted"
// @Failure 404 {object} domain.ErrorResponse "RFQ not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /rfqs/{id} [delete]
func (h *RfqHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid RFQ ID")
		return
	}

	if err := h.rfqService.Delete(r.Context(), id); err != nil {
		h.handleRfqError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleRfqError maps service errors to HTTP status codes
func (h *RfqHandler) handleRfqError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrRfqNotFound):
		respondWithError(w, http.StatusNotFound, "RFQ not found")
	case errors.Is(err, service.ErrProjectNotFound):
		respondWithError(w, http.StatusNotFound, "Project not found")
	case errors.Is(err, service.ErrDuplicateRfqNumber):
		respondWithError(w, http.StatusConflict, "An RFQ with this number already exists in the project")
	case errors.Is(err, service.ErrInvalidStatusTransition):
		respondWithError(w, http.StatusConflict, "This status transition is not allowed")
	case errors.Is(err, service.ErrEmptyRollup):
		respondWithError(w, http.StatusBadRequest, "The rollup has no groups matching the selection")
	case errors.Is(err, service.ErrInvalidMaterial):
		respondWithError(w, http.StatusBadRequest, "Material not found or inactive")
	case errors.Is(err, service.ErrInvalidWbsCategory):
		respondWithError(w, http.StatusBadRequest, "WBS category not found in this project")
	default:
		h.logger.Error("RFQ error", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
