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

// ProjectHandler handles HTTP requests for project operations
type ProjectHandler struct {
	projectService *service.ProjectService
	logger         *zap.Logger
}

// NewProjectHandler creates a new ProjectHandler instance
func NewProjectHandler(projectService *service.ProjectService, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		logger:         logger,
	}
}

// Create godoc
// @Summary Create a project
// @Description Create a new estimating project. The default WBS tree is seeded on creation.
// @Tags Projects
// @Accept json
// @Produce json
// @Param request body domain.CreateProjectRequest true "Project data"
// @Success 201 {object} domain.ProjectDTO "Created project"
// @Failure 400 {object} domain.ErrorResponse "Invalid request"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects [post]
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	project, err := h.projectService.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create project", zap.Error(err), zap.String("name", req.Name))
		h.handleProjectError(w, err)
		return
	}

	w.Header().Set("Location", "/projects/"+project.ID.String())
	respondJSON(w, http.StatusCreated, project)
}

// List godoc
// @Summary List projects
// @Description Get all projects visible to the caller's company
// @Tags Projects
// @Produce json
// @Success 200 {array} domain.ProjectDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects [get]
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projectService.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list projects", zap.Error(err))
		h.handleProjectError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, projects)
}

// Get godoc
// @Summary Get a project by ID
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} domain.ProjectDTO
// @Failure 404 {object} domain.ErrorResponse "Project not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id} [get]
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	project, err := h.projectService.GetByID(r.Context(), id)
	if err != nil {
		h.handleProjectError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, project)
}

// Update godoc
// @Summary Update a project
// @Description Update project name or description. Only supplied fields change.
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param request body domain.UpdateProjectRequest true "Fields to update"
// @Success 200 {object} domain.ProjectDTO "Updated project"
// @Failure 400 {object} domain.ErrorResponse "Invalid request"
// @Failure 404 {object} domain.ErrorResponse "Project not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id} [put]
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	var req domain.UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	project, err := h.projectService.Update(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to update project", zap.Error(err), zap.String("project_id", id.String()))
		h.handleProjectError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, project)
}

// Delete godoc
// @Summary Delete a project
// @Description Delete a project and all drawings, scales, WBS categories, takeoff items, and RFQs under it
// @Tags Projects
// @Param id path string true "Project ID"
// @Success 204 "Project deleted"
// @Failure 404 {object} domain.ErrorResponse "Project not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id} [delete]
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	if err := h.projectService.Delete(r.Context(), id); err != nil {
		h.logger.Error("failed to delete project", zap.Error(err), zap.String("project_id", id.String()))
		h.handleProjectError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleProjectError maps service errors to HTTP status codes
func (h *ProjectHandler) handleProjectError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrProjectNotFound):
		respondWithError(w, http.StatusNotFound, "Project not found")
	case errors.Is(err, service.ErrPermissionDenied):
		respondWithError(w, http.StatusForbidden, "You do not have access to this project")
	case errors.Is(err, service.ErrUnauthorized):
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
	default:
		h.logger.Error("project error", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
