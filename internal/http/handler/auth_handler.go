package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/blueline-estimating/takeoff-api/internal/auth"
)

// AuthHandler handles authentication related HTTP requests
type AuthHandler struct {
	logger *zap.Logger
}

// NewAuthHandler creates a new AuthHandler instance
func NewAuthHandler(logger *zap.Logger) *AuthHandler {
	return &AuthHandler{logger: logger}
}

// CurrentUserDTO describes the authenticated caller
type CurrentUserDTO struct {
	UserID      string   `json:"userId"`
	DisplayName string   `json:"displayName,omitempty"`
	Email       string   `json:"email,omitempty"`
	Roles       []string `json:"roles"`
	CompanyID   string   `json:"companyId"`
	IsAdmin     bool     `json:"isAdmin"`
}

// Me godoc
// @Summary Get the current user
// @Description Return identity and company information from the caller's token
// @Tags Auth
// @Produce json
// @Success 200 {object} handler.CurrentUserDTO
// @Failure 401 {object} domain.ErrorResponse "Not authenticated"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	respondJSON(w, http.StatusOK, CurrentUserDTO{
		UserID:      userCtx.UserID.String(),
		DisplayName: userCtx.DisplayName,
		Email:       userCtx.Email,
		Roles:       userCtx.RolesAsStrings(),
		CompanyID:   userCtx.CompanyID.String(),
		IsAdmin:     userCtx.IsAdmin(),
	})
}
