package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lisiobuddy/lisiobuddy-backend/internal/delivery/http/middleware"
	"github.com/lisiobuddy/lisiobuddy-backend/internal/domain"
	"github.com/lisiobuddy/lisiobuddy-backend/internal/usecase/auth"
)

type AuthHandler struct {
	authUseCase *auth.AuthUseCase
}

func NewAuthHandler(authUseCase *auth.AuthUseCase) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUseCase,
	}
}

// DevTokenRequest represents development token request
type DevTokenRequest struct {
	AccountID string `json:"account_id" binding:"required,uuid"`
}

// AuthResponse is the response structure
type AuthResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
	AccountID string `json:"account_id"`
}

// MeResponse describes the current viewer
type MeResponse struct {
	Viewer    domain.Viewer `json:"viewer"`
	ExpiresAt int64         `json:"expires_at"`
}

// DevToken issues a token for a local account without an identity provider
// @Summary Development token
// @Description Issue a token for an account id (development only). Roles are never encoded in the token.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body DevTokenRequest true "Account"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/dev-token [post]
func (h *AuthHandler) DevToken(c *gin.Context) {
	var req DevTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body",
		})
		return
	}

	token, session, err := h.authUseCase.IssueDevToken(req.AccountID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "failed to issue token",
		})
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		Token:     token,
		ExpiresAt: session.ExpiresAt.Unix(),
		AccountID: session.AccountID,
	})
}

// Logout handles user logout
// @Summary Logout
// @Description Revoke the token and drop the cached role
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} SuccessResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	tracker := middleware.TrackerFrom(c)
	if tracker == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "unauthorized",
		})
		return
	}

	if err := tracker.SignOut(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "logout failed",
		})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "logged out successfully",
	})
}

// Me returns current viewer info
// @Summary Get current viewer
// @Description Get the authenticated account and its resolved role
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} MeResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	tracker := middleware.TrackerFrom(c)
	if tracker == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "unauthorized",
		})
		return
	}

	session, ok := tracker.CurrentSession()
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "unauthorized",
		})
		return
	}

	c.JSON(http.StatusOK, MeResponse{
		Viewer:    tracker.Viewer(),
		ExpiresAt: session.ExpiresAt.Unix(),
	})
}
