package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lisiobuddy/lisiobuddy-backend/internal/delivery/http/middleware"
	"github.com/lisiobuddy/lisiobuddy-backend/internal/domain"
	"github.com/lisiobuddy/lisiobuddy-backend/internal/usecase/directory"
	"github.com/lisiobuddy/lisiobuddy-backend/internal/usecase/profile"
)

type ProfileHandler struct {
	profileUseCase *profile.ProfileUseCase
}

func NewProfileHandler(profileUseCase *profile.ProfileUseCase) *ProfileHandler {
	return &ProfileHandler{
		profileUseCase: profileUseCase,
	}
}

// DirectoryResponse is one page of the directory
type DirectoryResponse struct {
	directory.PageResult
	Notifications []Notification `json:"notifications"`
}

// DetailResponse is one profile with its description
type DetailResponse struct {
	Profile       *directory.Detail `json:"profile"`
	Notifications []Notification    `json:"notifications"`
}

// SuggestionsResponse carries description drafts
type SuggestionsResponse struct {
	*profile.DescriptionSuggestions
	Notifications []Notification `json:"notifications"`
}

// ListProfiles returns a filtered page of the directory
// @Summary List profiles
// @Description Search by name or interest, filter by course and status, 10 per page. Emails are redacted unless the viewer is an admin or the owner.
// @Tags profiles
// @Produce json
// @Param q query string false "Search text"
// @Param course query string false "Course, or all"
// @Param status query string false "available, busy, offline, or all"
// @Param page query int false "Page number"
// @Success 200 {object} DirectoryResponse
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /profiles [get]
func (h *ProfileHandler) ListProfiles(c *gin.Context) {
	page := 1
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: "page must be a positive integer",
			})
			return
		}
		page = n
	}

	notes := newNotificationCollector()
	result, err := h.profileUseCase.Browse(c.Request.Context(), sessionFor(c), notes, profile.BrowseQuery{
		Query:  c.Query("q"),
		Course: c.Query("course"),
		Status: c.Query("status"),
		Page:   page,
	})
	if err != nil {
		h.respondError(c, err, notes)
		return
	}

	c.JSON(http.StatusOK, DirectoryResponse{
		PageResult:    result,
		Notifications: notes.All(),
	})
}

// GetProfile returns one profile
// @Summary Get profile
// @Description Get a profile with its description
// @Tags profiles
// @Produce json
// @Param id path string true "Profile ID"
// @Success 200 {object} DetailResponse
// @Failure 404 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /profiles/{id} [get]
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	notes := newNotificationCollector()
	detail, err := h.profileUseCase.Detail(c.Request.Context(), sessionFor(c), notes, c.Param("id"))
	if err != nil {
		h.respondError(c, err, notes)
		return
	}

	c.JSON(http.StatusOK, DetailResponse{
		Profile:       detail,
		Notifications: notes.All(),
	})
}

// GetMyProfile returns the signed-in account's profile
// @Summary Get own profile
// @Tags profiles
// @Security BearerAuth
// @Produce json
// @Success 200 {object} DetailResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /profiles/me [get]
func (h *ProfileHandler) GetMyProfile(c *gin.Context) {
	notes := newNotificationCollector()
	detail, err := h.profileUseCase.Mine(c.Request.Context(), sessionFor(c), notes)
	if err != nil {
		h.respondError(c, err, notes)
		return
	}

	c.JSON(http.StatusOK, DetailResponse{
		Profile:       detail,
		Notifications: notes.All(),
	})
}

// UpdateProfile replaces the editable fields of a profile
// @Summary Update profile
// @Description Admins may edit any profile; members only their own
// @Tags profiles
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Profile ID"
// @Param request body profile.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} DetailResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /profiles/{id} [put]
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req profile.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: fmt.Sprintf("invalid request body: %v", err),
		})
		return
	}

	notes := newNotificationCollector()
	detail, err := h.profileUseCase.Update(c.Request.Context(), sessionFor(c), notes, c.Param("id"), &req)
	if err != nil {
		h.respondError(c, err, notes)
		return
	}

	c.JSON(http.StatusOK, DetailResponse{
		Profile:       detail,
		Notifications: notes.All(),
	})
}

// SuggestDescriptions drafts profile descriptions
// @Summary Suggest descriptions
// @Description Draft descriptions for a profile the viewer may edit
// @Tags profiles
// @Security BearerAuth
// @Produce json
// @Param id path string true "Profile ID"
// @Success 200 {object} SuggestionsResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /profiles/{id}/description-suggestions [post]
func (h *ProfileHandler) SuggestDescriptions(c *gin.Context) {
	notes := newNotificationCollector()
	out, err := h.profileUseCase.SuggestDescriptions(c.Request.Context(), sessionFor(c), notes, c.Param("id"))
	if err != nil {
		h.respondError(c, err, notes)
		return
	}

	c.JSON(http.StatusOK, SuggestionsResponse{
		DescriptionSuggestions: out,
		Notifications:          notes.All(),
	})
}

// sessionFor keeps a missing tracker a nil interface so the view falls back
// to an anonymous viewer.
func sessionFor(c *gin.Context) directory.SessionProvider {
	if tracker := middleware.TrackerFrom(c); tracker != nil {
		return tracker
	}
	return nil
}

func (h *ProfileHandler) respondError(c *gin.Context, err error, notes *notificationCollector) {
	status := http.StatusBadGateway
	message := "profile store unavailable"

	switch {
	case errors.Is(err, domain.ErrAccessDenied):
		status, message = http.StatusForbidden, "access denied"
	case errors.Is(err, domain.ErrProfileNotFound):
		status, message = http.StatusNotFound, "profile not found"
	case errors.Is(err, domain.ErrInvalidStatus), errors.Is(err, domain.ErrInvalidGroup):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrNoEditOpen), errors.Is(err, domain.ErrViewClosed):
		status, message = http.StatusConflict, err.Error()
	default:
		fmt.Printf("[Profile] request failed: %v\n", err)
	}

	c.JSON(status, ErrorResponse{
		Error:         message,
		Notifications: notes.All(),
	})
}
