package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/fitcoach-api/internal/models"
	"github.com/noah-isme/fitcoach-api/internal/service"
	"github.com/noah-isme/fitcoach-api/pkg/response"
)

// SettingsHandler exposes account settings endpoints.
type SettingsHandler struct {
	settings *service.SettingsService
}

// NewSettingsHandler constructs SettingsHandler.
func NewSettingsHandler(settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Get godoc
// @Summary Get account settings
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	user, err := coachID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	settings, err := h.settings.Get(c.Request.Context(), user)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}

// UpdateProfile godoc
// @Summary Update profile
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body service.UpdateProfileRequest true "Profile payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /settings/profile [put]
func (h *SettingsHandler) UpdateProfile(c *gin.Context) {
	user, err := coachID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	settings, err := h.settings.UpdateProfile(c.Request.Context(), user, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}

// UpdatePreferences godoc
// @Summary Update preferences
// @Description Partial update; omitted fields keep their value.
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body service.UpdatePreferencesRequest true "Preferences payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /settings/preferences [put]
func (h *SettingsHandler) UpdatePreferences(c *gin.Context) {
	user, err := coachID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	prefs, err := h.settings.UpdatePreferences(c.Request.Context(), user, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, prefs, nil)
}

// ChangePassword godoc
// @Summary Change password
// @Tags Settings
// @Accept json
// @Param payload body models.ChangePasswordRequest true "Password payload"
// @Success 204
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /settings/password [post]
func (h *SettingsHandler) ChangePassword(c *gin.Context) {
	user, err := coachID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	if err := h.settings.ChangePassword(c.Request.Context(), user, req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
