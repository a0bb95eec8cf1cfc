package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shower_intake/internal/models"
	"shower_intake/internal/response"
)

// GetSettingsHandler returns the site settings
// @Summary		Settings
// @Tags			settings
// @Produce		json
// @Success		200	{object}	models.Settings
// @Router			/api/settings [get]
func (h *Handler) GetSettingsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Settings())
}

// UpdateSettingsHandler saves the site settings
// @Summary		Update settings
// @Description	An unknown timezone is saved and the host zone is used in its place
// @Tags			settings
// @Accept			json
// @Produce		json
// @Param			settings	body		models.Settings	true	"Timezone and location"
// @Success		200			{object}	models.Settings
// @Router			/api/settings [put]
func (h *Handler) UpdateSettingsHandler(c *gin.Context) {
	var in models.Settings
	if err := c.ShouldBindJSON(&in); err != nil {
		badBody(c, err)
		return
	}
	s, err := h.svc.UpdateSettings(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// ClearDataHandler clears guests and resets showers
// @Summary		Clear operational data
// @Description	Drops every guest and resets the showers; the ban registry and settings are kept
// @Tags			settings
// @Produce		json
// @Success		200	{object}	response.SuccessResponse
// @Router			/api/data [delete]
func (h *Handler) ClearDataHandler(c *gin.Context) {
	if err := h.svc.ClearAllData(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessResponse{Message: "data cleared"})
}
