package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shower_intake/internal/models"
	"shower_intake/internal/response"
)

// ListBansHandler lists the registry
// @Summary		Ban registry
// @Tags			bans
// @Produce		json
// @Success		200	{array}	service.BanView
// @Router			/api/bans [get]
func (h *Handler) ListBansHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.ListBans())
}

// AddBanHandler adds a registry entry
// @Summary		Add ban
// @Tags			bans
// @Accept			json
// @Produce		json
// @Param			entry	body		models.BannedEntry	true	"Names and ban terms"
// @Success		201		{object}	models.BannedEntry
// @Failure		400		{object}	response.ErrorResponse	"VALIDATION_ERROR"
// @Router			/api/bans [post]
func (h *Handler) AddBanHandler(c *gin.Context) {
	var in models.BannedEntry
	if err := c.ShouldBindJSON(&in); err != nil {
		badBody(c, err)
		return
	}
	entry, err := h.svc.AddBan(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// RemoveBanHandler removes the entry at a list position
// @Summary		Remove ban
// @Tags			bans
// @Produce		json
// @Param			index	path		int	true	"Position in the registry list"
// @Success		200		{object}	response.SuccessResponse
// @Failure		400		{object}	response.ErrorResponse	"VALIDATION_ERROR"
// @Failure		404		{object}	response.ErrorResponse	"NOT_FOUND"
// @Router			/api/bans/{index} [delete]
func (h *Handler) RemoveBanHandler(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    CodeValidation,
			Message: "index must be a number",
		})
		return
	}
	if err := h.svc.RemoveBanAt(c.Request.Context(), index); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessResponse{Message: "ban removed"})
}

// RemoveBanByIDHandler drops the registry entry with the given id
// @Summary		Remove ban by id
// @Tags			bans
// @Produce		json
// @Param			id	path		string	true	"Ban entry ID"
// @Success		200	{object}	response.SuccessResponse
// @Failure		404	{object}	response.ErrorResponse	"NOT_FOUND"
// @Router			/api/bans/id/{id} [delete]
func (h *Handler) RemoveBanByIDHandler(c *gin.Context) {
	if err := h.svc.RemoveBan(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessResponse{Message: "ban removed"})
}

// ClearBansHandler empties the registry
// @Summary		Clear bans
// @Tags			bans
// @Produce		json
// @Success		200	{object}	response.SuccessResponse
// @Router			/api/bans [delete]
func (h *Handler) ClearBansHandler(c *gin.Context) {
	if err := h.svc.ClearBans(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessResponse{Message: "ban registry cleared"})
}
