package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type assignRequest struct {
	GuestID string `json:"guest_id" binding:"required"`
}

// ShowersHandler lists the showers
// @Summary		Showers
// @Description	Every shower with its state, countdown and occupant
// @Tags			showers
// @Produce		json
// @Success		200	{array}	service.ShowerView
// @Router			/api/showers [get]
func (h *Handler) ShowersHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Showers())
}

// AssignHandler puts a guest in a ready shower
// @Summary		Assign guest
// @Tags			showers
// @Accept			json
// @Produce		json
// @Param			id		path		string			true	"Shower ID"
// @Param			guest	body		assignRequest	true	"Guest to assign"
// @Success		200		{object}	service.ShowerView
// @Failure		404		{object}	response.ErrorResponse	"NOT_FOUND"
// @Failure		409		{object}	response.ErrorResponse	"INVALID_TRANSITION"
// @Router			/api/showers/{id}/assign [post]
func (h *Handler) AssignHandler(c *gin.Context) {
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}
	v, err := h.svc.Assign(c.Request.Context(), c.Param("id"), req.GuestID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// StartCleaningHandler ends the shower early and starts cleaning
// @Summary		Start cleaning
// @Tags			showers
// @Produce		json
// @Param			id	path		string	true	"Shower ID"
// @Success		200	{object}	service.ShowerView
// @Failure		404	{object}	response.ErrorResponse	"NOT_FOUND"
// @Failure		409	{object}	response.ErrorResponse	"INVALID_TRANSITION"
// @Router			/api/showers/{id}/cleaning [post]
func (h *Handler) StartCleaningHandler(c *gin.Context) {
	v, err := h.svc.StartCleaning(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// MarkReadyHandler returns a shower to service
// @Summary		Mark ready
// @Tags			showers
// @Produce		json
// @Param			id	path		string	true	"Shower ID"
// @Success		200	{object}	service.ShowerView
// @Failure		404	{object}	response.ErrorResponse	"NOT_FOUND"
// @Failure		409	{object}	response.ErrorResponse	"INVALID_TRANSITION"
// @Router			/api/showers/{id}/ready [post]
func (h *Handler) MarkReadyHandler(c *gin.Context) {
	v, err := h.svc.MarkReady(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// StartMaintenanceHandler takes a shower out of service
// @Summary		Start maintenance
// @Tags			showers
// @Produce		json
// @Param			id	path		string	true	"Shower ID"
// @Success		200	{object}	service.ShowerView
// @Failure		404	{object}	response.ErrorResponse	"NOT_FOUND"
// @Failure		409	{object}	response.ErrorResponse	"INVALID_TRANSITION"
// @Router			/api/showers/{id}/maintenance [post]
func (h *Handler) StartMaintenanceHandler(c *gin.Context) {
	v, err := h.svc.StartMaintenance(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}
