package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shower_intake/internal/models"
	"shower_intake/internal/service"
)

// IntakeHandler checks a guest in
// @Summary		Guest intake
// @Description	Validates names, checks the ban registry, assigns the day's next number and estimates the shower window
// @Tags			guests
// @Accept			json
// @Produce		json
// @Param			guest	body		service.IntakeRequest	true	"Intake form"
// @Success		201		{object}	models.Guest
// @Failure		400		{object}	response.ErrorResponse	"VALIDATION_ERROR"
// @Failure		409		{object}	response.BannedResponse	"GUEST_BANNED"
// @Failure		500		{object}	response.ErrorResponse	"STORAGE_ERROR"
// @Router			/api/guests [post]
func (h *Handler) IntakeHandler(c *gin.Context) {
	var req service.IntakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}
	g, err := h.svc.Intake(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, g)
}

// QueueHandler lists today's queue
// @Summary		Today's queue
// @Description	Guests checked in today in the site timezone, in service order with derived status
// @Tags			guests
// @Produce		json
// @Param			search	query	string	false	"Case-insensitive name filter"
// @Success		200		{array}	queue.Entry
// @Router			/api/guests/queue [get]
func (h *Handler) QueueHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.TodayQueue(c.Query("search")))
}

// AvailableHandler lists guests that can be assigned
// @Summary		Assignable guests
// @Tags			guests
// @Produce		json
// @Success		200	{array}	queue.Entry
// @Router			/api/guests/available [get]
func (h *Handler) AvailableHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.AvailableGuests())
}

type actionRequest struct {
	Action models.Action `json:"action"`
}

type commentRequest struct {
	Comment string `json:"comment"`
}

// SetActionHandler sets the operator action
// @Summary		Set operator action
// @Tags			guests
// @Accept			json
// @Produce		json
// @Param			id		path		string			true	"Guest ID"
// @Param			action	body		actionRequest	true	"guest_left, move_to_next, standby, guest_banned or empty"
// @Success		200		{object}	models.Guest
// @Failure		400		{object}	response.ErrorResponse	"VALIDATION_ERROR"
// @Failure		404		{object}	response.ErrorResponse	"NOT_FOUND"
// @Router			/api/guests/{id}/action [put]
func (h *Handler) SetActionHandler(c *gin.Context) {
	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}
	g, err := h.svc.SetAction(c.Request.Context(), c.Param("id"), req.Action)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

// SetCommentHandler sets the guest comment
// @Summary		Set comment
// @Tags			guests
// @Accept			json
// @Produce		json
// @Param			id		path		string			true	"Guest ID"
// @Param			comment	body		commentRequest	true	"Comment"
// @Success		200		{object}	models.Guest
// @Failure		404		{object}	response.ErrorResponse	"NOT_FOUND"
// @Router			/api/guests/{id}/comment [put]
func (h *Handler) SetCommentHandler(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}
	g, err := h.svc.SetComment(c.Request.Context(), c.Param("id"), req.Comment)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

// MarkLeftHandler records that a guest left
// @Summary		Mark guest left
// @Tags			guests
// @Produce		json
// @Param			id	path		string	true	"Guest ID"
// @Success		200	{object}	models.Guest
// @Failure		404	{object}	response.ErrorResponse	"NOT_FOUND"
// @Router			/api/guests/{id}/left [post]
func (h *Handler) MarkLeftHandler(c *gin.Context) {
	g, err := h.svc.MarkLeft(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

// MarkReturnedHandler puts a guest who left back in the queue
// @Summary		Mark guest returned
// @Tags			guests
// @Produce		json
// @Param			id	path		string	true	"Guest ID"
// @Success		200	{object}	models.Guest
// @Failure		404	{object}	response.ErrorResponse	"NOT_FOUND"
// @Failure		409	{object}	response.ErrorResponse	"INVALID_TRANSITION"
// @Router			/api/guests/{id}/returned [post]
func (h *Handler) MarkReturnedHandler(c *gin.Context) {
	g, err := h.svc.MarkReturned(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

type banGuestResponse struct {
	Guest models.Guest       `json:"guest"`
	Entry models.BannedEntry `json:"entry"`
}

// BanGuestHandler bans a checked-in guest
// @Summary		Ban guest
// @Description	Adds the guest's name to the registry and flags the record
// @Tags			guests
// @Accept			json
// @Produce		json
// @Param			id	path		string				true	"Guest ID"
// @Param			ban	body		service.BanRequest	true	"Ban terms"
// @Success		200	{object}	banGuestResponse
// @Failure		400	{object}	response.ErrorResponse	"VALIDATION_ERROR"
// @Failure		404	{object}	response.ErrorResponse	"NOT_FOUND"
// @Router			/api/guests/{id}/ban [post]
func (h *Handler) BanGuestHandler(c *gin.Context) {
	var req service.BanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}
	g, entry, err := h.svc.BanGuest(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, banGuestResponse{Guest: g, Entry: entry})
}
