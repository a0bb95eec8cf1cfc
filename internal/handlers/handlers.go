package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shower_intake/internal/bans"
	"shower_intake/internal/queue"
	"shower_intake/internal/response"
	"shower_intake/internal/service"
	"shower_intake/internal/showers"
)

// Error codes.
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeGuestBanned       = "GUEST_BANNED"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeNotFound          = "NOT_FOUND"
	CodeStorage           = "STORAGE_ERROR"
)

// Handler serves the HTTP API over the controller.
type Handler struct {
	svc *service.Controller
	log *zap.SugaredLogger
}

func New(svc *service.Controller, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log.Sugar()}
}

// Register mounts every route under /api. ws serves /api/ws/:topic.
func (h *Handler) Register(r *gin.Engine, ws gin.HandlerFunc) {
	api := r.Group("/api")

	guests := api.Group("/guests")
	{
		guests.POST("", h.IntakeHandler)
		guests.GET("/queue", h.QueueHandler)
		guests.GET("/available", h.AvailableHandler)
		guests.PUT("/:id/action", h.SetActionHandler)
		guests.PUT("/:id/comment", h.SetCommentHandler)
		guests.POST("/:id/left", h.MarkLeftHandler)
		guests.POST("/:id/returned", h.MarkReturnedHandler)
		guests.POST("/:id/ban", h.BanGuestHandler)
	}

	sh := api.Group("/showers")
	{
		sh.GET("", h.ShowersHandler)
		sh.POST("/:id/assign", h.AssignHandler)
		sh.POST("/:id/cleaning", h.StartCleaningHandler)
		sh.POST("/:id/ready", h.MarkReadyHandler)
		sh.POST("/:id/maintenance", h.StartMaintenanceHandler)
	}

	b := api.Group("/bans")
	{
		b.GET("", h.ListBansHandler)
		b.POST("", h.AddBanHandler)
		b.DELETE("", h.ClearBansHandler)
		b.DELETE("/:index", h.RemoveBanHandler)
		b.DELETE("/id/:id", h.RemoveBanByIDHandler)
	}

	api.GET("/logs/today", h.TodayLogHandler)
	api.GET("/metrics", h.MetricsHandler)
	api.GET("/metrics/export", h.ExportHandler)
	api.GET("/settings", h.GetSettingsHandler)
	api.PUT("/settings", h.UpdateSettingsHandler)
	api.DELETE("/data", h.ClearDataHandler)

	if ws != nil {
		api.GET("/ws/:topic", ws)
	}
}

// fail writes the error response that matches err.
func (h *Handler) fail(c *gin.Context, err error) {
	var verr *queue.ValidationError
	var berr *bans.BannedError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    CodeValidation,
			Message: err.Error(),
			Details: strings.Join(verr.Fields, ","),
		})
	case errors.Is(err, queue.ErrValidationFailed), errors.Is(err, bans.ErrInvalidEntry):
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Code: CodeValidation, Message: err.Error()})
	case errors.As(err, &berr):
		c.JSON(http.StatusConflict, response.BannedResponse{
			ErrorResponse: response.ErrorResponse{Code: CodeGuestBanned, Message: err.Error()},
			Entry:         berr.Entry,
		})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, response.ErrorResponse{Code: CodeNotFound, Message: err.Error()})
	case errors.Is(err, showers.ErrInvalidTransition), errors.Is(err, service.ErrInvalidState):
		c.JSON(http.StatusConflict, response.ErrorResponse{Code: CodeInvalidTransition, Message: err.Error()})
	default:
		h.log.Errorw("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    CodeStorage,
			Message: "could not save changes",
			Details: err.Error(),
		})
	}
}

func badBody(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, response.ErrorResponse{
		Code:    CodeValidation,
		Message: "invalid request body",
		Details: err.Error(),
	})
}
