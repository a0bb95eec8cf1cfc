package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"shower_intake/internal/report"
	"shower_intake/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// TodayLogHandler returns today's shower log
// @Summary		Today's shower log
// @Description	Guests whose shower ended today in the site timezone
// @Tags			reports
// @Produce		json
// @Param			search	query	string	false	"Name filter"
// @Param			sort	query	string	false	"shower_ended_at, shower_started_at, checkin_at, duration, shower_name, number, last_name, time_between"
// @Param			dir		query	string	false	"asc or desc (default)"
// @Success		200		{array}	report.LogRow
// @Router			/api/logs/today [get]
func (h *Handler) TodayLogHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.TodayLog(service.LogQuery{
		Search: c.Query("search"),
		Sort:   c.Query("sort"),
		Dir:    c.Query("dir"),
	}))
}

// MetricsHandler returns usage metrics
// @Summary		Metrics
// @Tags			reports
// @Produce		json
// @Param			range	query		string	false	"7d (default), 30d or 90d"
// @Success		200		{object}	report.Metrics
// @Router			/api/metrics [get]
func (h *Handler) MetricsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Metrics(c.Query("range")))
}

// ExportHandler downloads the log and metrics as a workbook
// @Summary		Export workbook
// @Tags			reports
// @Produce		application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param			range	query	string	false	"7d (default), 30d or 90d"
// @Success		200		{file}	file
// @Failure		500		{object}	response.ErrorResponse	"STORAGE_ERROR"
// @Router			/api/metrics/export [get]
func (h *Handler) ExportHandler(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.svc.Export(&buf, c.Query("range")); err != nil {
		h.fail(c, err)
		return
	}
	days := report.ParseRange(c.Query("range"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="shower-report-%dd.xlsx"`, days))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
