package service

import (
	"io"

	"shower_intake/internal/queue"
	"shower_intake/internal/report"
)

// LogQuery selects and orders the daily log.
type LogQuery struct {
	Search string
	Sort   string
	Dir    string
}

// TodayLog lists guests whose shower ended today in the site zone.
func (c *Controller) TodayLog(q LogQuery) []report.LogRow {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.todayLog(q)
}

func (c *Controller) todayLog(q LogQuery) []report.LogRow {
	now := c.clock.Now()
	day := report.CompletedOnDay(c.guests, now, c.location())
	field, asc := report.ParseSort(q.Sort, q.Dir)
	rows := report.SortLog(queue.Search(day, q.Search), field, asc)
	return report.BuildLog(rows, day, now, c.settings.Timezone)
}

// Metrics covers showers completed in the range ("7d", "30d" or "90d").
func (c *Controller) Metrics(rangeName string) report.Metrics {
	c.mu.Lock()
	defer c.mu.Unlock()
	return report.BuildMetrics(c.guests, c.clock.Now(), report.ParseRange(rangeName), c.location())
}

// Export writes today's log and the metrics for rangeName as a workbook.
func (c *Controller) Export(w io.Writer, rangeName string) error {
	c.mu.Lock()
	rows := c.todayLog(LogQuery{})
	m := report.BuildMetrics(c.guests, c.clock.Now(), report.ParseRange(rangeName), c.location())
	c.mu.Unlock()
	return report.WriteWorkbook(w, rows, m)
}
