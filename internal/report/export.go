package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	sheetLog     = "Shower Log"
	sheetSummary = "Summary"
	sheetDaily   = "Daily"
	sheetHourly  = "Hourly"
	sheetBreak   = "Breakdowns"
)

var logHeaders = []interface{}{
	"#", "First Name", "Last Name", "Age", "Shower", "Check-in", "Start", "End", "Duration (min)", "Time Between",
}

// WriteWorkbook writes the day's log and the metric tables as an .xlsx
// workbook with one sheet per table.
func WriteWorkbook(w io.Writer, log []LogRow, m Metrics) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, name := range []string{sheetLog, sheetSummary, sheetDaily, sheetHourly, sheetBreak} {
		index, err := f.NewSheet(name)
		if err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
		if i == 0 {
			f.SetActiveSheet(index)
		}
	}
	f.DeleteSheet("Sheet1")

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	rows := make([][]interface{}, 0, len(log))
	for _, r := range log {
		age := interface{}("")
		if r.Age > 0 {
			age = r.Age
		}
		rows = append(rows, []interface{}{
			r.Number, r.FirstName, r.LastName, age, r.ShowerName,
			r.CheckinTime, r.StartTime, r.EndTime, r.DurationMinutes, r.TimeBetween,
		})
	}
	if err := writeTable(f, sheetLog, 1, logHeaders, rows, headerStyle); err != nil {
		return err
	}

	s := m.Summary
	summary := [][]interface{}{
		{"Range (days)", m.RangeDays},
		{"Total showers", s.TotalShowers},
		{"Total minutes", s.TotalMinutes},
		{"Average minutes", s.AverageMinutes},
		{"Homeless", s.HomelessCount},
		{"Veterans", s.VeteranCount},
		{"New guests", s.NewGuestCount},
	}
	if err := writeTable(f, sheetSummary, 1, []interface{}{"Metric", "Value"}, summary, headerStyle); err != nil {
		return err
	}

	daily := make([][]interface{}, 0, len(m.Daily))
	for _, p := range m.Daily {
		daily = append(daily, []interface{}{p.Date, p.Showers, p.TotalMinutes})
	}
	if err := writeTable(f, sheetDaily, 1, []interface{}{"Date", "Showers", "Minutes"}, daily, headerStyle); err != nil {
		return err
	}

	hourly := make([][]interface{}, 0, len(m.Hourly))
	for _, h := range m.Hourly {
		hourly = append(hourly, []interface{}{h.Label, h.Count})
	}
	if err := writeTable(f, sheetHourly, 1, []interface{}{"Hour", "Showers"}, hourly, headerStyle); err != nil {
		return err
	}

	row := 1
	for _, block := range []struct {
		title  string
		counts []Count
	}{
		{"Duration", m.Durations},
		{"Race/Ethnicity", m.Race},
		{"Service", m.Services},
	} {
		data := make([][]interface{}, 0, len(block.counts))
		for _, c := range block.counts {
			data = append(data, []interface{}{c.Label, c.Count})
		}
		if err := writeTable(f, sheetBreak, row, []interface{}{block.title, "Count"}, data, headerStyle); err != nil {
			return err
		}
		row += len(data) + 2
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// writeTable puts a styled header at startRow and the rows below it.
func writeTable(f *excelize.File, sheet string, startRow int, headers []interface{}, rows [][]interface{}, style int) error {
	first, err := excelize.CoordinatesToCellName(1, startRow)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(headers), startRow)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, first, &headers); err != nil {
		return fmt.Errorf("failed to set header on %s: %w", sheet, err)
	}
	if err := f.SetCellStyle(sheet, first, last, style); err != nil {
		return fmt.Errorf("failed to set header style on %s: %w", sheet, err)
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, startRow+1+i)
		if err != nil {
			return err
		}
		r := r
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("failed to set row %d on %s: %w", startRow+1+i, sheet, err)
		}
	}
	return nil
}
