// Package report derives counts and time-bucketed metrics from guest history.
// Every calendar comparison happens in the caller's location.
package report

import (
	"fmt"
	"math"
	"time"

	"github.com/samber/lo"

	"shower_intake/internal/models"
	"shower_intake/internal/timeutil"
)

// CompletedOnDay keeps guests whose shower ended on day's local calendar date.
func CompletedOnDay(guests []models.Guest, day time.Time, loc *time.Location) []models.Guest {
	return lo.Filter(guests, func(g models.Guest, _ int) bool {
		return g.ShowerEndedAt != nil && timeutil.SameLocalDay(*g.ShowerEndedAt, day, loc)
	})
}

// CompletedSince keeps guests whose shower ended at or after since.
func CompletedSince(guests []models.Guest, since time.Time) []models.Guest {
	return lo.Filter(guests, func(g models.Guest, _ int) bool {
		return g.ShowerEndedAt != nil && !g.ShowerEndedAt.Before(since)
	})
}

// ParseRange turns "7d", "30d" or "90d" into a day count. Anything else,
// including an empty string, means 7.
func ParseRange(r string) int {
	switch r {
	case "30d":
		return 30
	case "90d":
		return 90
	}
	return 7
}

// Summary holds the headline numbers for a set of completed showers.
type Summary struct {
	TotalShowers    int `json:"total_showers"`
	TotalMinutes    int `json:"total_minutes"`
	AverageMinutes  int `json:"average_minutes"`
	HomelessCount   int `json:"homeless_count"`
	VeteranCount    int `json:"veteran_count"`
	NewGuestCount   int `json:"new_guest_count"`
	WithDurationCnt int `json:"with_duration_count"`
}

// Duration is the whole-minute length of a guest's shower; guests missing
// either timestamp report ok=false.
func Duration(g models.Guest) (minutes int, ok bool) {
	if g.ShowerStartedAt == nil || g.ShowerEndedAt == nil {
		return 0, false
	}
	return timeutil.MinutesBetween(g.ShowerStartedAt, g.ShowerEndedAt), true
}

// Summarize counts every guest but only sums durations that are known. The
// average divides by the full count and rounds half away from zero.
func Summarize(guests []models.Guest) Summary {
	s := Summary{TotalShowers: len(guests)}
	for _, g := range guests {
		if m, ok := Duration(g); ok {
			s.TotalMinutes += m
			s.WithDurationCnt++
		}
		if g.Homeless {
			s.HomelessCount++
		}
		if g.Veteran {
			s.VeteranCount++
		}
		if g.New {
			s.NewGuestCount++
		}
	}
	if s.TotalShowers > 0 {
		s.AverageMinutes = int(math.Round(float64(s.TotalMinutes) / float64(s.TotalShowers)))
	}
	return s
}

// HourBucket is one hour of the day and how many showers started in it.
type HourBucket struct {
	Hour  int    `json:"hour"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// HourlyUsage buckets guests by the local hour their shower started. Guests
// without a start time are left out.
func HourlyUsage(guests []models.Guest, loc *time.Location) []HourBucket {
	out := make([]HourBucket, 24)
	for h := range out {
		out[h] = HourBucket{Hour: h, Label: fmt.Sprintf("%d:00", h)}
	}
	for _, g := range guests {
		if g.ShowerStartedAt == nil {
			continue
		}
		out[g.ShowerStartedAt.In(loc).Hour()].Count++
	}
	return out
}

// Count is a labelled tally.
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

var durationBands = []struct {
	label string
	max   int
}{
	{"0-10 min", 10},
	{"11-20 min", 20},
	{"21-30 min", 30},
	{"31+ min", math.MaxInt},
}

// DurationBuckets sorts known durations into the 0-10, 11-20, 21-30 and 31+
// minute bands.
func DurationBuckets(guests []models.Guest) []Count {
	out := make([]Count, len(durationBands))
	for i, b := range durationBands {
		out[i].Label = b.label
	}
	for _, g := range guests {
		m, ok := Duration(g)
		if !ok {
			continue
		}
		for i, b := range durationBands {
			if m <= b.max {
				out[i].Count++
				break
			}
		}
	}
	return out
}

// RaceBreakdown tallies guests by race/ethnicity label in first-seen order.
// Empty codes count as "Unknown".
func RaceBreakdown(guests []models.Guest) []Count {
	groups := lo.GroupBy(guests, func(g models.Guest) string {
		if g.RaceEthnicity == "" {
			return "Unknown"
		}
		return g.RaceEthnicity
	})
	order := lo.Uniq(lo.Map(guests, func(g models.Guest, _ int) string {
		if g.RaceEthnicity == "" {
			return "Unknown"
		}
		return g.RaceEthnicity
	}))
	return lo.Map(order, func(code string, _ int) Count {
		return Count{Label: models.RaceEthnicityLabel(code), Count: len(groups[code])}
	})
}

const (
	ServiceShowerOnly     = "Shower Only"
	ServiceShowerClothing = "Shower + Clothing"
	ServiceClothingOnly   = "Clothing Only"
)

// ServiceBreakdown tallies which combination of shower and clothing service
// each guest asked for. Guests with neither are not counted.
func ServiceBreakdown(guests []models.Guest) []Count {
	out := []Count{{Label: ServiceShowerOnly}, {Label: ServiceShowerClothing}, {Label: ServiceClothingOnly}}
	for _, g := range guests {
		switch {
		case g.Shower && g.Clothing:
			out[1].Count++
		case g.Shower:
			out[0].Count++
		case g.Clothing:
			out[2].Count++
		}
	}
	return out
}

// DayPoint is one local day of the daily series.
type DayPoint struct {
	Date         string `json:"date"` // MM/DD
	Showers      int    `json:"showers"`
	TotalMinutes int    `json:"total_minutes"`
}

// DailySeries returns one point per local day from from to to inclusive,
// counting showers by the local day they ended.
func DailySeries(guests []models.Guest, from, to time.Time, loc *time.Location) []DayPoint {
	var out []DayPoint
	last := timeutil.StartOfDay(to, loc)
	for day := timeutil.StartOfDay(from, loc); !day.After(last); day = day.AddDate(0, 0, 1) {
		onDay := CompletedOnDay(guests, day, loc)
		p := DayPoint{Date: day.Format("01/02"), Showers: len(onDay)}
		for _, g := range onDay {
			m, _ := Duration(g)
			p.TotalMinutes += m
		}
		out = append(out, p)
	}
	return out
}

// Metrics is everything the metrics view shows for one range.
type Metrics struct {
	RangeDays int          `json:"range_days"`
	From      time.Time    `json:"from"`
	To        time.Time    `json:"to"`
	Summary   Summary      `json:"summary"`
	Daily     []DayPoint   `json:"daily"`
	Hourly    []HourBucket `json:"hourly"`
	Durations []Count      `json:"durations"`
	Race      []Count      `json:"race"`
	Services  []Count      `json:"services"`
}

// BuildMetrics computes the metrics for showers completed in the last
// rangeDays days before now.
func BuildMetrics(guests []models.Guest, now time.Time, rangeDays int, loc *time.Location) Metrics {
	from := now.AddDate(0, 0, -rangeDays)
	done := CompletedSince(guests, from)
	return Metrics{
		RangeDays: rangeDays,
		From:      from,
		To:        now,
		Summary:   Summarize(done),
		Daily:     DailySeries(done, from, now, loc),
		Hourly:    HourlyUsage(done, loc),
		Durations: DurationBuckets(done),
		Race:      RaceBreakdown(done),
		Services:  ServiceBreakdown(done),
	}
}
