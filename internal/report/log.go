package report

import (
	"sort"
	"strings"
	"time"

	"shower_intake/internal/models"
	"shower_intake/internal/timeutil"
)

// SortField is a column the daily log can be ordered by.
type SortField string

const (
	SortEndedAt    SortField = "shower_ended_at"
	SortStartedAt  SortField = "shower_started_at"
	SortCheckinAt  SortField = "checkin_at"
	SortDuration   SortField = "duration"
	SortShowerName SortField = "shower_name"
	SortNumber     SortField = "number"
	SortLastName   SortField = "last_name"
	SortTimeSince  SortField = "time_between"
)

// ParseSort falls back to shower_ended_at descending for unknown input.
func ParseSort(field, dir string) (SortField, bool) {
	f := SortField(field)
	switch f {
	case SortEndedAt, SortStartedAt, SortCheckinAt, SortDuration,
		SortShowerName, SortNumber, SortLastName, SortTimeSince:
	default:
		f = SortEndedAt
	}
	return f, strings.EqualFold(dir, "asc")
}

func timeOrEpoch(t *time.Time) time.Time {
	if t == nil {
		return time.Unix(0, 0)
	}
	return *t
}

func less(a, b models.Guest, field SortField) bool {
	switch field {
	case SortStartedAt, SortTimeSince:
		return timeOrEpoch(a.ShowerStartedAt).Before(timeOrEpoch(b.ShowerStartedAt))
	case SortCheckinAt:
		return timeOrEpoch(a.CheckinAt).Before(timeOrEpoch(b.CheckinAt))
	case SortDuration:
		da, _ := Duration(a)
		db, _ := Duration(b)
		return da < db
	case SortShowerName:
		return a.ShowerName < b.ShowerName
	case SortNumber:
		return a.Number < b.Number
	case SortLastName:
		return strings.ToLower(a.LastName) < strings.ToLower(b.LastName)
	default:
		return timeOrEpoch(a.ShowerEndedAt).Before(timeOrEpoch(b.ShowerEndedAt))
	}
}

// SortLog returns a sorted copy of the log. Ties keep their input order.
func SortLog(guests []models.Guest, field SortField, asc bool) []models.Guest {
	out := append([]models.Guest(nil), guests...)
	sort.SliceStable(out, func(i, j int) bool {
		if asc {
			return less(out[i], out[j], field)
		}
		return less(out[j], out[i], field)
	})
	return out
}

// TimeSincePrevious is the gap between this guest's shower start and the
// latest shower in log that ended at or before it. ok is false when the guest
// never started or nobody showered before them.
func TimeSincePrevious(g models.Guest, log []models.Guest) (minutes int, ok bool) {
	if g.ShowerStartedAt == nil {
		return 0, false
	}
	var prev *time.Time
	for i := range log {
		other := log[i]
		if other.ID == g.ID || other.ShowerEndedAt == nil || other.ShowerEndedAt.After(*g.ShowerStartedAt) {
			continue
		}
		if prev == nil || other.ShowerEndedAt.After(*prev) {
			prev = other.ShowerEndedAt
		}
	}
	if prev == nil {
		return 0, false
	}
	return timeutil.MinutesBetween(prev, g.ShowerStartedAt), true
}

// LogRow is one line of the daily log, rendered in the operator's zone.
type LogRow struct {
	models.Guest
	Age             int    `json:"age,omitempty"`
	CheckinTime     string `json:"checkin_time"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	DurationMinutes int    `json:"duration_minutes"`
	Duration        string `json:"duration"`
	TimeBetween     string `json:"time_between"`
}

// BuildLog renders rows for guests already filtered to one day, in their
// given order. Durations and gaps are measured against the whole day.
func BuildLog(guests, day []models.Guest, now time.Time, zone string) []LogRow {
	rows := make([]LogRow, 0, len(guests))
	for _, g := range guests {
		r := LogRow{
			Guest:       g,
			CheckinTime: timeutil.FormatTime(g.CheckinAt, zone),
			StartTime:   timeutil.FormatTime(g.ShowerStartedAt, zone),
			EndTime:     timeutil.FormatTime(g.ShowerEndedAt, zone),
			Duration:    "-",
			TimeBetween: "-",
		}
		if age, ok := timeutil.AgeOn(g.DOB, now); ok {
			r.Age = age
		}
		if m, ok := Duration(g); ok {
			r.DurationMinutes = m
			r.Duration = timeutil.FormatGap(m)
		}
		if g.ShowerStartedAt != nil {
			if m, ok := TimeSincePrevious(g, day); ok {
				r.TimeBetween = timeutil.FormatGap(m)
			} else {
				r.TimeBetween = "First shower"
			}
		}
		rows = append(rows, r)
	}
	return rows
}
