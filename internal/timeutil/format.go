package timeutil

import (
	"fmt"
	"time"
)

const (
	dateLayout     = "01/02/2006"
	timeLayout     = "3:04 PM"
	dateTimeLayout = "01/02/2006 15:04"
	// DayLayout is the layout of date-only fields such as dob and banned_until_date.
	DayLayout = "2006-01-02"
)

// FormatDate renders t as MM/DD/YYYY in the named zone. Display formatting
// never fails: an unknown zone falls back to the host zone and a nil time
// renders as an empty string.
func FormatDate(t *time.Time, zone string) string {
	return format(t, zone, dateLayout)
}

// FormatTime renders t as h:mm AM/PM.
func FormatTime(t *time.Time, zone string) string {
	return format(t, zone, timeLayout)
}

// FormatDateTime renders t as MM/DD/YYYY HH:mm (24h).
func FormatDateTime(t *time.Time, zone string) string {
	return format(t, zone, dateTimeLayout)
}

func format(t *time.Time, zone, layout string) string {
	if t == nil {
		return ""
	}
	loc, _ := ResolveLocation(zone)
	return t.In(loc).Format(layout)
}

// FormatCountdown renders the remaining time as MM:SS; elapsed or negative
// durations render as 00:00.
func FormatCountdown(d time.Duration) string {
	secs := int(d / time.Second)
	if secs <= 0 {
		return "00:00"
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// FormatGap renders a minute count the way the shower log shows time between
// showers.
func FormatGap(minutes int) string {
	switch {
	case minutes < 60:
		return fmt.Sprintf("%d min", minutes)
	case minutes < 1440:
		return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
	default:
		return fmt.Sprintf("%dd %dh", minutes/1440, (minutes%1440)/60)
	}
}
