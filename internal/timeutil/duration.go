package timeutil

import "time"

// MinutesBetween returns whole minutes from start to end, truncated toward
// zero. Missing endpoints yield 0.
func MinutesBetween(start, end *time.Time) int {
	if start == nil || end == nil {
		return 0
	}
	return int(end.Sub(*start) / time.Minute)
}

// SameLocalDay reports whether a and b fall on the same calendar day once both
// are converted into loc.
func SameLocalDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// StartOfDay returns local midnight of t's day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// AgeOn returns completed years between a YYYY-MM-DD birth date and now.
// ok is false when dob is empty or malformed.
func AgeOn(dob string, now time.Time) (age int, ok bool) {
	if dob == "" {
		return 0, false
	}
	birth, err := time.Parse(DayLayout, dob)
	if err != nil {
		return 0, false
	}
	age = now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age, true
}
