package queue

import (
	"sort"
	"time"

	"shower_intake/internal/models"
)

var statusRank = map[models.Status]int{
	models.StatusShowering: 1,
	models.StatusQueued:    2,
	models.StatusNextUp:    3,
	models.StatusStandby:   4,
	models.StatusLeft:      5,
	models.StatusBanned:    6,
	models.StatusShowered:  7,
	models.StatusDone:      8,
}

// Rank returns the service priority of a status; lower is served first.
func Rank(s models.Status) int {
	if r, ok := statusRank[s]; ok {
		return r
	}
	return len(statusRank) + 1
}

// OrderForService returns the guests ordered by status rank, then check-in
// time ascending. A missing check-in counts as the zero instant and so sorts
// first within its rank. Remaining ties keep their input order.
func OrderForService(guests []models.Guest) []models.Guest {
	entries := OrderEntries(WithStatus(guests))
	out := make([]models.Guest, len(entries))
	for i, e := range entries {
		out[i] = e.Guest
	}
	return out
}

// OrderEntries sorts a copy of already-derived entries the same way as
// OrderForService.
func OrderEntries(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := Rank(out[i].Status), Rank(out[j].Status)
		if ri != rj {
			return ri < rj
		}
		return checkin(out[i].Guest).Before(checkin(out[j].Guest))
	})
	return out
}

func checkin(g models.Guest) time.Time {
	if g.CheckinAt == nil {
		return time.Unix(0, 0)
	}
	return *g.CheckinAt
}
