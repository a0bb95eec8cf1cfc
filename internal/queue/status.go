// Package queue holds the pure guest queue logic: status derivation,
// service ordering, wait estimates and search. Nothing here mutates its input.
package queue

import "shower_intake/internal/models"

// DeriveStatus maps a guest record to its canonical status. The first
// matching rule wins: ban flag, left, showered, showering, then the
// operator action, defaulting to Queued. A left_at that a later returned_at
// supersedes no longer counts as left.
func DeriveStatus(g models.Guest) models.Status {
	switch {
	case g.Banned:
		return models.StatusBanned
	case HasLeft(g):
		return models.StatusLeft
	case g.ShowerEndedAt != nil:
		return models.StatusShowered
	case g.ShowerStartedAt != nil:
		return models.StatusShowering
	}

	switch g.Action {
	case models.ActionGuestLeft:
		return models.StatusLeft
	case models.ActionStandby:
		return models.StatusStandby
	case models.ActionMoveToNext:
		return models.StatusNextUp
	}
	return models.StatusQueued
}

// HasLeft reports whether left_at is set and not superseded by a return.
func HasLeft(g models.Guest) bool {
	return g.LeftAt != nil && (g.ReturnedAt == nil || g.ReturnedAt.Before(*g.LeftAt))
}

// Entry is a guest paired with the status derived for this read.
type Entry struct {
	models.Guest
	Status models.Status `json:"status"`
}

// WithStatus derives the status of each guest once and keeps it alongside
// the record.
func WithStatus(guests []models.Guest) []Entry {
	out := make([]Entry, len(guests))
	for i, g := range guests {
		out[i] = Entry{Guest: g, Status: DeriveStatus(g)}
	}
	return out
}

// Assignable reports whether a guest in status s may be put in a shower.
func Assignable(s models.Status) bool {
	return s == models.StatusQueued || s == models.StatusNextUp
}
