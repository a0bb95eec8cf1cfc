// Package bans is the registry of names barred from intake.
//
// Matching is a case-insensitive exact match on first and last name. Date of
// birth is stored but not matched on, and an until-date that has passed does
// not lift the block: expiry is left to whoever presents the entry.
package bans

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"shower_intake/internal/idgen"
	"shower_intake/internal/models"
	"shower_intake/internal/timeutil"
)

var (
	ErrGuestBanned  = errors.New("guest is banned")
	ErrNotFound     = errors.New("ban entry not found")
	ErrInvalidEntry = errors.New("invalid ban entry")
)

// BannedError is returned by intake when a name matches the registry. It
// carries the matched entry so the caller can show the ban details.
type BannedError struct {
	Entry models.BannedEntry
}

func (e *BannedError) Error() string {
	if e.Entry.IsPermanentlyBanned {
		return fmt.Sprintf("%s %s is permanently banned", e.Entry.FirstName, e.Entry.LastName)
	}
	if e.Entry.BannedUntilDate != "" {
		return fmt.Sprintf("%s %s is banned until %s", e.Entry.FirstName, e.Entry.LastName, e.Entry.BannedUntilDate)
	}
	return fmt.Sprintf("%s %s is banned", e.Entry.FirstName, e.Entry.LastName)
}

func (e *BannedError) Is(target error) bool { return target == ErrGuestBanned }

func matches(e models.BannedEntry, first, last string) bool {
	return strings.EqualFold(e.FirstName, first) && strings.EqualFold(e.LastName, last)
}

// IsBanned reports whether any registry entry matches the name.
func IsBanned(first, last string, registry []models.BannedEntry) bool {
	_, ok := Lookup(first, last, registry)
	return ok
}

// Lookup returns the first entry matching the name, in registry order.
func Lookup(first, last string, registry []models.BannedEntry) (models.BannedEntry, bool) {
	return lo.Find(registry, func(e models.BannedEntry) bool {
		return matches(e, first, last)
	})
}

// Check returns a *BannedError for a matching name, nil otherwise.
func Check(first, last string, registry []models.BannedEntry) error {
	if e, ok := Lookup(first, last, registry); ok {
		return &BannedError{Entry: e}
	}
	return nil
}

// NewEntry builds a registry entry. Names are trimmed, a permanent ban drops
// any until-date, and a non-permanent ban needs a YYYY-MM-DD until-date or
// none at all.
func NewEntry(in models.BannedEntry, now time.Time) (models.BannedEntry, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if in.FirstName == "" || in.LastName == "" {
		return models.BannedEntry{}, fmt.Errorf("%w: first and last name are required", ErrInvalidEntry)
	}
	if in.IsPermanentlyBanned {
		in.BannedUntilDate = ""
	} else if in.BannedUntilDate != "" {
		if _, err := time.Parse(timeutil.DayLayout, in.BannedUntilDate); err != nil {
			return models.BannedEntry{}, fmt.Errorf("%w: banned_until_date must be YYYY-MM-DD", ErrInvalidEntry)
		}
	}
	if in.ID == "" {
		in.ID = idgen.NewBanID()
	}
	in.BannedAt = now
	return in, nil
}

// Add returns a new registry with entry appended. Duplicates are kept; the
// earlier entry keeps winning lookups.
func Add(registry []models.BannedEntry, entry models.BannedEntry) []models.BannedEntry {
	out := make([]models.BannedEntry, 0, len(registry)+1)
	out = append(out, registry...)
	return append(out, entry)
}

// RemoveAt returns a new registry without the entry at index.
func RemoveAt(registry []models.BannedEntry, index int) ([]models.BannedEntry, error) {
	if index < 0 || index >= len(registry) {
		return registry, ErrNotFound
	}
	return lo.Filter(registry, func(_ models.BannedEntry, i int) bool { return i != index }), nil
}

// Remove returns a new registry without the entry with the given id.
func Remove(registry []models.BannedEntry, id string) ([]models.BannedEntry, error) {
	_, index, ok := lo.FindIndexOf(registry, func(e models.BannedEntry) bool { return e.ID == id })
	if !ok {
		return registry, ErrNotFound
	}
	return RemoveAt(registry, index)
}

// Expired reports whether an until-date ban is past its date in loc. It is
// informational only; IsBanned ignores it.
func Expired(e models.BannedEntry, now time.Time, loc *time.Location) bool {
	if e.IsPermanentlyBanned || e.BannedUntilDate == "" {
		return false
	}
	until, err := time.ParseInLocation(timeutil.DayLayout, e.BannedUntilDate, loc)
	if err != nil {
		return false
	}
	return !now.In(loc).Before(until.AddDate(0, 0, 1))
}
