package queue

import (
	"errors"
	"strings"
	"time"

	"github.com/samber/lo"

	"shower_intake/internal/models"
	"shower_intake/internal/timeutil"
)

// ErrValidationFailed is matched by every *ValidationError.
var ErrValidationFailed = errors.New("validation failed")

// ValidationError names the required intake fields that were missing.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidationFailed }

// ValidateIntake checks the fields intake cannot do without.
func ValidateIntake(g models.Guest) error {
	var missing []string
	if strings.TrimSpace(g.FirstName) == "" {
		missing = append(missing, "first_name")
	}
	if strings.TrimSpace(g.LastName) == "" {
		missing = append(missing, "last_name")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// NextNumber returns the next queue number for a guest checking in at now:
// one past the highest number among guests checked in on the same local day.
func NextNumber(guests []models.Guest, now time.Time, loc *time.Location) int {
	highest := 0
	for _, g := range guests {
		if g.CheckinAt == nil || !timeutil.SameLocalDay(*g.CheckinAt, now, loc) {
			continue
		}
		if g.Number > highest {
			highest = g.Number
		}
	}
	return highest + 1
}

// CheckedInOn keeps guests whose check-in falls on day's local calendar date.
func CheckedInOn(guests []models.Guest, day time.Time, loc *time.Location) []models.Guest {
	return lo.Filter(guests, func(g models.Guest, _ int) bool {
		return g.CheckinAt != nil && timeutil.SameLocalDay(*g.CheckinAt, day, loc)
	})
}

// Search keeps guests whose first, last or full name contains term,
// case-insensitively. A blank term keeps everyone.
func Search(guests []models.Guest, term string) []models.Guest {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return guests
	}
	return lo.Filter(guests, func(g models.Guest, _ int) bool {
		return strings.Contains(strings.ToLower(g.FirstName), term) ||
			strings.Contains(strings.ToLower(g.LastName), term) ||
			strings.Contains(strings.ToLower(g.FullName()), term)
	})
}

// CountStatus counts guests whose derived status is s.
func CountStatus(guests []models.Guest, s models.Status) int {
	return lo.CountBy(guests, func(g models.Guest) bool { return DeriveStatus(g) == s })
}
