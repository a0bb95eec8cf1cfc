// Package showers drives a shower resource through
// ready -> in use -> cleaning -> ready, plus the operator-only maintenance
// state. Timer ticks and operator commands go through the same Apply so every
// transition is guarded by the current state.
package showers

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"shower_intake/internal/models"
	"shower_intake/internal/timeutil"
)

var ErrInvalidTransition = errors.New("invalid transition")

// TransitionError reports a trigger that the shower's current state does not
// accept, or a reference to a shower or guest that does not exist.
type TransitionError struct {
	ShowerID string
	From     models.ShowerState
	Trigger  Kind
	Reason   string
}

func (e *TransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("shower %q: cannot %s: %s", e.ShowerID, e.Trigger, e.Reason)
	}
	return fmt.Sprintf("shower %q: cannot %s while %s", e.ShowerID, e.Trigger, e.From)
}

func (e *TransitionError) Is(target error) bool { return target == ErrInvalidTransition }

// Kind names what caused a transition.
type Kind string

const (
	KindTick             Kind = "tick"
	KindAssign           Kind = "assign"
	KindStartCleaning    Kind = "start_cleaning"
	KindMarkReady        Kind = "mark_ready"
	KindStartMaintenance Kind = "start_maintenance"
)

// Trigger is either the timer or an operator command. GuestID is used by
// assign only.
type Trigger struct {
	Kind    Kind
	GuestID string
}

func Tick() Trigger                 { return Trigger{Kind: KindTick} }
func Assign(guestID string) Trigger { return Trigger{Kind: KindAssign, GuestID: guestID} }
func StartCleaning() Trigger        { return Trigger{Kind: KindStartCleaning} }
func MarkReady() Trigger            { return Trigger{Kind: KindMarkReady} }
func StartMaintenance() Trigger     { return Trigger{Kind: KindStartMaintenance} }

// Transition describes what Apply did. FinishedGuestID is set when the
// shower left the in-use state, so the caller can close out that guest.
type Transition struct {
	ShowerID        string
	From, To        models.ShowerState
	Changed         bool
	FinishedGuestID string
	At              time.Time
}

// Apply returns the shower after trigger t at now. It never mutates s. A tick
// that is not yet due is a no-op; an operator command the current state does
// not allow returns a *TransitionError and the shower unchanged.
func Apply(s models.Shower, t Trigger, now time.Time, d models.Durations) (models.Shower, Transition, error) {
	tr := Transition{ShowerID: s.ID, From: s.Status, To: s.Status, At: now}

	reject := func() (models.Shower, Transition, error) {
		return s, tr, &TransitionError{ShowerID: s.ID, From: s.Status, Trigger: t.Kind}
	}

	var next models.Shower
	switch t.Kind {
	case KindTick:
		switch {
		case s.Status == models.ShowerInUse && due(s.ExpectedEndTime, now):
			next = cleaning(s, now, d)
		case s.Status == models.ShowerCleaning && due(s.ExpectedCleaningEndTime, now):
			next = ready(s)
		default:
			return s, tr, nil
		}
	case KindAssign:
		if s.Status != models.ShowerReady {
			return reject()
		}
		if t.GuestID == "" {
			return s, tr, &TransitionError{ShowerID: s.ID, From: s.Status, Trigger: t.Kind, Reason: "no guest given"}
		}
		next = ready(s)
		next.Status = models.ShowerInUse
		next.StartTime = timeutil.Ptr(now)
		next.ExpectedEndTime = timeutil.Ptr(now.Add(d.Shower))
		next.CurrentGuestID = t.GuestID
	case KindStartCleaning:
		if s.Status != models.ShowerInUse {
			return reject()
		}
		next = cleaning(s, now, d)
	case KindMarkReady:
		if s.Status != models.ShowerCleaning && s.Status != models.ShowerWaitingForMaintenance {
			return reject()
		}
		next = ready(s)
	case KindStartMaintenance:
		if s.Status != models.ShowerReady && s.Status != models.ShowerCleaning {
			return reject()
		}
		next = ready(s)
		next.Status = models.ShowerWaitingForMaintenance
	default:
		return s, tr, &TransitionError{ShowerID: s.ID, From: s.Status, Trigger: t.Kind, Reason: "unknown trigger"}
	}

	if s.Status == models.ShowerInUse && next.Status != models.ShowerInUse {
		tr.FinishedGuestID = s.CurrentGuestID
	}
	tr.To = next.Status
	tr.Changed = true
	return next, tr, nil
}

func due(deadline *time.Time, now time.Time) bool {
	return deadline != nil && !now.Before(*deadline)
}

// ready clears every timing and occupant field.
func ready(s models.Shower) models.Shower {
	return models.Shower{ID: s.ID, Name: s.Name, Status: models.ShowerReady}
}

func cleaning(s models.Shower, now time.Time, d models.Durations) models.Shower {
	next := ready(s)
	next.Status = models.ShowerCleaning
	next.CleaningStartTime = timeutil.Ptr(now)
	next.ExpectedCleaningEndTime = timeutil.Ptr(now.Add(d.Cleaning))
	return next
}

// Remaining is the countdown for the current timed phase; zero when the
// shower is not timed or the deadline has passed.
func Remaining(s models.Shower, now time.Time) time.Duration {
	var deadline *time.Time
	switch s.Status {
	case models.ShowerInUse:
		deadline = s.ExpectedEndTime
	case models.ShowerCleaning:
		deadline = s.ExpectedCleaningEndTime
	}
	if deadline == nil || !now.Before(*deadline) {
		return 0
	}
	return deadline.Sub(now)
}

// NewSet returns n ready showers named "Shower 1".."Shower n".
func NewSet(n int) []models.Shower {
	out := make([]models.Shower, n)
	for i := range out {
		id := strconv.Itoa(i + 1)
		out[i] = models.Shower{ID: id, Name: "Shower " + id, Status: models.ShowerReady}
	}
	return out
}

// TickAll applies a timer tick to every shower and returns the new set with
// the transitions that changed something.
func TickAll(set []models.Shower, now time.Time, d models.Durations) ([]models.Shower, []Transition) {
	out := make([]models.Shower, len(set))
	var changed []Transition
	for i, s := range set {
		next, tr, _ := Apply(s, Tick(), now, d)
		out[i] = next
		if tr.Changed {
			changed = append(changed, tr)
		}
	}
	return out, changed
}

// Find returns the index of the shower with id, or -1.
func Find(set []models.Shower, id string) int {
	for i, s := range set {
		if s.ID == id {
			return i
		}
	}
	return -1
}
