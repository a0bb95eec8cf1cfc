package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"shower_intake/internal/models"
	"shower_intake/internal/queue"
	"shower_intake/internal/showers"
	"shower_intake/internal/timeutil"
)

// ShowerView is a shower with its countdown and occupant resolved for display.
type ShowerView struct {
	models.Shower
	RemainingSeconds int    `json:"remaining_seconds"`
	Countdown        string `json:"countdown"`
	GuestName        string `json:"guest_name,omitempty"`
}

func (c *Controller) view(s models.Shower, now time.Time) ShowerView {
	left := showers.Remaining(s, now)
	v := ShowerView{Shower: s, RemainingSeconds: int(left / time.Second), Countdown: timeutil.FormatCountdown(left)}
	if s.CurrentGuestID != "" {
		if i := c.guestIndex(s.CurrentGuestID); i >= 0 {
			v.GuestName = c.guests[i].FullName()
		}
	}
	return v
}

// Showers returns every shower as of now.
func (c *Controller) Showers() []ShowerView {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.clock.Now()
	out := make([]ShowerView, len(c.showers))
	for i, s := range c.showers {
		out[i] = c.view(s, now)
	}
	return out
}

// applyLocked runs one trigger against a shower and commits the shower and
// any guest whose visit it started or finished. Must hold mu.
func (c *Controller) applyLocked(ctx context.Context, showerID string, t showers.Trigger) (ShowerView, error) {
	si := showers.Find(c.showers, showerID)
	if si < 0 {
		return ShowerView{}, fmt.Errorf("%w: shower %s", ErrNotFound, showerID)
	}
	now := c.clock.Now()
	next, tr, err := showers.Apply(c.showers[si], t, now, c.opts.Durations)
	if err != nil {
		return ShowerView{}, err
	}
	if !tr.Changed {
		return c.view(next, now), nil
	}

	guests := cloneGuests(c.guests)
	set := cloneShowers(c.showers)
	set[si] = next
	if t.Kind == showers.KindAssign {
		gi := c.guestIndex(t.GuestID)
		guests[gi].ShowerStartedAt = timeutil.Ptr(now)
		guests[gi].ShowerName = next.Name
	}
	finish(guests, tr, c.guestIndex)

	if err := c.commitBoard(ctx, guests, set); err != nil {
		return ShowerView{}, err
	}
	c.log.Info("shower transition",
		zap.String("shower_id", tr.ShowerID),
		zap.String("trigger", string(t.Kind)),
		zap.String("from", string(tr.From)),
		zap.String("to", string(tr.To)))
	v := c.view(next, now)
	c.notify.Publish(TopicShowers, EventShowerChanged, v)
	c.notify.Publish(TopicQueue, EventGuestUpdated, nil)
	return v, nil
}

// finish stamps shower_ended_at on the guest a transition released.
func finish(guests []models.Guest, tr showers.Transition, index func(string) int) {
	if tr.FinishedGuestID == "" {
		return
	}
	gi := index(tr.FinishedGuestID)
	if gi < 0 || guests[gi].ShowerEndedAt != nil {
		return
	}
	guests[gi].ShowerEndedAt = timeutil.Ptr(tr.At)
}

// Assign puts a queued or next-up guest in a ready shower. An unknown shower,
// an unknown guest or one that cannot be served is a *showers.TransitionError.
func (c *Controller) Assign(ctx context.Context, showerID, guestID string) (ShowerView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if showers.Find(c.showers, showerID) < 0 {
		return ShowerView{}, &showers.TransitionError{
			ShowerID: showerID,
			Trigger:  showers.KindAssign,
			Reason:   fmt.Sprintf("shower %s: %v", showerID, ErrNotFound),
		}
	}
	gi := c.guestIndex(guestID)
	if gi < 0 {
		return ShowerView{}, &showers.TransitionError{
			ShowerID: showerID,
			Trigger:  showers.KindAssign,
			Reason:   fmt.Sprintf("guest %s: %v", guestID, ErrNotFound),
		}
	}
	if st := queue.DeriveStatus(c.guests[gi]); !queue.Assignable(st) {
		return ShowerView{}, &showers.TransitionError{
			ShowerID: showerID,
			Trigger:  showers.KindAssign,
			Reason:   fmt.Sprintf("guest %s is %s", guestID, st),
		}
	}
	return c.applyLocked(ctx, showerID, showers.Assign(guestID))
}

func (c *Controller) StartCleaning(ctx context.Context, showerID string) (ShowerView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.applyLocked(ctx, showerID, showers.StartCleaning())
}

func (c *Controller) MarkReady(ctx context.Context, showerID string) (ShowerView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.applyLocked(ctx, showerID, showers.MarkReady())
}

func (c *Controller) StartMaintenance(ctx context.Context, showerID string) (ShowerView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.applyLocked(ctx, showerID, showers.StartMaintenance())
}

// Tick advances every shower whose timer is due. Nothing is written when no
// shower changed, so calling it once a second is cheap.
func (c *Controller) Tick(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	set, changed := showers.TickAll(c.showers, c.clock.Now(), c.opts.Durations)
	if len(changed) == 0 {
		return nil
	}
	guests := cloneGuests(c.guests)
	for _, tr := range changed {
		finish(guests, tr, c.guestIndex)
	}
	if err := c.commitBoard(ctx, guests, set); err != nil {
		return err
	}
	for _, tr := range changed {
		c.log.Info("shower timer",
			zap.String("shower_id", tr.ShowerID),
			zap.String("from", string(tr.From)),
			zap.String("to", string(tr.To)))
		c.notify.Publish(TopicShowers, EventShowerChanged, c.view(set[showers.Find(set, tr.ShowerID)], tr.At))
	}
	c.notify.Publish(TopicQueue, EventGuestUpdated, nil)
	return nil
}
