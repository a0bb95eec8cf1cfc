package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"shower_intake/internal/bans"
	"shower_intake/internal/idgen"
	"shower_intake/internal/models"
	"shower_intake/internal/queue"
	"shower_intake/internal/timeutil"
)

// IntakeRequest is what the intake form collects.
type IntakeRequest struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	DOB           string `json:"dob"`
	RaceEthnicity string `json:"race_ethnicity"`
	Shower        bool   `json:"shower"`
	Clothing      bool   `json:"clothing"`
	Homeless      bool   `json:"homeless"`
	New           bool   `json:"new"`
	Veteran       bool   `json:"veteran"`
	Valeo         bool   `json:"valeo"`
	Comment       string `json:"comment"`
}

// Intake checks a guest in. Missing names return a *queue.ValidationError and
// a banned name returns a *bans.BannedError; neither adds a record.
func (c *Controller) Intake(ctx context.Context, req IntakeRequest) (models.Guest, error) {
	g := models.Guest{
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		DOB:           strings.TrimSpace(req.DOB),
		RaceEthnicity: req.RaceEthnicity,
		Shower:        req.Shower,
		Clothing:      req.Clothing,
		Homeless:      req.Homeless,
		New:           req.New,
		Veteran:       req.Veteran,
		Valeo:         req.Valeo,
		Comment:       req.Comment,
	}
	if err := queue.ValidateIntake(g); err != nil {
		return models.Guest{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := bans.Check(g.FirstName, g.LastName, c.bans); err != nil {
		c.log.Info("intake refused: banned", zap.String("first_name", g.FirstName), zap.String("last_name", g.LastName))
		return models.Guest{}, err
	}

	now := c.clock.Now()
	loc := c.location()
	g.ID = idgen.NewGuestID()
	g.Number = queue.NextNumber(c.guests, now, loc)
	g.CheckinAt = timeutil.Ptr(now)

	busy := queue.CountStatus(c.guests, models.StatusShowering)
	est := queue.EstimateTimes(now, g.Number, busy, c.opts.Durations)
	g.ExpectedStartTimeAt = timeutil.Ptr(est.ExpectedStart)
	g.ExpectedEndTimeAt = timeutil.Ptr(est.ExpectedEnd)

	guests := append(cloneGuests(c.guests), g)
	if err := c.commitGuests(ctx, guests); err != nil {
		return models.Guest{}, err
	}
	c.log.Info("guest checked in", zap.String("guest_id", g.ID), zap.Int("number", g.Number))
	c.notify.Publish(TopicQueue, EventGuestAdded, queue.Entry{Guest: g, Status: queue.DeriveStatus(g)})
	return g, nil
}

// updateGuest applies fn to a copy of the guest and commits it.
func (c *Controller) updateGuest(ctx context.Context, id string, fn func(*models.Guest) error) (models.Guest, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.guestIndex(id)
	if i < 0 {
		return models.Guest{}, fmt.Errorf("%w: guest %s", ErrNotFound, id)
	}
	guests := cloneGuests(c.guests)
	if err := fn(&guests[i]); err != nil {
		return models.Guest{}, err
	}
	if err := c.commitGuests(ctx, guests); err != nil {
		return models.Guest{}, err
	}
	g := guests[i]
	c.notify.Publish(TopicQueue, EventGuestUpdated, queue.Entry{Guest: g, Status: queue.DeriveStatus(g)})
	return g, nil
}

// SetAction records the operator's hint for a guest.
func (c *Controller) SetAction(ctx context.Context, id string, action models.Action) (models.Guest, error) {
	if !action.Valid() {
		return models.Guest{}, &queue.ValidationError{Fields: []string{"action"}}
	}
	return c.updateGuest(ctx, id, func(g *models.Guest) error {
		g.Action = action
		return nil
	})
}

func (c *Controller) SetComment(ctx context.Context, id, comment string) (models.Guest, error) {
	return c.updateGuest(ctx, id, func(g *models.Guest) error {
		g.Comment = comment
		return nil
	})
}

// MarkLeft stamps left_at the first time it is called. A guest who already
// returned keeps both timestamps and is marked left through the action.
func (c *Controller) MarkLeft(ctx context.Context, id string) (models.Guest, error) {
	now := c.clock.Now()
	return c.updateGuest(ctx, id, func(g *models.Guest) error {
		if g.LeftAt == nil {
			g.LeftAt = timeutil.Ptr(now)
			return nil
		}
		if g.ReturnedAt != nil {
			g.Action = models.ActionGuestLeft
		}
		return nil
	})
}

// MarkReturned puts a guest who left back in the queue. Neither timestamp is
// cleared; returned_at keeps the first return and supersedes left_at.
func (c *Controller) MarkReturned(ctx context.Context, id string) (models.Guest, error) {
	now := c.clock.Now()
	return c.updateGuest(ctx, id, func(g *models.Guest) error {
		if queue.DeriveStatus(*g) != models.StatusLeft {
			return fmt.Errorf("%w: guest %s has not left", ErrInvalidState, g.ID)
		}
		if g.ReturnedAt == nil {
			g.ReturnedAt = timeutil.Ptr(now)
		}
		if g.Action == models.ActionGuestLeft {
			g.Action = models.ActionNone
		}
		return nil
	})
}

// BanRequest carries the ban terms for BanGuest and AddBan.
type BanRequest struct {
	BannedUntilDate     string `json:"banned_until_date"`
	IsPermanentlyBanned bool   `json:"is_permanently_banned"`
}

// BanGuest adds the guest to the registry and flags the record as banned.
// Either both writes land or the registry is put back.
func (c *Controller) BanGuest(ctx context.Context, id string, req BanRequest) (models.Guest, models.BannedEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.guestIndex(id)
	if i < 0 {
		return models.Guest{}, models.BannedEntry{}, fmt.Errorf("%w: guest %s", ErrNotFound, id)
	}
	now := c.clock.Now()
	g := c.guests[i]
	entry, err := bans.NewEntry(models.BannedEntry{
		FirstName:           g.FirstName,
		LastName:            g.LastName,
		DOB:                 g.DOB,
		RaceEthnicity:       g.RaceEthnicity,
		BannedUntilDate:     req.BannedUntilDate,
		IsPermanentlyBanned: req.IsPermanentlyBanned,
	}, now)
	if err != nil {
		return models.Guest{}, models.BannedEntry{}, err
	}

	registry := bans.Add(c.bans, entry)
	if err := c.repo.SaveBans(ctx, registry); err != nil {
		c.log.Error("save bans failed", zap.Error(err))
		return models.Guest{}, models.BannedEntry{}, fmt.Errorf("save bans: %w", err)
	}
	guests := cloneGuests(c.guests)
	guests[i].Banned = true
	guests[i].Action = models.ActionGuestBanned
	if err := c.commitGuests(ctx, guests); err != nil {
		if rerr := c.repo.SaveBans(ctx, c.bans); rerr != nil {
			c.log.Error("restore bans failed", zap.Error(rerr))
		}
		return models.Guest{}, models.BannedEntry{}, err
	}
	c.bans = registry
	g = guests[i]
	c.log.Info("guest banned", zap.String("guest_id", g.ID), zap.String("ban_id", entry.ID))
	c.notify.Publish(TopicQueue, EventGuestUpdated, queue.Entry{Guest: g, Status: queue.DeriveStatus(g)})
	c.notify.Publish(TopicQueue, EventBansChanged, nil)
	return g, entry, nil
}

// Guest returns one guest by id.
func (c *Controller) Guest(id string) (models.Guest, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.guestIndex(id)
	if i < 0 {
		return models.Guest{}, fmt.Errorf("%w: guest %s", ErrNotFound, id)
	}
	return c.guests[i], nil
}

// TodayQueue returns today's guests matching search in service order, each
// with its derived status.
func (c *Controller) TodayQueue(search string) []queue.Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	today := queue.CheckedInOn(c.guests, c.clock.Now(), c.location())
	return queue.OrderEntries(queue.WithStatus(queue.Search(today, search)))
}

// AvailableGuests are today's guests that can be put in a shower, in
// service order.
func (c *Controller) AvailableGuests() []queue.Entry {
	var out []queue.Entry
	for _, e := range c.TodayQueue("") {
		if queue.Assignable(e.Status) {
			out = append(out, e)
		}
	}
	return out
}
