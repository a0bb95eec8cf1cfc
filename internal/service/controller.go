// Package service owns the canonical guest, shower, ban and settings
// collections. Every operator command and every timer tick goes through one
// mutex, so mutations are applied one at a time and each one is written
// through to storage before it becomes visible.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"shower_intake/internal/models"
	"shower_intake/internal/showers"
	"shower_intake/internal/storage"
	"shower_intake/internal/timeutil"
	"shower_intake/internal/ws"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid guest state")
)

// Notifier receives a board event after each committed change.
type Notifier interface {
	Publish(topic, eventType string, data any)
}

type nopNotifier struct{}

func (nopNotifier) Publish(string, string, any) {}

// Board topics, shared with the websocket hub.
const (
	TopicQueue   = ws.TopicQueue
	TopicShowers = ws.TopicShowers
)

// Board event types.
const (
	EventGuestAdded    = "guest_added"
	EventGuestUpdated  = "guest_updated"
	EventShowerChanged = "shower_changed"
	EventBansChanged   = "bans_changed"
	EventDataCleared   = "data_cleared"
)

type Options struct {
	Durations   models.Durations
	ShowerCount int
	// Settings used until the operator saves their own.
	DefaultSettings models.Settings
}

type Controller struct {
	mu     sync.Mutex
	repo   *storage.Repository
	clock  timeutil.Clock
	notify Notifier
	log    *zap.Logger
	opts   Options

	guests   []models.Guest
	showers  []models.Shower
	bans     []models.BannedEntry
	settings models.Settings
}

func New(repo *storage.Repository, clock timeutil.Clock, notify Notifier, log *zap.Logger, opts Options) *Controller {
	if notify == nil {
		notify = nopNotifier{}
	}
	if opts.ShowerCount <= 0 {
		opts.ShowerCount = 3
	}
	if opts.Durations.Shower <= 0 || opts.Durations.Cleaning <= 0 {
		opts.Durations = models.DefaultDurations()
	}
	return &Controller{repo: repo, clock: clock, notify: notify, log: log, opts: opts}
}

// Load reads every collection from storage. A store with no showers gets the
// default set, and one with no settings gets the configured defaults.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	guests, err := c.repo.Guests(ctx)
	if err != nil {
		return err
	}
	set, found, err := c.repo.Showers(ctx)
	if err != nil {
		return err
	}
	if !found || len(set) == 0 {
		set = showers.NewSet(c.opts.ShowerCount)
		if err := c.repo.SaveShowers(ctx, set); err != nil {
			return err
		}
		c.log.Info("seeded default showers", zap.Int("count", len(set)))
	}
	bans, err := c.repo.Bans(ctx)
	if err != nil {
		return err
	}
	settings, found, err := c.repo.Settings(ctx)
	if err != nil {
		return err
	}
	if !found {
		settings = c.opts.DefaultSettings
	}

	c.guests, c.showers, c.bans, c.settings = guests, set, bans, settings
	c.log.Info("state loaded",
		zap.Int("guests", len(guests)),
		zap.Int("showers", len(set)),
		zap.Int("bans", len(bans)))
	return nil
}

// location must be called with mu held.
func (c *Controller) location() *time.Location {
	loc, _ := timeutil.ResolveLocation(c.settings.Timezone)
	return loc
}

// Location is the zone every calendar-day decision is made in.
func (c *Controller) Location() *time.Location {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.location()
}

func (c *Controller) Durations() models.Durations { return c.opts.Durations }

// Now reads the injected clock.
func (c *Controller) Now() time.Time { return c.clock.Now() }

func (c *Controller) guestIndex(id string) int {
	for i, g := range c.guests {
		if g.ID == id {
			return i
		}
	}
	return -1
}

func cloneGuests(in []models.Guest) []models.Guest {
	return append([]models.Guest(nil), in...)
}

func cloneShowers(in []models.Shower) []models.Shower {
	return append([]models.Shower(nil), in...)
}

// commitGuests writes guests through and swaps them in. Must hold mu.
func (c *Controller) commitGuests(ctx context.Context, guests []models.Guest) error {
	if err := c.repo.SaveGuests(ctx, guests); err != nil {
		c.log.Error("save guests failed", zap.Error(err))
		return fmt.Errorf("save guests: %w", err)
	}
	c.guests = guests
	return nil
}

// commitBoard writes showers and then guests through and swaps them in. If the
// guest write fails the previous showers are written back, so storage never
// holds a shower and a guest that disagree about who is inside. Must hold mu.
func (c *Controller) commitBoard(ctx context.Context, guests []models.Guest, set []models.Shower) error {
	if err := c.repo.SaveShowers(ctx, set); err != nil {
		c.log.Error("save showers failed", zap.Error(err))
		return fmt.Errorf("save showers: %w", err)
	}
	if err := c.repo.SaveGuests(ctx, guests); err != nil {
		c.log.Error("save guests failed", zap.Error(err))
		if rerr := c.repo.SaveShowers(ctx, c.showers); rerr != nil {
			c.log.Error("restore showers failed", zap.Error(rerr))
		}
		return fmt.Errorf("save guests: %w", err)
	}
	c.guests, c.showers = guests, set
	return nil
}

func (c *Controller) commitBans(ctx context.Context, bans []models.BannedEntry) error {
	if err := c.repo.SaveBans(ctx, bans); err != nil {
		c.log.Error("save bans failed", zap.Error(err))
		return fmt.Errorf("save bans: %w", err)
	}
	c.bans = bans
	return nil
}
