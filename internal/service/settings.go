package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"shower_intake/internal/models"
	"shower_intake/internal/showers"
	"shower_intake/internal/timeutil"
)

func (c *Controller) Settings() models.Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// UpdateSettings saves the site settings. An unknown timezone is kept as
// entered and the host zone is used in its place.
func (c *Controller) UpdateSettings(ctx context.Context, s models.Settings) (models.Settings, error) {
	s.Timezone = strings.TrimSpace(s.Timezone)
	if _, ok := timeutil.ResolveLocation(s.Timezone); !ok {
		c.log.Warn("unknown timezone, falling back to host zone", zap.String("timezone", s.Timezone))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.repo.SaveSettings(ctx, s); err != nil {
		c.log.Error("save settings failed", zap.Error(err))
		return models.Settings{}, fmt.Errorf("save settings: %w", err)
	}
	c.settings = s
	return s, nil
}

// ClearAllData drops every guest and resets the showers. The ban registry
// and settings are kept.
func (c *Controller) ClearAllData(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.commitBoard(ctx, []models.Guest{}, showers.NewSet(c.opts.ShowerCount)); err != nil {
		return err
	}
	c.log.Info("operational data cleared")
	c.notify.Publish(TopicQueue, EventDataCleared, nil)
	c.notify.Publish(TopicShowers, EventDataCleared, nil)
	return nil
}

// PurgeBefore drops guests checked in before cutoff. A guest still occupying
// a shower is kept. It returns how many guests were removed.
func (c *Controller) PurgeBefore(ctx context.Context, cutoff time.Time) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	occupied := make(map[string]bool, len(c.showers))
	for _, s := range c.showers {
		if s.CurrentGuestID != "" {
			occupied[s.CurrentGuestID] = true
		}
	}
	kept := make([]models.Guest, 0, len(c.guests))
	for _, g := range c.guests {
		if g.CheckinAt != nil && g.CheckinAt.Before(cutoff) && !occupied[g.ID] {
			continue
		}
		kept = append(kept, g)
	}
	removed := len(c.guests) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := c.commitGuests(ctx, kept); err != nil {
		return 0, err
	}
	c.log.Info("purged old guests", zap.Int("removed", removed), zap.Time("cutoff", cutoff))
	return removed, nil
}
