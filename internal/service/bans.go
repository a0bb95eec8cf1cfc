package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"shower_intake/internal/bans"
	"shower_intake/internal/models"
)

// BanView is a registry entry as shown to the operator.
type BanView struct {
	models.BannedEntry
	Expired bool `json:"expired"`
}

func (c *Controller) ListBans() []BanView {
	c.mu.Lock()
	defer c.mu.Unlock()
	now, loc := c.clock.Now(), c.location()
	out := make([]BanView, len(c.bans))
	for i, e := range c.bans {
		out[i] = BanView{BannedEntry: e, Expired: bans.Expired(e, now, loc)}
	}
	return out
}

// AddBan adds an entry by name. Invalid names or dates match
// bans.ErrInvalidEntry.
func (c *Controller) AddBan(ctx context.Context, in models.BannedEntry) (models.BannedEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	in.ID = ""
	entry, err := bans.NewEntry(in, c.clock.Now())
	if err != nil {
		return models.BannedEntry{}, err
	}
	if err := c.commitBans(ctx, bans.Add(c.bans, entry)); err != nil {
		return models.BannedEntry{}, err
	}
	c.log.Info("ban added", zap.String("ban_id", entry.ID))
	c.notify.Publish(TopicQueue, EventBansChanged, nil)
	return entry, nil
}

// RemoveBanAt drops the entry at index in list order.
func (c *Controller) RemoveBanAt(ctx context.Context, index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := bans.RemoveAt(c.bans, index)
	if err != nil {
		return fmt.Errorf("%w: ban %d", ErrNotFound, index)
	}
	if err := c.commitBans(ctx, next); err != nil {
		return err
	}
	c.notify.Publish(TopicQueue, EventBansChanged, nil)
	return nil
}

// RemoveBan drops the entry with the given id.
func (c *Controller) RemoveBan(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := bans.Remove(c.bans, id)
	if err != nil {
		return fmt.Errorf("%w: ban %s", ErrNotFound, id)
	}
	if err := c.commitBans(ctx, next); err != nil {
		return err
	}
	c.log.Info("ban removed", zap.String("ban_id", id))
	c.notify.Publish(TopicQueue, EventBansChanged, nil)
	return nil
}

// ClearBans empties the registry. Guest records keep their banned flag.
func (c *Controller) ClearBans(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.commitBans(ctx, []models.BannedEntry{}); err != nil {
		return err
	}
	c.log.Info("ban registry cleared")
	c.notify.Publish(TopicQueue, EventBansChanged, nil)
	return nil
}
