package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"shower_intake/internal/models"
)

const (
	KeyGuests   = "guests"
	KeyShowers  = "showers"
	KeyBans     = "bannedGuests"
	KeySettings = "settings"
)

// Repository stores each collection as one JSON document under its key.
// Collections are always read and written whole.
type Repository struct {
	kv KV
}

func NewRepository(kv KV) *Repository { return &Repository{kv: kv} }

// load decodes key into v. found is false when the key was never written.
func (r *Repository) load(ctx context.Context, key string, v any) (found bool, err error) {
	raw, err := r.kv.Get(ctx, key)
	if errors.Is(err, ErrMiss) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (r *Repository) save(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := r.kv.Set(ctx, key, string(raw)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (r *Repository) Guests(ctx context.Context) ([]models.Guest, error) {
	var out []models.Guest
	_, err := r.load(ctx, KeyGuests, &out)
	return out, err
}

func (r *Repository) SaveGuests(ctx context.Context, guests []models.Guest) error {
	if guests == nil {
		guests = []models.Guest{}
	}
	return r.save(ctx, KeyGuests, guests)
}

// Showers reports found=false when no shower set has been saved yet, so the
// caller can seed defaults.
func (r *Repository) Showers(ctx context.Context) (showers []models.Shower, found bool, err error) {
	found, err = r.load(ctx, KeyShowers, &showers)
	return showers, found, err
}

func (r *Repository) SaveShowers(ctx context.Context, showers []models.Shower) error {
	return r.save(ctx, KeyShowers, showers)
}

func (r *Repository) Bans(ctx context.Context) ([]models.BannedEntry, error) {
	var out []models.BannedEntry
	_, err := r.load(ctx, KeyBans, &out)
	return out, err
}

func (r *Repository) SaveBans(ctx context.Context, bans []models.BannedEntry) error {
	if bans == nil {
		bans = []models.BannedEntry{}
	}
	return r.save(ctx, KeyBans, bans)
}

func (r *Repository) Settings(ctx context.Context) (settings models.Settings, found bool, err error) {
	found, err = r.load(ctx, KeySettings, &settings)
	return settings, found, err
}

func (r *Repository) SaveSettings(ctx context.Context, s models.Settings) error {
	return r.save(ctx, KeySettings, s)
}
