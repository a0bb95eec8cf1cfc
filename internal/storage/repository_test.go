package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shower_intake/internal/models"
)

func TestRepositoryEmpty(t *testing.T) {
	repo := NewRepository(NewMemoryKV())
	ctx := context.Background()

	guests, err := repo.Guests(ctx)
	require.NoError(t, err)
	assert.Empty(t, guests)

	_, found, err := repo.Showers(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = repo.Settings(ctx)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRepositoryRoundTrip(t *testing.T) {
	kv := NewMemoryKV()
	repo := NewRepository(kv)
	ctx := context.Background()

	require.NoError(t, repo.SaveGuests(ctx, []models.Guest{{ID: "g1", FirstName: "Ann", Number: 1}}))
	require.NoError(t, repo.SaveShowers(ctx, []models.Shower{{ID: "1", Name: "Shower 1", Status: models.ShowerReady}}))
	require.NoError(t, repo.SaveBans(ctx, nil))
	require.NoError(t, repo.SaveSettings(ctx, models.Settings{Timezone: "America/Los_Angeles", Location: "Main"}))

	guests, err := repo.Guests(ctx)
	require.NoError(t, err)
	require.Len(t, guests, 1)
	assert.Equal(t, "Ann", guests[0].FirstName)

	showers, found, err := repo.Showers(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, models.ShowerReady, showers[0].Status)

	raw, err := kv.Get(ctx, KeyBans)
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)

	s, found, err := repo.Settings(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Main", s.Location)
}

func TestRepositoryCorruptValue(t *testing.T) {
	kv := NewMemoryKV()
	require.NoError(t, kv.Set(context.Background(), KeyGuests, "{not json"))
	_, err := NewRepository(kv).Guests(context.Background())
	assert.Error(t, err)
}
