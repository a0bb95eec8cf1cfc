package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "STORAGE_DRIVER", "SHOWER_DURATION_MINUTES", "CLEANING_DURATION_MINUTES", "SHOWER_COUNT", "TICK_SPEC", "DB_PORT", "REDIS_DB"} {
		t.Setenv(k, "")
	}
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, DriverMemory, cfg.StorageDriver)
	assert.Equal(t, 20*time.Minute, cfg.ShowerDuration)
	assert.Equal(t, 5*time.Minute, cfg.CleaningDuration)
	assert.Equal(t, 3, cfg.ShowerCount)
	assert.Equal(t, "@every 1s", cfg.TickSpec)
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Contains(t, cfg.Database.DSN(), "port=5432")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "redis")
	t.Setenv("SHOWER_DURATION_MINUTES", "15")
	t.Setenv("SHOWER_COUNT", "5")
	t.Setenv("TIMEZONE", "America/Los_Angeles")
	t.Setenv("RETENTION_DAYS", "90")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverRedis, cfg.StorageDriver)
	assert.Equal(t, 15*time.Minute, cfg.ShowerDuration)
	assert.Equal(t, 5, cfg.ShowerCount)
	assert.Equal(t, "America/Los_Angeles", cfg.Timezone)
	assert.Equal(t, 90, cfg.RetentionDays)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "sqlite")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("SHOWER_COUNT", "0")
	_, err = Load()
	assert.Error(t, err)
}
