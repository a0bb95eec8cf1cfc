package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN is the libpq connection string gorm's postgres driver expects.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Config is the service configuration, read from the environment.
type Config struct {
	HTTPAddr      string
	StorageDriver string
	Database      DatabaseConfig
	Redis         RedisConfig

	ShowerDuration   time.Duration
	CleaningDuration time.Duration
	ShowerCount      int

	// Defaults for settings that the operator has not saved yet.
	Timezone string
	Location string

	TickSpec      string
	RetentionDays int
	SnowflakeNode int64

	Log struct {
		Level  string
		Format string
	}
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")
	cfg.StorageDriver = getEnv("STORAGE_DRIVER", DriverMemory)
	switch cfg.StorageDriver {
	case DriverMemory, DriverRedis, DriverPostgres:
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnv("DB_PORT", "5432")
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Name = getEnv("DB_NAME", "shower_intake")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getInt("REDIS_DB", 0)

	cfg.ShowerDuration = time.Duration(getInt("SHOWER_DURATION_MINUTES", 20)) * time.Minute
	cfg.CleaningDuration = time.Duration(getInt("CLEANING_DURATION_MINUTES", 5)) * time.Minute
	cfg.ShowerCount = getInt("SHOWER_COUNT", 3)
	if cfg.ShowerDuration <= 0 || cfg.CleaningDuration <= 0 || cfg.ShowerCount <= 0 {
		return nil, fmt.Errorf("shower duration, cleaning duration and shower count must be positive")
	}

	cfg.Timezone = getEnv("TIMEZONE", "")
	cfg.Location = getEnv("LOCATION", "")
	cfg.TickSpec = getEnv("TICK_SPEC", "@every 1s")
	cfg.RetentionDays = getInt("RETENTION_DAYS", 0)
	cfg.SnowflakeNode = int64(getInt("SNOWFLAKE_NODE", 1))

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}
