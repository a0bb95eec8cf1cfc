package storage

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"shower_intake/internal/config"
	"shower_intake/internal/models"
)

const redisPrefix = "shower_intake:"

// ConnectDatabase opens Postgres and makes sure kv_records exists.
func ConnectDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := db.AutoMigrate(&models.KVRecord{}); err != nil {
		return nil, fmt.Errorf("migrate kv_records: %w", err)
	}
	return db, nil
}

// InitRedis connects and pings Redis.
func InitRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// Open returns the KV backend selected by cfg.StorageDriver and a function
// that releases it.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (KV, func(), error) {
	switch cfg.StorageDriver {
	case config.DriverRedis:
		client, err := InitRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		log.Info("storage ready", zap.String("driver", "redis"), zap.String("addr", cfg.Redis.Addr))
		return NewRedisKV(client, redisPrefix), func() { client.Close() }, nil
	case config.DriverPostgres:
		db, err := ConnectDatabase(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		log.Info("storage ready", zap.String("driver", "postgres"), zap.String("host", cfg.Database.Host))
		closer := func() {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		}
		return NewGormKV(db), closer, nil
	default:
		log.Info("storage ready", zap.String("driver", "memory"))
		return NewMemoryKV(), func() {}, nil
	}
}
