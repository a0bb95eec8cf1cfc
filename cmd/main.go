// Command seed loads demo guests into the configured store so the queue,
// log and metrics views have something to show.
package main

import (
	"context"
	"flag"
	"time"

	"go.uber.org/zap"

	"shower_intake/internal/config"
	"shower_intake/internal/logger"
	"shower_intake/internal/service"
	"shower_intake/internal/storage"
)

func main() {
	force := flag.Bool("force", false, "replace existing guests")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "shower-intake-seed")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	kv, closeKV, err := storage.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal("open storage", zap.Error(err))
	}
	defer closeKV()

	repo := storage.NewRepository(kv)
	existing, err := repo.Guests(ctx)
	if err != nil {
		log.Fatal("read guests", zap.Error(err))
	}
	if len(existing) > 0 && !*force {
		log.Info("guests already present, nothing to do", zap.Int("guests", len(existing)))
		return
	}

	guests := service.SampleGuests(time.Now())
	if err := repo.SaveGuests(ctx, guests); err != nil {
		log.Fatal("save guests", zap.Error(err))
	}
	log.Info("demo guests written", zap.Int("guests", len(guests)), zap.String("storage", cfg.StorageDriver))
}
