package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "shower_intake/docs"
	"shower_intake/internal/config"
	"shower_intake/internal/handlers"
	"shower_intake/internal/logger"
	"shower_intake/internal/models"
	"shower_intake/internal/service"
	"shower_intake/internal/storage"
	"shower_intake/internal/tasks"
	"shower_intake/internal/timeutil"
	"shower_intake/internal/ws"
)

// @title		Shower Intake API
// @version	1.0
// @description	Guest intake, shower queue and shower timers for a shelter
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "shower-intake")
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	sugar := log.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, closeKV, err := storage.Open(ctx, cfg, log)
	if err != nil {
		sugar.Fatalf("storage: %v", err)
	}
	defer closeKV()

	hub := ws.NewHub(log)
	go hub.Run(ctx)

	ctl := service.New(storage.NewRepository(kv), timeutil.SystemClock{}, hub, log, service.Options{
		Durations:       models.Durations{Shower: cfg.ShowerDuration, Cleaning: cfg.CleaningDuration},
		ShowerCount:     cfg.ShowerCount,
		DefaultSettings: models.Settings{Timezone: cfg.Timezone, Location: cfg.Location},
	})
	if err := ctl.Load(ctx); err != nil {
		sugar.Fatalf("load state: %v", err)
	}

	sched, err := tasks.InitScheduler(ctx, ctl, cfg.TickSpec, cfg.RetentionDays, log)
	if err != nil {
		sugar.Fatalf("scheduler: %v", err)
	}

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handlers.NewRouter(handlers.New(ctl, log), hub.ServeTopic, log)
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()
	log.Info("service is running", zap.String("addr", cfg.HTTPAddr), zap.String("storage", cfg.StorageDriver))

	<-ctx.Done()
	log.Info("shutting down")

	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	<-sched.Stop().Done()
	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}
	log.Info("goodbye")
}
