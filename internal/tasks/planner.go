package tasks

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// RetentionSpec runs the purge every day at 03:00.
const RetentionSpec = "0 0 3 * * *"

// Board is what the jobs drive. Now is the board's own clock, so cutoffs
// follow the same time source as every other date decision.
type Board interface {
	Now() time.Time
	Tick(ctx context.Context) error
	PurgeBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// TickJob advances shower timers. Failures are logged and retried on the
// next tick.
func TickJob(ctx context.Context, b Board, log *zap.Logger) func() {
	return func() {
		if err := b.Tick(ctx); err != nil {
			log.Error("shower tick failed", zap.Error(err))
		}
	}
}

// RetentionJob drops guests checked in more than days ago.
func RetentionJob(ctx context.Context, b Board, days int, log *zap.Logger) func() {
	return func() {
		cutoff := b.Now().AddDate(0, 0, -days)
		n, err := b.PurgeBefore(ctx, cutoff)
		if err != nil {
			log.Error("retention purge failed", zap.Error(err))
			return
		}
		log.Info("retention purge done", zap.Int("removed", n), zap.Int("days", days))
	}
}

// InitScheduler registers the tick and, when retentionDays > 0, the nightly
// purge, then starts the scheduler.
func InitScheduler(ctx context.Context, b Board, tickSpec string, retentionDays int, log *zap.Logger) (*cron.Cron, error) {
	c := cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	if _, err := c.AddFunc(tickSpec, TickJob(ctx, b, log)); err != nil {
		return nil, err
	}
	if retentionDays > 0 {
		if _, err := c.AddFunc(RetentionSpec, RetentionJob(ctx, b, retentionDays, log)); err != nil {
			return nil, err
		}
	}

	c.Start()
	log.Info("scheduler started", zap.String("tick", tickSpec), zap.Int("retention_days", retentionDays))
	return c, nil
}
