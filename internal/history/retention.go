package history

// retention.go prunes old runs on a schedule.
//
// The job runs once on start, then every Interval, until its context ends.
// A failed prune is logged and retried on the next tick.

import (
	"context"
	"log/slog"
	"time"
)

// Pruner deletes runs created before a cutoff.
type Pruner interface {
	Prune(ctx context.Context, before time.Time) (int64, error)
}

// RetentionConfig holds the pruning schedule. Zero values take defaults.
type RetentionConfig struct {
	MaxAge   time.Duration // default: 90 days
	Interval time.Duration // default: 24h
}

func (c RetentionConfig) withDefaults() RetentionConfig {
	if c.MaxAge <= 0 {
		c.MaxAge = 90 * 24 * time.Hour
	}
	if c.Interval <= 0 {
		c.Interval = 24 * time.Hour
	}
	return c
}

// StartRetention blocks, pruning p until ctx is cancelled.
func StartRetention(ctx context.Context, p Pruner, cfg RetentionConfig, logger *slog.Logger) {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("history.retention.started", "max_age", cfg.MaxAge, "interval", cfg.Interval)

	prune(ctx, p, cfg.MaxAge, logger)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("history.retention.stopped")
			return
		case <-ticker.C:
			prune(ctx, p, cfg.MaxAge, logger)
		}
	}
}

// prune performs one cycle and reports the deleted count.
func prune(ctx context.Context, p Pruner, maxAge time.Duration, logger *slog.Logger) (int64, error) {
	start := time.Now()
	n, err := p.Prune(ctx, start.Add(-maxAge))
	if err != nil {
		logger.Error("history.retention.failed", "error", err)
		return 0, err
	}
	logger.Info("history.retention.pruned", "runs", n, "duration_ms", time.Since(start).Milliseconds())
	return n, nil
}
