package workflow

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"redraft/internal/config"
	"redraft/internal/logging"
	"redraft/internal/queue"
)

// RetentionSweeper evicts terminal jobs and their artifacts after the
// configured retention window.
type RetentionSweeper struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger
}

// NewRetentionSweeper constructs a sweeper.
func NewRetentionSweeper(cfg *config.Config, store *queue.Store, logger *slog.Logger) *RetentionSweeper {
	return &RetentionSweeper{
		cfg:    cfg,
		store:  store,
		logger: logging.NewComponentLogger(logger, "retention"),
	}
}

// Run sweeps periodically until the context is cancelled. Retention of zero
// hours disables eviction entirely.
func (r *RetentionSweeper) Run(ctx context.Context) {
	if r.cfg.Retention.Hours <= 0 {
		return
	}
	interval := time.Duration(r.cfg.Retention.SweepIntervalMinutes) * time.Minute
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.SweepOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				r.logger.Warn("retention sweep failed", logging.Error(err))
			}
		}
	}
}

// SweepOnce removes expired terminal jobs along with their artifacts.
func (r *RetentionSweeper) SweepOnce(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-time.Duration(r.cfg.Retention.Hours) * time.Hour)
	expired, err := r.store.ExpiredTerminal(ctx, cutoff)
	if err != nil {
		return err
	}

	var removed int
	for _, job := range expired {
		if job.ArtifactPath != "" {
			if err := os.Remove(job.ArtifactPath); err != nil && !os.IsNotExist(err) {
				r.logger.Warn("failed to remove artifact",
					logging.String("path", job.ArtifactPath),
					logging.Error(err))
				continue
			}
		}
		if _, err := r.store.Remove(ctx, job.ID); err != nil {
			r.logger.Warn("failed to remove expired job",
				logging.String(logging.FieldJobID, job.JobID),
				logging.Error(err))
			continue
		}
		removed++
	}
	if removed > 0 {
		r.logger.Info("evicted expired jobs", logging.Int("count", removed))
	}
	return nil
}
