package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
	"shop-kita.backend/pkg/logger"
)

// revokedTokenStore is the slice of the refresh token repository the sweep
// needs.
type revokedTokenStore interface {
	DeleteAllRevokedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// TokenRetentionJob periodically hard-deletes refresh token rows that were
// revoked longer than the retention window ago. Live and recently revoked
// rows are untouched, so reuse detection keeps working within the window.
type TokenRetentionJob struct {
	store     revokedTokenStore
	retention time.Duration
	interval  time.Duration
	stop      chan struct{}
}

func NewTokenRetentionJob(store revokedTokenStore, retention time.Duration) *TokenRetentionJob {
	return &TokenRetentionJob{
		store:     store,
		retention: retention,
		interval:  time.Hour,
		stop:      make(chan struct{}),
	}
}

func (j *TokenRetentionJob) Start(ctx context.Context) {
	logger.Info(ctx, "starting refresh token retention job",
		zap.Duration("retention", j.retention),
		zap.Duration("interval", j.interval),
	)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "refresh token retention job stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(ctx, "refresh token retention job stopped")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *TokenRetentionJob) Stop() {
	close(j.stop)
}

func (j *TokenRetentionJob) sweep(ctx context.Context) {
	deleted, err := j.store.DeleteAllRevokedBefore(ctx, time.Now().Add(-j.retention))
	if err != nil {
		logger.Error(ctx, "refresh token retention sweep failed", zap.Error(err))
		return
	}

	if deleted > 0 {
		logger.Info(ctx, "refresh token retention sweep completed", zap.Int64("deleted", deleted))
	}
}
