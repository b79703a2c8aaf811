package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Purger removes expired stored sessions.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Sweeper drops idle in-memory workspaces.
type Sweeper interface {
	Sweep() int
}

// SessionJanitor periodically expires sessions.
type SessionJanitor struct {
	store    Purger
	sweeper  Sweeper
	interval time.Duration
	logger   *zap.Logger
}

// NewSessionJanitor creates the janitor. A non-positive interval defaults to five minutes.
func NewSessionJanitor(store Purger, sweeper Sweeper, interval time.Duration, logger *zap.Logger) *SessionJanitor {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionJanitor{store: store, sweeper: sweeper, interval: interval, logger: logger.Named("janitor")}
}

// Run blocks until ctx is done.
func (j *SessionJanitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single sweep.
func (j *SessionJanitor) RunOnce(ctx context.Context) {
	if j.sweeper != nil {
		if n := j.sweeper.Sweep(); n > 0 {
			j.logger.Debug("idle workspaces dropped", zap.Int("count", n))
		}
	}
	if j.store == nil {
		return
	}
	purged, err := j.store.PurgeExpired(ctx)
	if err != nil {
		j.logger.Warn("session purge failed", zap.Error(err))
		return
	}
	if purged > 0 {
		j.logger.Info("expired sessions purged", zap.Int64("count", purged))
	}
}
