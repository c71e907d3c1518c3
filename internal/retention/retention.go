package retention

import (
	"context"
	"log/slog"
	"time"

	"github.com/open-wander/samplerate/internal/store"
)

// Cleaner deletes stored estimates older than the retention window.
type Cleaner struct {
	store         *store.Store
	retentionDays int
	interval      time.Duration
	now           func() time.Time
	logger        *slog.Logger
}

// New creates a new retention cleaner with a default interval of 1 hour.
func New(s *store.Store, retentionDays int) *Cleaner {
	return &Cleaner{
		store:         s,
		retentionDays: retentionDays,
		interval:      time.Hour,
		now:           time.Now,
		logger:        slog.Default().With("component", "retention"),
	}
}

// Run cleans up immediately, then every interval, until ctx is cancelled.
func (c *Cleaner) Run(ctx context.Context) error {
	if err := c.cleanup(ctx); err != nil {
		c.logger.Error("initial cleanup failed", "error", err)
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := c.cleanup(ctx); err != nil {
				c.logger.Error("cleanup failed", "error", err)
			}
		}
	}
}

func (c *Cleaner) cleanup(ctx context.Context) error {
	cutoff := c.now().UTC().AddDate(0, 0, -c.retentionDays)

	n, err := c.store.DeleteBefore(ctx, cutoff)
	if err != nil {
		return err
	}

	c.logger.Info("deleted old estimates", "count", n, "before", cutoff.Format("2006-01-02"))
	return nil
}
