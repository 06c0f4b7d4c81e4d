package presence

import (
	"context"
	"time"

	"github.com/pcordeiro/parley/internal/store"
	"go.uber.org/zap"
)

// Reaper periodically prunes expired typing rows. Expiry is already
// enforced at read time; this just keeps the table from growing.
type Reaper struct {
	db       *store.DB
	logger   *zap.Logger
	interval time.Duration
	cancel   context.CancelFunc
}

// NewReaper creates a reaper with the default 30s sweep interval.
func NewReaper(db *store.DB, logger *zap.Logger) *Reaper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reaper{
		db:       db,
		logger:   logger,
		interval: 30 * time.Second,
	}
}

// Start begins the sweep loop.
func (r *Reaper) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)
	go r.loop(ctx)
}

// Stop stops the sweep loop.
func (r *Reaper) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
}

func (r *Reaper) loop(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.sweep()
		case <-ctx.Done():
			return
		}
	}
}

func (r *Reaper) sweep() {
	n, err := r.db.PruneTyping(time.Now().UnixMilli())
	if err != nil {
		r.logger.Error("failed to prune typing rows", zap.Error(err))
		return
	}
	if n > 0 {
		r.logger.Info("pruned expired typing rows", zap.Int64("count", n))
	}
}
