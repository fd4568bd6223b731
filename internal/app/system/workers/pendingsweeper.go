// internal/app/system/workers/pendingsweeper.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/peerhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// ExpiredDeleter removes pending signups whose passcode window closed
// before now. Implemented by pendingstore.Store.
type ExpiredDeleter interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// DefaultSweepInterval is used when NewPendingSweeper gets a non-positive
// interval.
const DefaultSweepInterval = 5 * time.Minute

// PendingSweeper is a background worker that deletes expired pending
// signups. The TTL monitor does the same but only runs about once a minute
// and may lag under load.
type PendingSweeper struct {
	pending  ExpiredDeleter
	log      *zap.Logger
	interval time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewPendingSweeper creates a new sweeper.
//
// Parameters:
//   - pending: the pending signups store
//   - logger: zap logger for logging
//   - interval: how often to sweep (e.g., 5 minutes)
func NewPendingSweeper(pending ExpiredDeleter, logger *zap.Logger, interval time.Duration) *PendingSweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &PendingSweeper{
		pending:  pending,
		log:      logger,
		interval: interval,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background sweep loop.
func (w *PendingSweeper) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("pending signup sweeper started", zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish. Safe to call
// more than once.
func (w *PendingSweeper) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	w.wg.Wait()
	w.log.Info("pending signup sweeper stopped")
}

func (w *PendingSweeper) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.Sweep()
		}
	}
}

// Sweep runs one pass and reports how many records were removed.
func (w *PendingSweeper) Sweep() int64 {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Sweep())
	defer cancel()

	count, err := w.pending.DeleteExpired(ctx, w.now())
	if err != nil {
		w.log.Error("failed to delete expired pending signups", zap.Error(err))
		return 0
	}

	if count > 0 {
		w.log.Info("deleted expired pending signups", zap.Int64("count", count))
	}
	return count
}
