package backfill

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// defaultQueueSize bounds how many pending triggers can stack up. One
// pending run already guarantees every message present at trigger time gets
// processed, so the queue stays tiny.
const defaultQueueSize = 4

// RunnerConfig configures the background runner.
type RunnerConfig struct {
	// Coordinator executes the actual backfill passes.
	Coordinator *Coordinator

	// BatchSize is passed to every Coordinator.Run invocation.
	BatchSize int

	// QueueSize is the trigger channel capacity (defaults to 4).
	QueueSize int

	// Logger is the provided zap logger.
	Logger *zap.Logger
}

// Runner executes backfill passes on a background goroutine, decoupled from
// the interactive save/search path. Triggers are coalesced through a small
// buffered channel: a trigger never blocks the caller, and a trigger arriving
// while the queue is full is dropped because a pending run will cover it.
type Runner struct {
	config RunnerConfig
	queue  chan struct{}
	cancel context.CancelFunc
	wg     sync.WaitGroup
	logger *zap.Logger
}

// NewRunner creates a runner and starts its background worker.
func NewRunner(c RunnerConfig) *Runner {
	if c.QueueSize <= 0 {
		c.QueueSize = defaultQueueSize
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &Runner{
		config: c,
		queue:  make(chan struct{}, c.QueueSize),
		cancel: cancel,
		logger: c.Logger,
	}

	r.wg.Add(1)
	go r.worker(ctx)

	return r
}

// Trigger requests a backfill pass. Returns true if the request was queued,
// false if it was dropped because enough passes are already pending.
func (r *Runner) Trigger() bool {
	select {
	case r.queue <- struct{}{}:
		r.logger.Debug("backfill pass queued")
		return true
	default:
		r.logger.Debug("backfill trigger dropped, pass already pending")
		return false
	}
}

// Close stops accepting triggers and waits for pending passes to drain.
// Call this during graceful shutdown before closing the store.
func (r *Runner) Close() {
	close(r.queue)
	r.wg.Wait()
	r.cancel()
}

// worker drains the trigger queue, running one pass per coalesced trigger.
func (r *Runner) worker(ctx context.Context) {
	defer r.wg.Done()
	r.logger.Debug("backfill worker started")

	for range r.queue {
		result, err := r.config.Coordinator.Run(ctx, r.config.BatchSize)
		if err != nil {
			r.logger.Error("backfill pass failed",
				zap.Error(err),
			)
			continue
		}
		r.logger.Info("backfill pass complete",
			zap.Int("embedded", result.Embedded),
			zap.Int("sentinels", result.Sentinels),
			zap.Int("skipped", result.Skipped),
			zap.Int("failed", result.Failed),
		)
	}

	r.logger.Debug("backfill worker stopped")
}
