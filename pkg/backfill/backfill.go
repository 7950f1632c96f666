// Package backfill computes missing embeddings for previously stored
// messages in batches, without blocking interactive save or search traffic.
package backfill

import (
	"context"

	"go.uber.org/zap"

	"github.com/halcyonco/chatvault/pkg/embedding"
	"github.com/halcyonco/chatvault/pkg/storage"
	"github.com/halcyonco/chatvault/pkg/vector"
)

// DefaultBatchSize is the per-batch message count used when none is configured.
const DefaultBatchSize = 64

// Coordinator drives un-vectorized messages through the embedding computer.
//
// Run is idempotent and safe under concurrent invocation: the store's current
// state is the arbiter, so a message vectorized by a concurrent run is simply
// skipped when re-checked. No in-memory lock spans processes.
type Coordinator struct {
	store    storage.Driver
	computer *embedding.Computer
	logger   *zap.Logger
}

// NewCoordinator creates a backfill coordinator.
func NewCoordinator(store storage.Driver, computer *embedding.Computer, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		store:    store,
		computer: computer,
		logger:   logger,
	}
}

// Run processes batches of messages lacking vectors until the store reports
// none left, the context is cancelled, or a batch makes no progress.
//
// Messages whose text yields no semantic signal are given the zero-vector
// sentinel so they stop reappearing as missing; search excludes them. A
// failure on one message is logged and counted, never aborts the batch.
func (c *Coordinator) Run(ctx context.Context, batchSize int) (*Result, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	result := &Result{}
	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		batch, err := c.store.ListMissingVectors(ctx, batchSize)
		if err != nil {
			return result, err
		}
		if len(batch) == 0 {
			return result, nil
		}

		progressed := false
		for _, msg := range batch {
			if err := ctx.Err(); err != nil {
				return result, err
			}

			// A concurrent run (or an interactive save) may have
			// vectorized this message after the batch was listed.
			existing, err := c.store.LoadVector(ctx, msg.ID)
			if err != nil {
				result.Failed++
				c.logger.Warn("backfill: vector re-check failed",
					zap.String("message_id", msg.ID.String()),
					zap.Error(err),
				)
				continue
			}
			if existing != nil {
				result.Skipped++
				progressed = true
				continue
			}

			v, err := c.computer.Compute(ctx, msg.Text)
			if err != nil {
				if ctx.Err() != nil {
					return result, ctx.Err()
				}
				result.Failed++
				c.logger.Warn("backfill: embedding computation failed",
					zap.String("message_id", msg.ID.String()),
					zap.Error(err),
				)
				continue
			}

			if v == nil {
				v = make(vector.Vector, c.computer.Dimensions())
				result.Sentinels++
			} else {
				result.Embedded++
			}

			if err := c.store.SaveVector(ctx, msg.ID, v); err != nil {
				// Undo the optimistic counter bump above.
				if vector.IsZero(v) {
					result.Sentinels--
				} else {
					result.Embedded--
				}
				result.Failed++
				c.logger.Warn("backfill: vector save failed",
					zap.String("message_id", msg.ID.String()),
					zap.Error(err),
				)
				continue
			}
			progressed = true
		}

		// A batch where every message failed would otherwise loop forever
		// on the same rows.
		if !progressed {
			c.logger.Warn("backfill: batch made no progress, stopping",
				zap.Int("batch_size", len(batch)),
				zap.Int("failed", result.Failed),
			)
			return result, nil
		}

		if len(batch) < batchSize {
			return result, nil
		}
	}
}
