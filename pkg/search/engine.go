// Package search implements exact cosine-similarity top-K retrieval over the
// stored message vectors.
//
// Scoring is embarrassingly parallel: candidates are split into disjoint
// shards, each shard computes a local top-K, and the partials are merged and
// truncated. The result is identical to sorting the full candidate set by
// score regardless of shard count.
package search

import (
	"context"
	"math"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/halcyonco/chatvault/pkg/message"
	"github.com/halcyonco/chatvault/pkg/storage"
	"github.com/halcyonco/chatvault/pkg/vector"
)

const (
	// DefaultShards is the scoring fan-out used when none is configured.
	DefaultShards = 4

	// DefaultPageSize is the store scan batch size.
	DefaultPageSize = 256

	// scoreTolerance is the band within which two scores are considered
	// equal and the recency/id tie-break applies.
	scoreTolerance = 1e-12
)

// Result is a transient pairing of a message and its similarity score in
// [-1, 1]. Results are never persisted.
type Result struct {
	Message *message.Message
	Score   float64
}

// Engine scores a query vector against every stored candidate.
type Engine struct {
	store  storage.Driver
	logger *zap.Logger

	// Shards is the number of concurrent scoring workers.
	Shards int

	// PageSize is the batch size for scanning the store.
	PageSize int
}

// NewEngine creates a search engine over the given store.
func NewEngine(store storage.Driver, logger *zap.Logger) *Engine {
	return &Engine{
		store:    store,
		logger:   logger,
		Shards:   DefaultShards,
		PageSize: DefaultPageSize,
	}
}

// Search returns at most k results ordered by descending cosine similarity
// to query. Candidates are every stored message with a non-absent,
// non-zero-norm vector; a zero-norm query matches nothing. k <= 0 returns an
// empty list. Comparing vectors of mismatched dimensionality fails loudly
// with vector.DimensionError.
//
// The scan observes the store page by page with no isolation against
// concurrent saves; a write landing mid-scan may or may not be seen, which is
// an accepted race for chat history.
func (e *Engine) Search(ctx context.Context, query vector.Vector, k int) ([]Result, error) {
	if k <= 0 || len(query) == 0 || vector.IsZero(query) {
		return []Result{}, nil
	}

	candidates, err := e.collect(ctx)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return []Result{}, nil
	}

	shards := e.Shards
	if shards <= 0 {
		shards = 1
	}
	if shards > len(candidates) {
		shards = len(candidates)
	}

	partials := make([][]Result, shards)
	g, gctx := errgroup.WithContext(ctx)
	chunk := (len(candidates) + shards - 1) / shards

	for s := range shards {
		start := s * chunk
		end := min(start+chunk, len(candidates))
		g.Go(func() error {
			local, err := scoreShard(gctx, query, candidates[start:end], k)
			if err != nil {
				return err
			}
			partials[s] = local
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make([]Result, 0, shards*k)
	for _, p := range partials {
		merged = append(merged, p...)
	}
	sortResults(merged)
	if len(merged) > k {
		merged = merged[:k]
	}

	e.logger.Debug("search complete",
		zap.Int("candidates", len(candidates)),
		zap.Int("shards", shards),
		zap.Int("results", len(merged)),
	)

	return merged, nil
}

// collect pages through the store until a short page, dropping zero-norm
// sentinel vectors and nil-vector placeholder rows from the candidate set.
// The driver keeps undecodable rows in their page slot, so a short page is
// always the true end of the scan.
func (e *Engine) collect(ctx context.Context) ([]storage.Embedded, error) {
	pageSize := e.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	var candidates []storage.Embedded
	offset := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := e.store.ListWithVectors(ctx, pageSize, offset)
		if err != nil {
			return nil, err
		}

		for _, c := range page {
			if vector.IsZero(c.Vector) {
				continue
			}
			candidates = append(candidates, c)
		}

		if len(page) < pageSize {
			return candidates, nil
		}
		offset += pageSize
	}
}

// scoreShard computes the local top-k for one disjoint shard.
func scoreShard(ctx context.Context, query vector.Vector, shard []storage.Embedded, k int) ([]Result, error) {
	local := make([]Result, 0, len(shard))
	for i, c := range shard {
		if i%64 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		score, err := vector.Cosine(query, c.Vector)
		if err != nil {
			return nil, err
		}
		local = append(local, Result{Message: c.Message, Score: score})
	}

	sortResults(local)
	if len(local) > k {
		local = local[:k]
	}
	return local, nil
}

// sortResults orders by score descending; scores within scoreTolerance fall
// back to most-recent timestamp first, then message id, for full determinism.
func sortResults(results []Result) {
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if math.Abs(a.Score-b.Score) > scoreTolerance {
			return a.Score > b.Score
		}
		if !a.Message.CreatedAt.Equal(b.Message.CreatedAt) {
			return a.Message.CreatedAt.After(b.Message.CreatedAt)
		}
		return a.Message.ID.String() < b.Message.ID.String()
	})
}
