// Package chatvault is the composition root of the retrieval core: it owns
// the wiring between the embedding computer, the store, the search engine,
// and the backfill runner, and exposes the minimal caller-facing surface.
//
// Components are explicitly constructed and injected here, with no
// process-wide singleton access, so callers and tests substitute their own
// providers and stores freely.
package chatvault

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/halcyonco/chatvault/pkg/backfill"
	"github.com/halcyonco/chatvault/pkg/embedding"
	"github.com/halcyonco/chatvault/pkg/message"
	"github.com/halcyonco/chatvault/pkg/search"
	"github.com/halcyonco/chatvault/pkg/storage"
	"github.com/halcyonco/chatvault/pkg/vector"
	"github.com/halcyonco/chatvault/pkg/wordvec"
)

// Result is one ranked search hit on the caller-facing surface.
type Result struct {
	MessageID uuid.UUID `json:"message_id"`
	Content   string    `json:"content"`
	IsUser    bool      `json:"is_user"`
	Score     float64   `json:"score"`
}

// Config assembles a Service.
type Config struct {
	// Store is the structured message store adapter.
	Store storage.Driver

	// Provider is the word-vector lookup source.
	Provider wordvec.Provider

	// CacheSize bounds the embedding cache (defaults to
	// embedding.DefaultCacheSize).
	CacheSize int

	// SearchShards is the scoring fan-out (defaults to search.DefaultShards).
	SearchShards int

	// BackfillBatchSize is the per-batch size for background backfill
	// passes (defaults to backfill.DefaultBatchSize).
	BackfillBatchSize int

	// Logger is the provided zap logger.
	Logger *zap.Logger
}

// Service is the retrieval core's caller-facing API.
type Service struct {
	store    storage.Driver
	provider wordvec.Provider
	computer *embedding.Computer
	cache    *embedding.Cache
	engine   *search.Engine
	runner   *backfill.Runner
	logger   *zap.Logger
}

// New builds a Service from its injected collaborators.
func New(c Config) (*Service, error) {
	if c.Store == nil {
		return nil, fmt.Errorf("chatvault: store is required")
	}
	if c.Provider == nil {
		return nil, fmt.Errorf("chatvault: word-vector provider is required")
	}
	if c.Logger == nil {
		return nil, fmt.Errorf("chatvault: logger is required")
	}

	cache := embedding.NewCache(c.CacheSize)
	computer := embedding.NewComputer(c.Provider, cache, c.Logger)

	engine := search.NewEngine(c.Store, c.Logger)
	if c.SearchShards > 0 {
		engine.Shards = c.SearchShards
	}

	runner := backfill.NewRunner(backfill.RunnerConfig{
		Coordinator: backfill.NewCoordinator(c.Store, computer, c.Logger),
		BatchSize:   c.BackfillBatchSize,
		Logger:      c.Logger,
	})

	return &Service{
		store:    c.Store,
		provider: c.Provider,
		computer: computer,
		cache:    cache,
		engine:   engine,
		runner:   runner,
		logger:   c.Logger,
	}, nil
}

// Save persists a new chat message, computes its embedding, and stores the
// vector alongside it. Text with no semantic signal gets the zero-vector
// sentinel so the message is settled rather than left for backfill. Store
// failures surface to the caller; the write is never silently dropped.
func (s *Service) Save(ctx context.Context, text string, isUser bool) (uuid.UUID, error) {
	msg := message.New(text, isUser)

	if err := s.store.SaveMessage(ctx, msg); err != nil {
		return uuid.Nil, fmt.Errorf("saving message: %w", err)
	}

	v, err := s.computer.Compute(ctx, text)
	if err != nil {
		return uuid.Nil, fmt.Errorf("embedding message %s: %w", msg.ID, err)
	}
	if v == nil {
		v = make(vector.Vector, s.computer.Dimensions())
		s.logger.Debug("message has no semantic signal, storing sentinel",
			zap.String("message_id", msg.ID.String()),
		)
	}

	if err := s.store.SaveVector(ctx, msg.ID, v); err != nil {
		return uuid.Nil, fmt.Errorf("saving vector for message %s: %w", msg.ID, err)
	}

	s.logger.Debug("message saved",
		zap.String("message_id", msg.ID.String()),
		zap.String("role", msg.Role()),
	)

	return msg.ID, nil
}

// Search embeds queryText and returns the top-k most similar stored
// messages. A query with no semantic signal returns an empty list and no
// error, indistinguishable from an empty store; callers fall back to
// recency ordering.
func (s *Service) Search(ctx context.Context, queryText string, k int) ([]Result, error) {
	q, err := s.computer.Compute(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if q == nil {
		s.logger.Debug("query has no semantic signal")
		return []Result{}, nil
	}

	return s.SearchByVector(ctx, q, k)
}

// SearchByVector returns the top-k stored messages most similar to v.
func (s *Service) SearchByVector(ctx context.Context, v vector.Vector, k int) ([]Result, error) {
	hits, err := s.engine.Search(ctx, v, k)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}

	results := make([]Result, 0, len(hits))
	for _, h := range hits {
		results = append(results, Result{
			MessageID: h.Message.ID,
			Content:   h.Message.Text,
			IsUser:    h.Message.IsUser,
			Score:     h.Score,
		})
	}
	return results, nil
}

// TriggerBackfill queues a background backfill pass. Returns false when a
// pass is already pending and the trigger was coalesced away.
func (s *Service) TriggerBackfill() bool {
	return s.runner.Trigger()
}

// ClearCache drops every memoized embedding. Purely a performance reset;
// subsequent computations re-read through the provider.
func (s *Service) ClearCache() {
	s.cache.Clear()
}

// Close drains the backfill runner and releases the provider and store.
func (s *Service) Close() error {
	s.runner.Close()

	var firstErr error
	if err := s.provider.Close(); err != nil {
		firstErr = err
	}
	if err := s.store.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
