// Package embedding turns free-form text into fixed-length normalized vectors.
//
// The computer averages per-token word vectors and L2-normalizes the mean.
// Text that yields no usable tokens produces an absent result, (nil, nil),
// which is a valid terminal outcome meaning "no semantic signal available",
// never an error. Results are memoized in a bounded LRU cache keyed by the
// source text, which also makes repeated saves of identical content
// bit-identical for free.
package embedding

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/halcyonco/chatvault/pkg/vector"
	"github.com/halcyonco/chatvault/pkg/wordvec"
)

// MaxTokens caps how many whitespace tokens a single computation processes,
// bounding latency on pathological inputs. Tokens beyond the cap are ignored,
// not an error.
const MaxTokens = 100

// Computer computes embeddings via a word-vector provider with a
// read-through cache.
type Computer struct {
	provider wordvec.Provider
	cache    *Cache
	logger   *zap.Logger
}

// NewComputer wires a computer to its provider and cache. A nil cache
// disables memoization.
func NewComputer(provider wordvec.Provider, cache *Cache, logger *zap.Logger) *Computer {
	return &Computer{
		provider: provider,
		cache:    cache,
		logger:   logger,
	}
}

// Dimensions returns the dimensionality of every vector the computer produces.
func (c *Computer) Dimensions() int {
	return c.provider.Dimensions()
}

// Compute returns the unit-normalized mean word vector for text, or
// (nil, nil) when no token has a known vector. The result is a pure function
// of (text, provider state): same inputs produce the same vector bit for bit.
func (c *Computer) Compute(ctx context.Context, text string) (vector.Vector, error) {
	if c.cache != nil {
		if v, ok := c.cache.Get(text); ok {
			return v, nil
		}
	}

	tokens := strings.Fields(text)
	if len(tokens) > MaxTokens {
		c.logger.Debug("token cap applied",
			zap.Int("tokens", len(tokens)),
			zap.Int("cap", MaxTokens),
		)
		tokens = tokens[:MaxTokens]
	}

	sum := make(vector.Vector, c.provider.Dimensions())
	hits := 0
	for i, token := range tokens {
		// Lookups are in-memory, so checking cancellation every few
		// tokens keeps the overhead negligible.
		if i%16 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		tv, ok := c.provider.VectorFor(token)
		if !ok {
			continue
		}
		for j, x := range tv {
			sum[j] += x
		}
		hits++
	}

	if hits == 0 {
		return nil, nil
	}

	for i := range sum {
		sum[i] /= float64(hits)
	}
	result := vector.Normalize(sum)

	if c.cache != nil {
		c.cache.Put(text, result)
	}

	return result, nil
}
