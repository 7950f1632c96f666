// Package testutils holds shared test doubles for the retrieval core.
package testutils

import (
	"github.com/halcyonco/chatvault/pkg/vector"
)

// StaticProvider is a test word-vector provider backed by a plain map.
// Unlike wordvec.Static it performs no case folding or validation, so tests
// control lookups exactly.
type StaticProvider struct {
	Vectors map[string]vector.Vector
	Dims    int
}

// NewStaticProvider builds a provider over the given table, inferring
// dimensionality from the first entry.
func NewStaticProvider(vectors map[string]vector.Vector) *StaticProvider {
	dims := 0
	for _, v := range vectors {
		dims = len(v)
		break
	}
	return &StaticProvider{Vectors: vectors, Dims: dims}
}

func (p *StaticProvider) VectorFor(token string) (vector.Vector, bool) {
	v, ok := p.Vectors[token]
	if !ok {
		return nil, false
	}
	return v, true
}

func (p *StaticProvider) Dimensions() int {
	return p.Dims
}

func (p *StaticProvider) Close() error {
	return nil
}
