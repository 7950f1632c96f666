// Package wordvec defines the word-vector provider consumed by the embedding
// computer. A provider maps a single token to its raw fixed-length vector and
// is assumed deterministic and side-effect-free for a given runtime session.
package wordvec

import "github.com/halcyonco/chatvault/pkg/vector"

// Provider looks up per-token vectors.
type Provider interface {
	// VectorFor returns the vector for a token, or false when the token is
	// unknown. Unknown tokens are a normal condition, not an error.
	VectorFor(token string) (vector.Vector, bool)

	// Dimensions returns the fixed dimensionality of every vector the
	// provider produces.
	Dimensions() int

	// Close releases any resources held by the provider.
	Close() error
}
