package wordvec

import (
	"fmt"
	"strings"

	"github.com/halcyonco/chatvault/pkg/vector"
)

// Static is a map-backed provider for embedded vocabularies and tests.
// Lookups are case-folded; the table itself is never mutated after New.
type Static struct {
	dimensions int
	table      map[string]vector.Vector
}

// NewStatic builds a provider from a token→vector table. All vectors must
// share one dimensionality.
func NewStatic(table map[string]vector.Vector) (*Static, error) {
	if len(table) == 0 {
		return nil, fmt.Errorf("wordvec: static table is empty")
	}

	folded := make(map[string]vector.Vector, len(table))
	dims := 0
	for token, v := range table {
		if dims == 0 {
			dims = len(v)
		}
		if len(v) != dims {
			return nil, fmt.Errorf("wordvec: token %q has %d dimensions, want %d", token, len(v), dims)
		}
		folded[strings.ToLower(token)] = vector.Clone(v)
	}

	return &Static{dimensions: dims, table: folded}, nil
}

// VectorFor returns the vector for token, case-folded.
func (s *Static) VectorFor(token string) (vector.Vector, bool) {
	v, ok := s.table[strings.ToLower(token)]
	if !ok {
		return nil, false
	}
	return v, true
}

// Dimensions returns the table's vector dimensionality.
func (s *Static) Dimensions() int {
	return s.dimensions
}

// Close is a no-op for the static provider.
func (s *Static) Close() error {
	return nil
}

var _ Provider = (*Static)(nil)
