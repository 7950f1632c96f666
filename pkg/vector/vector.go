// Package vector provides the embedding vector type, its blob encoding, and
// similarity scoring for the retrieval core.
//
// Vectors are double precision end to end. Every vector stored for retrieval
// is unit-normalized, except the all-zero vector, which is the documented
// "no embedding available" sentinel and is excluded from similarity scoring.
package vector

import "math"

// Vector is a fixed-length sequence of float64 components.
type Vector []float64

// Norm returns the Euclidean (L2) norm of v.
func Norm(v Vector) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Normalize scales v to unit length in place and returns it.
// A zero-norm vector is returned unchanged rather than dividing by zero.
func Normalize(v Vector) Vector {
	norm := Norm(v)
	if norm == 0 {
		return v
	}
	for i := range v {
		v[i] /= norm
	}
	return v
}

// IsZero reports whether every component of v is exactly zero.
func IsZero(v Vector) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// Clone returns a copy of v so callers can hand vectors across goroutine
// boundaries without sharing backing arrays.
func Clone(v Vector) Vector {
	if v == nil {
		return nil
	}
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// Cosine returns the cosine similarity of a and b in [-1, 1].
//
// Norms are recomputed defensively rather than assuming pre-normalized
// inputs. If either norm is zero the score is 0 with no error: "no signal"
// is a legitimate outcome, never a NaN. Comparing vectors of different
// lengths is a programming error and fails loudly.
func Cosine(a, b Vector) (float64, error) {
	if len(a) != len(b) {
		return 0, DimensionError{Want: len(a), Got: len(b)}
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	score := dot / (math.Sqrt(normA) * math.Sqrt(normB))

	// Clamp float drift so callers can rely on the [-1, 1] contract.
	if score > 1 {
		score = 1
	}
	if score < -1 {
		score = -1
	}

	return score, nil
}
