package vector

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Encode encodes a vector into a BLOB representation suitable for storage in
// SQLite. The encoding is a little-endian sequence of IEEE 754 float64 values
// without a length prefix; the length is derived from the BLOB size on decode.
// The round trip is bit-exact: Decode(Encode(v)) == v for every float64,
// including negative zero, subnormals, and infinities.
func Encode(v Vector) []byte {
	if len(v) == 0 {
		return nil
	}
	b := make([]byte, len(v)*8)
	for i, x := range v {
		binary.LittleEndian.PutUint64(b[i*8:], math.Float64bits(x))
	}
	return b
}

// Decode decodes a BLOB produced by Encode back into a Vector.
// A blob whose length is not a multiple of 8 is corrupt.
func Decode(b []byte) (Vector, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("%w: blob length %d is not a multiple of 8", ErrCorruptBlob, len(b))
	}
	v := make(Vector, len(b)/8)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return v, nil
}
