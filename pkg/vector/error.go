package vector

import (
	"errors"
	"fmt"
)

// ErrCorruptBlob is returned when a stored vector blob fails to decode.
// Read paths treat the owning message as having no vector rather than failing
// the whole operation; the condition is logged for diagnostics.
var ErrCorruptBlob = errors.New("corrupt vector blob")

// DimensionError reports a comparison between vectors of different lengths.
// This is a programming error, not a data condition, and is never degraded.
type DimensionError struct {
	Want int
	Got  int
}

func (e DimensionError) Error() string {
	return fmt.Sprintf("vector dimension mismatch: want %d, got %d", e.Want, e.Got)
}

// Is allows errors.Is(err, DimensionError{}) style matching on the type.
func (e DimensionError) Is(target error) bool {
	_, ok := target.(DimensionError)
	return ok
}
