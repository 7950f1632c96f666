// Package storage
package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/halcyonco/chatvault/pkg/message"
	"github.com/halcyonco/chatvault/pkg/vector"
)

// Embedded pairs a message with its stored embedding vector during scans.
type Embedded struct {
	Message *message.Message
	Vector  vector.Vector
}

// Driver defines the interface for persisting messages and their embedding
// vectors in a storage backend. Vectors ride along as opaque float64 blobs;
// the driver owns encode/decode.
//
// Durability semantics: SaveVector is idempotent per message identifier
// (replace, never duplicate), writes to one message's vector are last-writer-
// wins, and any underlying I/O failure is surfaced to the caller; a driver
// never silently drops a write. There is no cross-message ordering guarantee,
// and scans observe no transactional isolation against concurrent saves.
type Driver interface {
	// SaveMessage persists a message record.
	SaveMessage(ctx context.Context, msg *message.Message) error

	// GetMessage retrieves a message by id. Returns NotFoundError when the
	// message does not exist.
	GetMessage(ctx context.Context, id uuid.UUID) (*message.Message, error)

	// DeleteMessage removes a message and, by cascade, its vector.
	DeleteMessage(ctx context.Context, id uuid.UUID) error

	// SaveVector persists the embedding for a message, replacing any
	// existing association for the same id.
	SaveVector(ctx context.Context, id uuid.UUID, v vector.Vector) error

	// LoadVector returns the stored vector for a message, or (nil, nil)
	// when no vector exists. A corrupt stored blob is logged and reported
	// as absent rather than failing the read.
	LoadVector(ctx context.Context, id uuid.UUID) (vector.Vector, error)

	// ListWithVectors returns messages that have a stored vector, ordered
	// by created-at descending then id ascending, paged by limit/offset so
	// large datasets scan without unbounded memory growth. A row whose blob
	// cannot be decoded is returned with a nil Vector rather than dropped;
	// a page shorter than limit always means the scan reached the end.
	ListWithVectors(ctx context.Context, limit, offset int) ([]Embedded, error)

	// ListMissingVectors returns up to limit messages whose stored vector
	// is absent or undecodable, oldest first.
	ListMissingVectors(ctx context.Context, limit int) ([]*message.Message, error)

	// DeleteVectorsOlderThan bulk-purges vectors written before cutoff,
	// returning how many were removed. Messages are untouched.
	DeleteVectorsOlderThan(ctx context.Context, cutoff time.Time) (int, error)

	// Close closes the store and releases any resources.
	Close() error
}
