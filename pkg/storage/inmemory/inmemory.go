// Package inmemory provides a map-backed storage driver for tests and
// local development. Ordering matches the SQLite driver so the two are
// interchangeable under the search engine's paging scans.
package inmemory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/halcyonco/chatvault/pkg/message"
	"github.com/halcyonco/chatvault/pkg/storage"
	"github.com/halcyonco/chatvault/pkg/vector"
)

// Driver implements storage.Driver using in-process maps.
type Driver struct {
	// mu guards both maps; scans copy under RLock so paging never holds
	// the lock across calls.
	mu sync.RWMutex

	messages map[uuid.UUID]*message.Message

	// vectors maps message id -> stored vector plus its write time, which
	// DeleteVectorsOlderThan prunes against.
	vectors map[uuid.UUID]storedVector
}

type storedVector struct {
	v       vector.Vector
	savedAt time.Time
}

// NewDriver creates an empty in-memory driver.
func NewDriver() *Driver {
	return &Driver{
		messages: make(map[uuid.UUID]*message.Message),
		vectors:  make(map[uuid.UUID]storedVector),
	}
}

// SaveMessage persists a message record.
func (d *Driver) SaveMessage(_ context.Context, msg *message.Message) error {
	if msg == nil {
		return errors.New("cannot store nil message")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	copied := *msg
	d.messages[msg.ID] = &copied
	return nil
}

// GetMessage retrieves a message by id.
func (d *Driver) GetMessage(_ context.Context, id uuid.UUID) (*message.Message, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	msg, ok := d.messages[id]
	if !ok {
		return nil, storage.NotFoundError{ID: id}
	}

	copied := *msg
	return &copied, nil
}

// DeleteMessage removes a message and its vector.
func (d *Driver) DeleteMessage(_ context.Context, id uuid.UUID) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.messages[id]; !ok {
		return storage.NotFoundError{ID: id}
	}

	delete(d.messages, id)
	delete(d.vectors, id)
	return nil
}

// SaveVector persists the embedding for a message, replacing any existing one.
func (d *Driver) SaveVector(_ context.Context, id uuid.UUID, v vector.Vector) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.messages[id]; !ok {
		return storage.NotFoundError{ID: id}
	}

	d.vectors[id] = storedVector{
		v:       vector.Clone(v),
		savedAt: time.Now().UTC(),
	}
	return nil
}

// LoadVector returns the stored vector for a message, or (nil, nil) when absent.
func (d *Driver) LoadVector(_ context.Context, id uuid.UUID) (vector.Vector, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	sv, ok := d.vectors[id]
	if !ok {
		return nil, nil
	}
	return vector.Clone(sv.v), nil
}

// ListWithVectors returns vectorized messages ordered by created-at
// descending then id ascending, paged by limit/offset.
func (d *Driver) ListWithVectors(_ context.Context, limit, offset int) ([]storage.Embedded, error) {
	if limit <= 0 || offset < 0 {
		return nil, nil
	}

	d.mu.RLock()
	all := make([]storage.Embedded, 0, len(d.vectors))
	for id, sv := range d.vectors {
		msg, ok := d.messages[id]
		if !ok {
			continue
		}
		copied := *msg
		all = append(all, storage.Embedded{
			Message: &copied,
			Vector:  vector.Clone(sv.v),
		})
	}
	d.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].Message.CreatedAt.Equal(all[j].Message.CreatedAt) {
			return all[i].Message.CreatedAt.After(all[j].Message.CreatedAt)
		}
		return all[i].Message.ID.String() < all[j].Message.ID.String()
	})

	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

// ListMissingVectors returns up to limit messages without a vector, oldest first.
func (d *Driver) ListMissingVectors(_ context.Context, limit int) ([]*message.Message, error) {
	if limit <= 0 {
		return nil, nil
	}

	d.mu.RLock()
	missing := make([]*message.Message, 0)
	for id, msg := range d.messages {
		if _, ok := d.vectors[id]; ok {
			continue
		}
		copied := *msg
		missing = append(missing, &copied)
	}
	d.mu.RUnlock()

	sort.Slice(missing, func(i, j int) bool {
		if !missing[i].CreatedAt.Equal(missing[j].CreatedAt) {
			return missing[i].CreatedAt.Before(missing[j].CreatedAt)
		}
		return missing[i].ID.String() < missing[j].ID.String()
	})

	if len(missing) > limit {
		missing = missing[:limit]
	}
	return missing, nil
}

// DeleteVectorsOlderThan removes vectors written before cutoff.
func (d *Driver) DeleteVectorsOlderThan(_ context.Context, cutoff time.Time) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	removed := 0
	for id, sv := range d.vectors {
		if sv.savedAt.Before(cutoff) {
			delete(d.vectors, id)
			removed++
		}
	}
	return removed, nil
}

// Close is a no-op for the in-memory driver.
func (d *Driver) Close() error {
	return nil
}

var _ storage.Driver = (*Driver)(nil)
