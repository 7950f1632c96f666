package testutils

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/halcyonco/chatvault/pkg/message"
	"github.com/halcyonco/chatvault/pkg/storage"
	"github.com/halcyonco/chatvault/pkg/storage/inmemory"
	"github.com/halcyonco/chatvault/pkg/vector"
)

// FlakyStore wraps an in-memory driver and injects failures, letting tests
// exercise the "store I/O failure surfaces, one failure never aborts the
// batch" paths.
type FlakyStore struct {
	*inmemory.Driver

	// FailSaveVectorFor makes SaveVector fail for one message id.
	FailSaveVectorFor uuid.UUID

	// FailSaveMessage makes every SaveMessage call fail.
	FailSaveMessage bool

	// FailListWithVectors makes every ListWithVectors call fail.
	FailListWithVectors bool

	// SaveVectorCalls counts SaveVector attempts, including failed ones.
	SaveVectorCalls atomic.Int64
}

// NewFlakyStore creates a FlakyStore over a fresh in-memory driver.
func NewFlakyStore() *FlakyStore {
	return &FlakyStore{Driver: inmemory.NewDriver()}
}

func (s *FlakyStore) SaveMessage(ctx context.Context, msg *message.Message) error {
	if s.FailSaveMessage {
		return fmt.Errorf("injected message save failure")
	}
	return s.Driver.SaveMessage(ctx, msg)
}

func (s *FlakyStore) SaveVector(ctx context.Context, id uuid.UUID, v vector.Vector) error {
	s.SaveVectorCalls.Add(1)
	if id == s.FailSaveVectorFor {
		return fmt.Errorf("injected save failure for %s", id)
	}
	return s.Driver.SaveVector(ctx, id, v)
}

func (s *FlakyStore) ListWithVectors(ctx context.Context, limit, offset int) ([]storage.Embedded, error) {
	if s.FailListWithVectors {
		return nil, fmt.Errorf("injected list failure")
	}
	return s.Driver.ListWithVectors(ctx, limit, offset)
}

// SeedMessage stores a message with the given text and created-at, returning it.
func (s *FlakyStore) SeedMessage(ctx context.Context, text string, isUser bool, createdAt time.Time) (*message.Message, error) {
	msg := &message.Message{
		ID:        uuid.New(),
		Text:      text,
		IsUser:    isUser,
		CreatedAt: createdAt,
	}
	if err := s.Driver.SaveMessage(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

var _ storage.Driver = (*FlakyStore)(nil)
