package storage

import "github.com/google/uuid"

// NotFoundError is returned when a message doesn't exist in the store.
type NotFoundError struct {
	ID uuid.UUID
}

func (e NotFoundError) Error() string {
	if e.ID == uuid.Nil {
		return "message not found"
	}

	return "message not found: " + e.ID.String()
}
