// Package sqlite provides the durable on-device storage driver backed by
// SQLite via github.com/mattn/go-sqlite3.
//
// Messages and embeddings live in two tables joined on the message id, with
// a foreign-key cascade so deleting a message removes its vector. Embeddings
// are stored as the opaque float64 blob produced by pkg/vector's codec.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/halcyonco/chatvault/pkg/message"
	"github.com/halcyonco/chatvault/pkg/storage"
	"github.com/halcyonco/chatvault/pkg/vector"
)

// Driver implements storage.Driver on SQLite.
type Driver struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDriver opens (or creates) the database at dbPath and runs schema
// migration. The dbPath can be a file path or ":memory:".
func NewDriver(dbPath string, logger *zap.Logger) (*Driver, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("database path is required")
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	// Serialize access through one connection. SQLite handles its own file
	// locking; a single connection avoids SQLITE_BUSY churn between the
	// interactive path and the backfill stream.
	db.SetMaxOpenConns(1)

	schema := []string{
		`CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			text TEXT NOT NULL,
			is_user INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS embeddings (
			message_id TEXT PRIMARY KEY REFERENCES messages(id) ON DELETE CASCADE,
			vector BLOB NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_created_at ON messages(created_at)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}

	logger.Info("sqlite storage driver initialized",
		zap.String("db_path", dbPath),
	)

	return &Driver{db: db, logger: logger}, nil
}

// SaveMessage persists a message record. Saving the same id again replaces
// the row, which keeps the call idempotent for retries.
func (d *Driver) SaveMessage(ctx context.Context, msg *message.Message) error {
	if msg == nil {
		return errors.New("cannot store nil message")
	}

	_, err := d.db.ExecContext(ctx, `
		INSERT INTO messages (id, text, is_user, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET text = excluded.text,
			is_user = excluded.is_user,
			created_at = excluded.created_at
	`, msg.ID.String(), msg.Text, boolToInt(msg.IsUser), msg.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("saving message %s: %w", msg.ID, err)
	}
	return nil
}

// GetMessage retrieves a message by id.
func (d *Driver) GetMessage(ctx context.Context, id uuid.UUID) (*message.Message, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT id, text, is_user, created_at FROM messages WHERE id = ?
	`, id.String())

	msg, err := scanMessage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.NotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("loading message %s: %w", id, err)
	}
	return msg, nil
}

// DeleteMessage removes a message; the embeddings row goes with it via the
// foreign-key cascade.
func (d *Driver) DeleteMessage(ctx context.Context, id uuid.UUID) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("deleting message %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting message %s: %w", id, err)
	}
	if n == 0 {
		return storage.NotFoundError{ID: id}
	}
	return nil
}

// SaveVector persists the embedding for a message. The upsert replaces any
// existing association for the same id, never duplicating it.
func (d *Driver) SaveVector(ctx context.Context, id uuid.UUID, v vector.Vector) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO embeddings (message_id, vector, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(message_id) DO UPDATE SET vector = excluded.vector,
			created_at = excluded.created_at
	`, id.String(), vector.Encode(v), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving vector for message %s: %w", id, err)
	}
	return nil
}

// LoadVector returns the stored vector for a message, or (nil, nil) when
// absent. A corrupt blob is logged and reported as absent.
func (d *Driver) LoadVector(ctx context.Context, id uuid.UUID) (vector.Vector, error) {
	var blob []byte
	err := d.db.QueryRowContext(ctx, `
		SELECT vector FROM embeddings WHERE message_id = ?
	`, id.String()).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading vector for message %s: %w", id, err)
	}

	v, err := vector.Decode(blob)
	if err != nil {
		d.logger.Warn("stored vector failed to decode, treating as absent",
			zap.String("message_id", id.String()),
			zap.Error(err),
		)
		return nil, nil
	}
	return v, nil
}

// ListWithVectors returns vectorized messages ordered by created-at
// descending then id ascending, paged by limit/offset. A row whose blob
// fails to decode is logged and returned with a nil Vector rather than
// dropped: a full page must never come back short, or paging readers would
// mistake it for end of data.
func (d *Driver) ListWithVectors(ctx context.Context, limit, offset int) ([]storage.Embedded, error) {
	if limit <= 0 || offset < 0 {
		return nil, nil
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT m.id, m.text, m.is_user, m.created_at, e.vector
		FROM messages m
		INNER JOIN embeddings e ON e.message_id = m.id
		ORDER BY m.created_at DESC, m.id ASC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing vectorized messages: %w", err)
	}
	defer rows.Close()

	var result []storage.Embedded
	for rows.Next() {
		var (
			idStr     string
			text      string
			isUser    int
			createdAt time.Time
			blob      []byte
		)
		if err := rows.Scan(&idStr, &text, &isUser, &createdAt, &blob); err != nil {
			return nil, fmt.Errorf("scanning vectorized message: %w", err)
		}

		var v vector.Vector
		id, idErr := uuid.Parse(idStr)
		if idErr != nil {
			d.logger.Warn("row has malformed message id, treating vector as absent",
				zap.String("message_id", idStr),
				zap.Error(idErr),
			)
		} else {
			var decErr error
			v, decErr = vector.Decode(blob)
			if decErr != nil {
				d.logger.Warn("stored vector failed to decode, treating as absent",
					zap.String("message_id", idStr),
					zap.Error(decErr),
				)
				v = nil
			}
		}

		result = append(result, storage.Embedded{
			Message: &message.Message{
				ID:        id,
				Text:      text,
				IsUser:    isUser != 0,
				CreatedAt: createdAt.UTC(),
			},
			Vector: v,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating vectorized messages: %w", err)
	}

	return result, nil
}

// ListMissingVectors returns up to limit messages whose stored vector is
// absent or undecodable, oldest first. Counting corrupt blobs as missing is
// what lets backfill recompute them; the recomputed vector upserts over the
// bad blob.
func (d *Driver) ListMissingVectors(ctx context.Context, limit int) ([]*message.Message, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT m.id, m.text, m.is_user, m.created_at
		FROM messages m
		LEFT JOIN embeddings e ON e.message_id = m.id
		WHERE e.message_id IS NULL OR length(e.vector) % 8 != 0
		ORDER BY m.created_at ASC, m.id ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing unvectorized messages: %w", err)
	}
	defer rows.Close()

	var result []*message.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning unvectorized message: %w", err)
		}
		result = append(result, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating unvectorized messages: %w", err)
	}

	return result, nil
}

// DeleteVectorsOlderThan bulk-purges vectors written before cutoff.
func (d *Driver) DeleteVectorsOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := d.db.ExecContext(ctx, `
		DELETE FROM embeddings WHERE created_at < ?
	`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("purging vectors: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purging vectors: %w", err)
	}
	return int(n), nil
}

// Close closes the database.
func (d *Driver) Close() error {
	return d.db.Close()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanMessage(s scanner) (*message.Message, error) {
	var (
		idStr     string
		text      string
		isUser    int
		createdAt time.Time
	)
	if err := s.Scan(&idStr, &text, &isUser, &createdAt); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("malformed message id %q: %w", idStr, err)
	}

	return &message.Message{
		ID:        id,
		Text:      text,
		IsUser:    isUser != 0,
		CreatedAt: createdAt.UTC(),
	}, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ storage.Driver = (*Driver)(nil)
