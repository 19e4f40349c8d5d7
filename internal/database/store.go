package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/jmoiron/sqlx"
)

// DefaultHistoryLimit is used when GetRecentMessages is called without a limit.
const DefaultHistoryLimit = 20

// ErrInvalidMessage is returned by SaveMessage for incomplete messages.
var ErrInvalidMessage = errors.New("invalid message")

// Store defines the interface for database operations.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// SaveMessage inserts a new message record and sets its ID.
	SaveMessage(ctx context.Context, message *Message) error

	// GetRecentMessages returns up to limit messages of a chat, newest first.
	// A non-zero beforeID restricts the result to messages with ID <= beforeID.
	GetRecentMessages(ctx context.Context, chatID int64, limit int, beforeID int64) ([]*Message, error)

	// DeleteAllMessages deletes every stored message.
	DeleteAllMessages(ctx context.Context) error

	// DeleteMessagesBefore deletes messages older than cutoff and reports how many were removed.
	DeleteMessagesBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// RunSQLMaintenance optimizes and compacts the database file.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore implements Store on top of sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store backed by db. A nil logger discards output.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func validateMessage(message *Message) error {
	switch {
	case message == nil:
		return fmt.Errorf("%w: message is nil", ErrInvalidMessage)
	case message.ChatID == 0:
		return fmt.Errorf("%w: chat_id is zero", ErrInvalidMessage)
	case message.UserID == 0:
		return fmt.Errorf("%w: user_id is zero", ErrInvalidMessage)
	case message.Content == "":
		return fmt.Errorf("%w: content is empty", ErrInvalidMessage)
	case message.Timestamp.IsZero():
		return fmt.Errorf("%w: timestamp is zero", ErrInvalidMessage)
	}
	return nil
}

func (s *sqlxStore) SaveMessage(ctx context.Context, message *Message) error {
	if err := validateMessage(message); err != nil {
		return err
	}

	now := time.Now().UTC()
	message.CreatedAt = now
	message.UpdatedAt = now
	message.Timestamp = message.Timestamp.UTC()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction for saving message",
			"chat_id", message.ChatID, "user_id", message.UserID, "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
		}
	}()

	query := `
        INSERT INTO messages (chat_id, user_id, content, timestamp, created_at, updated_at)
        VALUES (:chat_id, :user_id, :content, :timestamp, :created_at, :updated_at);
    `

	result, err := tx.NamedExecContext(ctx, query, message)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving message", "chat_id", message.ChatID, "user_id", message.UserID, "error", err)
		return fmt.Errorf("failed to save message (chat %d, user %d): %w", message.ChatID, message.UserID, err)
	}

	if id, err := result.LastInsertId(); err == nil {
		message.ID = id
	} else {
		s.logger.WarnContext(ctx, "Could not retrieve last insert ID after saving message",
			"chat_id", message.ChatID, "user_id", message.UserID, "error", err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit transaction",
			"chat_id", message.ChatID, "user_id", message.UserID, "error", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.DebugContext(ctx, "Message saved successfully",
		"chat_id", message.ChatID, "user_id", message.UserID, "message_id", message.ID)
	return nil
}

func (s *sqlxStore) GetRecentMessages(ctx context.Context, chatID int64, limit int, beforeID int64) ([]*Message, error) {
	if chatID == 0 {
		return nil, fmt.Errorf("chat_id cannot be zero")
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if beforeID <= 0 {
		beforeID = math.MaxInt64
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	query := `
        SELECT id, chat_id, user_id, content, timestamp, created_at, updated_at
        FROM messages
        WHERE chat_id = ? AND id <= ?
        ORDER BY timestamp DESC, id DESC
        LIMIT ?;
    `

	var messages []*Message
	err := s.db.SelectContext(ctx, &messages, query, chatID, beforeID, limit)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		s.logger.WarnContext(ctx, "Context timeout or cancellation while fetching messages",
			"chat_id", chatID, "error", err)
		return nil, err
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Error getting recent messages",
			"chat_id", chatID, "limit", limit, "error", err)
		return nil, fmt.Errorf("failed to get messages for chat %d: %w", chatID, err)
	}

	s.logger.DebugContext(ctx, "Fetched recent messages", "chat_id", chatID, "count", len(messages))
	return messages, nil
}

func (s *sqlxStore) DeleteAllMessages(ctx context.Context) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM messages;")
	if err != nil {
		s.logger.ErrorContext(ctx, "Error deleting all messages", "error", err)
		return fmt.Errorf("failed to delete all messages: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	s.logger.InfoContext(ctx, "Deleted all messages", "rows_affected", rowsAffected)
	return nil
}

func (s *sqlxStore) DeleteMessagesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM messages WHERE timestamp < ?;", cutoff.UTC())
	if err != nil {
		s.logger.ErrorContext(ctx, "Error deleting old messages", "cutoff", cutoff, "error", err)
		return 0, fmt.Errorf("failed to delete messages before %s: %w", cutoff.Format(time.RFC3339), err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted messages: %w", err)
	}

	s.logger.InfoContext(ctx, "Deleted old messages", "cutoff", cutoff, "rows_affected", rowsAffected)
	return rowsAffected, nil
}

// RunSQLMaintenance refreshes query planner statistics and runs VACUUM, which
// SQLite requires outside a transaction.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance")

	if _, err := s.db.ExecContext(ctx, "PRAGMA optimize;"); err != nil {
		s.logger.WarnContext(ctx, "PRAGMA optimize failed", "error", err)
	}

	if _, err := s.db.ExecContext(ctx, "VACUUM;"); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)
		}
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance completed successfully")
	return nil
}
