package database

import "time"

// Message is a chat message kept as conversation history for AI replies.
// Replies sent by the bot are stored with the bot's own user ID.
type Message struct {
	ID        int64     `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	ChatID    int64     `db:"chat_id"`
	UserID    int64     `db:"user_id"`
	Content   string    `db:"content"`
	Timestamp time.Time `db:"timestamp"`
}
