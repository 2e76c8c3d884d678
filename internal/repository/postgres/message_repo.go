package postgres

import (
	"context"

	"github.com/and161185/o1chat/internal/model"
	"github.com/and161185/o1chat/internal/repository"
)

// MessageRepo implements MessageRepository using PostgreSQL.
type MessageRepo struct{ db *DB }

var _ repository.MessageRepository = (*MessageRepo)(nil)

// NewMessageRepo constructs a message repository.
func NewMessageRepo(db *DB) *MessageRepo { return &MessageRepo{db: db} }

// Append inserts one message row.
func (r *MessageRepo) Append(ctx context.Context, m model.Message) error {
	const q = `
INSERT INTO messages (sender, recipient, body)
VALUES ($1, $2, $3)`
	_, err := r.db.Pool.Exec(ctx, q, m.Sender, m.Recipient, m.Content)
	return err
}

// Conversation selects both directions of the pair ordered by arrival.
func (r *MessageRepo) Conversation(ctx context.Context, user1, user2 string) ([]model.Message, error) {
	const q = `
SELECT sender, recipient, body
FROM messages
WHERE (sender=$1 AND recipient=$2) OR (sender=$2 AND recipient=$1)
ORDER BY id ASC`
	rows, err := r.db.Pool.Query(ctx, q, user1, user2)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Message{}
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.Sender, &m.Recipient, &m.Content); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
