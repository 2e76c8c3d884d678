package repository

import (
	"context"

	"github.com/and161185/o1chat/internal/model"
)

// MessageRepository stores chat messages in arrival order.
type MessageRepository interface {
	// Append stores one message.
	Append(ctx context.Context, m model.Message) error
	// Conversation returns both directions between user1 and user2 in arrival order.
	Conversation(ctx context.Context, user1, user2 string) ([]model.Message, error)
}
