package postgres

import (
	"context"
	"errors"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/and161185/o1chat/internal/model"
)

func TestMessageRepo_Append(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewMessageRepo(db)
	ctx := context.Background()

	mock.ExpectExec(`INSERT INTO messages \(sender, recipient, body\) VALUES \(\$1, \$2, \$3\)`).
		WithArgs("alice", "bob", "hi").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, r.Append(ctx, model.Message{Sender: "alice", Recipient: "bob", Content: "hi"}))

	mock.ExpectExec(`INSERT INTO messages`).
		WithArgs("alice", "bob", "again").
		WillReturnError(errors.New("disk full"))
	require.Error(t, r.Append(ctx, model.Message{Sender: "alice", Recipient: "bob", Content: "again"}))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageRepo_Conversation(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewMessageRepo(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT sender, recipient, body FROM messages WHERE \(sender=\$1 AND recipient=\$2\) OR \(sender=\$2 AND recipient=\$1\) ORDER BY id ASC`).
		WithArgs("alice", "bob").
		WillReturnRows(pgxmock.NewRows([]string{"sender", "recipient", "body"}).
			AddRow("alice", "bob", "1").
			AddRow("bob", "alice", "2"))

	got, err := r.Conversation(ctx, "alice", "bob")
	require.NoError(t, err)
	require.Equal(t, []model.Message{
		{Sender: "alice", Recipient: "bob", Content: "1"},
		{Sender: "bob", Recipient: "alice", Content: "2"},
	}, got)

	mock.ExpectQuery(`SELECT sender, recipient, body FROM messages`).
		WithArgs("alice", "bob").
		WillReturnError(errors.New("timeout"))
	_, err = r.Conversation(ctx, "alice", "bob")
	require.Error(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}
