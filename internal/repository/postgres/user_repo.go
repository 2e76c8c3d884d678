package postgres

import (
	"context"

	"github.com/and161185/o1chat/internal/repository"
)

// UserRepo implements UserRepository using PostgreSQL.
type UserRepo struct{ db *DB }

var _ repository.UserRepository = (*UserRepo)(nil)

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

// Register inserts username unless it already exists.
func (r *UserRepo) Register(ctx context.Context, username string) error {
	const q = `
INSERT INTO users (username)
VALUES ($1)
ON CONFLICT (username) DO NOTHING`
	_, err := r.db.Pool.Exec(ctx, q, username)
	return err
}

// List selects all usernames in registration order.
func (r *UserRepo) List(ctx context.Context) ([]string, error) {
	const q = `
SELECT username
FROM users
ORDER BY id ASC`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}
