// Package memory contains in-process implementations of repository interfaces.
package memory

import (
	"context"
	"sync"

	"github.com/and161185/o1chat/internal/model"
	"github.com/and161185/o1chat/internal/repository"
)

// Store keeps users and messages in memory. Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	users    []string
	known    map[string]struct{}
	messages []model.Message
}

var (
	_ repository.UserRepository    = (*Store)(nil)
	_ repository.MessageRepository = (*Store)(nil)
)

// New returns an empty store.
func New() *Store { return &Store{known: map[string]struct{}{}} }

// Register adds username once.
func (s *Store) Register(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.known[username]; ok {
		return nil
	}
	s.known[username] = struct{}{}
	s.users = append(s.users, username)
	return nil
}

// List returns usernames in registration order.
func (s *Store) List(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.users...), nil
}

// Append stores m.
func (s *Store) Append(_ context.Context, m model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, m)
	return nil
}

// Conversation returns the pair history in arrival order.
func (s *Store) Conversation(_ context.Context, user1, user2 string) ([]model.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Message{}
	for _, m := range s.messages {
		if (m.Sender == user1 && m.Recipient == user2) || (m.Sender == user2 && m.Recipient == user1) {
			out = append(out, m)
		}
	}
	return out, nil
}
