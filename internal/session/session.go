// Package session holds the per-login state of the chat client: the
// established identity and the failover client carrying the home server hint.
// A Session is created at login and dropped at logout.
package session

import (
	"errors"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/o1chat/internal/errs"
	"github.com/and161185/o1chat/internal/failover"
)

// Session is immutable except for the home server kept by its client.
type Session struct {
	id        uuid.UUID
	identity  string
	client    *failover.Client
	startedAt time.Time
}

// New starts a session for identity over client.
func New(identity string, client *failover.Client) (*Session, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return nil, errs.ErrEmptyUsername
	}
	if client == nil {
		return nil, errors.New("session: nil client")
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	return &Session{id: id, identity: identity, client: client, startedAt: time.Now()}, nil
}

// ID identifies the session in logs.
func (s *Session) ID() uuid.UUID { return s.id }

// Identity returns the local username.
func (s *Session) Identity() string { return s.identity }

// Client returns the failover client bound to this session.
func (s *Session) Client() *failover.Client { return s.client }

// HomeServer returns the advisory home server, or "".
func (s *Session) HomeServer() string { return s.client.HomeServer() }

// StartedAt returns when the session was established.
func (s *Session) StartedAt() time.Time { return s.startedAt }
