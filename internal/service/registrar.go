package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/and161185/o1chat/internal/errs"
	"github.com/and161185/o1chat/internal/failover"
	"github.com/and161185/o1chat/internal/session"
	"github.com/and161185/o1chat/internal/transport"
)

// Registrar performs first-contact registration of a username.
type Registrar struct {
	servers failover.ServerSet
	tr      transport.Transport
	log     *zap.Logger
}

// NewRegistrar constructs a Registrar over the configured server set.
func NewRegistrar(servers failover.ServerSet, tr transport.Transport, log *zap.Logger) *Registrar {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registrar{servers: servers, tr: tr, log: log}
}

// Register registers username on the first server that accepts it and
// returns a new session whose home server is that server.
// A blank username yields errs.ErrEmptyUsername without any network call.
// If no server accepts, the error wraps errs.ErrRegistrationFailed; the
// attempt is not retried.
func (r *Registrar) Register(ctx context.Context, username string) (*session.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errs.ErrEmptyUsername
	}

	client := failover.New(r.servers, r.tr, r.log)
	if err := client.Register(ctx, username); err != nil {
		r.log.Warn("registration failed", zap.String("username", username), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", errs.ErrRegistrationFailed, err)
	}

	sess, err := session.New(username, client)
	if err != nil {
		return nil, err
	}
	r.log.Info("registered",
		zap.String("username", username),
		zap.String("home", client.HomeServer()),
		zap.String("session", sess.ID().String()),
	)
	return sess, nil
}

// Resume starts a session for a previously stored identity without
// contacting any server. The home server is learned on the first poll.
func (r *Registrar) Resume(identity string) (*session.Session, error) {
	return session.New(identity, failover.New(r.servers, r.tr, r.log))
}
