// Package failover runs protocol operations across an ordered set of
// equivalent servers, returning the first success.
package failover

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/and161185/o1chat/internal/errs"
	"github.com/and161185/o1chat/internal/model"
	"github.com/and161185/o1chat/internal/transport"
)

// ServerSet is the fixed failover order of server base URLs.
type ServerSet []string

// Contains reports whether server is a member of the set.
func (s ServerSet) Contains(server string) bool {
	for _, v := range s {
		if v == server {
			return true
		}
	}
	return false
}

// AggregateFailure means every server failed one logical operation.
// Attempts holds the per-server failures in attempt order.
type AggregateFailure struct {
	Op       transport.Op
	Attempts []error
}

func (a *AggregateFailure) Error() string {
	return fmt.Sprintf("%s: %v (%d attempts)", a.Op, errs.ErrAllServersFailed, len(a.Attempts))
}

// Unwrap matches errs.ErrAllServersFailed and every per-server failure.
func (a *AggregateFailure) Unwrap() []error {
	return append([]error{errs.ErrAllServersFailed}, a.Attempts...)
}

// Client tries servers sequentially: the home server first when known,
// then the rest in declared order. The only state is the home server hint.
type Client struct {
	servers ServerSet
	tr      transport.Transport
	home    atomic.Pointer[string]
	log     *zap.Logger
}

// New constructs a failover client over a copy of servers.
func New(servers ServerSet, tr transport.Transport, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{servers: append(ServerSet(nil), servers...), tr: tr, log: log}
}

// Servers returns the configured order.
func (c *Client) Servers() ServerSet { return append(ServerSet(nil), c.servers...) }

// HomeServer returns the last server that succeeded, or "".
func (c *Client) HomeServer() string {
	if p := c.home.Load(); p != nil {
		return *p
	}
	return ""
}

func (c *Client) setHome(server string) {
	if c.HomeServer() == server {
		return
	}
	c.home.Store(&server)
	c.log.Info("home server changed", zap.String("server", server))
}

// order returns the attempt order for one run.
func (c *Client) order() []string {
	home := c.HomeServer()
	if home == "" || !c.servers.Contains(home) {
		return c.servers
	}
	out := make([]string, 0, len(c.servers))
	out = append(out, home)
	for _, s := range c.servers {
		if s != home {
			out = append(out, s)
		}
	}
	return out
}

// Run executes attempt against each server in order until one succeeds.
// The succeeding server becomes the home server. If all fail, the error is
// an *AggregateFailure.
func Run[T any](ctx context.Context, c *Client, op transport.Op, attempt func(ctx context.Context, server string) (T, error)) (T, error) {
	var zero T
	order := c.order()
	if len(order) == 0 {
		return zero, &AggregateFailure{Op: op, Attempts: []error{errs.ErrNoServers}}
	}

	fails := make([]error, 0, len(order))
	for _, server := range order {
		v, err := attempt(ctx, server)
		if err == nil {
			c.setHome(server)
			return v, nil
		}
		c.log.Debug("attempt failed",
			zap.String("op", string(op)),
			zap.String("server", server),
			zap.Error(err),
		)
		fails = append(fails, err)
		if ctx.Err() != nil {
			// the rest would fail the same way
			break
		}
	}
	return zero, &AggregateFailure{Op: op, Attempts: fails}
}

// Register registers username on the first server that accepts it.
func (c *Client) Register(ctx context.Context, username string) error {
	_, err := Run(ctx, c, transport.OpRegister, func(ctx context.Context, server string) (struct{}, error) {
		return struct{}{}, c.tr.Register(ctx, server, username)
	})
	return err
}

// ListUsers lists known users from the first server that answers.
func (c *Client) ListUsers(ctx context.Context) ([]string, error) {
	return Run(ctx, c, transport.OpUsers, func(ctx context.Context, server string) ([]string, error) {
		return c.tr.ListUsers(ctx, server)
	})
}

// FetchMessages fetches the pair history from the first server that answers.
func (c *Client) FetchMessages(ctx context.Context, user1, user2 string) ([]model.Message, error) {
	return Run(ctx, c, transport.OpMessages, func(ctx context.Context, server string) ([]model.Message, error) {
		return c.tr.FetchMessages(ctx, server, user1, user2)
	})
}

// Send submits m to the first server that accepts it. A server that
// accepted but failed to answer may cause a duplicate on the next one.
func (c *Client) Send(ctx context.Context, m model.Message) error {
	_, err := Run(ctx, c, transport.OpSend, func(ctx context.Context, server string) (struct{}, error) {
		return struct{}{}, c.tr.Send(ctx, server, m)
	})
	return err
}
